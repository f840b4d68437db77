package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/taskport/pkg/domain/project"
)

const TaskportDir = ".taskport"
const ProjectsFile = "projects.json"
const ConfigFile = "config.yaml"
const DatabaseFile = "taskport.db"
const ActivityFile = "activity.jsonl"
const DeadLetterFile = "webhook-dead-letters.jsonl"

const storeVersion = 1

type storeDocument struct {
	Version  int               `json:"version"`
	Projects []project.Project `json:"projects"`
}

// FilesystemRepository keeps the project collection in .taskport/projects.json.
type FilesystemRepository struct {
	root        string
	retryConfig retry.Config
}

func NewFilesystemRepository(root string) *FilesystemRepository {
	return &FilesystemRepository{
		root: root,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Root returns the workspace root directory.
func (r *FilesystemRepository) Root() string {
	return r.root
}

// ResolvePath ensures the path is within the .taskport directory and prevents traversal.
func (r *FilesystemRepository) ResolvePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	baseDir := filepath.Join(r.root, TaskportDir)
	cleanPath := filepath.Clean(filepath.Join(baseDir, filename))

	// Direct children only
	if !strings.HasPrefix(cleanPath, baseDir) || filepath.Dir(cleanPath) != baseDir {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}

	return cleanPath, nil
}

func (r *FilesystemRepository) Initialize() error {
	path := filepath.Join(r.root, TaskportDir)
	// G301: Use 0700 for directories
	if err := os.MkdirAll(path, 0700); err != nil {
		return fmt.Errorf("failed to create .taskport directory: %w", err)
	}
	return nil
}

func (r *FilesystemRepository) IsInitialized() bool {
	_, err := os.Stat(filepath.Join(r.root, TaskportDir))
	return err == nil
}

// Path returns the projects file location.
func (r *FilesystemRepository) Path() string {
	path, _ := r.ResolvePath(ProjectsFile)
	return path
}

// Load reads the stored projects. A missing file is an empty collection.
func (r *FilesystemRepository) Load(ctx context.Context) ([]project.Project, error) {
	retryer := retry.New[[]project.Project](r.retryConfig)

	return retryer.Do(ctx, func(ctx context.Context) ([]project.Project, error) {
		path, err := r.ResolvePath(ProjectsFile)
		if err != nil {
			return nil, err
		}

		// #nosec G304 -- Path is resolved and validated via ResolvePath
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			return []project.Project{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read projects file: %w", err)
		}

		var doc storeDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal projects: %w", err)
		}
		if doc.Projects == nil {
			doc.Projects = []project.Project{}
		}
		return doc.Projects, nil
	})
}

// Save replaces the stored collection. The file is written to a temporary
// sibling and renamed so readers never see a partial document.
func (r *FilesystemRepository) Save(ctx context.Context, projects []project.Project) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := r.ResolvePath(ProjectsFile)
	if err != nil {
		return err
	}
	if err := r.Initialize(); err != nil {
		return err
	}

	if projects == nil {
		projects = []project.Project{}
	}
	data, err := json.MarshalIndent(storeDocument{Version: storeVersion, Projects: projects}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal projects: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ProjectsFile+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write projects: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write projects: %w", err)
	}
	// G306: Use 0600 for files
	if err := os.Chmod(tmpName, 0600); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace projects file: %w", err)
	}
	return nil
}
