package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/taskport/pkg/domain/project"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type projectRecord struct {
	ID          string `gorm:"primaryKey"`
	Position    int    `gorm:"index"`
	Name        string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	Status      string
	Progress    int
	Tasks       []taskRecord `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
}

func (projectRecord) TableName() string { return "projects" }

type taskRecord struct {
	ProjectID        string `gorm:"primaryKey"`
	ID               string `gorm:"primaryKey"`
	Position         int
	Name             string
	Description      string
	AssignedTo       []string `gorm:"serializer:json"`
	ResponsibleParty string
	Contacts         []string `gorm:"serializer:json"`
	StartDate        time.Time
	DueDate          time.Time
	Duration         int
	Dependencies     []string `gorm:"serializer:json"`
	Status           string
	Remarks          string
}

func (taskRecord) TableName() string { return "tasks" }

// SQLiteRepository keeps the project collection in a SQLite database.
type SQLiteRepository struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) the database at dsn and migrates the schema.
func OpenSQLite(dsn string, log *slog.Logger) (*SQLiteRepository, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	level := logger.Silent
	if log != nil && log.Enabled(context.Background(), slog.LevelDebug) {
		level = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return NewSQLiteRepository(db)
}

// NewSQLiteRepository wraps an open database and migrates the schema.
func NewSQLiteRepository(db *gorm.DB) (*SQLiteRepository, error) {
	if err := db.AutoMigrate(&projectRecord{}, &taskRecord{}); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

// Close releases the underlying connection pool.
func (r *SQLiteRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *SQLiteRepository) Load(ctx context.Context) ([]project.Project, error) {
	var records []projectRecord
	err := r.db.WithContext(ctx).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Order("position").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}

	out := make([]project.Project, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.toDomain())
	}
	return out, nil
}

// Save replaces the stored collection in one transaction.
func (r *SQLiteRepository) Save(ctx context.Context, projects []project.Project) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&taskRecord{}).Error; err != nil {
			return fmt.Errorf("clear tasks: %w", err)
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&projectRecord{}).Error; err != nil {
			return fmt.Errorf("clear projects: %w", err)
		}
		if len(projects) == 0 {
			return nil
		}

		records := make([]projectRecord, 0, len(projects))
		for i, p := range projects {
			records = append(records, projectFromDomain(p, i))
		}
		if err := tx.Create(&records).Error; err != nil {
			return fmt.Errorf("save projects: %w", err)
		}
		return nil
	})
}

func projectFromDomain(p project.Project, pos int) projectRecord {
	rec := projectRecord{
		ID:          p.ID,
		Position:    pos,
		Name:        p.Name,
		Description: p.Description,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Status:      string(p.Status),
		Progress:    p.Progress,
		Tasks:       make([]taskRecord, 0, len(p.Tasks)),
	}
	for i, t := range p.Tasks {
		rec.Tasks = append(rec.Tasks, taskRecord{
			ProjectID:        p.ID,
			ID:               t.ID,
			Position:         i,
			Name:             t.Name,
			Description:      t.Description,
			AssignedTo:       nonNilStrings(t.AssignedTo),
			ResponsibleParty: t.ResponsibleParty,
			Contacts:         nonNilStrings(t.Contacts),
			StartDate:        t.StartDate,
			DueDate:          t.DueDate,
			Duration:         t.Duration,
			Dependencies:     nonNilStrings(t.Dependencies),
			Status:           string(t.Status),
			Remarks:          t.Remarks,
		})
	}
	return rec
}

func (rec projectRecord) toDomain() project.Project {
	p := project.Project{
		ID:          rec.ID,
		Name:        rec.Name,
		Description: rec.Description,
		StartDate:   rec.StartDate.UTC(),
		EndDate:     rec.EndDate.UTC(),
		Status:      project.ProjectStatus(rec.Status),
		Progress:    rec.Progress,
		Tasks:       make([]project.Task, 0, len(rec.Tasks)),
	}
	for _, t := range rec.Tasks {
		p.Tasks = append(p.Tasks, project.Task{
			ID:               t.ID,
			ProjectID:        t.ProjectID,
			Name:             t.Name,
			Description:      t.Description,
			AssignedTo:       nonNilStrings(t.AssignedTo),
			ResponsibleParty: t.ResponsibleParty,
			Contacts:         nonNilStrings(t.Contacts),
			StartDate:        t.StartDate.UTC(),
			DueDate:          t.DueDate.UTC(),
			Duration:         t.Duration,
			Dependencies:     nonNilStrings(t.Dependencies),
			Status:           project.TaskStatus(t.Status),
			Remarks:          t.Remarks,
		})
	}
	return p
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

// ensureDirForSQLite creates the parent directory of a file DSN.
func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	// G301: Use 0700 for directories
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}
