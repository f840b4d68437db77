package application

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/taskport/pkg/domain/project"
	"github.com/felixgeelhaar/taskport/pkg/domain/selection"
	"github.com/felixgeelhaar/taskport/pkg/exchange"
)

// SelectForExport narrows projects to the given project and task IDs the same
// way the interactive selector does. With no IDs every project is returned.
// A task is named by its bare ID or as "projectID/taskID"; a bare ID used by
// more than one project is rejected.
func SelectForExport(projects []project.Project, projectIDs, taskIDs []string, kind exchange.Kind) ([]project.Project, error) {
	if len(projectIDs) == 0 && len(taskIDs) == 0 {
		out := project.CloneAll(projects)
		if out == nil {
			out = []project.Project{}
		}
		return out, nil
	}

	rec, err := selection.New(projects)
	if err != nil {
		return nil, err
	}
	for _, id := range projectIDs {
		if err := rec.ToggleProject(id, true); err != nil {
			return nil, err
		}
	}

	for _, ref := range taskIDs {
		pid, id, err := resolveTask(projects, ref)
		if err != nil {
			return nil, err
		}
		if err := rec.ToggleTask(id, pid, true); err != nil {
			return nil, err
		}
	}

	return ExportSet(rec, kind), nil
}

// ExportSet returns what an export of kind should contain for the current
// selection.
func ExportSet(rec *selection.Reconciler, kind exchange.Kind) []project.Project {
	if kind == exchange.KindTasks {
		return rec.TaskExportSet()
	}
	return rec.SelectedProjects()
}

func resolveTask(projects []project.Project, ref string) (string, string, error) {
	if pid, id, ok := strings.Cut(ref, "/"); ok {
		return pid, id, nil
	}

	var owners []string
	for _, p := range projects {
		if _, ok := p.FindTask(ref); ok {
			owners = append(owners, p.ID)
		}
	}
	switch len(owners) {
	case 0:
		return "", "", fmt.Errorf("%w: %s", selection.ErrUnknownTask, ref)
	case 1:
		return owners[0], ref, nil
	default:
		return "", "", fmt.Errorf("%w: %s is used by projects %s, use PROJECT/%s", selection.ErrAmbiguousTask, ref, strings.Join(owners, ", "), ref)
	}
}
