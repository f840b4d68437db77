// Package selection keeps project and task checkbox selection consistent.
//
// Checking a task always checks its project; unchecking a project unchecks all
// of its tasks; a project may stay checked with no task checked.
package selection

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/taskport/pkg/domain/project"
)

var (
	// ErrUnknownProject indicates the project is not part of the selectable population.
	ErrUnknownProject = errors.New("unknown project")

	// ErrUnknownTask indicates the task does not belong to the given project.
	ErrUnknownTask = errors.New("unknown task")

	// ErrAmbiguousTask indicates a bare task ID is used by more than one project.
	ErrAmbiguousTask = errors.New("ambiguous task")
)

// Task IDs are unique only within their project.
type taskKey struct {
	projectID string
	taskID    string
}

// Reconciler holds selection state over a fixed population of projects.
// It is not safe for concurrent use.
type Reconciler struct {
	projects []project.Project
	index    map[string]int
	machines map[string]*projectMachine
	tasks    map[taskKey]struct{}
}

// New creates a Reconciler with nothing selected.
func New(projects []project.Project) (*Reconciler, error) {
	r := &Reconciler{
		projects: project.CloneAll(projects),
		index:    project.IndexByID(projects),
		machines: make(map[string]*projectMachine, len(projects)),
		tasks:    make(map[taskKey]struct{}),
	}
	for _, p := range projects {
		m, err := newProjectMachine(p.ID)
		if err != nil {
			return nil, err
		}
		r.machines[p.ID] = m
	}
	return r, nil
}

// Projects returns the selectable population.
func (r *Reconciler) Projects() []project.Project {
	return r.projects
}

// ToggleProject checks or unchecks a project. Unchecking also unchecks every
// task of the project; checking does not check any task.
func (r *Reconciler) ToggleProject(id string, checked bool) error {
	m, ok := r.machines[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProject, id)
	}

	if checked {
		m.send(EventCheck)
		return nil
	}

	m.send(EventUncheck)
	for _, t := range r.projects[r.index[id]].Tasks {
		delete(r.tasks, taskKey{id, t.ID})
	}
	return nil
}

// ToggleTask checks or unchecks a task. Checking promotes the parent project to
// selected; unchecking leaves the project selected.
func (r *Reconciler) ToggleTask(id, projectID string, checked bool) error {
	m, ok := r.machines[projectID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProject, projectID)
	}
	p := &r.projects[r.index[projectID]]
	if _, ok := p.FindTask(id); !ok {
		return fmt.Errorf("%w: %s in project %s", ErrUnknownTask, id, projectID)
	}

	if checked {
		r.tasks[taskKey{projectID, id}] = struct{}{}
		m.send(EventTaskChecked)
		return nil
	}

	delete(r.tasks, taskKey{projectID, id})
	if r.countSelected(p) == 0 {
		m.send(EventTasksCleared)
	}
	return nil
}

// SelectAll checks every project and every task.
func (r *Reconciler) SelectAll() {
	for _, p := range r.projects {
		m := r.machines[p.ID]
		if len(p.Tasks) == 0 {
			m.send(EventCheck)
			continue
		}
		for _, t := range p.Tasks {
			r.tasks[taskKey{p.ID, t.ID}] = struct{}{}
		}
		m.send(EventTaskChecked)
	}
}

// DeselectAll clears the whole selection.
func (r *Reconciler) DeselectAll() {
	for _, m := range r.machines {
		m.send(EventUncheck)
	}
	r.tasks = make(map[taskKey]struct{})
}

// IsProjectSelected reports whether the project is checked.
func (r *Reconciler) IsProjectSelected(id string) bool {
	m, ok := r.machines[id]
	return ok && m.selected()
}

// IsTaskSelected reports whether task id of project projectID is checked.
func (r *Reconciler) IsTaskSelected(id, projectID string) bool {
	_, ok := r.tasks[taskKey{projectID, id}]
	return ok
}

// ProjectState returns the project's machine state, or "" for unknown projects.
func (r *Reconciler) ProjectState(id string) string {
	m, ok := r.machines[id]
	if !ok {
		return ""
	}
	return m.current()
}

// SelectedProjectIDs returns checked project IDs in population order.
func (r *Reconciler) SelectedProjectIDs() []string {
	ids := []string{}
	for _, p := range r.projects {
		if r.machines[p.ID].selected() {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// SelectedTaskIDs returns checked task IDs in population order. An ID shared
// by two projects appears once per project it is checked in.
func (r *Reconciler) SelectedTaskIDs() []string {
	ids := []string{}
	for _, p := range r.projects {
		for _, t := range p.Tasks {
			if r.IsTaskSelected(t.ID, p.ID) {
				ids = append(ids, t.ID)
			}
		}
	}
	return ids
}

// SelectedTaskCount returns how many tasks are checked.
func (r *Reconciler) SelectedTaskCount() int {
	return len(r.tasks)
}

// SelectedProjects returns copies of the checked projects with their full task
// lists. Task selection does not prune them.
func (r *Reconciler) SelectedProjects() []project.Project {
	out := []project.Project{}
	for _, p := range r.projects {
		if r.machines[p.ID].selected() {
			out = append(out, p.Clone())
		}
	}
	return out
}

// TaskExportSet returns the checked projects for a task-level export. A project
// with checked tasks is narrowed to those tasks; a project checked on its own
// keeps all of its tasks.
func (r *Reconciler) TaskExportSet() []project.Project {
	out := []project.Project{}
	for _, p := range r.projects {
		m := r.machines[p.ID]
		if !m.selected() {
			continue
		}
		c := p.Clone()
		if m.current() == StateWithTasks {
			kept := make([]project.Task, 0, len(c.Tasks))
			for _, t := range c.Tasks {
				if r.IsTaskSelected(t.ID, p.ID) {
					kept = append(kept, t)
				}
			}
			c.Tasks = kept
		}
		out = append(out, c)
	}
	return out
}

func (r *Reconciler) countSelected(p *project.Project) int {
	n := 0
	for _, t := range p.Tasks {
		if r.IsTaskSelected(t.ID, p.ID) {
			n++
		}
	}
	return n
}
