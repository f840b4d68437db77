package application

import (
	"strings"
	"time"

	"github.com/felixgeelhaar/taskport/pkg/domain/project"
	"github.com/felixgeelhaar/taskport/pkg/exchange"
	"github.com/google/uuid"
)

// Defaults applied to imported records. Every other field is kept as decoded.
//
//	project.ID        new UUID when empty
//	project.Name      "Untitled Project" when blank
//	project.Status    active when missing or unknown
//	project.StartDate import time when missing
//	project.EndDate   StartDate when missing
//	project.Progress  clamped to 0..100
//	task.ID           new UUID when empty
//	task.Name         "Untitled Task" when blank
//	task.Status       not-started when missing or unknown
//	task.StartDate    import time when missing
//	task.DueDate      StartDate when missing
//	task.Duration     1 when below 1
//	task lists        [] when nil
const (
	DefaultProjectName = "Untitled Project"
	DefaultTaskName    = "Untitled Task"
)

// MergeResult is the merged collection plus what the import changed.
type MergeResult struct {
	Projects        []project.Project
	ProjectsAdded   int
	ProjectsUpdated int
	TasksAdded      int
	TasksUpdated    int
	// Orphans are imported tasks whose project is not in the merged set.
	// They are dropped from Projects.
	Orphans []project.Task
}

// ImportMerger fills defaults on imported records and upserts them into an
// existing collection.
type ImportMerger struct {
	now   func() time.Time
	newID func() string
}

// MergerOption configures an ImportMerger.
type MergerOption func(*ImportMerger)

// WithMergeClock sets the time used for missing dates.
func WithMergeClock(now func() time.Time) MergerOption {
	return func(m *ImportMerger) { m.now = now }
}

// WithIDGenerator sets the generator used for missing IDs.
func WithIDGenerator(newID func() string) MergerOption {
	return func(m *ImportMerger) { m.newID = newID }
}

func NewImportMerger(opts ...MergerOption) *ImportMerger {
	m := &ImportMerger{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Normalize returns a copy of p with defaults applied to it and its tasks.
// Nested tasks are re-parented to p.
func (m *ImportMerger) Normalize(p project.Project, now time.Time) project.Project {
	out := p.Clone()
	if strings.TrimSpace(out.ID) == "" {
		out.ID = m.newID()
	}
	if strings.TrimSpace(out.Name) == "" {
		out.Name = DefaultProjectName
	}
	if !out.Status.IsValid() {
		out.Status = project.ProjectActive
	}
	if out.StartDate.IsZero() {
		out.StartDate = now
	}
	if out.EndDate.IsZero() {
		out.EndDate = out.StartDate
	}
	switch {
	case out.Progress < 0:
		out.Progress = 0
	case out.Progress > 100:
		out.Progress = 100
	}

	tasks := make([]project.Task, 0, len(out.Tasks))
	for _, t := range out.Tasks {
		t.ProjectID = out.ID
		tasks = append(tasks, m.NormalizeTask(t, now))
	}
	out.Tasks = tasks
	return out
}

// NormalizeTask returns a copy of t with defaults applied.
func (m *ImportMerger) NormalizeTask(t project.Task, now time.Time) project.Task {
	out := t.Clone()
	if strings.TrimSpace(out.ID) == "" {
		out.ID = m.newID()
	}
	if strings.TrimSpace(out.Name) == "" {
		out.Name = DefaultTaskName
	}
	if !out.Status.IsValid() {
		out.Status = project.TaskNotStarted
	}
	if out.StartDate.IsZero() {
		out.StartDate = now
	}
	if out.DueDate.IsZero() {
		out.DueDate = out.StartDate
	}
	if out.Duration < 1 {
		out.Duration = 1
	}
	if out.AssignedTo == nil {
		out.AssignedTo = []string{}
	}
	if out.Contacts == nil {
		out.Contacts = []string{}
	}
	if out.Dependencies == nil {
		out.Dependencies = []string{}
	}
	return out
}

type taskKey struct {
	projectID string
	taskID    string
}

// Merge upserts an import batch into existing. Projects are matched by ID and
// keep their stored tasks; imported tasks are matched by (project ID, task ID).
// Flat tasks attach to the project their ProjectID names. Neither input is
// modified.
func (m *ImportMerger) Merge(existing []project.Project, batch *exchange.Envelope) MergeResult {
	merged := project.CloneAll(existing)
	if merged == nil {
		merged = []project.Project{}
	}
	res := MergeResult{Orphans: []project.Task{}}
	if batch == nil {
		res.Projects = merged
		return res
	}

	now := m.now()
	index := project.IndexByID(merged)
	stored := make(map[taskKey]bool)
	for _, p := range merged {
		for _, t := range p.Tasks {
			stored[taskKey{p.ID, t.ID}] = true
		}
	}
	seen := make(map[taskKey]bool)
	counted := make(map[string]bool)

	upsertTask := func(p *project.Project, t project.Task) {
		key := taskKey{p.ID, t.ID}
		if cur, ok := p.FindTask(t.ID); ok {
			*cur = t
		} else {
			p.Tasks = append(p.Tasks, t)
		}
		if seen[key] {
			return
		}
		seen[key] = true
		if stored[key] {
			res.TasksUpdated++
		} else {
			res.TasksAdded++
		}
	}

	for _, raw := range batch.Projects {
		p := m.Normalize(raw, now)
		incoming := p.Tasks

		if i, ok := index[p.ID]; ok {
			p.Tasks = merged[i].Tasks
			if p.Tasks == nil {
				p.Tasks = []project.Task{}
			}
			merged[i] = p
			if !counted[p.ID] {
				res.ProjectsUpdated++
			}
		} else {
			p.Tasks = []project.Task{}
			index[p.ID] = len(merged)
			merged = append(merged, p)
			res.ProjectsAdded++
		}
		counted[p.ID] = true

		target := &merged[index[p.ID]]
		for _, t := range incoming {
			upsertTask(target, t)
		}
	}

	for _, raw := range batch.Tasks {
		t := m.NormalizeTask(raw, now)
		i, ok := index[t.ProjectID]
		if !ok || strings.TrimSpace(t.ProjectID) == "" {
			res.Orphans = append(res.Orphans, t)
			continue
		}
		upsertTask(&merged[i], t)
	}

	res.Projects = merged
	return res
}
