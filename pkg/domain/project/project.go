package project

import "time"

// Project is a unit of planned work that owns an ordered list of tasks.
type Project struct {
	ID          string        `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description" yaml:"description"`
	StartDate   time.Time     `json:"startDate" yaml:"start_date"`
	EndDate     time.Time     `json:"endDate" yaml:"end_date"`
	Status      ProjectStatus `json:"status" yaml:"status"`
	Progress    int           `json:"progress" yaml:"progress"` // 0..100
	Tasks       []Task        `json:"tasks" yaml:"tasks"`
}

// Task is a schedulable item belonging to a project.
type Task struct {
	ID               string     `json:"id" yaml:"id"`
	ProjectID        string     `json:"projectId" yaml:"project_id"`
	Name             string     `json:"name" yaml:"name"`
	Description      string     `json:"description" yaml:"description"`
	AssignedTo       []string   `json:"assignedTo" yaml:"assigned_to"`
	ResponsibleParty string     `json:"responsibleParty" yaml:"responsible_party"`
	Contacts         []string   `json:"contacts" yaml:"contacts"`
	StartDate        time.Time  `json:"startDate" yaml:"start_date"`
	DueDate          time.Time  `json:"dueDate" yaml:"due_date"`
	Duration         int        `json:"duration" yaml:"duration"` // days
	Dependencies     []string   `json:"dependencies" yaml:"dependencies"`
	Status           TaskStatus `json:"status" yaml:"status"`
	Remarks          string     `json:"remarks" yaml:"remarks"`
}

// Clone returns a deep copy of the project, including its tasks.
func (p Project) Clone() Project {
	out := p
	if p.Tasks != nil {
		out.Tasks = make([]Task, len(p.Tasks))
		for i, t := range p.Tasks {
			out.Tasks[i] = t.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	out := t
	out.AssignedTo = cloneStrings(t.AssignedTo)
	out.Contacts = cloneStrings(t.Contacts)
	out.Dependencies = cloneStrings(t.Dependencies)
	return out
}

// FindTask returns the task with the given ID and whether it exists.
func (p *Project) FindTask(id string) (*Task, bool) {
	for i := range p.Tasks {
		if p.Tasks[i].ID == id {
			return &p.Tasks[i], true
		}
	}
	return nil, false
}

// CloneAll deep-copies a slice of projects.
func CloneAll(projects []Project) []Project {
	if projects == nil {
		return nil
	}
	out := make([]Project, len(projects))
	for i, p := range projects {
		out[i] = p.Clone()
	}
	return out
}

// FlattenTasks returns every task across projects in project order, then task order.
func FlattenTasks(projects []Project) []Task {
	n := 0
	for _, p := range projects {
		n += len(p.Tasks)
	}
	tasks := make([]Task, 0, n)
	for _, p := range projects {
		tasks = append(tasks, p.Tasks...)
	}
	return tasks
}

// IndexByID maps project IDs to their position in the slice.
func IndexByID(projects []Project) map[string]int {
	idx := make(map[string]int, len(projects))
	for i, p := range projects {
		idx[p.ID] = i
	}
	return idx
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
