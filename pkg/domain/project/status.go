package project

import "fmt"

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectOnHold    ProjectStatus = "on-hold"
	ProjectCancelled ProjectStatus = "cancelled"
)

// AllProjectStatuses returns all valid project statuses.
func AllProjectStatuses() []ProjectStatus {
	return []ProjectStatus{
		ProjectActive,
		ProjectCompleted,
		ProjectOnHold,
		ProjectCancelled,
	}
}

// IsValid returns true if the status is a valid project status.
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectActive, ProjectCompleted, ProjectOnHold, ProjectCancelled:
		return true
	default:
		return false
	}
}

func (s ProjectStatus) String() string {
	return string(s)
}

// DisplayName returns a human-readable display name for the status.
func (s ProjectStatus) DisplayName() string {
	switch s {
	case ProjectActive:
		return "Active"
	case ProjectCompleted:
		return "Completed"
	case ProjectOnHold:
		return "On Hold"
	case ProjectCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// ParseProjectStatus parses a string into a ProjectStatus.
func ParseProjectStatus(s string) (ProjectStatus, error) {
	status := ProjectStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid project status: %s", s)
	}
	return status, nil
}

type TaskStatus string

const (
	TaskNotStarted TaskStatus = "not-started"
	TaskInProgress TaskStatus = "in-progress"
	TaskCompleted  TaskStatus = "completed"
	TaskDelayed    TaskStatus = "delayed"
	TaskOnHold     TaskStatus = "on-hold"
	TaskCancelled  TaskStatus = "cancelled"
)

// AllTaskStatuses returns all valid task statuses.
func AllTaskStatuses() []TaskStatus {
	return []TaskStatus{
		TaskNotStarted,
		TaskInProgress,
		TaskCompleted,
		TaskDelayed,
		TaskOnHold,
		TaskCancelled,
	}
}

// IsValid returns true if the status is a valid task status.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskNotStarted, TaskInProgress, TaskCompleted, TaskDelayed, TaskOnHold, TaskCancelled:
		return true
	default:
		return false
	}
}

func (s TaskStatus) String() string {
	return string(s)
}

// IsComplete returns true if no further work is expected on the task.
func (s TaskStatus) IsComplete() bool {
	return s == TaskCompleted || s == TaskCancelled
}

// DisplayName returns a human-readable display name for the status.
func (s TaskStatus) DisplayName() string {
	switch s {
	case TaskNotStarted:
		return "Not Started"
	case TaskInProgress:
		return "In Progress"
	case TaskCompleted:
		return "Completed"
	case TaskDelayed:
		return "Delayed"
	case TaskOnHold:
		return "On Hold"
	case TaskCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// ParseTaskStatus parses a string into a TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid task status: %s", s)
	}
	return status, nil
}
