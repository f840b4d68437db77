package application_test

import (
	"bytes"
	"context"
	"time"

	"github.com/felixgeelhaar/taskport/pkg/domain/activity"
	"github.com/felixgeelhaar/taskport/pkg/domain/project"
)

type MockRepo struct {
	Projects  []project.Project
	Saved     []project.Project
	SaveCount int
	SaveError error
	LoadError error
}

func (m *MockRepo) Load(ctx context.Context) ([]project.Project, error) {
	return project.CloneAll(m.Projects), m.LoadError
}

func (m *MockRepo) Save(ctx context.Context, projects []project.Project) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.SaveCount++
	m.Saved = project.CloneAll(projects)
	m.Projects = project.CloneAll(projects)
	return nil
}

type MockDownloader struct {
	Filename string
	MIMEType string
	Content  bytes.Buffer
	Calls    int
	Err      error
}

func (m *MockDownloader) Download(ctx context.Context, content []byte, filename, mimeType string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Calls++
	m.Filename = filename
	m.MIMEType = mimeType
	m.Content.Reset()
	m.Content.Write(content)
	return nil
}

type MockEventRepo struct {
	Events      []activity.Event
	RecordError error
	LoadError   error
}

func (m *MockEventRepo) RecordEvent(ctx context.Context, event activity.Event) error {
	if m.RecordError != nil {
		return m.RecordError
	}
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockEventRepo) LoadEvents(ctx context.Context) ([]activity.Event, error) {
	return append([]activity.Event(nil), m.Events...), m.LoadError
}

type MockSink struct {
	Published []activity.Event
}

func (m *MockSink) Publish(ctx context.Context, event activity.Event) {
	m.Published = append(m.Published, event)
}

var fixedNow = time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleProjects() []project.Project {
	return []project.Project{
		{
			ID: "p1", Name: "Website", StartDate: day(2025, 6, 1), EndDate: day(2025, 9, 30),
			Status: project.ProjectActive, Progress: 40,
			Tasks: []project.Task{
				{ID: "t1", ProjectID: "p1", Name: "Design", AssignedTo: []string{"alice"}, Contacts: []string{}, Dependencies: []string{},
					StartDate: day(2025, 6, 2), DueDate: day(2025, 6, 20), Duration: 18, Status: project.TaskInProgress},
				{ID: "t2", ProjectID: "p1", Name: "Build", AssignedTo: []string{}, Contacts: []string{}, Dependencies: []string{"t1"},
					StartDate: day(2025, 6, 21), DueDate: day(2025, 7, 15), Duration: 24, Status: project.TaskNotStarted},
			},
		},
		{
			ID: "p2", Name: "Office", StartDate: day(2025, 8, 1), EndDate: day(2025, 8, 31),
			Status: project.ProjectOnHold, Tasks: []project.Task{},
		},
	}
}
