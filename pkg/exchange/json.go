package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/felixgeelhaar/taskport/pkg/domain/project"
	"github.com/xeipuuv/gojsonschema"
)

// EnvelopeVersion is written to every JSON export. Imports reject other major versions.
const EnvelopeVersion = "1.0"

const envelopeSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["projects"],
  "properties": {
    "projects": {
      "type": "array",
      "items": { "type": "object" }
    },
    "tasks": {
      "type": ["array", "null"],
      "items": { "type": "object" }
    },
    "exportDate": { "type": "string" },
    "version": { "type": "string" }
  }
}`

var envelopeSchemaLoader = gojsonschema.NewStringLoader(envelopeSchemaJSON)

type jsonEnvelope struct {
	Projects   []jsonProject `json:"projects"`
	Tasks      []jsonTask    `json:"tasks"`
	ExportDate string        `json:"exportDate"`
	Version    string        `json:"version"`
}

type jsonProject struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	StartDate   string     `json:"startDate"`
	EndDate     string     `json:"endDate"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	Tasks       []jsonTask `json:"tasks"`
}

type jsonTask struct {
	ID               string   `json:"id"`
	ProjectID        string   `json:"projectId"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	AssignedTo       []string `json:"assignedTo"`
	ResponsibleParty string   `json:"responsibleParty"`
	Contacts         []string `json:"contacts"`
	StartDate        string   `json:"startDate"`
	DueDate          string   `json:"dueDate"`
	Duration         int      `json:"duration"`
	Dependencies     []string `json:"dependencies"`
	Status           string   `json:"status"`
	Remarks          string   `json:"remarks"`
}

// JSONCodec reads and writes the full {projects, tasks, exportDate, version} envelope.
type JSONCodec struct{}

func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Encode ignores kind: the envelope always carries projects and the flattened tasks.
func (c *JSONCodec) Encode(ctx context.Context, projects []project.Project, _ Kind, at time.Time) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	env := jsonEnvelope{
		Projects:   make([]jsonProject, 0, len(projects)),
		Tasks:      []jsonTask{},
		ExportDate: at.UTC().Format(time.RFC3339Nano),
		Version:    EnvelopeVersion,
	}
	for _, p := range projects {
		env.Projects = append(env.Projects, toJSONProject(p))
	}
	for _, t := range project.FlattenTasks(projects) {
		env.Tasks = append(env.Tasks, toJSONTask(t))
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export envelope: %w", err)
	}
	return data, nil
}

// Decode parses an envelope. Unparseable dates fail the whole import.
func (c *JSONCodec) Decode(ctx context.Context, r io.Reader) (*Envelope, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read json import: %w", err)
	}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &project.ParseError{Format: string(FormatJSON), Err: err}
	}

	result, err := gojsonschema.Validate(envelopeSchemaLoader, gojsonschema.NewGoLoader(raw))
	if err != nil {
		return nil, &project.ParseError{Format: string(FormatJSON), Err: err}
	}
	if !result.Valid() {
		first := result.Errors()[0]
		return nil, &project.ValidationError{
			Format: string(FormatJSON),
			Field:  first.Field(),
			Reason: first.Description(),
		}
	}

	var wire jsonEnvelope
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&wire); err != nil {
		return nil, &project.ParseError{Format: string(FormatJSON), Err: err}
	}

	if wire.Version != "" && majorVersion(wire.Version) != majorVersion(EnvelopeVersion) {
		return nil, &project.ValidationError{
			Format: string(FormatJSON),
			Field:  "version",
			Reason: fmt.Sprintf("unsupported envelope version %s (expected %s)", wire.Version, EnvelopeVersion),
		}
	}

	env := &Envelope{
		Projects: make([]project.Project, 0, len(wire.Projects)),
		Tasks:    make([]project.Task, 0, len(wire.Tasks)),
		Version:  wire.Version,
	}
	if env.ExportDate, err = parseField(wire.ExportDate, "exportDate", "envelope"); err != nil {
		return nil, err
	}
	for i, jp := range wire.Projects {
		p, err := fromJSONProject(jp, i)
		if err != nil {
			return nil, err
		}
		env.Projects = append(env.Projects, p)
	}
	for i, jt := range wire.Tasks {
		t, err := fromJSONTask(jt, fmt.Sprintf("tasks[%d]", i))
		if err != nil {
			return nil, err
		}
		env.Tasks = append(env.Tasks, t)
	}
	return env, nil
}

func toJSONProject(p project.Project) jsonProject {
	jp := jsonProject{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		StartDate:   isoTimestamp(p.StartDate),
		EndDate:     isoTimestamp(p.EndDate),
		Status:      string(p.Status),
		Progress:    p.Progress,
		Tasks:       make([]jsonTask, 0, len(p.Tasks)),
	}
	for _, t := range p.Tasks {
		jp.Tasks = append(jp.Tasks, toJSONTask(t))
	}
	return jp
}

func toJSONTask(t project.Task) jsonTask {
	return jsonTask{
		ID:               t.ID,
		ProjectID:        t.ProjectID,
		Name:             t.Name,
		Description:      t.Description,
		AssignedTo:       nonNil(t.AssignedTo),
		ResponsibleParty: t.ResponsibleParty,
		Contacts:         nonNil(t.Contacts),
		StartDate:        isoTimestamp(t.StartDate),
		DueDate:          isoTimestamp(t.DueDate),
		Duration:         t.Duration,
		Dependencies:     nonNil(t.Dependencies),
		Status:           string(t.Status),
		Remarks:          t.Remarks,
	}
}

func fromJSONProject(jp jsonProject, i int) (project.Project, error) {
	record := fmt.Sprintf("projects[%d]", i)
	if jp.ID != "" {
		record = "project " + jp.ID
	}

	p := project.Project{
		ID:          jp.ID,
		Name:        jp.Name,
		Description: jp.Description,
		Status:      project.ProjectStatus(jp.Status),
		Progress:    jp.Progress,
		Tasks:       make([]project.Task, 0, len(jp.Tasks)),
	}
	var err error
	if p.StartDate, err = parseField(jp.StartDate, "startDate", record); err != nil {
		return project.Project{}, err
	}
	if p.EndDate, err = parseField(jp.EndDate, "endDate", record); err != nil {
		return project.Project{}, err
	}
	for j, jt := range jp.Tasks {
		t, err := fromJSONTask(jt, fmt.Sprintf("%s tasks[%d]", record, j))
		if err != nil {
			return project.Project{}, err
		}
		p.Tasks = append(p.Tasks, t)
	}
	return p, nil
}

func fromJSONTask(jt jsonTask, fallbackRecord string) (project.Task, error) {
	record := fallbackRecord
	if jt.ID != "" {
		record = "task " + jt.ID
	}

	t := project.Task{
		ID:               jt.ID,
		ProjectID:        jt.ProjectID,
		Name:             jt.Name,
		Description:      jt.Description,
		AssignedTo:       nonNil(jt.AssignedTo),
		ResponsibleParty: jt.ResponsibleParty,
		Contacts:         nonNil(jt.Contacts),
		Duration:         jt.Duration,
		Dependencies:     nonNil(jt.Dependencies),
		Status:           project.TaskStatus(jt.Status),
		Remarks:          jt.Remarks,
	}
	var err error
	if t.StartDate, err = parseField(jt.StartDate, "startDate", record); err != nil {
		return project.Task{}, err
	}
	if t.DueDate, err = parseField(jt.DueDate, "dueDate", record); err != nil {
		return project.Task{}, err
	}
	return t, nil
}

func parseField(value, field, record string) (time.Time, error) {
	t, err := ParseDate(value)
	if err != nil {
		return time.Time{}, &project.ParseError{Format: string(FormatJSON), Field: field, Record: record, Err: err}
	}
	return t, nil
}

func isoTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func majorVersion(v string) string {
	major, _, _ := strings.Cut(strings.TrimPrefix(v, "v"), ".")
	return major
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
