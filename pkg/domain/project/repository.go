package project

import "context"

// Repository persists the project collection as a whole snapshot.
type Repository interface {
	Load(ctx context.Context) ([]Project, error)
	Save(ctx context.Context, projects []Project) error
}
