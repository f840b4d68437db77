package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/taskport/pkg/application"
	"github.com/felixgeelhaar/taskport/pkg/exchange"
)

func TestBackupService_Run(t *testing.T) {
	d := &MockDownloader{}
	repo := &MockRepo{Projects: sampleProjects()}
	svc := application.NewBackupService(repo, newExchange(d), exchange.FormatCSV, "", nil)

	a, err := svc.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if a.Filename != "projects-export-2025-06-15.csv" || d.Filename != a.Filename {
		t.Errorf("unexpected artifact %s / download %s", a.Filename, d.Filename)
	}
	if d.Calls != 1 {
		t.Errorf("expected one download, got %d", d.Calls)
	}
}

func TestBackupService_LoadError(t *testing.T) {
	boom := errors.New("store offline")
	d := &MockDownloader{}
	svc := application.NewBackupService(&MockRepo{LoadError: boom}, newExchange(d), exchange.FormatJSON, exchange.KindProjects, nil)

	if _, err := svc.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected load error, got %v", err)
	}
	if d.Calls != 0 {
		t.Error("nothing should be downloaded")
	}
}
