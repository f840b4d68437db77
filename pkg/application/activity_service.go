package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/taskport/pkg/domain/activity"
	"github.com/google/uuid"
)

// ActivityService appends exports and imports to the hash-chained activity
// log and forwards each recorded event to its sinks.
type ActivityService struct {
	repo  activity.Repository
	sinks []activity.Sink
	now   func() time.Time
	newID func() string
	mu    sync.Mutex
}

// Compile-time check that ActivityService implements activity.Logger
var _ activity.Logger = (*ActivityService)(nil)

func NewActivityService(repo activity.Repository, sinks ...activity.Sink) *ActivityService {
	return &ActivityService{
		repo:  repo,
		sinks: sinks,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// SetClock overrides the event timestamp source.
func (s *ActivityService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *ActivityService) Log(ctx context.Context, action, format string, metadata map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.repo.LoadEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to load activity: %w", err)
	}
	prevHash := ""
	if len(events) > 0 {
		prevHash = events[len(events)-1].Hash
	}

	event := activity.Event{
		ID:        s.newID(),
		Timestamp: s.now().UTC(),
		Action:    action,
		Format:    format,
		Metadata:  metadata,
		PrevHash:  prevHash,
	}
	event.Hash = event.CalculateHash()

	if err := s.repo.RecordEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	for _, sink := range s.sinks {
		sink.Publish(ctx, event)
	}
	return nil
}

// Timeline returns the log, oldest first.
func (s *ActivityService) Timeline(ctx context.Context) ([]activity.Event, error) {
	return s.repo.LoadEvents(ctx)
}

// VerifyIntegrity walks the chain and describes every broken link or altered
// event.
func (s *ActivityService) VerifyIntegrity(ctx context.Context) ([]string, error) {
	events, err := s.repo.LoadEvents(ctx)
	if err != nil {
		return nil, err
	}

	var violations []string
	lastHash := ""
	for i, e := range events {
		if e.PrevHash != lastHash {
			violations = append(violations, fmt.Sprintf("event %d (%s): previous hash mismatch, chain broken", i, e.ID))
		}
		if e.Hash != e.CalculateHash() {
			violations = append(violations, fmt.Sprintf("event %d (%s): content hash mismatch, event altered", i, e.ID))
		}
		lastHash = e.Hash
	}
	return violations, nil
}
