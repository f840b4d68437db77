// Package activity records exports and imports in a hash-chained log.
package activity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"
)

// Actions recorded in the log.
const (
	ActionExport = "export"
	ActionImport = "import"
)

// Event is a single recorded export or import.
type Event struct {
	ID        string                 `json:"id"`
	Timestamp time.Time              `json:"timestamp"`
	Action    string                 `json:"action"`
	Format    string                 `json:"format"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	PrevHash  string                 `json:"prev_hash,omitempty"` // Hash of the preceding event
	Hash      string                 `json:"hash,omitempty"`
}

// CalculateHash returns the SHA-256 of the event chained to PrevHash.
func (e *Event) CalculateHash() string {
	h := sha256.New()
	h.Write([]byte(e.PrevHash))
	h.Write([]byte(e.ID))
	h.Write([]byte(e.Timestamp.UTC().Format(time.RFC3339Nano)))
	h.Write([]byte(e.Action))
	h.Write([]byte(e.Format))
	h.Write([]byte(canonicalJSON(e.Metadata)))
	return hex.EncodeToString(h.Sum(nil))
}

// canonicalJSON renders metadata with sorted keys so a decoded event hashes
// the same as the one that was written.
func canonicalJSON(m map[string]interface{}) string {
	if len(m) == 0 {
		return ""
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ordered := make([]byte, 0, 256)
	ordered = append(ordered, '{')
	for i, k := range keys {
		if i > 0 {
			ordered = append(ordered, ',')
		}
		keyJSON, _ := json.Marshal(k)
		valJSON, _ := json.Marshal(m[k])
		ordered = append(ordered, keyJSON...)
		ordered = append(ordered, ':')
		ordered = append(ordered, valJSON...)
	}
	ordered = append(ordered, '}')

	return string(ordered)
}

// Logger records activity. Services depend on this rather than on the store.
type Logger interface {
	Log(ctx context.Context, action, format string, metadata map[string]interface{}) error
}

// Repository persists the log in append order.
type Repository interface {
	RecordEvent(ctx context.Context, event Event) error
	LoadEvents(ctx context.Context) ([]Event, error)
}

// Sink receives every recorded event, e.g. to forward it to webhooks.
type Sink interface {
	Publish(ctx context.Context, event Event)
}
