package webhook

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDeadLetterStore_AppendAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deadletters.jsonl")
	store := NewDeadLetterStore(path)

	dl := DeadLetter{
		Timestamp:   time.Now(),
		WebhookName: "test",
		URL:         "https://example.com/hook",
		EventType:   "export",
		EventID:     "e1",
		Payload:     `{"event_type":"export"}`,
		Error:       "connection refused",
		Attempts:    3,
	}

	if err := store.Append(dl); err != nil {
		t.Fatal(err)
	}

	entries, err := store.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].WebhookName != "test" {
		t.Errorf("expected webhook name test, got %s", entries[0].WebhookName)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("dead letter file mode = %v", info.Mode().Perm())
	}
}

func TestDeadLetterStore_ReadAll_MissingFile(t *testing.T) {
	store := NewDeadLetterStore(filepath.Join(t.TempDir(), "nonexistent.jsonl"))

	entries, err := store.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if entries != nil {
		t.Errorf("expected nil entries for missing file, got %v", entries)
	}
}

func TestDeadLetterStore_ReadAll_StopsAtTornLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deadletters.jsonl")
	store := NewDeadLetterStore(path)
	if err := store.Append(DeadLetter{WebhookName: "a"}); err != nil {
		t.Fatal(err)
	}
	f, _ := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0600)
	_, _ = f.WriteString(`{"webhook_name": "b`)
	_ = f.Close()

	entries, err := store.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].WebhookName != "a" {
		t.Errorf("unexpected entries %+v", entries)
	}
}
