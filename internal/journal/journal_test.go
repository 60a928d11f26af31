package journal

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func TestRecordAndListNewestFirst(t *testing.T) {
	j, cleanup := newTestJournal(t)
	defer cleanup()

	ctx := context.Background()
	for _, name := range []string{"first", "second", "third"} {
		if _, err := j.Record(ctx, Entry{
			Mode:     "insert",
			TaskName: name,
			RawCode:  "1",
			Outcome:  "success(insert)",
			Message:  "insert succeeded",
		}); err != nil {
			t.Fatalf("record %s: %v", name, err)
		}
	}

	entries, err := j.List(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].TaskName != "third" || entries[1].TaskName != "second" {
		t.Fatalf("expected newest first, got %q then %q", entries[0].TaskName, entries[1].TaskName)
	}
	if entries[0].CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set")
	}
}

func TestRecordKeepsErrorText(t *testing.T) {
	j, cleanup := newTestJournal(t)
	defer cleanup()

	created, err := j.Record(context.Background(), Entry{
		Mode:     "update",
		TaskID:   7,
		TaskName: "Restock",
		RawCode:  "9",
		Outcome:  "error(unrecognized)",
		Message:  `ERROR: unrecognized status "9"`,
		Error:    "unrecognized status code",
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected id to be set")
	}
	if created.Error != "unrecognized status code" {
		t.Fatalf("expected error text to round trip, got %q", created.Error)
	}
	if !strings.Contains(created.Summary(), "#7 Restock") {
		t.Fatalf("expected summary to name the task, got %q", created.Summary())
	}
}

func TestOpenIsIdempotentOnExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	first, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := New(first).Record(context.Background(), Entry{Mode: "insert", TaskName: "kept", RawCode: "1", Outcome: "success(insert)", Message: "insert succeeded"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	_ = first.Close()

	second, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	entries, err := New(second).List(context.Background(), 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0].TaskName != "kept" {
		t.Fatalf("expected persisted entry, got %+v", entries)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func newTestJournal(t *testing.T) (*Journal, func()) {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	return New(db), func() {
		_ = db.Close()
	}
}
