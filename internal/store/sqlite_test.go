package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jobscout-za/jobscout/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMarkSeenThenHasSeen(t *testing.T) {
	s := newTestStore(t)

	if err := s.MarkSeen("fp-123"); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}

	seen, err := s.HasSeen("fp-123")
	if err != nil {
		t.Fatalf("HasSeen: %v", err)
	}
	if !seen {
		t.Error("expected HasSeen to return true after MarkSeen")
	}
}

func TestHasSeenUnknownReturnsFalse(t *testing.T) {
	s := newTestStore(t)

	seen, err := s.HasSeen("does-not-exist")
	if err != nil {
		t.Fatalf("HasSeen: %v", err)
	}
	if seen {
		t.Error("expected HasSeen to return false for unknown fingerprint")
	}
}

func TestMarkSeenIdempotent(t *testing.T) {
	s := newTestStore(t)

	if err := s.MarkSeen("fp-456"); err != nil {
		t.Fatalf("first MarkSeen: %v", err)
	}
	if err := s.MarkSeen("fp-456"); err != nil {
		t.Fatalf("second MarkSeen (duplicate): %v", err)
	}

	seen, err := s.HasSeen("fp-456")
	if err != nil {
		t.Fatalf("HasSeen: %v", err)
	}
	if !seen {
		t.Error("expected HasSeen to return true after duplicate MarkSeen")
	}
}

func TestIsEmpty(t *testing.T) {
	s := newTestStore(t)

	empty, err := s.IsEmpty()
	if err != nil {
		t.Fatalf("IsEmpty: %v", err)
	}
	if !empty {
		t.Error("new store should be empty")
	}

	if err := s.MarkSeen("fp"); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}
	if empty, _ := s.IsEmpty(); empty {
		t.Error("store should not be empty after MarkSeen")
	}
}

func TestCleanupRemovesOldKeepsFresh(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	// Insert an "old" entry by pinning the clock in the past.
	s.now = func() time.Time { return now.Add(-48 * time.Hour) }
	if err := s.MarkSeen("old-fp"); err != nil {
		t.Fatalf("MarkSeen old: %v", err)
	}
	if err := s.RecordRun(model.SearchRun{Search: "old-run", Region: "gauteng", Location: "gauteng"}); err != nil {
		t.Fatalf("RecordRun old: %v", err)
	}

	s.now = func() time.Time { return now }
	if err := s.MarkSeen("fresh-fp"); err != nil {
		t.Fatalf("MarkSeen fresh: %v", err)
	}

	// Cleanup anything older than 24 hours.
	if err := s.Cleanup(24 * time.Hour); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}

	if seen, _ := s.HasSeen("old-fp"); seen {
		t.Error("expected old fingerprint to be cleaned up")
	}
	if seen, _ := s.HasSeen("fresh-fp"); !seen {
		t.Error("expected fresh fingerprint to survive cleanup")
	}
	runs, err := s.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected old run to be cleaned up, got %+v", runs)
	}
}

func TestRecordRun_AssignsIDAndOrdersNewestFirst(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	for i, name := range []string{"first", "second", "third"} {
		run := model.SearchRun{
			Search:   name,
			Region:   "gauteng",
			Location: "sandton",
			Listings: i + 1,
			New:      i,
			Failures: 1,
			RanAt:    base.Add(time.Duration(i) * time.Hour),
		}
		if err := s.RecordRun(run); err != nil {
			t.Fatalf("RecordRun %s: %v", name, err)
		}
	}

	runs, err := s.RecentRuns(2)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].Search != "third" || runs[1].Search != "second" {
		t.Errorf("order = %s, %s; want third, second", runs[0].Search, runs[1].Search)
	}
	if runs[0].ID == "" || runs[0].ID == runs[1].ID {
		t.Errorf("expected distinct generated IDs, got %q and %q", runs[0].ID, runs[1].ID)
	}
	if !runs[0].RanAt.Equal(base.Add(2*time.Hour)) {
		t.Errorf("RanAt = %v", runs[0].RanAt)
	}
	if runs[0].Listings != 3 || runs[0].New != 2 || runs[0].Failures != 1 || runs[0].Location != "sandton" {
		t.Errorf("run fields = %+v", runs[0])
	}
}

func TestNopStore(t *testing.T) {
	s := NewNopStore()
	if err := s.MarkSeen("x"); err != nil {
		t.Fatal(err)
	}
	if seen, _ := s.HasSeen("x"); seen {
		t.Error("NopStore should never report seen")
	}
	if empty, _ := s.IsEmpty(); empty {
		t.Error("NopStore should never report empty")
	}
}
