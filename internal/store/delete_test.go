package store

import (
	"context"
	"testing"
	"time"

	"github.com/roach88/ctxlock/internal/lock"
)

func TestArchiveAndDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	l := testLock("sess-1", "spec", "1.0", "content that will be archived")
	l.Tags = []string{"keep"}
	if err := s.Insert(ctx, l); err != nil {
		t.Fatal(err)
	}

	now := time.Date(2026, 8, 3, 12, 0, 0, 0, time.UTC)
	if err := s.ArchiveAndDelete(ctx, "sess-1", "spec", "1.0", now); err != nil {
		t.Fatalf("ArchiveAndDelete() failed: %v", err)
	}

	// Live row is gone.
	if _, err := s.Get(ctx, "sess-1", "spec", "1.0"); !isErr(err, ErrNotFound) {
		t.Errorf("Get() after delete = %v, want ErrNotFound", err)
	}

	// Archived copy keeps the full row.
	archived, err := s.ListArchived(ctx, "sess-1")
	if err != nil {
		t.Fatalf("ListArchived() failed: %v", err)
	}
	if len(archived) != 1 {
		t.Fatalf("ListArchived() returned %d rows, want 1", len(archived))
	}
	got := archived[0]
	if got.Lock.Content != l.Content {
		t.Errorf("archived content = %q, want %q", got.Lock.Content, l.Content)
	}
	if got.Lock.ContentHash != l.ContentHash {
		t.Error("archived hash differs from original")
	}
	if len(got.Lock.Tags) != 1 || got.Lock.Tags[0] != "keep" {
		t.Errorf("archived tags = %v", got.Lock.Tags)
	}
	if !got.ArchivedAt.Equal(now) {
		t.Errorf("archived_at = %v, want %v", got.ArchivedAt, now)
	}
	if got.ArchiveID == "" {
		t.Error("archive_id should be assigned")
	}
}

func TestArchiveAndDelete_MissingRow(t *testing.T) {
	s := openTestStore(t)

	err := s.ArchiveAndDelete(context.Background(), "sess-1", "missing", "1.0", time.Now())
	if !isErr(err, ErrNotFound) {
		t.Errorf("ArchiveAndDelete() missing row = %v, want ErrNotFound", err)
	}
}

func TestGarbageCollect(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	old := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	cutoff := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	// Old, non-persistent reference row: collectable.
	collectable := testLock("sess-1", "scratch", "1.0", "ephemeral scratch content")
	collectable.LockedAt = old
	collectable.Persistent = false

	// Old but persistent: never collected.
	persistent := testLock("sess-1", "durable", "1.0", "persistent content stays")
	persistent.LockedAt = old

	// Old, non-persistent, but protected tier: never collected.
	protected := testLock("sess-1", "rule", "1.0", "ALWAYS keep this protected rule")
	protected.LockedAt = old
	protected.Persistent = false
	protected.Priority = lock.PriorityAlwaysCheck

	// Recent non-persistent: not old enough.
	fresh := testLock("sess-1", "recent", "1.0", "recent ephemeral content")
	fresh.LockedAt = recent
	fresh.Persistent = false

	for _, l := range []lock.ContextLock{collectable, persistent, protected, fresh} {
		if err := s.Insert(ctx, l); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := s.GarbageCollect(ctx, cutoff, time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("GarbageCollect() failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("GarbageCollect() removed %d rows, want 1", removed)
	}

	// Collected row went through the archive, not straight to oblivion.
	archived, err := s.ListArchived(ctx, "sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(archived) != 1 || archived[0].Lock.Label != "scratch" {
		t.Errorf("archive after GC = %v, want the scratch row", archived)
	}

	// Survivors are intact.
	for _, label := range []string{"durable", "rule", "recent"} {
		if _, err := s.Get(ctx, "sess-1", label, "1.0"); err != nil {
			t.Errorf("row %q should survive GC: %v", label, err)
		}
	}
}
