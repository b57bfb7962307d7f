package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/ctxlock/internal/lock"
)

// Insert writes a new lock row.
//
// Uses ON CONFLICT(session_id, label, version) DO NOTHING and checks
// rows-affected: a conflict surfaces as ErrDuplicate rather than a
// driver error. The UNIQUE constraint - not in-process locking - is
// what serializes racing version allocations.
func (s *Store) Insert(ctx context.Context, l lock.ContextLock) error {
	tagsJSON, err := marshalStrings(l.Tags)
	if err != nil {
		return fmt.Errorf("insert lock: %w", err)
	}

	conceptsJSON, err := marshalStrings(l.KeyConcepts)
	if err != nil {
		return fmt.Errorf("insert lock: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO locks
		(session_id, label, version, content, content_hash, locked_at,
		 priority, tags, preview, key_concepts, parent_version, persistent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, label, version) DO NOTHING
	`,
		l.SessionID,
		l.Label,
		l.Version,
		l.Content,
		l.ContentHash,
		formatTime(l.LockedAt),
		string(l.Priority),
		tagsJSON,
		l.Preview,
		conceptsJSON,
		nullString(l.ParentVersion),
		l.Persistent,
	)
	if err != nil {
		return fmt.Errorf("insert lock: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert lock: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("insert lock %s/%s@%s: %w", l.SessionID, l.Label, l.Version, ErrDuplicate)
	}

	return nil
}

// TouchAccess records that a lock's content was read: bumps
// access_count and stamps last_accessed. Missing rows are a no-op -
// access tracking is a relevance signal, not an invariant.
func (s *Store) TouchAccess(ctx context.Context, session, label, version string, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE locks
		SET access_count = access_count + 1, last_accessed = ?
		WHERE session_id = ? AND label = ? AND version = ?
	`, formatTime(now), session, label, version)
	if err != nil {
		return fmt.Errorf("touch access: %w", err)
	}
	return nil
}

// UpdateDerived rewrites only the derived columns (preview and
// key_concepts) for one row. Used by backfill after the extraction
// logic changes; content itself is never rewritten.
func (s *Store) UpdateDerived(ctx context.Context, session, label, version, preview string, concepts []string) error {
	conceptsJSON, err := marshalStrings(concepts)
	if err != nil {
		return fmt.Errorf("update derived: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE locks
		SET preview = ?, key_concepts = ?
		WHERE session_id = ? AND label = ? AND version = ?
	`, preview, conceptsJSON, session, label, version)
	if err != nil {
		return fmt.Errorf("update derived: %w", err)
	}
	return nil
}
