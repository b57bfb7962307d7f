package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/ctxlock/internal/lock"
)

// ArchiveAndDelete copies one lock row into archived_locks and then
// removes it, in a single transaction. A crash either leaves the row
// live or leaves it archived - never silently gone.
//
// Priority protection (always_check requires force) is the engine's
// decision; the store deletes whatever it is told to delete.
func (s *Store) ArchiveAndDelete(ctx context.Context, session, label, version string, now time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("archive lock: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO archived_locks
		(archive_id, session_id, label, version, content, content_hash, locked_at,
		 priority, tags, preview, key_concepts, last_accessed, access_count,
		 parent_version, persistent, archived_at)
		SELECT ?, session_id, label, version, content, content_hash, locked_at,
		       priority, tags, preview, key_concepts, last_accessed, access_count,
		       parent_version, persistent, ?
		FROM locks
		WHERE session_id = ? AND label = ? AND version = ?
	`, uuid.NewString(), formatTime(now), session, label, version)
	if err != nil {
		return fmt.Errorf("archive lock: copy: %w", err)
	}

	copied, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("archive lock: rows affected: %w", err)
	}
	if copied == 0 {
		return fmt.Errorf("archive lock %s/%s@%s: %w", session, label, version, ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM locks
		WHERE session_id = ? AND label = ? AND version = ?
	`, session, label, version); err != nil {
		return fmt.Errorf("archive lock: remove: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("archive lock: commit: %w", err)
	}

	return nil
}

// GarbageCollect archives and removes non-persistent, reference-tier
// rows locked before the cutoff. Protected tiers (always_check,
// important) and persistent rows are never touched.
//
// Best-effort: rows deleted by a concurrent caller mid-iteration are
// skipped, not errors.
func (s *Store) GarbageCollect(ctx context.Context, cutoff, now time.Time) (int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, label, version FROM locks
		WHERE persistent = 0
		  AND priority = ?
		  AND locked_at < ?
		ORDER BY locked_at ASC, id ASC
	`, string(lock.PriorityReference), formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("garbage collect: %w", err)
	}

	type target struct{ session, label, version string }
	var targets []target
	for rows.Next() {
		var t target
		if err := rows.Scan(&t.session, &t.label, &t.version); err != nil {
			rows.Close()
			return 0, fmt.Errorf("garbage collect: %w", err)
		}
		targets = append(targets, t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("garbage collect: %w", err)
	}
	rows.Close()

	removed := 0
	for _, t := range targets {
		err := s.ArchiveAndDelete(ctx, t.session, t.label, t.version, now)
		if errors.Is(err, ErrNotFound) {
			continue // already gone
		}
		if err != nil {
			return removed, err
		}
		removed++
	}

	return removed, nil
}

// CountLocks returns the number of live rows for a session.
// Used by tests and the session summary.
func (s *Store) CountLocks(ctx context.Context, session string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM locks WHERE session_id = ?`, session,
	).Scan(&count)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("count locks: %w", err)
	}
	return count, nil
}
