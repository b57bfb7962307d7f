package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/ctxlock/internal/lock"
)

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanLock reads one full lock row.
func scanLock(row rowScanner) (*lock.ContextLock, error) {
	var (
		l            lock.ContextLock
		lockedAt     string
		priority     string
		tagsJSON     string
		conceptsJSON string
		lastAccessed sql.NullString
		parent       sql.NullString
	)

	err := row.Scan(
		&l.SessionID, &l.Label, &l.Version, &l.Content, &l.ContentHash,
		&lockedAt, &priority, &tagsJSON, &l.Preview, &conceptsJSON,
		&lastAccessed, &l.AccessCount, &parent, &l.Persistent,
	)
	if err != nil {
		return nil, err
	}

	if l.LockedAt, err = parseTime(lockedAt); err != nil {
		return nil, fmt.Errorf("scan lock: %w", err)
	}
	l.Priority = lock.Priority(priority)
	if l.Tags, err = unmarshalStrings(tagsJSON); err != nil {
		return nil, fmt.Errorf("scan lock: %w", err)
	}
	if l.KeyConcepts, err = unmarshalStrings(conceptsJSON); err != nil {
		return nil, fmt.Errorf("scan lock: %w", err)
	}
	if l.LastAccessed, err = parseNullTime(lastAccessed); err != nil {
		return nil, fmt.Errorf("scan lock: %w", err)
	}
	l.ParentVersion = parent.String

	return &l, nil
}

// Get returns the lock at an exact (session, label, version) key.
// Returns ErrNotFound if no such row exists.
func (s *Store) Get(ctx context.Context, session, label, version string) (*lock.ContextLock, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT session_id, label, version, content, content_hash, locked_at,
		       priority, tags, preview, key_concepts, last_accessed, access_count,
		       parent_version, persistent
		FROM locks
		WHERE session_id = ? AND label = ? AND version = ?
	`, session, label, version)

	l, err := scanLock(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get lock %s/%s@%s: %w", session, label, version, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get lock: %w", err)
	}
	return l, nil
}

// Latest returns the most recently locked version of a label.
// Ties on locked_at break by insert order (id descending).
func (s *Store) Latest(ctx context.Context, session, label string) (*lock.ContextLock, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT session_id, label, version, content, content_hash, locked_at,
		       priority, tags, preview, key_concepts, last_accessed, access_count,
		       parent_version, persistent
		FROM locks
		WHERE session_id = ? AND label = ?
		ORDER BY locked_at DESC, id DESC
		LIMIT 1
	`, session, label)

	l, err := scanLock(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("latest lock %s/%s: %w", session, label, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("latest lock: %w", err)
	}
	return l, nil
}

// MaxVersion returns the highest existing version for a label by
// (major, minor) order, and whether any version exists at all.
//
// Version comparison happens in Go: "major.minor" strings do not sort
// numerically under SQL string collation (e.g. "1.10" > "1.9").
func (s *Store) MaxVersion(ctx context.Context, session, label string) (string, bool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT version FROM locks
		WHERE session_id = ? AND label = ?
		ORDER BY id ASC
	`, session, label)
	if err != nil {
		return "", false, fmt.Errorf("max version: %w", err)
	}
	defer rows.Close()

	var max string
	found := false
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return "", false, fmt.Errorf("max version: %w", err)
		}
		if !found || lock.CompareVersions(v, max) > 0 {
			max = v
			found = true
		}
	}
	if err := rows.Err(); err != nil {
		return "", false, fmt.Errorf("max version: %w", err)
	}

	return max, found, nil
}

// List returns lightweight summaries, newest first. With sessionOnly
// set, results are limited to the given session; otherwise all
// sessions are listed. Content is never selected.
func (s *Store) List(ctx context.Context, session string, sessionOnly bool) ([]lock.Summary, error) {
	query := `
		SELECT label, version, locked_at, priority, length(content), content_hash, persistent
		FROM locks
	`
	var args []any
	if sessionOnly {
		query += ` WHERE session_id = ?`
		args = append(args, session)
	}
	query += ` ORDER BY locked_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list locks: %w", err)
	}
	defer rows.Close()

	summaries := []lock.Summary{}
	for rows.Next() {
		var (
			sum      lock.Summary
			lockedAt string
			priority string
			hash     string
		)
		if err := rows.Scan(&sum.Label, &sum.Version, &lockedAt, &priority, &sum.Size, &hash, &sum.Persistent); err != nil {
			return nil, fmt.Errorf("list locks: %w", err)
		}
		if sum.LockedAt, err = parseTime(lockedAt); err != nil {
			return nil, fmt.Errorf("list locks: %w", err)
		}
		sum.Priority = lock.Priority(priority)
		sum.HashPrefix = lock.HashPrefix(hash)
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list locks: %w", err)
	}

	return summaries, nil
}

// VersionRow is the minimal shape needed to target rows for deletion.
type VersionRow struct {
	Version  string
	Priority lock.Priority
	LockedAt time.Time
}

// Versions returns all versions of a label with their priority,
// newest first. Used to resolve "all" and "latest" delete selectors.
func (s *Store) Versions(ctx context.Context, session, label string) ([]VersionRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT version, priority, locked_at
		FROM locks
		WHERE session_id = ? AND label = ?
		ORDER BY locked_at DESC, id DESC
	`, session, label)
	if err != nil {
		return nil, fmt.Errorf("versions: %w", err)
	}
	defer rows.Close()

	var out []VersionRow
	for rows.Next() {
		var (
			vr       VersionRow
			priority string
			lockedAt string
		)
		if err := rows.Scan(&vr.Version, &priority, &lockedAt); err != nil {
			return nil, fmt.Errorf("versions: %w", err)
		}
		vr.Priority = lock.Priority(priority)
		if vr.LockedAt, err = parseTime(lockedAt); err != nil {
			return nil, fmt.Errorf("versions: %w", err)
		}
		out = append(out, vr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("versions: %w", err)
	}

	return out, nil
}

// GetContent fetches only the content column for one row. This is the
// hydration read: stage 1 of the relevance pipeline never touches
// content, stage 3 fetches it here for the rows that earn it.
func (s *Store) GetContent(ctx context.Context, session, label, version string) (string, error) {
	var content string
	err := s.db.QueryRowContext(ctx, `
		SELECT content FROM locks
		WHERE session_id = ? AND label = ? AND version = ?
	`, session, label, version).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("get content %s/%s@%s: %w", session, label, version, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get content: %w", err)
	}
	return content, nil
}

// ArchivedLock is a deleted row as preserved in the archive table.
type ArchivedLock struct {
	ArchiveID  string
	Lock       lock.ContextLock
	ArchivedAt time.Time
}

// ListArchived returns archived rows for a session, most recently
// archived first. Archived content stays retrievable after deletion.
func (s *Store) ListArchived(ctx context.Context, session string) ([]ArchivedLock, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT archive_id, session_id, label, version, content, content_hash, locked_at,
		       priority, tags, preview, key_concepts, last_accessed, access_count,
		       parent_version, persistent, archived_at
		FROM archived_locks
		WHERE session_id = ?
		ORDER BY archived_at DESC, archive_id ASC
	`, session)
	if err != nil {
		return nil, fmt.Errorf("list archived: %w", err)
	}
	defer rows.Close()

	var out []ArchivedLock
	for rows.Next() {
		var (
			a            ArchivedLock
			lockedAt     string
			priority     string
			tagsJSON     string
			conceptsJSON string
			lastAccessed sql.NullString
			parent       sql.NullString
			archivedAt   string
		)
		err := rows.Scan(
			&a.ArchiveID,
			&a.Lock.SessionID, &a.Lock.Label, &a.Lock.Version, &a.Lock.Content,
			&a.Lock.ContentHash, &lockedAt, &priority, &tagsJSON, &a.Lock.Preview,
			&conceptsJSON, &lastAccessed, &a.Lock.AccessCount, &parent,
			&a.Lock.Persistent, &archivedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("list archived: %w", err)
		}
		if a.Lock.LockedAt, err = parseTime(lockedAt); err != nil {
			return nil, fmt.Errorf("list archived: %w", err)
		}
		a.Lock.Priority = lock.Priority(priority)
		if a.Lock.Tags, err = unmarshalStrings(tagsJSON); err != nil {
			return nil, fmt.Errorf("list archived: %w", err)
		}
		if a.Lock.KeyConcepts, err = unmarshalStrings(conceptsJSON); err != nil {
			return nil, fmt.Errorf("list archived: %w", err)
		}
		if a.Lock.LastAccessed, err = parseNullTime(lastAccessed); err != nil {
			return nil, fmt.Errorf("list archived: %w", err)
		}
		a.Lock.ParentVersion = parent.String
		if a.ArchivedAt, err = parseTime(archivedAt); err != nil {
			return nil, fmt.Errorf("list archived: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list archived: %w", err)
	}

	return out, nil
}
