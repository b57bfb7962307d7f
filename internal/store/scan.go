package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/ctxlock/internal/lock"
)

// MetadataFilter selects rows for the relevance pipeline's first
// stage. Needles are OR'd: a row qualifies when any needle appears as
// a substring of its preview, key_concepts, label, or tags.
//
// An empty needle list matches nothing - stage 0 already decided the
// query is relevant to at least one category before a scan happens.
type MetadataFilter struct {
	Needles []string
}

// MetadataRow is the stage-1 projection of a lock. The content column
// is deliberately absent: hydration is a separate, selective read.
type MetadataRow struct {
	Label        string
	Version      string
	Preview      string
	KeyConcepts  []string
	Tags         []string
	Priority     lock.Priority
	LockedAt     time.Time
	LastAccessed *time.Time
	AccessCount  int
}

// likeEscaper neutralizes LIKE metacharacters in user-derived needles.
// All matching uses ESCAPE '\' so needles are always literal.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// compileFilter builds the WHERE fragment and parameters for a
// metadata scan. All values are parameterized, never interpolated;
// needle order is preserved so compilation is deterministic.
func compileFilter(session string, f MetadataFilter) (string, []any) {
	where := "session_id = ?"
	params := []any{session}

	if len(f.Needles) == 0 {
		// Impossible predicate: no needles means no matches.
		return where + " AND 1 = 0", params
	}

	var clauses []string
	for _, needle := range f.Needles {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(needle)) + "%"
		clauses = append(clauses,
			`(lower(preview) LIKE ? ESCAPE '\'`+
				` OR lower(key_concepts) LIKE ? ESCAPE '\'`+
				` OR lower(label) LIKE ? ESCAPE '\'`+
				` OR lower(tags) LIKE ? ESCAPE '\')`)
		params = append(params, pattern, pattern, pattern, pattern)
	}

	where += " AND (" + strings.Join(clauses, " OR ") + ")"
	return where, params
}

// ScanMetadata runs the stage-1 scan: metadata columns only, filtered
// to rows intersecting the needle set, newest first with an id
// tiebreaker for deterministic results.
func (s *Store) ScanMetadata(ctx context.Context, session string, f MetadataFilter) ([]MetadataRow, error) {
	where, params := compileFilter(session, f)

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT label, version, preview, key_concepts, tags, priority,
		       locked_at, last_accessed, access_count
		FROM locks
		WHERE %s
		ORDER BY locked_at DESC, id DESC
	`, where), params...)
	if err != nil {
		return nil, fmt.Errorf("scan metadata: %w", err)
	}
	defer rows.Close()

	out := []MetadataRow{}
	for rows.Next() {
		var (
			m            MetadataRow
			conceptsJSON string
			tagsJSON     string
			priority     string
			lockedAt     string
			lastAccessed sql.NullString
		)
		err := rows.Scan(&m.Label, &m.Version, &m.Preview, &conceptsJSON, &tagsJSON,
			&priority, &lockedAt, &lastAccessed, &m.AccessCount)
		if err != nil {
			return nil, fmt.Errorf("scan metadata: %w", err)
		}
		if m.KeyConcepts, err = unmarshalStrings(conceptsJSON); err != nil {
			return nil, fmt.Errorf("scan metadata: %w", err)
		}
		if m.Tags, err = unmarshalStrings(tagsJSON); err != nil {
			return nil, fmt.Errorf("scan metadata: %w", err)
		}
		m.Priority = lock.Priority(priority)
		if m.LockedAt, err = parseTime(lockedAt); err != nil {
			return nil, fmt.Errorf("scan metadata: %w", err)
		}
		if m.LastAccessed, err = parseNullTime(lastAccessed); err != nil {
			return nil, fmt.Errorf("scan metadata: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan metadata: %w", err)
	}

	return out, nil
}
