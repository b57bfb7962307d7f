package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/ctxlock/internal/lock"
)

// summaryCap bounds how many locks a session digest mentions.
const summaryCap = 10

// SessionSummary renders a short digest of a session's most recent
// locks, optionally filtered to one priority tier. No scoring - this
// is the session-start overview, independent of the relevance pipeline.
func (e *Engine) SessionSummary(ctx context.Context, session, priority string) (string, error) {
	var tier lock.Priority
	if priority != "" {
		parsed, err := lock.ParsePriority(priority)
		if err != nil {
			return "", err
		}
		tier = parsed
	}

	summaries, err := e.store.List(ctx, session, true)
	if err != nil {
		return "", err
	}

	var picked []lock.Summary
	for _, s := range summaries {
		if tier != "" && s.Priority != tier {
			continue
		}
		picked = append(picked, s)
		if len(picked) == summaryCap {
			break
		}
	}

	if len(picked) == 0 {
		if tier != "" {
			return fmt.Sprintf("No %s locked contexts for this session.", tier), nil
		}
		return "No locked contexts for this session.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d locked context(s):\n", len(picked))
	for _, s := range picked {
		fmt.Fprintf(&b, "- %s@%s [%s] %d bytes, hash %s, locked %s\n",
			s.Label, s.Version, s.Priority, s.Size, s.HashPrefix,
			s.LockedAt.UTC().Format("2006-01-02 15:04"))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
