package engine

import (
	"context"
	"fmt"

	"github.com/roach88/ctxlock/internal/extract"
	"github.com/roach88/ctxlock/internal/lock"
)

// CheckViolations runs a relevance check for the action text and then
// matches the action against every rule extracted from the hydrated
// results. Matches are heuristic: a violation is a prompt to review
// the action, never a hard failure.
func (e *Engine) CheckViolations(ctx context.Context, session, action string) ([]lock.Violation, error) {
	relevant, err := e.CheckRelevance(ctx, session, action)
	if err != nil {
		return nil, err
	}

	violations := []lock.Violation{}
	for _, sl := range relevant {
		if !sl.Hydrated {
			continue
		}
		for _, rule := range extract.Rules(sl.Content) {
			if extract.CheckRuleViolation(action, rule) {
				violations = append(violations, lock.Violation{
					Label:      sl.Label,
					Version:    sl.Version,
					Rule:       rule,
					Action:     action,
					Suggestion: suggestionFor(rule),
				})
			}
		}
	}

	if len(violations) > 0 {
		e.log.Warn("rule violations detected", "session", session, "count", len(violations))
	}

	return violations, nil
}

// suggestionFor renders the remediation hint attached to a violation.
func suggestionFor(rule lock.Rule) string {
	switch rule.Type {
	case lock.RuleProhibition:
		return fmt.Sprintf("This action appears to do something a locked rule prohibits. Review: %q", rule.Text)
	case lock.RuleMandatory, lock.RuleRequirement:
		return fmt.Sprintf("Adjust the action to satisfy the locked rule: %q", rule.Text)
	default:
		return fmt.Sprintf("Consider the locked guidance before proceeding: %q", rule.Text)
	}
}
