package lock

import (
	"fmt"
	"time"
)

// Content size bounds. Candidates outside these bounds are rejected
// before they reach the store.
const (
	MinContentLen = 10
	MaxContentLen = 51200
)

// Derived-field bounds.
const (
	MaxPreviewLen  = 500
	MaxKeyConcepts = 10
)

// Priority controls ranking and forced hydration during relevance checks.
type Priority string

const (
	// PriorityAlwaysCheck rows sort before all others and are always
	// hydrated. Deleting one requires an explicit force flag.
	PriorityAlwaysCheck Priority = "always_check"

	// PriorityImportant rows rank above reference rows.
	PriorityImportant Priority = "important"

	// PriorityReference is the default tier.
	PriorityReference Priority = "reference"
)

// ParsePriority validates a priority string.
// Empty input defaults to PriorityReference.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityAlwaysCheck, PriorityImportant, PriorityReference:
		return Priority(s), nil
	case "":
		return PriorityReference, nil
	default:
		return "", fmt.Errorf("invalid priority %q: must be one of always_check, important, reference", s)
	}
}

// Weight returns the priority component of the relevance score.
// Unparsable tiers score as reference.
func (p Priority) Weight() float64 {
	switch p {
	case PriorityAlwaysCheck:
		return 15
	case PriorityImportant:
		return 10
	default:
		return 5
	}
}

// ContextLock is one immutable version of a locked context.
type ContextLock struct {
	SessionID     string
	Label         string
	Version       string
	Content       string
	ContentHash   string
	LockedAt      time.Time
	Priority      Priority
	Tags          []string
	Preview       string
	KeyConcepts   []string
	LastAccessed  *time.Time
	AccessCount   int
	ParentVersion string
	Persistent    bool
}

// Summary is the lightweight row shape returned by List.
// Content is never carried here.
type Summary struct {
	Label      string    `json:"label"`
	Version    string    `json:"version"`
	LockedAt   time.Time `json:"locked_at"`
	Priority   Priority  `json:"priority"`
	Size       int       `json:"size"`
	HashPrefix string    `json:"hash_prefix"`
	Persistent bool      `json:"persistent"`
}

// ScoredLock is one ranked result from a relevance check.
// Content holds the full text only when Hydrated is true; otherwise it
// carries the preview.
type ScoredLock struct {
	Label             string   `json:"label"`
	Version           string   `json:"version"`
	Preview           string   `json:"preview"`
	Tags              []string `json:"tags,omitempty"`
	Priority          Priority `json:"priority"`
	Score             float64  `json:"score"`
	MatchedCategories []string `json:"matched_categories,omitempty"`
	Content           string   `json:"content,omitempty"`
	Hydrated          bool     `json:"hydrated"`
}

// RuleType classifies an extracted rule sentence.
type RuleType string

const (
	RuleMandatory      RuleType = "mandatory"
	RuleProhibition    RuleType = "prohibition"
	RuleRequirement    RuleType = "requirement"
	RuleRecommendation RuleType = "recommendation"
	RuleSpecification  RuleType = "specification"
)

// Severity of a rule or violation: "error" or "warning".
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Rule is one sentence extracted from locked content.
type Rule struct {
	Text     string   `json:"text"`
	Type     RuleType `json:"type"`
	Severity Severity `json:"severity"`
}

// Violation reports that an action text appears to conflict with a
// rule extracted from a lock. Matches are heuristic and best-effort:
// a violation is a prompt to review, not a verdict.
type Violation struct {
	Label      string `json:"label"`
	Version    string `json:"version"`
	Rule       Rule   `json:"rule"`
	Action     string `json:"action"`
	Suggestion string `json:"suggestion"`
}
