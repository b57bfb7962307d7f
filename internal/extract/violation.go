package extract

import (
	"regexp"
	"strings"

	"github.com/roach88/ctxlock/internal/lock"
)

// violationHandler is one heuristic for matching an action against a
// rule. Handlers run in order; any hit flags a violation. New
// rule-type handlers slot into the list without changing the
// Violation shape.
type violationHandler struct {
	name  string
	match func(action string, rule lock.Rule) bool
}

var violationHandlers = []violationHandler{
	{name: "output-folder", match: matchOutputFolder},
	{name: "prohibition", match: matchProhibition},
}

// CheckRuleViolation reports whether an action text appears to
// violate a rule. Best-effort on both sides: heuristics intentionally
// accept false positives and negatives.
func CheckRuleViolation(action string, rule lock.Rule) bool {
	for _, h := range violationHandlers {
		if h.match(action, rule) {
			return true
		}
	}
	return false
}

var outputFlagRE = regexp.MustCompile(`--output[=\s]+(\S+)`)

// allowedOutputPaths are the spellings of the canonical output folder.
var allowedOutputPaths = map[string]bool{
	"output":   true,
	"./output": true,
	"output/":  true,
}

// matchOutputFolder handles "always use the output folder" rules: if
// the action writes via an --output flag to anywhere but the
// canonical folder, that's a violation.
func matchOutputFolder(action string, rule lock.Rule) bool {
	loweredRule := strings.ToLower(rule.Text)
	loweredAction := strings.ToLower(action)

	if !strings.Contains(loweredRule, "output") || !strings.Contains(loweredAction, "output") {
		return false
	}
	if !strings.Contains(loweredRule, "always use") {
		return false
	}

	m := outputFlagRE.FindStringSubmatch(loweredAction)
	if m == nil {
		return false
	}

	path := strings.Trim(m[1], `"'`)
	return !allowedOutputPaths[path]
}

// prohibitionStopWords are tokens too generic to implicate an action.
var prohibitionStopWords = map[string]bool{
	"never": true, "the": true, "a": true, "an": true, "to": true,
	"of": true, "in": true, "on": true, "and": true, "or": true,
	"with": true, "for": true, "any": true, "all": true, "this": true,
	"that": true, "your": true, "into": true, "from": true,
}

// matchProhibition flags a prohibition rule when any meaningful rule
// token appears as a substring of the action. Crude, and deliberately
// so - a prohibited word showing up in an action is worth a look.
func matchProhibition(action string, rule lock.Rule) bool {
	if rule.Type != lock.RuleProhibition {
		return false
	}

	loweredAction := strings.ToLower(action)
	for _, token := range tokenize(rule.Text) {
		if strings.Contains(loweredAction, token) {
			return true
		}
	}
	return false
}

// tokenize lowercases, strips punctuation, and drops stop words and
// fragments shorter than three characters.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r != '_' && r != '-'
	})

	var tokens []string
	for _, f := range fields {
		if len(f) < 3 || prohibitionStopWords[f] {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}
