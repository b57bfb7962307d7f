package extract

import (
	"regexp"
	"strings"

	"github.com/roach88/ctxlock/internal/lock"
)

// rulePattern pairs a clause regex with its classification. Patterns
// are evaluated top-to-bottom; the table is swappable without changing
// the Rule output shape.
type rulePattern struct {
	re  *regexp.Regexp
	typ lock.RuleType
}

// rulePatterns capture clauses after the emphasis keywords plus the
// `use "X" as/for Y` shape. Case-insensitive, multiline; a clause runs
// to the end of the sentence or line.
var rulePatterns = []rulePattern{
	{regexp.MustCompile(`(?im)\bALWAYS\s+[^.!?\n]+`), lock.RuleMandatory},
	{regexp.MustCompile(`(?im)\bNEVER\s+[^.!?\n]+`), lock.RuleProhibition},
	{regexp.MustCompile(`(?im)\bMUST\s+[^.!?\n]+`), lock.RuleRequirement},
	{regexp.MustCompile(`(?im)\bSHOULD\s+[^.!?\n]+`), lock.RuleRecommendation},
	{regexp.MustCompile(`(?im)\buse\s+["'][^"']+["']\s+(?:as|for)\s+[^.!?\n]+`), lock.RuleSpecification},
}

// severityFor maps rule types to severities: binding rule types are
// errors, advisory ones are warnings.
func severityFor(typ lock.RuleType) lock.Severity {
	switch typ {
	case lock.RuleMandatory, lock.RuleProhibition, lock.RuleRequirement:
		return lock.SeverityError
	default:
		return lock.SeverityWarning
	}
}

// Rules extracts rule sentences from locked content. Multiple rules
// may come out of one content; results are in pattern-list order with
// exact duplicate texts collapsed.
func Rules(content string) []lock.Rule {
	var rules []lock.Rule
	seen := map[string]bool{}

	for _, p := range rulePatterns {
		for _, m := range p.re.FindAllString(content, -1) {
			text := strings.TrimSpace(m)
			if text == "" || seen[text] {
				continue
			}
			seen[text] = true
			rules = append(rules, lock.Rule{
				Text:     text,
				Type:     p.typ,
				Severity: severityFor(p.typ),
			})
		}
	}

	return rules
}
