package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ctxlock/internal/lock"
)

func outputRule(t *testing.T) lock.Rule {
	t.Helper()
	rules := Rules("ALWAYS use the 'output' folder for generated files")
	require.Len(t, rules, 1)
	return rules[0]
}

func TestCheckRuleViolation_OutputFolderViolated(t *testing.T) {
	rule := outputRule(t)

	violating := []string{
		"generate.py --output output_test",
		"generate.py --output /tmp/stuff",
		"render --output=build/artifacts",
	}
	for _, action := range violating {
		assert.True(t, CheckRuleViolation(action, rule), "action should violate: %q", action)
	}
}

func TestCheckRuleViolation_OutputFolderAllowed(t *testing.T) {
	rule := outputRule(t)

	allowed := []string{
		"generate.py --output output",
		"generate.py --output ./output",
		"generate.py --output output/",
	}
	for _, action := range allowed {
		assert.False(t, CheckRuleViolation(action, rule), "action should be allowed: %q", action)
	}
}

func TestCheckRuleViolation_OutputFolderNeedsBothSides(t *testing.T) {
	rule := outputRule(t)

	// No --output flag in the action: nothing to check.
	assert.False(t, CheckRuleViolation("generate.py --verbose", rule))

	// Action mentions output but the rule is not an always-use rule.
	other := lock.Rule{Text: "SHOULD document the output format", Type: lock.RuleRecommendation, Severity: lock.SeverityWarning}
	assert.False(t, CheckRuleViolation("generate.py --output elsewhere", other))
}

func TestCheckRuleViolation_Prohibition(t *testing.T) {
	rules := Rules("NEVER commit secrets to the repository")
	require.Len(t, rules, 1)
	rule := rules[0]

	assert.True(t, CheckRuleViolation("git commit -am 'add secrets.env'", rule))
	assert.True(t, CheckRuleViolation("upload repository backup", rule))
	assert.False(t, CheckRuleViolation("run unit suite", rule))
}

func TestCheckRuleViolation_ProhibitionOnlyAppliesToProhibitions(t *testing.T) {
	rules := Rules("ALWAYS commit early")
	require.Len(t, rules, 1)

	// Token overlap with a mandatory rule does not trip the
	// prohibition heuristic.
	assert.False(t, CheckRuleViolation("git commit now", rules[0]))
}

func TestTokenize_DropsNoise(t *testing.T) {
	tokens := tokenize("NEVER commit any secrets to the repo!")

	assert.Contains(t, tokens, "commit")
	assert.Contains(t, tokens, "secrets")
	assert.Contains(t, tokens, "repo")
	assert.NotContains(t, tokens, "never")
	assert.NotContains(t, tokens, "the")
	assert.NotContains(t, tokens, "to")
}
