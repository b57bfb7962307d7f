package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ctxlock/internal/lock"
)

func lockOutputRule(t *testing.T, e *Engine) {
	t.Helper()
	mustLock(t, e, LockRequest{
		Session:  testSession,
		Label:    "output_rule",
		Content:  "ALWAYS use the 'output' folder for generated files.",
		Priority: "always_check",
	})
}

func TestCheckViolations_OutputFolderViolated(t *testing.T) {
	e, _ := newTestEngine(t)
	lockOutputRule(t, e)

	violations, err := e.CheckViolations(context.Background(), testSession, "generate.py --output output_test")
	require.NoError(t, err)
	require.Len(t, violations, 1)

	v := violations[0]
	assert.Equal(t, "output_rule", v.Label)
	assert.Equal(t, "1.0", v.Version)
	assert.Equal(t, lock.SeverityError, v.Rule.Severity)
	assert.Equal(t, lock.RuleMandatory, v.Rule.Type)
	assert.Contains(t, v.Rule.Text, "ALWAYS use the 'output' folder")
	assert.NotEmpty(t, v.Suggestion)
}

func TestCheckViolations_CompliantActionPasses(t *testing.T) {
	e, _ := newTestEngine(t)
	lockOutputRule(t, e)

	violations, err := e.CheckViolations(context.Background(), testSession, "generate.py --output output")
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestCheckViolations_ProhibitionMatch(t *testing.T) {
	e, _ := newTestEngine(t)

	mustLock(t, e, LockRequest{
		Session:  testSession,
		Label:    "deploy_rules",
		Content:  "NEVER deploy directly to production without a rollback plan.",
		Priority: "always_check",
	})

	violations, err := e.CheckViolations(context.Background(), testSession, "deploy the hotfix straight to production")
	require.NoError(t, err)
	require.NotEmpty(t, violations)
	assert.Equal(t, lock.RuleProhibition, violations[0].Rule.Type)
	assert.Contains(t, violations[0].Suggestion, "prohibits")
}

func TestCheckViolations_IrrelevantActionShortCircuits(t *testing.T) {
	e, _ := newTestEngine(t)
	lockOutputRule(t, e)

	violations, err := e.CheckViolations(context.Background(), testSession, "what time is the standup?")
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestCheckViolations_OnlyHydratedRowsChecked(t *testing.T) {
	e, clk := newTestEngine(t)
	ctx := context.Background()

	// Fill the hydration budget with rule-free locks that outscore the
	// prohibition below, pushing it past the top-5 without always_check.
	for _, label := range []string{"gen_a", "gen_b", "gen_c", "gen_d", "gen_e"} {
		mustLock(t, e, LockRequest{
			Session: testSession,
			Label:   label,
			Content: "Notes about generated output files saved in the export directory for " + label + ".",
		})
		clk.Advance(time.Minute)
	}
	mustLock(t, e, LockRequest{
		Session: testSession,
		Label:   "save_rule",
		Content: "NEVER save scratch files outside the workspace.",
	})

	violations, err := e.CheckViolations(ctx, testSession, "save the generated output files to the export directory")
	require.NoError(t, err)
	for _, v := range violations {
		assert.NotEqual(t, "save_rule", v.Label, "non-hydrated rows are not rule-checked")
	}
}
