package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI with args against a fresh root command and
// returns stdout, stderr, and the command error.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	if stdin != "" {
		root.SetIn(strings.NewReader(stdin))
	}
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func testDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "locks.db")
}

func TestRootRejectsInvalidFormat(t *testing.T) {
	_, _, err := execute(t, "", "list", "--db", testDB(t), "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestLockRecallRoundTrip(t *testing.T) {
	db := testDB(t)
	content := "Decision: the staging cluster uses postgres 16.\nNo exceptions.\n"

	out, _, err := execute(t, "",
		"lock", "db_decision", "--db", db, "--session", "s1", "--content", content)
	require.NoError(t, err)
	assert.Contains(t, out, "Locked db_decision@1.0")

	out, _, err = execute(t, "",
		"recall", "db_decision", "--db", db, "--session", "s1")
	require.NoError(t, err)
	assert.Equal(t, content, out)
}

func TestLockReadsStdin(t *testing.T) {
	db := testDB(t)

	out, _, err := execute(t, "Content piped in from another tool's output stream.",
		"lock", "piped", "--db", db, "--session", "s1")
	require.NoError(t, err)
	assert.Contains(t, out, "Locked piped@1.0")
}

func TestLockRejectedExitsNonZero(t *testing.T) {
	db := testDB(t)

	out, _, err := execute(t, "",
		"lock", "tiny", "--db", db, "--session", "s1", "--content", "too short")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Empty(t, err.Error(), "failure is reported via the formatter, not the error")
	assert.Contains(t, out, "Error [rejected]:")
}

func TestLockJSONEnvelope(t *testing.T) {
	db := testDB(t)

	out, _, err := execute(t, "",
		"lock", "api_rules", "--db", db, "--session", "s1", "--format", "json",
		"--content", "All endpoints MUST validate their JSON request bodies.")
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "1.0", data["version"])
	assert.Equal(t, "ok", data["status"])
}

func TestRecallMissingExitsNonZero(t *testing.T) {
	db := testDB(t)

	out, _, err := execute(t, "", "recall", "ghost", "--db", db, "--session", "s1")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [not_found]:")
}

func TestUnlockProtectedNeedsForce(t *testing.T) {
	db := testDB(t)

	_, _, err := execute(t, "",
		"lock", "rule", "--db", db, "--session", "s1", "--priority", "always_check",
		"--content", "NEVER commit secrets to the repository.")
	require.NoError(t, err)

	out, _, err := execute(t, "", "unlock", "rule", "--db", db, "--session", "s1")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [protected]:")

	out, _, err = execute(t, "", "unlock", "rule", "--db", db, "--session", "s1", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 1 version(s)")
}

func TestViolationsGateExitCode(t *testing.T) {
	db := testDB(t)

	_, _, err := execute(t, "",
		"lock", "output_rule", "--db", db, "--session", "s1", "--priority", "always_check",
		"--content", "ALWAYS use the 'output' folder for generated files.")
	require.NoError(t, err)

	// Flag-like tokens after the first action word stay positional.
	out, _, err := execute(t, "",
		"violations", "--db", db, "--session", "s1",
		"generate.py", "--output", "output_test")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "output_rule@1.0")

	out, _, err = execute(t, "",
		"violations", "--db", db, "--session", "s1",
		"generate.py", "--output", "output")
	require.NoError(t, err)
	assert.Contains(t, out, "No violations.")
}

func TestCheckTextOutput(t *testing.T) {
	db := testDB(t)

	_, _, err := execute(t, "",
		"lock", "auth_spec", "--db", db, "--session", "s1",
		"--content", "API requests MUST carry a JWT bearer token in the header.")
	require.NoError(t, err)

	out, _, err := execute(t, "",
		"check", "--db", db, "--session", "s1", "how", "do", "I", "send", "api", "tokens")
	require.NoError(t, err)
	assert.Contains(t, out, "auth_spec@1.0")

	out, _, err = execute(t, "",
		"check", "--db", db, "--session", "s1", "unrelated", "chatter")
	require.NoError(t, err)
	assert.Contains(t, out, "No relevant locks.")
}

func TestListAndSummary(t *testing.T) {
	db := testDB(t)

	_, _, err := execute(t, "",
		"lock", "style", "--db", db, "--session", "s1",
		"--content", "Use two-space indentation in configuration files.")
	require.NoError(t, err)

	out, _, err := execute(t, "", "list", "--db", db, "--session", "s1")
	require.NoError(t, err)
	assert.Contains(t, out, "style@1.0")

	out, _, err = execute(t, "", "list", "--db", db, "--session", "s2")
	require.NoError(t, err)
	assert.Contains(t, out, "No locks.")

	out, _, err = execute(t, "", "list", "--db", db, "--session", "s2", "--all-sessions")
	require.NoError(t, err)
	assert.Contains(t, out, "style@1.0")

	out, _, err = execute(t, "", "summary", "--db", db, "--session", "s1")
	require.NoError(t, err)
	assert.Contains(t, out, "1 locked context(s):")
}

func TestGCAndBackfillRun(t *testing.T) {
	db := testDB(t)

	_, _, err := execute(t, "",
		"lock", "note", "--db", db, "--session", "s1",
		"--content", "A fresh note that the collector must not touch.")
	require.NoError(t, err)

	out, _, err := execute(t, "", "gc", "--db", db, "--session", "s1")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 0 stale lock(s)")

	out, _, err = execute(t, "", "backfill", "--db", db, "--session", "s1")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated 0 lock(s)")
}
