package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(NewExitError(ExitFailure, "nope")))
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "open", errors.New("boom"))))
	assert.Equal(t, ExitCommandError, GetExitCode(errors.New("plain error")))
}

func TestExitErrorMessages(t *testing.T) {
	assert.Equal(t, "nope", NewExitError(ExitFailure, "nope").Error())
	assert.Equal(t, "open: boom", WrapExitError(ExitCommandError, "open", errors.New("boom")).Error())
	assert.Empty(t, reportedErr(ExitFailure).Error())
}

func TestFormatterSuccessJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Success(map[string]string{"label": "x"}, "ignored in json mode"))

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
}

func TestFormatterSuccessText(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	require.NoError(t, f.Success(nil, "Locked x@1.0"))
	assert.Equal(t, "Locked x@1.0\n", buf.String())
}

func TestFormatterFailure(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}
	require.NoError(t, f.Failure("rejected", "Content too short (min 10 chars)"))

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "rejected", resp.Error.Status)

	buf.Reset()
	f.Format = "text"
	require.NoError(t, f.Failure("rejected", "Content too short (min 10 chars)"))
	assert.Contains(t, buf.String(), "Error [rejected]:")
}

func TestFormatterVerboseLogTargetsErrWriter(t *testing.T) {
	var out, diag bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &out, ErrWriter: &diag, Verbose: true}

	f.VerboseLog("loaded %d rows", 3)
	assert.Empty(t, out.String())
	assert.Equal(t, "loaded 3 rows\n", diag.String())

	f.Verbose = false
	diag.Reset()
	f.VerboseLog("hidden")
	assert.Empty(t, diag.String())
}
