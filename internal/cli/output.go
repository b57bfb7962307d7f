package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // operation succeeded
	ExitFailure      = 1 // tagged non-ok outcome (rejected, conflict, not_found, protected, invalid)
	ExitCommandError = 2 // command error (bad flags, unreadable database, broken config)
)

// ExitError carries a specific exit code out of a command.
//
// A zero Message means the command already reported the failure
// through its formatter; the entrypoint then exits silently with the
// code instead of printing a second line.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// reportedErr signals a failure the formatter already printed.
func reportedErr(code int) error {
	return &ExitError{Code: code}
}

// GetExitCode extracts the exit code from an error.
// Non-ExitError errors map to ExitCommandError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

// OutputFormatter renders command results as JSON or text.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // diagnostics; defaults to Writer
	Verbose   bool
}

// Response is the JSON envelope every command emits in JSON mode.
type Response struct {
	Status string    `json:"status"`
	Data   any       `json:"data,omitempty"`
	Error  *ErrorBody `json:"error,omitempty"`
}

// ErrorBody carries a failed outcome in a JSON response.
type ErrorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// JSON reports whether the formatter is in JSON mode.
func (f *OutputFormatter) JSON() bool {
	return f.Format == "json"
}

// Success emits a successful result. In JSON mode data goes inside the
// envelope; in text mode the caller renders text itself and passes ""
// here, or a ready-made line.
func (f *OutputFormatter) Success(data any, text string) error {
	if f.JSON() {
		return json.NewEncoder(f.Writer).Encode(Response{Status: "ok", Data: data})
	}
	if text != "" {
		fmt.Fprintln(f.Writer, text)
	}
	return nil
}

// Failure emits a tagged non-ok outcome: a JSON error envelope, or a
// one-line text explanation.
func (f *OutputFormatter) Failure(status, message string) error {
	if f.JSON() {
		return json.NewEncoder(f.Writer).Encode(Response{
			Status: "error",
			Error:  &ErrorBody{Status: status, Message: message},
		})
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", status, message)
	return nil
}

// VerboseLog prints a diagnostic line when verbose mode is on. In JSON
// mode diagnostics go to ErrWriter so the envelope stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.errWriter(), format+"\n", args...)
}

func (f *OutputFormatter) errWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
