package lock

// Status tags the outcome of a caller-facing operation.
//
// Every outcome except store unavailability is a tagged result the
// caller branches on, not a Go error:
//
//   - StatusInvalid: malformed input (size, version syntax). No retry.
//   - StatusRejected: Safety Guard refused the write. Resubmit allowed.
//   - StatusConflict: version race lost. Re-read latest and retry with
//     a fresh version; the engine does not auto-retry.
//   - StatusNotFound: no such lock.
//   - StatusProtected: always_check delete without force. Retry with
//     force=true.
//
// Only store unavailability crosses the API as a returned error.
type Status string

const (
	StatusOK        Status = "ok"
	StatusInvalid   Status = "invalid"
	StatusRejected  Status = "rejected"
	StatusConflict  Status = "conflict"
	StatusNotFound  Status = "not_found"
	StatusProtected Status = "protected"
)
