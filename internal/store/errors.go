package store

import "errors"

// Sentinel errors returned by store operations. The engine maps these
// to tagged statuses; any other error from this package means the
// store itself is unavailable and propagates to the caller as-is.
var (
	// ErrDuplicate signals a uniqueness conflict on
	// (session_id, label, version). The caller lost a version race and
	// should re-read the latest version before retrying.
	ErrDuplicate = errors.New("lock version already exists")

	// ErrNotFound signals that no row matched a point lookup.
	ErrNotFound = errors.New("lock not found")
)
