// Package lock defines the core value types for context locks.
//
// A context lock is an immutable, versioned text snippet under a
// (session, label) pair. Locks are never mutated in place: an update
// always creates a new version with a parent pointer, and deletion
// archives the full row before removing it.
//
// This package holds only values and pure helpers (hashing, version
// arithmetic, status taxonomy). Storage lives in internal/store and
// orchestration in internal/engine.
package lock
