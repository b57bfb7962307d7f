// Package engine is the composition root for context locking.
//
// It wires the safety guard, the extractor, and the store into the
// caller-facing operations: Lock, Recall, List, Unlock, CheckRelevance,
// CheckViolations, SessionSummary, Backfill, and GarbageCollect.
//
// Every operation returns a tagged result the caller branches on;
// only store unavailability crosses the API as a Go error. The engine
// never auto-retries a lost version race - the caller re-reads the
// latest version and resubmits.
package engine
