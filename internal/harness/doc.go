// Package harness runs YAML-defined conformance scenarios against a
// real engine over a throwaway store.
//
// A scenario sets up locks, executes a sequence of operations, and
// checks expectations inline (status, result counts, ordering). The
// golden runner additionally snapshots the event stream and compares
// it byte-for-byte against a checked-in fixture, so behavior drift in
// the pipeline shows up as a diff instead of a silent change.
//
// Scenario execution is deterministic: a fixed-epoch clock advances
// one minute per operation, and the store lives in a temp directory.
package harness
