// Package store provides SQLite-backed durable storage for context locks.
//
// The store implements an append-only lock table with:
//   - Locks: one row per (session, label, version), content immutable
//   - Archived locks: full copies of deleted rows, kept retrievable
//
// # Invariants
//
// Version allocation safety
//   - UNIQUE(session_id, label, version) constraint
//   - Racing writers get a duplicate signal, never corruption
//
// Append-only content
//   - An "update" is always a new row with parent_version set
//   - No statement ever rewrites the content column
//
// Deterministic query results
//   - Every multi-row query carries ORDER BY with an id tiebreaker
//
// Archive-before-remove
//   - Deletion copies the full row into archived_locks first, inside
//     one transaction, so a crash never loses content silently
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Content hashes are computed in internal/lock using SHA-256 with
// domain separation over NFC-normalized text.
package store
