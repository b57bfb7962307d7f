// Package extract holds the pure derivation functions for locks:
// write-time preview and key-concept extraction, rule-sentence
// extraction, and the heuristic violation checks.
//
// Everything here is deterministic and does no I/O. Rule matching is
// pattern-based and best-effort: false positives and negatives are
// accepted, a match is a prompt to review rather than a verdict.
package extract
