// Package guard implements the write-side safety gate for context locks.
//
// The guard is an abuse brake, not a security boundary: its state is
// process-local, bounded, and lost on restart by design. Each process
// in a multi-process deployment enforces its own soft limits. A
// shared-limiter deployment swaps the internal rings for a remote
// counter behind the same Check contract.
package guard

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// Limits bounds the guard's ephemeral state and thresholds.
type Limits struct {
	// MinContent and MaxContent bound candidate length in bytes.
	MinContent int `json:"minContent"`
	MaxContent int `json:"maxContent"`

	// DigestRing caps how many recent content digests are remembered.
	DigestRing int `json:"digestRing"`

	// MaxRepeats is the repetition count at which a digest is rejected.
	MaxRepeats int `json:"maxRepeats"`

	// AttemptRing caps how many accepted-attempt timestamps are kept.
	AttemptRing int `json:"attemptRing"`

	// RateLimit rejects when this many accepted attempts fall inside
	// the trailing RateWindow.
	RateLimit  int           `json:"rateLimit"`
	RateWindow time.Duration `json:"-"`

	// ResetInterval fully clears guard state after this much elapsed
	// time since the last reset.
	ResetInterval time.Duration `json:"-"`
}

// DefaultLimits returns the stock limits: 10-51200 byte content, ring
// of 10 digests rejecting at 3 repeats, 10 accepted writes per
// trailing 60s over a ring of 20 timestamps, full reset every 300s.
func DefaultLimits() Limits {
	return Limits{
		MinContent:    10,
		MaxContent:    51200,
		DigestRing:    10,
		MaxRepeats:    3,
		AttemptRing:   20,
		RateLimit:     10,
		RateWindow:    60 * time.Second,
		ResetInterval: 300 * time.Second,
	}
}

// Guard decides whether a candidate string may be written.
//
// Checks run in a fixed order and the first failure wins:
// size bounds, forbidden patterns, near-duplicate digests, rate limit.
// Acceptance records the digest and timestamp. Check never returns an
// error for well-formed string input - rejection is a normal result.
//
// Thread-safety: all methods are safe for concurrent use via an
// internal mutex.
type Guard struct {
	mu     sync.Mutex
	limits Limits
	now    func() time.Time

	digests   []string       // ring of recent digests, oldest first
	repeats   map[string]int // per-digest repetition counters
	attempts  []time.Time    // ring of accepted-attempt timestamps, oldest first
	lastReset time.Time
}

// Option configures a Guard.
type Option func(*Guard)

// WithClock injects a time source. Tests use a deterministic clock.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) {
		g.now = now
	}
}

// New creates a Guard with the given limits.
func New(limits Limits, opts ...Option) *Guard {
	g := &Guard{
		limits:  limits,
		now:     time.Now,
		repeats: make(map[string]int),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.lastReset = g.now()
	return g
}

// Check reports whether the candidate may be locked.
// On rejection, reason is a short human-readable explanation.
func (g *Guard) Check(candidate string) (ok bool, reason string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()

	// Stale counters expire regardless of this check's outcome.
	g.maybeReset(now)

	// (a) Size bounds.
	if len(candidate) < g.limits.MinContent {
		return false, fmt.Sprintf("Content too short (min %d chars)", g.limits.MinContent)
	}
	if len(candidate) > g.limits.MaxContent {
		return false, fmt.Sprintf("Content too large (max %dKB)", g.limits.MaxContent/1024)
	}

	// (b) Forbidden patterns: lock-command echoes, assistant
	// confirmations, transcript artifacts.
	for _, p := range forbiddenPatterns {
		if p.re.MatchString(candidate) {
			return false, p.reason
		}
	}

	// (c) Near-duplicate: repeated digests within the ring.
	digest := shortDigest(candidate)
	if g.inRing(digest) {
		g.repeats[digest]++
		if g.repeats[digest] >= g.limits.MaxRepeats {
			return false, fmt.Sprintf("Near-duplicate content locked %d times recently", g.repeats[digest])
		}
	}

	// (d) Rate limit over the trailing window.
	recent := 0
	cutoff := now.Add(-g.limits.RateWindow)
	for _, ts := range g.attempts {
		if ts.After(cutoff) {
			recent++
		}
	}
	if recent >= g.limits.RateLimit {
		return false, fmt.Sprintf("Rate limit: %d locks in the last %s", recent, g.limits.RateWindow)
	}

	// (e) Accepted: record digest and timestamp, evicting past capacity.
	if !g.inRing(digest) {
		g.digests = append(g.digests, digest)
		g.repeats[digest] = 1
		if len(g.digests) > g.limits.DigestRing {
			evicted := g.digests[0]
			g.digests = g.digests[1:]
			delete(g.repeats, evicted)
		}
	}
	g.attempts = append(g.attempts, now)
	if len(g.attempts) > g.limits.AttemptRing {
		g.attempts = g.attempts[1:]
	}

	return true, ""
}

// Reset clears all guard state immediately.
func (g *Guard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reset(g.now())
}

// maybeReset clears state once ResetInterval has elapsed since the
// last reset. Caller holds the mutex.
func (g *Guard) maybeReset(now time.Time) {
	if now.Sub(g.lastReset) >= g.limits.ResetInterval {
		g.reset(now)
	}
}

// reset clears all three structures. Caller holds the mutex.
func (g *Guard) reset(now time.Time) {
	g.digests = nil
	g.repeats = make(map[string]int)
	g.attempts = nil
	g.lastReset = now
}

// inRing reports whether a digest is currently remembered.
// Caller holds the mutex.
func (g *Guard) inRing(digest string) bool {
	_, seen := g.repeats[digest]
	return seen
}

// shortDigest computes the fingerprint used for near-duplicate
// detection. Truncated SHA-256 is plenty for a ring of ten.
func shortDigest(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:8])
}
