package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/ctxlock/internal/config"
	"github.com/roach88/ctxlock/internal/extract"
	"github.com/roach88/ctxlock/internal/guard"
	"github.com/roach88/ctxlock/internal/lock"
	"github.com/roach88/ctxlock/internal/store"
)

// Engine owns one store plus one process-local safety guard.
//
// All operations are synchronous; concurrent callers are serialized by
// the store's single writer connection, not by engine locking. Version
// races surface as StatusConflict via the store's UNIQUE constraint.
type Engine struct {
	store *store.Store
	guard *guard.Guard
	cfg   config.Config
	now   func() time.Time
	log   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig overrides the default configuration.
func WithConfig(cfg config.Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithClock injects a time source. Tests use a deterministic clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithLogger sets the engine's logger. Default discards.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// New creates an Engine over an open store.
func New(st *store.Store, opts ...Option) *Engine {
	e := &Engine{
		store: st,
		cfg:   config.Default(),
		now:   time.Now,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.guard = guard.New(e.cfg.Guard, guard.WithClock(e.now))
	return e
}

// ResetGuard clears the safety guard's ephemeral state.
func (e *Engine) ResetGuard() {
	e.guard.Reset()
}

// LockRequest is the input to Lock.
type LockRequest struct {
	Session    string
	Label      string
	Content    string
	Version    string // empty: allocate next version
	Priority   string // empty: reference
	Tags       []string
	Persistent bool
}

// LockResult reports the outcome of a Lock call.
type LockResult struct {
	Status  lock.Status `json:"status"`
	Label   string      `json:"label,omitempty"`
	Version string      `json:"version,omitempty"`
	Hash    string      `json:"hash,omitempty"`
	Size    int         `json:"size,omitempty"`
	Reason  string      `json:"reason,omitempty"`
}

// Lock validates, guards, and persists a new lock version.
//
// When the request omits a version the engine allocates the next one:
// "1.0" for a new label, otherwise the highest existing version with
// its minor bumped, and parent_version set to that prior version. An
// explicit version that already exists - and an allocation lost to a
// racing writer - both come back as StatusConflict.
func (e *Engine) Lock(ctx context.Context, req LockRequest) (LockResult, error) {
	if strings.TrimSpace(req.Label) == "" {
		return LockResult{Status: lock.StatusInvalid, Reason: "Label must not be empty"}, nil
	}
	priority, err := lock.ParsePriority(req.Priority)
	if err != nil {
		return LockResult{Status: lock.StatusInvalid, Reason: err.Error()}, nil
	}
	if req.Version != "" && !lock.ValidVersion(req.Version) {
		return LockResult{
			Status: lock.StatusInvalid,
			Reason: fmt.Sprintf("Version %q must match major.minor (e.g. \"1.0\")", req.Version),
		}, nil
	}

	if ok, reason := e.guard.Check(req.Content); !ok {
		e.log.Warn("lock rejected", "session", req.Session, "label", req.Label, "reason", reason)
		return LockResult{Status: lock.StatusRejected, Reason: reason}, nil
	}

	version := req.Version
	parent := ""
	if version == "" {
		max, found, err := e.store.MaxVersion(ctx, req.Session, req.Label)
		if err != nil {
			return LockResult{}, err
		}
		if found {
			if version, err = lock.BumpMinor(max); err != nil {
				return LockResult{}, fmt.Errorf("allocate version after %q: %w", max, err)
			}
			parent = max
		} else {
			version = lock.FirstVersion
		}
	}

	l := lock.ContextLock{
		SessionID:     req.Session,
		Label:         req.Label,
		Version:       version,
		Content:       req.Content,
		ContentHash:   lock.ContentHash(req.Content),
		LockedAt:      e.now().UTC(),
		Priority:      priority,
		Tags:          req.Tags,
		Preview:       extract.GeneratePreview(req.Content, lock.MaxPreviewLen),
		KeyConcepts:   extract.ExtractKeyConcepts(req.Content, req.Tags, lock.MaxKeyConcepts),
		ParentVersion: parent,
		Persistent:    req.Persistent,
	}

	if err := e.store.Insert(ctx, l); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return LockResult{
				Status: lock.StatusConflict,
				Label:  req.Label,
				Reason: fmt.Sprintf("Version %s of %q already exists; re-read the latest version and retry", version, req.Label),
			}, nil
		}
		return LockResult{}, err
	}

	e.log.Info("locked", "session", req.Session, "label", req.Label,
		"version", version, "size", len(req.Content), "priority", string(priority))

	return LockResult{
		Status:  lock.StatusOK,
		Label:   req.Label,
		Version: version,
		Hash:    l.ContentHash,
		Size:    len(req.Content),
	}, nil
}

// RecallResult reports the outcome of a Recall call.
type RecallResult struct {
	Status lock.Status       `json:"status"`
	Lock   *lock.ContextLock `json:"lock,omitempty"`
	Reason string            `json:"reason,omitempty"`
}

// Recall reads one lock by exact version, or the most recently locked
// version for "latest" (or empty). Reading counts as an access.
func (e *Engine) Recall(ctx context.Context, session, label, version string) (RecallResult, error) {
	var (
		l   *lock.ContextLock
		err error
	)
	switch {
	case version == "" || version == lock.VersionLatest:
		l, err = e.store.Latest(ctx, session, label)
	case !lock.ValidVersion(version):
		return RecallResult{
			Status: lock.StatusInvalid,
			Reason: fmt.Sprintf("Version %q must match major.minor, \"latest\", or be omitted", version),
		}, nil
	default:
		l, err = e.store.Get(ctx, session, label, version)
	}
	if errors.Is(err, store.ErrNotFound) {
		return RecallResult{
			Status: lock.StatusNotFound,
			Reason: fmt.Sprintf("No lock %q at version %q", label, orLatest(version)),
		}, nil
	}
	if err != nil {
		return RecallResult{}, err
	}

	if err := e.store.TouchAccess(ctx, session, label, l.Version, e.now().UTC()); err != nil {
		return RecallResult{}, err
	}

	return RecallResult{Status: lock.StatusOK, Lock: l}, nil
}

func orLatest(version string) string {
	if version == "" {
		return lock.VersionLatest
	}
	return version
}

// List returns lightweight summaries, newest first. Content is never
// loaded.
func (e *Engine) List(ctx context.Context, session string, sessionOnly bool) ([]lock.Summary, error) {
	return e.store.List(ctx, session, sessionOnly)
}

// UnlockResult reports the outcome of an Unlock call.
type UnlockResult struct {
	Status    lock.Status `json:"status"`
	Deleted   int         `json:"deleted"`
	Protected []string    `json:"protected,omitempty"`
	Reason    string      `json:"reason,omitempty"`
}

// Unlock archives and removes lock versions. The selector is an exact
// version, "latest", "all", or empty (latest).
//
// always_check rows are skipped without force and reported in
// Protected - a warning, not a failure, unless nothing else was
// deletable, in which case the status is StatusProtected.
func (e *Engine) Unlock(ctx context.Context, session, label, selector string, force bool) (UnlockResult, error) {
	if selector != "" && selector != lock.VersionLatest && selector != lock.VersionAll && !lock.ValidVersion(selector) {
		return UnlockResult{
			Status: lock.StatusInvalid,
			Reason: fmt.Sprintf("Selector %q must be a version, \"latest\", or \"all\"", selector),
		}, nil
	}

	rows, err := e.store.Versions(ctx, session, label)
	if err != nil {
		return UnlockResult{}, err
	}

	var targets []store.VersionRow
	switch selector {
	case lock.VersionAll:
		targets = rows
	case "", lock.VersionLatest:
		if len(rows) > 0 {
			targets = rows[:1]
		}
	default:
		for _, r := range rows {
			if r.Version == selector {
				targets = append(targets, r)
				break
			}
		}
	}
	if len(targets) == 0 {
		return UnlockResult{
			Status: lock.StatusNotFound,
			Reason: fmt.Sprintf("No lock %q matching %q", label, orLatest(selector)),
		}, nil
	}

	result := UnlockResult{Status: lock.StatusOK}
	now := e.now().UTC()
	for _, t := range targets {
		if t.Priority == lock.PriorityAlwaysCheck && !force {
			result.Protected = append(result.Protected, t.Version)
			continue
		}
		err := e.store.ArchiveAndDelete(ctx, session, label, t.Version, now)
		if errors.Is(err, store.ErrNotFound) {
			continue // deleted by a concurrent caller
		}
		if err != nil {
			return UnlockResult{}, err
		}
		result.Deleted++
		e.log.Info("unlocked", "session", session, "label", label, "version", t.Version)
	}

	if result.Deleted == 0 && len(result.Protected) > 0 {
		result.Status = lock.StatusProtected
		result.Reason = fmt.Sprintf(
			"Lock %q is always_check protected (versions %s); retry with force to delete",
			label, strings.Join(result.Protected, ", "))
	} else if len(result.Protected) > 0 {
		result.Reason = fmt.Sprintf(
			"Skipped always_check versions %s; retry with force to delete them",
			strings.Join(result.Protected, ", "))
	}

	return result, nil
}

// Archived lists the archived (deleted) locks for a session, most
// recently archived first.
func (e *Engine) Archived(ctx context.Context, session string) ([]store.ArchivedLock, error) {
	return e.store.ListArchived(ctx, session)
}

// Backfill recomputes preview and key_concepts for every live lock in
// a session and rewrites the rows whose derived fields changed.
// Returns how many rows were updated. Content is never rewritten.
func (e *Engine) Backfill(ctx context.Context, session string) (int, error) {
	summaries, err := e.store.List(ctx, session, true)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, sum := range summaries {
		l, err := e.store.Get(ctx, session, sum.Label, sum.Version)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return updated, err
		}

		preview := extract.GeneratePreview(l.Content, lock.MaxPreviewLen)
		concepts := extract.ExtractKeyConcepts(l.Content, l.Tags, lock.MaxKeyConcepts)
		if preview == l.Preview && equalStrings(concepts, l.KeyConcepts) {
			continue
		}
		if err := e.store.UpdateDerived(ctx, session, l.Label, l.Version, preview, concepts); err != nil {
			return updated, err
		}
		updated++
	}

	e.log.Info("backfill complete", "session", session, "updated", updated)
	return updated, nil
}

// GarbageCollect removes non-persistent reference-tier locks older
// than age, archiving each first. Returns how many were removed.
func (e *Engine) GarbageCollect(ctx context.Context, age time.Duration) (int, error) {
	now := e.now().UTC()
	removed, err := e.store.GarbageCollect(ctx, now.Add(-age), now)
	if err != nil {
		return removed, err
	}
	if removed > 0 {
		e.log.Info("garbage collected", "removed", removed, "age", age)
	}
	return removed, nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
