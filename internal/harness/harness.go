package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/roach88/ctxlock/internal/engine"
	"github.com/roach88/ctxlock/internal/lock"
	"github.com/roach88/ctxlock/internal/store"
	"github.com/roach88/ctxlock/internal/testutil"
)

// scenarioEpoch is the fixed starting time for every scenario run.
var scenarioEpoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// Event is one step's recorded outcome. Fields are limited to stable,
// hand-checkable values so golden fixtures stay reviewable: scores and
// derived previews are asserted in unit tests, not here.
type Event struct {
	Seq        int      `json:"seq"`
	Op         string   `json:"op"`
	Status     string   `json:"status"`
	Label      string   `json:"label,omitempty"`
	Version    string   `json:"version,omitempty"`
	Hash       string   `json:"hash,omitempty"`
	Deleted    int      `json:"deleted,omitempty"`
	Protected  []string `json:"protected,omitempty"`
	Results    []string `json:"results,omitempty"`
	Violations []string `json:"violations,omitempty"`
}

// Result is the full outcome of a scenario run.
type Result struct {
	Scenario string  `json:"scenario"`
	Events   []Event `json:"events"`
}

// Run executes a scenario against a fresh engine over a temp store.
// Setup locks must succeed; step expectations are checked inline and
// the first mismatch fails the run.
func Run(scenario *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "ctxlock-harness-")
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	defer os.RemoveAll(dir)

	st, err := store.Open(filepath.Join(dir, "locks.db"))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	defer st.Close()

	clk := testutil.NewClock(scenarioEpoch)
	eng := engine.New(st, engine.WithClock(clk.Now))
	ctx := context.Background()

	for i, setup := range scenario.Locks {
		clk.Advance(time.Minute)
		res, err := eng.Lock(ctx, engine.LockRequest{
			Session:    scenario.Session,
			Label:      setup.Label,
			Content:    setup.Content,
			Version:    setup.Version,
			Priority:   setup.Priority,
			Tags:       setup.Tags,
			Persistent: setup.Persistent,
		})
		if err != nil {
			return nil, fmt.Errorf("scenario %s: setup lock %d: %w", scenario.Name, i, err)
		}
		if res.Status != lock.StatusOK {
			return nil, fmt.Errorf("scenario %s: setup lock %q: %s: %s",
				scenario.Name, setup.Label, res.Status, res.Reason)
		}
	}

	result := &Result{Scenario: scenario.Name}
	for i, step := range scenario.Steps {
		clk.Advance(time.Minute)

		event, err := runStep(ctx, eng, scenario.Session, step)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: step %d (%s): %w", scenario.Name, i, step.Op, err)
		}
		event.Seq = i + 1
		result.Events = append(result.Events, event)

		if err := checkExpect(step, event); err != nil {
			return nil, fmt.Errorf("scenario %s: step %d (%s): %w", scenario.Name, i, step.Op, err)
		}
	}

	return result, nil
}

func runStep(ctx context.Context, eng *engine.Engine, session string, step Step) (Event, error) {
	event := Event{Op: step.Op, Label: step.Label}

	switch step.Op {
	case OpLock:
		res, err := eng.Lock(ctx, engine.LockRequest{
			Session:  session,
			Label:    step.Label,
			Content:  step.Content,
			Version:  step.Version,
			Priority: step.Priority,
		})
		if err != nil {
			return event, err
		}
		event.Status = string(res.Status)
		event.Version = res.Version
		event.Hash = lock.HashPrefix(res.Hash)

	case OpRecall:
		res, err := eng.Recall(ctx, session, step.Label, step.Version)
		if err != nil {
			return event, err
		}
		event.Status = string(res.Status)
		if res.Lock != nil {
			event.Version = res.Lock.Version
			event.Hash = lock.HashPrefix(res.Lock.ContentHash)
		}

	case OpUnlock:
		res, err := eng.Unlock(ctx, session, step.Label, step.Version, step.Force)
		if err != nil {
			return event, err
		}
		event.Status = string(res.Status)
		event.Deleted = res.Deleted
		event.Protected = res.Protected

	case OpCheck:
		results, err := eng.CheckRelevance(ctx, session, step.Text)
		if err != nil {
			return event, err
		}
		event.Status = string(lock.StatusOK)
		for _, r := range results {
			entry := fmt.Sprintf("%s@%s", r.Label, r.Version)
			if r.Hydrated {
				entry += " hydrated"
			}
			event.Results = append(event.Results, entry)
		}

	case OpViolations:
		violations, err := eng.CheckViolations(ctx, session, step.Text)
		if err != nil {
			return event, err
		}
		event.Status = string(lock.StatusOK)
		for _, v := range violations {
			event.Violations = append(event.Violations,
				fmt.Sprintf("%s %s@%s: %s", v.Rule.Severity, v.Label, v.Version, v.Rule.Text))
		}

	case OpArchived:
		archived, err := eng.Archived(ctx, session)
		if err != nil {
			return event, err
		}
		event.Status = string(lock.StatusOK)
		for _, a := range archived {
			event.Results = append(event.Results,
				fmt.Sprintf("%s@%s", a.Lock.Label, a.Lock.Version))
		}

	default:
		return event, fmt.Errorf("unknown op %q", step.Op)
	}

	return event, nil
}

func checkExpect(step Step, event Event) error {
	if step.Expect == nil {
		return nil
	}

	if step.Expect.Status != "" && event.Status != step.Expect.Status {
		return fmt.Errorf("expected status %q, got %q", step.Expect.Status, event.Status)
	}

	if step.Expect.Count != nil {
		got := len(event.Results) + len(event.Violations)
		if step.Op == OpUnlock {
			got = event.Deleted
		}
		if got != *step.Expect.Count {
			return fmt.Errorf("expected count %d, got %d", *step.Expect.Count, got)
		}
	}

	if step.Expect.First != "" {
		if len(event.Results) == 0 {
			return fmt.Errorf("expected first result %q, got none", step.Expect.First)
		}
		first := event.Results[0]
		if first != step.Expect.First && first != step.Expect.First+" hydrated" {
			return fmt.Errorf("expected first result %q, got %q", step.Expect.First, first)
		}
	}

	return nil
}
