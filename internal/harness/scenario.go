package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance scenario: locks to set up, operations
// to run, and inline expectations.
type Scenario struct {
	// Name uniquely identifies this scenario; golden fixtures use it
	// as their file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Session is the session id all operations run under.
	// Defaults to "scenario-session".
	Session string `yaml:"session,omitempty"`

	// Locks are set up before the steps run and must succeed.
	Locks []LockSetup `yaml:"locks"`

	// Steps is the operation sequence under test.
	Steps []Step `yaml:"steps"`
}

// LockSetup is one lock created during scenario setup.
type LockSetup struct {
	Label      string   `yaml:"label"`
	Content    string   `yaml:"content"`
	Version    string   `yaml:"version,omitempty"`
	Priority   string   `yaml:"priority,omitempty"`
	Tags       []string `yaml:"tags,omitempty"`
	Persistent bool     `yaml:"persistent,omitempty"`
}

// Operation names accepted in a step.
const (
	OpLock       = "lock"
	OpRecall     = "recall"
	OpUnlock     = "unlock"
	OpCheck      = "check"
	OpViolations = "violations"
	OpArchived   = "archived"
)

// Step is one operation plus its expectations.
type Step struct {
	Op string `yaml:"op"`

	// Lock/recall/unlock targets.
	Label    string `yaml:"label,omitempty"`
	Content  string `yaml:"content,omitempty"`
	Version  string `yaml:"version,omitempty"`
	Priority string `yaml:"priority,omitempty"`
	Force    bool   `yaml:"force,omitempty"`

	// Query or action text for check/violations.
	Text string `yaml:"text,omitempty"`

	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect is a subset check on a step's outcome. Unset fields are not
// validated; Count uses -1 as "unchecked" so an explicit 0 still
// asserts emptiness.
type Expect struct {
	// Status is the expected result status (ok, rejected, ...).
	Status string `yaml:"status,omitempty"`

	// Count checks len(results), len(violations), or deleted rows,
	// depending on the operation.
	Count *int `yaml:"count,omitempty"`

	// First checks the first entry of a check/archived result list,
	// as "label@version".
	First string `yaml:"first,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields
// are rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	if s.Session == "" {
		s.Session = "scenario-session"
	}
	return &s, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, l := range s.Locks {
		if l.Label == "" {
			return fmt.Errorf("locks[%d]: label is required", i)
		}
		if l.Content == "" {
			return fmt.Errorf("locks[%d]: content is required", i)
		}
	}

	for i, step := range s.Steps {
		switch step.Op {
		case OpLock:
			if step.Label == "" || step.Content == "" {
				return fmt.Errorf("steps[%d]: lock needs label and content", i)
			}
		case OpRecall, OpUnlock:
			if step.Label == "" {
				return fmt.Errorf("steps[%d]: %s needs a label", i, step.Op)
			}
		case OpCheck, OpViolations:
			if step.Text == "" {
				return fmt.Errorf("steps[%d]: %s needs text", i, step.Op)
			}
		case OpArchived:
			// No parameters.
		case "":
			return fmt.Errorf("steps[%d]: op is required", i)
		default:
			return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
		}
	}

	return nil
}
