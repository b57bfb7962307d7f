// Package config loads and validates engine configuration.
//
// Configuration is declarative CUE validated against an embedded
// schema; every field has a default, so callers without a config file
// get the stock engine. Scoring weights and hydration budgets are
// configuration, not control flow.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/ctxlock/internal/guard"
)

//go:embed schema.cue
var schemaCUE string

// Weights are the maximum points each scoring component contributes
// to the 0-100 raw relevance score.
type Weights struct {
	Keyword  float64 `json:"keyword"`
	Concept  float64 `json:"concept"`
	Recency  float64 `json:"recency"`
	Priority float64 `json:"priority"`
}

// Hydration is the relevance pipeline's content budget: Candidates
// rows are considered, the top FullContent by rank are hydrated, and
// any row scoring above ScoreThreshold is hydrated regardless of rank.
type Hydration struct {
	Candidates     int     `json:"candidates"`
	FullContent    int     `json:"fullContent"`
	ScoreThreshold float64 `json:"scoreThreshold"`
}

// Config is the full engine configuration.
type Config struct {
	Weights    Weights
	Hydration  Hydration
	Guard      guard.Limits
	Categories map[string][]string
}

// defaultCategories is the built-in keyword category table for the
// relevance fast path. Queries matching none of these short-circuit
// to an empty result.
func defaultCategories() map[string][]string {
	return map[string][]string{
		"output":   {"output", "folder", "directory", "file", "generate", "write", "save", "export"},
		"test":     {"test", "testing", "spec", "coverage", "assert", "mock", "fixture"},
		"config":   {"config", "configuration", "setting", "env", "environment", "flag", "option"},
		"api":      {"api", "endpoint", "request", "response", "rest", "route", "handler"},
		"database": {"database", "db", "sql", "query", "schema", "migration", "table", "index"},
		"security": {"security", "auth", "authenticate", "authorization", "token", "secret", "credential", "jwt", "password"},
		"deploy":   {"deploy", "deployment", "release", "rollback", "ci", "pipeline", "docker", "kubernetes"},
	}
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Weights:    Weights{Keyword: 40, Concept: 30, Recency: 15, Priority: 15},
		Hydration:  Hydration{Candidates: 10, FullContent: 5, ScoreThreshold: 0.7},
		Guard:      guard.DefaultLimits(),
		Categories: defaultCategories(),
	}
}

// fileConfig mirrors the CUE schema shape for decoding.
type fileConfig struct {
	Weights   Weights   `json:"weights"`
	Hydration Hydration `json:"hydration"`
	Guard     struct {
		MinContent        int `json:"minContent"`
		MaxContent        int `json:"maxContent"`
		DigestRing        int `json:"digestRing"`
		MaxRepeats        int `json:"maxRepeats"`
		AttemptRing       int `json:"attemptRing"`
		RateLimit         int `json:"rateLimit"`
		RateWindowSeconds int `json:"rateWindowSeconds"`
		ResetSeconds      int `json:"resetSeconds"`
	} `json:"guard"`
	Categories map[string][]string `json:"categories"`
}

// Load reads a CUE configuration file, validates it against the
// embedded schema, and fills unset fields from defaults. An empty
// path returns Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	return parse(string(data), path)
}

// parse validates CUE source against the schema and decodes it.
func parse(source, filename string) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))
	if !def.Exists() {
		return Config{}, fmt.Errorf("config schema missing #Config definition")
	}

	user := ctx.CompileString(source, cue.Filename(filename))
	if err := user.Err(); err != nil {
		return Config{}, fmt.Errorf("compile config %s: %w", filename, err)
	}

	merged := def.Unify(user)
	if err := merged.Validate(cue.Concrete(true), cue.Final()); err != nil {
		return Config{}, fmt.Errorf("validate config %s: %w", filename, err)
	}

	var fc fileConfig
	if err := merged.Decode(&fc); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", filename, err)
	}

	cfg := Config{
		Weights:   fc.Weights,
		Hydration: fc.Hydration,
		Guard: guard.Limits{
			MinContent:    fc.Guard.MinContent,
			MaxContent:    fc.Guard.MaxContent,
			DigestRing:    fc.Guard.DigestRing,
			MaxRepeats:    fc.Guard.MaxRepeats,
			AttemptRing:   fc.Guard.AttemptRing,
			RateLimit:     fc.Guard.RateLimit,
			RateWindow:    time.Duration(fc.Guard.RateWindowSeconds) * time.Second,
			ResetInterval: time.Duration(fc.Guard.ResetSeconds) * time.Second,
		},
		Categories: fc.Categories,
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = defaultCategories()
	}

	return cfg, nil
}
