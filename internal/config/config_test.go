package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 40.0, cfg.Weights.Keyword)
	assert.Equal(t, 30.0, cfg.Weights.Concept)
	assert.Equal(t, 15.0, cfg.Weights.Recency)
	assert.Equal(t, 15.0, cfg.Weights.Priority)

	assert.Equal(t, 10, cfg.Hydration.Candidates)
	assert.Equal(t, 5, cfg.Hydration.FullContent)
	assert.Equal(t, 0.7, cfg.Hydration.ScoreThreshold)

	assert.Equal(t, 51200, cfg.Guard.MaxContent)
	assert.Equal(t, 60*time.Second, cfg.Guard.RateWindow)
	assert.Equal(t, 5*time.Minute, cfg.Guard.ResetInterval)

	assert.Contains(t, cfg.Categories, "output")
	assert.Contains(t, cfg.Categories["security"], "token")
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.cue"))
	assert.Error(t, err)
}

func TestParseDefaultsFill(t *testing.T) {
	// A file that only overrides one field keeps defaults elsewhere.
	cfg, err := parse(`weights: keyword: 50`, "inline.cue")
	require.NoError(t, err)

	assert.Equal(t, 50.0, cfg.Weights.Keyword)
	assert.Equal(t, 30.0, cfg.Weights.Concept)
	assert.Equal(t, 5, cfg.Hydration.FullContent)
	assert.Equal(t, 3, cfg.Guard.MaxRepeats)
}

func TestParseGuardSeconds(t *testing.T) {
	cfg, err := parse(`guard: {rateWindowSeconds: 120, resetSeconds: 600}`, "inline.cue")
	require.NoError(t, err)

	assert.Equal(t, 2*time.Minute, cfg.Guard.RateWindow)
	assert.Equal(t, 10*time.Minute, cfg.Guard.ResetInterval)
}

func TestParseCategoriesOverride(t *testing.T) {
	cfg, err := parse(`categories: {billing: ["invoice", "payment"]}`, "inline.cue")
	require.NoError(t, err)

	require.Len(t, cfg.Categories, 1)
	assert.Equal(t, []string{"invoice", "payment"}, cfg.Categories["billing"])
}

func TestParseCategoriesFallback(t *testing.T) {
	cfg, err := parse(`weights: recency: 20`, "inline.cue")
	require.NoError(t, err)

	// No categories in the file means the built-in table.
	assert.Contains(t, cfg.Categories, "database")
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := []struct {
		name   string
		source string
	}{
		{"negative weight", `weights: keyword: -1`},
		{"threshold above one", `hydration: scoreThreshold: 1.5`},
		{"repeats below two", `guard: maxRepeats: 1`},
		{"unknown field", `weighst: keyword: 40`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parse(tc.source, "inline.cue")
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ctxlock.cue")
	require.NoError(t, os.WriteFile(path, []byte("hydration: fullContent: 8\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Hydration.FullContent)
}
