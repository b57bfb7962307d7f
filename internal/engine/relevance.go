package engine

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/roach88/ctxlock/internal/lock"
	"github.com/roach88/ctxlock/internal/store"
)

// maxQueryKeywords caps how many normalized query keywords score a row.
const maxQueryKeywords = 20

// stopWords are dropped during query normalization. Short function
// words only; rule vocabulary (never, always, must) stays in.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "from": true,
	"into": true, "this": true, "that": true, "these": true, "those": true,
	"how": true, "what": true, "when": true, "where": true, "why": true,
	"who": true, "are": true, "was": true, "were": true, "will": true,
	"can": true, "could": true, "would": true, "have": true, "has": true,
	"had": true, "does": true, "did": true, "you": true, "your": true,
	"our": true, "their": true, "its": true, "all": true, "any": true,
	"but": true, "not": true,
}

// matchCategories runs stage 0: the query matches a category when any
// of the category's keywords appears in the lowered text. Category
// names come back sorted so the pipeline is deterministic.
func (e *Engine) matchCategories(text string) []string {
	lowered := strings.ToLower(text)
	var matched []string
	for name, keywords := range e.cfg.Categories {
		for _, kw := range keywords {
			if strings.Contains(lowered, kw) {
				matched = append(matched, name)
				break
			}
		}
	}
	sort.Strings(matched)
	return matched
}

// categoryNeedles unions the matched categories' keyword lists,
// deduplicated, preserving sorted-category then keyword order.
func (e *Engine) categoryNeedles(categories []string) []string {
	seen := map[string]bool{}
	var needles []string
	for _, name := range categories {
		for _, kw := range e.cfg.Categories[name] {
			if !seen[kw] {
				seen[kw] = true
				needles = append(needles, kw)
			}
		}
	}
	return needles
}

// queryKeywords normalizes free text into scoring keywords:
// lowercased, split on non-alphanumerics, length >2, stop words
// removed, deduplicated, capped at maxQueryKeywords.
func queryKeywords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})

	seen := map[string]bool{}
	var keywords []string
	for _, f := range fields {
		if len(f) <= 2 || stopWords[f] || seen[f] {
			continue
		}
		seen[f] = true
		keywords = append(keywords, f)
		if len(keywords) == maxQueryKeywords {
			break
		}
	}
	return keywords
}

// scoreRow computes the 0-1 relevance score: keyword overlap against
// the preview, concept overlap against key_concepts, recency of last
// access, and priority tier, each capped by its configured weight and
// summed over 100.
func (e *Engine) scoreRow(row store.MetadataRow, keywords []string) float64 {
	w := e.cfg.Weights

	preview := strings.ToLower(row.Preview)
	keywordPts := 0.0
	for _, kw := range keywords {
		if strings.Contains(preview, kw) {
			keywordPts += 10
		}
	}
	if keywordPts > w.Keyword {
		keywordPts = w.Keyword
	}

	conceptPts := 0.0
	for _, kw := range keywords {
		for _, concept := range row.KeyConcepts {
			if strings.Contains(strings.ToLower(concept), kw) {
				conceptPts += 10
				break
			}
		}
	}
	if conceptPts > w.Concept {
		conceptPts = w.Concept
	}

	recencyPts := 0.0
	if row.LastAccessed != nil {
		days := e.now().UTC().Sub(*row.LastAccessed).Hours() / 24
		recencyPts = w.Recency - days
		if recencyPts < 0 {
			recencyPts = 0
		}
	}

	priorityPts := row.Priority.Weight()
	if priorityPts > w.Priority {
		priorityPts = w.Priority
	}

	return (keywordPts + conceptPts + recencyPts + priorityPts) / 100
}

// CheckRelevance runs the two-stage retrieval pipeline.
//
// Stage 0 short-circuits queries matching no keyword category. Stage 1
// scans metadata only - content is never read there. Stage 2 scores
// and orders: always_check rows first regardless of score, then score
// descending, stable otherwise. Stage 3 hydrates full content for the
// rows inside the hydration budget (top ranks, high scores, or
// always_check); everything else carries its preview.
func (e *Engine) CheckRelevance(ctx context.Context, session, text string) ([]lock.ScoredLock, error) {
	categories := e.matchCategories(text)
	if len(categories) == 0 {
		return []lock.ScoredLock{}, nil
	}

	rows, err := e.store.ScanMetadata(ctx, session, store.MetadataFilter{
		Needles: e.categoryNeedles(categories),
	})
	if err != nil {
		return nil, err
	}

	keywords := queryKeywords(text)

	type scored struct {
		row   store.MetadataRow
		score float64
	}
	candidates := make([]scored, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, scored{row: row, score: e.scoreRow(row, keywords)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ai := candidates[i].row.Priority == lock.PriorityAlwaysCheck
		aj := candidates[j].row.Priority == lock.PriorityAlwaysCheck
		if ai != aj {
			return ai
		}
		return candidates[i].score > candidates[j].score
	})

	h := e.cfg.Hydration
	if len(candidates) > h.Candidates {
		candidates = candidates[:h.Candidates]
	}

	now := e.now().UTC()
	results := make([]lock.ScoredLock, 0, len(candidates))
	for rank, c := range candidates {
		sl := lock.ScoredLock{
			Label:             c.row.Label,
			Version:           c.row.Version,
			Preview:           c.row.Preview,
			Tags:              c.row.Tags,
			Priority:          c.row.Priority,
			Score:             c.score,
			MatchedCategories: categories,
			Content:           c.row.Preview,
		}

		hydrate := rank < h.FullContent ||
			c.score > h.ScoreThreshold ||
			c.row.Priority == lock.PriorityAlwaysCheck
		if hydrate {
			content, err := e.store.GetContent(ctx, session, c.row.Label, c.row.Version)
			if errors.Is(err, store.ErrNotFound) {
				// Row deleted between scan and hydration; keep the preview.
				results = append(results, sl)
				continue
			}
			if err != nil {
				return nil, err
			}
			if err := e.store.TouchAccess(ctx, session, c.row.Label, c.row.Version, now); err != nil {
				return nil, err
			}
			sl.Content = content
			sl.Hydrated = true
		}

		results = append(results, sl)
	}

	e.log.Debug("relevance check", "session", session,
		"categories", categories, "candidates", len(rows), "returned", len(results))

	return results, nil
}
