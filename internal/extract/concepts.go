package extract

import (
	"regexp"
	"strings"
)

// Per-source caps for concept extraction.
const (
	maxCamelConcepts = 5
	maxSnakeConcepts = 5
	maxVocabPerGroup = 3
)

var (
	// Multi-word CamelCase identifiers: RateLimiter, HttpClientPool.
	camelRE = regexp.MustCompile(`\b[A-Z][a-z0-9]+(?:[A-Z][a-z0-9]+)+\b`)

	// snake_case identifiers: access_count, parent_version.
	snakeRE = regexp.MustCompile(`\b[a-z][a-z0-9]*(?:_[a-z0-9]+)+\b`)
)

// vocabGroups are fixed domain-vocabulary patterns: protocol, security,
// infrastructure, and language terms. Each group contributes at most
// maxVocabPerGroup concepts.
var vocabGroups = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(https?|grpc|graphql|rest|websocket|oauth2?|jwt|tls|ssh|smtp|mqtt|webhook)\b`),
	regexp.MustCompile(`(?i)\b(auth\w*|encryption|tokens?|credentials?|secrets?|passwords?|rbac|cors|csrf)\b`),
	regexp.MustCompile(`(?i)\b(docker|kubernetes|terraform|postgres(?:ql)?|sqlite|mysql|redis|kafka|nginx|lambda|s3)\b`),
	regexp.MustCompile(`(?i)\b(golang|python|typescript|javascript|rust|java|ruby|sql|bash|yaml|json|toml)\b`),
}

// ExtractKeyConcepts derives the bounded term-set stored alongside a
// lock: tags first, then CamelCase and snake_case identifiers, then
// domain-vocabulary hits, capped at limit. Deterministic for a given
// (content, tags) pair; dedup is case-insensitive, first spelling wins.
func ExtractKeyConcepts(content string, tags []string, limit int) []string {
	concepts := []string{}
	seen := map[string]bool{}

	add := func(c string) bool {
		c = strings.TrimSpace(c)
		if c == "" {
			return false
		}
		key := strings.ToLower(c)
		if seen[key] {
			return false
		}
		seen[key] = true
		concepts = append(concepts, c)
		return true
	}

	// Tags seed the set verbatim.
	for _, tag := range tags {
		if len(concepts) >= limit {
			return concepts
		}
		add(tag)
	}

	// CamelCase multi-word identifiers.
	added := 0
	for _, m := range camelRE.FindAllString(content, -1) {
		if added >= maxCamelConcepts || len(concepts) >= limit {
			break
		}
		if add(m) {
			added++
		}
	}

	// snake_case identifiers.
	added = 0
	for _, m := range snakeRE.FindAllString(content, -1) {
		if added >= maxSnakeConcepts || len(concepts) >= limit {
			break
		}
		if add(m) {
			added++
		}
	}

	// Domain vocabulary, per group.
	for _, group := range vocabGroups {
		added = 0
		for _, m := range group.FindAllString(content, -1) {
			if added >= maxVocabPerGroup || len(concepts) >= limit {
				break
			}
			if add(strings.ToLower(m)) {
				added++
			}
		}
	}

	if len(concepts) > limit {
		concepts = concepts[:limit]
	}
	return concepts
}
