package extract

import (
	"regexp"
	"strings"
)

// Preview composition bounds.
const (
	maxBodyLines     = 3
	maxRuleLines     = 2
	substantialChars = 30
)

var (
	headingRE = regexp.MustCompile(`^\s*#{1,6}\s+\S`)
	// key:value-shaped lines like "Timeout: 30s" or "auth header: Bearer".
	keyValueRE = regexp.MustCompile(`^\s*[A-Za-z0-9_\- ]{1,40}:\s+\S`)
)

// ruleMarkers are the uppercase emphasis words that promote a line
// into the preview's "Rules:" suffix.
var ruleMarkers = []string{"MUST", "ALWAYS", "NEVER", "REQUIRED", "CRITICAL", "WARNING", "IMPORTANT"}

// GeneratePreview derives a short summary from full content so later
// relevance scans never have to read the content column.
//
// Composition: a title (heading line if present, else the first
// non-empty line), up to 3 substantial or key:value lines, and up to 2
// rule sentences as a "Rules:" suffix, joined with " | " and truncated
// to maxLen with an ellipsis. Falls back to the raw content prefix
// when composition yields nothing.
func GeneratePreview(content string, maxLen int) string {
	lines := strings.Split(content, "\n")

	title, titleIdx := previewTitle(lines)

	var parts []string
	if title != "" {
		parts = append(parts, title)
	}

	// Body: substantial or key:value lines after the title.
	body := 0
	for i, line := range lines {
		if body >= maxBodyLines {
			break
		}
		if i == titleIdx {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if len(trimmed) > substantialChars || keyValueRE.MatchString(line) {
			parts = append(parts, trimmed)
			body++
		}
	}

	// Rules: lines carrying an uppercase emphasis marker, all lines in scope.
	var rules []string
	for _, line := range lines {
		if len(rules) >= maxRuleLines {
			break
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if hasRuleMarker(trimmed) {
			rules = append(rules, trimmed)
		}
	}
	if len(rules) > 0 {
		parts = append(parts, "Rules: "+strings.Join(rules, "; "))
	}

	preview := strings.Join(parts, " | ")
	if strings.TrimSpace(preview) == "" {
		preview = strings.TrimSpace(content)
	}

	return truncate(preview, maxLen)
}

// previewTitle picks the heading line if one exists, otherwise the
// first non-empty line. Returns the cleaned title and its line index
// (-1 when content is all blank).
func previewTitle(lines []string) (string, int) {
	for i, line := range lines {
		if headingRE.MatchString(line) {
			return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#")), i
		}
	}
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			return strings.TrimSpace(line), i
		}
	}
	return "", -1
}

// hasRuleMarker reports whether a line contains one of the uppercase
// emphasis words as a whole word. Matching is case-sensitive: "must"
// in prose is not a rule, "MUST" is.
func hasRuleMarker(line string) bool {
	for _, marker := range ruleMarkers {
		idx := 0
		for {
			pos := strings.Index(line[idx:], marker)
			if pos < 0 {
				break
			}
			start := idx + pos
			end := start + len(marker)
			beforeOK := start == 0 || !isWordByte(line[start-1])
			afterOK := end == len(line) || !isWordByte(line[end])
			if beforeOK && afterOK {
				return true
			}
			idx = end
		}
	}
	return false
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

// truncate cuts s to maxLen runes, appending an ellipsis when
// anything was dropped.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
