package guard

import "regexp"

// forbiddenPattern pairs a regex with the rejection reason shown to
// the caller.
type forbiddenPattern struct {
	re     *regexp.Regexp
	reason string
}

// forbiddenPatterns catch degenerate writes: text that is itself a
// lock command, an assistant echo confirming a lock, or a pasted
// conversation transcript. All patterns are case-insensitive and
// multiline; any match rejects.
//
// The list is fixed and evaluated in order; first match wins.
var forbiddenPatterns = []forbiddenPattern{
	{
		re:     regexp.MustCompile(`(?im)^\s*(?:please\s+)?lock\s+(?:this|the)\s+(?:context|conversation|response|above)`),
		reason: "Content looks like a lock command, not content to lock",
	},
	{
		re:     regexp.MustCompile(`(?im)\bcontext\s+locked\s+successfully\b`),
		reason: "Content looks like a lock confirmation echo",
	},
	{
		re:     regexp.MustCompile(`(?im)\bi(?:'|\x{2019})?ve\s+(?:now\s+)?locked\s+(?:this|that|the)\b`),
		reason: "Content looks like an assistant confirmation echo",
	},
	{
		re:     regexp.MustCompile(`(?im)\[\s*\.\.\.\s*\d+\s+(?:more\s+)?messages?\s+(?:later|omitted|truncated)`),
		reason: "Content looks like a conversation transcript artifact",
	},
	{
		re:     regexp.MustCompile(`(?im)^version:\s*\d+\.\d+\s*$[\s\S]{0,80}?^hash:\s*[0-9a-f]{8,}\s*$`),
		reason: "Content looks like echoed lock metadata (version and hash)",
	},
}
