package lock

import (
	"strings"
	"testing"
)

func TestContentHash_Deterministic(t *testing.T) {
	a := ContentHash("some locked content here")
	b := ContentHash("some locked content here")
	if a != b {
		t.Errorf("identical content hashed differently: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}

func TestContentHash_DistinctContent(t *testing.T) {
	a := ContentHash("content one")
	b := ContentHash("content two")
	if a == b {
		t.Error("distinct content produced identical hashes")
	}
}

func TestContentHash_UnicodeNormalization(t *testing.T) {
	// U+00E9 (precomposed) vs U+0065 U+0301 (combining) are the same
	// text after NFC normalization and must hash identically.
	composed := "café rules"
	decomposed := "café rules"
	if ContentHash(composed) != ContentHash(decomposed) {
		t.Error("NFC-equivalent content hashed differently")
	}
}

func TestHashPrefix(t *testing.T) {
	full := ContentHash("anything at all")
	prefix := HashPrefix(full)
	if len(prefix) != HashPrefixLen {
		t.Errorf("prefix length = %d, want %d", len(prefix), HashPrefixLen)
	}
	if !strings.HasPrefix(full, prefix) {
		t.Errorf("prefix %q is not a prefix of %q", prefix, full)
	}

	// Short input passes through untouched.
	if HashPrefix("abc") != "abc" {
		t.Error("short hash should pass through")
	}
}

func TestPriorityWeight(t *testing.T) {
	tests := []struct {
		p    Priority
		want float64
	}{
		{PriorityAlwaysCheck, 15},
		{PriorityImportant, 10},
		{PriorityReference, 5},
		{Priority("garbage"), 5}, // unparsable defaults to reference weight
	}
	for _, tt := range tests {
		if got := tt.p.Weight(); got != tt.want {
			t.Errorf("%q.Weight() = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestParsePriority(t *testing.T) {
	if p, err := ParsePriority(""); err != nil || p != PriorityReference {
		t.Errorf("ParsePriority(\"\") = (%q, %v), want reference default", p, err)
	}
	if _, err := ParsePriority("urgent"); err == nil {
		t.Error("ParsePriority(urgent) should fail")
	}
}
