package store

import (
	"context"
	"strings"
	"testing"
)

func TestCompileFilter_Parameterized(t *testing.T) {
	where, params := compileFilter("sess-1", MetadataFilter{Needles: []string{"auth", "token"}})

	if !strings.HasPrefix(where, "session_id = ?") {
		t.Errorf("filter must scope by session: %q", where)
	}
	// One session param plus 4 columns per needle.
	if len(params) != 1+2*4 {
		t.Errorf("param count = %d, want 9", len(params))
	}
	for _, p := range params[1:] {
		s, ok := p.(string)
		if !ok {
			t.Fatalf("non-string needle param: %T", p)
		}
		if !strings.HasPrefix(s, "%") || !strings.HasSuffix(s, "%") {
			t.Errorf("needle param %q is not a substring pattern", s)
		}
	}
}

func TestCompileFilter_EscapesLikeMetacharacters(t *testing.T) {
	_, params := compileFilter("sess-1", MetadataFilter{Needles: []string{"100%_done"}})

	got := params[1].(string)
	if !strings.Contains(got, `\%`) || !strings.Contains(got, `\_`) {
		t.Errorf("LIKE metacharacters not escaped: %q", got)
	}
}

func TestCompileFilter_NoNeedlesMatchesNothing(t *testing.T) {
	where, _ := compileFilter("sess-1", MetadataFilter{})
	if !strings.Contains(where, "1 = 0") {
		t.Errorf("empty filter should be an impossible predicate: %q", where)
	}
}

func TestScanMetadata_FiltersAndProjects(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	auth := testLock("sess-1", "auth_spec", "1.0", "All requests MUST use JWT tokens")
	auth.Preview = "Auth spec | requests MUST use JWT tokens"
	auth.KeyConcepts = []string{"jwt", "token"}
	style := testLock("sess-1", "code_style", "1.0", "Use tabs for indentation always")
	style.Preview = "Code style | tabs for indentation"

	if err := s.Insert(ctx, auth); err != nil {
		t.Fatal(err)
	}
	if err := s.Insert(ctx, style); err != nil {
		t.Fatal(err)
	}

	rows, err := s.ScanMetadata(ctx, "sess-1", MetadataFilter{Needles: []string{"token", "jwt"}})
	if err != nil {
		t.Fatalf("ScanMetadata() failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("ScanMetadata() returned %d rows, want 1", len(rows))
	}
	if rows[0].Label != "auth_spec" {
		t.Errorf("ScanMetadata() matched %q, want auth_spec", rows[0].Label)
	}
	if rows[0].Preview == "" || len(rows[0].KeyConcepts) != 2 {
		t.Errorf("projection incomplete: %+v", rows[0])
	}
}

func TestScanMetadata_MatchesLabelAndTags(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	l := testLock("sess-1", "deploy_checklist", "1.0", "Steps before every release go here")
	l.Preview = "Steps before every release"
	l.Tags = []string{"release", "pipeline"}
	if err := s.Insert(ctx, l); err != nil {
		t.Fatal(err)
	}

	// Needle hits the label column.
	byLabel, err := s.ScanMetadata(ctx, "sess-1", MetadataFilter{Needles: []string{"deploy"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(byLabel) != 1 {
		t.Errorf("label match returned %d rows, want 1", len(byLabel))
	}

	// Needle hits the tags column.
	byTag, err := s.ScanMetadata(ctx, "sess-1", MetadataFilter{Needles: []string{"pipeline"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(byTag) != 1 {
		t.Errorf("tag match returned %d rows, want 1", len(byTag))
	}
}

func TestScanMetadata_CaseInsensitive(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	l := testLock("sess-1", "spec", "1.0", "Authentication rules live here now")
	l.Preview = "Authentication rules"
	if err := s.Insert(ctx, l); err != nil {
		t.Fatal(err)
	}

	rows, err := s.ScanMetadata(ctx, "sess-1", MetadataFilter{Needles: []string{"AUTHENTICATION"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Errorf("case-insensitive match returned %d rows, want 1", len(rows))
	}
}
