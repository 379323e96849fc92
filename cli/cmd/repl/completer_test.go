package repl

import (
	"slices"
	"testing"

	"github.com/goccy/go-yaml"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"after_brace", "{us", 3, "us", 1, 3},
		{"dot_separated", "{users.al", 9, "al", 7, 9},
		{"in_parameters", `{f;["x",ba`, 10, "ba", 8, 10},
		{"empty_at_boundary", "{a;", 3, "", 3, 3},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"hyphenated", "{log-level", 10, "log-level", 1, 10},
		{"empty_after_dot", "{users.", 7, "", 7, 7},
		{"cursor_past_end", "ab", 9, "ab", 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestParentPath(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wordStart int
		want      string
	}{
		{"top_level", "fo", 0, ""},
		{"after_brace", "{fo", 1, ""},
		{"simple_chain", "{users.alice.", 13, "users.alice"},
		{"partial_word", "{users.al", 7, "users"},
		{"bare_chain", "a.b.c.", 6, "a.b.c"},
		{"after_parameters", `{f;["x",a.`, 10, "a"},
		{"no_chain", "{a;", 3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parentPath(tt.input, tt.wordStart); got != tt.want {
				t.Errorf("parentPath(%q, %d) = %q, want %q",
					tt.input, tt.wordStart, got, tt.want)
			}
		})
	}
}

func TestChildCandidates(t *testing.T) {
	tree := yaml.MapSlice{
		{Key: "users", Value: yaml.MapSlice{
			{Key: "alice", Value: 1},
			{Key: "bob", Value: 2},
		}},
		{Key: "greet", Value: "hi"},
	}

	if got := childCandidates(tree, ""); !slices.Equal(got, []string{"users", "greet"}) {
		t.Errorf("top level = %v", got)
	}

	if got := childCandidates(tree, "users"); !slices.Equal(got, []string{"alice", "bob"}) {
		t.Errorf("users = %v", got)
	}

	if got := childCandidates(tree, "nobody"); got != nil {
		t.Errorf("expected no candidates, got %v", got)
	}
}

func TestRenderCandidateBar(t *testing.T) {
	m := testModel(t, nil)
	m = typeText(m, "{users.")

	if len(m.matches) != 2 {
		t.Fatalf("expected both children, got %v", m.matches)
	}

	if bar := renderCandidateBar(m.matches, -1, false, 80); bar == "" {
		t.Error("expected a non-empty candidate bar")
	}

	if bar := renderCandidateBar(nil, -1, false, 80); bar != "" {
		t.Errorf("expected empty bar, got %q", bar)
	}
}
