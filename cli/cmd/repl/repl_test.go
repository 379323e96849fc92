package repl

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/refill/data"
	"github.com/ardnew/refill/ref"
)

func testData() yaml.MapSlice {
	return yaml.MapSlice{
		{Key: "users", Value: yaml.MapSlice{
			{Key: "alice", Value: yaml.MapSlice{{Key: "age", Value: int64(30)}}},
			{Key: "bob", Value: yaml.MapSlice{{Key: "age", Value: int64(25)}}},
		}},
		{Key: "greet", Value: func(name string) string { return "hello " + name }},
	}
}

func testModel(t *testing.T, history *History) model {
	t.Helper()

	if history == nil {
		history = NewHistory("")
	}

	return newModel(t.Context(), Config{Data: testData()}, history)
}

func typeText(m model, s string) model {
	for _, r := range s {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(model)
	}

	return m
}

func press(m model, k tea.KeyType) model {
	next, _ := m.Update(tea.KeyMsg{Type: k})

	return next.(model)
}

func TestEvaluate(t *testing.T) {
	c := Config{Data: testData(), Format: data.FormatJSON}

	tests := []struct {
		input string
		want  string
	}{
		{"{users.alice.age}", "30"},
		{"users.bob", "{\n  \"age\": 25\n}"},
		{`greet;["ann"]`, `"hello ann"`},
		{"greet;;false", `"<function/1>"`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := evaluate(t.Context(), c, tt.input)
			if err != nil {
				t.Fatalf("evaluate(%q): %v", tt.input, err)
			}

			if got != tt.want {
				t.Errorf("evaluate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	c := Config{Data: testData()}

	if _, err := evaluate(t.Context(), c, "{users.carol}"); !errors.Is(err, ref.ErrUnresolvedPath) {
		t.Errorf("expected ErrUnresolvedPath, got %v", err)
	}

	if _, err := evaluate(t.Context(), c, "{}"); !errors.Is(err, ErrNotDescriptor) {
		t.Errorf("expected ErrNotDescriptor, got %v", err)
	}

	if _, err := evaluate(t.Context(), c, "{users;[1];true}"); !errors.Is(err, ref.ErrNotInvocable) {
		t.Errorf("expected ErrNotInvocable, got %v", err)
	}
}

func TestModel_Completion(t *testing.T) {
	m := typeText(testModel(t, nil), "{users.al")

	if len(m.matches) != 1 || m.matches[0].Str != "alice" {
		t.Fatalf("expected alice, got %v", m.matches)
	}

	m = press(m, tea.KeyTab)

	if got := m.input.Value(); got != "{users.alice" {
		t.Errorf("input after tab = %q", got)
	}
}

func TestModel_TabCycle(t *testing.T) {
	m := typeText(testModel(t, nil), "{users.")

	m = press(m, tea.KeyTab)
	if got := m.input.Value(); got != "{users.alice" {
		t.Fatalf("first tab = %q", got)
	}

	m = press(m, tea.KeyTab)
	if got := m.input.Value(); got != "{users.bob" {
		t.Fatalf("second tab = %q", got)
	}

	m = press(m, tea.KeyEsc)
	if got := m.input.Value(); got != "{users." {
		t.Errorf("esc should restore input, got %q", got)
	}
}

func TestModel_ExecuteAndHistory(t *testing.T) {
	h := NewHistory("")
	m := typeText(testModel(t, h), "{users.bob.age}")
	m = press(m, tea.KeyEnter)

	if m.input.Value() != "" {
		t.Errorf("input not cleared: %q", m.input.Value())
	}

	if h.Len() != 1 {
		t.Fatalf("expected one history entry, got %d", h.Len())
	}

	m = press(m, tea.KeyUp)
	if got := m.input.Value(); got != "{users.bob.age}" {
		t.Errorf("history up = %q", got)
	}

	m = press(m, tea.KeyDown)
	if got := m.input.Value(); got != "" {
		t.Errorf("history down = %q", got)
	}
}

func TestModel_Modes(t *testing.T) {
	m := typeText(testModel(t, nil), "{users}")
	m = press(m, tea.KeyEsc)

	if m.mode != modeCtrl || m.input.Value() != "" {
		t.Fatalf("expected empty control mode, got mode=%d input=%q", m.mode, m.input.Value())
	}

	m = typeText(m, "format json")
	m = press(m, tea.KeyEnter)

	if m.config.Format != data.FormatJSON {
		t.Errorf("expected json format, got %v", m.config.Format)
	}

	m = press(m, tea.KeyEsc)
	if m.mode != modeEval {
		t.Error("expected eval mode")
	}

	m = typeText(m, "x")
	m = press(m, tea.KeyCtrlC)

	if m.input.Value() != "" || m.quitting {
		t.Error("ctrl+c should clear a non-empty line")
	}

	m = press(m, tea.KeyCtrlC)
	if !m.quitting || m.View() != "" {
		t.Error("ctrl+c on an empty line should quit")
	}
}

func TestModel_ListKeys(t *testing.T) {
	got := testModel(t, nil).listKeys()

	for _, want := range []string{"users", "greet", "<function/1>", "{ 2 keys }"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in %q", want, got)
		}
	}
}
