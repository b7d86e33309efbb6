package highlight

import (
	"slices"
	"strings"
	"testing"

	"github.com/dshills/quill/internal/renderer/core"
)

func joinRuns(runs []Run) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

func TestMapperStack(t *testing.T) {
	p := DefaultPalette()
	m := NewMapper(p, core.DefaultFont())

	kw, _ := p.Index("keyword")
	str, _ := p.Index("string")

	events := slices.Values([]Event{
		EventCategoryStart{Index: kw},
		EventSource{Start: 0, End: 2},
		EventCategoryStart{Index: str},
		EventSource{Start: 2, End: 4},
		EventCategoryEnd{},
		EventSource{Start: 4, End: 5},
		EventCategoryEnd{},
		EventSource{Start: 5, End: 6},
	})
	runs := m.Runs("abcdef", events)

	want := []struct {
		text string
		cat  int
	}{
		{"ab", kw}, {"cd", str}, {"e", kw}, {"f", NoCategory},
	}
	if len(runs) != len(want) {
		t.Fatalf("got %d runs, want %d: %+v", len(runs), len(want), runs)
	}
	for i, w := range want {
		if runs[i].Text != w.text || runs[i].Category != w.cat {
			t.Errorf("run %d = %q/%d, want %q/%d", i, runs[i].Text, runs[i].Category, w.text, w.cat)
		}
		if !runs[i].Style.Foreground.Equals(p.Color(w.cat)) {
			t.Errorf("run %d color = %v, want %v", i, runs[i].Style.Foreground, p.Color(w.cat))
		}
		if runs[i].Font != core.DefaultFont() {
			t.Errorf("run %d font = %+v", i, runs[i].Font)
		}
	}
}

func TestMapperFillsGaps(t *testing.T) {
	m := NewMapper(DefaultPalette(), core.DefaultFont())

	events := slices.Values([]Event{
		EventSource{Start: 2, End: 3},
		EventSource{Start: 1, End: 4}, // overlaps the previous range
		EventSource{Start: 6, End: 99},
	})
	runs := m.Runs("abcdefgh", events)

	if got := joinRuns(runs); got != "abcdefgh" {
		t.Fatalf("joined = %q, want %q", got, "abcdefgh")
	}
	for i := 1; i < len(runs); i++ {
		if runs[i].Start != runs[i-1].End {
			t.Errorf("run %d starts at %d, previous ends at %d", i, runs[i].Start, runs[i-1].End)
		}
	}
}

func TestMapperUnbalancedEnd(t *testing.T) {
	m := NewMapper(DefaultPalette(), core.DefaultFont())
	events := slices.Values([]Event{
		EventCategoryEnd{},
		EventSource{Start: 0, End: 3},
	})
	runs := m.Runs("abc", events)
	if len(runs) != 1 || runs[0].Category != NoCategory {
		t.Errorf("runs = %+v, want one uncategorized run", runs)
	}
}

func TestRunWidth(t *testing.T) {
	tests := []struct {
		text  string
		width int
	}{
		{"abc", 3},
		{"日本", 4},
		{"é", 1},
		{"", 0},
	}
	for _, tt := range tests {
		r := Run{Start: 0, End: len(tt.text), Text: tt.text}
		if got := r.Width(); got != tt.width {
			t.Errorf("Width(%q) = %d, want %d", tt.text, got, tt.width)
		}
		if r.Len() != len(tt.text) {
			t.Errorf("Len(%q) = %d", tt.text, r.Len())
		}
	}
}
