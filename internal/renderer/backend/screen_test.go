package backend

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/quill/internal/renderer/core"
	"github.com/dshills/quill/internal/renderer/highlight"
)

func newSimScreen(t *testing.T, width, height int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	s.SetSize(width, height)
	t.Cleanup(s.Fini)
	return s
}

func plainRuns(text string) []highlight.Run {
	return []highlight.Run{{Start: 0, End: len(text), Text: text, Category: highlight.NoCategory, Style: core.DefaultStyle()}}
}

func lineStrings(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.String()
	}
	return out
}

func TestLayout_Newlines(t *testing.T) {
	p := NewScreenPainter(newSimScreen(t, 80, 10))
	lines := p.Layout(plainRuns("ab\r\ncd\n"), 80)
	assert.Equal(t, []string{"ab", "cd", ""}, lineStrings(lines))
}

func TestLayout_Tabs(t *testing.T) {
	p := NewScreenPainter(newSimScreen(t, 80, 10), WithTabWidth(4))
	lines := p.Layout(plainRuns("\tx\ty"), 80)
	require.Len(t, lines, 1)
	assert.Equal(t, "    x   y", lines[0].String())
	assert.Equal(t, 9, lines[0].Width())
}

func TestLayout_Wrap(t *testing.T) {
	s := newSimScreen(t, 4, 10)

	wrapped := NewScreenPainter(s).Layout(plainRuns("abcdefghij"), 4)
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, lineStrings(wrapped))

	clipped := NewScreenPainter(s, WithWrap(false)).Layout(plainRuns("abcdefghij"), 4)
	assert.Equal(t, []string{"abcdefghij"}, lineStrings(clipped))
}

func TestLayout_WideGraphemes(t *testing.T) {
	p := NewScreenPainter(newSimScreen(t, 3, 10))
	lines := p.Layout(plainRuns("a世界"), 3)
	require.Len(t, lines, 2)
	assert.Equal(t, "a世", lines[0].String())
	assert.Equal(t, 3, lines[0].Width())
	assert.Equal(t, "界", lines[1].String())

	combined := p.Layout(plainRuns("é"), 3)
	require.Len(t, combined[0], 1)
	assert.Equal(t, 'e', combined[0][0].Main)
	assert.Equal(t, []rune{'\u0301'}, combined[0][0].Combining)
}

func TestPaint_StylesAndScroll(t *testing.T) {
	s := newSimScreen(t, 10, 2)
	p := NewScreenPainter(s)

	red := core.NewStyle(core.ColorFromRGB(255, 0, 0))
	runs := []highlight.Run{
		{Start: 0, End: 3, Text: "one", Category: 0, Style: red},
		{Start: 3, End: 14, Text: "\ntwo\nthree\n", Category: highlight.NoCategory, Style: core.DefaultStyle()},
	}

	total := p.Paint(runs, 0)
	assert.Equal(t, 4, total)

	mainc, _, style, _ := s.GetContent(0, 0) //nolint:staticcheck // GetContent is the simulation API we read back
	assert.Equal(t, 'o', mainc)
	fg, _, _ := style.Decompose()
	assert.Equal(t, tcell.NewRGBColor(255, 0, 0), fg)

	p.Paint(runs, 1)
	mainc, _, _, _ = s.GetContent(0, 0) //nolint:staticcheck
	assert.Equal(t, 't', mainc)
	mainc, _, _, _ = s.GetContent(2, 1) //nolint:staticcheck
	assert.Equal(t, 'r', mainc)

	// Scrolling past the end keeps the last page full.
	p.Paint(runs, 99)
	mainc, _, _, _ = s.GetContent(0, 0) //nolint:staticcheck
	assert.Equal(t, 't', mainc)
	mainc, _, _, _ = s.GetContent(1, 0) //nolint:staticcheck
	assert.Equal(t, 'h', mainc)
}

func TestClampScroll(t *testing.T) {
	tests := []struct {
		scroll, total, height, want int
	}{
		{0, 10, 5, 0},
		{3, 10, 5, 3},
		{8, 10, 5, 5},
		{-2, 10, 5, 0},
		{4, 3, 5, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampScroll(tt.scroll, tt.total, tt.height))
	}
}

func TestConvertStyle(t *testing.T) {
	s := core.NewStyle(core.ColorFromIndex(12)).WithBackground(core.ColorFromRGB(1, 2, 3)).Bold().Italic()
	fg, bg, attrs := convertStyle(s).Decompose()
	assert.Equal(t, tcell.PaletteColor(12), fg)
	assert.Equal(t, tcell.NewRGBColor(1, 2, 3), bg)
	assert.NotZero(t, attrs&tcell.AttrBold)
	assert.NotZero(t, attrs&tcell.AttrItalic)

	fg, bg, _ = convertStyle(core.DefaultStyle()).Decompose()
	assert.Equal(t, tcell.ColorDefault, fg)
	assert.Equal(t, tcell.ColorDefault, bg)
}

func TestPaint_StatusLine(t *testing.T) {
	s := newSimScreen(t, 12, 3)
	status := NewStatusLine()
	status.SetBreadcrumbs([]string{"a.js"})
	p := NewScreenPainter(s, WithStatusLine(status))
	assert.Equal(t, 2, p.PageHeight())

	total := p.Paint(plainRuns("1\n2\n3\n4"), 5)
	assert.Equal(t, 4, total)
	assert.Equal(t, "Bot", status.Position())

	mainc, _, _, _ := s.GetContent(0, 0) //nolint:staticcheck
	assert.Equal(t, '3', mainc)
	assert.Equal(t, " a.js   Bot ", rowText(s, 2))
}
