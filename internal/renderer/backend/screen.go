package backend

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/quill/internal/renderer/core"
	"github.com/dshills/quill/internal/renderer/highlight"
)

// DefaultTabWidth is the tab stop interval used when none is set.
const DefaultTabWidth = 4

// Cell is one grapheme placed on a visual line.
type Cell struct {
	Main      rune
	Combining []rune
	Width     int
	Style     tcell.Style
}

// Line is one row of laid out cells.
type Line []Cell

// Width returns the display width of the line.
func (l Line) Width() int {
	w := 0
	for _, c := range l {
		w += c.Width
	}
	return w
}

// String returns the line's text. Expanded tabs appear as spaces.
func (l Line) String() string {
	var b strings.Builder
	for _, c := range l {
		b.WriteRune(c.Main)
		for _, r := range c.Combining {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ScreenPainter paints runs onto a tcell screen.
type ScreenPainter struct {
	screen   tcell.Screen
	tabWidth int
	wrap     bool
	base     tcell.Style
	status   *StatusLine
}

// PainterOption configures a ScreenPainter.
type PainterOption func(*ScreenPainter)

// WithTabWidth sets the tab stop interval.
func WithTabWidth(n int) PainterOption {
	return func(p *ScreenPainter) {
		if n > 0 {
			p.tabWidth = n
		}
	}
}

// WithWrap enables or disables soft wrapping of long lines.
func WithWrap(wrap bool) PainterOption {
	return func(p *ScreenPainter) {
		p.wrap = wrap
	}
}

// WithBaseStyle sets the style of cells no run covers.
func WithBaseStyle(s core.Style) PainterOption {
	return func(p *ScreenPainter) {
		p.base = convertStyle(s)
	}
}

// WithStatusLine reserves the bottom row for a status line, which Paint
// keeps in sync with the scroll position.
func WithStatusLine(s *StatusLine) PainterOption {
	return func(p *ScreenPainter) {
		p.status = s
	}
}

// NewScreenPainter creates a painter for screen. The screen must already
// be initialized.
func NewScreenPainter(screen tcell.Screen, opts ...PainterOption) *ScreenPainter {
	p := &ScreenPainter{
		screen:   screen,
		tabWidth: DefaultTabWidth,
		wrap:     true,
		base:     tcell.StyleDefault,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Layout splits runs into visual lines for a screen of the given width.
// Source newlines always end a line; with wrapping on, a line also breaks
// before a grapheme that would cross width.
func (p *ScreenPainter) Layout(runs []highlight.Run, width int) []Line {
	lines := []Line{nil}
	col := 0
	newline := func() {
		lines = append(lines, nil)
		col = 0
	}
	place := func(c Cell) {
		if p.wrap && width > 0 && col > 0 && col+c.Width > width {
			newline()
		}
		lines[len(lines)-1] = append(lines[len(lines)-1], c)
		col += c.Width
	}

	for _, r := range runs {
		style := convertStyle(r.Style)
		g := uniseg.NewGraphemes(r.Text)
		for g.Next() {
			rs := g.Runes()
			switch rs[0] {
			case '\n':
				newline()
				continue
			case '\r':
				// "\r\n" is a single grapheme.
				if rs[len(rs)-1] == '\n' {
					newline()
				}
				continue
			case '\t':
				n := p.tabWidth - col%p.tabWidth
				for range n {
					place(Cell{Main: ' ', Width: 1, Style: style})
				}
				continue
			}
			w := g.Width()
			if w == 0 {
				// Control characters and lone combining marks.
				continue
			}
			place(Cell{Main: rs[0], Combining: rs[1:], Width: w, Style: style})
		}
	}
	return lines
}

// PageHeight returns the number of rows available for text.
func (p *ScreenPainter) PageHeight() int {
	_, height := p.screen.Size()
	if p.status != nil {
		height--
	}
	return max(height, 0)
}

// Paint clears the screen and draws the visual lines starting at scroll.
// It returns the total number of visual lines.
func (p *ScreenPainter) Paint(runs []highlight.Run, scroll int) int {
	width, _ := p.screen.Size()
	height := p.PageHeight()
	lines := p.Layout(runs, width)
	scroll = ClampScroll(scroll, len(lines), height)

	p.screen.SetStyle(p.base)
	p.screen.Clear()
	for y := 0; y < height && scroll+y < len(lines); y++ {
		x := 0
		for _, c := range lines[scroll+y] {
			if x+c.Width > width {
				break
			}
			p.screen.SetContent(x, y, c.Main, c.Combining, c.Style)
			x += c.Width
		}
	}
	if p.status != nil {
		p.status.SetScroll(scroll, len(lines), height)
		p.status.Render(p.screen, height)
	}
	p.screen.Show()
	return len(lines)
}

// ClampScroll limits scroll so the last page stays full when possible.
func ClampScroll(scroll, total, height int) int {
	return max(0, min(scroll, total-height))
}

// convertStyle converts a run style to tcell.Style.
func convertStyle(s core.Style) tcell.Style {
	style := tcell.StyleDefault

	if !s.Foreground.IsDefault() {
		style = style.Foreground(convertColor(s.Foreground))
	}
	if !s.Background.IsDefault() {
		style = style.Background(convertColor(s.Background))
	}

	if s.Attributes.Has(core.AttrBold) {
		style = style.Bold(true)
	}
	if s.Attributes.Has(core.AttrDim) {
		style = style.Dim(true)
	}
	if s.Attributes.Has(core.AttrItalic) {
		style = style.Italic(true)
	}
	if s.Attributes.Has(core.AttrUnderline) {
		style = style.Underline(true)
	}
	if s.Attributes.Has(core.AttrReverse) {
		style = style.Reverse(true)
	}
	if s.Attributes.Has(core.AttrStrikethrough) {
		style = style.StrikeThrough(true)
	}

	return style
}

func convertColor(c core.Color) tcell.Color {
	if c.Indexed {
		return tcell.PaletteColor(int(c.R))
	}
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
