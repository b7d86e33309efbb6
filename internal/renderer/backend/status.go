package backend

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

// MessageType is the severity of a status message.
type MessageType int

const (
	MessageNone MessageType = iota
	MessageInfo
	MessageWarning
	MessageError
)

// breadcrumbSeparator joins path components in the status bar.
const breadcrumbSeparator = " › "

// StatusLine is the viewer's bottom row: breadcrumbs and language on the
// left, scroll position on the right. A message replaces the bar until
// cleared.
type StatusLine struct {
	crumbs   []string
	language string
	modified bool

	top, total, height int

	message     string
	messageType MessageType

	barStyle  tcell.Style
	langStyle tcell.Style
}

// NewStatusLine creates a status line with the default colors.
func NewStatusLine() *StatusLine {
	return &StatusLine{
		barStyle:  tcell.StyleDefault.Background(tcell.ColorGray).Foreground(tcell.ColorWhite),
		langStyle: tcell.StyleDefault.Background(tcell.ColorBlue).Foreground(tcell.ColorWhite).Bold(true),
	}
}

// SetBreadcrumbs sets the path components shown on the left.
func (s *StatusLine) SetBreadcrumbs(crumbs []string) {
	s.crumbs = crumbs
}

// SetLanguage sets the language label.
func (s *StatusLine) SetLanguage(language string) {
	s.language = language
}

// SetModified marks the file as having unsaved changes.
func (s *StatusLine) SetModified(modified bool) {
	s.modified = modified
}

// SetScroll records the first visible line, the total line count and the
// page height.
func (s *StatusLine) SetScroll(top, total, height int) {
	s.top, s.total, s.height = top, total, height
}

// SetMessage shows msg instead of the bar. An empty msg clears it.
func (s *StatusLine) SetMessage(msg string, typ MessageType) {
	s.message = msg
	s.messageType = typ
}

// Left returns the text of the left side of the bar.
func (s *StatusLine) Left() string {
	return s.languageLabel() + s.path()
}

func (s *StatusLine) languageLabel() string {
	if s.language == "" {
		return ""
	}
	return " " + s.language + " "
}

func (s *StatusLine) path() string {
	p := "[No Name]"
	if len(s.crumbs) > 0 {
		p = strings.Join(s.crumbs, breadcrumbSeparator)
	}
	if s.modified {
		p += " [+]"
	}
	return " " + p
}

// Position returns the right side of the bar: "All" when everything fits,
// otherwise "Top", "Bot" or a percentage.
func (s *StatusLine) Position() string {
	switch {
	case s.total <= s.height:
		return "All"
	case s.top <= 0:
		return "Top"
	case s.top+s.height >= s.total:
		return "Bot"
	default:
		return fmt.Sprintf("%d%%", s.top*100/(s.total-s.height))
	}
}

// Render draws the status line on the given row.
func (s *StatusLine) Render(screen tcell.Screen, row int) {
	width, _ := screen.Size()

	if s.message != "" {
		style := tcell.StyleDefault
		switch s.messageType {
		case MessageError:
			style = style.Foreground(tcell.ColorRed).Bold(true)
		case MessageWarning:
			style = style.Foreground(tcell.ColorYellow)
		}
		fill(screen, row, width, style)
		drawString(screen, 0, row, width, s.message, style)
		return
	}

	fill(screen, row, width, s.barStyle)
	col := drawString(screen, 0, row, width, s.languageLabel(), s.langStyle)

	pos := s.Position() + " "
	posWidth := uniseg.StringWidth(pos)
	drawString(screen, col, row, width-posWidth-1, s.path(), s.barStyle)
	if width-posWidth > col {
		drawString(screen, width-posWidth, row, width, pos, s.barStyle)
	}
}

func fill(screen tcell.Screen, row, width int, style tcell.Style) {
	for x := range width {
		screen.SetContent(x, row, ' ', nil, style)
	}
}

// drawString draws text from column x, stopping before limit. It returns
// the column after the last grapheme drawn.
func drawString(screen tcell.Screen, x, row, limit int, text string, style tcell.Style) int {
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		w := g.Width()
		if x+w > limit {
			break
		}
		rs := g.Runes()
		screen.SetContent(x, row, rs[0], rs[1:], style)
		x += w
	}
	return x
}
