package highlight

import (
	"iter"

	"github.com/rivo/uniseg"

	"github.com/dshills/quill/internal/renderer/core"
)

// Run is a contiguous slice of the source text with a resolved style.
type Run struct {
	// Start and End are byte offsets into the highlighted text.
	Start int
	End   int

	// Text is the source text of the run.
	Text string

	// Category is the palette index, or NoCategory.
	Category int

	Style core.Style
	Font  core.Font
}

// Len returns the run length in bytes.
func (r Run) Len() int {
	return r.End - r.Start
}

// Width returns the display width of the run in terminal cells.
func (r Run) Width() int {
	return uniseg.StringWidth(r.Text)
}

// Mapper reduces highlight events to styled runs.
type Mapper struct {
	palette *Palette
	font    core.Font
}

// NewMapper creates a mapper for the palette.
func NewMapper(palette *Palette, font core.Font) *Mapper {
	return &Mapper{palette: palette, font: font}
}

// Runs consumes events and returns the runs for text.
// The innermost open category styles each source range; text outside any
// category gets the palette fallback color. The result always covers text
// exactly: gaps left by the event stream become fallback runs and
// overlapping ranges are clipped.
func (m *Mapper) Runs(text string, events iter.Seq[Event]) []Run {
	var (
		runs   []Run
		stack  []int
		cursor int
	)

	emit := func(start, end, cat int) {
		runs = append(runs, Run{
			Start:    start,
			End:      end,
			Text:     text[start:end],
			Category: cat,
			Style:    core.NewStyle(m.palette.Color(cat)),
			Font:     m.font,
		})
	}

	for ev := range events {
		switch e := ev.(type) {
		case EventCategoryStart:
			stack = append(stack, e.Index)
		case EventCategoryEnd:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case EventSource:
			start := max(e.Start, cursor)
			end := min(e.End, len(text))
			if start >= end {
				continue
			}
			if start > cursor {
				emit(cursor, start, NoCategory)
			}
			cat := NoCategory
			if len(stack) > 0 {
				cat = stack[len(stack)-1]
			}
			emit(start, end, cat)
			cursor = end
		}
	}

	if cursor < len(text) {
		emit(cursor, len(text), NoCategory)
	}
	return runs
}
