// Package backend draws highlighted runs on terminals.
//
// ANSIWriter streams runs as escape sequences for piping to a terminal.
// ScreenPainter lays runs out on a tcell screen for interactive viewing.
package backend

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"

	"github.com/dshills/quill/internal/renderer/core"
	"github.com/dshills/quill/internal/renderer/highlight"
)

// ANSIWriter writes runs as ANSI-styled text.
type ANSIWriter struct {
	out *termenv.Output
}

// ANSIOption configures an ANSIWriter.
type ANSIOption func(*[]termenv.OutputOption)

// WithProfile forces a color profile instead of detecting one from the
// environment.
func WithProfile(p termenv.Profile) ANSIOption {
	return func(o *[]termenv.OutputOption) {
		*o = append(*o, termenv.WithProfile(p))
	}
}

// NewANSIWriter creates a writer on w.
func NewANSIWriter(w io.Writer, opts ...ANSIOption) *ANSIWriter {
	var outOpts []termenv.OutputOption
	for _, opt := range opts {
		opt(&outOpts)
	}
	return &ANSIWriter{out: termenv.NewOutput(w, outOpts...)}
}

// Profile returns the color profile in use.
func (a *ANSIWriter) Profile() termenv.Profile {
	return a.out.Profile
}

// ClearScreen clears the terminal and homes the cursor. It does nothing
// without color support, where the output is likely a file or pipe.
func (a *ANSIWriter) ClearScreen() {
	if a.out.Profile == termenv.Ascii {
		return
	}
	a.out.ClearScreen()
}

// WriteRuns writes each run's text in its style. The terminal style is
// reset after every run, so the output ends unstyled.
func (a *ANSIWriter) WriteRuns(runs []highlight.Run) error {
	for _, r := range runs {
		if _, err := a.out.WriteString(a.styled(r.Text, r.Style)); err != nil {
			return fmt.Errorf("write run at %d: %w", r.Start, err)
		}
	}
	return nil
}

func (a *ANSIWriter) styled(text string, s core.Style) string {
	if a.out.Profile == termenv.Ascii || text == "" {
		return text
	}

	st := a.out.String(text)
	if c := a.color(s.Foreground); c != nil {
		st = st.Foreground(c)
	}
	if c := a.color(s.Background); c != nil {
		st = st.Background(c)
	}
	if s.Attributes.Has(core.AttrBold) {
		st = st.Bold()
	}
	if s.Attributes.Has(core.AttrDim) {
		st = st.Faint()
	}
	if s.Attributes.Has(core.AttrItalic) {
		st = st.Italic()
	}
	if s.Attributes.Has(core.AttrUnderline) {
		st = st.Underline()
	}
	if s.Attributes.Has(core.AttrReverse) {
		st = st.Reverse()
	}
	if s.Attributes.Has(core.AttrStrikethrough) {
		st = st.CrossOut()
	}
	return st.String()
}

// color converts a color to the profile, degrading true colors as needed.
func (a *ANSIWriter) color(c core.Color) termenv.Color {
	if c.IsDefault() {
		return nil
	}
	if c.Indexed {
		return a.out.Profile.Convert(termenv.ANSI256Color(c.R))
	}
	return a.out.Profile.Color(c.ToHex())
}
