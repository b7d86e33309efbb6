package backend

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
)

func rowText(s tcell.SimulationScreen, row int) string {
	width, _ := s.Size()
	out := make([]rune, 0, width)
	for x := range width {
		mainc, _, _, _ := s.GetContent(x, row) //nolint:staticcheck // read back from the simulation screen
		out = append(out, mainc)
	}
	return string(out)
}

func TestStatusLine_Position(t *testing.T) {
	tests := []struct {
		name               string
		top, total, height int
		want               string
	}{
		{"fits", 0, 5, 10, "All"},
		{"top", 0, 100, 10, "Top"},
		{"bottom", 90, 100, 10, "Bot"},
		{"middle", 45, 100, 10, "50%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStatusLine()
			s.SetScroll(tt.top, tt.total, tt.height)
			assert.Equal(t, tt.want, s.Position())
		})
	}
}

func TestStatusLine_Left(t *testing.T) {
	s := NewStatusLine()
	assert.Equal(t, " [No Name]", s.Left())

	s.SetLanguage("css")
	s.SetBreadcrumbs([]string{"src", "app.css"})
	s.SetModified(true)
	assert.Equal(t, " css  src › app.css [+]", s.Left())
}

func TestStatusLine_Render(t *testing.T) {
	screen := newSimScreen(t, 30, 3)
	s := NewStatusLine()
	s.SetLanguage("js")
	s.SetBreadcrumbs([]string{"a", "b.js"})
	s.SetScroll(0, 1, 2)

	s.Render(screen, 2)
	row := rowText(screen, 2)
	assert.Equal(t, " js  a › b.js             All ", row)

	s.SetMessage("grammar failed", MessageError)
	s.Render(screen, 2)
	assert.Equal(t, "grammar failed                ", rowText(screen, 2))
}
