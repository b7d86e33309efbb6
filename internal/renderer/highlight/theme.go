package highlight

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/dshills/quill/internal/renderer/core"
)

// Theme is a named set of palette colors plus editor chrome colors.
type Theme struct {
	// Name is the theme's display name.
	Name string

	// Background and Foreground color the view behind the runs.
	Background core.Color
	Foreground core.Color

	// Colors overrides palette categories by name; "default" sets the
	// color of uncategorized text.
	Colors map[string]string
}

// Palette applies the theme to a base palette.
func (t *Theme) Palette(base *Palette) (*Palette, error) {
	if base == nil {
		base = DefaultPalette()
	}
	p, err := base.WithOverrides(t.Colors)
	if err != nil {
		return nil, fmt.Errorf("theme %s: %w", t.Name, err)
	}
	return p, nil
}

// DefaultTheme returns the built-in dark theme. Its colors are the
// default palette.
func DefaultTheme() *Theme {
	return &Theme{
		Name:       "default",
		Background: core.ColorFromRGB(30, 30, 30),
		Foreground: core.ColorFromRGB(212, 212, 212),
	}
}

// MonokaiTheme returns a Monokai-inspired theme.
func MonokaiTheme() *Theme {
	const (
		pink    = "#F92672"
		green   = "#A6E22E"
		orange  = "#FD971F"
		yellow  = "#E6DB74"
		blue    = "#66D9EF"
		purple  = "#AE81FF"
		comment = "#75715E"
		white   = "#F8F8F2"
	)
	return &Theme{
		Name:       "monokai",
		Background: core.ColorFromRGB(39, 40, 34),
		Foreground: core.ColorFromRGB(248, 248, 242),
		Colors: map[string]string{
			"default":               white,
			"attribute":             green,
			"comment":               comment,
			"constant":              purple,
			"function":              green,
			"function.builtin":      blue,
			"keyword":               pink,
			"operator":              pink,
			"property":              white,
			"punctuation":           white,
			"punctuation.bracket":   white,
			"punctuation.delimiter": white,
			"string":                yellow,
			"string.special":        purple,
			"tag":                   pink,
			"type":                  blue,
			"type.builtin":          blue,
			"variable":              white,
			"variable.builtin":      orange,
			"variable.parameter":    orange,
		},
	}
}

// DraculaTheme returns a Dracula-inspired theme.
func DraculaTheme() *Theme {
	const (
		pink    = "#FF79C6"
		green   = "#50FA7B"
		orange  = "#FFB86C"
		yellow  = "#F1FA8C"
		purple  = "#BD93F9"
		cyan    = "#8BE9FD"
		red     = "#FF5555"
		comment = "#6272A4"
		white   = "#F8F8F2"
	)
	return &Theme{
		Name:       "dracula",
		Background: core.ColorFromRGB(40, 42, 54),
		Foreground: core.ColorFromRGB(248, 248, 242),
		Colors: map[string]string{
			"default":               white,
			"attribute":             green,
			"comment":               comment,
			"constant":              purple,
			"function":              green,
			"function.builtin":      cyan,
			"keyword":               pink,
			"operator":              pink,
			"property":              white,
			"punctuation":           white,
			"punctuation.bracket":   white,
			"punctuation.delimiter": white,
			"string":                yellow,
			"string.special":        red,
			"tag":                   pink,
			"type":                  cyan,
			"type.builtin":          cyan,
			"variable":              white,
			"variable.builtin":      purple,
			"variable.parameter":    orange,
		},
	}
}

// SolarizedDarkTheme returns a Solarized Dark theme.
func SolarizedDarkTheme() *Theme {
	const (
		base01  = "#586E75"
		base0   = "#839496"
		yellow  = "#B58900"
		orange  = "#CB4B16"
		red     = "#DC322F"
		magenta = "#D33682"
		violet  = "#6C71C4"
		blue    = "#268BD2"
		cyan    = "#2AA198"
		green   = "#859900"
	)
	return &Theme{
		Name:       "solarized-dark",
		Background: core.ColorFromRGB(0, 43, 54),
		Foreground: core.ColorFromRGB(131, 148, 150),
		Colors: map[string]string{
			"default":               base0,
			"attribute":             yellow,
			"comment":               base01,
			"constant":              violet,
			"function":              blue,
			"function.builtin":      blue,
			"keyword":               green,
			"operator":              base0,
			"property":              base0,
			"punctuation":           base0,
			"punctuation.bracket":   base0,
			"punctuation.delimiter": base0,
			"string":                cyan,
			"string.special":        red,
			"tag":                   blue,
			"type":                  yellow,
			"type.builtin":          yellow,
			"variable":              base0,
			"variable.builtin":      orange,
			"variable.parameter":    magenta,
		},
	}
}

// LightTheme returns a light theme.
func LightTheme() *Theme {
	const (
		comment  = "#008000"
		keyword  = "#0000FF"
		str      = "#A31515"
		number   = "#098658"
		function = "#795E26"
		typ      = "#267F99"
		variable = "#001080"
		operator = "#000000"
		escape   = "#CD3131"
	)
	return &Theme{
		Name:       "light",
		Background: core.ColorFromRGB(255, 255, 255),
		Foreground: core.ColorFromRGB(0, 0, 0),
		Colors: map[string]string{
			"default":               operator,
			"attribute":             variable,
			"comment":               comment,
			"constant":              number,
			"function":              function,
			"function.builtin":      function,
			"keyword":               keyword,
			"operator":              operator,
			"property":              variable,
			"punctuation":           operator,
			"punctuation.bracket":   operator,
			"punctuation.delimiter": operator,
			"string":                str,
			"string.special":        escape,
			"tag":                   str,
			"type":                  typ,
			"type.builtin":          typ,
			"variable":              variable,
			"variable.builtin":      keyword,
			"variable.parameter":    variable,
		},
	}
}

// ThemeRegistry holds the available themes by lower-case name.
type ThemeRegistry struct {
	mu     sync.RWMutex
	themes map[string]*Theme
}

// NewThemeRegistry creates a new theme registry with built-in themes.
func NewThemeRegistry() *ThemeRegistry {
	r := &ThemeRegistry{
		themes: make(map[string]*Theme),
	}
	r.Register(DefaultTheme())
	r.Register(MonokaiTheme())
	r.Register(DraculaTheme())
	r.Register(SolarizedDarkTheme())
	r.Register(LightTheme())
	return r
}

// Register adds a theme to the registry.
func (r *ThemeRegistry) Register(theme *Theme) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.themes[strings.ToLower(theme.Name)] = theme
}

// Get returns a theme by name.
func (r *ThemeRegistry) Get(name string) (*Theme, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.themes[strings.ToLower(name)]
	return t, ok
}

// Names returns all registered theme names, sorted.
func (r *ThemeRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.themes))
	for name := range r.themes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
