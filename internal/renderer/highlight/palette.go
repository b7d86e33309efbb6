package highlight

import (
	"fmt"
	"strings"

	"github.com/dshills/quill/internal/renderer/core"
)

// NoCategory is the category index of text outside any highlight capture.
const NoCategory = -1

// Category is one named palette slot.
type Category struct {
	// Name is a dotted capture name such as "keyword" or "variable.parameter".
	Name string

	// Color is the foreground color for text in this category.
	Color core.Color
}

// Palette is the ordered set of highlight categories shared by every grammar.
// A category's position in the palette is its index in highlight events.
// A Palette is immutable once built.
type Palette struct {
	categories []Category
	parts      [][]string
	byName     map[string]int
	fallback   core.Color
}

// defaultCategories is the compiled-in color table.
var defaultCategories = []struct {
	name string
	hex  string
}{
	{"attribute", "#9cdcfe"},
	{"constant", "#569cd6"},
	{"function.builtin", "#C8C8C8"},
	{"function", "#C8C8C8"},
	{"keyword", "#569CD6"},
	{"operator", "#b4b4b4"},
	{"property", "#DADADA"},
	{"punctuation", "#b4b4b4"},
	{"punctuation.bracket", "#b4b4b4"},
	{"punctuation.delimiter", "#b4b4b4"},
	{"string", "#ce9178"},
	{"string.special", "#d16969"},
	{"tag", "#569cd6"},
	{"type", "#4EC9B0"},
	{"type.builtin", "#4EC9B0"},
	{"variable", "#C8C8C8"},
	{"variable.builtin", "#C8C8C8"},
	{"variable.parameter", "#7F7F7F"},
	{"comment", "#6A9955"},
}

// defaultFallbackHex colors text that no capture claims.
const defaultFallbackHex = "#6A9955"

// DefaultPalette returns the built-in palette.
func DefaultPalette() *Palette {
	cats := make([]Category, len(defaultCategories))
	for i, c := range defaultCategories {
		cats[i] = Category{Name: c.name, Color: core.MustColorFromHex(c.hex)}
	}
	p, err := NewPalette(cats, core.MustColorFromHex(defaultFallbackHex))
	if err != nil {
		panic(err)
	}
	return p
}

// NewPalette builds a palette from an ordered category list.
// Names must be non-empty and unique.
func NewPalette(categories []Category, fallback core.Color) (*Palette, error) {
	p := &Palette{
		categories: make([]Category, len(categories)),
		parts:      make([][]string, len(categories)),
		byName:     make(map[string]int, len(categories)),
		fallback:   fallback,
	}
	for i, c := range categories {
		if c.Name == "" {
			return nil, fmt.Errorf("palette category %d: empty name", i)
		}
		if _, dup := p.byName[c.Name]; dup {
			return nil, fmt.Errorf("palette category %q: duplicate name", c.Name)
		}
		p.categories[i] = c
		p.parts[i] = strings.Split(c.Name, ".")
		p.byName[c.Name] = i
	}
	return p, nil
}

// WithOverrides returns a copy of the palette with some colors replaced.
// Keys are category names (or "default" for the fallback color), values
// are hex colors.
func (p *Palette) WithOverrides(overrides map[string]string) (*Palette, error) {
	if len(overrides) == 0 {
		return p, nil
	}

	cats := p.Categories()
	fallback := p.fallback
	for name, hex := range overrides {
		color, err := core.ColorFromHex(hex)
		if err != nil {
			return nil, fmt.Errorf("palette override %q: %w", name, err)
		}
		if name == "default" {
			fallback = color
			continue
		}
		idx, ok := p.byName[name]
		if !ok {
			return nil, fmt.Errorf("palette override %q: %w", name, ErrUnknownCategory)
		}
		cats[idx].Color = color
	}
	return NewPalette(cats, fallback)
}

// Len returns the number of categories.
func (p *Palette) Len() int {
	return len(p.categories)
}

// Names returns the category names in index order.
func (p *Palette) Names() []string {
	names := make([]string, len(p.categories))
	for i, c := range p.categories {
		names[i] = c.Name
	}
	return names
}

// Categories returns a copy of the category list.
func (p *Palette) Categories() []Category {
	out := make([]Category, len(p.categories))
	copy(out, p.categories)
	return out
}

// Category returns the category at index, if any.
func (p *Palette) Category(index int) (Category, bool) {
	if index < 0 || index >= len(p.categories) {
		return Category{}, false
	}
	return p.categories[index], true
}

// Index returns the index of an exact category name.
func (p *Palette) Index(name string) (int, bool) {
	i, ok := p.byName[name]
	return i, ok
}

// Fallback returns the color of uncategorized text.
func (p *Palette) Fallback() core.Color {
	return p.fallback
}

// Color returns the color for a category index, or the fallback color for
// NoCategory and out-of-range indices.
func (p *Palette) Color(index int) core.Color {
	if c, ok := p.Category(index); ok {
		return c.Color
	}
	return p.fallback
}

// Resolve maps a capture name to the palette category that best describes it.
// A category matches when every one of its dotted parts appears in the
// capture name; the match with the most parts wins, earlier categories win ties.
// So "constant.numeric" resolves to "constant" and "variable.parameter" to
// "variable.parameter".
func (p *Palette) Resolve(capture string) (int, bool) {
	if i, ok := p.byName[capture]; ok {
		return i, true
	}

	captureParts := strings.Split(capture, ".")
	best, bestLen := NoCategory, 0
	for i, parts := range p.parts {
		if len(parts) <= bestLen || !containsAll(captureParts, parts) {
			continue
		}
		best, bestLen = i, len(parts)
	}
	return best, best != NoCategory
}

func containsAll(haystack, needles []string) bool {
	for _, n := range needles {
		found := false
		for _, h := range haystack {
			if h == n {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
