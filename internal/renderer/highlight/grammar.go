package highlight

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// GrammarSpec describes a tree-sitter grammar and its queries.
type GrammarSpec struct {
	// Name is the canonical language name, e.g. "javascript".
	Name string

	// Language returns the tree-sitter language.
	Language func() *sitter.Language

	// Highlights is the highlight query. Capture names are resolved
	// against the palette.
	Highlights string

	// Injections is the optional injection query. A capture named
	// "injection.<language>" marks a node whose text is highlighted
	// with that language's grammar. Captures starting with "_" are
	// only available to predicates such as #eq?.
	Injections string

	// Locals is the optional locals query, using the "local.scope",
	// "local.definition" and "local.reference" captures.
	Locals string

	// Extensions lists file extensions, with the leading dot.
	Extensions []string

	// FileNames lists exact base names handled by this grammar.
	FileNames []string
}

// localRole is the meaning of a locals query capture.
type localRole uint8

const (
	localNone localRole = iota
	localScope
	localDefinition
	localReference
)

// Grammar is a compiled grammar configuration bound to one palette.
// It is immutable and safe for concurrent use; every highlighting pass
// creates its own parser and query cursors.
type Grammar struct {
	name     string
	language *sitter.Language

	highlights *sitter.Query
	injections *sitter.Query
	locals     *sitter.Query

	// categories maps highlight capture indices to palette indices.
	categories []int

	// injectionLangs maps injection capture indices to language names.
	injectionLangs []string

	// localRoles maps locals capture indices to their roles.
	localRoles []localRole
}

// NewGrammar compiles a grammar's queries and resolves its capture names
// against the palette.
func NewGrammar(spec GrammarSpec, palette *Palette) (*Grammar, error) {
	lang := spec.Language()

	g := &Grammar{name: spec.Name, language: lang}

	hq, err := sitter.NewQuery([]byte(spec.Highlights), lang)
	if err != nil {
		return nil, &GrammarError{Language: spec.Name, Query: "highlights", Err: err}
	}
	g.highlights = hq
	g.categories = make([]int, hq.CaptureCount())
	for i := range g.categories {
		name := hq.CaptureNameForId(uint32(i))
		g.categories[i] = NoCategory
		if strings.HasPrefix(name, "_") {
			continue
		}
		if idx, ok := palette.Resolve(name); ok {
			g.categories[i] = idx
		}
	}

	if strings.TrimSpace(spec.Injections) != "" {
		iq, err := sitter.NewQuery([]byte(spec.Injections), lang)
		if err != nil {
			g.Close()
			return nil, &GrammarError{Language: spec.Name, Query: "injections", Err: err}
		}
		g.injections = iq
		g.injectionLangs = make([]string, iq.CaptureCount())
		for i := range g.injectionLangs {
			name := iq.CaptureNameForId(uint32(i))
			if target, ok := strings.CutPrefix(name, "injection."); ok {
				g.injectionLangs[i] = target
			}
		}
	}

	if strings.TrimSpace(spec.Locals) != "" {
		lq, err := sitter.NewQuery([]byte(spec.Locals), lang)
		if err != nil {
			g.Close()
			return nil, &GrammarError{Language: spec.Name, Query: "locals", Err: err}
		}
		g.locals = lq
		g.localRoles = make([]localRole, lq.CaptureCount())
		for i := range g.localRoles {
			name := lq.CaptureNameForId(uint32(i))
			switch {
			case strings.HasPrefix(name, "local.scope"):
				g.localRoles[i] = localScope
			case strings.HasPrefix(name, "local.definition"):
				g.localRoles[i] = localDefinition
			case strings.HasPrefix(name, "local.reference"):
				g.localRoles[i] = localReference
			}
		}
	}

	return g, nil
}

// Name returns the grammar's language name.
func (g *Grammar) Name() string {
	return g.name
}

// CaptureCategories returns, for each highlight capture name, the palette
// index it resolved to (NoCategory if none).
func (g *Grammar) CaptureCategories() map[string]int {
	out := make(map[string]int, len(g.categories))
	for i, cat := range g.categories {
		out[g.highlights.CaptureNameForId(uint32(i))] = cat
	}
	return out
}

// Close releases the compiled queries.
func (g *Grammar) Close() {
	if g.highlights != nil {
		g.highlights.Close()
	}
	if g.injections != nil {
		g.injections.Close()
	}
	if g.locals != nil {
		g.locals.Close()
	}
}
