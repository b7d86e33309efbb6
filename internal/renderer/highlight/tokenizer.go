package highlight

import (
	"context"
	"iter"

	sitter "github.com/smacker/go-tree-sitter"
)

// maxInjectionDepth bounds nested language injections.
const maxInjectionDepth = 4

// Tokenizer produces the highlight events for a text.
type Tokenizer interface {
	// Events returns a lazy, single-use event stream whose source ranges
	// cover [0, len(text)) exactly once.
	Events(ctx context.Context, text string) iter.Seq[Event]
}

// plainTokenizer emits the whole text as one uncategorized range.
type plainTokenizer struct{}

// PlainTokenizer returns a tokenizer that applies no highlighting.
func PlainTokenizer() Tokenizer {
	return plainTokenizer{}
}

func (plainTokenizer) Events(_ context.Context, text string) iter.Seq[Event] {
	return flatten(nil, len(text))
}

// grammarLookup finds the grammar used for an injected language.
type grammarLookup func(language string) *Grammar

// treeSitterTokenizer highlights text with a compiled grammar.
type treeSitterTokenizer struct {
	grammar *Grammar
	lookup  grammarLookup
}

func newTreeSitterTokenizer(g *Grammar, lookup grammarLookup) *treeSitterTokenizer {
	return &treeSitterTokenizer{grammar: g, lookup: lookup}
}

func (t *treeSitterTokenizer) Events(ctx context.Context, text string) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		spans := t.grammar.spans(ctx, []byte(text), 0, 0, t.lookup)
		flatten(spans, len(text))(yield)
	}
}

// byteRange is a half-open byte interval.
type byteRange struct {
	start, end int
}

func nodeRange(n *sitter.Node) byteRange {
	return byteRange{start: int(n.StartByte()), end: int(n.EndByte())}
}

func (r byteRange) contains(o byteRange) bool {
	return r.start <= o.start && o.end <= r.end
}

func (r byteRange) size() int {
	return r.end - r.start
}

// spans parses src and returns its categorized ranges, shifted by offset.
// Parse failures yield no spans, leaving the text uncategorized.
func (g *Grammar) spans(ctx context.Context, src []byte, offset, layer int, lookup grammarLookup) []span {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(g.language)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil || tree == nil {
		return nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil
	}

	out := g.highlightSpans(root, src, offset, layer)
	if g.locals != nil {
		g.applyLocals(root, src, offset, out)
	}
	if g.injections != nil && layer < maxInjectionDepth && lookup != nil {
		out = append(out, g.injectedSpans(ctx, root, src, offset, layer, lookup)...)
	}
	return out
}

// highlightSpans runs the highlight query.
func (g *Grammar) highlightSpans(root *sitter.Node, src []byte, offset, layer int) []span {
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(g.highlights, root)

	var out []span
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		m = qc.FilterPredicates(m, src)
		for _, c := range m.Captures {
			cat := g.categories[c.Index]
			if cat == NoCategory {
				continue
			}
			r := nodeRange(c.Node)
			out = append(out, span{
				start:    r.start + offset,
				end:      r.end + offset,
				category: cat,
				layer:    layer,
				order:    int(m.PatternIndex),
			})
		}
	}
	return out
}

// localDef is a name bound by a locals definition capture.
type localDef struct {
	at    byteRange
	scope byteRange
}

// applyLocals recolors references to local definitions with the category
// the definition received, so a parameter keeps its color where it is used.
func (g *Grammar) applyLocals(root *sitter.Node, src []byte, offset int, spans []span) {
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(g.locals, root)

	document := byteRange{start: 0, end: len(src)}
	var scopes []byteRange
	type named struct {
		name string
		at   byteRange
	}
	var defs, refs []named

	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		m = qc.FilterPredicates(m, src)
		for _, c := range m.Captures {
			r := nodeRange(c.Node)
			switch g.localRoles[c.Index] {
			case localScope:
				scopes = append(scopes, r)
			case localDefinition:
				defs = append(defs, named{name: c.Node.Content(src), at: r})
			case localReference:
				refs = append(refs, named{name: c.Node.Content(src), at: r})
			}
		}
	}
	if len(defs) == 0 || len(refs) == 0 {
		return
	}

	innermost := func(r byteRange) byteRange {
		best := document
		for _, s := range scopes {
			if s.contains(r) && s.size() < best.size() {
				best = s
			}
		}
		return best
	}

	byName := make(map[string][]localDef, len(defs))
	for _, d := range defs {
		byName[d.name] = append(byName[d.name], localDef{at: d.at, scope: innermost(d.at)})
	}

	// Category of each definition node, lowest pattern first.
	defCategory := make(map[byteRange]span, len(defs))
	for _, s := range spans {
		r := byteRange{start: s.start - offset, end: s.end - offset}
		if prev, ok := defCategory[r]; ok && prev.order <= s.order {
			continue
		}
		defCategory[r] = s
	}

	resolved := make(map[byteRange]int, len(refs))
	for _, ref := range refs {
		var (
			found bool
			best  localDef
		)
		for _, d := range byName[ref.name] {
			if !d.scope.contains(ref.at) || d.at.start > ref.at.start {
				continue
			}
			if !found || d.scope.size() < best.scope.size() ||
				(d.scope.size() == best.scope.size() && d.at.start > best.at.start) {
				best, found = d, true
			}
		}
		if !found {
			continue
		}
		if s, ok := defCategory[best.at]; ok {
			resolved[ref.at] = s.category
		}
	}

	for i := range spans {
		r := byteRange{start: spans[i].start - offset, end: spans[i].end - offset}
		if cat, ok := resolved[r]; ok {
			spans[i].category = cat
		}
	}
}

// injectionRange is the text of an injected node, without the backticks
// of a template string.
func injectionRange(n *sitter.Node) byteRange {
	r := nodeRange(n)
	if n.Type() == "template_string" && r.size() >= 2 {
		r.start++
		r.end--
	}
	return r
}

// injectedSpans highlights injected regions with their own grammars.
func (g *Grammar) injectedSpans(ctx context.Context, root *sitter.Node, src []byte, offset, layer int, lookup grammarLookup) []span {
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(g.injections, root)

	var out []span
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		m = qc.FilterPredicates(m, src)
		for _, c := range m.Captures {
			target := g.injectionLangs[c.Index]
			if target == "" {
				continue
			}
			child := lookup(target)
			if child == nil {
				continue
			}
			r := injectionRange(c.Node)
			if r.start >= r.end {
				continue
			}
			out = append(out, child.spans(ctx, src[r.start:r.end], offset+r.start, layer+1, lookup)...)
		}
	}
	return out
}
