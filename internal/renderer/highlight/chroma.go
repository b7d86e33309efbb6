package highlight

import (
	"context"
	"iter"
	"strings"

	"github.com/alecthomas/chroma/v2"
)

// chromaTokenizer highlights languages that have no tree-sitter grammar
// using a chroma regex lexer.
type chromaTokenizer struct {
	lexer   chroma.Lexer
	palette *Palette
}

func newChromaTokenizer(lexer chroma.Lexer, palette *Palette) *chromaTokenizer {
	return &chromaTokenizer{lexer: chroma.Coalesce(lexer), palette: palette}
}

func (t *chromaTokenizer) Events(_ context.Context, text string) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		flatten(t.spans(text), len(text))(yield)
	}
}

// spans walks the lexer tokens. Token values must line up with the text;
// at the first disagreement the remainder is left uncategorized.
func (t *chromaTokenizer) spans(text string) []span {
	// EnsureLF would rewrite "\r\n" and shift every later offset.
	it, err := t.lexer.Tokenise(&chroma.TokeniseOptions{State: "root"}, text)
	if err != nil {
		return nil
	}

	var out []span
	off := 0
	for tok := it(); tok != chroma.EOF; tok = it() {
		if off >= len(text) {
			break
		}
		v := tok.Value
		if v == "" {
			continue
		}
		if !strings.HasPrefix(text[off:], v) {
			// Lexers configured with EnsureNL append a newline the text lacks.
			trimmed := strings.TrimSuffix(v, "\n")
			if text[off:] != trimmed {
				break
			}
			v = trimmed
		}
		end := off + len(v)
		if cat, ok := t.palette.Resolve(chromaCategory(tok.Type)); ok {
			out = append(out, span{start: off, end: end, category: cat})
		}
		off = end
	}
	return out
}

// chromaCategory maps a chroma token type to a capture name.
func chromaCategory(tt chroma.TokenType) string {
	switch {
	case tt.InCategory(chroma.Comment):
		return "comment"
	case tt == chroma.KeywordType:
		return "type.builtin"
	case tt == chroma.KeywordConstant:
		return "constant.builtin"
	case tt.InCategory(chroma.Keyword):
		return "keyword"
	case tt == chroma.LiteralStringEscape, tt == chroma.LiteralStringRegex:
		return "string.special"
	case tt.InSubCategory(chroma.LiteralString):
		return "string"
	case tt.InSubCategory(chroma.LiteralNumber):
		return "constant.numeric"
	case tt.InCategory(chroma.Operator):
		return "operator"
	case tt.InCategory(chroma.Punctuation):
		return "punctuation"
	case tt == chroma.NameBuiltin, tt == chroma.NameBuiltinPseudo:
		return "variable.builtin"
	case tt == chroma.NameFunction, tt == chroma.NameFunctionMagic:
		return "function"
	case tt == chroma.NameClass, tt == chroma.NameNamespace:
		return "type"
	case tt == chroma.NameTag:
		return "tag"
	case tt == chroma.NameAttribute:
		return "attribute"
	case tt == chroma.NameConstant:
		return "constant"
	case tt == chroma.NameProperty:
		return "property"
	case tt.InCategory(chroma.Name):
		return "variable"
	}
	return ""
}
