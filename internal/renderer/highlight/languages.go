package highlight

import (
	"embed"

	"github.com/smacker/go-tree-sitter/css"
	"github.com/smacker/go-tree-sitter/html"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Built-in language names.
const (
	LanguageJavaScript = "javascript"
	LanguageTypeScript = "typescript"
	LanguageTSX        = "tsx"
	LanguageHTML       = "html"
	LanguageCSS        = "css"

	// LanguagePlain disables highlighting.
	LanguagePlain = "plain"
)

//go:embed queries/*.scm
var queryFiles embed.FS

// query concatenates embedded query files. Earlier files take precedence.
func query(names ...string) string {
	var out []byte
	for _, name := range names {
		data, err := queryFiles.ReadFile("queries/" + name + ".scm")
		if err != nil {
			panic(err)
		}
		out = append(out, data...)
		out = append(out, '\n')
	}
	return string(out)
}

// BuiltinGrammars returns the grammars compiled into the binary.
func BuiltinGrammars() []GrammarSpec {
	return []GrammarSpec{
		{
			Name:       LanguageJavaScript,
			Language:   javascript.GetLanguage,
			Highlights: query("jsx", "javascript"),
			Injections: query("javascript_injections"),
			Locals:     query("javascript_locals"),
			Extensions: []string{".js", ".jsx", ".mjs", ".cjs"},
		},
		{
			Name:       LanguageTypeScript,
			Language:   typescript.GetLanguage,
			Highlights: query("typescript"),
			Injections: query("javascript_injections"),
			Locals:     query("typescript_locals"),
			Extensions: []string{".ts", ".mts", ".cts"},
		},
		{
			Name:       LanguageTSX,
			Language:   tsx.GetLanguage,
			Highlights: query("jsx", "typescript"),
			Injections: query("javascript_injections"),
			Locals:     query("typescript_locals"),
			Extensions: []string{".tsx"},
		},
		{
			Name:       LanguageHTML,
			Language:   html.GetLanguage,
			Highlights: query("html"),
			Injections: query("html_injections"),
			Extensions: []string{".html", ".htm", ".xhtml"},
		},
		{
			Name:       LanguageCSS,
			Language:   css.GetLanguage,
			Highlights: query("css"),
			Extensions: []string{".css"},
		},
	}
}
