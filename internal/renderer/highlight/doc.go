// Package highlight turns source text into styled runs for display.
//
// A highlighting pass has three stages:
//
//   - A Tokenizer produces a stream of events: category starts and ends
//     interleaved with source ranges that cover the text exactly once.
//     Tree-sitter grammars serve JavaScript, TypeScript, TSX, HTML and CSS.
//     Other languages use a chroma lexer when one exists.
//   - A Mapper reduces the events to Runs, resolving each category to a color
//     from the shared Palette.
//   - A Cache keeps recent results keyed by language and exact text.
//
// # Usage
//
//	reg := highlight.NewRegistry(highlight.DefaultPalette())
//	defer reg.Close()
//	h := highlight.New(reg, reg.Palette(), highlight.NewCache(0, nil))
//	for _, run := range h.HighlightPath("app.js", src) {
//		fmt.Print(run.Style.Foreground, run.Text)
//	}
//
// # Concurrency
//
// Registry, Highlighter and Cache are safe for concurrent use. Every pass
// creates its own tree-sitter parser. Debouncer recomputes the newest
// submitted text on a background goroutine.
package highlight
