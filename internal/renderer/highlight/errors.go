package highlight

import (
	"errors"
	"fmt"
)

// Errors returned by highlight configuration.
var (
	// ErrUnknownLanguage indicates no grammar is registered for a language.
	// The registry still returns its default grammar alongside this error.
	ErrUnknownLanguage = errors.New("unknown language")

	// ErrChromaLanguage indicates a language has no tree-sitter grammar
	// and is highlighted by a chroma lexer instead.
	ErrChromaLanguage = errors.New("served by a chroma lexer")

	// ErrUnknownCategory indicates a palette override names a missing category.
	ErrUnknownCategory = errors.New("unknown palette category")

	// ErrGrammarUnavailable indicates a grammar failed to load earlier and
	// the language is served as plain text.
	ErrGrammarUnavailable = errors.New("grammar unavailable")
)

// GrammarError describes a query that failed to compile for a language.
type GrammarError struct {
	// Language is the grammar's language name.
	Language string
	// Query names the failing query ("highlights", "injections", "locals").
	Query string
	// Err is the underlying parser error.
	Err error
}

func (e *GrammarError) Error() string {
	return fmt.Sprintf("grammar %s: compiling %s query: %v", e.Language, e.Query, e.Err)
}

func (e *GrammarError) Unwrap() error {
	return e.Err
}
