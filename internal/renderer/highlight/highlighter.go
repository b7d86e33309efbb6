package highlight

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dshills/quill/internal/renderer/core"
)

// TokenizerSource resolves languages and paths to tokenizers.
// *Registry implements it.
type TokenizerSource interface {
	// Tokenizer returns the tokenizer for a language and the language
	// name actually served.
	Tokenizer(language string) (Tokenizer, string)

	// LanguageForPath returns the language for a file path.
	LanguageForPath(path string) string
}

// Highlighter turns text into styled runs, caching results by language
// and exact text. It is safe for concurrent use.
type Highlighter struct {
	source  TokenizerSource
	palette *Palette
	mapper  *Mapper
	cache   *Cache
	logger  *slog.Logger
	font    core.Font
}

// Option configures a Highlighter.
type Option func(*Highlighter)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Highlighter) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithFont sets the font attached to every run.
func WithFont(font core.Font) Option {
	return func(h *Highlighter) {
		h.font = font
	}
}

// New creates a highlighter. A nil palette selects the default palette;
// a nil cache disables caching.
func New(source TokenizerSource, palette *Palette, cache *Cache, opts ...Option) *Highlighter {
	if palette == nil {
		palette = DefaultPalette()
	}
	h := &Highlighter{
		source:  source,
		palette: palette,
		cache:   cache,
		logger:  slog.Default(),
		font:    core.DefaultFont(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.mapper = NewMapper(palette, h.font)
	return h
}

// Palette returns the palette runs are styled with.
func (h *Highlighter) Palette() *Palette {
	return h.palette
}

// Cache returns the result cache, or nil.
func (h *Highlighter) Cache() *Cache {
	return h.cache
}

// LanguageForPath returns the language used for a file path.
func (h *Highlighter) LanguageForPath(path string) string {
	return h.source.LanguageForPath(path)
}

// Highlight returns the runs for text in language. The runs cover the
// text exactly; malformed input degrades to uncolored runs.
// Returned runs may be shared with the cache and must not be modified.
func (h *Highlighter) Highlight(language, text string) []Run {
	return h.HighlightContext(context.Background(), language, text)
}

// HighlightPath highlights text using the language for path.
func (h *Highlighter) HighlightPath(path, text string) []Run {
	return h.Highlight(h.source.LanguageForPath(path), text)
}

// HighlightContext is like Highlight but stops parsing when ctx is done.
// Results of a cancelled pass are uncolored and not cached.
func (h *Highlighter) HighlightContext(ctx context.Context, language, text string) []Run {
	text = sanitize(text)
	tok, served := h.source.Tokenizer(language)

	if h.cache != nil {
		if runs, ok := h.cache.Get(served, text); ok {
			return runs
		}
	}

	runs, err := h.run(ctx, tok, text)
	if err != nil {
		h.logger.Error("highlight failed; using plain text",
			slog.String("language", served),
			slog.Any("error", err))
		return h.mapper.Runs(text, PlainTokenizer().Events(ctx, text))
	}
	if ctx.Err() != nil {
		return runs
	}

	if h.cache != nil {
		h.cache.Add(served, text, runs)
	}
	return runs
}

func (h *Highlighter) run(ctx context.Context, tok Tokenizer, text string) (runs []Run, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tokenizer panic: %v", r)
		}
	}()
	return h.mapper.Runs(text, tok.Events(ctx, text)), nil
}
