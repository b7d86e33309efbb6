package highlight

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// languageAliases maps alternate names to canonical language names.
var languageAliases = map[string]string{
	"js":              LanguageJavaScript,
	"jsx":             LanguageJavaScript,
	"node":            LanguageJavaScript,
	"ecmascript":      LanguageJavaScript,
	"ts":              LanguageTypeScript,
	"typescriptreact": LanguageTSX,
	"htm":             LanguageHTML,
	"xhtml":           LanguageHTML,
	"text":            LanguagePlain,
	"txt":             LanguagePlain,
	"plaintext":       LanguagePlain,
}

// CanonicalLanguage normalizes a language name: lower case, aliases resolved.
func CanonicalLanguage(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if c, ok := languageAliases[name]; ok {
		return c
	}
	return name
}

// Registry owns the compiled grammars for one palette and dispatches
// languages and file paths to tokenizers.
type Registry struct {
	mu sync.RWMutex

	palette  *Palette
	grammars map[string]*Grammar
	order    []string

	// broken records languages whose grammar failed to compile.
	broken map[string]error

	extensions map[string]string
	fileNames  map[string]string

	defaultLanguage string
	chromaFallback  bool
	chromaLexers    map[string]*chromaTokenizer

	// pending holds the grammar specs compiled by NewRegistry.
	pending []GrammarSpec

	logger *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithDefaultLanguage sets the language used for unknown language names.
func WithDefaultLanguage(language string) RegistryOption {
	return func(r *Registry) {
		if language != "" {
			r.defaultLanguage = CanonicalLanguage(language)
		}
	}
}

// WithExtensions adds extension to language mappings, e.g. ".es6" to "javascript".
func WithExtensions(m map[string]string) RegistryOption {
	return func(r *Registry) {
		for ext, lang := range m {
			r.extensions[normalizeExt(ext)] = CanonicalLanguage(lang)
		}
	}
}

// WithChromaFallback enables or disables chroma lexers for languages
// without a tree-sitter grammar.
func WithChromaFallback(enabled bool) RegistryOption {
	return func(r *Registry) {
		r.chromaFallback = enabled
	}
}

// WithRegistryLogger sets the logger for grammar failures.
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithGrammars replaces the built-in grammar set.
func WithGrammars(specs ...GrammarSpec) RegistryOption {
	return func(r *Registry) {
		r.pending = specs
	}
}

// NewRegistry compiles the built-in grammars against palette.
// Grammars that fail to compile are logged and served as plain text.
func NewRegistry(palette *Palette, opts ...RegistryOption) *Registry {
	if palette == nil {
		palette = DefaultPalette()
	}
	r := &Registry{
		palette:         palette,
		grammars:        make(map[string]*Grammar),
		broken:          make(map[string]error),
		extensions:      make(map[string]string),
		fileNames:       make(map[string]string),
		defaultLanguage: LanguageJavaScript,
		chromaFallback:  true,
		chromaLexers:    make(map[string]*chromaTokenizer),
		logger:          slog.Default(),
		pending:         BuiltinGrammars(),
	}

	// User extension mappings override the grammars' own.
	userExt := make(map[string]string)
	for _, opt := range opts {
		opt(r)
	}
	for ext, lang := range r.extensions {
		userExt[ext] = lang
	}

	for _, spec := range r.pending {
		_ = r.Register(spec)
	}
	r.pending = nil

	for ext, lang := range userExt {
		r.extensions[ext] = lang
	}
	return r
}

// Register compiles and adds a grammar, replacing any grammar of the same
// name. A compile failure marks the language broken; it is logged once and
// returned.
func (r *Registry) Register(spec GrammarSpec) error {
	name := CanonicalLanguage(spec.Name)
	spec.Name = name

	g, err := NewGrammar(spec, r.palette)

	r.mu.Lock()
	defer r.mu.Unlock()

	if !slices.Contains(r.order, name) {
		r.order = append(r.order, name)
	}
	for _, ext := range spec.Extensions {
		r.extensions[normalizeExt(ext)] = name
	}
	for _, base := range spec.FileNames {
		r.fileNames[base] = name
	}

	if old := r.grammars[name]; old != nil {
		old.Close()
		delete(r.grammars, name)
	}
	if err != nil {
		r.broken[name] = err
		r.logger.Error("grammar failed to load; highlighting as plain text",
			slog.String("language", name),
			slog.Any("error", err))
		return err
	}
	delete(r.broken, name)
	r.grammars[name] = g
	return nil
}

// Palette returns the palette grammars were compiled against.
func (r *Registry) Palette() *Palette {
	return r.palette
}

// DefaultLanguage returns the language used for unknown names.
func (r *Registry) DefaultLanguage() string {
	return r.defaultLanguage
}

// Configuration returns the compiled grammar for a language.
// A language without a grammar that a chroma lexer handles yields
// ErrChromaLanguage and no grammar, matching what Tokenizer serves.
// Any other unknown language yields the default grammar together with
// ErrUnknownLanguage. A language whose grammar failed to load yields
// ErrGrammarUnavailable.
func (r *Registry) Configuration(language string) (*Grammar, error) {
	name := r.canonical(language)

	r.mu.RLock()
	g, ok := r.grammars[name]
	brokenErr, broken := r.broken[name]
	fallbackGrammar, hasFallback := r.grammars[r.defaultLanguage]
	r.mu.RUnlock()

	switch {
	case ok:
		return g, nil
	case broken:
		return nil, fmt.Errorf("%s: %w: %w", name, ErrGrammarUnavailable, brokenErr)
	case name != LanguagePlain && r.chromaTokenizer(name) != nil:
		return nil, fmt.Errorf("%q: %w", language, ErrChromaLanguage)
	}

	fallback := fmt.Errorf("%q: %w (using %s)", language, ErrUnknownLanguage, r.defaultLanguage)
	if hasFallback {
		return fallbackGrammar, fallback
	}
	return nil, errors.Join(fallback, ErrGrammarUnavailable)
}

// Tokenizer returns the tokenizer for a language and the language name
// actually served. Broken grammars are served by the plain tokenizer.
// Names without a grammar use a chroma lexer when one exists and the
// fallback is enabled, and otherwise the default language.
func (r *Registry) Tokenizer(language string) (Tokenizer, string) {
	name := r.canonical(language)
	if name == LanguagePlain {
		return PlainTokenizer(), LanguagePlain
	}

	r.mu.RLock()
	g, ok := r.grammars[name]
	_, broken := r.broken[name]
	r.mu.RUnlock()

	switch {
	case ok:
		return newTreeSitterTokenizer(g, r.grammar), name
	case broken:
		return PlainTokenizer(), name
	}

	if t := r.chromaTokenizer(name); t != nil {
		return t, name
	}

	if name == r.defaultLanguage {
		return PlainTokenizer(), name
	}
	return r.Tokenizer(r.defaultLanguage)
}

// grammar looks up grammars for injected languages.
func (r *Registry) grammar(language string) *Grammar {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.grammars[CanonicalLanguage(language)]
}

func (r *Registry) chromaTokenizer(name string) *chromaTokenizer {
	if !r.chromaFallback {
		return nil
	}

	r.mu.RLock()
	t, ok := r.chromaLexers[name]
	r.mu.RUnlock()
	if ok {
		return t
	}

	var lexer chroma.Lexer
	if l := lexers.Get(name); l != nil && l != lexers.Fallback {
		lexer = l
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if lexer == nil {
		r.chromaLexers[name] = nil
		return nil
	}
	t = newChromaTokenizer(lexer, r.palette)
	r.chromaLexers[name] = t
	return t
}

// LanguageForPath returns the language for a file path: exact file names
// first, then extensions, then chroma's file patterns. Unmatched paths
// return the default language.
func (r *Registry) LanguageForPath(path string) string {
	base := filepath.Base(path)
	ext := normalizeExt(filepath.Ext(base))

	r.mu.RLock()
	if lang, ok := r.fileNames[base]; ok {
		r.mu.RUnlock()
		return lang
	}
	if lang, ok := r.extensions[ext]; ok && ext != "" {
		r.mu.RUnlock()
		return lang
	}
	r.mu.RUnlock()

	if r.chromaFallback {
		if l := lexers.Match(base); l != nil {
			return CanonicalLanguage(l.Config().Name)
		}
	}
	return r.defaultLanguage
}

// Languages returns the registered tree-sitter languages in registration order.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Extensions returns the extensions mapped to a language, sorted.
func (r *Registry) Extensions(language string) []string {
	name := CanonicalLanguage(language)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for ext, lang := range r.extensions {
		if lang == name {
			out = append(out, ext)
		}
	}
	slices.Sort(out)
	return out
}

// Broken returns the load error of a language, or nil.
func (r *Registry) Broken(language string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.broken[CanonicalLanguage(language)]
}

// Close releases every compiled grammar.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, g := range r.grammars {
		g.Close()
		delete(r.grammars, name)
	}
}

func (r *Registry) canonical(language string) string {
	name := CanonicalLanguage(language)
	if name == "" {
		return r.defaultLanguage
	}
	return name
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
