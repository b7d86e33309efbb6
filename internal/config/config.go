package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/dshills/quill/internal/config/loader"
)

// Config is the decoded quill configuration.
type Config struct {
	Highlight HighlightConfig `mapstructure:"highlight"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	View      ViewConfig      `mapstructure:"view"`

	// Sources lists the files merged into this configuration, lowest
	// priority first.
	Sources []string `mapstructure:"-"`
}

// HighlightConfig configures the highlighting pipeline.
type HighlightConfig struct {
	// CacheSize is the number of cached highlight results.
	CacheSize int `mapstructure:"cacheSize"`

	// DefaultLanguage is used for unknown language names and paths.
	DefaultLanguage string `mapstructure:"defaultLanguage"`

	// Theme names a built-in color theme.
	Theme string `mapstructure:"theme"`

	// Palette overrides category colors by name, e.g. keyword = "#ff0000".
	// The key "default" sets the color of uncategorized text.
	Palette map[string]string `mapstructure:"palette"`

	// Extensions maps extra file extensions to languages.
	Extensions map[string]string `mapstructure:"extensions"`

	// Debounce is the quiet period before background re-highlighting.
	Debounce time.Duration `mapstructure:"debounce"`

	// ChromaFallback enables chroma lexers for languages without a
	// tree-sitter grammar.
	ChromaFallback bool `mapstructure:"chromaFallback"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`

	// Format is "text" or "json".
	Format string `mapstructure:"format"`

	// File, when set, receives logs instead of stderr. It is rotated by size.
	File string `mapstructure:"file"`

	// MaxSize is the size in megabytes at which the log file rotates.
	MaxSize int `mapstructure:"maxSize"`

	// MaxBackups is the number of rotated files kept.
	MaxBackups int `mapstructure:"maxBackups"`

	// MaxAge is the number of days rotated files are kept.
	MaxAge int `mapstructure:"maxAge"`
}

// ViewConfig configures terminal rendering.
type ViewConfig struct {
	// TabWidth is the number of cells a tab advances to.
	TabWidth int `mapstructure:"tabWidth"`

	// Wrap wraps long lines in the viewer.
	Wrap bool `mapstructure:"wrap"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Highlight: HighlightConfig{
			CacheSize:       256,
			DefaultLanguage: "javascript",
			Theme:           "default",
			Palette:         map[string]string{},
			Extensions:      map[string]string{},
			Debounce:        50 * time.Millisecond,
			ChromaFallback:  true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		},
		View: ViewConfig{
			TabWidth: 4,
			Wrap:     true,
		},
	}
}

// defaultMap returns Default as a generic map, the lowest layer of Load.
func defaultMap() map[string]any {
	d := Default()
	return map[string]any{
		"highlight": map[string]any{
			"cacheSize":       d.Highlight.CacheSize,
			"defaultLanguage": d.Highlight.DefaultLanguage,
			"theme":           d.Highlight.Theme,
			"palette":         map[string]any{},
			"extensions":      map[string]any{},
			"debounce":        d.Highlight.Debounce,
			"chromaFallback":  d.Highlight.ChromaFallback,
		},
		"logging": map[string]any{
			"level":      d.Logging.Level,
			"format":     d.Logging.Format,
			"file":       d.Logging.File,
			"maxSize":    d.Logging.MaxSize,
			"maxBackups": d.Logging.MaxBackups,
			"maxAge":     d.Logging.MaxAge,
		},
		"view": map[string]any{
			"tabWidth": d.View.TabWidth,
			"wrap":     d.View.Wrap,
		},
	}
}

// Option configures Load.
type Option func(*options)

type options struct {
	fs         loader.FileSystem
	userDir    string
	projectDir string
	file       string
	env        bool
	envPrefix  string
	overrides  map[string]any
}

// WithFileSystem reads configuration files from fsys.
func WithFileSystem(fsys loader.FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

// WithUserConfigDir sets the user configuration directory.
// An empty dir disables the user layer.
func WithUserConfigDir(dir string) Option {
	return func(o *options) {
		o.userDir = dir
	}
}

// WithProjectDir sets the directory searched for .quill.toml or .quill.yaml.
func WithProjectDir(dir string) Option {
	return func(o *options) {
		o.projectDir = dir
	}
}

// WithFile adds an explicit configuration file above the user and
// project layers. Unlike those layers, it must exist.
func WithFile(path string) Option {
	return func(o *options) {
		o.file = path
	}
}

// WithEnv enables or disables the environment layer.
func WithEnv(enabled bool) Option {
	return func(o *options) {
		o.env = enabled
	}
}

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// WithOverrides sets values above every other layer, e.g. from flags.
// Keys are dotted paths such as "logging.level".
func WithOverrides(values map[string]any) Option {
	return func(o *options) {
		if o.overrides == nil {
			o.overrides = make(map[string]any)
		}
		for path, v := range values {
			loader.Set(o.overrides, path, v)
		}
	}
}

// Load merges, lowest priority first: defaults, the user file, the
// project file, the explicit file, QUILL_* environment variables and
// overrides. The result is decoded and validated.
func Load(opts ...Option) (*Config, error) {
	o := &options{
		fs:        loader.DefaultFS(),
		userDir:   DefaultUserConfigDir(),
		env:       true,
		envPrefix: loader.EnvPrefix,
	}
	for _, opt := range opts {
		opt(o)
	}

	merged := defaultMap()
	var sources []string

	addFile := func(path string, required bool) error {
		data, err := loader.NewFileLoaderWithFS(o.fs, path).Load()
		if err != nil {
			return err
		}
		if data == nil {
			if required {
				return fmt.Errorf("%w: %s", ErrFileNotFound, path)
			}
			return nil
		}
		merged = loader.DeepMerge(merged, data)
		sources = append(sources, path)
		return nil
	}

	if o.userDir != "" {
		if path := findConfigFile(o.fs, o.userDir, "config"); path != "" {
			if err := addFile(path, false); err != nil {
				return nil, err
			}
		}
	}
	if o.projectDir != "" {
		if path := findConfigFile(o.fs, o.projectDir, ".quill"); path != "" {
			if err := addFile(path, false); err != nil {
				return nil, err
			}
		}
	}
	if o.file != "" {
		if err := addFile(o.file, true); err != nil {
			return nil, err
		}
	}
	if o.env {
		env, err := loader.NewEnvLoader(o.envPrefix).Load()
		if err != nil {
			return nil, fmt.Errorf("loading environment: %w", err)
		}
		merged = loader.DeepMerge(merged, env)
	}
	merged = loader.DeepMerge(merged, o.overrides)

	cfg, err := Decode(merged)
	if err != nil {
		return nil, err
	}
	cfg.Sources = sources
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode converts a merged configuration map into a Config. Unknown keys
// are reported as validation errors.
func Decode(data map[string]any) (*Config, error) {
	cfg := Default()
	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		Metadata:         &md,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTypeMismatch, err)
	}

	if len(md.Unused) > 0 {
		slices.Sort(md.Unused)
		errs := make([]error, 0, len(md.Unused))
		for _, key := range md.Unused {
			errs = append(errs, &ValidationError{
				Path:    key,
				Message: "unknown setting",
				Code:    ErrCodeUnknownSetting,
			})
		}
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

var (
	validLevels  = []string{"debug", "info", "warn", "error"}
	validFormats = []string{"text", "json"}
)

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error
	add := func(path, msg string, value any, code ValidationErrorCode) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: value, Code: code})
	}

	if c.Highlight.CacheSize < 1 {
		add("highlight.cacheSize", "must be at least 1", c.Highlight.CacheSize, ErrCodeOutOfRange)
	}
	if c.Highlight.Debounce < 0 {
		add("highlight.debounce", "must not be negative", c.Highlight.Debounce, ErrCodeOutOfRange)
	}
	if strings.TrimSpace(c.Highlight.DefaultLanguage) == "" {
		add("highlight.defaultLanguage", "must not be empty", c.Highlight.DefaultLanguage, ErrCodeRequiredMissing)
	}
	if !slices.Contains(validLevels, strings.ToLower(c.Logging.Level)) {
		add("logging.level", "must be one of "+strings.Join(validLevels, ", "), c.Logging.Level, ErrCodeInvalidEnum)
	}
	if !slices.Contains(validFormats, strings.ToLower(c.Logging.Format)) {
		add("logging.format", "must be one of "+strings.Join(validFormats, ", "), c.Logging.Format, ErrCodeInvalidEnum)
	}
	if c.View.TabWidth < 1 || c.View.TabWidth > 16 {
		add("view.tabWidth", "must be between 1 and 16", c.View.TabWidth, ErrCodeOutOfRange)
	}
	return errors.Join(errs...)
}

// DefaultUserConfigDir returns $XDG_CONFIG_HOME/quill or ~/.config/quill.
func DefaultUserConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "quill")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "quill")
}

// findConfigFile returns the first of base.toml, base.yaml, base.yml in dir.
func findConfigFile(fsys loader.FileSystem, dir, base string) string {
	for _, ext := range []string{".toml", ".yaml", ".yml"} {
		path := filepath.Join(dir, base+ext)
		if _, err := fsys.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
