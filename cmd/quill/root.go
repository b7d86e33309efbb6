package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/quill/internal/config"
	qlog "github.com/dshills/quill/internal/log"
	"github.com/dshills/quill/internal/renderer/highlight"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configFile string
	logLevel   string
	theme      string
}

// session is the highlighting stack built from the loaded configuration.
type session struct {
	cfg      *config.Config
	logger   *slog.Logger
	theme    *highlight.Theme
	palette  *highlight.Palette
	registry *highlight.Registry
	cache    *highlight.Cache
	hl       *highlight.Highlighter
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	var sess *session

	root := &cobra.Command{
		Use:           "quill",
		Short:         "Syntax highlighting for source files",
		Long:          `quill highlights JavaScript, TypeScript, TSX, HTML and CSS with tree-sitter grammars, and most other languages through chroma lexers.`,
		Version:       fmt.Sprintf("%s (%s, %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			logger := qlog.Init(qlog.Options{
				Level:      cfg.Logging.Level,
				Format:     cfg.Logging.Format,
				File:       cfg.Logging.File,
				MaxSize:    cfg.Logging.MaxSize,
				MaxBackups: cfg.Logging.MaxBackups,
				MaxAge:     cfg.Logging.MaxAge,
				Writer:     cmd.ErrOrStderr(),
			})
			logger.Debug("configuration loaded", slog.Any("sources", cfg.Sources))

			sess, err = newSession(cfg, logger)
			return err
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if sess != nil {
				sess.Close()
			}
			return qlog.Close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configFile, "config", "c", "", "config file (default: ~/.config/quill/config.toml)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&flags.theme, "theme", "", "color theme")

	current := func() *session { return sess }
	root.AddCommand(
		newHighlightCmd(current),
		newViewCmd(current),
		newWatchCmd(current),
		newLanguagesCmd(current),
		newThemesCmd(),
		newTreeCmd(current),
		newFixCmd(current),
	)
	return root
}

func loadConfig(flags *globalFlags) (*config.Config, error) {
	opts := []config.Option{}
	if wd, err := os.Getwd(); err == nil {
		opts = append(opts, config.WithProjectDir(wd))
	}
	if flags.configFile != "" {
		opts = append(opts, config.WithFile(flags.configFile))
	}

	overrides := map[string]any{}
	if flags.logLevel != "" {
		overrides["logging.level"] = flags.logLevel
	}
	if flags.theme != "" {
		overrides["highlight.theme"] = flags.theme
	}
	if len(overrides) > 0 {
		opts = append(opts, config.WithOverrides(overrides))
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newSession(cfg *config.Config, logger *slog.Logger) (*session, error) {
	theme, ok := highlight.NewThemeRegistry().Get(cfg.Highlight.Theme)
	if !ok {
		return nil, fmt.Errorf("unknown theme %q", cfg.Highlight.Theme)
	}
	palette, err := theme.Palette(highlight.DefaultPalette())
	if err != nil {
		return nil, err
	}
	palette, err = palette.WithOverrides(cfg.Highlight.Palette)
	if err != nil {
		return nil, fmt.Errorf("highlight.palette: %w", err)
	}

	registry := highlight.NewRegistry(palette,
		highlight.WithDefaultLanguage(cfg.Highlight.DefaultLanguage),
		highlight.WithExtensions(cfg.Highlight.Extensions),
		highlight.WithChromaFallback(cfg.Highlight.ChromaFallback),
		highlight.WithRegistryLogger(logger),
	)
	cache := highlight.NewCache(cfg.Highlight.CacheSize, logger)

	return &session{
		cfg:      cfg,
		logger:   logger,
		theme:    theme,
		palette:  palette,
		registry: registry,
		cache:    cache,
		hl:       highlight.New(registry, palette, cache, highlight.WithLogger(logger)),
	}, nil
}

// Close releases the grammars and logs cache statistics.
func (s *session) Close() {
	st := s.cache.Stats()
	s.logger.Debug("highlight cache",
		slog.Uint64("hits", st.Hits),
		slog.Uint64("misses", st.Misses),
		slog.Uint64("evictions", st.Evictions),
		slog.Int64("bytes", st.Bytes),
		slog.Float64("hit_rate", st.HitRate()),
	)
	s.registry.Close()
}
