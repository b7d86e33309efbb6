package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/dshills/quill/internal/project/filestore"
	"github.com/dshills/quill/internal/renderer/backend"
)

func newHighlightCmd(current func() *session) *cobra.Command {
	var (
		lang  string
		color string
	)
	cmd := &cobra.Command{
		Use:   "highlight [FILE...]",
		Short: "Print files with syntax highlighting",
		Long:  `Print files with ANSI syntax highlighting. With no files, or "-", standard input is read.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := current()
			opts, err := colorOptions(color)
			if err != nil {
				return err
			}
			w := backend.NewANSIWriter(cmd.OutOrStdout(), opts...)

			if len(args) == 0 {
				args = []string{"-"}
			}
			store := filestore.New(
				filestore.WithLanguageFunc(s.registry.LanguageForPath),
				filestore.WithLogger(s.logger),
			)
			for _, path := range args {
				if err := highlightOne(cmd, s, store, w, path, lang); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "language name; detected from the file name when empty")
	cmd.Flags().StringVar(&color, "color", "auto", "color output: auto, always, never")
	return cmd
}

func highlightOne(cmd *cobra.Command, s *session, store *filestore.FileStore, w *backend.ANSIWriter, path, lang string) error {
	var text, language string
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text, language = string(data), s.registry.DefaultLanguage()
	} else {
		doc, err := store.Open(path, false)
		if err != nil {
			return err
		}
		text, language = doc.Content, doc.Language
	}
	if lang != "" {
		language = lang
	}

	s.logger.Debug("highlighting", slog.String("path", path), slog.String("language", language))
	return w.WriteRuns(s.hl.HighlightContext(cmd.Context(), language, text))
}

func colorOptions(mode string) ([]backend.ANSIOption, error) {
	switch mode {
	case "auto", "":
		return nil, nil
	case "always":
		return []backend.ANSIOption{backend.WithProfile(termenv.TrueColor)}, nil
	case "never":
		return []backend.ANSIOption{backend.WithProfile(termenv.Ascii)}, nil
	default:
		return nil, fmt.Errorf("invalid --color %q: want auto, always or never", mode)
	}
}
