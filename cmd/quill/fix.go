package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/quill/internal/project/filestore"
)

func newFixCmd(current func() *session) *cobra.Command {
	var eol string
	cmd := &cobra.Command{
		Use:   "fix FILE...",
		Short: "Rewrite files as valid UTF-8 with consistent line endings",
		Long: `fix replaces ill-formed UTF-8 with U+FFFD, the same way files are
decoded for highlighting, and converts line endings. Files that need no
change are left untouched.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFix(current(), args, eol, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&eol, "eol", "lf", "line endings: lf, crlf, keep")
	return cmd
}

func eolConverter(mode string) (func(string) string, error) {
	toLF := func(s string) string { return strings.ReplaceAll(s, "\r\n", "\n") }
	switch mode {
	case "lf":
		return toLF, nil
	case "crlf":
		return func(s string) string { return strings.ReplaceAll(toLF(s), "\n", "\r\n") }, nil
	case "keep":
		return func(s string) string { return s }, nil
	default:
		return nil, fmt.Errorf("invalid --eol %q: want lf, crlf or keep", mode)
	}
}

func runFix(s *session, paths []string, eol string, out io.Writer) error {
	convert, err := eolConverter(eol)
	if err != nil {
		return err
	}

	store := filestore.New(
		filestore.WithLanguageFunc(s.registry.LanguageForPath),
		filestore.WithLogger(s.logger),
	)
	store.OnSave(func(doc filestore.Document) {
		fmt.Fprintf(out, "fixed %s\n", doc.Path)
	})

	var errs []error
	for _, path := range paths {
		doc, err := store.Open(path, true)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		doc, err = store.Update(doc.Path, convert(doc.Content))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !doc.IsDirty() && !doc.Repaired {
			s.logger.Debug("file unchanged", slog.String("path", doc.Path))
			continue
		}
		if err := store.SaveActive(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
