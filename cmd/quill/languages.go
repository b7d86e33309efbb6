package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/quill/internal/renderer/highlight"
)

func newLanguagesCmd(current func() *session) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List tree-sitter languages and their file extensions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := current()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "LANGUAGE\tEXTENSIONS\tSTATUS")
			for _, lang := range s.registry.Languages() {
				status := "ok"
				if err := s.registry.Broken(lang); err != nil {
					status = "plain text: " + err.Error()
				}
				if lang == s.registry.DefaultLanguage() {
					status += " (default)"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", lang, strings.Join(s.registry.Extensions(lang), " "), status)
			}
			fmt.Fprintf(tw, "%s\t\t%s\n", highlight.LanguagePlain, "no highlighting")
			if s.cfg.Highlight.ChromaFallback {
				fmt.Fprintln(tw, "*\t\tother languages via chroma lexers")
			}
			return tw.Flush()
		},
	}
}

func newThemesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List color themes",
		Args:  cobra.NoArgs,
		// The theme list does not depend on configuration.
		PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
		PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range highlight.NewThemeRegistry().Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}
