package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/quill/internal/project/filestore"
)

func newTreeCmd(current func() *session) *cobra.Command {
	var (
		depth int
		all   bool
	)
	cmd := &cobra.Command{
		Use:   "tree [DIR]",
		Short: "List a directory with the language each file is highlighted as",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			t := treePrinter{out: cmd.OutOrStdout(), s: current(), all: all}
			return t.print(dir, depth)
		},
	}
	cmd.Flags().IntVarP(&depth, "depth", "L", 2, "directory levels to descend below DIR")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include dot files")
	return cmd
}

type treePrinter struct {
	out io.Writer
	s   *session
	all bool
}

func (t treePrinter) print(dir string, depth int) error {
	entries, err := t.list(dir)
	if entries == nil && err != nil {
		return err
	}
	if err != nil {
		t.s.logger.Warn("list directory", slog.String("path", dir), slog.Any("error", err))
	}
	fmt.Fprintln(t.out, dir)
	t.walk(entries, "", depth)
	return nil
}

// list reads a directory. On a partial failure it returns the entries
// that could be read along with the error.
func (t treePrinter) list(dir string) ([]filestore.Entry, error) {
	entries, err := filestore.ListDir(dir)
	if t.all {
		return entries, err
	}
	visible := entries[:0]
	for _, e := range entries {
		if !strings.HasPrefix(e.Name, ".") {
			visible = append(visible, e)
		}
	}
	return visible, err
}

func (t treePrinter) walk(entries []filestore.Entry, indent string, depth int) {
	for i, e := range entries {
		branch, next := "├── ", "│   "
		if i == len(entries)-1 {
			branch, next = "└── ", "    "
		}
		if !e.IsDir {
			fmt.Fprintf(t.out, "%s%s%s  [%s]\n", indent, branch, e.Name, t.s.registry.LanguageForPath(e.Path))
			continue
		}
		fmt.Fprintf(t.out, "%s%s%s/\n", indent, branch, e.Name)
		if depth <= 0 {
			continue
		}
		children, err := t.list(e.Path)
		if err != nil {
			t.s.logger.Warn("list directory", slog.String("path", e.Path), slog.Any("error", err))
		}
		t.walk(children, indent+next, depth-1)
	}
}
