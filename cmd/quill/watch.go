package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dshills/quill/internal/project/filestore"
	"github.com/dshills/quill/internal/project/watcher"
	"github.com/dshills/quill/internal/renderer/backend"
	"github.com/dshills/quill/internal/renderer/highlight"
)

func newWatchCmd(current func() *session) *cobra.Command {
	var color string
	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Re-print a file with highlighting every time it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := colorOptions(color)
			if err != nil {
				return err
			}
			w := backend.NewANSIWriter(cmd.OutOrStdout(), opts...)
			return runWatch(cmd.Context(), current(), args[0], w, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&color, "color", "auto", "color output: auto, always, never")
	return cmd
}

// followFile opens path, highlights it through a Debouncer and resubmits
// it whenever it changes on disk. The caller must call the returned stop
// function.
func followFile(ctx context.Context, s *session, path string) (*filestore.FileStore, *highlight.Debouncer, func(), error) {
	store := filestore.New(
		filestore.WithLanguageFunc(s.registry.LanguageForPath),
		filestore.WithLogger(s.logger),
	)
	fsw, err := watcher.NewFSNotifyWatcher(watcher.WithLogger(s.logger))
	if err != nil {
		return nil, nil, nil, err
	}
	dw := watcher.NewDebounced(fsw, s.cfg.Highlight.Debounce)

	// Every document the store opens is watched.
	var watchErr error
	store.OnOpen(func(doc filestore.Document) {
		if err := dw.Watch(doc.Path); err != nil {
			watchErr = fmt.Errorf("watch %s: %w", doc.Path, err)
		}
	})
	doc, err := store.Open(path, true)
	if err == nil {
		err = watchErr
	}
	if err != nil {
		_ = dw.Close()
		return nil, nil, nil, err
	}

	deb := highlight.NewDebouncer(s.hl, s.cfg.Highlight.Debounce)
	deb.Submit(doc.Language, doc.Content)
	deb.Flush()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		watcher.Run(ctx, dw, func(e watcher.Event) {
			if !e.Op.Changed() {
				return
			}
			d, err := store.Reload(e.Path)
			if err != nil {
				s.logger.Warn("reload failed", slog.String("path", e.Path), slog.Any("error", err))
				return
			}
			deb.Submit(d.Language, d.Content)
		}, func(err error) {
			s.logger.Warn("watcher error", slog.Any("error", err))
		})
	}()

	stop := func() {
		cancel()
		<-done
		_ = dw.Close()
		deb.Close()
	}
	return store, deb, stop, nil
}

func runWatch(ctx context.Context, s *session, path string, w *backend.ANSIWriter, out io.Writer) error {
	store, deb, stop, err := followFile(ctx, s, path)
	if err != nil {
		return err
	}
	defer stop()

	var shown uint64
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-deb.Updates():
		}

		r := deb.Latest()
		if r == nil || r.Seq == shown {
			continue
		}
		shown = r.Seq

		w.ClearScreen()
		if doc, ok := store.Active(); ok {
			fmt.Fprintf(out, "==> %s (%s, v%d) <==\n", doc.Path, r.Language, doc.Version)
		}
		if err := w.WriteRuns(r.Runs); err != nil {
			return err
		}
	}
}
