package main

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/dshills/quill/internal/renderer/backend"
	"github.com/dshills/quill/internal/renderer/core"
)

// quitEvent is posted to the screen when the command context ends.
type quitEvent struct{}

func newViewCmd(current func() *session) *cobra.Command {
	return &cobra.Command{
		Use:   "view FILE",
		Short: "Show a file in a scrolling terminal viewer",
		Long: `Show a file in a scrolling terminal viewer. The view refreshes when
the file changes on disk. Arrow keys, PgUp, PgDn, Home and End scroll;
any other key quits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("create terminal: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("init terminal: %w", err)
			}
			defer screen.Fini()
			return runView(cmd.Context(), current(), args[0], screen)
		},
	}
}

func runView(ctx context.Context, s *session, path string, screen tcell.Screen) error {
	store, deb, stop, err := followFile(ctx, s, path)
	if err != nil {
		return err
	}
	defer stop()

	status := backend.NewStatusLine()
	doc, _ := store.Active()
	status.SetLanguage(doc.Language)
	var crumbs []string
	for _, c := range store.ActiveComponents() {
		crumbs = append(crumbs, c.Name)
	}
	status.SetBreadcrumbs(crumbs)

	painter := backend.NewScreenPainter(screen,
		backend.WithTabWidth(s.cfg.View.TabWidth),
		backend.WithWrap(s.cfg.View.Wrap),
		backend.WithBaseStyle(core.NewStyle(s.theme.Foreground).WithBackground(s.theme.Background)),
		backend.WithStatusLine(status),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = screen.PostEvent(tcell.NewEventInterrupt(quitEvent{}))
				return
			case <-deb.Updates():
				_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
			}
		}
	}()

	scroll := 0
	for {
		var total int
		if r := deb.Latest(); r != nil {
			total = painter.Paint(r.Runs, scroll)
		} else {
			total = painter.Paint(nil, scroll)
		}
		page := painter.PageHeight()
		scroll = backend.ClampScroll(scroll, total, page)

		switch ev := screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventInterrupt:
			if _, ok := ev.Data().(quitEvent); ok {
				return nil
			}
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyUp:
				scroll--
			case tcell.KeyDown:
				scroll++
			case tcell.KeyPgUp:
				scroll -= page
			case tcell.KeyPgDn:
				scroll += page
			case tcell.KeyHome:
				scroll = 0
			case tcell.KeyEnd:
				scroll = total
			default:
				return nil
			}
			scroll = backend.ClampScroll(scroll, total, page)
		}
	}
}
