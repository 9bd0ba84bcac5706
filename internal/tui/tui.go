// Package tui is a terminal renderer for a single local game.
package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/nsf/termbox-go"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

// Run - takes over the terminal until the player quits.
func Run(logger *slog.Logger) error {
	log := logger.With("method", "Run")

	if err := termbox.Init(); err != nil {
		return fmt.Errorf("failed to init terminal: %w", err)
	}
	defer termbox.Close()

	m := newModel(tictactoe.NewGameState())
	log.Info("local game started")

	for !m.quit {
		if err := draw(layout(m)); err != nil {
			return err
		}

		switch ev := termbox.PollEvent(); ev.Type {
		case termbox.EventKey:
			m.handleKey(ev)
		case termbox.EventError:
			return fmt.Errorf("failed to read terminal event: %w", ev.Err)
		}
	}

	log.Info("local game closed", "moves", m.state.HistoryLength()-1, "status", m.state.Status())

	return nil
}

func draw(lines []string) error {
	if err := termbox.Clear(termbox.ColorDefault, termbox.ColorDefault); err != nil {
		return fmt.Errorf("failed to clear screen: %w", err)
	}

	for y, line := range lines {
		fg := termbox.ColorDefault
		if strings.HasPrefix(line, ">") {
			fg |= termbox.AttrBold
		}

		for x, r := range []rune(line) {
			termbox.SetCell(x, y, r, fg, termbox.ColorDefault)
		}
	}

	if err := termbox.Flush(); err != nil {
		return fmt.Errorf("failed to flush screen: %w", err)
	}

	return nil
}
