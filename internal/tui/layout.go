package tui

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/view"
)

const helpLine = "arrows move  enter/space or 1-9 place  [ ] step  g<n> jump  q quit"

// layout renders the model as screen lines, top to bottom.
func layout(m *model) []string {
	game := view.NewGame("", m.state)

	lines := make([]string, 0, 2*boardSide+len(game.Moves)+6)

	for row := 0; row < boardSide; row++ {
		if row > 0 {
			lines = append(lines, "---+---+---")
		}

		cells := make([]string, boardSide)
		for col := range cells {
			idx := row*boardSide + col
			cells[col] = renderCell(game.Board[idx], idx == m.cursor)
		}
		lines = append(lines, strings.Join(cells, "|"))
	}

	lines = append(lines, "", game.Status, "", "Moves:")

	for _, move := range game.Moves {
		marker := " "
		if move.Current {
			marker = ">"
		}
		lines = append(lines, fmt.Sprintf("%s %d. %s", marker, move.Step, move.Label))
	}

	lines = append(lines, "", m.notice, helpLine)

	return lines
}

func renderCell(mark string, selected bool) string {
	if mark == "" {
		mark = " "
	}

	if selected {
		return "[" + mark + "]"
	}

	return " " + mark + " "
}
