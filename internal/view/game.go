// Package view turns a game state into what a renderer shows: cells, status line and move list.
package view

import "github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"

type Move struct {
	Step    int    `json:"step"`
	Label   string `json:"label"`
	Current bool   `json:"current"`
}

type Game struct {
	ID         string    `json:"id,omitempty"`
	Board      [9]string `json:"board"`
	Status     string    `json:"status"`
	Winner     string    `json:"winner,omitempty"`
	NextPlayer string    `json:"next_player,omitempty"`
	StepNumber int       `json:"step_number"`
	Moves      []Move    `json:"moves"`
}

// NewGame is computed from state on every call and never cached.
func NewGame(id string, state *tictactoe.GameState) *Game {
	game := &Game{
		ID:         id,
		Board:      state.CurrentBoard().Strings(),
		Status:     state.Status(),
		StepNumber: state.StepNumber(),
	}

	if winner := state.Winner(); winner != tictactoe.None {
		game.Winner = winner.String()
	} else {
		game.NextPlayer = state.CurrentTurn().String()
	}

	labels := state.MoveLabels()
	game.Moves = make([]Move, len(labels))
	for step, label := range labels {
		game.Moves[step] = Move{
			Step:    step,
			Label:   label,
			Current: step == state.StepNumber(),
		}
	}

	return game
}
