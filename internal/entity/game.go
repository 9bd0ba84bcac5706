package entity

import (
	"time"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

// Game is one play session: the game state plus the bookkeeping needed to store it.
type Game struct {
	ID        string               `json:"id"`
	State     *tictactoe.GameState `json:"state"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

func NewGame(id string, now time.Time) *Game {
	return &Game{
		ID:        id,
		State:     tictactoe.NewGameState(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsFinished reports whether the active board already has a winner.
func (that *Game) IsFinished() bool {
	return that.State.Winner() != tictactoe.None
}

func (that *Game) Touch(now time.Time) {
	that.UpdatedAt = now
}
