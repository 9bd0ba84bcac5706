package tictactoe

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
)

var (
	ErrEmptyHistory   = errors.New("history is empty")
	ErrCorruptHistory = errors.New("history is not a valid sequence of moves")
)

// GameState owns the history of board snapshots and the pointer to the active one.
// The player to move is derived from the pointer and never stored.
type GameState struct {
	history    []HistoryEntry
	stepNumber int
}

func NewGameState() *GameState {
	return &GameState{
		history:    []HistoryEntry{{Board: Board{}}},
		stepNumber: 0,
	}
}

// Restore rebuilds a GameState from recorded boards, checking that they form a legal game.
func Restore(boards []Board, step int) (*GameState, error) {
	if len(boards) == 0 {
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidArgument, ErrEmptyHistory)
	}

	if err := validateHistory(boards); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidArgument, err)
	}

	state := &GameState{history: make([]HistoryEntry, len(boards))}
	for i, board := range boards {
		state.history[i] = HistoryEntry{Board: board}
	}

	if err := state.JumpTo(step); err != nil {
		return nil, err
	}

	return state, nil
}

// ApplyMove places the mark of the player to move into cell.
// It reports false without changing anything when the current board is already won
// or the cell is taken. Entries after the active step are discarded before the new one is appended.
func (that *GameState) ApplyMove(cell int) (bool, error) {
	if cell < 0 || cell >= BoardSize {
		return false, fmt.Errorf("%w: cell %d out of range [0, %d)", apperror.ErrInvalidArgument, cell, BoardSize)
	}

	current := that.CurrentBoard()
	if Evaluate(current) != None || current[cell] != None {
		return false, nil
	}

	next := current
	next[cell] = that.CurrentTurn()

	that.history = append(that.history[:that.stepNumber+1:that.stepNumber+1], HistoryEntry{Board: next})
	that.stepNumber = len(that.history) - 1

	return true, nil
}

// JumpTo makes step the active snapshot. History is left untouched.
func (that *GameState) JumpTo(step int) error {
	if step < 0 || step >= len(that.history) {
		return fmt.Errorf("%w: step %d out of range [0, %d)", apperror.ErrInvalidArgument, step, len(that.history))
	}

	that.stepNumber = step

	return nil
}

func (that *GameState) CurrentBoard() Board {
	return that.history[that.stepNumber].Board
}

func (that *GameState) XIsNext() bool {
	return that.stepNumber%2 == 0
}

// CurrentTurn returns the mark that the next move places.
func (that *GameState) CurrentTurn() Mark {
	if that.XIsNext() {
		return PlayerX
	}

	return PlayerO
}

func (that *GameState) Winner() Mark {
	return Evaluate(that.CurrentBoard())
}

func (that *GameState) StepNumber() int {
	return that.stepNumber
}

func (that *GameState) HistoryLength() int {
	return len(that.history)
}

// History returns a copy of every recorded snapshot.
func (that *GameState) History() []HistoryEntry {
	return append([]HistoryEntry(nil), that.history...)
}

// StepLabel is the move-list caption for step.
func (that *GameState) StepLabel(step int) (string, error) {
	if step < 0 || step >= len(that.history) {
		return "", fmt.Errorf("%w: step %d out of range [0, %d)", apperror.ErrInvalidArgument, step, len(that.history))
	}

	return stepLabel(step), nil
}

// MoveLabels returns the caption of every recorded step, in order.
func (that *GameState) MoveLabels() []string {
	labels := make([]string, len(that.history))
	for step := range that.history {
		labels[step] = stepLabel(step)
	}

	return labels
}

func stepLabel(step int) string {
	if step == 0 {
		return "Go to game start"
	}

	return fmt.Sprintf("Go to move #%d", step)
}

// Status is the one-line caption shown above the board.
func (that *GameState) Status() string {
	if winner := that.Winner(); winner != None {
		return "Winner: " + winner.String()
	}

	return "Next player: " + that.CurrentTurn().String()
}

type gameStateJSON struct {
	History    []Board `json:"history"`
	StepNumber int     `json:"step_number"`
}

func (that *GameState) MarshalJSON() ([]byte, error) {
	boards := make([]Board, len(that.history))
	for i, entry := range that.history {
		boards[i] = entry.Board
	}

	return json.Marshal(gameStateJSON{History: boards, StepNumber: that.stepNumber})
}

func (that *GameState) UnmarshalJSON(data []byte) error {
	var raw gameStateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal game state: %w", err)
	}

	restored, err := Restore(raw.History, raw.StepNumber)
	if err != nil {
		return fmt.Errorf("failed to restore game state: %w", err)
	}

	*that = *restored

	return nil
}

// validateHistory checks the per-step invariants: an empty start, exactly one new mark per step
// with X on odd steps and O on even ones, and nothing recorded after a win.
func validateHistory(boards []Board) error {
	if !boards[0].IsEmpty() {
		return fmt.Errorf("%w: step 0 is not an empty board", ErrCorruptHistory)
	}

	for i := 1; i < len(boards); i++ {
		if Evaluate(boards[i-1]) != None {
			return fmt.Errorf("%w: step %d follows a finished game", ErrCorruptHistory, i)
		}

		expected := PlayerO
		if i%2 == 1 {
			expected = PlayerX
		}

		changed := 0
		for cell := range boards[i] {
			prev, cur := boards[i-1][cell], boards[i][cell]
			if prev == cur {
				continue
			}

			if prev != None || cur != expected {
				return fmt.Errorf("%w: step %d changes cell %d from %q to %q", ErrCorruptHistory, i, cell, prev, cur)
			}
			changed++
		}

		if changed != 1 {
			return fmt.Errorf("%w: step %d changes %d cells", ErrCorruptHistory, i, changed)
		}
	}

	return nil
}
