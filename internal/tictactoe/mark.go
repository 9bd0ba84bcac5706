package tictactoe

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
)

// Mark is the content of a single board cell.
type Mark uint8

const (
	None Mark = iota
	PlayerX
	PlayerO
)

const BoardSize = 9

// Board is a 3x3 grid stored row-major. It is a value type, so a stored snapshot never changes.
type Board [BoardSize]Mark

// HistoryEntry wraps one recorded board snapshot.
type HistoryEntry struct {
	Board Board `json:"board"`
}

func (that Mark) String() string {
	switch that {
	case PlayerX:
		return "X"
	case PlayerO:
		return "O"
	default:
		return ""
	}
}

// ParseMark is the inverse of Mark.String.
func ParseMark(s string) (Mark, error) {
	switch s {
	case "":
		return None, nil
	case "X":
		return PlayerX, nil
	case "O":
		return PlayerO, nil
	default:
		return None, fmt.Errorf("%w: unknown mark %q", apperror.ErrInvalidArgument, s)
	}
}

func (that Mark) MarshalJSON() ([]byte, error) {
	return json.Marshal(that.String())
}

func (that *Mark) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to unmarshal mark: %w", err)
	}

	mark, err := ParseMark(s)
	if err != nil {
		return err
	}

	*that = mark

	return nil
}

// Strings returns the display form of every cell.
func (that Board) Strings() [BoardSize]string {
	var cells [BoardSize]string
	for i, mark := range that {
		cells[i] = mark.String()
	}

	return cells
}

func (that Board) IsEmpty() bool {
	return that == Board{}
}
