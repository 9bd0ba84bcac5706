package tui

import (
	"github.com/nsf/termbox-go"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

const boardSide = 3

type model struct {
	state  *tictactoe.GameState
	cursor int

	// set after `g`, the next digit is taken as a step number
	awaitingJump bool
	quit         bool
	notice       string
}

func newModel(state *tictactoe.GameState) *model {
	return &model{state: state, cursor: boardSide + 1}
}

func (that *model) handleKey(ev termbox.Event) {
	that.notice = ""

	switch ev.Key {
	case termbox.KeyEsc, termbox.KeyCtrlC:
		that.quit = true
		return
	case termbox.KeyArrowLeft:
		if that.cursor%boardSide > 0 {
			that.cursor--
		}
		return
	case termbox.KeyArrowRight:
		if that.cursor%boardSide < boardSide-1 {
			that.cursor++
		}
		return
	case termbox.KeyArrowUp:
		if that.cursor >= boardSide {
			that.cursor -= boardSide
		}
		return
	case termbox.KeyArrowDown:
		if that.cursor < tictactoe.BoardSize-boardSide {
			that.cursor += boardSide
		}
		return
	case termbox.KeyEnter, termbox.KeySpace:
		that.place(that.cursor)
		return
	}

	that.handleRune(ev.Ch)
}

func (that *model) handleRune(ch rune) {
	if that.awaitingJump {
		that.awaitingJump = false
		if ch >= '0' && ch <= '9' {
			that.jump(int(ch - '0'))
		}
		return
	}

	switch {
	case ch == 'q':
		that.quit = true
	case ch == 'g':
		that.awaitingJump = true
		that.notice = "jump to step:"
	case ch == '[':
		if that.state.StepNumber() > 0 {
			that.jump(that.state.StepNumber() - 1)
		}
	case ch == ']':
		if that.state.StepNumber() < that.state.HistoryLength()-1 {
			that.jump(that.state.StepNumber() + 1)
		}
	case ch >= '1' && ch <= '9':
		that.cursor = int(ch - '1')
		that.place(that.cursor)
	}
}

func (that *model) place(cell int) {
	applied, err := that.state.ApplyMove(cell)
	switch {
	case err != nil:
		that.notice = err.Error()
	case !applied && that.state.Winner() != tictactoe.None:
		that.notice = "game is over, step back to keep playing"
	case !applied:
		that.notice = "cell is taken"
	}
}

func (that *model) jump(step int) {
	if err := that.state.JumpTo(step); err != nil {
		that.notice = "no such step"
	}
}
