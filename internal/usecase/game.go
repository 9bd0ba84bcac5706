package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/metrics"
)

type GameUseCase interface {
	NewGame(ctx context.Context) (*entity.Game, error)
	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
	EndGame(ctx context.Context, gameID string) error

	ApplyMove(ctx context.Context, gameID string, cell int) (*entity.Game, bool, error)
	JumpTo(ctx context.Context, gameID string, step int) (*entity.Game, error)
}

type gameService interface {
	CreateGame(ctx context.Context) (*entity.Game, error)
	GetGameByID(ctx context.Context, id string) (*entity.Game, error)
	UpdateGame(ctx context.Context, game *entity.Game) error
	DeleteGame(ctx context.Context, gameID string) error
}

type recorder interface {
	GameCreated()
	GameEnded()
	Move(result string)
	Jump(result string)
}

type gameUseCase struct {
	logger      *slog.Logger
	gameService gameService
	recorder    recorder
	locks       *sessionLocks
}

func NewGameUseCase(logger *slog.Logger, gameService gameService, recorder recorder) GameUseCase {
	return &gameUseCase{
		logger:      logger.With("component", "usecase"),
		gameService: gameService,
		recorder:    recorder,
		locks:       newSessionLocks(),
	}
}

func (that *gameUseCase) NewGame(ctx context.Context) (*entity.Game, error) {
	log := that.logger.With("method", "NewGame")

	game, err := that.gameService.CreateGame(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not create game: %w", err)
	}

	that.recorder.GameCreated()
	log.Info("game created", "gameID", game.ID)

	return game, nil
}

func (that *gameUseCase) GetGame(ctx context.Context, gameID string) (*entity.Game, error) {
	game, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

func (that *gameUseCase) EndGame(ctx context.Context, gameID string) error {
	log := that.logger.With("method", "EndGame", "gameID", gameID)

	unlock := that.locks.lock(gameID)
	defer unlock()

	if err := that.gameService.DeleteGame(ctx, gameID); err != nil {
		return fmt.Errorf("failed to end game: %w", err)
	}

	that.recorder.GameEnded()
	log.Info("game ended")

	return nil
}

// ApplyMove plays cell in the game and saves it. The bool is false when the move was ignored
// because the cell is taken or the board is already won; the game is returned unchanged then.
func (that *gameUseCase) ApplyMove(ctx context.Context, gameID string, cell int) (*entity.Game, bool, error) {
	log := that.logger.With("method", "ApplyMove", "gameID", gameID, "cell", cell)

	unlock := that.locks.lock(gameID)
	defer unlock()

	game, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get game: %w", err)
	}

	applied, err := game.State.ApplyMove(cell)
	if err != nil {
		that.recorder.Move(metrics.ResultInvalid)
		return nil, false, fmt.Errorf("failed to apply move: %w", err)
	}

	if !applied {
		that.recorder.Move(metrics.ResultIgnored)
		log.Debug("move ignored", "finished", game.IsFinished())

		return game, false, nil
	}

	if err = that.gameService.UpdateGame(ctx, game); err != nil {
		return nil, false, fmt.Errorf("failed to save game: %w", err)
	}

	that.recorder.Move(metrics.ResultApplied)
	log.Debug("move applied", "step", game.State.StepNumber())

	if game.IsFinished() {
		log.Info("game won", "winner", game.State.Winner().String())
	}

	return game, true, nil
}

func (that *gameUseCase) JumpTo(ctx context.Context, gameID string, step int) (*entity.Game, error) {
	log := that.logger.With("method", "JumpTo", "gameID", gameID, "step", step)

	unlock := that.locks.lock(gameID)
	defer unlock()

	game, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if err = game.State.JumpTo(step); err != nil {
		that.recorder.Jump(metrics.ResultInvalid)

		return nil, fmt.Errorf("failed to jump: %w", err)
	}

	if err = that.gameService.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to save game: %w", err)
	}

	that.recorder.Jump(metrics.ResultOK)
	log.Debug("jumped")

	return game, nil
}
