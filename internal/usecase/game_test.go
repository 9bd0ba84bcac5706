package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/metrics"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/repository"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/service"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/tictactoe"
)

var errStorageIsFull = errors.New("storage is full")

type fakeRecorder struct {
	mu      sync.Mutex
	created int
	ended   int
	moves   map[string]int
	jumps   map[string]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{moves: make(map[string]int), jumps: make(map[string]int)}
}

func (that *fakeRecorder) GameCreated() {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.created++
}

func (that *fakeRecorder) GameEnded() {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.ended++
}

func (that *fakeRecorder) Move(result string) {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.moves[result]++
}

func (that *fakeRecorder) Jump(result string) {
	that.mu.Lock()
	defer that.mu.Unlock()
	that.jumps[result]++
}

type mockGameService struct {
	mock.Mock
}

func (that *mockGameService) CreateGame(ctx context.Context) (*entity.Game, error) {
	args := that.Called(ctx)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameService) GetGameByID(ctx context.Context, id string) (*entity.Game, error) {
	args := that.Called(ctx, id)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameService) UpdateGame(ctx context.Context, game *entity.Game) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}

func (that *mockGameService) DeleteGame(ctx context.Context, gameID string) error {
	args := that.Called(ctx, gameID)
	return args.Error(0)
}

func fixedTime() time.Time {
	return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newUseCase wires the use case to an in-memory store.
func newUseCase(t *testing.T) (GameUseCase, *fakeRecorder) {
	t.Helper()

	recorder := newFakeRecorder()
	gameService := service.NewGameService(repository.NewMemoryGameRepository(0))

	return NewGameUseCase(discardLogger(), gameService, recorder), recorder
}

func applyMoves(t *testing.T, useCase GameUseCase, gameID string, cells ...int) *entity.Game {
	t.Helper()

	var game *entity.Game
	for _, cell := range cells {
		var (
			applied bool
			err     error
		)
		game, applied, err = useCase.ApplyMove(context.Background(), gameID, cell)
		require.NoError(t, err)
		require.True(t, applied, "move to cell %d was ignored", cell)
	}

	return game
}

func TestGameUseCase_NewGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates and stores an empty game", func(t *testing.T) {
		// Given: a use case backed by memory
		useCase, recorder := newUseCase(t)

		// When: starting a game
		game, err := useCase.NewGame(ctx)

		// Then: the game can be loaded again
		require.NoError(t, err)
		assert.NotEmpty(t, game.ID)
		assert.Equal(t, 1, recorder.created)

		loaded, err := useCase.GetGame(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, tictactoe.Board{}, loaded.State.CurrentBoard())
	})

	t.Run("Returns error if the service fails", func(t *testing.T) {
		// Given: a service that cannot store games
		gameService := &mockGameService{}
		gameService.On("CreateGame", ctx).Return(nil, errStorageIsFull).Once()
		recorder := newFakeRecorder()
		useCase := NewGameUseCase(discardLogger(), gameService, recorder)

		// When: starting a game
		game, err := useCase.NewGame(ctx)

		// Then: the error is returned and nothing is counted
		require.ErrorIs(t, err, errStorageIsFull)
		assert.Nil(t, game)
		assert.Equal(t, 0, recorder.created)
	})
}

func TestGameUseCase_ApplyMove(t *testing.T) {
	ctx := context.Background()

	t.Run("First move is stored", func(t *testing.T) {
		// Given: a new game
		useCase, recorder := newUseCase(t)
		game, err := useCase.NewGame(ctx)
		require.NoError(t, err)

		// When: X plays cell 0
		updated, applied, err := useCase.ApplyMove(ctx, game.ID, 0)

		// Then: the move is applied and persisted
		require.NoError(t, err)
		assert.True(t, applied)
		assert.Equal(t, tictactoe.PlayerX, updated.State.CurrentBoard()[0])
		assert.Equal(t, 1, recorder.moves[metrics.ResultApplied])

		loaded, err := useCase.GetGame(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, loaded.State.StepNumber())
		assert.False(t, loaded.State.XIsNext())
	})

	t.Run("Win stops further moves", func(t *testing.T) {
		// Given: X wins along the top row
		useCase, recorder := newUseCase(t)
		game, err := useCase.NewGame(ctx)
		require.NoError(t, err)
		game = applyMoves(t, useCase, game.ID, 0, 3, 1, 4, 2)
		require.Equal(t, tictactoe.PlayerX, game.State.Winner())

		// When: another move is attempted
		updated, applied, err := useCase.ApplyMove(ctx, game.ID, 5)

		// Then: it is ignored and history keeps 6 entries
		require.NoError(t, err)
		assert.False(t, applied)
		assert.Equal(t, 6, updated.State.HistoryLength())
		assert.Equal(t, 1, recorder.moves[metrics.ResultIgnored])
	})

	t.Run("Occupied cell is ignored", func(t *testing.T) {
		// Given: X holds cell 5
		useCase, _ := newUseCase(t)
		game, err := useCase.NewGame(ctx)
		require.NoError(t, err)
		applyMoves(t, useCase, game.ID, 5)

		// When: O tries cell 5
		updated, applied, err := useCase.ApplyMove(ctx, game.ID, 5)

		// Then: nothing changes
		require.NoError(t, err)
		assert.False(t, applied)
		assert.Equal(t, 2, updated.State.HistoryLength())
	})

	t.Run("Invalid cell returns ErrInvalidArgument", func(t *testing.T) {
		// Given: a new game
		useCase, recorder := newUseCase(t)
		game, err := useCase.NewGame(ctx)
		require.NoError(t, err)

		// When: playing outside the board
		_, applied, err := useCase.ApplyMove(ctx, game.ID, 9)

		// Then: the error is returned
		require.ErrorIs(t, err, apperror.ErrInvalidArgument)
		assert.False(t, applied)
		assert.Equal(t, 1, recorder.moves[metrics.ResultInvalid])
	})

	t.Run("Unknown game returns ErrGameNotFound", func(t *testing.T) {
		// Given: no games
		useCase, _ := newUseCase(t)

		// When: playing in an unknown game
		_, _, err := useCase.ApplyMove(ctx, "missing", 0)

		// Then: ErrGameNotFound is returned
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})

	t.Run("Save failure is returned", func(t *testing.T) {
		// Given: a service that loads but cannot save
		game := entity.NewGame("g1", fixedTime())
		gameService := &mockGameService{}
		gameService.On("GetGameByID", ctx, "g1").Return(game, nil).Once()
		gameService.On("UpdateGame", ctx, game).Return(errStorageIsFull).Once()
		recorder := newFakeRecorder()
		useCase := NewGameUseCase(discardLogger(), gameService, recorder)

		// When: playing a move
		_, applied, err := useCase.ApplyMove(ctx, "g1", 0)

		// Then: the error is returned and the move is not counted
		require.ErrorIs(t, err, errStorageIsFull)
		assert.False(t, applied)
		assert.Equal(t, 0, recorder.moves[metrics.ResultApplied])
		gameService.AssertExpectations(t)
	})

	t.Run("Ignored move is not saved", func(t *testing.T) {
		// Given: a game where cell 0 is taken
		game := entity.NewGame("g1", fixedTime())
		_, err := game.State.ApplyMove(0)
		require.NoError(t, err)

		gameService := &mockGameService{}
		gameService.On("GetGameByID", ctx, "g1").Return(game, nil).Once()
		useCase := NewGameUseCase(discardLogger(), gameService, newFakeRecorder())

		// When: cell 0 is played again
		_, applied, err := useCase.ApplyMove(ctx, "g1", 0)

		// Then: UpdateGame is never called
		require.NoError(t, err)
		assert.False(t, applied)
		gameService.AssertNotCalled(t, "UpdateGame", mock.Anything, mock.Anything)
	})

	t.Run("Stored record without state is rejected", func(t *testing.T) {
		// Given: a store holding a record that lost its state
		gameRepo := repository.NewMemoryGameRepository(0)
		require.NoError(t, gameRepo.CreateOrUpdate(ctx, &entity.Game{ID: "a"}))
		useCase := NewGameUseCase(discardLogger(), service.NewGameService(gameRepo), newFakeRecorder())

		// When: moving and jumping in it
		var moveErr, jumpErr error
		require.NotPanics(t, func() {
			_, _, moveErr = useCase.ApplyMove(ctx, "a", 0)
			_, jumpErr = useCase.JumpTo(ctx, "a", 0)
		})

		// Then: both report an invalid record
		require.ErrorIs(t, moveErr, apperror.ErrInvalidArgument)
		require.ErrorIs(t, jumpErr, apperror.ErrInvalidArgument)
	})

	t.Run("Concurrent moves on one game are serialised", func(t *testing.T) {
		// Given: a new game
		useCase, _ := newUseCase(t)
		game, err := useCase.NewGame(ctx)
		require.NoError(t, err)

		// When: every cell is played at the same time
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			applied int
		)
		for cell := range tictactoe.BoardSize {
			wg.Add(1)
			go func() {
				defer wg.Done()

				_, ok, moveErr := useCase.ApplyMove(ctx, game.ID, cell)
				assert.NoError(t, moveErr)

				if ok {
					mu.Lock()
					applied++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		// Then: every applied move was recorded exactly once
		loaded, err := useCase.GetGame(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, applied+1, loaded.State.HistoryLength())
		assert.Equal(t, applied, loaded.State.StepNumber())
	})
}

func TestGameUseCase_JumpTo(t *testing.T) {
	ctx := context.Background()

	t.Run("Rewind and branch", func(t *testing.T) {
		// Given: X played cell 0
		useCase, recorder := newUseCase(t)
		game, err := useCase.NewGame(ctx)
		require.NoError(t, err)
		applyMoves(t, useCase, game.ID, 0)

		// When: rewinding to the start
		rewound, err := useCase.JumpTo(ctx, game.ID, 0)

		// Then: the empty board is active and X is to move
		require.NoError(t, err)
		assert.True(t, rewound.State.XIsNext())
		assert.Equal(t, tictactoe.Board{}, rewound.State.CurrentBoard())
		assert.Equal(t, 1, recorder.jumps[metrics.ResultOK])

		// When: a new first move is played
		branched := applyMoves(t, useCase, game.ID, 4)

		// Then: the old branch is gone
		assert.Equal(t, 2, branched.State.HistoryLength())
		assert.Equal(t, tictactoe.None, branched.State.CurrentBoard()[0])
		assert.Equal(t, tictactoe.PlayerX, branched.State.CurrentBoard()[4])
	})

	t.Run("Out of range step is rejected and nothing changes", func(t *testing.T) {
		// Given: a game with history length 3
		useCase, recorder := newUseCase(t)
		game, err := useCase.NewGame(ctx)
		require.NoError(t, err)
		applyMoves(t, useCase, game.ID, 0, 1)

		// When: jumping to step 99
		_, err = useCase.JumpTo(ctx, game.ID, 99)

		// Then: ErrInvalidArgument is returned
		require.ErrorIs(t, err, apperror.ErrInvalidArgument)
		assert.Equal(t, 1, recorder.jumps[metrics.ResultInvalid])

		loaded, err := useCase.GetGame(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, loaded.State.StepNumber())
		assert.Equal(t, 3, loaded.State.HistoryLength())
	})
}

func TestGameUseCase_EndGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Deletes the game", func(t *testing.T) {
		// Given: a stored game
		useCase, recorder := newUseCase(t)
		game, err := useCase.NewGame(ctx)
		require.NoError(t, err)

		// When: ending it
		err = useCase.EndGame(ctx, game.ID)

		// Then: the game is gone
		require.NoError(t, err)
		assert.Equal(t, 1, recorder.ended)

		_, err = useCase.GetGame(ctx, game.ID)
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})

	t.Run("Unknown game returns ErrGameNotFound", func(t *testing.T) {
		// Given: no games
		useCase, recorder := newUseCase(t)

		// When: ending an unknown game
		err := useCase.EndGame(ctx, "missing")

		// Then: ErrGameNotFound is returned
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
		assert.Equal(t, 0, recorder.ended)
	})
}
