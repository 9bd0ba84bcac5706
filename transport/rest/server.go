package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

type gameUseCase interface {
	NewGame(ctx context.Context) (*entity.Game, error)
	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
	EndGame(ctx context.Context, gameID string) error

	ApplyMove(ctx context.Context, gameID string, cell int) (*entity.Game, bool, error)
	JumpTo(ctx context.Context, gameID string, step int) (*entity.Game, error)
}

type Server struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
	metrics     http.Handler
}

// New builds the HTTP API. metrics may be nil, in which case /metrics is not served.
func New(logger *slog.Logger, gameUseCase gameUseCase, metrics http.Handler) *Server {
	return &Server{
		logger:      logger.With("component", "rest"),
		gameUseCase: gameUseCase,
		metrics:     metrics,
	}
}

func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", that.pingHandler)

	if that.metrics != nil {
		mux.Handle("GET /metrics", that.metrics)
	}

	mux.HandleFunc("POST /games", that.createGameHandler)
	mux.HandleFunc("GET /games/{id}", that.getGameHandler)
	mux.HandleFunc("DELETE /games/{id}", that.endGameHandler)
	mux.HandleFunc("POST /games/{id}/moves", that.applyMoveHandler)
	mux.HandleFunc("POST /games/{id}/jump", that.jumpHandler)

	return mux
}

// Start - serves the API until ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
