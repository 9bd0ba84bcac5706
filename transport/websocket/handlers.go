package websocket

import (
	"context"
	"errors"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/view"
)

func (that *Server) handleNewGame(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	game, err := that.gameUseCase.NewGame(ctx)
	if err != nil {
		return that.sendUseCaseError(conn, msg.Action, err)
	}

	return that.sendGame(conn, msg.Action, game, nil)
}

func (that *Server) handleGetGame(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	payloadReq, ok, err := that.readGamePayload(msg, conn)
	if !ok {
		return err
	}

	game, err := that.gameUseCase.GetGame(ctx, payloadReq.GameID)
	if err != nil {
		return that.sendUseCaseError(conn, msg.Action, err)
	}

	return that.sendGame(conn, msg.Action, game, nil)
}

func (that *Server) handleMove(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	payloadReq, ok, err := that.readGamePayload(msg, conn)
	if !ok {
		return err
	}

	if payloadReq.Cell == nil {
		return that.sendErrorResponse(conn, msg.Action, "cell is required")
	}

	game, applied, err := that.gameUseCase.ApplyMove(ctx, payloadReq.GameID, *payloadReq.Cell)
	if err != nil {
		return that.sendUseCaseError(conn, msg.Action, err)
	}

	return that.sendGame(conn, msg.Action, game, &applied)
}

func (that *Server) handleJump(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	payloadReq, ok, err := that.readGamePayload(msg, conn)
	if !ok {
		return err
	}

	if payloadReq.Step == nil {
		return that.sendErrorResponse(conn, msg.Action, "step is required")
	}

	game, err := that.gameUseCase.JumpTo(ctx, payloadReq.GameID, *payloadReq.Step)
	if err != nil {
		return that.sendUseCaseError(conn, msg.Action, err)
	}

	return that.sendGame(conn, msg.Action, game, nil)
}

func (that *Server) handleEndGame(ctx context.Context, msg *Message, conn *websocket.Conn) error {
	payloadReq, ok, err := that.readGamePayload(msg, conn)
	if !ok {
		return err
	}

	if err = that.gameUseCase.EndGame(ctx, payloadReq.GameID); err != nil {
		return that.sendUseCaseError(conn, msg.Action, err)
	}

	return that.sendMessage(conn, msg.Action, ResponsePayload{Ended: payloadReq.GameID})
}

// readGamePayload decodes the request and checks that it names a game. When it reports false
// the client has already been answered and the returned error is the write failure, if any.
func (that *Server) readGamePayload(msg *Message, conn *websocket.Conn) (RequestPayload, bool, error) {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		that.logger.Warn("bad payload", "action", msg.Action, "error", err)
		return payloadReq, false, that.sendErrorResponse(conn, msg.Action, "malformed payload")
	}

	if payloadReq.GameID == "" {
		return payloadReq, false, that.sendErrorResponse(conn, msg.Action, "game_id is required")
	}

	return payloadReq, true, nil
}

func (that *Server) sendGame(conn *websocket.Conn, action string, game *entity.Game, applied *bool) error {
	return that.sendMessage(conn, action, ResponsePayload{
		Game:    view.NewGame(game.ID, game.State),
		Applied: applied,
	})
}

func (that *Server) sendUseCaseError(conn *websocket.Conn, action string, err error) error {
	switch {
	case errors.Is(err, apperror.ErrInvalidArgument):
		return that.sendErrorResponse(conn, action, err.Error())
	case errors.Is(err, apperror.ErrGameNotFound):
		return that.sendErrorResponse(conn, action, "game not found")
	default:
		that.logger.Error("action failed", "action", action, "error", err)
		return that.sendErrorResponse(conn, action, "internal error")
	}
}
