package apperror

import "errors"

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrGameNotFound    = errors.New("game not found")
)
