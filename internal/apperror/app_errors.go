package apperror

import "errors"

var (
	ErrSessionsFull    = errors.New("all sessions are full")
	ErrSessionFull     = errors.New("session is full")
	ErrSessionClosed   = errors.New("session is closed")
	ErrSessionNotFound = errors.New("session not found")
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrInvalidCell     = errors.New("invalid cell coordinates")
)
