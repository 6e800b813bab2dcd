package game

import "errors"

// Failure taxonomy for state-mutating operations. All of these are reported
// as explicit errors to the caller, never propagated as panics.
var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrWrongPhase     = errors.New("operation not valid in current phase")
	ErrNotHost        = errors.New("only the host can do that")
	ErrInvalidTarget  = errors.New("invalid target")
	ErrPlayerDead     = errors.New("dead players cannot act")
	ErrNoNightAction  = errors.New("no night action for this role")
	ErrRoomFull       = errors.New("room is full")
)
