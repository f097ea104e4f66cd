package services

import "errors"

// Engine error taxonomy. Guard failures are returned as these sentinels
// (possibly wrapped with detail); handlers translate them to HTTP
// statuses. Nothing is retried inside the engine except the sweeper's
// own periodic re-scan.
var (
	ErrValidation          = errors.New("validation error")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidState        = errors.New("operation not allowed in current state")
	ErrFull                = errors.New("challenge is full")
	ErrAlreadyJoined       = errors.New("user already joined this challenge")
	ErrExpired             = errors.New("challenge has expired")
	ErrInvalidWinner       = errors.New("winner is not a participant of this challenge")
	ErrAlreadySettled      = errors.New("challenge already settled with a different outcome")
	ErrSchedulingConflict  = errors.New("scheduling conflict with another challenge")
	ErrUnauthorized        = errors.New("not authorized for this operation")
	ErrPendingWithdrawal   = errors.New("a withdrawal is already pending")
	ErrNotFound            = errors.New("record not found")
)
