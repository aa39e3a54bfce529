package game

import "errors"

var (
	// ErrNotYourTurn is returned when a seat submits an action out of turn.
	// Out-of-turn actions are rejected, never queued.
	ErrNotYourTurn = errors.New("not your turn")

	// ErrInvalidAction is returned for an illegal action kind or amount in
	// the current state. The submitting caller may retry with a corrected
	// action; shared state is never mutated.
	ErrInvalidAction = errors.New("invalid action")

	// ErrInsufficientPlayers is returned when a hand cannot start with
	// fewer than two eligible seats.
	ErrInsufficientPlayers = errors.New("not enough players")

	// ErrHandInProgress is returned when an operation requires no active
	// hand at the table.
	ErrHandInProgress = errors.New("hand in progress")

	// ErrTableFull is returned when joining a table with no free seats.
	ErrTableFull = errors.New("table full")
)
