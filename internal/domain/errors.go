package domain

import "errors"

// Rejection errors returned by game transitions. Every error except
// ErrTurnSkipped leaves the game record unchanged; ErrTurnSkipped signals that
// the caller's roll was rejected but the turn rotation (and possibly an
// elimination) has already been applied.
var (
	ErrInvalidPlayerCount = errors.New("invalid number of players, must be 2 or 4")
	ErrInvalidBetAmount   = errors.New("invalid bet amount, must be greater than 0")
	ErrGameAlreadyStarted = errors.New("game has already started")
	ErrGameFull           = errors.New("game is full")
	ErrAlreadyJoined      = errors.New("player already joined this game")
	ErrNotGameCreator     = errors.New("only the game creator can cancel the game")
	ErrGameNotActive      = errors.New("game is not active")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrTurnSkipped        = errors.New("turn skipped due to inactivity")
	ErrInvalidPiece       = errors.New("invalid piece index")
	ErrDiceNotRolled      = errors.New("dice has not been rolled yet")
	ErrNoValidMoves       = errors.New("no valid moves available with current dice roll")
	ErrCannotStart        = errors.New("cannot move piece from yard without rolling a six")
	ErrInvalidMove        = errors.New("invalid move")
	ErrGameNotCompleted   = errors.New("game is not completed yet")
	ErrNoWinner           = errors.New("no winner recorded")
	ErrNoSecondPlace      = errors.New("no second place recorded")
)
