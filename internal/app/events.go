package app

import "ludo/internal/domain"

// EventKind identifies emitted app events for dispatch to clients.
type EventKind string

const (
	EventPlayerJoined      EventKind = "player_joined"
	EventGameStarted       EventKind = "game_started"
	EventDiceRolled        EventKind = "dice_rolled"
	EventTurnForfeited     EventKind = "turn_forfeited"
	EventTurnSkipped       EventKind = "turn_skipped"
	EventPlayerEliminated  EventKind = "player_eliminated"
	EventPieceMoved        EventKind = "piece_moved"
	EventPieceCaptured     EventKind = "piece_captured"
	EventGameCompleted     EventKind = "game_completed"
	EventGameCancelled     EventKind = "game_cancelled"
	EventPrizesDistributed EventKind = "prizes_distributed"
)

// Event is an app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type PlayerJoinedPayload struct {
	UserID string `json:"user_id"`
	Seat   int    `json:"seat"`
}

type GameStartedPayload struct {
	FirstTurnSeat int   `json:"first_turn_seat"`
	TotalBet      int64 `json:"total_bet"`
	PrizePool     int64 `json:"prize_pool"`
}

type DiceRolledPayload struct {
	Seat  int `json:"seat"`
	Value int `json:"value"`
}

type TurnForfeitedPayload struct {
	Seat         int `json:"seat"`
	NextTurnSeat int `json:"next_turn_seat"`
}

type TurnSkippedPayload struct {
	Seat         int `json:"seat"`
	MissedTurns  int `json:"missed_turns"`
	NextTurnSeat int `json:"next_turn_seat"`
}

type PlayerEliminatedPayload struct {
	Seat   int    `json:"seat"`
	UserID string `json:"user_id"`
}

type PieceMovedPayload struct {
	Seat         int  `json:"seat"`
	Piece        int  `json:"piece"`
	From         int  `json:"from"`
	To           int  `json:"to"`
	ExtraTurn    bool `json:"extra_turn"`
	NextTurnSeat int  `json:"next_turn_seat"`
}

type PieceCapturedPayload struct {
	Seat   int `json:"seat"`
	Piece  int `json:"piece"`
	Square int `json:"square"`
	BySeat int `json:"by_seat"`
}

type GameCompletedPayload struct {
	Winner      string `json:"winner"`
	SecondPlace string `json:"second_place,omitempty"`
}

type GameCancelledPayload struct {
	Refunds []domain.Transfer `json:"refunds"`
}

type PrizesDistributedPayload struct {
	Transfers []domain.Transfer `json:"transfers"`
}
