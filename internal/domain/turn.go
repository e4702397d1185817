package domain

// Turn rotation policy constants.
const (
	// TurnTimeoutSeconds is the staleness threshold beyond which a roll
	// attempt is treated as a timeout of the current turn holder.
	TurnTimeoutSeconds = 60

	// MaxMissedTurns is the number of consecutive timeouts that eliminates
	// a seat.
	MaxMissedTurns = 3

	// MaxConsecutiveSixes forfeits the turn when reached.
	MaxConsecutiveSixes = 3

	dieSides = 6
	dieSix   = 6
)

// RollResult describes the outcome of a RollDice call.
type RollResult struct {
	// Value is the die value now pending consumption by a move.
	// Zero when the call produced no pending roll (timeout or forfeiture).
	Value int

	// TimedOut is set when the call was converted into a timeout of the
	// current turn instead of a roll.
	TimedOut bool
	// EliminatedSeat is the seat removed by this timeout, or -1.
	EliminatedSeat int
	// EliminatedUser is the identity of the removed seat, if any.
	EliminatedUser string

	// Forfeited is set when a third consecutive six passed the turn.
	Forfeited bool

	// Completed is set when an elimination left a single active seat and the
	// game ended as a walkover.
	Completed bool

	// NextTurn is the seat index holding the turn after this call.
	NextTurn int
}

// DeriveDie reduces an entropy word to a die value in 1..6.
func DeriveDie(entropy uint64) int {
	return int(entropy%dieSides) + 1
}

// RollDice attempts a roll for player at the given time using the supplied
// entropy word.
//
// If the previous action is more than TurnTimeoutSeconds old the call is a
// timeout, not a roll: the current seat's missed-turn counter advances and may
// eliminate it. A walkover elimination completes the game and returns a nil
// error; otherwise the turn passes and the call fails with ErrTurnSkipped even
// though the rotation (and any elimination) has been committed.
//
// A third consecutive six forfeits the turn with no pending roll and no error.
func (g *Game) RollDice(player string, now int64, entropy uint64) (RollResult, error) {
	res := RollResult{EliminatedSeat: -1, NextTurn: g.Turn}

	if g.Status != StatusActive {
		return res, ErrGameNotActive
	}
	seat := &g.Seats[g.Turn]
	if seat.UserID != player || !seat.Active {
		return res, ErrNotYourTurn
	}

	if now-g.LastMoveTime > TurnTimeoutSeconds {
		res.TimedOut = true
		seat.MissedTurns++

		if seat.MissedTurns >= MaxMissedTurns {
			seat.Active = false
			res.EliminatedSeat = g.Turn
			res.EliminatedUser = seat.UserID

			if g.ActiveSeatCount() == 1 {
				for i := range g.Seats {
					if g.Seats[i].Active {
						g.Winner = g.Seats[i].UserID
						break
					}
				}
				g.Status = StatusCompleted
				res.Completed = true
				return res, nil
			}
		}

		g.ConsecutiveSixes = 0
		g.Turn = g.NextActiveSeat(g.Turn)
		res.NextTurn = g.Turn
		return res, ErrTurnSkipped
	}

	value := DeriveDie(entropy)

	if value == dieSix {
		g.ConsecutiveSixes++
		if g.ConsecutiveSixes >= MaxConsecutiveSixes {
			g.ConsecutiveSixes = 0
			g.Turn = g.NextActiveSeat(g.Turn)
			g.LastMoveTime = now
			res.Forfeited = true
			res.NextTurn = g.Turn
			return res, nil
		}
	} else {
		g.ConsecutiveSixes = 0
	}

	g.DiceRoll = value
	g.LastMoveTime = now
	res.Value = value
	return res, nil
}
