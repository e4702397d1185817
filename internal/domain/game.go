package domain

// Status is the lifecycle stage of a game record.
type Status string

const (
	// StatusWaitingForPlayers is the pre-game state where seats fill up.
	StatusWaitingForPlayers Status = "waiting_for_players"
	// StatusActive is the playing state; turns rotate and pieces move.
	StatusActive Status = "active"
	// StatusCompleted means a terminal rule condition was met and the game
	// awaits settlement.
	StatusCompleted Status = "completed"
	// StatusFinalized means prizes have been disbursed. Absorbing.
	StatusFinalized Status = "finalized"
	// StatusCancelled means the game was cancelled before starting and all
	// stakes refunded. Absorbing.
	StatusCancelled Status = "cancelled"
)

// platformFeeDivisor implements the 10% platform fee with floor division.
const platformFeeDivisor = 10

// Seat is one player slot. Seat order is fixed at join time and defines the
// turn rotation order; eliminated seats keep their index with Active=false so
// positions and counters never shift.
type Seat struct {
	UserID      string             `json:"user_id"`
	Active      bool               `json:"active"`
	MissedTurns int                `json:"missed_turns"`
	Pieces      [PiecesPerSeat]int `json:"pieces"`
	HomeCount   int                `json:"home_count"`
}

// Game is the aggregate record for a single Ludo game, including the escrowed
// stakes. It is mutated only by the transition methods in this package; the
// hosting boundary serializes operations and persists the record.
type Game struct {
	ID      string `json:"id"`
	Creator string `json:"creator"`

	MaxPlayers int   `json:"max_players"`
	BetAmount  int64 `json:"bet_amount"`

	// Monetary invariant: PrizePool + PlatformFee == TotalBet at all times.
	TotalBet    int64 `json:"total_bet"`
	PlatformFee int64 `json:"platform_fee"`
	PrizePool   int64 `json:"prize_pool"`

	Board Board  `json:"board"`
	Seats []Seat `json:"seats"`

	// Deposited records, in join order, every identity whose stake was
	// escrowed. Used for refunds; independent of elimination.
	Deposited []string `json:"deposited"`

	Turn         int    `json:"turn"`
	LastMoveTime int64  `json:"last_move_time"`
	Winner       string `json:"winner,omitempty"`
	SecondPlace  string `json:"second_place,omitempty"`
	Status       Status `json:"status"`

	// DiceRoll is the pending die value awaiting consumption by a move.
	// Zero means no roll is pending.
	DiceRoll         int `json:"dice_roll,omitempty"`
	ConsecutiveSixes int `json:"consecutive_sixes"`
}

// NewGame creates a game record in the waiting state with the creator seated
// and their stake counted. The caller is responsible for escrowing the
// creator's bet (see EscrowTransfer).
func NewGame(id, creator string, maxPlayers int, betAmount int64, now int64) (*Game, error) {
	if maxPlayers != 2 && maxPlayers != 4 {
		return nil, ErrInvalidPlayerCount
	}
	if betAmount <= 0 {
		return nil, ErrInvalidBetAmount
	}

	g := &Game{
		ID:           id,
		Creator:      creator,
		MaxPlayers:   maxPlayers,
		BetAmount:    betAmount,
		Board:        NewBoard(maxPlayers),
		Seats:        make([]Seat, 0, maxPlayers),
		Deposited:    make([]string, 0, maxPlayers),
		LastMoveTime: now,
		Status:       StatusWaitingForPlayers,
	}
	g.Seats = append(g.Seats, Seat{UserID: creator, Active: true})
	g.Deposited = append(g.Deposited, creator)
	g.TotalBet = betAmount
	g.recomputeStakes()

	return g, nil
}

// Join seats a new player and counts their stake. Returns started=true when
// the final seat filled and the game moved to Active. The caller escrows the
// player's bet alongside this transition.
func (g *Game) Join(player string, now int64) (started bool, err error) {
	if g.Status != StatusWaitingForPlayers {
		return false, ErrGameAlreadyStarted
	}
	if len(g.Seats) >= g.MaxPlayers {
		return false, ErrGameFull
	}
	if _, ok := g.SeatOf(player); ok {
		return false, ErrAlreadyJoined
	}

	g.Seats = append(g.Seats, Seat{UserID: player, Active: true})
	g.Deposited = append(g.Deposited, player)
	g.TotalBet += g.BetAmount
	g.recomputeStakes()

	if len(g.Seats) == g.MaxPlayers {
		g.Status = StatusActive
		g.LastMoveTime = now
		return true, nil
	}
	return false, nil
}

// Cancel aborts a game that has not started and returns the refund
// instructions, one per deposited stake. The hosting boundary must commit the
// status change and all refunds atomically.
func (g *Game) Cancel(requester string) ([]Transfer, error) {
	if g.Status != StatusWaitingForPlayers {
		return nil, ErrGameAlreadyStarted
	}
	if requester != g.Creator {
		return nil, ErrNotGameCreator
	}

	refunds := make([]Transfer, 0, len(g.Deposited))
	for _, player := range g.Deposited {
		refunds = append(refunds, Transfer{From: g.EscrowAccount(), To: player, Amount: g.BetAmount})
	}
	g.Status = StatusCancelled
	return refunds, nil
}

// SeatOf returns the seat index occupied by the given identity.
func (g *Game) SeatOf(userID string) (int, bool) {
	for i := range g.Seats {
		if g.Seats[i].UserID == userID {
			return i, true
		}
	}
	return 0, false
}

// ActiveSeatCount returns the number of seats not yet eliminated.
func (g *Game) ActiveSeatCount() int {
	n := 0
	for i := range g.Seats {
		if g.Seats[i].Active {
			n++
		}
	}
	return n
}

// NextActiveSeat returns the next seat index after from, cyclically, skipping
// eliminated seats. At least one active seat must remain.
func (g *Game) NextActiveSeat(from int) int {
	next := (from + 1) % len(g.Seats)
	for !g.Seats[next].Active {
		next = (next + 1) % len(g.Seats)
	}
	return next
}

// EscrowAccount is the identity of the game's custodial balance. Transfers
// from or to this account are netted against player wallets by the ledger
// boundary.
func (g *Game) EscrowAccount() string {
	return "escrow:" + g.ID
}

// EscrowTransfer is the instruction moving a player's stake into escrow.
func (g *Game) EscrowTransfer(player string) Transfer {
	return Transfer{From: player, To: g.EscrowAccount(), Amount: g.BetAmount}
}

// recomputeStakes re-derives the fee and pool from the current total.
func (g *Game) recomputeStakes() {
	g.PlatformFee = g.TotalBet / platformFeeDivisor
	g.PrizePool = g.TotalBet - g.PlatformFee
}
