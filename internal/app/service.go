package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"ludo/internal/domain"
	"ludo/internal/ports"
)

// ErrInsufficientFunds rejects a stake the player's wallet cannot cover.
var ErrInsufficientFunds = errors.New("insufficient balance to cover bet")

// Service contains the game use-cases operating on domain state. Each method
// validates first, then mutates the record and returns the events plus the
// wallet updates the hosting boundary must commit together with the snapshot.
type Service struct {
	economy  ports.EconomyPort
	random   ports.RandomPort
	now      func() time.Time
	platform string
}

// fallbackRandom is the time-seeded entropy source used when none is injected.
type fallbackRandom struct {
	rng *rand.Rand
}

func (f *fallbackRandom) Entropy(context.Context) (uint64, error) {
	return f.rng.Uint64(), nil
}

// NewService constructs a Service.
// economy may be nil to skip balance prechecks (tests); random and clock may
// be nil to use time-seeded defaults. platform receives the fee on settlement.
func NewService(economy ports.EconomyPort, random ports.RandomPort, clock func() time.Time, platform string) *Service {
	if random == nil {
		random = &fallbackRandom{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
	}
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		economy:  economy,
		random:   random,
		now:      clock,
		platform: platform,
	}
}

// CreateGame initializes a game record with the creator seated and their
// stake escrowed.
func (s *Service) CreateGame(ctx context.Context, id, creator string, maxPlayers int, betAmount int64) (*domain.Game, []Event, []ports.WalletUpdate, error) {
	if err := s.checkBalance(ctx, creator, betAmount); err != nil {
		return nil, nil, nil, err
	}

	game, err := domain.NewGame(id, creator, maxPlayers, betAmount, s.now().Unix())
	if err != nil {
		return nil, nil, nil, err
	}

	updates := s.walletUpdates(game, []domain.Transfer{game.EscrowTransfer(creator)}, "stake_escrow")
	events := []Event{{
		Kind:    EventPlayerJoined,
		Payload: PlayerJoinedPayload{UserID: creator, Seat: 0},
	}}
	return game, events, updates, nil
}

// JoinGame seats a player and escrows their stake. When the final seat fills
// the game activates and a game_started event is emitted.
func (s *Service) JoinGame(ctx context.Context, game *domain.Game, player string) ([]Event, []ports.WalletUpdate, error) {
	if err := s.checkBalance(ctx, player, game.BetAmount); err != nil {
		return nil, nil, err
	}

	started, err := game.Join(player, s.now().Unix())
	if err != nil {
		return nil, nil, err
	}

	seat, _ := game.SeatOf(player)
	updates := s.walletUpdates(game, []domain.Transfer{game.EscrowTransfer(player)}, "stake_escrow")
	events := []Event{{
		Kind:    EventPlayerJoined,
		Payload: PlayerJoinedPayload{UserID: player, Seat: seat},
	}}
	if started {
		events = append(events, Event{
			Kind: EventGameStarted,
			Payload: GameStartedPayload{
				FirstTurnSeat: game.Turn,
				TotalBet:      game.TotalBet,
				PrizePool:     game.PrizePool,
			},
		})
	}
	return events, updates, nil
}

// CancelGame aborts a waiting game and refunds every deposited stake.
func (s *Service) CancelGame(ctx context.Context, game *domain.Game, requester string) ([]Event, []ports.WalletUpdate, error) {
	refunds, err := game.Cancel(requester)
	if err != nil {
		return nil, nil, err
	}

	updates := s.walletUpdates(game, refunds, "stake_refund")
	events := []Event{{
		Kind:    EventGameCancelled,
		Payload: GameCancelledPayload{Refunds: refunds},
	}}
	return events, updates, nil
}

// RollDice attempts a roll for the player. On an inactivity timeout the call
// returns domain.ErrTurnSkipped together with the events describing the
// rotation that was nevertheless committed; callers must apply both.
func (s *Service) RollDice(ctx context.Context, game *domain.Game, player string) ([]Event, []ports.WalletUpdate, error) {
	entropy, err := s.random.Entropy(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("entropy source: %w", err)
	}

	seat := game.Turn
	res, err := game.RollDice(player, s.now().Unix(), entropy)
	if err != nil && !errors.Is(err, domain.ErrTurnSkipped) {
		return nil, nil, err
	}

	var events []Event
	switch {
	case res.TimedOut:
		if res.EliminatedSeat >= 0 {
			events = append(events, Event{
				Kind:    EventPlayerEliminated,
				Payload: PlayerEliminatedPayload{Seat: res.EliminatedSeat, UserID: res.EliminatedUser},
			})
		}
		if res.Completed {
			events = append(events, Event{
				Kind:    EventGameCompleted,
				Payload: GameCompletedPayload{Winner: game.Winner, SecondPlace: game.SecondPlace},
			})
		} else {
			events = append(events, Event{
				Kind: EventTurnSkipped,
				Payload: TurnSkippedPayload{
					Seat:         seat,
					MissedTurns:  game.Seats[seat].MissedTurns,
					NextTurnSeat: res.NextTurn,
				},
			})
		}
	case res.Forfeited:
		events = append(events, Event{
			Kind:    EventTurnForfeited,
			Payload: TurnForfeitedPayload{Seat: seat, NextTurnSeat: res.NextTurn},
		})
	default:
		events = append(events, Event{
			Kind:    EventDiceRolled,
			Payload: DiceRolledPayload{Seat: seat, Value: res.Value},
		})
	}
	return events, nil, err
}

// MovePiece consumes the pending roll by moving a piece.
func (s *Service) MovePiece(ctx context.Context, game *domain.Game, player string, piece int) ([]Event, []ports.WalletUpdate, error) {
	res, err := game.MovePiece(player, piece, s.now().Unix())
	if err != nil {
		return nil, nil, err
	}

	events := []Event{{
		Kind: EventPieceMoved,
		Payload: PieceMovedPayload{
			Seat:         res.Seat,
			Piece:        res.Piece,
			From:         res.From,
			To:           res.To,
			ExtraTurn:    res.ExtraTurn,
			NextTurnSeat: res.NextTurn,
		},
	}}
	for _, c := range res.Captures {
		events = append(events, Event{
			Kind:    EventPieceCaptured,
			Payload: PieceCapturedPayload{Seat: c.Seat, Piece: c.Piece, Square: c.Square, BySeat: res.Seat},
		})
	}
	if res.Completed {
		events = append(events, Event{
			Kind:    EventGameCompleted,
			Payload: GameCompletedPayload{Winner: game.Winner, SecondPlace: game.SecondPlace},
		})
	}
	return events, nil, nil
}

// DistributePrizes settles a completed game: platform fee first, then the
// winner share (and second place in four-player mode). The game record moves
// to its final absorbing status.
func (s *Service) DistributePrizes(ctx context.Context, game *domain.Game) ([]Event, []ports.WalletUpdate, error) {
	transfers, err := game.Settle(s.platform)
	if err != nil {
		return nil, nil, err
	}

	return s.settlementOutput(game, transfers), s.walletUpdates(game, transfers, "prize_settlement"), nil
}

// DistributeWalkoverPrizes settles a four-player game whose completion left
// no second place because every other seat was eliminated. The remaining
// player takes the pool after the fee.
func (s *Service) DistributeWalkoverPrizes(ctx context.Context, game *domain.Game) ([]Event, []ports.WalletUpdate, error) {
	transfers, err := game.SettleWalkover(s.platform)
	if err != nil {
		return nil, nil, err
	}

	return s.settlementOutput(game, transfers), s.walletUpdates(game, transfers, "prize_settlement"), nil
}

func (s *Service) settlementOutput(game *domain.Game, transfers []domain.Transfer) []Event {
	return []Event{{
		Kind:    EventPrizesDistributed,
		Payload: PrizesDistributedPayload{Transfers: transfers},
	}}
}

// checkBalance verifies the player's wallet covers the stake before any
// escrow instruction is issued.
func (s *Service) checkBalance(ctx context.Context, player string, amount int64) error {
	if s.economy == nil {
		return nil
	}
	balance, err := s.economy.GetBalance(ctx, player)
	if err != nil {
		return fmt.Errorf("balance lookup for %s: %w", player, err)
	}
	if balance < amount {
		return ErrInsufficientFunds
	}
	return nil
}

// walletUpdates converts ledger transfers into per-user wallet deltas.
// The game's custodial account nets out: a transfer into escrow debits the
// payer, a transfer out of escrow credits the payee.
func (s *Service) walletUpdates(game *domain.Game, transfers []domain.Transfer, reason string) []ports.WalletUpdate {
	escrow := game.EscrowAccount()
	metadata := func() map[string]interface{} {
		return map[string]interface{}{"game_id": game.ID, "reason": reason}
	}

	var updates []ports.WalletUpdate
	for _, t := range transfers {
		if t.From != escrow {
			updates = append(updates, ports.WalletUpdate{UserID: t.From, Amount: -t.Amount, Metadata: metadata()})
		}
		if t.To != escrow {
			updates = append(updates, ports.WalletUpdate{UserID: t.To, Amount: t.Amount, Metadata: metadata()})
		}
	}
	return updates
}
