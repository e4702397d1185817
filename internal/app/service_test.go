package app

import (
	"context"
	"testing"
	"time"

	"ludo/internal/domain"
	"ludo/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRandom returns queued entropy words in order.
type scriptedRandom struct {
	values []uint64
	next   int
}

func (r *scriptedRandom) Entropy(context.Context) (uint64, error) {
	v := r.values[r.next%len(r.values)]
	r.next++
	return v, nil
}

// mockEconomy serves fixed balances.
type mockEconomy struct {
	balances map[string]int64
}

func (m *mockEconomy) GetBalance(_ context.Context, userID string) (int64, error) {
	return m.balances[userID], nil
}

// fixedClock returns a controllable clock function.
func fixedClock(unix *int64) func() time.Time {
	return func() time.Time { return time.Unix(*unix, 0) }
}

func newTestService(entropy []uint64, clockUnix *int64, balances map[string]int64) (*Service, *mockEconomy) {
	economy := &mockEconomy{balances: balances}
	if balances == nil {
		return NewService(nil, &scriptedRandom{values: entropy}, fixedClock(clockUnix), "platform"), economy
	}
	return NewService(economy, &scriptedRandom{values: entropy}, fixedClock(clockUnix), "platform"), economy
}

func startedGame(t *testing.T, s *Service) *domain.Game {
	t.Helper()
	ctx := context.Background()
	game, _, _, err := s.CreateGame(ctx, "g1", "alice", 2, 1000)
	require.NoError(t, err)
	_, _, err = s.JoinGame(ctx, game, "bob")
	require.NoError(t, err)
	require.Equal(t, domain.StatusActive, game.Status)
	return game
}

func TestCreateGameEscrowsStake(t *testing.T) {
	now := int64(1000)
	s, _ := newTestService([]uint64{0}, &now, nil)

	game, events, updates, err := s.CreateGame(context.Background(), "g1", "alice", 2, 1000)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWaitingForPlayers, game.Status)

	require.Len(t, updates, 1)
	assert.Equal(t, "alice", updates[0].UserID)
	assert.Equal(t, int64(-1000), updates[0].Amount)
	assert.Equal(t, "g1", updates[0].Metadata["game_id"])

	require.Len(t, events, 1)
	assert.Equal(t, EventPlayerJoined, events[0].Kind)
}

func TestCreateGameInsufficientFunds(t *testing.T) {
	now := int64(1000)
	s, _ := newTestService([]uint64{0}, &now, map[string]int64{"alice": 999})

	_, _, _, err := s.CreateGame(context.Background(), "g1", "alice", 2, 1000)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestJoinGameActivates(t *testing.T) {
	now := int64(1000)
	s, _ := newTestService([]uint64{0}, &now, nil)
	game, _, _, err := s.CreateGame(context.Background(), "g1", "alice", 2, 1000)
	require.NoError(t, err)

	events, updates, err := s.JoinGame(context.Background(), game, "bob")
	require.NoError(t, err)

	require.Len(t, updates, 1)
	assert.Equal(t, int64(-1000), updates[0].Amount)

	require.Len(t, events, 2)
	assert.Equal(t, EventPlayerJoined, events[0].Kind)
	assert.Equal(t, EventGameStarted, events[1].Kind)
	started := events[1].Payload.(GameStartedPayload)
	assert.Equal(t, int64(2000), started.TotalBet)
	assert.Equal(t, int64(1800), started.PrizePool)
}

func TestCancelGameRefundsDepositors(t *testing.T) {
	now := int64(1000)
	s, _ := newTestService([]uint64{0}, &now, nil)
	game, _, _, err := s.CreateGame(context.Background(), "g1", "alice", 4, 500)
	require.NoError(t, err)
	_, _, err = s.JoinGame(context.Background(), game, "bob")
	require.NoError(t, err)

	events, updates, err := s.CancelGame(context.Background(), game, "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, game.Status)

	require.Len(t, updates, 2)
	assert.Equal(t, ports.WalletUpdate{UserID: "alice", Amount: 500, Metadata: updates[0].Metadata}, updates[0])
	assert.Equal(t, "stake_refund", updates[0].Metadata["reason"])
	assert.Equal(t, "bob", updates[1].UserID)
	assert.Equal(t, int64(500), updates[1].Amount)

	require.Len(t, events, 1)
	assert.Equal(t, EventGameCancelled, events[0].Kind)
}

func TestRollDiceEmitsRoll(t *testing.T) {
	now := int64(1000)
	s, _ := newTestService([]uint64{2}, &now, nil) // derives a 3
	game := startedGame(t, s)

	events, _, err := s.RollDice(context.Background(), game, "alice")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventDiceRolled, events[0].Kind)
	assert.Equal(t, 3, events[0].Payload.(DiceRolledPayload).Value)
	assert.Equal(t, 3, game.DiceRoll)
}

func TestRollDiceTurnSkippedCarriesEvents(t *testing.T) {
	now := int64(1000)
	s, _ := newTestService([]uint64{2}, &now, nil)
	game := startedGame(t, s)

	now += domain.TurnTimeoutSeconds + 1
	events, _, err := s.RollDice(context.Background(), game, "alice")
	assert.ErrorIs(t, err, domain.ErrTurnSkipped)

	// The error still carries the committed rotation.
	require.Len(t, events, 1)
	assert.Equal(t, EventTurnSkipped, events[0].Kind)
	payload := events[0].Payload.(TurnSkippedPayload)
	assert.Equal(t, 0, payload.Seat)
	assert.Equal(t, 1, payload.MissedTurns)
	assert.Equal(t, 1, game.Turn)
}

func TestRollDiceWalkoverEmitsCompletion(t *testing.T) {
	now := int64(1000)
	s, _ := newTestService([]uint64{2}, &now, nil)
	game := startedGame(t, s)
	game.Seats[0].MissedTurns = 2

	now += domain.TurnTimeoutSeconds + 1
	events, _, err := s.RollDice(context.Background(), game, "alice")
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, EventPlayerEliminated, events[0].Kind)
	assert.Equal(t, EventGameCompleted, events[1].Kind)
	assert.Equal(t, "bob", events[1].Payload.(GameCompletedPayload).Winner)
}

func TestMovePieceEmitsCaptures(t *testing.T) {
	now := int64(1000)
	s, _ := newTestService([]uint64{2}, &now, nil)
	game := startedGame(t, s)
	game.Seats[0].Pieces[0] = 17
	game.Seats[1].Pieces[0] = 46 // seat 1 offset 26: absolute 20
	game.DiceRoll = 3

	events, _, err := s.MovePiece(context.Background(), game, "alice", 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, EventPieceMoved, events[0].Kind)
	assert.Equal(t, EventPieceCaptured, events[1].Kind)
	captured := events[1].Payload.(PieceCapturedPayload)
	assert.Equal(t, 1, captured.Seat)
	assert.Equal(t, 0, game.Seats[1].Pieces[0])
}

func TestDistributePrizesSettlesOnce(t *testing.T) {
	now := int64(1000)
	s, _ := newTestService([]uint64{2}, &now, nil)
	game := startedGame(t, s)
	game.Status = domain.StatusCompleted
	game.Winner = "bob"

	events, updates, err := s.DistributePrizes(context.Background(), game)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFinalized, game.Status)

	// Escrow nets out: only the platform and winner wallets are touched.
	require.Len(t, updates, 2)
	assert.Equal(t, "platform", updates[0].UserID)
	assert.Equal(t, int64(200), updates[0].Amount)
	assert.Equal(t, "bob", updates[1].UserID)
	assert.Equal(t, int64(1800), updates[1].Amount)

	require.Len(t, events, 1)
	assert.Equal(t, EventPrizesDistributed, events[0].Kind)

	_, _, err = s.DistributePrizes(context.Background(), game)
	assert.ErrorIs(t, err, domain.ErrGameNotCompleted)
}

func TestDistributeWalkoverPrizes(t *testing.T) {
	now := int64(1000)
	s, _ := newTestService([]uint64{2}, &now, nil)
	game, _, _, err := s.CreateGame(context.Background(), "g1", "alice", 4, 1000)
	require.NoError(t, err)
	for _, player := range []string{"bob", "carol", "dave"} {
		_, _, err = s.JoinGame(context.Background(), game, player)
		require.NoError(t, err)
	}

	// Everyone but the winner was eliminated; no second place exists.
	for i := 1; i < 4; i++ {
		game.Seats[i].Active = false
	}
	game.Status = domain.StatusCompleted
	game.Winner = "alice"

	_, _, err = s.DistributePrizes(context.Background(), game)
	assert.ErrorIs(t, err, domain.ErrNoSecondPlace)

	events, updates, err := s.DistributeWalkoverPrizes(context.Background(), game)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFinalized, game.Status)

	require.Len(t, updates, 2)
	assert.Equal(t, "platform", updates[0].UserID)
	assert.Equal(t, int64(400), updates[0].Amount)
	assert.Equal(t, "alice", updates[1].UserID)
	assert.Equal(t, int64(3600), updates[1].Amount)

	require.Len(t, events, 1)
	assert.Equal(t, EventPrizesDistributed, events[0].Kind)
}
