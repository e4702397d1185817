package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testNow int64 = 1_700_000_000

// activeGame builds a game with all seats filled and status Active.
func activeGame(t *testing.T, maxPlayers int, bet int64) *Game {
	t.Helper()
	g, err := NewGame("g1", "alice", maxPlayers, bet, testNow)
	require.NoError(t, err)

	others := []string{"bob", "carol", "dave"}
	for i := 0; i < maxPlayers-1; i++ {
		_, err := g.Join(others[i], testNow)
		require.NoError(t, err)
	}
	require.Equal(t, StatusActive, g.Status)
	return g
}

func TestNewGameValidation(t *testing.T) {
	tests := []struct {
		name       string
		maxPlayers int
		bet        int64
		wantErr    error
	}{
		{"three players rejected", 3, 100, ErrInvalidPlayerCount},
		{"zero players rejected", 0, 100, ErrInvalidPlayerCount},
		{"zero bet rejected", 2, 0, ErrInvalidBetAmount},
		{"negative bet rejected", 2, -5, ErrInvalidBetAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGame("g1", "alice", tt.maxPlayers, tt.bet, testNow)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewGameStakes(t *testing.T) {
	g, err := NewGame("g1", "alice", 2, 1000, testNow)
	require.NoError(t, err)

	assert.Equal(t, int64(1000), g.TotalBet)
	assert.Equal(t, int64(100), g.PlatformFee)
	assert.Equal(t, int64(900), g.PrizePool)
	assert.Equal(t, StatusWaitingForPlayers, g.Status)
	assert.Equal(t, []string{"alice"}, g.Deposited)
	require.Len(t, g.Seats, 1)
	assert.Equal(t, "alice", g.Seats[0].UserID)
	assert.True(t, g.Seats[0].Active)
	assert.Equal(t, Transfer{From: "alice", To: "escrow:g1", Amount: 1000}, g.EscrowTransfer("alice"))
}

func TestJoinActivatesWhenFull(t *testing.T) {
	g, err := NewGame("g1", "alice", 2, 1000, testNow)
	require.NoError(t, err)

	started, err := g.Join("bob", testNow+5)
	require.NoError(t, err)
	assert.True(t, started)
	assert.Equal(t, StatusActive, g.Status)
	assert.Equal(t, testNow+5, g.LastMoveTime)
	assert.Equal(t, int64(2000), g.TotalBet)
	assert.Equal(t, int64(200), g.PlatformFee)
	assert.Equal(t, int64(1800), g.PrizePool)
}

func TestJoinRejections(t *testing.T) {
	g, err := NewGame("g1", "alice", 4, 250, testNow)
	require.NoError(t, err)

	_, err = g.Join("alice", testNow)
	assert.ErrorIs(t, err, ErrAlreadyJoined)

	for _, p := range []string{"bob", "carol", "dave"} {
		_, err := g.Join(p, testNow)
		require.NoError(t, err)
	}

	_, err = g.Join("erin", testNow)
	assert.ErrorIs(t, err, ErrGameAlreadyStarted)

	// A waiting game with exhausted seats reports GameFull before activation
	// is even possible; reproduce by keeping status waiting artificially.
	g.Status = StatusWaitingForPlayers
	_, err = g.Join("erin", testNow)
	assert.ErrorIs(t, err, ErrGameFull)
}

func TestMonetaryInvariantAcrossJoins(t *testing.T) {
	g, err := NewGame("g1", "alice", 4, 333, testNow)
	require.NoError(t, err)
	assert.Equal(t, g.TotalBet, g.PrizePool+g.PlatformFee)

	for _, p := range []string{"bob", "carol", "dave"} {
		_, err := g.Join(p, testNow)
		require.NoError(t, err)
		assert.Equal(t, g.TotalBet, g.PrizePool+g.PlatformFee)
	}
}

func TestCancelRefundsEveryDepositor(t *testing.T) {
	g, err := NewGame("g1", "alice", 4, 500, testNow)
	require.NoError(t, err)
	_, err = g.Join("bob", testNow)
	require.NoError(t, err)
	_, err = g.Join("carol", testNow)
	require.NoError(t, err)

	refunds, err := g.Cancel("alice")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, g.Status)
	assert.Equal(t, []Transfer{
		{From: "escrow:g1", To: "alice", Amount: 500},
		{From: "escrow:g1", To: "bob", Amount: 500},
		{From: "escrow:g1", To: "carol", Amount: 500},
	}, refunds)
}

func TestCancelRejections(t *testing.T) {
	g, err := NewGame("g1", "alice", 2, 500, testNow)
	require.NoError(t, err)

	_, err = g.Cancel("bob")
	assert.ErrorIs(t, err, ErrNotGameCreator)

	_, err = g.Join("bob", testNow)
	require.NoError(t, err)
	_, err = g.Cancel("alice")
	assert.ErrorIs(t, err, ErrGameAlreadyStarted)
}

func TestNextActiveSeatSkipsEliminated(t *testing.T) {
	g := activeGame(t, 4, 100)
	g.Seats[1].Active = false
	g.Seats[2].Active = false

	assert.Equal(t, 3, g.NextActiveSeat(0))
	assert.Equal(t, 0, g.NextActiveSeat(3))
	assert.Equal(t, 3, g.NextActiveSeat(1))
}
