package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettleRequiresCompletedGame(t *testing.T) {
	g := activeGame(t, 2, 1000)

	_, err := g.Settle("platform")
	assert.ErrorIs(t, err, ErrGameNotCompleted)
}

func TestSettleTwoPlayer(t *testing.T) {
	g := activeGame(t, 2, 1000)
	g.Status = StatusCompleted
	g.Winner = "bob"

	transfers, err := g.Settle("platform")
	require.NoError(t, err)
	assert.Equal(t, []Transfer{
		{From: "escrow:g1", To: "platform", Amount: 200},
		{From: "escrow:g1", To: "bob", Amount: 1800},
	}, transfers)
	assert.Equal(t, StatusFinalized, g.Status)
}

func TestSettleFourPlayer(t *testing.T) {
	g := activeGame(t, 4, 1000)
	g.Status = StatusCompleted
	g.Winner = "carol"
	g.SecondPlace = "alice"

	transfers, err := g.Settle("platform")
	require.NoError(t, err)
	// Total pot 4000: 10% fee, 65% to first, 25% to second.
	assert.Equal(t, []Transfer{
		{From: "escrow:g1", To: "platform", Amount: 400},
		{From: "escrow:g1", To: "carol", Amount: 2600},
		{From: "escrow:g1", To: "alice", Amount: 1000},
	}, transfers)
	assert.Equal(t, StatusFinalized, g.Status)
}

func TestSettleMissingPlacements(t *testing.T) {
	g := activeGame(t, 4, 1000)
	g.Status = StatusCompleted

	_, err := g.Settle("platform")
	assert.ErrorIs(t, err, ErrNoWinner)
	assert.Equal(t, StatusCompleted, g.Status)

	g.Winner = "carol"
	_, err = g.Settle("platform")
	assert.ErrorIs(t, err, ErrNoSecondPlace)
	assert.Equal(t, StatusCompleted, g.Status)
}

func TestSettleNotIdempotent(t *testing.T) {
	g := activeGame(t, 2, 1000)
	g.Status = StatusCompleted
	g.Winner = "alice"

	_, err := g.Settle("platform")
	require.NoError(t, err)

	_, err = g.Settle("platform")
	assert.ErrorIs(t, err, ErrGameNotCompleted)
	assert.Equal(t, StatusFinalized, g.Status)
}

func TestSettleWalkoverFourPlayer(t *testing.T) {
	g := activeGame(t, 4, 1000)
	for i := 1; i < 4; i++ {
		g.Seats[i].Active = false
	}
	g.Status = StatusCompleted
	g.Winner = "alice"

	// No second place exists: the last active player takes the pool.
	transfers, err := g.SettleWalkover("platform")
	require.NoError(t, err)
	assert.Equal(t, []Transfer{
		{From: "escrow:g1", To: "platform", Amount: 400},
		{From: "escrow:g1", To: "alice", Amount: 3600},
	}, transfers)
	assert.Equal(t, StatusFinalized, g.Status)

	_, err = g.SettleWalkover("platform")
	assert.ErrorIs(t, err, ErrGameNotCompleted)
}

func TestSettleWalkoverDelegatesWithSecondPlace(t *testing.T) {
	g := activeGame(t, 4, 1000)
	g.Status = StatusCompleted
	g.Winner = "carol"
	g.SecondPlace = "alice"

	transfers, err := g.SettleWalkover("platform")
	require.NoError(t, err)
	assert.Equal(t, []Transfer{
		{From: "escrow:g1", To: "platform", Amount: 400},
		{From: "escrow:g1", To: "carol", Amount: 2600},
		{From: "escrow:g1", To: "alice", Amount: 1000},
	}, transfers)
}

func TestSettleWalkoverRequiresWinner(t *testing.T) {
	g := activeGame(t, 4, 1000)
	g.Status = StatusCompleted

	_, err := g.SettleWalkover("platform")
	assert.ErrorIs(t, err, ErrNoWinner)
	assert.Equal(t, StatusCompleted, g.Status)
}
