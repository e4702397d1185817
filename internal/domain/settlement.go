package domain

// Transfer is a single ledger instruction between custodial balances. The
// hosting boundary commits the instructions of one operation together with
// the state mutation, or not at all.
type Transfer struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

// Four-player payout schedule, in percent of the total pot. The winner and
// second place are paid from the pot; the platform fee covers the remainder
// (the residual from floor division stays in escrow).
const (
	firstPlacePercent  = 65
	secondPlacePercent = 25
)

// Settle computes the payout instructions for a completed game and marks it
// finalized. The fee is re-derived from the total pot. Calling Settle again
// fails with ErrGameNotCompleted since the status has already left Completed.
func (g *Game) Settle(platformAccount string) ([]Transfer, error) {
	if g.Status != StatusCompleted {
		return nil, ErrGameNotCompleted
	}

	escrow := g.EscrowAccount()
	fee := g.TotalBet / platformFeeDivisor
	transfers := []Transfer{{From: escrow, To: platformAccount, Amount: fee}}

	if g.MaxPlayers == 2 {
		if g.Winner == "" {
			return nil, ErrNoWinner
		}
		transfers = append(transfers, Transfer{From: escrow, To: g.Winner, Amount: g.TotalBet - fee})
	} else {
		if g.Winner == "" {
			return nil, ErrNoWinner
		}
		if g.SecondPlace == "" {
			return nil, ErrNoSecondPlace
		}
		transfers = append(transfers,
			Transfer{From: escrow, To: g.Winner, Amount: g.TotalBet * firstPlacePercent / 100},
			Transfer{From: escrow, To: g.SecondPlace, Amount: g.TotalBet * secondPlacePercent / 100},
		)
	}

	g.Status = StatusFinalized
	return transfers, nil
}

// SettleWalkover computes the payout for a four-player game that completed
// with every other seat eliminated, so no second place exists. The last
// active player takes the whole pool after the fee, like a two-player win.
// Settle remains the path for games with a full placement.
func (g *Game) SettleWalkover(platformAccount string) ([]Transfer, error) {
	if g.Status != StatusCompleted {
		return nil, ErrGameNotCompleted
	}
	if g.Winner == "" {
		return nil, ErrNoWinner
	}
	if g.SecondPlace != "" {
		return g.Settle(platformAccount)
	}

	escrow := g.EscrowAccount()
	fee := g.TotalBet / platformFeeDivisor
	transfers := []Transfer{
		{From: escrow, To: platformAccount, Amount: fee},
		{From: escrow, To: g.Winner, Amount: g.TotalBet - fee},
	}

	g.Status = StatusFinalized
	return transfers, nil
}
