package ports

import "context"

// WalletUpdate represents a single currency change for a user.
type WalletUpdate struct {
	UserID   string
	Amount   int64
	Metadata map[string]interface{}
}

// EconomyPort reads the wager currency ledger. Wallet mutations do not go
// through this port: they ride in GameStorePort.Commit so funds and game
// state change in one transaction, or in WelcomeBonusPort for the one-time
// onboarding grant.
type EconomyPort interface {
	// GetBalance retrieves the current coin balance for a user.
	GetBalance(ctx context.Context, userID string) (int64, error)
}
