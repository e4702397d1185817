package ports

import "context"

// WelcomeBonusPort grants the one-time starting stake for new accounts.
type WelcomeBonusPort interface {
	// GrantWelcomeBonusOnce attempts to grant the starting stake.
	// Returns granted=false when the stake was already granted.
	GrantWelcomeBonusOnce(ctx context.Context, userID string, amount int64, metadata map[string]interface{}) (bool, error)
}
