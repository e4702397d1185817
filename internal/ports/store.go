package ports

import (
	"context"

	"ludo/internal/domain"
)

// GameStorePort persists game records across operations.
type GameStorePort interface {
	// Load fetches a game snapshot and its storage version token.
	Load(ctx context.Context, gameID string) (*domain.Game, string, error)

	// Commit writes the game snapshot and applies the wallet updates in a
	// single transaction, so funds and positions can never diverge.
	// version is the optimistic-concurrency token from Load, or "*" for a
	// record that must not exist yet. The new token is returned.
	Commit(ctx context.Context, game *domain.Game, version string, updates []WalletUpdate) (string, error)
}
