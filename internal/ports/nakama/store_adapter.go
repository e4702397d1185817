package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"ludo/internal/domain"
	"ludo/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaGameStoreAdapter persists game snapshots in a system-owned storage
// collection and commits them together with wallet updates through
// MultiUpdate, so funds and positions can never diverge.
type NakamaGameStoreAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaGameStoreAdapter creates a new game store adapter.
func NewNakamaGameStoreAdapter(nk runtime.NakamaModule) *NakamaGameStoreAdapter {
	return &NakamaGameStoreAdapter{nk: nk}
}

// Load fetches a game snapshot and its storage version token.
func (a *NakamaGameStoreAdapter) Load(ctx context.Context, gameID string) (*domain.Game, string, error) {
	objects, err := a.nk.StorageRead(ctx, []*runtime.StorageRead{
		{Collection: gameCollection, Key: gameID},
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to read game %s: %w", gameID, err)
	}
	if len(objects) == 0 {
		return nil, "", fmt.Errorf("game %s not found", gameID)
	}

	var game domain.Game
	if err := json.Unmarshal([]byte(objects[0].Value), &game); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal game %s: %w", gameID, err)
	}
	return &game, objects[0].Version, nil
}

// Commit writes the game snapshot and applies the wallet updates atomically.
func (a *NakamaGameStoreAdapter) Commit(ctx context.Context, game *domain.Game, version string, updates []ports.WalletUpdate) (string, error) {
	value, err := json.Marshal(game)
	if err != nil {
		return "", fmt.Errorf("failed to marshal game %s: %w", game.ID, err)
	}

	storageWrites := []*runtime.StorageWrite{
		{
			Collection:      gameCollection,
			Key:             game.ID,
			Value:           string(value),
			Version:         version,
			PermissionRead:  runtime.STORAGE_PERMISSION_PUBLIC_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	}

	var walletUpdates []*runtime.WalletUpdate
	for _, update := range updates {
		if update.Amount == 0 {
			continue
		}
		walletUpdates = append(walletUpdates, &runtime.WalletUpdate{
			UserID:    update.UserID,
			Changeset: map[string]int64{walletCurrency: update.Amount},
			Metadata:  update.Metadata,
		})
	}

	acks, _, err := a.nk.MultiUpdate(ctx, nil, storageWrites, nil, walletUpdates, true)
	if err != nil {
		return "", fmt.Errorf("failed to commit game %s: %w", game.ID, err)
	}
	if len(acks) == 0 {
		return "", fmt.Errorf("commit of game %s returned no ack", game.ID)
	}
	return acks[0].Version, nil
}

var _ ports.GameStorePort = (*NakamaGameStoreAdapter)(nil)
