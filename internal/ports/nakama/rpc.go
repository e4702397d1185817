package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"ludo/internal/config"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
)

// CreateGameRequest is the client payload for the create_game RPC.
type CreateGameRequest struct {
	MaxPlayers int    `json:"max_players"`
	Tier       string `json:"tier"`
}

// CreateGameResponse is returned to the creator with the new match handle.
type CreateGameResponse struct {
	MatchID   string `json:"match_id"`
	GameID    string `json:"game_id"`
	BetAmount int64  `json:"bet_amount"`
}

// FindMatchResponse is the payload returned to clients looking for a seat.
type FindMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcCreateGame, rpcCreateGame); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcFindMatch, rpcFindMatch)
}

func rpcCreateGame(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if !ok || userID == "" {
		return "", runtime.NewError("user id missing from context", 16) // UNAUTHENTICATED
	}

	request := CreateGameRequest{MaxPlayers: 2}
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &request); err != nil {
			return "", runtime.NewError("invalid create_game payload", 3) // INVALID_ARGUMENT
		}
	}
	if request.MaxPlayers != 2 && request.MaxPlayers != 4 {
		return "", runtime.NewError("max_players must be 2 or 4", 3)
	}

	betAmount := config.GetBaseBet(request.Tier)
	gameID := uuid.NewString()

	params := map[string]interface{}{
		"game_id":     gameID,
		"creator_id":  userID,
		"max_players": request.MaxPlayers,
		"bet_amount":  betAmount,
	}
	matchID, err := nk.MatchCreate(ctx, MatchNameLudo, params)
	if err != nil {
		logger.Error("rpcCreateGame [User:%s]: Failed to create match: %v", userID, err)
		return "", err
	}

	logger.Info("rpcCreateGame [User:%s]: Created match %s (game %s, bet %d)", userID, matchID, gameID, betAmount)

	resp := CreateGameResponse{MatchID: matchID, GameID: gameID, BetAmount: betAmount}
	b, _ := json.Marshal(resp)
	return string(b), nil
}

// rpcFindMatch searches for a match with open seats and returns its ID,
// creating a default two-player game when none is open.
func rpcFindMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	limit := 1
	authoritative := true
	labelQuery := fmt.Sprintf("+label.%s:>=1", MatchLabelKey_OpenSeats)
	minSize := 0
	maxSize := 4

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, labelQuery)
	if err != nil {
		logger.Error("rpcFindMatch [User:%s]: Failed to list matches: %v", userID, err)
		return "", err
	}

	if len(matches) > 0 {
		resp := FindMatchResponse{MatchID: matches[0].MatchId, IsNew: false}
		b, _ := json.Marshal(resp)
		return string(b), nil
	}

	params := map[string]interface{}{
		"game_id":     uuid.NewString(),
		"creator_id":  userID,
		"max_players": 2,
		"bet_amount":  config.GetBaseBet(""),
	}
	matchID, err := nk.MatchCreate(ctx, MatchNameLudo, params)
	if err != nil {
		logger.Error("rpcFindMatch [User:%s]: Failed to create match: %v", userID, err)
		return "", err
	}

	resp := FindMatchResponse{MatchID: matchID, IsNew: true}
	b, _ := json.Marshal(resp)
	return string(b), nil
}
