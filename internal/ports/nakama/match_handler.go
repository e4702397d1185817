package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"ludo/internal/app"
	"ludo/internal/bot"
	"ludo/internal/config"
	"ludo/internal/domain"
	"ludo/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// MatchLabel is the JSON label the match advertises for listing queries.
type MatchLabel struct {
	Open  int    `json:"open"`
	Game  string `json:"game"`
	Bet   int64  `json:"bet"`
	Phase string `json:"phase"`
}

// MovePieceRequest is the client payload for the OpMovePiece message.
type MovePieceRequest struct {
	Piece int `json:"piece"`
}

// ErrorPayload is sent privately to a client whose action was rejected.
type ErrorPayload struct {
	OpCode  int64  `json:"op_code"`
	Message string `json:"message"`
}

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Game    *domain.Game `json:"-"`
	Version string       `json:"-"` // storage OCC token for the game snapshot

	Presences map[string]runtime.Presence `json:"-"`
	Tick      int64                       `json:"tick"`

	App     *app.Service        `json:"-"`
	Store   ports.GameStorePort `json:"-"`
	Entropy *TickEntropy        `json:"-"`

	// BotsEnabled lets AI agents act for absent turn holders.
	BotsEnabled bool                  `json:"bots_enabled"`
	BotActDelay int64                 `json:"bot_act_delay"`
	BotActAt    int64                 `json:"-"` // tick when the agent acts
	Agents      map[string]*bot.Agent `json:"-"` // seat holder userID -> agent

	// AutoSkipAt throttles server-driven timeout skips; without it a stale
	// LastMoveTime would cascade through every seat in one loop pass.
	AutoSkipAt int64 `json:"-"`

	// Now is the clock shared with the app service so timeout behavior is
	// testable the same way the roll path is.
	Now func() time.Time `json:"-"`

	// PendingRefunds holds wallet updates whose commit failed during an
	// abandoned-game cancellation; the loop retries them until they land.
	PendingRefunds []ports.WalletUpdate `json:"-"`
}

func (ms *MatchState) openSeats() int {
	if ms.Game == nil || ms.Game.Status != domain.StatusWaitingForPlayers {
		return 0
	}
	return ms.Game.MaxPlayers - len(ms.Game.Seats)
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// eventOpCodes maps app events onto wire opcodes.
var eventOpCodes = map[app.EventKind]int64{
	app.EventPlayerJoined:      OpPlayerJoined,
	app.EventGameStarted:       OpGameStarted,
	app.EventDiceRolled:        OpDiceRolled,
	app.EventTurnForfeited:     OpTurnForfeited,
	app.EventTurnSkipped:       OpTurnSkipped,
	app.EventPlayerEliminated:  OpPlayerEliminated,
	app.EventPieceMoved:        OpPieceMoved,
	app.EventPieceCaptured:     OpPieceCaptured,
	app.EventGameCompleted:     OpGameCompleted,
	app.EventGameCancelled:     OpGameCancelled,
	app.EventPrizesDistributed: OpPrizesDistributed,
}

// MatchInit creates the game record from the RPC parameters and escrows the
// creator's stake before anyone connects.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if err := config.LoadGameConfig("data/game_config.json", env); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}

	gameID := paramString(params, "game_id")
	creatorID := paramString(params, "creator_id")
	maxPlayers := int(paramInt64(params, "max_players"))
	betAmount := paramInt64(params, "bet_amount")
	if gameID == "" || creatorID == "" {
		logger.Error("MatchInit: Missing game_id or creator_id in params")
		return nil, 0, ""
	}

	platformUserID := ""
	botsEnabled := false
	botActDelay := int64(2)
	if cfg := config.GetGameConfig(); cfg != nil {
		platformUserID = cfg.PlatformUserID
		botsEnabled = cfg.BotsEnabled
		if cfg.BotActDelaySeconds > 0 {
			botActDelay = int64(cfg.BotActDelaySeconds)
		}
	}

	entropy := &TickEntropy{}
	clock := time.Now
	state := &MatchState{
		Presences:   make(map[string]runtime.Presence),
		App:         app.NewService(NewNakamaEconomyAdapter(nk), entropy, clock, platformUserID),
		Store:       NewNakamaGameStoreAdapter(nk),
		Entropy:     entropy,
		BotsEnabled: botsEnabled,
		BotActDelay: botActDelay,
		Agents:      make(map[string]*bot.Agent),
		Now:         clock,
	}

	game, _, updates, err := state.App.CreateGame(ctx, gameID, creatorID, maxPlayers, betAmount)
	if err != nil {
		logger.Error("MatchInit: Failed to create game %s: %v", gameID, err)
		return nil, 0, ""
	}
	state.Game = game

	version, err := state.Store.Commit(ctx, game, "*", updates)
	if err != nil {
		logger.Error("MatchInit: Failed to commit game %s: %v", gameID, err)
		return nil, 0, ""
	}
	state.Version = version

	labelBytes, err := json.Marshal(MatchLabel{
		Open:  state.openSeats(),
		Game:  "ludo",
		Bet:   betAmount,
		Phase: string(game.Status),
	})
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	logger.Info("MatchInit: Game %s created by %s (%d players, bet %d)", gameID, creatorID, maxPlayers, betAmount)

	tickRate := 1
	return state, tickRate, string(labelBytes)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Seated players may always reconnect.
	if _, seated := matchState.Game.SeatOf(presence.GetUserId()); seated {
		return matchState, true, ""
	}
	if matchState.openSeats() <= 0 {
		return matchState, false, "Match full"
	}
	return matchState, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p

		if _, seated := matchState.Game.SeatOf(p.GetUserId()); seated {
			continue
		}

		events, updates, err := matchState.App.JoinGame(ctx, matchState.Game, p.GetUserId())
		if err != nil {
			logger.Warn("MatchJoin: User %s could not join game %s: %v", p.GetUserId(), matchState.Game.ID, err)
			mh.sendError(dispatcher, logger, p, OpPlayerJoined, err)
			continue
		}
		if !mh.commit(ctx, matchState, updates, logger) {
			continue
		}
		mh.broadcastEvents(matchState, dispatcher, logger, events)
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

// MatchLeave removes presences. Seated players stay in the game record; their
// stakes are committed and their turns run out the inactivity clock (or an
// agent plays for them). A waiting game abandoned by everyone is cancelled
// with refunds.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())
	}

	if len(matchState.Presences) == 0 {
		if matchState.Game.Status == domain.StatusWaitingForPlayers {
			events, updates, err := matchState.App.CancelGame(ctx, matchState.Game, matchState.Game.Creator)
			if err != nil {
				logger.Error("MatchLeave: Failed to cancel abandoned game %s: %v", matchState.Game.ID, err)
				return nil
			}
			if !mh.commit(ctx, matchState, updates, logger) {
				// The refunds must land before the match may die; keep the
				// state alive and let the loop retry the commit.
				matchState.PendingRefunds = updates
				return matchState
			}
			mh.broadcastEvents(matchState, dispatcher, logger, events)
			logger.Info("MatchLeave: Cancelled abandoned game %s with refunds.", matchState.Game.ID)
			return nil
		}
		if (matchState.Game.Status == domain.StatusFinalized || matchState.Game.Status == domain.StatusCancelled) &&
			len(matchState.PendingRefunds) == 0 {
			return nil
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick
	matchState.Entropy.Tick = tick

	if len(matchState.PendingRefunds) > 0 {
		if mh.commit(ctx, matchState, matchState.PendingRefunds, logger) {
			logger.Info("MatchLoop: Retried refund commit for game %s succeeded.", matchState.Game.ID)
			matchState.PendingRefunds = nil
		}
	}

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpRollDice:
			mh.handleRollDice(ctx, matchState, dispatcher, logger, msg.GetUserId())
		case OpMovePiece:
			mh.handleMovePiece(ctx, matchState, dispatcher, logger, msg)
		case OpCancelGame:
			mh.handleCancelGame(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	if matchState.Game.Status == domain.StatusActive {
		if matchState.BotsEnabled {
			mh.processAgents(ctx, matchState, dispatcher, logger)
		}
		mh.processTimeout(ctx, matchState, dispatcher, logger)
	}

	mh.settleIfCompleted(ctx, matchState, dispatcher, logger)

	// Tear down once the money has moved and nobody is connected.
	if len(matchState.Presences) == 0 && len(matchState.PendingRefunds) == 0 &&
		(matchState.Game.Status == domain.StatusFinalized || matchState.Game.Status == domain.StatusCancelled) {
		logger.Info("MatchLoop: Game %s finished with no presences, terminating.", matchState.Game.ID)
		return nil
	}

	return matchState
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}
	logger.Info("MatchTerminate: Game %s terminating (status %s).", matchState.Game.ID, matchState.Game.Status)
	return matchState
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}

func (mh *matchHandler) handleRollDice(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, senderID string) {
	events, updates, err := state.App.RollDice(ctx, state.Game, senderID)
	if err != nil && !errors.Is(err, domain.ErrTurnSkipped) {
		mh.sendErrorTo(state, dispatcher, logger, senderID, OpRollDice, err)
		return
	}
	// ErrTurnSkipped still carries a committed rotation.
	if !mh.commit(ctx, state, updates, logger) {
		return
	}
	mh.broadcastEvents(state, dispatcher, logger, events)
}

func (mh *matchHandler) handleMovePiece(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	request := MovePieceRequest{}
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		logger.Warn("handleMovePiece: Invalid payload from %s: %v", senderID, err)
		return
	}

	events, updates, err := state.App.MovePiece(ctx, state.Game, senderID, request.Piece)
	if err != nil {
		mh.sendErrorTo(state, dispatcher, logger, senderID, OpMovePiece, err)
		return
	}
	if !mh.commit(ctx, state, updates, logger) {
		return
	}
	mh.broadcastEvents(state, dispatcher, logger, events)
}

func (mh *matchHandler) handleCancelGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	events, updates, err := state.App.CancelGame(ctx, state.Game, senderID)
	if err != nil {
		mh.sendErrorTo(state, dispatcher, logger, senderID, OpCancelGame, err)
		return
	}
	if !mh.commit(ctx, state, updates, logger) {
		return
	}
	mh.broadcastEvents(state, dispatcher, logger, events)
	mh.updateLabel(state, dispatcher, logger)
	logger.Info("handleCancelGame: Game %s cancelled by creator.", state.Game.ID)
}

// processAgents lets an AI agent play for the current turn holder when they
// are disconnected, keeping the game moving instead of running out the clock.
func (mh *matchHandler) processAgents(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	holder := state.Game.Seats[state.Game.Turn].UserID
	if _, present := state.Presences[holder]; present {
		state.BotActAt = 0
		return
	}

	if state.BotActAt == 0 {
		state.BotActAt = state.Tick + state.BotActDelay
		return
	}
	if state.Tick < state.BotActAt {
		return
	}
	state.BotActAt = 0

	agent, exists := state.Agents[holder]
	if !exists {
		agent = bot.NewAgent(state.Game.Turn)
		state.Agents[holder] = agent
	}

	if state.Game.DiceRoll == 0 {
		mh.handleRollDice(ctx, state, dispatcher, logger, holder)
		return
	}

	piece, ok := agent.ChoosePiece(state.Game, state.Game.Turn, state.Game.DiceRoll)
	if !ok {
		// No legal consumption of the pending die; roll again.
		mh.handleRollDice(ctx, state, dispatcher, logger, holder)
		return
	}

	events, updates, err := state.App.MovePiece(ctx, state.Game, holder, piece)
	if err != nil {
		logger.Warn("processAgents: Agent move for %s failed: %v", holder, err)
		return
	}
	if !mh.commit(ctx, state, updates, logger) {
		return
	}
	mh.broadcastEvents(state, dispatcher, logger, events)
}

// processTimeout drives the inactivity skip for a stale turn. The skip itself
// does not refresh the activity clock, so AutoSkipAt spaces server-driven
// skips one timeout window apart instead of cascading through every seat.
func (mh *matchHandler) processTimeout(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	now := state.Now().Unix()
	if now-state.Game.LastMoveTime <= domain.TurnTimeoutSeconds || now < state.AutoSkipAt {
		return
	}
	state.AutoSkipAt = now + domain.TurnTimeoutSeconds

	holder := state.Game.Seats[state.Game.Turn].UserID
	logger.Info("processTimeout: Turn holder %s timed out in game %s.", holder, state.Game.ID)
	mh.handleRollDice(ctx, state, dispatcher, logger, holder)
}

// settleIfCompleted distributes prizes exactly once after a completion.
func (mh *matchHandler) settleIfCompleted(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Game.Status != domain.StatusCompleted {
		return
	}

	events, updates, err := state.App.DistributePrizes(ctx, state.Game)
	if errors.Is(err, domain.ErrNoSecondPlace) {
		// Walkover: every other seat was eliminated, so no second place
		// exists and the regular four-player split can never apply.
		events, updates, err = state.App.DistributeWalkoverPrizes(ctx, state.Game)
	}
	if err != nil {
		logger.Error("settleIfCompleted: Failed to settle game %s: %v", state.Game.ID, err)
		return
	}
	if !mh.commit(ctx, state, updates, logger) {
		return
	}
	mh.broadcastEvents(state, dispatcher, logger, events)
	mh.updateLabel(state, dispatcher, logger)
	logger.Info("settleIfCompleted: Game %s settled, winner %s.", state.Game.ID, state.Game.Winner)
}

func (mh *matchHandler) commit(ctx context.Context, state *MatchState, updates []ports.WalletUpdate, logger runtime.Logger) bool {
	version, err := state.Store.Commit(ctx, state.Game, state.Version, updates)
	if err != nil {
		logger.Error("commit: Failed to persist game %s: %v", state.Game.ID, err)
		return false
	}
	state.Version = version
	return true
}

func (mh *matchHandler) broadcastEvents(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		opCode, ok := eventOpCodes[ev.Kind]
		if !ok {
			logger.Warn("broadcastEvents: No opcode for event %s", ev.Kind)
			continue
		}

		data, err := json.Marshal(ev.Payload)
		if err != nil {
			logger.Error("broadcastEvents: Failed to marshal %s payload: %v", ev.Kind, err)
			continue
		}

		var targets []runtime.Presence
		if len(ev.Recipients) > 0 {
			for _, userID := range ev.Recipients {
				if p, exists := state.Presences[userID]; exists {
					targets = append(targets, p)
				}
			}
			if len(targets) == 0 {
				continue
			}
		}
		dispatcher.BroadcastMessage(opCode, data, targets, nil, true)
	}
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	labelBytes, err := json.Marshal(MatchLabel{
		Open:  state.openSeats(),
		Game:  "ludo",
		Bet:   state.Game.BetAmount,
		Phase: string(state.Game.Status),
	})
	if err != nil {
		logger.Error("updateLabel: Failed to marshal label: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("updateLabel: Failed to update label: %v", err)
	}
}

func (mh *matchHandler) sendError(dispatcher runtime.MatchDispatcher, logger runtime.Logger, target runtime.Presence, opCode int64, err error) {
	payload := ErrorPayload{OpCode: opCode, Message: err.Error()}
	data, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		logger.Error("sendError: Failed to marshal error payload: %v", marshalErr)
		return
	}
	dispatcher.BroadcastMessage(OpError, data, []runtime.Presence{target}, nil, true)
}

func (mh *matchHandler) sendErrorTo(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, opCode int64, err error) {
	p, exists := state.Presences[userID]
	if !exists {
		logger.Warn("sendErrorTo: No presence for %s (op %d): %v", userID, opCode, err)
		return
	}
	mh.sendError(dispatcher, logger, p, opCode, err)
}

func paramString(params map[string]interface{}, key string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}

func paramInt64(params map[string]interface{}, key string) int64 {
	switch v := params[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}
