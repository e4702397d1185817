package nakama

const (
	// RpcCreateGame is the Nakama RPC id clients call to create a wagered match.
	RpcCreateGame = "create_game"
	// RpcFindMatch is the Nakama RPC id clients call to find an open match.
	RpcFindMatch = "find_match"

	// MatchNameLudo is the authoritative match handler name registered with Nakama.
	MatchNameLudo = "ludo_match"

	// MatchLabelKey_OpenSeats is the label key for open seats in the match label.
	MatchLabelKey_OpenSeats = "open"

	// gameCollection is the storage collection holding game snapshots.
	gameCollection = "ludo_games"

	// walletCurrency is the wallet key all stakes and prizes move through.
	walletCurrency = "coins"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpRollDice   int64 = 1
	OpMovePiece  int64 = 2
	OpCancelGame int64 = 3

	// Server -> Client events
	OpPlayerJoined      int64 = 101
	OpGameStarted       int64 = 102
	OpDiceRolled        int64 = 103
	OpTurnForfeited     int64 = 104
	OpTurnSkipped       int64 = 105
	OpPlayerEliminated  int64 = 106
	OpPieceMoved        int64 = 107
	OpPieceCaptured     int64 = 108
	OpGameCompleted     int64 = 109
	OpGameCancelled     int64 = 110
	OpPrizesDistributed int64 = 111
	OpError             int64 = 199
)
