package bot

import (
	"fmt"
	"strings"

	"ludo/internal/domain"
)

const botIDPrefix = "bot-"

var botNames = []string{"Rook", "Pip", "Dash", "Marble", "Scout", "Tumble", "Lucky", "Zig"}

// Agent is an autonomous player filling an abandoned or unclaimed seat.
type Agent struct {
	ID   string
	Name string
}

// NewAgent provisions a bot identity for the given seat index.
func NewAgent(seat int) *Agent {
	name := botNames[seat%len(botNames)]
	return &Agent{
		ID:   fmt.Sprintf("%s%d", botIDPrefix, seat),
		Name: fmt.Sprintf("%s (AI)", name),
	}
}

// IsBot reports whether the user ID belongs to a provisioned bot seat.
func IsBot(userID string) bool {
	return strings.HasPrefix(userID, botIDPrefix)
}

// ChoosePiece selects which piece should consume the pending roll for the
// seat. Preference order: capture an opponent, bring a piece home, advance
// the furthest piece, and only then leave the yard. Returns ok=false when
// the seat has no legal move.
func (a *Agent) ChoosePiece(game *domain.Game, seat, die int) (int, bool) {
	options := game.MoveOptions(seat, die)
	if len(options) == 0 {
		return 0, false
	}

	best := options[0]
	for _, opt := range options[1:] {
		if betterOption(opt, best) {
			best = opt
		}
	}
	return best.Piece, true
}

func betterOption(a, b domain.MoveOption) bool {
	if a.Captures != b.Captures {
		return a.Captures > b.Captures
	}
	if a.ReachedHome != b.ReachedHome {
		return a.ReachedHome
	}
	// Yard exits rank below any on-track advance.
	aExit := a.From == 0
	bExit := b.From == 0
	if aExit != bExit {
		return bExit
	}
	return a.To > b.To
}
