package domain

// Board geometry in player-relative coordinates.
//
// Each piece position is encoded as a single int: 0 is the yard, 1..50 is the
// shared main track measured from the seat's own start square, 51..56 is the
// seat's private home path, and 56 means the piece finished.
const (
	// TrackLength is the full distance a piece travels: 50 main-track squares
	// plus 6 home-path steps.
	TrackLength = 56

	// MainTrackEnd is the last relative position on the shared circular track.
	MainTrackEnd = 50

	// HomePosition is the terminal position of a finished piece.
	HomePosition = 56

	// HomePathLength is the number of private squares between the home-entry
	// square and home itself.
	HomePathLength = 6

	// AbsoluteSquares is the number of shared squares on the circular track.
	AbsoluteSquares = 52

	// PiecesPerSeat is the number of pieces each seat controls.
	PiecesPerSeat = 4
)

// safeZones are the absolute track squares where pieces cannot be captured.
// The set is the same for 2-player and 4-player boards.
var safeZones = [...]int{8, 13, 21, 26, 34, 39, 47}

// Board holds the per-seat geometry fixed at game creation.
type Board struct {
	// StartOffsets maps a seat index to its absolute starting square.
	StartOffsets []int `json:"start_offsets"`
	// HomeEntries maps a seat index to the last relative main-track position
	// before its home path begins.
	HomeEntries []int `json:"home_entries"`
}

// NewBoard derives the board geometry for the given seat count.
// The caller must have validated maxPlayers to be 2 or 4.
func NewBoard(maxPlayers int) Board {
	if maxPlayers == 4 {
		return Board{
			StartOffsets: []int{0, 13, 26, 39},
			HomeEntries:  []int{50, 11, 24, 37},
		}
	}
	// Two players sit opposite each other.
	return Board{
		StartOffsets: []int{0, 26},
		HomeEntries:  []int{50, 24},
	}
}

// AbsoluteSquare converts a seat-relative main-track position to the shared
// circular coordinate used for capture resolution.
func (b Board) AbsoluteSquare(seat, pos int) int {
	return (b.StartOffsets[seat] + pos) % AbsoluteSquares
}

// IsSafeZone reports whether an absolute square is immune to capture.
func IsSafeZone(square int) bool {
	for _, s := range safeZones {
		if s == square {
			return true
		}
	}
	return false
}

// SafeZones returns the absolute squares immune to capture.
func SafeZones() []int {
	out := make([]int, len(safeZones))
	copy(out, safeZones[:])
	return out
}
