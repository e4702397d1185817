package domain

// Capture identifies an opposing piece sent back to its yard.
type Capture struct {
	Seat   int
	Piece  int
	Square int
}

// MoveResult describes an applied piece movement.
type MoveResult struct {
	Seat  int
	Piece int
	From  int
	To    int

	Captures []Capture

	// ReachedHome is set when the piece landed on the final home position.
	ReachedHome bool
	// FinishedAll is set when the move brought the seat's fourth piece home.
	FinishedAll bool
	// Completed is set when the move ended the game.
	Completed bool

	// ExtraTurn is set when a six kept the turn with the mover.
	ExtraTurn bool
	// NextTurn is the seat index holding the turn after this move.
	NextTurn int
}

// pieceCanUse reports whether a piece at pos can legally consume the die.
func (g *Game) pieceCanUse(seat, pos, die int) bool {
	if die == dieSix && pos == 0 {
		return true
	}
	if pos <= 0 || pos >= HomePosition {
		return false
	}

	newPos := pos + die
	homeEntry := g.Board.HomeEntries[seat]
	if pos <= homeEntry && newPos > homeEntry {
		// Entering the home path; must not overshoot its six steps.
		return newPos-homeEntry <= HomePathLength
	}
	return newPos <= MainTrackEnd
}

// HasValidMove reports whether any of the seat's pieces can consume the die.
func (g *Game) HasValidMove(seat, die int) bool {
	for _, pos := range g.Seats[seat].Pieces {
		if g.pieceCanUse(seat, pos, die) {
			return true
		}
	}
	return false
}

// MoveOption describes one legal consumption of a die by a seat's piece,
// evaluated without mutating the record.
type MoveOption struct {
	Piece int
	From  int
	To    int
	// Captures counts the opposing pieces a move to this square would send
	// back to their yards.
	Captures int
	// ReachedHome is set when the destination is the final home position.
	ReachedHome bool
}

// MoveOptions lists every legal move the seat has for the given die value.
func (g *Game) MoveOptions(seat, die int) []MoveOption {
	var options []MoveOption
	for piece, pos := range g.Seats[seat].Pieces {
		if !g.pieceCanUse(seat, pos, die) {
			continue
		}

		opt := MoveOption{Piece: piece, From: pos}
		switch {
		case pos == 0:
			opt.To = 1
		default:
			newPos := pos + die
			homeEntry := g.Board.HomeEntries[seat]
			if pos <= homeEntry && newPos > homeEntry {
				opt.To = MainTrackEnd + (newPos - homeEntry)
				opt.ReachedHome = opt.To == HomePosition
			} else {
				opt.To = newPos
				opt.Captures = g.countCaptures(seat, newPos)
			}
		}
		options = append(options, opt)
	}
	return options
}

// countCaptures counts opposing main-track pieces on the landing square.
func (g *Game) countCaptures(mover, pos int) int {
	square := g.Board.AbsoluteSquare(mover, pos)
	if IsSafeZone(square) {
		return 0
	}

	count := 0
	for si := range g.Seats {
		if si == mover || !g.Seats[si].Active {
			continue
		}
		for _, oppPos := range g.Seats[si].Pieces {
			if oppPos > 0 && oppPos <= MainTrackEnd && g.Board.AbsoluteSquare(si, oppPos) == square {
				count++
			}
		}
	}
	return count
}

// MovePiece consumes the pending die value by moving one of the player's
// pieces, resolving captures and finish detection. All rejections leave the
// record unchanged, including the pending roll.
func (g *Game) MovePiece(player string, piece int, now int64) (MoveResult, error) {
	res := MoveResult{Seat: g.Turn, Piece: piece, NextTurn: g.Turn}

	if g.Status != StatusActive {
		return res, ErrGameNotActive
	}
	current := g.Turn
	seat := &g.Seats[current]
	if seat.UserID != player || !seat.Active {
		return res, ErrNotYourTurn
	}
	if piece < 0 || piece >= PiecesPerSeat {
		return res, ErrInvalidPiece
	}
	die := g.DiceRoll
	if die == 0 {
		return res, ErrDiceNotRolled
	}
	if !g.HasValidMove(current, die) {
		return res, ErrNoValidMoves
	}

	pos := seat.Pieces[piece]
	res.From = pos

	switch {
	case pos == 0:
		// Leaving the yard requires a six.
		if die != dieSix {
			return res, ErrCannotStart
		}
		seat.Pieces[piece] = 1
		res.To = 1

	default:
		newPos := pos + die
		homeEntry := g.Board.HomeEntries[current]

		if pos <= homeEntry && newPos > homeEntry {
			homeSteps := newPos - homeEntry
			if homeSteps > HomePathLength {
				return res, ErrInvalidMove
			}
			homePos := MainTrackEnd + homeSteps
			seat.Pieces[piece] = homePos
			res.To = homePos

			if homePos == HomePosition {
				seat.HomeCount++
				res.ReachedHome = true
				if seat.HomeCount == PiecesPerSeat {
					res.FinishedAll = true
					g.recordFinish(player)
					res.Completed = g.Status == StatusCompleted
				}
			}
		} else if newPos > MainTrackEnd {
			return res, ErrInvalidMove
		} else {
			seat.Pieces[piece] = newPos
			res.To = newPos
			res.Captures = g.resolveCaptures(current, newPos)
		}
	}

	// A six earns another turn unless the game just ended.
	if die != dieSix && g.Status == StatusActive {
		g.Turn = g.NextActiveSeat(g.Turn)
	} else if die == dieSix && g.Status == StatusActive {
		res.ExtraTurn = true
	}
	res.NextTurn = g.Turn

	g.DiceRoll = 0
	g.LastMoveTime = now
	return res, nil
}

// resolveCaptures sends every opposing main-track piece sharing the mover's
// absolute square back to its yard. Safe-zone squares are immune.
func (g *Game) resolveCaptures(mover, pos int) []Capture {
	square := g.Board.AbsoluteSquare(mover, pos)
	if IsSafeZone(square) {
		return nil
	}

	var captures []Capture
	for si := range g.Seats {
		if si == mover || !g.Seats[si].Active {
			continue
		}
		for pi, oppPos := range g.Seats[si].Pieces {
			// Only main-track pieces can be captured; yard and home path
			// are out of reach.
			if oppPos > 0 && oppPos <= MainTrackEnd && g.Board.AbsoluteSquare(si, oppPos) == square {
				g.Seats[si].Pieces[pi] = 0
				captures = append(captures, Capture{Seat: si, Piece: pi, Square: square})
			}
		}
	}
	return captures
}

// recordFinish applies win/placement rules for a player whose pieces are all
// home. Two-player games end immediately; four-player games end once two
// distinct players have finished, leaving the rest unranked.
func (g *Game) recordFinish(player string) {
	if g.MaxPlayers == 2 {
		g.Winner = player
		g.Status = StatusCompleted
		return
	}
	if g.Winner == "" {
		g.Winner = player
		return
	}
	if g.SecondPlace == "" && g.Winner != player {
		g.SecondPlace = player
		g.Status = StatusCompleted
	}
}
