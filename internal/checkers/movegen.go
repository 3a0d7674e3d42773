package checkers

import "slices"

// Move is one destination for a piece. Captured lists the jumped opponent
// squares in jump order; it is empty for a quiet move.
type Move struct {
	To       Coord
	Captured []Coord
}

func (m Move) IsCapture() bool { return len(m.Captured) > 0 }

// Captures reports whether c is jumped by the move.
func (m Move) Captures(c Coord) bool { return slices.Contains(m.Captured, c) }

func forward(advancesDownward bool) Direction {
	if advancesDownward {
		return Down
	}
	return Up
}

// MovesFor lists every move of the piece at piece. Each prefix of a capture
// chain is a move of its own, so a piece that can jump twice in a row yields
// both the single and the double jump. The board is not modified.
func MovesFor(b *Board, player Player, piece Coord, advancesDownward bool) []Move {
	if !piece.OnBoard() || b.At(piece).Owner != player {
		return nil
	}
	king := b.At(piece).Rank == King
	dir := forward(advancesDownward)
	if king {
		dir = Both
	}
	opponent := player.Opponent()
	adj := AdjacentPositions(b, opponent, piece, dir)

	var moves []Move
	for _, group := range [2][]Coord{adj.Up, adj.Down} {
		for _, n := range group {
			if b.At(n).Empty() {
				moves = append(moves, Move{To: n})
				continue
			}
			moves = append(moves, jumpsFrom(b, opponent, piece, n, king, nil)...)
		}
	}
	return moves
}

// jumpsFrom follows the diagonal from -> over and, when the square beyond is
// free, records the capture and keeps searching from the landing square.
// captured is never mutated; each branch extends its own copy.
func jumpsFrom(b *Board, opponent Player, from, over Coord, king bool, captured []Coord) []Move {
	if b.At(over).Owner != opponent || slices.Contains(captured, over) {
		return nil
	}
	dRow, dCol := over.Row-from.Row, over.Col-from.Col
	landing := Coord{Row: over.Row + dRow, Col: over.Col + dCol}
	if !landing.OnBoard() || !b.At(landing).Empty() {
		return nil
	}

	chain := make([]Coord, len(captured), len(captured)+1)
	copy(chain, captured)
	chain = append(chain, over)
	moves := []Move{{To: landing, Captured: chain}}

	dir := Up
	if dRow > 0 {
		dir = Down
	}
	if king {
		dir = Both
	}
	adj := AdjacentPositions(b, opponent, landing, dir)
	for _, group := range [2][]Coord{adj.Up, adj.Down} {
		for _, n := range group {
			if b.At(n).Empty() {
				continue
			}
			moves = append(moves, jumpsFrom(b, opponent, landing, n, king, chain)...)
		}
	}
	return moves
}
