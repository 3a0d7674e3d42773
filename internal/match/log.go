package match

import (
	"github.com/park285/Cheese-Checkers-bot/internal/checkers"
)

// PieceRecord is a piece as it stood before a play, by square name.
type PieceRecord struct {
	Location string `json:"location"`
	King     bool   `json:"king"`
}

// PlayRecord is one entry of the game log.
type PlayRecord struct {
	Player      checkers.Player `json:"player"`
	Piece       PieceRecord     `json:"piece"`
	Destination string          `json:"destination"`
	Killed      []string        `json:"killed,omitempty"`
	Promoted    bool            `json:"promoted,omitempty"`
	Notation    string          `json:"notation"`
}

// Log is the replayable account of a match: who started where, the initial
// pieces of each side and every play in order.
type Log struct {
	FirstPlayer   checkers.Player                   `json:"first_player"`
	TopPlayer     checkers.Player                   `json:"top_player"`
	Winner        checkers.Player                   `json:"winner,omitempty"`
	Status        checkers.Outcome                  `json:"status"`
	InitialPieces map[checkers.Player][]PieceRecord `json:"initial_pieces"`
	Plays         []PlayRecord                      `json:"plays"`
}

func newLog(b *checkers.Board, top checkers.Player) Log {
	initial := make(map[checkers.Player][]PieceRecord, 2)
	for _, p := range []checkers.Player{checkers.First, checkers.Second} {
		for _, c := range checkers.LocatePieces(b, p) {
			initial[p] = append(initial[p], PieceRecord{Location: c.String(), King: checkers.CellIsKing(b, c)})
		}
	}
	return Log{
		FirstPlayer:   checkers.First,
		TopPlayer:     top,
		Status:        checkers.Ongoing,
		InitialPieces: initial,
		Plays:         []PlayRecord{},
	}
}

func recordPlay(p checkers.Play) PlayRecord {
	rec := PlayRecord{
		Player:      p.Player,
		Piece:       PieceRecord{Location: p.From.String(), King: p.WasKing},
		Destination: p.Move.To.String(),
		Promoted:    p.Promoted,
		Notation:    p.Move.Notation(p.From),
	}
	for _, c := range p.Move.Captured {
		rec.Killed = append(rec.Killed, c.String())
	}
	return rec
}

// Notations lists the plays in display notation.
func (l Log) Notations() []string {
	out := make([]string, 0, len(l.Plays))
	for _, p := range l.Plays {
		out = append(out, p.Notation)
	}
	return out
}
