package checkers

import (
	"fmt"
	"strings"
)

// Size is the board edge length.
const Size = 8

// Player identifies a side. First always moves first.
type Player uint8

const (
	NoPlayer Player = iota
	First
	Second
)

// Opponent returns the other side; NoPlayer has no opponent.
func (p Player) Opponent() Player {
	switch p {
	case First:
		return Second
	case Second:
		return First
	default:
		return NoPlayer
	}
}

// Symbol is the lower-case board character of the side.
func (p Player) Symbol() byte {
	switch p {
	case First:
		return 'x'
	case Second:
		return 'o'
	default:
		return '-'
	}
}

func (p Player) String() string {
	switch p {
	case First:
		return "x"
	case Second:
		return "o"
	default:
		return "none"
	}
}

// ParsePlayer accepts "x" or "o" in any case.
func ParsePlayer(s string) (Player, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x":
		return First, nil
	case "o":
		return Second, nil
	default:
		return NoPlayer, fmt.Errorf("unknown player %q", s)
	}
}

// Rank distinguishes promoted pieces.
type Rank uint8

const (
	Normal Rank = iota
	King
)

func (r Rank) String() string {
	if r == King {
		return "king"
	}
	return "normal"
}

// Cell is one square. The zero value is an empty square.
type Cell struct {
	Owner Player
	Rank  Rank
}

func (c Cell) Empty() bool { return c.Owner == NoPlayer }

// Symbol renders the cell as '-', 'x', 'X', 'o' or 'O'.
func (c Cell) Symbol() byte {
	if c.Empty() {
		return '-'
	}
	s := c.Owner.Symbol()
	if c.Rank == King {
		s -= 'a' - 'A'
	}
	return s
}

func cellFromSymbol(b byte) (Cell, bool) {
	switch b {
	case '-':
		return Cell{}, true
	case 'x':
		return Cell{Owner: First}, true
	case 'X':
		return Cell{Owner: First, Rank: King}, true
	case 'o':
		return Cell{Owner: Second}, true
	case 'O':
		return Cell{Owner: Second, Rank: King}, true
	default:
		return Cell{}, false
	}
}

// Coord addresses a square; row 0 is the top of the board.
type Coord struct {
	Row int
	Col int
}

func (c Coord) OnBoard() bool {
	return c.Row >= 0 && c.Row < Size && c.Col >= 0 && c.Col < Size
}

// Board is an 8x8 grid. Copying the value copies every square.
type Board [Size][Size]Cell

func EmptyBoard() *Board { return &Board{} }

// NewStandardBoard places top on rows 0-2 and its opponent on rows 5-7.
func NewStandardBoard(top Player) *Board {
	b := EmptyBoard()
	SetStartingPosition(b, top, true)
	SetStartingPosition(b, top.Opponent(), false)
	return b
}

func (b *Board) At(c Coord) Cell { return b[c.Row][c.Col] }

func (b *Board) Set(c Coord, cell Cell) { b[c.Row][c.Col] = cell }

func (b *Board) Clear(c Coord) { b[c.Row][c.Col] = Cell{} }

func (b *Board) Clone() *Board {
	cp := *b
	return &cp
}

// Count returns how many pieces the player has on the board.
func (b *Board) Count(p Player) int {
	n := 0
	for r := range Size {
		for c := range Size {
			if b[r][c].Owner == p {
				n++
			}
		}
	}
	return n
}

// IsEmpty reports whether no square is occupied.
func (b *Board) IsEmpty() bool {
	return b.Count(First) == 0 && b.Count(Second) == 0
}

// LocatePieces lists the player's pieces in row-major order. The position of
// a coordinate in the result is the piece number callers select by.
func LocatePieces(b *Board, p Player) []Coord {
	var out []Coord
	for r := range Size {
		for c := range Size {
			if b[r][c].Owner == p {
				out = append(out, Coord{Row: r, Col: c})
			}
		}
	}
	return out
}

func CellIsKing(b *Board, c Coord) bool {
	return c.OnBoard() && b.At(c).Rank == King && !b.At(c).Empty()
}

// PromotionRow is the farthest row for a side advancing in the given direction.
func PromotionRow(advancesDownward bool) int {
	if advancesDownward {
		return Size - 1
	}
	return 0
}

// SetStartingPosition fills the three home rows of a side with normal pieces
// on the dark squares and clears the light squares of those rows.
func SetStartingPosition(b *Board, p Player, fromTop bool) {
	first := Size - 3
	if fromTop {
		first = 0
	}
	for r := first; r < first+3; r++ {
		for c := range Size {
			if (r+c)%2 == 1 {
				b[r][c] = Cell{Owner: p}
			} else {
				b[r][c] = Cell{}
			}
		}
	}
}

// Layout describes where a side starts: explicit coordinates when Coords is
// non-nil, otherwise the standard home rows.
type Layout struct {
	Coords  []Coord
	FromTop bool
}

func SetCustomStartingPosition(b *Board, p Player, layout Layout) error {
	if layout.Coords == nil {
		SetStartingPosition(b, p, layout.FromTop)
		return nil
	}
	for _, c := range layout.Coords {
		if !c.OnBoard() {
			return fmt.Errorf("place %s at %d,%d: %w", p, c.Row, c.Col, ErrOffBoard)
		}
	}
	for _, c := range layout.Coords {
		b.Set(c, Cell{Owner: p})
	}
	return nil
}

// MarshalText encodes the board as 64 cell symbols in row-major order.
func (b Board) MarshalText() ([]byte, error) {
	out := make([]byte, 0, Size*Size)
	for r := range Size {
		for c := range Size {
			out = append(out, b[r][c].Symbol())
		}
	}
	return out, nil
}

func (b *Board) UnmarshalText(text []byte) error {
	if len(text) != Size*Size {
		return fmt.Errorf("board text has %d cells: %w", len(text), ErrLoadFailed)
	}
	var next Board
	for i, ch := range text {
		cell, ok := cellFromSymbol(ch)
		if !ok {
			return fmt.Errorf("board symbol %q: %w", ch, ErrLoadFailed)
		}
		next[i/Size][i%Size] = cell
	}
	*b = next
	return nil
}

func (p Player) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Player) UnmarshalText(text []byte) error {
	if string(text) == "none" || len(text) == 0 {
		*p = NoPlayer
		return nil
	}
	v, err := ParsePlayer(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
