package checkers

// Direction selects which vertical neighbours are inspected.
type Direction uint8

const (
	Up Direction = iota
	Down
	Both
)

func (d Direction) includesUp() bool   { return d == Up || d == Both }
func (d Direction) includesDown() bool { return d == Down || d == Both }

// Adjacent holds the reachable diagonal neighbours, left before right.
type Adjacent struct {
	Up   []Coord
	Down []Coord
}

// AdjacentPositions returns the on-board diagonal neighbours of from that are
// empty or held by opponent. Friendly squares are omitted.
func AdjacentPositions(b *Board, opponent Player, from Coord, dir Direction) Adjacent {
	var adj Adjacent
	if dir.includesUp() {
		adj.Up = neighbours(b, opponent, from, -1)
	}
	if dir.includesDown() {
		adj.Down = neighbours(b, opponent, from, 1)
	}
	return adj
}

func neighbours(b *Board, opponent Player, from Coord, dRow int) []Coord {
	var out []Coord
	for _, dCol := range [2]int{-1, 1} {
		c := Coord{Row: from.Row + dRow, Col: from.Col + dCol}
		if !c.OnBoard() {
			continue
		}
		if owner := b.At(c).Owner; owner == NoPlayer || owner == opponent {
			out = append(out, c)
		}
	}
	return out
}
