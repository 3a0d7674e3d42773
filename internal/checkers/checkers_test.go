package checkers

import (
	"errors"
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// mustBoard builds a board from eight rows of eight symbols.
func mustBoard(t *testing.T, rows ...string) *Board {
	t.Helper()
	if len(rows) != Size {
		t.Fatalf("need %d rows, got %d", Size, len(rows))
	}
	var b Board
	if err := b.UnmarshalText([]byte(strings.Join(rows, ""))); err != nil {
		t.Fatalf("unmarshal board: %v", err)
	}
	return &b
}

func TestStandardBoardLayout(t *testing.T) {
	b := NewStandardBoard(Second)
	if got := b.Count(First); got != 12 {
		t.Fatalf("first pieces: got %d want 12", got)
	}
	if got := b.Count(Second); got != 12 {
		t.Fatalf("second pieces: got %d want 12", got)
	}
	for r := range Size {
		for c := range Size {
			cell := b[r][c]
			if !cell.Empty() && (r+c)%2 == 0 {
				t.Fatalf("piece on light square %d,%d", r, c)
			}
			if cell.Rank == King {
				t.Fatalf("king on fresh board at %d,%d", r, c)
			}
		}
	}
	if b.At(Coord{0, 1}).Owner != Second || b.At(Coord{7, 6}).Owner != First {
		t.Fatalf("unexpected home rows:\n%s", b)
	}
	pieces := LocatePieces(b, First)
	if pieces[0] != (Coord{5, 0}) || pieces[len(pieces)-1] != (Coord{7, 6}) {
		t.Fatalf("pieces not row-major: %v", pieces)
	}
}

func TestSetCustomStartingPosition(t *testing.T) {
	b := EmptyBoard()
	if err := SetCustomStartingPosition(b, First, Layout{Coords: []Coord{{5, 0}, {5, 2}}}); err != nil {
		t.Fatalf("custom layout: %v", err)
	}
	if b.Count(First) != 2 {
		t.Fatalf("count: %d", b.Count(First))
	}
	err := SetCustomStartingPosition(b, Second, Layout{Coords: []Coord{{8, 0}}})
	if !errors.Is(err, ErrOffBoard) {
		t.Fatalf("expected ErrOffBoard, got %v", err)
	}
	if b.Count(Second) != 0 {
		t.Fatalf("partial placement after error")
	}
	if err := SetCustomStartingPosition(b, Second, Layout{FromTop: true}); err != nil {
		t.Fatalf("standard layout: %v", err)
	}
	if b.Count(Second) != 12 {
		t.Fatalf("standard layout count: %d", b.Count(Second))
	}
}

func TestAdjacentPositions(t *testing.T) {
	b := mustBoard(t,
		"--------",
		"--------",
		"--------",
		"--o-x---",
		"---x----",
		"--o-----",
		"--------",
		"--------",
	)
	adj := AdjacentPositions(b, Second, Coord{4, 3}, Both)
	want := Adjacent{
		Up:   []Coord{{3, 2}},
		Down: []Coord{{5, 2}, {5, 4}},
	}
	if diff := cmp.Diff(want, adj); diff != "" {
		t.Fatalf("adjacency mismatch (-want +got):\n%s", diff)
	}
	if got := AdjacentPositions(b, Second, Coord{4, 3}, Down); got.Up != nil {
		t.Fatalf("down query returned up entries: %v", got.Up)
	}
	edge := AdjacentPositions(b, Second, Coord{0, 0}, Both)
	if len(edge.Up) != 0 || len(edge.Down) != 1 {
		t.Fatalf("corner adjacency: %+v", edge)
	}
}

func TestMovesForSingleCaptureAtEdge(t *testing.T) {
	b := mustBoard(t,
		"--------",
		"--------",
		"--------",
		"--------",
		"-o------",
		"x-------",
		"--------",
		"--------",
	)
	got := MovesFor(b, First, Coord{5, 0}, false)
	want := []Move{{To: Coord{3, 2}, Captured: []Coord{{4, 1}}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("moves mismatch (-want +got):\n%s", diff)
	}
}

func TestMovesForKingSurrounded(t *testing.T) {
	b := mustBoard(t,
		"--------",
		"--------",
		"--------",
		"--o-o---",
		"---X----",
		"--o-o---",
		"--------",
		"--------",
	)
	got := MovesFor(b, First, Coord{4, 3}, false)
	if len(got) != 4 {
		t.Fatalf("expected 4 moves, got %d: %v", len(got), got)
	}
	seen := map[Coord]bool{}
	for _, m := range got {
		if len(m.Captured) != 1 {
			t.Fatalf("expected single capture, got %v", m)
		}
		if seen[m.To] {
			t.Fatalf("duplicate destination %v", m.To)
		}
		seen[m.To] = true
	}
}

func TestMovesForEmitsEveryChainLength(t *testing.T) {
	b := mustBoard(t,
		"--------",
		"--------",
		"--------",
		"--------",
		"---o----",
		"--------",
		"-o------",
		"x-------",
	)
	got := MovesFor(b, First, Coord{7, 0}, false)
	want := []Move{
		{To: Coord{5, 2}, Captured: []Coord{{6, 1}}},
		{To: Coord{3, 4}, Captured: []Coord{{6, 1}, {4, 3}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("moves mismatch (-want +got):\n%s", diff)
	}
}

func TestMovesForBranchesKeepTheirOwnCaptures(t *testing.T) {
	b := mustBoard(t,
		"--------",
		"--------",
		"--------",
		"--------",
		"---o-o--",
		"--------",
		"---o----",
		"--x-----",
	)
	got := MovesFor(b, First, Coord{7, 2}, false)
	want := []Move{
		{To: Coord{6, 1}},
		{To: Coord{5, 4}, Captured: []Coord{{6, 3}}},
		{To: Coord{3, 2}, Captured: []Coord{{6, 3}, {4, 3}}},
		{To: Coord{3, 6}, Captured: []Coord{{6, 3}, {4, 5}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("moves mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalPieceDoesNotMoveBackward(t *testing.T) {
	b := mustBoard(t,
		"--------",
		"--------",
		"--------",
		"--x-----",
		"---o----",
		"--------",
		"--------",
		"--------",
	)
	for _, m := range MovesFor(b, First, Coord{3, 2}, false) {
		if m.To.Row > 3 || m.IsCapture() {
			t.Fatalf("unexpected backward move %v", m)
		}
	}
}

func TestKingChainDoesNotRejumpCapturedPiece(t *testing.T) {
	b := mustBoard(t,
		"--------",
		"--------",
		"-----o--",
		"--------",
		"---o----",
		"--X-----",
		"--------",
		"--------",
	)
	for _, m := range MovesFor(b, First, Coord{5, 2}, false) {
		counts := map[Coord]int{}
		for _, c := range m.Captured {
			counts[c]++
			if counts[c] > 1 {
				t.Fatalf("piece %v captured twice in %v", c, m)
			}
			if b.At(c).Owner != Second {
				t.Fatalf("captured non-opponent square %v", c)
			}
		}
	}
}

func TestControllerExecuteCaptureAndPromotion(t *testing.T) {
	b := mustBoard(t,
		"--------",
		"--------",
		"-o------",
		"x-------",
		"--------",
		"--------",
		"--------",
		"-------o",
	)
	ctrl := ForPlayer(b, First, false)
	sel, err := ctrl.Select(0)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(sel.Moves) != 1 {
		t.Fatalf("moves: %v", sel.Moves)
	}
	play, err := sel.Execute(0)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !b.At(Coord{2, 1}).Empty() || !b.At(Coord{3, 0}).Empty() {
		t.Fatalf("captured or source square not cleared:\n%s", b)
	}
	if got := b.At(Coord{1, 2}); got.Owner != First || got.Rank != Normal {
		t.Fatalf("destination: %+v", got)
	}
	if play.Promoted {
		t.Fatalf("promoted before reaching row 0")
	}

	play, err = ForPlayer(b, First, false).mustSelect(t, 0).Execute(0)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !play.Promoted || !CellIsKing(b, play.Move.To) {
		t.Fatalf("expected promotion, got %+v", play)
	}
}

func (c *Controller) mustSelect(t *testing.T, i int) *Selection {
	t.Helper()
	sel, err := c.Select(i)
	if err != nil {
		t.Fatalf("select %d: %v", i, err)
	}
	return sel
}

func TestControllerInvalidIndex(t *testing.T) {
	b := NewStandardBoard(Second)
	ctrl := ForPlayer(b, First, false)
	if _, err := ctrl.Select(12); !errors.Is(err, ErrInvalidIndex) {
		t.Fatalf("expected ErrInvalidIndex, got %v", err)
	}
	if _, err := ctrl.Select(-1); !errors.Is(err, ErrInvalidIndex) {
		t.Fatalf("expected ErrInvalidIndex, got %v", err)
	}
	sel := ctrl.mustSelect(t, 0)
	if _, err := sel.Execute(len(sel.Moves)); !errors.Is(err, ErrInvalidIndex) {
		t.Fatalf("expected ErrInvalidIndex, got %v", err)
	}
}

func TestPlayableOptionsOnStandardBoard(t *testing.T) {
	b := NewStandardBoard(Second)
	opts := PlayableOptions(b, First, false)
	// only the front row can move on the first turn
	if len(opts) != 4 {
		t.Fatalf("playable pieces: %d", len(opts))
	}
	total := 0
	for _, o := range opts {
		if o.Piece.Row != 5 {
			t.Fatalf("back-row piece reported playable: %v", o.Piece)
		}
		if LocatePieces(b, First)[o.Index] != o.Piece {
			t.Fatalf("index %d does not match piece %v", o.Index, o.Piece)
		}
		total += len(o.Moves)
	}
	if total != 7 {
		t.Fatalf("opening moves: got %d want 7", total)
	}
}

func TestGameStatus(t *testing.T) {
	tests := []struct {
		name string
		rows []string
		side Side
		want Status
	}{
		{
			name: "side without pieces loses",
			rows: []string{"--------", "--------", "--------", "--------", "--------", "x-------", "--------", "--------"},
			side: Side{Player: Second, AdvancesDownward: true},
			want: Status{Outcome: Finished, Winner: First},
		},
		{
			name: "opponent without pieces",
			rows: []string{"--------", "--------", "--------", "--------", "--------", "x-------", "--------", "--------"},
			side: Side{Player: First},
			want: Status{Outcome: Finished, Winner: First},
		},
		{
			name: "lone pieces still moving",
			rows: []string{"--------", "--------", "-----o--", "--------", "--------", "x-------", "--------", "--------"},
			side: Side{Player: First},
			want: Status{Outcome: Ongoing},
		},
		{
			name: "blocked side loses when opponent can move",
			rows: []string{"--------", "--------", "--------", "--------", "--------", "--o-----", "-o------", "x-------"},
			side: Side{Player: First},
			want: Status{Outcome: Finished, Winner: Second},
		},
		{
			name: "nobody can move",
			rows: []string{"-x------", "--------", "--------", "--------", "--------", "--------", "--------", "o-------"},
			side: Side{Player: First},
			want: Status{Outcome: Tied},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mustBoard(t, tt.rows...)
			if got := GameStatus(b, tt.side); got != tt.want {
				t.Fatalf("status: got %+v want %+v", got, tt.want)
			}
		})
	}
}

func TestParseBoardRoundTrip(t *testing.T) {
	b := NewStandardBoard(First)
	b.Set(Coord{3, 2}, Cell{Owner: Second, Rank: King})
	parsed, err := ParseBoard(FormatBoard(b))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if *parsed != *b {
		t.Fatalf("round trip mismatch:\n%s\nvs\n%s", parsed, b)
	}
}

func TestParseBoardFailures(t *testing.T) {
	good := strings.Split(strings.TrimSpace(FormatBoard(NewStandardBoard(Second))), "\n")
	tests := map[string]string{
		"seven rows":     strings.Join(good[:8], "\n"),
		"invalid symbol": strings.Replace(strings.Join(good, "\n"), "| x |", "| z |", 1),
		"wide cell":      strings.Replace(strings.Join(good, "\n"), "| x |", "| xx |", 1),
		"no pieces":      strings.Repeat("| - | - | - | - | - | - | - | - |\n", 8),
		"empty input":    "",
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseBoard(text); !errors.Is(err, ErrLoadFailed) {
				t.Fatalf("expected ErrLoadFailed, got %v", err)
			}
		})
	}

	fallback := func() *Board { return NewStandardBoard(Second) }
	b, err := LoadBoardOrDefault("garbage", fallback)
	if !errors.Is(err, ErrLoadFailed) || *b != *fallback() {
		t.Fatalf("fallback not used: %v", err)
	}
}

func TestCoordNotation(t *testing.T) {
	c, err := ParseCoord("b1")
	if err != nil || c != (Coord{0, 1}) {
		t.Fatalf("parse b1: %v %v", c, err)
	}
	if c.String() != "B1" {
		t.Fatalf("string: %s", c)
	}
	for _, bad := range []string{"", "i1", "a9", "a0", "b12"} {
		if _, err := ParseCoord(bad); !errors.Is(err, ErrOffBoard) {
			t.Fatalf("%q: expected ErrOffBoard, got %v", bad, err)
		}
	}
	m := Move{To: Coord{3, 4}, Captured: []Coord{{6, 1}, {4, 3}}}
	if got := m.Notation(Coord{7, 0}); got != "A8xC6xE4" {
		t.Fatalf("notation: %s", got)
	}
	if got := (Move{To: Coord{4, 1}}).Notation(Coord{5, 0}); got != "A6-B5" {
		t.Fatalf("notation: %s", got)
	}
}

func TestResolveMovePrefersLongestChain(t *testing.T) {
	b := mustBoard(t,
		"--------",
		"--------",
		"--------",
		"--------",
		"---o----",
		"--------",
		"-o------",
		"x-------",
	)
	req, err := ParseMoveRequest("a8 e4")
	if err != nil {
		t.Fatalf("parse request: %v", err)
	}
	pi, mi, err := ResolveMove(b, First, false, req)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	sel := ForPlayer(b, First, false).mustSelect(t, pi)
	if len(sel.Moves[mi].Captured) != 2 {
		t.Fatalf("resolved move: %v", sel.Moves[mi])
	}
	if _, _, err := ResolveMove(b, First, false, MoveRequest{From: Coord{7, 0}, To: Coord{6, 1}}); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove, got %v", err)
	}
	if _, err := ParseMoveRequest("a8"); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove, got %v", err)
	}
}

// Random playouts check the generator invariants on many reachable positions.
func TestRandomPlayoutInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for game := 0; game < 20; game++ {
		b := NewStandardBoard(Second)
		side := Side{Player: First}
		for ply := 0; ply < 200; ply++ {
			if GameStatus(b, side).Outcome != Ongoing {
				break
			}
			opts := PlayableOptions(b, side.Player, side.AdvancesDownward)
			for _, o := range opts {
				if diff := cmp.Diff(o.Moves, MovesFor(b, side.Player, o.Piece, side.AdvancesDownward)); diff != "" {
					t.Fatalf("moves of %v changed between calls (-first +second):\n%s", o.Piece, diff)
				}
				for _, m := range o.Moves {
					checkChainGeometry(t, b, o.Piece, m)
					if !m.To.OnBoard() || !b.At(m.To).Empty() {
						t.Fatalf("bad destination %v from %v", m.To, o.Piece)
					}
					for i, c := range m.Captured {
						if b.At(c).Owner != side.Player.Opponent() {
							t.Fatalf("captured %v is not an opponent piece", c)
						}
						if slices.Contains(m.Captured[:i], c) {
							t.Fatalf("captured %v twice", c)
						}
					}
				}
			}
			o := opts[rng.Intn(len(opts))]
			mi := rng.Intn(len(o.Moves))
			before := b.Count(side.Player.Opponent())
			play, err := ForPlayer(b, side.Player, side.AdvancesDownward).mustSelect(t, o.Index).Execute(mi)
			if err != nil {
				t.Fatalf("execute: %v", err)
			}
			if after := b.Count(side.Player.Opponent()); before-after != len(play.Move.Captured) {
				t.Fatalf("captured %d but removed %d", len(play.Move.Captured), before-after)
			}
			side = side.Opponent()
		}
	}
}

// checkChainGeometry walks a capture chain jump by jump: every captured piece
// sits diagonally next to the current square, the landing beyond it is an
// empty square and the last landing is the move's destination.
func checkChainGeometry(t *testing.T, b *Board, from Coord, m Move) {
	t.Helper()
	if !m.IsCapture() {
		if abs(m.To.Row-from.Row) != 1 || abs(m.To.Col-from.Col) != 1 {
			t.Fatalf("step %v -> %v is not a diagonal neighbour", from, m.To)
		}
		return
	}
	cur := from
	for _, c := range m.Captured {
		if abs(c.Row-cur.Row) != 1 || abs(c.Col-cur.Col) != 1 {
			t.Fatalf("chain %s: %v is not next to %v", m.Notation(from), c, cur)
		}
		landing := Coord{Row: 2*c.Row - cur.Row, Col: 2*c.Col - cur.Col}
		if !landing.OnBoard() || !b.At(landing).Empty() {
			t.Fatalf("chain %s: landing %v beyond %v is not free", m.Notation(from), landing, c)
		}
		cur = landing
	}
	if cur != m.To {
		t.Fatalf("chain %s ends at %v, move says %v", m.Notation(from), cur, m.To)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
