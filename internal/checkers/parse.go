package checkers

import (
	"fmt"
	"strings"
)

const columnLetters = "ABCDEFGH"

// ParseBoard reads the textual grid printed by FormatBoard. Every line is
// split on '|' and cells 1 through 8 are kept; lines that do not yield eight
// cells (headers, blank lines) are ignored. Exactly eight rows of valid
// symbols with at least one piece are required.
func ParseBoard(text string) (*Board, error) {
	var rows [][]string
	for _, line := range strings.Split(text, "\n") {
		parts := strings.Split(strings.TrimSpace(line), "|")
		if len(parts) < Size+1 {
			continue
		}
		cells := parts[1 : Size+1]
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		rows = append(rows, cells)
	}
	if len(rows) != Size {
		return nil, fmt.Errorf("found %d rows: %w", len(rows), ErrLoadFailed)
	}

	b := EmptyBoard()
	for r, cells := range rows {
		for c, sym := range cells {
			if len(sym) != 1 {
				return nil, fmt.Errorf("cell %q at row %d: %w", sym, r+1, ErrLoadFailed)
			}
			cell, ok := cellFromSymbol(sym[0])
			if !ok {
				return nil, fmt.Errorf("cell %q at row %d: %w", sym, r+1, ErrLoadFailed)
			}
			b[r][c] = cell
		}
	}
	if b.IsEmpty() {
		return nil, fmt.Errorf("board has no pieces: %w", ErrLoadFailed)
	}
	return b, nil
}

// LoadBoardOrDefault parses text and falls back to fallback when the text is
// not a usable board. The returned error is the parse failure, if any.
func LoadBoardOrDefault(text string, fallback func() *Board) (*Board, error) {
	b, err := ParseBoard(text)
	if err != nil {
		return fallback(), err
	}
	return b, nil
}

// FormatBoard renders the board with column letters and row numbers. The
// output is accepted by ParseBoard.
func FormatBoard(b *Board) string {
	var sb strings.Builder
	header := func() {
		sb.WriteString("   ")
		for i := range Size {
			sb.WriteString(" ")
			sb.WriteByte(columnLetters[i])
			sb.WriteString("  ")
		}
		sb.WriteString("\n")
	}
	header()
	for r := range Size {
		fmt.Fprintf(&sb, "%d ", r+1)
		for c := range Size {
			sb.WriteString("| ")
			sb.WriteByte(b[r][c].Symbol())
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "| %d\n", r+1)
	}
	header()
	return sb.String()
}

func (b *Board) String() string { return FormatBoard(b) }

// String names the square as column letter then row number, e.g. "B1".
func (c Coord) String() string {
	if !c.OnBoard() {
		return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
	}
	return fmt.Sprintf("%c%d", columnLetters[c.Col], c.Row+1)
}

// ParseCoord accepts a square name such as "b1" or "B1".
func ParseCoord(s string) (Coord, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 2 {
		return Coord{}, fmt.Errorf("square %q: %w", s, ErrOffBoard)
	}
	col := strings.IndexByte(columnLetters, s[0])
	row := int(s[1]) - '1'
	c := Coord{Row: row, Col: col}
	if col < 0 || !c.OnBoard() {
		return Coord{}, fmt.Errorf("square %q: %w", s, ErrOffBoard)
	}
	return c, nil
}

// Notation renders the move from the given square: "C3-D4" for a step and
// "C3xE5xG7" for a capture chain.
func (m Move) Notation(from Coord) string {
	if !m.IsCapture() {
		return from.String() + "-" + m.To.String()
	}
	var sb strings.Builder
	sb.WriteString(from.String())
	cur := from
	for _, c := range m.Captured {
		landing := Coord{Row: 2*c.Row - cur.Row, Col: 2*c.Col - cur.Col}
		sb.WriteString("x")
		sb.WriteString(landing.String())
		cur = landing
	}
	return sb.String()
}

// MoveRequest is a move typed by a person: origin and destination squares.
type MoveRequest struct {
	From Coord
	To   Coord
}

// ParseMoveRequest accepts "c3 d4", "c3-d4", "c3xe5" and "c3d4".
func ParseMoveRequest(text string) (MoveRequest, error) {
	t := strings.ToLower(strings.TrimSpace(text))
	t = strings.NewReplacer(" ", "", "-", "", "x", "", ">", "").Replace(t)
	if len(t) < 4 {
		return MoveRequest{}, fmt.Errorf("move %q: %w", text, ErrIllegalMove)
	}
	from, err := ParseCoord(t[:2])
	if err != nil {
		return MoveRequest{}, fmt.Errorf("move %q: %w", text, ErrIllegalMove)
	}
	to, err := ParseCoord(t[len(t)-2:])
	if err != nil {
		return MoveRequest{}, fmt.Errorf("move %q: %w", text, ErrIllegalMove)
	}
	return MoveRequest{From: from, To: to}, nil
}

// ResolveMove maps a request onto piece and move indices usable with
// ForPlayer. When several chains end on the same square the longest one wins.
func ResolveMove(b *Board, player Player, advancesDownward bool, req MoveRequest) (pieceIndex, moveIndex int, err error) {
	pieceIndex = -1
	for i, p := range LocatePieces(b, player) {
		if p == req.From {
			pieceIndex = i
			break
		}
	}
	if pieceIndex < 0 {
		return -1, -1, fmt.Errorf("no %s piece on %s: %w", player, req.From, ErrIllegalMove)
	}
	moveIndex = -1
	best := -1
	for j, m := range MovesFor(b, player, req.From, advancesDownward) {
		if m.To == req.To && len(m.Captured) > best {
			moveIndex, best = j, len(m.Captured)
		}
	}
	if moveIndex < 0 {
		return -1, -1, fmt.Errorf("%s to %s: %w", req.From, req.To, ErrIllegalMove)
	}
	return pieceIndex, moveIndex, nil
}
