package checkers

import "fmt"

// Play records one executed move.
type Play struct {
	Player   Player
	From     Coord
	Move     Move
	WasKing  bool
	Promoted bool
}

// Controller is the turn-scoped view of one side: it numbers the pieces and
// executes the selected move on the shared board.
type Controller struct {
	board  *Board
	player Player
	down   bool
	pieces []Coord
}

func ForPlayer(b *Board, player Player, advancesDownward bool) *Controller {
	return &Controller{
		board:  b,
		player: player,
		down:   advancesDownward,
		pieces: LocatePieces(b, player),
	}
}

func (c *Controller) Player() Player { return c.player }

func (c *Controller) Pieces() []Coord { return append([]Coord(nil), c.pieces...) }

// Selection is a chosen piece together with its available moves.
type Selection struct {
	ctrl  *Controller
	Index int
	From  Coord
	Moves []Move
}

func (c *Controller) Select(pieceIndex int) (*Selection, error) {
	if pieceIndex < 0 || pieceIndex >= len(c.pieces) {
		return nil, fmt.Errorf("piece %d of %d: %w", pieceIndex, len(c.pieces), ErrInvalidIndex)
	}
	from := c.pieces[pieceIndex]
	return &Selection{
		ctrl:  c,
		Index: pieceIndex,
		From:  from,
		Moves: MovesFor(c.board, c.player, from, c.down),
	}, nil
}

func (s *Selection) Execute(moveIndex int) (Play, error) {
	if moveIndex < 0 || moveIndex >= len(s.Moves) {
		return Play{}, fmt.Errorf("move %d of %d: %w", moveIndex, len(s.Moves), ErrInvalidIndex)
	}
	return ApplyMove(s.ctrl.board, s.ctrl.player, s.ctrl.down, s.From, s.Moves[moveIndex]), nil
}

// ApplyMove removes the captured pieces, moves the piece and promotes it when
// it lands on the farthest row. The move is not validated.
func ApplyMove(b *Board, player Player, advancesDownward bool, from Coord, m Move) Play {
	piece := b.At(from)
	for _, c := range m.Captured {
		b.Clear(c)
	}
	b.Clear(from)

	play := Play{Player: player, From: from, Move: m, WasKing: piece.Rank == King}
	if piece.Rank != King && m.To.Row == PromotionRow(advancesDownward) {
		piece.Rank = King
		play.Promoted = true
	}
	piece.Owner = player
	b.Set(m.To, piece)
	return play
}

// PlayableOption is a piece that has at least one move. Index is the piece
// number in LocatePieces order.
type PlayableOption struct {
	Index int
	Piece Coord
	Moves []Move
}

func PlayableOptions(b *Board, player Player, advancesDownward bool) []PlayableOption {
	var out []PlayableOption
	for i, p := range LocatePieces(b, player) {
		moves := MovesFor(b, player, p, advancesDownward)
		if len(moves) == 0 {
			continue
		}
		out = append(out, PlayableOption{Index: i, Piece: p, Moves: moves})
	}
	return out
}

// HasAnyMove reports whether the side has at least one legal move.
func HasAnyMove(b *Board, player Player, advancesDownward bool) bool {
	for _, p := range LocatePieces(b, player) {
		if len(MovesFor(b, player, p, advancesDownward)) > 0 {
			return true
		}
	}
	return false
}
