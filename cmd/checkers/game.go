package main

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/park285/Cheese-Checkers-bot/internal/bot"
	"github.com/park285/Cheese-Checkers-bot/internal/checkers"
	"github.com/park285/Cheese-Checkers-bot/internal/match"
)

type phase uint8

const (
	choosingPiece phase = iota
	choosingDest
	gameOver
)

// game walks one terminal session through piece and destination choices.
// It does no drawing; the board view reads its state after every call.
type game struct {
	m      *match.Match
	bot    *bot.Evaluator
	logger *zap.Logger
	clock  func() time.Time

	phase   phase
	pieces  []checkers.Coord
	piece   int
	sel     *checkers.Selection
	message string
}

func newGame(m *match.Match, eval *bot.Evaluator, logger *zap.Logger) *game {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &game{m: m, bot: eval, logger: logger, clock: time.Now}
	g.settle()
	return g
}

// settle moves to the phase that fits the match after a play or restart.
func (g *game) settle() {
	g.sel = nil
	g.piece = -1
	if g.m.Finished() {
		g.phase = gameOver
		g.pieces = nil
		g.logger.Info("game_finished",
			zap.String("outcome", g.m.Status.Outcome.String()),
			zap.String("winner", g.m.Status.Winner.String()),
			zap.Int("turns", g.m.TurnCount),
		)
		return
	}
	g.phase = choosingPiece
	g.pieces = g.m.Pieces()
}

func (g *game) turnLine() string {
	return fmt.Sprintf("- Player %q | turn %d -", string(g.m.Turn.Symbol()), g.m.TurnCount/2+1)
}

func (g *game) resultLine() string {
	switch g.m.Status.Outcome {
	case checkers.Finished:
		return fmt.Sprintf("* The WINNER is %q !! *", string(g.m.Status.Winner.Symbol()))
	case checkers.Tied:
		return "* The game is TIED !! *"
	}
	return ""
}

// options lists the numbered choices of the current phase.
func (g *game) options() []string {
	switch g.phase {
	case choosingPiece:
		out := make([]string, 0, len(g.pieces)+1)
		out = append(out, "Select a piece to play:")
		for i, c := range g.pieces {
			out = append(out, fmt.Sprintf("%d) %s", i+1, c))
		}
		return out
	case choosingDest:
		out := make([]string, 0, len(g.sel.Moves)+2)
		out = append(out, "Select a place to play into:", "0) go back")
		for i, mv := range g.sel.Moves {
			line := fmt.Sprintf("%d) %s", i+1, mv.To)
			if mv.IsCapture() {
				line += " // Pieces captured: " + joinCoords(mv.Captured)
			}
			out = append(out, line)
		}
		return out
	}
	return nil
}

// humanToMove reports whether the side to move waits for key input.
func (g *game) humanToMove() bool {
	return g.phase != gameOver && g.m.Seat(g.m.Turn).Kind == match.Human
}

func (g *game) botToMove() bool {
	return g.phase != gameOver && g.m.Seat(g.m.Turn).Kind == match.Bot
}

// pick takes a 1-based option number. In the destination list 0 goes back.
func (g *game) pick(n int) error {
	if !g.humanToMove() {
		return nil
	}
	switch g.phase {
	case choosingPiece:
		if n < 1 || n > len(g.pieces) {
			g.message = fmt.Sprintf("There is no piece %d.", n)
			return nil
		}
		return g.selectPiece(n - 1)
	case choosingDest:
		if n == 0 {
			g.back()
			return nil
		}
		if n > len(g.sel.Moves) {
			g.message = fmt.Sprintf("There is no place %d.", n)
			return nil
		}
		return g.playMove(n - 1)
	}
	return nil
}

// pickSquare chooses by square: an own piece selects it, a listed destination
// plays there.
func (g *game) pickSquare(c checkers.Coord) error {
	if !g.humanToMove() {
		return nil
	}
	if i := slices.Index(g.pieces, c); i >= 0 {
		return g.selectPiece(i)
	}
	if g.phase == choosingDest {
		if i := slices.IndexFunc(g.sel.Moves, func(mv checkers.Move) bool { return mv.To == c }); i >= 0 {
			return g.playMove(i)
		}
	}
	g.message = fmt.Sprintf("%s is not a choice.", c)
	return nil
}

func (g *game) back() {
	if g.phase != choosingDest {
		return
	}
	g.phase = choosingPiece
	g.sel = nil
	g.piece = -1
	g.message = ""
}

func (g *game) selectPiece(i int) error {
	sel, err := g.m.Select(i)
	if err != nil {
		return err
	}
	if len(sel.Moves) == 0 {
		g.back()
		g.message = fmt.Sprintf("%s has no moves.", sel.From)
		return nil
	}
	g.phase = choosingDest
	g.piece = i
	g.sel = sel
	g.message = ""
	return nil
}

func (g *game) playMove(i int) error {
	play, err := g.m.Play(g.piece, i)
	if err != nil {
		return err
	}
	g.message = fmt.Sprintf("%s plays %s", seatName(g.m.Seat(play.Player)), play.Move.Notation(play.From))
	g.settle()
	return nil
}

func (g *game) playBot() error {
	if !g.botToMove() {
		return nil
	}
	play, choice, err := g.m.PlayBot(g.bot)
	if err != nil {
		return fmt.Errorf("bot move: %w", err)
	}
	notation := play.Move.Notation(play.From)
	g.message = fmt.Sprintf("%s plays %s", seatName(g.m.Seat(play.Player)), notation)
	g.logger.Debug("bot_move",
		zap.String("move", notation),
		zap.Int("points", choice.Candidate.Points),
		zap.Int("ties", choice.Ties),
	)
	g.settle()
	return nil
}

// restart starts the next game with the top side swapped.
func (g *game) restart() error {
	if g.phase != gameOver {
		return nil
	}
	next, err := g.m.Restart(g.clock())
	if err != nil {
		return err
	}
	g.logger.Info("game_restarted", zap.String("top", next.TopPlayer.String()))
	g.m = next
	g.message = ""
	g.settle()
	return nil
}

// selected is the square of the chosen piece, if any.
func (g *game) selected() (checkers.Coord, bool) {
	if g.sel == nil {
		return checkers.Coord{}, false
	}
	return g.sel.From, true
}

func (g *game) targets() []checkers.Coord {
	if g.sel == nil {
		return nil
	}
	out := make([]checkers.Coord, len(g.sel.Moves))
	for i, mv := range g.sel.Moves {
		out[i] = mv.To
	}
	return out
}

func seatName(s match.Seat) string {
	if s.Name != "" {
		return s.Name
	}
	return "Player " + string(s.Player.Symbol())
}

func joinCoords(cs []checkers.Coord) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
