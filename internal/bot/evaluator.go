package bot

import (
	"fmt"
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/park285/Cheese-Checkers-bot/internal/checkers"
	"go.uber.org/zap"
)

// ScoredCandidate is one (piece, move) pair with its accumulated points.
// Piece is the piece number in LocatePieces order and Move indexes the moves
// of that piece, matching Controller.Select and Selection.Execute.
type ScoredCandidate struct {
	Piece  int
	Move   int
	From   checkers.Coord
	Points int
}

// Choice is the candidate picked by the evaluator.
type Choice struct {
	Candidate  ScoredCandidate
	Move       checkers.Move
	Candidates int
	Ties       int
	Duration   time.Duration
}

type Evaluator struct {
	preset  Preset
	weights Weights
	logger  *zap.Logger

	randMu sync.Mutex
	rand   *rand.Rand
}

type Option func(*Evaluator)

func WithPreset(p Preset) Option { return func(e *Evaluator) { e.preset = p } }

func WithWeights(w Weights) Option { return func(e *Evaluator) { e.weights = w } }

// WithRand injects the source used to break final ties.
func WithRand(r *rand.Rand) Option { return func(e *Evaluator) { e.rand = r } }

func WithSeed(seed int64) Option {
	return func(e *Evaluator) { e.rand = rand.New(rand.NewSource(seed)) }
}

func WithLogger(l *zap.Logger) Option { return func(e *Evaluator) { e.logger = l } }

func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{
		preset:  DefaultPresets[DefaultPresetName],
		weights: DefaultWeights(),
		rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

func (e *Evaluator) Preset() Preset { return e.preset }

// WithPresetName returns an evaluator sharing weights and logger but playing
// at another preset. The random source is seeded from the receiver.
func (e *Evaluator) WithPresetName(name string) (*Evaluator, error) {
	p, err := GetPreset(name)
	if err != nil {
		return nil, err
	}
	e.randMu.Lock()
	seed := e.rand.Int63()
	e.randMu.Unlock()
	return NewEvaluator(WithPreset(p), WithWeights(e.weights), WithLogger(e.logger), WithSeed(seed)), nil
}

// ScoreMoves scores every move of the given options for player. The passes
// are additive: captures, threat exposure, quiet moves and promotion. At the
// top level (simulating false) the tied best moves get a tie-break and every
// move is penalised by the opponent's best reply; simulated calls skip that
// step so the lookahead stops after one ply.
func (e *Evaluator) ScoreMoves(b *checkers.Board, player checkers.Player, advancesDownward bool, options []checkers.PlayableOption, simulating bool) []ScoredCandidate {
	w := e.weights
	threats := allMoves(b, player.Opponent(), !advancesDownward)

	var out []ScoredCandidate
	for _, opt := range options {
		king := checkers.CellIsKing(b, opt.Piece)

		exposure := 0
		for _, m := range threats {
			if m.Captures(opt.Piece) {
				exposure += len(m.Captured)
			}
		}
		bonus := 0
		if exposure > 0 {
			bonus = w.threat(king) * exposure
		}

		for j, m := range opt.Moves {
			pts := bonus
			if m.IsCapture() {
				pts += w.capture(capturesKing(b, m)) * len(m.Captured)
			} else {
				pts += w.Quiet
			}
			if !king && m.To.Row == checkers.PromotionRow(advancesDownward) {
				pts += w.Promotion
			}
			out = append(out, ScoredCandidate{Piece: opt.Index, Move: j, From: opt.Piece, Points: pts})
		}
	}

	if !simulating && len(out) > 0 {
		moves := indexMoves(options)
		e.breakTies(b, player, advancesDownward, out, moves)
		e.penalise(b, player, advancesDownward, out, moves)
	}
	return out
}

// breakTies adds points to the moves sharing the best raw score: more and
// longer follow-up captures for the mover, and for quiet baseline moves a
// bonus when the piece cannot be taken on the next turn.
func (e *Evaluator) breakTies(b *checkers.Board, player checkers.Player, down bool, cands []ScoredCandidate, moves map[int][]checkers.Move) {
	best := cands[0].Points
	for _, c := range cands[1:] {
		best = max(best, c.Points)
	}
	var tied []int
	for i, c := range cands {
		if c.Points == best {
			tied = append(tied, i)
		}
	}
	if len(tied) < 2 {
		return
	}

	w := e.weights
	for _, i := range tied {
		c := cands[i]
		m := moves[c.Piece][c.Move]
		sim := b.Clone()
		checkers.ApplyMove(sim, player, down, c.From, m)

		count, longest := 0, 0
		for _, fm := range allMoves(sim, player, down) {
			if fm.IsCapture() {
				count++
				longest = max(longest, len(fm.Captured))
			}
		}
		extra := 0
		if count > 0 {
			extra += w.FutureCapture*longest + (count - 1)
		}
		if best == w.Quiet && !capturable(sim, player.Opponent(), !down, m.To) {
			extra += w.SafeQuietBonus
		}
		cands[i].Points += extra
	}
}

// penalise simulates every move, scores the opponent's replies without
// further lookahead and ranks the resulting reply values. Moves leading to
// the weakest replies gain points and the rest lose points by rank.
func (e *Evaluator) penalise(b *checkers.Board, player checkers.Player, down bool, cands []ScoredCandidate, moves map[int][]checkers.Move) {
	w := e.weights
	altered := make([]int, len(cands))

	for i, c := range cands {
		m := moves[c.Piece][c.Move]
		sim := b.Clone()
		checkers.ApplyMove(sim, player, down, c.From, m)
		altered[i] = e.replyValue(sim, player, down, m)
	}

	buckets := slices.Clone(altered)
	slices.Sort(buckets)
	buckets = slices.Compact(buckets)
	for i := range cands {
		rank, _ := slices.BinarySearch(buckets, altered[i])
		cands[i].Points -= rank - w.PenaltyOffset
	}
}

// replyValue is the opponent's best reply score on sim, the board after m
// was played. When the moved piece can be taken at once the score is
// multiplied by the killable weight; a multi-capture halves that product,
// rounding up.
func (e *Evaluator) replyValue(sim *checkers.Board, player checkers.Player, down bool, m checkers.Move) int {
	opp := player.Opponent()
	result := 0
	for _, r := range e.ScoreMoves(sim, opp, !down, checkers.PlayableOptions(sim, opp, !down), true) {
		result = max(result, r.Points)
	}
	if !capturable(sim, opp, !down, m.To) {
		return result
	}
	value := result * e.weights.killable(checkers.CellIsKing(sim, m.To))
	if len(m.Captured) > 1 {
		value = (value + 1) / 2
	}
	return value
}

// Suggest picks a move for player without touching b.
func (e *Evaluator) Suggest(b *checkers.Board, player checkers.Player, advancesDownward bool) (Choice, error) {
	start := time.Now()
	options := checkers.PlayableOptions(b, player, advancesDownward)

	var cands []ScoredCandidate
	switch {
	case !e.preset.Heuristic:
		for _, opt := range options {
			for j := range opt.Moves {
				cands = append(cands, ScoredCandidate{Piece: opt.Index, Move: j, From: opt.Piece})
			}
		}
	case !e.preset.Lookahead:
		cands = e.ScoreMoves(b, player, advancesDownward, options, true)
	default:
		cands = e.ScoreMoves(b, player, advancesDownward, options, false)
	}
	if len(cands) == 0 {
		e.logger.Error("bot_no_legal_move",
			zap.String("player", player.String()),
			zap.String("preset", e.preset.Name),
		)
		return Choice{}, fmt.Errorf("bot %s: %w", player, checkers.ErrNoLegalMove)
	}

	top := cands[0].Points
	for _, c := range cands[1:] {
		top = max(top, c.Points)
	}
	var ties []ScoredCandidate
	for _, c := range cands {
		if c.Points == top {
			ties = append(ties, c)
		}
	}
	picked := ties[0]
	if len(ties) > 1 {
		e.randMu.Lock()
		picked = ties[e.rand.Intn(len(ties))]
		e.randMu.Unlock()
	}

	moves := indexMoves(options)
	choice := Choice{
		Candidate:  picked,
		Move:       moves[picked.Piece][picked.Move],
		Candidates: len(cands),
		Ties:       len(ties),
		Duration:   time.Since(start),
	}
	e.logger.Debug("bot_move",
		zap.String("player", player.String()),
		zap.String("preset", e.preset.Name),
		zap.String("move", choice.Move.Notation(picked.From)),
		zap.Int("points", picked.Points),
		zap.Int("candidates", choice.Candidates),
		zap.Int("ties", choice.Ties),
		zap.Duration("duration", choice.Duration),
	)
	return choice, nil
}

// ChooseMove picks a move and executes it on b through the turn controller.
func (e *Evaluator) ChooseMove(b *checkers.Board, player checkers.Player, advancesDownward bool) (checkers.Play, Choice, error) {
	choice, err := e.Suggest(b, player, advancesDownward)
	if err != nil {
		return checkers.Play{}, Choice{}, err
	}
	sel, err := checkers.ForPlayer(b, player, advancesDownward).Select(choice.Candidate.Piece)
	if err != nil {
		return checkers.Play{}, Choice{}, fmt.Errorf("select bot piece: %w", err)
	}
	play, err := sel.Execute(choice.Candidate.Move)
	if err != nil {
		return checkers.Play{}, Choice{}, fmt.Errorf("execute bot move: %w", err)
	}
	return play, choice, nil
}

func allMoves(b *checkers.Board, player checkers.Player, down bool) []checkers.Move {
	var out []checkers.Move
	for _, p := range checkers.LocatePieces(b, player) {
		out = append(out, checkers.MovesFor(b, player, p, down)...)
	}
	return out
}

// capturable reports whether any move of attacker jumps the square c.
func capturable(b *checkers.Board, attacker checkers.Player, down bool, c checkers.Coord) bool {
	for _, m := range allMoves(b, attacker, down) {
		if m.Captures(c) {
			return true
		}
	}
	return false
}

func capturesKing(b *checkers.Board, m checkers.Move) bool {
	for _, c := range m.Captured {
		if checkers.CellIsKing(b, c) {
			return true
		}
	}
	return false
}

func indexMoves(options []checkers.PlayableOption) map[int][]checkers.Move {
	out := make(map[int][]checkers.Move, len(options))
	for _, o := range options {
		out[o.Index] = o.Moves
	}
	return out
}
