package match

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/park285/Cheese-Checkers-bot/internal/bot"
	"github.com/park285/Cheese-Checkers-bot/internal/checkers"
)

var (
	ErrGameOver    = errors.New("match: game already finished")
	ErrNotYourTurn = errors.New("match: not this player's turn")
	ErrSeats       = errors.New("match: both players need a seat")
)

type SeatKind uint8

const (
	Human SeatKind = iota
	Bot
)

func (k SeatKind) String() string {
	if k == Bot {
		return "bot"
	}
	return "human"
}

func (k SeatKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *SeatKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "bot":
		*k = Bot
	case "human", "":
		*k = Human
	default:
		return fmt.Errorf("unknown seat kind %q", text)
	}
	return nil
}

// Seat binds a player symbol to whoever controls it.
type Seat struct {
	Player checkers.Player `json:"player"`
	Name   string          `json:"name,omitempty"`
	Kind   SeatKind        `json:"kind"`
	// Preset is the bot preset for bot seats.
	Preset string `json:"preset,omitempty"`
}

// Match owns one game: its board, the seats, whose turn it is and which side
// starts on top. Nothing about player order lives outside this value.
type Match struct {
	ID        string          `json:"id"`
	Board     checkers.Board  `json:"board"`
	TopPlayer checkers.Player `json:"top_player"`
	Seats     []Seat          `json:"seats"`
	Turn      checkers.Player `json:"turn"`
	TurnCount int             `json:"turn_count"`
	Status    checkers.Status `json:"status"`
	Resigned  checkers.Player `json:"resigned,omitempty"`
	Log       Log             `json:"log"`
	StartedAt time.Time       `json:"started_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	LastPlay  *checkers.Play  `json:"last_play,omitempty"`

	// clock stamps UpdatedAt; it is not stored and falls back to time.Now.
	clock func() time.Time
}

type Options struct {
	ID    string
	Seats []Seat
	// TopPlayer starts on rows 0-2 and advances downward. Defaults to Second.
	TopPlayer checkers.Player
	// Board replaces the standard layout, e.g. a board loaded from text.
	Board *checkers.Board
	// TurnCount resumes a custom board; odd counts give the move to Second.
	TurnCount int
	Now       time.Time
	// Clock stamps later updates. Defaults to time.Now.
	Clock func() time.Time
}

func New(opts Options) (*Match, error) {
	seats, err := normalizeSeats(opts.Seats)
	if err != nil {
		return nil, err
	}
	top := opts.TopPlayer
	if top == checkers.NoPlayer {
		top = checkers.Second
	}
	var board checkers.Board
	if opts.Board != nil {
		board = *opts.Board
	} else {
		board = *checkers.NewStandardBoard(top)
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	now := opts.Now
	if now.IsZero() {
		now = clock()
	}
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}

	m := &Match{
		ID:        id,
		Board:     board,
		TopPlayer: top,
		Seats:     seats,
		Turn:      checkers.First,
		TurnCount: opts.TurnCount,
		StartedAt: now,
		UpdatedAt: now,
		clock:     clock,
	}
	if opts.TurnCount%2 == 1 {
		m.Turn = checkers.Second
	}
	m.Log = newLog(&m.Board, top)
	m.refreshStatus()
	return m, nil
}

func normalizeSeats(in []Seat) ([]Seat, error) {
	var first, second *Seat
	for i := range in {
		switch in[i].Player {
		case checkers.First:
			first = &in[i]
		case checkers.Second:
			second = &in[i]
		}
	}
	if first == nil || second == nil {
		return nil, ErrSeats
	}
	return []Seat{*first, *second}, nil
}

// Restart returns a fresh match with the same seats and the top side swapped.
func (m *Match) Restart(now time.Time) (*Match, error) {
	return New(Options{
		Seats:     append([]Seat(nil), m.Seats...),
		TopPlayer: m.TopPlayer.Opponent(),
		Now:       now,
		Clock:     m.clock,
	})
}

// SetClock replaces the clock, e.g. after the match was decoded from storage.
func (m *Match) SetClock(clock func() time.Time) { m.clock = clock }

func (m *Match) now() time.Time {
	if m.clock == nil {
		return time.Now()
	}
	return m.clock()
}

func (m *Match) AdvancesDownward(p checkers.Player) bool { return p == m.TopPlayer }

// Side is the player to move with its direction of travel.
func (m *Match) Side() checkers.Side {
	return checkers.Side{Player: m.Turn, AdvancesDownward: m.AdvancesDownward(m.Turn)}
}

func (m *Match) Seat(p checkers.Player) Seat {
	for _, s := range m.Seats {
		if s.Player == p {
			return s
		}
	}
	return Seat{}
}

func (m *Match) Finished() bool { return m.Status.Outcome != checkers.Ongoing }

// Pieces numbers the pieces of the side to move.
func (m *Match) Pieces() []checkers.Coord { return checkers.LocatePieces(&m.Board, m.Turn) }

// Options lists the movable pieces of the side to move.
func (m *Match) Options() []checkers.PlayableOption {
	s := m.Side()
	return checkers.PlayableOptions(&m.Board, s.Player, s.AdvancesDownward)
}

// Select returns the moves of piece pieceIndex of the side to move.
func (m *Match) Select(pieceIndex int) (*checkers.Selection, error) {
	s := m.Side()
	return checkers.ForPlayer(&m.Board, s.Player, s.AdvancesDownward).Select(pieceIndex)
}

// Play executes move moveIndex of piece pieceIndex for the side to move.
func (m *Match) Play(pieceIndex, moveIndex int) (checkers.Play, error) {
	if m.Finished() {
		return checkers.Play{}, ErrGameOver
	}
	sel, err := m.Select(pieceIndex)
	if err != nil {
		return checkers.Play{}, err
	}
	play, err := sel.Execute(moveIndex)
	if err != nil {
		return checkers.Play{}, err
	}
	m.commit(play)
	return play, nil
}

// PlayAs is Play for a named player; it fails when it is not their turn.
func (m *Match) PlayAs(p checkers.Player, req checkers.MoveRequest) (checkers.Play, error) {
	if m.Finished() {
		return checkers.Play{}, ErrGameOver
	}
	if p != m.Turn {
		return checkers.Play{}, ErrNotYourTurn
	}
	s := m.Side()
	pi, mi, err := checkers.ResolveMove(&m.Board, s.Player, s.AdvancesDownward, req)
	if err != nil {
		return checkers.Play{}, err
	}
	return m.Play(pi, mi)
}

// Chooser picks a move without modifying the board.
type Chooser interface {
	Suggest(b *checkers.Board, player checkers.Player, advancesDownward bool) (bot.Choice, error)
}

// PlayBot lets c move for the side to move.
func (m *Match) PlayBot(c Chooser) (checkers.Play, bot.Choice, error) {
	if m.Finished() {
		return checkers.Play{}, bot.Choice{}, ErrGameOver
	}
	s := m.Side()
	choice, err := c.Suggest(&m.Board, s.Player, s.AdvancesDownward)
	if err != nil {
		return checkers.Play{}, bot.Choice{}, err
	}
	play, err := m.Play(choice.Candidate.Piece, choice.Candidate.Move)
	if err != nil {
		return checkers.Play{}, bot.Choice{}, err
	}
	return play, choice, nil
}

// Resign ends the match in favour of p's opponent.
func (m *Match) Resign(p checkers.Player, now time.Time) error {
	if m.Finished() {
		return ErrGameOver
	}
	m.Resigned = p
	m.Status = checkers.Status{Outcome: checkers.Finished, Winner: p.Opponent()}
	m.Log.Status = m.Status.Outcome
	m.Log.Winner = m.Status.Winner
	m.UpdatedAt = now
	return nil
}

func (m *Match) commit(play checkers.Play) {
	m.Log.Plays = append(m.Log.Plays, recordPlay(play))
	m.LastPlay = &play
	m.Turn = m.Turn.Opponent()
	m.TurnCount++
	m.UpdatedAt = m.now()
	m.refreshStatus()
}

func (m *Match) refreshStatus() {
	m.Status = checkers.GameStatus(&m.Board, m.Side())
	m.Log.Status = m.Status.Outcome
	m.Log.Winner = m.Status.Winner
}
