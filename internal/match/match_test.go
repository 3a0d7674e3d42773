package match

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/park285/Cheese-Checkers-bot/internal/bot"
	"github.com/park285/Cheese-Checkers-bot/internal/checkers"
)

func humanVsBot() []Seat {
	return []Seat{
		{Player: checkers.First, Name: "alice", Kind: Human},
		{Player: checkers.Second, Name: "bot", Kind: Bot, Preset: "hard"},
	}
}

func TestNewMatchDefaults(t *testing.T) {
	m, err := New(Options{Seats: humanVsBot()})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if m.ID == "" || m.Turn != checkers.First || m.TopPlayer != checkers.Second {
		t.Fatalf("unexpected defaults: id=%q turn=%v top=%v", m.ID, m.Turn, m.TopPlayer)
	}
	if m.Finished() {
		t.Fatalf("fresh match finished: %+v", m.Status)
	}
	if got := len(m.Log.InitialPieces[checkers.First]); got != 12 {
		t.Fatalf("initial pieces logged: %d", got)
	}
	if m.AdvancesDownward(checkers.First) {
		t.Fatalf("bottom side should advance upward")
	}
	if m.Seat(checkers.Second).Kind != Bot {
		t.Fatalf("seat lookup: %+v", m.Seat(checkers.Second))
	}
}

func TestNewMatchRequiresBothSeats(t *testing.T) {
	_, err := New(Options{Seats: []Seat{{Player: checkers.First}}})
	if !errors.Is(err, ErrSeats) {
		t.Fatalf("expected ErrSeats, got %v", err)
	}
}

func TestRestartSwapsTopSide(t *testing.T) {
	m, _ := New(Options{Seats: humanVsBot()})
	next, err := m.Restart(time.Now())
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if next.TopPlayer != checkers.First || next.ID == m.ID {
		t.Fatalf("restart kept order: top=%v", next.TopPlayer)
	}
	if next.Board.At(checkers.Coord{Row: 0, Col: 1}).Owner != checkers.First {
		t.Fatalf("first player should start on top after restart")
	}
	if next.Turn != checkers.First {
		t.Fatalf("first player always moves first")
	}
	if !next.AdvancesDownward(checkers.First) {
		t.Fatalf("top side must advance downward")
	}
}

func TestPlayAsValidatesTurnAndMove(t *testing.T) {
	m, _ := New(Options{Seats: humanVsBot()})
	req, _ := checkers.ParseMoveRequest("a6 b5")
	if _, err := m.PlayAs(checkers.Second, req); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}
	bad, _ := checkers.ParseMoveRequest("a6 a5")
	if _, err := m.PlayAs(checkers.First, bad); !errors.Is(err, checkers.ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove, got %v", err)
	}
	play, err := m.PlayAs(checkers.First, req)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if play.Move.To != (checkers.Coord{Row: 4, Col: 1}) {
		t.Fatalf("moved to %v", play.Move.To)
	}
	if m.Turn != checkers.Second || m.TurnCount != 1 || len(m.Log.Plays) != 1 {
		t.Fatalf("turn not advanced: %+v", m)
	}
	want := PlayRecord{
		Player:      checkers.First,
		Piece:       PieceRecord{Location: "A6"},
		Destination: "B5",
		Notation:    "A6-B5",
	}
	if diff := cmp.Diff(want, m.Log.Plays[0]); diff != "" {
		t.Fatalf("log entry mismatch (-want +got):\n%s", diff)
	}
}

func TestResignEndsMatch(t *testing.T) {
	m, _ := New(Options{Seats: humanVsBot()})
	if err := m.Resign(checkers.First, time.Now()); err != nil {
		t.Fatalf("resign: %v", err)
	}
	if !m.Finished() || m.Status.Winner != checkers.Second || m.Log.Winner != checkers.Second {
		t.Fatalf("resign status: %+v", m.Status)
	}
	if _, err := m.Play(0, 0); !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}
	if err := m.Resign(checkers.Second, time.Now()); !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected ErrGameOver on second resign, got %v", err)
	}
}

func TestCustomBoardTurnCount(t *testing.T) {
	b := checkers.EmptyBoard()
	b.Set(checkers.Coord{Row: 5, Col: 0}, checkers.Cell{Owner: checkers.First})
	b.Set(checkers.Coord{Row: 2, Col: 5}, checkers.Cell{Owner: checkers.Second, Rank: checkers.King})
	m, err := New(Options{Seats: humanVsBot(), Board: b, TurnCount: 3})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if m.Turn != checkers.Second {
		t.Fatalf("odd turn count should give the move to the second player")
	}
	if !m.Log.InitialPieces[checkers.Second][0].King {
		t.Fatalf("initial king not recorded")
	}
}

func TestBotsPlayToCompletion(t *testing.T) {
	m, _ := New(Options{Seats: []Seat{
		{Player: checkers.First, Kind: Bot},
		{Player: checkers.Second, Kind: Bot},
	}})
	x := bot.NewEvaluator(bot.WithSeed(21))
	o := bot.NewEvaluator(bot.WithSeed(22))
	for i := 0; i < 300 && !m.Finished(); i++ {
		c := x
		if m.Turn == checkers.Second {
			c = o
		}
		if _, _, err := m.PlayBot(c); err != nil {
			t.Fatalf("ply %d: %v", i, err)
		}
	}
	if len(m.Log.Plays) != m.TurnCount {
		t.Fatalf("log has %d plays for %d turns", len(m.Log.Plays), m.TurnCount)
	}
	if m.Finished() && m.Status.Outcome == checkers.Finished && m.Status.Winner == checkers.NoPlayer {
		t.Fatalf("finished without winner")
	}
}

func TestMatchJSONKeepsState(t *testing.T) {
	m, _ := New(Options{Seats: humanVsBot()})
	if _, _, err := m.PlayBot(bot.NewEvaluator(bot.WithSeed(1))); err != nil {
		t.Fatalf("bot play: %v", err)
	}
	raw, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Match
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(m, &back, cmpopts.IgnoreUnexported(Match{})); diff != "" {
		t.Fatalf("match changed through JSON (-want +got):\n%s", diff)
	}
}

func TestClockStampsUpdates(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	m, err := New(Options{Seats: humanVsBot(), Clock: clock})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !m.StartedAt.Equal(now) || !m.UpdatedAt.Equal(now) {
		t.Fatalf("start stamps %v / %v, want %v", m.StartedAt, m.UpdatedAt, now)
	}

	now = now.Add(time.Minute)
	req, _ := checkers.ParseMoveRequest("A6-B5")
	if _, err := m.PlayAs(checkers.First, req); err != nil {
		t.Fatalf("PlayAs: %v", err)
	}
	if !m.UpdatedAt.Equal(now) || !m.StartedAt.Equal(now.Add(-time.Minute)) {
		t.Fatalf("play stamped %v, want %v", m.UpdatedAt, now)
	}

	// A decoded match has no clock until one is set again.
	raw, _ := json.Marshal(m)
	var back Match
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	back.SetClock(clock)
	now = now.Add(time.Minute)
	if _, _, err := back.PlayBot(bot.NewEvaluator(bot.WithSeed(1))); err != nil {
		t.Fatalf("bot play: %v", err)
	}
	if !back.UpdatedAt.Equal(now) {
		t.Fatalf("decoded match stamped %v, want %v", back.UpdatedAt, now)
	}

	next, err := back.Restart(time.Time{})
	if err != nil {
		t.Fatalf("Restart: %v", err)
	}
	if !next.StartedAt.Equal(now) {
		t.Fatalf("restart should reuse the clock, started %v", next.StartedAt)
	}
}
