package command

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/park285/Cheese-Checkers-bot/internal/checkers"
)

func TestParse(t *testing.T) {
	a6 := checkers.Coord{Row: 5, Col: 0}
	b5 := checkers.Coord{Row: 4, Col: 1}
	c4 := checkers.Coord{Row: 3, Col: 2}

	cases := []struct {
		in   string
		want Command
	}{
		{"", Command{Kind: Help}},
		{"  HELP ", Command{Kind: Help, Raw: "HELP"}},
		{"board", Command{Kind: Board, Raw: "board"}},
		{"start", Command{Kind: Start, Raw: "start"}},
		{"start Normal", Command{Kind: Start, Preset: "normal", Raw: "start Normal"}},
		{"status", Command{Kind: Status, Raw: "status"}},
		{"a6-b5", Command{Kind: Move, Move: "a6-b5", Req: checkers.MoveRequest{From: a6, To: b5}, Raw: "a6-b5"}},
		{"a6 b5", Command{Kind: Move, Move: "a6 b5", Req: checkers.MoveRequest{From: a6, To: b5}, Raw: "a6 b5"}},
		{"move A6xC4", Command{Kind: Move, Move: "A6xC4", Req: checkers.MoveRequest{From: a6, To: c4}, Raw: "move A6xC4"}},
		{"move", Command{Kind: Unknown, Raw: "move"}},
		{"hint", Command{Kind: Hint, Raw: "hint"}},
		{"resign", Command{Kind: Resign, Raw: "resign"}},
		{"history", Command{Kind: History, Raw: "history"}},
		{"history 5", Command{Kind: History, Limit: 5, Raw: "history 5"}},
		{"history -1", Command{Kind: Unknown, Raw: "history -1"}},
		{"game #12", Command{Kind: Game, GameID: 12, Raw: "game #12"}},
		{"game", Command{Kind: Unknown, Raw: "game"}},
		{"game abc", Command{Kind: Unknown, Raw: "game abc"}},
		{"profile", Command{Kind: Profile, Raw: "profile"}},
		{"prefer EASY", Command{Kind: Prefer, Preset: "easy", Raw: "prefer EASY"}},
		{"prefer", Command{Kind: Unknown, Raw: "prefer"}},
		{"dance", Command{Kind: Unknown, Raw: "dance"}},
	}
	for _, tc := range cases {
		got := Parse(tc.in)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("Parse(%q) (-want +got):\n%s", tc.in, diff)
		}
	}
}

func TestKindString(t *testing.T) {
	for k := Unknown; k <= Prefer; k++ {
		if k.String() == "" {
			t.Fatalf("kind %d has no name", k)
		}
	}
	if Prefer.String() != "prefer" || Kind(200).String() != "unknown" {
		t.Fatalf("unexpected names")
	}
}
