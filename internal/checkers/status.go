package checkers

import "fmt"

// Outcome is the state of a game as seen from the side to move.
type Outcome uint8

const (
	Ongoing Outcome = iota
	Finished
	Tied
)

func (o Outcome) String() string {
	switch o {
	case Finished:
		return "finished"
	case Tied:
		return "tied"
	default:
		return "ongoing"
	}
}

// Status carries the outcome and, when Finished, the winner.
type Status struct {
	Outcome Outcome
	Winner  Player
}

// Side is the player to move together with its direction of travel.
type Side struct {
	Player           Player
	AdvancesDownward bool
}

func (s Side) Opponent() Side {
	return Side{Player: s.Player.Opponent(), AdvancesDownward: !s.AdvancesDownward}
}

// GameStatus evaluates the board for the side about to move. A side without
// pieces loses. A side without moves loses when the opponent can still move
// and ties otherwise.
func GameStatus(b *Board, side Side) Status {
	opp := side.Opponent()
	if b.Count(side.Player) == 0 {
		return Status{Outcome: Finished, Winner: opp.Player}
	}
	if b.Count(opp.Player) == 0 {
		return Status{Outcome: Finished, Winner: side.Player}
	}
	if !HasAnyMove(b, side.Player, side.AdvancesDownward) {
		if HasAnyMove(b, opp.Player, opp.AdvancesDownward) {
			return Status{Outcome: Finished, Winner: opp.Player}
		}
		return Status{Outcome: Tied}
	}
	return Status{Outcome: Ongoing}
}

func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *Outcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "ongoing", "":
		*o = Ongoing
	case "finished":
		*o = Finished
	case "tied":
		*o = Tied
	default:
		return fmt.Errorf("unknown outcome %q", text)
	}
	return nil
}
