package command

import (
	"strconv"
	"strings"

	"github.com/park285/Cheese-Checkers-bot/internal/checkers"
)

// Kind tags a parsed chat command.
type Kind uint8

const (
	Unknown Kind = iota
	Help
	Board
	Start
	Status
	Move
	Hint
	Resign
	History
	Game
	Profile
	Prefer
)

func (k Kind) String() string {
	switch k {
	case Help:
		return "help"
	case Board:
		return "board"
	case Start:
		return "start"
	case Status:
		return "status"
	case Move:
		return "move"
	case Hint:
		return "hint"
	case Resign:
		return "resign"
	case History:
		return "history"
	case Game:
		return "game"
	case Profile:
		return "profile"
	case Prefer:
		return "prefer"
	default:
		return "unknown"
	}
}

// Command is one parsed request. Only the fields of its Kind are set.
type Command struct {
	Kind   Kind
	Preset string               // Start (optional), Prefer
	Move   string               // Move: the text as typed
	Req    checkers.MoveRequest // Move
	Limit  int                  // History; 0 means the configured default
	GameID int64                // Game
	Raw    string
}

var keywords = map[string]Kind{
	"help":    Help,
	"?":       Help,
	"board":   Board,
	"start":   Start,
	"new":     Start,
	"status":  Status,
	"move":    Move,
	"hint":    Hint,
	"resign":  Resign,
	"history": History,
	"game":    Game,
	"profile": Profile,
	"prefer":  Prefer,
}

// Parse reads the text after the bot prefix. An empty text asks for help and
// anything that is not a keyword is tried as a move.
func Parse(text string) Command {
	raw := strings.TrimSpace(text)
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return Command{Kind: Help, Raw: raw}
	}
	head := strings.ToLower(fields[0])
	args := fields[1:]

	kind, ok := keywords[head]
	if !ok {
		return parseMove(raw, raw)
	}

	cmd := Command{Kind: kind, Raw: raw}
	switch kind {
	case Start:
		if len(args) > 0 {
			cmd.Preset = strings.ToLower(args[0])
		}
	case Prefer:
		if len(args) == 0 {
			return Command{Kind: Unknown, Raw: raw}
		}
		cmd.Preset = strings.ToLower(args[0])
	case Move:
		return parseMove(strings.Join(args, " "), raw)
	case History:
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return Command{Kind: Unknown, Raw: raw}
			}
			cmd.Limit = n
		}
	case Game:
		if len(args) == 0 {
			return Command{Kind: Unknown, Raw: raw}
		}
		id, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
		if err != nil || id <= 0 {
			return Command{Kind: Unknown, Raw: raw}
		}
		cmd.GameID = id
	}
	return cmd
}

func parseMove(text, raw string) Command {
	req, err := checkers.ParseMoveRequest(text)
	if err != nil {
		return Command{Kind: Unknown, Raw: raw}
	}
	return Command{Kind: Move, Move: strings.TrimSpace(text), Req: req, Raw: raw}
}
