package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rivo/tview"
	"go.uber.org/zap"

	"github.com/park285/Cheese-Checkers-bot/internal/bot"
	"github.com/park285/Cheese-Checkers-bot/internal/checkers"
	appcfg "github.com/park285/Cheese-Checkers-bot/internal/config"
	"github.com/park285/Cheese-Checkers-bot/internal/match"
	"github.com/park285/Cheese-Checkers-bot/internal/obslog"
)

func main() {
	cfg := appcfg.LoadLocal()

	botSide := flag.String("bot", "o", "side played by the bot: x, o or none")
	preset := flag.String("preset", cfg.CheckersDefaultPreset, "bot preset")
	boardFile := flag.String("board", cfg.CheckersBoardFile, "start from a saved board")
	turn := flag.Int("turn", 0, "moves already played on the saved board")
	seed := flag.Int64("seed", time.Now().UnixNano(), "bot tie-break seed")
	flag.Parse()

	logOpts := obslog.OptionsFromEnv()
	if os.Getenv("LOG_TO_CONSOLE") == "" {
		// 콘솔은 보드 출력용
		logOpts.Console = false
	}
	zl, err := obslog.Build(logOpts)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	obslog.Replace(zl)
	defer obslog.Sync()
	logger := obslog.Named("terminal")

	p, err := bot.GetPreset(*preset)
	if err != nil {
		log.Fatal(err)
	}
	eval := bot.NewEvaluator(bot.WithPreset(p), bot.WithSeed(*seed), bot.WithLogger(logger.Named("bot")))

	seats, err := seatsFor(*botSide, p.Name)
	if err != nil {
		log.Fatal(err)
	}
	opts := match.Options{Seats: seats, TopPlayer: checkers.Second}
	if *boardFile != "" {
		opts.Board = loadBoard(*boardFile, opts.TopPlayer, logger)
		opts.TurnCount = *turn
	}
	m, err := match.New(opts)
	if err != nil {
		log.Fatal(err)
	}

	app := tview.NewApplication()
	hint := tview.NewTextView().SetDynamicColors(true)
	ui := newBoardUI(newGame(m, eval, logger), hint, func(fn func()) {
		// 입력 핸들러 안에서 바로 큐에 넣으면 교착되므로 고루틴에서 넣음
		go app.QueueUpdateDraw(fn)
	}, app.Stop, logger)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(ui.Box, checkers.Size+2, 0, true).
		AddItem(hint, 0, 1, false)
	app.SetInputCapture(ui.handleKey)
	ui.start()
	if err := app.SetRoot(layout, true).Run(); err != nil {
		logger.Error("terminal_failed", zap.Error(err))
		os.Exit(1)
	}
}

func seatsFor(botSide, preset string) ([]match.Seat, error) {
	seats := []match.Seat{
		{Player: checkers.First, Kind: match.Human},
		{Player: checkers.Second, Kind: match.Human},
	}
	if botSide == "none" {
		return seats, nil
	}
	p, err := checkers.ParsePlayer(botSide)
	if err != nil {
		return nil, fmt.Errorf("-bot: %w", err)
	}
	for i := range seats {
		if seats[i].Player == p {
			seats[i] = match.Seat{Player: p, Kind: match.Bot, Name: "Bot", Preset: preset}
		}
	}
	return seats, nil
}

// loadBoard reads a saved board; an unreadable or malformed file falls back
// to the standard layout.
func loadBoard(path string, top checkers.Player, logger *zap.Logger) *checkers.Board {
	standard := func() *checkers.Board { return checkers.NewStandardBoard(top) }
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("board_file_unreadable", zap.String("path", path), zap.Error(err))
		return standard()
	}
	b, err := checkers.LoadBoardOrDefault(string(data), standard)
	if err != nil {
		logger.Warn("board_file_invalid", zap.String("path", path), zap.Error(err))
	}
	return b
}
