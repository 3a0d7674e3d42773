package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"github.com/park285/Cheese-Checkers-bot/internal/checkers"
)

const keyHelp = `  hjkl/↑↓←→ move   ⏎ pick square or typed number
  0/esc go back   ? help   b text board   q quit`

const (
	cellWidth = 3
	// boardLeft leaves room for the row numbers.
	boardLeft = 3
)

var (
	lightSquare = tcell.StyleDefault.Background(tcell.ColorBurlyWood)
	darkSquare  = tcell.StyleDefault.Background(tcell.ColorSaddleBrown)
	labelStyle  = tcell.StyleDefault
	cursorBG    = tcell.ColorTeal
	selectedBG  = tcell.ColorDarkGreen
	targetBG    = tcell.ColorOlive
	lastPlayBG  = tcell.ColorDarkSlateGray
)

// boardUI draws the match in a tview.Box and turns key presses into game
// choices. The hint view lists the numbered options of the current phase.
type boardUI struct {
	Box    *tview.Box
	hint   *tview.TextView
	g      *game
	logger *zap.Logger

	curRow, curCol int
	digits         string
	showHelp       bool
	showText       bool

	// schedule runs a bot turn later on the UI goroutine.
	schedule func(func())
	stop     func()
	botBusy  bool
}

func newBoardUI(g *game, hint *tview.TextView, schedule func(func()), stop func(), logger *zap.Logger) *boardUI {
	if logger == nil {
		logger = zap.NewNop()
	}
	u := &boardUI{
		Box:      tview.NewBox(),
		hint:     hint,
		g:        g,
		logger:   logger,
		schedule: schedule,
		stop:     stop,
		showHelp: true,
	}
	u.Box.SetDrawFunc(u.draw)
	u.syncCursor()
	return u
}

// start shows the first position and lets a bot that moves first play.
func (u *boardUI) start() {
	u.refresh()
	u.maybeBot()
}

func (u *boardUI) draw(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	b := &u.g.m.Board
	sel, hasSel := u.g.selected()
	targets := u.g.targets()
	var last *checkers.Coord
	if lp := u.g.m.LastPlay; lp != nil {
		last = &lp.Move.To
	}

	for r := range checkers.Size {
		for c := range checkers.Size {
			pos := checkers.Coord{Row: r, Col: c}
			style := lightSquare
			if (r+c)%2 == 1 {
				style = darkSquare
			}
			switch {
			case r == u.curRow && c == u.curCol:
				style = style.Background(cursorBG)
			case hasSel && pos == sel:
				style = style.Background(selectedBG)
			case slices.Contains(targets, pos):
				style = style.Background(targetBG)
			case last != nil && pos == *last:
				style = style.Background(lastPlayBG)
			}
			drawCell(screen, style, b.At(pos), x+boardLeft+c*cellWidth, y+r)
		}
	}
	u.drawCoordinates(screen, x, y)
	return x, y, checkers.Size*cellWidth + boardLeft, checkers.Size + 1
}

// drawCell draws one square three characters wide with the piece centred.
func drawCell(s tcell.Screen, style tcell.Style, cell checkers.Cell, left, top int) {
	r := ' '
	if !cell.Empty() {
		r = rune(cell.Symbol())
		if cell.Owner == checkers.First {
			style = style.Foreground(tcell.ColorWhite)
		} else {
			style = style.Foreground(tcell.ColorBlack)
		}
		style = style.Bold(cell.Rank == checkers.King)
	}
	s.SetContent(left, top, ' ', nil, style)
	s.SetContent(left+1, top, r, nil, style)
	s.SetContent(left+2, top, ' ', nil, style)
}

func (u *boardUI) drawCoordinates(s tcell.Screen, x, y int) {
	highlight := labelStyle.Background(cursorBG)
	for c := range checkers.Size {
		style := labelStyle
		if c == u.curCol {
			style = highlight
		}
		s.SetContent(x+boardLeft+c*cellWidth+1, y+checkers.Size, rune('A'+c), nil, style)
	}
	for r := range checkers.Size {
		style := labelStyle
		if r == u.curRow {
			style = highlight
		}
		s.SetContent(x+1, y+r, rune('1'+r), nil, style)
	}
}

func (u *boardUI) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		u.stop()
		return nil
	case tcell.KeyUp:
		u.moveCursor(-1, 0)
	case tcell.KeyDown:
		u.moveCursor(1, 0)
	case tcell.KeyLeft:
		u.moveCursor(0, -1)
	case tcell.KeyRight:
		u.moveCursor(0, 1)
	case tcell.KeyEnter:
		u.enter()
	case tcell.KeyEscape, tcell.KeyBackspace, tcell.KeyBackspace2:
		if u.digits != "" {
			u.digits = ""
		} else {
			u.g.back()
		}
	case tcell.KeyRune:
		if !u.handleRune(ev.Rune()) {
			return nil
		}
	default:
		return ev
	}
	u.refresh()
	return nil
}

// handleRune reports false when the key ended the session.
func (u *boardUI) handleRune(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		if r == '0' && u.digits == "" && u.g.phase == choosingDest {
			u.g.back()
			return true
		}
		if len(u.digits) < 3 {
			u.digits += string(r)
		}
	case r == 'k':
		u.moveCursor(-1, 0)
	case r == 'j':
		u.moveCursor(1, 0)
	case r == 'h':
		u.moveCursor(0, -1)
	case r == 'l':
		u.moveCursor(0, 1)
	case r == '?':
		u.showHelp = !u.showHelp
	case r == 'b':
		u.showText = !u.showText
	case r == 'r':
		u.report(u.g.restart())
		u.syncCursor()
		u.maybeBot()
	case r == 'q':
		u.stop()
		return false
	}
	return true
}

func (u *boardUI) moveCursor(dRow, dCol int) {
	u.curRow = min(max(u.curRow+dRow, 0), checkers.Size-1)
	u.curCol = min(max(u.curCol+dCol, 0), checkers.Size-1)
}

// syncCursor parks the cursor on the first piece of the side to move.
func (u *boardUI) syncCursor() {
	if len(u.g.pieces) == 0 {
		return
	}
	u.curRow, u.curCol = u.g.pieces[0].Row, u.g.pieces[0].Col
}

// enter picks the typed number, or the square under the cursor when nothing
// was typed.
func (u *boardUI) enter() {
	var err error
	if u.digits != "" {
		n, _ := strconv.Atoi(u.digits)
		u.digits = ""
		err = u.g.pick(n)
	} else {
		err = u.g.pickSquare(checkers.Coord{Row: u.curRow, Col: u.curCol})
	}
	u.report(err)
	if u.g.phase == choosingPiece {
		u.syncCursor()
	}
	u.maybeBot()
}

func (u *boardUI) report(err error) {
	if err == nil {
		return
	}
	u.g.message = "error: " + err.Error()
	u.logger.Error("terminal_move_failed", zap.Error(err))
}

// maybeBot queues the bot's turn when its seat is to move.
func (u *boardUI) maybeBot() {
	if u.botBusy || !u.g.botToMove() {
		return
	}
	u.botBusy = true
	u.schedule(func() {
		u.botBusy = false
		err := u.g.playBot()
		u.report(err)
		u.syncCursor()
		u.refresh()
		if err == nil {
			u.maybeBot()
		}
	})
}

// refresh rewrites the hint view from the game state.
func (u *boardUI) refresh() {
	var sb strings.Builder
	if u.g.phase == gameOver {
		fmt.Fprintf(&sb, "[yellow]%s[-]\n", tview.Escape(u.g.resultLine()))
	} else {
		fmt.Fprintf(&sb, "[yellow]%s[-]\n", tview.Escape(u.g.turnLine()))
	}
	if u.g.message != "" {
		sb.WriteString(tview.Escape(u.g.message))
		sb.WriteString("\n")
	}
	switch {
	case u.g.phase == gameOver:
		sb.WriteString("\n  r · play again   q · quit\n")
	case u.g.botToMove():
		sb.WriteString("  ◌ Thinking...\n")
	default:
		for _, line := range u.g.options() {
			sb.WriteString(tview.Escape(line))
			sb.WriteString("\n")
		}
		if u.digits != "" {
			fmt.Fprintf(&sb, "> %s\n", u.digits)
		}
	}
	if u.showHelp {
		sb.WriteString("\n")
		sb.WriteString(keyHelp)
		sb.WriteString("\n")
	}
	if u.showText {
		sb.WriteString("\n")
		sb.WriteString(tview.Escape(checkers.FormatBoard(&u.g.m.Board)))
	}
	u.hint.SetText(sb.String())
}
