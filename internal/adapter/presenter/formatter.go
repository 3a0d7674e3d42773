package presenter

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/park285/Cheese-Checkers-bot/internal/bot"
	corecheckers "github.com/park285/Cheese-Checkers-bot/internal/checkers"
	"github.com/park285/Cheese-Checkers-bot/internal/domain"
	"github.com/park285/Cheese-Checkers-bot/internal/msgcat"
	svc "github.com/park285/Cheese-Checkers-bot/internal/service/checkers"
	"github.com/park285/Cheese-Checkers-bot/internal/util"
)

const (
	fallbackText    = "Something went wrong. Please try again."
	recentMoveLimit = 4
	timeLayout      = "2006-01-02 15:04"
)

// Formatter renders service results into chat text through the message catalog.
type Formatter struct {
	catalog      *msgcat.Catalog
	prefix       string
	historyLimit int
	logger       *zap.Logger
}

func NewFormatter(catalog *msgcat.Catalog, prefix string, historyLimit int, logger *zap.Logger) *Formatter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Formatter{catalog: catalog, prefix: strings.TrimSpace(prefix), historyLimit: historyLimit, logger: logger}
}

func (f *Formatter) Prefix() string { return f.prefix }

func (f *Formatter) render(key string, data any) string {
	if f == nil || f.catalog == nil {
		return fallbackText
	}
	text, err := f.catalog.Render(key, data)
	if err != nil {
		f.logger.Warn("message_render_failed", zap.String("key", key), zap.Error(err))
		return fallbackText
	}
	return text
}

type profileView struct {
	Rating     int
	Delta      int
	Wins       int
	Losses     int
	Draws      int
	Games      int
	Preferred  string
	Streak     int
	StreakType string
	LastPlayed string
}

func newProfileView(p *domain.CheckersProfile, delta int) *profileView {
	if p == nil {
		return nil
	}
	return &profileView{
		Rating:     p.Rating,
		Delta:      delta,
		Wins:       p.Wins,
		Losses:     p.Losses,
		Draws:      p.Draws,
		Games:      p.GamesPlayed,
		Preferred:  p.PreferredPreset,
		Streak:     p.Streak,
		StreakType: p.StreakType,
		LastPlayed: formatTime(p.LastPlayedAt),
	}
}

type stateView struct {
	Prefix  string
	Preset  string
	Side    string
	Turn    int
	Mover   string
	First   int
	Second  int
	Recent  string
	Profile *profileView
}

func (f *Formatter) stateView(s *svc.SessionState) stateView {
	side := "bottom"
	if s.HumanOnTop {
		side = "top"
	}
	return stateView{
		Prefix:  f.prefix,
		Preset:  s.Preset,
		Side:    side,
		Turn:    s.TurnCount + 1,
		Mover:   s.Turn.String(),
		First:   s.Counts.First,
		Second:  s.Counts.Second,
		Recent:  recentMoves(s.Moves),
		Profile: newProfileView(s.Profile, s.RatingDelta),
	}
}

func (f *Formatter) Help() string {
	body := f.render("checkers.help", map[string]any{
		"Prefix":       f.prefix,
		"Presets":      strings.Join(bot.PresetNames(), "|"),
		"HistoryLimit": f.historyLimit,
	})
	return util.SeeMore(f.render("checkers.header.help", nil), body)
}

func (f *Formatter) Start(state *svc.SessionState, resumed bool) string {
	if state == nil {
		return f.NoSession()
	}
	if resumed {
		return f.render("checkers.start.resumed", f.stateView(state))
	}
	return f.render("checkers.start.new", f.stateView(state))
}

func (f *Formatter) Status(state *svc.SessionState) string {
	if state == nil {
		return f.NoSession()
	}
	return f.render("checkers.status", f.stateView(state))
}

// Move lists both plays; once the game is over it adds the outcome and rating.
func (f *Formatter) Move(summary *svc.MoveSummary) string {
	if summary == nil || summary.State == nil {
		return ""
	}
	data := map[string]any{
		"PlayerMove": summary.PlayerMove,
		"BotMove":    summary.BotMove,
	}
	if !summary.Finished {
		return f.render("checkers.move.played", data)
	}
	data["Outcome"] = f.outcome(summary.State)
	data["Preset"] = summary.State.Preset
	data["Profile"] = newProfileView(summary.Profile, summary.RatingDelta)
	data["GameID"] = summary.GameID
	return f.render("checkers.move.finished", data)
}

func (f *Formatter) Hint(h *svc.HintSuggestion) string {
	if h == nil || strings.TrimSpace(h.Move) == "" {
		return f.render("checkers.hint.none", nil)
	}
	return f.render("checkers.hint.found", map[string]any{
		"Prefix":     f.prefix,
		"Move":       strings.ToLower(h.Move),
		"Candidates": h.Candidates,
		"Points":     h.Points,
	})
}

func (f *Formatter) Resign(state *svc.SessionState) string {
	if state == nil {
		return f.render("checkers.outcome.resigned", nil)
	}
	return f.render("checkers.resign", map[string]any{
		"Outcome": f.outcome(state),
		"Profile": newProfileView(state.Profile, state.RatingDelta),
	})
}

func (f *Formatter) History(games []*domain.CheckersGame) string {
	if len(games) == 0 {
		return f.render("checkers.history.empty", map[string]any{"Prefix": f.prefix})
	}
	lines := make([]string, 0, len(games)+2)
	for _, g := range games {
		if g == nil {
			continue
		}
		lines = append(lines, f.render("checkers.history.line", map[string]any{
			"ID":       g.ID,
			"Result":   f.resultLabel(g.Result),
			"Date":     formatTime(g.EndedAt),
			"Preset":   g.Preset,
			"Moves":    len(g.Moves),
			"Duration": formatDuration(g.Duration),
		}))
	}
	lines = append(lines, "", f.render("checkers.history.footer", map[string]any{"Prefix": f.prefix}))
	return util.SeeMore(f.render("checkers.header.history", nil), strings.Join(lines, "\n"))
}

func (f *Formatter) Game(g *domain.CheckersGame) string {
	if g == nil {
		return fallbackText
	}
	return f.render("checkers.game", map[string]any{
		"ID":       g.ID,
		"Result":   f.resultLabel(g.Result),
		"Method":   strings.ReplaceAll(g.ResultMethod, "_", " "),
		"Preset":   g.Preset,
		"Started":  formatTime(g.StartedAt),
		"Ended":    formatTime(g.EndedAt),
		"Duration": formatDuration(g.Duration),
		"Captured": g.Captured,
		"Lost":     g.Lost,
		"Moves":    g.Moves,
	})
}

func (f *Formatter) Profile(p *domain.CheckersProfile) string {
	if p == nil {
		return f.render("checkers.profile.none", nil)
	}
	body := f.render("checkers.profile.body", newProfileView(p, 0))
	return util.SeeMore(f.render("checkers.header.profile", nil), body)
}

func (f *Formatter) PreferredPresetUpdated(p *domain.CheckersProfile) string {
	if p == nil {
		return fallbackText
	}
	return f.render("checkers.prefer", map[string]any{"Preset": p.PreferredPreset, "Prefix": f.prefix})
}

func (f *Formatter) NoSession() string {
	return f.render("checkers.errors.no_session", map[string]any{"Prefix": f.prefix})
}

func (f *Formatter) Unknown() string {
	return f.render("checkers.errors.unknown", map[string]any{"Prefix": f.prefix})
}

func (f *Formatter) GameUsage() string {
	return f.render("checkers.errors.usage_game", map[string]any{"Prefix": f.prefix})
}

// Error maps a service error onto a user-facing message.
func (f *Formatter) Error(err error, input string) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, svc.ErrSessionNotFound):
		return f.NoSession()
	case errors.Is(err, svc.ErrInvalidMove):
		return f.render("checkers.errors.invalid_move", map[string]any{"Input": input})
	case errors.Is(err, svc.ErrRoomNotAllowed):
		return f.render("checkers.errors.room", nil)
	case errors.Is(err, svc.ErrGameNotFound):
		return f.render("checkers.errors.game_not_found", map[string]any{"ID": input})
	case errors.Is(err, svc.ErrProfileNotFound):
		return f.render("checkers.profile.none", nil)
	case errors.Is(err, bot.ErrUnknownPreset):
		return f.render("checkers.errors.unknown_preset", map[string]any{
			"Preset":  input,
			"Presets": strings.Join(bot.PresetNames(), ", "),
		})
	default:
		return f.render("checkers.errors.internal", nil)
	}
}

func (f *Formatter) outcome(s *svc.SessionState) string {
	switch {
	case s.Resigned:
		return f.render("checkers.outcome.resigned", nil)
	case s.Status.Outcome == corecheckers.Tied:
		return f.render("checkers.outcome.draw", nil)
	case s.HumanWon():
		return f.render("checkers.outcome.win", nil)
	default:
		return f.render("checkers.outcome.loss", nil)
	}
}

func (f *Formatter) resultLabel(result string) string {
	key := "checkers.result." + strings.ToLower(strings.TrimSpace(result))
	if f.catalog == nil || !f.catalog.Has(key) {
		return result
	}
	return f.render(key, nil)
}

func recentMoves(moves []string) string {
	if len(moves) <= recentMoveLimit {
		return strings.Join(moves, " ")
	}
	return "... " + strings.Join(moves[len(moves)-recentMoveLimit:], " ")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return util.FormatKST(t, timeLayout)
}

func formatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return ""
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	default:
		return d.Round(time.Second).String()
	}
}
