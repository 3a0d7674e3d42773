package checkers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/park285/Cheese-Checkers-bot/internal/bot"
	corecheckers "github.com/park285/Cheese-Checkers-bot/internal/checkers"
	"github.com/park285/Cheese-Checkers-bot/internal/domain"
	"github.com/park285/Cheese-Checkers-bot/internal/match"
	"github.com/park285/Cheese-Checkers-bot/internal/service/cache"
	"github.com/park285/Cheese-Checkers-bot/internal/session"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound   = errors.New("checkers session not found")
	ErrSessionInProgress = errors.New("checkers session already in progress")
	ErrInvalidMove       = errors.New("invalid checkers move")
	ErrGameNotFound      = errors.New("checkers game not found")
	ErrProfileNotFound   = errors.New("checkers profile not found")
	ErrRoomNotAllowed    = errors.New("checkers room not allowed")
)

const (
	defaultPlayerRating   = 1200
	kFactor               = 24
	profileCacheTTL       = 6 * time.Hour
	maxHistoryLimit       = 50
	playerLabelRuneLimit  = 24
	defaultHUDPlayerLabel = "Player"
	hintPresetName        = "hard"
)

// The human always plays First and moves first; the bot plays Second.
const (
	humanPlayer = corecheckers.First
	botPlayer   = corecheckers.Second
)

type SessionMeta struct {
	SessionID string
	Room      string
	Sender    string
}

type sessionIdentity struct {
	SessionID  string
	RoomHash   string
	PlayerHash string
}

type Config struct {
	DefaultPreset string
	SessionTTL    time.Duration
	HistoryLimit  int
	AllowedRooms  []string
}

type Service struct {
	engine       *bot.Evaluator
	sessions     *session.Manager
	cache        *cache.CacheService
	renderer     BoardRenderer
	repo         Repository
	cfg          Config
	allowedRooms map[string]struct{}
	logger       *zap.Logger

	botsMu sync.Mutex
	bots   map[string]*bot.Evaluator

	// clock stamps matches, games and profiles.
	clock func() time.Time
}

type SessionState struct {
	MatchID     string
	PlayerHash  string
	RoomHash    string
	PlayerName  string
	Preset      string
	Board       corecheckers.Board
	BoardImage  []byte
	Turn        corecheckers.Player
	HumanOnTop  bool
	TurnCount   int
	Status      corecheckers.Status
	Resigned    bool
	Moves       []string
	Counts      PieceCount
	Options     []corecheckers.PlayableOption
	StartedAt   time.Time
	UpdatedAt   time.Time
	RatingDelta int
	Profile     *domain.CheckersProfile
}

// HumanWon reports whether a finished game went to the human player.
func (s *SessionState) HumanWon() bool {
	return s.Status.Outcome == corecheckers.Finished && s.Status.Winner == humanPlayer
}

type MoveSummary struct {
	State       *SessionState
	PlayerMove  string
	BotMove     string
	BotChoice   bot.Choice
	Finished    bool
	GameID      int64
	Profile     *domain.CheckersProfile
	RatingDelta int
}

type HintSuggestion struct {
	Move       string
	Points     int
	Candidates int
	Ties       int
	Duration   time.Duration
}

func NewService(engine *bot.Evaluator, sessions *session.Manager, cacheSvc *cache.CacheService, repo Repository, renderer BoardRenderer, cfg Config, logger *zap.Logger) (*Service, error) {
	if engine == nil {
		return nil, fmt.Errorf("checkers bot evaluator is required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if cacheSvc == nil {
		return nil, fmt.Errorf("cache service is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("checkers repository is required")
	}
	if renderer == nil {
		return nil, fmt.Errorf("board renderer is required")
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("session TTL must be greater than 0")
	}
	preset, err := bot.GetPreset(cfg.DefaultPreset)
	if err != nil {
		return nil, fmt.Errorf("default preset validation failed: %w", err)
	}
	if cfg.HistoryLimit <= 0 || cfg.HistoryLimit > maxHistoryLimit {
		cfg.HistoryLimit = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	allowedRooms := make(map[string]struct{})
	for _, room := range cfg.AllowedRooms {
		normalized := strings.ToLower(strings.TrimSpace(room))
		if normalized == "" {
			continue
		}
		allowedRooms[normalized] = struct{}{}
	}

	return &Service{
		engine:   engine,
		sessions: sessions,
		cache:    cacheSvc,
		renderer: renderer,
		repo:     repo,
		cfg: Config{
			DefaultPreset: preset.Name,
			SessionTTL:    cfg.SessionTTL,
			HistoryLimit:  cfg.HistoryLimit,
			AllowedRooms:  append([]string(nil), cfg.AllowedRooms...),
		},
		allowedRooms: allowedRooms,
		logger:       logger,
		bots:         make(map[string]*bot.Evaluator),
		clock:        time.Now,
	}, nil
}

// StartSession opens a game against the bot. When one is already running it
// returns that game's state together with ErrSessionInProgress.
func (s *Service) StartSession(ctx context.Context, meta SessionMeta, preset string) (*SessionState, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	if err := s.ensureRoomAllowed(meta); err != nil {
		return nil, err
	}
	identity := deriveIdentity(meta)

	existing, err := s.sessions.Load(ctx, identity.SessionID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		state := s.stateFromMatch(identity, existing)
		if profile, profErr := s.fetchProfile(ctx, identity, true); profErr == nil {
			state.Profile = profile
		}
		s.attachBoardImage(ctx, state, existing)
		return state, ErrSessionInProgress
	}

	profile, err := s.fetchProfile(ctx, identity, false)
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}

	chosen := strings.ToLower(strings.TrimSpace(preset))
	if chosen == "" {
		if profile != nil && profile.PreferredPreset != "" {
			chosen = profile.PreferredPreset
		} else {
			chosen = s.cfg.DefaultPreset
		}
	}
	resolved, err := bot.GetPreset(chosen)
	if err != nil {
		return nil, fmt.Errorf("preset validation failed: %w", err)
	}

	// 판마다 위아래를 번갈아 시작
	top := botPlayer
	if profile != nil && profile.GamesPlayed%2 == 1 {
		top = humanPlayer
	}

	m, err := match.New(match.Options{
		Seats: []match.Seat{
			{Player: humanPlayer, Name: normalizeHUDPlayerLabel(meta.Sender), Kind: match.Human},
			{Player: botPlayer, Name: "bot", Kind: match.Bot, Preset: resolved.Name},
		},
		TopPlayer: top,
		Clock:     s.clock,
	})
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Create(ctx, identity.SessionID, m); err != nil {
		if errors.Is(err, session.ErrExists) {
			return nil, ErrSessionInProgress
		}
		return nil, err
	}

	s.logger.Info("checkers session started",
		zap.String("match_id", m.ID),
		zap.String("preset", resolved.Name),
		zap.String("top_player", top.String()),
	)

	state := s.stateFromMatch(identity, m)
	state.Profile = profile
	s.attachBoardImage(ctx, state, m)
	return state, nil
}

func (s *Service) Status(ctx context.Context, meta SessionMeta) (*SessionState, error) {
	identity, m, err := s.loadMatch(ctx, meta)
	if err != nil {
		return nil, err
	}
	state := s.stateFromMatch(identity, m)
	if profile, profErr := s.fetchProfile(ctx, identity, true); profErr == nil {
		state.Profile = profile
	}
	s.attachBoardImage(ctx, state, m)
	return state, nil
}

// Hint asks the strongest preset what it would play for the human.
func (s *Service) Hint(ctx context.Context, meta SessionMeta) (*HintSuggestion, error) {
	_, m, err := s.loadMatch(ctx, meta)
	if err != nil {
		return nil, err
	}
	if m.Finished() || m.Turn != humanPlayer {
		return nil, ErrInvalidMove
	}
	ev, err := s.evaluatorFor(hintPresetName)
	if err != nil {
		return nil, err
	}
	side := m.Side()
	choice, err := ev.Suggest(&m.Board, side.Player, side.AdvancesDownward)
	if err != nil {
		return nil, err
	}
	return &HintSuggestion{
		Move:       choice.Move.Notation(choice.Candidate.From),
		Points:     choice.Candidate.Points,
		Candidates: choice.Candidates,
		Ties:       choice.Ties,
		Duration:   choice.Duration,
	}, nil
}

// Play applies the human's move and, unless that ends the game, the bot's reply.
func (s *Service) Play(ctx context.Context, meta SessionMeta, moveInput string) (*MoveSummary, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	if err := s.ensureRoomAllowed(meta); err != nil {
		return nil, err
	}
	moveText := strings.TrimSpace(moveInput)
	if moveText == "" {
		return nil, ErrInvalidMove
	}
	req, err := corecheckers.ParseMoveRequest(moveText)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMove, err)
	}

	identity := deriveIdentity(meta)
	var (
		playerPlay corecheckers.Play
		botPlay    *corecheckers.Play
		choice     bot.Choice
	)
	m, err := s.sessions.Update(ctx, identity.SessionID, func(cur *match.Match) error {
		botPlay = nil
		cur.SetClock(s.clock)
		p, err := cur.PlayAs(humanPlayer, req)
		if err != nil {
			if errors.Is(err, corecheckers.ErrIllegalMove) || errors.Is(err, match.ErrNotYourTurn) || errors.Is(err, match.ErrGameOver) {
				return fmt.Errorf("%w: %v", ErrInvalidMove, err)
			}
			return err
		}
		playerPlay = p
		if cur.Finished() {
			return nil
		}
		ev, err := s.evaluatorFor(cur.Seat(botPlayer).Preset)
		if err != nil {
			return err
		}
		bp, c, err := cur.PlayBot(ev)
		if err != nil {
			return fmt.Errorf("bot reply: %w", err)
		}
		botPlay, choice = &bp, c
		return nil
	})
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	state := s.stateFromMatch(identity, m)
	s.attachBoardImage(ctx, state, m)
	summary := &MoveSummary{
		State:      state,
		PlayerMove: playerPlay.Move.Notation(playerPlay.From),
		BotChoice:  choice,
		Finished:   m.Finished(),
	}
	if botPlay != nil {
		summary.BotMove = botPlay.Move.Notation(botPlay.From)
	}

	if err := s.finishIfNeeded(ctx, identity, m, summary); err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *Service) finishIfNeeded(ctx context.Context, identity sessionIdentity, m *match.Match, summary *MoveSummary) error {
	if !summary.Finished {
		return nil
	}
	gameID, profile, delta, err := s.persistFinishedGame(ctx, identity, m, summary.BotChoice.Duration)
	if err != nil {
		return err
	}
	summary.GameID = gameID
	summary.Profile = profile
	summary.RatingDelta = delta
	summary.State.Profile = profile
	summary.State.RatingDelta = delta
	if err := s.sessions.Delete(ctx, identity.SessionID); err != nil {
		s.logger.Warn("failed to delete finished checkers session", zap.Error(err))
	}
	return nil
}

func (s *Service) Resign(ctx context.Context, meta SessionMeta) (*SessionState, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	if err := s.ensureRoomAllowed(meta); err != nil {
		return nil, err
	}
	identity := deriveIdentity(meta)
	m, err := s.sessions.Update(ctx, identity.SessionID, func(cur *match.Match) error {
		return cur.Resign(humanPlayer, s.clock())
	})
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	state := s.stateFromMatch(identity, m)
	s.attachBoardImage(ctx, state, m)
	gameID, profile, delta, err := s.persistFinishedGame(ctx, identity, m, 0)
	if err != nil {
		return nil, err
	}
	state.Profile = profile
	state.RatingDelta = delta

	if err := s.sessions.Delete(ctx, identity.SessionID); err != nil {
		s.logger.Warn("failed to delete checkers session after resignation", zap.Error(err))
	}
	if gameID == 0 {
		s.logger.Warn("resigned checkers game did not persist with id")
	}
	return state, nil
}

func (s *Service) History(ctx context.Context, meta SessionMeta, limit int) ([]*domain.CheckersGame, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	if err := s.ensureRoomAllowed(meta); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > s.cfg.HistoryLimit {
		limit = s.cfg.HistoryLimit
	}
	identity := deriveIdentity(meta)
	return s.repo.GetRecentGames(ctx, identity.PlayerHash, limit)
}

func (s *Service) Game(ctx context.Context, meta SessionMeta, id int64) (*domain.CheckersGame, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	if err := s.ensureRoomAllowed(meta); err != nil {
		return nil, err
	}
	identity := deriveIdentity(meta)
	game, err := s.repo.GetGame(ctx, id, identity.PlayerHash)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	return game, nil
}

func (s *Service) Profile(ctx context.Context, meta SessionMeta) (*domain.CheckersProfile, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	if err := s.ensureRoomAllowed(meta); err != nil {
		return nil, err
	}
	identity := deriveIdentity(meta)
	profile, err := s.fetchProfile(ctx, identity, true)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

func (s *Service) UpdatePreferredPreset(ctx context.Context, meta SessionMeta, preset string) (*domain.CheckersProfile, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	if err := s.ensureRoomAllowed(meta); err != nil {
		return nil, err
	}
	identity := deriveIdentity(meta)
	if strings.TrimSpace(preset) == "" {
		return nil, fmt.Errorf("preset must be provided")
	}
	resolved, err := bot.GetPreset(preset)
	if err != nil {
		return nil, fmt.Errorf("preset validation failed: %w", err)
	}

	profile, err := s.fetchProfile(ctx, identity, false)
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}
	now := s.clock()
	if profile == nil {
		profile = &domain.CheckersProfile{
			PlayerHash: identity.PlayerHash,
			RoomHash:   identity.RoomHash,
			Rating:     defaultPlayerRating,
			CreatedAt:  now,
		}
	}
	profile.PreferredPreset = resolved.Name
	profile.UpdatedAt = now

	if err := s.repo.UpsertProfile(ctx, profile); err != nil {
		return nil, err
	}
	s.cacheProfile(ctx, identity, profile)
	return profile, nil
}

// DefaultPreset is the preset used when neither the request nor the profile names one.
func (s *Service) DefaultPreset() string { return s.cfg.DefaultPreset }

func (s *Service) ensureReady() error {
	switch {
	case s.engine == nil:
		return fmt.Errorf("checkers bot not configured")
	case s.sessions == nil:
		return fmt.Errorf("session manager not configured")
	case s.cache == nil:
		return fmt.Errorf("cache service not configured")
	case s.renderer == nil:
		return fmt.Errorf("board renderer not configured")
	case s.repo == nil:
		return fmt.Errorf("checkers repository not configured")
	default:
		return nil
	}
}

func (s *Service) ensureRoomAllowed(meta SessionMeta) error {
	if len(s.allowedRooms) == 0 {
		return nil
	}
	room := strings.ToLower(strings.TrimSpace(meta.Room))
	if room == "" {
		room = "unknown-room"
	}
	if _, ok := s.allowedRooms[room]; ok {
		return nil
	}
	s.logger.Info("checkers room access denied",
		zap.String("room", room),
		zap.String("sender", strings.TrimSpace(meta.Sender)),
	)
	return ErrRoomNotAllowed
}

func (s *Service) loadMatch(ctx context.Context, meta SessionMeta) (sessionIdentity, *match.Match, error) {
	if err := s.ensureReady(); err != nil {
		return sessionIdentity{}, nil, err
	}
	if err := s.ensureRoomAllowed(meta); err != nil {
		return sessionIdentity{}, nil, err
	}
	identity := deriveIdentity(meta)
	m, err := s.sessions.Load(ctx, identity.SessionID)
	if err != nil {
		return identity, nil, err
	}
	if m == nil {
		return identity, nil, ErrSessionNotFound
	}
	return identity, m, nil
}

// evaluatorFor returns the bot for a preset, creating it on first use.
func (s *Service) evaluatorFor(preset string) (*bot.Evaluator, error) {
	p, err := bot.GetPreset(preset)
	if err != nil {
		return nil, err
	}
	s.botsMu.Lock()
	defer s.botsMu.Unlock()
	if ev, ok := s.bots[p.Name]; ok {
		return ev, nil
	}
	ev, err := s.engine.WithPresetName(p.Name)
	if err != nil {
		return nil, err
	}
	s.bots[p.Name] = ev
	return ev, nil
}

func (s *Service) profileCacheKey(identity sessionIdentity) string {
	return "checkers:profile:" + identity.PlayerHash + ":" + identity.RoomHash
}

func (s *Service) stateFromMatch(identity sessionIdentity, m *match.Match) *SessionState {
	state := &SessionState{
		MatchID:    m.ID,
		PlayerHash: identity.PlayerHash,
		RoomHash:   identity.RoomHash,
		PlayerName: normalizeHUDPlayerLabel(m.Seat(humanPlayer).Name),
		Preset:     m.Seat(botPlayer).Preset,
		Board:      m.Board,
		Turn:       m.Turn,
		HumanOnTop: m.AdvancesDownward(humanPlayer),
		TurnCount:  m.TurnCount,
		Status:     m.Status,
		Resigned:   m.Resigned != corecheckers.NoPlayer,
		Moves:      m.Log.Notations(),
		Counts: PieceCount{
			First:  m.Board.Count(corecheckers.First),
			Second: m.Board.Count(corecheckers.Second),
		},
		StartedAt: m.StartedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if state.PlayerName == "" {
		state.PlayerName = defaultHUDPlayerLabel
	}
	if !m.Finished() && m.Turn == humanPlayer {
		state.Options = m.Options()
	}
	return state
}

func (s *Service) attachBoardImage(ctx context.Context, state *SessionState, m *match.Match) {
	if state == nil || m == nil || s.renderer == nil {
		return
	}
	opts := RenderOptions{
		Counts:    state.Counts,
		HUDHeader: fmt.Sprintf("%s vs Bot (%s)", state.PlayerName, normalizePresetLabel(state.Preset, s.cfg.DefaultPreset)),
		HUDTurn:   hudTurnLabel(state),
	}
	if lp := m.LastPlay; lp != nil {
		opts.Highlight = &MoveHighlight{
			From:     lp.From,
			To:       lp.Move.To,
			Captured: append([]corecheckers.Coord(nil), lp.Move.Captured...),
			Mover:    lp.Player,
		}
	}
	data, err := s.renderer.RenderPNG(ctx, &m.Board, opts)
	if err != nil {
		s.logger.Warn("failed to render checkers board image", zap.Error(err))
		return
	}
	state.BoardImage = data
}

func hudTurnLabel(state *SessionState) string {
	turnNumber := state.TurnCount/2 + 1
	switch state.Status.Outcome {
	case corecheckers.Finished:
		return fmt.Sprintf("%s wins - turn %d", state.Status.Winner, turnNumber)
	case corecheckers.Tied:
		return fmt.Sprintf("Tied - turn %d", turnNumber)
	}
	return fmt.Sprintf("%s to move - turn %d", state.Turn, turnNumber)
}

func normalizeHUDPlayerLabel(raw string) string {
	cleaned := strings.Join(strings.Fields(raw), " ")
	if cleaned == "" {
		return ""
	}
	runes := []rune(cleaned)
	if len(runes) > playerLabelRuneLimit {
		truncated := strings.TrimSpace(string(runes[:playerLabelRuneLimit]))
		if truncated == "" {
			return ""
		}
		return truncated + "..."
	}
	return cleaned
}

func normalizePresetLabel(preset string, fallback string) string {
	token := strings.ToLower(strings.TrimSpace(preset))
	if token == "" {
		token = strings.ToLower(strings.TrimSpace(fallback))
	}
	if token == "" {
		return bot.DefaultPresetName
	}
	return token
}

func (s *Service) persistFinishedGame(ctx context.Context, identity sessionIdentity, m *match.Match, botLatency time.Duration) (int64, *domain.CheckersProfile, int, error) {
	result := resultFromMatch(m)
	preset := m.Seat(botPlayer).Preset
	now := s.clock()
	boardText, err := m.Board.MarshalText()
	if err != nil {
		return 0, nil, 0, fmt.Errorf("encode board: %w", err)
	}
	logJSON, err := json.Marshal(m.Log)
	if err != nil {
		return 0, nil, 0, fmt.Errorf("encode match log: %w", err)
	}

	record := &domain.CheckersGame{
		SessionUUID:  m.ID,
		PlayerHash:   identity.PlayerHash,
		RoomHash:     identity.RoomHash,
		Preset:       preset,
		HumanPlayer:  humanPlayer.String(),
		TopPlayer:    m.TopPlayer.String(),
		Result:       result,
		ResultMethod: methodFromMatch(m),
		Moves:        m.Log.Notations(),
		Log:          logJSON,
		FinalBoard:   string(boardText),
		TurnCount:    m.TurnCount,
		Captured:     len(m.Log.InitialPieces[botPlayer]) - m.Board.Count(botPlayer),
		Lost:         len(m.Log.InitialPieces[humanPlayer]) - m.Board.Count(humanPlayer),
		StartedAt:    m.StartedAt,
		EndedAt:      now,
		Duration:     now.Sub(m.StartedAt),
		BotLatency:   botLatency,
	}

	gameID, err := s.repo.InsertGame(ctx, record)
	if err != nil {
		if errors.Is(err, ErrDuplicateGame) {
			existing, fetchErr := s.repo.GetGameBySession(ctx, m.ID, identity.PlayerHash)
			if fetchErr != nil || existing == nil {
				return 0, nil, 0, err
			}
			profile, profErr := s.fetchProfile(ctx, identity, true)
			if profErr != nil && !errors.Is(profErr, ErrProfileNotFound) {
				return existing.ID, nil, 0, profErr
			}
			return existing.ID, profile, 0, nil
		}
		return 0, nil, 0, err
	}

	profile, err := s.fetchProfile(ctx, identity, false)
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		return gameID, nil, 0, err
	}
	profile, delta := applyGameResult(profile, identity, preset, result, now)
	if err := s.repo.UpsertProfile(ctx, profile); err != nil {
		return gameID, nil, 0, err
	}
	s.cacheProfile(ctx, identity, profile)

	s.logger.Info("checkers game finished",
		zap.Int64("game_id", gameID),
		zap.String("match_id", m.ID),
		zap.String("result", result),
		zap.String("method", record.ResultMethod),
		zap.Int("turns", m.TurnCount),
		zap.Int("rating_delta", delta),
	)
	return gameID, profile, delta, nil
}

func (s *Service) fetchProfile(ctx context.Context, identity sessionIdentity, allowCache bool) (*domain.CheckersProfile, error) {
	if allowCache {
		cached := &domain.CheckersProfile{}
		if err := s.cache.Get(ctx, s.profileCacheKey(identity), cached); err != nil {
			s.logger.Warn("failed to read cached checkers profile", zap.Error(err))
		} else if cached.PlayerHash != "" {
			return cached, nil
		}
	}

	stored, err := s.repo.GetProfile(ctx, identity.PlayerHash, identity.RoomHash)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, ErrProfileNotFound
	}
	s.cacheProfile(ctx, identity, stored)
	return stored, nil
}

func (s *Service) cacheProfile(ctx context.Context, identity sessionIdentity, profile *domain.CheckersProfile) {
	if profile == nil {
		return
	}
	if err := s.cache.Set(ctx, s.profileCacheKey(identity), profile, profileCacheTTL); err != nil {
		s.logger.Warn("failed to cache checkers profile", zap.Error(err))
	}
}

func deriveIdentity(meta SessionMeta) sessionIdentity {
	sessionID := strings.ToLower(strings.TrimSpace(meta.SessionID))
	room := strings.ToLower(strings.TrimSpace(meta.Room))
	sender := strings.ToLower(strings.TrimSpace(meta.Sender))
	return sessionIdentity{
		SessionID:  sessionID,
		RoomHash:   hashString(room),
		PlayerHash: hashString(room + ":" + sender),
	}
}

func hashString(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

func resultFromMatch(m *match.Match) string {
	switch {
	case m.Status.Outcome == corecheckers.Tied:
		return "draw"
	case m.Status.Winner == humanPlayer:
		return "win"
	case m.Status.Winner == botPlayer:
		return "loss"
	default:
		return "unknown"
	}
}

func methodFromMatch(m *match.Match) string {
	switch {
	case m.Resigned != corecheckers.NoPlayer:
		return "resign"
	case m.Status.Outcome == corecheckers.Tied:
		return "blocked"
	case m.Board.Count(m.Status.Winner.Opponent()) == 0:
		return "no_pieces"
	default:
		return "no_moves"
	}
}

func applyGameResult(profile *domain.CheckersProfile, identity sessionIdentity, preset string, result string, endedAt time.Time) (*domain.CheckersProfile, int) {
	if profile == nil {
		profile = &domain.CheckersProfile{
			PlayerHash: identity.PlayerHash,
			RoomHash:   identity.RoomHash,
			Rating:     defaultPlayerRating,
			CreatedAt:  endedAt,
		}
	}
	prevRating := profile.Rating

	profile.GamesPlayed++
	profile.LastPreset = preset
	profile.LastPlayedAt = endedAt
	profile.UpdatedAt = endedAt

	var score float64
	switch result {
	case "win":
		profile.Wins++
		score = 1.0
	case "loss":
		profile.Losses++
		score = 0.0
	default:
		profile.Draws++
		result = "draw"
		score = 0.5
	}
	if profile.StreakType == result {
		profile.Streak++
	} else {
		profile.Streak = 1
		profile.StreakType = result
	}

	botRating := presetApproxRating(preset)
	expected := 1 / (1 + math.Pow(10, float64(botRating-profile.Rating)/400))
	profile.Rating = int(math.Round(float64(profile.Rating) + kFactor*(score-expected)))
	return profile, profile.Rating - prevRating
}

func presetApproxRating(preset string) int {
	p, err := bot.GetPreset(preset)
	if err != nil || p.Rating <= 0 {
		return defaultPlayerRating
	}
	return p.Rating
}
