package checkers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/park285/Cheese-Checkers-bot/internal/domain"
)

var ErrDuplicateGame = errors.New("checkers game already exists")

type Repository interface {
	InsertGame(ctx context.Context, game *domain.CheckersGame) (int64, error)
	GetRecentGames(ctx context.Context, playerHash string, limit int) ([]*domain.CheckersGame, error)
	GetGame(ctx context.Context, id int64, playerHash string) (*domain.CheckersGame, error)
	GetGameBySession(ctx context.Context, sessionUUID string, playerHash string) (*domain.CheckersGame, error)
	GetProfile(ctx context.Context, playerHash string, roomHash string) (*domain.CheckersProfile, error)
	UpsertProfile(ctx context.Context, profile *domain.CheckersProfile) error
}

// Schema creates the tables used by the postgres repository.
const Schema = `
CREATE TABLE IF NOT EXISTS checkers_games (
	id            BIGSERIAL PRIMARY KEY,
	session_uuid  TEXT NOT NULL UNIQUE,
	player_hash   TEXT NOT NULL,
	room_hash     TEXT NOT NULL,
	preset        TEXT NOT NULL,
	human_player  TEXT NOT NULL,
	top_player    TEXT NOT NULL,
	result        TEXT NOT NULL,
	result_method TEXT NOT NULL,
	moves         JSONB NOT NULL DEFAULT '[]'::jsonb,
	log           JSONB,
	final_board   TEXT NOT NULL,
	turn_count    INTEGER NOT NULL DEFAULT 0,
	captured      INTEGER NOT NULL DEFAULT 0,
	lost          INTEGER NOT NULL DEFAULT 0,
	started_at    TIMESTAMPTZ NOT NULL,
	ended_at      TIMESTAMPTZ NOT NULL,
	duration_ms   BIGINT,
	bot_latency_ms BIGINT
);
CREATE INDEX IF NOT EXISTS checkers_games_player_idx ON checkers_games (player_hash, ended_at DESC);
CREATE TABLE IF NOT EXISTS checkers_profiles (
	player_hash      TEXT NOT NULL,
	room_hash        TEXT NOT NULL,
	preferred_preset TEXT NOT NULL DEFAULT '',
	rating           INTEGER NOT NULL DEFAULT 1200,
	games_played     INTEGER NOT NULL DEFAULT 0,
	wins             INTEGER NOT NULL DEFAULT 0,
	losses           INTEGER NOT NULL DEFAULT 0,
	draws            INTEGER NOT NULL DEFAULT 0,
	streak           INTEGER NOT NULL DEFAULT 0,
	streak_type      TEXT NOT NULL DEFAULT '',
	last_preset      TEXT NOT NULL DEFAULT '',
	last_played_at   TIMESTAMPTZ,
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (player_hash, room_hash)
);`

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// EnsureSchema applies Schema; it is safe to run on every start.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply checkers schema: %w", err)
	}
	return nil
}

const gameColumns = `
			id,
			session_uuid,
			player_hash,
			room_hash,
			preset,
			human_player,
			top_player,
			result,
			result_method,
			moves,
			log,
			final_board,
			turn_count,
			captured,
			lost,
			started_at,
			ended_at,
			duration_ms,
			bot_latency_ms`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*domain.CheckersGame, error) {
	var (
		game       domain.CheckersGame
		movesJSON  []byte
		logJSON    []byte
		durationMS sql.NullInt64
		latencyMS  sql.NullInt64
	)
	if err := row.Scan(
		&game.ID,
		&game.SessionUUID,
		&game.PlayerHash,
		&game.RoomHash,
		&game.Preset,
		&game.HumanPlayer,
		&game.TopPlayer,
		&game.Result,
		&game.ResultMethod,
		&movesJSON,
		&logJSON,
		&game.FinalBoard,
		&game.TurnCount,
		&game.Captured,
		&game.Lost,
		&game.StartedAt,
		&game.EndedAt,
		&durationMS,
		&latencyMS,
	); err != nil {
		return nil, err
	}
	if durationMS.Valid {
		game.Duration = time.Duration(durationMS.Int64) * time.Millisecond
	}
	if latencyMS.Valid {
		game.BotLatency = time.Duration(latencyMS.Int64) * time.Millisecond
	}
	if err := json.Unmarshal(movesJSON, &game.Moves); err != nil {
		return nil, fmt.Errorf("unmarshal moves: %w", err)
	}
	if len(logJSON) > 0 {
		game.Log = logJSON
	}
	return &game, nil
}

func (r *repository) InsertGame(ctx context.Context, game *domain.CheckersGame) (int64, error) {
	if game == nil {
		return 0, fmt.Errorf("nil checkers game payload")
	}
	moves := game.Moves
	if moves == nil {
		moves = []string{}
	}
	movesJSON, err := json.Marshal(moves)
	if err != nil {
		return 0, fmt.Errorf("marshal moves: %w", err)
	}

	const query = `
		INSERT INTO checkers_games (
			session_uuid,
			player_hash,
			room_hash,
			preset,
			human_player,
			top_player,
			result,
			result_method,
			moves,
			log,
			final_board,
			turn_count,
			captured,
			lost,
			started_at,
			ended_at,
			duration_ms,
			bot_latency_ms
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10::jsonb, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (session_uuid) DO NOTHING
		RETURNING id`

	var id sql.NullInt64
	err = r.db.QueryRowContext(
		ctx,
		query,
		game.SessionUUID,
		game.PlayerHash,
		game.RoomHash,
		game.Preset,
		game.HumanPlayer,
		game.TopPlayer,
		game.Result,
		game.ResultMethod,
		movesJSON,
		nullableJSON(game.Log),
		game.FinalBoard,
		game.TurnCount,
		game.Captured,
		game.Lost,
		game.StartedAt,
		game.EndedAt,
		game.Duration.Milliseconds(),
		game.BotLatency.Milliseconds(),
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !id.Valid) {
		return 0, ErrDuplicateGame
	}
	if err != nil {
		return 0, fmt.Errorf("insert checkers game: %w", err)
	}
	return id.Int64, nil
}

func (r *repository) GetRecentGames(ctx context.Context, playerHash string, limit int) ([]*domain.CheckersGame, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT` + gameColumns + `
		FROM checkers_games
		WHERE player_hash = $1
		ORDER BY ended_at DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, playerHash, limit)
	if err != nil {
		return nil, fmt.Errorf("select checkers games: %w", err)
	}
	defer rows.Close()

	games := make([]*domain.CheckersGame, 0, limit)
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan checkers game: %w", err)
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checkers games: %w", err)
	}
	return games, nil
}

func (r *repository) GetGame(ctx context.Context, id int64, playerHash string) (*domain.CheckersGame, error) {
	query := `SELECT` + gameColumns + `
		FROM checkers_games
		WHERE id = $1 AND player_hash = $2`

	game, err := scanGame(r.db.QueryRowContext(ctx, query, id, playerHash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select checkers game: %w", err)
	}
	return game, nil
}

func (r *repository) GetGameBySession(ctx context.Context, sessionUUID string, playerHash string) (*domain.CheckersGame, error) {
	query := `SELECT` + gameColumns + `
		FROM checkers_games
		WHERE session_uuid = $1 AND player_hash = $2
		ORDER BY ended_at DESC
		LIMIT 1`

	game, err := scanGame(r.db.QueryRowContext(ctx, query, sessionUUID, playerHash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select checkers game by session: %w", err)
	}
	return game, nil
}

func (r *repository) GetProfile(ctx context.Context, playerHash string, roomHash string) (*domain.CheckersProfile, error) {
	const query = `
		SELECT
			player_hash,
			room_hash,
			preferred_preset,
			rating,
			games_played,
			wins,
			losses,
			draws,
			streak,
			streak_type,
			last_preset,
			last_played_at,
			updated_at,
			created_at
		FROM checkers_profiles
		WHERE player_hash = $1 AND room_hash = $2
		LIMIT 1`

	var (
		profile    domain.CheckersProfile
		lastPlayed sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, playerHash, roomHash).Scan(
		&profile.PlayerHash,
		&profile.RoomHash,
		&profile.PreferredPreset,
		&profile.Rating,
		&profile.GamesPlayed,
		&profile.Wins,
		&profile.Losses,
		&profile.Draws,
		&profile.Streak,
		&profile.StreakType,
		&profile.LastPreset,
		&lastPlayed,
		&profile.UpdatedAt,
		&profile.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select checkers profile: %w", err)
	}
	if lastPlayed.Valid {
		profile.LastPlayedAt = lastPlayed.Time
	}
	return &profile, nil
}

func (r *repository) UpsertProfile(ctx context.Context, profile *domain.CheckersProfile) error {
	if profile == nil {
		return fmt.Errorf("nil checkers profile payload")
	}
	const query = `
		INSERT INTO checkers_profiles (
			player_hash,
			room_hash,
			preferred_preset,
			rating,
			games_played,
			wins,
			losses,
			draws,
			streak,
			streak_type,
			last_preset,
			last_played_at,
			updated_at,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		ON CONFLICT (player_hash, room_hash)
		DO UPDATE SET
			preferred_preset = EXCLUDED.preferred_preset,
			rating = EXCLUDED.rating,
			games_played = EXCLUDED.games_played,
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses,
			draws = EXCLUDED.draws,
			streak = EXCLUDED.streak,
			streak_type = EXCLUDED.streak_type,
			last_preset = EXCLUDED.last_preset,
			last_played_at = EXCLUDED.last_played_at,
			updated_at = NOW()`

	_, err := r.db.ExecContext(
		ctx,
		query,
		profile.PlayerHash,
		profile.RoomHash,
		profile.PreferredPreset,
		profile.Rating,
		profile.GamesPlayed,
		profile.Wins,
		profile.Losses,
		profile.Draws,
		profile.Streak,
		profile.StreakType,
		profile.LastPreset,
		profile.LastPlayedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert checkers profile: %w", err)
	}
	return nil
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
