package builder

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "strings"
    "time"

    _ "github.com/lib/pq"
    "go.uber.org/zap"

    "github.com/park285/Cheese-Checkers-bot/internal/bot"
    "github.com/park285/Cheese-Checkers-bot/internal/config"
    "github.com/park285/Cheese-Checkers-bot/internal/service/cache"
    svccheckers "github.com/park285/Cheese-Checkers-bot/internal/service/checkers"
    "github.com/park285/Cheese-Checkers-bot/internal/session"
)

const profileCachePrefix = "checkers:cache:"

type Deps struct {
    Service  *svccheckers.Service
    Engine   *bot.Evaluator
    Sessions *session.Manager
    Cache    *cache.CacheService
    Repo     svccheckers.Repository

    db *sql.DB
}

// New wires the checkers service from configuration. Redis is required for
// sessions; without DATABASE_URL finished games live in memory only.
func New(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
    if cfg == nil {
        return nil, fmt.Errorf("nil config")
    }
    if logger == nil {
        logger = zap.NewNop()
    }

    sessions, err := session.NewManager(cfg.RedisURL, cfg.SessionTTL())
    if err != nil {
        return nil, fmt.Errorf("init sessions: %w", err)
    }
    deps := &Deps{Sessions: sessions}

    // 세션과 프로필 캐시는 같은 Redis 연결을 공유
    deps.Cache, err = cache.NewCacheService(sessions.Client(), profileCachePrefix, logger)
    if err != nil {
        _ = deps.Close()
        return nil, fmt.Errorf("init cache: %w", err)
    }

    if strings.TrimSpace(cfg.DatabaseURL) == "" {
        logger.Warn("DATABASE_URL not set; finished games are kept in memory")
        deps.Repo = svccheckers.NewMemoryRepository()
    } else {
        db, err := openPostgres(ctx, cfg.DatabaseURL)
        if err != nil {
            _ = deps.Close()
            return nil, err
        }
        deps.db = db
        deps.Repo = svccheckers.NewRepository(db)
    }

    deps.Engine = bot.NewEvaluator(bot.WithLogger(logger.Named("bot")))
    svcCfg := svccheckers.Config{
        DefaultPreset: cfg.CheckersDefaultPreset,
        SessionTTL:    cfg.SessionTTL(),
        HistoryLimit:  cfg.CheckersHistoryLimit,
        AllowedRooms:  append([]string(nil), cfg.AllowedRooms...),
    }
    deps.Service, err = svccheckers.NewService(deps.Engine, sessions, deps.Cache, deps.Repo, svccheckers.NewSVGBoardRenderer(), svcCfg, logger)
    if err != nil {
        _ = deps.Close()
        return nil, err
    }
    return deps, nil
}

func openPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
    db, err := sql.Open("postgres", dsn)
    if err != nil {
        return nil, fmt.Errorf("open postgres: %w", err)
    }
    db.SetMaxOpenConns(16)
    db.SetMaxIdleConns(8)
    db.SetConnMaxLifetime(30 * time.Minute)

    pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
    defer cancel()
    if err := db.PingContext(pingCtx); err != nil {
        _ = db.Close()
        return nil, fmt.Errorf("ping postgres: %w", err)
    }
    if err := svccheckers.EnsureSchema(pingCtx, db); err != nil {
        _ = db.Close()
        return nil, fmt.Errorf("ensure schema: %w", err)
    }
    return db, nil
}

// Close releases the Redis and Postgres connections.
func (d *Deps) Close() error {
    if d == nil {
        return nil
    }
    var errs []error
    if d.Sessions != nil {
        errs = append(errs, d.Sessions.Close())
    }
    if d.db != nil {
        errs = append(errs, d.db.Close())
    }
    return errors.Join(errs...)
}
