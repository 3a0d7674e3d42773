package session

import (
    "context"
    "crypto/sha256"
    "encoding/hex"
    "encoding/json"
    "errors"
    "fmt"
    "net"
    "net/url"
    "strconv"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
    "github.com/park285/Cheese-Checkers-bot/internal/match"
    "github.com/park285/Cheese-Checkers-bot/internal/obslog"
    "go.uber.org/zap"
)

var (
    ErrNotFound = errors.New("checkers session not found")
    ErrExists   = errors.New("checkers session already exists")
    ErrConflict = errors.New("checkers session updated concurrently")
)

const DefaultTTL = 24 * time.Hour

// Manager stores one active match per owner key in Redis.
type Manager struct {
    rdb *redis.Client
    ttl time.Duration
}

func NewManager(redisURL string, ttl time.Duration) (*Manager, error) {
    if strings.TrimSpace(redisURL) == "" {
        return nil, fmt.Errorf("REDIS_URL required for checkers sessions")
    }
    opts, err := ParseRedisURL(redisURL)
    if err != nil { return nil, err }
    rdb := redis.NewClient(opts)
    if err := rdb.Ping(context.Background()).Err(); err != nil {
        return nil, fmt.Errorf("redis ping: %w", err)
    }
    return NewManagerWithClient(rdb, ttl), nil
}

func NewManagerWithClient(rdb *redis.Client, ttl time.Duration) *Manager {
    if ttl <= 0 { ttl = DefaultTTL }
    return &Manager{rdb: rdb, ttl: ttl}
}

func (m *Manager) Close() error {
    if m == nil || m.rdb == nil { return nil }
    return m.rdb.Close()
}

// Client exposes the connection so other stores can share it.
func (m *Manager) Client() *redis.Client { return m.rdb }

// Load returns the owner's match, or nil when there is none.
func (m *Manager) Load(ctx context.Context, owner string) (*match.Match, error) {
    if m == nil || m.rdb == nil { return nil, fmt.Errorf("session manager not initialized") }
    raw, err := m.rdb.Get(ctx, sessionKey(owner)).Bytes()
    if err == redis.Nil { return nil, nil }
    if err != nil { return nil, err }
    var mt match.Match
    if err := json.Unmarshal(raw, &mt); err != nil { return nil, fmt.Errorf("decode session: %w", err) }
    return &mt, nil
}

// Create stores a new match; it fails with ErrExists when the owner already has one.
func (m *Manager) Create(ctx context.Context, owner string, mt *match.Match) error {
    if m == nil || m.rdb == nil { return fmt.Errorf("session manager not initialized") }
    if mt == nil { return fmt.Errorf("nil match") }
    raw, err := json.Marshal(mt)
    if err != nil { return err }
    ok, err := m.rdb.SetNX(ctx, sessionKey(owner), raw, m.ttl).Result()
    if err != nil { return err }
    if !ok { return ErrExists }
    obslog.L().Info("session_create",
        zap.String("match_id", mt.ID),
        zap.String("top_player", mt.TopPlayer.String()),
    )
    return nil
}

// Update loads the owner's match, applies fn and writes it back in one WATCH
// transaction. A concurrent write between load and save yields ErrConflict.
// When fn fails nothing is written and its error is returned.
func (m *Manager) Update(ctx context.Context, owner string, fn func(*match.Match) error) (*match.Match, error) {
    if m == nil || m.rdb == nil { return nil, fmt.Errorf("session manager not initialized") }
    key := sessionKey(owner)
    var out *match.Match
    err := m.rdb.Watch(ctx, func(tx *redis.Tx) error {
        raw, err := tx.Get(ctx, key).Bytes()
        if err == redis.Nil { return ErrNotFound }
        if err != nil { return err }
        var cur match.Match
        if jerr := json.Unmarshal(raw, &cur); jerr != nil { return fmt.Errorf("decode session: %w", jerr) }
        if err := fn(&cur); err != nil { return err }

        newRaw, err := json.Marshal(&cur)
        if err != nil { return err }
        pipe := tx.TxPipeline()
        pipe.Set(ctx, key, newRaw, m.ttl)
        if _, err := pipe.Exec(ctx); err != nil { return err }
        out = &cur
        return nil
    }, key)
    if err != nil {
        if errors.Is(err, redis.TxFailedErr) {
            obslog.L().Warn("session_update_conflict", zap.String("session_key", key))
            return nil, ErrConflict
        }
        return nil, err
    }
    return out, nil
}

func (m *Manager) Delete(ctx context.Context, owner string) error {
    if m == nil || m.rdb == nil { return fmt.Errorf("session manager not initialized") }
    return m.rdb.Del(ctx, sessionKey(owner)).Err()
}

// 세션 키는 원문 식별자를 노출하지 않도록 해시로 저장
func sessionKey(owner string) string {
    sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(owner))))
    return "checkers:session:" + hex.EncodeToString(sum[:])
}

func ParseRedisURL(raw string) (*redis.Options, error) {
    u, err := url.Parse(raw)
    if err != nil { return nil, err }
    if u.Scheme != "redis" && u.Scheme != "rediss" { return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme) }
    db := 0
    if p := strings.TrimPrefix(u.Path, "/"); p != "" { if n, err := strconv.Atoi(p); err == nil { db = n } }
    port := u.Port()
    if port == "" { port = "6379" }
    pass, _ := u.User.Password()
    return &redis.Options{Addr: net.JoinHostPort(u.Hostname(), port), Password: pass, DB: db}, nil
}
