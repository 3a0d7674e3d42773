package builder

import (
    "context"
    "testing"

    "github.com/alicebob/miniredis/v2"

    "github.com/park285/Cheese-Checkers-bot/internal/config"
    svccheckers "github.com/park285/Cheese-Checkers-bot/internal/service/checkers"
)

func TestNewWithMemoryRepository(t *testing.T) {
    mr := miniredis.RunT(t)
    cfg := config.LoadLocal()
    cfg.RedisURL = "redis://" + mr.Addr()
    cfg.DatabaseURL = ""
    cfg.CheckersDefaultPreset = "normal"

    deps, err := New(context.Background(), cfg, nil)
    if err != nil {
        t.Fatalf("New: %v", err)
    }
    defer deps.Close()

    if deps.Service.DefaultPreset() != "normal" {
        t.Fatalf("default preset = %q", deps.Service.DefaultPreset())
    }
    meta := svccheckers.SessionMeta{SessionID: "room1:u1", Room: "room1", Sender: "u1"}
    state, err := deps.Service.StartSession(context.Background(), meta, "")
    if err != nil {
        t.Fatalf("StartSession: %v", err)
    }
    if state.Preset != "normal" || len(mr.Keys()) == 0 {
        t.Fatalf("session not stored: preset=%s keys=%v", state.Preset, mr.Keys())
    }
}

func TestNewRequiresRedis(t *testing.T) {
    cfg := config.LoadLocal()
    cfg.RedisURL = ""
    if _, err := New(context.Background(), cfg, nil); err == nil {
        t.Fatalf("expected error without REDIS_URL")
    }
    if _, err := New(context.Background(), nil, nil); err == nil {
        t.Fatalf("expected error for nil config")
    }
}
