package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type entry struct {
	Name   string `json:"name"`
	Rating int    `json:"rating"`
}

func newTestCache(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(func() { mr.Close() })
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	c, err := NewCacheService(rdb, "test:", nil)
	if err != nil {
		t.Fatalf("NewCacheService: %v", err)
	}
	return c, mr
}

func TestSetGetDel(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "p1", entry{Name: "alice", Rating: 1212}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !mr.Exists("test:p1") {
		t.Fatalf("prefix not applied")
	}
	if ttl := mr.TTL("test:p1"); ttl != time.Minute {
		t.Fatalf("ttl=%v", ttl)
	}

	var got entry
	if err := c.Get(ctx, "p1", &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "alice" || got.Rating != 1212 {
		t.Fatalf("unexpected value: %+v", got)
	}

	if err := c.Del(ctx, "p1"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	var missing entry
	if err := c.Get(ctx, "p1", &missing); err != nil {
		t.Fatalf("Get after delete: %v", err)
	}
	if missing.Name != "" {
		t.Fatalf("deleted key still returned %+v", missing)
	}
}

func TestGetRejectsCorruptValue(t *testing.T) {
	c, mr := newTestCache(t)
	_ = mr.Set("test:bad", "{not json")
	var got entry
	if err := c.Get(context.Background(), "bad", &got); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestNewCacheServiceRequiresClient(t *testing.T) {
	if _, err := NewCacheService(nil, "", nil); err == nil {
		t.Fatalf("expected error for nil client")
	}
}
