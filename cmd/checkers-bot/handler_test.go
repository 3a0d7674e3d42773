package main

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"

	"github.com/park285/Cheese-Checkers-bot/internal/adapter/presenter"
	"github.com/park285/Cheese-Checkers-bot/internal/builder"
	"github.com/park285/Cheese-Checkers-bot/internal/chatlink"
	"github.com/park285/Cheese-Checkers-bot/internal/config"
	"github.com/park285/Cheese-Checkers-bot/internal/msgcat"
)

type outbox struct {
	texts  []string
	images int
}

func newTestHandler(t *testing.T) (*handler, *outbox) {
	t.Helper()
	mr := miniredis.RunT(t)
	cfg := config.LoadLocal()
	cfg.RedisURL = "redis://" + mr.Addr()
	cfg.DatabaseURL = ""
	cfg.AllowedRooms = nil
	cfg.CheckersDefaultPreset = "normal"

	deps, err := builder.New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("builder.New: %v", err)
	}
	t.Cleanup(func() { _ = deps.Close() })

	cat, err := msgcat.New("")
	if err != nil {
		t.Fatalf("msgcat.New: %v", err)
	}
	box := &outbox{}
	out := presenter.NewPresenter(
		func(_ context.Context, _, text string) error { box.texts = append(box.texts, text); return nil },
		func(context.Context, string, string) error { box.images++; return nil },
	)
	h := &handler{
		prefix:    "!ck",
		service:   deps.Service,
		formatter: presenter.NewFormatter(cat, "!ck", cfg.CheckersHistoryLimit, nil),
		out:       out,
		logger:    zap.NewNop(),
	}
	return h, box
}

func chat(text string) *chatlink.Message {
	sender := "alice"
	return &chatlink.Message{Msg: text, Room: "room1", Sender: &sender}
}

func (b *outbox) last() string {
	if len(b.texts) == 0 {
		return ""
	}
	return b.texts[len(b.texts)-1]
}

func TestHandlerGameFlow(t *testing.T) {
	h, box := newTestHandler(t)
	ctx := context.Background()

	h.handle(ctx, chat("hello there"))
	if len(box.texts) != 0 || box.images != 0 {
		t.Fatalf("unprefixed chatter must be ignored")
	}

	h.handle(ctx, chat("!ck start"))
	if !strings.HasPrefix(box.last(), "Checkers game started.") || box.images != 1 {
		t.Fatalf("start reply: %q images=%d", box.last(), box.images)
	}

	h.handle(ctx, chat("!ck start"))
	if !strings.HasPrefix(box.last(), "Your game is still running.") || box.images != 2 {
		t.Fatalf("resume reply: %q", box.last())
	}

	h.handle(ctx, chat("!ck a6-b5"))
	if !strings.HasPrefix(box.last(), "You: A6-B5\nBot: ") || box.images != 3 {
		t.Fatalf("move reply: %q", box.last())
	}

	h.handle(ctx, chat("!ck a6-b5"))
	if box.last() != "That move is not allowed: a6-b5" || box.images != 3 {
		t.Fatalf("illegal move reply: %q", box.last())
	}

	h.handle(ctx, chat("!ck board"))
	if box.images != 4 {
		t.Fatalf("board should send only an image")
	}

	h.handle(ctx, chat("!ck resign"))
	if !strings.HasPrefix(box.last(), "You resigned.") {
		t.Fatalf("resign reply: %q", box.last())
	}

	h.handle(ctx, chat("!ck status"))
	if box.last() != "No game in progress. Start one with `!ck start`." {
		t.Fatalf("status after resign: %q", box.last())
	}

	h.handle(ctx, chat("!ck history"))
	if !strings.HasPrefix(box.last(), "Recent checkers games") || !strings.Contains(box.last(), "loss") {
		t.Fatalf("history reply: %q", box.last())
	}
}

func TestHandlerCommandErrors(t *testing.T) {
	h, box := newTestHandler(t)
	ctx := context.Background()

	h.handle(ctx, chat("!ck dance"))
	if box.last() != "Unknown command. Try `!ck help`." {
		t.Fatalf("unknown reply: %q", box.last())
	}
	h.handle(ctx, chat("!ck game"))
	if box.last() != "Usage: !ck game <id>" {
		t.Fatalf("game usage reply: %q", box.last())
	}
	h.handle(ctx, chat("!ck game 99"))
	if box.last() != "Game #99 was not found." {
		t.Fatalf("missing game reply: %q", box.last())
	}
	h.handle(ctx, chat("!ck prefer wizard"))
	if !strings.HasPrefix(box.last(), "Unknown level wizard.") {
		t.Fatalf("prefer reply: %q", box.last())
	}
	h.handle(ctx, chat("!ck prefer easy"))
	if !strings.HasPrefix(box.last(), "Preferred level set to easy.") {
		t.Fatalf("prefer reply: %q", box.last())
	}
	h.handle(ctx, chat("!ck"))
	if !strings.HasPrefix(box.last(), "Checkers commands") {
		t.Fatalf("empty command should show help")
	}
}

func TestMetaFor(t *testing.T) {
	name := "Alice"
	msg := &chatlink.Message{Room: " room1 ", Sender: &name, JSON: &chatlink.MessageJSON{UserID: "42"}}
	meta := metaFor(msg)
	if meta.SessionID != "room1:42" || meta.Sender != "Alice" {
		t.Fatalf("unexpected meta %+v", meta)
	}
	meta = metaFor(&chatlink.Message{Room: "r"})
	if meta.SessionID != "r:player" || meta.Sender != "player" {
		t.Fatalf("unexpected anonymous meta %+v", meta)
	}
}
