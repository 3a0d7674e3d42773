package chatlink

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

type bridgeStub struct {
	mu        sync.Mutex
	replies   []ReplyRequest
	headers   []string
	configHit int
	failFirst int
}

func (b *bridgeStub) handle(ctx *fasthttp.RequestCtx) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.headers = append(b.headers, string(ctx.Request.Header.Peek("X-User-Id")))
	switch string(ctx.Path()) {
	case "/config":
		b.configHit++
		if b.configHit <= b.failFirst {
			ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
			return
		}
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`{"bot_name":"cheese","bot_http_port":3000}`)
	case "/reply":
		var r ReplyRequest
		if err := json.Unmarshal(ctx.PostBody(), &r); err != nil {
			ctx.SetStatusCode(fasthttp.StatusBadRequest)
			return
		}
		if r.Room == "broken" {
			ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
			ctx.SetBodyString("down")
			return
		}
		b.replies = append(b.replies, r)
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
	}
}

func newStubClient(t *testing.T, stub *bridgeStub) *Client {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: stub.handle}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = ln.Close() })
	return NewClient("http://bridge/",
		WithDial(func(string) (net.Conn, error) { return ln.Dial() }),
		WithHeaderProvider(func() map[string]string { return map[string]string{"X-User-Id": "bot", "X-Empty": " "} }),
		WithTimeout(2*time.Second),
	)
}

func TestClientReplies(t *testing.T) {
	stub := &bridgeStub{}
	c := newStubClient(t, stub)
	ctx := context.Background()

	if err := c.SendText(ctx, "room1", "You: A6-B5"); err != nil {
		t.Fatalf("SendText: %v", err)
	}
	if err := c.SendImage(ctx, "room1", "iVBORw0KGgo="); err != nil {
		t.Fatalf("SendImage: %v", err)
	}
	want := []ReplyRequest{
		{Type: "text", Room: "room1", Data: "You: A6-B5"},
		{Type: "image", Room: "room1", Data: "iVBORw0KGgo="},
	}
	if diff := cmp.Diff(want, stub.replies); diff != "" {
		t.Fatalf("replies (-want +got):\n%s", diff)
	}
	if stub.headers[0] != "bot" {
		t.Fatalf("header provider not applied: %v", stub.headers)
	}
}

func TestClientDoesNotRetryReplies(t *testing.T) {
	stub := &bridgeStub{}
	c := newStubClient(t, stub)
	err := c.SendText(context.Background(), "broken", "hi")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != fasthttp.StatusServiceUnavailable || se.Body != "down" {
		t.Fatalf("expected 503 StatusError, got %v", err)
	}
	if len(stub.headers) != 1 {
		t.Fatalf("reply was attempted %d times", len(stub.headers))
	}
}

func TestClientConfigRetries(t *testing.T) {
	stub := &bridgeStub{failFirst: 2}
	c := newStubClient(t, stub)
	cfg, err := c.Config(context.Background())
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if cfg.BotName != "cheese" || cfg.Port != 3000 || stub.configHit != 3 {
		t.Fatalf("unexpected config %+v after %d hits", cfg, stub.configHit)
	}
}

func TestBackoff(t *testing.T) {
	if backoff(0) != 100*time.Millisecond || backoff(3) != 400*time.Millisecond || backoff(99) != 3200*time.Millisecond {
		t.Fatalf("unexpected backoff schedule")
	}
}

func TestWebSocketDeliversMessagesAndReplies(t *testing.T) {
	replies := make(chan ReplyRequest, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()
		sender := "alice"
		if err := wsjson.Write(r.Context(), conn, Message{Msg: "!ck start", Room: "room1", Sender: &sender}); err != nil {
			return
		}
		var reply ReplyRequest
		if err := wsjson.Read(r.Context(), conn, &reply); err == nil {
			replies <- reply
		}
	}))
	defer srv.Close()

	ws := NewWebSocket("ws"+strings.TrimPrefix(srv.URL, "http"), 0)
	got := make(chan *Message, 1)
	ws.OnMessage(func(m *Message) { got <- m })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ws.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer ws.Close(context.Background())

	select {
	case m := <-got:
		if m.Msg != "!ck start" || m.Room != "room1" || m.UserID() != "alice" {
			t.Fatalf("unexpected message %+v", m)
		}
	case <-ctx.Done():
		t.Fatalf("no message received")
	}

	egress, err := NewEgress(EgressWS, nil, ws, nil)
	if err != nil {
		t.Fatalf("NewEgress: %v", err)
	}
	if err := egress.SendText(ctx, "room1", "Checkers game started."); err != nil {
		t.Fatalf("SendText: %v", err)
	}
	select {
	case r := <-replies:
		if r.Type != "text" || r.Data != "Checkers game started." {
			t.Fatalf("unexpected reply %+v", r)
		}
	case <-ctx.Done():
		t.Fatalf("reply not received")
	}
}

func TestEgressModes(t *testing.T) {
	c := NewClient("http://bridge")
	if e, err := NewEgress("", c, nil, nil); err != nil || e != Egress(c) {
		t.Fatalf("default mode should be the http client: %v", err)
	}
	if _, err := NewEgress(EgressAuto, c, nil, nil); err == nil {
		t.Fatalf("auto without websocket must fail")
	}
	if _, err := NewEgress("pigeon", c, nil, nil); err == nil {
		t.Fatalf("unknown mode must fail")
	}
	ws := NewWebSocket("ws://127.0.0.1:1", 0)
	if err := (wsEgress{ws: ws}).SendText(context.Background(), "r", "x"); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestMessageUserID(t *testing.T) {
	name := " Bob "
	m := &Message{Sender: &name}
	if m.UserID() != "Bob" {
		t.Fatalf("sender fallback: %q", m.UserID())
	}
	m.JSON = &MessageJSON{UserID: "4242"}
	if m.UserID() != "4242" || m.SenderName() != "Bob" {
		t.Fatalf("json user id should win")
	}
	var nilMsg *Message
	if nilMsg.UserID() != "" {
		t.Fatalf("nil message")
	}
}
