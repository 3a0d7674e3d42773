package chatlink

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

var ErrNotConnected = errors.New("chatlink: websocket not connected")

type MessageHandler func(msg *Message)

type StateHandler func(state State)

// WebSocket receives chat events from the bridge and reconnects with backoff
// when the read loop or two consecutive pings fail.
type WebSocket struct {
	url     string
	headers HeaderProvider
	logger  *zap.Logger

	maxReconnect int
	pingInterval time.Duration

	mu    sync.RWMutex
	conn  *websocket.Conn
	state State

	writeMu sync.Mutex

	handlersMu    sync.RWMutex
	onMessage     []MessageHandler
	onStateChange []StateHandler

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type WSOption func(*WebSocket)

func WithWSHeaders(h HeaderProvider) WSOption { return func(ws *WebSocket) { ws.headers = h } }

func WithWSLogger(l *zap.Logger) WSOption { return func(ws *WebSocket) { ws.logger = l } }

func WithPingInterval(d time.Duration) WSOption { return func(ws *WebSocket) { ws.pingInterval = d } }

func NewWebSocket(url string, maxReconnect int, opts ...WSOption) *WebSocket {
	ws := &WebSocket{
		url:          url,
		logger:       zap.NewNop(),
		maxReconnect: maxReconnect,
		pingInterval: 30 * time.Second,
		state:        StateDisconnected,
	}
	for _, opt := range opts {
		opt(ws)
	}
	ws.ctx, ws.cancel = context.WithCancel(context.Background())
	return ws
}

func (ws *WebSocket) OnMessage(h MessageHandler) {
	ws.handlersMu.Lock()
	ws.onMessage = append(ws.onMessage, h)
	ws.handlersMu.Unlock()
}

func (ws *WebSocket) OnStateChange(h StateHandler) {
	ws.handlersMu.Lock()
	ws.onStateChange = append(ws.onStateChange, h)
	ws.handlersMu.Unlock()
}

func (ws *WebSocket) State() State {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return ws.state
}

// Connect dials once. On failure the background reconnect loop takes over and
// the dial error is returned.
func (ws *WebSocket) Connect(ctx context.Context) error {
	switch ws.State() {
	case StateConnected, StateConnecting:
		return nil
	}
	ws.setState(StateConnecting)
	if err := ws.dial(ctx); err != nil {
		ws.setState(StateFailed)
		ws.reconnect()
		return err
	}
	return nil
}

func (ws *WebSocket) dial(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(dialCtx, ws.url, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
		HTTPHeader:      ws.handshakeHeaders(),
	})
	if err != nil {
		return err
	}
	conn.SetReadLimit(1 << 20)

	ws.mu.Lock()
	ws.conn = conn
	ws.mu.Unlock()
	ws.setState(StateConnected)

	ws.wg.Add(2)
	go ws.readLoop(conn)
	go ws.pingLoop(conn)
	return nil
}

func (ws *WebSocket) readLoop(conn *websocket.Conn) {
	defer ws.wg.Done()
	for {
		var msg Message
		if err := wsjson.Read(ws.ctx, conn, &msg); err != nil {
			ws.drop(conn, "read failure", err)
			return
		}
		ws.handlersMu.RLock()
		handlers := append([]MessageHandler(nil), ws.onMessage...)
		ws.handlersMu.RUnlock()
		for _, h := range handlers {
			h(&msg)
		}
	}
}

func (ws *WebSocket) pingLoop(conn *websocket.Conn) {
	defer ws.wg.Done()
	t := time.NewTicker(ws.pingInterval)
	defer t.Stop()
	failures := 0
	for {
		select {
		case <-ws.ctx.Done():
			return
		case <-t.C:
		}
		if ws.current() != conn {
			return
		}
		ctx, cancel := context.WithTimeout(ws.ctx, 3*time.Second)
		err := conn.Ping(ctx)
		cancel()
		if err == nil {
			failures = 0
			continue
		}
		if failures++; failures >= 2 {
			ws.drop(conn, "ping failure", err)
			return
		}
	}
}

func (ws *WebSocket) current() *websocket.Conn {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return ws.conn
}

// drop closes conn if it is still current and starts reconnecting unless the
// socket is shutting down.
func (ws *WebSocket) drop(conn *websocket.Conn, reason string, cause error) {
	ws.mu.Lock()
	if ws.conn != conn {
		ws.mu.Unlock()
		return
	}
	ws.conn = nil
	ws.mu.Unlock()
	_ = conn.Close(websocket.StatusGoingAway, reason)

	if ws.ctx.Err() != nil {
		return
	}
	ws.logger.Warn("chatlink_ws_dropped", zap.String("reason", reason), zap.Error(cause))
	ws.setState(StateDisconnected)
	ws.reconnect()
}

func (ws *WebSocket) reconnect() {
	if ws.maxReconnect <= 0 {
		return
	}
	ws.setState(StateReconnecting)
	go func() {
		for attempt := 1; attempt <= ws.maxReconnect; attempt++ {
			if err := sleepCtx(ws.ctx, backoff(attempt)); err != nil {
				return
			}
			if err := ws.dial(ws.ctx); err != nil {
				ws.logger.Debug("chatlink_ws_redial_failed", zap.Int("attempt", attempt), zap.Error(err))
				continue
			}
			return
		}
		ws.setState(StateFailed)
	}()
}

// WriteJSON sends v on the current connection. Writes are serialised.
func (ws *WebSocket) WriteJSON(ctx context.Context, v any) error {
	conn := ws.current()
	if conn == nil {
		return ErrNotConnected
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	ws.writeMu.Lock()
	defer ws.writeMu.Unlock()
	return wsjson.Write(ctx, conn, v)
}

// Close stops reconnecting, closes the connection and waits for the loops.
func (ws *WebSocket) Close(ctx context.Context) error {
	ws.cancel()
	ws.mu.Lock()
	conn := ws.conn
	ws.conn = nil
	ws.mu.Unlock()
	if conn != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "close")
	}

	done := make(chan struct{})
	go func() {
		ws.wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		ws.setState(StateDisconnected)
		return nil
	}
}

func (ws *WebSocket) setState(s State) {
	ws.mu.Lock()
	ws.state = s
	ws.mu.Unlock()

	ws.handlersMu.RLock()
	handlers := append([]StateHandler(nil), ws.onStateChange...)
	ws.handlersMu.RUnlock()
	for _, h := range handlers {
		h(s)
	}
}

func (ws *WebSocket) handshakeHeaders() http.Header {
	hdr := http.Header{}
	if ws.headers == nil {
		return hdr
	}
	for k, v := range ws.headers() {
		if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
			hdr.Set(k, v)
		}
	}
	return hdr
}
