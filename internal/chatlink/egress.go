package chatlink

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Egress sends replies back to a room.
type Egress interface {
	SendText(ctx context.Context, room, message string) error
	SendImage(ctx context.Context, room, imageBase64 string) error
}

const (
	EgressHTTP = "http"
	EgressWS   = "ws"
	EgressAuto = "auto"
)

// NewEgress picks the reply path. "auto" writes on the websocket while it is
// connected and falls back to HTTP once per reply.
func NewEgress(mode string, c *Client, ws *WebSocket, logger *zap.Logger) (Egress, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", EgressHTTP:
		if c == nil {
			return nil, fmt.Errorf("http egress needs a client")
		}
		return c, nil
	case EgressWS:
		if ws == nil {
			return nil, fmt.Errorf("ws egress needs a websocket")
		}
		return wsEgress{ws: ws}, nil
	case EgressAuto:
		if c == nil || ws == nil {
			return nil, fmt.Errorf("auto egress needs both a client and a websocket")
		}
		return &autoEgress{ws: wsEgress{ws: ws}, http: c, logger: logger}, nil
	default:
		return nil, fmt.Errorf("unknown egress mode %q", mode)
	}
}

type wsEgress struct{ ws *WebSocket }

func (w wsEgress) SendText(ctx context.Context, room, message string) error {
	return w.ws.WriteJSON(ctx, ReplyRequest{Type: "text", Room: room, Data: message})
}

func (w wsEgress) SendImage(ctx context.Context, room, imageBase64 string) error {
	return w.ws.WriteJSON(ctx, ReplyRequest{Type: "image", Room: room, Data: imageBase64})
}

type autoEgress struct {
	ws     wsEgress
	http   *Client
	logger *zap.Logger
}

func (a *autoEgress) SendText(ctx context.Context, room, message string) error {
	if a.ws.ws.State() == StateConnected {
		err := a.ws.SendText(ctx, room, message)
		if err == nil {
			return nil
		}
		a.logger.Warn("egress_fallback", zap.String("type", "text"), zap.String("room", room), zap.Error(err))
	}
	return a.http.SendText(ctx, room, message)
}

func (a *autoEgress) SendImage(ctx context.Context, room, imageBase64 string) error {
	if a.ws.ws.State() == StateConnected {
		err := a.ws.SendImage(ctx, room, imageBase64)
		if err == nil {
			return nil
		}
		a.logger.Warn("egress_fallback", zap.String("type", "image"), zap.String("room", room), zap.Error(err))
	}
	return a.http.SendImage(ctx, room, imageBase64)
}
