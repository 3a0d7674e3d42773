package presenter

import (
	"context"
	"encoding/base64"
	"strings"
)

// SendFunc delivers one payload to a chat room.
type SendFunc func(ctx context.Context, room, payload string) error

// Presenter sends text and board images without knowing the transport.
type Presenter struct {
	sendText  SendFunc
	sendImage SendFunc
}

func NewPresenter(sendText, sendImage SendFunc) *Presenter {
	return &Presenter{sendText: sendText, sendImage: sendImage}
}

// Text sends message unless it is blank.
func (p *Presenter) Text(ctx context.Context, room, message string) error {
	if p == nil || p.sendText == nil || strings.TrimSpace(message) == "" {
		return nil
	}
	return p.sendText(ctx, room, message)
}

// Board sends the message first and then the PNG as base64.
func (p *Presenter) Board(ctx context.Context, room, message string, png []byte) error {
	if p == nil {
		return nil
	}
	if err := p.Text(ctx, room, message); err != nil {
		return err
	}
	if len(png) == 0 || p.sendImage == nil {
		return nil
	}
	return p.sendImage(ctx, room, base64.StdEncoding.EncodeToString(png))
}
