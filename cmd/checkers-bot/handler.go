package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/park285/Cheese-Checkers-bot/internal/adapter/presenter"
	"github.com/park285/Cheese-Checkers-bot/internal/bot"
	"github.com/park285/Cheese-Checkers-bot/internal/chatlink"
	"github.com/park285/Cheese-Checkers-bot/internal/command"
	svccheckers "github.com/park285/Cheese-Checkers-bot/internal/service/checkers"
)

const commandTimeout = 20 * time.Second

type handler struct {
	prefix    string
	service   *svccheckers.Service
	formatter *presenter.Formatter
	out       *presenter.Presenter
	logger    *zap.Logger
}

// handle runs one chat message. Messages without the prefix are ignored.
func (h *handler) handle(ctx context.Context, msg *chatlink.Message) {
	if msg == nil {
		return
	}
	text := strings.TrimSpace(msg.Msg)
	if !strings.HasPrefix(text, h.prefix) {
		return
	}
	cmd := command.Parse(strings.TrimPrefix(text, h.prefix))

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	start := time.Now()
	err := h.dispatch(ctx, msg.Room, metaFor(msg), cmd)
	fields := []zap.Field{
		zap.String("room", msg.Room),
		zap.Stringer("kind", cmd.Kind),
		zap.Duration("took", time.Since(start)),
	}
	if err != nil {
		h.logger.Warn("command_reply_failed", append(fields, zap.Error(err))...)
		return
	}
	h.logger.Debug("command_handled", fields...)
}

func (h *handler) dispatch(ctx context.Context, room string, meta svccheckers.SessionMeta, cmd command.Command) error {
	switch cmd.Kind {
	case command.Help:
		return h.out.Text(ctx, room, h.formatter.Help())

	case command.Board, command.Status:
		state, err := h.service.Status(ctx, meta)
		if err != nil {
			return h.fail(ctx, room, err, "")
		}
		text := ""
		if cmd.Kind == command.Status {
			text = h.formatter.Status(state)
		}
		return h.out.Board(ctx, room, text, state.BoardImage)

	case command.Start:
		state, err := h.service.StartSession(ctx, meta, cmd.Preset)
		resumed := errors.Is(err, svccheckers.ErrSessionInProgress)
		if err != nil && !resumed {
			return h.fail(ctx, room, err, cmd.Preset)
		}
		if state == nil {
			return h.out.Text(ctx, room, h.formatter.NoSession())
		}
		return h.out.Board(ctx, room, h.formatter.Start(state, resumed), state.BoardImage)

	case command.Move:
		summary, err := h.service.Play(ctx, meta, cmd.Move)
		if err != nil {
			return h.fail(ctx, room, err, cmd.Move)
		}
		return h.out.Board(ctx, room, h.formatter.Move(summary), summary.State.BoardImage)

	case command.Hint:
		hint, err := h.service.Hint(ctx, meta)
		if err != nil {
			return h.fail(ctx, room, err, "")
		}
		return h.out.Text(ctx, room, h.formatter.Hint(hint))

	case command.Resign:
		state, err := h.service.Resign(ctx, meta)
		if err != nil {
			return h.fail(ctx, room, err, "")
		}
		return h.out.Board(ctx, room, h.formatter.Resign(state), state.BoardImage)

	case command.History:
		games, err := h.service.History(ctx, meta, cmd.Limit)
		if err != nil {
			return h.fail(ctx, room, err, "")
		}
		return h.out.Text(ctx, room, h.formatter.History(games))

	case command.Game:
		game, err := h.service.Game(ctx, meta, cmd.GameID)
		if err != nil {
			return h.fail(ctx, room, err, strconv.FormatInt(cmd.GameID, 10))
		}
		return h.out.Text(ctx, room, h.formatter.Game(game))

	case command.Profile:
		profile, err := h.service.Profile(ctx, meta)
		if err != nil {
			return h.fail(ctx, room, err, "")
		}
		return h.out.Text(ctx, room, h.formatter.Profile(profile))

	case command.Prefer:
		profile, err := h.service.UpdatePreferredPreset(ctx, meta, cmd.Preset)
		if err != nil {
			return h.fail(ctx, room, err, cmd.Preset)
		}
		return h.out.Text(ctx, room, h.formatter.PreferredPresetUpdated(profile))

	default:
		if strings.HasPrefix(strings.ToLower(cmd.Raw), "game") {
			return h.out.Text(ctx, room, h.formatter.GameUsage())
		}
		return h.out.Text(ctx, room, h.formatter.Unknown())
	}
}

// fail tells the room what went wrong. Unexpected errors are logged and still
// answered with a generic message.
func (h *handler) fail(ctx context.Context, room string, err error, input string) error {
	text := h.formatter.Error(err, input)
	if !isUserError(err) {
		h.logger.Error("command_failed", zap.String("room", room), zap.Error(err))
	}
	if sendErr := h.out.Text(ctx, room, text); sendErr != nil {
		return fmt.Errorf("reply after %v: %w", err, sendErr)
	}
	return nil
}

func isUserError(err error) bool {
	for _, target := range []error{
		svccheckers.ErrSessionNotFound,
		svccheckers.ErrInvalidMove,
		svccheckers.ErrRoomNotAllowed,
		svccheckers.ErrGameNotFound,
		svccheckers.ErrProfileNotFound,
		bot.ErrUnknownPreset,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func metaFor(msg *chatlink.Message) svccheckers.SessionMeta {
	user := msg.UserID()
	if user == "" {
		user = "player"
	}
	sender := msg.SenderName()
	if sender == "" {
		sender = user
	}
	return svccheckers.SessionMeta{
		SessionID: strings.TrimSpace(msg.Room) + ":" + user,
		Room:      msg.Room,
		Sender:    sender,
	}
}
