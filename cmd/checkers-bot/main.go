package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/park285/Cheese-Checkers-bot/internal/adapter/presenter"
	"github.com/park285/Cheese-Checkers-bot/internal/builder"
	"github.com/park285/Cheese-Checkers-bot/internal/chatlink"
	appcfg "github.com/park285/Cheese-Checkers-bot/internal/config"
	"github.com/park285/Cheese-Checkers-bot/internal/msgcat"
	"github.com/park285/Cheese-Checkers-bot/internal/obslog"
)

func main() {
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer obslog.Sync()
	logger := obslog.L()

	cfg, err := appcfg.Load()
	if err != nil {
		logger.Fatal("config error", zap.Error(err))
	}

	catalog, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		logger.Fatal("message catalog error", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := builder.New(ctx, cfg, logger.Named("checkers"))
	if err != nil {
		logger.Fatal("checkers init error", zap.Error(err))
	}
	defer deps.Close()

	client := chatlink.NewClient(cfg.IrisBaseURL, chatlink.WithHeaderProvider(cfg.BridgeHeaders))
	ws := chatlink.NewWebSocket(cfg.IrisWSURL, 5,
		chatlink.WithWSHeaders(cfg.BridgeHeaders),
		chatlink.WithWSLogger(logger.Named("chatlink")),
	)
	ws.OnStateChange(func(state chatlink.State) {
		logger.Info("ws_state", zap.String("state", string(state)))
	})

	egress, err := chatlink.NewEgress(cfg.EgressMode, client, ws, logger)
	if err != nil {
		logger.Fatal("egress error", zap.Error(err))
	}

	h := &handler{
		prefix:    cfg.BotPrefix,
		service:   deps.Service,
		formatter: presenter.NewFormatter(catalog, cfg.BotPrefix, cfg.CheckersHistoryLimit, logger),
		out:       presenter.NewPresenter(egress.SendText, egress.SendImage),
		logger:    logger.Named("command"),
	}

	ws.OnMessage(func(msg *chatlink.Message) {
		if msg == nil || !strings.HasPrefix(strings.TrimSpace(msg.Msg), cfg.BotPrefix) {
			return
		}
		if len(cfg.AllowedRooms) > 0 && !slices.Contains(cfg.AllowedRooms, msg.Room) {
			logger.Debug("ignore_room", zap.String("room", msg.Room))
			return
		}
		// 수 계산이 WS 읽기 루프를 막지 않도록 분리
		go h.handle(ctx, msg)
	})

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err = ws.Connect(connectCtx)
	cancel()
	if err != nil {
		logger.Fatal("ws connect error", zap.Error(err))
	}
	logger.Info("checkers bot ready", zap.String("prefix", cfg.BotPrefix), zap.String("egress", cfg.EgressMode))

	<-ctx.Done()

	closeCtx, cancelClose := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelClose()
	_ = ws.Close(closeCtx)
}
