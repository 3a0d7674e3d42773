package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/park285/Cheese-Checkers-bot/internal/chatlink"
	appcfg "github.com/park285/Cheese-Checkers-bot/internal/config"
)

// linkcheck checks the chat bridge: GET /config, then listens on the
// websocket for a while and prints what arrives.
func main() {
	listen := flag.Duration("listen", 10*time.Second, "how long to watch websocket traffic")
	room := flag.String("room", "", "send a test reply to this room")
	flag.Parse()

	cfg := appcfg.LoadLocal()
	baseURL := os.Getenv("IRIS_BASE_URL")
	wsURL := os.Getenv("IRIS_WS_URL")
	cfg.XUserID = os.Getenv("X_USER_ID")
	cfg.XUserEmail = os.Getenv("X_USER_EMAIL")
	cfg.XSessionID = os.Getenv("X_SESSION_ID")
	if baseURL == "" {
		log.Fatal("IRIS_BASE_URL is required")
	}

	client := chatlink.NewClient(baseURL,
		chatlink.WithHeaderProvider(cfg.BridgeHeaders),
		chatlink.WithTimeout(8*time.Second),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if bc, err := client.Config(ctx); err != nil {
		log.Printf("/config error: %v", err)
	} else {
		log.Printf("/config ok: bot=%s port=%d polling=%d rate=%d endpoint=%s",
			bc.BotName, bc.Port, bc.PollingSpeed, bc.MessageRate, bc.WebserverEndpoint)
	}

	if *room != "" {
		if err := client.SendText(ctx, *room, "checkers linkcheck"); err != nil {
			log.Printf("/reply error: %v", err)
		} else {
			log.Printf("/reply ok: room=%s", *room)
		}
	}

	if wsURL == "" {
		log.Println("IRIS_WS_URL not set; skipping websocket check")
		return
	}

	ws := chatlink.NewWebSocket(wsURL, 0, chatlink.WithWSHeaders(cfg.BridgeHeaders))
	ws.OnStateChange(func(state chatlink.State) { log.Printf("ws state: %s", state) })
	ws.OnMessage(func(msg *chatlink.Message) {
		fmt.Printf("ws msg room=%s from=%s text=%q\n", msg.Room, msg.UserID(), msg.Msg)
	})

	cctx, ccancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer ccancel()
	if err := ws.Connect(cctx); err != nil {
		log.Printf("ws connect error: %v", err)
		return
	}
	time.Sleep(*listen)
	_ = ws.Close(context.Background())
}
