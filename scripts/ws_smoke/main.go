package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/chatroomai/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:3500/ws", "WebSocket address")
	user := flag.String("user", "tester", "name to enter the room with")
	room := flag.String("room", "lobby", "room name")
	text := flag.String("text", "hello from smoke test", "message text to send")
	ai := flag.Bool("ai", false, "also send an /ai prompt and wait for the reply")
	timeout := flag.Duration("timeout", 10*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	mustSend := func(event string, data any) error {
		if err := wsjson.Write(ctx, conn, proto.Outbound{Event: event, Data: data}); err != nil {
			return fmt.Errorf("send %s: %w", event, err)
		}
		return nil
	}

	if err := mustSend(proto.EventEnterRoom, proto.EnterRoomData{Name: *user, Room: *room}); err != nil {
		return err
	}
	if err := mustSend(proto.EventMessage, proto.MessageData{Name: *user, Text: *text}); err != nil {
		return err
	}
	if *ai {
		if err := mustSend(proto.EventMessage, proto.MessageData{Name: *user, Text: "/ai say hi"}); err != nil {
			return err
		}
	}

	gotEcho := false
	for {
		var frame struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			return fmt.Errorf("read: %w", err)
		}
		fmt.Printf("Received event=%s data=%s\n", frame.Event, string(frame.Data))

		if frame.Event != proto.EventMessage {
			continue
		}
		var msg proto.ChatMessage
		if err := json.Unmarshal(frame.Data, &msg); err != nil {
			return fmt.Errorf("unmarshal message: %w", err)
		}
		switch {
		case msg.Name == *user && msg.Text == *text:
			gotEcho = true
		case msg.Name == "AI" && *ai:
			fmt.Printf("AI replied at %s: %q\n", msg.Time, msg.Text)
			return nil
		}
		if gotEcho && !*ai {
			return nil
		}
	}
}
