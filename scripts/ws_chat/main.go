package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/chatroomai/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func run() error {
	addr := flag.String("addr", "ws://localhost:3500/ws", "WebSocket address")
	user := flag.String("user", "cli-user", "username")
	room := flag.String("room", "lobby", "room to join")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(event string, data any) bool {
		if writeErr := wsjson.Write(ctx, conn, proto.Outbound{Event: event, Data: data}); writeErr != nil {
			cancel()
			log.Printf("send: %v", writeErr)
			return false
		}
		return true
	}

	send(proto.EventEnterRoom, proto.EnterRoomData{Name: *user, Room: *room})

	fmt.Printf("Connected to %s as %s in room %s\n", *addr, *user, *room)
	fmt.Println("Type messages and press Enter to send. /enable, /disable and /window N tune the AI. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, *user, *room, send)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var frame inbound
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		switch frame.Event {
		case proto.EventMessage:
			var msg proto.ChatMessage
			if err := json.Unmarshal(frame.Data, &msg); err != nil {
				log.Printf("unmarshal message: %v", err)
				continue
			}
			fmt.Printf("[%s] %s: %s\n", msg.Time, msg.Name, msg.Text)
		case proto.EventUserList:
			var list proto.UserList
			if err := json.Unmarshal(frame.Data, &list); err != nil {
				log.Printf("unmarshal userList: %v", err)
				continue
			}
			names := make([]string, 0, len(list.Users))
			for _, u := range list.Users {
				names = append(names, u.Name)
			}
			fmt.Printf("* users: %s\n", strings.Join(names, ", "))
		case proto.EventRoomList:
			var list proto.RoomList
			if err := json.Unmarshal(frame.Data, &list); err != nil {
				log.Printf("unmarshal roomList: %v", err)
				continue
			}
			fmt.Printf("* rooms: %s\n", strings.Join(list.Rooms, ", "))
		case proto.EventAIChange:
			fmt.Printf("* ai settings changed: %s\n", string(frame.Data))
		case proto.EventActivity:
			// typing indicators are noise in a terminal
		default:
			fmt.Printf("event=%s data=%s\n", frame.Event, string(frame.Data))
		}
	}
}

func writeLoop(ctx context.Context, user, room string, send func(event string, data any) bool) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}

			var sent bool
			switch {
			case text == "/enable" || text == "/disable":
				sent = send(proto.EventAIEnable, proto.AIEnableData{Room: room, Enabled: text == "/enable"})
			case strings.HasPrefix(text, "/window "):
				n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(text, "/window ")))
				if err != nil {
					fmt.Println("usage: /window N")
					continue
				}
				sent = send(proto.EventNumMsgChange, map[string]any{"room": room, "num": n})
			default:
				sent = send(proto.EventMessage, proto.MessageData{Name: user, Text: text})
			}
			if !sent {
				return
			}
		}
	}
}
