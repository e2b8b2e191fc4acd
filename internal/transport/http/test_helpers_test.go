package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatroomai/internal/config"
	"github.com/vovakirdan/chatroomai/internal/core"
	"github.com/vovakirdan/chatroomai/internal/llm"
	"github.com/vovakirdan/chatroomai/internal/proto"
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Port = 0
	cfg.StaticDir = ""
	cfg.ReadHeaderTimeout = time.Second
	cfg.ShutdownTimeout = time.Second
	return cfg
}

// startTestServer runs a hub backed by a fake completion endpoint that always answers reply.
func startTestServer(t *testing.T, cfg config.Config, reply string) *httptest.Server {
	t.Helper()

	completions := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": reply}}},
		})
	}))
	t.Cleanup(completions.Close)

	logger := zerolog.Nop()
	hub := core.NewHub(core.Options{
		Completer:      llm.NewClient(llm.Config{BaseURL: completions.URL, Timeout: time.Second}),
		Logger:         &logger,
		WelcomeMessage: cfg.WelcomeMessage,
		TimeFormat:     cfg.TimeFormat,
	})
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	server := NewServer(hub, &cfg, &logger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts
}

func dial(t *testing.T, ctx context.Context, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func sendEvent(t *testing.T, ctx context.Context, conn *websocket.Conn, event string, data any) {
	t.Helper()

	if err := wsjson.Write(ctx, conn, map[string]any{"event": event, "data": data}); err != nil {
		t.Fatalf("write %s: %v", event, err)
	}
}

// readUntil reads frames until match accepts one.
func readUntil(t *testing.T, ctx context.Context, conn *websocket.Conn, desc string, match func(frame) bool) frame {
	t.Helper()

	for {
		var f frame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			t.Fatalf("waiting for %s: %v", desc, err)
		}
		if match(f) {
			return f
		}
	}
}

func readMessage(t *testing.T, ctx context.Context, conn *websocket.Conn, name, text string) proto.ChatMessage {
	t.Helper()

	var msg proto.ChatMessage
	readUntil(t, ctx, conn, name+": "+text, func(f frame) bool {
		if f.Event != proto.EventMessage {
			return false
		}
		var m proto.ChatMessage
		if err := json.Unmarshal(f.Data, &m); err != nil {
			return false
		}
		msg = m
		return m.Name == name && m.Text == text
	})
	return msg
}

func enterRoom(t *testing.T, ctx context.Context, conn *websocket.Conn, name, room string) {
	t.Helper()

	sendEvent(t, ctx, conn, proto.EventEnterRoom, proto.EnterRoomData{Name: name, Room: room})
	readMessage(t, ctx, conn, core.AdminName, "You have joined the "+room+" chat room")
}
