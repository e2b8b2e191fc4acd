package core

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/chatroomai/internal/llm"
)

func waitFor(t *testing.T, ch <-chan *Event, desc string, match func(*Event) bool) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if match(ev) {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected %s not received", desc)
	return nil
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()
	return waitFor(t, ch, fmt.Sprintf("event kind %v", kind), func(ev *Event) bool {
		return ev.Kind == kind
	})
}

func mustMessage(t *testing.T, ch <-chan *Event, name, text string) *Event {
	t.Helper()
	return waitFor(t, ch, fmt.Sprintf("message %s: %q", name, text), func(ev *Event) bool {
		return ev.Kind == EventMessage && ev.Message.Name == name && ev.Message.Text == text
	})
}

type fakeCompleter struct {
	mu    sync.Mutex
	calls [][]llm.Message
	reply string
	err   error
	gate  chan struct{}
}

func (f *fakeCompleter) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, messages)
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.reply, f.err
}

func (f *fakeCompleter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeCompleter) call(i int) []llm.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i]
}

type recordingAudit struct {
	mu      sync.Mutex
	records []AuditRecord
}

func (r *recordingAudit) Record(_ context.Context, rec AuditRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

func (r *recordingAudit) snapshot() []AuditRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]AuditRecord, len(r.records))
	copy(out, r.records)
	return out
}

// startHub runs a hub for the duration of the test and returns it with its log.
func startHub(t *testing.T, opts Options) (Hub, *MemoryLog) {
	t.Helper()

	log := NewMemoryLog()
	opts.Log = log
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(opts)
	go hub.Run(ctx)
	t.Cleanup(cancel)

	return hub, log
}

// joinClient connects a client and waits until it has entered room.
func joinClient(t *testing.T, hub Hub, id, name, room string) *Client {
	t.Helper()

	c := NewClient(id, 0)
	hub.RegisterClient(c)
	c.Commands <- &Command{Kind: CommandEnterRoom, Name: name, Room: room}
	mustMessage(t, c.Events, AdminName, fmt.Sprintf("You have joined the %s chat room", room))
	return c
}

func logEntries(t *testing.T, log MessageLog, room string) []LogEntry {
	t.Helper()

	entries, err := log.Tail(context.Background(), room, 1000)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	return entries
}
