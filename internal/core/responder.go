package core

import (
	"context"

	"github.com/vovakirdan/chatroomai/internal/llm"
)

const (
	clearCommand    = "/clear"
	aiCommandPrefix = "/ai "
)

// Completer produces a reply for a role-tagged prompt.
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message) (string, error)
}

type noCompleter struct{}

func (noCompleter) Complete(context.Context, []llm.Message) (string, error) {
	return "", ErrNoCompleter
}

// promptFromLog converts log entries into completion messages.
func promptFromLog(entries []LogEntry) []llm.Message {
	msgs := make([]llm.Message, 0, len(entries))
	for _, e := range entries {
		role := e.Role
		if role == "" {
			role = RoleUser
		}
		msgs = append(msgs, llm.Message{Role: role, Content: e.Text})
	}
	return msgs
}

// aiResult is a finished completion on its way back to the hub goroutine.
type aiResult struct {
	room    string
	oneShot bool
	gen     uint64
	text    string
	err     error
}

// triggerAutoReply starts the room's auto reply, or marks one pending if a reply is
// already in flight. At most one auto reply per room runs at a time. A pending reply
// remembers the log length at the latest trigger and answers the log as it stood then.
func (h *hub) triggerAutoReply(ctx context.Context, room string) {
	size, err := h.msgLog.Len(ctx, room)
	if err != nil {
		h.log.Error().Err(err).Str("room", room).Msg("read room log length")
		h.broadcastRoom(room, h.messageEvent(room, AdminName, ErrTextAIFailed), nil)
		return
	}

	if h.inFlight[room] {
		h.pending[room] = size
		h.log.Debug().Str("room", room).Int("log_size", size).Msg("ai reply in flight, coalescing")
		return
	}
	h.startAutoReply(ctx, room, size)
}

func (h *hub) startAutoReply(ctx context.Context, room string, size int) {
	window := h.settings.Window(room)
	entries, err := RecentAt(ctx, h.msgLog, room, window, size)
	if err != nil {
		h.log.Error().Err(err).Str("room", room).Msg("read ai context window")
		h.broadcastRoom(room, h.messageEvent(room, AdminName, ErrTextAIFailed), nil)
		return
	}

	h.inFlight[room] = true
	h.log.Info().Str("room", room).Int("window", window).Int("entries", len(entries)).Msg("calling ai")
	h.complete(ctx, room, false, promptFromLog(entries))
}

// complete runs one completion off the hub goroutine and posts the result back.
func (h *hub) complete(ctx context.Context, room string, oneShot bool, prompt []llm.Message) {
	gen := h.clearGen[room]
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()

		var (
			callCtx context.Context
			cancel  context.CancelFunc
		)
		if h.aiTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, h.aiTimeout)
		} else {
			callCtx, cancel = context.WithCancel(ctx)
		}
		defer cancel()

		text, err := h.completer.Complete(callCtx, prompt)
		select {
		case h.aiResults <- aiResult{room: room, oneShot: oneShot, gen: gen, text: text, err: err}:
		case <-ctx.Done():
		}
	}()
}

// handleAIResult delivers a finished completion to its room.
// Auto replies are appended to the log as assistant entries, one-shot replies are not.
// Auto replies started before the room's latest /clear are discarded.
func (h *hub) handleAIResult(ctx context.Context, res aiResult) {
	if res.oneShot {
		h.deliverAIResult(ctx, res)
		return
	}

	delete(h.inFlight, res.room)
	if res.gen != h.clearGen[res.room] {
		h.log.Debug().Str("room", res.room).Msg("ai reply started before clear, discarded")
	} else {
		h.deliverAIResult(ctx, res)
	}

	size, ok := h.pending[res.room]
	if !ok {
		return
	}
	delete(h.pending, res.room)
	if h.settings.IsEnabled(res.room) {
		h.startAutoReply(ctx, res.room, size)
	}
}

func (h *hub) deliverAIResult(ctx context.Context, res aiResult) {
	if res.err != nil {
		h.log.Error().Err(res.err).Str("room", res.room).Bool("one_shot", res.oneShot).Msg("ai completion failed")
		h.broadcastRoom(res.room, h.messageEvent(res.room, AdminName, aiErrorText(res.err)), nil)
		return
	}

	_, live := h.rooms.get(res.room)
	if !res.oneShot && (live || !h.forgetEmpty) {
		h.appendLog(ctx, res.room, LogEntry{Text: res.text, Role: RoleAssistant})
	}
	h.broadcastRoom(res.room, h.messageEvent(res.room, AIName, res.text), nil)
}
