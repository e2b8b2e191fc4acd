package http

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/chatroomai/internal/core"
	"github.com/vovakirdan/chatroomai/internal/proto"
)

func TestEnvelopeToCommand(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want core.Command
	}{
		{name: "enterRoom", in: `{"event":"enterRoom","data":{"name":"alice","room":"lobby"}}`, want: core.Command{Kind: core.CommandEnterRoom, Name: "alice", Room: "lobby"}},
		{name: "message", in: `{"event":"message","data":{"name":"alice","text":"hi"}}`, want: core.Command{Kind: core.CommandSendMessage, Name: "alice", Text: "hi"}},
		{name: "aiEnable", in: `{"event":"aiEnable","data":{"room":"lobby","enabled":true}}`, want: core.Command{Kind: core.CommandAIEnable, Room: "lobby", Enabled: true}},
		{name: "numMsgChange number", in: `{"event":"numMsgChange","data":{"room":"lobby","num":4}}`, want: core.Command{Kind: core.CommandNumMsgChange, Room: "lobby", Num: 4}},
		{name: "numMsgChange string", in: `{"event":"numMsgChange","data":{"room":"lobby","num":"7"}}`, want: core.Command{Kind: core.CommandNumMsgChange, Room: "lobby", Num: 7}},
		{name: "activity bare", in: `{"event":"activity","data":"alice"}`, want: core.Command{Kind: core.CommandActivity, Name: "alice"}},
		{name: "activity object", in: `{"event":"activity","data":{"name":"alice"}}`, want: core.Command{Kind: core.CommandActivity, Name: "alice"}},
		{name: "activity empty", in: `{"event":"activity"}`, want: core.Command{Kind: core.CommandActivity}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var env proto.Envelope
			require.NoError(t, json.Unmarshal([]byte(tt.in), &env))

			cmd, err := envelopeToCommand(env)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *cmd)
		})
	}
}

func TestEnvelopeToCommandRejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{name: "unknown event", in: `{"event":"hello","data":{}}`, want: errUnknownEvent},
		{name: "missing room", in: `{"event":"enterRoom","data":{"name":"alice"}}`, want: errInvalidData},
		{name: "missing data", in: `{"event":"message"}`, want: errInvalidData},
		{name: "bad num", in: `{"event":"numMsgChange","data":{"num":"many"}}`, want: errInvalidData},
		{name: "wrong type", in: `{"event":"aiEnable","data":{"enabled":"yes"}}`, want: errInvalidData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var env proto.Envelope
			require.NoError(t, json.Unmarshal([]byte(tt.in), &env))

			_, err := envelopeToCommand(env)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestOutboundFromEvent(t *testing.T) {
	enabled := true
	lastN := 5

	tests := []struct {
		name  string
		event core.Event
		want  string
	}{
		{
			name:  "message",
			event: core.Event{Kind: core.EventMessage, Message: core.ChatMessage{Name: "AI", Text: "hello", Time: "1:02:03 PM"}},
			want:  `{"event":"message","data":{"name":"AI","text":"hello","time":"1:02:03 PM"}}`,
		},
		{
			name:  "user list",
			event: core.Event{Kind: core.EventUserList, Users: []core.User{{ID: "1", Name: "alice", Room: "lobby"}}},
			want:  `{"event":"userList","data":{"users":[{"id":"1","name":"alice","room":"lobby"}]}}`,
		},
		{
			name:  "empty user list",
			event: core.Event{Kind: core.EventUserList},
			want:  `{"event":"userList","data":{"users":[]}}`,
		},
		{
			name:  "room list",
			event: core.Event{Kind: core.EventRoomList},
			want:  `{"event":"roomList","data":{"rooms":[]}}`,
		},
		{
			name:  "ai enabled",
			event: core.Event{Kind: core.EventAIChange, AI: core.AIChange{Enabled: &enabled}},
			want:  `{"event":"aiChange","data":{"enabled":true}}`,
		},
		{
			name:  "ai window",
			event: core.Event{Kind: core.EventAIChange, AI: core.AIChange{LastN: &lastN}},
			want:  `{"event":"aiChange","data":{"lastN":5}}`,
		},
		{
			name:  "activity",
			event: core.Event{Kind: core.EventActivity, Activity: "bob"},
			want:  `{"event":"activity","data":"bob"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, ok := outboundFromEvent(&tt.event)
			require.True(t, ok)
			b, err := json.Marshal(out)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(b))
		})
	}

	_, ok := outboundFromEvent(&core.Event{Kind: core.EventKind(99)})
	assert.False(t, ok)
}
