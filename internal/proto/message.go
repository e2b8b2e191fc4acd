// Package proto defines the JSON frames exchanged over the WebSocket.
package proto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Envelope is the frame read from clients: an event name plus its payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Outbound is the frame written to clients.
type Outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Event names. Message and activity are used in both directions.
const (
	EventEnterRoom    = "enterRoom"
	EventMessage      = "message"
	EventAIEnable     = "aiEnable"
	EventNumMsgChange = "numMsgChange"
	EventActivity     = "activity"
	EventUserList     = "userList"
	EventRoomList     = "roomList"
	EventAIChange     = "aiChange"
)

// EnterRoomData registers the sender under a name in a room.
type EnterRoomData struct {
	Name string `json:"name"`
	Room string `json:"room"`
}

// MessageData is a chat message sent by a client.
type MessageData struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// AIEnableData toggles the auto-responder. An empty room means the sender's room.
type AIEnableData struct {
	Room    string `json:"room"`
	Enabled bool   `json:"enabled"`
}

// NumMsgChangeData sets the AI context window of a room.
type NumMsgChangeData struct {
	Room string  `json:"room"`
	Num  FlexInt `json:"num"`
}

// FlexInt accepts a JSON number or a numeric string.
type FlexInt int

func (n *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("num: %w", err)
		}
		*n = FlexInt(v)
		return nil
	}
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = FlexInt(v)
	return nil
}

// ActivityData names the user who is typing. Clients may send the bare name string.
type ActivityData struct {
	Name string `json:"name"`
}

func (a *ActivityData) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &a.Name)
	}
	type plain ActivityData
	return json.Unmarshal(b, (*plain)(a))
}

// ChatMessage is a message delivered to clients.
type ChatMessage struct {
	Name string `json:"name"`
	Text string `json:"text"`
	Time string `json:"time"`
}

// User is one member in a userList payload.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Room string `json:"room"`
}

// UserList carries the members of a room.
type UserList struct {
	Users []User `json:"users"`
}

// RoomList carries the active rooms.
type RoomList struct {
	Rooms []string `json:"rooms"`
}

// AIChange reports changed AI settings. Absent fields did not change.
type AIChange struct {
	Enabled *bool `json:"enabled,omitempty"`
	LastN   *int  `json:"lastN,omitempty"`
}
