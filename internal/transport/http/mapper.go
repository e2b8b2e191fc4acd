package http

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vovakirdan/chatroomai/internal/core"
	"github.com/vovakirdan/chatroomai/internal/proto"
)

var (
	errUnknownEvent = errors.New("unknown event")
	errInvalidData  = errors.New("invalid payload")
)

func decodeData(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return fmt.Errorf("%w: missing data", errInvalidData)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidData, err)
	}
	return nil
}

func envelopeToCommand(env proto.Envelope) (*core.Command, error) {
	switch env.Event {
	case proto.EventEnterRoom:
		var data proto.EnterRoomData
		if err := decodeData(env.Data, &data); err != nil {
			return nil, err
		}
		if data.Name == "" || data.Room == "" {
			return nil, fmt.Errorf("%w: name and room are required", errInvalidData)
		}
		return &core.Command{Kind: core.CommandEnterRoom, Name: data.Name, Room: data.Room}, nil
	case proto.EventMessage:
		var data proto.MessageData
		if err := decodeData(env.Data, &data); err != nil {
			return nil, err
		}
		return &core.Command{Kind: core.CommandSendMessage, Name: data.Name, Text: data.Text}, nil
	case proto.EventAIEnable:
		var data proto.AIEnableData
		if err := decodeData(env.Data, &data); err != nil {
			return nil, err
		}
		return &core.Command{Kind: core.CommandAIEnable, Room: data.Room, Enabled: data.Enabled}, nil
	case proto.EventNumMsgChange:
		var data proto.NumMsgChangeData
		if err := decodeData(env.Data, &data); err != nil {
			return nil, err
		}
		return &core.Command{Kind: core.CommandNumMsgChange, Room: data.Room, Num: int(data.Num)}, nil
	case proto.EventActivity:
		var data proto.ActivityData
		if len(env.Data) > 0 && string(env.Data) != "null" {
			if err := json.Unmarshal(env.Data, &data); err != nil {
				return nil, fmt.Errorf("%w: %v", errInvalidData, err)
			}
		}
		return &core.Command{Kind: core.CommandActivity, Name: data.Name}, nil
	default:
		return nil, fmt.Errorf("%w %q", errUnknownEvent, env.Event)
	}
}

func outboundFromEvent(event *core.Event) (proto.Outbound, bool) {
	switch event.Kind {
	case core.EventMessage:
		return proto.Outbound{
			Event: proto.EventMessage,
			Data: proto.ChatMessage{
				Name: event.Message.Name,
				Text: event.Message.Text,
				Time: event.Message.Time,
			},
		}, true
	case core.EventUserList:
		users := make([]proto.User, 0, len(event.Users))
		for _, u := range event.Users {
			users = append(users, proto.User{ID: u.ID, Name: u.Name, Room: u.Room})
		}
		return proto.Outbound{Event: proto.EventUserList, Data: proto.UserList{Users: users}}, true
	case core.EventRoomList:
		rooms := event.Rooms
		if rooms == nil {
			rooms = []string{}
		}
		return proto.Outbound{Event: proto.EventRoomList, Data: proto.RoomList{Rooms: rooms}}, true
	case core.EventAIChange:
		return proto.Outbound{
			Event: proto.EventAIChange,
			Data:  proto.AIChange{Enabled: event.AI.Enabled, LastN: event.AI.LastN},
		}, true
	case core.EventActivity:
		return proto.Outbound{Event: proto.EventActivity, Data: event.Activity}, true
	default:
		return proto.Outbound{}, false
	}
}
