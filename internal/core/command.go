package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandEnterRoom registers the client under a name and moves it into a room.
	CommandEnterRoom CommandKind = iota
	// CommandSendMessage delivers a chat message to the sender's room.
	CommandSendMessage
	// CommandAIEnable toggles the room's auto-responder.
	CommandAIEnable
	// CommandNumMsgChange sets the room's AI context window.
	CommandNumMsgChange
	// CommandActivity signals that the sender is typing.
	CommandActivity
)

func (k CommandKind) String() string {
	switch k {
	case CommandEnterRoom:
		return "enterRoom"
	case CommandSendMessage:
		return "message"
	case CommandAIEnable:
		return "aiEnable"
	case CommandNumMsgChange:
		return "numMsgChange"
	case CommandActivity:
		return "activity"
	default:
		return "unknown"
	}
}

// Command represents an action requested by a client.
type Command struct {
	Kind    CommandKind
	Name    string
	Room    string
	Text    string
	Enabled bool
	Num     int
}
