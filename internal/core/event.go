package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventMessage carries a chat message (human, AI or admin).
	EventMessage EventKind = iota
	// EventUserList carries the refreshed member list of a room.
	EventUserList
	// EventRoomList carries the refreshed list of active rooms.
	EventRoomList
	// EventAIChange reports a change of a room's AI settings.
	EventAIChange
	// EventActivity reports that someone in the room is typing.
	EventActivity
)

// AIChange holds the settings fields that changed. Nil fields are unchanged.
type AIChange struct {
	Enabled *bool
	LastN   *int
}

// Event is sent to clients to describe what happened in the system.
// A single Event may be shared by many recipients and must not be mutated.
type Event struct {
	Kind     EventKind
	Room     string
	Message  ChatMessage
	Users    []User
	Rooms    []string
	AI       AIChange
	Activity string
}
