package core

const (
	// AdminName authors system notices.
	AdminName = "Admin"
	// AIName authors completion replies.
	AIName = "AI"

	// RoleUser marks log entries written by people.
	RoleUser = "user"
	// RoleAssistant marks log entries written by the AI responder.
	RoleAssistant = "assistant"
)

// ChatMessage is a message as delivered to clients.
type ChatMessage struct {
	Name string
	Text string
	Time string
}

// LogEntry is one line of a room's conversation log.
type LogEntry struct {
	Text string `json:"text"`
	Role string `json:"role"`
}
