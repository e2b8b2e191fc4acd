package core

import (
	"errors"

	"github.com/vovakirdan/chatroomai/internal/llm"
)

// Admin notices used when a completion fails.
const (
	ErrTextAIFailed     = "Error fetching AI response"
	ErrTextAINoResponse = "No response from AI"
)

var (
	// ErrNoCompleter is returned when the hub runs without a completion backend.
	ErrNoCompleter = errors.New("no completion backend configured")
	// ErrHubStopped is returned by queries issued after the hub stopped.
	ErrHubStopped = errors.New("hub stopped")
)

// aiErrorText maps a completion failure to the notice shown in the room.
func aiErrorText(err error) string {
	if errors.Is(err, llm.ErrNoResponse) {
		return ErrTextAINoResponse
	}
	return ErrTextAIFailed
}
