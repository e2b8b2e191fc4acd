package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatroomai/internal/core"
)

// RoomHandlers provides read-only HTTP handlers over the hub's live rooms.
type RoomHandlers struct {
	hub core.Hub
	log *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(hub core.Hub, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		hub: hub,
		log: logger,
	}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RoomResponse represents a room in API responses.
type RoomResponse struct {
	Name      string `json:"name"`
	Members   int    `json:"members"`
	AIEnabled bool   `json:"ai_enabled"`
	Window    int    `json:"window"`
}

// UserResponse represents a room member.
type UserResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RoomDetailResponse represents one room with its members.
type RoomDetailResponse struct {
	RoomResponse
	Users     []UserResponse `json:"users"`
	LogLength int            `json:"log_length"`
}

// ListRoomsResponse represents the list rooms response.
type ListRoomsResponse struct {
	Rooms []RoomResponse `json:"rooms"`
}

func roomResponse(info core.RoomInfo) RoomResponse {
	return RoomResponse{
		Name:      info.Name,
		Members:   info.Members,
		AIEnabled: info.AI.Enabled,
		Window:    info.AI.Window,
	}
}

// ListRooms returns the active rooms.
// GET /api/rooms
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	rooms, err := h.hub.Rooms(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list rooms")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	resp := ListRoomsResponse{Rooms: make([]RoomResponse, 0, len(rooms))}
	for _, r := range rooms {
		resp.Rooms = append(resp.Rooms, roomResponse(r))
	}
	c.JSON(http.StatusOK, resp)
}

// GetRoom returns one active room with its members and log length.
// GET /api/rooms/:room
func (h *RoomHandlers) GetRoom(c *gin.Context) {
	name := c.Param("room")

	detail, found, err := h.hub.Room(c.Request.Context(), name)
	if err != nil {
		h.log.Error().Err(err).Str("room", name).Msg("failed to get room")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
		return
	}

	users := make([]UserResponse, 0, len(detail.Users))
	for _, u := range detail.Users {
		users = append(users, UserResponse{ID: u.ID, Name: u.Name})
	}
	c.JSON(http.StatusOK, RoomDetailResponse{
		RoomResponse: roomResponse(detail.RoomInfo),
		Users:        users,
		LogLength:    detail.LogLength,
	})
}
