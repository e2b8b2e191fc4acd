package core

// Room groups clients subscribed to the same channel.
type Room struct {
	Name    string
	clients map[*Client]struct{}
}

// NewRoom constructs a room with no clients.
func NewRoom(name string) *Room {
	return &Room{
		Name:    name,
		clients: make(map[*Client]struct{}),
	}
}

// AddClient inserts a client into the room. Returns true if newly added.
func (r *Room) AddClient(c *Client) bool {
	if _, exists := r.clients[c]; exists {
		return false
	}
	r.clients[c] = struct{}{}
	return true
}

// RemoveClient deletes a client from the room. Returns true if removed.
func (r *Room) RemoveClient(c *Client) bool {
	if _, exists := r.clients[c]; !exists {
		return false
	}
	delete(r.clients, c)
	return true
}

// Broadcast sends an event to all clients in the room except the given one (may be nil).
// Returns the number of clients whose queue was full.
func (r *Room) Broadcast(event *Event, except *Client) int {
	dropped := 0
	for client := range r.clients {
		if client == except {
			continue
		}
		if !client.send(event) {
			dropped++
		}
	}
	return dropped
}

// Len returns the number of subscribed clients.
func (r *Room) Len() int {
	return len(r.clients)
}

// Empty returns true if no clients are in the room.
func (r *Room) Empty() bool {
	return len(r.clients) == 0
}

// roomTable holds the live rooms in creation order. A room exists while it has members.
type roomTable struct {
	rooms map[string]*Room
	order []string
}

func newRoomTable() *roomTable {
	return &roomTable{rooms: make(map[string]*Room)}
}

func (t *roomTable) get(name string) (*Room, bool) {
	r, ok := t.rooms[name]
	return r, ok
}

// subscribe adds c to the named room, creating it on first member.
func (t *roomTable) subscribe(c *Client, name string) *Room {
	r, ok := t.rooms[name]
	if !ok {
		r = NewRoom(name)
		t.rooms[name] = r
		t.order = append(t.order, name)
	}
	r.AddClient(c)
	return r
}

// unsubscribe removes c from the named room. Returns true if the room was removed as a result.
func (t *roomTable) unsubscribe(c *Client, name string) bool {
	r, ok := t.rooms[name]
	if !ok {
		return false
	}
	r.RemoveClient(c)
	if !r.Empty() {
		return false
	}
	delete(t.rooms, name)
	for i, n := range t.order {
		if n == name {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// names returns the active room names in creation order.
func (t *roomTable) names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}
