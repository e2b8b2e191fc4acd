package core

// User is a joined connection: who it is and where it is.
type User struct {
	ID   string
	Name string
	Room string
}

// Registry maps connection ids to users, keeping insertion order.
// It is owned by the hub goroutine and is not safe for concurrent use.
type Registry struct {
	users []User
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Join replaces any entry for id with a new one at the end of the order.
func (r *Registry) Join(id, name, room string) User {
	r.remove(id)
	user := User{ID: id, Name: name, Room: room}
	r.users = append(r.users, user)
	return user
}

// Leave removes and returns the entry for id.
func (r *Registry) Leave(id string) (User, bool) {
	return r.remove(id)
}

// Lookup returns the entry for id.
func (r *Registry) Lookup(id string) (User, bool) {
	for _, u := range r.users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

// UsersInRoom returns the users whose current room is room, in insertion order.
func (r *Registry) UsersInRoom(room string) []User {
	users := make([]User, 0)
	for _, u := range r.users {
		if u.Room == room {
			users = append(users, u)
		}
	}
	return users
}

// ActiveRooms returns the distinct rooms held by registered users, in insertion order.
func (r *Registry) ActiveRooms() []string {
	seen := make(map[string]struct{}, len(r.users))
	rooms := make([]string, 0)
	for _, u := range r.users {
		if _, ok := seen[u.Room]; ok {
			continue
		}
		seen[u.Room] = struct{}{}
		rooms = append(rooms, u.Room)
	}
	return rooms
}

// Len returns the number of registered users.
func (r *Registry) Len() int {
	return len(r.users)
}

func (r *Registry) remove(id string) (User, bool) {
	for i, u := range r.users {
		if u.ID == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return u, true
		}
	}
	return User{}, false
}
