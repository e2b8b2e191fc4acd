package core

// Context window bounds for the AI responder.
const (
	MinWindow     = 1
	MaxWindow     = 10
	DefaultWindow = 1
)

// AISettings controls whether and how the AI responder participates in a room.
type AISettings struct {
	Enabled bool
	Window  int
}

// ValidWindow reports whether n is an acceptable context window size.
func ValidWindow(n int) bool {
	return n >= MinWindow && n <= MaxWindow
}

// SettingsStore keeps per-room AI settings, created lazily with defaults.
// It is owned by the hub goroutine.
type SettingsStore struct {
	rooms map[string]*AISettings
}

// NewSettingsStore creates an empty store.
func NewSettingsStore() *SettingsStore {
	return &SettingsStore{rooms: make(map[string]*AISettings)}
}

func (s *SettingsStore) entry(room string) *AISettings {
	st, ok := s.rooms[room]
	if !ok {
		st = &AISettings{Window: DefaultWindow}
		s.rooms[room] = st
	}
	return st
}

// SetEnabled turns the responder on or off for room.
func (s *SettingsStore) SetEnabled(room string, enabled bool) {
	s.entry(room).Enabled = enabled
}

// IsEnabled reports whether the responder is on for room.
func (s *SettingsStore) IsEnabled(room string) bool {
	if st, ok := s.rooms[room]; ok {
		return st.Enabled
	}
	return false
}

// SetWindow stores the context window for room. Callers validate n with ValidWindow first.
func (s *SettingsStore) SetWindow(room string, n int) {
	s.entry(room).Window = n
}

// Window returns the context window for room.
func (s *SettingsStore) Window(room string) int {
	if st, ok := s.rooms[room]; ok {
		return st.Window
	}
	return DefaultWindow
}

// Get returns a copy of the settings for room, defaults if never touched.
func (s *SettingsStore) Get(room string) AISettings {
	if st, ok := s.rooms[room]; ok {
		return *st
	}
	return AISettings{Window: DefaultWindow}
}

// Drop forgets the settings for room.
func (s *SettingsStore) Drop(room string) {
	delete(s.rooms, room)
}
