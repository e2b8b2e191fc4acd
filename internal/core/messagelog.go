package core

import (
	"context"
	"sync"
)

// MessageLog stores each room's conversation as an append-only list of entries.
type MessageLog interface {
	// Append adds an entry to the end of the room's log, creating the log if needed.
	Append(ctx context.Context, room string, entry LogEntry) error
	// Len returns the number of entries in the room's log.
	Len(ctx context.Context, room string) (int, error)
	// Tail returns the last k entries in order. Fewer are returned if the log is shorter.
	Tail(ctx context.Context, room string, k int) ([]LogEntry, error)
	// Clear empties the room's log.
	Clear(ctx context.Context, room string) error
	// Drop forgets the room's log entirely.
	Drop(ctx context.Context, room string) error
	// Close releases backend resources.
	Close() error
}

// WindowSize returns how many trailing entries to send for a context window of n
// over a log of the given size. One extra entry is included once the log has more
// than one entry, so the previous assistant reply does not eat into the user turns.
func WindowSize(n, size int) int {
	k := n
	if size > 1 {
		k++
	}
	if k > size {
		k = size
	}
	if k < 0 {
		k = 0
	}
	return k
}

// Recent returns the context window for room: the last n entries plus one preceding entry.
func Recent(ctx context.Context, log MessageLog, room string, n int) ([]LogEntry, error) {
	return RecentAt(ctx, log, room, n, -1)
}

// RecentAt returns the context window for room as it stood when the log held size entries.
// Entries appended after that point are left out. A negative size means the whole log.
func RecentAt(ctx context.Context, log MessageLog, room string, n, size int) ([]LogEntry, error) {
	cur, err := log.Len(ctx, room)
	if err != nil {
		return nil, err
	}
	if size > cur || size < 0 {
		size = cur
	}
	k := WindowSize(n, size)
	if k == 0 {
		return []LogEntry{}, nil
	}
	skip := cur - size
	entries, err := log.Tail(ctx, room, k+skip)
	if err != nil {
		return nil, err
	}
	if len(entries) <= skip {
		return []LogEntry{}, nil
	}
	return entries[:len(entries)-skip], nil
}

// MemoryLog is the in-process MessageLog backend.
type MemoryLog struct {
	mu    sync.Mutex
	rooms map[string][]LogEntry
}

// NewMemoryLog creates an empty in-memory log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{rooms: make(map[string][]LogEntry)}
}

func (m *MemoryLog) Append(_ context.Context, room string, entry LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[room] = append(m.rooms[room], entry)
	return nil
}

func (m *MemoryLog) Len(_ context.Context, room string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms[room]), nil
}

func (m *MemoryLog) Tail(_ context.Context, room string, k int) ([]LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := m.rooms[room]
	if k > len(entries) {
		k = len(entries)
	}
	if k < 0 {
		k = 0
	}
	out := make([]LogEntry, k)
	copy(out, entries[len(entries)-k:])
	return out, nil
}

func (m *MemoryLog) Clear(_ context.Context, room string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[room]; ok {
		m.rooms[room] = []LogEntry{}
	}
	return nil
}

func (m *MemoryLog) Drop(_ context.Context, room string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, room)
	return nil
}

func (m *MemoryLog) Close() error {
	return nil
}
