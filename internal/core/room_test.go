package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomBroadcastSkipsSenderAndCountsDrops(t *testing.T) {
	room := NewRoom("lobby")
	a := NewClient("a", 1)
	b := NewClient("b", 1)
	assert.True(t, room.AddClient(a))
	assert.True(t, room.AddClient(b))
	assert.False(t, room.AddClient(a))

	ev := &Event{Kind: EventActivity, Activity: "a"}
	assert.Equal(t, 0, room.Broadcast(ev, a))
	assert.Len(t, a.Events, 0)
	assert.Len(t, b.Events, 1)

	// b's queue is full now.
	assert.Equal(t, 1, room.Broadcast(ev, nil))
	assert.Len(t, a.Events, 1)
}

func TestRoomTableRemovesEmptyRooms(t *testing.T) {
	table := newRoomTable()
	a := NewClient("a", 0)
	b := NewClient("b", 0)

	table.subscribe(a, "lobby")
	table.subscribe(b, "lobby")
	table.subscribe(b, "dev")
	assert.Equal(t, []string{"lobby", "dev"}, table.names())

	assert.False(t, table.unsubscribe(a, "lobby"))
	assert.True(t, table.unsubscribe(b, "lobby"))
	assert.Equal(t, []string{"dev"}, table.names())

	_, ok := table.get("lobby")
	assert.False(t, ok)
	assert.False(t, table.unsubscribe(a, "missing"))
}
