package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/synergysphere/realtime/internal/auth"
	"go.uber.org/zap"
)

func newTestConnection(id string, userId string, buffer int) *Connection {
	return &Connection{
		Id:       id,
		Identity: auth.Identity{Id: userId, Name: "User " + userId},
		Send:     make(chan any, buffer),
	}
}

func TestRegistry_Rooms(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	registry := NewRegistry(logger)

	conn := newTestConnection("conn-1", "user-1", 8)
	registry.Register(conn)

	room := WorkspaceRoom("workspace-1")

	registry.AddToRoom(conn.Id, room)
	assert.True(t, registry.InRoom(conn.Id, room))
	assert.Len(t, registry.MembersOf(room), 1)

	// re-adding is a no-op
	registry.AddToRoom(conn.Id, room)
	assert.Len(t, registry.MembersOf(room), 1)

	registry.RemoveFromRoom(conn.Id, room)
	assert.False(t, registry.InRoom(conn.Id, room))
	assert.Empty(t, registry.MembersOf(room))

	// removing again is harmless
	registry.RemoveFromRoom(conn.Id, room)
}

func TestRegistry_AddToRoomUnknownConnection(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	registry := NewRegistry(logger)

	registry.AddToRoom("unknown", WorkspaceRoom("workspace-1"))

	assert.Empty(t, registry.MembersOf(WorkspaceRoom("workspace-1")))
}

func TestRegistry_Broadcast(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	registry := NewRegistry(logger)

	member1 := newTestConnection("conn-1", "user-1", 8)
	member2 := newTestConnection("conn-2", "user-2", 8)
	outsider := newTestConnection("conn-3", "user-3", 8)

	registry.Register(member1)
	registry.Register(member2)
	registry.Register(outsider)

	room := WorkspaceRoom("workspace-1")
	registry.AddToRoom(member1.Id, room)
	registry.AddToRoom(member2.Id, room)

	registry.Broadcast(room, "hello")

	assert.Equal(t, "hello", <-member1.Send)
	assert.Equal(t, "hello", <-member2.Send)
	assert.Empty(t, member1.Send)
	assert.Empty(t, member2.Send)
	assert.Empty(t, outsider.Send)
}

func TestRegistry_BroadcastExceptUser(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	registry := NewRegistry(logger)

	senderTab1 := newTestConnection("conn-1", "user-1", 8)
	senderTab2 := newTestConnection("conn-2", "user-1", 8)
	other := newTestConnection("conn-3", "user-2", 8)

	registry.Register(senderTab1)
	registry.Register(senderTab2)
	registry.Register(other)

	room := WorkspaceRoom("workspace-1")
	registry.AddToRoom(senderTab1.Id, room)
	registry.AddToRoom(senderTab2.Id, room)
	registry.AddToRoom(other.Id, room)

	registry.BroadcastExceptUser(room, "user-1", "typing")

	assert.Equal(t, "typing", <-other.Send)
	assert.Empty(t, senderTab1.Send)
	assert.Empty(t, senderTab2.Send)
}

func TestRegistry_Deregister(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	registry := NewRegistry(logger)

	conn := newTestConnection("conn-1", "user-1", 8)
	registry.Register(conn)

	userRoom := UserRoom("user-1")
	workspaceRoom := WorkspaceRoom("workspace-1")
	registry.AddToRoom(conn.Id, userRoom)
	registry.AddToRoom(conn.Id, workspaceRoom)

	registry.Deregister(conn.Id)

	assert.Empty(t, registry.MembersOf(userRoom))
	assert.Empty(t, registry.MembersOf(workspaceRoom))

	_, open := <-conn.Send
	assert.False(t, open)

	// deregistering twice is harmless
	registry.Deregister(conn.Id)
}

func TestRegistry_BroadcastDisconnectsSlowConnections(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	registry := NewRegistry(logger)

	slow := newTestConnection("conn-1", "user-1", 0)
	healthy := newTestConnection("conn-2", "user-2", 8)

	registry.Register(slow)
	registry.Register(healthy)

	room := WorkspaceRoom("workspace-1")
	registry.AddToRoom(slow.Id, room)
	registry.AddToRoom(healthy.Id, room)

	registry.Broadcast(room, "hello")

	assert.Equal(t, "hello", <-healthy.Send)
	assert.Len(t, registry.MembersOf(room), 1)

	_, open := <-slow.Send
	assert.False(t, open)
}

func TestRegistry_Send(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	registry := NewRegistry(logger)

	conn := newTestConnection("conn-1", "user-1", 8)
	registry.Register(conn)

	registry.Send(conn.Id, "direct")
	assert.Equal(t, "direct", <-conn.Send)

	// unknown connections are dropped silently
	registry.Send("unknown", "direct")
}
