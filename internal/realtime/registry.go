package realtime

import (
	"sync"

	"go.uber.org/zap"
)

// Registry owns all room membership state. Every mutation goes through it;
// a broadcast concurrent with a join or leave either sees the connection
// or doesn't, never a partially-updated room.
type Registry struct {
	logger *zap.Logger
	mu     sync.RWMutex

	connections       map[string]*Connection
	membersByRoom     map[RoomKey]map[string]struct{}
	roomsByConnection map[string]map[RoomKey]struct{}
}

func NewRegistry(
	logger *zap.Logger,
) *Registry {
	return &Registry{
		logger:            logger,
		connections:       make(map[string]*Connection),
		membersByRoom:     make(map[RoomKey]map[string]struct{}),
		roomsByConnection: make(map[string]map[RoomKey]struct{}),
	}
}

func (r *Registry) Register(connection *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.connections[connection.Id] = connection
	r.roomsByConnection[connection.Id] = make(map[RoomKey]struct{})
}

// Deregister removes the connection from every room it belongs to and
// closes its send channel. Safe to call for an unknown connection id.
func (r *Registry) Deregister(connectionId string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.deregisterLocked(connectionId)
}

// AddToRoom is idempotent; re-adding a connection to a room it already
// belongs to is a no-op.
func (r *Registry) AddToRoom(connectionId string, room RoomKey) {
	r.mu.Lock()
	defer r.mu.Unlock()

	connectionRooms, ok := r.roomsByConnection[connectionId]
	if !ok {
		return
	}

	if _, ok := r.membersByRoom[room]; !ok {
		r.membersByRoom[room] = make(map[string]struct{})
	}

	r.membersByRoom[room][connectionId] = struct{}{}
	connectionRooms[room] = struct{}{}
}

func (r *Registry) RemoveFromRoom(connectionId string, room RoomKey) {
	r.mu.Lock()
	defer r.mu.Unlock()

	connectionRooms, ok := r.roomsByConnection[connectionId]
	if !ok {
		return
	}

	delete(connectionRooms, room)

	roomMembers, ok := r.membersByRoom[room]
	if !ok {
		return
	}

	delete(roomMembers, connectionId)
	if len(roomMembers) == 0 {
		delete(r.membersByRoom, room)
	}
}

func (r *Registry) InRoom(connectionId string, room RoomKey) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	connectionRooms, ok := r.roomsByConnection[connectionId]
	if !ok {
		return false
	}

	_, ok = connectionRooms[room]

	return ok
}

func (r *Registry) MembersOf(room RoomKey) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.membersOfLocked(room)
}

// Broadcast delivers msg to every connection in the room. Delivery is
// fire-and-forget: a connection whose send buffer is full is considered
// gone and is disconnected rather than allowed to block the publisher.
func (r *Registry) Broadcast(room RoomKey, msg any) {
	r.broadcast(room, "", msg)
}

// BroadcastExceptUser is Broadcast minus every connection bound to the
// given user, so a signal never echoes back to any of the sender's own
// sessions.
func (r *Registry) BroadcastExceptUser(room RoomKey, exceptUserId string, msg any) {
	r.broadcast(room, exceptUserId, msg)
}

// Send delivers msg to a single connection, dropping it if the connection
// is gone or slow.
func (r *Registry) Send(connectionId string, msg any) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	connection, ok := r.connections[connectionId]
	if !ok {
		return
	}

	select {
	case connection.Send <- msg:
	default:
		r.logger.Warn("connection send channel is full, dropping message",
			zap.String("connectionId", connectionId))
	}
}

func (r *Registry) broadcast(room RoomKey, exceptUserId string, msg any) {
	r.mu.RLock()

	connections := r.membersOfLocked(room)

	var staleConnectionIds []string

	for _, connection := range connections {
		if exceptUserId != "" && connection.Identity.Id == exceptUserId {
			continue
		}

		select {
		case connection.Send <- msg:
		default:
			r.logger.Warn("connection send channel is full, closing connection",
				zap.String("connectionId", connection.Id),
				zap.String("room", room.String()))

			staleConnectionIds = append(staleConnectionIds, connection.Id)
		}
	}

	r.mu.RUnlock()

	if len(staleConnectionIds) == 0 {
		return
	}

	r.mu.Lock()

	for _, connectionId := range staleConnectionIds {
		r.deregisterLocked(connectionId)
	}

	r.mu.Unlock()
}

// IMPORTANT: It must be called only when a read lock is already held.
func (r *Registry) membersOfLocked(room RoomKey) []*Connection {
	connectionIds, ok := r.membersByRoom[room]
	if !ok {
		return nil
	}

	connections := make([]*Connection, 0, len(connectionIds))
	for connectionId := range connectionIds {
		if connection, ok := r.connections[connectionId]; ok {
			connections = append(connections, connection)
		}
	}

	return connections
}

// IMPORTANT: It must be called only when a write lock is already held.
func (r *Registry) deregisterLocked(connectionId string) {
	connection, ok := r.connections[connectionId]
	if !ok {
		return
	}

	connectionRooms, ok := r.roomsByConnection[connectionId]
	if !ok {
		panic("inconsistent state: connection not found in roomsByConnection")
	}

	for room := range connectionRooms {
		roomMembers, ok := r.membersByRoom[room]
		if !ok {
			panic("inconsistent state: room not found in membersByRoom")
		}

		delete(roomMembers, connectionId)
		if len(roomMembers) == 0 {
			delete(r.membersByRoom, room)
		}
	}

	delete(r.roomsByConnection, connectionId)
	delete(r.connections, connectionId)
	close(connection.Send)
}
