package realtime

import (
	"errors"

	"github.com/synergysphere/realtime/internal/ierr"
)

// TypingStart signals a transient typing indicator to every other member
// of the workspace room. The connection must already be subscribed; a
// typing signal never joins a room implicitly.
func (h *Hub) TypingStart(connection *Connection, workspaceId string) error {
	room := WorkspaceRoom(workspaceId)

	if !h.registry.InRoom(connection.Id, room) {
		return ierr.New(ierr.ErrorCodeFailedPrecondition, errors.New("not subscribed to workspace"))
	}

	h.registry.BroadcastExceptUser(room, connection.Identity.Id, OutboundMessage{
		Method: MethodUserTyping,
		Params: TypingPayload{
			UserId:      connection.Identity.Id,
			UserName:    connection.Identity.Name,
			WorkspaceId: workspaceId,
		},
	})

	return nil
}

func (h *Hub) TypingStop(connection *Connection, workspaceId string) error {
	room := WorkspaceRoom(workspaceId)

	if !h.registry.InRoom(connection.Id, room) {
		return ierr.New(ierr.ErrorCodeFailedPrecondition, errors.New("not subscribed to workspace"))
	}

	h.registry.BroadcastExceptUser(room, connection.Identity.Id, OutboundMessage{
		Method: MethodUserStoppedTyping,
		Params: StoppedTypingPayload{
			UserId:      connection.Identity.Id,
			WorkspaceId: workspaceId,
		},
	})

	return nil
}
