package realtime

import (
	"context"
	"errors"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/synergysphere/realtime/internal/auth"
	"github.com/synergysphere/realtime/internal/ierr"
	"go.uber.org/zap"
)

// MembershipOracle answers workspace membership questions. Backed by the
// main application's persisted membership records.
type MembershipOracle interface {
	ListWorkspacesForUser(ctx context.Context, userId string) ([]string, error)
	IsMember(ctx context.Context, userId string, workspaceId string) (bool, error)
}

// Hub drives the connection lifecycle and authorization-gated room
// subscription on top of the registry.
type Hub struct {
	logger   *zap.Logger
	registry *Registry
	oracle   MembershipOracle
}

func NewHub(
	logger *zap.Logger,
	registry *Registry,
	oracle MembershipOracle,
) *Hub {
	return &Hub{
		logger,
		registry,
		oracle,
	}
}

// Connect registers a freshly authenticated connection, joins it to its
// user room and auto-joins every workspace the identity is a member of.
// If the membership lookup fails the connection still completes with the
// user room only and relies on explicit joins afterwards.
func (h *Hub) Connect(ctx context.Context, identity auth.Identity) *Connection {
	connection := newConnection(gonanoid.Must(), identity)

	h.registry.Register(connection)
	h.registry.AddToRoom(connection.Id, UserRoom(identity.Id))

	workspaceIds, err := h.oracle.ListWorkspacesForUser(ctx, identity.Id)
	if err != nil {
		h.logger.Warn("failed to list workspaces for auto-subscription",
			zap.String("connectionId", connection.Id),
			zap.String("userId", identity.Id),
			zap.Error(err))

		return connection
	}

	for _, workspaceId := range workspaceIds {
		h.registry.AddToRoom(connection.Id, WorkspaceRoom(workspaceId))
	}

	h.logger.Info("connection subscribed",
		zap.String("connectionId", connection.Id),
		zap.String("userId", identity.Id),
		zap.Int("workspaces", len(workspaceIds)))

	return connection
}

func (h *Hub) Disconnect(connectionId string) {
	h.registry.Deregister(connectionId)
}

// Reply queues a frame for a single connection, dropping it if the
// connection is already gone.
func (h *Hub) Reply(connectionId string, msg any) {
	h.registry.Send(connectionId, msg)
}

// Join subscribes the connection to a workspace room after confirming
// membership. Joining a room the connection already belongs to is a no-op.
func (h *Hub) Join(ctx context.Context, connection *Connection, workspaceId string) error {
	room := WorkspaceRoom(workspaceId)

	if h.registry.InRoom(connection.Id, room) {
		return nil
	}

	member, err := h.oracle.IsMember(ctx, connection.Identity.Id, workspaceId)
	if err != nil {
		return ierr.New(ierr.ErrorCodeInternal, err)
	}

	if !member {
		return ierr.New(ierr.ErrorCodePermissionDenied, errors.New("access denied to workspace"))
	}

	h.registry.AddToRoom(connection.Id, room)

	h.logger.Info("connection joined workspace",
		zap.String("connectionId", connection.Id),
		zap.String("workspaceId", workspaceId))

	return nil
}

// Leave is idempotent and always succeeds, member or not.
func (h *Hub) Leave(connection *Connection, workspaceId string) {
	h.registry.RemoveFromRoom(connection.Id, WorkspaceRoom(workspaceId))
}
