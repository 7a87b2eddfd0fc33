package realtime

import (
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

// Publisher is the fan-out entry point for the rest of the system. It
// assigns event ids and server timestamps, resolves the target room and
// pushes to every live connection in it. Delivery is best-effort: there
// is no retry, no queueing and no partial-failure reporting.
type Publisher struct {
	logger   *zap.Logger
	registry *Registry
}

func NewPublisher(
	logger *zap.Logger,
	registry *Registry,
) *Publisher {
	return &Publisher{
		logger,
		registry,
	}
}

func (p *Publisher) PublishToWorkspace(workspaceId string, eventType EventType, data any) Envelope {
	return p.publish(WorkspaceRoom(workspaceId), eventType, data)
}

func (p *Publisher) PublishToUser(userId string, eventType EventType, data any) Envelope {
	return p.publish(UserRoom(userId), eventType, data)
}

func (p *Publisher) TaskCreated(workspaceId string, task TaskPayload) {
	p.PublishToWorkspace(workspaceId, EventTaskCreated, task)
}

func (p *Publisher) TaskUpdated(workspaceId string, task TaskPayload) {
	p.PublishToWorkspace(workspaceId, EventTaskUpdated, task)
}

func (p *Publisher) TaskDeleted(workspaceId string, task TaskPayload) {
	p.PublishToWorkspace(workspaceId, EventTaskDeleted, task)
}

func (p *Publisher) NewMessage(workspaceId string, message MessagePayload) {
	p.PublishToWorkspace(workspaceId, EventNewMessage, message)
}

func (p *Publisher) NewNotification(userId string, notification NotificationPayload) {
	p.PublishToUser(userId, EventNewNotification, notification)
}

func (p *Publisher) WorkspaceUpdated(workspaceId string, workspace WorkspacePayload) {
	p.PublishToWorkspace(workspaceId, EventWorkspaceUpdated, workspace)
}

// MemberAdded announces the membership to the workspace and separately
// notifies the new member's own connections, in that order.
func (p *Publisher) MemberAdded(workspaceId string, membership MembershipPayload) {
	p.PublishToWorkspace(workspaceId, EventMemberAdded, membership)
	p.PublishToUser(membership.UserId, EventMemberAdded, membership)
}

func (p *Publisher) MemberRemoved(workspaceId string, userId string) {
	p.PublishToWorkspace(workspaceId, EventMemberRemoved, MemberRemovedPayload{
		WorkspaceId: workspaceId,
		UserId:      userId,
	})
}

func (p *Publisher) publish(room RoomKey, eventType EventType, data any) Envelope {
	envelope := Envelope{
		Id:        gonanoid.Must(),
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	}

	p.logger.Debug("publishing event",
		zap.String("eventId", envelope.Id),
		zap.String("eventType", string(eventType)),
		zap.String("room", room.String()))

	p.registry.Broadcast(room, OutboundMessage{
		Method: string(eventType),
		Params: envelope,
	})

	return envelope
}
