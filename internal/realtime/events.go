package realtime

import "time"

// EventType is the closed catalog of domain events pushed to clients.
// The method name on the wire is the event type itself.
type EventType string

const (
	EventTaskCreated      EventType = "task_created"
	EventTaskUpdated      EventType = "task_updated"
	EventTaskDeleted      EventType = "task_deleted"
	EventNewMessage       EventType = "new_message"
	EventNewNotification  EventType = "new_notification"
	EventWorkspaceUpdated EventType = "workspace_updated"
	EventMemberAdded      EventType = "member_added"
	EventMemberRemoved    EventType = "member_removed"
)

// WorkspaceScoped reports whether the event type may be published to a
// workspace room.
func (t EventType) WorkspaceScoped() bool {
	switch t {
	case EventTaskCreated, EventTaskUpdated, EventTaskDeleted,
		EventNewMessage, EventWorkspaceUpdated,
		EventMemberAdded, EventMemberRemoved:
		return true
	}
	return false
}

// UserScoped reports whether the event type may be published to a user
// room. Notifications are never broadcast to a workspace; member_added is
// additionally delivered to the new member as a personal notice.
func (t EventType) UserScoped() bool {
	switch t {
	case EventNewNotification, EventMemberAdded:
		return true
	}
	return false
}

// Typing indicators are ephemeral signals, not catalog events: they carry
// no envelope, are never persisted and have no delivery guarantee.
const (
	MethodUserTyping        = "user_typing"
	MethodUserStoppedTyping = "user_stopped_typing"
)

// Envelope is the wire form of every catalog event.
type Envelope struct {
	Id        string    `json:"id"`
	Type      EventType `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// OutboundMessage frames a server-initiated push: method is the event
// type or typing method name, params its payload.
type OutboundMessage struct {
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

type TaskPayload struct {
	Id          string     `json:"id"`
	WorkspaceId string     `json:"workspaceId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	AssigneeId  string     `json:"assigneeId,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

type MessagePayload struct {
	Id          string    `json:"id"`
	WorkspaceId string    `json:"workspaceId"`
	AuthorId    string    `json:"authorId"`
	AuthorName  string    `json:"authorName"`
	Body        string    `json:"body"`
	CreateTime  time.Time `json:"createTime"`
}

type NotificationPayload struct {
	Id         string    `json:"id"`
	UserId     string    `json:"userId"`
	Title      string    `json:"title"`
	Body       string    `json:"body,omitempty"`
	CreateTime time.Time `json:"createTime"`
}

type WorkspacePayload struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type MembershipPayload struct {
	WorkspaceId string `json:"workspaceId"`
	UserId      string `json:"userId"`
	UserName    string `json:"userName"`
	Role        string `json:"role"`
}

type MemberRemovedPayload struct {
	WorkspaceId string `json:"workspaceId"`
	UserId      string `json:"userId"`
}

type TypingPayload struct {
	UserId      string `json:"userId"`
	UserName    string `json:"userName"`
	WorkspaceId string `json:"workspaceId"`
}

type StoppedTypingPayload struct {
	UserId      string `json:"userId"`
	WorkspaceId string `json:"workspaceId"`
}
