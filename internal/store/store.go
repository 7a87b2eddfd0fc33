package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

type User struct {
	Id    string
	Name  string
	Email string
}

// Membership associates a user with a workspace. This service only reads
// memberships; writes happen in the main application.
type Membership struct {
	UserId      string
	WorkspaceId string
	Role        string
}

type Store interface {
	Setup(ctx context.Context) error
	FindUser(ctx context.Context, id string) (User, error)
	ListWorkspacesForUser(ctx context.Context, userId string) ([]string, error)
	IsMember(ctx context.Context, userId string, workspaceId string) (bool, error)
}
