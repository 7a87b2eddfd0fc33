package realtime

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/synergysphere/realtime/internal/auth"
	"github.com/synergysphere/realtime/internal/ierr"
	"go.uber.org/zap"
)

type fakeOracle struct {
	workspacesByUser map[string][]string
	listErr          error
	isMemberCalls    int
}

func (f *fakeOracle) ListWorkspacesForUser(ctx context.Context, userId string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}

	return f.workspacesByUser[userId], nil
}

func (f *fakeOracle) IsMember(ctx context.Context, userId string, workspaceId string) (bool, error) {
	f.isMemberCalls++

	return slices.Contains(f.workspacesByUser[userId], workspaceId), nil
}

func newTestHub(oracle MembershipOracle) (*Hub, *Registry) {
	logger, _ := zap.NewDevelopment()
	registry := NewRegistry(logger)

	return NewHub(logger, registry, oracle), registry
}

func TestHub_Connect(t *testing.T) {
	oracle := &fakeOracle{
		workspacesByUser: map[string][]string{
			"user-1": {"workspace-1", "workspace-2"},
		},
	}
	hub, registry := newTestHub(oracle)

	conn := hub.Connect(context.Background(), auth.Identity{Id: "user-1", Name: "Alice"})

	assert.NotEmpty(t, conn.Id)
	assert.True(t, registry.InRoom(conn.Id, UserRoom("user-1")))
	assert.True(t, registry.InRoom(conn.Id, WorkspaceRoom("workspace-1")))
	assert.True(t, registry.InRoom(conn.Id, WorkspaceRoom("workspace-2")))
}

func TestHub_ConnectOracleFailure(t *testing.T) {
	oracle := &fakeOracle{listErr: errors.New("store unavailable")}
	hub, registry := newTestHub(oracle)

	conn := hub.Connect(context.Background(), auth.Identity{Id: "user-1"})

	// connection completes with the user room only
	assert.True(t, registry.InRoom(conn.Id, UserRoom("user-1")))
	assert.Empty(t, registry.MembersOf(WorkspaceRoom("workspace-1")))
}

func TestHub_Join(t *testing.T) {
	oracle := &fakeOracle{
		workspacesByUser: map[string][]string{
			"user-1": {"workspace-1"},
		},
	}
	hub, registry := newTestHub(oracle)

	conn := hub.Connect(context.Background(), auth.Identity{Id: "user-1"})
	hub.Leave(conn, "workspace-1")

	t.Run("member", func(t *testing.T) {
		err := hub.Join(context.Background(), conn, "workspace-1")

		assert.NoError(t, err)
		assert.True(t, registry.InRoom(conn.Id, WorkspaceRoom("workspace-1")))
	})

	t.Run("rejoin is a no-op", func(t *testing.T) {
		calls := oracle.isMemberCalls

		err := hub.Join(context.Background(), conn, "workspace-1")

		assert.NoError(t, err)
		assert.Equal(t, calls, oracle.isMemberCalls)
	})

	t.Run("denied for non-member", func(t *testing.T) {
		err := hub.Join(context.Background(), conn, "workspace-2")

		assert.Error(t, err)
		assert.IsType(t, ierr.Error{}, err)
		assert.Equal(t, ierr.ErrorCodePermissionDenied, err.(ierr.Error).Code)
		assert.False(t, registry.InRoom(conn.Id, WorkspaceRoom("workspace-2")))
	})
}

func TestHub_LeaveIsIdempotent(t *testing.T) {
	oracle := &fakeOracle{}
	hub, registry := newTestHub(oracle)

	conn := hub.Connect(context.Background(), auth.Identity{Id: "user-1"})

	hub.Leave(conn, "workspace-1")
	hub.Leave(conn, "workspace-1")

	assert.False(t, registry.InRoom(conn.Id, WorkspaceRoom("workspace-1")))
}

func TestHub_Disconnect(t *testing.T) {
	oracle := &fakeOracle{
		workspacesByUser: map[string][]string{
			"user-1": {"workspace-1"},
		},
	}
	hub, registry := newTestHub(oracle)

	conn := hub.Connect(context.Background(), auth.Identity{Id: "user-1"})
	hub.Disconnect(conn.Id)

	assert.Empty(t, registry.MembersOf(UserRoom("user-1")))
	assert.Empty(t, registry.MembersOf(WorkspaceRoom("workspace-1")))
}

func TestHub_Typing(t *testing.T) {
	oracle := &fakeOracle{
		workspacesByUser: map[string][]string{
			"user-1": {"workspace-1"},
			"user-2": {"workspace-1"},
		},
	}
	hub, _ := newTestHub(oracle)

	aliceTab1 := hub.Connect(context.Background(), auth.Identity{Id: "user-1", Name: "Alice"})
	aliceTab2 := hub.Connect(context.Background(), auth.Identity{Id: "user-1", Name: "Alice"})
	bob := hub.Connect(context.Background(), auth.Identity{Id: "user-2", Name: "Bob"})

	t.Run("start reaches other members only", func(t *testing.T) {
		err := hub.TypingStart(aliceTab1, "workspace-1")

		assert.NoError(t, err)

		msg := (<-bob.Send).(OutboundMessage)
		assert.Equal(t, MethodUserTyping, msg.Method)
		assert.Equal(t, TypingPayload{
			UserId:      "user-1",
			UserName:    "Alice",
			WorkspaceId: "workspace-1",
		}, msg.Params)

		// neither of the sender's own connections hears the signal
		assert.Empty(t, aliceTab1.Send)
		assert.Empty(t, aliceTab2.Send)
	})

	t.Run("stop reaches other members only", func(t *testing.T) {
		err := hub.TypingStop(aliceTab1, "workspace-1")

		assert.NoError(t, err)

		msg := (<-bob.Send).(OutboundMessage)
		assert.Equal(t, MethodUserStoppedTyping, msg.Method)
		assert.Equal(t, StoppedTypingPayload{
			UserId:      "user-1",
			WorkspaceId: "workspace-1",
		}, msg.Params)
		assert.Empty(t, aliceTab1.Send)
		assert.Empty(t, aliceTab2.Send)
	})

	t.Run("requires room membership", func(t *testing.T) {
		err := hub.TypingStart(bob, "workspace-2")

		assert.Error(t, err)
		assert.IsType(t, ierr.Error{}, err)
		assert.Equal(t, ierr.ErrorCodeFailedPrecondition, err.(ierr.Error).Code)
	})
}
