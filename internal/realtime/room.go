package realtime

type RoomKind string

const (
	RoomKindUser      RoomKind = "user"
	RoomKindWorkspace RoomKind = "workspace"
)

// RoomKey names a fan-out scope. A room has no existence independent of
// the connections currently subscribed to it.
type RoomKey struct {
	Kind RoomKind
	Id   string
}

func UserRoom(userId string) RoomKey {
	return RoomKey{Kind: RoomKindUser, Id: userId}
}

func WorkspaceRoom(workspaceId string) RoomKey {
	return RoomKey{Kind: RoomKindWorkspace, Id: workspaceId}
}

func (k RoomKey) String() string {
	return string(k.Kind) + ":" + k.Id
}
