package dsl

import (
	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/dm-vev/hikari/dsl/command"
	"github.com/dm-vev/hikari/dsl/user"
	"github.com/google/uuid"
)

// userPermissions grants console senders every node and players the nodes stored for them.
type userPermissions struct {
	users *user.Store
}

type identified interface {
	UUID() uuid.UUID
}

func (p userPermissions) HasPermission(src cmd.Source, node string) bool {
	kind := command.KindOf(src)
	if kind.Has(command.KindConsole) || kind.Has(command.KindRemoteConsole) {
		return true
	}
	if id, ok := src.(identified); ok {
		return p.users.Has(id.UUID(), node)
	}
	return false
}
