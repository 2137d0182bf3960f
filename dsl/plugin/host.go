package plugin

import (
	"log/slog"

	"github.com/dm-vev/hikari/dsl/command"
	"github.com/dm-vev/hikari/dsl/event"
	"github.com/dm-vev/hikari/dsl/i18n"
	"github.com/dm-vev/hikari/dsl/task"
	"github.com/dm-vev/hikari/dsl/user"
)

// Host provides the services shared by every plugin.
type Host interface {
	Logger() *slog.Logger
	// Version returns the semantic version of the library.
	Version() string
	Scheduler() *task.Scheduler
	Bus() *event.Bus
	Translator() *i18n.Translator
	Users() *user.Store
	// Permissions checks the permissions of command sources.
	Permissions() command.Permissions
}
