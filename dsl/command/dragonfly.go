package command

import (
	"strings"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/world"
)

// runnable passes the raw arguments of a dragonfly command to a Command.
type runnable struct {
	Args cmd.Optional[cmd.Varargs] `cmd:"args"`

	c *Command
}

func (r runnable) Run(src cmd.Source, o *cmd.Output, tx *world.Tx) {
	args, _ := r.Args.Load()
	r.c.Execute(src, strings.Fields(string(args)), o, tx)
}

// Dragonfly returns the command as a dragonfly command.
func (c *Command) Dragonfly() cmd.Command {
	return cmd.New(c.name, c.description, c.aliases, runnable{c: c})
}
