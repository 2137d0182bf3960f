package command

import (
	"errors"
	"io"
	"slices"
	"strings"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/dm-vev/hikari/dsl/text"
	"github.com/spf13/pflag"
)

// ErrNoParser is returned by RunSpec.Parsed for commands without a parser.
var ErrNoParser = errors.New("command has no parser")

// Signal is returned by a run callback.
type Signal uint8

const (
	// Continue is returned when the callback ran to completion.
	Continue Signal = iota
	// Stopped is returned when the callback ended early. It is not an error.
	Stopped
)

// RunSpec is passed to the run callback of a command.
type RunSpec struct {
	Command *Command
	Source  cmd.Source
	Args    []string
	Output  *cmd.Output
	Tx      *world.Tx
}

// Player returns the player running the command, if any.
func (r *RunSpec) Player() (*player.Player, bool) {
	p, ok := r.Source.(*player.Player)
	return p, ok
}

// Stop ends the callback early.
func (r *RunSpec) Stop() Signal { return Stopped }

// Send adds a message to the command output, translating colour codes and filling placeholders.
func (r *RunSpec) Send(msg string, kv ...any) {
	r.Output.Print(text.Fill(msg, kv...))
}

// Fail adds an error to the command output.
func (r *RunSpec) Fail(msg string, kv ...any) {
	r.Output.Error(text.Fill(msg, kv...))
}

// Parsed parses the arguments with the parser of the command. Positional arguments are available
// through FlagSet.Args.
func (r *RunSpec) Parsed() (*pflag.FlagSet, error) {
	if r.Command.parser == nil {
		return nil, ErrNoParser
	}
	fs := pflag.NewFlagSet(r.Command.name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	r.Command.parser(fs)
	if err := fs.Parse(r.Args); err != nil {
		return fs, err
	}
	return fs, nil
}

// TabSpec is passed to the tab completion callback of a command.
type TabSpec struct {
	Command *Command
	Source  cmd.Source
	Args    []string
}

func (t *TabSpec) Player() (*player.Player, bool) {
	p, ok := t.Source.(*player.Player)
	return p, ok
}

// Last returns the argument being completed.
func (t *TabSpec) Last() string {
	if len(t.Args) == 0 {
		return ""
	}
	return t.Args[len(t.Args)-1]
}

// FilterPrefix returns the options that start with the argument being completed.
func (t *TabSpec) FilterPrefix(options []string) []string {
	last := t.Last()
	return slices.DeleteFunc(slices.Clone(options), func(o string) bool {
		return !strings.HasPrefix(o, last)
	})
}
