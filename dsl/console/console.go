// Package console runs commands typed into the terminal of the server.
package console

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/dm-vev/hikari/dsl/command"
	"github.com/dm-vev/hikari/dsl/task"
	"github.com/go-gl/mathgl/mgl64"
)

// Console reads command lines from a reader, os.Stdin by default, and executes them as the console.
type Console struct {
	exec   task.Executor
	log    *slog.Logger
	reader io.Reader
}

// New returns a console executing commands through exec. Output of commands is written to log.
func New(exec task.Executor, log *slog.Logger) *Console {
	if log == nil {
		log = slog.Default()
	}
	if exec == nil {
		exec = task.ExecutorFunc(func(f func(tx *world.Tx)) { f(nil) })
	}
	return &Console{exec: exec, log: log.With("subsystem", "console"), reader: os.Stdin}
}

// WithReader makes the console read from r.
func (c *Console) WithReader(r io.Reader) *Console {
	if r != nil {
		c.reader = r
	}
	return c
}

// Run executes lines until ctx is cancelled or the reader is exhausted.
func (c *Console) Run(ctx context.Context) {
	scanner := bufio.NewScanner(c.reader)
	src := &Source{log: c.log}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		done := make(chan struct{})
		c.exec.Exec(func(tx *world.Tx) {
			defer close(done)
			ExecuteLine(src, line, tx)
		})
		select {
		case <-done:
		case <-ctx.Done():
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
	if err := scanner.Err(); err != nil {
		c.log.Error("Console input error.", "error", err)
	}
}

// ExecuteLine executes a command line on behalf of src. The leading slash is optional.
func ExecuteLine(src cmd.Source, line string, tx *world.Tx) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return
	}
	name := strings.TrimPrefix(args[0], "/")
	if name == "" {
		return
	}
	c, ok := cmd.ByAlias(name)
	if !ok {
		o := &cmd.Output{}
		o.Error("Unknown command: " + name + ". Please check that the command exists and that you have permission to use it.")
		src.SendCommandOutput(o)
		return
	}
	c.Execute(strings.Join(args[1:], " "), src, tx)
}

// Source is the console as a command source.
type Source struct {
	log *slog.Logger
}

func (*Source) Position() mgl64.Vec3 { return mgl64.Vec3{} }

func (*Source) Name() string { return "Console" }

// SenderKind reports the console kind to commands that restrict their senders.
func (*Source) SenderKind() command.Kind { return command.KindConsole }

func (s *Source) SendCommandOutput(o *cmd.Output) {
	for _, msg := range o.Messages() {
		s.log.Info(msg.String())
	}
	for _, err := range o.Errors() {
		s.log.Error(err.Error())
	}
}
