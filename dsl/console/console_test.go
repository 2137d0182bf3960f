package console

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/df-mc/dragonfly/server/world"
	"github.com/dm-vev/hikari/dsl/command"
	"github.com/dm-vev/hikari/dsl/task"
)

func TestRunExecutesCommands(t *testing.T) {
	var (
		ran  []string
		kind command.Kind
	)
	_, err := command.New(func(s *command.Spec) {
		s.Name.Set("console-test-echo")
		s.Allow(func(a *command.AllowSpec) { a.Console() })
		s.Run(func(r *command.RunSpec) command.Signal {
			ran = append(ran, strings.Join(r.Args, ","))
			kind = command.KindOf(r.Source)
			r.Send("echo %args%", "args", strings.Join(r.Args, " "))
			return command.Continue
		})
		s.Register()
	})
	if err != nil {
		t.Fatalf("build command: %v", err)
	}

	var buf bytes.Buffer
	execs := 0
	exec := task.ExecutorFunc(func(f func(tx *world.Tx)) {
		execs++
		f(nil)
	})
	c := New(exec, slog.New(slog.NewTextHandler(&buf, nil))).
		WithReader(strings.NewReader("console-test-echo a b\n\n/console-test-echo c\nconsole-test-missing\n"))
	c.Run(context.Background())

	if execs != 3 {
		t.Fatalf("executor called %d times, want 3", execs)
	}
	if len(ran) != 2 || ran[0] != "a,b" || ran[1] != "c" {
		t.Fatalf("command ran with %v", ran)
	}
	if kind != command.KindConsole {
		t.Fatalf("source kind = %v, want console", kind)
	}
	out := buf.String()
	if !strings.Contains(out, "echo a b") {
		t.Fatalf("command output not logged: %s", out)
	}
	if !strings.Contains(out, "Unknown command: console-test-missing") {
		t.Fatalf("unknown command not reported: %s", out)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	exec := task.ExecutorFunc(func(f func(tx *world.Tx)) {
		calls++
		f(nil)
	})
	New(exec, slog.New(slog.DiscardHandler)).WithReader(strings.NewReader("a\nb\nc\n")).Run(ctx)
	if calls > 1 {
		t.Fatalf("executor called %d times after cancel, want at most 1", calls)
	}
}
