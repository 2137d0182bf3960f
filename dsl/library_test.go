package dsl

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/dm-vev/hikari/dsl/command"
	"github.com/dm-vev/hikari/dsl/console"
	"github.com/dm-vev/hikari/dsl/plugin"
	"github.com/dm-vev/hikari/dsl/task"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/text/language"
)

type testSource struct {
	kind command.Kind
	id   uuid.UUID
}

func (s *testSource) Position() mgl64.Vec3 { return mgl64.Vec3{} }
func (s *testSource) SendCommandOutput(*cmd.Output) {}
func (s *testSource) SenderKind() command.Kind { return s.kind }
func (s *testSource) UUID() uuid.UUID          { return s.id }

type testPlugin struct{ closed bool }

func (p *testPlugin) Name() string    { return "Builtin" }
func (p *testPlugin) Version() string { return "0.2.0" }
func (p *testPlugin) Close() error    { p.closed = true; return nil }

type namedPlugin string

func (p namedPlugin) Name() string    { return string(p) }
func (p namedPlugin) Version() string { return "1.0.0" }
func (p namedPlugin) Close() error    { return nil }

// outputSource records the output of the commands it runs.
type outputSource struct {
	testSource
	out []string
}

func (s *outputSource) SendCommandOutput(o *cmd.Output) { s.out = append(s.out, messages(o)...) }

func newLibrary(t *testing.T, conf Config) *Library {
	t.Helper()
	conf.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	conf.Registerer = prometheus.NewRegistry()
	if conf.Plugins.Directory == "" {
		conf.Plugins.Directory = t.TempDir()
	}
	l, err := conf.New()
	if err != nil {
		t.Fatalf("create library: %v", err)
	}
	return l
}

func messages(o *cmd.Output) []string {
	var out []string
	for _, m := range o.Messages() {
		out = append(out, m.String())
	}
	for _, err := range o.Errors() {
		out = append(out, err.Error())
	}
	return out
}

func TestLoadConfigCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "hikari.toml")
	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load missing config: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), c); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}

	c.Library.Locale = "ja_jp"
	c.Tasks.MaxAsync = 4
	c.Plugins.Files = []string{"extra.so"}
	if err := WriteConfig(path, c); err != nil {
		t.Fatalf("write config: %v", err)
	}
	reloaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if diff := cmp.Diff(c, reloaded, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("reloaded config mismatch (-want +got):\n%s", diff)
	}
}

func TestUserConfigConversion(t *testing.T) {
	uc := DefaultConfig()
	uc.Library.Locale = "ja_jp"
	uc.Tasks.TickDuration = "100ms"
	uc.Users.SaveData = false
	conf, err := uc.Config(nil)
	if err != nil {
		t.Fatalf("convert config: %v", err)
	}
	if conf.Locale != language.MustParse("ja-JP") || conf.TickDuration != 100*time.Millisecond {
		t.Fatalf("locale %v tick %v", conf.Locale, conf.TickDuration)
	}
	if conf.UsersFolder != "" {
		t.Fatalf("users folder = %q, want memory storage", conf.UsersFolder)
	}

	uc.Library.Locale = "not a locale!"
	if _, err := uc.Config(nil); err == nil {
		t.Fatalf("invalid locale accepted")
	}
}

func TestLibraryLifecycle(t *testing.T) {
	p := &testPlugin{}
	l := newLibrary(t, Config{
		Plugins: plugin.Config{Enabled: true},
		Factories: map[string]plugin.Factory{
			"builtin": func(*plugin.API) (plugin.Plugin, error) { return p, nil },
		},
	})
	l.Start(context.Background())
	l.Start(context.Background())

	infos := l.Plugins().Infos()
	if len(infos) != 1 || infos[0].Name != "Builtin" || infos[0].Version != "v0.2.0" {
		t.Fatalf("plugins = %+v", infos)
	}

	console := &testSource{kind: command.KindConsole}
	o := &cmd.Output{}
	l.Command().Execute(console, []string{"plugins"}, o, nil)
	if got := messages(o); len(got) != 1 || !strings.Contains(got[0], "Builtin") || !strings.Contains(got[0], "(§e1§7)") {
		t.Fatalf("plugins output = %q", got)
	}

	o = &cmd.Output{}
	l.Command().Execute(console, []string{"version"}, o, nil)
	if got := messages(o); len(got) != 1 || !strings.Contains(got[0], "v"+Version) {
		t.Fatalf("version output = %q", got)
	}

	if err := l.Close(); err != nil {
		t.Fatalf("close library: %v", err)
	}
	if !p.closed {
		t.Fatalf("plugin not closed with the library")
	}
	if _, err := l.Scheduler().Now("late", func(*task.Spec) task.Signal { return task.Continue }); !errors.Is(err, task.ErrClosed) {
		t.Fatalf("scheduling after close returned %v, want ErrClosed", err)
	}
}

func TestLocaleCommandSenders(t *testing.T) {
	l := newLibrary(t, Config{})
	defer l.Close()

	o := &cmd.Output{}
	l.Command().Execute(&testSource{kind: command.KindConsole}, []string{"locale"}, o, nil)
	if diff := cmp.Diff([]string{"§cOnly players can change their locale."}, messages(o)); diff != "" {
		t.Fatalf("console output mismatch (-want +got):\n%s", diff)
	}

	o = &cmd.Output{}
	l.Command().Execute(&testSource{kind: command.KindPlayer, id: uuid.New()}, []string{"locale"}, o, nil)
	if got := messages(o); len(got) != 1 || !strings.Contains(got[0], "do not have permission") {
		t.Fatalf("player without permission got %q", got)
	}

	o = &cmd.Output{}
	l.Command().Execute(&testSource{kind: command.KindConsole}, nil, o, nil)
	if o.ErrorCount() != 1 {
		t.Fatalf("bare /hikari reported %d errors, want usage", o.ErrorCount())
	}
}

func TestUserPermissions(t *testing.T) {
	l := newLibrary(t, Config{})
	defer l.Close()

	id := uuid.New()
	perms := l.Permissions()
	src := &testSource{kind: command.KindPlayer, id: id}
	if perms.HasPermission(src, LocalePermission) {
		t.Fatalf("player has a permission that was never granted")
	}
	if err := l.Users().Grant(id, "hikari-library.*"); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if !perms.HasPermission(src, LocalePermission) {
		t.Fatalf("wildcard grant not applied")
	}
	if !perms.HasPermission(&testSource{kind: command.KindRemoteConsole}, "anything") {
		t.Fatalf("remote console denied")
	}
	if perms.HasPermission(&testSource{kind: command.KindBlock}, "anything") {
		t.Fatalf("command block allowed")
	}
}

func TestNewFailsOnBadTranslations(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "en_us.toml"), []byte("this is = = not toml"), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	_, err := Config{Log: slog.New(slog.DiscardHandler), TranslationsFolder: dir}.New()
	if err == nil || !strings.Contains(err.Error(), "load translations") {
		t.Fatalf("broken catalog returned %v", err)
	}
}

func TestPluginSubcommandUsesUserPermissions(t *testing.T) {
	var kit *command.Command
	l := newLibrary(t, Config{
		Plugins: plugin.Config{Enabled: true},
		Factories: map[string]plugin.Factory{
			"builtin": func(api *plugin.API) (plugin.Plugin, error) {
				var err error
				kit, err = api.Command(func(s *command.Spec) {
					s.Name.Set("kits")
					_ = s.Subcommand(func(s *command.Spec) {
						s.Name.Set("starter")
						s.Permission.Set("kits.starter")
						s.Run(func(r *command.RunSpec) command.Signal {
							r.Send("&agiven")
							return command.Continue
						})
					})
				})
				if err != nil {
					return nil, err
				}
				if api.Context().Err() != nil {
					return nil, errors.New("plugin context cancelled during enable")
				}
				return &testPlugin{}, nil
			},
		},
	})
	defer l.Close()
	l.Start(context.Background())
	if kit == nil {
		t.Fatalf("plugin was not enabled: %+v", l.Plugins().Infos())
	}

	id := uuid.New()
	src := &testSource{kind: command.KindPlayer, id: id}
	o := &cmd.Output{}
	kit.Execute(src, []string{"starter"}, o, nil)
	if diff := cmp.Diff([]string{"§cI'm sorry, but you do not have permission to perform this command."}, messages(o)); diff != "" {
		t.Fatalf("output without grant mismatch (-want +got):\n%s", diff)
	}

	if err := l.Users().Grant(id, "kits.starter"); err != nil {
		t.Fatalf("grant: %v", err)
	}
	o = &cmd.Output{}
	kit.Execute(src, []string{"starter"}, o, nil)
	if diff := cmp.Diff([]string{"§agiven"}, messages(o)); diff != "" {
		t.Fatalf("output with grant mismatch (-want +got):\n%s", diff)
	}
}

func TestStartRegistersCommand(t *testing.T) {
	withPlugin := func(name string) Config {
		return Config{
			Plugins: plugin.Config{Enabled: true},
			Factories: map[string]plugin.Factory{
				"p": func(*plugin.API) (plugin.Plugin, error) { return namedPlugin(name), nil },
			},
		}
	}
	run := func() string {
		src := &outputSource{testSource: testSource{kind: command.KindConsole}}
		console.ExecuteLine(src, "/hikari plugins", nil)
		return strings.Join(src.out, "\n")
	}

	first := newLibrary(t, withPlugin("First"))
	defer first.Close()
	first.Start(context.Background())

	second := newLibrary(t, withPlugin("Second"))
	defer second.Close()
	if got := run(); !strings.Contains(got, "First") {
		t.Fatalf("/hikari plugins after creating a second library = %q, want the started library", got)
	}

	second.Start(context.Background())
	if got := run(); !strings.Contains(got, "Second") {
		t.Fatalf("/hikari plugins after starting the second library = %q", got)
	}
}
