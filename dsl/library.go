// Package dsl wires the builders of the library into a running instance: the task scheduler, the
// event bus, translations, user data and the plugin manager.
package dsl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/dm-vev/hikari/dsl/command"
	"github.com/dm-vev/hikari/dsl/console"
	"github.com/dm-vev/hikari/dsl/event"
	"github.com/dm-vev/hikari/dsl/i18n"
	"github.com/dm-vev/hikari/dsl/plugin"
	"github.com/dm-vev/hikari/dsl/task"
	"github.com/dm-vev/hikari/dsl/user"
	"golang.org/x/text/language"
)

// Version is the semantic version of the library. Plugins may require a minimum version.
const Version = "1.0.0"

// Library holds the shared services plugins are built on.
type Library struct {
	conf Config
	log  *slog.Logger

	sched   *task.Scheduler
	bus     *event.Bus
	tr      *i18n.Translator
	users   *user.Store
	perms   command.Permissions
	plugins *plugin.Manager
	console *console.Console
	command *command.Command

	start  sync.Once
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Library using the values in the Config. The scheduler, console and plugins are not
// started until Start is called.
func (conf Config) New() (*Library, error) {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Locale == language.Und {
		conf.Locale = language.AmericanEnglish
	}
	l := &Library{conf: conf, log: conf.Log}

	var (
		taskMetrics  *task.Metrics
		eventMetrics *event.Metrics
	)
	if conf.Registerer != nil {
		taskMetrics = task.NewMetrics(conf.Registerer)
		eventMetrics = event.NewMetrics(conf.Registerer)
	}
	l.sched = task.NewScheduler(task.Config{
		Logger:       conf.Log,
		TickDuration: conf.TickDuration,
		MaxAsync:     conf.MaxAsyncTasks,
		Executor:     conf.Executor,
		Metrics:      taskMetrics,
	})
	l.bus = event.NewBus(event.BusConfig{
		Logger:  conf.Log,
		Metrics: eventMetrics,
		OnPanic: l.handlePanic,
	})

	l.tr = i18n.New(conf.Locale, conf.Log)
	if conf.TranslationsFolder != "" {
		if err := l.tr.LoadDir(conf.TranslationsFolder); err != nil {
			return nil, fmt.Errorf("load translations: %w", err)
		}
	}

	var err error
	if conf.UsersFolder != "" {
		l.users, err = user.Open(conf.UsersFolder, conf.Log)
	} else {
		l.users, err = user.OpenMemory(conf.Log)
	}
	if err != nil {
		return nil, err
	}
	l.perms = userPermissions{users: l.users}

	l.plugins = plugin.NewManager(l, conf.Plugins)
	for _, name := range slices.Sorted(maps.Keys(conf.Factories)) {
		l.plugins.Register(name, conf.Factories[name])
	}

	if l.command, err = l.buildCommand(); err != nil {
		_ = l.users.Close()
		return nil, fmt.Errorf("build library command: %w", err)
	}
	if conf.Console {
		l.console = console.New(conf.Executor, conf.Log)
	}
	return l, nil
}

// handlePanic disables plugins whose event handlers panic.
func (l *Library) handlePanic(owner string, r any) {
	if l.plugins == nil {
		return
	}
	if _, ok := l.plugins.Plugin(owner); ok {
		l.plugins.HandlePanic(owner, r)
	}
}

// Start registers /hikari, enables the configured plugins and runs the scheduler until ctx is cancelled
// or the library is closed. The console runs as well if enabled. Only the first call has an effect.
func (l *Library) Start(ctx context.Context) {
	l.start.Do(func() {
		cmd.Register(l.command.Dragonfly())
		ctx, l.cancel = context.WithCancel(ctx)
		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			l.sched.Run(ctx)
		}()
		if l.console != nil {
			// The console blocks reading its input and is not waited for.
			go l.console.Run(ctx)
		}
		l.plugins.LoadConfigured()
		l.log.Info("Library started.", "version", Version, "plugins", len(l.plugins.Infos()))
	})
}

// Close disables all plugins, stops the scheduler and closes the user store.
func (l *Library) Close() error {
	l.plugins.Shutdown()
	if l.cancel != nil {
		l.cancel()
	}
	l.wg.Wait()
	return errors.Join(l.sched.Close(), l.users.Close())
}

// HandlePlayer publishes the events of p on the event bus and creates the user of p if it has none.
func (l *Library) HandlePlayer(p *player.Player) {
	p.Handle(l.bus.PlayerHandler(p.Handler()))
	if err := l.users.Update(p.UUID(), func(u *user.User) { u.Name = p.Name() }); err != nil {
		l.log.Error("Failed to store user.", "player", p.Name(), "error", err)
	}
}

// Locale returns the locale messages to p are translated to: the locale stored for p if any, the
// client locale otherwise. A nil player gets the default locale.
func (l *Library) Locale(p *player.Player) string {
	if p == nil {
		return i18n.LocaleString(l.conf.Locale)
	}
	if u, err := l.users.User(p.UUID()); err == nil && u.Locale != "" {
		return u.Locale
	}
	return i18n.LocaleString(p.Locale())
}

// The accessors below return the services of the library and implement plugin.Host.
func (l *Library) Logger() *slog.Logger             { return l.log }
func (l *Library) Version() string                  { return Version }
func (l *Library) Scheduler() *task.Scheduler       { return l.sched }
func (l *Library) Bus() *event.Bus                  { return l.bus }
func (l *Library) Translator() *i18n.Translator     { return l.tr }
func (l *Library) Users() *user.Store               { return l.users }
func (l *Library) Permissions() command.Permissions { return l.perms }
func (l *Library) Plugins() *plugin.Manager         { return l.plugins }
func (l *Library) Command() *command.Command        { return l.command }

var _ plugin.Host = (*Library)(nil)
