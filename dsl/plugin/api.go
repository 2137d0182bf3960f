package plugin

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/dm-vev/hikari/dsl/command"
	"github.com/dm-vev/hikari/dsl/event"
	"github.com/dm-vev/hikari/dsl/i18n"
	"github.com/dm-vev/hikari/dsl/task"
	"github.com/dm-vev/hikari/dsl/user"
)

// API is handed to plugin factories. Tasks, listeners and goroutines created through it are owned by
// the plugin and stopped when it is disabled.
type API struct {
	manager *Manager
	host    Host
	name    atomic.Value // string
	ctx     atomic.Pointer[context.Context]
	dataDir atomic.Value // string
}

func newAPI(manager *Manager, host Host, name string) *API {
	api := &API{manager: manager, host: host}
	api.name.Store(name)
	api.dataDir.Store("")
	return api
}

func (api *API) setName(name string) {
	if name != "" {
		api.name.Store(name)
	}
}

// Name returns the name of the plugin. It is the owner of everything the plugin creates.
func (api *API) Name() string {
	if s, _ := api.name.Load().(string); s != "" {
		return s
	}
	return "plugin"
}

func (api *API) setContext(ctx context.Context) {
	api.ctx.Store(&ctx)
}

// Context returns a context that is cancelled when the plugin is disabled.
func (api *API) Context() context.Context {
	if ctx := api.ctx.Load(); ctx != nil && *ctx != nil {
		return *ctx
	}
	return context.Background()
}

func (api *API) setDataDirectory(dir string) {
	if dir != "" {
		dir = filepath.Clean(dir)
	}
	api.dataDir.Store(dir)
}

// DataDirectory returns the data directory of the plugin.
func (api *API) DataDirectory() string {
	if dir, _ := api.dataDir.Load().(string); dir != "" {
		return dir
	}
	return api.manager.dataDirectory(api.Name())
}

func (api *API) resolveDataPath(name string) (string, error) {
	if name == "" {
		return "", errors.New("data path is empty")
	}
	if filepath.IsAbs(name) {
		return "", errors.New("data path must be relative")
	}
	base := api.DataDirectory()
	target := filepath.Join(base, filepath.Clean(name))
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", errors.New("data path escapes plugin directory")
	}
	return target, nil
}

// EnsureDataSubdir creates a directory inside the data directory and returns its path. An empty name
// creates the data directory itself.
func (api *API) EnsureDataSubdir(name string) (string, error) {
	path := api.DataDirectory()
	if name != "" {
		var err error
		if path, err = api.resolveDataPath(name); err != nil {
			return "", err
		}
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", err
	}
	return path, nil
}

// OpenDataFile opens a file inside the data directory, creating parent directories as needed.
func (api *API) OpenDataFile(name string, flag int, perm fs.FileMode) (*os.File, error) {
	path, err := api.resolveDataPath(name)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	if perm == 0 {
		perm = 0o644
	}
	return os.OpenFile(path, flag, perm)
}

// Go runs fn on a new goroutine with the context of the plugin. A panic disables the plugin.
func (api *API) Go(fn func(ctx context.Context)) {
	if fn == nil {
		return
	}
	ctx, name := api.Context(), api.Name()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				api.manager.HandlePanic(name, r)
			}
		}()
		fn(ctx)
	}()
}

// Logger returns the logger of the host with the plugin name attached.
func (api *API) Logger() *slog.Logger {
	logger := api.host.Logger()
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("plugin", api.Name())
}

// Schedule schedules a task owned by the plugin.
func (api *API) Schedule(opts task.Options, fn task.Func) (*task.Task, error) {
	return api.host.Scheduler().Schedule(api.Name(), opts, fn)
}

// Now schedules fn to run once on the next tick.
func (api *API) Now(fn task.Func) (*task.Task, error) {
	return api.host.Scheduler().Now(api.Name(), fn)
}

// Later schedules fn to run once after delay ticks.
func (api *API) Later(delay int64, fn task.Func) (*task.Task, error) {
	return api.host.Scheduler().Later(api.Name(), delay, fn)
}

// Timer schedules fn to run after delay ticks and then every interval ticks.
func (api *API) Timer(delay, interval int64, fn task.Func) (*task.Task, error) {
	return api.host.Scheduler().Timer(api.Name(), delay, interval, fn)
}

// Tasks returns the tasks of the plugin that are still scheduled.
func (api *API) Tasks() []*task.Task {
	return api.host.Scheduler().Tasks(api.Name())
}

// Bus returns the event bus of the host. Subscribe should be used to create listeners owned by the
// plugin.
func (api *API) Bus() *event.Bus {
	return api.host.Bus()
}

// Subscribe subscribes to events of type T on behalf of the plugin. The owner defaults to the plugin
// name.
func Subscribe[T any](api *API, fn func(s *event.SubscriptionSpec[T])) (*event.Listener, error) {
	return event.Subscribe(api.host.Bus(), func(s *event.SubscriptionSpec[T]) {
		s.Owner.Set(api.Name())
		fn(s)
	})
}

// Command builds a command that checks permissions through the host.
func (api *API) Command(fn func(s *command.Spec)) (*command.Command, error) {
	return command.New(func(s *command.Spec) {
		if perms := api.host.Permissions(); perms != nil {
			s.Permissions.Set(perms)
		}
		fn(s)
	})
}

// Translator returns the translator of the host. Plugins may add catalogs of their own to it.
func (api *API) Translator() *i18n.Translator {
	return api.host.Translator()
}

// T translates key for locale.
func (api *API) T(locale, key string, kv ...any) string {
	return api.host.Translator().T(locale, key, kv...)
}

// Users returns the user store of the host.
func (api *API) Users() *user.Store {
	return api.host.Users()
}

// Plugins returns the plugins currently enabled.
func (api *API) Plugins() []Info {
	return api.manager.Infos()
}

// Plugin returns an enabled plugin by name.
func (api *API) Plugin(name string) (Plugin, bool) {
	return api.manager.Plugin(name)
}
