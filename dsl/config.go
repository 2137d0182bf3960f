package dsl

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dm-vev/hikari/dsl/i18n"
	"github.com/dm-vev/hikari/dsl/plugin"
	"github.com/dm-vev/hikari/dsl/task"
	"github.com/dm-vev/hikari/dsl/timeconv"
	"github.com/pelletier/go-toml"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/text/language"
)

// Config contains the options for creating a Library.
type Config struct {
	// Log is the logger of the library and every plugin. If nil, slog.Default() is used.
	Log *slog.Logger
	// Executor runs sync tasks and console commands, usually inside a world transaction. If nil,
	// they run on the goroutine of the scheduler.
	Executor task.Executor
	// Registerer receives the metrics of the scheduler and the event bus. Metrics are disabled
	// if nil.
	Registerer prometheus.Registerer
	// TickDuration is the length of one scheduler tick.
	TickDuration time.Duration
	// MaxAsyncTasks bounds the async task invocations running at once.
	MaxAsyncTasks int64
	// Locale is the language used when a player has no catalog of their own.
	Locale language.Tag
	// TranslationsFolder holds additional <locale>.toml catalogs. It may be left empty.
	TranslationsFolder string
	// UsersFolder is the LevelDB database of user data. User data is kept in memory if empty.
	UsersFolder string
	// Console enables reading commands from standard input.
	Console bool
	Plugins plugin.Config
	// Factories are plugins built into the binary, enabled before plugin files.
	Factories map[string]plugin.Factory
}

// UserConfig is the TOML configuration of the library.
type UserConfig struct {
	Library struct {
		// Locale is the default locale, such as "en_us".
		Locale string
		// TranslationsFolder holds <locale>.toml catalogs overriding the built-in messages.
		TranslationsFolder string
		// Console controls if commands are read from standard input.
		Console bool
	}
	Tasks struct {
		// TickDuration is the length of a tick as a duration string, such as "50ms".
		TickDuration string
		// MaxAsync is the amount of async tasks that may run at the same time.
		MaxAsync int64
	}
	Users struct {
		// SaveData controls if user data is stored in Folder or kept in memory.
		SaveData bool
		Folder   string
	}
	Plugins plugin.Config
}

// DefaultConfig returns a configuration with the default values filled out.
func DefaultConfig() UserConfig {
	c := UserConfig{}
	c.Library.Locale = "en_us"
	c.Library.TranslationsFolder = "lang"
	c.Library.Console = true
	c.Tasks.TickDuration = "50ms"
	c.Tasks.MaxAsync = 16
	c.Users.SaveData = true
	c.Users.Folder = "users"
	c.Plugins.Enabled = true
	c.Plugins.Directory = "plugins"
	c.Plugins.Autoload = true
	return c
}

// LoadConfig reads the configuration at path. If the file does not exist, it is created with the
// default configuration.
func LoadConfig(path string) (UserConfig, error) {
	c := DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, WriteConfig(path, c)
	} else if err != nil {
		return c, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

// WriteConfig writes c to path in TOML.
func WriteConfig(path string, c UserConfig) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Config converts a UserConfig to a Config. An error is returned if the locale cannot be parsed.
func (uc UserConfig) Config(log *slog.Logger) (Config, error) {
	locale := language.AmericanEnglish
	if s := strings.TrimSpace(uc.Library.Locale); s != "" {
		var err error
		if locale, err = i18n.ParseLocale(s); err != nil {
			return Config{}, fmt.Errorf("parse locale %q: %w", s, err)
		}
	}
	conf := Config{
		Log:                log,
		TickDuration:       timeconv.Parse(uc.Tasks.TickDuration),
		MaxAsyncTasks:      uc.Tasks.MaxAsync,
		Locale:             locale,
		TranslationsFolder: uc.Library.TranslationsFolder,
		Console:            uc.Library.Console,
		Plugins:            uc.Plugins,
	}
	if uc.Users.SaveData {
		conf.UsersFolder = uc.Users.Folder
		if conf.UsersFolder == "" {
			conf.UsersFolder = "users"
		}
	}
	return conf, nil
}
