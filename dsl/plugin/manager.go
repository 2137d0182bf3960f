package plugin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	goplugin "plugin"
	"runtime/debug"
	"slices"
	"strings"
	"sync"

	"golang.org/x/mod/semver"
)

var factorySymbols = []string{"InitPlugin", "Init", "NewPlugin", "New"}

type instance struct {
	name string
	// initial is the name the plugin was enabled under before it reported its own name.
	initial string
	version string
	path    string
	plugin  Plugin
	factory Factory
	module  *goplugin.Plugin
	api     *API
	cancel  context.CancelFunc
}

func (i instance) info() Info {
	return Info{Name: i.name, Version: i.version, Path: i.path}
}

// Manager enables plugins and ties the tasks, listeners and goroutines they create to their lifetime.
type Manager struct {
	host       Host
	cfg        Config
	log        *slog.Logger
	runtimeLog *slog.Logger

	once      sync.Once
	mu        sync.RWMutex
	plugins   []instance
	factories map[string]Factory
}

// NewManager creates a manager using the services of host.
func NewManager(host Host, cfg Config) *Manager {
	cfg.Files = slices.Clone(cfg.Files)
	logger := host.Logger()
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		host:       host,
		cfg:        cfg,
		log:        logger.With("subsystem", "plugin"),
		runtimeLog: logger.With("subsystem", "plugin.runtime"),
		factories:  make(map[string]Factory),
	}
}

// Enabled reports whether the plugin subsystem runs.
func (m *Manager) Enabled() bool { return m.cfg.Enabled }

// Directory returns the directory searched for plugin files.
func (m *Manager) Directory() string { return m.directory() }

// DataRoot returns the directory holding the data folders of plugins.
func (m *Manager) DataRoot() string { return m.dataRoot() }

// ResolvePath resolves path against the plugin directory when it is not absolute.
func (m *Manager) ResolvePath(path string) string { return m.resolvePath(path) }

// Register adds a factory that LoadConfigured enables under name. Registered factories are enabled
// before plugin files, in name order.
func (m *Manager) Register(name string, f Factory) {
	if f == nil {
		return
	}
	m.mu.Lock()
	m.factories[name] = f
	m.mu.Unlock()
}

// LoadConfigured enables registered factories and the configured plugin files. Only the first call has
// an effect.
func (m *Manager) LoadConfigured() {
	m.once.Do(m.loadConfigured)
}

// Infos returns the plugins currently enabled in the order they were enabled.
func (m *Manager) Infos() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]Info, len(m.plugins))
	for i, p := range m.plugins {
		infos[i] = p.info()
	}
	return infos
}

// Plugin returns an enabled plugin by its case-insensitive name.
func (m *Manager) Plugin(name string) (Plugin, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.plugins {
		if strings.EqualFold(p.name, name) {
			return p.plugin, true
		}
	}
	return nil, false
}

// EnableFactory enables the plugin created by f. name is used until the plugin reports its own name.
func (m *Manager) EnableFactory(name string, f Factory) (Info, error) {
	if !m.Enabled() {
		return Info{}, ErrDisabled
	}
	if f == nil {
		return Info{}, fmt.Errorf("enable %s: nil factory", name)
	}
	if err := m.ensureDataRoot(); err != nil {
		return Info{}, fmt.Errorf("prepare plugin data storage: %w", err)
	}
	return m.enable(instance{initial: name, factory: f}, "factory")
}

// Enable loads the Go plugin at path and enables it.
func (m *Manager) Enable(path string) (Info, error) {
	if !m.Enabled() {
		return Info{}, ErrDisabled
	}
	if err := os.MkdirAll(m.directory(), 0o755); err != nil {
		return Info{}, fmt.Errorf("prepare plugin directory: %w", err)
	}
	if err := m.ensureDataRoot(); err != nil {
		return Info{}, fmt.Errorf("prepare plugin data storage: %w", err)
	}

	resolved := m.resolvePath(path)
	m.mu.RLock()
	for _, existing := range m.plugins {
		if existing.path != "" && existing.path == resolved {
			m.mu.RUnlock()
			return existing.info(), ErrAlreadyLoaded
		}
	}
	m.mu.RUnlock()

	mod, err := goplugin.Open(resolved)
	if err != nil {
		return Info{}, fmt.Errorf("open plugin: %w", err)
	}
	f, symbol, err := lookupFactory(mod)
	if err != nil {
		return Info{}, fmt.Errorf("locate plugin factory: %w", err)
	}
	return m.enable(instance{initial: baseName(resolved), path: resolved, factory: f, module: mod}, symbol)
}

func (m *Manager) enable(entry instance, source string) (info Info, err error) {
	ctx, cancel := context.WithCancel(context.Background())
	api := newAPI(m, m.host, entry.initial)
	api.setContext(ctx)
	dir := m.dataDirectory(entry.initial)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		cancel()
		return Info{}, fmt.Errorf("create plugin data directory: %w", err)
	}
	api.setDataDirectory(dir)
	defer func() {
		if err != nil {
			cancel()
			m.release(api.Name(), entry.initial)
		}
	}()

	p, err := entry.factory(api)
	if err != nil {
		return Info{}, fmt.Errorf("initialise plugin via %s: %w", source, err)
	}
	if p == nil {
		return Info{}, fmt.Errorf("initialise plugin via %s: factory returned nil", source)
	}
	version, err := checkVersion(p, m.host.Version())
	if err != nil {
		m.closeRejected(p, entry.initial)
		return Info{}, err
	}

	name := p.Name()
	if name == "" {
		name = entry.initial
	}
	if previous := api.Name(); previous != name {
		api.setName(name)
		m.host.Bus().Rename(previous, name)
	}
	if target := m.dataDirectory(name); target != api.DataDirectory() {
		if err := m.migrateDataDirectory(api.DataDirectory(), target); err != nil {
			m.runtimeLog.Error("Migrate plugin data directory.", "plugin", name, "error", err)
		} else {
			api.setDataDirectory(target)
		}
	}

	entry.name, entry.version, entry.plugin, entry.api, entry.cancel = name, version, p, api, cancel

	m.mu.Lock()
	for _, existing := range m.plugins {
		if strings.EqualFold(existing.name, entry.name) {
			m.mu.Unlock()
			m.closeRejected(p, entry.name)
			return Info{}, fmt.Errorf("%w: %s", ErrNameConflict, entry.name)
		}
	}
	m.plugins = append(m.plugins, entry)
	m.mu.Unlock()

	attrs := []any{"name", entry.name, "source", source}
	if entry.path != "" {
		attrs = append(attrs, "path", entry.path)
	}
	if entry.version != "" {
		attrs = append(attrs, "version", entry.version)
	}
	m.log.Info("Plugin enabled.", attrs...)
	return entry.info(), nil
}

func (m *Manager) closeRejected(p Plugin, name string) {
	if err := p.Close(); err != nil {
		m.log.Error("Close rejected plugin.", "name", name, "error", err)
	}
}

// release removes the listeners and tasks owned by any of names.
func (m *Manager) release(names ...string) {
	for _, name := range slices.Compact(slices.Clone(names)) {
		if name == "" {
			continue
		}
		m.host.Bus().Clear(name)
		m.host.Scheduler().CancelOwner(name)
	}
}

// Disable closes a plugin by its case-insensitive name. Its context is cancelled and its listeners
// and tasks are removed.
func (m *Manager) Disable(name string) (Info, error) {
	if !m.Enabled() {
		return Info{}, ErrDisabled
	}

	m.mu.Lock()
	index := slices.IndexFunc(m.plugins, func(p instance) bool { return strings.EqualFold(p.name, name) })
	if index == -1 {
		m.mu.Unlock()
		return Info{}, ErrNotFound
	}
	entry := m.plugins[index]
	m.plugins = slices.Delete(m.plugins, index, index+1)
	m.mu.Unlock()

	if err := entry.plugin.Close(); err != nil {
		m.mu.Lock()
		m.plugins = append(m.plugins, entry)
		m.mu.Unlock()
		return Info{}, fmt.Errorf("close plugin: %w", err)
	}
	m.stop(entry)

	m.log.Info("Plugin disabled.", "name", entry.name, "path", entry.path)
	return entry.info(), nil
}

func (m *Manager) stop(entry instance) {
	if entry.cancel != nil {
		entry.cancel()
	}
	m.release(entry.name, entry.initial)
}

// Reload disables a plugin and enables it again from the same file or factory.
func (m *Manager) Reload(name string) (Info, error) {
	m.mu.RLock()
	index := slices.IndexFunc(m.plugins, func(p instance) bool { return strings.EqualFold(p.name, name) })
	var entry instance
	if index != -1 {
		entry = m.plugins[index]
	}
	m.mu.RUnlock()
	if index == -1 {
		return Info{}, ErrNotFound
	}

	if _, err := m.Disable(name); err != nil {
		return Info{}, err
	}
	var (
		reloaded Info
		err      error
	)
	if entry.module != nil {
		reloaded, err = m.Enable(entry.path)
	} else {
		reloaded, err = m.EnableFactory(entry.initial, entry.factory)
	}
	if err != nil {
		return Info{}, err
	}

	attrs := []any{"name", reloaded.Name}
	if reloaded.Version != "" {
		attrs = append(attrs, "version", reloaded.Version)
	}
	m.log.Info("Plugin reloaded.", attrs...)
	return reloaded, nil
}

// DisableAll disables every plugin in reverse enable order and returns them in the order they were
// disabled.
func (m *Manager) DisableAll() ([]Info, error) {
	if !m.Enabled() {
		return nil, ErrDisabled
	}

	m.mu.RLock()
	names := make([]string, len(m.plugins))
	for i, p := range m.plugins {
		names[i] = p.name
	}
	m.mu.RUnlock()

	infos := make([]Info, 0, len(names))
	for _, name := range slices.Backward(names) {
		info, err := m.Disable(name)
		if err != nil {
			return infos, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Shutdown disables all plugins in reverse enable order. Close errors are logged.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	plugins := m.plugins
	m.plugins = nil
	m.mu.Unlock()

	for _, entry := range slices.Backward(plugins) {
		m.stop(entry)
		if err := entry.plugin.Close(); err != nil {
			m.log.Error("Disable plugin.", "error", err, "name", entry.name)
			continue
		}
		m.log.Info("Plugin disabled.", "name", entry.name)
	}
}

// HandlePanic logs a panic raised by code of the plugin called name and disables the plugin.
func (m *Manager) HandlePanic(name string, reason any) {
	if name == "" {
		name = "plugin"
	}
	m.host.Bus().Clear(name)
	m.runtimeLog.Error("Plugin panic.", "plugin", name, "panic", reason, "stack", string(debug.Stack()))
	go func() {
		info, err := m.Disable(name)
		if err != nil {
			if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrDisabled) {
				m.runtimeLog.Error("Disable panic plugin.", "plugin", name, "error", err)
			}
			return
		}
		m.runtimeLog.Warn("Plugin disabled after panic.", "name", info.Name, "version", info.Version)
	}()
}

func (m *Manager) loadConfigured() {
	if !m.cfg.Enabled {
		m.log.Debug("Plugin system disabled.")
		return
	}

	m.mu.RLock()
	factories := maps.Clone(m.factories)
	m.mu.RUnlock()
	for _, name := range slices.Sorted(maps.Keys(factories)) {
		if _, err := m.EnableFactory(name, factories[name]); err != nil {
			m.log.Error("Enable plugin.", "error", err, "name", name)
		}
	}

	paths, err := m.discover()
	if err != nil {
		m.log.Error("Discover plugins.", "error", err, "dir", m.directory())
	}
	if len(paths) == 0 && len(factories) == 0 {
		m.log.Debug("No plugins discovered.")
		return
	}
	for _, path := range paths {
		if _, err := m.Enable(path); err != nil {
			m.log.Error("Enable plugin.", "error", err, "path", path)
		}
	}
}

// discover returns the sorted plugin files named by the configuration.
func (m *Manager) discover() ([]string, error) {
	seen := map[string]struct{}{}
	var paths []string
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		paths = append(paths, path)
	}

	var err error
	if m.cfg.Autoload {
		var entries []os.DirEntry
		entries, err = os.ReadDir(m.directory())
		if errors.Is(err, os.ErrNotExist) {
			err = nil
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".so") {
				continue
			}
			add(filepath.Clean(filepath.Join(m.directory(), entry.Name())))
		}
	}
	for _, file := range m.cfg.Files {
		add(m.resolvePath(file))
	}
	slices.Sort(paths)
	return paths, err
}

func (m *Manager) directory() string {
	if m.cfg.Directory == "" {
		return "plugins"
	}
	return m.cfg.Directory
}

func (m *Manager) resolvePath(path string) string {
	if path == "" {
		return ""
	}
	cleaned := filepath.Clean(path)
	if filepath.IsAbs(cleaned) {
		return cleaned
	}
	dir := filepath.Clean(m.directory())
	if cleaned == dir {
		return dir
	}
	// Paths that already start with the plugin directory are kept as they are.
	if rel, err := filepath.Rel(dir, cleaned); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return cleaned
	}
	return filepath.Join(dir, cleaned)
}

func (m *Manager) dataRoot() string {
	dir := m.cfg.DataDirectory
	switch {
	case dir == "":
		dir = filepath.Join(m.directory(), "data")
	case !filepath.IsAbs(dir):
		dir = filepath.Join(m.directory(), dir)
	}
	return filepath.Clean(dir)
}

func (m *Manager) ensureDataRoot() error {
	return os.MkdirAll(m.dataRoot(), 0o755)
}

func (m *Manager) dataDirectory(name string) string {
	return filepath.Join(m.dataRoot(), sanitizeDirectory(name))
}

func (m *Manager) migrateDataDirectory(from, to string) error {
	if from == to {
		return nil
	}
	if to == "" {
		return errors.New("empty target data directory")
	}
	if from == "" {
		return os.MkdirAll(to, 0o755)
	}
	info, err := os.Stat(from)
	if errors.Is(err, os.ErrNotExist) {
		return os.MkdirAll(to, 0o755)
	} else if err != nil {
		return fmt.Errorf("stat source data directory: %w", err)
	}
	if !info.IsDir() {
		return errors.New("source data directory is not a directory")
	}
	if _, err := os.Stat(to); err == nil {
		// The target already holds data from an earlier run; the empty directory created for the
		// initial name is dropped.
		_ = os.Remove(from)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return fmt.Errorf("ensure target parent: %w", err)
	}
	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("rename data directory: %w", err)
	}
	return nil
}

// checkVersion validates the version reported by p and the library version it requires. It returns
// the canonical version of p, or an empty string if p has none.
func checkVersion(p Plugin, library string) (string, error) {
	var version string
	if v, ok := p.(VersionedPlugin); ok && v.Version() != "" {
		version = canonical(v.Version())
		if !semver.IsValid(version) {
			return "", fmt.Errorf("%w: %q", ErrInvalidVersion, v.Version())
		}
	}
	if d, ok := p.(DependentPlugin); ok && d.RequiredLibrary() != "" {
		required := canonical(d.RequiredLibrary())
		if !semver.IsValid(required) {
			return "", fmt.Errorf("%w: required library %q", ErrInvalidVersion, d.RequiredLibrary())
		}
		if lib := canonical(library); semver.IsValid(lib) && semver.Compare(lib, required) < 0 {
			return "", fmt.Errorf("%w: need %s, have %s", ErrIncompatible, required, lib)
		}
	}
	return version, nil
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	return "v" + strings.TrimPrefix(v, "v")
}

func baseName(path string) string {
	base := strings.TrimSpace(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	if base == "" || base == "." {
		return "plugin"
	}
	return base
}

func sanitizeDirectory(name string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-' || r == '_' || r == '.':
			return r
		default:
			return '-'
		}
	}, strings.ToLower(strings.TrimSpace(name)))
	sanitized = strings.Trim(sanitized, "-_.")
	if sanitized == "" {
		return "plugin"
	}
	return sanitized
}

var errSymbolNotFound = errors.New("symbol not found")

func lookupFactory(mod *goplugin.Plugin) (Factory, string, error) {
	for _, symbol := range factorySymbols {
		sym, err := mod.Lookup(symbol)
		if err != nil {
			continue
		}
		f, err := exportFactory(sym, symbol)
		if err != nil {
			return nil, symbol, err
		}
		return f, symbol, nil
	}
	return nil, "", fmt.Errorf("%w: tried %s", errSymbolNotFound, strings.Join(factorySymbols, ", "))
}

func exportFactory(sym any, symbol string) (Factory, error) {
	wrap := func(ctor func(*API) Plugin) Factory {
		return func(api *API) (Plugin, error) {
			if p := ctor(api); p != nil {
				return p, nil
			}
			return nil, fmt.Errorf("%s returned nil plugin", symbol)
		}
	}
	switch fn := sym.(type) {
	case Factory:
		return fn, nil
	case *Factory:
		return *fn, nil
	case func(*API) (Plugin, error):
		return fn, nil
	case *func(*API) (Plugin, error):
		return *fn, nil
	case func(*API) Plugin:
		return wrap(fn), nil
	case *func(*API) Plugin:
		return wrap(*fn), nil
	default:
		return nil, fmt.Errorf("symbol %s has incompatible type %T", symbol, sym)
	}
}
