package plugin

import "errors"

// Plugin is an extension enabled by the manager.
type Plugin interface {
	// Name returns the display name of the plugin. It must be unique among enabled plugins.
	Name() string
	// Close releases the resources of the plugin. It is called once when the plugin is disabled.
	Close() error
}

// VersionedPlugin is implemented by plugins that report a semantic version such as "1.2.0".
type VersionedPlugin interface {
	Version() string
}

// DependentPlugin is implemented by plugins that need a minimum version of the library.
type DependentPlugin interface {
	RequiredLibrary() string
}

// Factory creates a plugin. The plugin is enabled as soon as the factory returns.
type Factory func(api *API) (Plugin, error)

// Info describes an enabled plugin.
type Info struct {
	Name    string
	Version string
	// Path is the file the plugin was loaded from. It is empty for registered factories.
	Path string
}

var (
	// ErrDisabled is returned when the plugin subsystem is disabled.
	ErrDisabled = errors.New("plugin subsystem disabled")
	// ErrAlreadyLoaded is returned when enabling a plugin that is already enabled.
	ErrAlreadyLoaded = errors.New("plugin already loaded")
	// ErrNameConflict is returned when another plugin uses the same case-insensitive name.
	ErrNameConflict = errors.New("plugin name already registered")
	// ErrNotFound is returned for plugins that are not enabled.
	ErrNotFound = errors.New("plugin not found")
	// ErrInvalidVersion is returned for plugins reporting a version that is not a semantic version.
	ErrInvalidVersion = errors.New("invalid plugin version")
	// ErrIncompatible is returned for plugins requiring a newer library.
	ErrIncompatible = errors.New("plugin requires a newer library")
)
