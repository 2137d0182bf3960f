package plugin

// Config controls which plugins the manager enables.
type Config struct {
	// Enabled turns the plugin subsystem on.
	Enabled bool `toml:"enabled"`
	// Directory is searched for plugin files and used to resolve relative paths in Files.
	Directory string `toml:"directory"`
	// DataDirectory holds the data folders of plugins. Defaults to "data" inside Directory;
	// relative paths are resolved against Directory.
	DataDirectory string `toml:"data_directory"`
	// Autoload loads every .so file in Directory.
	Autoload bool `toml:"autoload"`
	// Files lists extra plugin files to load.
	Files []string `toml:"files"`
}
