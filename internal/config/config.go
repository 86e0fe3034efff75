// Package config loads binform's runtime configuration: where to find
// named format strings, how large the compiled-spec cache should be, and
// how the serve command binds.
package config

// Config is the complete binform configuration.
type Config struct {
	// SpecDirs lists directories for .bfmt format files. Validate requires
	// at least one entry; no command reads format files from these
	// directories, since formats are given inline with --format.
	SpecDirs []string `toml:"spec_dirs" mapstructure:"spec_dirs"`

	// NamePrefix seeds auto-naming for every format compiled through this
	// config (see textparser.Compile).
	NamePrefix string `toml:"name_prefix" mapstructure:"name_prefix"`

	Cache CacheConfig `toml:"cache" mapstructure:"cache"`
	Serve ServeConfig `toml:"serve" mapstructure:"serve"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `toml:"log_level" mapstructure:"log_level"`

	configPath string
}

// CacheConfig tunes the compiled-spec LRU.
type CacheConfig struct {
	MaxEntries int `toml:"max_entries" mapstructure:"max_entries"`
}

// ServeConfig tunes the demo streaming server (internal/examples/adbframe).
type ServeConfig struct {
	BindAddr string `toml:"bind_addr" mapstructure:"bind_addr"`
	Port     int    `toml:"port" mapstructure:"port"`
}

// ConfigPath returns the file the configuration was loaded from, or "" if
// it came entirely from defaults/environment.
func (c *Config) ConfigPath() string { return c.configPath }

func defaultConfig() Config {
	return Config{
		SpecDirs:   []string{"./formats"},
		NamePrefix: "v",
		Cache:      CacheConfig{MaxEntries: 256},
		Serve:      ServeConfig{BindAddr: "", Port: 8088},
		LogLevel:   "info",
	}
}
