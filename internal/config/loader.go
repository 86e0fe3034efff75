package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from, in priority order: defaults, a config
// file (if configPath is non-empty), then BINFORM_-prefixed environment
// variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	def := defaultConfig()
	v.SetDefault("spec_dirs", def.SpecDirs)
	v.SetDefault("name_prefix", def.NamePrefix)
	v.SetDefault("cache.max_entries", def.Cache.MaxEntries)
	v.SetDefault("serve.bind_addr", def.Serve.BindAddr)
	v.SetDefault("serve.port", def.Serve.Port)
	v.SetDefault("log_level", def.LogLevel)

	if configPath != "" {
		if err := loadConfigFile(v, configPath); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	v.SetEnvPrefix("BINFORM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.configPath = configPath

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func loadConfigFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist: %s", path)
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// Validate rejects a configuration that cannot plausibly run.
func Validate(cfg *Config) error {
	if len(cfg.SpecDirs) == 0 {
		return fmt.Errorf("spec_dirs must name at least one search directory")
	}
	if cfg.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache.max_entries must be positive, got %d", cfg.Cache.MaxEntries)
	}
	if cfg.Serve.Port <= 0 || cfg.Serve.Port > 65535 {
		return fmt.Errorf("serve.port must be in (0, 65535], got %d", cfg.Serve.Port)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug/info/warn/error, got %q", cfg.LogLevel)
	}
	return nil
}
