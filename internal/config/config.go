// Package config loads CLI configuration: where the admin API listens and
// is reached, where the SQLite database lives, the saved login token and
// seed sizes. Values come from config.toml in the config directory;
// STEWARD_* environment variables override them.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	API    APIConfig `mapstructure:"api"`
	DB     DBConfig  `mapstructure:"db"`
	Seed   SeedConfig
	TUI    TUIConfig `mapstructure:"tui"`
}

// ServerConfig is the `steward serve` side.
type ServerConfig struct {
	Addr string
}

// APIConfig is the client side: where commands connect and the bearer token
// written by `steward login`.
type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Token   string
}

type DBConfig struct {
	Path string
}

// SeedConfig sets the bulk sizes `steward seed` generates on top of the
// staple fixtures.
type SeedConfig struct {
	Users int
	Tasks int
}

type TUIConfig struct {
	Theme string
}

// Dir returns the config directory.
func Dir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.steward).
	if v := strings.TrimSpace(os.Getenv("STEWARD_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".steward"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads configuration from file and env. Env var overrides use prefix
// STEWARD_, e.g. STEWARD_API_BASE_URL or STEWARD_API_TOKEN.
func Load() (Config, error) {
	dir, err := Dir()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetDefault("server.addr", "127.0.0.1:8000")
	v.SetDefault("api.base_url", "http://127.0.0.1:8000")
	v.SetDefault("api.token", "")
	v.SetDefault("db.path", filepath.Join(dir, "steward.db"))
	v.SetDefault("seed.users", 500)
	v.SetDefault("seed.tasks", 200)
	v.SetDefault("tui.theme", "auto")

	v.SetConfigType("toml")
	v.AddConfigPath(dir)
	v.SetConfigName("config")

	v.SetEnvPrefix("STEWARD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing file is fine; defaults and env still apply.
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the config to disk, creating the directory if needed. Login
// and logout use it to persist and clear the token.
func Save(cfg Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("server.addr", cfg.Server.Addr)
	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("api.token", cfg.API.Token)
	v.Set("db.path", cfg.DB.Path)
	v.Set("seed.users", cfg.Seed.Users)
	v.Set("seed.tasks", cfg.Seed.Tasks)
	v.Set("tui.theme", cfg.TUI.Theme)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
