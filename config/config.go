/*
Package config loads server configuration from TOML.

FILE FORMAT:
  [server]
  port = 8080
  read_timeout = "15s"
  write_timeout = "15s"
  idle_timeout = "60s"
  shutdown_timeout = "30s"

  [database]
  path = "lending.db"        # ":memory:" for an in-memory database

  [cache]
  backend = "memory"         # or "redis"
  redis_addr = "localhost:6379"
  ttl = "10m"

  [cors]
  allowed_origins = ["http://localhost:5173"]

  [metrics]
  enabled = true
  path = "/metrics"

Keys missing from the file keep their Default() value. Command-line flags
in cmd/server override the file.
*/
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Cache    CacheConfig    `toml:"cache"`
	CORS     CORSConfig     `toml:"cors"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

type ServerConfig struct {
	Port            int    `toml:"port"`
	ReadTimeout     string `toml:"read_timeout"`
	WriteTimeout    string `toml:"write_timeout"`
	IdleTimeout     string `toml:"idle_timeout"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type CacheConfig struct {
	Backend   string `toml:"backend"`
	RedisAddr string `toml:"redis_addr"`
	TTL       string `toml:"ttl"`
}

type CORSConfig struct {
	AllowedOrigins []string `toml:"allowed_origins"`
}

type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     "15s",
			WriteTimeout:    "15s",
			IdleTimeout:     "60s",
			ShutdownTimeout: "30s",
		},
		Database: DatabaseConfig{Path: "lending.db"},
		Cache: CacheConfig{
			Backend:   CacheMemory,
			RedisAddr: "localhost:6379",
			TTL:       "10m",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		},
		Metrics: MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

// Load decodes the TOML file at path over Default() and validates the result.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML text over Default(); used by tests and embedded configs.
func Parse(data string) (Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	for name, value := range map[string]string{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.idle_timeout":     c.Server.IdleTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"cache.ttl":               c.Cache.TTL,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	switch c.Cache.Backend {
	case CacheMemory:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr required for redis backend")
		}
	default:
		return fmt.Errorf("cache.backend %q: expected %q or %q", c.Cache.Backend, CacheMemory, CacheRedis)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path required")
	}
	return nil
}

// Durations. Validate has already checked they parse.
func (s ServerConfig) Read() time.Duration     { return mustDuration(s.ReadTimeout) }
func (s ServerConfig) Write() time.Duration    { return mustDuration(s.WriteTimeout) }
func (s ServerConfig) Idle() time.Duration     { return mustDuration(s.IdleTimeout) }
func (s ServerConfig) Shutdown() time.Duration { return mustDuration(s.ShutdownTimeout) }
func (c CacheConfig) Expiry() time.Duration    { return mustDuration(c.TTL) }

func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
