// Package config loads namescreen settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pedrohavay/namescreen/watchlist"
)

// EnvPath names the environment variable holding the config file path.
const EnvPath = "NAMESCREEN_CONFIG"

// Config represents the application configuration
type Config struct {
	Server struct {
		Addr         string        `yaml:"addr"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		MaxBodySize  int           `yaml:"max_body_size"`
		MaxConns     int           `yaml:"max_conns"` // 0 = unlimited
	} `yaml:"server"`

	Watchlist struct {
		Path       string `yaml:"path"`
		Format     string `yaml:"format"` // jsonl, csv, msgpack, yaml; empty = from path
		SigningKey string `yaml:"signing_key"`
		Autosave   bool   `yaml:"autosave"`
	} `yaml:"watchlist"`

	Log struct {
		File  string `yaml:"file"`
		JSON  bool   `yaml:"json"`
		Async bool   `yaml:"async"`
		Level string `yaml:"level"` // debug, info, warn, error
		Trace bool   `yaml:"trace"` // log every scored pair at debug level
	} `yaml:"log"`

	// Seed names are added when the watchlist starts empty.
	Seed []string `yaml:"seed"`
}

// Defaults returns a configuration with every field set.
func Defaults() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.MaxBodySize == 0 {
		c.Server.MaxBodySize = 4 * 1024
	}
	if c.Watchlist.Path == "" {
		c.Watchlist.Path = "watchlist.jsonl"
	}
}

// Load reads a YAML file and fills in defaults for missing fields.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(raw)
}

// Parse decodes YAML configuration bytes.
func Parse(raw []byte) (*Config, error) {
	c := &Config{}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		errs = append(errs, errors.New("server timeouts must not be negative"))
	}
	if c.Server.MaxBodySize < 0 {
		errs = append(errs, errors.New("server.max_body_size must not be negative"))
	}
	if c.Server.MaxConns < 0 {
		errs = append(errs, errors.New("server.max_conns must not be negative"))
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log.level: %q", c.Log.Level))
	}
	if _, err := c.WatchlistFormat(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// WatchlistFormat resolves the snapshot format, falling back to the file
// extension of the watchlist path.
func (c *Config) WatchlistFormat() (watchlist.Format, error) {
	if c.Watchlist.Format != "" {
		return watchlist.ParseFormat(c.Watchlist.Format)
	}
	return watchlist.ParseFormat(c.Watchlist.Path)
}

// LogLevel is the configured level, lowered to debug when tracing is on.
func (c *Config) LogLevel() string {
	if c.Log.Trace {
		return "debug"
	}
	if c.Log.Level == "" {
		return "info"
	}
	return strings.ToLower(c.Log.Level)
}

var (
	defaultOnce   sync.Once
	defaultConfig *Config
	defaultErr    error
)

// Default loads the file named by NAMESCREEN_CONFIG once, or returns
// Defaults() when the variable is unset.
func Default() (*Config, error) {
	defaultOnce.Do(func() {
		path := os.Getenv(EnvPath)
		if path == "" {
			defaultConfig = Defaults()
			return
		}
		defaultConfig, defaultErr = Load(path)
	})
	return defaultConfig, defaultErr
}
