package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fwojciec/pagewatch"
	"github.com/spf13/viper"
)

// ErrInvalidConfig is returned when the configuration has an unsupported value.
var ErrInvalidConfig = errors.New("invalid configuration")

// DefaultConfigName is the configuration file looked up when no path is given.
const DefaultConfigName = "pagewatch.toml"

// Configuration keys.
const (
	keyLogLevel       = "log.level"
	keyLogDevelopment = "log.development"
	keyCacheBackend   = "cache.backend"
	keyCacheDir       = "cache.dir"
	keyCacheVersions  = "cache.versions"
	keyAligner        = "aligner"
	keyUI             = "ui"
	keyNotifiers      = "notifiers"
	keyWebhookURL     = "webhook.url"
	keyOutboxDir      = "outbox.dir"
	keyWorkers        = "workers"
)

// Config is the pagewatch configuration.
type Config struct {
	Log       LogConfig     `mapstructure:"log" toml:"log"`
	Cache     CacheConfig   `mapstructure:"cache" toml:"cache"`
	Aligner   string        `mapstructure:"aligner" toml:"aligner"`
	UI        string        `mapstructure:"ui" toml:"ui"`
	Workers   int           `mapstructure:"workers" toml:"workers"`
	Notifiers []string      `mapstructure:"notifiers" toml:"notifiers"`
	Webhook   WebhookConfig `mapstructure:"webhook" toml:"webhook"`
	Outbox    OutboxConfig  `mapstructure:"outbox" toml:"outbox"`
	Tasks     []TaskConfig  `mapstructure:"tasks" toml:"tasks"`
}

type LogConfig struct {
	Level       string `mapstructure:"level" toml:"level"`
	Development bool   `mapstructure:"development" toml:"development"`
}

type CacheConfig struct {
	Backend  string `mapstructure:"backend" toml:"backend"`
	Dir      string `mapstructure:"dir" toml:"dir,omitempty"`
	Versions int    `mapstructure:"versions" toml:"versions"`
}

type WebhookConfig struct {
	URL string `mapstructure:"url" toml:"url"`
}

type OutboxConfig struct {
	Dir string `mapstructure:"dir" toml:"dir"`
}

// TaskConfig is the configured form of a task. Interval is a duration string
// such as "5m".
type TaskConfig struct {
	Name       string `mapstructure:"name" toml:"name"`
	URL        string `mapstructure:"url" toml:"url"`
	Interval   string `mapstructure:"interval" toml:"interval"`
	MaxRounds  int    `mapstructure:"max_rounds" toml:"max_rounds"`
	JSONPath   string `mapstructure:"json_path" toml:"json_path,omitempty"`
	StripHTML  bool   `mapstructure:"strip_html" toml:"strip_html,omitempty"`
	ResetCache bool   `mapstructure:"reset_cache" toml:"reset_cache,omitempty"`
}

// Task converts c to a task. An empty interval defaults to
// pagewatch.MinInterval.
func (c TaskConfig) Task() (pagewatch.Task, error) {
	interval := pagewatch.MinInterval
	if c.Interval != "" {
		d, err := time.ParseDuration(c.Interval)
		if err != nil {
			return pagewatch.Task{}, fmt.Errorf("%w: task %q interval: %w", ErrInvalidConfig, c.Name, err)
		}
		interval = d
	}
	if c.URL == "" {
		return pagewatch.Task{}, fmt.Errorf("%w: task %q has no url", ErrInvalidConfig, c.Name)
	}
	return pagewatch.Task{
		Name:       c.Name,
		URL:        c.URL,
		Interval:   interval,
		MaxRounds:  c.MaxRounds,
		JSONPath:   c.JSONPath,
		StripHTML:  c.StripHTML,
		ResetCache: c.ResetCache,
	}, nil
}

// PageTasks converts every configured task.
func (c *Config) PageTasks() ([]pagewatch.Task, error) {
	tasks := make([]pagewatch.Task, 0, len(c.Tasks))
	for _, tc := range c.Tasks {
		t, err := tc.Task()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogDevelopment, false)
	v.SetDefault(keyCacheBackend, "fs")
	v.SetDefault(keyCacheDir, "")
	v.SetDefault(keyCacheVersions, 3)
	v.SetDefault(keyAligner, "builtin")
	v.SetDefault(keyUI, "console")
	v.SetDefault(keyNotifiers, []string{"console"})
	v.SetDefault(keyWebhookURL, "")
	v.SetDefault(keyOutboxDir, "outbox")
	v.SetDefault(keyWorkers, 0)
}

// LoadConfig reads the configuration at path. With an empty path it looks for
// pagewatch.toml in the working directory and then in the user config
// directory, and falls back to defaults when neither exists. Environment
// variables prefixed with PAGEWATCH_ override file values, for example
// PAGEWATCH_CACHE_BACKEND.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	setDefaults(v)

	v.SetEnvPrefix("pagewatch")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(DefaultConfigName, filepath.Ext(DefaultConfigName)))
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "pagewatch"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every enumerated setting.
func (c *Config) Validate() error {
	oneOf := func(key, value string, allowed ...string) error {
		if !slices.Contains(allowed, value) {
			return fmt.Errorf("%w: %s must be one of %s, got %q", ErrInvalidConfig, key, strings.Join(allowed, ", "), value)
		}
		return nil
	}
	if err := oneOf(keyCacheBackend, c.Cache.Backend, "fs", "sqlite"); err != nil {
		return err
	}
	if err := oneOf(keyAligner, c.Aligner, "builtin", "difflib"); err != nil {
		return err
	}
	if err := oneOf(keyUI, c.UI, "console", "tui"); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: %s must not be negative, got %d", ErrInvalidConfig, keyWorkers, c.Workers)
	}
	for _, n := range c.Notifiers {
		if err := oneOf(keyNotifiers, n, "console", "webhook", "outbox"); err != nil {
			return err
		}
		if n == "webhook" && c.Webhook.URL == "" {
			return fmt.Errorf("%w: webhook notifier requires %s", ErrInvalidConfig, keyWebhookURL)
		}
	}
	return nil
}

// SampleConfig returns the configuration written by the init command.
func SampleConfig() *Config {
	return &Config{
		Log:       LogConfig{Level: "info"},
		Cache:     CacheConfig{Backend: "fs", Versions: 3},
		Aligner:   "builtin",
		UI:        "console",
		Workers:   4,
		Notifiers: []string{"console"},
		Outbox:    OutboxConfig{Dir: "outbox"},
		Tasks: []TaskConfig{
			{
				Name:      "Example",
				URL:       "https://example.com",
				Interval:  "5m",
				StripHTML: true,
			},
		},
	}
}

// WriteConfig encodes cfg as TOML to path. It refuses to replace an existing
// file unless force is set.
func WriteConfig(cfg *Config, path string, force bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()

	fmt.Fprintln(f, "# pagewatch configuration")
	fmt.Fprintln(f, "# Environment variables prefixed with PAGEWATCH_ override these values.")
	fmt.Fprintln(f, "")

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return f.Close()
}
