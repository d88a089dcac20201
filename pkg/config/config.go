// Package config loads quakewatch YAML configuration
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Feed   FeedConfig   `yaml:"feed" json:"feed" jsonschema:"description=Bulletin feed configuration"`
	Poll   PollConfig   `yaml:"poll" json:"poll" jsonschema:"description=Poll loop configuration"`
	Fetch  FetchConfig  `yaml:"fetch" json:"fetch" jsonschema:"description=Bulletin document download configuration"`
	Notify NotifyConfig `yaml:"notify" json:"notify" jsonschema:"description=Notification targets and escalation"`
	Store  StoreConfig  `yaml:"store" json:"store" jsonschema:"description=History store configuration"`
	Server ServerConfig `yaml:"server" json:"server" jsonschema:"description=Status server configuration"`
}

// FeedConfig defines the polled feed
type FeedConfig struct {
	URL       string        `yaml:"url" json:"url" jsonschema:"default=https://www.data.jma.go.jp/developer/xml/feed/eqvol.xml,description=Atom feed URL"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Feed request timeout"`
	UserAgent string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=quakewatch,description=User agent for HTTP requests"`
}

// PollConfig defines the poll loop
type PollConfig struct {
	Interval   time.Duration `yaml:"interval" json:"interval" jsonschema:"default=30s,description=Wait between feed polls"`
	SkipFirst  bool          `yaml:"skip_first" json:"skip_first" jsonschema:"default=true,description=Ignore bulletins already in the feed at startup"`
	MaxWorkers int           `yaml:"max_workers" json:"max_workers" jsonschema:"default=5,minimum=1,description=Maximum concurrent bulletin handlers"`
}

// FetchConfig defines retries of bulletin document downloads
type FetchConfig struct {
	Attempts int           `yaml:"attempts" json:"attempts" jsonschema:"default=3,minimum=1,description=Download attempts per bulletin"`
	Delay    time.Duration `yaml:"delay" json:"delay" jsonschema:"default=1s,description=Delay between attempts"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=10s,description=Timeout of a single attempt"`
}

// NotifyConfig defines notification targets. Emergency targets get escalated bulletins only.
type NotifyConfig struct {
	Locations []string       `yaml:"locations" json:"locations" jsonschema:"description=Prefecture or area names escalating a bulletin when mentioned"`
	Log       bool           `yaml:"log" json:"log" jsonschema:"default=false,description=Write bulletins to the log as a general target"`
	Timeout   time.Duration  `yaml:"timeout" json:"timeout" jsonschema:"default=10s,description=Timeout of a delivery request"`
	Every     time.Duration  `yaml:"every" json:"every" jsonschema:"default=1s,description=Minimal interval between requests to one target"`
	Discord   WebhookTargets `yaml:"discord" json:"discord" jsonschema:"description=Discord webhook URLs"`
	LINE      LINETargets    `yaml:"line" json:"line" jsonschema:"description=LINE Notify access tokens"`
}

// WebhookTargets lists webhook urls by audience
type WebhookTargets struct {
	General   []string `yaml:"general" json:"general" jsonschema:"description=Webhooks receiving every bulletin"`
	Emergency []string `yaml:"emergency" json:"emergency" jsonschema:"description=Webhooks receiving escalated bulletins"`
}

// LINETargets lists LINE Notify tokens by audience
type LINETargets struct {
	Endpoint  string   `yaml:"endpoint" json:"endpoint" jsonschema:"default=https://notify-api.line.me/api/notify,description=LINE Notify API endpoint"`
	General   []string `yaml:"general" json:"general" jsonschema:"description=Tokens receiving every bulletin"`
	Emergency []string `yaml:"emergency" json:"emergency" jsonschema:"description=Tokens receiving escalated bulletins"`
}

// StoreConfig defines the history store, empty path disables it
type StoreConfig struct {
	Path string `yaml:"path" json:"path" jsonschema:"description=SQLite database file for delivered bulletins"`
}

// ServerConfig defines the status server, empty listen disables it
type ServerConfig struct {
	Listen  string        `yaml:"listen" json:"listen" jsonschema:"description=HTTP server listen address"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	BaseURL string        `yaml:"base_url" json:"base_url" jsonschema:"default=http://localhost:8080,description=Base URL for RSS links"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables, tokens and webhook urls are usually passed this way
	expanded := os.ExpandEnv(string(data))

	// bool default has to be set before unmarshal as false can't be told from missing
	cfg := Config{Poll: PollConfig{SkipFirst: true}}
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.SetDefaults()

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

// SetDefaults fills zero fields with default values
func (c *Config) SetDefaults() {
	if c.Feed.URL == "" {
		c.Feed.URL = "https://www.data.jma.go.jp/developer/xml/feed/eqvol.xml"
	}
	if c.Feed.Timeout == 0 {
		c.Feed.Timeout = 30 * time.Second
	}
	if c.Feed.UserAgent == "" {
		c.Feed.UserAgent = "quakewatch"
	}

	if c.Poll.Interval == 0 {
		c.Poll.Interval = 30 * time.Second
	}
	if c.Poll.MaxWorkers == 0 {
		c.Poll.MaxWorkers = 5
	}

	if c.Fetch.Attempts == 0 {
		c.Fetch.Attempts = 3
	}
	if c.Fetch.Delay == 0 {
		c.Fetch.Delay = time.Second
	}
	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = 10 * time.Second
	}

	if c.Notify.Timeout == 0 {
		c.Notify.Timeout = 10 * time.Second
	}
	if c.Notify.Every == 0 {
		c.Notify.Every = time.Second
	}
	if c.Notify.LINE.Endpoint == "" {
		c.Notify.LINE.Endpoint = "https://notify-api.line.me/api/notify"
	}

	if c.Server.Timeout == 0 {
		c.Server.Timeout = 30 * time.Second
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = "http://localhost:8080"
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if err := validateURL("feed.url", cfg.Feed.URL); err != nil {
		return err
	}
	if cfg.Feed.Timeout < time.Second {
		return fmt.Errorf("feed.timeout must be at least 1 second")
	}

	if cfg.Poll.Interval < time.Second {
		return fmt.Errorf("poll.interval must be at least 1 second")
	}
	if cfg.Poll.MaxWorkers < 1 {
		return fmt.Errorf("poll.max_workers must be at least 1")
	}

	if cfg.Fetch.Attempts < 1 {
		return fmt.Errorf("fetch.attempts must be at least 1")
	}
	if cfg.Fetch.Delay < 0 {
		return fmt.Errorf("fetch.delay must be non-negative")
	}

	if cfg.Notify.Every < 0 {
		return fmt.Errorf("notify.every must be non-negative")
	}
	for i, u := range cfg.Notify.Discord.General {
		if err := validateURL(fmt.Sprintf("notify.discord.general[%d]", i), u); err != nil {
			return err
		}
	}
	for i, u := range cfg.Notify.Discord.Emergency {
		if err := validateURL(fmt.Sprintf("notify.discord.emergency[%d]", i), u); err != nil {
			return err
		}
	}
	for i, tok := range cfg.Notify.LINE.General {
		if tok == "" {
			return fmt.Errorf("notify.line.general[%d] is empty", i)
		}
	}
	for i, tok := range cfg.Notify.LINE.Emergency {
		if tok == "" {
			return fmt.Errorf("notify.line.emergency[%d] is empty", i)
		}
	}

	if cfg.Server.Listen != "" && cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}
	return nil
}

func validateURL(name, s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("%s is invalid: %w", name, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be http(s) url, got %q", name, s)
	}
	return nil
}

// HasTargets reports whether any delivery target is configured
func (c *Config) HasTargets() bool {
	n := c.Notify
	return n.Log || len(n.Discord.General)+len(n.Discord.Emergency)+len(n.LINE.General)+len(n.LINE.Emergency) > 0
}

// Secrets returns values which must not show up in logs
func (c *Config) Secrets() []string {
	var res []string
	res = append(res, c.Notify.Discord.General...)
	res = append(res, c.Notify.Discord.Emergency...)
	res = append(res, c.Notify.LINE.General...)
	res = append(res, c.Notify.LINE.Emergency...)
	return res
}
