// Package config provides YAML-based configuration loading for the mirror kiosk.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level kiosk configuration, loaded from mirror.yaml.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	LiveKit  LiveKitConfig  `yaml:"livekit"`
	Storage  StorageConfig  `yaml:"storage"`
	Session  SessionConfig  `yaml:"session"`
	Agent    AgentConfig    `yaml:"agent"`
	Notify   NotifyConfig   `yaml:"notify"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port          int    `yaml:"port"`
	AdminPassword string `yaml:"admin_password"`
}

// DatabaseConfig selects the guest directory / ledger backend. When Driver is
// "sqlite" only Path is used; when "mysql" the host/port/database triple is used.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// LiveKitConfig holds connection settings for the capture backend.
type LiveKitConfig struct {
	URL       string `yaml:"url"`
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	Room      string `yaml:"room"`
}

// StorageConfig holds S3-compatible object store settings for recordings.
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// SessionConfig parameterizes the guest session state machine. One config
// replaces the per-wedding agent copies of the original deployment.
type SessionConfig struct {
	WakePhrase             string `yaml:"wake_phrase"`
	CoupleNames            string `yaml:"couple_names"`
	WatchdogTimeoutSeconds int    `yaml:"watchdog_timeout_seconds"`
	OriginalText           string `yaml:"original_text"`
}

// AgentConfig points at the external dialogue runtime.
type AgentConfig struct {
	SpeakURL string `yaml:"speak_url"`
}

// NotifyConfig holds optional operator notification channels.
type NotifyConfig struct {
	Discord DiscordConfig `yaml:"discord"`
	Slack   SlackConfig   `yaml:"slack"`
}

// DiscordConfig holds Discord bot settings for operator notifications.
type DiscordConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// SlackConfig holds Slack bot settings for operator notifications.
type SlackConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		c.Database.Path = "mirror.db"
	}
	if c.Database.Host == "" {
		c.Database.Host = "127.0.0.1"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.User == "" {
		c.Database.User = "root"
	}
	if c.LiveKit.Room == "" {
		c.LiveKit.Room = "mirror-room"
	}
	if c.Session.WakePhrase == "" {
		c.Session.WakePhrase = "mirror mirror"
	}
	if c.Session.WatchdogTimeoutSeconds == 0 {
		c.Session.WatchdogTimeoutSeconds = 12
	}
	if c.Session.OriginalText == "" && c.Session.CoupleNames != "" {
		c.Session.OriginalText = fmt.Sprintf(
			`<span class="line fancy">Welcome to</span>`+
				`<span class="line fancy">%s</span>`+
				`<span class="line fancy">Wedding</span>`+
				`<span class="line script">Say Mirror Mirror to begin</span>`,
			c.Session.CoupleNames)
	}
	if c.Storage.Region == "" {
		c.Storage.Region = "us-east-1"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Session.CoupleNames == "" {
		errs = append(errs, "session.couple_names is required")
	}
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q is not supported (sqlite or mysql)", c.Database.Driver))
	}
	if c.Database.Driver == "mysql" && c.Database.Database == "" {
		errs = append(errs, "database.database is required for the mysql driver")
	}
	if c.Session.WatchdogTimeoutSeconds < 0 {
		errs = append(errs, "session.watchdog_timeout_seconds must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
