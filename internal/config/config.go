package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Session   SessionConfig   `yaml:"session"`
	Client    ClientConfig    `yaml:"client"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// SessionConfig tunes the session runtime. Zero values fall back to DefaultSession().
type SessionConfig struct {
	DurationMinutes int         `yaml:"duration_minutes"`
	AdvanceDelayMs  int         `yaml:"advance_delay_ms"`
	AlertDisplayMs  int         `yaml:"alert_display_ms"`
	Thresholds      []Threshold `yaml:"thresholds"`
	WriteAttempts   int         `yaml:"write_attempts"`
	WriteBackoffMs  int         `yaml:"write_backoff_ms"`
}

// Threshold is a remaining-time watch point with the message shown when it is crossed.
type Threshold struct {
	RemainingSeconds int    `yaml:"remaining_seconds"`
	Message          string `yaml:"message"`
}

// ClientConfig is used by the CLI and terminal client to reach the data service.
type ClientConfig struct {
	ServerURL string `yaml:"server_url"`
	APIKey    string `yaml:"api_key"`
	StateDir  string `yaml:"state_dir"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Duration returns the total session length.
func (s SessionConfig) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

// AdvanceDelay returns the pause between logging a set and showing the next exercise.
func (s SessionConfig) AdvanceDelay() time.Duration {
	return time.Duration(s.AdvanceDelayMs) * time.Millisecond
}

// AlertDisplay returns how long a threshold notification stays visible.
func (s SessionConfig) AlertDisplay() time.Duration {
	return time.Duration(s.AlertDisplayMs) * time.Millisecond
}

// WriteBackoff returns the base delay between persistence retries.
func (s SessionConfig) WriteBackoff() time.Duration {
	return time.Duration(s.WriteBackoffMs) * time.Millisecond
}

// DefaultSession returns the session settings used when the config file omits them.
func DefaultSession() SessionConfig {
	return SessionConfig{
		DurationMinutes: 30,
		AdvanceDelayMs:  1200,
		AlertDisplayMs:  4000,
		Thresholds: []Threshold{
			{RemainingSeconds: 20 * 60, Message: "10 minutes in. Keep the pace."},
			{RemainingSeconds: 10 * 60, Message: "20 minutes in. Final stretch ahead."},
			{RemainingSeconds: 5 * 60, Message: "5 minutes left. Finish strong."},
		},
		WriteAttempts:  3,
		WriteBackoffMs: 500,
	}
}

// Default returns a config with session defaults and nothing else set.
func Default() *Config {
	return &Config{Session: DefaultSession()}
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix LIGHTWEIGHT_ and underscore-separated paths:
//
//	LIGHTWEIGHT_SERVER_HOST, LIGHTWEIGHT_SERVER_PORT,
//	LIGHTWEIGHT_DB_HOST, LIGHTWEIGHT_DB_PORT, LIGHTWEIGHT_DB_NAME,
//	LIGHTWEIGHT_DB_USER, LIGHTWEIGHT_DB_PASSWORD, LIGHTWEIGHT_DB_SSLMODE,
//	LIGHTWEIGHT_AUTH_API_KEY, LIGHTWEIGHT_TAILSCALE_ENABLED, LIGHTWEIGHT_TAILSCALE_HOSTNAME,
//	LIGHTWEIGHT_CLIENT_SERVER_URL, LIGHTWEIGHT_CLIENT_API_KEY
func Load(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// LoadClient is Load for the CLI: only the client section must be valid.
// A missing file is not an error when the env vars supply the server URL.
func LoadClient(path string) (*Config, error) {
	cfg, err := read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		cfg = Default()
		applyEnvOverrides(cfg)
	}
	if err := cfg.validateClient(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func read(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	cfg.Session = withSessionDefaults(cfg.Session)
	return cfg, nil
}

func withSessionDefaults(s SessionConfig) SessionConfig {
	d := DefaultSession()
	if s.DurationMinutes == 0 {
		s.DurationMinutes = d.DurationMinutes
	}
	if s.AdvanceDelayMs == 0 {
		s.AdvanceDelayMs = d.AdvanceDelayMs
	}
	if s.AlertDisplayMs == 0 {
		s.AlertDisplayMs = d.AlertDisplayMs
	}
	if s.Thresholds == nil {
		s.Thresholds = d.Thresholds
	}
	if s.WriteAttempts == 0 {
		s.WriteAttempts = d.WriteAttempts
	}
	if s.WriteBackoffMs == 0 {
		s.WriteBackoffMs = d.WriteBackoffMs
	}
	return s
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LIGHTWEIGHT_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("LIGHTWEIGHT_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LIGHTWEIGHT_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("LIGHTWEIGHT_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("LIGHTWEIGHT_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("LIGHTWEIGHT_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("LIGHTWEIGHT_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("LIGHTWEIGHT_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("LIGHTWEIGHT_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("LIGHTWEIGHT_TAILSCALE_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = enabled
		}
	}
	if v := os.Getenv("LIGHTWEIGHT_TAILSCALE_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("LIGHTWEIGHT_CLIENT_SERVER_URL"); v != "" {
		cfg.Client.ServerURL = v
	}
	if v := os.Getenv("LIGHTWEIGHT_CLIENT_API_KEY"); v != "" {
		cfg.Client.APIKey = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	return c.Session.validate()
}

func (c *Config) validateClient() error {
	if c.Client.ServerURL == "" {
		return fmt.Errorf("client.server_url is required")
	}
	return c.Session.validate()
}

func (s SessionConfig) validate() error {
	if s.DurationMinutes < 0 {
		return fmt.Errorf("session.duration_minutes must be positive")
	}
	if s.WriteAttempts < 0 {
		return fmt.Errorf("session.write_attempts must be positive")
	}
	total := s.DurationMinutes * 60
	for _, t := range s.Thresholds {
		if t.RemainingSeconds <= 0 || t.RemainingSeconds >= total {
			return fmt.Errorf("session threshold %ds outside session length %ds", t.RemainingSeconds, total)
		}
	}
	return nil
}
