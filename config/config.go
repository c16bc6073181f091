package config

import (
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/minstroy46-sys/kursk-registry-sub000/errors"
	"github.com/minstroy46-sys/kursk-registry-sub000/pkg/tlsutil"
)

// Config represents the complete application configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	Source SourceConfig `yaml:"source"`
	Auth   AuthConfig   `yaml:"auth"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig defines the HTTP listener
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RefreshCooldown time.Duration `yaml:"refresh_cooldown"` // Minimum gap between manual refreshes
	TLS             TLSConfig     `yaml:"tls"`
}

// TLSConfig enables HTTPS on the listener
type TLSConfig struct {
	Enabled    bool   `yaml:"enabled"`
	CertFile   string `yaml:"cert_file"`
	KeyFile    string `yaml:"key_file"`
	MinVersion string `yaml:"min_version"` // "1.2" or "1.3"
}

// SourceConfig defines where the registry export is read from
type SourceConfig struct {
	URL             string        `yaml:"url"`
	TTL             time.Duration `yaml:"ttl"`
	Timeout         time.Duration `yaml:"timeout"`
	WaitTimeout     time.Duration `yaml:"wait_timeout"` // Longest a page waits on a fetch; below server.write_timeout
	RetryAttempts   int           `yaml:"retry_attempts"`   // Extra attempts after a transient failure
	RefreshInterval time.Duration `yaml:"refresh_interval"` // Background warm-up, 0 disables
	CAFiles         []string      `yaml:"ca_files"`         // Extra roots for a privately issued source certificate
}

// AuthConfig defines the password gate
type AuthConfig struct {
	Password     string        `yaml:"password"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
	CookieName   string        `yaml:"cookie_name"`
	SecureCookie bool          `yaml:"secure_cookie"`
}

// LogConfig defines logging output
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RefreshCooldown: 10 * time.Second,
		},
		Source: SourceConfig{
			TTL:           300 * time.Second,
			Timeout:       30 * time.Second,
			WaitTimeout:   20 * time.Second,
			RetryAttempts: 2,
		},
		Auth: AuthConfig{
			SessionTTL: 12 * time.Hour,
			CookieName: "registry_session",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

var (
	validLevels  = []string{"debug", "info", "warn", "error"}
	validFormats = []string{"json", "text"}
)

// Validate checks if the config is valid. An empty source URL or password is not an
// error: the viewer starts and reports the gap where it matters.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		return invalid("server.addr %q: %v", c.Server.Addr, err)
	}

	positive := map[string]time.Duration{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"source.ttl":              c.Source.TTL,
		"source.timeout":          c.Source.Timeout,
		"source.wait_timeout":     c.Source.WaitTimeout,
		"auth.session_ttl":        c.Auth.SessionTTL,
	}
	for _, name := range sortedKeys(positive) {
		if positive[name] <= 0 {
			return invalid("%s must be positive, got %s", name, positive[name])
		}
	}

	if c.Source.WaitTimeout >= c.Server.WriteTimeout {
		return invalid("source.wait_timeout (%s) must be below server.write_timeout (%s)",
			c.Source.WaitTimeout, c.Server.WriteTimeout)
	}

	if c.Server.RefreshCooldown < 0 {
		return invalid("server.refresh_cooldown cannot be negative")
	}
	if c.Source.RefreshInterval < 0 {
		return invalid("source.refresh_interval cannot be negative")
	}
	if c.Source.RetryAttempts < 0 || c.Source.RetryAttempts > 10 {
		return invalid("source.retry_attempts must be between 0 and 10, got %d", c.Source.RetryAttempts)
	}

	if url := strings.TrimSpace(c.Source.URL); url != "" &&
		!strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return invalid("source.url must be an http(s) URL")
	}

	if tls := c.Server.TLS; tls.Enabled && (tls.CertFile == "" || tls.KeyFile == "") {
		return invalid("server.tls requires cert_file and key_file when enabled")
	}
	if !tlsutil.ValidVersion(c.Server.TLS.MinVersion) {
		return invalid("server.tls.min_version must be 1.2 or 1.3, got %q", c.Server.TLS.MinVersion)
	}

	if strings.TrimSpace(c.Auth.CookieName) == "" || strings.ContainsAny(c.Auth.CookieName, " ;,=") {
		return invalid("auth.cookie_name %q is not a valid cookie name", c.Auth.CookieName)
	}

	if !contains(validLevels, strings.ToLower(c.Log.Level)) {
		return invalid("invalid log level: %s", c.Log.Level)
	}
	if !contains(validFormats, strings.ToLower(c.Log.Format)) {
		return invalid("invalid log format: %s", c.Log.Format)
	}

	return nil
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}
	copied := *c
	if c.Source.CAFiles != nil {
		copied.Source.CAFiles = append([]string(nil), c.Source.CAFiles...)
	}
	return &copied
}

// String returns a YAML representation with secrets redacted
func (c *Config) String() string {
	redacted := c.Clone()
	if redacted.Auth.Password != "" {
		redacted.Auth.Password = "[REDACTED]"
	}
	if redacted.Source.URL != "" {
		redacted.Source.URL = redactURL(redacted.Source.URL)
	}
	data, err := yaml.Marshal(redacted)
	if err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return string(data)
}

func invalid(format string, args ...any) error {
	return errors.WrapInvalid(
		fmt.Errorf("%w: %s", errors.ErrInvalidConfig, fmt.Sprintf(format, args...)),
		"Config", "Validate", "configuration check")
}

// redactURL keeps scheme and host; export links carry access keys in path and query.
func redactURL(raw string) string {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return "[REDACTED]"
	}
	host, _, _ := strings.Cut(rest, "/")
	host, _, _ = strings.Cut(host, "?")
	return scheme + "://" + host + "/[REDACTED]"
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]time.Duration) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
