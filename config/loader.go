package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/minstroy46-sys/kursk-registry-sub000/errors"
)

// Environment variables read by Load
const (
	EnvSourceURL       = "CSV_URL"
	EnvPassword        = "APP_PASSWORD"
	EnvAddr            = "REGISTRY_ADDR"
	EnvCacheTTL        = "REGISTRY_CACHE_TTL"
	EnvFetchTimeout    = "REGISTRY_FETCH_TIMEOUT"
	EnvWaitTimeout     = "REGISTRY_WAIT_TIMEOUT"
	EnvRefreshInterval = "REGISTRY_REFRESH_INTERVAL"
	EnvSessionTTL      = "REGISTRY_SESSION_TTL"
	EnvSecureCookie    = "REGISTRY_SECURE_COOKIE"
	EnvLogLevel        = "REGISTRY_LOG_LEVEL"
	EnvLogFormat       = "REGISTRY_LOG_FORMAT"
	EnvTLSCert         = "REGISTRY_TLS_CERT"
	EnvTLSKey          = "REGISTRY_TLS_KEY"
)

// Loader builds a Config from defaults, an optional file and the environment
type Loader struct {
	path   string
	lookup func(string) (string, bool)
}

// NewLoader creates a loader. An empty path skips the file layer.
func NewLoader(path string) *Loader {
	return &Loader{path: path, lookup: os.LookupEnv}
}

// WithLookup replaces the environment lookup, mainly for tests
func (l *Loader) WithLookup(lookup func(string) (string, bool)) *Loader {
	if lookup != nil {
		l.lookup = lookup
	}
	return l
}

// Load merges every layer and validates the result
func (l *Loader) Load() (*Config, error) {
	cfg := Default()

	if l.path != "" {
		data, err := safeReadFile(l.path)
		if err != nil {
			return nil, errors.WrapFatal(err, "Loader", "Load", "config file read")
		}
		if err := decodeYAML(data, cfg); err != nil {
			return nil, errors.WrapInvalid(
				fmt.Errorf("%w: %s: %v", errors.ErrInvalidConfig, l.path, err),
				"Loader", "Load", "config file decode")
		}
	}

	if err := l.applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeYAML overlays the document on cfg; unknown keys are rejected and an empty
// document leaves cfg unchanged.
func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func (l *Loader) applyEnvOverrides(cfg *Config) error {
	var firstErr error
	get := func(key string) (string, bool) {
		value, ok := l.lookup(key)
		if !ok {
			return "", false
		}
		if err := validateEnvVar(key, value); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return "", false
		}
		return value, true
	}
	fail := func(key, value string, err error) {
		if firstErr == nil {
			firstErr = fmt.Errorf("%s=%q: %w", key, value, err)
		}
	}

	// Presence, not emptiness, decides: CSV_URL="" means "no source".
	if v, ok := get(EnvSourceURL); ok {
		cfg.Source.URL = strings.TrimSpace(v)
	}
	if v, ok := get(EnvPassword); ok {
		cfg.Auth.Password = v
	}
	if v, ok := get(EnvAddr); ok && v != "" {
		cfg.Server.Addr = v
	}
	if v, ok := get(EnvTLSCert); ok && v != "" {
		cfg.Server.TLS.CertFile = v
		cfg.Server.TLS.Enabled = true
	}
	if v, ok := get(EnvTLSKey); ok && v != "" {
		cfg.Server.TLS.KeyFile = v
		cfg.Server.TLS.Enabled = true
	}
	if v, ok := get(EnvLogLevel); ok && v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v, ok := get(EnvLogFormat); ok && v != "" {
		cfg.Log.Format = strings.ToLower(v)
	}

	durations := []struct {
		key    string
		target *time.Duration
	}{
		{EnvCacheTTL, &cfg.Source.TTL},
		{EnvFetchTimeout, &cfg.Source.Timeout},
		{EnvWaitTimeout, &cfg.Source.WaitTimeout},
		{EnvRefreshInterval, &cfg.Source.RefreshInterval},
		{EnvSessionTTL, &cfg.Auth.SessionTTL},
	}
	for _, d := range durations {
		if v, ok := get(d.key); ok && v != "" {
			parsed, err := parseDuration(v)
			if err != nil {
				fail(d.key, v, err)
				continue
			}
			*d.target = parsed
		}
	}

	if v, ok := get(EnvSecureCookie); ok && v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			fail(EnvSecureCookie, v, err)
		} else {
			cfg.Auth.SecureCookie = parsed
		}
	}

	if firstErr != nil {
		return errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrInvalidConfig, firstErr),
			"Loader", "Load", "environment override")
	}
	return nil
}

// parseDuration accepts Go durations ("5m") and bare seconds ("300").
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}
