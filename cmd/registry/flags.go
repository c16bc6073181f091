package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
)

// CLIConfig holds command-line configuration. Empty values leave the
// corresponding config file or environment setting in place.
type CLIConfig struct {
	ConfigPath  string
	LogLevel    string
	LogFormat   string
	Addr        string
	Debug       bool
	ShowVersion bool
	ShowHelp    bool
	Validate    bool
}

func parseFlags() *CLIConfig {
	return parseFlagSet(flag.CommandLine, os.Args[1:])
}

func parseFlagSet(fs *flag.FlagSet, args []string) *CLIConfig {
	cfg := &CLIConfig{}

	fs.StringVar(&cfg.ConfigPath, "config",
		getEnv("REGISTRY_CONFIG", ""),
		"Path to YAML configuration file (env: REGISTRY_CONFIG)")

	fs.StringVar(&cfg.ConfigPath, "c",
		getEnv("REGISTRY_CONFIG", ""),
		"Path to YAML configuration file (env: REGISTRY_CONFIG)")

	fs.StringVar(&cfg.LogLevel, "log-level", "",
		"Log level: debug, info, warn, error (env: REGISTRY_LOG_LEVEL)")

	fs.StringVar(&cfg.LogFormat, "log-format", "",
		"Log format: json, text (env: REGISTRY_LOG_FORMAT)")

	fs.StringVar(&cfg.Addr, "addr", "",
		"HTTP listen address (env: REGISTRY_ADDR)")

	fs.BoolVar(&cfg.Debug, "debug",
		getEnvBool("REGISTRY_DEBUG", false),
		"Enable debug logging (env: REGISTRY_DEBUG)")

	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	fs.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	fs.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")
	fs.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	fs.Usage = func() {
		printDetailedHelp()
	}

	_ = fs.Parse(args)

	if cfg.Debug {
		cfg.LogLevel = "debug"
	}

	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); err != nil {
			return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
		}
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if cfg.LogLevel != "" && !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	validFormats := []string{"json", "text"}
	if cfg.LogFormat != "" && !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	return nil
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - construction registry viewer

Usage: %s [options]

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Environment:
  CSV_URL                    Registry CSV export URL
  APP_PASSWORD               Access password
  REGISTRY_CACHE_TTL         Dataset cache lifetime (e.g. 300s)
  REGISTRY_REFRESH_INTERVAL  Background reload interval, 0 disables

Examples:
  # Run with a config file
  %s --config=/etc/registry/config.yaml

  # Run from the environment only
  export CSV_URL=https://example.org/export.csv
  export APP_PASSWORD=secret
  %s

  # Validate configuration only
  %s --validate

Version: %s
Build: %s
`, os.Args[0], os.Args[0], os.Args[0], Version, BuildTime)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
