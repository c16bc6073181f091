// Package config loads the registry viewer configuration.
//
// # Layers
//
// Load merges three layers in increasing order of precedence:
//
//  1. the defaults from Default
//  2. an optional YAML file
//  3. environment variables
//
// CSV_URL and APP_PASSWORD carry the data source and the shared password; the
// remaining variables are prefixed with REGISTRY_. An environment variable that is set
// but empty clears the value, which is how a deployment disables the data source.
//
// # Example
//
//	server:
//	  addr: ":8080"
//	  write_timeout: 30s
//	source:
//	  url: "https://docs.example/export?format=csv"
//	  ttl: 300s
//	  timeout: 30s
//	  wait_timeout: 20s
//	auth:
//	  session_ttl: 12h
//	log:
//	  level: info
//	  format: json
//
// # Validation
//
// Validate rejects non-positive durations, unknown log levels and formats, and
// incomplete TLS settings. source.wait_timeout must stay below server.write_timeout so
// that a page waiting on a slow source is still written before the connection deadline.
// An empty password is valid: the viewer starts and refuses every login.
//
// String redacts the password and the data source URL.
package config
