// Package config handles loading and parsing of configuration from YAML files
// and environment variables. It defines the application configuration
// structure: server settings, the remote feed mirrors and their selection
// strategy, the circuit tracker policy, fallback thresholds, notification
// delivery and health check intervals.
package config
