// Package config defines process configuration and loading.
//
// Conventions:
// - New() builds a Config with defaults; Load layers file and env on top.
// - External errors are wrapped via this package's sentinel kinds.
package config

// Config contains ambient process configuration. Per-run parameters
// (directory, mode, power, pool size) come from command-line flags instead.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DBName is the SQLite database filename kept inside the target
	// directory.
	DBName string `koanf:"db_name"`

	// LeaderboardSize is the default length of the `top` listing.
	LeaderboardSize int `koanf:"leaderboard_size"`

	// MetricsAddr exposes Prometheus metrics when non-empty, e.g.
	// "localhost:9090". Empty disables the endpoint.
	MetricsAddr string `koanf:"metrics_addr"`

	// Color toggles ANSI styling in the judge UI.
	Color bool `koanf:"color"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		DBName:          "duelo.db",
		LeaderboardSize: 10,
		Color:           true,
	}
}
