// Package config reads runtime settings from the environment.
package config

import "github.com/spf13/viper"

const defaultPort = 3847

// Config holds everything the server needs at startup. All of it comes
// from environment variables; there is no config file.
type Config struct {
	// Port is taken from LOCOHOST_PORT, then PORT, then the default.
	Port int
	// LogLevel comes from LOCOHOST_LOG_LEVEL (debug/info/warn/error/none).
	LogLevel string
	// TrackerDB overrides the tracker database path (LOCOHOST_TRACKER_DB).
	// Empty means the platform-convention default.
	TrackerDB string
}

// Load builds the configuration from the environment. It never fails:
// unset or unparseable values fall back to defaults.
func Load() Config {
	v := viper.New()
	v.SetDefault("port", defaultPort)
	v.SetDefault("log_level", "info")
	_ = v.BindEnv("port", "LOCOHOST_PORT", "PORT")
	_ = v.BindEnv("log_level", "LOCOHOST_LOG_LEVEL")
	_ = v.BindEnv("tracker_db", "LOCOHOST_TRACKER_DB")

	port := v.GetInt("port")
	if port <= 0 || port > 65535 {
		port = defaultPort
	}

	return Config{
		Port:      port,
		LogLevel:  v.GetString("log_level"),
		TrackerDB: v.GetString("tracker_db"),
	}
}
