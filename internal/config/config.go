package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds all configuration for the application
type Config struct {
	// File paths
	DBPath  string
	DataDir string

	// Server settings
	ServerHost string
	ServerPort int
	APIKey     string

	// Pipeline settings
	Subreddits     []string
	SortModes      []string
	Interval       time.Duration
	MinRunInterval time.Duration
	Force          bool

	// Log settings
	LogLevel zerolog.Level
}

// DefaultConfig returns an initial configuration with hardcoded defaults.
func DefaultConfig() *Config {
	logLevel, _ := zerolog.ParseLevel(DefaultLogLevel)

	return &Config{
		DBPath:         DefaultDBPath,
		DataDir:        DefaultDataDir,
		ServerHost:     DefaultServerHost,
		ServerPort:     DefaultServerPort,
		APIKey:         GetEnvString("LEADWATCH_API_KEY", ""),
		Subreddits:     SplitList(DefaultSubreddits),
		SortModes:      SplitList(DefaultSortModes),
		Interval:       time.Duration(DefaultInterval) * time.Minute,
		MinRunInterval: time.Duration(DefaultMinRunInterval) * time.Minute,
		LogLevel:       logLevel,
	}
}

// ListenAddr returns the formatted listen address for the HTTP server.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// SplitList parses a comma-separated flag value into trimmed, non-empty parts.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
