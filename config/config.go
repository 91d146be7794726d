// Package config loads operator-tunable conversion settings from a
// `.env` file plus environment variables, using the common
// `godotenv.Load` pattern of picking up local overrides before falling
// back to os.Getenv.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the settings that can tune a conversion or validation
// run without a command-line flag.
type Config struct {
	// ValidatorCommand is the external ERB-parsing binary invocation,
	// e.g. ["ruby", "-e", "ERB.new(STDIN.read)"]. Empty disables the
	// external validation layer.
	ValidatorCommand []string

	// Color controls whether diagnostics are colorized when mirrored to
	// stderr.
	Color bool
}

// Load reads `.env` from the current directory if present, silently
// ignoring its absence since the file is an optional local convenience,
// then resolves settings from the environment.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{Color: true}

	if raw := os.Getenv("HAML2ERB_VALIDATOR_COMMAND"); raw != "" {
		cfg.ValidatorCommand = strings.Fields(raw)
	}
	if raw := os.Getenv("HAML2ERB_COLOR"); raw != "" {
		cfg.Color = raw != "0" && strings.ToLower(raw) != "false"
	}

	return cfg
}
