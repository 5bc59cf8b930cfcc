package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds all configuration for the varp server/CLI.
// Precedence: environment variables > config file > defaults.
type Config struct {
	Workspace WorkspaceConfig `toml:"workspace"`
	Server    ServerConfig    `toml:"server"`
	Transport TransportConfig `toml:"transport"`
	Log       LogConfig       `toml:"log"`
	Freshness FreshnessConfig `toml:"freshness"`
}

// WorkspaceConfig locates the component manifest this invocation operates
// against.
type WorkspaceConfig struct {
	ManifestPath string `toml:"manifest_path"`
}

// ServerConfig holds MCP server metadata.
type ServerConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// TransportConfig holds transport-related settings.
type TransportConfig struct {
	// Mode selects the transport: "stdio" (default) or "http".
	Mode string `toml:"mode"`
	// Port is the HTTP listen port (default: 21452). Only used when Mode is "http".
	Port string `toml:"port"`
	// Host is the HTTP listen address (default: "0.0.0.0"). Only used when Mode is "http".
	Host string `toml:"host"`
	// CORSOrigins is a comma-separated list of allowed CORS origins (default: "*").
	CORSOrigins string `toml:"cors_origins"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// FreshnessConfig tunes the doc-staleness comparison (spec.md §4.9/§9).
type FreshnessConfig struct {
	ToleranceSeconds int `toml:"tolerance_seconds"`
}

// Load creates a Config by reading from a TOML config file and environment
// variables. Precedence: environment variables > config file > defaults.
//
// Config file search order (first found wins):
//  1. Path passed via configPath parameter (from --config flag)
//  2. VARP_CONFIG environment variable
//  3. ./varp.toml (current directory)
//  4. ~/.config/varp/varp.toml (XDG-style)
//
// All fields are optional in the config file. Environment variables always
// override file values.
func Load(configPath string) (*Config, error) {
	cfg := &Config{
		Workspace: WorkspaceConfig{
			ManifestPath: "./component-manifest.yaml",
		},
		Server: ServerConfig{
			Name:    "varp",
			Version: "0.1.0",
		},
		Transport: TransportConfig{
			Mode:        "stdio",
			Port:        "21452",
			Host:        "0.0.0.0",
			CORSOrigins: "*",
		},
		Log: LogConfig{
			Level: "info",
		},
		Freshness: FreshnessConfig{
			ToleranceSeconds: 5,
		},
	}

	if err := cfg.loadFile(configPath); err != nil {
		return nil, err
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile finds and parses the TOML config file. If no file is found,
// this is a no-op (config file is optional).
func (c *Config) loadFile(configPath string) error {
	path := resolveConfigPath(configPath)
	if path == "" {
		return nil // no config file found; rely on defaults + env
	}

	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	return nil
}

// resolveConfigPath determines which config file to use. Returns empty string
// if no config file is found (config file is optional).
func resolveConfigPath(explicit string) string {
	// 1. Explicit path from --config flag
	if explicit != "" {
		return explicit // caller wants this file; let DecodeFile report if missing
	}

	// 2. VARP_CONFIG env var
	if p := os.Getenv("VARP_CONFIG"); p != "" {
		return p
	}

	// 3. ./varp.toml in current directory
	if _, err := os.Stat("varp.toml"); err == nil {
		return "varp.toml"
	}

	// 4. ~/.config/varp/varp.toml
	if home, err := os.UserHomeDir(); err == nil {
		p := home + "/.config/varp/varp.toml"
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// applyEnv overlays environment variables on top of existing config values.
// An env var only takes effect if it is non-empty.
func (c *Config) applyEnv() {
	envOverride("VARP_MANIFEST_PATH", &c.Workspace.ManifestPath)

	envOverride("VARP_TRANSPORT", &c.Transport.Mode)
	envOverride("VARP_PORT", &c.Transport.Port)
	envOverride("VARP_HOST", &c.Transport.Host)
	envOverride("VARP_CORS_ORIGINS", &c.Transport.CORSOrigins)

	envOverride("VARP_LOG_LEVEL", &c.Log.Level)

	if v := os.Getenv("VARP_FRESHNESS_TOLERANCE_SECONDS"); v != "" {
		var seconds int
		if _, err := fmt.Sscanf(v, "%d", &seconds); err == nil && seconds >= 0 {
			c.Freshness.ToleranceSeconds = seconds
		}
	}
}

// Validate checks that required fields are present.
func (c *Config) Validate() error {
	switch c.Transport.Mode {
	case "stdio", "http":
		// both modes are otherwise unconstrained; verification happens
		// per-operation against the resolved manifest path.
	default:
		return fmt.Errorf("invalid transport mode: %q (must be \"stdio\" or \"http\")", c.Transport.Mode)
	}

	if c.Workspace.ManifestPath == "" {
		return fmt.Errorf("workspace.manifest_path must not be empty")
	}

	if c.Freshness.ToleranceSeconds < 0 {
		return fmt.Errorf("freshness.tolerance_seconds must not be negative")
	}

	return nil
}

// envOverride sets *dst to the value of the named env var, if it is non-empty.
func envOverride(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
