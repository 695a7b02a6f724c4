package server

import (
	"fmt"
	"os"
	"slices"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/rummycircle/internal/cards"
)

// Config represents the complete server configuration
type Config struct {
	Server ServerSettings
	Game   GameSettings
}

// ServerSettings contains listener and logging configuration
type ServerSettings struct {
	Address        string   `hcl:"address,optional"`
	Port           int      `hcl:"port,optional"`
	LogLevel       string   `hcl:"log_level,optional"`
	AllowedOrigins []string `hcl:"allowed_origins,optional"`
}

// GameSettings contains the rules applied to every session
type GameSettings struct {
	HandSize   int   `hcl:"hand_size,optional"`
	Seed       int64 `hcl:"seed,optional"`
	StrictSets bool  `hcl:"strict_sets,optional"`
}

// both blocks are optional in the file
type fileConfig struct {
	Server *ServerSettings `hcl:"server,block"`
	Game   *GameSettings   `hcl:"game,block"`
}

var validLogLevels = []string{"debug", "info", "warn", "error"}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Game: GameSettings{
			HandSize: 13,
		},
	}
}

// LoadConfig loads configuration from an HCL file. A missing file yields
// the defaults.
func LoadConfig(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(src, filename)
}

// ParseConfig decodes HCL source and fills in defaults for missing values
func ParseConfig(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw fileConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg := DefaultConfig()
	defaults := *cfg
	if raw.Server != nil {
		cfg.Server = *raw.Server
	}
	if raw.Game != nil {
		cfg.Game = *raw.Game
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = defaults.Server.Address
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaults.Server.Port
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = defaults.Server.LogLevel
	}
	if cfg.Game.HandSize == 0 {
		cfg.Game.HandSize = defaults.Game.HandSize
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if !slices.Contains(validLogLevels, c.Server.LogLevel) {
		return fmt.Errorf("invalid log level: %s", c.Server.LogLevel)
	}
	if c.Game.HandSize < 1 || c.Game.HandSize > cards.DeckSize {
		return fmt.Errorf("hand size must be between 1 and %d, got %d", cards.DeckSize, c.Game.HandSize)
	}
	return nil
}

// ListenAddress returns the host:port the server binds to
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
