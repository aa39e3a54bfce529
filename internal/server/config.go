package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/cardroomhq/cardroom/internal/game"
)

// ServerConfig is the complete server configuration.
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Tables []TableConfig  `hcl:"table,block"`
}

// ServerSettings contains server-level configuration.
type ServerSettings struct {
	Address              string `hcl:"address,optional"`
	Port                 int    `hcl:"port,optional"`
	LogLevel             string `hcl:"log_level,optional"`
	ActionTimeoutSeconds int    `hcl:"action_timeout_seconds,optional"`
}

// TableConfig defines a table created at startup.
type TableConfig struct {
	Name       string `hcl:"name,label"`
	SmallBlind int    `hcl:"small_blind"`
	BigBlind   int    `hcl:"big_blind"`
	BuyIn      int    `hcl:"buy_in,optional"`
	MaxPlayers int    `hcl:"max_players,optional"`
}

// DefaultServerConfig returns the configuration used when no file exists.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:              "localhost",
			Port:                 8080,
			LogLevel:             "info",
			ActionTimeoutSeconds: int(DefaultActionTimeout / time.Second),
		},
		Tables: []TableConfig{
			{
				Name:       "main",
				SmallBlind: 5,
				BigBlind:   10,
				BuyIn:      1000,
				MaxPlayers: 6,
			},
		},
	}
}

// LoadServerConfig loads configuration from an HCL file, falling back to
// defaults when the file does not exist.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if config.Server.Address == "" {
		config.Server.Address = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}
	if config.Server.ActionTimeoutSeconds == 0 {
		config.Server.ActionTimeoutSeconds = int(DefaultActionTimeout / time.Second)
	}

	for i := range config.Tables {
		if config.Tables[i].MaxPlayers == 0 {
			config.Tables[i].MaxPlayers = 6
		}
		if config.Tables[i].BuyIn == 0 {
			// 100 big blinds by default
			config.Tables[i].BuyIn = config.Tables[i].BigBlind * 100
		}
	}

	return &config, nil
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.ActionTimeoutSeconds < 0 {
		return fmt.Errorf("invalid action timeout: %d", c.Server.ActionTimeoutSeconds)
	}

	for _, table := range c.Tables {
		if err := table.Settings().Validate(); err != nil {
			return fmt.Errorf("table %s: %w", table.Name, err)
		}
	}
	return nil
}

// Address returns the host:port the server listens on.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// ActionTimeout returns the per-turn timeout as a duration.
func (c *ServerConfig) ActionTimeout() time.Duration {
	return time.Duration(c.Server.ActionTimeoutSeconds) * time.Second
}

// Settings converts the table block into engine settings.
func (tc TableConfig) Settings() game.Settings {
	return game.Settings{
		SmallBlind: tc.SmallBlind,
		BigBlind:   tc.BigBlind,
		BuyIn:      tc.BuyIn,
		MaxPlayers: tc.MaxPlayers,
	}
}
