// Copyright 2024-2026 Aiku AI

package daemon

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aiku/xmppwb/pkg/bridge"
	"github.com/aiku/xmppwb/pkg/listener"
	"github.com/aiku/xmppwb/pkg/xmpp"
)

// Config is the full decoded configuration file. The routing core only ever
// sees the decoded structure, never the file.
type Config struct {
	XMPP     xmpp.Config           `yaml:"xmpp"`
	Rooms    []bridge.RoomConfig   `yaml:"rooms"`
	Listener *listener.Config      `yaml:"incoming_webhook_listener"`
	Bridges  []bridge.BridgeConfig `yaml:"bridges"`
}

// LoadConfig reads and decodes the YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.XMPP.JID == "" || cfg.XMPP.Password == "" {
		return nil, &bridge.InvalidConfigError{Reason: "xmpp section must have 'jid' and 'password'"}
	}
	return &cfg, nil
}
