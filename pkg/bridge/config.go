// Copyright 2024-2026 Aiku AI

package bridge

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// RoomConfig is one entry of the top-level rooms list.
type RoomConfig struct {
	RoomID   string `yaml:"room_id"`
	Nickname string `yaml:"nickname"`
	Secret   string `yaml:"secret"`
}

// EndpointConfig is one entry of a bridge's endpoint list. Exactly one of
// the three fields must be present; RelayAllDirect is a pointer so that an
// explicit `relay_all_direct: false` still counts as a discriminant.
type EndpointConfig struct {
	Room           string `yaml:"room"`
	Direct         string `yaml:"direct"`
	RelayAllDirect *bool  `yaml:"relay_all_direct"`
}

// InboundWebhookConfig is one entry of a bridge's inbound_webhooks list.
type InboundWebhookConfig struct {
	Token      string   `yaml:"token"`
	IgnoreUser []string `yaml:"ignore_user"`
}

// OutboundWebhookConfig is one entry of a bridge's outbound_webhooks list.
type OutboundWebhookConfig struct {
	URL                     string   `yaml:"url"`
	MessageTemplate         string   `yaml:"message_template"`
	UsernameTemplate        string   `yaml:"username_template"`
	ChannelOverride         string   `yaml:"channel_override"`
	AvatarTemplate          string   `yaml:"avatar_template"`
	UseAttachmentFormatting bool     `yaml:"use_attachment_formatting"`
	AttachmentLink          string   `yaml:"attachment_link"`
	CAFile                  string   `yaml:"cafile"`
	Timeout                 Duration `yaml:"timeout"`
}

// BridgeConfig is one entry of the top-level bridges list.
type BridgeConfig struct {
	Endpoints        []EndpointConfig        `yaml:"endpoints"`
	InboundWebhooks  []InboundWebhookConfig  `yaml:"inbound_webhooks"`
	OutboundWebhooks []OutboundWebhookConfig `yaml:"outbound_webhooks"`
}

// Duration decodes YAML duration strings such as "10s" or "1m30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	v, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", node.Value, err)
	}
	d.Duration = v
	return nil
}
