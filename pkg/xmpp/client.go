// Copyright 2024-2026 Aiku AI

// Package xmpp is the chat-protocol collaborator: it owns the XMPP session,
// joins the registered rooms, and translates stanzas to and from the
// routing core's message shapes. Reconnection policy is deliberately not
// handled here; a connection failure surfaces as an error from Run.
package xmpp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	goxmpp "github.com/xmppo/go-xmpp"

	"github.com/aiku/xmppwb/pkg/bridge"
)

// pingInterval is how often the client pings the server to keep the
// session alive.
const pingInterval = 30 * time.Second

// Config holds the chat account settings.
type Config struct {
	JID      string `yaml:"jid"`
	Password string `yaml:"password"`
	// Server is the host:port to dial. Empty means DNS SRV resolution from
	// the JID domain.
	Server string `yaml:"server"`
	// NoTLS dials a plain connection and upgrades via STARTTLS instead of
	// using direct TLS.
	NoTLS bool `yaml:"no_tls"`
	Debug bool `yaml:"debug"`
}

// Handler consumes inbound chat messages translated from the wire.
type Handler func(ctx context.Context, msg bridge.ChatMessage)

// Client is an adapter over go-xmpp implementing the routing core's
// ChatSender interface.
type Client struct {
	cfg   Config
	rooms *bridge.RoomRegistry
	log   zerolog.Logger

	mu   sync.Mutex
	conn *goxmpp.Client
}

var _ bridge.ChatSender = (*Client)(nil)

// New creates a client. It does not connect.
func New(cfg Config, rooms *bridge.RoomRegistry, log zerolog.Logger) *Client {
	return &Client{cfg: cfg, rooms: rooms, log: log}
}

// Connect dials the server, authenticates, and joins every registered room
// under its configured nickname without requesting history replay. Join
// failures are logged per room and do not abort the session.
func (c *Client) Connect() error {
	opts := goxmpp.Options{
		Host:     c.cfg.Server,
		User:     c.cfg.JID,
		Password: c.cfg.Password,
		NoTLS:    c.cfg.NoTLS,
		StartTLS: c.cfg.NoTLS,
		Debug:    c.cfg.Debug,
		Session:  true,
	}
	conn, err := opts.NewClient()
	if err != nil {
		return fmt.Errorf("failed to connect to XMPP: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	for _, room := range c.rooms.Entries() {
		if room.Secret != "" {
			_, err = conn.JoinProtectedMUC(room.RoomID, room.Nickname, room.Secret, goxmpp.NoHistory, 0, nil)
		} else {
			_, err = conn.JoinMUCNoHistory(room.RoomID, room.Nickname)
		}
		if err != nil {
			c.log.Error().Err(err).Str("room", room.RoomID).Msg("Failed to join room")
			continue
		}
		c.log.Debug().Str("room", room.RoomID).Str("nickname", room.Nickname).Msg("Joined room")
	}

	c.log.Info().Str("jid", c.cfg.JID).Msg("Connected to XMPP")
	return nil
}

// Run receives stanzas until ctx is canceled or the connection fails,
// translating chat messages for the handler. Presence, IQ and other stanza
// kinds are ignored here.
func (c *Client) Run(ctx context.Context, handler Handler) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return errors.New("xmpp: not connected")
	}

	go c.keepAlive(ctx)

	for {
		stanza, err := conn.Recv()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("xmpp receive: %w", err)
		}
		chat, ok := stanza.(goxmpp.Chat)
		if !ok || chat.Text == "" {
			continue
		}
		handler(ctx, bridge.ChatMessage{
			Sender: ParseSender(chat.Remote),
			Type:   messageType(chat.Type),
			Body:   chat.Text,
		})
	}
}

// messageType maps a stanza type to the routing core's classification.
func messageType(stanzaType string) bridge.MessageType {
	switch stanzaType {
	case "groupchat":
		return bridge.MessageGroup
	case "chat", "normal":
		return bridge.MessageDirect
	default:
		return bridge.MessageOther
	}
}

// SendMessage implements bridge.ChatSender. The display name is advisory on
// the wire and only logged here.
func (c *Client) SendMessage(_ context.Context, target, body string, msgType bridge.MessageType, displayName string) error {
	stanzaType := "chat"
	if msgType == bridge.MessageGroup {
		stanzaType = "groupchat"
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return errors.New("xmpp: not connected")
	}
	c.log.Debug().Str("to", target).Str("type", stanzaType).Str("as", displayName).Msg("Sending chat message")
	if _, err := c.conn.Send(goxmpp.Chat{Remote: target, Type: stanzaType, Text: body}); err != nil {
		return fmt.Errorf("failed to send %s message to %s: %w", stanzaType, target, err)
	}
	return nil
}

// keepAlive pings the server until ctx is canceled.
func (c *Client) keepAlive(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			conn := c.conn
			c.mu.Unlock()
			if conn == nil {
				return
			}
			if err := conn.PingC2S("", ""); err != nil {
				c.log.Warn().Err(err).Msg("Keep-alive ping failed")
			}
		}
	}
}

// Close disconnects the session. Safe to call when never connected.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
