// Copyright 2024-2026 Aiku AI

// Package daemon wires the routing core to its collaborators: the XMPP
// client feeding chat events in, and the webhook listener feeding HTTP
// calls in. It also owns the ordered shutdown sequence.
package daemon

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aiku/xmppwb/pkg/bridge"
	"github.com/aiku/xmppwb/pkg/listener"
	"github.com/aiku/xmppwb/pkg/xmpp"
)

// shutdownGrace bounds draining of in-flight HTTP handlers at shutdown.
const shutdownGrace = 5 * time.Second

// chatClient is the chat-protocol collaborator as the daemon drives it.
type chatClient interface {
	bridge.ChatSender
	Connect() error
	Run(ctx context.Context, handler xmpp.Handler) error
	Close() error
}

// webhookServer is the inbound listener as the daemon drives it.
type webhookServer interface {
	Start(addr string) error
	Shutdown(ctx context.Context) error
}

// routingCore is the registry surface the daemon drives.
type routingCore interface {
	DispatchInboundChat(ctx context.Context, sender bridge.ChatSender, msg bridge.ChatMessage)
	NeedsInboundListener() bool
	Close()
}

var (
	_ chatClient    = (*xmpp.Client)(nil)
	_ webhookServer = (*listener.Server)(nil)
	_ routingCore   = (*bridge.Registry)(nil)
)

// Daemon is the assembled bridge process.
type Daemon struct {
	cfg      *Config
	log      zerolog.Logger
	registry routingCore
	chat     chatClient
	server   webhookServer
}

// New builds the bridge registry (fail-fast on configuration errors) and
// the collaborators around it. Inbound webhook routes without a configured
// listener are warned about and ignored, matching the config's declared
// intent as closely as possible without one.
func New(cfg *Config, log zerolog.Logger) (*Daemon, error) {
	registry, err := bridge.NewRegistry(cfg.Rooms, cfg.Bridges, log.With().Str("component", "registry").Logger())
	if err != nil {
		return nil, err
	}

	chat := xmpp.New(cfg.XMPP, registry.Rooms, log.With().Str("component", "xmpp").Logger())

	d := &Daemon{cfg: cfg, log: log, registry: registry, chat: chat}
	if !registry.NeedsInboundListener() {
		log.Info().Msg("No incoming webhooks defined")
	} else if cfg.Listener == nil {
		log.Warn().Msg("Incoming webhooks are defined but no 'incoming_webhook_listener' is configured, ignoring all incoming webhooks")
	} else {
		d.server = listener.New(registry, chat, log.With().Str("component", "listener").Logger())
	}
	return d, nil
}

// Run connects the chat session, starts the webhook listener when one is
// configured, and blocks until ctx is canceled or a collaborator fails. The
// shutdown sequence always runs before returning.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.chat.Connect(); err != nil {
		d.registry.Close()
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- d.chat.Run(runCtx, func(ctx context.Context, msg bridge.ChatMessage) {
			d.registry.DispatchInboundChat(ctx, d.chat, msg)
		})
	}()
	if d.server != nil {
		go func() {
			errCh <- d.server.Start(d.cfg.Listener.Addr())
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	d.shutdown()
	return runErr
}

// shutdown tears the daemon down in order: stop accepting new HTTP
// connections and drain in-flight handlers, release every outbound route's
// transport, then disconnect the chat session. No step is skipped when an
// earlier one errors.
func (d *Daemon) shutdown() {
	if d.server != nil {
		drainCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		if err := d.server.Shutdown(drainCtx); err != nil {
			d.log.Error().Err(err).Msg("Webhook listener shutdown failed")
		}
		cancel()
	}
	d.registry.Close()
	if err := d.chat.Close(); err != nil {
		d.log.Error().Err(err).Msg("XMPP disconnect failed")
	}
	d.log.Info().Msg("Shutdown complete")
}
