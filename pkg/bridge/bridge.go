// Copyright 2024-2026 Aiku AI

package bridge

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/aiku/xmppwb/pkg/bridge/webhookfmt"
)

// Bridge is one routing unit: a set of chat endpoints bound to a set of
// inbound and outbound webhook routes. Messages arriving on any endpoint
// are relayed to the bridge's other endpoints and forwarded to its outbound
// webhooks; inbound webhook calls matching one of its tokens are broadcast
// to all endpoints. Immutable after construction.
type Bridge struct {
	rooms *RoomRegistry

	roomEndpoints   []string
	roomSet         map[string]struct{}
	directEndpoints []string
	directSet       map[string]struct{}
	relayAllDirect  bool

	inbound  []InboundRoute
	outbound []*OutboundRoute

	log zerolog.Logger
}

// newBridge builds one bridge from its decoded configuration, validating
// endpoints against the already-built room registry. Acquiring the outbound
// routes' transports is the only side effect; on error, transports acquired
// so far are released before returning.
func newBridge(cfg BridgeConfig, rooms *RoomRegistry, log zerolog.Logger) (*Bridge, error) {
	b := &Bridge{
		rooms:     rooms,
		roomSet:   make(map[string]struct{}),
		directSet: make(map[string]struct{}),
		log:       log,
	}

	for _, ec := range cfg.Endpoints {
		ep, err := parseEndpoint(ec, rooms)
		if err != nil {
			return nil, err
		}
		switch ep.Kind {
		case EndpointRoom:
			if _, ok := b.roomSet[ep.Target]; !ok {
				b.roomSet[ep.Target] = struct{}{}
				b.roomEndpoints = append(b.roomEndpoints, ep.Target)
			}
		case EndpointDirect:
			if _, ok := b.directSet[ep.Target]; !ok {
				b.directSet[ep.Target] = struct{}{}
				b.directEndpoints = append(b.directEndpoints, ep.Target)
			}
		case EndpointRelayAllDirect:
			if ec.RelayAllDirect != nil && *ec.RelayAllDirect {
				b.relayAllDirect = true
			}
		}
	}

	for _, ic := range cfg.InboundWebhooks {
		route, err := newInboundRoute(ic)
		if err != nil {
			return nil, err
		}
		b.inbound = append(b.inbound, route)
	}

	for _, oc := range cfg.OutboundWebhooks {
		route, err := newOutboundRoute(oc)
		if err != nil {
			b.closeRoutes()
			return nil, err
		}
		b.outbound = append(b.outbound, route)
	}

	return b, nil
}

// HasInboundRoutes reports whether any inbound webhook route is configured.
func (b *Bridge) HasInboundRoutes() bool {
	return len(b.inbound) > 0
}

// HandleInboundWebhook broadcasts a webhook call to every endpoint of this
// bridge, once per route whose token matches and whose ignore list does not
// contain the calling username. A bridge with no matching route does
// nothing.
func (b *Bridge) HandleInboundWebhook(ctx context.Context, sender ChatSender, token, username, text string) {
	for _, route := range b.inbound {
		if route.Token != token {
			continue
		}
		if route.Ignores(username) {
			b.log.Debug().Str("username", username).Msg("Ignoring webhook call from filtered user")
			continue
		}
		b.broadcast(ctx, sender, username+": "+text, username, "")
	}
}

// HandleInboundChat routes one inbound chat message. Room messages match
// when the room is one of this bridge's endpoints (self-echoes are
// discarded unconditionally); direct messages match when the peer is a
// declared endpoint, or via the relay-all-direct wildcard, which feeds the
// outbound webhooks without peer-to-peer relay. A bridge that does not
// match does nothing.
func (b *Bridge) HandleInboundChat(ctx context.Context, sender ChatSender, msg ChatMessage) {
	var displayName string
	relay := false

	switch msg.Type {
	case MessageGroup:
		if b.rooms.IsSelfEcho(msg.Sender.BareID, msg.Sender.Resource) {
			return
		}
		if _, ok := b.roomSet[msg.Sender.BareID]; !ok {
			return
		}
		displayName = msg.Sender.Resource
		relay = true
	case MessageDirect:
		if _, ok := b.directSet[msg.Sender.BareID]; ok {
			displayName = msg.Sender.LocalPart
			relay = true
		} else if !b.relayAllDirect {
			return
		}
	default:
		return
	}

	if relay {
		b.broadcast(ctx, sender, msg.Body, displayName, msg.Sender.BareID)
	}
	b.forwardToWebhooks(ctx, msg.Sender, msg.Body, msg.Type == MessageGroup)
}

// broadcast delivers body to every endpoint of the bridge except skip.
// Delivery failures are logged per endpoint and do not stop the remaining
// deliveries.
func (b *Bridge) broadcast(ctx context.Context, sender ChatSender, body, displayName, skip string) {
	for _, room := range b.roomEndpoints {
		if room == skip {
			continue
		}
		if err := sender.SendMessage(ctx, room, body, MessageGroup, displayName); err != nil {
			b.log.Error().Err(err).Str("room", room).Msg("Failed to relay to room")
		}
	}
	for _, peer := range b.directEndpoints {
		if peer == skip {
			continue
		}
		if err := sender.SendMessage(ctx, peer, body, MessageDirect, displayName); err != nil {
			b.log.Error().Err(err).Str("peer", peer).Msg("Failed to relay to peer")
		}
	}
}

// forwardToWebhooks fans the message out to every outbound route. Each call
// is independent: a formatting or transport failure on one route is logged
// and never aborts the remaining routes.
func (b *Bridge) forwardToWebhooks(ctx context.Context, from Sender, body string, isGroup bool) {
	identity := from.Identity()
	for _, route := range b.outbound {
		payload, err := webhookfmt.BuildPayload(route.Format, identity, body, isGroup)
		if err != nil {
			b.log.Error().Err(err).Str("url", route.URL).Msg("Failed to build webhook payload")
			continue
		}
		if err := route.Post(ctx, payload); err != nil {
			b.log.Error().Err(err).Str("url", route.URL).Msg("Outbound webhook call failed")
		}
	}
}

// closeRoutes releases every acquired outbound transport.
func (b *Bridge) closeRoutes() {
	for _, route := range b.outbound {
		route.Close()
	}
}
