// Copyright 2024-2026 Aiku AI

package bridge

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Registry holds the shared room registry and the ordered bridge list. It
// is the entry point for both dispatch directions. Immutable after
// NewRegistry returns; dispatch never takes locks.
type Registry struct {
	Rooms *RoomRegistry

	bridges   []*Bridge
	log       zerolog.Logger
	closeOnce sync.Once
}

// NewRegistry builds the full routing state in two phases: the room
// registry first, then every bridge validated against it. Any error aborts
// construction and releases the transports acquired so far, leaving no
// half-initialized bridge behind.
func NewRegistry(rooms []RoomConfig, bridges []BridgeConfig, log zerolog.Logger) (*Registry, error) {
	reg := &Registry{Rooms: NewRoomRegistry(), log: log}

	for _, rc := range rooms {
		if rc.RoomID == "" || rc.Nickname == "" {
			return nil, invalidConfigf("room entry must have 'room_id' and 'nickname'")
		}
		if err := reg.Rooms.Register(rc.RoomID, rc.Nickname, rc.Secret); err != nil {
			return nil, invalidConfigf("room %q: %v", rc.RoomID, err)
		}
	}

	for i, bc := range bridges {
		b, err := newBridge(bc, reg.Rooms, log.With().Int("bridge", i).Logger())
		if err != nil {
			reg.Close()
			return nil, fmt.Errorf("bridge %d: %w", i, err)
		}
		reg.bridges = append(reg.bridges, b)
	}

	return reg, nil
}

// DispatchInboundWebhook offers the webhook call to every bridge. There is
// no short-circuit: bridges sharing a token each broadcast to their own
// endpoint set.
func (r *Registry) DispatchInboundWebhook(ctx context.Context, sender ChatSender, token, username, text string) {
	for _, b := range r.bridges {
		b.HandleInboundWebhook(ctx, sender, token, username, text)
	}
}

// DispatchInboundChat offers the chat message to every bridge.
func (r *Registry) DispatchInboundChat(ctx context.Context, sender ChatSender, msg ChatMessage) {
	for _, b := range r.bridges {
		b.HandleInboundChat(ctx, sender, msg)
	}
}

// NeedsInboundListener reports whether any bridge declares an inbound
// webhook route.
func (r *Registry) NeedsInboundListener() bool {
	for _, b := range r.bridges {
		if b.HasInboundRoutes() {
			return true
		}
	}
	return false
}

// BridgeCount returns the number of configured bridges.
func (r *Registry) BridgeCount() int {
	return len(r.bridges)
}

// Close releases every outbound route's transport. Each transport is
// released exactly once regardless of how often Close is called or how far
// construction got before failing.
func (r *Registry) Close() {
	r.closeOnce.Do(func() {
		for _, b := range r.bridges {
			b.closeRoutes()
		}
	})
}
