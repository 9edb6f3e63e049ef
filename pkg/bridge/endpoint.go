// Copyright 2024-2026 Aiku AI

package bridge

// EndpointKind discriminates the closed set of chat endpoint variants.
type EndpointKind int

const (
	// EndpointRoom targets a registered multi-user room.
	EndpointRoom EndpointKind = iota
	// EndpointDirect targets a single peer's one-to-one chat.
	EndpointDirect
	// EndpointRelayAllDirect is the wildcard: capture every direct message
	// into the bridge's webhook feed, without peer-to-peer relay.
	EndpointRelayAllDirect
)

// Endpoint is one chat endpoint of a bridge. Target is empty for the
// relay-all-direct wildcard.
type Endpoint struct {
	Kind   EndpointKind
	Target string
}

// parseEndpoint validates one endpoint entry. Exactly one discriminant must
// be present, and a room endpoint must reference a registered room.
func parseEndpoint(cfg EndpointConfig, rooms *RoomRegistry) (Endpoint, error) {
	set := 0
	if cfg.Room != "" {
		set++
	}
	if cfg.Direct != "" {
		set++
	}
	if cfg.RelayAllDirect != nil {
		set++
	}
	if set != 1 {
		return Endpoint{}, invalidConfigf("endpoint entry must have exactly one of 'room', 'direct' or 'relay_all_direct'")
	}
	switch {
	case cfg.Room != "":
		if !rooms.Contains(cfg.Room) {
			return Endpoint{}, invalidConfigf("room %q was not defined in the rooms section", cfg.Room)
		}
		return Endpoint{Kind: EndpointRoom, Target: cfg.Room}, nil
	case cfg.Direct != "":
		return Endpoint{Kind: EndpointDirect, Target: cfg.Direct}, nil
	default:
		return Endpoint{Kind: EndpointRelayAllDirect}, nil
	}
}
