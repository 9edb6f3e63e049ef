// Copyright 2024-2026 Aiku AI

// Package bridge implements the routing core of xmppwb: a static,
// config-declared topology connecting chat endpoints (rooms, direct peers,
// or a relay-all-direct wildcard) to inbound and outbound webhook routes.
//
// # Core Types
//
// [Registry] is the entry point for both dispatch directions. It owns the
// shared [RoomRegistry] and the ordered list of bridges, built once from
// configuration and immutable afterward.
//
// [Bridge] owns the matching and fan-out algorithm: deciding whether an
// inbound event belongs to it, which sibling endpoints must receive the
// relay, and which outbound webhooks to trigger.
//
// [OutboundRoute] holds the long-lived HTTP client for one webhook URL,
// acquired during construction and released exactly once at shutdown.
//
// # Echo Prevention
//
// Room messages whose sender resource equals the local nickname registered
// for that room are the bridge's own messages echoed back by the room
// protocol. They are discarded before any matching happens, regardless of
// which bridge owns the room. Intra-bridge relay additionally skips the
// originating endpoint so a message never bounces back to its source.
//
// # Sub-packages
//
//   - webhookfmt assembles outbound webhook payloads and substitutes
//     sender-identity placeholders into templates.
package bridge
