// Copyright 2024-2026 Aiku AI

package bridge

// RoomEntry describes one multi-user room the bridge participates in: the
// room identifier, the nickname the local participant uses there, and the
// join secret when the room requires one.
type RoomEntry struct {
	RoomID   string
	Nickname string
	Secret   string
}

// RoomRegistry maps room identifiers to their entries. It is built once
// during registry construction and read-only afterward.
type RoomRegistry struct {
	entries map[string]RoomEntry
	order   []string
}

// NewRoomRegistry returns an empty room registry.
func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{entries: make(map[string]RoomEntry)}
}

// Register adds a room. Registering the same room identifier twice fails
// with ErrDuplicateRoom rather than overwriting the earlier entry.
func (r *RoomRegistry) Register(roomID, nickname, secret string) error {
	if _, ok := r.entries[roomID]; ok {
		return ErrDuplicateRoom
	}
	r.entries[roomID] = RoomEntry{RoomID: roomID, Nickname: nickname, Secret: secret}
	r.order = append(r.order, roomID)
	return nil
}

// Contains reports whether the room identifier is registered.
func (r *RoomRegistry) Contains(roomID string) bool {
	_, ok := r.entries[roomID]
	return ok
}

// LookupNickname returns the local nickname for the room, if registered.
func (r *RoomRegistry) LookupNickname(roomID string) (string, bool) {
	entry, ok := r.entries[roomID]
	return entry.Nickname, ok
}

// IsSelfEcho reports whether a room message with the given sender resource
// is the local participant's own message echoed back by the room. The check
// is independent of which bridge owns the room.
func (r *RoomRegistry) IsSelfEcho(roomID, senderResource string) bool {
	entry, ok := r.entries[roomID]
	return ok && entry.Nickname == senderResource
}

// Entries returns all registered rooms in registration order.
func (r *RoomRegistry) Entries() []RoomEntry {
	out := make([]RoomEntry, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id])
	}
	return out
}
