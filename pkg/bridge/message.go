// Copyright 2024-2026 Aiku AI

package bridge

import (
	"context"

	"github.com/aiku/xmppwb/pkg/bridge/webhookfmt"
)

// MessageType classifies a chat message for routing purposes.
type MessageType int

const (
	// MessageDirect is a one-to-one chat message.
	MessageDirect MessageType = iota
	// MessageGroup is a message sent to a multi-user room.
	MessageGroup
	// MessageOther is any other stanza kind; the routing core ignores it.
	MessageOther
)

func (t MessageType) String() string {
	switch t {
	case MessageDirect:
		return "direct"
	case MessageGroup:
		return "group"
	default:
		return "other"
	}
}

// Sender identifies the originator of an inbound chat message. For room
// messages BareID is the room identifier and Resource is the sender's room
// nickname; for direct chats BareID is the peer's address and LocalPart its
// user portion.
type Sender struct {
	BareID    string
	Resource  string
	LocalPart string
}

// Identity converts the sender into the formatter's identity shape.
func (s Sender) Identity() webhookfmt.Identity {
	return webhookfmt.Identity{
		BareID:    s.BareID,
		LocalPart: s.LocalPart,
		Resource:  s.Resource,
	}
}

// ChatMessage is one inbound chat event as delivered by the chat-protocol
// collaborator.
type ChatMessage struct {
	Sender Sender
	Type   MessageType
	Body   string
}

// ChatSender delivers messages to chat endpoints on behalf of the routing
// core. The displayName is advisory; the chat-protocol collaborator decides
// how (or whether) to surface it.
type ChatSender interface {
	SendMessage(ctx context.Context, target, body string, msgType MessageType, displayName string) error
}
