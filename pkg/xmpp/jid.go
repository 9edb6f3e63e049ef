// Copyright 2024-2026 Aiku AI

package xmpp

import (
	"strings"

	"github.com/aiku/xmppwb/pkg/bridge"
)

// ParseSender splits a full JID (local@domain/resource) into the routing
// core's sender shape. The resource and local part are empty when the JID
// does not carry them.
func ParseSender(jid string) bridge.Sender {
	bare, resource, _ := strings.Cut(jid, "/")
	local, _, ok := strings.Cut(bare, "@")
	if !ok {
		local = ""
	}
	return bridge.Sender{BareID: bare, Resource: resource, LocalPart: local}
}
