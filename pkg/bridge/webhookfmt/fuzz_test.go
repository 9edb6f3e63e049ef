// Copyright 2024-2026 Aiku AI

package webhookfmt

import (
	"encoding/json"
	"strings"
	"testing"
)

// FuzzFormatIdentity exercises placeholder substitution with arbitrary
// templates and identities. No input should cause a panic, and results must
// be deterministic.
func FuzzFormatIdentity(f *testing.F) {
	f.Add("{nick}<{bare_id}>", "alice@example.com", "alice", "alice_nick", false)
	f.Add("{id}", "alice@example.com", "alice", "alice_nick", true)
	f.Add("{bogus}", "", "", "", false)
	f.Add("no placeholders", "a@b", "a", "", true)
	f.Add("{", "a@b", "a", "r", false)
	f.Add(string([]byte{0x00}), "", "", "", false) // null byte

	f.Fuzz(func(t *testing.T, tmpl, bare, local, resource string, isGroup bool) {
		id := Identity{BareID: bare, LocalPart: local, Resource: resource}
		out, err := FormatIdentity(tmpl, id, isGroup)

		out2, err2 := FormatIdentity(tmpl, id, isGroup)
		if out != out2 || (err == nil) != (err2 == nil) {
			t.Errorf("non-deterministic: FormatIdentity(%q) returned (%q, %v) then (%q, %v)",
				tmpl, out, err, out2, err2)
		}

		// A template without any placeholder syntax passes through unchanged.
		if !strings.Contains(tmpl, "{") {
			if err != nil {
				t.Errorf("placeholder-free template %q errored: %v", tmpl, err)
			}
			if out != tmpl {
				t.Errorf("placeholder-free template %q changed to %q", tmpl, out)
			}
		}
	})
}

// FuzzBuildPayload verifies that every successfully built payload marshals
// to valid JSON in exactly one of the two shapes.
func FuzzBuildPayload(f *testing.F) {
	f.Add("hello", "{nick}", "", false, false)
	f.Add("hi", "", "http://x", true, true)
	f.Add("", "{id}", "", true, false)

	f.Fuzz(func(t *testing.T, body, usernameTmpl, link string, useAttachment, isGroup bool) {
		opts := Options{
			UsernameTemplate:        usernameTmpl,
			UseAttachmentFormatting: useAttachment,
			AttachmentLink:          link,
		}
		payload, err := BuildPayload(opts, Identity{BareID: "a@b", LocalPart: "a", Resource: "r"}, body, isGroup)
		if err != nil {
			return
		}
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		hasAttachments := payload.Attachments != nil
		if hasAttachments != useAttachment {
			t.Errorf("shape mismatch: useAttachment=%v but attachments=%v (%s)", useAttachment, hasAttachments, raw)
		}
		if hasAttachments && (payload.Text != "" || payload.Username != "") {
			t.Errorf("attachment payload carries flat fields: %s", raw)
		}
	})
}
