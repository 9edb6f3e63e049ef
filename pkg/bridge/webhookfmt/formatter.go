// Copyright 2024-2026 Aiku AI

// Package webhookfmt builds the JSON payloads sent to outgoing webhooks and
// substitutes sender-identity placeholders into the templates that shape them.
package webhookfmt

import (
	"fmt"
	"regexp"
)

// Identity describes the sender of a chat message as seen by the formatter.
type Identity struct {
	BareID    string // alice@example.com
	LocalPart string // alice
	Resource  string // connection- or room-specific suffix
}

// FullID returns the bare identifier with the resource suffix attached.
func (id Identity) FullID() string {
	if id.Resource == "" {
		return id.BareID
	}
	return id.BareID + "/" + id.Resource
}

// Options holds the per-route formatting settings. The flat shape and the
// attachment shape are mutually exclusive; ChannelOverride and
// AvatarTemplate only apply to the flat shape.
type Options struct {
	MessageTemplate         string
	UsernameTemplate        string
	ChannelOverride         string
	AvatarTemplate          string
	UseAttachmentFormatting bool
	AttachmentLink          string
}

// Payload is an outgoing webhook body in one of the two supported shapes.
type Payload struct {
	Text        string       `json:"text,omitempty"`
	Username    string       `json:"username,omitempty"`
	Channel     string       `json:"channel,omitempty"`
	IconURL     string       `json:"icon_url,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment is a single entry of the attachment-style payload shape.
type Attachment struct {
	Title     string `json:"title"`
	Text      string `json:"text"`
	TitleLink string `json:"title_link,omitempty"`
}

var placeholderRe = regexp.MustCompile(`\{([a-z_]+)\}`)

// FormatIdentity substitutes the recognized sender placeholders into
// template. {bare_id}, {full_id} and {local_part} always resolve to the
// corresponding identity field; {nick} and {id} resolve to the room
// nickname and full identifier for group messages, and to the local part
// and bare identifier for direct chats. An unrecognized placeholder is
// reported as an error rather than passed through silently.
func FormatIdentity(template string, id Identity, isGroup bool) (string, error) {
	var unknown string
	out := placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		switch match[1 : len(match)-1] {
		case "bare_id":
			return id.BareID
		case "full_id":
			return id.FullID()
		case "local_part":
			return id.LocalPart
		case "nick":
			if isGroup {
				return id.Resource
			}
			return id.LocalPart
		case "id":
			if isGroup {
				return id.FullID()
			}
			return id.BareID
		default:
			if unknown == "" {
				unknown = match
			}
			return match
		}
	})
	if unknown != "" {
		return "", fmt.Errorf("unknown placeholder %s in template %q", unknown, template)
	}
	return out, nil
}

// ApplyMessageTemplate substitutes the message body for every {msg}
// placeholder. An empty template leaves the body untouched. As with
// FormatIdentity, an unrecognized placeholder is reported as an error
// rather than passed through silently.
func ApplyMessageTemplate(template, body string) (string, error) {
	if template == "" {
		return body, nil
	}
	var unknown string
	out := placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		if match == "{msg}" {
			return body
		}
		if unknown == "" {
			unknown = match
		}
		return match
	})
	if unknown != "" {
		return "", fmt.Errorf("unknown placeholder %s in message template %q", unknown, template)
	}
	return out, nil
}

// BuildPayload assembles the webhook body for one outbound route. The
// username defaults to the full identifier for group messages and the bare
// identifier for direct chats when no username template is configured.
func BuildPayload(opts Options, id Identity, body string, isGroup bool) (*Payload, error) {
	username := id.BareID
	if isGroup {
		username = id.FullID()
	}
	if opts.UsernameTemplate != "" {
		var err error
		username, err = FormatIdentity(opts.UsernameTemplate, id, isGroup)
		if err != nil {
			return nil, err
		}
	}

	message, err := ApplyMessageTemplate(opts.MessageTemplate, body)
	if err != nil {
		return nil, err
	}

	if opts.UseAttachmentFormatting {
		return &Payload{
			Attachments: []Attachment{{
				Title:     "From: " + username,
				Text:      message,
				TitleLink: opts.AttachmentLink,
			}},
		}, nil
	}

	payload := &Payload{
		Text:     message,
		Username: username,
		Channel:  opts.ChannelOverride,
	}
	if opts.AvatarTemplate != "" {
		icon, err := FormatIdentity(opts.AvatarTemplate, id, isGroup)
		if err != nil {
			return nil, err
		}
		payload.IconURL = icon
	}
	return payload, nil
}
