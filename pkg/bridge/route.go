// Copyright 2024-2026 Aiku AI

package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.mau.fi/util/exslices"

	"github.com/aiku/xmppwb/pkg/bridge/webhookfmt"
)

// defaultWebhookTimeout bounds one outbound webhook call when the route
// does not configure its own timeout.
const defaultWebhookTimeout = 10 * time.Second

// InboundRoute matches inbound webhook calls by token. Tokens are not
// globally unique; routes on different bridges may share one.
type InboundRoute struct {
	Token       string
	ignoreUsers map[string]struct{}
}

func newInboundRoute(cfg InboundWebhookConfig) (InboundRoute, error) {
	if cfg.Token == "" {
		return InboundRoute{}, invalidConfigf("'token' is missing from an inbound webhook definition")
	}
	route := InboundRoute{Token: cfg.Token, ignoreUsers: make(map[string]struct{})}
	for _, user := range exslices.DeduplicateUnsorted(cfg.IgnoreUser) {
		route.ignoreUsers[user] = struct{}{}
	}
	return route, nil
}

// Ignores reports whether the route filters out calls from the username.
func (r InboundRoute) Ignores(username string) bool {
	_, ok := r.ignoreUsers[username]
	return ok
}

// OutboundRoute delivers formatted payloads to one webhook URL. It owns a
// long-lived HTTP client acquired at construction and released exactly once
// at shutdown.
type OutboundRoute struct {
	URL    string
	Format webhookfmt.Options

	client    *resty.Client
	closeOnce sync.Once
}

func newOutboundRoute(cfg OutboundWebhookConfig) (*OutboundRoute, error) {
	if cfg.URL == "" {
		return nil, invalidConfigf("'url' is missing from an outgoing webhook definition")
	}
	timeout := cfg.Timeout.Duration
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.CAFile != "" {
		client.SetRootCertificate(cfg.CAFile)
	}
	return &OutboundRoute{
		URL: cfg.URL,
		Format: webhookfmt.Options{
			MessageTemplate:         cfg.MessageTemplate,
			UsernameTemplate:        cfg.UsernameTemplate,
			ChannelOverride:         cfg.ChannelOverride,
			AvatarTemplate:          cfg.AvatarTemplate,
			UseAttachmentFormatting: cfg.UseAttachmentFormatting,
			AttachmentLink:          cfg.AttachmentLink,
		},
		client: client,
	}, nil
}

// Post sends one payload to the route's URL. Non-2xx responses are errors.
func (r *OutboundRoute) Post(ctx context.Context, payload *webhookfmt.Payload) error {
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(r.URL)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("webhook returned %s", resp.Status())
	}
	return nil
}

// Close releases the route's transport. Safe to call more than once; the
// release happens exactly once.
func (r *OutboundRoute) Close() {
	r.closeOnce.Do(func() {
		r.client.GetClient().CloseIdleConnections()
	})
}
