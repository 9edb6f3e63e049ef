// Copyright 2024-2026 Aiku AI

package bridge

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

// recordedSend captures one ChatSender delivery for assertions.
type recordedSend struct {
	target      string
	body        string
	msgType     MessageType
	displayName string
}

// fakeChatSender records deliveries instead of talking to a chat server.
type fakeChatSender struct {
	mu    sync.Mutex
	sends []recordedSend
	err   error
}

func (f *fakeChatSender) SendMessage(_ context.Context, target, body string, msgType MessageType, displayName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, recordedSend{target: target, body: body, msgType: msgType, displayName: displayName})
	return f.err
}

func (f *fakeChatSender) recorded() []recordedSend {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedSend(nil), f.sends...)
}

// webhookRecorder is an httptest server counting received webhook posts and
// keeping their raw bodies.
type webhookRecorder struct {
	server *httptest.Server

	mu     sync.Mutex
	bodies []string
	status int
}

func newWebhookRecorder(t *testing.T, status int) *webhookRecorder {
	t.Helper()
	rec := &webhookRecorder{status: status}
	rec.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.bodies = append(rec.bodies, string(body))
		rec.mu.Unlock()
		w.WriteHeader(rec.status)
	}))
	t.Cleanup(rec.server.Close)
	return rec
}

func (r *webhookRecorder) url() string {
	return r.server.URL
}

func (r *webhookRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bodies)
}

func (r *webhookRecorder) lastBody() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.bodies) == 0 {
		return ""
	}
	return r.bodies[len(r.bodies)-1]
}

func mustBridge(t *testing.T, cfg BridgeConfig, rooms *RoomRegistry) *Bridge {
	t.Helper()
	b, err := newBridge(cfg, rooms, zerolog.Nop())
	if err != nil {
		t.Fatalf("newBridge: %v", err)
	}
	t.Cleanup(b.closeRoutes)
	return b
}
