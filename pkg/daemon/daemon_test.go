// Copyright 2024-2026 Aiku AI

package daemon

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiku/xmppwb/pkg/bridge"
	"github.com/aiku/xmppwb/pkg/listener"
	"github.com/aiku/xmppwb/pkg/xmpp"
)

// stepRecorder collects teardown steps in the order they run.
type stepRecorder struct {
	mu    sync.Mutex
	steps []string
}

func (r *stepRecorder) add(step string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, step)
}

func (r *stepRecorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.steps...)
}

type fakeChat struct {
	rec      *stepRecorder
	closeErr error
}

func (f *fakeChat) Connect() error { return nil }

func (f *fakeChat) Run(ctx context.Context, _ xmpp.Handler) error {
	<-ctx.Done()
	return nil
}

func (f *fakeChat) SendMessage(context.Context, string, string, bridge.MessageType, string) error {
	return nil
}

func (f *fakeChat) Close() error {
	f.rec.add("chat")
	return f.closeErr
}

type fakeServer struct {
	rec      *stepRecorder
	shutErr  error
	stopped  chan struct{}
	stopOnce sync.Once
}

func newFakeServer(rec *stepRecorder, shutErr error) *fakeServer {
	return &fakeServer{rec: rec, shutErr: shutErr, stopped: make(chan struct{})}
}

func (f *fakeServer) Start(string) error {
	<-f.stopped
	return nil
}

func (f *fakeServer) Shutdown(context.Context) error {
	f.rec.add("drain")
	f.stopOnce.Do(func() { close(f.stopped) })
	return f.shutErr
}

type fakeRegistry struct {
	rec *stepRecorder
}

func (f *fakeRegistry) DispatchInboundChat(context.Context, bridge.ChatSender, bridge.ChatMessage) {
}

func (f *fakeRegistry) NeedsInboundListener() bool { return true }

func (f *fakeRegistry) Close() { f.rec.add("transports") }

func TestRunShutdownOrder(t *testing.T) {
	t.Parallel()
	rec := &stepRecorder{}
	d := &Daemon{
		cfg:      &Config{Listener: &listener.Config{BindAddress: "127.0.0.1", Port: 0}},
		log:      zerolog.Nop(),
		registry: &fakeRegistry{rec: rec},
		chat:     &fakeChat{rec: rec},
		server:   newFakeServer(rec, nil),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, d.Run(ctx))

	assert.Equal(t, []string{"drain", "transports", "chat"}, rec.list(),
		"teardown must drain HTTP, release transports, then disconnect chat")
}

func TestRunShutdownContinuesPastFailures(t *testing.T) {
	t.Parallel()
	rec := &stepRecorder{}
	d := &Daemon{
		cfg:      &Config{Listener: &listener.Config{BindAddress: "127.0.0.1", Port: 0}},
		log:      zerolog.Nop(),
		registry: &fakeRegistry{rec: rec},
		chat:     &fakeChat{rec: rec, closeErr: errors.New("stream already gone")},
		server:   newFakeServer(rec, errors.New("drain timed out")),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, d.Run(ctx))

	assert.Equal(t, []string{"drain", "transports", "chat"}, rec.list(),
		"a failing step must not skip the ones after it")
}

func TestRunShutdownWithoutListener(t *testing.T) {
	t.Parallel()
	rec := &stepRecorder{}
	d := &Daemon{
		cfg:      &Config{},
		log:      zerolog.Nop(),
		registry: &fakeRegistry{rec: rec},
		chat:     &fakeChat{rec: rec},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, d.Run(ctx))

	assert.Equal(t, []string{"transports", "chat"}, rec.list())
}
