package client

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/anant1857/canvaschat/internal/proto"
)

// fakeTransport feeds channel events into a session and records every
// frame the session sends.
type fakeTransport struct {
	events chan ChannelEvent
	sent   chan proto.Inbound
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		events: make(chan ChannelEvent, 64),
		sent:   make(chan proto.Inbound, 64),
	}
}

func (f *fakeTransport) Events() <-chan ChannelEvent { return f.events }
func (f *fakeTransport) Send(frame proto.Inbound)    { f.sent <- frame }
func (f *fakeTransport) Close()                      {}

func (f *fakeTransport) connect() {
	f.events <- ChannelEvent{Kind: ChannelConnected}
}

func (f *fakeTransport) disconnect() {
	f.events <- ChannelEvent{Kind: ChannelDisconnected}
}

// deliver wraps a relay event payload into the wire envelope and feeds
// it to the session.
func (f *fakeTransport) deliver(t *testing.T, event string, payload any) {
	t.Helper()

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal %s payload: %v", event, err)
	}
	f.events <- ChannelEvent{Kind: ChannelFrame, Frame: proto.OutboundRaw{
		Type:  proto.OutboundTypeEvent,
		Event: event,
		Data:  data,
	}}
}

func mustFrame(t *testing.T, f *fakeTransport, typ string) proto.Inbound {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case frame := <-f.sent:
			if frame.Type == typ {
				return frame
			}
			t.Fatalf("expected frame type %q, got %q", typ, frame.Type)
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
	t.Fatalf("expected frame type %q not sent", typ)
	return proto.Inbound{}
}

func mustNoFrame(t *testing.T, f *fakeTransport) {
	t.Helper()

	deadline := time.Now().Add(150 * time.Millisecond)
	for time.Now().Before(deadline) {
		select {
		case frame := <-f.sent:
			t.Fatalf("unexpected frame sent: %+v", frame)
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
}

func startSession(t *testing.T, cfg Config) (*Session, *fakeTransport) {
	t.Helper()

	if cfg.Room == "" {
		cfg.Room = "room-1"
	}
	if cfg.UserID == "" {
		cfg.UserID = "user-1"
	}
	if cfg.Username == "" {
		cfg.Username = "alice"
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	transport := newFakeTransport()
	sess := NewSession(cfg, transport, nil)
	go sess.Run(ctx)
	return sess, transport
}

// connectAlone brings the channel up and completes the bootstrap via a
// roster that lists only the session's own user.
func connectAlone(t *testing.T, sess *Session, f *fakeTransport) {
	t.Helper()

	f.connect()
	mustFrame(t, f, proto.InboundTypeJoin)
	mustFrame(t, f, proto.InboundTypeStateRequest)
	f.deliver(t, proto.EventTypeRoster, proto.EventRoster{
		Room:  "room-1",
		Users: []proto.RosterUser{{Username: "alice"}},
	})
	waitFor(t, func() bool { return !sess.BootstrapPending() }, "bootstrap to complete")
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// fakeLayerStore is an in-memory store.LayerStore.
type fakeLayerStore struct {
	mu    sync.Mutex
	data  map[string]string
	saves int
}

func newFakeLayerStore() *fakeLayerStore {
	return &fakeLayerStore{data: make(map[string]string)}
}

func (f *fakeLayerStore) SaveLayer(_ context.Context, userID, layer, imageData string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[userID+"/"+layer] = imageData
	f.saves++
	return nil
}

func (f *fakeLayerStore) LoadLayer(_ context.Context, userID, layer string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[userID+"/"+layer], nil
}

func (f *fakeLayerStore) DeleteLayer(_ context.Context, userID, layer string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, userID+"/"+layer)
	return nil
}

func (f *fakeLayerStore) get(userID, layer string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[userID+"/"+layer]
}

func (f *fakeLayerStore) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}
