package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/anant1857/canvaschat/internal/config"
	"github.com/anant1857/canvaschat/internal/core"
	"github.com/anant1857/canvaschat/internal/proto"
	"github.com/anant1857/canvaschat/internal/store"
	"github.com/anant1857/canvaschat/internal/store/sqlite"
)

// createTestStore creates an in-memory SQLite store with schema applied.
func createTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func startTestServer(t *testing.T) (*httptest.Server, store.Store) {
	t.Helper()

	st := createTestStore(t)

	hub := core.NewHub(st, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	logger := zerolog.Nop()
	server := NewServer(hub, st, &config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
	}, &logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, st
}

func dialWS(t *testing.T, ctx context.Context, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func sendFrame(t *testing.T, ctx context.Context, conn *websocket.Conn, typ string, payload any) {
	t.Helper()

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal %s payload: %v", typ, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: data}); err != nil {
		t.Fatalf("write %s frame: %v", typ, err)
	}
}

func sendJoin(t *testing.T, ctx context.Context, conn *websocket.Conn, userID, username, room string) {
	t.Helper()
	sendFrame(t, ctx, conn, proto.InboundTypeJoin, proto.JoinData{
		UserID:   userID,
		Username: username,
		Room:     room,
	})
}

// readEvent reads frames until one carries the wanted event name,
// skipping others (roster updates interleave with everything).
func readEvent(t *testing.T, ctx context.Context, conn *websocket.Conn, event string) json.RawMessage {
	t.Helper()

	for {
		var outbound proto.OutboundRaw
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			t.Fatalf("read waiting for %q event: %v", event, err)
		}
		if outbound.Type == proto.OutboundTypeError {
			t.Fatalf("protocol error while waiting for %q: %+v", event, outbound.Error)
		}
		if outbound.Event == event {
			return outbound.Data
		}
	}
}

// requireNoEventBefore reads events until the marker event arrives and
// fails if the forbidden one shows up first.
func requireNoEventBefore(t *testing.T, ctx context.Context, conn *websocket.Conn, forbidden, marker string) {
	t.Helper()

	for {
		var outbound proto.OutboundRaw
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			t.Fatalf("read waiting for %q marker: %v", marker, err)
		}
		if outbound.Event == forbidden {
			t.Fatalf("%q event delivered to a connection that must not receive it", forbidden)
		}
		if outbound.Event == marker {
			return
		}
	}
}

func readError(t *testing.T, ctx context.Context, conn *websocket.Conn) *proto.Error {
	t.Helper()

	for {
		var outbound proto.OutboundRaw
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			t.Fatalf("read waiting for error frame: %v", err)
		}
		if outbound.Type == proto.OutboundTypeError {
			return outbound.Error
		}
	}
}
