package client

import (
	"context"
	"errors"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/anant1857/canvaschat/internal/proto"
)

// Reconnect policy: a fixed attempt cap with a fixed delay. Exhausting
// the cap surfaces a terminal disconnected state; it never crashes
// local drawing.
const (
	ReconnectAttempts = 5
	ReconnectDelay    = time.Second

	sendBuffer  = 64
	eventBuffer = 64
)

// ChannelEventKind tags what happened on the event channel.
type ChannelEventKind int

const (
	// ChannelConnected fires on every successful (re)connect. The
	// session re-announces itself and re-runs bootstrap on each one.
	ChannelConnected ChannelEventKind = iota
	// ChannelFrame carries one decoded server frame.
	ChannelFrame
	// ChannelDisconnected fires when the connection drops and a
	// reconnect attempt is about to start.
	ChannelDisconnected
	// ChannelDown fires once when the retry attempts are exhausted.
	ChannelDown
)

// ChannelEvent is one notification from the transport to the session.
type ChannelEvent struct {
	Kind  ChannelEventKind
	Frame proto.OutboundRaw
}

// Transport is the session's view of the event channel. Split out so
// session tests can inject a scripted transport.
type Transport interface {
	Events() <-chan ChannelEvent
	Send(frame proto.Inbound)
	Close()
}

// Channel is a persistent bidirectional connection to the relay with
// bounded automatic reconnection.
type Channel struct {
	url    string
	log    zerolog.Logger
	out    chan proto.Inbound
	events chan ChannelEvent
	cancel context.CancelFunc
}

// Dial starts a channel to the given ws:// URL. The returned channel
// reconnects on its own until the retry attempts run out.
func Dial(ctx context.Context, url string, logger *zerolog.Logger) *Channel {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	ctx, cancel := context.WithCancel(ctx)
	c := &Channel{
		url:    url,
		log:    logger.With().Str("component", "channel").Logger(),
		out:    make(chan proto.Inbound, sendBuffer),
		events: make(chan ChannelEvent, eventBuffer),
		cancel: cancel,
	}
	go c.run(ctx)
	return c
}

// Events returns the stream of connectivity changes and server frames.
func (c *Channel) Events() <-chan ChannelEvent {
	return c.events
}

// Send queues a frame for the relay. It never blocks the caller; when
// the queue is full the frame is dropped and logged, degrading to
// missing remote state rather than stalling the drawing loop.
func (c *Channel) Send(frame proto.Inbound) {
	select {
	case c.out <- frame:
	default:
		c.log.Warn().Str("type", frame.Type).Msg("send queue full, frame dropped")
	}
}

// Close tears the channel down. No further events are delivered.
func (c *Channel) Close() {
	c.cancel()
}

func (c *Channel) run(ctx context.Context) {
	defer close(c.events)

	attempts := 0
	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := websocket.Dial(ctx, c.url, nil)
		if err != nil {
			attempts++
			c.log.Warn().Err(err).Int("attempt", attempts).Msg("dial failed")
			if attempts >= ReconnectAttempts {
				c.emit(ctx, ChannelEvent{Kind: ChannelDown})
				return
			}
			select {
			case <-time.After(ReconnectDelay):
			case <-ctx.Done():
				return
			}
			continue
		}

		attempts = 0
		c.emit(ctx, ChannelEvent{Kind: ChannelConnected})

		err = c.pump(ctx, conn)
		conn.Close(websocket.StatusNormalClosure, "closing")
		if ctx.Err() != nil {
			return
		}
		c.log.Warn().Err(err).Msg("connection lost, reconnecting")
		c.emit(ctx, ChannelEvent{Kind: ChannelDisconnected})

		select {
		case <-time.After(ReconnectDelay):
		case <-ctx.Done():
			return
		}
	}
}

// pump runs the read and write loops of one live connection and
// returns when either fails.
func (c *Channel) pump(ctx context.Context, conn *websocket.Conn) error {
	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		for {
			var frame proto.OutboundRaw
			if err := wsjson.Read(connCtx, conn, &frame); err != nil {
				errCh <- err
				return
			}
			c.emit(connCtx, ChannelEvent{Kind: ChannelFrame, Frame: frame})
		}
	}()
	go func() {
		for {
			select {
			case frame := <-c.out:
				if err := wsjson.Write(connCtx, conn, frame); err != nil {
					errCh <- err
					return
				}
			case <-connCtx.Done():
				errCh <- connCtx.Err()
				return
			}
		}
	}()

	err := <-errCh
	cancel()
	<-errCh
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (c *Channel) emit(ctx context.Context, event ChannelEvent) {
	select {
	case c.events <- event:
	case <-ctx.Done():
	}
}
