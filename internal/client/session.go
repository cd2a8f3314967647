package client

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/anant1857/canvaschat/internal/canvas"
	"github.com/anant1857/canvaschat/internal/proto"
	"github.com/anant1857/canvaschat/internal/store"
)

// SnapshotInterval is how often a dirty private layer is persisted to
// the durable store.
const SnapshotInterval = 2 * time.Second

// Config describes one client session.
type Config struct {
	Room     string
	UserID   string
	Username string

	// PresenceTTL and SnapshotInterval default to the package
	// constants when zero.
	PresenceTTL      time.Duration
	SnapshotInterval time.Duration

	// Layers is the durable per-user store for the private layer.
	// Nil disables private persistence.
	Layers store.LayerStore
}

// ChatEntry is one received or locally sent chat message. Delivery is
// unordered across senders; the canonical history lives in the
// external message store.
type ChatEntry struct {
	SenderID   string
	SenderName string
	Text       string
	ReceivedAt time.Time
}

// Session owns all client-side protocol state: the two layers, the
// bootstrap state machine, presence labels and the chat view. All of
// it is touched from the single Run goroutine; local operations and
// accessors post onto the loop, so no locking is needed anywhere.
type Session struct {
	cfg       Config
	log       zerolog.Logger
	transport Transport

	layers    *LayerSet
	capture   *StrokeCapture
	presence  *presenceSet
	bootstrap bootstrapState

	roster       []string
	chat         []ChatEntry
	lastClearSeq uint64
	connected    bool

	brushColor string
	brushWidth float64

	runCtx context.Context
	ops    chan func()
	quit   chan struct{}
}

// NewSession builds a session over the given transport.
func NewSession(cfg Config, transport Transport, logger *zerolog.Logger) *Session {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if cfg.SnapshotInterval <= 0 {
		cfg.SnapshotInterval = SnapshotInterval
	}
	return &Session{
		cfg:        cfg,
		log:        logger.With().Str("component", "session").Str("user", cfg.Username).Logger(),
		transport:  transport,
		layers:     NewLayerSet(),
		capture:    NewStrokeCapture(),
		presence:   newPresenceSet(cfg.PresenceTTL),
		brushColor: "#000000",
		brushWidth: 5,
		ops:        make(chan func(), 128),
		quit:       make(chan struct{}),
	}
}

// Run drives the session until ctx is done. Every event handler runs
// here, one at a time.
func (s *Session) Run(ctx context.Context) {
	s.runCtx = ctx
	defer close(s.quit)
	defer s.transport.Close()

	ticker := time.NewTicker(s.cfg.SnapshotInterval)
	defer ticker.Stop()

	events := s.transport.Events()
	for {
		select {
		case <-ctx.Done():
			s.persistPrivate(context.Background())
			return
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			s.handleChannelEvent(ev)
		case op := <-s.ops:
			op()
		case id := <-s.presence.expired:
			s.presence.remove(id)
		case <-ticker.C:
			s.persistPrivate(ctx)
		}
	}
}

// ==== channel events ====

func (s *Session) handleChannelEvent(ev ChannelEvent) {
	switch ev.Kind {
	case ChannelConnected:
		s.connected = true
		s.lastClearSeq = 0
		s.sendFrame(proto.InboundTypeJoin, proto.JoinData{
			UserID:   s.cfg.UserID,
			Username: s.cfg.Username,
			Room:     s.cfg.Room,
			Protocol: proto.ProtocolVersion,
		})
		// The pre-disconnect shared surface is never authoritative.
		if s.layers.SharedActive() {
			s.startBootstrap()
		}
	case ChannelDisconnected:
		s.connected = false
		s.presence.clear()
		s.bootstrap.cancel()
	case ChannelDown:
		s.connected = false
		s.presence.clear()
		s.bootstrap.cancel()
		s.log.Error().Msg("event channel down, retries exhausted")
	case ChannelFrame:
		s.handleFrame(ev.Frame)
	}
}

func (s *Session) handleFrame(frame proto.OutboundRaw) {
	switch frame.Type {
	case proto.OutboundTypeError:
		if frame.Error != nil {
			s.log.Warn().Str("code", frame.Error.Code).Str("msg", frame.Error.Msg).Msg("protocol error from relay")
		}
	case proto.OutboundTypeEvent:
		s.handleEvent(frame.Event, frame.Data)
	default:
		// Unknown envelope, drop silently.
	}
}

func (s *Session) handleEvent(event string, data json.RawMessage) {
	switch event {
	case proto.EventTypeRoster:
		var ev proto.EventRoster
		if json.Unmarshal(data, &ev) != nil {
			return
		}
		s.handleRoster(ev)
	case proto.EventTypeSegment:
		var ev proto.EventSegment
		if json.Unmarshal(data, &ev) != nil {
			return
		}
		s.handleRemoteSegment(ev)
	case proto.EventTypeClear:
		var ev proto.EventClear
		if json.Unmarshal(data, &ev) != nil {
			return
		}
		s.handleRemoteClear(ev)
	case proto.EventTypeLabel:
		var ev proto.EventLabel
		if json.Unmarshal(data, &ev) != nil {
			return
		}
		s.handleRemoteLabel(ev)
	case proto.EventTypeChat:
		var ev proto.EventChat
		if json.Unmarshal(data, &ev) != nil {
			return
		}
		s.chat = append(s.chat, ChatEntry{
			SenderID:   ev.SenderID,
			SenderName: ev.SenderName,
			Text:       ev.Text,
			ReceivedAt: time.Now(),
		})
	case proto.EventTypeStateRequest:
		var ev proto.EventStateRequest
		if json.Unmarshal(data, &ev) != nil {
			return
		}
		s.handleStateRequest(ev)
	case proto.EventTypeStateResponse:
		var ev proto.EventStateResponse
		if json.Unmarshal(data, &ev) != nil {
			return
		}
		s.handleStateResponse(ev)
	default:
		// Unknown event, drop silently.
	}
}

func (s *Session) handleRoster(ev proto.EventRoster) {
	names := make([]string, 0, len(ev.Users))
	for _, u := range ev.Users {
		names = append(names, u.Username)
	}
	s.roster = names

	// Alone in the room: there is nobody to answer a state request, so
	// the blank surface is the correct bootstrap outcome.
	if s.bootstrap.pending && len(names) == 1 && names[0] == s.cfg.Username {
		s.bootstrap.complete()
	}
}

func (s *Session) handleRemoteSegment(ev proto.EventSegment) {
	// Stale segment from before the last clear we applied.
	if ev.Seq != 0 && ev.Seq < s.lastClearSeq {
		return
	}
	seg := canvas.Segment{
		Curr:  canvas.Point{X: ev.CurrentPoint.X, Y: ev.CurrentPoint.Y},
		Color: ev.Color,
		Width: ev.LineWidth,
	}
	if ev.PrevPoint != nil {
		seg.Prev = &canvas.Point{X: ev.PrevPoint.X, Y: ev.PrevPoint.Y}
	}
	if s.bootstrap.buffer(seg, ev.Seq) {
		return
	}
	// Always the shared surface, no matter which layer is active.
	s.layers.Shared().DrawSegment(seg)
}

func (s *Session) handleRemoteClear(ev proto.EventClear) {
	s.layers.Shared().Clear()
	s.presence.clear()
	if ev.Seq > s.lastClearSeq {
		s.lastClearSeq = ev.Seq
	}
	s.bootstrap.dropStale(ev.Seq)
}

func (s *Session) handleRemoteLabel(ev proto.EventLabel) {
	// Labels are meaningful only while the shared layer is shown.
	if !s.layers.SharedActive() {
		return
	}
	s.presence.add(Label{
		ID:       ev.ID,
		Username: ev.Username,
		Pos:      canvas.Point{X: ev.X, Y: ev.Y},
		Color:    ev.Color,
	})
}

func (s *Session) handleStateRequest(ev proto.EventStateRequest) {
	snapshot, err := s.layers.Shared().Encode()
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to encode shared surface for state response")
		return
	}
	s.sendFrame(proto.InboundTypeStateResponse, proto.StateResponseData{
		RequesterID: ev.RequesterID,
		Snapshot:    snapshot,
	})
}

func (s *Session) handleStateResponse(ev proto.EventStateResponse) {
	// First response wins; anything later, or anything for a request
	// cancelled by a layer switch, is discarded.
	if !s.bootstrap.pending {
		return
	}
	base, err := canvas.Decode(ev.Snapshot)
	if err != nil {
		s.log.Warn().Err(err).Msg("undecodable state response, waiting for another responder")
		return
	}
	buffered := s.bootstrap.complete()
	s.layers.Shared().DrawUnder(base)
	for _, bs := range buffered {
		if bs.seq != 0 && bs.seq < s.lastClearSeq {
			continue
		}
		s.layers.Shared().DrawSegment(bs.seg)
	}
}

func (s *Session) startBootstrap() {
	s.layers.ResetShared()
	s.bootstrap.begin()
	if s.connected {
		s.sendFrame(proto.InboundTypeStateRequest, proto.StateRequestData{})
	}
}

// ==== local operations ====

// PointerDown starts a drawing gesture.
func (s *Session) PointerDown() {
	s.post(func() { s.capture.Begin() })
}

// PointerMove feeds one motion sample in display coordinates. The
// resulting segment is applied locally right away and, when the shared
// layer is active, emitted to the relay.
func (s *Session) PointerMove(x, y float64) {
	s.post(func() {
		seg, ok := s.capture.Sample(x, y, s.brushColor, s.brushWidth)
		if !ok {
			return
		}
		s.layers.DrawActive(seg)
		if s.layers.SharedActive() && s.connected {
			s.sendFrame(proto.InboundTypeSegment, segmentToWire(seg))
		}
	})
}

// PointerUp ends the gesture on release or pointer leave. A shared
// stroke leaves a presence label anchored at its start.
func (s *Session) PointerUp() {
	s.post(func() {
		start, ok := s.capture.End()
		if !ok || !s.layers.SharedActive() {
			return
		}
		label := Label{
			ID:       uuid.New().String(),
			Username: s.cfg.Username,
			Pos:      start,
			Color:    s.brushColor,
		}
		s.presence.add(label)
		if s.connected {
			s.sendFrame(proto.InboundTypeLabel, proto.LabelData{
				ID:       label.ID,
				Username: label.Username,
				X:        label.Pos.X,
				Y:        label.Pos.Y,
				Color:    label.Color,
			})
		}
	})
}

// SetBrush changes the stroke color and width for future samples.
func (s *Session) SetBrush(color string, width float64) {
	s.post(func() {
		s.brushColor = color
		s.brushWidth = width
	})
}

// SetViewport records the display size pointer coordinates arrive in.
func (s *Session) SetViewport(displayW, displayH float64) {
	s.post(func() {
		surface := s.layers.ActiveSurface()
		s.capture.SetViewport(displayW, displayH, surface.Width(), surface.Height())
	})
}

// ClearActive blanks the active layer. On the shared layer the clear
// is broadcast; on the private layer it is purely local and also
// removes the durable snapshot.
func (s *Session) ClearActive() {
	s.post(func() {
		if s.layers.SharedActive() {
			s.layers.Shared().Clear()
			s.presence.clear()
			if s.connected {
				s.sendFrame(proto.InboundTypeClear, proto.ClearData{Room: s.cfg.Room})
			}
			return
		}
		s.layers.Private().Clear()
		s.layers.MarkPrivateClean()
		if s.cfg.Layers != nil {
			if err := s.cfg.Layers.DeleteLayer(s.runCtx, s.cfg.UserID, LayerPrivate); err != nil {
				s.log.Warn().Err(err).Msg("failed to delete private layer snapshot")
			}
		}
	})
}

// SwitchLayer activates the named layer: network routing stops, the
// target surface is loaded (private from the durable store, shared via
// bootstrap) and presence labels drop.
func (s *Session) SwitchLayer(name string) {
	s.post(func() {
		if name == LayerShared && s.layers.Active() == LayerPrivate {
			s.persistPrivate(s.runCtx)
		}
		if !s.layers.SetActive(name) {
			return
		}
		s.capture.End()
		s.presence.clear()
		s.bootstrap.cancel()

		if name == LayerPrivate {
			s.loadPrivate()
			return
		}
		s.startBootstrap()
	})
}

// SendChat relays a chat message and appends it to the local view (the
// relay never echoes a sender's own events back).
func (s *Session) SendChat(text string) {
	s.post(func() {
		if text == "" {
			return
		}
		s.chat = append(s.chat, ChatEntry{
			SenderID:   s.cfg.UserID,
			SenderName: s.cfg.Username,
			Text:       text,
			ReceivedAt: time.Now(),
		})
		if s.connected {
			s.sendFrame(proto.InboundTypeChat, proto.ChatData{
				Room:       s.cfg.Room,
				SenderID:   s.cfg.UserID,
				SenderName: s.cfg.Username,
				Text:       text,
			})
		}
	})
}

func (s *Session) loadPrivate() {
	if s.cfg.Layers == nil {
		s.layers.ReplacePrivate(nil)
		return
	}
	data, err := s.cfg.Layers.LoadLayer(s.runCtx, s.cfg.UserID, LayerPrivate)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to load private layer, starting blank")
		s.layers.ReplacePrivate(nil)
		return
	}
	if data == "" {
		// No snapshot yet; a blank surface is the expected start.
		s.layers.ReplacePrivate(nil)
		return
	}
	surface, err := canvas.Decode(data)
	if err != nil {
		s.log.Warn().Err(err).Msg("corrupt private layer snapshot, starting blank")
		s.layers.ReplacePrivate(nil)
		return
	}
	s.layers.ReplacePrivate(surface)
}

func (s *Session) persistPrivate(ctx context.Context) {
	if s.cfg.Layers == nil || !s.layers.PrivateDirty() {
		return
	}
	data, err := s.layers.Private().Encode()
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to encode private layer")
		return
	}
	if err := s.cfg.Layers.SaveLayer(ctx, s.cfg.UserID, LayerPrivate, data); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist private layer")
		return
	}
	s.layers.MarkPrivateClean()
}

func (s *Session) sendFrame(typ string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Error().Err(err).Str("type", typ).Msg("failed to marshal frame")
		return
	}
	s.transport.Send(proto.Inbound{Type: typ, Data: data})
}

func segmentToWire(seg canvas.Segment) proto.SegmentData {
	out := proto.SegmentData{
		CurrentPoint: proto.PointData{X: seg.Curr.X, Y: seg.Curr.Y},
		Color:        seg.Color,
		LineWidth:    seg.Width,
	}
	if seg.Prev != nil {
		out.PrevPoint = &proto.PointData{X: seg.Prev.X, Y: seg.Prev.Y}
	}
	return out
}

// ==== accessors ====
// Each runs on the session loop and returns a copy, so callers never
// observe state mid-handler.

// Roster returns the latest membership snapshot from the relay.
func (s *Session) Roster() []string {
	var out []string
	s.do(func() { out = append([]string(nil), s.roster...) })
	return out
}

// ChatLog returns the session's chat view.
func (s *Session) ChatLog() []ChatEntry {
	var out []ChatEntry
	s.do(func() { out = append([]ChatEntry(nil), s.chat...) })
	return out
}

// Labels returns the currently rendered presence labels.
func (s *Session) Labels() []Label {
	var out []Label
	s.do(func() { out = s.presence.snapshot() })
	return out
}

// ActiveLayer returns the name of the layer receiving pointer input.
func (s *Session) ActiveLayer() string {
	var out string
	s.do(func() { out = s.layers.Active() })
	return out
}

// SharedSurface returns a copy of the shared surface.
func (s *Session) SharedSurface() *canvas.Surface {
	var out *canvas.Surface
	s.do(func() { out = s.layers.Shared().Clone() })
	return out
}

// PrivateSurface returns a copy of the private surface.
func (s *Session) PrivateSurface() *canvas.Surface {
	var out *canvas.Surface
	s.do(func() { out = s.layers.Private().Clone() })
	return out
}

// Connected reports whether the event channel is currently up.
func (s *Session) Connected() bool {
	var out bool
	s.do(func() { out = s.connected })
	return out
}

// BootstrapPending reports whether a state request is in flight.
func (s *Session) BootstrapPending() bool {
	var out bool
	s.do(func() { out = s.bootstrap.pending })
	return out
}

func (s *Session) post(f func()) {
	select {
	case s.ops <- f:
	case <-s.quit:
	}
}

func (s *Session) do(f func()) {
	done := make(chan struct{})
	select {
	case s.ops <- func() { f(); close(done) }:
	case <-s.quit:
		return
	}
	select {
	case <-done:
	case <-s.quit:
	}
}
