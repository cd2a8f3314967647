package proto

import "encoding/json"

// Inbound is the envelope for frames coming from a client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// The closed set of frame types. Receivers dispatch over these with an
// exhaustive switch; unknown types are answered with a protocol error.
const (
	ProtocolVersion = 1

	InboundTypeJoin          = "join"
	InboundTypeLeave         = "leave"
	InboundTypeSegment       = "segment"
	InboundTypeClear         = "clear"
	InboundTypeLabel         = "label"
	InboundTypeChat          = "chat"
	InboundTypeStateRequest  = "state_request"
	InboundTypeStateResponse = "state_response"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventTypeRoster        = "roster"
	EventTypeSegment       = "segment"
	EventTypeClear         = "clear"
	EventTypeLabel         = "label"
	EventTypeChat          = "chat"
	EventTypeStateRequest  = "state_request"
	EventTypeStateResponse = "state_response"
)

// PointData is a surface-space coordinate on the wire.
type PointData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// JoinData announces a participant and its room. A zero Protocol is
// accepted for older clients; a non-zero mismatch is rejected with
// unsupported_version.
type JoinData struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Room     string `json:"roomId"`
	Protocol int    `json:"protocol,omitempty"`
}

// LeaveData requests to leave the current room.
type LeaveData struct {
	Room string `json:"roomId"`
}

// SegmentData is one shared-layer stroke increment. A null prevPoint
// marks a single-point dab at the start of a gesture.
type SegmentData struct {
	PrevPoint    *PointData `json:"prevPoint"`
	CurrentPoint PointData  `json:"currentPoint"`
	Color        string     `json:"color"`
	LineWidth    float64    `json:"lineWidth"`
}

// ClearData requests blanking the room's shared surface.
type ClearData struct {
	Room string `json:"roomId"`
}

// LabelData is an ephemeral presence marker anchored at a stroke start.
type LabelData struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Color    string  `json:"color"`
}

// ChatData is a chat message from the client.
type ChatData struct {
	Room       string `json:"roomId"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Text       string `json:"text"`
}

// StateRequestData solicits a shared-surface snapshot from peers. The
// room is implied by the sender's membership.
type StateRequestData struct{}

// StateResponseData answers a state request with a full snapshot,
// addressed to the requester's connection id.
type StateResponseData struct {
	RequesterID string `json:"requesterId"`
	Snapshot    string `json:"snapshot"`
}

// Outbound is the envelope for frames sent to a client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// RosterUser is one entry in a membership snapshot.
type RosterUser struct {
	Username string `json:"username"`
}

// EventRoster replaces the client's prior view of room membership.
type EventRoster struct {
	Room  string       `json:"roomId"`
	Users []RosterUser `json:"users"`
}

// EventSegment relays a stroke increment. Seq is the per-room sequence
// number the hub stamped on it.
type EventSegment struct {
	Room string `json:"roomId"`
	From string `json:"from"`
	Seq  uint64 `json:"seq"`
	SegmentData
}

// EventClear relays a shared-surface clear.
type EventClear struct {
	Room string `json:"roomId"`
	From string `json:"from"`
	Seq  uint64 `json:"seq"`
}

// EventLabel relays a presence label.
type EventLabel struct {
	Room string `json:"roomId"`
	Seq  uint64 `json:"seq"`
	LabelData
}

// EventChat relays a chat message.
type EventChat struct {
	Room       string `json:"roomId"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Text       string `json:"text"`
	TS         int64  `json:"ts"`
}

// EventStateRequest asks the receiving peer to offer its shared
// surface to the named requester.
type EventStateRequest struct {
	Room        string `json:"roomId"`
	RequesterID string `json:"requesterId"`
}

// EventStateResponse delivers a snapshot to the original requester.
type EventStateResponse struct {
	Room     string `json:"roomId"`
	Snapshot string `json:"snapshot"`
}

// OutboundRaw is the receive-side counterpart of Outbound: the event
// payload stays raw until the receiver dispatches on Event.
type OutboundRaw struct {
	Type  string          `json:"type"`
	Event string          `json:"event,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error *Error          `json:"error,omitempty"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
