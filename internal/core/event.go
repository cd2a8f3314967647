package core

import (
	"time"

	"github.com/anant1857/canvaschat/internal/canvas"
)

// EventKind is a notification the hub emits to clients.
type EventKind int

const (
	// EventRoster delivers the full membership snapshot of a room.
	EventRoster EventKind = iota
	// EventSegment delivers a stroke increment from another participant.
	EventSegment
	// EventClear tells the client to blank its shared surface.
	EventClear
	// EventLabel delivers a presence label.
	EventLabel
	// EventChat delivers a chat message.
	EventChat
	// EventStateRequest asks the client to offer its shared surface.
	EventStateRequest
	// EventStateResponse delivers a snapshot to the original requester.
	EventStateResponse
	// EventError notifies the client about a domain error.
	EventError
)

// RosterEntry is one member in a roster snapshot.
type RosterEntry struct {
	Username string
}

// Label is an ephemeral presence marker. Expiry is client-local; the
// hub only relays it.
type Label struct {
	ID       string
	Username string
	X        float64
	Y        float64
	Color    string
}

// ChatMessage is the domain model for a relayed chat message. The
// canonical store is an external collaborator; the hub appends to it
// best-effort and never blocks the relay on it.
type ChatMessage struct {
	Room       string
	SenderID   string
	SenderName string
	Text       string
	CreatedAt  time.Time
}

// Event is sent to clients to describe what happened in the room. Seq
// is set on shared-layer events (segment, clear, label), stamped from
// the room's monotonic counter.
type Event struct {
	Kind EventKind
	Room string
	From string // origin username for segment/clear
	Seq  uint64

	Users   []RosterEntry
	Segment *canvas.Segment
	Label   *Label
	Chat    *ChatMessage

	RequesterID string // state request
	Snapshot    string // state response

	Error *CoreError
}
