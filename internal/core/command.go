package core

import "github.com/anant1857/canvaschat/internal/canvas"

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoinRoom announces the participant and subscribes it to a room.
	CommandJoinRoom CommandKind = iota
	// CommandLeaveRoom unsubscribes the client from its current room.
	CommandLeaveRoom
	// CommandSegment relays a shared-layer stroke increment to the room.
	CommandSegment
	// CommandClear relays a shared-surface clear to the room.
	CommandClear
	// CommandLabel relays an ephemeral presence label to the room.
	CommandLabel
	// CommandChat relays a chat message and hands it to the message store.
	CommandChat
	// CommandStateRequest solicits a shared-surface snapshot from peers.
	CommandStateRequest
	// CommandStateResponse answers a state request, addressed to one requester.
	CommandStateResponse
)

// Command represents an action requested by a client. Only the fields
// relevant to the Kind are set.
type Command struct {
	Kind     CommandKind
	Room     string // join only; everything else uses the client's current room
	UserID   string // join
	Username string // join

	Segment *canvas.Segment
	Label   *Label
	Chat    *ChatMessage

	// State response routing.
	TargetID string
	Snapshot string
}
