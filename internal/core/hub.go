package core

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/anant1857/canvaschat/internal/store"
)

// Hub is the per-deployment relay process. It owns room membership and
// nothing else: no raster data, no event history. Every inbound command
// triggers an independent fan-out to the current member set of the
// sender's room, preserving per-sender order but guaranteeing nothing
// across senders. All state is touched from the single Run goroutine.
type Hub struct {
	messages store.MessageStore
	log      zerolog.Logger

	rooms      map[string]*Room
	register   chan *Client
	unregister chan *Client
	commands   chan clientCommand
}

type clientCommand struct {
	client *Client
	cmd    *Command
}

// NewHub creates a hub. The message store may be nil; chat then relays
// without history.
func NewHub(messages store.MessageStore, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		messages:   messages,
		log:        logger.With().Str("component", "hub").Logger(),
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		commands:   make(chan clientCommand, 64),
	}
}

// RegisterClient hands a new connection to the hub.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
}

// UnregisterClient removes a disconnected client and updates its room.
func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// Run processes registrations and client commands until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			go h.pump(ctx, client)
		case client := <-h.unregister:
			h.dropFromRoom(client)
		case cc := <-h.commands:
			h.handleCommand(ctx, cc.client, cc.cmd)
		}
	}
}

// pump serializes one client's commands into the hub loop.
func (h *Hub) pump(ctx context.Context, client *Client) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-client.Commands:
			if !ok {
				return
			}
			select {
			case h.commands <- clientCommand{client: client, cmd: cmd}:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (h *Hub) handleCommand(ctx context.Context, client *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandJoinRoom:
		h.handleJoin(client, cmd)
	case CommandLeaveRoom:
		h.handleLeave(client)
	case CommandSegment:
		h.handleSegment(client, cmd)
	case CommandClear:
		h.handleClear(client)
	case CommandLabel:
		h.handleLabel(client, cmd)
	case CommandChat:
		h.handleChat(ctx, client, cmd)
	case CommandStateRequest:
		h.handleStateRequest(client)
	case CommandStateResponse:
		h.handleStateResponse(client, cmd)
	}
}

func (h *Hub) handleJoin(client *Client, cmd *Command) {
	if cmd.Room == "" || cmd.Username == "" {
		h.sendError(client, coreError(ErrCodeBadRequest, "room and username are required"))
		return
	}
	if client.Room == cmd.Room {
		h.sendError(client, coreError(ErrCodeAlreadyJoined, "already joined"))
		return
	}
	if client.Room != "" {
		h.dropFromRoom(client)
	}

	client.UserID = cmd.UserID
	client.Username = cmd.Username
	client.Room = cmd.Room

	room, ok := h.rooms[cmd.Room]
	if !ok {
		room = NewRoom(cmd.Room)
		h.rooms[cmd.Room] = room
	}
	room.AddClient(client)

	h.log.Info().Str("client_id", client.ID).Str("user", client.Username).Str("room", room.Name).Msg("client joined room")
	h.broadcastRoster(room)
}

func (h *Hub) handleLeave(client *Client) {
	if client.Room == "" {
		h.sendError(client, coreError(ErrCodeNotJoined, "join a room first"))
		return
	}
	h.dropFromRoom(client)
}

func (h *Hub) handleSegment(client *Client, cmd *Command) {
	room, ok := h.requireRoom(client)
	if !ok || cmd.Segment == nil {
		return
	}
	room.BroadcastExcept(client, &Event{
		Kind:    EventSegment,
		Room:    room.Name,
		From:    client.Username,
		Seq:     room.NextSeq(),
		Segment: cmd.Segment,
	})
}

func (h *Hub) handleClear(client *Client) {
	room, ok := h.requireRoom(client)
	if !ok {
		return
	}
	seq := room.NextSeq()
	h.log.Debug().Str("room", room.Name).Uint64("seq", seq).Str("user", client.Username).Msg("clear relayed")
	// Unlike segments, the clear goes to the originator too: it needs
	// the stamped seq to discard reordered pre-clear segments, and
	// applying its own clear twice is harmless.
	room.Broadcast(&Event{
		Kind: EventClear,
		Room: room.Name,
		From: client.Username,
		Seq:  seq,
	})
}

func (h *Hub) handleLabel(client *Client, cmd *Command) {
	room, ok := h.requireRoom(client)
	if !ok || cmd.Label == nil {
		return
	}
	room.BroadcastExcept(client, &Event{
		Kind:  EventLabel,
		Room:  room.Name,
		Seq:   room.NextSeq(),
		Label: cmd.Label,
	})
}

func (h *Hub) handleChat(ctx context.Context, client *Client, cmd *Command) {
	room, ok := h.requireRoom(client)
	if !ok || cmd.Chat == nil {
		return
	}
	chat := cmd.Chat
	chat.Room = room.Name
	if chat.SenderName == "" {
		chat.SenderName = client.Username
	}

	// History is an external collaborator; a store failure never stops
	// the relay.
	if h.messages != nil {
		if _, err := h.messages.SaveMessage(ctx, store.Message{
			Room:       chat.Room,
			SenderID:   chat.SenderID,
			SenderName: chat.SenderName,
			Text:       chat.Text,
			CreatedAt:  chat.CreatedAt,
		}); err != nil {
			h.log.Warn().Err(err).Str("room", room.Name).Msg("failed to persist chat message")
		}
	}

	room.BroadcastExcept(client, &Event{
		Kind: EventChat,
		Room: room.Name,
		Chat: chat,
	})
}

func (h *Hub) handleStateRequest(client *Client) {
	room, ok := h.requireRoom(client)
	if !ok {
		return
	}
	room.BroadcastExcept(client, &Event{
		Kind:        EventStateRequest,
		Room:        room.Name,
		RequesterID: client.ID,
	})
}

func (h *Hub) handleStateResponse(client *Client, cmd *Command) {
	room, ok := h.requireRoom(client)
	if !ok {
		return
	}
	target := room.FindByID(cmd.TargetID)
	if target == nil || target == client {
		// Requester left or answered itself; nothing to deliver.
		return
	}
	event := &Event{
		Kind:     EventStateResponse,
		Room:     room.Name,
		Snapshot: cmd.Snapshot,
	}
	select {
	case target.Events <- event:
	default:
		h.log.Warn().Str("client_id", target.ID).Msg("dropped state response for slow requester")
	}
}

// dropFromRoom removes the client from its room, re-broadcasts the
// roster and forgets the room once empty.
func (h *Hub) dropFromRoom(client *Client) {
	room, ok := h.rooms[client.Room]
	if !ok {
		client.Room = ""
		return
	}
	room.RemoveClient(client)
	client.Room = ""

	if room.Empty() {
		delete(h.rooms, room.Name)
		h.log.Info().Str("room", room.Name).Msg("room is empty, forgotten")
		return
	}
	h.broadcastRoster(room)
}

func (h *Hub) broadcastRoster(room *Room) {
	room.Broadcast(&Event{
		Kind:  EventRoster,
		Room:  room.Name,
		Users: room.Roster(),
	})
}

func (h *Hub) requireRoom(client *Client) (*Room, bool) {
	room, ok := h.rooms[client.Room]
	if client.Room == "" || !ok {
		h.sendError(client, coreError(ErrCodeNotJoined, "join a room first"))
		return nil, false
	}
	return room, true
}

func (h *Hub) sendError(client *Client, cerr *CoreError) {
	select {
	case client.Events <- &Event{Kind: EventError, Error: cerr}:
	default:
	}
}
