package core

import "sort"

// Room groups the participants of one synchronization scope. It exists
// only while it has members; the hub forgets empty rooms. seq is the
// per-room monotonic counter stamped on every shared-layer event so
// receivers can discard segments older than the last clear they applied.
type Room struct {
	Name    string
	clients map[*Client]struct{}
	seq     uint64
}

// NewRoom constructs a room with no clients.
func NewRoom(name string) *Room {
	return &Room{
		Name:    name,
		clients: make(map[*Client]struct{}),
	}
}

// AddClient inserts a client into the room. Returns true if newly added.
func (r *Room) AddClient(c *Client) bool {
	if _, exists := r.clients[c]; exists {
		return false
	}
	r.clients[c] = struct{}{}
	return true
}

// RemoveClient deletes a client from the room. Returns true if removed.
func (r *Room) RemoveClient(c *Client) bool {
	if _, exists := r.clients[c]; !exists {
		return false
	}
	delete(r.clients, c)
	return true
}

// NextSeq advances and returns the room's sequence counter.
func (r *Room) NextSeq() uint64 {
	r.seq++
	return r.seq
}

// Broadcast sends an event to every client in the room.
func (r *Room) Broadcast(event *Event) {
	for client := range r.clients {
		select {
		case client.Events <- event:
		default:
			// Drop if slow consumer.
		}
	}
}

// BroadcastExcept sends an event to every client except the sender.
// This is the relay fan-out rule: events never echo back to their origin.
func (r *Room) BroadcastExcept(sender *Client, event *Event) {
	for client := range r.clients {
		if client == sender {
			continue
		}
		select {
		case client.Events <- event:
		default:
			// Drop if slow consumer.
		}
	}
}

// FindByID returns the room member with the given connection id.
func (r *Room) FindByID(id string) *Client {
	for client := range r.clients {
		if client.ID == id {
			return client
		}
	}
	return nil
}

// Roster returns the members' usernames in stable order.
func (r *Room) Roster() []RosterEntry {
	entries := make([]RosterEntry, 0, len(r.clients))
	for client := range r.clients {
		entries = append(entries, RosterEntry{Username: client.Username})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Username < entries[j].Username })
	return entries
}

// Empty returns true if no clients are in the room.
func (r *Room) Empty() bool {
	return len(r.clients) == 0
}
