package core

// Client is one connected participant as seen by the hub. ID is the
// connection identity; UserID and Username arrive with the join frame.
type Client struct {
	ID       string
	UserID   string
	Username string
	Room     string
	Commands chan *Command
	Events   chan *Event
}

// NewClient constructs a client with initialized channels. The event
// buffer absorbs fan-out bursts; slow consumers drop frames rather
// than stall the room.
func NewClient(id string) *Client {
	return &Client{
		ID:       id,
		Commands: make(chan *Command, 16),
		Events:   make(chan *Event, 64),
	}
}
