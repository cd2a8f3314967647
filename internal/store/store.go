package store

import (
	"context"
	"time"
)

// Message is a persisted chat message. Persistence is an external
// collaborator of the relay: the hub appends best-effort and the REST
// surface serves history, but the live protocol never depends on it.
type Message struct {
	ID         int64
	Room       string
	SenderID   string
	SenderName string
	Text       string
	CreatedAt  time.Time
}

// Artifact is a saved canvas image (title, room, PNG data URL, tags).
type Artifact struct {
	ID        string
	Title     string
	Room      string
	ImageData string
	Tags      []string
	CreatedAt time.Time
}

// MessageStore persists and retrieves chat history per room.
type MessageStore interface {
	SaveMessage(ctx context.Context, msg Message) (*Message, error)
	// ListMessages returns up to limit messages for the room, oldest first.
	ListMessages(ctx context.Context, room string, limit int) ([]Message, error)
}

// ArtifactStore persists named canvas snapshots on explicit save.
type ArtifactStore interface {
	SaveArtifact(ctx context.Context, artifact Artifact) (*Artifact, error)
	ListArtifacts(ctx context.Context, room string) ([]Artifact, error)
}

// LayerStore holds the durable per-user private layer, keyed by
// (user, layer). A missing snapshot is not an error: LoadLayer returns
// an empty string and the caller starts from a blank surface.
type LayerStore interface {
	SaveLayer(ctx context.Context, userID, layer, imageData string) error
	LoadLayer(ctx context.Context, userID, layer string) (string, error)
	DeleteLayer(ctx context.Context, userID, layer string) error
}

// Store combines all persistence concerns behind one handle.
type Store interface {
	MessageStore
	ArtifactStore
	LayerStore
	Close() error
}
