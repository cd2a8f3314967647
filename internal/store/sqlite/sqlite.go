package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/anant1857/canvaschat/internal/store"
)

// SQLiteStore implements store.Store for SQLite. The same
// implementation backs the server collaborators (chat history, saved
// canvases) and the client's durable private layer.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	room        TEXT NOT NULL,
	sender_id   TEXT NOT NULL,
	sender_name TEXT NOT NULL,
	text        TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_messages_room ON messages(room, created_at);

CREATE TABLE IF NOT EXISTS artifacts (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	room       TEXT NOT NULL,
	image_data TEXT NOT NULL,
	tags       TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_artifacts_room ON artifacts(room, created_at DESC);

CREATE TABLE IF NOT EXISTS layer_snapshots (
	user_id    TEXT NOT NULL,
	layer      TEXT NOT NULL,
	image_data TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (user_id, layer)
);
`

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, nil)
}

// NewWithSetup creates a new SQLite store and runs an extra setup
// function after the schema is applied. Useful for tests to seed data.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== MessageStore implementation ====

// SaveMessage appends a chat message to the room's history.
func (s *SQLiteStore) SaveMessage(ctx context.Context, msg store.Message) (*store.Message, error) {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (room, sender_id, sender_name, text, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, msg.Room, msg.SenderID, msg.SenderName, msg.Text, msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}
	msg.ID = id
	return &msg, nil
}

// ListMessages returns up to limit messages for the room, oldest first.
func (s *SQLiteStore) ListMessages(ctx context.Context, room string, limit int) ([]store.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, room, sender_id, sender_name, text, created_at
		FROM (
			SELECT id, room, sender_id, sender_name, text, created_at
			FROM messages WHERE room = ?
			ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC
	`, room, limit)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]store.Message, 0)
	for rows.Next() {
		var msg store.Message
		if err := rows.Scan(&msg.ID, &msg.Room, &msg.SenderID, &msg.SenderName, &msg.Text, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// ==== ArtifactStore implementation ====

// SaveArtifact stores a named canvas image.
func (s *SQLiteStore) SaveArtifact(ctx context.Context, artifact store.Artifact) (*store.Artifact, error) {
	if artifact.ID == "" {
		artifact.ID = uuid.New().String()
	}
	if artifact.CreatedAt.IsZero() {
		artifact.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO artifacts (id, title, room, image_data, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, artifact.ID, artifact.Title, artifact.Room, artifact.ImageData, strings.Join(artifact.Tags, ","), artifact.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert artifact: %w", err)
	}
	return &artifact, nil
}

// ListArtifacts returns the saved canvases for a room, newest first.
func (s *SQLiteStore) ListArtifacts(ctx context.Context, room string) ([]store.Artifact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, room, image_data, tags, created_at
		FROM artifacts WHERE room = ?
		ORDER BY created_at DESC
	`, room)
	if err != nil {
		return nil, fmt.Errorf("query artifacts: %w", err)
	}
	defer rows.Close()

	artifacts := make([]store.Artifact, 0)
	for rows.Next() {
		var artifact store.Artifact
		var tags string
		if err := rows.Scan(&artifact.ID, &artifact.Title, &artifact.Room, &artifact.ImageData, &tags, &artifact.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		if tags != "" {
			artifact.Tags = strings.Split(tags, ",")
		}
		artifacts = append(artifacts, artifact)
	}
	return artifacts, rows.Err()
}

// ==== LayerStore implementation ====

// SaveLayer upserts the durable snapshot for (user, layer).
func (s *SQLiteStore) SaveLayer(ctx context.Context, userID, layer, imageData string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO layer_snapshots (user_id, layer, image_data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, layer) DO UPDATE SET
			image_data = excluded.image_data,
			updated_at = excluded.updated_at
	`, userID, layer, imageData, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert layer snapshot: %w", err)
	}
	return nil
}

// LoadLayer returns the stored snapshot for (user, layer). A missing
// snapshot returns an empty string, not an error.
func (s *SQLiteStore) LoadLayer(ctx context.Context, userID, layer string) (string, error) {
	var imageData string
	err := s.db.QueryRowContext(ctx, `
		SELECT image_data FROM layer_snapshots WHERE user_id = ? AND layer = ?
	`, userID, layer).Scan(&imageData)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query layer snapshot: %w", err)
	}
	return imageData, nil
}

// DeleteLayer removes the stored snapshot for (user, layer).
func (s *SQLiteStore) DeleteLayer(ctx context.Context, userID, layer string) error {
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM layer_snapshots WHERE user_id = ? AND layer = ?
	`, userID, layer); err != nil {
		return fmt.Errorf("delete layer snapshot: %w", err)
	}
	return nil
}
