package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/anant1857/canvaschat/internal/store"
)

// APIHandlers provides HTTP handlers for the REST collaborator
// endpoints: chat history retrieval and saved canvas artifacts. These
// sit next to the live relay but never synchronize with it.
type APIHandlers struct {
	store store.Store
	log   *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(st store.Store, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{store: st, log: logger}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse represents a chat message in API responses.
type MessageResponse struct {
	ID         int64  `json:"id"`
	Room       string `json:"roomId"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Text       string `json:"text"`
	CreatedAt  string `json:"createdAt"`
}

// ListMessages returns the chat history of a room, oldest first.
// GET /api/messages/:room
func (h *APIHandlers) ListMessages(c *gin.Context) {
	room := c.Param("room")
	if room == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "room is required"})
		return
	}

	messages, err := h.store.ListMessages(c.Request.Context(), room, 100)
	if err != nil {
		h.log.Error().Err(err).Str("room", room).Msg("failed to list messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]MessageResponse, 0, len(messages))
	for _, msg := range messages {
		response = append(response, MessageResponse{
			ID:         msg.ID,
			Room:       msg.Room,
			SenderID:   msg.SenderID,
			SenderName: msg.SenderName,
			Text:       msg.Text,
			CreatedAt:  msg.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	c.JSON(http.StatusOK, gin.H{"messages": response})
}

// SaveCanvasRequest represents the save canvas request body.
type SaveCanvasRequest struct {
	Title     string   `json:"title" binding:"required,min=1,max=128"`
	Room      string   `json:"roomId" binding:"required"`
	ImageData string   `json:"imageData" binding:"required"`
	Tags      []string `json:"tags"`
}

// CanvasResponse represents a saved canvas in API responses.
type CanvasResponse struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Room      string   `json:"roomId"`
	Tags      []string `json:"tags"`
	CreatedAt string   `json:"createdAt"`
}

// SaveCanvas persists a named canvas image.
// POST /api/canvas
func (h *APIHandlers) SaveCanvas(c *gin.Context) {
	var req SaveCanvasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid save canvas request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if !strings.HasPrefix(req.ImageData, "data:image/png;base64,") {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "imageData must be a png data url"})
		return
	}

	artifact, err := h.store.SaveArtifact(c.Request.Context(), store.Artifact{
		Title:     strings.TrimSpace(req.Title),
		Room:      req.Room,
		ImageData: req.ImageData,
		Tags:      req.Tags,
	})
	if err != nil {
		h.log.Error().Err(err).Str("room", req.Room).Msg("failed to save canvas")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Str("artifact_id", artifact.ID).Str("room", artifact.Room).Msg("canvas saved")
	c.JSON(http.StatusCreated, CanvasResponse{
		ID:        artifact.ID,
		Title:     artifact.Title,
		Room:      artifact.Room,
		Tags:      artifact.Tags,
		CreatedAt: artifact.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// ListCanvases returns the saved canvases of a room, newest first.
// GET /api/canvas?room=<room>
func (h *APIHandlers) ListCanvases(c *gin.Context) {
	room := c.Query("room")
	if room == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "room is required"})
		return
	}

	artifacts, err := h.store.ListArtifacts(c.Request.Context(), room)
	if err != nil {
		h.log.Error().Err(err).Str("room", room).Msg("failed to list canvases")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]CanvasResponse, 0, len(artifacts))
	for _, artifact := range artifacts {
		response = append(response, CanvasResponse{
			ID:        artifact.ID,
			Title:     artifact.Title,
			Room:      artifact.Room,
			Tags:      artifact.Tags,
			CreatedAt: artifact.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	c.JSON(http.StatusOK, gin.H{"canvases": response})
}
