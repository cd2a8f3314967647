package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/anant1857/canvaschat/internal/config"
	"github.com/anant1857/canvaschat/internal/core"
	"github.com/anant1857/canvaschat/internal/store"
)

// NewServer builds the HTTP server: the WebSocket relay endpoint plus
// the REST collaborator surface (chat history, saved canvases).
func NewServer(hub *core.Hub, st store.Store, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(LoggerMiddleware(logger), gin.Recovery())

	engine.GET("/health", healthHandler)
	engine.GET("/ws", gin.WrapH(NewWSHandler(hub, logger)))

	api := NewAPIHandlers(st, logger)
	apiGroup := engine.Group("/api")
	{
		apiGroup.GET("/messages/:room", api.ListMessages)
		apiGroup.POST("/canvas", api.SaveCanvas)
		apiGroup.GET("/canvas", api.ListCanvases)
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           engine,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
