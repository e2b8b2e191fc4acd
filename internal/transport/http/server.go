package http

import (
	stdhttp "net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatroomai/internal/config"
	"github.com/vovakirdan/chatroomai/internal/core"
)

// NewServer builds the HTTP server: health, WebSocket, room API and static assets.
func NewServer(hub core.Hub, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", healthHandler)
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, WSOptions{
		ClientBuffer:      cfg.ClientBuffer,
		MaxMessageBytes:   cfg.MaxMessageBytes,
		MessagesPerMinute: cfg.MessagesPerMinute,
	}, logger)))

	roomHandlers := NewRoomHandlers(hub, logger)
	api := router.Group("/api")
	{
		api.GET("/rooms", roomHandlers.ListRooms)
		api.GET("/rooms/:room", roomHandlers.GetRoom)
	}

	if dir := cfg.StaticDir; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			router.NoRoute(gin.WrapH(stdhttp.FileServer(stdhttp.Dir(dir))))
			logger.Info().Str("dir", dir).Msg("serving static assets")
		} else {
			logger.Debug().Str("dir", dir).Msg("static dir not found, assets disabled")
		}
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
