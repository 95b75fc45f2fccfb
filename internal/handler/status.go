package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Adri-2310/chatMulti/internal/hub"
)

// StatusHandler serves the read-only status API next to the WebSocket
// gateway.
type StatusHandler struct {
	hub     *hub.Hub
	profile string
}

func NewStatusHandler(h *hub.Hub, profile string) *StatusHandler {
	return &StatusHandler{hub: h, profile: profile}
}

func (h *StatusHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/rooms", h.ListRooms)
	}

	r.GET("/health", h.HealthCheck)
}

func (h *StatusHandler) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"profile": h.profile,
		"clients": h.hub.ClientCount(),
		"rooms":   h.hub.RoomCounts(),
	})
}

func (h *StatusHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
