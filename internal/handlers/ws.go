package handlers

import (
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tutorhub/backend/internal/middleware"
	"github.com/tutorhub/backend/internal/realtime"
)

type WSHandler struct {
	hub *realtime.Hub
}

func NewWSHandler(hub *realtime.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Connect upgrades the request to a websocket and registers it with the hub.
// The session token may come from the "token" query parameter (browser
// websocket clients cannot set headers) or the Authorization header.
// Anonymous connections are allowed; they just cannot vote.
func (h *WSHandler) Connect(c *gin.Context) {
	userID := 0
	if token := wsToken(c); token != "" {
		claims, err := middleware.ParseToken(token)
		if err != nil {
			log.Printf("Ignoring invalid websocket token: %v", err)
		} else {
			userID = claims.UserID
		}
	}

	if err := h.hub.HandleConnection(c.Writer, c.Request, userID); err != nil {
		// Upgrade failures already wrote the HTTP response.
		log.Printf("Websocket upgrade failed: %v", err)
	}
}

func wsToken(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	return strings.TrimPrefix(header, "Bearer ")
}
