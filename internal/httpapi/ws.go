package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"uniattend/internal/auth"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// watchableTopic limits subscriptions to the topics this API publishes.
func watchableTopic(topic string) bool {
	for _, prefix := range []string{"subjects:", "roster:", "session:"} {
		if strings.HasPrefix(topic, prefix) {
			return true
		}
	}
	return false
}

// Watch upgrades to a websocket and streams change events for one topic.
// Browsers cannot set an Authorization header on websocket dials, so the
// token rides in the query string. The subscription is torn down when either
// side closes the connection.
func (h *Handler) Watch(c *gin.Context) {
	if _, err := auth.Parse(c.Query("token"), h.cfg.JWTSigningKey, h.cfg.JWTIssuer); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	topic := c.Query("topic")
	if !watchableTopic(topic) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown topic"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}

	// The request context ends with the handler; the stream outlives it.
	ctx, cancel := context.WithCancel(context.Background())
	sub, err := h.hub.Subscribe(ctx, topic)
	if err != nil {
		cancel()
		_ = conn.WriteJSON(gin.H{"error": "subscribe failed"})
		_ = conn.Close()
		return
	}

	go func() {
		defer func() {
			cancel()
			sub.Close()
			_ = conn.Close()
		}()
		for evt := range sub.C {
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		}
	}()

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				sub.Close()
				return
			}
		}
	}()
}
