package ws

import (
	"net/http"

	"ChatHive/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type Handler struct {
	log      logger.Log
	hub      *Hub
	verifier TokenVerifier
	chat     MessageSender
	upgrader websocket.Upgrader
}

func NewHandler(l logger.Log, hub *Hub, verifier TokenVerifier, chat MessageSender, allowedOrigins []string) *Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return &Handler{
		log:      l,
		hub:      hub,
		verifier: verifier,
		chat:     chat,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

// Serve upgrades the request and runs the STOMP session until the peer
// disconnects. Authentication happens inside the session via the CONNECT
// frame, not at upgrade time.
func (h *Handler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Info("ws upgrade failed", logger.Err(err))
		return
	}

	session := NewSession(conn, h.hub, h.log, h.verifier, h.chat)
	session.Run(c.Request.Context())
}
