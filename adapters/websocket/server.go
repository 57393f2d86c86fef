package websocket

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
)

// Replier is the slice of the chat service a websocket turn needs.
type Replier interface {
	Reply(ctx context.Context, message string) (string, error)
}

type Server struct {
	upgrader websocket.Upgrader
	svc      Replier
	hub      *Hub
}

func NewServer(svc Replier) *Server {
	return &Server{
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		svc:      svc,
		hub:      NewHub(),
	}
}

func (s *Server) GetHub() *Hub {
	return s.hub
}

// Close disconnects every open websocket. Hijacked connections are not
// touched by the HTTP server's own shutdown.
func (s *Server) Close() {
	s.hub.CloseAll()
}
