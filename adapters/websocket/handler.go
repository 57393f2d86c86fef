package websocket

import (
	"github.com/labstack/echo/v4"
)

// Handler serves GET /ws. It blocks until the connection is closed.
func (s *Server) Handler(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := NewClient(conn, s.svc, c.Response().Header().Get(echo.HeaderXRequestID))
	s.hub.Register(client)
	defer s.hub.Unregister(client)

	client.Run()

	<-client.Context().Done()

	return nil
}
