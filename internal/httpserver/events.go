package httpserver

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// events streams transcript turn events to a websocket client as they
// are appended. Slow clients miss events rather than stalling the
// session.
func (h Handlers) events(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	turns, cancel := h.Sessions.Subscribe()
	defer cancel()

	// Read pump: we never expect client messages, but reading is the
	// only way to notice the peer closing the connection.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-turns:
			if !ok {
				return nil
			}
			if err := conn.WriteJSON(ev); err != nil {
				log.Printf("events: write failed: %v", err)
				return nil
			}
		case <-done:
			return nil
		}
	}
}
