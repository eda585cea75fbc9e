package api

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"tradesim/internal/model"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	EnableCompression: true,
}

const writeTimeout = 5 * time.Second

// hub fans closed candles out to connected WebSocket clients.
// A client that cannot keep up is dropped, never waited on.
type hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func newHub() *hub {
	return &hub{clients: make(map[*websocket.Conn]bool)}
}

func (h *hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = true
	n := len(h.clients)
	h.mu.Unlock()
	log.Printf("[stream] client connected (%d total)", n)
}

func (h *hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

func (h *hub) broadcast(c model.Candle) {
	payload := c.JSON()

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("[stream] dropping client: %v", err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

// BroadcastCandle pushes a candle to all connected stream clients.
// Called by the feed fan-out in the paper trader.
func (s *Server) BroadcastCandle(c model.Candle) {
	s.hub.broadcast(c)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[stream] upgrade error: %v", err)
		return
	}
	s.hub.add(conn)

	// Reader loop detects disconnects; inbound messages are ignored.
	go func() {
		defer s.hub.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
