package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// writeWait bounds how long a single frame write may block. A peer that
// stops draining its socket fails the send instead of wedging the hub.
const writeWait = 10 * time.Second

// WSSubscriber adapts a websocket connection to the hub. gorilla/websocket
// allows one concurrent writer; the mutex enforces that.
type WSSubscriber struct {
	mu sync.Mutex
	ws *websocket.Conn
}

// NewWSSubscriber wraps ws.
func NewWSSubscriber(ws *websocket.Conn) *WSSubscriber {
	return &WSSubscriber{ws: ws}
}

// Send writes v as a JSON frame.
func (s *WSSubscriber) Send(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return s.ws.WriteJSON(v)
}

// Close closes the underlying connection.
func (s *WSSubscriber) Close() error {
	return s.ws.Close()
}

// ReadLoop blocks discarding inbound frames (clients may send keep-alives)
// until the peer disconnects or a read fails.
func (s *WSSubscriber) ReadLoop() {
	for {
		if _, _, err := s.ws.ReadMessage(); err != nil {
			return
		}
	}
}
