package bridge

import (
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"
)

const clientBacklog = 16

// Hub streams event messages to websocket clients.
type Hub struct {
	lock    sync.Mutex
	clients map[*websocket.Conn]chan []byte
}

// NewHub creates a Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]chan []byte)}
}

// Handler returns the websocket endpoint.
func (h *Hub) Handler() websocket.Handler {
	return websocket.Handler(h.serve)
}

// Broadcast sends msg to every client. A client too slow to keep up
// misses the message.
func (h *Hub) Broadcast(msg []byte) {
	h.lock.Lock()
	defer h.lock.Unlock()
	for conn, ch := range h.clients {
		select {
		case ch <- msg:
		default:
			glog.Warningf("websocket %s: slow client, message dropped", conn.Request().RemoteAddr)
		}
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.clients)
}

func (h *Hub) serve(conn *websocket.Conn) {
	ch := make(chan []byte, clientBacklog)
	h.lock.Lock()
	h.clients[conn] = ch
	h.lock.Unlock()
	defer func() {
		h.lock.Lock()
		delete(h.clients, conn)
		h.lock.Unlock()
	}()

	// reads only detect the client going away
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		var discard []byte
		for websocket.Message.Receive(conn, &discard) == nil {
		}
	}()

	for {
		select {
		case <-closed:
			return
		case msg := <-ch:
			if err := websocket.Message.Send(conn, string(msg)); err != nil {
				glog.V(2).Infof("websocket %s: %v", conn.Request().RemoteAddr, err)
				return
			}
		}
	}
}
