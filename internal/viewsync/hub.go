package viewsync

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/ifcview/internal/logger"
)

const (
	writeWait   = 10 * time.Second
	sendBacklog = 16
)

type member struct {
	conn *websocket.Conn
	addr string
	send chan Message
}

// Hub relays viewpoints between clients in the same room. The room is the
// request path, so ws://host/rooms/review and ws://host/rooms/qa are
// separate.
type Hub struct {
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	rooms map[string]map[*member]struct{}

	log *zap.Logger
}

// NewHub creates an empty hub accepting any origin.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		rooms: make(map[string]map[*member]struct{}),
		log:   logger.Named("hub"),
	}
}

// ServeHTTP upgrades the request and serves the member until it leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	room := strings.Trim(r.URL.Path, "/")
	if room == "" {
		http.Error(w, "room required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade failed", zap.Error(err))
		return
	}

	m := &member{
		conn: conn,
		addr: r.RemoteAddr,
		send: make(chan Message, sendBacklog),
	}
	h.join(room, m)
	defer h.leave(room, m)

	done := make(chan struct{})
	defer close(done)
	go m.writeLoop(done)

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("read failed", zap.String("room", room), zap.Error(err))
			}
			return
		}
		if msg.Type != TypeViewpoint || msg.Viewpoint == nil {
			h.log.Debug("ignoring message", zap.String("type", msg.Type))
			continue
		}
		if msg.From == "" {
			msg.From = m.addr
		}
		h.broadcast(room, m, msg)
	}
}

func (m *member) writeLoop(done <-chan struct{}) {
	defer m.conn.Close()
	for {
		select {
		case <-done:
			return
		case msg := <-m.send:
			m.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := m.conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}

func (h *Hub) join(room string, m *member) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*member]struct{})
		h.rooms[room] = members
	}
	members[m] = struct{}{}
	h.log.Info("member joined", zap.String("room", room), zap.String("addr", m.addr), zap.Int("members", len(members)))
}

func (h *Hub) leave(room string, m *member) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members := h.rooms[room]
	delete(members, m)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
	h.log.Info("member left", zap.String("room", room), zap.String("addr", m.addr))
}

// broadcast queues msg for every member of room except from. Members that
// fall behind lose the message.
func (h *Hub) broadcast(room string, from *member, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for m := range h.rooms[room] {
		if m == from {
			continue
		}
		select {
		case m.send <- msg:
		default:
			h.log.Warn("member backlog full, dropping viewpoint", zap.String("addr", m.addr))
		}
	}
}

// Members returns the number of members in room.
func (h *Hub) Members(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[strings.Trim(room, "/")])
}
