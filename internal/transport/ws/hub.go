package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Connection lifecycle messages; game events use the service message types
const (
	MsgScreenJoined MessageType = "screen_joined"
	MsgScreenLeft   MessageType = "screen_left"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans session events out to every screen watching that session
type Hub struct {
	// session -> connection ID -> conn
	conns map[string]map[string]*Connection

	mu sync.RWMutex

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	disconnect chan string
}

// Connection represents one screen attached to a session
type Connection struct {
	ID        string
	SessionID string
	Send      chan []byte
	Hub       *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	SessionID string
	Message   *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[string]map[string]*Connection),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		disconnect: make(chan string),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.SessionID] == nil {
				h.conns[conn.SessionID] = make(map[string]*Connection)
			}
			h.conns[conn.SessionID][conn.ID] = conn
			log.Printf("Screen %s connected to session %s", conn.ID, conn.SessionID)
			h.notifyScreens(conn.SessionID, MsgScreenJoined, conn.ID)
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if screens, ok := h.conns[conn.SessionID]; ok {
				if existing, ok := screens[conn.ID]; ok && existing == conn {
					delete(screens, conn.ID)
					close(conn.Send)
					log.Printf("Screen %s disconnected from session %s", conn.ID, conn.SessionID)
					if len(screens) == 0 {
						delete(h.conns, conn.SessionID)
					} else {
						h.notifyScreens(conn.SessionID, MsgScreenLeft, conn.ID)
					}
				}
			}
			h.mu.Unlock()

		case sessionID := <-h.disconnect:
			h.mu.Lock()
			for _, conn := range h.conns[sessionID] {
				close(conn.Send)
			}
			if n := len(h.conns[sessionID]); n > 0 {
				log.Printf("Closed %d screens for session %s", n, sessionID)
			}
			delete(h.conns, sessionID)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)
			for _, conn := range h.conns[msg.SessionID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToSession sends an event to every screen of a session (implements service.Broadcaster)
func (h *Hub) BroadcastToSession(sessionID string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to encode %s event: %v", msgType, err)
		return
	}
	h.broadcast <- &BroadcastMessage{
		SessionID: sessionID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// DisconnectSession closes every screen of a session (implements service.Broadcaster)
func (h *Hub) DisconnectSession(sessionID string) {
	h.disconnect <- sessionID
}

// Screens returns how many screens are attached to a session
func (h *Hub) Screens(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[sessionID])
}

// notifyScreens tells the other screens of a session that one came or went;
// callers hold h.mu
func (h *Hub) notifyScreens(sessionID string, msgType MessageType, connID string) {
	payload, _ := json.Marshal(map[string]string{"screenId": connID})
	data, _ := json.Marshal(&Message{Type: msgType, Payload: payload})
	for id, conn := range h.conns[sessionID] {
		if id == connID {
			continue
		}
		select {
		case conn.Send <- data:
		default:
		}
	}
}
