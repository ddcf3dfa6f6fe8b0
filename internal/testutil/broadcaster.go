package testutil

import "sync"

// Event is one recorded broadcast
type Event struct {
	SessionID string
	Type      string
	Payload   interface{}
}

// Broadcaster records session events instead of sending them
type Broadcaster struct {
	mu           sync.Mutex
	events       []Event
	disconnected []string
}

func (b *Broadcaster) BroadcastToSession(sessionID, msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, Event{sessionID, msgType, payload})
}

func (b *Broadcaster) DisconnectSession(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disconnected = append(b.disconnected, sessionID)
}

// Types lists the recorded event types in order
func (b *Broadcaster) Types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, e := range b.events {
		out[i] = e.Type
	}
	return out
}

// Last returns the most recent event of msgType
func (b *Broadcaster) Last(msgType string) (Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.events) - 1; i >= 0; i-- {
		if b.events[i].Type == msgType {
			return b.events[i], true
		}
	}
	return Event{}, false
}

// Count is how many events of msgType were recorded
func (b *Broadcaster) Count(msgType string) int {
	n := 0
	for _, t := range b.Types() {
		if t == msgType {
			n++
		}
	}
	return n
}

// Disconnected lists sessions whose connections were dropped
func (b *Broadcaster) Disconnected() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.disconnected...)
}
