package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newConn(h *Hub, sessionID, id string) *Connection {
	return &Connection{ID: id, SessionID: sessionID, Send: make(chan []byte, 16), Hub: h}
}

func receive(t *testing.T, c *Connection) (Message, bool) {
	t.Helper()
	select {
	case data, ok := <-c.Send:
		if !ok {
			return Message{}, false
		}
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg, true
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}, false
	}
}

func TestHubBroadcastScopedToSession(t *testing.T) {
	h := NewHub()
	a := newConn(h, "s1", "a")
	b := newConn(h, "s2", "b")
	h.Register(a)
	h.Register(b)

	h.BroadcastToSession("s1", "score_update", map[string]int{"total": 3})

	msg, ok := receive(t, a)
	require.True(t, ok)
	require.Equal(t, MessageType("score_update"), msg.Type)
	require.JSONEq(t, `{"total":3}`, string(msg.Payload))

	select {
	case <-b.Send:
		t.Fatal("other session must not receive the event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubNotifiesOtherScreens(t *testing.T) {
	h := NewHub()
	a := newConn(h, "s1", "a")
	h.Register(a)
	h.Register(newConn(h, "s1", "b"))

	msg, ok := receive(t, a)
	require.True(t, ok)
	require.Equal(t, MsgScreenJoined, msg.Type)
	require.JSONEq(t, `{"screenId":"b"}`, string(msg.Payload))
	require.Equal(t, 2, h.Screens("s1"))
}

func TestHubDisconnectSession(t *testing.T) {
	h := NewHub()
	a := newConn(h, "s1", "a")
	h.Register(a)

	h.DisconnectSession("s1")

	_, ok := receive(t, a)
	require.False(t, ok)
	require.Zero(t, h.Screens("s1"))

	// late unregister from the read pump is a no-op
	h.Unregister(a)
}
