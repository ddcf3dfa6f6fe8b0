package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"familyglitch/internal/model"
	"familyglitch/internal/service"
	"familyglitch/internal/testutil"
)

func TestSessionWS(t *testing.T) {
	auth := service.NewAuthService("secret", time.Hour)
	sessions := service.NewSessionService(testutil.NewSessionRepo(), &testutil.TurnRepo{}, &testutil.SessionCache{}, &testutil.Leaderboard{}, auth)
	created, err := sessions.Create(context.Background(), &model.CreateSessionRequest{
		Players: []model.CreatePlayer{{Name: "Ana"}, {Name: "Ben"}},
	})
	require.NoError(t, err)

	hub := NewHub()
	sessions.SetBroadcaster(hub)

	r := mux.NewRouter()
	r.HandleFunc("/v1/ws/sessions/{id}", NewHandler(hub, auth, sessions).SessionWS)
	srv := httptest.NewServer(r)
	defer srv.Close()

	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws/sessions/" + created.Session.ID

	_, resp, err := websocket.DefaultDialer.Dial(base, nil)
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	other, err := auth.GenerateSessionToken("someone-else")
	require.NoError(t, err)
	_, resp, err = websocket.DefaultDialer.Dial(base+"?token="+other, nil)
	require.Error(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(base+"?token="+created.Token, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Screens(created.Session.ID) == 1 }, time.Second, 10*time.Millisecond)

	_, err = sessions.SetAct(context.Background(), created.Session.ID, 2)
	require.NoError(t, err)

	var msg Message
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, MessageType(service.MsgActChanged), msg.Type)
	require.JSONEq(t, `{"act":2}`, string(msg.Payload))
}
