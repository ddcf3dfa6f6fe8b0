package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"familyglitch/internal/game"
	"familyglitch/internal/model"
)

func createSession(t *testing.T, h *harness, names ...string) *model.Session {
	t.Helper()
	req := &model.CreateSessionRequest{}
	for _, n := range names {
		req.Players = append(req.Players, model.CreatePlayer{Name: n})
	}
	resp, err := h.sessions.Create(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	return resp.Session
}

// answeredTurn records and completes a free-text turn for player
func answeredTurn(t *testing.T, h *harness, sessionID, playerID, answer string) *model.Turn {
	t.Helper()
	ctx := context.Background()
	turn, err := h.sessions.RecordTurn(ctx, sessionID, playerID, model.TemplateTextArea, "What did you eat?", nil)
	require.NoError(t, err)
	resp, _ := json.Marshal(map[string]string{"text": answer})
	done, err := h.sessions.CompleteTurn(ctx, sessionID, turn.ID, &model.CompleteTurnRequest{Response: resp})
	require.NoError(t, err)
	return done
}

func TestSessionCreate(t *testing.T) {
	h := newHarness()
	s := createSession(t, h, "Ana", "Ben", "Cy")

	require.Equal(t, model.MinAct, s.Act)
	require.Equal(t, model.SessionActive, s.Status)
	require.Len(t, s.Players, 3)

	board, err := h.sessions.Scoreboard(context.Background(), s.ID)
	require.NoError(t, err)
	require.Len(t, board, 3)
	for _, e := range board {
		require.Zero(t, e.Score)
	}
}

func TestSessionCreateRejectsBadRoster(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	tests := []struct {
		name  string
		names []string
	}{
		{"too few", []string{"Ana"}},
		{"too many", []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"}},
		{"blank name", []string{"Ana", "  "}},
		{"duplicate name", []string{"Ana", "ana"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &model.CreateSessionRequest{}
			for _, n := range tt.names {
				req.Players = append(req.Players, model.CreatePlayer{Name: n})
			}
			_, err := h.sessions.Create(ctx, req)
			require.ErrorIs(t, err, ErrInvalidRoster)
		})
	}
}

func TestSessionGetUnknown(t *testing.T) {
	h := newHarness()
	_, err := h.sessions.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCompleteTurnOnlyOnce(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	s := createSession(t, h, "Ana", "Ben")

	turn, err := h.sessions.RecordTurn(ctx, s.ID, s.Players[0].ID, model.TemplateTimedBinary, "Cats or dogs?", nil)
	require.NoError(t, err)
	require.Equal(t, model.TurnPending, turn.Status)

	score := 3
	req := &model.CompleteTurnRequest{Response: json.RawMessage(`{"choice":"left"}`), Score: &score}
	done, err := h.sessions.CompleteTurn(ctx, s.ID, turn.ID, req)
	require.NoError(t, err)
	require.True(t, done.IsCompleted())
	require.NotNil(t, done.CompletedAt)

	_, err = h.sessions.CompleteTurn(ctx, s.ID, turn.ID, req)
	require.ErrorIs(t, err, ErrTurnCompleted)

	_, err = h.sessions.CompleteTurn(ctx, s.ID, "nope", req)
	require.ErrorIs(t, err, ErrTurnNotFound)

	board, err := h.sessions.Scoreboard(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, s.Players[0].ID, board[0].PlayerID)
	require.Equal(t, 3, board[0].Score)
	require.Equal(t, 1, board[0].Rank)

	require.Contains(t, h.events.Types(), MsgTurnRecorded)
	require.Contains(t, h.events.Types(), MsgTurnCompleted)
	require.Contains(t, h.events.Types(), MsgScoreUpdate)

	ev, ok := h.events.Last(MsgScoreUpdate)
	require.True(t, ok)
	payload := ev.Payload.(map[string]any)
	require.Equal(t, 3, payload["total"])
	require.Equal(t, int64(1), payload["rank"])
}

func TestCompleteTurnRejectsEmptyResponse(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	s := createSession(t, h, "Ana", "Ben")

	turn, err := h.sessions.RecordTurn(ctx, s.ID, s.Players[0].ID, model.TemplateTextArea, "Why?", nil)
	require.NoError(t, err)

	_, err = h.sessions.CompleteTurn(ctx, s.ID, turn.ID, &model.CompleteTurnRequest{})
	require.ErrorIs(t, err, ErrEmptyResponse)
}

func TestRecordTurnUnknownPlayer(t *testing.T) {
	h := newHarness()
	s := createSession(t, h, "Ana", "Ben")

	_, err := h.sessions.RecordTurn(context.Background(), s.ID, "ghost", model.TemplateTextArea, "Hi", nil)
	require.ErrorIs(t, err, ErrUnknownPlayer)
}

func TestSetActForwardOnly(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	s := createSession(t, h, "Ana", "Ben")

	got, err := h.sessions.SetAct(ctx, s.ID, 2)
	require.NoError(t, err)
	require.Equal(t, 2, got.Act)

	got, err = h.sessions.SetAct(ctx, s.ID, 2)
	require.NoError(t, err)
	require.Equal(t, 2, got.Act)

	_, err = h.sessions.SetAct(ctx, s.ID, 1)
	require.ErrorIs(t, err, ErrInvalidAct)
	_, err = h.sessions.SetAct(ctx, s.ID, 4)
	require.ErrorIs(t, err, ErrInvalidAct)

	var acts int
	for _, typ := range h.events.Types() {
		if typ == MsgActChanged {
			acts++
		}
	}
	require.Equal(t, 1, acts)
}

func TestEndSession(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	s := createSession(t, h, "Ana", "Ben")

	ended, err := h.sessions.End(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, model.SessionEnded, ended.Status)
	require.Equal(t, []string{s.ID}, h.events.Disconnected())

	_, err = h.sessions.RecordTurn(ctx, s.ID, s.Players[0].ID, model.TemplateTextArea, "Hi", nil)
	require.ErrorIs(t, err, ErrSessionEnded)
	_, err = h.sessions.End(ctx, s.ID)
	require.ErrorIs(t, err, ErrSessionEnded)
}

func TestStateLoadsTurnsAndScoreboard(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	s := createSession(t, h, "Ana", "Ben")
	answeredTurn(t, h, s.ID, s.Players[1].ID, "pizza")

	state, err := h.sessions.State(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, s.ID, state.Session.ID)
	require.Len(t, state.Turns, 1)
	require.Len(t, state.Scoreboard, 2)
}

func TestMiniGamesHidesSourceTurns(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	s := createSession(t, h, "Ana", "Ben")
	_, err := h.sessions.SetAct(ctx, s.ID, 2)
	require.NoError(t, err)
	answeredTurn(t, h, s.ID, s.Players[1].ID, "pizza")

	results, err := h.sessions.MiniGames(ctx, s.ID, s.Players[0].ID)
	require.NoError(t, err)
	require.Len(t, results, len(game.MiniGameOrder))

	byType := map[model.MiniGameType]bool{}
	for _, r := range results {
		require.Nil(t, r.EligibleTurns)
		byType[r.GameType] = r.Eligible
	}
	require.True(t, byType[model.MiniGameTrivia])
	require.False(t, byType[model.MiniGamePersonalityMatch])
	require.False(t, byType[model.MiniGameLightningRound])
	require.True(t, byType[model.MiniGameMadLibs])
}
