package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"familyglitch/internal/model"
)

func completed(id, player string, tpl model.TemplateType, response string) model.Turn {
	return model.Turn{
		ID:           id,
		PlayerID:     player,
		TemplateType: tpl,
		Status:       model.TurnCompleted,
		Response:     json.RawMessage(response),
	}
}

func TestGetEligibleTurnsForPlayer(t *testing.T) {
	turns := []model.Turn{
		completed("own", "p1", model.TemplateTextArea, `{"text":"mine"}`),
		completed("good", "p2", model.TemplateTextArea, `{"text":"hello"}`),
		completed("empty-obj", "p2", model.TemplateTextArea, `{}`),
		completed("null", "p3", model.TemplateTextArea, `null`),
		completed("empty-str", "p3", model.TemplateTextArea, `""`),
		completed("missing", "p3", model.TemplateTextArea, ``),
		{ID: "pending", PlayerID: "p2", Status: model.TurnPending, Response: json.RawMessage(`{"text":"x"}`)},
		completed("good2", "p3", model.TemplateTimedBinary, `{"choice":"left"}`),
	}

	got := GetEligibleTurnsForPlayer(turns, "p1")
	ids := make([]string, len(got))
	for i, turn := range got {
		ids[i] = turn.ID
		require.NotEqual(t, "p1", turn.PlayerID)
		require.Equal(t, model.TurnCompleted, turn.Status)
	}
	require.Equal(t, []string{"good", "good2"}, ids)
}

func TestGetEligibleTurnsSkipsMiniGamePlays(t *testing.T) {
	played := completed("mg", "p2", model.TemplateMiniGame, `{"answer":"Jupiter"}`)
	played.MiniGame = model.MiniGameHardTrivia
	played.Prompt = "hard_trivia mini-game"
	turns := []model.Turn{
		completed("real", "p3", model.TemplateTimedBinary, `{"choice":"left"}`),
		played,
	}

	got := GetEligibleTurnsForPlayer(turns, "p1")
	require.Len(t, got, 1)
	require.Equal(t, "real", got[0].ID)

	picked := SelectTurnForTrivia(got, nil, fixedRand{0})
	require.NotNil(t, picked)
	require.Equal(t, "real", picked.ID)

	// a mini-game play alone does not open a data-gated game
	res := CheckEligibility(model.MiniGameTrivia, EligibilityContext{
		CurrentAct:      2,
		CurrentPlayerID: "p1",
		Turns:           []model.Turn{played},
	})
	require.False(t, res.Eligible)
}

func TestCheckEligibilityActGate(t *testing.T) {
	rich := []model.Turn{
		completed("a", "p2", model.TemplateTextArea, `{"text":"a"}`),
		completed("b", "p2", model.TemplateTextArea, `{"text":"b"}`),
		completed("c", "p3", model.TemplateTextArea, `{"text":"c"}`),
	}
	for _, player := range []string{"p1", "p2", "nobody"} {
		res := CheckEligibility(model.MiniGameTrivia, EligibilityContext{CurrentAct: 1, CurrentPlayerID: player, Turns: rich})
		require.False(t, res.Eligible)
		require.Equal(t, "Trivia challenges unlock in Act II", res.Reason)
	}
}

func TestCheckEligibilityDataGate(t *testing.T) {
	ctx := EligibilityContext{CurrentAct: 2, CurrentPlayerID: "p1", PlayerIDs: []string{"p1", "p2"}}

	ctx.Turns = []model.Turn{completed("own", "p1", model.TemplateTextArea, `{"text":"a"}`)}
	res := CheckEligibility(model.MiniGameTrivia, ctx)
	require.False(t, res.Eligible)
	require.NotEmpty(t, res.Reason)

	ctx.Turns = append(ctx.Turns, completed("other", "p2", model.TemplateTextArea, `{"text":"b"}`))
	res = CheckEligibility(model.MiniGameTrivia, ctx)
	require.True(t, res.Eligible)
	require.Len(t, res.EligibleTurns, 1)

	// personality match needs a richer pool
	res = CheckEligibility(model.MiniGamePersonalityMatch, ctx)
	require.False(t, res.Eligible)
	require.Contains(t, res.Reason, "3")
}

func TestCheckEligibilityStandalone(t *testing.T) {
	ctx := EligibilityContext{CurrentAct: 1, CurrentPlayerID: "p1"}
	require.True(t, CheckEligibility(model.MiniGameMadLibs, ctx).Eligible)
	require.True(t, CheckEligibility(model.MiniGameHardTrivia, ctx).Eligible)
	require.False(t, CheckEligibility(model.MiniGameTheFilter, ctx).Eligible)

	ctx.CurrentAct = 2
	require.True(t, CheckEligibility(model.MiniGameTheFilter, ctx).Eligible)
	require.True(t, CheckEligibility(model.MiniGameCrypticConnection, ctx).Eligible)
	require.False(t, CheckEligibility(model.MiniGameLightningRound, ctx).Eligible)
}

func TestCheckEligibilityUnknownType(t *testing.T) {
	res := CheckEligibility("darts", EligibilityContext{CurrentAct: 3})
	require.False(t, res.Eligible)
	require.Contains(t, res.Reason, "darts")
}

func TestAvailableMiniGames(t *testing.T) {
	res := AvailableMiniGames(EligibilityContext{CurrentAct: 3, CurrentPlayerID: "p1"})
	require.Len(t, res, len(MiniGameOrder))
	for i, r := range res {
		require.Equal(t, MiniGameOrder[i], r.GameType)
	}
	require.Len(t, Rules, len(MiniGameOrder))
}
