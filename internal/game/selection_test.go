package game

import (
	"testing"

	"github.com/stretchr/testify/require"

	"familyglitch/internal/model"
)

type fixedRand struct{ v float64 }

func (r fixedRand) Float64() float64 { return r.v }

func pool() []model.Turn {
	return []model.Turn{
		completed("binary", "p2", model.TemplateTimedBinary, `{"choice":"left"}`),
		completed("slider", "p2", model.TemplateSlider, `{"value":7}`),
		completed("text", "p3", model.TemplateTextArea, `{"text":"long answer"}`),
	}
}

func TestSelectTurnForTriviaPrefersRichTemplates(t *testing.T) {
	got := SelectTurnForTrivia(pool(), nil, fixedRand{0})
	require.NotNil(t, got)
	require.Equal(t, "text", got.ID)
}

func TestSelectTurnForTriviaSkipsUsed(t *testing.T) {
	got := SelectTurnForTrivia(pool(), map[string]bool{"text": true}, fixedRand{0})
	require.Equal(t, "slider", got.ID)
}

func TestSelectTurnForTriviaFallsBackToRepeats(t *testing.T) {
	used := map[string]bool{"binary": true, "slider": true, "text": true}
	got := SelectTurnForTrivia(pool(), used, fixedRand{0.5})
	require.NotNil(t, got)
	require.Equal(t, "text", got.ID)
}

func TestSelectTurnForTriviaEmptyPool(t *testing.T) {
	require.Nil(t, SelectTurnForTrivia(nil, nil, fixedRand{0}))
}

func TestSelectTurnForTriviaStaysInPool(t *testing.T) {
	rng := NewRand(42)
	eligible := pool()
	ids := map[string]bool{}
	for _, turn := range eligible {
		ids[turn.ID] = true
	}
	for i := 0; i < 200; i++ {
		got := SelectTurnForTrivia(eligible, map[string]bool{"text": i%2 == 0}, rng)
		require.NotNil(t, got)
		require.True(t, ids[got.ID])
	}
}

// jitter below the bonus gap can reorder equal-tier turns but never lets a
// binary turn beat a richer one
func TestSelectTurnForTriviaJitterVariety(t *testing.T) {
	eligible := []model.Turn{
		completed("a", "p2", model.TemplateSlider, `{"value":1}`),
		completed("b", "p3", model.TemplateWordGrid, `{"words":["x"]}`),
		completed("c", "p3", model.TemplateTimedBinary, `{"choice":"right"}`),
	}
	seen := map[string]bool{}
	rng := NewRand(7)
	for i := 0; i < 100; i++ {
		seen[SelectTurnForTrivia(eligible, nil, rng).ID] = true
	}
	require.True(t, seen["a"])
	require.True(t, seen["b"])
	require.False(t, seen["c"])
}
