package game

import (
	"math/rand/v2"

	"familyglitch/internal/model"
)

const (
	richTemplateBonus = 10.0 // anything but a timed binary
	textTemplateBonus = 5.0  // free text or multi field
	maxJitter         = 5.0
)

// Rand is the random source used for selection jitter
type Rand interface {
	Float64() float64
}

// NewRand returns a deterministic source for seed
func NewRand(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// DefaultRand draws from the process-wide source
var DefaultRand Rand = globalRand{}

// SelectTurnForTrivia picks the richest unused turn from eligible, allowing
// repeats once every turn has been used. Returns nil only for an empty pool.
func SelectTurnForTrivia(eligible []model.Turn, usedTurnIDs map[string]bool, rng Rand) *model.Turn {
	if len(eligible) == 0 {
		return nil
	}
	if rng == nil {
		rng = DefaultRand
	}

	pool := make([]int, 0, len(eligible))
	for i, t := range eligible {
		if !usedTurnIDs[t.ID] {
			pool = append(pool, i)
		}
	}
	if len(pool) == 0 {
		for i := range eligible {
			pool = append(pool, i)
		}
	}

	best := -1
	bestScore := -1.0
	for _, i := range pool {
		s := turnScore(eligible[i]) + rng.Float64()*maxJitter
		if s > bestScore {
			best, bestScore = i, s
		}
	}

	picked := eligible[best]
	return &picked
}

func turnScore(t model.Turn) float64 {
	score := 0.0
	if t.TemplateType != model.TemplateTimedBinary {
		score += richTemplateBonus
	}
	if t.TemplateType == model.TemplateTextArea || t.TemplateType == model.TemplateMultiField {
		score += textTemplateBonus
	}
	return score
}
