package minigame

import (
	"encoding/json"
	"fmt"
	"strings"

	"familyglitch/internal/model"
)

const (
	filterAnswerKey = 8
	filterTricks    = 5
)

// FilterPuzzle asks the player to keep only words matching a criterion
type FilterPuzzle struct {
	Criterion  string   `json:"criterion"`
	AnswerKey  []string `json:"answer_key"`
	TrickWords []string `json:"trick_words"`
	Explainer  string   `json:"explainer,omitempty"`
}

// Words returns the displayed grid, answer key first
func (p FilterPuzzle) Words() []string {
	return append(append([]string{}, p.AnswerKey...), p.TrickWords...)
}

type filterSubmission struct {
	Selected []string `json:"selected"`
}

// TheFilter is scored in code: a point per match, minus a point per trick word
type TheFilter struct{}

func (TheFilter) Type() model.MiniGameType { return model.MiniGameTheFilter }

func (TheFilter) GeneratorPrompt(in GenerateInput) string {
	return fmt.Sprintf(`You are the host of Family Glitch. Build a "filter" round for %s.

Pick a criterion (e.g. "things that are yellow"). Give exactly %d words that match it and exactly %d trick words that look like they match but do not. No word may appear in both lists.
%s
{"criterion": "...", "answer_key": ["8 words"], "trick_words": ["5 words"], "explainer": "why the tricks fail"}`,
		in.Player.Name, filterAnswerKey, filterTricks, jsonOnly)
}

func (TheFilter) ParsePuzzle(raw string) (json.RawMessage, error) {
	var p FilterPuzzle
	if err := DecodeJSON(raw, &p); err != nil {
		return nil, err
	}
	p.Criterion = strings.TrimSpace(p.Criterion)
	p.AnswerKey = trimAll(p.AnswerKey)
	p.TrickWords = trimAll(p.TrickWords)

	if p.Criterion == "" {
		return nil, invalid("criterion is required")
	}
	if len(p.AnswerKey) != filterAnswerKey || len(p.TrickWords) != filterTricks {
		return nil, invalid("expected %d answer-key and %d trick words, got %d and %d",
			filterAnswerKey, filterTricks, len(p.AnswerKey), len(p.TrickWords))
	}
	if len(lowerSet(p.Words())) != filterAnswerKey+filterTricks {
		return nil, invalid("answer-key and trick words must be distinct")
	}
	return mustJSON(p), nil
}

func (TheFilter) DefaultPuzzle(GenerateInput) json.RawMessage {
	return mustJSON(FilterPuzzle{
		Criterion:  "Things that are naturally yellow",
		AnswerKey:  []string{"Banana", "Lemon", "Sunflower", "Canary", "Butter", "Corn", "Egg yolk", "Dandelion"},
		TrickWords: []string{"Orange", "Taxi", "School bus", "Highlighter", "Minion"},
		Explainer:  "Taxis, buses, highlighters and Minions are painted yellow; oranges are orange.",
	})
}

func (TheFilter) ScorerPrompt(ScoreInput) (string, error) { return "", nil }

func (TheFilter) ParseScore(in ScoreInput, _ string) (*model.MiniGameResult, error) {
	var p FilterPuzzle
	if err := json.Unmarshal(in.Puzzle, &p); err != nil {
		return nil, err
	}
	var sub filterSubmission
	if err := decodeSubmission(in.Submission, &sub); err != nil {
		return nil, err
	}

	key := lowerSet(p.AnswerKey)
	tricks := lowerSet(p.TrickWords)
	hits, fooled := 0, 0
	for w := range lowerSet(sub.Selected) {
		switch {
		case key[w]:
			hits++
		case tricks[w]:
			fooled++
		}
	}

	raw := float64(hits-fooled) / float64(len(p.AnswerKey)) * DefaultMaxScore
	return &model.MiniGameResult{
		Score:         Normalize(raw, DefaultMaxScore),
		MaxScore:      DefaultMaxScore,
		Commentary:    fmt.Sprintf("%d of %d correct, fooled by %d trick word(s).", hits, len(p.AnswerKey), fooled),
		CorrectAnswer: strings.Join(p.AnswerKey, ", "),
		BonusInfo:     p.Explainer,
	}, nil
}

func (TheFilter) FallbackResult() model.MiniGameResult { return Fallback(DefaultMaxScore) }
