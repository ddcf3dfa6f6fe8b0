package minigame

import (
	"encoding/json"
	"fmt"
	"strings"

	"familyglitch/internal/model"
)

const hardTriviaOptions = 4

// HardTriviaPuzzle is a general-knowledge multiple-choice question
type HardTriviaPuzzle struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Category      string   `json:"category,omitempty"`
	FunFact       string   `json:"fun_fact,omitempty"`
}

type hardTriviaSubmission struct {
	Answer string `json:"answer"`
}

// HardTrivia is scored in code against the stored answer
type HardTrivia struct{}

func (HardTrivia) Type() model.MiniGameType { return model.MiniGameHardTrivia }

func (HardTrivia) GeneratorPrompt(in GenerateInput) string {
	return fmt.Sprintf(`You are the host of Family Glitch. Write one genuinely hard general-knowledge question for %s.

Questions already asked this game:
%s

Give exactly %d options. The correct_answer must be copied verbatim from the options.
%s
{"question": "...", "options": ["A", "B", "C", "D"], "correct_answer": "B", "category": "...", "fun_fact": "..."}`,
		in.Player.Name, historyLines(in.History, 10), hardTriviaOptions, jsonOnly)
}

func (HardTrivia) ParsePuzzle(raw string) (json.RawMessage, error) {
	var p HardTriviaPuzzle
	if err := DecodeJSON(raw, &p); err != nil {
		return nil, err
	}
	p.Question = strings.TrimSpace(p.Question)
	if p.Question == "" {
		return nil, invalid("question is required")
	}
	if len(p.Options) != hardTriviaOptions {
		return nil, invalid("expected %d options, got %d", hardTriviaOptions, len(p.Options))
	}
	if len(lowerSet(p.Options)) != hardTriviaOptions {
		return nil, invalid("options must be distinct")
	}
	if p.CorrectAnswer == "" {
		return nil, invalid("correct_answer is required")
	}
	found := false
	for _, o := range p.Options {
		if o == p.CorrectAnswer {
			found = true
			break
		}
	}
	if !found {
		return nil, invalid("correct_answer %q is not among the options", p.CorrectAnswer)
	}
	return mustJSON(p), nil
}

func (HardTrivia) DefaultPuzzle(GenerateInput) json.RawMessage {
	return mustJSON(HardTriviaPuzzle{
		Question:      "Which planet has the shortest day in our solar system?",
		Options:       []string{"Mercury", "Jupiter", "Earth", "Neptune"},
		CorrectAnswer: "Jupiter",
		Category:      "Science",
		FunFact:       "A day on Jupiter lasts just under 10 hours.",
	})
}

func (HardTrivia) ScorerPrompt(ScoreInput) (string, error) { return "", nil }

func (HardTrivia) ParseScore(in ScoreInput, _ string) (*model.MiniGameResult, error) {
	var p HardTriviaPuzzle
	if err := json.Unmarshal(in.Puzzle, &p); err != nil {
		return nil, err
	}
	var sub hardTriviaSubmission
	if err := decodeSubmission(in.Submission, &sub); err != nil {
		return nil, err
	}

	res := &model.MiniGameResult{
		MaxScore:      DefaultMaxScore,
		CorrectAnswer: p.CorrectAnswer,
		BonusInfo:     p.FunFact,
	}
	if strings.EqualFold(strings.TrimSpace(sub.Answer), p.CorrectAnswer) {
		res.Score = DefaultMaxScore
		res.Commentary = "Correct! That one stumps most people."
	} else {
		res.Commentary = fmt.Sprintf("Not quite. The answer was %s.", p.CorrectAnswer)
	}
	return res, nil
}

func (HardTrivia) FallbackResult() model.MiniGameResult { return Fallback(DefaultMaxScore) }
