package minigame

import (
	"encoding/json"
	"fmt"
	"strings"

	"familyglitch/internal/model"
)

const (
	lightningMin = 3
	lightningMax = 5
)

// LightningQuestion is one rapid-fire question
type LightningQuestion struct {
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	AboutPlayer string `json:"about_player,omitempty"`
}

// LightningPuzzle is a short burst of questions about the group
type LightningPuzzle struct {
	Questions []LightningQuestion `json:"questions"`
	Seconds   int                 `json:"seconds,omitempty"`
}

type lightningSubmission struct {
	Answers []string `json:"answers"`
}

type LightningRound struct{}

func (LightningRound) Type() model.MiniGameType { return model.MiniGameLightningRound }

func (LightningRound) GeneratorPrompt(in GenerateInput) string {
	return fmt.Sprintf(`You are the host of Family Glitch. It's the final act: write a lightning round for %s.

Players: %s
Earlier answers to draw from:
%s
Featured answer:
%s

Write %d to %d quick questions about the other players, each with a short answer taken from what they said.
%s
{"questions": [{"question": "...", "answer": "...", "about_player": "..."}], "seconds": 30}`,
		in.Player.Name, rosterLine(in.Players), historyLines(in.History, 15), sourceTurnBlock(in.SourceTurn), lightningMin, lightningMax, jsonOnly)
}

// ParsePuzzle truncates extra questions and rejects short rounds
func (LightningRound) ParsePuzzle(raw string) (json.RawMessage, error) {
	var p LightningPuzzle
	if err := DecodeJSON(raw, &p); err != nil {
		return nil, err
	}
	qs := make([]LightningQuestion, 0, len(p.Questions))
	for _, q := range p.Questions {
		q.Question = strings.TrimSpace(q.Question)
		q.Answer = strings.TrimSpace(q.Answer)
		if q.Question == "" || q.Answer == "" {
			continue
		}
		qs = append(qs, q)
	}
	if len(qs) < lightningMin {
		return nil, invalid("expected at least %d questions, got %d", lightningMin, len(qs))
	}
	if len(qs) > lightningMax {
		qs = qs[:lightningMax]
	}
	p.Questions = qs
	if p.Seconds <= 0 {
		p.Seconds = 30
	}
	return mustJSON(p), nil
}

func (LightningRound) DefaultPuzzle(in GenerateInput) json.RawMessage {
	p := LightningPuzzle{Seconds: 30, Questions: []LightningQuestion{
		{Question: "How many players are in this game?", Answer: fmt.Sprint(len(in.Players))},
		{Question: "Which act are we in?", Answer: fmt.Sprint(in.Act)},
		{Question: "Who is playing this round?", Answer: in.Player.Name},
	}}
	return mustJSON(p)
}

func (LightningRound) ScorerPrompt(in ScoreInput) (string, error) {
	var p LightningPuzzle
	if err := json.Unmarshal(in.Puzzle, &p); err != nil {
		return "", err
	}
	var sub lightningSubmission
	if err := decodeSubmission(in.Submission, &sub); err != nil {
		return "", err
	}
	var b strings.Builder
	for i, q := range p.Questions {
		given := ""
		if i < len(sub.Answers) {
			given = sub.Answers[i]
		}
		fmt.Fprintf(&b, "%d. %s\n   expected: %s\n   given: %q\n", i+1, q.Question, q.Answer, given)
	}
	return fmt.Sprintf(`Grade %s's lightning round for Family Glitch. Accept answers that clearly mean the same thing.

%s
Give one breakdown item per question: 1 point if right, 0.5 if close, 0 if wrong (max 1).
%s
%s`, in.Player.Name, b.String(), jsonOnly, scoreShape), nil
}

// ParseScore grades out of one point per question in the puzzle
func (LightningRound) ParseScore(in ScoreInput, raw string) (*model.MiniGameResult, error) {
	var p LightningPuzzle
	if err := json.Unmarshal(in.Puzzle, &p); err != nil {
		return nil, err
	}
	res, err := ParseGradedResponse(raw, DefaultMaxScore, Rubric{Items: len(p.Questions), ItemMax: 1})
	if err != nil {
		return nil, err
	}
	answers := make([]string, len(p.Questions))
	for i, q := range p.Questions {
		answers[i] = q.Answer
	}
	res.CorrectAnswer = strings.Join(answers, " / ")
	return res, nil
}

func (LightningRound) FallbackResult() model.MiniGameResult { return Fallback(DefaultMaxScore) }
