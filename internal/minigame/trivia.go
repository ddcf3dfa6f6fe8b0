package minigame

import (
	"encoding/json"
	"fmt"
	"strings"

	"familyglitch/internal/model"
)

// TriviaPuzzle quizzes a player on something another player said earlier
type TriviaPuzzle struct {
	Question      string `json:"question"`
	CorrectAnswer string `json:"correct_answer"`
	SourcePlayer  string `json:"source_player,omitempty"`
	Hint          string `json:"hint,omitempty"`
}

type triviaSubmission struct {
	Answer string `json:"answer"`
}

// Trivia is the "how well do you know them" challenge
type Trivia struct{}

func (Trivia) Type() model.MiniGameType { return model.MiniGameTrivia }

func (Trivia) GeneratorPrompt(in GenerateInput) string {
	return fmt.Sprintf(`You are the host of Family Glitch, a party game. Write one trivia question for %s about another player's earlier answer.

Players: %s
Source answer:
%s

Questions already asked this game:
%s

The question must be answerable from the source answer alone and must not repeat an earlier question.
%s
{"question": "...", "correct_answer": "...", "source_player": "...", "hint": "optional"}`,
		in.Player.Name, rosterLine(in.Players), sourceTurnBlock(in.SourceTurn), historyLines(in.History, 10), jsonOnly)
}

func (Trivia) ParsePuzzle(raw string) (json.RawMessage, error) {
	var p TriviaPuzzle
	if err := DecodeJSON(raw, &p); err != nil {
		return nil, err
	}
	p.Question = strings.TrimSpace(p.Question)
	p.CorrectAnswer = strings.TrimSpace(p.CorrectAnswer)
	if p.Question == "" || p.CorrectAnswer == "" {
		return nil, invalid("trivia needs question and correct_answer")
	}
	return mustJSON(p), nil
}

// DefaultPuzzle asks the player to recall the source answer verbatim
func (Trivia) DefaultPuzzle(in GenerateInput) json.RawMessage {
	p := TriviaPuzzle{
		Question:      "Which player in this room is most likely to laugh at their own joke?",
		CorrectAnswer: "Whoever the group agrees on",
	}
	if t := in.SourceTurn; t != nil {
		p.Question = fmt.Sprintf("When %s was asked %q, what did they answer?", t.PlayerName, t.Prompt)
		p.CorrectAnswer = responseText(t.Response)
		p.SourcePlayer = t.PlayerName
	}
	return mustJSON(p)
}

func (Trivia) ScorerPrompt(in ScoreInput) (string, error) {
	var p TriviaPuzzle
	if err := json.Unmarshal(in.Puzzle, &p); err != nil {
		return "", err
	}
	var sub triviaSubmission
	if err := decodeSubmission(in.Submission, &sub); err != nil {
		return "", err
	}
	return fmt.Sprintf(`Grade a Family Glitch trivia guess. Be generous with close or funny answers.

Question: %s
Correct answer: %s
%s guessed: %s

Score from 0 (nowhere near) to 5 (nailed it).
%s
{"score": 0, "commentary": "...", "correct_answer": %q}`,
		p.Question, p.CorrectAnswer, in.Player.Name, sub.Answer, jsonOnly, p.CorrectAnswer), nil
}

func (Trivia) ParseScore(in ScoreInput, raw string) (*model.MiniGameResult, error) {
	res, err := ParseScoreResponse(raw, DefaultMaxScore)
	if err != nil {
		return nil, err
	}
	if res.CorrectAnswer == "" {
		var p TriviaPuzzle
		if json.Unmarshal(in.Puzzle, &p) == nil {
			res.CorrectAnswer = p.CorrectAnswer
		}
	}
	return res, nil
}

func (Trivia) FallbackResult() model.MiniGameResult { return Fallback(DefaultMaxScore) }

// responseText flattens a stored turn response into something readable
func responseText(raw json.RawMessage) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	switch r := v.(type) {
	case string:
		return r
	case map[string]any:
		for _, key := range []string{"text", "answer", "choice", "value", "selected"} {
			if val, ok := r[key]; ok {
				return fmt.Sprint(val)
			}
		}
	}
	return string(raw)
}
