package minigame

import (
	"encoding/json"
	"fmt"
	"strings"

	"familyglitch/internal/model"
)

const personalityDescriptors = 6

// PersonalityPuzzle asks a player to pick which descriptors fit another player
type PersonalityPuzzle struct {
	Subject     string   `json:"subject"`
	Descriptors []string `json:"descriptors"`
	Correct     []string `json:"correct"`
	Reasoning   string   `json:"reasoning,omitempty"`
}

type personalitySubmission struct {
	Selected []string `json:"selected"`
}

// PersonalityMatch is scored in code: the answer key is part of the puzzle
type PersonalityMatch struct{}

func (PersonalityMatch) Type() model.MiniGameType { return model.MiniGamePersonalityMatch }

func (PersonalityMatch) GeneratorPrompt(in GenerateInput) string {
	return fmt.Sprintf(`You are the host of Family Glitch. Based on another player's answers, build a personality match for %s.

Players: %s
Source answer:
%s

Pick exactly 6 one- or two-word descriptors. Between 1 and 3 of them must genuinely fit the player who gave the source answer; the rest should be plausible decoys.
%s
{"subject": "player name", "descriptors": ["six", "words"], "correct": ["the", "fitting", "ones"], "reasoning": "short"}`,
		in.Player.Name, rosterLine(in.Players), sourceTurnBlock(in.SourceTurn), jsonOnly)
}

func (PersonalityMatch) ParsePuzzle(raw string) (json.RawMessage, error) {
	var p PersonalityPuzzle
	if err := DecodeJSON(raw, &p); err != nil {
		return nil, err
	}
	p.Subject = strings.TrimSpace(p.Subject)
	p.Descriptors = trimAll(p.Descriptors)
	p.Correct = trimAll(p.Correct)

	if p.Subject == "" {
		return nil, invalid("personality match needs a subject")
	}
	if len(p.Descriptors) != personalityDescriptors {
		return nil, invalid("expected %d descriptors, got %d", personalityDescriptors, len(p.Descriptors))
	}
	if len(lowerSet(p.Descriptors)) != personalityDescriptors {
		return nil, invalid("descriptors must be unique")
	}
	if n := len(p.Correct); n < 1 || n > 3 {
		return nil, invalid("expected 1-3 correct descriptors, got %d", n)
	}
	all := lowerSet(p.Descriptors)
	for _, c := range p.Correct {
		if !all[strings.ToLower(c)] {
			return nil, invalid("correct descriptor %q is not among the descriptors", c)
		}
	}
	return mustJSON(p), nil
}

func (PersonalityMatch) DefaultPuzzle(in GenerateInput) json.RawMessage {
	subject := "your neighbour"
	if in.SourceTurn != nil {
		subject = in.SourceTurn.PlayerName
	}
	return mustJSON(PersonalityPuzzle{
		Subject:     subject,
		Descriptors: []string{"Adventurous", "Night owl", "Competitive", "Homebody", "Early bird", "Dramatic"},
		Correct:     []string{"Competitive"},
		Reasoning:   "Everyone here is a little competitive.",
	})
}

func (PersonalityMatch) ScorerPrompt(ScoreInput) (string, error) { return "", nil }

// ParseScore awards a point per fitting pick, takes one per decoy, and scales to five
func (PersonalityMatch) ParseScore(in ScoreInput, _ string) (*model.MiniGameResult, error) {
	var p PersonalityPuzzle
	if err := json.Unmarshal(in.Puzzle, &p); err != nil {
		return nil, err
	}
	var sub personalitySubmission
	if err := decodeSubmission(in.Submission, &sub); err != nil {
		return nil, err
	}

	correct := lowerSet(p.Correct)
	hits, misses := 0, 0
	for w := range lowerSet(sub.Selected) {
		if correct[w] {
			hits++
		} else {
			misses++
		}
	}

	raw := float64(hits-misses) / float64(len(p.Correct)) * DefaultMaxScore
	score := Normalize(raw, DefaultMaxScore)

	commentary := fmt.Sprintf("You spotted %d of %d traits that fit %s.", hits, len(p.Correct), p.Subject)
	if misses > 0 {
		commentary += fmt.Sprintf(" %d decoy(s) fooled you.", misses)
	}
	return &model.MiniGameResult{
		Score:         score,
		MaxScore:      DefaultMaxScore,
		Commentary:    commentary,
		CorrectAnswer: strings.Join(p.Correct, ", "),
		BonusInfo:     p.Reasoning,
	}, nil
}

func (PersonalityMatch) FallbackResult() model.MiniGameResult { return Fallback(DefaultMaxScore) }
