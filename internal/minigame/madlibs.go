package minigame

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"familyglitch/internal/model"
)

var blankPattern = regexp.MustCompile(`_{3,}`)

const (
	madLibsMinBlanks = 3
	madLibsMaxBlanks = 6
	madLibsWordMax   = 5
)

// MadLibsPuzzle is a story template with one hint per blank
type MadLibsPuzzle struct {
	Title    string   `json:"title,omitempty"`
	Template string   `json:"template"`
	Hints    []string `json:"hints"`
}

type madLibsSubmission struct {
	Words []string `json:"words"`
}

type MadLibs struct{}

func (MadLibs) Type() model.MiniGameType { return model.MiniGameMadLibs }

func (MadLibs) GeneratorPrompt(in GenerateInput) string {
	return fmt.Sprintf(`You are the host of Family Glitch. Write a short, silly mad-libs story for %s.

Players (you may mention them): %s
Act: %d

Mark each blank with "___" and give one hint per blank (e.g. "a noun", "a player's name"). Use between %d and %d blanks.
%s
{"title": "...", "template": "Once ___ went to ___ ...", "hints": ["a name", "a place"]}`,
		in.Player.Name, rosterLine(in.Players), in.Act, madLibsMinBlanks, madLibsMaxBlanks, jsonOnly)
}

func (MadLibs) ParsePuzzle(raw string) (json.RawMessage, error) {
	var p MadLibsPuzzle
	if err := DecodeJSON(raw, &p); err != nil {
		return nil, err
	}
	p.Hints = trimAll(p.Hints)
	blanks := len(blankPattern.FindAllStringIndex(p.Template, -1))
	if blanks < madLibsMinBlanks || blanks > madLibsMaxBlanks {
		return nil, invalid("expected %d-%d blanks, got %d", madLibsMinBlanks, madLibsMaxBlanks, blanks)
	}
	if blanks != len(p.Hints) {
		return nil, invalid("template has %d blanks but %d hints", blanks, len(p.Hints))
	}
	return mustJSON(p), nil
}

func (MadLibs) DefaultPuzzle(GenerateInput) json.RawMessage {
	return mustJSON(MadLibsPuzzle{
		Title:    "The Great Fridge Incident",
		Template: "Last night ___ opened the fridge and found a ___ wearing ___. It whispered \"___\" and vanished.",
		Hints:    []string{"a player's name", "an animal", "an item of clothing", "a catchphrase"},
	})
}

// Fill substitutes words into the template's blanks in order
func (p MadLibsPuzzle) Fill(words []string) string {
	i := 0
	return blankPattern.ReplaceAllStringFunc(p.Template, func(string) string {
		if i >= len(words) {
			return "___"
		}
		w := strings.TrimSpace(words[i])
		i++
		return strings.ToUpper(w)
	})
}

func (m MadLibs) ScorerPrompt(in ScoreInput) (string, error) {
	p, sub, err := m.decode(in)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for i, hint := range p.Hints {
		word := ""
		if i < len(sub.Words) {
			word = sub.Words[i]
		}
		fmt.Fprintf(&b, "- %s: %q\n", hint, word)
	}
	return fmt.Sprintf(`Judge %s's mad-libs entry for Family Glitch. Reward creativity and comedy, not correctness.

Finished story:
%s

Words chosen:
%s
Give each word 0-5 points in the breakdown (max 5). The final score is computed from the breakdown.
%s
%s`, in.Player.Name, p.Fill(sub.Words), b.String(), jsonOnly, scoreShape), nil
}

// ParseScore grades out of five points per blank in the template
func (m MadLibs) ParseScore(in ScoreInput, raw string) (*model.MiniGameResult, error) {
	p, sub, err := m.decode(in)
	if err != nil {
		return nil, err
	}
	res, err := ParseGradedResponse(raw, DefaultMaxScore, Rubric{Items: len(p.Hints), ItemMax: madLibsWordMax})
	if err != nil {
		return nil, err
	}
	res.BonusInfo = p.Fill(sub.Words)
	return res, nil
}

func (MadLibs) FallbackResult() model.MiniGameResult { return Fallback(DefaultMaxScore) }

func (MadLibs) decode(in ScoreInput) (MadLibsPuzzle, madLibsSubmission, error) {
	var p MadLibsPuzzle
	var sub madLibsSubmission
	if err := json.Unmarshal(in.Puzzle, &p); err != nil {
		return p, sub, err
	}
	if err := decodeSubmission(in.Submission, &sub); err != nil {
		return p, sub, err
	}
	return p, sub, nil
}
