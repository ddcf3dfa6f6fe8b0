package minigame

import (
	"encoding/json"
	"fmt"
	"strings"

	"familyglitch/internal/model"
)

const (
	DefaultMaxScore     = 5
	TechnicalDifficulty = "Our judges hit some technical difficulties, so here's a consolation score. Nice effort!"
)

// GenerateInput is what a generator prompt is built from
type GenerateInput struct {
	Player     model.Player   // who will play
	Players    []model.Player // full roster
	Act        int
	SourceTurn *model.Turn  // another player's answer to build on, if the game uses one
	History    []model.Turn // earlier turns, used to avoid repeats
}

// ScoreInput is what a scorer prompt or in-code scorer grades
type ScoreInput struct {
	Player     model.Player
	Puzzle     json.RawMessage
	Submission json.RawMessage
}

// Module is one mini-game type's generation, validation and scoring logic.
// ScorerPrompt returns "" for games scored entirely in code; ParseScore then
// ignores raw.
type Module interface {
	Type() model.MiniGameType
	GeneratorPrompt(in GenerateInput) string
	ParsePuzzle(raw string) (json.RawMessage, error)
	DefaultPuzzle(in GenerateInput) json.RawMessage
	ScorerPrompt(in ScoreInput) (string, error)
	ParseScore(in ScoreInput, raw string) (*model.MiniGameResult, error)
	FallbackResult() model.MiniGameResult
}

// Set indexes modules by type
type Set map[model.MiniGameType]Module

// NewSet builds a set from an explicit module list
func NewSet(mods ...Module) Set {
	s := make(Set, len(mods))
	for _, m := range mods {
		s[m.Type()] = m
	}
	return s
}

// All returns every built-in module
func All() []Module {
	return []Module{
		Trivia{},
		PersonalityMatch{},
		MadLibs{},
		CrypticConnection{},
		HardTrivia{},
		TheFilter{},
		LightningRound{},
	}
}

// Fallback is the consolation result shown when scoring fails
func Fallback(maxScore int) model.MiniGameResult {
	return model.MiniGameResult{
		Score:      maxScore * 2 / 5,
		MaxScore:   maxScore,
		Commentary: TechnicalDifficulty,
		Fallback:   true,
	}
}

// Generate parses a generator reply with the module's validation, falling back
// to its default puzzle
func Generate(m Module, in GenerateInput, raw string) (json.RawMessage, bool) {
	return ParseOrDefault(raw, m.ParsePuzzle, m.DefaultPuzzle(in))
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("minigame: cannot encode %T: %v", v, err))
	}
	return b
}

func decodeSubmission(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return invalid("submission is empty")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return invalid("submission: %v", err)
	}
	return nil
}

func rosterLine(players []model.Player) string {
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}

func historyLines(turns []model.Turn, limit int) string {
	if len(turns) == 0 {
		return "(none yet)"
	}
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	var b strings.Builder
	for _, t := range turns {
		fmt.Fprintf(&b, "- [%s] %s: %s\n", t.TemplateType, t.PlayerName, t.Prompt)
	}
	return strings.TrimRight(b.String(), "\n")
}

func sourceTurnBlock(t *model.Turn) string {
	if t == nil {
		return "(no source answer)"
	}
	return fmt.Sprintf("%s was asked: %q\nTheir answer (JSON): %s", t.PlayerName, t.Prompt, string(t.Response))
}

func trimAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			out = append(out, w)
		}
	}
	return out
}

func lowerSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[strings.ToLower(strings.TrimSpace(w))] = true
	}
	return set
}

const jsonOnly = "Respond ONLY with a JSON object, no markdown and no extra text."

const scoreShape = `{
  "breakdown": [{"item": "...", "points": 0, "max": 1}],
  "score": 0,
  "commentary": "one or two playful sentences"
}`
