package minigame

import (
	"encoding/json"
	"fmt"
	"strings"

	"familyglitch/internal/model"
)

const (
	crypticGridSize      = 25
	crypticMinConnected  = 4
	crypticMaxConnected  = 8
	crypticConnectionMax = 3
)

// CrypticPuzzle is a 5x5 word grid hiding a set of connected words
type CrypticPuzzle struct {
	Words          []string `json:"words"`
	Connection     string   `json:"connection"`
	ConnectedWords []string `json:"connected_words"`
	Hint           string   `json:"hint,omitempty"`
}

type crypticSubmission struct {
	Selected []string `json:"selected"`
	Guess    string   `json:"guess"`
}

type CrypticConnection struct{}

func (CrypticConnection) Type() model.MiniGameType { return model.MiniGameCrypticConnection }

func (CrypticConnection) GeneratorPrompt(in GenerateInput) string {
	return fmt.Sprintf(`You are the host of Family Glitch. Build a cryptic connection puzzle for %s.

Give exactly %d distinct single words for a 5x5 grid. Between %d and %d of them share a hidden, clever connection; the rest are red herrings.
%s
{"words": ["25 words"], "connection": "what links them", "connected_words": ["the linked words"], "hint": "optional nudge"}`,
		in.Player.Name, crypticGridSize, crypticMinConnected, crypticMaxConnected, jsonOnly)
}

// ParsePuzzle truncates oversized grids and rejects short ones
func (CrypticConnection) ParsePuzzle(raw string) (json.RawMessage, error) {
	var p CrypticPuzzle
	if err := DecodeJSON(raw, &p); err != nil {
		return nil, err
	}
	p.Words = trimAll(p.Words)
	p.ConnectedWords = trimAll(p.ConnectedWords)
	p.Connection = strings.TrimSpace(p.Connection)

	if len(p.Words) < crypticGridSize {
		return nil, invalid("grid needs %d words, got %d", crypticGridSize, len(p.Words))
	}
	p.Words = p.Words[:crypticGridSize]
	grid := lowerSet(p.Words)
	if len(grid) != crypticGridSize {
		return nil, invalid("grid words must be distinct")
	}

	if p.Connection == "" {
		return nil, invalid("connection is required")
	}
	if n := len(p.ConnectedWords); n < crypticMinConnected || n > crypticMaxConnected {
		return nil, invalid("expected %d-%d connected words, got %d", crypticMinConnected, crypticMaxConnected, n)
	}
	if len(lowerSet(p.ConnectedWords)) != len(p.ConnectedWords) {
		return nil, invalid("connected words must be distinct")
	}
	for _, w := range p.ConnectedWords {
		if !grid[strings.ToLower(w)] {
			return nil, invalid("connected word %q is not in the grid", w)
		}
	}
	return mustJSON(p), nil
}

func (CrypticConnection) DefaultPuzzle(GenerateInput) json.RawMessage {
	return mustJSON(CrypticPuzzle{
		Words: []string{
			"Mercury", "Piano", "Saturn", "Lamp", "Ocean",
			"Venus", "Ladder", "Mars", "Pillow", "Tiger",
			"Spoon", "Jupiter", "Candle", "Violin", "Cactus",
			"Neptune", "Bucket", "Cloud", "Ribbon", "Anchor",
			"Kettle", "Marble", "Comet", "Feather", "Window",
		},
		Connection:     "Planets of the solar system",
		ConnectedWords: []string{"Mercury", "Saturn", "Venus", "Mars", "Jupiter", "Neptune"},
		Hint:           "Look up.",
	})
}

func (CrypticConnection) ScorerPrompt(in ScoreInput) (string, error) {
	var p CrypticPuzzle
	if err := json.Unmarshal(in.Puzzle, &p); err != nil {
		return "", err
	}
	var sub crypticSubmission
	if err := decodeSubmission(in.Submission, &sub); err != nil {
		return "", err
	}
	return fmt.Sprintf(`Grade %s's answer to a Family Glitch cryptic connection puzzle.

Hidden connection: %s
Connected words: %s
Player selected: %s
Player's guess at the connection: %q

In the breakdown give one item per connected word (1 point if selected, 0 if missed), one item per wrong selection (0 points, max 1), and one item "connection" worth up to 3 points for how close the guess is.
%s
%s`, in.Player.Name, p.Connection, strings.Join(p.ConnectedWords, ", "), strings.Join(sub.Selected, ", "), sub.Guess, jsonOnly, scoreShape), nil
}

// ParseScore grades out of one point per connected word, one per wrong
// selection and the connection guess
func (CrypticConnection) ParseScore(in ScoreInput, raw string) (*model.MiniGameResult, error) {
	var p CrypticPuzzle
	if err := json.Unmarshal(in.Puzzle, &p); err != nil {
		return nil, err
	}
	var sub crypticSubmission
	if err := decodeSubmission(in.Submission, &sub); err != nil {
		return nil, err
	}

	connected := lowerSet(p.ConnectedWords)
	wrong := 0
	for w := range lowerSet(sub.Selected) {
		if w != "" && !connected[w] {
			wrong++
		}
	}
	rubric := Rubric{
		Items:   len(connected) + wrong,
		ItemMax: 1,
		Named:   map[string]float64{"connection": crypticConnectionMax},
	}
	res, err := ParseGradedResponse(raw, DefaultMaxScore, rubric)
	if err != nil {
		return nil, err
	}
	res.CorrectAnswer = fmt.Sprintf("%s: %s", p.Connection, strings.Join(p.ConnectedWords, ", "))
	return res, nil
}

func (CrypticConnection) FallbackResult() model.MiniGameResult { return Fallback(DefaultMaxScore) }
