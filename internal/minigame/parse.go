package minigame

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"familyglitch/internal/model"
)

var (
	ErrNoJSON       = errors.New("no JSON object found in model output")
	ErrInvalidShape = errors.New("model output failed validation")
)

// ExtractJSON pulls the first balanced JSON object out of free-form model text,
// skipping prose and markdown fences around it
func ExtractJSON(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", ErrNoJSON
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", ErrNoJSON
}

// DecodeJSON extracts and unmarshals the first JSON object in text into v
func DecodeJSON(text string, v any) error {
	obj, err := ExtractJSON(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(obj), v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}
	return nil
}

// ParseOrDefault runs parse on raw and falls back to def on any failure.
// The second return value reports whether the fallback was used.
func ParseOrDefault[T any](raw string, parse func(string) (T, error), def T) (T, bool) {
	v, err := parse(raw)
	if err != nil {
		log.Printf("minigame: falling back to default: %v", err)
		return def, true
	}
	return v, false
}

// Normalize rounds score and clamps it into [0, max]
func Normalize(score float64, max int) int {
	if math.IsNaN(score) || score <= 0 {
		return 0
	}
	if score >= float64(max) {
		return max
	}
	return int(math.Round(score))
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidShape, fmt.Sprintf(format, args...))
}

// ScoreItem is one graded element of a submission
type ScoreItem struct {
	Item   string  `json:"item"`
	Points float64 `json:"points"`
	Max    float64 `json:"max"`
}

// ScoreResponse is the common shape scorer prompts ask the model for
type ScoreResponse struct {
	Score         *float64    `json:"score"`
	Commentary    string      `json:"commentary"`
	Breakdown     []ScoreItem `json:"breakdown"`
	CorrectAnswer string      `json:"correct_answer"`
	BonusInfo     string      `json:"bonus_info"`
}

// ParseScoreResponse decodes a scorer reply into a result on the maxScore scale.
// A per-item breakdown, when present, overrides the model's own total.
func ParseScoreResponse(raw string, maxScore int) (*model.MiniGameResult, error) {
	sr, err := decodeScore(raw)
	if err != nil {
		return nil, err
	}

	var score float64
	switch {
	case len(sr.Breakdown) > 0:
		score = aggregate(sr.Breakdown) * float64(maxScore)
	case sr.Score != nil:
		score = *sr.Score
	default:
		return nil, invalid("score or breakdown is required")
	}
	return sr.result(score, maxScore), nil
}

// Rubric fixes what a breakdown may contain from the puzzle side: Items
// anonymous entries worth ItemMax each, plus Named entries matched by item
// name. Entries the model leaves out count as zero.
type Rubric struct {
	Items   int
	ItemMax float64
	Named   map[string]float64
}

func (r Rubric) possible() float64 {
	p := float64(r.Items) * r.ItemMax
	for _, max := range r.Named {
		p += max
	}
	return p
}

func (r Rubric) earned(items []ScoreItem) (float64, error) {
	var earned float64
	seen := make(map[string]bool, len(r.Named))
	n := 0
	for _, it := range items {
		name := strings.ToLower(strings.TrimSpace(it.Item))
		if max, ok := r.Named[name]; ok {
			if !seen[name] {
				seen[name] = true
				earned += clampPoints(it.Points, max)
			}
			continue
		}
		n++
		if n > r.Items {
			return 0, invalid("breakdown lists more than %d items", r.Items)
		}
		earned += clampPoints(it.Points, r.ItemMax)
	}
	return earned, nil
}

// ParseGradedResponse is ParseScoreResponse with the breakdown checked
// against r, so the total is always out of the puzzle's own item count
func ParseGradedResponse(raw string, maxScore int, r Rubric) (*model.MiniGameResult, error) {
	sr, err := decodeScore(raw)
	if err != nil {
		return nil, err
	}

	var score float64
	switch {
	case len(sr.Breakdown) > 0:
		possible := r.possible()
		if possible <= 0 {
			return nil, invalid("nothing to grade")
		}
		earned, err := r.earned(sr.Breakdown)
		if err != nil {
			return nil, err
		}
		score = earned / possible * float64(maxScore)
	case sr.Score != nil:
		score = *sr.Score
	default:
		return nil, invalid("score or breakdown is required")
	}
	return sr.result(score, maxScore), nil
}

func decodeScore(raw string) (*ScoreResponse, error) {
	var sr ScoreResponse
	if err := DecodeJSON(raw, &sr); err != nil {
		return nil, err
	}
	if strings.TrimSpace(sr.Commentary) == "" {
		return nil, invalid("commentary is required")
	}
	return &sr, nil
}

func (sr *ScoreResponse) result(score float64, maxScore int) *model.MiniGameResult {
	return &model.MiniGameResult{
		Score:         Normalize(score, maxScore),
		MaxScore:      maxScore,
		Commentary:    sr.Commentary,
		CorrectAnswer: sr.CorrectAnswer,
		BonusInfo:     sr.BonusInfo,
	}
}

func clampPoints(points, max float64) float64 {
	return math.Min(math.Max(points, 0), max)
}

// aggregate returns the earned fraction of the breakdown in [0, 1]
func aggregate(items []ScoreItem) float64 {
	var earned, possible float64
	for _, it := range items {
		max := it.Max
		if max <= 0 {
			max = 1
		}
		earned += clampPoints(it.Points, max)
		possible += max
	}
	if possible == 0 {
		return 0
	}
	return earned / possible
}
