package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// TemplateType tags the question-rendering template a turn uses
type TemplateType string

const (
	TemplateTimedBinary    TemplateType = "tpl_timed_binary"
	TemplateTextArea       TemplateType = "tpl_text_area"
	TemplateMultiField     TemplateType = "tpl_multi_field"
	TemplateWordGrid       TemplateType = "tpl_word_grid"
	TemplatePlayerSelector TemplateType = "tpl_player_selector"
	TemplateSlider         TemplateType = "tpl_slider"
	TemplateMiniGame       TemplateType = "tpl_mini_game"
)

// TurnStatus is the lifecycle state of a turn
type TurnStatus string

const (
	TurnPending   TurnStatus = "pending"
	TurnCompleted TurnStatus = "completed"
)

// Turn is one question or challenge posed to one player
type Turn struct {
	ID           string          `json:"id" bson:"_id"`
	SessionID    string          `json:"sessionId" bson:"sessionId"`
	PlayerID     string          `json:"playerId" bson:"playerId"`
	PlayerName   string          `json:"playerName" bson:"playerName"`
	TemplateType TemplateType    `json:"templateType" bson:"templateType"`
	MiniGame     MiniGameType    `json:"miniGame,omitempty" bson:"miniGame,omitempty"`
	Prompt       string          `json:"prompt" bson:"prompt"`
	Params       map[string]any  `json:"params,omitempty" bson:"params,omitempty"`
	Status       TurnStatus      `json:"status" bson:"status"`
	Response     json.RawMessage `json:"response,omitempty" bson:"response,omitempty"`
	Score        *int            `json:"score,omitempty" bson:"score,omitempty"`
	DurationMS   *int64          `json:"durationMs,omitempty" bson:"durationMs,omitempty"`
	CreatedAt    time.Time       `json:"createdAt" bson:"createdAt"`
	CompletedAt  *time.Time      `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}

// HasResponse reports whether the turn carries a non-trivial response payload
func (t *Turn) HasResponse() bool {
	raw := bytes.TrimSpace(t.Response)
	if len(raw) == 0 {
		return false
	}
	switch string(raw) {
	case "null", "{}", `""`, "[]":
		return false
	}
	return true
}

// IsMiniGame reports whether the turn records a mini-game play rather than
// an answer to a host question
func (t *Turn) IsMiniGame() bool {
	return t.MiniGame != "" || t.TemplateType == TemplateMiniGame
}

// IsCompleted reports whether the player has submitted the turn
func (t *Turn) IsCompleted() bool {
	return t.Status == TurnCompleted
}

// CompleteTurnRequest is the body for submitting a player's response
type CompleteTurnRequest struct {
	Response   json.RawMessage `json:"response"`
	Score      *int            `json:"score,omitempty"`
	DurationMS *int64          `json:"durationMs,omitempty"`
}
