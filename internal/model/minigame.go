package model

import (
	"encoding/json"
	"time"
)

// MiniGameType names a self-contained challenge type
type MiniGameType string

const (
	MiniGameTrivia            MiniGameType = "trivia_challenge"
	MiniGamePersonalityMatch  MiniGameType = "personality_match"
	MiniGameMadLibs           MiniGameType = "mad_libs"
	MiniGameCrypticConnection MiniGameType = "cryptic_connection"
	MiniGameHardTrivia        MiniGameType = "hard_trivia"
	MiniGameTheFilter         MiniGameType = "the_filter"
	MiniGameLightningRound    MiniGameType = "lightning_round"
)

// MiniGameResult is the game-agnostic outcome every mini-game is normalized to
type MiniGameResult struct {
	Score         int    `json:"score"`
	MaxScore      int    `json:"maxScore"`
	Commentary    string `json:"commentary"`
	CorrectAnswer string `json:"correctAnswer,omitempty"`
	BonusInfo     string `json:"bonusInfo,omitempty"`
	Fallback      bool   `json:"fallback,omitempty"`
}

// Challenge is a generated mini-game instance waiting for a submission
type Challenge struct {
	ID           string          `json:"id"`
	SessionID    string          `json:"sessionId"`
	GameType     MiniGameType    `json:"gameType"`
	PlayerID     string          `json:"playerId"`
	SourceTurnID string          `json:"sourceTurnId,omitempty"`
	Puzzle       json.RawMessage `json:"puzzle"`
	Fallback     bool            `json:"fallback"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// GenerateChallengeRequest asks for a new mini-game instance
type GenerateChallengeRequest struct {
	GameType MiniGameType `json:"gameType"`
	PlayerID string       `json:"playerId"`
}

// SubmitChallengeRequest carries the player's answer to a challenge
type SubmitChallengeRequest struct {
	Submission json.RawMessage `json:"submission"`
	DurationMS *int64          `json:"durationMs,omitempty"`
}
