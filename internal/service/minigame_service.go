package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"familyglitch/internal/cache"
	"familyglitch/internal/game"
	"familyglitch/internal/llm"
	"familyglitch/internal/minigame"
	"familyglitch/internal/model"
)

var (
	ErrUnknownMiniGame   = errors.New("unknown mini-game")
	ErrNotEligible       = errors.New("mini-game not available")
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrEmptySubmission   = errors.New("submission must not be empty")
)

// NotEligibleError carries the reason a mini-game cannot be started
type NotEligibleError struct {
	GameType model.MiniGameType
	Reason   string
}

func (e *NotEligibleError) Error() string {
	return fmt.Sprintf("%s: %s", e.GameType, e.Reason)
}

func (e *NotEligibleError) Unwrap() error { return ErrNotEligible }

// MinigameService generates and scores mini-game challenges
type MinigameService struct {
	sessions    *SessionService
	client      llm.Client
	modules     minigame.Set
	challenges  cache.ChallengeCache
	usedTurns   cache.UsedTurnCache
	rng         game.Rand
	model       string
	broadcaster Broadcaster
}

// NewMinigameService creates a new mini-game service
func NewMinigameService(
	sessions *SessionService,
	client llm.Client,
	modules minigame.Set,
	challenges cache.ChallengeCache,
	usedTurns cache.UsedTurnCache,
	modelName string,
) *MinigameService {
	return &MinigameService{
		sessions:    sessions,
		client:      client,
		modules:     modules,
		challenges:  challenges,
		usedTurns:   usedTurns,
		rng:         game.DefaultRand,
		model:       modelName,
		broadcaster: noopBroadcaster{},
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *MinigameService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetRand swaps the random source used for source-turn selection
func (s *MinigameService) SetRand(r game.Rand) {
	s.rng = r
}

// Generate creates a challenge of gameType for playerID. A failed or malformed
// generation falls back to the module's canned puzzle.
func (s *MinigameService) Generate(ctx context.Context, sessionID, playerID string, gameType model.MiniGameType) (*model.Challenge, error) {
	mod, ok := s.modules[gameType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMiniGame, gameType)
	}

	ectx, session, err := s.sessions.EligibilityContext(ctx, sessionID, playerID)
	if err != nil {
		return nil, err
	}
	elig := game.CheckEligibility(gameType, ectx)
	if !elig.Eligible {
		return nil, &NotEligibleError{GameType: gameType, Reason: elig.Reason}
	}

	player, _ := session.Player(playerID)
	in := minigame.GenerateInput{
		Player:  player,
		Players: session.Players,
		Act:     session.Act,
		History: ectx.Turns,
	}
	if len(elig.EligibleTurns) > 0 {
		used, err := s.usedTurns.Members(ctx, sessionID)
		if err != nil {
			log.Printf("Failed to load used turns for %s: %v", sessionID, err)
		}
		in.SourceTurn = game.SelectTurnForTrivia(elig.EligibleTurns, used, s.rng)
	}

	raw := ""
	resp, err := s.client.Complete(ctx, llm.Request{
		Model:       s.model,
		Messages:    []model.Message{model.UserMessage(mod.GeneratorPrompt(in))},
		Temperature: llm.Float32(0.9),
		JSONMode:    true,
	})
	if err != nil {
		log.Printf("Mini-game %s generation failed, using default: %v", gameType, err)
	} else {
		raw = resp.Message.Content
	}
	puzzle, fellBack := minigame.Generate(mod, in, raw)

	ch := &model.Challenge{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		GameType:  gameType,
		PlayerID:  playerID,
		Puzzle:    puzzle,
		Fallback:  fellBack,
		CreatedAt: time.Now(),
	}
	if in.SourceTurn != nil {
		ch.SourceTurnID = in.SourceTurn.ID
		if err := s.usedTurns.Add(ctx, sessionID, in.SourceTurn.ID); err != nil {
			log.Printf("Failed to mark turn %s used: %v", in.SourceTurn.ID, err)
		}
	}
	if err := s.challenges.Set(ctx, ch); err != nil {
		return nil, fmt.Errorf("failed to store challenge: %w", err)
	}

	s.broadcaster.BroadcastToSession(sessionID, MsgMiniGameStarted, ch)
	return ch, nil
}

// Submit scores a player's answer to a challenge. Any scoring failure resolves
// to the module's fallback result so the game can always continue.
func (s *MinigameService) Submit(ctx context.Context, sessionID, challengeID string, req *model.SubmitChallengeRequest) (*model.MiniGameResult, error) {
	if len(req.Submission) == 0 {
		return nil, ErrEmptySubmission
	}
	ch, err := s.challenges.Get(ctx, sessionID, challengeID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, ErrChallengeNotFound
	}
	mod, ok := s.modules[ch.GameType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMiniGame, ch.GameType)
	}
	session, err := s.sessions.getActive(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	player, _ := session.Player(ch.PlayerID)

	// only the submit that removes the challenge gets to score it
	claimed, err := s.challenges.Delete(ctx, sessionID, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to claim challenge: %w", err)
	}
	if !claimed {
		return nil, ErrChallengeNotFound
	}

	in := minigame.ScoreInput{Player: player, Puzzle: ch.Puzzle, Submission: req.Submission}
	result := s.score(ctx, mod, in)

	if result.Score > 0 {
		if _, err := s.sessions.AwardPoints(ctx, sessionID, ch.PlayerID, result.Score); err != nil {
			log.Printf("Failed to award mini-game points: %v", err)
		}
	}

	score := result.Score
	turn := &model.Turn{
		SessionID:    sessionID,
		PlayerID:     player.ID,
		PlayerName:   player.Name,
		TemplateType: model.TemplateMiniGame,
		MiniGame:     ch.GameType,
		Prompt:       fmt.Sprintf("%s mini-game", ch.GameType),
		Params: map[string]any{
			"challengeId": ch.ID,
			"puzzle":      puzzleMap(ch.Puzzle),
			"result":      result,
		},
		Response:   req.Submission,
		Score:      &score,
		DurationMS: req.DurationMS,
	}
	if err := s.sessions.RecordCompletedTurn(ctx, turn); err != nil {
		log.Printf("Failed to record mini-game turn: %v", err)
	}

	s.broadcaster.BroadcastToSession(sessionID, MsgMiniGameResult, map[string]any{
		"challengeId": ch.ID,
		"playerId":    ch.PlayerID,
		"result":      result,
	})
	return result, nil
}

func (s *MinigameService) score(ctx context.Context, mod minigame.Module, in minigame.ScoreInput) *model.MiniGameResult {
	fallback := mod.FallbackResult()

	prompt, err := mod.ScorerPrompt(in)
	if err != nil {
		log.Printf("Mini-game %s scorer prompt failed: %v", mod.Type(), err)
		return &fallback
	}

	raw := ""
	if prompt != "" {
		resp, err := s.client.Complete(ctx, llm.Request{
			Model:       s.model,
			Messages:    []model.Message{model.UserMessage(prompt)},
			Temperature: llm.Float32(0.3),
			JSONMode:    true,
		})
		if err != nil {
			log.Printf("Mini-game %s scoring call failed: %v", mod.Type(), err)
			return &fallback
		}
		raw = resp.Message.Content
	}

	result, err := mod.ParseScore(in, raw)
	if err != nil {
		log.Printf("Mini-game %s score parse failed: %v", mod.Type(), err)
		return &fallback
	}
	return result
}

// puzzleMap decodes a stored puzzle into a plain document
func puzzleMap(raw json.RawMessage) map[string]any {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}
