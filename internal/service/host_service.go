package service

import (
	"context"
	"errors"
	"log"

	"familyglitch/internal/chat"
	"familyglitch/internal/llm"
	"familyglitch/internal/minigame"
	"familyglitch/internal/model"
	"familyglitch/internal/prompt"
)

const judgeMaxScore = 5

var (
	ErrTurnNotCompleted = errors.New("turn has not been answered yet")
	ErrTurnScored       = errors.New("turn has already been scored")
)

// HostService is the AI host: it asks the next question and judges answers
type HostService struct {
	orchestrator *chat.Orchestrator
	client       llm.Client
	sessions     *SessionService
	model        string
	temperature  float32
}

// NewHostService creates a new host service
func NewHostService(
	orchestrator *chat.Orchestrator,
	client llm.Client,
	sessions *SessionService,
	modelName string,
	temperature float32,
) *HostService {
	return &HostService{
		orchestrator: orchestrator,
		client:       client,
		sessions:     sessions,
		model:        modelName,
		temperature:  temperature,
	}
}

// Chat runs a caller-supplied conversation through the tool loop. When
// sessionID is set, template tools record turns against that session.
func (s *HostService) Chat(ctx context.Context, req chat.Request, sessionID, playerID string) (*chat.Result, error) {
	if sessionID != "" {
		session, err := s.sessions.getActive(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if _, ok := session.Player(playerID); !ok {
			return nil, ErrUnknownPlayer
		}
		ctx = WithGame(ctx, sessionID, playerID)
	}
	if req.Model == "" {
		req.Model = s.model
	}
	if req.Temperature == nil {
		req.Temperature = llm.Float32(s.temperature)
	}
	return s.orchestrator.Run(ctx, req)
}

// NextQuestion asks the host for playerID's next question, offering only the
// mini-games they are eligible for
func (s *HostService) NextQuestion(ctx context.Context, sessionID, playerID string) (*chat.Result, error) {
	state, err := s.sessions.State(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	available, err := s.sessions.MiniGames(ctx, sessionID, playerID)
	if err != nil {
		return nil, err
	}

	tools := TemplateToolNames()
	for _, r := range available {
		if r.Eligible {
			tools = append(tools, StartToolName(r.GameType))
		}
	}

	return s.Chat(ctx, chat.Request{
		Messages: prompt.NextQuestionMessages(state, playerID, available),
		Tools:    tools,
	}, sessionID, playerID)
}

// JudgeTurn scores a completed turn. Model or parse failures fall back to a
// consolation score instead of failing the request.
func (s *HostService) JudgeTurn(ctx context.Context, sessionID, turnID string) (*model.MiniGameResult, error) {
	session, err := s.sessions.getActive(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	turn, err := s.sessions.GetTurn(ctx, sessionID, turnID)
	if err != nil {
		return nil, err
	}
	if !turn.IsCompleted() {
		return nil, ErrTurnNotCompleted
	}
	if turn.Score != nil {
		return nil, ErrTurnScored
	}
	player, _ := session.Player(turn.PlayerID)

	raw := ""
	resp, err := s.client.Complete(ctx, llm.Request{
		Model:       s.model,
		Messages:    []model.Message{model.UserMessage(prompt.JudgeTurnPrompt(turn, player))},
		Temperature: llm.Float32(0.4),
		JSONMode:    true,
	})
	if err != nil {
		log.Printf("Judge call failed for turn %s: %v", turnID, err)
	} else {
		raw = resp.Message.Content
	}

	fallback := minigame.Fallback(judgeMaxScore)
	result, _ := minigame.ParseOrDefault(raw, func(r string) (*model.MiniGameResult, error) {
		return minigame.ParseScoreResponse(r, judgeMaxScore)
	}, &fallback)

	if err := s.sessions.SetScore(ctx, sessionID, turnID, result.Score); err != nil {
		log.Printf("Failed to store score for turn %s: %v", turnID, err)
	}
	if result.Score > 0 {
		if _, err := s.sessions.AwardPoints(ctx, sessionID, turn.PlayerID, result.Score); err != nil {
			log.Printf("Failed to award points for turn %s: %v", turnID, err)
		}
	}
	return result, nil
}
