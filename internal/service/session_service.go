package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"familyglitch/internal/cache"
	"familyglitch/internal/game"
	"familyglitch/internal/model"
	"familyglitch/internal/repository"
)

const (
	MinPlayers = 2
	MaxPlayers = 8
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionEnded    = errors.New("session has ended")
	ErrInvalidRoster   = errors.New("a game needs 2-8 players with distinct names")
	ErrInvalidAct      = errors.New("act must move forward and stay within 1-3")
	ErrUnknownPlayer   = errors.New("player is not in this session")
	ErrTurnNotFound    = errors.New("turn not found")
	ErrTurnCompleted   = errors.New("turn already completed")
	ErrEmptyResponse   = errors.New("response must not be empty")
)

// SessionService owns the game session, its turn history and scores
type SessionService struct {
	sessionRepo  repository.SessionRepo
	turnRepo     repository.TurnRepo
	sessionCache cache.SessionCache
	leaderboard  cache.LeaderboardCache
	authSvc      *AuthService
	broadcaster  Broadcaster
}

// NewSessionService creates a new session service
func NewSessionService(
	sessionRepo repository.SessionRepo,
	turnRepo repository.TurnRepo,
	sessionCache cache.SessionCache,
	leaderboard cache.LeaderboardCache,
	authSvc *AuthService,
) *SessionService {
	return &SessionService{
		sessionRepo:  sessionRepo,
		turnRepo:     turnRepo,
		sessionCache: sessionCache,
		leaderboard:  leaderboard,
		authSvc:      authSvc,
		broadcaster:  noopBroadcaster{},
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *SessionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Create starts a new session at Act 1 and returns it with its access token
func (s *SessionService) Create(ctx context.Context, req *model.CreateSessionRequest) (*model.CreateSessionResponse, error) {
	if len(req.Players) < MinPlayers || len(req.Players) > MaxPlayers {
		return nil, ErrInvalidRoster
	}

	seen := make(map[string]bool, len(req.Players))
	players := make([]model.Player, 0, len(req.Players))
	for _, p := range req.Players {
		name := strings.TrimSpace(p.Name)
		if name == "" || seen[strings.ToLower(name)] {
			return nil, ErrInvalidRoster
		}
		seen[strings.ToLower(name)] = true
		players = append(players, model.Player{
			ID:     uuid.New().String(),
			Name:   name,
			Avatar: p.Avatar,
		})
	}

	now := time.Now()
	session := &model.Session{
		ID:        uuid.New().String(),
		Players:   players,
		Act:       model.MinAct,
		Status:    model.SessionActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	if err := s.sessionCache.Set(ctx, session); err != nil {
		log.Printf("Failed to cache session %s: %v", session.ID, err)
	}
	if err := s.leaderboard.Init(ctx, session.ID, session.PlayerIDs()); err != nil {
		log.Printf("Failed to init leaderboard for session %s: %v", session.ID, err)
	}

	token, err := s.authSvc.GenerateSessionToken(session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	log.Printf("Session %s created with %d players", session.ID, len(players))
	return &model.CreateSessionResponse{Session: session, Token: token}, nil
}

// Get loads a session from cache, falling back to Mongo
func (s *SessionService) Get(ctx context.Context, id string) (*model.Session, error) {
	session, err := s.sessionCache.Get(ctx, id)
	if err != nil {
		log.Printf("Session cache read failed for %s: %v", id, err)
	}
	if session != nil {
		return session, nil
	}

	session, err = s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if err := s.sessionCache.Set(ctx, session); err != nil {
		log.Printf("Failed to cache session %s: %v", id, err)
	}
	return session, nil
}

func (s *SessionService) getActive(ctx context.Context, id string) (*model.Session, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionActive {
		return nil, ErrSessionEnded
	}
	return session, nil
}

// State loads the session, its turns and the scoreboard concurrently
func (s *SessionService) State(ctx context.Context, id string) (*model.SessionState, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	state := &model.SessionState{Session: session}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		turns, err := s.turnRepo.ListBySession(gctx, id)
		state.Turns = turns
		return err
	})
	g.Go(func() error {
		board, err := s.scoreboard(gctx, session)
		state.Scoreboard = board
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return state, nil
}

// ListTurns returns the session's turn history, oldest first
func (s *SessionService) ListTurns(ctx context.Context, id string) ([]model.Turn, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.turnRepo.ListBySession(ctx, id)
}

// RecordTurn stores a new pending question for a player
func (s *SessionService) RecordTurn(ctx context.Context, sessionID, playerID string, tpl model.TemplateType, prompt string, params map[string]any) (*model.Turn, error) {
	session, err := s.getActive(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	player, ok := session.Player(playerID)
	if !ok {
		return nil, ErrUnknownPlayer
	}

	turn := &model.Turn{
		ID:           uuid.New().String(),
		SessionID:    sessionID,
		PlayerID:     player.ID,
		PlayerName:   player.Name,
		TemplateType: tpl,
		Prompt:       prompt,
		Params:       params,
		Status:       model.TurnPending,
		CreatedAt:    time.Now(),
	}
	if err := s.turnRepo.Create(ctx, turn); err != nil {
		return nil, fmt.Errorf("failed to save turn: %w", err)
	}

	s.broadcaster.BroadcastToSession(sessionID, MsgTurnRecorded, turn)
	return turn, nil
}

// RecordCompletedTurn stores a turn that was answered in one step, such as a mini-game
func (s *SessionService) RecordCompletedTurn(ctx context.Context, turn *model.Turn) error {
	now := time.Now()
	turn.ID = uuid.New().String()
	turn.Status = model.TurnCompleted
	turn.CreatedAt = now
	turn.CompletedAt = &now
	if err := s.turnRepo.Create(ctx, turn); err != nil {
		return fmt.Errorf("failed to save turn: %w", err)
	}
	s.broadcaster.BroadcastToSession(turn.SessionID, MsgTurnCompleted, turn)
	return nil
}

// CompleteTurn records a player's response; a turn can only be completed once
func (s *SessionService) CompleteTurn(ctx context.Context, sessionID, turnID string, req *model.CompleteTurnRequest) (*model.Turn, error) {
	if _, err := s.getActive(ctx, sessionID); err != nil {
		return nil, err
	}
	if len(req.Response) == 0 {
		return nil, ErrEmptyResponse
	}

	turn, err := s.turnRepo.Complete(ctx, sessionID, turnID, repository.TurnCompletion{
		Response:   req.Response,
		Score:      req.Score,
		DurationMS: req.DurationMS,
	})
	if errors.Is(err, repository.ErrTurnNotPending) {
		existing, getErr := s.turnRepo.GetByID(ctx, sessionID, turnID)
		if getErr != nil {
			return nil, getErr
		}
		if existing == nil {
			return nil, ErrTurnNotFound
		}
		return nil, ErrTurnCompleted
	}
	if err != nil {
		return nil, err
	}

	s.broadcaster.BroadcastToSession(sessionID, MsgTurnCompleted, turn)
	if req.Score != nil && *req.Score > 0 {
		if _, err := s.AwardPoints(ctx, sessionID, turn.PlayerID, *req.Score); err != nil {
			log.Printf("Failed to award points for turn %s: %v", turnID, err)
		}
	}
	return turn, nil
}

// GetTurn loads one turn of the session
func (s *SessionService) GetTurn(ctx context.Context, sessionID, turnID string) (*model.Turn, error) {
	turn, err := s.turnRepo.GetByID(ctx, sessionID, turnID)
	if err != nil {
		return nil, err
	}
	if turn == nil {
		return nil, ErrTurnNotFound
	}
	return turn, nil
}

// SetScore stores a judged score on a completed turn
func (s *SessionService) SetScore(ctx context.Context, sessionID, turnID string, score int) error {
	return s.turnRepo.SetScore(ctx, sessionID, turnID, score)
}

// SetAct moves the session forward to act
func (s *SessionService) SetAct(ctx context.Context, id string, act int) (*model.Session, error) {
	session, err := s.getActive(ctx, id)
	if err != nil {
		return nil, err
	}
	if act < model.MinAct || act > model.MaxAct || act < session.Act {
		return nil, ErrInvalidAct
	}
	if act == session.Act {
		return session, nil
	}

	session.Act = act
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	s.broadcaster.BroadcastToSession(id, MsgActChanged, map[string]int{"act": act})
	return session, nil
}

// End closes the session and drops its live connections
func (s *SessionService) End(ctx context.Context, id string) (*model.Session, error) {
	session, err := s.getActive(ctx, id)
	if err != nil {
		return nil, err
	}
	session.Status = model.SessionEnded
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	board, err := s.scoreboard(ctx, session)
	if err != nil {
		log.Printf("Failed to load final scoreboard for %s: %v", id, err)
	}
	s.broadcaster.BroadcastToSession(id, MsgSessionEnded, map[string]any{"scoreboard": board})
	s.broadcaster.DisconnectSession(id)
	return session, nil
}

func (s *SessionService) save(ctx context.Context, session *model.Session) error {
	session.UpdatedAt = time.Now()
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if err := s.sessionCache.Set(ctx, session); err != nil {
		log.Printf("Failed to cache session %s: %v", session.ID, err)
	}
	return nil
}

// AwardPoints adds points to a player's running total and returns the new total
func (s *SessionService) AwardPoints(ctx context.Context, sessionID, playerID string, points int) (int, error) {
	total, err := s.leaderboard.AddPoints(ctx, sessionID, playerID, points)
	if err != nil {
		return 0, err
	}
	rank, err := s.leaderboard.GetRank(ctx, sessionID, playerID)
	if err != nil {
		log.Printf("Failed to rank player %s in %s: %v", playerID, sessionID, err)
	}
	s.broadcaster.BroadcastToSession(sessionID, MsgScoreUpdate, map[string]any{
		"playerId": playerID,
		"points":   points,
		"total":    total,
		"rank":     rank,
	})
	return total, nil
}

// Scoreboard returns every player's score, highest first
func (s *SessionService) Scoreboard(ctx context.Context, id string) ([]model.ScoreboardEntry, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.scoreboard(ctx, session)
}

func (s *SessionService) scoreboard(ctx context.Context, session *model.Session) ([]model.ScoreboardEntry, error) {
	entries, err := s.leaderboard.GetAll(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	scores := make(map[string]int, len(entries))
	for _, e := range entries {
		scores[e.PlayerID] = e.Score
	}
	board := make([]model.ScoreboardEntry, len(session.Players))
	for i, p := range session.Players {
		board[i] = model.ScoreboardEntry{PlayerID: p.ID, Name: p.Name, Score: scores[p.ID]}
	}
	sort.SliceStable(board, func(i, j int) bool { return board[i].Score > board[j].Score })
	for i := range board {
		board[i].Rank = i + 1
	}
	return board, nil
}

// EligibilityContext assembles the eligibility inputs for playerID
func (s *SessionService) EligibilityContext(ctx context.Context, sessionID, playerID string) (game.EligibilityContext, *model.Session, error) {
	session, err := s.getActive(ctx, sessionID)
	if err != nil {
		return game.EligibilityContext{}, nil, err
	}
	if _, ok := session.Player(playerID); !ok {
		return game.EligibilityContext{}, nil, ErrUnknownPlayer
	}
	turns, err := s.turnRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return game.EligibilityContext{}, nil, err
	}
	return game.EligibilityContext{
		CurrentAct:      session.Act,
		CurrentPlayerID: playerID,
		Turns:           turns,
		PlayerIDs:       session.PlayerIDs(),
	}, session, nil
}

// MiniGames reports which mini-games playerID may play right now
func (s *SessionService) MiniGames(ctx context.Context, sessionID, playerID string) ([]game.EligibilityResult, error) {
	ectx, _, err := s.EligibilityContext(ctx, sessionID, playerID)
	if err != nil {
		return nil, err
	}
	results := game.AvailableMiniGames(ectx)
	for i := range results {
		results[i].EligibleTurns = nil // source answers stay server-side
	}
	return results, nil
}
