// Package testutil provides in-memory stand-ins for the Mongo repositories,
// Redis caches and model client so services and handlers can be tested
// without external dependencies.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"familyglitch/internal/cache"
	"familyglitch/internal/model"
	"familyglitch/internal/repository"
)

// SessionRepo is an in-memory repository.SessionRepo
type SessionRepo struct {
	mu       sync.Mutex
	sessions map[string]model.Session
}

func NewSessionRepo() *SessionRepo {
	return &SessionRepo{sessions: map[string]model.Session{}}
}

func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = *s
	return nil
}

func (r *SessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *SessionRepo) Update(ctx context.Context, s *model.Session) error {
	return r.Create(ctx, s)
}

// TurnRepo is an in-memory repository.TurnRepo; Complete only matches pending turns
type TurnRepo struct {
	mu    sync.Mutex
	turns []model.Turn
}

func (r *TurnRepo) Create(ctx context.Context, t *model.Turn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	r.turns = append(r.turns, *t)
	return nil
}

func (r *TurnRepo) find(sessionID, turnID string) int {
	for i, t := range r.turns {
		if t.ID == turnID && t.SessionID == sessionID {
			return i
		}
	}
	return -1
}

func (r *TurnRepo) GetByID(ctx context.Context, sessionID, turnID string) (*model.Turn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.find(sessionID, turnID)
	if i < 0 {
		return nil, nil
	}
	t := r.turns[i]
	return &t, nil
}

func (r *TurnRepo) ListBySession(ctx context.Context, sessionID string) ([]model.Turn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Turn{}
	for _, t := range r.turns {
		if t.SessionID == sessionID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *TurnRepo) Complete(ctx context.Context, sessionID, turnID string, c repository.TurnCompletion) (*model.Turn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.find(sessionID, turnID)
	if i < 0 || r.turns[i].Status != model.TurnPending {
		return nil, repository.ErrTurnNotPending
	}
	now := time.Now()
	t := &r.turns[i]
	t.Status = model.TurnCompleted
	t.Response = c.Response
	t.Score = c.Score
	t.DurationMS = c.DurationMS
	t.CompletedAt = &now
	out := *t
	return &out, nil
}

func (r *TurnRepo) SetScore(ctx context.Context, sessionID, turnID string, score int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.find(sessionID, turnID); i >= 0 {
		r.turns[i].Score = &score
	}
	return nil
}

// Len is the number of stored turns across all sessions
func (r *TurnRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.turns)
}

// SessionCache is an in-memory cache.SessionCache
type SessionCache struct {
	mu       sync.Mutex
	sessions map[string]model.Session
}

func (c *SessionCache) Set(ctx context.Context, s *model.Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sessions == nil {
		c.sessions = map[string]model.Session{}
	}
	c.sessions[s.ID] = *s
	return nil
}

func (c *SessionCache) Get(ctx context.Context, id string) (*model.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// Leaderboard is an in-memory cache.LeaderboardCache
type Leaderboard struct {
	mu     sync.Mutex
	scores map[string]map[string]int
}

func (l *Leaderboard) board(sessionID string) map[string]int {
	if l.scores == nil {
		l.scores = map[string]map[string]int{}
	}
	if l.scores[sessionID] == nil {
		l.scores[sessionID] = map[string]int{}
	}
	return l.scores[sessionID]
}

func (l *Leaderboard) Init(ctx context.Context, sessionID string, playerIDs []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.board(sessionID)
	for _, id := range playerIDs {
		if _, ok := b[id]; !ok {
			b[id] = 0
		}
	}
	return nil
}

func (l *Leaderboard) AddPoints(ctx context.Context, sessionID, playerID string, points int) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.board(sessionID)
	b[playerID] += points
	return b[playerID], nil
}

func (l *Leaderboard) GetAll(ctx context.Context, sessionID string) ([]cache.LeaderboardEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []cache.LeaderboardEntry
	for id, s := range l.scores[sessionID] {
		out = append(out, cache.LeaderboardEntry{PlayerID: id, Score: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}

func (l *Leaderboard) GetRank(ctx context.Context, sessionID, playerID string) (int64, error) {
	all, _ := l.GetAll(ctx, sessionID)
	for _, e := range all {
		if e.PlayerID == playerID {
			return int64(e.Rank), nil
		}
	}
	return -1, nil
}

// ChallengeCache is an in-memory cache.ChallengeCache. With StaleReads set,
// Get keeps returning deleted challenges, like a read that raced a delete.
type ChallengeCache struct {
	StaleReads bool

	mu         sync.Mutex
	challenges map[string]model.Challenge
	deleted    map[string]model.Challenge
}

func (c *ChallengeCache) Set(ctx context.Context, ch *model.Challenge) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.challenges == nil {
		c.challenges = map[string]model.Challenge{}
	}
	c.challenges[ch.SessionID+"/"+ch.ID] = *ch
	return nil
}

func (c *ChallengeCache) Get(ctx context.Context, sessionID, id string) (*model.Challenge, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := sessionID + "/" + id
	if ch, ok := c.challenges[key]; ok {
		return &ch, nil
	}
	if ch, ok := c.deleted[key]; ok && c.StaleReads {
		return &ch, nil
	}
	return nil, nil
}

func (c *ChallengeCache) Delete(ctx context.Context, sessionID, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := sessionID + "/" + id
	ch, ok := c.challenges[key]
	if !ok {
		return false, nil
	}
	if c.deleted == nil {
		c.deleted = map[string]model.Challenge{}
	}
	c.deleted[key] = ch
	delete(c.challenges, key)
	return true, nil
}

// UsedTurns is an in-memory cache.UsedTurnCache
type UsedTurns struct {
	mu   sync.Mutex
	used map[string]map[string]bool
}

func (u *UsedTurns) Add(ctx context.Context, sessionID, turnID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.used == nil {
		u.used = map[string]map[string]bool{}
	}
	if u.used[sessionID] == nil {
		u.used[sessionID] = map[string]bool{}
	}
	u.used[sessionID][turnID] = true
	return nil
}

func (u *UsedTurns) Members(ctx context.Context, sessionID string) (map[string]bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := map[string]bool{}
	for k := range u.used[sessionID] {
		out[k] = true
	}
	return out, nil
}
