package model

import "time"

type SessionStatus string

const (
	SessionActive SessionStatus = "active"
	SessionEnded  SessionStatus = "ended"
)

const (
	MinAct = 1
	MaxAct = 3
)

// Session is one pass-and-play game
type Session struct {
	ID        string        `json:"id" bson:"_id"`
	Players   []Player      `json:"players" bson:"players"`
	Act       int           `json:"act" bson:"act"`
	Status    SessionStatus `json:"status" bson:"status"`
	CreatedAt time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// PlayerIDs returns the roster identifiers in seating order
func (s *Session) PlayerIDs() []string {
	ids := make([]string, len(s.Players))
	for i, p := range s.Players {
		ids[i] = p.ID
	}
	return ids
}

// Player looks up a roster entry by id
func (s *Session) Player(id string) (Player, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// CreateSessionRequest is the body for starting a new game
type CreateSessionRequest struct {
	Players []CreatePlayer `json:"players"`
}

type CreatePlayer struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// CreateSessionResponse is returned when a game starts
type CreateSessionResponse struct {
	Session *Session `json:"session"`
	Token   string   `json:"token"`
}

// SetActRequest moves the game to another act
type SetActRequest struct {
	Act int `json:"act"`
}

// SessionState is a session with its turn history and scoreboard
type SessionState struct {
	Session    *Session          `json:"session"`
	Turns      []Turn            `json:"turns"`
	Scoreboard []ScoreboardEntry `json:"scoreboard"`
}
