package service

// Event types pushed to a session's screens
const (
	MsgTurnRecorded    = "turn_recorded"
	MsgTurnCompleted   = "turn_completed"
	MsgActChanged      = "act_changed"
	MsgScoreUpdate     = "score_update"
	MsgMiniGameStarted = "minigame_started"
	MsgMiniGameResult  = "minigame_result"
	MsgSessionEnded    = "session_ended"
)

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToSession(sessionID string, msgType string, payload interface{})
	DisconnectSession(sessionID string)
}

type noopBroadcaster struct{}

func (noopBroadcaster) BroadcastToSession(string, string, interface{}) {}
func (noopBroadcaster) DisconnectSession(string)                       {}
