package game

import (
	"fmt"

	"familyglitch/internal/model"
)

// EligibilityContext is the game state a mini-game offer is judged against
type EligibilityContext struct {
	CurrentAct      int
	CurrentPlayerID string
	Turns           []model.Turn
	PlayerIDs       []string
}

// EligibilityResult says whether a mini-game may be offered and with what data
type EligibilityResult struct {
	GameType      model.MiniGameType `json:"gameType"`
	Eligible      bool               `json:"eligible"`
	Reason        string             `json:"reason,omitempty"`
	EligibleTurns []model.Turn       `json:"eligibleTurns,omitempty"`
}

// Rule gates one mini-game type
type Rule struct {
	MinAct            int
	ActReason         string
	NeedsOtherPlayers bool // quizzes the player about other players' answers
	MinTurns          int  // usable turns required when NeedsOtherPlayers is set
}

var actNames = map[int]string{1: "I", 2: "II", 3: "III"}

func unlockReason(label string, act int) string {
	return fmt.Sprintf("%s unlock in Act %s", label, actNames[act])
}

// Rules is the gating table for every mini-game type
var Rules = map[model.MiniGameType]Rule{
	model.MiniGameTrivia: {
		MinAct:            2,
		ActReason:         unlockReason("Trivia challenges", 2),
		NeedsOtherPlayers: true,
		MinTurns:          1,
	},
	model.MiniGamePersonalityMatch: {
		MinAct:            2,
		ActReason:         unlockReason("Personality matches", 2),
		NeedsOtherPlayers: true,
		MinTurns:          3,
	},
	model.MiniGameMadLibs: {
		MinAct:    1,
		ActReason: unlockReason("Mad libs", 1),
	},
	model.MiniGameCrypticConnection: {
		MinAct:    2,
		ActReason: unlockReason("Cryptic connections", 2),
	},
	model.MiniGameHardTrivia: {
		MinAct:    1,
		ActReason: unlockReason("Hard trivia rounds", 1),
	},
	model.MiniGameTheFilter: {
		MinAct:    2,
		ActReason: unlockReason("Filter challenges", 2),
	},
	model.MiniGameLightningRound: {
		MinAct:            3,
		ActReason:         unlockReason("Lightning rounds", 3),
		NeedsOtherPlayers: true,
		MinTurns:          3,
	},
}

// MiniGameOrder is the stable order mini-games are listed in
var MiniGameOrder = []model.MiniGameType{
	model.MiniGameTrivia,
	model.MiniGamePersonalityMatch,
	model.MiniGameMadLibs,
	model.MiniGameCrypticConnection,
	model.MiniGameHardTrivia,
	model.MiniGameTheFilter,
	model.MiniGameLightningRound,
}

// GetEligibleTurnsForPlayer returns completed turns by other players that carry
// a non-trivial response. Mini-game plays are not source material.
func GetEligibleTurnsForPlayer(turns []model.Turn, playerID string) []model.Turn {
	var out []model.Turn
	for _, t := range turns {
		if t.PlayerID == playerID || t.IsMiniGame() {
			continue
		}
		if !t.IsCompleted() || !t.HasResponse() {
			continue
		}
		out = append(out, t)
	}
	return out
}

// CheckEligibility applies the gating rule for gameType to ctx
func CheckEligibility(gameType model.MiniGameType, ctx EligibilityContext) EligibilityResult {
	res := EligibilityResult{GameType: gameType}

	rule, ok := Rules[gameType]
	if !ok {
		res.Reason = fmt.Sprintf("Unknown mini-game %q", gameType)
		return res
	}
	if ctx.CurrentAct < rule.MinAct {
		res.Reason = rule.ActReason
		return res
	}
	if !rule.NeedsOtherPlayers {
		res.Eligible = true
		return res
	}

	eligible := GetEligibleTurnsForPlayer(ctx.Turns, ctx.CurrentPlayerID)
	if len(eligible) == 0 {
		res.Reason = "No answers from other players yet"
		return res
	}
	if len(eligible) < rule.MinTurns {
		res.Reason = fmt.Sprintf("Needs at least %d answers from other players", rule.MinTurns)
		return res
	}

	res.Eligible = true
	res.EligibleTurns = eligible
	return res
}

// AvailableMiniGames evaluates every mini-game type in MiniGameOrder
func AvailableMiniGames(ctx EligibilityContext) []EligibilityResult {
	out := make([]EligibilityResult, 0, len(MiniGameOrder))
	for _, gt := range MiniGameOrder {
		out = append(out, CheckEligibility(gt, ctx))
	}
	return out
}
