package prompt

import (
	"fmt"
	"strings"

	"familyglitch/internal/game"
	"familyglitch/internal/model"
)

const recentTurns = 12

// HostSystemPrompt sets up the host persona with the current game state
func HostSystemPrompt(state *model.SessionState) string {
	var b strings.Builder
	b.WriteString(`You are the host of Family Glitch, a pass-and-play party game. You are witty, warm and a little chaotic.
You never ask a question in plain text: every question goes through exactly one of the ask_* tools, which renders it on the shared screen.
Mini-games are started with the start_* tools; only start one if the game state below lists it as available.
After calling a tool, reply with one short line of banter for the room.
`)

	s := state.Session
	fmt.Fprintf(&b, "\nAct: %d of %d\n", s.Act, model.MaxAct)
	b.WriteString("Players:\n")
	for _, p := range s.Players {
		fmt.Fprintf(&b, "- %s (id %s)\n", p.Name, p.ID)
	}

	if len(state.Scoreboard) > 0 {
		b.WriteString("Scores:\n")
		for _, e := range state.Scoreboard {
			fmt.Fprintf(&b, "- %s: %d\n", e.Name, e.Score)
		}
	}

	b.WriteString("Recent turns:\n")
	b.WriteString(turnLines(state.Turns, recentTurns))
	return b.String()
}

// NextQuestionMessages builds the conversation asking the host for playerID's next question
func NextQuestionMessages(state *model.SessionState, playerID string, available []game.EligibilityResult) []model.Message {
	name := playerID
	if p, ok := state.Session.Player(playerID); ok {
		name = p.Name
	}

	var b strings.Builder
	fmt.Fprintf(&b, "It's %s's turn (player id %s). Pose their next question.", name, playerID)
	var open []string
	for _, r := range available {
		if r.Eligible {
			open = append(open, string(r.GameType))
		}
	}
	if len(open) > 0 {
		fmt.Fprintf(&b, " Mini-games available for them: %s.", strings.Join(open, ", "))
	} else {
		b.WriteString(" No mini-games are available right now.")
	}
	b.WriteString(" Don't repeat a question from the recent turns.")

	return []model.Message{
		model.SystemMessage(HostSystemPrompt(state)),
		model.UserMessage(b.String()),
	}
}

// JudgeTurnPrompt asks for a 0-5 score and commentary on a completed turn
func JudgeTurnPrompt(turn *model.Turn, player model.Player) string {
	return fmt.Sprintf(`You are the host of Family Glitch. Score %s's answer.

Template: %s
Question: %s
Their answer (JSON): %s

Reward honesty, humour and effort. Score from 0 to 5.
Respond ONLY with a JSON object, no markdown and no extra text.
{"score": 0, "commentary": "one playful sentence"}`,
		player.Name, turn.TemplateType, turn.Prompt, string(turn.Response))
}

func turnLines(turns []model.Turn, limit int) string {
	if len(turns) == 0 {
		return "(none yet)\n"
	}
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	var b strings.Builder
	for _, t := range turns {
		fmt.Fprintf(&b, "- %s [%s, %s]: %s", t.PlayerName, t.TemplateType, t.Status, t.Prompt)
		if t.HasResponse() {
			fmt.Fprintf(&b, " -> %s", string(t.Response))
		}
		b.WriteString("\n")
	}
	return b.String()
}
