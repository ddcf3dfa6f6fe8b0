package service

import (
	"context"
	"errors"
	"fmt"

	"familyglitch/internal/game"
	"familyglitch/internal/model"
	"familyglitch/internal/tool"
)

var ErrNoActiveGame = errors.New("no active game session for this request")

type gameKey struct{}

// GameBinding ties a chat request to a session and the player whose turn it is
type GameBinding struct {
	SessionID string
	PlayerID  string
}

// WithGame binds tool executions made under ctx to a session and player
func WithGame(ctx context.Context, sessionID, playerID string) context.Context {
	return context.WithValue(ctx, gameKey{}, GameBinding{SessionID: sessionID, PlayerID: playerID})
}

// GameFromContext returns the binding set by WithGame
func GameFromContext(ctx context.Context) (GameBinding, bool) {
	b, ok := ctx.Value(gameKey{}).(GameBinding)
	return b, ok && b.SessionID != ""
}

// Template tool names
const (
	ToolAskBinaryChoice  = "ask_binary_choice"
	ToolAskFreeText      = "ask_free_text"
	ToolAskMultiField    = "ask_multi_field"
	ToolAskWordSelection = "ask_word_selection"
	ToolAskPlayerVote    = "ask_player_vote"
	ToolAskRating        = "ask_rating"
)

// StartToolName is the trigger tool name for a mini-game type
func StartToolName(gt model.MiniGameType) string {
	return "start_" + string(gt)
}

// TemplateTools exposes the question templates to the model
type TemplateTools struct {
	sessions *SessionService
}

func NewTemplateTools(sessions *SessionService) *TemplateTools {
	return &TemplateTools{sessions: sessions}
}

// TemplateToolNames lists every template tool
func TemplateToolNames() []string {
	return []string{ToolAskBinaryChoice, ToolAskFreeText, ToolAskMultiField, ToolAskWordSelection, ToolAskPlayerVote, ToolAskRating}
}

func (t *TemplateTools) RegisterTools(reg *tool.Registry) {
	prompt := tool.String("The question shown to the player")

	reg.Register(tool.Definition{
		Name:        ToolAskBinaryChoice,
		Description: "Ask a fast this-or-that question with a countdown timer.",
		Parameters: tool.Object(map[string]*tool.Schema{
			"prompt":    prompt,
			"leftText":  tool.String("Label of the left option"),
			"rightText": tool.String("Label of the right option"),
			"seconds":   tool.Integer("Countdown length in seconds", 3, 30),
		}, "prompt", "leftText", "rightText"),
	}, t.executor(model.TemplateTimedBinary))

	reg.Register(tool.Definition{
		Name:        ToolAskFreeText,
		Description: "Ask an open question the player answers in a text box.",
		Parameters: tool.Object(map[string]*tool.Schema{
			"prompt":      prompt,
			"placeholder": tool.String("Hint text shown in the empty box"),
			"maxLength":   tool.Integer("Maximum answer length", 10, 500),
		}, "prompt"),
	}, t.executor(model.TemplateTextArea))

	reg.Register(tool.Definition{
		Name:        ToolAskMultiField,
		Description: "Ask for several short answers at once, one per labelled field.",
		Parameters: tool.Object(map[string]*tool.Schema{
			"prompt": prompt,
			"fields": tool.Array("Input fields", tool.Object(map[string]*tool.Schema{
				"label":       tool.String("Field label"),
				"placeholder": tool.String("Hint text"),
			}, "label"), 2, 5),
		}, "prompt", "fields"),
	}, t.executor(model.TemplateMultiField))

	reg.Register(tool.Definition{
		Name:        ToolAskWordSelection,
		Description: "Show a grid of words and have the player pick the ones that apply.",
		Parameters: tool.Object(map[string]*tool.Schema{
			"prompt":        prompt,
			"words":         tool.Array("Words in the grid", tool.String("word"), 4, 16),
			"maxSelections": tool.Integer("How many words may be picked", 1, 16),
		}, "prompt", "words"),
	}, t.executor(model.TemplateWordGrid))

	reg.Register(tool.Definition{
		Name:        ToolAskPlayerVote,
		Description: "Ask the player to pick someone at the table.",
		Parameters: tool.Object(map[string]*tool.Schema{
			"prompt":      prompt,
			"allowSelf":   {Type: "boolean", Description: "Whether the player may pick themselves"},
			"multiSelect": {Type: "boolean", Description: "Whether several players may be picked"},
		}, "prompt"),
	}, t.executor(model.TemplatePlayerSelector))

	reg.Register(tool.Definition{
		Name:        ToolAskRating,
		Description: "Ask the player to rate something on a slider.",
		Parameters: tool.Object(map[string]*tool.Schema{
			"prompt":   prompt,
			"min":      tool.Number("Lowest value"),
			"max":      tool.Number("Highest value"),
			"minLabel": tool.String("Label at the low end"),
			"maxLabel": tool.String("Label at the high end"),
		}, "prompt"),
	}, t.executor(model.TemplateSlider))
}

// executor returns the template params as-is and, when the request is bound to
// a session, records a pending turn for them
func (t *TemplateTools) executor(tpl model.TemplateType) tool.Executor {
	return func(ctx context.Context, args map[string]any) (*tool.Result, error) {
		params := make(map[string]any, len(args)+1)
		for k, v := range args {
			params[k] = v
		}
		if tpl == model.TemplateSlider {
			if _, ok := params["min"]; !ok {
				params["min"] = float64(0)
			}
			if _, ok := params["max"]; !ok {
				params["max"] = float64(10)
			}
			lo, _ := params["min"].(float64)
			hi, _ := params["max"].(float64)
			if lo >= hi {
				return nil, fmt.Errorf("min must be below max")
			}
		}

		res := &tool.Result{TemplateType: tpl, Params: params}
		binding, ok := GameFromContext(ctx)
		if !ok {
			return res, nil
		}

		if tpl == model.TemplatePlayerSelector {
			session, err := t.sessions.Get(ctx, binding.SessionID)
			if err != nil {
				return nil, err
			}
			params["players"] = session.Players
		}

		prompt, _ := args["prompt"].(string)
		turn, err := t.sessions.RecordTurn(ctx, binding.SessionID, binding.PlayerID, tpl, prompt, params)
		if err != nil {
			return nil, err
		}
		res.Data = map[string]any{"turnId": turn.ID}
		return res, nil
	}
}

// MiniGameTools exposes a start_<type> trigger per mini-game
type MiniGameTools struct {
	minigames *MinigameService
}

func NewMiniGameTools(minigames *MinigameService) *MiniGameTools {
	return &MiniGameTools{minigames: minigames}
}

func (t *MiniGameTools) RegisterTools(reg *tool.Registry) {
	for _, gt := range game.MiniGameOrder {
		if _, ok := t.minigames.modules[gt]; !ok {
			continue
		}
		rule := game.Rules[gt]
		reg.Register(tool.Definition{
			Name:        StartToolName(gt),
			Description: fmt.Sprintf("Start the %s mini-game for the current player (from Act %d).", gt, rule.MinAct),
			Parameters: tool.Object(map[string]*tool.Schema{
				"intro": tool.String("One line the host says to introduce the game"),
			}),
		}, t.executor(gt))
	}
}

func (t *MiniGameTools) executor(gt model.MiniGameType) tool.Executor {
	return func(ctx context.Context, args map[string]any) (*tool.Result, error) {
		binding, ok := GameFromContext(ctx)
		if !ok {
			return nil, ErrNoActiveGame
		}
		ch, err := t.minigames.Generate(ctx, binding.SessionID, binding.PlayerID, gt)
		if err != nil {
			return nil, err
		}
		params := map[string]any{
			"gameType":    gt,
			"challengeId": ch.ID,
			"puzzle":      puzzleMap(ch.Puzzle),
		}
		if intro, ok := args["intro"].(string); ok {
			params["intro"] = intro
		}
		return &tool.Result{
			TemplateType: model.TemplateMiniGame,
			Params:       params,
			Data:         map[string]any{"challengeId": ch.ID},
		}, nil
	}
}
