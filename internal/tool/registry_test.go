package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"familyglitch/internal/model"
)

func binaryChoiceDef() Definition {
	return Definition{
		Name:        "ask_binary_choice",
		Description: "Ask a timed this-or-that question",
		Parameters: Object(map[string]*Schema{
			"prompt":    String("question"),
			"leftText":  String("left option"),
			"rightText": String("right option"),
			"seconds":   Integer("timer", 3, 30),
		}, "prompt", "leftText", "rightText"),
	}
}

func TestRegistryExecute(t *testing.T) {
	reg := NewRegistry()
	called := 0
	reg.Register(binaryChoiceDef(), func(ctx context.Context, args map[string]any) (*Result, error) {
		called++
		return &Result{TemplateType: model.TemplateTimedBinary, Params: args}, nil
	})

	res, err := reg.Execute(context.Background(), "ask_binary_choice", map[string]any{
		"prompt": "Pizza or Tacos?", "leftText": "Pizza", "rightText": "Tacos", "seconds": float64(10),
	})
	require.NoError(t, err)
	require.Equal(t, 1, called)
	require.Equal(t, model.TemplateTimedBinary, res.TemplateType)
	require.Equal(t, "Pizza", res.Params["leftText"])
}

func TestRegistryUnknownTool(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Execute(context.Background(), "nope", nil)
	require.ErrorIs(t, err, ErrUnknownTool)
}

func TestRegistryRejectsBeforeExecutor(t *testing.T) {
	reg := NewRegistry()
	reg.Register(binaryChoiceDef(), func(ctx context.Context, args map[string]any) (*Result, error) {
		t.Fatal("executor must not run on invalid arguments")
		return nil, nil
	})

	cases := []struct {
		name string
		args map[string]any
	}{
		{"missing required", map[string]any{"prompt": "x", "leftText": "a"}},
		{"wrong type", map[string]any{"prompt": 1, "leftText": "a", "rightText": "b"}},
		{"out of range", map[string]any{"prompt": "x", "leftText": "a", "rightText": "b", "seconds": float64(90)}},
		{"not an integer", map[string]any{"prompt": "x", "leftText": "a", "rightText": "b", "seconds": 4.5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := reg.Execute(context.Background(), "ask_binary_choice", tc.args)
			require.ErrorIs(t, err, ErrInvalidArguments)
		})
	}
}

func TestRegistryExecutorErrorPassesThrough(t *testing.T) {
	reg := NewRegistry()
	boom := errors.New("boom")
	reg.Register(Definition{Name: "fail", Parameters: Object(nil)}, func(ctx context.Context, args map[string]any) (*Result, error) {
		return nil, boom
	})
	_, err := reg.Execute(context.Background(), "fail", map[string]any{})
	require.ErrorIs(t, err, boom)
}

func TestRegistryOverwrite(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Definition{Name: "t", Description: "first"}, func(ctx context.Context, args map[string]any) (*Result, error) {
		return &Result{Data: map[string]any{"v": 1}}, nil
	})
	reg.Register(Definition{Name: "t", Description: "second"}, func(ctx context.Context, args map[string]any) (*Result, error) {
		return &Result{Data: map[string]any{"v": 2}}, nil
	})

	require.Equal(t, 1, reg.Len())
	require.Equal(t, "second", reg.Definitions()[0].Description)
	res, err := reg.Execute(context.Background(), "t", nil)
	require.NoError(t, err)
	require.Equal(t, 2, res.Data["v"])
}

func TestRegistryDefinitions(t *testing.T) {
	reg := NewRegistry()
	noop := func(ctx context.Context, args map[string]any) (*Result, error) { return nil, nil }
	for _, name := range []string{"charlie", "alpha", "bravo"} {
		reg.Register(Definition{Name: name}, noop)
	}

	require.Equal(t, []string{"alpha", "bravo", "charlie"}, reg.Names())

	subset := reg.Definitions("bravo", "missing", "alpha")
	require.Len(t, subset, 2)
	require.Equal(t, "bravo", subset[0].Name)
	require.Equal(t, "alpha", subset[1].Name)

	// repeated calls leave the registry untouched
	require.Len(t, reg.Definitions(), 3)
	require.Equal(t, 3, reg.Len())
}

type fakeProvider struct{ names []string }

func (p fakeProvider) RegisterTools(reg *Registry) {
	for _, n := range p.names {
		reg.Register(Definition{Name: n}, func(ctx context.Context, args map[string]any) (*Result, error) { return nil, nil })
	}
}

func TestRegisterAll(t *testing.T) {
	reg := RegisterAll(NewRegistry(), fakeProvider{[]string{"a", "b"}}, fakeProvider{[]string{"c"}})
	require.Equal(t, []string{"a", "b", "c"}, reg.Names())
}
