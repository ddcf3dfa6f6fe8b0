package tool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateNested(t *testing.T) {
	s := Object(map[string]*Schema{
		"fields": Array("fields", Object(map[string]*Schema{
			"label": String("label"),
		}, "label"), 2, 5),
		"mood": Enum("mood", "happy", "sad"),
	}, "fields")

	require.NoError(t, Validate(map[string]any{
		"fields": []any{map[string]any{"label": "a"}, map[string]any{"label": "b"}},
		"mood":   "happy",
	}, s))

	err := Validate(map[string]any{"fields": []any{map[string]any{"label": "a"}}}, s)
	require.ErrorContains(t, err, "at least 2 items")

	err = Validate(map[string]any{
		"fields": []any{map[string]any{"label": "a"}, map[string]any{}},
	}, s)
	require.ErrorContains(t, err, "fields[1].label")

	err = Validate(map[string]any{
		"fields": []any{map[string]any{"label": "a"}, map[string]any{"label": "b"}},
		"mood":   "angry",
	}, s)
	require.ErrorContains(t, err, "field mood")
}

func TestValidateNilSchemaAndArgs(t *testing.T) {
	require.NoError(t, Validate(nil, nil))
	require.NoError(t, Validate(nil, Object(map[string]*Schema{"x": String("")})))
	require.Error(t, Validate(nil, Object(nil, "x")))
}

func TestValidateStringLength(t *testing.T) {
	min, max := 2, 4
	s := Object(map[string]*Schema{"w": {Type: "string", MinLength: &min, MaxLength: &max}})
	require.NoError(t, Validate(map[string]any{"w": "héy"}, s))
	require.Error(t, Validate(map[string]any{"w": "a"}, s))
	require.Error(t, Validate(map[string]any{"w": "abcde"}, s))
}
