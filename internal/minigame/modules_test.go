package minigame

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"familyglitch/internal/model"
)

func sampleInput() GenerateInput {
	players := []model.Player{{ID: "p1", Name: "Ada"}, {ID: "p2", Name: "Bo"}, {ID: "p3", Name: "Cy"}}
	return GenerateInput{
		Player:  players[0],
		Players: players,
		Act:     2,
		SourceTurn: &model.Turn{
			ID: "t1", PlayerID: "p2", PlayerName: "Bo", Prompt: "Favourite snack?",
			TemplateType: model.TemplateTextArea, Status: model.TurnCompleted,
			Response: json.RawMessage(`{"text":"pickled onions"}`),
		},
	}
}

func TestAllModulesHaveValidDefaults(t *testing.T) {
	set := NewSet(All()...)
	require.Len(t, set, 7)
	for gt, m := range set {
		t.Run(string(gt), func(t *testing.T) {
			def := m.DefaultPuzzle(sampleInput())
			// the canned puzzle must pass the module's own validation
			_, err := m.ParsePuzzle(string(def))
			require.NoError(t, err)

			fb := m.FallbackResult()
			require.True(t, fb.Fallback)
			require.Equal(t, TechnicalDifficulty, fb.Commentary)
			require.Less(t, fb.Score, fb.MaxScore)

			require.Contains(t, m.GeneratorPrompt(sampleInput()), "Ada")
		})
	}
}

func TestGenerateFallsBackOnMalformedOutput(t *testing.T) {
	for _, m := range All() {
		got, fellBack := Generate(m, sampleInput(), "I'm sorry, I can't do that.")
		require.True(t, fellBack, m.Type())
		require.JSONEq(t, string(m.DefaultPuzzle(sampleInput())), string(got))
	}
}

func TestHardTriviaParse(t *testing.T) {
	m := HardTrivia{}
	good := `{"question":"Capital of Australia?","options":["Sydney","Canberra","Perth","Melbourne"],"correct_answer":"Canberra"}`
	_, err := m.ParsePuzzle("```json\n" + good + "\n```")
	require.NoError(t, err)

	missingAnswer := `{"question":"Q?","options":["a","b","c","d"]}`
	threeOptions := `{"question":"Q?","options":["a","b","c"],"correct_answer":"a"}`
	notVerbatim := `{"question":"Q?","options":["a","b","c","d"],"correct_answer":"A"}`
	repeated := `{"question":"Q?","options":["a","A","a","b"],"correct_answer":"a"}`
	for _, bad := range []string{missingAnswer, threeOptions, notVerbatim, repeated} {
		_, err := m.ParsePuzzle(bad)
		require.ErrorIs(t, err, ErrInvalidShape)

		puzzle, fellBack := Generate(m, GenerateInput{}, bad)
		require.True(t, fellBack)
		var p HardTriviaPuzzle
		require.NoError(t, json.Unmarshal(puzzle, &p))
		require.Equal(t, "Jupiter", p.CorrectAnswer)
	}
}

func TestHardTriviaScore(t *testing.T) {
	m := HardTrivia{}
	in := ScoreInput{Puzzle: m.DefaultPuzzle(GenerateInput{}), Submission: json.RawMessage(`{"answer":" jupiter "}`)}
	res, err := m.ParseScore(in, "")
	require.NoError(t, err)
	require.Equal(t, 5, res.Score)
	require.Equal(t, "Jupiter", res.CorrectAnswer)

	in.Submission = json.RawMessage(`{"answer":"Mercury"}`)
	res, err = m.ParseScore(in, "")
	require.NoError(t, err)
	require.Equal(t, 0, res.Score)

	prompt, err := m.ScorerPrompt(in)
	require.NoError(t, err)
	require.Empty(t, prompt)
}

func TestTheFilterParse(t *testing.T) {
	m := TheFilter{}
	words := func(prefix string, n int) string {
		out := make([]string, n)
		for i := range out {
			out[i] = fmt.Sprintf("%q", fmt.Sprintf("%s%d", prefix, i))
		}
		return "[" + strings.Join(out, ",") + "]"
	}

	good := fmt.Sprintf(`{"criterion":"c","answer_key":%s,"trick_words":%s}`, words("k", 8), words("t", 5))
	_, err := m.ParsePuzzle(good)
	require.NoError(t, err)

	wrongCount := fmt.Sprintf(`{"criterion":"c","answer_key":%s,"trick_words":%s}`, words("k", 7), words("t", 5))
	_, err = m.ParsePuzzle(wrongCount)
	require.ErrorIs(t, err, ErrInvalidShape)

	overlap := fmt.Sprintf(`{"criterion":"c","answer_key":%s,"trick_words":%s}`, words("k", 8), words("k", 5))
	_, err = m.ParsePuzzle(overlap)
	require.ErrorIs(t, err, ErrInvalidShape)
}

func TestTheFilterScore(t *testing.T) {
	m := TheFilter{}
	puzzle := m.DefaultPuzzle(GenerateInput{})

	res, err := m.ParseScore(ScoreInput{Puzzle: puzzle, Submission: json.RawMessage(
		`{"selected":["Banana","Lemon","Sunflower","Canary","Butter","Corn","Egg yolk","Dandelion"]}`)}, "")
	require.NoError(t, err)
	require.Equal(t, 5, res.Score)

	res, err = m.ParseScore(ScoreInput{Puzzle: puzzle, Submission: json.RawMessage(
		`{"selected":["Taxi","Minion","Orange","Banana"]}`)}, "")
	require.NoError(t, err)
	require.Equal(t, 0, res.Score)
	require.Contains(t, res.Commentary, "fooled by 3")
}

func TestCrypticConnectionParse(t *testing.T) {
	m := CrypticConnection{}
	grid := make([]string, 27)
	for i := range grid {
		grid[i] = fmt.Sprintf("w%d", i)
	}
	build := func(words []string, connected []string) string {
		b, _ := json.Marshal(map[string]any{"words": words, "connection": "numbers", "connected_words": connected})
		return string(b)
	}

	out, err := m.ParsePuzzle(build(grid, []string{"w1", "w2", "w3", "w4"}))
	require.NoError(t, err)
	var p CrypticPuzzle
	require.NoError(t, json.Unmarshal(out, &p))
	require.Len(t, p.Words, 25)

	_, err = m.ParsePuzzle(build(grid[:24], []string{"w1", "w2", "w3", "w4"}))
	require.ErrorIs(t, err, ErrInvalidShape)

	_, err = m.ParsePuzzle(build(grid, []string{"w1", "w2", "w3"}))
	require.ErrorIs(t, err, ErrInvalidShape)

	// connected word cut off by truncation
	_, err = m.ParsePuzzle(build(grid, []string{"w1", "w2", "w3", "w26"}))
	require.ErrorIs(t, err, ErrInvalidShape)

	repeated := append([]string(nil), grid...)
	repeated[5] = "W1"
	_, err = m.ParsePuzzle(build(repeated, []string{"w1", "w2", "w3", "w4"}))
	require.ErrorIs(t, err, ErrInvalidShape)

	_, err = m.ParsePuzzle(build(grid, []string{"w1", "w1", "w2", "w3"}))
	require.ErrorIs(t, err, ErrInvalidShape)
}

func TestCrypticConnectionScoreUsesPuzzleItems(t *testing.T) {
	m := CrypticConnection{}
	in := ScoreInput{
		Puzzle:     m.DefaultPuzzle(GenerateInput{}),
		Submission: json.RawMessage(`{"selected":["Mercury","Saturn","Venus","Mars","Jupiter","Neptune","Piano"],"guess":"planets"}`),
	}

	// 6 connected words + 1 wrong pick + connection worth 3 = 10 possible
	res, err := m.ParseScore(in, `{"commentary":"nice","breakdown":[
		{"item":"connection","points":3,"max":3},
		{"item":"connection","points":3,"max":3}]}`)
	require.NoError(t, err)
	require.Equal(t, 2, res.Score)
	require.Contains(t, res.CorrectAnswer, "Planets")
}

func TestMadLibsParse(t *testing.T) {
	m := MadLibs{}
	_, err := m.ParsePuzzle(`{"template":"___ met ___ at ___","hints":["name","name","place"]}`)
	require.NoError(t, err)

	_, err = m.ParsePuzzle(`{"template":"___ met ___ at ___","hints":["name","name"]}`)
	require.ErrorIs(t, err, ErrInvalidShape)

	_, err = m.ParsePuzzle(`{"template":"___ met ___","hints":["name","name"]}`)
	require.ErrorIs(t, err, ErrInvalidShape)

	p := MadLibsPuzzle{Template: "___ ate ___."}
	require.Equal(t, "ADA ate SOUP.", p.Fill([]string{"Ada", " soup "}))
	require.Equal(t, "ADA ate ___.", p.Fill([]string{"Ada"}))
}

func TestMadLibsScorerRecomputes(t *testing.T) {
	m := MadLibs{}
	in := ScoreInput{
		Player:     model.Player{Name: "Ada"},
		Puzzle:     m.DefaultPuzzle(GenerateInput{}),
		Submission: json.RawMessage(`{"words":["Bo","llama","a tutu","yeet"]}`),
	}
	prompt, err := m.ScorerPrompt(in)
	require.NoError(t, err)
	require.Contains(t, prompt, "LLAMA")

	res, err := m.ParseScore(in, `{"score":5,"commentary":"lol","breakdown":[
		{"item":"a","points":5,"max":5},{"item":"b","points":5,"max":5},
		{"item":"c","points":0,"max":5},{"item":"d","points":0,"max":5}]}`)
	require.NoError(t, err)
	require.Equal(t, 3, res.Score)
	require.Contains(t, res.BonusInfo, "BO opened the fridge")

	// one graded word out of four blanks
	res, err = m.ParseScore(in, `{"commentary":"lol","breakdown":[{"item":"a","points":5,"max":5}]}`)
	require.NoError(t, err)
	require.Equal(t, 1, res.Score)

	// self-declared max cannot shrink the denominator
	res, err = m.ParseScore(in, `{"commentary":"lol","breakdown":[
		{"item":"a","points":1,"max":1},{"item":"b","points":1,"max":1},
		{"item":"c","points":1,"max":1},{"item":"d","points":1,"max":1}]}`)
	require.NoError(t, err)
	require.Equal(t, 1, res.Score)
}

func TestPersonalityMatch(t *testing.T) {
	m := PersonalityMatch{}
	_, err := m.ParsePuzzle(`{"subject":"Bo","descriptors":["a","b","c","d","e","f"],"correct":["a","b","c","d"]}`)
	require.ErrorIs(t, err, ErrInvalidShape)
	_, err = m.ParsePuzzle(`{"subject":"Bo","descriptors":["a","b","c","d","e"],"correct":["a"]}`)
	require.ErrorIs(t, err, ErrInvalidShape)
	_, err = m.ParsePuzzle(`{"subject":"Bo","descriptors":["a","b","c","d","e","f"],"correct":["z"]}`)
	require.ErrorIs(t, err, ErrInvalidShape)

	puzzle, err := m.ParsePuzzle(`{"subject":"Bo","descriptors":["a","b","c","d","e","f"],"correct":["a","b"]}`)
	require.NoError(t, err)

	res, err := m.ParseScore(ScoreInput{Puzzle: puzzle, Submission: json.RawMessage(`{"selected":["A","b"]}`)}, "")
	require.NoError(t, err)
	require.Equal(t, 5, res.Score)

	res, err = m.ParseScore(ScoreInput{Puzzle: puzzle, Submission: json.RawMessage(`{"selected":["a","c","d","e"]}`)}, "")
	require.NoError(t, err)
	require.Equal(t, 0, res.Score)
}

func TestLightningRoundParse(t *testing.T) {
	m := LightningRound{}
	q := func(n int) string {
		items := make([]string, n)
		for i := range items {
			items[i] = fmt.Sprintf(`{"question":"q%d","answer":"a%d"}`, i, i)
		}
		return `{"questions":[` + strings.Join(items, ",") + `]}`
	}

	out, err := m.ParsePuzzle(q(7))
	require.NoError(t, err)
	var p LightningPuzzle
	require.NoError(t, json.Unmarshal(out, &p))
	require.Len(t, p.Questions, 5)
	require.Equal(t, 30, p.Seconds)

	_, err = m.ParsePuzzle(q(2))
	require.ErrorIs(t, err, ErrInvalidShape)
}

func TestLightningRoundScoreUsesPuzzleItems(t *testing.T) {
	m := LightningRound{}
	p := LightningPuzzle{Seconds: 30}
	for i := 0; i < 5; i++ {
		p.Questions = append(p.Questions, LightningQuestion{Question: fmt.Sprintf("q%d", i), Answer: fmt.Sprintf("a%d", i)})
	}
	in := ScoreInput{Puzzle: mustJSON(p), Submission: json.RawMessage(`{"answers":["a0","x","x","x","x"]}`)}

	// only the right answer listed: still one out of five
	res, err := m.ParseScore(in, `{"score":5,"commentary":"speedy","breakdown":[{"item":"q0","points":1,"max":1}]}`)
	require.NoError(t, err)
	require.Equal(t, 1, res.Score)
	require.Equal(t, "a0 / a1 / a2 / a3 / a4", res.CorrectAnswer)

	items := make([]string, 6)
	for i := range items {
		items[i] = `{"item":"q","points":1,"max":1}`
	}
	_, err = m.ParseScore(in, `{"commentary":"x","breakdown":[`+strings.Join(items, ",")+`]}`)
	require.ErrorIs(t, err, ErrInvalidShape)
}

func TestTriviaParseAndDefault(t *testing.T) {
	m := Trivia{}
	_, err := m.ParsePuzzle(`{"question":"What snack?"}`)
	require.ErrorIs(t, err, ErrInvalidShape)

	var p TriviaPuzzle
	require.NoError(t, json.Unmarshal(m.DefaultPuzzle(sampleInput()), &p))
	require.Equal(t, "pickled onions", p.CorrectAnswer)
	require.Equal(t, "Bo", p.SourcePlayer)

	res, err := m.ParseScore(ScoreInput{Puzzle: m.DefaultPuzzle(sampleInput())}, `{"score":4,"commentary":"close"}`)
	require.NoError(t, err)
	require.Equal(t, 4, res.Score)
	require.Equal(t, "pickled onions", res.CorrectAnswer)
}

// every score-producing path stays within [0, maxScore]
func TestScoresStayInRange(t *testing.T) {
	replies := []string{
		`{"score":-4,"commentary":"x"}`,
		`{"score":400,"commentary":"x"}`,
		`{"score":1e300,"commentary":"x"}`,
		`{"score":-1e300,"commentary":"x"}`,
		`{"commentary":"x","breakdown":[{"item":"a","points":100,"max":1}]}`,
	}
	in := sampleInput()
	for _, m := range []Module{Trivia{}, MadLibs{}, CrypticConnection{}, LightningRound{}} {
		for _, r := range replies {
			res, err := m.ParseScore(ScoreInput{Puzzle: m.DefaultPuzzle(in), Submission: json.RawMessage(`{}`)}, r)
			require.NoError(t, err)
			require.GreaterOrEqual(t, res.Score, 0)
			require.LessOrEqual(t, res.Score, res.MaxScore)
		}
	}
}
