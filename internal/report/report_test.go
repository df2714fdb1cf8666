package report

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordle-sleuth/firstguess/internal/explain"
	"github.com/wordle-sleuth/firstguess/pkg/firstguess"
	"github.com/wordle-sleuth/firstguess/pkg/firstguess/dictionary"
	"github.com/wordle-sleuth/firstguess/pkg/firstguess/solver"
)

const alivePattern = "^[a][l][i][defjqvxyz][e]$"

func TestWriteText(t *testing.T) {
	conflict := []firstguess.Observation{
		{Guess: firstguess.MustParseGuess("🟩⬛⬛⬛⬛"), Answer: "apple", Day: 1},
		{Guess: firstguess.MustParseGuess("🟩⬛⬛⬛⬛"), Answer: "bacon", Day: 2},
	}

	type tc struct {
		Name   string
		Report Report
		Text   string
	}

	for _, tt := range []tc{
		{
			Name: "unique",
			Report: Report{Outcome: firstguess.Outcome{
				Kind: firstguess.Unique, Candidates: []string{"alive"}, Count: 1, Pattern: alivePattern,
			}},
			Text: "Using regex: `" + alivePattern + "`.\n\nIs your first guess.. alive?\n",
		},
		{
			Name: "ambiguous",
			Report: Report{Outcome: firstguess.Outcome{
				Kind: firstguess.Ambiguous, Candidates: []string{"alike", "alive"}, Count: 2, Pattern: "^[a][l][i][kv][e]$",
			}},
			Text: "Using regex: `^[a][l][i][kv][e]$`.\n\n" +
				"Couldn't exactly figure out your preferred first guess but we have some guesses: alike, alive\n",
		},
		{
			Name: "too many",
			Report: Report{Outcome: firstguess.Outcome{
				Kind: firstguess.TooMany, Count: 13, Pattern: "^[ab][a-z][a-z][a-z][a-z]$",
			}},
			Text: "Using regex: `^[ab][a-z][a-z][a-z][a-z]$`.\n\nCouldn't figure it out! (we found 13 possibilities, too many)\n",
		},
		{
			Name: "empty position with explanation and variants",
			Report: Report{
				Observations: conflict,
				Outcome:      firstguess.Outcome{Kind: firstguess.Impossible, Position: 1},
				Explanation:  explain.NotSatisfiable(conflict),
				Variants: []solver.Variant{
					{Excluded: 1, Outcome: firstguess.Outcome{Kind: firstguess.Unique, Candidates: []string{"bxxxx"}, Count: 1}},
					{Excluded: 2, Outcome: firstguess.Outcome{Kind: firstguess.TooMany, Count: 40}},
				},
			},
			Text: ":-( no possible values for letter 1\n\n" +
				"These observations contradict each other:\n" +
				"  [  1] 🟩⬛⬛⬛⬛ (apple)\n" +
				"  [  2] 🟩⬛⬛⬛⬛ (bacon)\n" +
				"Excluding day 1 (--excludes 1) gives: bxxxx\n",
		},
		{
			Name:   "no word fits",
			Report: Report{Outcome: firstguess.Outcome{Kind: firstguess.Impossible, Pattern: "^[q][a-z][a-z][a-z][a-z]$"}},
			Text:   "Using regex: `^[q][a-z][a-z][a-z][a-z]$`.\n\nNo word fits every observation.\n",
		},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tt.Report.Write(&buf, Text))
			assert.Equal(t, tt.Text, buf.String())
		})
	}
}

func TestWriteJSON(t *testing.T) {
	r := Report{
		Observations: []firstguess.Observation{
			{Guess: firstguess.MustParseGuess("🟩⬛⬛⬛⬛"), Answer: "apple", Day: 1},
			{Guess: firstguess.MustParseGuess("🟩⬛⬛⬛⬛"), Answer: "bacon", Day: 2},
		},
		Outcome: firstguess.Outcome{Kind: firstguess.Impossible, Position: 1},
		Explanation: explain.NotSatisfiable{
			{Guess: firstguess.MustParseGuess("🟩⬛⬛⬛⬛"), Answer: "apple", Day: 1},
			{Guess: firstguess.MustParseGuess("🟩⬛⬛⬛⬛"), Answer: "bacon", Day: 2},
		},
		Variants: []solver.Variant{
			{Excluded: 2, Outcome: firstguess.Outcome{Kind: firstguess.Unique, Candidates: []string{"axxxx"}, Count: 1, Pattern: "^[a]$"}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf, JSON))
	assert.JSONEq(t, `{
		"outcome": "impossible",
		"position": 1,
		"candidates": [],
		"count": 0,
		"pattern": "",
		"observations": [
			{"day": 1, "grid": "🟩⬛⬛⬛⬛", "answer": "apple"},
			{"day": 2, "grid": "🟩⬛⬛⬛⬛", "answer": "bacon"}
		],
		"conflicting_days": [1, 2],
		"variants": [
			{"excluded": 2, "outcome": "unique", "position": 0, "candidates": ["axxxx"], "count": 1, "pattern": "^[a]$"}
		]
	}`, buf.String())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, JSON, f)

	_, err = ParseFormat("yaml")
	assert.Error(t, err)
}

func TestAnalyze(t *testing.T) {
	dict := dictionary.New([]string{"abbot", "biddy", "whack"}, []string{"cigar", "apple", "bacon"})
	s, err := solver.New(dict)
	require.NoError(t, err)
	e, err := explain.New(explain.WithDictionary(dict))
	require.NoError(t, err)

	observations := []firstguess.Observation{
		{Guess: firstguess.MustParseGuess("🟩⬛⬛⬛⬛"), Answer: "apple", Day: 1},
		{Guess: firstguess.MustParseGuess("🟩⬛⬛⬛⬛"), Answer: "bacon", Day: 2},
	}

	r, err := Analyze(context.Background(), s, e, observations)
	require.NoError(t, err)
	assert.Equal(t, firstguess.Impossible, r.Outcome.Kind)
	assert.Equal(t, 1, r.Outcome.Position)

	var ns explain.NotSatisfiable
	require.ErrorAs(t, r.Explanation, &ns)
	assert.ElementsMatch(t, []int{1, 2}, ns.Days())

	require.Len(t, r.Variants, 2)
	assert.Equal(t, 1, r.Variants[0].Excluded)
	assert.Equal(t, []string{"biddy"}, r.Variants[0].Outcome.Candidates)
	assert.Equal(t, 2, r.Variants[1].Excluded)
	assert.Equal(t, []string{"abbot"}, r.Variants[1].Outcome.Candidates)

	r, err = Analyze(context.Background(), s, e, observations[:1])
	require.NoError(t, err)
	assert.Equal(t, firstguess.Unique, r.Outcome.Kind)
	assert.Nil(t, r.Explanation)
	assert.Empty(t, r.Variants)
}
