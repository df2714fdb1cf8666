package dictionary

import (
	"errors"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"

	"github.com/wordle-sleuth/firstguess/pkg/firstguess"
)

func allowed(classes ...string) [firstguess.WordLength]mapset.Set[rune] {
	var out [firstguess.WordLength]mapset.Set[rune]
	for p := range out {
		out[p] = firstguess.Alphabet()
	}
	for p, class := range classes {
		out[p] = mapset.NewThreadUnsafeSet[rune]([]rune(class)...)
	}
	return out
}

func TestMatch(t *testing.T) {
	dict := New([]string{"alive", "alike", "olive", "brave"}, []string{"cigar", "alive", "robot"})

	type tc struct {
		Name    string
		Allowed [firstguess.WordLength]mapset.Set[rune]
		Words   []string
	}

	for _, tt := range []tc{
		{
			Name:    "everything",
			Allowed: allowed(),
			Words:   []string{"alive", "alike", "olive", "brave", "cigar", "alive", "robot"},
		},
		{
			Name:    "valid words first, duplicates kept",
			Allowed: allowed("a", "l", "i", "v", "e"),
			Words:   []string{"alive", "alive"},
		},
		{
			Name:    "classes",
			Allowed: allowed("ao", "l", "i", "kv"),
			Words:   []string{"alive", "alike", "olive", "alive"},
		},
		{
			Name:    "empty class",
			Allowed: allowed("a", ""),
			Words:   []string{},
		},
		{
			Name:    "nothing matches",
			Allowed: allowed("z"),
			Words:   []string{},
		},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			assert.Equal(t, tt.Words, dict.Match(tt.Allowed))
		})
	}
}

func TestMatchSkipsNonWords(t *testing.T) {
	dict := New([]string{"alive", "ALIVE", "aliv", "alives"}, nil)
	assert.Equal(t, 4, dict.Len())
	assert.Equal(t, []string{"alive"}, dict.Match(allowed()))
}

func TestNewCopies(t *testing.T) {
	valid := []string{"alive"}
	answers := []string{"cigar"}
	dict := New(valid, answers)
	valid[0] = "olive"
	answers[0] = "rebut"

	assert.Equal(t, []string{"alive"}, dict.Valid())
	assert.Equal(t, []string{"cigar"}, dict.Answers())
	assert.Equal(t, []string{"alive"}, dict.Match(allowed("a")))
}

func TestAnswer(t *testing.T) {
	dict := New(nil, []string{"cigar", "rebut", "sissy"})

	answer, err := dict.Answer(1)
	assert.NoError(t, err)
	assert.Equal(t, "rebut", answer)

	for _, day := range []int{-1, 3, 221} {
		_, err := dict.Answer(day)
		var noAnswer NoAnswer
		assert.True(t, errors.As(err, &noAnswer))
		assert.Equal(t, NoAnswer(day), noAnswer)
	}
	assert.EqualError(t, NoAnswer(221), "no answer known for day 221")

	day, ok := dict.Day("sissy")
	assert.True(t, ok)
	assert.Equal(t, 2, day)
	_, ok = dict.Day("alive")
	assert.False(t, ok)
}
