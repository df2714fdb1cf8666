package explain

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordle-sleuth/firstguess/pkg/firstguess"
	"github.com/wordle-sleuth/firstguess/pkg/firstguess/dictionary"
)

func observation(grid, answer string, day int) firstguess.Observation {
	return firstguess.Observation{Guess: firstguess.MustParseGuess(grid), Answer: answer, Day: day}
}

func TestNotSatisfiableError(t *testing.T) {
	type tc struct {
		Name   string
		Error  NotSatisfiable
		String string
	}

	for _, tt := range []tc{
		{
			Name:   "nil",
			String: "observations not satisfiable",
		},
		{
			Name:   "empty",
			Error:  NotSatisfiable{},
			String: "observations not satisfiable",
		},
		{
			Name: "multiple failures",
			Error: NotSatisfiable{
				observation("🟩⬛⬛⬛⬛", "apple", 1),
				observation("🟩⬛⬛⬛⬛", "bacon", 22),
			},
			String: "observations not satisfiable:\n" +
				"[  1] 🟩⬛⬛⬛⬛ (apple)\n" +
				"[ 22] 🟩⬛⬛⬛⬛ (bacon)",
		},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			assert.Equal(t, tt.String, tt.Error.Error())
		})
	}
}

func TestNotSatisfiableDays(t *testing.T) {
	err := NotSatisfiable{
		observation("🟩⬛⬛⬛⬛", "apple", 3),
		observation("⬛🟩⬛⬛⬛", "apple", 3),
		observation("🟩⬛⬛⬛⬛", "bacon", 1),
	}
	assert.Equal(t, []int{3, 1}, err.Days())
}

func TestExplain(t *testing.T) {
	dict := dictionary.New([]string{"alive", "olive", "abide"}, []string{"whack"})

	type tc struct {
		Name         string
		Dictionary   *dictionary.Dictionary
		Observations []firstguess.Observation
		Guess        string
		Conflicting  []int
	}

	for _, tt := range []tc{
		{
			Name:  "no observations",
			Guess: "",
		},
		{
			Name:       "no observations with dictionary",
			Dictionary: dict,
		},
		{
			Name: "full match",
			Observations: []firstguess.Observation{
				observation("🟩🟩🟩🟩🟩", "alive", 5),
			},
			Guess: "alive",
		},
		{
			Name:       "full match with dictionary",
			Dictionary: dict,
			Observations: []firstguess.Observation{
				observation("🟩🟩🟩🟩🟩", "olive", 5),
			},
			Guess: "olive",
		},
		{
			Name: "one position forced to two letters",
			Observations: []firstguess.Observation{
				observation("🟩⬛⬛⬛⬛", "apple", 1),
				observation("🟩⬛⬛⬛⬛", "bacon", 2),
			},
			Conflicting: []int{1, 2},
		},
		{
			Name:       "no dictionary word fits",
			Dictionary: dict,
			Observations: []firstguess.Observation{
				observation("🟩⬛⬛⬛⬛", "bacon", 7),
			},
			Conflicting: []int{7},
		},
	} {
		t.Run(tt.Name, func(t *testing.T) {
			var options []Option
			if tt.Dictionary != nil {
				options = append(options, WithDictionary(tt.Dictionary))
			}
			e, err := New(options...)
			require.NoError(t, err)

			guess, err := e.Explain(context.Background(), tt.Observations)
			if tt.Conflicting != nil {
				var ns NotSatisfiable
				require.True(t, errors.As(err, &ns), "expected NotSatisfiable, got %v", err)
				for _, day := range tt.Conflicting {
					assert.Contains(t, ns.Days(), day)
				}
				return
			}

			require.NoError(t, err)
			assert.True(t, firstguess.IsWord(guess), "witness %q is not a word", guess)
			if tt.Guess != "" {
				assert.Equal(t, tt.Guess, guess)
			}
			if tt.Dictionary != nil {
				assert.Contains(t, tt.Dictionary.Words(), guess)
			}
		})
	}
}

func TestExplainWithoutDictionaryIgnoresExhaustion(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	guess, err := e.Explain(context.Background(), []firstguess.Observation{
		observation("🟩⬛⬛⬛⬛", "bacon", 7),
	})
	require.NoError(t, err)
	assert.Equal(t, byte('b'), guess[0])
}

func TestExplainCancelled(t *testing.T) {
	e, err := New()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Explain(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

// runningSolve never finishes on its own.
type runningSolve struct {
	stopped atomic.Bool
}

func (s *runningSolve) Test() (int, bool) {
	if s.stopped.Load() {
		return 0, true
	}
	return 0, false
}

func (s *runningSolve) Stop() int {
	s.stopped.Store(true)
	return 0
}

func (s *runningSolve) Try(_ time.Duration) int {
	return 0
}

func (s *runningSolve) Wait() int {
	return 0
}

func (s *runningSolve) Pause() (int, bool) {
	return 0, true
}

func (s *runningSolve) Unpause() {}

func TestWaitStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	solve := &runningSolve{}
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := wait(ctx, solve, time.Millisecond)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, solve.stopped.Load())
}

type finishedSolve int

func (s finishedSolve) Test() (int, bool)       { return int(s), true }
func (s finishedSolve) Stop() int               { return int(s) }
func (s finishedSolve) Try(_ time.Duration) int { return int(s) }
func (s finishedSolve) Wait() int               { return int(s) }
func (s finishedSolve) Pause() (int, bool)      { return int(s), false }
func (s finishedSolve) Unpause()                {}

func TestWaitReturnsResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	result, err := wait(ctx, finishedSolve(unsatisfiable), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, unsatisfiable, result)
}
