package explain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/inter"

	"github.com/wordle-sleuth/firstguess/pkg/firstguess"
	"github.com/wordle-sleuth/firstguess/pkg/firstguess/dictionary"
)

// NotSatisfiable is an error composed of a set of observations that is
// sufficient to make every first guess impossible.
type NotSatisfiable []firstguess.Observation

func (e NotSatisfiable) Error() string {
	const msg = "observations not satisfiable"
	if len(e) == 0 {
		return msg
	}
	s := make([]string, len(e))
	for i, o := range e {
		s[i] = o.String()
	}
	return fmt.Sprintf("%s:\n%s", msg, strings.Join(s, "\n"))
}

// Days returns the distinct days of the conflicting observations.
func (e NotSatisfiable) Days() []int {
	var days []int
	seen := make(map[int]struct{}, len(e))
	for _, o := range e {
		if _, ok := seen[o.Day]; ok {
			continue
		}
		seen[o.Day] = struct{}{}
		days = append(days, o.Day)
	}
	return days
}

var ErrUnknown = errors.New("solver finished without an answer")

const (
	satisfiable   = 1
	unsatisfiable = -1

	pollInterval = 10 * time.Millisecond
)

type Explainer struct {
	dict *dictionary.Dictionary
}

type Option func(e *Explainer) error

// WithDictionary requires the first guess to be a dictionary word, which
// also catches observations that only conflict across positions.
func WithDictionary(dict *dictionary.Dictionary) Option {
	return func(e *Explainer) error {
		e.dict = dict
		return nil
	}
}

func New(options ...Option) (*Explainer, error) {
	e := Explainer{}
	for _, option := range options {
		if err := option(&e); err != nil {
			return nil, err
		}
	}
	return &e, nil
}

// Explain encodes the observations as a SAT problem. If it is
// satisfiable, one consistent first guess is returned. Otherwise the
// error is a NotSatisfiable holding the observations that conflict.
func (e *Explainer) Explain(ctx context.Context, observations []firstguess.Observation) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	g := gini.New()
	litMap := newLitMapping(observations, e.dict)
	litMap.AddConstraints(g)
	g.Assume(litMap.Assumptions()...)

	result, err := wait(ctx, g.GoSolve(), pollInterval)
	if err != nil {
		return "", err
	}
	switch result {
	case satisfiable:
		return litMap.Guess(g), nil
	case unsatisfiable:
		return "", NotSatisfiable(litMap.Conflicts(g))
	}
	return "", ErrUnknown
}

// wait polls a running solve until it finishes or ctx is done, in which
// case the solve is stopped.
func wait(ctx context.Context, solve inter.Solve, every time.Duration) (int, error) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		if result, done := solve.Test(); done {
			return result, nil
		}
		select {
		case <-ctx.Done():
			solve.Stop()
			return 0, ctx.Err()
		case <-ticker.C:
		}
	}
}
