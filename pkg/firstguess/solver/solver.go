package solver

import (
	"errors"
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"

	"github.com/wordle-sleuth/firstguess/pkg/firstguess"
	"github.com/wordle-sleuth/firstguess/pkg/firstguess/constraint"
	"github.com/wordle-sleuth/firstguess/pkg/firstguess/dictionary"
)

// Solver narrows a Dictionary down to the first guesses consistent with
// a set of observations. A Solver holds no per-solve state and may be
// used from several goroutines at once.
type Solver struct {
	dict   *dictionary.Dictionary
	limit  int
	tracer Tracer
	log    logrus.FieldLogger
}

type Option func(s *Solver) error

// WithAmbiguityLimit changes the largest candidate count that is reported
// as Ambiguous instead of TooMany.
func WithAmbiguityLimit(n int) Option {
	return func(s *Solver) error {
		if n < 1 {
			return fmt.Errorf("ambiguity limit must be at least 1, got %d", n)
		}
		s.limit = n
		return nil
	}
}

// WithTracer registers a Tracer that is shown how every position was
// resolved.
func WithTracer(t Tracer) Option {
	return func(s *Solver) error {
		s.tracer = t
		return nil
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Solver) error {
		s.log = log
		return nil
	}
}

var defaults = []Option{
	func(s *Solver) error {
		if s.limit == 0 {
			s.limit = firstguess.AmbiguityLimit
		}
		return nil
	},
	func(s *Solver) error {
		if s.tracer == nil {
			s.tracer = DefaultTracer{}
		}
		return nil
	},
	func(s *Solver) error {
		if s.log == nil {
			log := logrus.New()
			log.SetLevel(logrus.PanicLevel)
			s.log = log
		}
		return nil
	},
}

func New(dict *dictionary.Dictionary, options ...Option) (*Solver, error) {
	if dict == nil {
		return nil, errors.New("solver requires a dictionary")
	}
	s := Solver{dict: dict}
	for _, option := range append(options, defaults...) {
		if err := option(&s); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

// Dictionary returns the dictionary the solver filters.
func (s *Solver) Dictionary() *dictionary.Dictionary {
	return s.dict
}

// Solve derives the constraints of every observation, resolves each
// position to its allowed letters and filters the dictionary. The order
// of observations does not matter.
func (s *Solver) Solve(observations []firstguess.Observation) firstguess.Outcome {
	return s.solve(observations, s.log, logrus.InfoLevel)
}

// solve logs a contradiction at level.
func (s *Solver) solve(observations []firstguess.Observation, log logrus.FieldLogger, level logrus.Level) firstguess.Outcome {
	constraints := Accumulate(observations)
	allowed := Resolve(constraints)

	for p := range allowed {
		s.tracer.Trace(resolution{position: p, constraints: constraints[p], allowed: allowed[p]})
	}

	for p, letters := range allowed {
		if letters.Cardinality() == 0 {
			log.WithField("position", p+1).Log(level, "no possible values for letter")
			return firstguess.Outcome{Kind: firstguess.Impossible, Position: p + 1}
		}
	}

	pattern := Pattern(allowed)
	log.WithField("pattern", pattern).Debug("filtering dictionary")
	return Classify(s.dict.Match(allowed), pattern, s.limit)
}

// Accumulate collects, per position, the constraints contributed by every
// observation in arrival order.
func Accumulate(observations []firstguess.Observation) [firstguess.WordLength][]constraint.Constraint {
	var out [firstguess.WordLength][]constraint.Constraint
	for _, o := range observations {
		for p, c := range constraint.Derive(o.Guess, o.Answer) {
			out[p] = append(out[p], c)
		}
	}
	return out
}

// Resolve folds each position's constraints over the full alphabet. A
// resulting empty set means the constraints contradict each other.
func Resolve(constraints [firstguess.WordLength][]constraint.Constraint) [firstguess.WordLength]mapset.Set[rune] {
	var out [firstguess.WordLength]mapset.Set[rune]
	for p, cs := range constraints {
		possible := firstguess.Alphabet()
		for _, c := range cs {
			possible = c.Apply(possible)
		}
		out[p] = possible
	}
	return out
}

// Pattern renders the allowed sets as an anchored pattern of character
// classes, e.g. ^[a][l][i][defjqvxyz][e]$.
func Pattern(allowed [firstguess.WordLength]mapset.Set[rune]) string {
	var b strings.Builder
	b.WriteString("^")
	for _, letters := range allowed {
		b.WriteString("[")
		b.WriteString(string(sorted(letters)))
		b.WriteString("]")
	}
	b.WriteString("$")
	return b.String()
}

// Classify applies the reporting policy to a list of candidates.
func Classify(candidates []string, pattern string, limit int) firstguess.Outcome {
	outcome := firstguess.Outcome{Count: len(candidates), Pattern: pattern}
	switch n := len(candidates); {
	case n == 0:
		outcome.Kind = firstguess.Impossible
	case n == 1:
		outcome.Kind = firstguess.Unique
		outcome.Candidates = candidates
	case n <= limit:
		outcome.Kind = firstguess.Ambiguous
		outcome.Candidates = candidates
	default:
		outcome.Kind = firstguess.TooMany
	}
	return outcome
}

func sorted(letters mapset.Set[rune]) []rune {
	if letters == nil {
		return nil
	}
	out := letters.ToSlice()
	slices.Sort(out)
	return out
}
