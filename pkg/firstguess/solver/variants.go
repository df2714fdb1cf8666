package solver

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"github.com/wordle-sleuth/firstguess/pkg/firstguess"
)

// Variant is the outcome of solving with every observation of one day
// left out.
type Variant struct {
	Excluded int
	Outcome  firstguess.Outcome
}

// Variants solves once per distinct day among the observations, leaving
// that day's observations out. The solves run concurrently; the result is
// ordered by excluded day.
func (s *Solver) Variants(ctx context.Context, observations []firstguess.Observation) ([]Variant, error) {
	days := make(map[int]struct{}, len(observations))
	for _, o := range observations {
		days[o.Day] = struct{}{}
	}
	keys := maps.Keys(days)
	slices.Sort(keys)

	variants := make([]Variant, len(keys))
	g, ctx := errgroup.WithContext(ctx)
	for i, day := range keys {
		i, day := i, day
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			kept := make([]firstguess.Observation, 0, len(observations))
			for _, o := range observations {
				if o.Day != day {
					kept = append(kept, o)
				}
			}
			outcome := s.solve(kept, s.log.WithField("excluded", day), logrus.DebugLevel)
			variants[i] = Variant{Excluded: day, Outcome: outcome}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return variants, nil
}
