package input

import (
	"context"

	"github.com/wordle-sleuth/firstguess/pkg/firstguess"
	"github.com/wordle-sleuth/firstguess/pkg/firstguess/dictionary"
)

// DictionarySource provides the valid guesses and the daily answers.
type DictionarySource interface {
	Dictionary(ctx context.Context) (*dictionary.Dictionary, error)
}

// ObservationSource provides the observations of one author. Days the
// caller asked to exclude are already dropped.
type ObservationSource interface {
	Observations(ctx context.Context) ([]firstguess.Observation, error)
}

// Observations is an ObservationSource over a fixed list.
type Observations []firstguess.Observation

func (o Observations) Observations(_ context.Context) ([]firstguess.Observation, error) {
	return o, nil
}

