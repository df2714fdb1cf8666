package thread

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wordle-sleuth/firstguess/internal/reply"
	"github.com/wordle-sleuth/firstguess/pkg/firstguess"
	"github.com/wordle-sleuth/firstguess/pkg/firstguess/dictionary"
	"github.com/wordle-sleuth/firstguess/pkg/firstguess/input"
)

// SearchWindow is how far back recent search finds tweets.
const SearchWindow = 7 * 24 * time.Hour

// TweetReader is the part of Client a Source needs.
type TweetReader interface {
	Tweet(ctx context.Context, id string) (Tweet, error)
	Replies(ctx context.Context, rootID string, fn func(Tweet) error) error
}

var _ input.ObservationSource = &Source{}

// Source collects the observations the author of a root tweet posted as
// replies in its thread.
type Source struct {
	tweets   TweetReader
	rootID   string
	dict     *dictionary.Dictionary
	excludes map[int]struct{}
	now      func() time.Time
	log      logrus.FieldLogger
}

type SourceOption func(s *Source) error

// WithExcludes drops the observations of the given days.
func WithExcludes(days ...int) SourceOption {
	return func(s *Source) error {
		for _, d := range days {
			s.excludes[d] = struct{}{}
		}
		return nil
	}
}

func WithSourceLogger(log logrus.FieldLogger) SourceOption {
	return func(s *Source) error {
		s.log = log
		return nil
	}
}

func withNow(now func() time.Time) SourceOption {
	return func(s *Source) error {
		s.now = now
		return nil
	}
}

var sourceDefaults = []SourceOption{
	func(s *Source) error {
		if s.now == nil {
			s.now = time.Now
		}
		return nil
	},
	func(s *Source) error {
		if s.log == nil {
			log := logrus.New()
			log.SetOutput(io.Discard)
			s.log = log
		}
		return nil
	},
}

func NewSource(tweets TweetReader, rootID string, dict *dictionary.Dictionary, options ...SourceOption) (*Source, error) {
	if tweets == nil || dict == nil {
		return nil, errors.New("thread source requires a tweet reader and a dictionary")
	}
	if rootID == "" {
		return nil, errors.New("root tweet id is required")
	}
	s := Source{
		tweets:   tweets,
		rootID:   rootID,
		dict:     dict,
		excludes: map[int]struct{}{},
	}
	for _, option := range append(options, sourceDefaults...) {
		if err := option(&s); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

func (s *Source) Observations(ctx context.Context) ([]firstguess.Observation, error) {
	root, err := s.tweets.Tweet(ctx, s.rootID)
	if err != nil {
		return nil, err
	}
	if age := s.now().Sub(root.CreatedAt); !root.CreatedAt.IsZero() && age >= SearchWindow {
		s.log.WithFields(logrus.Fields{"root": s.rootID, "created_at": root.CreatedAt}).
			Warn("root tweet is over 7 days old; recent search will not find older replies")
	}

	observations := make([]firstguess.Observation, 0, 7)
	err = s.tweets.Replies(ctx, s.rootID, func(t Tweet) error {
		if t.AuthorID != root.AuthorID {
			return nil
		}
		log := s.log.WithField("tweet", t.ID)

		guess, ok := reply.FirstGuess(t.Text)
		if !ok {
			log.Debug("no grid in reply")
			return nil
		}
		day := reply.Day(t.Text, t.CreatedAt)
		if _, excluded := s.excludes[day]; excluded {
			log.WithField("day", day).Debug("excluded day")
			return nil
		}
		answer, err := s.dict.Answer(day)
		if err != nil {
			log.WithError(err).Warn("skipping reply")
			return nil
		}
		o, err := firstguess.NewObservation(guess, answer, day)
		if err != nil {
			log.WithError(err).Warn("skipping reply")
			return nil
		}
		s.log.Info(o.String())
		observations = append(observations, o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return observations, nil
}
