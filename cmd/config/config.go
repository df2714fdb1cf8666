package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/wordle-sleuth/firstguess/internal/explain"
	"github.com/wordle-sleuth/firstguess/internal/report"
	"github.com/wordle-sleuth/firstguess/internal/wordlist"
	"github.com/wordle-sleuth/firstguess/pkg/firstguess"
	"github.com/wordle-sleuth/firstguess/pkg/firstguess/dictionary"
	"github.com/wordle-sleuth/firstguess/pkg/firstguess/input"
	"github.com/wordle-sleuth/firstguess/pkg/firstguess/solver"
)

// ErrImpossible is returned by commands whose observations admit no
// first guess.
var ErrImpossible = errors.New("no first guess fits every observation")

// Config holds the flags shared by every command.
type Config struct {
	Debug       bool
	Trace       bool
	Output      string
	WordsURL    string
	AnswersFile string
	AllowedFile string
	CacheDB     string
	CacheTTL    time.Duration

	log *logrus.Logger
}

func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&c.Debug, "debug", false, "log debug messages")
	fs.BoolVar(&c.Trace, "trace", false, "print how every letter position was resolved")
	fs.StringVarP(&c.Output, "output", "o", string(report.Text), "output format, text or json")
	fs.StringVar(&c.WordsURL, "words-url", envOr("FIRSTGUESS_WORDS_URL", wordlist.DefaultURL), "page to scrape the word lists from")
	fs.StringVar(&c.AnswersFile, "answers-file", os.Getenv("FIRSTGUESS_ANSWERS_FILE"), "read the answers, one per line in day order, from this file instead of the web")
	fs.StringVar(&c.AllowedFile, "allowed-file", os.Getenv("FIRSTGUESS_ALLOWED_FILE"), "read the valid guesses from this file, used with --answers-file")
	fs.StringVar(&c.CacheDB, "cache-db", os.Getenv("FIRSTGUESS_CACHE_DB"), "keep the word lists in this sqlite database")
	fs.DurationVar(&c.CacheTTL, "cache-ttl", 24*time.Hour, "how long cached word lists stay fresh, 0 never expires")
}

// Validate checks flag values that cobra cannot.
func (c *Config) Validate() error {
	if _, err := report.ParseFormat(c.Output); err != nil {
		return err
	}
	if c.AllowedFile != "" && c.AnswersFile == "" {
		return errors.New("--allowed-file requires --answers-file")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("--cache-ttl must not be negative, got %s", c.CacheTTL)
	}
	return nil
}

// Logger returns the logger every component logs through.
func (c *Config) Logger() *logrus.Logger {
	if c.log == nil {
		c.log = logrus.New()
		c.log.SetOutput(os.Stderr)
		c.log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
		if c.Debug {
			c.log.SetLevel(logrus.DebugLevel)
		}
	}
	return c.log
}

func (c *Config) source() (input.DictionarySource, error) {
	if c.AnswersFile != "" {
		return wordlist.Files{Answers: c.AnswersFile, Allowed: c.AllowedFile}, nil
	}
	return wordlist.NewWeb(
		wordlist.WithURL(c.WordsURL),
		wordlist.WithWebLogger(c.Logger().WithField("component", "wordlist")),
	)
}

// Dictionary loads the word lists, through the cache when one is
// configured.
func (c *Config) Dictionary(ctx context.Context) (*dictionary.Dictionary, error) {
	src, err := c.source()
	if err != nil {
		return nil, err
	}
	if c.CacheDB != "" {
		cache, err := wordlist.OpenCache(c.CacheDB, src,
			wordlist.WithTTL(c.CacheTTL),
			wordlist.WithCacheLogger(c.Logger().WithField("component", "cache")),
		)
		if err != nil {
			return nil, err
		}
		defer cache.Close()
		src = cache
	}

	dict, err := src.Dictionary(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading word lists: %w", err)
	}
	c.Logger().WithFields(logrus.Fields{"valid": len(dict.Valid()), "answers": len(dict.Answers())}).Debug("loaded dictionary")
	return dict, nil
}

// Solver builds a solver over dict. Traces go to traceOut.
func (c *Config) Solver(dict *dictionary.Dictionary, traceOut io.Writer) (*solver.Solver, error) {
	options := []solver.Option{solver.WithLogger(c.Logger().WithField("component", "solver"))}
	if c.Trace {
		options = append(options, solver.WithTracer(&solver.LoggingTracer{Writer: traceOut}))
	}
	return solver.New(dict, options...)
}

func (c *Config) Explainer(dict *dictionary.Dictionary) (*explain.Explainer, error) {
	return explain.New(explain.WithDictionary(dict))
}

// Report solves the observations of src and writes the result to out.
// It returns ErrImpossible after writing an Impossible outcome.
func (c *Config) Report(ctx context.Context, out, traceOut io.Writer, dict *dictionary.Dictionary, src input.ObservationSource) error {
	format, err := report.ParseFormat(c.Output)
	if err != nil {
		return err
	}
	observations, err := src.Observations(ctx)
	if err != nil {
		return err
	}
	s, err := c.Solver(dict, traceOut)
	if err != nil {
		return err
	}
	e, err := c.Explainer(dict)
	if err != nil {
		return err
	}

	rep, err := report.Analyze(ctx, s, e, observations)
	if err != nil {
		return err
	}
	if err := rep.Write(out, format); err != nil {
		return err
	}
	if rep.Outcome.Kind == firstguess.Impossible {
		return ErrImpossible
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
