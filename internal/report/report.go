package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/wordle-sleuth/firstguess/internal/explain"
	"github.com/wordle-sleuth/firstguess/internal/lib/util"
	"github.com/wordle-sleuth/firstguess/pkg/firstguess"
	"github.com/wordle-sleuth/firstguess/pkg/firstguess/solver"
)

// Report is everything known about one solve.
type Report struct {
	Observations []firstguess.Observation
	Outcome      firstguess.Outcome
	// Explanation is set for Impossible outcomes when the conflicting
	// observations could be found.
	Explanation error
	// Variants holds the outcomes with one day left out, for Impossible
	// outcomes.
	Variants []solver.Variant
}

// Format selects how a Report is written.
type Format string

const (
	Text Format = "text"
	JSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case Text, JSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q, want %s or %s", s, Text, JSON)
}

func (r Report) Write(w io.Writer, f Format) error {
	switch f {
	case JSON:
		return r.writeJSON(w)
	case Text, "":
		return r.writeText(w)
	}
	return fmt.Errorf("unknown output format %q", f)
}

func (r Report) writeText(w io.Writer) error {
	var b strings.Builder
	o := r.Outcome
	if o.Position > 0 {
		fmt.Fprintf(&b, ":-( no possible values for letter %d\n", o.Position)
	}
	if o.Pattern != "" {
		fmt.Fprintf(&b, "Using regex: `%s`.\n", o.Pattern)
	}
	b.WriteString("\n")

	switch o.Kind {
	case firstguess.Unique:
		fmt.Fprintf(&b, "Is your first guess.. %s?\n", o.Candidates[0])
	case firstguess.Ambiguous:
		fmt.Fprintf(&b, "Couldn't exactly figure out your preferred first guess but we have some guesses: %s\n", strings.Join(o.Candidates, ", "))
	case firstguess.TooMany:
		fmt.Fprintf(&b, "Couldn't figure it out! (we found %d possibilities, too many)\n", o.Count)
	case firstguess.Impossible:
		if o.Position == 0 {
			b.WriteString("No word fits every observation.\n")
		}
		var ns explain.NotSatisfiable
		if errors.As(r.Explanation, &ns) && len(ns) > 0 {
			b.WriteString("These observations contradict each other:\n")
			for _, obs := range ns {
				fmt.Fprintf(&b, "  %s\n", obs)
			}
		}
		for _, v := range r.Variants {
			if v.Outcome.Kind == firstguess.Unique || v.Outcome.Kind == firstguess.Ambiguous {
				fmt.Fprintf(&b, "Excluding day %d (--excludes %d) gives: %s\n", v.Excluded, v.Excluded, strings.Join(v.Outcome.Candidates, ", "))
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Outcome is the wire form of a firstguess.Outcome.
type Outcome struct {
	Outcome    string   `json:"outcome"`
	Position   int      `json:"position"`
	Candidates []string `json:"candidates"`
	Count      int      `json:"count"`
	Pattern    string   `json:"pattern"`
}

func NewOutcome(o firstguess.Outcome) Outcome {
	candidates := o.Candidates
	if candidates == nil {
		candidates = []string{}
	}
	return Outcome{
		Outcome:    o.Kind.String(),
		Position:   o.Position,
		Candidates: candidates,
		Count:      o.Count,
		Pattern:    o.Pattern,
	}
}

type observation struct {
	Day    int    `json:"day"`
	Grid   string `json:"grid"`
	Answer string `json:"answer"`
}

type variant struct {
	Excluded int `json:"excluded"`
	Outcome
}

type document struct {
	Outcome
	Observations    []observation `json:"observations"`
	ConflictingDays []int         `json:"conflicting_days,omitempty"`
	Variants        []variant     `json:"variants,omitempty"`
}

func (r Report) writeJSON(w io.Writer) error {
	doc := document{
		Outcome:      NewOutcome(r.Outcome),
		Observations: make([]observation, 0, len(r.Observations)),
	}
	for _, o := range r.Observations {
		doc.Observations = append(doc.Observations, observation{Day: o.Day, Grid: o.Guess.String(), Answer: o.Answer})
	}
	var ns explain.NotSatisfiable
	if errors.As(r.Explanation, &ns) {
		doc.ConflictingDays = ns.Days()
	}
	for _, v := range r.Variants {
		doc.Variants = append(doc.Variants, variant{Excluded: v.Excluded, Outcome: NewOutcome(v.Outcome)})
	}

	b, err := util.JSONMarshal(doc)
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

// Analyze solves the observations. When the outcome is Impossible it
// also looks for the conflicting observations and solves once per day
// left out.
func Analyze(ctx context.Context, s *solver.Solver, e *explain.Explainer, observations []firstguess.Observation) (Report, error) {
	r := Report{Observations: observations, Outcome: s.Solve(observations)}
	if r.Outcome.Kind != firstguess.Impossible {
		return r, nil
	}

	if e != nil {
		_, err := e.Explain(ctx, observations)
		var ns explain.NotSatisfiable
		switch {
		case errors.As(err, &ns):
			r.Explanation = ns
		case err != nil:
			return Report{}, err
		}
	}

	variants, err := s.Variants(ctx, observations)
	if err != nil {
		return Report{}, err
	}
	r.Variants = variants
	return r, nil
}
