package firstguess

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// WordLength is the number of letters in every guess and answer.
const WordLength = 5

// AmbiguityLimit is the largest candidate count that is still reported
// as a list of words rather than just a count.
const AmbiguityLimit = 12

// Cell is the feedback color for one letter position of one guess.
type Cell uint8

const (
	// Nop means the guessed letter is not among the answer letters that
	// were not already matched.
	Nop Cell = iota
	// Partial means the guessed letter is in the answer at another position.
	Partial
	// Match means the guessed letter is the answer letter at this position.
	Match
)

func (c Cell) String() string {
	switch c {
	case Nop:
		return "⬛"
	case Partial:
		return "🟨"
	case Match:
		return "🟩"
	}
	return fmt.Sprintf("Cell(%d)", uint8(c))
}

// CellOf maps a share-grid glyph to a Cell. High contrast mode glyphs
// are accepted as well.
func CellOf(r rune) (Cell, bool) {
	switch r {
	case '⬛', '⬜':
		return Nop, true
	case '🟨', '🟦':
		return Partial, true
	case '🟩', '🟧':
		return Match, true
	}
	return Nop, false
}

// Guess is the feedback pattern of one submitted word.
type Guess [WordLength]Cell

// ParseGuess decodes a line of exactly WordLength feedback glyphs. Lines
// that are anything else (commentary, headers, links) are reported with
// ok == false.
func ParseGuess(line string) (guess Guess, ok bool) {
	line = strings.TrimSpace(line)
	i := 0
	for _, r := range line {
		if i == WordLength {
			return Guess{}, false
		}
		cell, ok := CellOf(r)
		if !ok {
			return Guess{}, false
		}
		guess[i] = cell
		i++
	}
	return guess, i == WordLength
}

// MustParseGuess is like ParseGuess but panics if line is not a guess.
func MustParseGuess(line string) Guess {
	guess, ok := ParseGuess(line)
	if !ok {
		panic(fmt.Sprintf("not a guess: %q", line))
	}
	return guess
}

func (g Guess) String() string {
	var b strings.Builder
	for _, c := range g {
		b.WriteString(c.String())
	}
	return b.String()
}

// Observation pairs the feedback one author got for their first guess
// with the answer of that day.
type Observation struct {
	Guess  Guess
	Answer string
	Day    int
}

// NewObservation returns an Observation after checking that answer is a
// lowercase word of WordLength letters.
func NewObservation(guess Guess, answer string, day int) (Observation, error) {
	if !IsWord(answer) {
		return Observation{}, fmt.Errorf("invalid answer %q for day %d: want %d lowercase letters", answer, day, WordLength)
	}
	return Observation{Guess: guess, Answer: answer, Day: day}, nil
}

func (o Observation) String() string {
	return fmt.Sprintf("[%3d] %s (%s)", o.Day, o.Guess, o.Answer)
}

// IsWord reports whether s has exactly WordLength letters in a-z.
func IsWord(s string) bool {
	if len(s) != WordLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}

// Alphabet returns a new set holding the letters a through z.
func Alphabet() mapset.Set[rune] {
	s := mapset.NewThreadUnsafeSetWithSize[rune](26)
	for c := 'a'; c <= 'z'; c++ {
		s.Add(c)
	}
	return s
}

// OutcomeKind tags the four distinguishable results of a solve.
type OutcomeKind int

const (
	// Impossible means no word is consistent with every observation.
	Impossible OutcomeKind = iota
	// Unique means exactly one word is consistent.
	Unique
	// Ambiguous means between two and the ambiguity limit words are consistent.
	Ambiguous
	// TooMany means more words than the ambiguity limit are consistent.
	TooMany
)

func (k OutcomeKind) String() string {
	switch k {
	case Impossible:
		return "impossible"
	case Unique:
		return "unique"
	case Ambiguous:
		return "ambiguous"
	case TooMany:
		return "too_many"
	}
	return fmt.Sprintf("OutcomeKind(%d)", int(k))
}

// Outcome is the result of a solve.
type Outcome struct {
	Kind OutcomeKind
	// Position is the 1-indexed letter position that has no possible
	// letter left. It is zero for every other outcome, including an
	// Impossible outcome where each position alone still had letters but
	// no dictionary word combines them.
	Position int
	// Candidates holds the matching words for Unique and Ambiguous.
	Candidates []string
	// Count is the number of matching words.
	Count int
	// Pattern is the anchored character class pattern the dictionary was
	// filtered with. Empty when a position had no possible letter.
	Pattern string
}

// Word returns the single candidate of a Unique outcome.
func (o Outcome) Word() (string, bool) {
	if o.Kind != Unique || len(o.Candidates) != 1 {
		return "", false
	}
	return o.Candidates[0], true
}
