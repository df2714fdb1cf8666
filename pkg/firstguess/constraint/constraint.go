package constraint

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/exp/slices"

	"github.com/wordle-sleuth/firstguess/pkg/firstguess"
)

// Kind tells whether a Constraint lists the letters a position may hold
// or the letters it may not hold.
type Kind uint8

const (
	AllowedSet Kind = iota
	ForbiddenSet
)

func (k Kind) String() string {
	switch k {
	case AllowedSet:
		return "allowed"
	case ForbiddenSet:
		return "forbidden"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Constraint limits the letters that may appear at one position of the
// first guess. Constraints are immutable once created.
type Constraint struct {
	kind    Kind
	letters mapset.Set[rune]
}

// Allowed returns a Constraint that permits only the given letters.
func Allowed(letters ...rune) Constraint {
	return Constraint{kind: AllowedSet, letters: mapset.NewThreadUnsafeSet[rune](letters...)}
}

// Forbidden returns a Constraint that permits every letter except the
// given ones.
func Forbidden(letters ...rune) Constraint {
	return Constraint{kind: ForbiddenSet, letters: mapset.NewThreadUnsafeSet[rune](letters...)}
}

func (c Constraint) Kind() Kind {
	return c.kind
}

// Letters returns the constraint's letters in ascending order.
func (c Constraint) Letters() []rune {
	if c.letters == nil {
		return nil
	}
	letters := c.letters.ToSlice()
	slices.Sort(letters)
	return letters
}

// Contains reports whether r is one of the constraint's letters.
func (c Constraint) Contains(r rune) bool {
	return c.letters != nil && c.letters.Contains(r)
}

// Apply narrows the set of possible letters. The argument is not
// modified.
func (c Constraint) Apply(possible mapset.Set[rune]) mapset.Set[rune] {
	letters := c.letters
	if letters == nil {
		letters = mapset.NewThreadUnsafeSet[rune]()
	}
	switch c.kind {
	case AllowedSet:
		return possible.Intersect(letters)
	case ForbiddenSet:
		return possible.Difference(letters)
	}
	panic(fmt.Sprintf("unknown constraint kind %s", c.kind))
}

// String renders the constraint as +[abc] for allowed and -[abc] for
// forbidden letters.
func (c Constraint) String() string {
	sign := "+"
	if c.kind == ForbiddenSet {
		sign = "-"
	}
	return fmt.Sprintf("%s[%s]", sign, string(c.Letters()))
}

// Derive returns the constraint each position of the first guess gets
// from one observation. answer must be a word of firstguess.WordLength
// letters.
func Derive(guess firstguess.Guess, answer string) [firstguess.WordLength]Constraint {
	chars := []rune(answer)
	if len(chars) != firstguess.WordLength {
		panic(fmt.Sprintf("invalid answer: len(%v) = %v", answer, len(chars)))
	}

	var out [firstguess.WordLength]Constraint
	for i, cell := range guess {
		switch cell {
		case firstguess.Match:
			out[i] = Allowed(chars[i])
		case firstguess.Partial:
			// The letter that produced the partial is one of the answer
			// letters that weren't matched, but not the one at this spot.
			out[i] = Allowed(unmatched(guess, chars, i)...)
		case firstguess.Nop:
			// The letter isn't any of the unmatched answer letters, else
			// we'd have gotten a partial. It may still be a letter that
			// was matched elsewhere: guessing "fluff" against "foggy"
			// gives 🟩⬛⬛⬛⬛ and the trailing f's are not partials.
			out[i] = Forbidden(unmatched(guess, chars, -1)...)
		default:
			panic(fmt.Sprintf("unknown cell %s at position %d", cell, i))
		}
	}
	return out
}

// unmatched collects the answer letters at positions whose cell is not a
// Match, leaving out position skip.
func unmatched(guess firstguess.Guess, chars []rune, skip int) []rune {
	letters := make([]rune, 0, firstguess.WordLength)
	for j, cell := range guess {
		if j == skip || cell == firstguess.Match {
			continue
		}
		letters = append(letters, chars[j])
	}
	return letters
}
