package dictionary

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/wordle-sleuth/firstguess/pkg/firstguess"
)

// NoAnswer is returned by Answer for a day outside the answer list.
type NoAnswer int

func (e NoAnswer) Error() string {
	return fmt.Sprintf("no answer known for day %d", int(e))
}

// Dictionary holds the valid guesses and the daily answers. It is never
// modified after New returns, so a single Dictionary can be shared by
// concurrent solves.
type Dictionary struct {
	valid   []string
	answers []string
	words   []string

	// letters[p][c] is the set of indexes into words whose letter at
	// position p is 'a'+c.
	letters [firstguess.WordLength][26]*bitset.BitSet
}

// New builds a Dictionary from the valid guess list and the answer list,
// the latter ordered by day starting at day 0. The slices are copied.
func New(valid, answers []string) *Dictionary {
	d := &Dictionary{
		valid:   append([]string(nil), valid...),
		answers: append([]string(nil), answers...),
	}
	d.words = make([]string, 0, len(d.valid)+len(d.answers))
	d.words = append(d.words, d.valid...)
	d.words = append(d.words, d.answers...)

	n := uint(len(d.words))
	for p := range d.letters {
		for c := range d.letters[p] {
			d.letters[p][c] = bitset.New(n)
		}
	}
	for i, w := range d.words {
		// anything else can never satisfy a per-position letter set
		if !firstguess.IsWord(w) {
			continue
		}
		for p := 0; p < firstguess.WordLength; p++ {
			d.letters[p][w[p]-'a'].Set(uint(i))
		}
	}
	return d
}

// Valid returns the valid guess list.
func (d *Dictionary) Valid() []string {
	return d.valid
}

// Answers returns the answer list, indexed by day.
func (d *Dictionary) Answers() []string {
	return d.answers
}

// Words returns the valid guesses followed by the answers.
func (d *Dictionary) Words() []string {
	return d.words
}

// Len returns the number of words in Words.
func (d *Dictionary) Len() int {
	return len(d.words)
}

// Answer returns the answer of the given day.
func (d *Dictionary) Answer(day int) (string, error) {
	if day < 0 || day >= len(d.answers) {
		return "", NoAnswer(day)
	}
	return d.answers[day], nil
}

// Match returns, in Words order, every word whose letter at each position
// is a member of that position's allowed set.
func (d *Dictionary) Match(allowed [firstguess.WordLength]mapset.Set[rune]) []string {
	n := uint(len(d.words))
	result := bitset.New(n).Complement()
	for p, letters := range allowed {
		column := bitset.New(n)
		if letters != nil {
			letters.Each(func(r rune) bool {
				if r >= 'a' && r <= 'z' {
					column.InPlaceUnion(d.letters[p][r-'a'])
				}
				return false
			})
		}
		result.InPlaceIntersection(column)
	}

	out := make([]string, 0, result.Count())
	for i, ok := result.NextSet(0); ok; i, ok = result.NextSet(i + 1) {
		out = append(out, d.words[i])
	}
	return out
}

// Day returns the first day whose answer is word.
func (d *Dictionary) Day(word string) (int, bool) {
	for day, a := range d.answers {
		if a == word {
			return day, true
		}
	}
	return 0, false
}
