package explain

import (
	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/wordle-sleuth/firstguess/pkg/firstguess"
	"github.com/wordle-sleuth/firstguess/pkg/firstguess/constraint"
	"github.com/wordle-sleuth/firstguess/pkg/firstguess/dictionary"
)

// litMapping performs translation between observations and the literals
// that appear in the SAT formula. letters[p][c] is true when the first
// guess has letter 'a'+c at position p.
type litMapping struct {
	c       *logic.C
	letters [firstguess.WordLength][26]z.Lit

	// positions holds one literal per position stating it has exactly
	// one letter; words states the guess is a dictionary word.
	positions []z.Lit
	words     z.Lit

	inorder      []firstguess.Observation
	observations map[z.Lit][]int
}

func newLitMapping(observations []firstguess.Observation, dict *dictionary.Dictionary) *litMapping {
	d := litMapping{
		c:            logic.NewC(),
		words:        z.LitNull,
		inorder:      observations,
		observations: make(map[z.Lit][]int, len(observations)),
	}

	for p := range d.letters {
		column := make([]z.Lit, 0, 26)
		for c := range d.letters[p] {
			d.letters[p][c] = d.c.Lit()
			column = append(column, d.letters[p][c])
		}
		d.positions = append(d.positions, d.c.And(d.c.Ors(column...), d.c.CardSort(column).Leq(1)))
	}

	if dict != nil {
		words := make([]z.Lit, 0, dict.Len())
		for _, w := range dict.Words() {
			if !firstguess.IsWord(w) {
				continue
			}
			var ms [firstguess.WordLength]z.Lit
			for p := range ms {
				ms[p] = d.letters[p][w[p]-'a']
			}
			words = append(words, d.c.Ands(ms[:]...))
		}
		d.words = d.c.Ors(words...)
	}

	for i, o := range observations {
		cs := constraint.Derive(o.Guess, o.Answer)
		ms := make([]z.Lit, 0, len(cs))
		for p, c := range cs {
			ms = append(ms, d.apply(p, c))
		}
		// identical observations share a literal
		m := d.c.Ands(ms...)
		d.observations[m] = append(d.observations[m], i)
	}

	return &d
}

func (d *litMapping) apply(p int, c constraint.Constraint) z.Lit {
	letters := c.Letters()
	ms := make([]z.Lit, 0, len(letters))
	for _, r := range letters {
		if r < 'a' || r > 'z' {
			continue
		}
		m := d.letters[p][r-'a']
		if c.Kind() == constraint.ForbiddenSet {
			m = m.Not()
		}
		ms = append(ms, m)
	}
	if c.Kind() == constraint.ForbiddenSet {
		return d.c.Ands(ms...)
	}
	return d.c.Ors(ms...)
}

// AddConstraints adds the circuit to the solver g.
func (d *litMapping) AddConstraints(g inter.Adder) {
	d.c.ToCnf(g)
}

// Assumptions returns every literal that must hold for the observations
// to be consistent.
func (d *litMapping) Assumptions() []z.Lit {
	ms := append([]z.Lit(nil), d.positions...)
	if d.words != z.LitNull {
		ms = append(ms, d.words)
	}
	for m := range d.observations {
		ms = append(ms, m)
	}
	return ms
}

// Conflicts maps the failed assumptions of the last solve back to
// observations, in input order.
func (d *litMapping) Conflicts(g inter.Assumable) []firstguess.Observation {
	involved := make([]bool, len(d.inorder))
	for _, why := range g.Why(nil) {
		for _, i := range d.observations[why] {
			involved[i] = true
		}
	}
	var out []firstguess.Observation
	for i, ok := range involved {
		if ok {
			out = append(out, d.inorder[i])
		}
	}
	return out
}

// Guess reads the first guess back out of a satisfying assignment.
func (d *litMapping) Guess(g inter.Model) string {
	word := make([]byte, firstguess.WordLength)
	for p := range d.letters {
		word[p] = '?'
		for c, m := range d.letters[p] {
			if g.Value(m) {
				word[p] = byte('a' + c)
				break
			}
		}
	}
	return string(word)
}
