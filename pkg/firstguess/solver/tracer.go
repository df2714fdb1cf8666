package solver

import (
	"fmt"
	"io"
	"strings"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/wordle-sleuth/firstguess/pkg/firstguess/constraint"
)

// Resolution describes how one position's letters were resolved.
type Resolution interface {
	// Position is zero-based.
	Position() int
	Constraints() []constraint.Constraint
	Allowed() []rune
}

type Tracer interface {
	Trace(r Resolution)
}

type DefaultTracer struct{}

func (DefaultTracer) Trace(_ Resolution) {
}

// LoggingTracer writes each resolution to Writer in a single Write, so
// one LoggingTracer may be shared by concurrent solves.
type LoggingTracer struct {
	Writer io.Writer

	mu sync.Mutex
}

func (t *LoggingTracer) Trace(r Resolution) {
	var b strings.Builder
	fmt.Fprintf(&b, "---\nLetter %d:\n", r.Position()+1)
	for _, c := range r.Constraints() {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	fmt.Fprintf(&b, "Allowed: [%s]\n", string(r.Allowed()))

	t.mu.Lock()
	defer t.mu.Unlock()
	io.WriteString(t.Writer, b.String())
}

type resolution struct {
	position    int
	constraints []constraint.Constraint
	allowed     mapset.Set[rune]
}

func (r resolution) Position() int {
	return r.position
}

func (r resolution) Constraints() []constraint.Constraint {
	return r.constraints
}

func (r resolution) Allowed() []rune {
	return sorted(r.allowed)
}
