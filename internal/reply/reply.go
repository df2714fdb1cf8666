package reply

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wordle-sleuth/firstguess/pkg/firstguess"
)

// Epoch is the start of day 0.
var Epoch = time.Date(2021, time.June, 19, 0, 0, 0, 0, time.UTC)

var dayLine = regexp.MustCompile(`^Wordle\s+(\d{1,3}(?:,\d{3})+|\d+)(?:\s|$)`)

// FirstGuess returns the feedback of the first line of text that is a
// grid row. Replies that carry commentary before the grid are fine.
func FirstGuess(text string) (firstguess.Guess, bool) {
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		if guess, ok := firstguess.ParseGuess(scanner.Text()); ok {
			return guess, true
		}
	}
	return firstguess.Guess{}, false
}

// Day returns the puzzle number of a reply. A first line of the form
// "Wordle 221 3/6" names it directly; otherwise it is the number of
// whole days between Epoch and postedAt.
func Day(text string, postedAt time.Time) int {
	if day, ok := Header(text); ok {
		return day
	}
	return DaysSinceEpoch(postedAt)
}

// Header reads the puzzle number from a "Wordle <n>" first line.
func Header(text string) (int, bool) {
	first, _, _ := strings.Cut(text, "\n")
	m := dayLine.FindStringSubmatch(strings.TrimSpace(first))
	if m == nil {
		return 0, false
	}
	day, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0, false
	}
	return day, true
}

// DaysSinceEpoch truncates toward zero.
func DaysSinceEpoch(t time.Time) int {
	return int(t.Sub(Epoch) / (24 * time.Hour))
}
