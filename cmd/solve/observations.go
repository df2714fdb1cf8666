package solve

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/wordle-sleuth/firstguess/internal/reply"
	"github.com/wordle-sleuth/firstguess/pkg/firstguess"
	"github.com/wordle-sleuth/firstguess/pkg/firstguess/dictionary"
)

// ParseObservations reads observations in either of two forms:
//
//	221 🟨⬛⬛⬛⬛     the day, then the first row
//	whack 🟨⬛⬛⬛⬛   the answer, then the first row
//
// or pasted share texts, where a "Wordle <n>" header line is followed by
// the grid and only its first row counts. Blank lines and lines starting
// with # are skipped. Observations of excluded days are dropped.
func ParseObservations(r io.Reader, dict *dictionary.Dictionary, excludes ...int) ([]firstguess.Observation, error) {
	reader := bufio.NewReader(r)

	excluded := make(map[int]struct{}, len(excludes))
	for _, d := range excludes {
		excluded[d] = struct{}{}
	}

	commentLine := regexp.MustCompile(`^#`)
	dayLine := regexp.MustCompile(`^(\d+)\s+(\S+)$`)
	answerLine := regexp.MustCompile(`^([A-Za-z]{5})\s+(\S+)$`)

	var observations []firstguess.Observation
	add := func(n int, guess firstguess.Guess, answer string, day int) error {
		if _, ok := excluded[day]; ok {
			return nil
		}
		o, err := firstguess.NewObservation(guess, answer, day)
		if err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
		observations = append(observations, o)
		return nil
	}
	answerOf := func(n, day int) (string, error) {
		answer, err := dict.Answer(day)
		if err != nil {
			return "", fmt.Errorf("line %d: %w", n, err)
		}
		return answer, nil
	}

	// header is the day of the share text being read, -1 outside one or
	// once its first row was taken.
	header := -1
	for n := 1; ; n++ {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("error reading observations: %w", err)
		}
		eof := err != nil
		line = strings.TrimSpace(line)

		switch {
		case line == "" || commentLine.MatchString(line):
		case isHeader(line):
			header, _ = reply.Header(line)
		case header >= 0:
			guess, ok := firstguess.ParseGuess(line)
			if !ok {
				return nil, fmt.Errorf("line %d: expected the first row of day %d, got %q", n, header, line)
			}
			answer, err := answerOf(n, header)
			if err != nil {
				return nil, err
			}
			if err := add(n, guess, answer, header); err != nil {
				return nil, err
			}
			header = -1
		case isGrid(line):
			// later rows of a share text
		case dayLine.MatchString(line):
			m := dayLine.FindStringSubmatch(line)
			day, err := strconv.Atoi(m[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid day %s", n, m[1])
			}
			guess, ok := firstguess.ParseGuess(m[2])
			if !ok {
				return nil, fmt.Errorf("line %d: invalid grid row %q", n, m[2])
			}
			answer, err := answerOf(n, day)
			if err != nil {
				return nil, err
			}
			if err := add(n, guess, answer, day); err != nil {
				return nil, err
			}
		case answerLine.MatchString(line):
			m := answerLine.FindStringSubmatch(line)
			guess, ok := firstguess.ParseGuess(m[2])
			if !ok {
				return nil, fmt.Errorf("line %d: invalid grid row %q", n, m[2])
			}
			answer := strings.ToLower(m[1])
			day, ok := dict.Day(answer)
			if !ok {
				// not an answer of any known day, so no day can exclude it
				day = -n
			}
			if err := add(n, guess, answer, day); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("line %d: invalid observation %q, want <day|answer> <row>", n, line)
		}

		if eof {
			break
		}
	}

	if header >= 0 {
		return nil, fmt.Errorf("share text for day %d has no grid", header)
	}
	return observations, nil
}

func isHeader(line string) bool {
	_, ok := reply.Header(line)
	return ok
}

func isGrid(line string) bool {
	_, ok := firstguess.ParseGuess(line)
	return ok
}
