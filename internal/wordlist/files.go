package wordlist

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wordle-sleuth/firstguess/pkg/firstguess"
	"github.com/wordle-sleuth/firstguess/pkg/firstguess/dictionary"
	"github.com/wordle-sleuth/firstguess/pkg/firstguess/input"
)

var _ input.DictionarySource = Files{}

// Files reads the word lists from local files. Answers must be in day
// order. Allowed may be empty, in which case the answers are the only
// valid words.
type Files struct {
	Answers string
	Allowed string
}

func (f Files) Dictionary(ctx context.Context) (*dictionary.Dictionary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	answers, err := readWordFile(f.Answers)
	if err != nil {
		return nil, err
	}
	if len(answers) == 0 {
		return nil, fmt.Errorf("answers file (%s) has no words", f.Answers)
	}
	var allowed []string
	if f.Allowed != "" {
		if allowed, err = readWordFile(f.Allowed); err != nil {
			return nil, err
		}
	}
	return dictionary.New(allowed, answers), nil
}

func readWordFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening word file (%s): %w", path, err)
	}
	defer file.Close()

	words, err := ReadWords(file)
	if err != nil {
		return nil, fmt.Errorf("error reading word file (%s): %w", path, err)
	}
	return words, nil
}

// ReadWords reads one word per line. Blank lines and lines starting with
// # are skipped; words are lower-cased and anything that is not a five
// letter word is dropped.
func ReadWords(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		w := strings.ToLower(strings.TrimSpace(sc.Text()))
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		if firstguess.IsWord(w) {
			out = append(out, w)
		}
	}
	return out, sc.Err()
}
