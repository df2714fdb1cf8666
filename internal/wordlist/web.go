package wordlist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/net/html"

	"github.com/wordle-sleuth/firstguess/internal/lib/util"
	"github.com/wordle-sleuth/firstguess/pkg/firstguess"
	"github.com/wordle-sleuth/firstguess/pkg/firstguess/dictionary"
	"github.com/wordle-sleuth/firstguess/pkg/firstguess/input"
)

// DefaultURL is the page whose main script embeds both word lists.
const DefaultURL = "https://www.powerlanguage.co.uk/wordle/"

// firstAnswer is the answer of day 0; the answer array starts with it.
const firstAnswer = "cigar"

var _ input.DictionarySource = &Web{}

// Web scrapes the word lists out of the game's main script.
type Web struct {
	url      string
	client   *http.Client
	attempts uint
	delay    time.Duration
	log      logrus.FieldLogger
}

type WebOption func(w *Web) error

func WithURL(u string) WebOption {
	return func(w *Web) error {
		if _, err := url.Parse(u); err != nil {
			return fmt.Errorf("invalid word list url (%s): %w", u, err)
		}
		w.url = u
		return nil
	}
}

func WithHTTPClient(c *http.Client) WebOption {
	return func(w *Web) error {
		w.client = c
		return nil
	}
}

// WithAttempts sets how often a request is tried before giving up, and
// the delay between tries.
func WithAttempts(n uint, delay time.Duration) WebOption {
	return func(w *Web) error {
		if n == 0 {
			return errors.New("at least one attempt is required")
		}
		w.attempts = n
		w.delay = delay
		return nil
	}
}

func WithWebLogger(log logrus.FieldLogger) WebOption {
	return func(w *Web) error {
		w.log = log
		return nil
	}
}

var webDefaults = []WebOption{
	func(w *Web) error {
		if w.url == "" {
			w.url = DefaultURL
		}
		return nil
	},
	func(w *Web) error {
		if w.client == nil {
			w.client = &http.Client{Timeout: 30 * time.Second}
		}
		return nil
	},
	func(w *Web) error {
		if w.attempts == 0 {
			w.attempts = 3
			w.delay = time.Second
		}
		return nil
	},
	func(w *Web) error {
		if w.log == nil {
			w.log = discard()
		}
		return nil
	},
}

func NewWeb(options ...WebOption) (*Web, error) {
	w := Web{}
	for _, option := range append(options, webDefaults...) {
		if err := option(&w); err != nil {
			return nil, err
		}
	}
	return &w, nil
}

func (w *Web) Dictionary(ctx context.Context) (*dictionary.Dictionary, error) {
	page, err := w.get(ctx, w.url)
	if err != nil {
		return nil, fmt.Errorf("error fetching wordle page: %w", err)
	}
	scriptURL, err := MainScript(strings.NewReader(page), w.url)
	if err != nil {
		return nil, err
	}
	w.log.WithField("script", scriptURL).Debug("found main script")

	script, err := w.get(ctx, scriptURL)
	if err != nil {
		return nil, fmt.Errorf("error fetching main script: %w", err)
	}
	valid, answers, err := ExtractLists(script)
	if err != nil {
		return nil, err
	}
	w.log.WithFields(logrus.Fields{"valid": len(valid), "answers": len(answers)}).Info("fetched word lists")
	return dictionary.New(valid, answers), nil
}

func (w *Web) get(ctx context.Context, u string) (string, error) {
	body, err := util.Fetch(ctx, w.client, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	},
		retry.Attempts(w.attempts),
		retry.Delay(w.delay),
		retry.OnRetry(func(n uint, err error) {
			w.log.WithError(err).WithField("attempt", n+1).Debug("retrying request")
		}),
	)
	return string(body), err
}

// MainScript returns the absolute url of the last script on the page
// whose src starts with "main".
func MainScript(page io.Reader, base string) (string, error) {
	doc, err := html.Parse(page)
	if err != nil {
		return "", fmt.Errorf("error parsing wordle page: %w", err)
	}

	var src string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "script" {
			for _, a := range n.Attr {
				if a.Key == "src" && strings.HasPrefix(a.Val, "main") {
					src = a.Val
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if src == "" {
		return "", errors.New("no main script on the wordle page")
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(src)
	if err != nil {
		return "", fmt.Errorf("invalid script src (%s): %w", src, err)
	}
	return baseURL.ResolveReference(ref).String(), nil
}

// ExtractLists finds the answer array, which starts with the day 0
// answer, and the valid word array following it.
func ExtractLists(script string) (valid, answers []string, err error) {
	start := strings.Index(script, `["`+firstAnswer+`",`)
	if start < 0 {
		return nil, nil, fmt.Errorf("answer list starting with %q not found in script", firstAnswer)
	}
	data := script[start:]
	answers, rest, err := nextArray(data)
	if err != nil {
		return nil, nil, fmt.Errorf("answer list: %w", err)
	}
	open := strings.IndexByte(rest, '[')
	if open < 0 {
		return nil, nil, errors.New("valid word list not found after answer list")
	}
	valid, _, err = nextArray(rest[open:])
	if err != nil {
		return nil, nil, fmt.Errorf("valid word list: %w", err)
	}
	return valid, answers, nil
}

// nextArray parses the flat string array data starts with and returns
// the remainder after it. Words are lowercased; anything that is still
// not a word fails, since dropping an answer would shift every later day.
func nextArray(data string) ([]string, string, error) {
	end := strings.IndexByte(data, ']')
	if end < 0 {
		return nil, "", errors.New("unterminated array")
	}
	raw := data[:end+1]
	if !gjson.Valid(raw) {
		return nil, "", fmt.Errorf("not a json array: %.40s", raw)
	}
	items := gjson.Parse(raw).Array()
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item.Type != gjson.String {
			return nil, "", fmt.Errorf("unexpected array item %s", item.Raw)
		}
		word := strings.ToLower(strings.TrimSpace(item.String()))
		if !firstguess.IsWord(word) {
			return nil, "", fmt.Errorf("invalid word %s", item.Raw)
		}
		out = append(out, word)
	}
	return out, data[end+1:], nil
}

func discard() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
