package thread

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

	"github.com/wordle-sleuth/firstguess/internal/lib/util"
)

// DefaultAPIURL is the Twitter API root.
const DefaultAPIURL = "https://api.twitter.com"

const tweetFields = "author_id,created_at"

// Tweet is the subset of a v2 tweet object the crawler reads.
type Tweet struct {
	ID        string
	Text      string
	AuthorID  string
	CreatedAt time.Time
}

func parseTweet(r gjson.Result) (Tweet, error) {
	t := Tweet{
		ID:       r.Get("id").String(),
		Text:     r.Get("text").String(),
		AuthorID: r.Get("author_id").String(),
	}
	if t.ID == "" {
		return Tweet{}, fmt.Errorf("tweet without id: %.80s", r.Raw)
	}
	if created := r.Get("created_at").String(); created != "" {
		at, err := time.Parse(time.RFC3339, created)
		if err != nil {
			return Tweet{}, fmt.Errorf("tweet %s: invalid created_at %q: %w", t.ID, created, err)
		}
		t.CreatedAt = at
	}
	return t, nil
}

// Authenticate exchanges a consumer key and secret for an app-only
// bearer token.
func Authenticate(ctx context.Context, client *http.Client, apiURL, key, secret string) (string, error) {
	if key == "" || secret == "" {
		return "", errors.New("consumer key and consumer secret are required")
	}
	endpoint := strings.TrimSuffix(apiURL, "/") + "/oauth2/token"
	body, err := util.Fetch(ctx, client, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader("grant_type=client_credentials"))
		if err != nil {
			return nil, err
		}
		req.SetBasicAuth(url.QueryEscape(key), url.QueryEscape(secret))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=UTF-8")
		return req, nil
	}, retry.Attempts(1))
	if err != nil {
		return "", fmt.Errorf("unable to authenticate, check your consumer key and secret: %w", err)
	}

	res := gjson.ParseBytes(body)
	if tt := res.Get("token_type").String(); !strings.EqualFold(tt, "bearer") {
		return "", fmt.Errorf("unexpected token type %q", tt)
	}
	token := res.Get("access_token").String()
	if token == "" {
		return "", errors.New("no access token in response")
	}
	return token, nil
}

// Client reads tweets with the v2 API.
type Client struct {
	apiURL   string
	token    string
	client   *http.Client
	attempts uint
	delay    time.Duration
	log      logrus.FieldLogger
}

type ClientOption func(c *Client) error

func WithAPIURL(u string) ClientOption {
	return func(c *Client) error {
		if _, err := url.Parse(u); err != nil {
			return fmt.Errorf("invalid api url (%s): %w", u, err)
		}
		c.apiURL = strings.TrimSuffix(u, "/")
		return nil
	}
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) error {
		c.client = hc
		return nil
	}
}

// WithRetries sets how often a rate limited or failed request is tried,
// and the initial delay between tries.
func WithRetries(attempts uint, delay time.Duration) ClientOption {
	return func(c *Client) error {
		if attempts == 0 {
			return errors.New("at least one attempt is required")
		}
		c.attempts = attempts
		c.delay = delay
		return nil
	}
}

func WithClientLogger(log logrus.FieldLogger) ClientOption {
	return func(c *Client) error {
		c.log = log
		return nil
	}
}

var clientDefaults = []ClientOption{
	func(c *Client) error {
		if c.apiURL == "" {
			c.apiURL = DefaultAPIURL
		}
		return nil
	},
	func(c *Client) error {
		if c.client == nil {
			c.client = &http.Client{Timeout: 30 * time.Second}
		}
		return nil
	},
	func(c *Client) error {
		if c.attempts == 0 {
			c.attempts = 5
			c.delay = 2 * time.Second
		}
		return nil
	},
	func(c *Client) error {
		if c.log == nil {
			log := logrus.New()
			log.SetOutput(io.Discard)
			c.log = log
		}
		return nil
	},
}

func NewClient(token string, options ...ClientOption) (*Client, error) {
	if token == "" {
		return nil, errors.New("bearer token is required")
	}
	c := Client{token: token}
	for _, option := range append(options, clientDefaults...) {
		if err := option(&c); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (gjson.Result, error) {
	endpoint := c.apiURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	body, err := util.Fetch(ctx, c.client, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		return req, nil
	},
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.OnRetry(func(n uint, err error) {
			c.log.WithError(err).WithFields(logrus.Fields{"path": path, "attempt": n + 1}).Warn("retrying request")
		}),
	)
	if err != nil {
		return gjson.Result{}, err
	}
	res := gjson.ParseBytes(body)
	if errs := res.Get("errors"); errs.Exists() && !res.Get("data").Exists() {
		return gjson.Result{}, fmt.Errorf("%s: %s", path, errs.Get("0.detail").String())
	}
	return res, nil
}

// Tweet looks up a single tweet.
func (c *Client) Tweet(ctx context.Context, id string) (Tweet, error) {
	res, err := c.get(ctx, "/2/tweets/"+url.PathEscape(id), url.Values{"tweet.fields": {tweetFields}})
	if err != nil {
		return Tweet{}, fmt.Errorf("failed to find tweet (%s): %w", id, err)
	}
	return parseTweet(res.Get("data"))
}

// Replies calls fn for every tweet of the conversation rootID starts,
// following pagination until the results run out or fn returns an
// error. Recent search only covers the last seven days.
func (c *Client) Replies(ctx context.Context, rootID string, fn func(Tweet) error) error {
	query := url.Values{
		"query":        {"conversation_id:" + rootID},
		"tweet.fields": {tweetFields},
		"max_results":  {"100"},
	}
	for page := 1; ; page++ {
		res, err := c.get(ctx, "/2/tweets/search/recent", query)
		if err != nil {
			return fmt.Errorf("error searching replies to %s: %w", rootID, err)
		}
		data := res.Get("data").Array()
		c.log.WithFields(logrus.Fields{"page": page, "tweets": len(data)}).Debug("fetched replies")
		for _, r := range data {
			t, err := parseTweet(r)
			if err != nil {
				return err
			}
			if err := fn(t); err != nil {
				return err
			}
		}

		next := res.Get("meta.next_token").String()
		if next == "" {
			return nil
		}
		query.Set("next_token", next)
	}
}
