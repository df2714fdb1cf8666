package thread

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, secret, ok := r.BasicAuth()
		if r.URL.Path != "/oauth2/token" || r.Method != http.MethodPost || !ok || key != "key" || secret != "secret" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		fmt.Fprint(w, `{"token_type":"bearer","access_token":"AAAA"}`)
	}))
	defer server.Close()

	token, err := Authenticate(context.Background(), server.Client(), server.URL, "key", "secret")
	require.NoError(t, err)
	assert.Equal(t, "AAAA", token)

	_, err = Authenticate(context.Background(), server.Client(), server.URL, "key", "wrong")
	assert.Error(t, err)

	_, err = Authenticate(context.Background(), server.Client(), server.URL, "", "")
	assert.Error(t, err)
}

func TestClientTweet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer AAAA", r.Header.Get("Authorization"))
		assert.Equal(t, "author_id,created_at", r.URL.Query().Get("tweet.fields"))
		switch r.URL.Path {
		case "/2/tweets/100":
			fmt.Fprint(w, `{"data":{"id":"100","text":"what's my first guess?","author_id":"7","created_at":"2022-01-26T10:00:00.000Z"}}`)
		default:
			fmt.Fprint(w, `{"errors":[{"detail":"Could not find tweet"}]}`)
		}
	}))
	defer server.Close()

	c, err := NewClient("AAAA", WithAPIURL(server.URL), WithHTTPClient(server.Client()))
	require.NoError(t, err)

	tweet, err := c.Tweet(context.Background(), "100")
	require.NoError(t, err)
	assert.Equal(t, Tweet{
		ID:        "100",
		Text:      "what's my first guess?",
		AuthorID:  "7",
		CreatedAt: time.Date(2022, time.January, 26, 10, 0, 0, 0, time.UTC),
	}, tweet)

	_, err = c.Tweet(context.Background(), "404")
	assert.ErrorContains(t, err, "Could not find tweet")
}

func TestClientReplies(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		assert.Equal(t, "/2/tweets/search/recent", r.URL.Path)
		assert.Equal(t, "conversation_id:100", r.URL.Query().Get("query"))
		switch r.URL.Query().Get("next_token") {
		case "":
			fmt.Fprint(w, `{"data":[{"id":"1","text":"a","author_id":"7"},{"id":"2","text":"b","author_id":"8"}],"meta":{"result_count":2,"next_token":"p2"}}`)
		case "p2":
			fmt.Fprint(w, `{"data":[{"id":"3","text":"c","author_id":"7"}],"meta":{"result_count":1}}`)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer server.Close()

	c, err := NewClient("AAAA", WithAPIURL(server.URL), WithHTTPClient(server.Client()), WithRetries(3, time.Millisecond))
	require.NoError(t, err)

	var ids []string
	err = c.Replies(context.Background(), "100", func(t Tweet) error {
		ids = append(ids, t.ID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ids)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestClientRepliesStopsOnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"id":"1","text":"a","author_id":"7"},{"id":"2","text":"b","author_id":"7"}],"meta":{"next_token":"more"}}`)
	}))
	defer server.Close()

	c, err := NewClient("AAAA", WithAPIURL(server.URL), WithHTTPClient(server.Client()))
	require.NoError(t, err)

	stop := fmt.Errorf("stop")
	seen := 0
	err = c.Replies(context.Background(), "100", func(Tweet) error {
		seen++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, seen)
}

func TestNewClient(t *testing.T) {
	_, err := NewClient("")
	assert.Error(t, err)

	_, err = NewClient("AAAA", WithRetries(0, 0))
	assert.Error(t, err)
}
