package wordlist

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordle-sleuth/firstguess/pkg/firstguess/dictionary"
)

type countingSource struct {
	dict  *dictionary.Dictionary
	err   error
	calls int
}

func (s *countingSource) Dictionary(_ context.Context) (*dictionary.Dictionary, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.dict, nil
}

func TestCache(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2022, time.January, 26, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }

	upstream := &countingSource{dict: dictionary.New([]string{"aahed", "aalii"}, []string{"cigar", "rebut", "sissy"})}
	path := filepath.Join(t.TempDir(), "cache", "words.db")

	cache, err := OpenCache(path, upstream, WithTTL(time.Hour), withClock(now))
	require.NoError(t, err)
	defer cache.Close()

	dict, err := cache.Dictionary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, upstream.calls)
	assert.Equal(t, []string{"cigar", "rebut", "sissy"}, dict.Answers())

	// fresh copy
	clock = clock.Add(30 * time.Minute)
	dict, err = cache.Dictionary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, upstream.calls)
	assert.Equal(t, []string{"aahed", "aalii"}, dict.Valid())
	assert.Equal(t, []string{"cigar", "rebut", "sissy"}, dict.Answers())

	// expired copy is refreshed
	clock = clock.Add(time.Hour)
	upstream.dict = dictionary.New([]string{"aahed"}, []string{"cigar", "rebut", "sissy", "humph"})
	dict, err = cache.Dictionary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, upstream.calls)
	assert.Equal(t, []string{"cigar", "rebut", "sissy", "humph"}, dict.Answers())

	// stale copy served when upstream fails
	clock = clock.Add(2 * time.Hour)
	upstream.err = errors.New("offline")
	dict, err = cache.Dictionary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, upstream.calls)
	assert.Equal(t, []string{"aahed"}, dict.Valid())
	assert.Equal(t, []string{"cigar", "rebut", "sissy", "humph"}, dict.Answers())
}

func TestCachePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "words.db")
	upstream := &countingSource{dict: dictionary.New([]string{"aahed"}, []string{"cigar"})}

	first, err := OpenCache(path, upstream)
	require.NoError(t, err)
	_, err = first.Dictionary(ctx)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	// a zero ttl never expires
	second, err := OpenCache(path, upstream)
	require.NoError(t, err)
	defer second.Close()
	dict, err := second.Dictionary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, upstream.calls)
	assert.Equal(t, []string{"aahed", "cigar"}, dict.Words())
}

func TestCacheUpstreamError(t *testing.T) {
	upstream := &countingSource{err: errors.New("offline")}
	cache, err := OpenCache(filepath.Join(t.TempDir(), "words.db"), upstream)
	require.NoError(t, err)
	defer cache.Close()

	_, err = cache.Dictionary(context.Background())
	assert.EqualError(t, err, "offline")
}

func TestOpenCacheOptions(t *testing.T) {
	_, err := OpenCache(filepath.Join(t.TempDir(), "words.db"), nil)
	assert.Error(t, err)

	_, err = OpenCache(filepath.Join(t.TempDir(), "words.db"), &countingSource{}, WithTTL(-time.Second))
	assert.Error(t, err)
}
