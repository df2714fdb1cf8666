package wordlist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/wordle-sleuth/firstguess/pkg/firstguess/dictionary"
	"github.com/wordle-sleuth/firstguess/pkg/firstguess/input"
)

const (
	listValid   = "valid"
	listAnswers = "answers"
)

const schema = `
CREATE TABLE IF NOT EXISTS lists (
	name       TEXT PRIMARY KEY,
	fetched_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS words (
	list     TEXT    NOT NULL REFERENCES lists(name) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	word     TEXT    NOT NULL,
	PRIMARY KEY (list, position)
);`

var _ input.DictionarySource = &Cache{}

// Cache keeps the word lists of an upstream source in a SQLite file. A
// copy younger than the TTL is served without asking upstream; a TTL of
// zero never expires. A stale copy is still served when upstream fails.
type Cache struct {
	db       *sql.DB
	upstream input.DictionarySource
	ttl      time.Duration
	now      func() time.Time
	log      logrus.FieldLogger
}

type CacheOption func(c *Cache) error

func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) error {
		if ttl < 0 {
			return fmt.Errorf("cache ttl must not be negative, got %s", ttl)
		}
		c.ttl = ttl
		return nil
	}
}

func WithCacheLogger(log logrus.FieldLogger) CacheOption {
	return func(c *Cache) error {
		c.log = log
		return nil
	}
}

func withClock(now func() time.Time) CacheOption {
	return func(c *Cache) error {
		c.now = now
		return nil
	}
}

var cacheDefaults = []CacheOption{
	func(c *Cache) error {
		if c.now == nil {
			c.now = time.Now
		}
		return nil
	},
	func(c *Cache) error {
		if c.log == nil {
			c.log = discard()
		}
		return nil
	},
}

// OpenCache opens, creating if missing, the cache database at path.
func OpenCache(path string, upstream input.DictionarySource, options ...CacheOption) (*Cache, error) {
	if upstream == nil {
		return nil, errors.New("cache requires an upstream source")
	}
	c := Cache{upstream: upstream}
	for _, option := range append(options, cacheDefaults...) {
		if err := option(&c); err != nil {
			return nil, err
		}
	}

	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply cache schema: %w", err)
	}
	c.db = db
	return &c, nil
}

func openDB(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) Dictionary(ctx context.Context) (*dictionary.Dictionary, error) {
	valid, answers, fetchedAt, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	cached := !fetchedAt.IsZero()
	if cached && (c.ttl == 0 || c.now().Sub(fetchedAt) < c.ttl) {
		c.log.WithField("fetched_at", fetchedAt).Debug("serving cached word lists")
		return dictionary.New(valid, answers), nil
	}

	dict, err := c.upstream.Dictionary(ctx)
	if err != nil {
		if cached {
			c.log.WithError(err).Warn("upstream word lists unavailable, serving stale copy")
			return dictionary.New(valid, answers), nil
		}
		return nil, err
	}
	if err := c.store(ctx, dict); err != nil {
		return nil, err
	}
	return dict, nil
}

// load returns a zero fetchedAt when nothing is cached.
func (c *Cache) load(ctx context.Context) (valid, answers []string, fetchedAt time.Time, err error) {
	var oldest sql.NullInt64
	var n int
	if err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(1), MIN(fetched_at) FROM lists WHERE name IN (?, ?)`,
		listValid, listAnswers,
	).Scan(&n, &oldest); err != nil {
		return nil, nil, time.Time{}, fmt.Errorf("query cached lists: %w", err)
	}
	if n != 2 || !oldest.Valid {
		return nil, nil, time.Time{}, nil
	}

	if valid, err = c.words(ctx, listValid); err != nil {
		return nil, nil, time.Time{}, err
	}
	if answers, err = c.words(ctx, listAnswers); err != nil {
		return nil, nil, time.Time{}, err
	}
	return valid, answers, time.Unix(oldest.Int64, 0), nil
}

func (c *Cache) words(ctx context.Context, list string) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT word FROM words WHERE list=? ORDER BY position ASC`, list)
	if err != nil {
		return nil, fmt.Errorf("query %s words: %w", list, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (c *Cache) store(ctx context.Context, dict *dictionary.Dictionary) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	fetchedAt := c.now().Unix()
	for _, l := range []struct {
		name  string
		words []string
	}{{listValid, dict.Valid()}, {listAnswers, dict.Answers()}} {
		if err := storeList(ctx, tx, l.name, l.words, fetchedAt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("store %s words: %w", l.name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit word lists: %w", err)
	}
	c.log.WithField("words", dict.Len()).Debug("cached word lists")
	return nil
}

func storeList(ctx context.Context, tx *sql.Tx, name string, words []string, fetchedAt int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM words WHERE list=?`, name); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO lists(name, fetched_at) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET fetched_at=excluded.fetched_at`,
		name, fetchedAt,
	); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO words(list, position, word) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, w := range words {
		if _, err := stmt.ExecContext(ctx, name, i, w); err != nil {
			return err
		}
	}
	return nil
}
