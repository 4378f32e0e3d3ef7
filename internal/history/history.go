// Package history persists the user's recent guide searches in a small
// BoltDB file, so the CLI and the browser can offer them again.
package history

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketSearches = []byte("searches")

// DefaultLimit is how many recent searches are retained.
const DefaultLimit = 20

// Entry is one remembered search.
type Entry struct {
	Query string    `json:"query"`
	At    time.Time `json:"at"`
}

// Store keeps recent search queries, newest first, deduplicated by query.
type Store struct {
	db    *bolt.DB
	limit int
}

// Open opens (or creates) the history database under dir. An empty dir yields
// a no-op store that remembers nothing.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return &Store{limit: DefaultLimit}, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(filepath.Join(dir, "history.db"), 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSearches)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, limit: DefaultLimit}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Remember records a search query. Re-searching an old query moves it to the
// front; the oldest entries beyond the retention limit are dropped.
func (s *Store) Remember(query string) error {
	query = strings.TrimSpace(query)
	if s.db == nil || query == "" {
		return nil
	}
	entry := Entry{Query: query, At: time.Now()}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSearches)

		// drop a previous occurrence of the same query
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var old Entry
			if json.Unmarshal(v, &old) == nil && old.Query == query {
				if err := b.Delete(k); err != nil {
					return err
				}
				break
			}
		}

		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		val, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		if err := b.Put(key, val); err != nil {
			return err
		}

		// trim oldest entries beyond the limit
		count := 0
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			count++
		}
		for ; count > s.limit; count-- {
			k, _ := b.Cursor().First()
			if k == nil {
				break
			}
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// Recent returns the remembered searches, newest first.
func (s *Store) Recent() ([]Entry, error) {
	if s.db == nil {
		return nil, nil
	}
	var entries []Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketSearches).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				continue
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
