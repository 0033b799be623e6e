package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	viewedBucket  = []byte("viewedArticles")
	sessionBucket = []byte("session")

	lastSessionKey = []byte("last")
)

type Store struct {
	db  *bolt.DB
	now func() time.Time
}

// Option configures a Store.
type Option func(*storeOptions)

type storeOptions struct {
	timeout time.Duration
	now     func() time.Time
}

// WithTimeout bounds how long opening waits for the file lock.
func WithTimeout(d time.Duration) Option {
	return func(o *storeOptions) {
		o.timeout = d
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *storeOptions) {
		o.now = now
	}
}

func NewStore(dbPath string, opts ...Option) (*Store, error) {
	o := storeOptions{timeout: 1 * time.Second, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: o.timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{viewedBucket, sessionBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db, now: o.now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func itob(id int) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

// MarkViewed records id as viewed. Marking an id again keeps the first
// timestamp. It reports whether the id was new.
func (s *Store) MarkViewed(id int) (bool, error) {
	added := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(viewedBucket)
		key := itob(id)
		if b.Get(key) != nil {
			return nil
		}
		data, err := json.Marshal(ViewedArticle{ID: id, FirstViewed: s.now()})
		if err != nil {
			return err
		}
		added = true
		return b.Put(key, data)
	})
	return added, err
}

// ViewedArticles returns every viewed article ordered by id.
func (s *Store) ViewedArticles() ([]ViewedArticle, error) {
	var viewed []ViewedArticle
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(viewedBucket).ForEach(func(_ []byte, v []byte) error {
			var a ViewedArticle
			if err := json.Unmarshal(v, &a); err != nil {
				return nil
			}
			viewed = append(viewed, a)
			return nil
		})
	})
	sort.Slice(viewed, func(i, j int) bool {
		return viewed[i].ID < viewed[j].ID
	})
	return viewed, err
}

// ViewedIDs returns the viewed ids as a set.
func (s *Store) ViewedIDs() (map[int]bool, error) {
	viewed, err := s.ViewedArticles()
	if err != nil {
		return nil, err
	}
	ids := make(map[int]bool, len(viewed))
	for _, a := range viewed {
		ids[a.ID] = true
	}
	return ids, nil
}

func (s *Store) ClearViewed() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(viewedBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(viewedBucket)
		return err
	})
}

// SaveQuery stores the query string of the current view.
func (s *Store) SaveQuery(query string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(Session{Query: query, SavedAt: s.now()})
		if err != nil {
			return err
		}
		return tx.Bucket(sessionBucket).Put(lastSessionKey, data)
	})
}

// LoadQuery returns the last saved query string, or "" if none was saved.
func (s *Store) LoadQuery() (string, error) {
	var session Session
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(sessionBucket).Get(lastSessionKey)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &session)
	})
	return session.Query, err
}
