package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/petrarca/code-pattern-analyzer/internal/types"
)

// BoltStore persists history in a bbolt file, one bucket per user
type BoltStore struct {
	db  *bolt.DB
	now Clock
}

// NewBoltStore opens (or creates) the history database at path
func NewBoltStore(path string, clock Clock) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database %s: %w", path, err)
	}
	if clock == nil {
		clock = time.Now
	}
	return &BoltStore{db: db, now: clock}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Filter(user string, suggestions []types.Suggestion) ([]types.Suggestion, error) {
	if user == "" {
		return nil, ErrNoUser
	}

	now := s.now()
	fresh := make([]types.Suggestion, 0, len(suggestions))
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(user))
		for _, sg := range suggestions {
			if b != nil {
				if data := b.Get([]byte(Key(sg))); data != nil {
					var e Entry
					if err := json.Unmarshal(data, &e); err == nil && !expired(e, now) {
						continue
					}
				}
			}
			fresh = append(fresh, sg)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fresh, nil
}

func (s *BoltStore) Add(user string, suggestions []types.Suggestion) error {
	if user == "" {
		return ErrNoUser
	}

	now := s.now()
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(user))
		if err != nil {
			return err
		}
		if err := purgeBucket(b, now); err != nil {
			return err
		}
		for _, sg := range suggestions {
			e := Entry{Key: Key(sg), Suggestion: sg, Timestamp: now}
			data, err := json.Marshal(e)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(e.Key), data); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) History(user string) ([]Entry, error) {
	if user == "" {
		return nil, ErrNoUser
	}

	entries := []Entry{}
	now := s.now()
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(user))
		if b == nil {
			return nil
		}
		if err := purgeBucket(b, now); err != nil {
			return err
		}
		return b.ForEach(func(k, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("corrupt history entry %s: %w", k, err)
			}
			entries = append(entries, e)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortEntries(entries)
	return entries, nil
}

func (s *BoltStore) Clear(user string) error {
	if user == "" {
		return ErrNoUser
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		err := tx.DeleteBucket([]byte(user))
		if errors.Is(err, bolt.ErrBucketNotFound) {
			return nil
		}
		return err
	})
}

// purgeBucket deletes expired and unreadable entries
func purgeBucket(b *bolt.Bucket, now time.Time) error {
	var stale [][]byte
	err := b.ForEach(func(k, v []byte) error {
		var e Entry
		if err := json.Unmarshal(v, &e); err != nil || expired(e, now) {
			stale = append(stale, append([]byte(nil), k...))
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, k := range stale {
		if err := b.Delete(k); err != nil {
			return err
		}
	}
	return nil
}
