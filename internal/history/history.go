// Package history keeps per-user suggestion history so repeated analyses
// only report suggestions a user has not seen recently.
package history

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/petrarca/code-pattern-analyzer/internal/types"
)

// Retention is how long a recorded suggestion suppresses its repeats
const Retention = 30 * 24 * time.Hour

// ErrNoUser is returned when an operation is called without a user id
var ErrNoUser = errors.New("user id is required")

// Entry is one recorded suggestion
type Entry struct {
	Key        string           `json:"key"`
	Suggestion types.Suggestion `json:"suggestion"`
	Timestamp  time.Time        `json:"timestamp"`
}

// Store records suggestions per user
type Store interface {
	// Filter drops suggestions already recorded for the user within the retention window
	Filter(user string, suggestions []types.Suggestion) ([]types.Suggestion, error)

	// Add records suggestions for the user and purges expired entries
	Add(user string, suggestions []types.Suggestion) error

	// History returns the non-expired entries of a user, oldest first
	History(user string) ([]Entry, error)

	// Clear forgets everything recorded for the user
	Clear(user string) error
}

// Key identifies a suggestion by type, message and line
func Key(s types.Suggestion) string {
	line := ""
	if s.Line > 0 {
		line = fmt.Sprintf("%d", s.Line)
	}
	sum := md5.Sum([]byte(s.Type + ":" + s.Message + ":" + line))
	return hex.EncodeToString(sum[:])
}

// Record filters suggestions against the store and records the survivors
func Record(store Store, user string, suggestions []types.Suggestion) ([]types.Suggestion, error) {
	fresh, err := store.Filter(user, suggestions)
	if err != nil {
		return nil, err
	}
	if err := store.Add(user, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

// Clock returns the current time
type Clock func() time.Time

func expired(e Entry, now time.Time) bool {
	return !e.Timestamp.After(now.Add(-Retention))
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].Timestamp.Before(entries[j].Timestamp)
		}
		return entries[i].Key < entries[j].Key
	})
}
