// internal/store/store.go
//
// Document storage backends for stats, achievements and the leaderboard.
// Implementations:
//   - file:   JSON files in a data directory (persist.Load/Save).
//   - sqlite: a documents table plus round history (mattn/go-sqlite3).
//   - gdata:  the per-user app data directory, YAML encoded.
//   - memory: process-local map, used in tests and as the degraded mode.
//
// Every backend follows load-or-default: Load leaves dst untouched and
// reports persist.SourceDefault when the document is missing or unreadable.

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robalobadob/numberguess/internal/persist"
)

// ErrUnknownDocument is returned for names other than the three documents.
var ErrUnknownDocument = errors.New("store: unknown document")

// Name identifies one persisted document.
type Name string

const (
	Stats        Name = "stats"
	Achievements Name = "achievements"
	Leaderboard  Name = "leaderboard"
)

func (n Name) check() error {
	switch n {
	case Stats, Achievements, Leaderboard:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownDocument, string(n))
}

// fileName maps a document to its file name in the data directory.
func (n Name) fileName() string {
	switch n {
	case Stats:
		return persist.StatsFile
	case Achievements:
		return persist.AchievementsFile
	default:
		return persist.LeaderboardFile
	}
}

// Documents persists the three game documents.
type Documents interface {
	// Load decodes the named document into dst (a non-nil pointer).
	// It reports SourceDefault, leaving dst as-is, when nothing usable is stored.
	// An error means the backend itself failed, not that the document was missing.
	Load(ctx context.Context, name Name, dst any) (persist.Source, error)

	// Save overwrites the named document.
	Save(ctx context.Context, name Name, v any) error

	// Close releases backend resources.
	Close() error
}

// RoundRecord is one finished round kept in the history.
type RoundRecord struct {
	ID         string    `json:"id"`
	Difficulty string    `json:"difficulty"`
	Secret     int       `json:"secret"`
	Guesses    int       `json:"guesses"`
	Won        bool      `json:"won"`
	Score      int       `json:"score"`
	FinishedAt time.Time `json:"finishedAt"`
}

// History is implemented by backends that also keep finished rounds.
type History interface {
	RecordRound(ctx context.Context, r RoundRecord) error
	// RecentRounds returns up to limit rounds, newest first.
	RecentRounds(ctx context.Context, limit int) ([]RoundRecord, error)
}
