package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/numberguess/internal/game"
	"github.com/robalobadob/numberguess/internal/persist"
	"github.com/robalobadob/numberguess/internal/store"
)

// Tracker holds the loaded documents in memory and writes them back
// through a store.Documents. Save failures are returned but the in-memory
// state is kept, so the session can continue.
type Tracker struct {
	docs  store.Documents
	stats persist.Stats
	ach   persist.Achievements
	board persist.Leaderboard
}

// Result is what RoundFinished reports back.
type Result struct {
	Stats    persist.Stats
	Unlocked []string
}

// NewTracker loads all three documents, falling back to defaults.
// It fails only when the backend itself errors.
func NewTracker(ctx context.Context, docs store.Documents) (*Tracker, error) {
	t := &Tracker{
		docs:  docs,
		stats: persist.DefaultStats(),
		ach:   persist.DefaultAchievements(),
		board: persist.DefaultLeaderboard(),
	}
	for name, dst := range map[store.Name]any{
		store.Stats:        &t.stats,
		store.Achievements: &t.ach,
		store.Leaderboard:  &t.board,
	} {
		src, err := docs.Load(ctx, name, dst)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		log.Debug().Str("document", string(name)).Str("source", src.String()).Msg("document loaded")
	}
	if t.ach == nil {
		t.ach = persist.DefaultAchievements()
	}
	if t.board == nil {
		t.board = persist.DefaultLeaderboard()
	}
	return t, nil
}

// RoundFinished applies the stats and achievement rules for a finished
// round and persists them. score is the session score after the round.
func (t *Tracker) RoundFinished(ctx context.Context, r game.Round, score int) (Result, error) {
	if !r.State.Finished() {
		return Result{Stats: t.stats}, fmt.Errorf("round %s is %s", r.ID, r.State)
	}
	o := OutcomeOf(r, score)
	t.stats = ApplyStats(t.stats, o)
	unlocked := Unlock(&t.ach, t.stats, o)

	log.Info().
		Str("round", r.ID).
		Str("difficulty", string(r.Difficulty)).
		Bool("won", o.Won).
		Int("guesses", o.Guesses).
		Int("score", score).
		Strs("unlocked", unlocked).
		Msg("round finished")

	var errs []error
	if err := t.docs.Save(ctx, store.Stats, t.stats); err != nil {
		errs = append(errs, err)
	}
	if len(unlocked) > 0 {
		if err := t.docs.Save(ctx, store.Achievements, t.ach); err != nil {
			errs = append(errs, err)
		}
	}
	if h, ok := t.docs.(store.History); ok {
		rec := store.RoundRecord{
			ID:         r.ID,
			Difficulty: string(r.Difficulty),
			Secret:     r.Secret,
			Guesses:    o.Guesses,
			Won:        o.Won,
			Score:      score,
			FinishedAt: time.Now().UTC(),
		}
		if err := h.RecordRound(ctx, rec); err != nil {
			errs = append(errs, fmt.Errorf("record round: %w", err))
		}
	}
	return Result{Stats: t.stats, Unlocked: unlocked}, errors.Join(errs...)
}

// RecordScore adds name/score to the leaderboard and saves it.
func (t *Tracker) RecordScore(ctx context.Context, name string, score int) error {
	t.board.Add(name, score)
	return t.docs.Save(ctx, store.Leaderboard, t.board)
}

// Top returns the first n leaderboard entries in display order.
func (t *Tracker) Top(n int) []persist.Entry { return t.board.Top(n) }

// Stats returns the current stats record.
func (t *Tracker) Stats() persist.Stats { return t.stats }

// Achievements returns a copy of the unlocked ids.
func (t *Tracker) Achievements() persist.Achievements {
	return append(persist.Achievements{}, t.ach...)
}

// History returns the backend history, if it keeps one.
func (t *Tracker) History() (store.History, bool) {
	h, ok := t.docs.(store.History)
	return h, ok
}
