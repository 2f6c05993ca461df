// internal/game/types.go
//
// Core type definitions for the number guessing engine.
// Defines:
//   - Difficulty: Easy/Medium/Hard and their range/attempt limits.
//   - Feedback: per-guess result (too low / too high / correct).
//   - State: round lifecycle (ready → in_progress → won/lost).
//   - Round: state for a single in-progress or finished round.

package game

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput is returned when a guess is not an integer.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoActiveRound is returned when guessing before any round started.
	ErrNoActiveRound = errors.New("no active round")
	// ErrRoundOver is returned when guessing after the round was won or lost.
	ErrRoundOver = errors.New("round over")
	// ErrUnknownDifficulty is returned by ParseDifficulty.
	ErrUnknownDifficulty = errors.New("unknown difficulty")
)

// Difficulty selects the secret range and the number of attempts.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// DefaultDifficulty is preselected when none is given.
const DefaultDifficulty = Medium

// Limits is one row of the difficulty table.
type Limits struct {
	RangeMax    int
	MaxAttempts int
}

var limits = map[Difficulty]Limits{
	Easy:   {RangeMax: 10, MaxAttempts: 5},
	Medium: {RangeMax: 50, MaxAttempts: 7},
	Hard:   {RangeMax: 100, MaxAttempts: 10},
}

// Difficulties lists all levels from easiest to hardest.
func Difficulties() []Difficulty { return []Difficulty{Easy, Medium, Hard} }

// Limits returns the range and attempts for d.
// Unknown values fall back to the default difficulty.
func (d Difficulty) Limits() Limits {
	if l, ok := limits[d]; ok {
		return l
	}
	return limits[DefaultDifficulty]
}

// ParseDifficulty parses "easy", "medium" or "hard" (any case).
// An empty string yields DefaultDifficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultDifficulty, nil
	}
	d := Difficulty(s)
	if _, ok := limits[d]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
	}
	return d, nil
}

// Feedback is the evaluation of a single guess against the secret.
type Feedback string

const (
	TooLow  Feedback = "too_low"
	TooHigh Feedback = "too_high"
	Correct Feedback = "correct"
)

// State is the lifecycle of a round.
type State string

const (
	StateReady      State = "ready"
	StateInProgress State = "in_progress"
	StateWon        State = "won"
	StateLost       State = "lost"
)

// Finished reports whether s is terminal (won or lost).
func (s State) Finished() bool { return s == StateWon || s == StateLost }

// Round holds the state of a single guessing round.
type Round struct {
	ID           string     // UUID assigned when the round starts.
	Difficulty   Difficulty // Level the round was started with.
	RangeMax     int        // Secret lies in [1, RangeMax].
	MaxAttempts  int        // Guesses allowed.
	AttemptsLeft int        // MaxAttempts minus guesses made.
	Secret       int        // The number to guess.
	Guesses      []int      // Accepted guesses in order.
	State        State      // in_progress, won or lost.
}

// Perfect reports whether the round was won on the first guess.
func (r Round) Perfect() bool {
	return r.State == StateWon && len(r.Guesses) == 1
}

// clone returns a copy that does not share the Guesses slice.
func (r *Round) clone() Round {
	out := *r
	out.Guesses = append([]int(nil), r.Guesses...)
	return out
}
