// internal/game/engine.go
//
// Round controller for the number guessing game.
// Responsibilities:
//   - Start rounds from the difficulty table with a uniformly drawn secret.
//   - Parse and apply guesses, producing too_low/too_high/correct feedback.
//   - Track state transitions: ready → in_progress → won/lost.
//   - Keep the session score (+1 per won round).
//
// The controller is not safe for concurrent use; callers that share it
// across goroutines must serialize access.
package game

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Picker returns a secret in [1, max].
type Picker func(max int) int

// Option configures a Controller.
type Option func(*Controller)

// WithPicker overrides how secrets are drawn (tests force a known secret).
func WithPicker(p Picker) Option {
	return func(c *Controller) { c.pick = p }
}

// WithScore seeds the session score.
func WithScore(score int) Option {
	return func(c *Controller) { c.score = score }
}

// Controller owns the current round and the session score.
type Controller struct {
	round *Round
	score int
	pick  Picker
}

// NewController returns a controller in the ready state.
func NewController(opts ...Option) *Controller {
	c := &Controller{pick: randomSecret}
	for _, o := range opts {
		o(c)
	}
	return c
}

// StartRound replaces the current round with a fresh one for d.
func (c *Controller) StartRound(d Difficulty) Round {
	l := d.Limits()
	if _, ok := limits[d]; !ok {
		d = DefaultDifficulty
	}
	secret := c.pick(l.RangeMax)
	if secret < 1 || secret > l.RangeMax {
		secret = randomSecret(l.RangeMax)
	}
	c.round = &Round{
		ID:           uuid.NewString(),
		Difficulty:   d,
		RangeMax:     l.RangeMax,
		MaxAttempts:  l.MaxAttempts,
		AttemptsLeft: l.MaxAttempts,
		Secret:       secret,
		Guesses:      []int{},
		State:        StateInProgress,
	}
	return c.round.clone()
}

// SubmitGuess parses raw as a base-10 integer and applies it.
// A non-integer returns ErrInvalidInput and leaves the round unchanged.
func (c *Controller) SubmitGuess(raw string) (Feedback, State, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return "", c.State(), fmt.Errorf("%w: %q", ErrInvalidInput, raw)
	}
	return c.SubmitValue(v)
}

// SubmitValue applies an already parsed guess.
//
// State transitions:
//   - value == secret → won, score +1.
//   - otherwise, no attempts left → lost.
//   - otherwise → still in progress.
func (c *Controller) SubmitValue(v int) (Feedback, State, error) {
	r := c.round
	if r == nil {
		return "", StateReady, ErrNoActiveRound
	}
	if r.State.Finished() {
		return "", r.State, ErrRoundOver
	}

	r.AttemptsLeft--
	r.Guesses = append(r.Guesses, v)

	fb := compare(v, r.Secret)
	switch {
	case fb == Correct:
		r.State = StateWon
		c.score++
	case r.AttemptsLeft == 0:
		r.State = StateLost
	}
	return fb, r.State, nil
}

// State reports the current round state, or ready before the first round.
func (c *Controller) State() State {
	if c.round == nil {
		return StateReady
	}
	return c.round.State
}

// Current returns a snapshot of the current round.
// ok is false before the first StartRound.
func (c *Controller) Current() (Round, bool) {
	if c.round == nil {
		return Round{State: StateReady}, false
	}
	return c.round.clone(), true
}

// Score returns the session score.
func (c *Controller) Score() int { return c.score }

func compare(v, secret int) Feedback {
	switch {
	case v < secret:
		return TooLow
	case v > secret:
		return TooHigh
	default:
		return Correct
	}
}

// randomSecret draws uniformly from [1, max] using crypto/rand.
func randomSecret(max int) int {
	if max <= 1 {
		return 1
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 1
	}
	return int(n.Int64()) + 1
}
