// internal/progress/rules.go
//
// Stats and achievement rules applied once per finished round.
//
// Stats:
//   - total_games +1 per finished round; wins +1 per win;
//     perfect_wins +1 per first-guess win.
//   - last_score is the session score after the round.
//   - avg_score is the running mean of last_score over total_games.
//
// Achievements unlock once and are never re-locked.

package progress

import (
	"github.com/robalobadob/numberguess/internal/game"
	"github.com/robalobadob/numberguess/internal/persist"
)

// Achievement ids.
const (
	FirstWin     = "first_win"
	Sharpshooter = "sharpshooter"
	HardMode     = "hard_mode"
	LastChance   = "last_chance"
	Veteran      = "veteran"
	HatTrick     = "hat_trick"
)

// Achievement describes one unlockable.
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Catalog lists every achievement in display order.
var Catalog = []Achievement{
	{FirstWin, "First Win", "Win a round."},
	{Sharpshooter, "Sharpshooter", "Guess the number on the first try."},
	{HardMode, "Hard Mode", "Win a round on Hard."},
	{LastChance, "Last Chance", "Win with your final attempt."},
	{Veteran, "Veteran", "Finish 10 rounds."},
	{HatTrick, "Hat Trick", "Reach a session score of 3."},
}

// Outcome summarizes a finished round for the rules.
type Outcome struct {
	Difficulty game.Difficulty
	Won        bool
	Perfect    bool
	LastChance bool
	Guesses    int
	Score      int // session score after the round
}

// OutcomeOf builds the Outcome of a finished round.
func OutcomeOf(r game.Round, score int) Outcome {
	won := r.State == game.StateWon
	return Outcome{
		Difficulty: r.Difficulty,
		Won:        won,
		Perfect:    r.Perfect(),
		LastChance: won && r.AttemptsLeft == 0,
		Guesses:    len(r.Guesses),
		Score:      score,
	}
}

// ApplyStats returns s updated with o.
func ApplyStats(s persist.Stats, o Outcome) persist.Stats {
	s.TotalGames++
	if o.Won {
		s.Wins++
	}
	if o.Perfect {
		s.PerfectWins++
	}
	s.LastScore = o.Score
	s.AvgScore += (float64(o.Score) - s.AvgScore) / float64(s.TotalGames)
	return s
}

// Unlock adds every achievement earned by o (given the already updated
// stats) to a, returning the newly unlocked ids in catalog order.
func Unlock(a *persist.Achievements, s persist.Stats, o Outcome) []string {
	earned := map[string]bool{
		FirstWin:     o.Won,
		Sharpshooter: o.Perfect,
		HardMode:     o.Won && o.Difficulty == game.Hard,
		LastChance:   o.LastChance,
		Veteran:      s.TotalGames >= 10,
		HatTrick:     o.Score >= 3,
	}
	var added []string
	for _, ach := range Catalog {
		if earned[ach.ID] && a.Unlock(ach.ID) {
			added = append(added, ach.ID)
		}
	}
	return added
}
