package persist

import (
	"sort"
	"strings"
)

// Default file names, relative to the data directory.
const (
	StatsFile        = "stats.json"
	AchievementsFile = "achievements.json"
	LeaderboardFile  = "leaderboard.json"
)

// Stats is the singleton stats record.
type Stats struct {
	TotalGames  int     `json:"total_games" yaml:"total_games"`
	Wins        int     `json:"wins" yaml:"wins"`
	PerfectWins int     `json:"perfect_wins" yaml:"perfect_wins"`
	AvgScore    float64 `json:"avg_score" yaml:"avg_score"`
	LastScore   int     `json:"last_score" yaml:"last_score"`
}

// DefaultStats is the all-zero record used when nothing is stored.
func DefaultStats() Stats { return Stats{} }

// Achievements is the list of unlocked achievement ids, in unlock order.
type Achievements []string

// DefaultAchievements is an empty, non-nil list (encodes as []).
func DefaultAchievements() Achievements { return Achievements{} }

// Has reports whether id is unlocked.
func (a Achievements) Has(id string) bool {
	for _, x := range a {
		if x == id {
			return true
		}
	}
	return false
}

// Unlock appends id unless already present. ok is true when it was added.
func (a *Achievements) Unlock(id string) (ok bool) {
	if a.Has(id) {
		return false
	}
	*a = append(*a, id)
	return true
}

// AnonymousName is shown for leaderboard entries without a name.
const AnonymousName = "Anonymous"

// Entry is one leaderboard row.
type Entry struct {
	Name  string `json:"name" yaml:"name"`
	Score int    `json:"score" yaml:"score"`
}

// DisplayName returns the entry name or AnonymousName when blank.
func (e Entry) DisplayName() string {
	if n := strings.TrimSpace(e.Name); n != "" {
		return n
	}
	return AnonymousName
}

// Leaderboard is the unordered list of recorded scores.
// Display order is derived by Top, never stored.
type Leaderboard []Entry

// DefaultLeaderboard is an empty, non-nil list.
func DefaultLeaderboard() Leaderboard { return Leaderboard{} }

// Add appends a new entry.
func (l *Leaderboard) Add(name string, score int) {
	*l = append(*l, Entry{Name: strings.TrimSpace(name), Score: score})
}

// Top returns the first n entries by score desc, then name asc.
// n <= 0 returns every entry. The receiver is not reordered.
func (l Leaderboard) Top(n int) []Entry {
	return LeaderboardTop(l, n)
}

// LeaderboardTop sorts a copy of entries by (score desc, name asc) and
// returns the first n. Ties on both keys keep their input order.
func LeaderboardTop(entries []Entry, n int) []Entry {
	out := append([]Entry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
