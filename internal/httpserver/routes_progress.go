// internal/httpserver/routes_progress.go
//
// HTTP routes for persisted progress:
//   - GET  /leaderboard      → top n entries (score desc, name asc), n from ?n= or the server default
//   - POST /leaderboard      → record the current session score under a name
//   - GET  /stats            → stats record
//   - GET  /achievements     → unlocked ids plus the catalog
//   - GET  /rounds/recent    → recent finished rounds (backends with history only)

package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/numberguess/internal/persist"
	"github.com/robalobadob/numberguess/internal/progress"
)

// maxNameLen caps leaderboard names (in runes).
const maxNameLen = 32

func (s *Server) mountProgress(r chi.Router) {
	r.Get("/leaderboard", s.handleLeaderboard)
	r.Post("/leaderboard", s.handleRecordScore)
	r.Get("/stats", s.handleStats)
	r.Get("/achievements", s.handleAchievements)
	r.Get("/rounds/recent", s.handleRecentRounds)
}

type leaderboardRow struct {
	Rank  int    `json:"rank"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// queryLimit reads ?n= (or ?limit=), falling back to def.
func queryLimit(r *http.Request, def int) int {
	for _, key := range []string{"n", "limit"} {
		if v := r.URL.Query().Get(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				return n
			}
		}
	}
	return def
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	n := queryLimit(r, s.opts.LeaderboardSize)

	s.mu.Lock()
	top := s.tracker.Top(n)
	s.mu.Unlock()

	out := make([]leaderboardRow, 0, len(top))
	for i, e := range top {
		out = append(out, leaderboardRow{Rank: i + 1, Name: e.DisplayName(), Score: e.Score})
	}
	writeJSON(w, http.StatusOK, out)
}

type recordReq struct {
	Name string `json:"name"`
}

// handleRecordScore appends {name, current session score} to the leaderboard.
func (s *Server) handleRecordScore(w http.ResponseWriter, r *http.Request) {
	var req recordReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "")
		return
	}
	name := strings.TrimSpace(req.Name)
	if utf8.RuneCountInString(name) > maxNameLen {
		writeError(w, http.StatusBadRequest, "invalid_name", "name must be at most 32 characters")
		return
	}

	s.mu.Lock()
	score := s.ctl.Score()
	err := s.tracker.RecordScore(r.Context(), name, score)
	s.mu.Unlock()

	entry := persist.Entry{Name: name, Score: score}
	res := map[string]any{"name": entry.DisplayName(), "score": score}
	if err != nil {
		log.Warn().Err(err).Msg("save leaderboard")
		res["notice"] = "Leaderboard could not be saved; it is kept until the game closes."
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	st := s.tracker.Stats()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	unlocked := s.tracker.Achievements()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"unlocked": unlocked,
		"catalog":  progress.Catalog,
	})
}

func (s *Server) handleRecentRounds(w http.ResponseWriter, r *http.Request) {
	h, ok := s.tracker.History()
	if !ok {
		writeError(w, http.StatusNotFound, "history_unavailable", "the configured store keeps no round history")
		return
	}
	rounds, err := h.RecentRounds(r.Context(), queryLimit(r, 20))
	if err != nil {
		log.Error().Err(err).Msg("recent rounds")
		writeError(w, http.StatusInternalServerError, "db_error", "")
		return
	}
	writeJSON(w, http.StatusOK, rounds)
}
