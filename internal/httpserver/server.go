// internal/httpserver/server.go
//
// HTTP wiring for the local game page.
// Responsibilities:
//   - Router + middleware (JSON, request logging, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/welcome".
//   - Round endpoints: POST /round/start, POST /round/guess, GET /round.
//   - Progress endpoints mounted from routes_progress.go.
//
// Notes:
//   - One controller per process; handlers run concurrently so every access
//     to the controller and tracker goes through s.mu.
//   - Failing to save progress never fails a guess: the response carries a
//     "notice" and the in-memory state is kept.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/numberguess/internal/game"
	"github.com/robalobadob/numberguess/internal/progress"
)

// Options tunes the server.
type Options struct {
	LeaderboardSize   int             // default n for GET /leaderboard
	DefaultDifficulty game.Difficulty // used when /round/start has none
	Page              []byte          // HTML served at "/"
	Now               func() time.Time
}

// Server bundles router, round controller and progress tracker.
type Server struct {
	r    *chi.Mux
	opts Options

	mu      sync.Mutex // guards ctl and tracker
	ctl     *game.Controller
	tracker *progress.Tracker
}

// New constructs a Server, installs middleware, and registers routes.
func New(ctl *game.Controller, tracker *progress.Tracker, opts Options) *Server {
	if opts.LeaderboardSize <= 0 {
		opts.LeaderboardSize = 10
	}
	if opts.DefaultDifficulty == "" {
		opts.DefaultDifficulty = game.DefaultDifficulty
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Server{r: chi.NewRouter(), opts: opts, ctl: ctl, tracker: tracker}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(requestLogger)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))

	s.r.Get("/", s.handlePage)

	s.r.Group(func(r chi.Router) {
		r.Use(jsonContentType)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Get("/welcome", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"greeting": game.Greeting(s.opts.Now())})
		})

		r.Route("/round", func(r chi.Router) {
			r.Get("/", s.handleRound)
			r.Post("/start", s.handleStart)
			r.Post("/guess", s.handleGuess)
		})

		s.mountProgress(r)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", r.URL.Path)
	})

	return s
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Str("requestId", chimw.GetReqID(r.Context())).
			Msg("request")
	})
}

// ------------------------------ PAGE ---------------------------------------

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(s.opts.Page)
}

// ------------------------------ ROUND --------------------------------------

// roundView is the public shape of a round; the secret is only included
// once the round is over.
type roundView struct {
	ID           string `json:"id,omitempty"`
	Difficulty   string `json:"difficulty,omitempty"`
	RangeMax     int    `json:"rangeMax,omitempty"`
	MaxAttempts  int    `json:"maxAttempts,omitempty"`
	AttemptsLeft int    `json:"attemptsLeft"`
	Guesses      []int  `json:"guesses"`
	State        string `json:"state"`
	Score        int    `json:"score"`
	Secret       *int   `json:"secret,omitempty"`
	Message      string `json:"message,omitempty"`
}

func viewOf(r game.Round, score int) roundView {
	v := roundView{
		ID:           r.ID,
		Difficulty:   string(r.Difficulty),
		RangeMax:     r.RangeMax,
		MaxAttempts:  r.MaxAttempts,
		AttemptsLeft: r.AttemptsLeft,
		Guesses:      r.Guesses,
		State:        string(r.State),
		Score:        score,
	}
	if v.Guesses == nil {
		v.Guesses = []int{}
	}
	if r.State.Finished() {
		secret := r.Secret
		v.Secret = &secret
	}
	return v
}

func (s *Server) handleRound(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	round, _ := s.ctl.Current()
	score := s.ctl.Score()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, viewOf(round, score))
}

type startReq struct {
	Difficulty string `json:"difficulty"` // "easy" | "medium" | "hard"; empty → server default
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startReq
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_json", "")
			return
		}
	}
	d := s.opts.DefaultDifficulty
	if req.Difficulty != "" {
		parsed, err := game.ParseDifficulty(req.Difficulty)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unknown_difficulty", err.Error())
			return
		}
		d = parsed
	}

	s.mu.Lock()
	round := s.ctl.StartRound(d)
	score := s.ctl.Score()
	s.mu.Unlock()

	log.Debug().Str("round", round.ID).Str("difficulty", string(d)).Msg("round started")

	v := viewOf(round, score)
	v.Message = fmt.Sprintf("Guess a number between 1 and %d. Attempts left: %d", round.RangeMax, round.AttemptsLeft)
	writeJSON(w, http.StatusOK, v)
}

type guessReq struct {
	Guess json.RawMessage `json:"guess"` // string or number; parsed as an integer
}

type guessRes struct {
	Feedback     game.Feedback `json:"feedback"`
	State        string        `json:"state"`
	AttemptsLeft int           `json:"attemptsLeft"`
	Score        int           `json:"score"`
	Secret       *int          `json:"secret,omitempty"`
	Message      string        `json:"message"`
	Unlocked     []string      `json:"unlocked,omitempty"`
	Notice       string        `json:"notice,omitempty"`
}

// handleGuess applies a guess; when it ends the round, progress is updated
// and saved (best effort).
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "")
		return
	}
	raw := rawGuess(req.Guess)

	s.mu.Lock()
	defer s.mu.Unlock()

	fb, state, err := s.ctl.SubmitGuess(raw)
	switch {
	case errors.Is(err, game.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", "Please enter a valid number.")
		return
	case errors.Is(err, game.ErrNoActiveRound):
		writeError(w, http.StatusConflict, "no_active_round", "Start a round first.")
		return
	case errors.Is(err, game.ErrRoundOver):
		writeError(w, http.StatusConflict, "round_over", "Start the next round.")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "guess_failed", "")
		return
	}

	round, _ := s.ctl.Current()
	res := guessRes{
		Feedback:     fb,
		State:        string(state),
		AttemptsLeft: round.AttemptsLeft,
		Score:        s.ctl.Score(),
		Message:      message(fb, round),
	}
	if state.Finished() {
		secret := round.Secret
		res.Secret = &secret

		out, err := s.tracker.RoundFinished(r.Context(), round, s.ctl.Score())
		res.Unlocked = out.Unlocked
		if err != nil {
			log.Warn().Err(err).Str("round", round.ID).Msg("save progress")
			res.Notice = "Progress could not be saved; it is kept until the game closes."
		}
	}
	writeJSON(w, http.StatusOK, res)
}

// rawGuess accepts `"7"` or `7` and returns the text to parse.
func rawGuess(m json.RawMessage) string {
	var s string
	if err := json.Unmarshal(m, &s); err == nil {
		return s
	}
	return string(m)
}

// message is the user-facing status line for a guess.
func message(fb game.Feedback, r game.Round) string {
	switch {
	case r.State == game.StateWon:
		return "Congratulations! You guessed the number!"
	case r.State == game.StateLost:
		return fmt.Sprintf("Game over! The number was %d.", r.Secret)
	case fb == game.TooLow:
		return "Too low! Try again."
	default:
		return "Too high! Try again."
	}
}

// ------------------------------- util --------------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: code, Message: msg})
}
