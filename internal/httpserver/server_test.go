package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/robalobadob/numberguess/internal/game"
	"github.com/robalobadob/numberguess/internal/persist"
	"github.com/robalobadob/numberguess/internal/progress"
	"github.com/robalobadob/numberguess/internal/store"
)

func newTestServer(t *testing.T, docs store.Documents, secret int) *Server {
	t.Helper()
	tr, err := progress.NewTracker(context.Background(), docs)
	if err != nil {
		t.Fatal(err)
	}
	ctl := game.NewController(game.WithPicker(func(int) int { return secret }))
	return New(ctl, tr, Options{
		Page: []byte("<html>game</html>"),
		Now:  func() time.Time { return time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local) },
	})
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != "" {
		rd = bytes.NewReader([]byte(body))
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealthAndPage(t *testing.T) {
	s := newTestServer(t, store.NewMemory(), 1)

	rec := do(t, s, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok":true`) {
		t.Errorf("health: %d %s", rec.Code, rec.Body)
	}
	rec = do(t, s, http.MethodGet, "/", "")
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("page content-type: %q", ct)
	}
	rec = do(t, s, http.MethodGet, "/welcome", "")
	if got := decode[map[string]string](t, rec)["greeting"]; got != "Good morning!" {
		t.Errorf("greeting: %q", got)
	}
	rec = do(t, s, http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("404: got %d", rec.Code)
	}
}

func TestRoundFlowEasyWin(t *testing.T) {
	s := newTestServer(t, store.NewMemory(), 7)

	rec := do(t, s, http.MethodPost, "/round/start", `{"difficulty":"easy"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("start: %d %s", rec.Code, rec.Body)
	}
	start := decode[roundView](t, rec)
	if start.RangeMax != 10 || start.AttemptsLeft != 5 || start.State != "in_progress" {
		t.Errorf("start view: %+v", start)
	}
	if start.Secret != nil {
		t.Error("secret revealed while in progress")
	}

	wantFb := []game.Feedback{game.TooLow, game.TooHigh, game.Correct}
	var last guessRes
	for i, g := range []string{`"3"`, `9`, `"7"`} {
		rec := do(t, s, http.MethodPost, "/round/guess", `{"guess":`+g+`}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("guess %s: %d %s", g, rec.Code, rec.Body)
		}
		last = decode[guessRes](t, rec)
		if last.Feedback != wantFb[i] {
			t.Errorf("guess %s: got %s, want %s", g, last.Feedback, wantFb[i])
		}
	}
	if last.State != "won" || last.AttemptsLeft != 2 || last.Score != 1 {
		t.Errorf("final: %+v", last)
	}
	if last.Secret == nil || *last.Secret != 7 {
		t.Errorf("secret not revealed after win: %+v", last.Secret)
	}
	if last.Message != "Congratulations! You guessed the number!" {
		t.Errorf("message: %q", last.Message)
	}

	rec = do(t, s, http.MethodPost, "/round/guess", `{"guess":"7"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("guess after win: got %d", rec.Code)
	}

	stats := decode[persist.Stats](t, do(t, s, http.MethodGet, "/stats", ""))
	if stats.TotalGames != 1 || stats.Wins != 1 || stats.LastScore != 1 {
		t.Errorf("stats: %+v", stats)
	}
}

func TestRoundFlowMediumLoss(t *testing.T) {
	s := newTestServer(t, store.NewMemory(), 25)
	do(t, s, http.MethodPost, "/round/start", `{"difficulty":"medium"}`)

	var last guessRes
	for i := 0; i < 7; i++ {
		last = decode[guessRes](t, do(t, s, http.MethodPost, "/round/guess", `{"guess":"1"}`))
	}
	if last.State != "lost" || last.AttemptsLeft != 0 {
		t.Errorf("final: %+v", last)
	}
	if last.Message != "Game over! The number was 25." {
		t.Errorf("message: %q", last.Message)
	}
}

func TestInvalidGuess(t *testing.T) {
	s := newTestServer(t, store.NewMemory(), 5)
	do(t, s, http.MethodPost, "/round/start", `{"difficulty":"easy"}`)

	rec := do(t, s, http.MethodPost, "/round/guess", `{"guess":"five"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got %d", rec.Code)
	}
	if body := decode[errorBody](t, rec); body.Error != "invalid_input" || body.Message != "Please enter a valid number." {
		t.Errorf("body: %+v", body)
	}
	view := decode[roundView](t, do(t, s, http.MethodGet, "/round", ""))
	if view.AttemptsLeft != 5 || len(view.Guesses) != 0 {
		t.Errorf("round changed by invalid guess: %+v", view)
	}
}

func TestGuessWithoutRound(t *testing.T) {
	s := newTestServer(t, store.NewMemory(), 5)
	rec := do(t, s, http.MethodPost, "/round/guess", `{"guess":"1"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("got %d", rec.Code)
	}
	view := decode[roundView](t, do(t, s, http.MethodGet, "/round", ""))
	if view.State != "ready" {
		t.Errorf("state: %q", view.State)
	}
}

func TestStartDefaultsAndUnknownDifficulty(t *testing.T) {
	s := newTestServer(t, store.NewMemory(), 1)
	view := decode[roundView](t, do(t, s, http.MethodPost, "/round/start", ""))
	if view.Difficulty != "medium" || view.RangeMax != 50 {
		t.Errorf("default start: %+v", view)
	}
	rec := do(t, s, http.MethodPost, "/round/start", `{"difficulty":"nightmare"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown difficulty: got %d", rec.Code)
	}
}

func TestLeaderboardRecordAndTop(t *testing.T) {
	s := newTestServer(t, store.NewMemory(), 2)

	// Win once so the session score is 1.
	do(t, s, http.MethodPost, "/round/start", `{"difficulty":"easy"}`)
	do(t, s, http.MethodPost, "/round/guess", `{"guess":"2"}`)

	for _, name := range []string{"zed", "amy", ""} {
		rec := do(t, s, http.MethodPost, "/leaderboard", `{"name":"`+name+`"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("record %q: %d %s", name, rec.Code, rec.Body)
		}
	}

	rows := decode[[]leaderboardRow](t, do(t, s, http.MethodGet, "/leaderboard?n=2", ""))
	if len(rows) != 2 {
		t.Fatalf("rows: %+v", rows)
	}
	if rows[0].Rank != 1 || rows[0].Name != persist.AnonymousName || rows[1].Name != "amy" {
		t.Errorf("order: %+v", rows)
	}

	rec := do(t, s, http.MethodPost, "/leaderboard", `{"name":"`+strings.Repeat("x", 40)+`"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("long name: got %d", rec.Code)
	}
}

func TestAchievementsAndHistory(t *testing.T) {
	s := newTestServer(t, store.NewMemory(), 99)
	do(t, s, http.MethodPost, "/round/start", `{"difficulty":"hard"}`)
	res := decode[guessRes](t, do(t, s, http.MethodPost, "/round/guess", `{"guess":99}`))
	if len(res.Unlocked) != 3 {
		t.Errorf("unlocked: %v", res.Unlocked)
	}

	body := decode[struct {
		Unlocked []string               `json:"unlocked"`
		Catalog  []progress.Achievement `json:"catalog"`
	}](t, do(t, s, http.MethodGet, "/achievements", ""))
	if len(body.Unlocked) != 3 || len(body.Catalog) != len(progress.Catalog) {
		t.Errorf("achievements: %+v", body)
	}

	rounds := decode[[]store.RoundRecord](t, do(t, s, http.MethodGet, "/rounds/recent", ""))
	if len(rounds) != 1 || rounds[0].Secret != 99 || !rounds[0].Won {
		t.Errorf("history: %+v", rounds)
	}
}

func TestRecentRoundsUnavailable(t *testing.T) {
	s := newTestServer(t, store.NewFile(t.TempDir()), 1)
	rec := do(t, s, http.MethodGet, "/rounds/recent", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("got %d", rec.Code)
	}
}

type readOnlyDocs struct{ store.Documents }

func (readOnlyDocs) Save(context.Context, store.Name, any) error { return persist.ErrIO }

func TestSaveFailureIsNonFatal(t *testing.T) {
	s := newTestServer(t, readOnlyDocs{store.NewMemory()}, 4)
	do(t, s, http.MethodPost, "/round/start", `{"difficulty":"easy"}`)
	rec := do(t, s, http.MethodPost, "/round/guess", `{"guess":"4"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d", rec.Code)
	}
	res := decode[guessRes](t, rec)
	if res.State != "won" || res.Notice == "" {
		t.Errorf("res: %+v", res)
	}
	stats := decode[persist.Stats](t, do(t, s, http.MethodGet, "/stats", ""))
	if stats.Wins != 1 {
		t.Errorf("in-memory stats lost: %+v", stats)
	}
}
