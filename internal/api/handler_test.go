package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/arcpointlabs/salescoach/internal/coach"
	"github.com/arcpointlabs/salescoach/internal/config"
	"github.com/arcpointlabs/salescoach/internal/domain"
	"github.com/arcpointlabs/salescoach/internal/identity"
	"github.com/arcpointlabs/salescoach/internal/llm"
	"github.com/arcpointlabs/salescoach/internal/scenario"
	"github.com/arcpointlabs/salescoach/internal/scoring"
	"github.com/go-chi/chi/v5"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"foo": "bar"}

	JSON(w, http.StatusOK, data)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got["foo"] != "bar" {
		t.Errorf("Expected foo=bar, got %v", got["foo"])
	}
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()

	Error(w, http.StatusNotFound, "missing")

	resp := w.Result()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got["error"] != "missing" {
		t.Errorf("Expected error=missing, got %v", got["error"])
	}
}

type stubLLM struct {
	reply string
}

func (s *stubLLM) Complete(context.Context, llm.ChatRequest) (string, error) {
	return s.reply, nil
}

type memRepo struct {
	entries []domain.Entry
}

func (m *memRepo) SaveScore(_ context.Context, entry *domain.Entry) error {
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memRepo) TopScores(_ context.Context, n int) ([]domain.Entry, error) {
	if n > len(m.entries) {
		n = len(m.entries)
	}
	return m.entries[:n], nil
}

func (m *memRepo) Ping(context.Context) error { return nil }
func (m *memRepo) Close() error               { return nil }

func newTestServer(t *testing.T, rateLimit int) (*httptest.Server, *memRepo) {
	t.Helper()

	scenarios, err := scenario.Load()
	if err != nil {
		t.Fatalf("load scenario bank: %v", err)
	}
	repo := &memRepo{}
	svc := coach.NewService(scenarios, &stubLLM{reply: "Tell me more."}, scoring.RubricPillar{}, repo, coach.NewSessionManager(), nil, coach.Config{Model: "test"})

	cfg := &config.Config{
		RateLimit: config.RateLimitConfig{
			RequestsPerWindow: rateLimit,
			WindowDuration:    time.Minute,
		},
	}
	h := NewHandler(svc, repo, nil, cfg)

	r := chi.NewRouter()
	r.Use(identity.Middleware(true))
	h.RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, repo
}

// coachClient pins the anonymous identity cookie across requests so one
// test drives one trainee through a full session.
type coachClient struct {
	t      *testing.T
	base   string
	cookie *http.Cookie
}

func (c *coachClient) do(method, path string, body interface{}) (*http.Response, map[string]json.RawMessage) {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	for _, ck := range resp.Cookies() {
		if ck.Name == identity.AnonCookieName {
			c.cookie = ck
		}
	}

	var fields map[string]json.RawMessage
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(resp.Body).Decode(&fields); err != nil {
			c.t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return resp, fields
}

func TestSessionFlow(t *testing.T) {
	srv, repo := newTestServer(t, 100)
	client := &coachClient{t: t, base: srv.URL}

	resp, fields := client.do(http.MethodGet, "/api/scenarios", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("scenarios status = %d", resp.StatusCode)
	}
	if bytes.Contains(fields["scenarios"], []byte("hidden")) {
		t.Error("scenario listing leaked hidden persona fields")
	}

	resp, fields = client.do(http.MethodPost, "/api/session", map[string]string{"scenario_id": "carrier-dot-pool"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("start status = %d", resp.StatusCode)
	}
	if string(fields["scenario_id"]) != `"carrier-dot-pool"` {
		t.Errorf("scenario_id = %s", fields["scenario_id"])
	}

	resp, fields = client.do(http.MethodPost, "/api/session/message", map[string]string{"message": "Hello Lisa, thanks for the time."})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("message status = %d", resp.StatusCode)
	}
	if string(fields["event"]) != `"reply"` {
		t.Errorf("event = %s", fields["event"])
	}

	resp, fields = client.do(http.MethodGet, "/api/session", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get session status = %d", resp.StatusCode)
	}
	var transcript []domain.Message
	if err := json.Unmarshal(fields["transcript"], &transcript); err != nil {
		t.Fatalf("decode transcript: %v", err)
	}
	for _, m := range transcript {
		if m.Role == domain.RoleSystem {
			t.Error("transcript exposed the system instruction")
		}
	}

	resp, fields = client.do(http.MethodPost, "/api/session/end", map[string]string{"name": "Jordan"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("end status = %d", resp.StatusCode)
	}
	if string(fields["saved"]) != "true" {
		t.Errorf("saved = %s", fields["saved"])
	}
	if len(repo.entries) != 1 || repo.entries[0].Name != "Jordan" {
		t.Errorf("repo entries = %+v", repo.entries)
	}
}

func TestMessageWithoutBody(t *testing.T) {
	srv, _ := newTestServer(t, 100)
	client := &coachClient{t: t, base: srv.URL}

	resp, _ := client.do(http.MethodPost, "/api/session/message", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestEndWithoutSession(t *testing.T) {
	srv, _ := newTestServer(t, 100)
	client := &coachClient{t: t, base: srv.URL}

	resp, _ := client.do(http.MethodPost, "/api/session/end", map[string]string{"name": "x"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestMessageRateLimited(t *testing.T) {
	srv, _ := newTestServer(t, 1)
	client := &coachClient{t: t, base: srv.URL}

	resp, _ := client.do(http.MethodPost, "/api/session/message", map[string]string{"message": "Hello."})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first message status = %d", resp.StatusCode)
	}
	resp, _ = client.do(http.MethodPost, "/api/session/message", map[string]string{"message": "Hello again."})
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("second message status = %d, want 429", resp.StatusCode)
	}
}

func TestLeaderboardEndpoint(t *testing.T) {
	srv, repo := newTestServer(t, 100)
	repo.entries = []domain.Entry{
		{SessionID: "s1", Name: "Ana", Score: 90},
		{SessionID: "s2", Name: "Ben", Score: 70},
	}
	client := &coachClient{t: t, base: srv.URL}

	resp, fields := client.do(http.MethodGet, "/api/leaderboard?limit=2", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var entries []leaderboardEntry
	if err := json.Unmarshal(fields["entries"], &entries); err != nil {
		t.Fatalf("decode entries: %v", err)
	}
	if len(entries) != 2 || entries[0].Rank != 1 || entries[0].Name != "Ana" {
		t.Errorf("entries = %+v", entries)
	}

	resp, _ = client.do(http.MethodGet, "/api/leaderboard?limit=-3", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", resp.StatusCode)
	}
}

func TestSpeechNotConfigured(t *testing.T) {
	srv, _ := newTestServer(t, 100)
	client := &coachClient{t: t, base: srv.URL}

	resp, _ := client.do(http.MethodPost, "/api/speech", map[string]string{"text": "hello"})
	if resp.StatusCode != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", resp.StatusCode)
	}
}

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(2, 50*time.Millisecond)

	if !rl.Allow("t1") || !rl.Allow("t1") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("t1") {
		t.Error("third request should be limited")
	}
	if !rl.Allow("t2") {
		t.Error("other trainee should not be affected")
	}

	time.Sleep(60 * time.Millisecond)
	if !rl.Allow("t1") {
		t.Error("window expiry should reset the quota")
	}
}
