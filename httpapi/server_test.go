package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/martinemde/mentorloop/blob"
	"github.com/martinemde/mentorloop/curriculum"
	"github.com/martinemde/mentorloop/emotional"
	"github.com/martinemde/mentorloop/modelio"
	"github.com/martinemde/mentorloop/orchestrator"
	"github.com/martinemde/mentorloop/session"
)

// scriptedInvoker returns canned model behavior for handler tests.
type scriptedInvoker struct {
	specialistText string
	orchText       string
}

func (s *scriptedInvoker) InvokeSpecialist(_ context.Context, _, _ string, _ int) (modelio.SpecialistReply, error) {
	return modelio.SpecialistReply{Text: s.specialistText}, nil
}

func (s *scriptedInvoker) InvokeOrchestrator(_ context.Context, _ string, _ []modelio.Message, _ []modelio.ToolSpec) (*modelio.Response, error) {
	return &modelio.Response{
		StopReason: modelio.StopEndTurn,
		Message: modelio.Message{
			Role:    modelio.RoleAssistant,
			Content: []modelio.ContentBlock{modelio.TextBlock(s.orchText)},
		},
	}, nil
}

type testEnv struct {
	router  chi.Router
	store   *session.MemoryStore
	blobDir string
}

func newTestEnv(t *testing.T, inv modelio.Invoker) *testEnv {
	t.Helper()
	store := session.NewMemoryStore()
	blobDir := t.TempDir()
	blobs, err := blob.NewFSStore(blobDir)
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}
	orch := orchestrator.New(inv, store, nil)
	handler := NewHandler(orch, store, blobs, nil)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return &testEnv{router: r, store: store, blobDir: blobDir}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func testCurriculum() curriculum.Graph {
	return curriculum.Graph{
		Subject: "algebra",
		Nodes: []curriculum.Node{
			{ID: "a", Title: "Variables", Content: "x stands for a number"},
			{ID: "b", Title: "Expressions", Prerequisites: []string{"a"}},
		},
	}
}

func TestCreateAndGetSession(t *testing.T) {
	env := newTestEnv(t, &scriptedInvoker{})

	rec := env.do(t, http.MethodPost, "/api/session", map[string]interface{}{
		"curriculum": testCurriculum(),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body)
	}
	var created session.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.SessionID == "" || created.CurrentNodeID != "a" {
		t.Errorf("created = %+v", created)
	}

	rec = env.do(t, http.MethodGet, "/api/session/"+created.SessionID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var got session.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode get response: %v", err)
	}
	if got.Curriculum.Subject != "algebra" {
		t.Errorf("got = %+v", got)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	env := newTestEnv(t, &scriptedInvoker{})
	rec := env.do(t, http.MethodGet, "/api/session/ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestChatEndpoint(t *testing.T) {
	env := newTestEnv(t, &scriptedInvoker{orchText: "Great question!"})
	sess := session.New(testCurriculum())
	if err := env.store.Create(context.Background(), sess); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := env.do(t, http.MethodPost, "/api/chat", map[string]string{
		"session_id": sess.SessionID,
		"message":    "what is x?",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var result orchestrator.TurnResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.ResponseText != "Great question!" || result.SessionID != sess.SessionID {
		t.Errorf("result = %+v", result)
	}
}

func TestChatValidation(t *testing.T) {
	env := newTestEnv(t, &scriptedInvoker{})

	rec := env.do(t, http.MethodPost, "/api/chat", map[string]string{"session_id": "", "message": "hi"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty session_id status = %d, want 400", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/chat", map[string]string{"session_id": "s", "message": "   "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank message status = %d, want 400", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/chat", map[string]string{"session_id": "ghost", "message": "hi"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing session status = %d, want 404", rec.Code)
	}
}

func TestUploadEndpoint(t *testing.T) {
	parsed := `{"subject": "chemistry", "nodes": [{"id": "atoms", "title": "Atoms"}]}`
	env := newTestEnv(t, &scriptedInvoker{specialistText: parsed})

	rec := env.do(t, http.MethodPost, "/api/upload", map[string]string{
		"content":      "Atoms bond into molecules...",
		"subject_hint": "science",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp struct {
		SessionID  string           `json:"session_id"`
		Curriculum curriculum.Graph `json:"curriculum"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.SessionID == "" || resp.Curriculum.Subject != "chemistry" || len(resp.Curriculum.Nodes) != 1 {
		t.Errorf("resp = %+v", resp)
	}

	// The raw text is archived under the session id.
	raw, err := os.ReadFile(filepath.Join(env.blobDir, "curricula", resp.SessionID, "raw.txt"))
	if err != nil {
		t.Fatalf("read archived raw text: %v", err)
	}
	if string(raw) != "Atoms bond into molecules..." {
		t.Errorf("archived content = %q", raw)
	}

	// The session exists and points at the first parsed node.
	sess, err := env.store.Get(context.Background(), resp.SessionID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sess.CurrentNodeID != "atoms" {
		t.Errorf("CurrentNodeID = %q", sess.CurrentNodeID)
	}
}

func TestUploadEmptyContent(t *testing.T) {
	env := newTestEnv(t, &scriptedInvoker{})
	rec := env.do(t, http.MethodPost, "/api/upload", map[string]string{"content": "  "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUploadUnparseableContent(t *testing.T) {
	env := newTestEnv(t, &scriptedInvoker{specialistText: "not JSON at all"})
	rec := env.do(t, http.MethodPost, "/api/upload", map[string]string{
		"content":      "mystery text",
		"subject_hint": "history",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp struct {
		ParseError string           `json:"parse_error"`
		Curriculum curriculum.Graph `json:"curriculum"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ParseError == "" {
		t.Error("expected parse_error in degraded response")
	}
	if len(resp.Curriculum.Nodes) != 0 || resp.Curriculum.Subject != "history" {
		t.Errorf("curriculum = %+v", resp.Curriculum)
	}
}

func TestProgressEndpoint(t *testing.T) {
	env := newTestEnv(t, &scriptedInvoker{})
	sess := session.New(testCurriculum())
	sess.CompletedNodes = []string{"a"}
	sess.EmotionalHistory = []emotional.HistoryEntry{
		emotional.NewHistoryEntry(emotional.State{Engagement: 0.2, Confidence: 0.5, Frustration: 0.7, Curiosity: 0.5, CognitiveLoad: 0.3}, 2),
	}
	if err := env.store.Create(context.Background(), sess); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := env.do(t, http.MethodGet, "/api/progress/"+sess.SessionID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp struct {
		Subject    string  `json:"subject"`
		Percent    float64 `json:"percent_complete"`
		Trajectory []struct {
			MessageIndex int     `json:"message_index"`
			FlowScore    float64 `json:"flow_score"`
		} `json:"emotional_trajectory"`
		LatestState map[string]float64 `json:"latest_state"`
		Strategies  map[string]string  `json:"strategies"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Subject != "algebra" || resp.Percent != 50 {
		t.Errorf("resp = %+v", resp)
	}
	if len(resp.Trajectory) != 1 || resp.Trajectory[0].MessageIndex != 2 {
		t.Errorf("trajectory = %+v", resp.Trajectory)
	}
	if resp.LatestState["frustration"] != 0.7 {
		t.Errorf("latest state = %v", resp.LatestState)
	}
	// Frustrated and disengaged: the strategy map reflects both rules.
	if resp.Strategies["approach"] != "gamify" || resp.Strategies["complexity"] != "simplified" {
		t.Errorf("strategies = %v", resp.Strategies)
	}
}

func TestProgressNotFound(t *testing.T) {
	env := newTestEnv(t, &scriptedInvoker{})
	rec := env.do(t, http.MethodGet, "/api/progress/ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestCORSPreflights(t *testing.T) {
	r := chi.NewRouter()
	r.Use(CORS([]string{"*"}))
	r.Post("/api/chat", func(w http.ResponseWriter, _ *http.Request) {})

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", strings.NewReader(""))
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("preflight status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q", got)
	}
}
