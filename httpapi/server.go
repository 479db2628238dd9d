// Package httpapi exposes the tutoring loop over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/martinemde/mentorloop/blob"
	"github.com/martinemde/mentorloop/curriculum"
	"github.com/martinemde/mentorloop/orchestrator"
	"github.com/martinemde/mentorloop/session"
)

// uploadContentLimit caps the raw curriculum text accepted per upload.
const uploadContentLimit = 30000

// Handler serves the tutoring API.
type Handler struct {
	orch   *orchestrator.Orchestrator
	store  session.Store
	blobs  blob.Store
	logger *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(orch *orchestrator.Orchestrator, store session.Store, blobs blob.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{orch: orch, store: store, blobs: blobs, logger: logger}
}

// RegisterRoutes mounts the API routes on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/session", h.createSession)
		r.Get("/session/{id}", h.getSession)
		r.Post("/chat", h.chat)
		r.Post("/upload", h.upload)
		r.Get("/progress/{id}", h.progress)
	})
}

type createSessionRequest struct {
	Curriculum curriculum.Graph `json:"curriculum"`
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess := session.New(req.Curriculum)
	if err := h.store.Create(r.Context(), sess); err != nil {
		h.logger.Error("create session failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if warnings := sess.Curriculum.Validate(); len(warnings) > 0 {
		h.logger.Warn("curriculum has unreachable nodes", "session_id", sess.SessionID, "warnings", warnings)
	}

	writeJSON(w, http.StatusCreated, sess)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := h.store.Get(r.Context(), id)
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		h.logger.Error("get session failed", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" || strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "session_id and message are required")
		return
	}

	result, err := h.orch.Chat(r.Context(), req.SessionID, req.Message)
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		h.logger.Error("chat turn failed", "session_id", req.SessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type uploadRequest struct {
	Content     string `json:"content"`
	SubjectHint string `json:"subject_hint"`
	Filename    string `json:"filename"`
}

type uploadResponse struct {
	SessionID  string           `json:"session_id"`
	Curriculum curriculum.Graph `json:"curriculum"`
	ParseError string           `json:"parse_error,omitempty"`
}

// upload accepts raw curriculum text, archives it, structures it through the
// curriculum architect, and opens a session on the resulting graph.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	if len(req.Content) > uploadContentLimit {
		req.Content = req.Content[:uploadContentLimit]
	}

	parsed, err := h.orch.Dispatcher().ParseCurriculum(r.Context(), req.Content, req.SubjectHint)
	if err != nil {
		h.logger.Error("curriculum parse failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	graph, err := curriculum.Decode(parsed)
	if err != nil {
		h.logger.Error("curriculum decode failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	sess := session.New(graph)
	if err := h.store.Create(r.Context(), sess); err != nil {
		h.logger.Error("create session failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// Archive the raw text after the session exists so the key is stable.
	// Archive failure is not worth failing the upload over.
	if err := h.blobs.Put(r.Context(), "curricula/"+sess.SessionID+"/raw.txt", []byte(req.Content)); err != nil {
		h.logger.Warn("raw content archive failed", "session_id", sess.SessionID, "error", err)
	}

	resp := uploadResponse{SessionID: sess.SessionID, Curriculum: graph}
	if msg, ok := parsed["parse_error"].(string); ok {
		resp.ParseError = msg
	}
	writeJSON(w, http.StatusCreated, resp)
}

type progressResponse struct {
	SessionID      string                 `json:"session_id"`
	Subject        string                 `json:"subject"`
	CurrentNodeID  string                 `json:"current_node_id"`
	CompletedNodes []string               `json:"completed_nodes"`
	AvailableNodes []curriculum.Node      `json:"available_nodes"`
	TotalNodes     int                    `json:"total_nodes"`
	PercentDone    float64                `json:"percent_complete"`
	Trajectory     []emotionalTrendPoint  `json:"emotional_trajectory"`
	LatestState    map[string]interface{} `json:"latest_state,omitempty"`
	Strategies     map[string]string      `json:"strategies,omitempty"`
}

type emotionalTrendPoint struct {
	MessageIndex int     `json:"message_index"`
	FlowScore    float64 `json:"flow_score"`
	DropoutRisk  float64 `json:"dropout_risk"`
}

func (h *Handler) progress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := h.store.Get(r.Context(), id)
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		h.logger.Error("get session failed", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := progressResponse{
		SessionID:      sess.SessionID,
		Subject:        sess.Curriculum.Subject,
		CurrentNodeID:  sess.CurrentNodeID,
		CompletedNodes: sess.CompletedNodes,
		AvailableNodes: sess.Curriculum.Available(sess.CompletedNodes),
		TotalNodes:     len(sess.Curriculum.Nodes),
	}
	if resp.TotalNodes > 0 {
		resp.PercentDone = float64(len(sess.CompletedNodes)) / float64(resp.TotalNodes) * 100
	}
	for _, entry := range sess.EmotionalHistory {
		resp.Trajectory = append(resp.Trajectory, emotionalTrendPoint{
			MessageIndex: entry.MessageIndex,
			FlowScore:    entry.FlowScore,
			DropoutRisk:  entry.DropoutRisk,
		})
	}
	if n := len(sess.EmotionalHistory); n > 0 {
		latest := sess.EmotionalHistory[n-1].State
		resp.LatestState = latest.ToMap()
		resp.Strategies = latest.AdaptationStrategy()
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
