// Package session owns the persisted learning-session aggregate and its
// stores. The orchestrator reads a snapshot at the start of a request and
// writes a field-level update at the end; there is no in-memory sharing
// between requests and no optimistic-concurrency check, so concurrent writes
// to the same session are last-write-wins.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/martinemde/mentorloop/curriculum"
	"github.com/martinemde/mentorloop/emotional"
)

// ErrNotFound is returned by Get and Update when no record exists for the id.
var ErrNotFound = errors.New("session not found")

// Message is one entry in the simplified persisted transcript.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session is the aggregate root for one learning session.
type Session struct {
	SessionID        string                   `json:"session_id"`
	Curriculum       curriculum.Graph         `json:"curriculum"`
	Messages         []Message                `json:"messages"`
	EmotionalHistory []emotional.HistoryEntry `json:"emotional_history"`
	CompletedNodes   []string                 `json:"completed_nodes"`
	CurrentNodeID    string                   `json:"current_node_id"`
	CreatedAt        time.Time                `json:"created_at"`
}

// New creates a session for the given curriculum, pointing at its first node.
func New(graph curriculum.Graph) *Session {
	firstNodeID := ""
	if len(graph.Nodes) > 0 {
		firstNodeID = graph.Nodes[0].ID
	}
	return &Session{
		SessionID:        uuid.New().String(),
		Curriculum:       graph,
		Messages:         []Message{},
		EmotionalHistory: []emotional.HistoryEntry{},
		CompletedNodes:   []string{},
		CurrentNodeID:    firstNodeID,
		CreatedAt:        time.Now().UTC(),
	}
}

// Updates carries a field-level merge for Store.Update. Nil fields are left
// untouched.
type Updates struct {
	Messages         *[]Message
	EmotionalHistory *[]emotional.HistoryEntry
	CompletedNodes   *[]string
	CurrentNodeID    *string
}

// Store is the persistence collaborator for sessions.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, id string, updates Updates) error
}
