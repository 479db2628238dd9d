package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore implements Store with an in-process map. It is used in tests
// and for local development without a database file. Records are deep-copied
// on the way in and out so callers never share mutable state.
type MemoryStore struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

// Create inserts a new session record.
func (m *MemoryStore) Create(_ context.Context, sess *Session) error {
	cloned, err := cloneSession(sess)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.SessionID] = cloned
	return nil
}

// Get retrieves a session by id, or ErrNotFound.
func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return cloneSession(sess)
}

// Update applies a field-level merge. Last write wins.
func (m *MemoryStore) Update(_ context.Context, id string, updates Updates) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}

	if updates.Messages != nil {
		sess.Messages = append([]Message(nil), *updates.Messages...)
	}
	if updates.EmotionalHistory != nil {
		sess.EmotionalHistory = append(sess.EmotionalHistory[:0:0], *updates.EmotionalHistory...)
	}
	if updates.CompletedNodes != nil {
		sess.CompletedNodes = append([]string(nil), *updates.CompletedNodes...)
	}
	if updates.CurrentNodeID != nil {
		sess.CurrentNodeID = *updates.CurrentNodeID
	}
	return nil
}

func cloneSession(sess *Session) (*Session, error) {
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("clone session: %w", err)
	}
	var cloned Session
	if err := json.Unmarshal(data, &cloned); err != nil {
		return nil, fmt.Errorf("clone session: %w", err)
	}
	return &cloned, nil
}
