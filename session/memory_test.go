package session

import (
	"context"
	"errors"
	"testing"

	"github.com/martinemde/mentorloop/curriculum"
	"github.com/martinemde/mentorloop/emotional"
)

func testGraph() curriculum.Graph {
	return curriculum.Graph{
		Subject: "algebra",
		Nodes: []curriculum.Node{
			{ID: "a", Title: "Variables"},
			{ID: "b", Title: "Expressions", Prerequisites: []string{"a"}},
		},
	}
}

func TestNewSession(t *testing.T) {
	sess := New(testGraph())
	if sess.SessionID == "" {
		t.Error("SessionID is empty")
	}
	if sess.CurrentNodeID != "a" {
		t.Errorf("CurrentNodeID = %q, want first node", sess.CurrentNodeID)
	}
	if sess.CreatedAt.IsZero() {
		t.Error("CreatedAt is zero")
	}
}

func TestNewSessionEmptyGraph(t *testing.T) {
	sess := New(curriculum.Graph{})
	if sess.CurrentNodeID != "" {
		t.Errorf("CurrentNodeID = %q, want empty for empty graph", sess.CurrentNodeID)
	}
}

func TestMemoryStoreCreateGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	sess := New(testGraph())
	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.Get(ctx, sess.SessionID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.SessionID != sess.SessionID || got.Curriculum.Subject != "algebra" {
		t.Errorf("Get = %+v", got)
	}

	// Mutating the returned record must not leak into the store.
	got.CompletedNodes = append(got.CompletedNodes, "a")
	again, _ := store.Get(ctx, sess.SessionID)
	if len(again.CompletedNodes) != 0 {
		t.Error("store shares mutable state with callers")
	}
}

func TestMemoryStoreGetNotFound(t *testing.T) {
	store := NewMemoryStore()
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreUpdateFieldLevel(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	sess := New(testGraph())
	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("Create: %v", err)
	}

	messages := []Message{{Role: "user", Content: "hi"}, {Role: "assistant", Content: "hello"}}
	history := []emotional.HistoryEntry{emotional.NewHistoryEntry(emotional.Default(), 2)}
	if err := store.Update(ctx, sess.SessionID, Updates{
		Messages:         &messages,
		EmotionalHistory: &history,
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, _ := store.Get(ctx, sess.SessionID)
	if len(got.Messages) != 2 || len(got.EmotionalHistory) != 1 {
		t.Errorf("after update: messages=%d history=%d", len(got.Messages), len(got.EmotionalHistory))
	}
	// Untouched fields survive.
	if got.CurrentNodeID != "a" {
		t.Errorf("CurrentNodeID = %q, want untouched", got.CurrentNodeID)
	}

	completed := []string{"a"}
	current := "b"
	if err := store.Update(ctx, sess.SessionID, Updates{
		CompletedNodes: &completed,
		CurrentNodeID:  &current,
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ = store.Get(ctx, sess.SessionID)
	if len(got.Messages) != 2 {
		t.Error("messages lost by unrelated update")
	}
	if got.CurrentNodeID != "b" || len(got.CompletedNodes) != 1 {
		t.Errorf("after second update: %+v", got)
	}
}

func TestMemoryStoreUpdateNotFound(t *testing.T) {
	store := NewMemoryStore()
	current := "x"
	err := store.Update(context.Background(), "nope", Updates{CurrentNodeID: &current})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Update = %v, want ErrNotFound", err)
	}
}
