package modelio

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseTurnPlainText(t *testing.T) {
	blocks, uses := parseTurn("Just a normal reply.")
	if len(uses) != 0 {
		t.Fatalf("uses = %v, want none", uses)
	}
	if len(blocks) != 1 || blocks[0].Text != "Just a normal reply." {
		t.Errorf("blocks = %+v", blocks)
	}
}

func TestParseTurnEmbeddedToolCalls(t *testing.T) {
	text := `Let me check on that. [{"name": "assess_emotional_state", "arguments": {"student_message": "I give up"}}]`
	blocks, uses := parseTurn(text)
	if len(uses) != 1 {
		t.Fatalf("len(uses) = %d, want 1", len(uses))
	}
	if uses[0].Name != "assess_emotional_state" {
		t.Errorf("name = %q", uses[0].Name)
	}
	if !strings.HasPrefix(uses[0].ID, "toolu_") {
		t.Errorf("id = %q, want toolu_ prefix", uses[0].ID)
	}
	var input map[string]interface{}
	if err := json.Unmarshal(uses[0].Input, &input); err != nil {
		t.Fatalf("input not valid JSON: %v", err)
	}
	if input["student_message"] != "I give up" {
		t.Errorf("input = %v", input)
	}
	if blocks[0].Kind != BlockText || blocks[0].Text != "Let me check on that." {
		t.Errorf("leading block = %+v", blocks[0])
	}
}

func TestParseTurnInvalidToolJSONFallsBackToText(t *testing.T) {
	text := `[{"name": "broken`
	blocks, uses := parseTurn(text)
	if len(uses) != 0 {
		t.Fatalf("uses = %v, want none", uses)
	}
	if len(blocks) != 1 || blocks[0].Text != text {
		t.Errorf("blocks = %+v", blocks)
	}
}

func TestFlattenTranscript(t *testing.T) {
	messages := []Message{
		UserMessage("help me with fractions"),
		{Role: RoleAssistant, Content: []ContentBlock{
			TextBlock("Let me look."),
			ToolUseBlock("toolu_ab", "get_next_curriculum_node", json.RawMessage(`{"session_id":"s1"}`)),
		}},
		{Role: RoleUser, Content: []ContentBlock{
			ToolResultBlock("toolu_ab", json.RawMessage(`{"id":"fractions-intro"}`)),
		}},
	}
	got := flattenTranscript(messages)
	for _, want := range []string{
		"help me with fractions",
		"[Assistant]: Let me look.",
		"[Tool Call get_next_curriculum_node id=toolu_ab]",
		"[Tool Result id=toolu_ab]",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("transcript missing %q:\n%s", want, got)
		}
	}
}

func TestFlattenTranscriptEmpty(t *testing.T) {
	if got := flattenTranscript(nil); got != "Hello" {
		t.Errorf("flattenTranscript(nil) = %q, want Hello", got)
	}
}
