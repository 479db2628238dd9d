package orchestrator

import (
	"encoding/json"
	"fmt"
)

// ToolActivity is one entry in the activity log a chat turn returns to the
// caller for display.
type ToolActivity struct {
	Tool         string `json:"tool"`
	InputSummary string `json:"input_summary"`
}

// summarizeInput renders a human-readable one-liner of a tool's input.
func summarizeInput(toolName string, rawInput json.RawMessage) string {
	var input map[string]interface{}
	_ = json.Unmarshal(rawInput, &input)

	switch toolName {
	case ToolAssessEmotionalState:
		return fmt.Sprintf("Analyzing: %q", truncate(stringField(input, "student_message"), 50))
	case ToolAdaptContent:
		topic := stringField(input, "current_topic")
		if topic == "" {
			topic = "content"
		}
		return "Adapting: " + topic
	case ToolGenerateAssessment:
		n := 3.0
		if v, ok := input["num_questions"].(float64); ok {
			n = v
		}
		topic := stringField(input, "topic")
		if topic == "" {
			topic = "topic"
		}
		return fmt.Sprintf("Generating %d questions on %s", int(n), topic)
	case ToolParseCurriculum:
		return "Parsing curriculum content"
	case ToolNextCurriculumNode:
		return "Finding next topic"
	default:
		return toolName
	}
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
