package orchestrator

import "github.com/martinemde/mentorloop/modelio"

// Tool names available to the primary agent.
const (
	ToolAssessEmotionalState = "assess_emotional_state"
	ToolAdaptContent         = "adapt_content"
	ToolGenerateAssessment   = "generate_assessment"
	ToolParseCurriculum      = "parse_curriculum"
	ToolNextCurriculumNode   = "get_next_curriculum_node"
)

// emotionalStateSchema is the shared 5-dimension input schema fragment.
var emotionalStateSchema = map[string]interface{}{
	"type":        "object",
	"description": "The student's emotional state with 5 dimensions",
	"properties": map[string]interface{}{
		"engagement":     map[string]interface{}{"type": "number"},
		"confidence":     map[string]interface{}{"type": "number"},
		"frustration":    map[string]interface{}{"type": "number"},
		"curiosity":      map[string]interface{}{"type": "number"},
		"cognitive_load": map[string]interface{}{"type": "number"},
	},
}

// Tools returns the fixed tool battery declared to the primary agent.
func Tools() []modelio.ToolSpec {
	return []modelio.ToolSpec{
		{
			Name: ToolAssessEmotionalState,
			Description: "Analyze the student's message to determine their emotional state across " +
				"5 dimensions: engagement, confidence, frustration, curiosity, and cognitive_load. " +
				"Each dimension is a float from 0.0 to 1.0.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"student_message": map[string]interface{}{
						"type":        "string",
						"description": "The student's message to analyze for emotional content",
					},
					"conversation_context": map[string]interface{}{
						"type":        "string",
						"description": "Recent conversation history for additional context",
					},
				},
				"required": []string{"student_message"},
			},
		},
		{
			Name: ToolAdaptContent,
			Description: "Reshape educational content based on the student's current emotional state. " +
				"Simplifies when frustrated, adds depth when curious, gamifies when disengaged.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"current_topic": map[string]interface{}{
						"type":        "string",
						"description": "The topic or concept currently being taught",
					},
					"emotional_state": emotionalStateSchema,
					"student_message": map[string]interface{}{
						"type":        "string",
						"description": "The student's original message for context",
					},
				},
				"required": []string{"current_topic", "emotional_state", "student_message"},
			},
		},
		{
			Name: ToolGenerateAssessment,
			Description: "Create emotionally-calibrated quiz questions that match the student's " +
				"current emotional state. Adjusts difficulty and style based on frustration, " +
				"confidence, and cognitive load.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"topic": map[string]interface{}{
						"type":        "string",
						"description": "The topic to generate assessment questions for",
					},
					"emotional_state": emotionalStateSchema,
					"num_questions": map[string]interface{}{
						"type":        "integer",
						"description": "Number of questions to generate (default: 3)",
					},
				},
				"required": []string{"topic", "emotional_state"},
			},
		},
		{
			Name: ToolParseCurriculum,
			Description: "Parse raw educational content into a structured learning graph with " +
				"nodes, prerequisites, and learning objectives.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"raw_content": map[string]interface{}{
						"type":        "string",
						"description": "The raw educational content to parse into a curriculum graph",
					},
					"subject_hint": map[string]interface{}{
						"type":        "string",
						"description": "Optional hint about the subject area to guide parsing",
					},
				},
				"required": []string{"raw_content"},
			},
		},
		{
			Name: ToolNextCurriculumNode,
			Description: "Get the next available curriculum node for the student based on their " +
				"progress. Returns the next uncompleted node whose prerequisites are all met.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"session_id": map[string]interface{}{
						"type":        "string",
						"description": "The session ID to look up curriculum progress",
					},
					"current_node_id": map[string]interface{}{
						"type":        "string",
						"description": "The ID of the currently active node (optional)",
					},
				},
				"required": []string{"session_id"},
			},
		},
	}
}
