package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/martinemde/mentorloop/emotional"
	"github.com/martinemde/mentorloop/modelio"
	"github.com/martinemde/mentorloop/session"
)

// maxIterations bounds the number of model invocations in one chat turn.
const maxIterations = 6

// curriculumContentLimit caps the node content injected into the system
// prompt.
const curriculumContentLimit = 10000

// Orchestrator runs the primary agent's tool-use loop over persisted
// sessions.
type Orchestrator struct {
	invoker      modelio.Invoker
	store        session.Store
	dispatcher   *Dispatcher
	systemPrompt string
	logger       *slog.Logger
}

// New creates an Orchestrator with the default system prompt.
func New(invoker modelio.Invoker, store session.Store, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		invoker:      invoker,
		store:        store,
		dispatcher:   NewDispatcher(invoker, store, logger),
		systemPrompt: OrchestratorPrompt,
		logger:       logger,
	}
}

// Dispatcher exposes the orchestrator's dispatcher for hosts that need
// direct specialist access, such as curriculum upload handling.
func (o *Orchestrator) Dispatcher() *Dispatcher {
	return o.dispatcher
}

// TurnResult is what one chat turn hands back to the caller.
type TurnResult struct {
	SessionID      string                 `json:"session_id"`
	ResponseText   string                 `json:"response"`
	EmotionalState map[string]interface{} `json:"emotional_state,omitempty"`
	Activity       []ToolActivity         `json:"activity,omitempty"`
}

// Chat runs one full tool-use loop for a user message against a session.
//
// The loop invokes the primary agent, resolves any requested tools through
// the dispatcher, folds all results of one turn into a single batched
// tool-result message, and repeats. It exits on an end_turn stop reason or
// when the iteration budget runs out; budget exhaustion is a degraded but
// non-fatal outcome that returns whatever text the last turn produced.
func (o *Orchestrator) Chat(ctx context.Context, sessionID, userMessage string) (*TurnResult, error) {
	sess, err := o.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	systemPrompt := o.systemPrompt
	if node := sess.Curriculum.GetNode(sess.CurrentNodeID); node != nil {
		content := node.Content
		if r := []rune(content); len(r) > curriculumContentLimit {
			content = string(r[:curriculumContentLimit])
		}
		systemPrompt += fmt.Sprintf(
			"\n\n---\n## Current Module: %s\n\n<curriculum_content>\n%s\n</curriculum_content>",
			node.Title, content)
	}

	messages := transcriptMessages(sess.Messages)
	messages = append(messages, modelio.UserMessage(userMessage))

	var (
		lastContent    []modelio.ContentBlock
		emotionalState map[string]interface{}
		activity       []ToolActivity
	)

	for i := 0; i < maxIterations; i++ {
		resp, err := o.invoker.InvokeOrchestrator(ctx, systemPrompt, messages, Tools())
		if err != nil {
			return nil, fmt.Errorf("invoke orchestrator: %w", err)
		}

		lastContent = resp.Message.Content
		messages = append(messages, resp.Message)

		if resp.StopReason == modelio.StopEndTurn {
			break
		}
		if resp.StopReason != modelio.StopToolUse {
			o.logger.Warn("chat: unexpected stop reason", "stop_reason", resp.StopReason, "iteration", i)
			continue
		}

		var resultBlocks []modelio.ContentBlock
		for _, use := range resp.ToolUses() {
			activity = append(activity, ToolActivity{
				Tool:         use.Name,
				InputSummary: summarizeInput(use.Name, use.Input),
			})

			result, err := o.dispatcher.Dispatch(ctx, use.Name, use.Input)
			if err != nil {
				return nil, err
			}
			if use.Name == ToolAssessEmotionalState {
				if _, failed := result["error"]; !failed {
					emotionalState = result
				}
			}

			content, err := json.Marshal(result)
			if err != nil {
				return nil, fmt.Errorf("encode tool result for %s: %w", use.Name, err)
			}
			resultBlocks = append(resultBlocks, modelio.ToolResultBlock(use.ID, content))
		}
		messages = append(messages, modelio.Message{Role: modelio.RoleUser, Content: resultBlocks})
	}

	responseText := modelio.Message{Content: lastContent}.TextContent()

	simple := append(sess.Messages,
		session.Message{Role: "user", Content: userMessage},
		session.Message{Role: "assistant", Content: responseText},
	)
	updates := session.Updates{Messages: &simple}
	if emotionalState != nil {
		history := append(sess.EmotionalHistory, newHistoryEntry(emotionalState, len(simple)))
		updates.EmotionalHistory = &history
	}
	if err := o.store.Update(ctx, sessionID, updates); err != nil {
		return nil, fmt.Errorf("persist session %s: %w", sessionID, err)
	}

	return &TurnResult{
		SessionID:      sessionID,
		ResponseText:   responseText,
		EmotionalState: emotionalState,
		Activity:       activity,
	}, nil
}

func newHistoryEntry(state map[string]interface{}, messageIndex int) emotional.HistoryEntry {
	return emotional.NewHistoryEntry(emotional.FromMap(state), messageIndex)
}

// transcriptMessages lifts the simplified persisted transcript into model
// messages. Tool-use structure is not persisted, so replayed history is
// text-only.
func transcriptMessages(stored []session.Message) []modelio.Message {
	messages := make([]modelio.Message, 0, len(stored)+1)
	for _, m := range stored {
		role := modelio.RoleUser
		if m.Role == "assistant" {
			role = modelio.RoleAssistant
		}
		messages = append(messages, modelio.Message{
			Role:    role,
			Content: []modelio.ContentBlock{modelio.TextBlock(m.Content)},
		})
	}
	return messages
}
