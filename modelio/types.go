package modelio

import (
	"encoding/json"
	"strings"
)

// Role identifies who produced a message in a conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// StopReason distinguishes "model is done talking" from "model wants a tool
// resolved".
type StopReason string

const (
	StopEndTurn   StopReason = "end_turn"
	StopToolUse   StopReason = "tool_use"
	StopMaxTokens StopReason = "max_tokens"
)

// BlockKind is the discriminator tag for ContentBlock.
type BlockKind string

const (
	BlockText       BlockKind = "text"
	BlockToolUse    BlockKind = "tool_use"
	BlockToolResult BlockKind = "tool_result"
)

// ToolUse is a model-initiated tool invocation embedded in a turn.
type ToolUse struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// ToolResult carries the resolved result for a tool-use block, correlated by
// the invocation's id.
type ToolResult struct {
	ToolUseID string          `json:"tool_use_id"`
	Content   json.RawMessage `json:"content"`
}

// ContentBlock is a tagged union representing one part of a message.
type ContentBlock struct {
	Kind       BlockKind   `json:"kind"`
	Text       string      `json:"text,omitempty"`
	ToolUse    *ToolUse    `json:"tool_use,omitempty"`
	ToolResult *ToolResult `json:"tool_result,omitempty"`
}

// TextBlock creates a text ContentBlock.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Kind: BlockText, Text: text}
}

// ToolUseBlock creates a tool-use ContentBlock.
func ToolUseBlock(id, name string, input json.RawMessage) ContentBlock {
	return ContentBlock{
		Kind:    BlockToolUse,
		ToolUse: &ToolUse{ID: id, Name: name, Input: input},
	}
}

// ToolResultBlock creates a tool-result ContentBlock.
func ToolResultBlock(toolUseID string, content json.RawMessage) ContentBlock {
	return ContentBlock{
		Kind:       BlockToolResult,
		ToolResult: &ToolResult{ToolUseID: toolUseID, Content: content},
	}
}

// Message is the fundamental unit of conversation.
type Message struct {
	Role    Role           `json:"role"`
	Content []ContentBlock `json:"content"`
}

// UserMessage creates a user Message with text content.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: []ContentBlock{TextBlock(text)}}
}

// AssistantMessage creates an assistant Message with text content.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: []ContentBlock{TextBlock(text)}}
}

// TextContent returns the concatenation of all text blocks in the message.
func (m Message) TextContent() string {
	var sb strings.Builder
	for _, block := range m.Content {
		if block.Kind == BlockText {
			sb.WriteString(block.Text)
		}
	}
	return sb.String()
}

// ToolUses extracts all tool-use blocks from the message content.
func (m Message) ToolUses() []ToolUse {
	var uses []ToolUse
	for _, block := range m.Content {
		if block.Kind == BlockToolUse && block.ToolUse != nil {
			uses = append(uses, *block.ToolUse)
		}
	}
	return uses
}

// ToolSpec describes a tool for the model.
type ToolSpec struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"input_schema"`
}

// Response is a full raw model turn: the stop signal plus the content blocks
// the caller must interpret.
type Response struct {
	StopReason StopReason `json:"stop_reason"`
	Message    Message    `json:"message"`
}

// Text returns the concatenated text blocks of the response turn.
func (r *Response) Text() string {
	return r.Message.TextContent()
}

// ToolUses returns the tool-use blocks of the response turn.
func (r *Response) ToolUses() []ToolUse {
	return r.Message.ToolUses()
}

// HasToolUse reports whether the turn requests any tool resolution.
func (r *Response) HasToolUse() bool {
	return len(r.Message.ToolUses()) > 0
}

// SpecialistReply is the result of a specialist invocation: plain text when
// the model produced no tool-use blocks, otherwise the raw structured turn.
type SpecialistReply struct {
	Text string
	Raw  *Response
}

// Structured reports whether the reply carries a raw structured turn instead
// of plain text.
func (r SpecialistReply) Structured() bool {
	return r.Raw != nil
}
