// Package agentrunner drives exactly one session: it submits a prompt to
// the LLM, streams messages, routes tool invocations through the sandbox or
// the MCP tool client, writes every event to the Event Log, and returns a
// terminal status plus a metrics summary (spec.md §4.4). Grounded in the
// teacher's pkg/llm/client.go (streaming shape, cancellation-aware channel
// reads) and pkg/mcp/client.go (tool execution against live MCP sessions).
package agentrunner

import "context"

// ContentBlockKind distinguishes the three block kinds a streamed agent
// message can carry (spec.md §6, "Agent mode").
type ContentBlockKind string

// Content block kinds.
const (
	BlockText       ContentBlockKind = "text"
	BlockToolUse    ContentBlockKind = "tool_use"
	BlockToolResult ContentBlockKind = "tool_result"
)

// ContentBlock is one piece of a streamed agent message.
type ContentBlock struct {
	Kind ContentBlockKind

	// BlockText
	Text string

	// BlockToolUse
	ToolUseID string
	ToolName  string
	ToolInput map[string]interface{}

	// BlockToolResult
	ToolResultFor string
	ToolResultOK  bool
	ToolResult    string
}

// Message is one streamed turn from the LLM in agent mode.
type Message struct {
	Blocks              []ContentBlock
	TokensInput         int
	TokensOutput        int
	TokensCacheCreation int
	TokensCacheRead     int
	CostUSD             float64
	Final               bool
}

// AgentRequest starts one agent-mode streaming call.
type AgentRequest struct {
	SessionID    string
	Model        string
	SystemPrompt string
	UserPrompt   string
}

// ToolResultInput is what the caller sends back after executing a tool the
// LLM invoked, continuing the agent-mode stream.
type ToolResultInput struct {
	ToolUseID string
	OK        bool
	Content   string
}

// AgentStream is the handle a caller drives turn by turn: Recv blocks for
// the next message, SendToolResult continues the conversation after local
// tool execution, and Close releases transport resources.
type AgentStream interface {
	Recv(ctx context.Context) (*Message, error)
	SendToolResult(ctx context.Context, result ToolResultInput) error
	Close() error
}

// LLMTransport is the two-shape contract from spec.md §6: a streaming,
// tool-capable agent mode and a single-turn, tool-free analysis mode.
type LLMTransport interface {
	// StartAgent begins a streaming agent-mode call. The returned stream's
	// Recv blocks for the next message; cancelling ctx (or the stream's own
	// context) unblocks any pending Recv promptly.
	StartAgent(ctx context.Context, req AgentRequest) (AgentStream, error)

	// Analyze performs a single-turn, tool-free completion and returns the
	// raw text response. Callers parse it defensively (spec.md §4.6, §4.7).
	Analyze(ctx context.Context, model, prompt string) (string, error)
}
