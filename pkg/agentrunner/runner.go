package agentrunner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"time"

	"github.com/dynamous-community/YokeFlow/pkg/eventlog"
	"github.com/dynamous-community/YokeFlow/pkg/models"
)

// TerminalStatus is one of the three outcomes a driven session can reach
// (spec.md §4.4). It deliberately mirrors models.SessionStatus's terminal
// subset rather than importing it, keeping this package free of a store
// dependency.
type TerminalStatus string

// Terminal statuses a run can end in.
const (
	StatusCompleted   TerminalStatus = "completed"
	StatusError       TerminalStatus = "error"
	StatusInterrupted TerminalStatus = "interrupted"
)

// Params configures one Run call.
type Params struct {
	SessionID    string
	Model        string
	SystemPrompt string
	UserPrompt   string
	Router       *ToolRouter
	Log          *eventlog.Writer
	// Progress, if set, is invoked for every event written to the log, so
	// the caller can fan it onto the Broadcast Bus (spec.md §4.5 step 7).
	Progress func(eventlog.Event)
}

// Result is what Run hands back to the Session Orchestrator.
type Result struct {
	Status       TerminalStatus
	FinalText    string
	ErrorMessage string
	Summary      models.RunnerSummary
}

// Runner drives exactly one session against an LLMTransport, per spec.md §4.4.
type Runner struct {
	transport LLMTransport
}

// New builds a Runner bound to a transport.
func New(transport LLMTransport) *Runner {
	return &Runner{transport: transport}
}

// Run submits the prompt, streams messages until the transport reports the
// final message or ctx is cancelled, and returns a terminal result. It
// never blocks indefinitely: every await is bounded by ctx.
func (r *Runner) Run(ctx context.Context, p Params) Result {
	start := time.Now()
	emit := func(e eventlog.Event) {
		if p.Log != nil {
			_ = p.Log.Write(e)
		}
		if p.Progress != nil {
			p.Progress(e)
		}
	}

	emit(eventlog.Event{Kind: eventlog.KindSessionStart})

	stream, err := r.transport.StartAgent(ctx, AgentRequest{
		SessionID:    p.SessionID,
		Model:        p.Model,
		SystemPrompt: p.SystemPrompt,
		UserPrompt:   p.UserPrompt,
	})
	if err != nil {
		return r.finish(emit, start, TerminalStatus(StatusError), "", err.Error(), models.RunnerSummary{})
	}
	defer stream.Close()

	var summary models.RunnerSummary
	var finalText string

	for {
		select {
		case <-ctx.Done():
			emit(eventlog.Event{Kind: eventlog.KindSessionEnd, Status: string(StatusInterrupted)})
			summary.DurationSeconds = time.Since(start).Seconds()
			return Result{Status: StatusInterrupted, FinalText: finalText, Summary: summary}
		default:
		}

		msg, err := stream.Recv(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			status := TerminalStatus(StatusError)
			msgText := err.Error()
			if ctx.Err() != nil {
				status = StatusInterrupted
				msgText = ""
			}
			return r.finish(emit, start, status, msgText, msgText, summary)
		}

		summary.MessageCount++
		summary.TokensInput += msg.TokensInput
		summary.TokensOutput += msg.TokensOutput
		summary.TokensCacheCreation += msg.TokensCacheCreation
		summary.TokensCacheRead += msg.TokensCacheRead
		summary.CostUSD += msg.CostUSD

		for _, block := range msg.Blocks {
			switch block.Kind {
			case BlockText:
				finalText = block.Text
				summary.ResponseLength += len(block.Text)
				emit(eventlog.Event{Kind: eventlog.KindAssistantText, Text: block.Text})

			case BlockToolUse:
				summary.ToolUseCount++
				if IsBrowserTool(block.ToolName) {
					summary.BrowserVerifications++
				}
				emit(eventlog.Event{
					Kind:     eventlog.KindToolUse,
					ToolName: block.ToolName,
					ArgsHash: digestArgs(block.ToolInput),
				})

				content, ok := "", false
				if p.Router != nil {
					content, ok = p.Router.Execute(ctx, block.ToolName, block.ToolInput)
				}
				if !ok {
					summary.ToolErrorCount++
				}
				if isTaskCompletionTool(block.ToolName) && ok {
					summary.TasksCompleted++
				}
				if isTestPassTool(block.ToolName) && ok {
					summary.TestsPassed++
				}

				emit(eventlog.Event{
					Kind:    eventlog.KindToolResult,
					ToolRef: block.ToolUseID,
					OK:      &ok,
					Summary: truncate(content, 500),
				})

				if sendErr := stream.SendToolResult(ctx, ToolResultInput{
					ToolUseID: block.ToolUseID,
					OK:        ok,
					Content:   content,
				}); sendErr != nil {
					return r.finish(emit, start, StatusError, sendErr.Error(), sendErr.Error(), summary)
				}
			}
		}

		if msg.Final {
			break
		}
	}

	summary.DurationSeconds = time.Since(start).Seconds()
	emit(eventlog.Event{Kind: eventlog.KindSessionEnd, Status: string(StatusCompleted), Metrics: summary.AsMap()})
	return Result{Status: StatusCompleted, FinalText: finalText, Summary: summary}
}

func (r *Runner) finish(emit func(eventlog.Event), start time.Time, status TerminalStatus, finalText, errMsg string, summary models.RunnerSummary) Result {
	summary.DurationSeconds = time.Since(start).Seconds()
	emit(eventlog.Event{Kind: eventlog.KindSessionEnd, Status: string(status), Metrics: summary.AsMap()})
	return Result{Status: status, FinalText: finalText, ErrorMessage: errMsg, Summary: summary}
}

// isTaskCompletionTool reports whether name is one of the MCP-style task
// manager tools that signal a task moved to done (spec.md §4.4).
func isTaskCompletionTool(name string) bool {
	return name == "mark_task_done" || name == "complete_task"
}

// isTestPassTool reports whether name signals a passing test run.
func isTestPassTool(name string) bool {
	return name == "mark_test_passing" || name == "record_test_result"
}

func digestArgs(input map[string]interface{}) string {
	data, err := json.Marshal(input)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
