package agentrunner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dynamous-community/YokeFlow/pkg/sandbox"
)

// shellToolNames are the tool names the runner treats as "execute a command
// in the project workspace" rather than forwarding to MCP. Anything else is
// routed to the MCP client.
var shellToolNames = map[string]bool{
	"bash":           true,
	"shell":          true,
	"run_command":    true,
	"execute_command": true,
}

// browserToolPrefixes identifies browser-automation tool calls for the
// quick-quality-check's playwright metrics (spec.md §4.6).
var browserToolPrefixes = []string{"playwright", "browser_"}

// IsBrowserTool reports whether a tool name is a browser-automation call.
func IsBrowserTool(name string) bool {
	for _, p := range browserToolPrefixes {
		if len(name) >= len(p) && name[:len(p)] == p {
			return true
		}
	}
	return false
}

// ToolRouter executes one tool invocation, picking a strategy at
// construction time per spec.md §9: a sandbox handle present routes shell
// commands through the sandbox; otherwise they run directly against the
// host. Non-shell tool calls always go to the MCP client when one is
// configured.
type ToolRouter struct {
	box sandbox.Sandbox // nil means "no sandbox, run shell locally"
	mcp *mcpsdk.ClientSession
}

// NewToolRouter builds a router bound to one session's sandbox (may be nil
// for a bare local run) and an optional MCP session for task-manager and
// browser-automation tools.
func NewToolRouter(box sandbox.Sandbox, mcp *mcpsdk.ClientSession) *ToolRouter {
	return &ToolRouter{box: box, mcp: mcp}
}

// Execute runs one tool call and returns its content and success flag.
func (r *ToolRouter) Execute(ctx context.Context, name string, input map[string]interface{}) (content string, ok bool) {
	if shellToolNames[name] {
		return r.executeShell(ctx, input)
	}
	if r.mcp == nil {
		return fmt.Sprintf("no MCP server configured to handle tool %q", name), false
	}
	return r.executeMCP(ctx, name, input)
}

func (r *ToolRouter) executeShell(ctx context.Context, input map[string]interface{}) (string, bool) {
	cmd, _ := input["command"].(string)
	if cmd == "" {
		return "missing \"command\" argument", false
	}

	if r.box != nil {
		res, err := r.box.ExecuteCommand(ctx, cmd)
		if err != nil {
			return err.Error(), false
		}
		return formatCommandResult(res.Stdout, res.Stderr, res.ReturnCode), res.ReturnCode == 0
	}

	out, err := exec.CommandContext(ctx, "/bin/sh", "-c", cmd).CombinedOutput()
	if err != nil {
		return string(out) + "\n" + err.Error(), false
	}
	return string(out), true
}

func formatCommandResult(stdout, stderr string, rc int) string {
	if rc == 0 {
		return stdout
	}
	return fmt.Sprintf("stdout:\n%s\nstderr:\n%s\nexit code: %d", stdout, stderr, rc)
}

func (r *ToolRouter) executeMCP(ctx context.Context, name string, input map[string]interface{}) (string, bool) {
	result, err := r.mcp.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      name,
		Arguments: input,
	})
	if err != nil {
		slog.Warn("mcp tool call failed", "tool", name, "error", err)
		return err.Error(), false
	}
	if result.IsError {
		return textOf(result), false
	}
	return textOf(result), true
}

func textOf(result *mcpsdk.CallToolResult) string {
	for _, c := range result.Content {
		if tc, ok := c.(*mcpsdk.TextContent); ok {
			return tc.Text
		}
	}
	data, err := json.Marshal(result.Content)
	if err != nil {
		return ""
	}
	return string(data)
}
