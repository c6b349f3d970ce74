package agentrunner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestDecodeMessage_DecodesTextBlockAndUsage(t *testing.T) {
	s, err := structpb.NewStruct(map[string]interface{}{
		"blocks": []interface{}{
			map[string]interface{}{"kind": "text", "text": "hello there"},
		},
		"tokens_input":          float64(12),
		"tokens_output":         float64(34),
		"tokens_cache_creation": float64(1),
		"tokens_cache_read":     float64(2),
		"cost_usd":              0.045,
		"final":                 true,
	})
	require.NoError(t, err)

	msg := decodeMessage(s)

	require.Len(t, msg.Blocks, 1)
	assert.Equal(t, BlockText, msg.Blocks[0].Kind)
	assert.Equal(t, "hello there", msg.Blocks[0].Text)
	assert.Equal(t, 12, msg.TokensInput)
	assert.Equal(t, 34, msg.TokensOutput)
	assert.Equal(t, 1, msg.TokensCacheCreation)
	assert.Equal(t, 2, msg.TokensCacheRead)
	assert.InDelta(t, 0.045, msg.CostUSD, 0.0001)
	assert.True(t, msg.Final)
}

func TestDecodeMessage_DecodesToolUseBlockWithInput(t *testing.T) {
	s, err := structpb.NewStruct(map[string]interface{}{
		"blocks": []interface{}{
			map[string]interface{}{
				"kind":        "tool_use",
				"tool_use_id": "tu_1",
				"tool_name":   "run_shell",
				"tool_input":  map[string]interface{}{"command": "go test ./..."},
			},
		},
	})
	require.NoError(t, err)

	msg := decodeMessage(s)

	require.Len(t, msg.Blocks, 1)
	b := msg.Blocks[0]
	assert.Equal(t, BlockToolUse, b.Kind)
	assert.Equal(t, "tu_1", b.ToolUseID)
	assert.Equal(t, "run_shell", b.ToolName)
	assert.Equal(t, "go test ./...", b.ToolInput["command"])
}

func TestDecodeMessage_DecodesToolResultBlock(t *testing.T) {
	s, err := structpb.NewStruct(map[string]interface{}{
		"blocks": []interface{}{
			map[string]interface{}{
				"kind":            "tool_result",
				"tool_result_for": "tu_1",
				"tool_result_ok":  true,
				"tool_result":     "PASS",
			},
		},
	})
	require.NoError(t, err)

	msg := decodeMessage(s)

	require.Len(t, msg.Blocks, 1)
	b := msg.Blocks[0]
	assert.Equal(t, BlockToolResult, b.Kind)
	assert.Equal(t, "tu_1", b.ToolResultFor)
	assert.True(t, b.ToolResultOK)
	assert.Equal(t, "PASS", b.ToolResult)
}

func TestDecodeMessage_EmptyStructYieldsZeroValueMessage(t *testing.T) {
	msg := decodeMessage(&structpb.Struct{})

	assert.Empty(t, msg.Blocks)
	assert.False(t, msg.Final)
	assert.Equal(t, 0, msg.TokensInput)
}
