package eventlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaths_MatchesNamingConvention(t *testing.T) {
	at := time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC)
	txt, jsonl := Paths("/projects/demo", 7, at)

	assert.Equal(t, "/projects/demo/logs/session_0007_20260305T143000Z.txt", txt)
	assert.Equal(t, "/projects/demo/logs/session_0007_20260305T143000Z.jsonl", jsonl)
}

func TestWriter_WritesBothStreamsAndStampsSessionID(t *testing.T) {
	dir := t.TempDir()
	txtPath := filepath.Join(dir, "logs", "session_0001.txt")
	jsonPath := filepath.Join(dir, "logs", "session_0001.jsonl")

	w, err := NewWriter("sess-1", txtPath, jsonPath)
	require.NoError(t, err)

	require.NoError(t, w.Write(Event{Kind: KindSessionStart}))
	ok := true
	require.NoError(t, w.Write(Event{Kind: KindToolResult, ToolRef: "tu_1", OK: &ok, Summary: "passed"}))
	require.NoError(t, w.Close())

	txtData, err := os.ReadFile(txtPath)
	require.NoError(t, err)
	assert.Contains(t, string(txtData), "session started")
	assert.Contains(t, string(txtData), "tool_result tu_1 ok: passed")

	events, err := ReadEvents(jsonPath)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "sess-1", events[0].SessionID)
	assert.Equal(t, KindSessionStart, events[0].Kind)
	assert.Equal(t, KindToolResult, events[1].Kind)
}

func TestReadEvents_SkipsCorruptLinesWithoutFailing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session_0001.jsonl")
	content := `{"session_id":"sess-1","kind":"session_start"}
not valid json at all
{"session_id":"sess-1","kind":"session_end","status":"completed"}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	events, err := ReadEvents(path)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, KindSessionStart, events[0].Kind)
	assert.Equal(t, KindSessionEnd, events[1].Kind)
}

func TestReadEvents_SkipsBlankLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session_0001.jsonl")
	content := "{\"session_id\":\"sess-1\",\"kind\":\"session_start\"}\n\n\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	events, err := ReadEvents(path)
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestResolveLogFiles_FindsMatchingPairByPrefix(t *testing.T) {
	dir := t.TempDir()
	logsDir := filepath.Join(dir, "logs")
	require.NoError(t, os.MkdirAll(logsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(logsDir, "session_0007_20260305T143000Z.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(logsDir, "session_0007_20260305T143000Z.jsonl"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(logsDir, "session_0008_20260305T150000Z.txt"), nil, 0o644))

	txt, jsonl, err := ResolveLogFiles(dir, "session_0007")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(logsDir, "session_0007_20260305T143000Z.txt"), txt)
	assert.Equal(t, filepath.Join(logsDir, "session_0007_20260305T143000Z.jsonl"), jsonl)
}

func TestResolveLogFiles_NoMatchReturnsError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "logs"), 0o755))

	_, _, err := ResolveLogFiles(dir, "session_9999")
	assert.Error(t, err)
}
