package sandbox

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynamous-community/YokeFlow/pkg/apierrors"
)

func TestLocalSandbox_StartCreatesWorkspaceDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "workspace")
	box := newLocalSandbox(Config{WorkspaceDir: dir})

	require.NoError(t, box.Start(context.Background()))
	assert.DirExists(t, dir)
}

func TestLocalSandbox_StartRequiresWorkspaceDir(t *testing.T) {
	box := newLocalSandbox(Config{})
	err := box.Start(context.Background())
	assert.Equal(t, apierrors.KindValidation, apierrors.KindOf(err))
}

func TestLocalSandbox_ExecuteCommandBeforeStartIsStateViolation(t *testing.T) {
	box := newLocalSandbox(Config{WorkspaceDir: t.TempDir()})
	_, err := box.ExecuteCommand(context.Background(), "echo hi")
	assert.Equal(t, apierrors.KindStateViolation, apierrors.KindOf(err))
}

func TestLocalSandbox_ExecuteCommandCapturesStdoutAndExitCode(t *testing.T) {
	dir := t.TempDir()
	box := newLocalSandbox(Config{WorkspaceDir: dir})
	require.NoError(t, box.Start(context.Background()))

	result, err := box.ExecuteCommand(context.Background(), "echo hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", result.Stdout)
	assert.Equal(t, 0, result.ReturnCode)
}

func TestLocalSandbox_ExecuteCommandReportsNonZeroExit(t *testing.T) {
	dir := t.TempDir()
	box := newLocalSandbox(Config{WorkspaceDir: dir})
	require.NoError(t, box.Start(context.Background()))

	result, err := box.ExecuteCommand(context.Background(), "exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, result.ReturnCode)
}

func TestLocalSandbox_ExecuteCommandRunsInWorkspaceDir(t *testing.T) {
	dir := t.TempDir()
	box := newLocalSandbox(Config{WorkspaceDir: dir})
	require.NoError(t, box.Start(context.Background()))

	result, err := box.ExecuteCommand(context.Background(), "pwd")
	require.NoError(t, err)
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Contains(t, result.Stdout, resolved)
}

func TestLocalSandbox_Handle_ReturnsWorkspacePath(t *testing.T) {
	box := newLocalSandbox(Config{WorkspaceDir: "/some/workspace"})
	assert.Equal(t, "/some/workspace", box.Handle())
}
