package shell_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/redo/internal/adapters/shell"
	"go.trai.ch/redo/internal/core/domain"
	"go.trai.ch/redo/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newTask(name string, action domain.Action) *domain.Task {
	return &domain.Task{Name: domain.NewInternedString(name), Action: action}
}

func TestExecutor_Command(t *testing.T) {
	ctrl := gomock.NewController(t)
	executor := shell.NewExecutor(mocks.NewMockLogger(ctrl))
	tmpDir := t.TempDir()

	var stdout, stderr bytes.Buffer
	task := newTask("compile", domain.CommandAction{
		Argv:        []string{"sh", "-c", "echo $GREETING; pwd; echo oops >&2"},
		Environment: map[string]string{"GREETING": "hello"},
		WorkingDir:  tmpDir,
	})

	require.NoError(t, executor.Execute(context.Background(), task, &stdout, &stderr))

	resolved, err := filepath.EvalSymlinks(tmpDir)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "hello\n")
	assert.Contains(t, stdout.String(), resolved)
	assert.Equal(t, "oops\n", stderr.String())
}

func TestExecutor_CommandFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	executor := shell.NewExecutor(mocks.NewMockLogger(ctrl))

	task := newTask("fail", domain.CommandAction{Argv: []string{"sh", "-c", "exit 3"}})
	err := executor.Execute(context.Background(), task, io.Discard, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command failed")
}

func TestExecutor_EmptyCommandIsNoop(t *testing.T) {
	ctrl := gomock.NewController(t)
	executor := shell.NewExecutor(mocks.NewMockLogger(ctrl))

	require.NoError(t, executor.Execute(context.Background(), newTask("phony", domain.CommandAction{}), io.Discard, io.Discard))
	require.NoError(t, executor.Execute(context.Background(), newTask("nil", nil), io.Discard, io.Discard))
}

func TestExecutor_Func(t *testing.T) {
	ctrl := gomock.NewController(t)
	executor := shell.NewExecutor(mocks.NewMockLogger(ctrl))

	var out bytes.Buffer
	task := newTask("gen", domain.FuncAction{
		Name: "gen",
		Fn: func(_ context.Context, stdout, _ io.Writer) error {
			_, err := io.WriteString(stdout, "generated")
			return err
		},
	})
	require.NoError(t, executor.Execute(context.Background(), task, &out, io.Discard))
	assert.Equal(t, "generated", out.String())

	boom := errors.New("boom")
	failing := newTask("bad", &domain.FuncAction{
		Name: "bad",
		Fn:   func(context.Context, io.Writer, io.Writer) error { return boom },
	})
	err := executor.Execute(context.Background(), failing, io.Discard, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestExecutor_SequenceStopsAtFirstFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	executor := shell.NewExecutor(mocks.NewMockLogger(ctrl))
	marker := filepath.Join(t.TempDir(), "marker")

	task := newTask("seq", domain.SequenceAction{Steps: []domain.Action{
		domain.CommandAction{Argv: []string{"sh", "-c", "echo one"}},
		domain.CommandAction{Argv: []string{"sh", "-c", "exit 1"}},
		domain.CommandAction{Argv: []string{"touch", marker}},
	}})

	var out bytes.Buffer
	err := executor.Execute(context.Background(), task, &out, io.Discard)
	require.Error(t, err)
	assert.Equal(t, "one\n", out.String())

	_, statErr := os.Stat(marker)
	assert.True(t, os.IsNotExist(statErr))
}

func TestExecutor_NilWritersGoToLogger(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	gomock.InOrder(
		mockLogger.EXPECT().Info("line1"),
		mockLogger.EXPECT().Info("line2"),
	)
	mockLogger.EXPECT().Error(gomock.Any()).Times(1)

	executor := shell.NewExecutor(mockLogger)
	task := newTask("log", domain.CommandAction{
		Argv: []string{"sh", "-c", "echo line1; printf line; printf '2\\n'; printf err >&2"},
	})

	require.NoError(t, executor.Execute(context.Background(), task, nil, nil))
}

func TestExecutor_ContextCancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	executor := shell.NewExecutor(mocks.NewMockLogger(ctrl))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	task := newTask("slow", domain.CommandAction{Argv: []string{"sleep", "5"}})
	require.Error(t, executor.Execute(ctx, task, io.Discard, io.Discard))
}
