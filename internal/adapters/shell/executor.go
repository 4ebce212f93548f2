// Package shell provides the executor adapter for task actions.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"go.trai.ch/redo/internal/core/domain"
	"go.trai.ch/redo/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

// Executor implements ports.Executor. Commands run through os/exec, functions run in-process.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{
		logger: logger,
	}
}

// Execute runs the task's action. A nil stdout or stderr is routed to the logger line by line.
func (e *Executor) Execute(ctx context.Context, task *domain.Task, stdout, stderr io.Writer) error {
	if stdout == nil {
		w := &logWriter{logger: e.logger, level: domain.LogLevelInfo}
		defer w.Flush()
		stdout = w
	}
	if stderr == nil {
		w := &logWriter{logger: e.logger, level: domain.LogLevelError}
		defer w.Flush()
		stderr = w
	}

	if err := e.run(ctx, task.Action, stdout, stderr); err != nil {
		return zerr.With(err, "task", task.Name.String())
	}
	return nil
}

func (e *Executor) run(ctx context.Context, action domain.Action, stdout, stderr io.Writer) error {
	switch a := action.(type) {
	case nil:
		return nil
	case domain.CommandAction:
		return runCommand(ctx, &a, stdout, stderr)
	case *domain.CommandAction:
		return runCommand(ctx, a, stdout, stderr)
	case domain.FuncAction:
		return runFunc(ctx, &a, stdout, stderr)
	case *domain.FuncAction:
		return runFunc(ctx, a, stdout, stderr)
	case domain.SequenceAction:
		return e.runSequence(ctx, &a, stdout, stderr)
	case *domain.SequenceAction:
		return e.runSequence(ctx, a, stdout, stderr)
	default:
		return domain.ErrUnsupportedAction
	}
}

func (e *Executor) runSequence(ctx context.Context, seq *domain.SequenceAction, stdout, stderr io.Writer) error {
	for i, step := range seq.Steps {
		if err := ctx.Err(); err != nil {
			return zerr.Wrap(err, "sequence interrupted")
		}
		if err := e.run(ctx, step, stdout, stderr); err != nil {
			return zerr.With(err, "step", i)
		}
	}
	return nil
}

func runFunc(ctx context.Context, fn *domain.FuncAction, stdout, stderr io.Writer) error {
	if fn.Fn == nil {
		return nil
	}
	if err := fn.Fn(ctx, stdout, stderr); err != nil {
		return zerr.With(zerr.Wrap(err, "function failed"), "function", fn.Name)
	}
	return nil
}

// runCommand runs an external process. Task environment overrides the inherited one.
func runCommand(ctx context.Context, c *domain.CommandAction, stdout, stderr io.Writer) error {
	if len(c.Argv) == 0 {
		return nil
	}

	name := c.Argv[0]
	cmdEnv := resolveEnvironment(os.Environ(), c.Environment)

	executable := name
	if !filepath.IsAbs(name) && !strings.ContainsRune(name, filepath.Separator) {
		if lp, err := lookPath(name, cmdEnv); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, c.Argv[1:]...) //nolint:gosec // user provided command

	// exec.CommandContext sets Args[0] to the resolved path; keep the name as invoked.
	if len(cmd.Args) > 0 {
		cmd.Args[0] = name
	}
	if c.WorkingDir != "" {
		cmd.Dir = c.WorkingDir
	}
	cmd.Env = cmdEnv
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return zerr.With(zerr.With(zerr.Wrap(err, "command failed"), "exit_code", exitCode), "command", name)
	}
	return nil
}

// logWriter forwards complete lines to the logger.
type logWriter struct {
	logger ports.Logger
	level  domain.LogLevel
	mu     sync.Mutex
	buf    bytes.Buffer
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// Incomplete line stays buffered until more data or Flush.
			w.buf.Reset()
			w.buf.WriteString(line)
			break
		}
		w.emit(strings.TrimSuffix(line, "\n"))
	}
	return len(p), nil
}

// Flush emits any buffered partial line.
func (w *logWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buf.Len() > 0 {
		w.emit(w.buf.String())
		w.buf.Reset()
	}
}

func (w *logWriter) emit(line string) {
	if w.level >= domain.LogLevelError {
		w.logger.Error(zerr.New(line))
		return
	}
	w.logger.Info(line)
}

// resolveEnvironment merges the inherited environment with task overrides.
func resolveEnvironment(sysEnv []string, taskEnv map[string]string) []string {
	envMap := make(map[string]string, len(sysEnv)+len(taskEnv))
	for _, entry := range sysEnv {
		if k, v, ok := strings.Cut(entry, "="); ok {
			envMap[k] = v
		}
	}
	for k, v := range taskEnv {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	return result
}

// lookPath searches for an executable in the directories named by PATH in env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
