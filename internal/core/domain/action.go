package domain

import (
	"context"
	"io"
)

// Action is the body of a task. The set of implementations is closed:
// CommandAction, FuncAction and SequenceAction.
type Action interface {
	isAction()
}

// CommandAction runs an external process.
type CommandAction struct {
	// Argv is the command and its arguments. An empty Argv is a no-op.
	Argv []string
	// Environment overrides variables inherited from the parent process.
	Environment map[string]string
	// WorkingDir is the directory the process runs in. Empty means the current directory.
	WorkingDir string
}

// FuncAction calls an in-process function.
type FuncAction struct {
	Name string
	Fn   func(ctx context.Context, stdout, stderr io.Writer) error
}

// SequenceAction runs its steps in order and stops at the first failure.
type SequenceAction struct {
	Steps []Action
}

func (CommandAction) isAction()  {}
func (FuncAction) isAction()     {}
func (SequenceAction) isAction() {}
