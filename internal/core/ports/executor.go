// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"

	"go.trai.ch/redo/internal/core/domain"
)

// Executor defines the interface for executing tasks.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the task's action, writing its output to stdout and stderr.
	//
	// It returns an error if the action fails. Execute must not be called for a
	// task whose dependencies have not completed.
	Execute(ctx context.Context, task *domain.Task, stdout, stderr io.Writer) error
}
