package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

var (
	// ErrTaskAlreadyExists is returned when attempting to add a task with a name that already exists.
	ErrTaskAlreadyExists = zerr.New("task already exists")

	// ErrMissingDependency is returned when a task references a dependency that doesn't exist in the graph.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrCycleDetected is returned when a cycle is detected in the task dependency graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrTaskNotFound is returned when a requested task is not found in the graph.
	ErrTaskNotFound = zerr.New("task not found")

	// ErrGraphNotValidated is returned when an engine is asked to run an unvalidated graph.
	ErrGraphNotValidated = zerr.New("graph has not been validated")

	// ErrNoTargetsSpecified is returned when no targets are specified for a command.
	ErrNoTargetsSpecified = zerr.New("no targets specified")

	// ErrReservedTaskName is returned when a task uses a reserved name (e.g., "all").
	ErrReservedTaskName = zerr.New("task name 'all' is reserved")

	// ErrInvalidTaskName is returned when a task name contains invalid characters.
	ErrInvalidTaskName = zerr.New("invalid task name")

	// ErrPathOutsideRoot is returned when a declared path escapes the project root.
	ErrPathOutsideRoot = zerr.New("path is outside project root")

	// ErrInputNotFound is returned when a declared dependency pattern matches nothing.
	ErrInputNotFound = zerr.New("input not found")

	// ErrInvalidDigest is returned when an unknown digest algorithm is configured.
	ErrInvalidDigest = zerr.New("invalid digest algorithm, expected 'xxh64', 'blake3' or 'sha256'")

	// ErrInvalidConcurrency is returned when the concurrency bound is not positive.
	ErrInvalidConcurrency = zerr.New("concurrency must be a positive integer")

	// ErrStaleCheckFailed is returned when staleness cannot be determined.
	ErrStaleCheckFailed = zerr.New("failed to check staleness")

	// ErrTargetMissing is returned when a task succeeded without producing a declared target.
	ErrTargetMissing = zerr.New("declared target missing after execution")

	// ErrTaskExecutionFailed is returned when a task execution fails.
	ErrTaskExecutionFailed = zerr.New("task execution failed")

	// ErrTaskCancelled is returned for tasks that never ran because the run was cancelled.
	ErrTaskCancelled = zerr.New("task cancelled")

	// ErrBuildExecutionFailed is returned when the build execution fails.
	ErrBuildExecutionFailed = zerr.New("build execution failed")

	// ErrUnsupportedAction is returned when an executor receives an action it cannot run.
	ErrUnsupportedAction = zerr.New("unsupported action")

	// ErrHashStoreUpdateFailed is returned when recording dependency hashes fails.
	ErrHashStoreUpdateFailed = zerr.New("failed to update hash store")

	// ErrStoreCreateFailed is returned when the hash store directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create hash store directory")

	// ErrStoreReadFailed is returned when the hash store cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read hash store")

	// ErrStoreUnmarshalFailed is returned when the hash store cannot be unmarshaled.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal hash store")

	// ErrStoreMarshalFailed is returned when the hash store cannot be marshaled.
	ErrStoreMarshalFailed = zerr.New("failed to marshal hash store")

	// ErrStoreWriteFailed is returned when the hash store cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write hash store")

	// ErrStoreVersionMismatch is returned when the hash store was written by an incompatible version.
	ErrStoreVersionMismatch = zerr.New("unsupported hash store version")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigNotFound is returned when the config file cannot be found.
	ErrConfigNotFound = zerr.New("could not find redo.yaml")

	// ErrFileOpenFailed is returned when a file cannot be opened.
	ErrFileOpenFailed = zerr.New("failed to open file")

	// ErrFileHashFailed is returned when hashing a file fails.
	ErrFileHashFailed = zerr.New("failed to hash file content")

	// ErrPathStatFailed is returned when stating a path fails.
	ErrPathStatFailed = zerr.New("failed to stat path")

	// ErrFailedToCleanTarget is returned when removing a target fails.
	ErrFailedToCleanTarget = zerr.New("failed to clean target")
)

// StaleCheckError reports an I/O failure while hashing a dependency or probing a target.
type StaleCheckError struct {
	Task string
	Path string
	Err  error
}

func (e *StaleCheckError) Error() string {
	return "task " + e.Task + ": cannot check " + e.Path + ": " + e.Err.Error()
}

func (e *StaleCheckError) Unwrap() error { return e.Err }

// Is matches ErrStaleCheckFailed.
func (e *StaleCheckError) Is(target error) bool { return target == ErrStaleCheckFailed }

// TargetMissingError reports targets that do not exist after a successful execution.
type TargetMissingError struct {
	Task    string
	Targets []string
}

func (e *TargetMissingError) Error() string {
	return "task " + e.Task + " did not produce " + strings.Join(e.Targets, ", ")
}

// Is matches ErrTargetMissing.
func (e *TargetMissingError) Is(target error) bool { return target == ErrTargetMissing }

// TaskExecutionError wraps the failure of a task's action.
type TaskExecutionError struct {
	Task string
	Err  error
}

func (e *TaskExecutionError) Error() string {
	return "task " + e.Task + " failed: " + e.Err.Error()
}

func (e *TaskExecutionError) Unwrap() error { return e.Err }

// Is matches ErrTaskExecutionFailed.
func (e *TaskExecutionError) Is(target error) bool { return target == ErrTaskExecutionFailed }

// CancellationError is reported by tasks that were never attempted because another task failed.
// Cause is the failure that cancelled the run.
type CancellationError struct {
	Task  string
	Cause error
}

func (e *CancellationError) Error() string {
	if e.Cause == nil {
		return "task " + e.Task + " cancelled"
	}
	return "task " + e.Task + " cancelled: " + e.Cause.Error()
}

func (e *CancellationError) Unwrap() error { return e.Cause }

// Is matches ErrTaskCancelled.
func (e *CancellationError) Is(target error) bool { return target == ErrTaskCancelled }

// CycleError names the tasks forming a dependency cycle, first task repeated at the end.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "cycle detected: " + strings.Join(e.Path, " -> ")
}

// Is matches ErrCycleDetected.
func (e *CycleError) Is(target error) bool { return target == ErrCycleDetected }

// RunError is the aggregate error of a failed run.
// Task is the first task that failed; Failed lists every task that failed on its own.
type RunError struct {
	Task   string
	Cause  error
	Failed []string
}

func (e *RunError) Error() string {
	msg := "build failed at task " + e.Task
	if len(e.Failed) > 1 {
		msg += " (" + strings.Join(e.Failed, ", ") + " failed)"
	}
	return msg + ": " + e.Cause.Error()
}

func (e *RunError) Unwrap() error { return e.Cause }

// Is matches ErrBuildExecutionFailed.
func (e *RunError) Is(target error) bool { return target == ErrBuildExecutionFailed }
