package domain

// TaskState represents the lifecycle state of a task within one run.
type TaskState string

const (
	// TaskNotStarted indicates the task has not been visited yet.
	TaskNotStarted TaskState = "not-started"
	// TaskDependenciesPending indicates the task is waiting for its dependencies.
	TaskDependenciesPending TaskState = "dependencies-pending"
	// TaskRunning indicates the task's action is executing.
	TaskRunning TaskState = "running"
	// TaskSkipped indicates the task was up to date and did not run.
	TaskSkipped TaskState = "skipped"
	// TaskSucceeded indicates the task ran and its state was committed.
	TaskSucceeded TaskState = "succeeded"
	// TaskFailed indicates the task itself failed.
	TaskFailed TaskState = "failed"
	// TaskCancelled indicates the task was not attempted because the run failed.
	TaskCancelled TaskState = "cancelled"
)

// IsTerminal reports whether the state is final for the run.
func (s TaskState) IsTerminal() bool {
	switch s {
	case TaskSkipped, TaskSucceeded, TaskFailed, TaskCancelled:
		return true
	default:
		return false
	}
}

// IsSuccess reports whether the state is a terminal success state.
func (s TaskState) IsSuccess() bool {
	return s == TaskSkipped || s == TaskSucceeded
}

// LogLevel represents the severity of a log message, mirroring the standard slog levels.
type LogLevel int

const (
	// LogLevelDebug represents debug-level verbosity.
	LogLevelDebug LogLevel = -4
	// LogLevelInfo represents informational verbosity.
	LogLevelInfo LogLevel = 0
	// LogLevelWarn represents warning verbosity.
	LogLevelWarn LogLevel = 4
	// LogLevelError represents error verbosity.
	LogLevelError LogLevel = 8
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}
