package scheduler

import "go.trai.ch/redo/internal/core/domain"

// TaskResult is the terminal outcome of one task in a run.
type TaskResult struct {
	Name  string
	State domain.TaskState
	Err   error
}

// Report is the outcome of one ExecuteAll call, in execution order.
type Report struct {
	RunID   string
	Results []TaskResult
	index   map[string]int
}

// State returns the terminal state of the named task, or TaskNotStarted if it was not part of the run.
func (r *Report) State(name string) domain.TaskState {
	if i, ok := r.index[name]; ok {
		return r.Results[i].State
	}
	return domain.TaskNotStarted
}

// Err returns the error recorded for the named task.
func (r *Report) Err(name string) error {
	if i, ok := r.index[name]; ok {
		return r.Results[i].Err
	}
	return nil
}

// Count returns how many tasks ended in state.
func (r *Report) Count(state domain.TaskState) int {
	n := 0
	for _, res := range r.Results {
		if res.State == state {
			n++
		}
	}
	return n
}

// Names returns the tasks that ended in state, in execution order.
func (r *Report) Names(state domain.TaskState) []string {
	var names []string
	for _, res := range r.Results {
		if res.State == state {
			names = append(names, res.Name)
		}
	}
	return names
}
