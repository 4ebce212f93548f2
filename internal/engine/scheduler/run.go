package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.trai.ch/redo/internal/core/domain"
	"go.trai.ch/redo/internal/core/ports"
	"golang.org/x/sync/semaphore"
)

// future is the outcome of one task within a run. done closes once state is terminal.
type future struct {
	done  chan struct{}
	state domain.TaskState
	err   error
}

// run is the state of a single ExecuteAll call.
type run struct {
	id     string
	engine *Engine

	// ctx is the caller's context and is handed to actions.
	// runCtx is cancelled on the first failure and bounds permit waits.
	ctx    context.Context
	runCtx context.Context
	cancel context.CancelFunc
	sem    *semaphore.Weighted

	mu          sync.Mutex
	futures     map[domain.InternedString]*future
	cancelled   bool
	cause       error
	firstFailed string
	firstErr    error
	failed      []string
}

// visit resolves the named task once per run and waits for its outcome.
func (r *run) visit(name domain.InternedString) *future {
	r.mu.Lock()
	if f, ok := r.futures[name]; ok {
		r.mu.Unlock()
		<-f.done
		return f
	}
	f := &future{done: make(chan struct{}), state: domain.TaskNotStarted}
	r.futures[name] = f
	r.mu.Unlock()

	task, _ := r.engine.graph.GetTask(name)
	state, err := r.resolve(&task, f)
	r.settle(f, state, err)
	return f
}

func (r *run) resolve(task *domain.Task, f *future) (domain.TaskState, error) {
	e := r.engine
	name := task.Name.String()

	if r.isCancelled() {
		return r.cancelledResult(name)
	}
	r.setState(f, domain.TaskDependenciesPending)

	deps := make([]*future, len(task.DependsOn))
	var wg sync.WaitGroup
	for i, dep := range task.DependsOn {
		wg.Go(func() {
			deps[i] = r.visit(dep)
		})
	}
	wg.Wait()

	depExecuted := false
	for _, dep := range deps {
		if !dep.state.IsSuccess() {
			return r.cancelledResult(name)
		}
		if dep.state == domain.TaskSucceeded {
			depExecuted = true
		}
	}
	if r.isCancelled() {
		return r.cancelledResult(name)
	}

	stale := e.opts.Force || depExecuted
	if !stale {
		selfStale, err := e.tracker.IsSelfStale(task)
		if err != nil {
			r.fail(name, err)
			return domain.TaskFailed, err
		}
		stale = selfStale
	}
	if !stale {
		_, vertex := e.telemetry.Record(r.ctx, name)
		vertex.Cached()
		return domain.TaskSkipped, nil
	}

	if ctxErr := r.ctx.Err(); ctxErr != nil {
		r.abort(ctxErr)
		return r.cancelledResult(name)
	}
	if err := r.sem.Acquire(r.runCtx, 1); err != nil {
		if ctxErr := r.ctx.Err(); ctxErr != nil {
			r.abort(ctxErr)
		}
		return r.cancelledResult(name)
	}
	if r.isCancelled() {
		r.sem.Release(1)
		return r.cancelledResult(name)
	}

	r.setState(f, domain.TaskRunning)
	ctx, vertex := e.telemetry.Record(r.ctx, name)
	err := e.executor.Execute(ctx, task, vertex.Stdout(), vertex.Stderr())
	r.sem.Release(1)

	if err != nil {
		return r.failRan(task, vertex, &domain.TaskExecutionError{Task: name, Err: err})
	}

	targets := domain.Strings(task.Targets)
	missing, err := e.verifier.MissingTargets(e.graph.Root(), targets)
	if err != nil {
		return r.failRan(task, vertex, &domain.StaleCheckError{Task: name, Path: strings.Join(targets, ", "), Err: err})
	}
	if len(missing) > 0 {
		return r.failRan(task, vertex, &domain.TargetMissingError{Task: name, Targets: missing})
	}

	// A result that arrives after the run failed is discarded and never committed.
	if r.isCancelled() {
		state, cerr := r.cancelledResult(name)
		vertex.Complete(cerr)
		r.markFailed(name)
		return state, cerr
	}

	records, err := e.tracker.CurrentRecords(task)
	if err != nil {
		vertex.Complete(err)
		r.fail(name, err)
		r.markFailed(name)
		return domain.TaskFailed, err
	}
	if err := e.store.Upsert(name, records); err != nil {
		err = &domain.TaskExecutionError{Task: name, Err: errors.Join(domain.ErrHashStoreUpdateFailed, err)}
		vertex.Complete(err)
		r.fail(name, err)
		r.markFailed(name)
		return domain.TaskFailed, err
	}

	vertex.Complete(nil)
	return domain.TaskSucceeded, nil
}

// failRan records the failure of a task whose action ran. The task is marked
// failed so the next run retries it, and its targets are cleaned when configured.
func (r *run) failRan(task *domain.Task, vertex ports.Vertex, err error) (domain.TaskState, error) {
	e := r.engine
	vertex.Complete(err)
	r.fail(task.Name.String(), err)
	r.markFailed(task.Name.String())

	if e.opts.CleanTargetsOnFailure && len(task.Targets) > 0 {
		if cerr := e.verifier.RemoveTargets(e.graph.Root(), domain.Strings(task.Targets)); cerr != nil {
			e.logger.Warn("failed to clean targets of " + task.Name.String() + ": " + cerr.Error())
		}
	}
	return domain.TaskFailed, err
}

// markFailed persists that the action of name ran without a committed success.
func (r *run) markFailed(name string) {
	if err := r.engine.store.MarkFailed(name); err != nil {
		r.engine.logger.Warn("failed to mark " + name + " as failed: " + err.Error())
	}
}

// fail records a task failure and cancels everything not yet started.
func (r *run) fail(name string, err error) {
	r.mu.Lock()
	if !r.cancelled {
		r.cancelled = true
		r.cause = err
	}
	if r.firstFailed == "" {
		r.firstFailed = name
		r.firstErr = err
	}
	r.failed = append(r.failed, name)
	r.mu.Unlock()

	r.cancel()
}

// abort cancels the run without a failing task, e.g. when the caller's context ends.
func (r *run) abort(cause error) {
	r.mu.Lock()
	if !r.cancelled {
		r.cancelled = true
		r.cause = cause
	}
	r.mu.Unlock()

	r.cancel()
}

func (r *run) isCancelled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelled
}

func (r *run) cancelledResult(name string) (domain.TaskState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return domain.TaskCancelled, &domain.CancellationError{Task: name, Cause: r.cause}
}

func (r *run) setState(f *future, state domain.TaskState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f.state = state
}

func (r *run) settle(f *future, state domain.TaskState, err error) {
	r.mu.Lock()
	f.state = state
	f.err = err
	r.mu.Unlock()
	close(f.done)
}

// err returns the aggregate error of a settled run.
func (r *run) err() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.firstFailed != "" {
		return &domain.RunError{Task: r.firstFailed, Cause: r.firstErr, Failed: append([]string(nil), r.failed...)}
	}
	if r.cancelled {
		return r.cause
	}
	return nil
}

func (r *run) report(order []domain.InternedString) *Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	report := &Report{RunID: r.id, index: make(map[string]int, len(order))}
	for _, name := range order {
		f, ok := r.futures[name]
		if !ok {
			continue
		}
		report.index[name.String()] = len(report.Results)
		report.Results = append(report.Results, TaskResult{Name: name.String(), State: f.state, Err: f.err})
	}
	return report
}
