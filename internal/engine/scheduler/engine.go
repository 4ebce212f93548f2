package scheduler

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.trai.ch/redo/internal/core/domain"
	"go.trai.ch/redo/internal/core/ports"
	"go.trai.ch/redo/internal/engine/staleness"
	"go.trai.ch/zerr"
	"golang.org/x/sync/semaphore"
)

// Engine runs the tasks of one validated graph.
type Engine struct {
	graph     *domain.Graph
	opts      Options
	store     ports.HashStore
	tracker   *staleness.Tracker
	executor  ports.Executor
	verifier  ports.Verifier
	telemetry ports.Telemetry
	logger    ports.Logger
}

// TaskStatus is the dry-run answer for one task.
type TaskStatus struct {
	Name  string
	Stale bool
}

// Graph returns the graph the engine is bound to.
func (e *Engine) Graph() *domain.Graph {
	return e.graph
}

// ExecuteAll runs the named tasks and everything they depend on.
//
// The report is always returned. When any task failed the error is a
// *domain.RunError naming the first failure.
func (e *Engine) ExecuteAll(ctx context.Context, names ...string) (*Report, error) {
	roots, err := e.resolve(names)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	r := &run{
		id:      uuid.NewString(),
		engine:  e,
		ctx:     ctx,
		runCtx:  runCtx,
		cancel:  cancel,
		sem:     semaphore.NewWeighted(int64(e.opts.MaxConcurrency)),
		futures: make(map[domain.InternedString]*future, e.graph.TaskCount()),
	}

	var wg sync.WaitGroup
	for _, root := range roots {
		wg.Go(func() {
			r.visit(root)
		})
	}
	wg.Wait()

	report := r.report(e.graph.Reachable(roots))
	return report, r.err()
}

// IsStale reports whether the named task would run, without running anything.
func (e *Engine) IsStale(ctx context.Context, name string) (bool, error) {
	roots, err := e.resolve([]string{name})
	if err != nil {
		return false, err
	}
	return staleness.NewMemo(e.graph, e.tracker, e.opts.Force).IsStale(ctx, roots[0])
}

// Status reports staleness for every task the named tasks reach, in execution order.
func (e *Engine) Status(ctx context.Context, names ...string) ([]TaskStatus, error) {
	roots, err := e.resolve(names)
	if err != nil {
		return nil, err
	}

	memo := staleness.NewMemo(e.graph, e.tracker, e.opts.Force)
	plan := e.graph.Reachable(roots)
	res := make([]TaskStatus, 0, len(plan))
	for _, name := range plan {
		stale, err := memo.IsStale(ctx, name)
		if err != nil {
			return nil, err
		}
		res = append(res, TaskStatus{Name: name.String(), Stale: stale})
	}
	return res, nil
}

// Reset forgets the recorded dependency state of the named tasks in one store commit.
// Targets on disk are left untouched.
func (e *Engine) Reset(names ...string) error {
	roots, err := e.resolve(names)
	if err != nil {
		return err
	}

	var deps []string
	for _, name := range roots {
		task, _ := e.graph.GetTask(name)
		deps = append(deps, domain.Strings(task.Dependencies)...)
	}
	slices.Sort(deps)
	return e.store.Reset(slices.Compact(deps))
}

// Plan returns the tasks the named tasks reach, dependencies first.
func (e *Engine) Plan(names ...string) ([]string, error) {
	roots, err := e.resolve(names)
	if err != nil {
		return nil, err
	}
	return domain.Strings(e.graph.Reachable(roots)), nil
}

// resolve maps requested names to tasks. "all" selects every task.
func (e *Engine) resolve(names []string) ([]domain.InternedString, error) {
	if len(names) == 0 {
		return nil, domain.ErrNoTargetsSpecified
	}

	if slices.Contains(names, domain.AllTasks) {
		var all []domain.InternedString
		for task := range e.graph.Walk() {
			all = append(all, task.Name)
		}
		return all, nil
	}

	roots := make([]domain.InternedString, 0, len(names))
	for _, name := range names {
		interned := domain.NewInternedString(name)
		if _, ok := e.graph.GetTask(interned); !ok {
			return nil, zerr.With(domain.ErrTaskNotFound, "task", name)
		}
		if !slices.Contains(roots, interned) {
			roots = append(roots, interned)
		}
	}
	return roots, nil
}
