package staleness

import (
	"context"
	"sync"

	"go.trai.ch/redo/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Memo answers graph-aware staleness questions. Each task is evaluated at most
// once per Memo, even under concurrent callers; create one Memo per question set.
type Memo struct {
	graph   *domain.Graph
	tracker *Tracker
	force   bool

	mu      sync.Mutex
	entries map[domain.InternedString]*entry
}

type entry struct {
	once  sync.Once
	stale bool
	err   error
}

// NewMemo creates a Memo over graph. With force set, every task is stale.
func NewMemo(graph *domain.Graph, tracker *Tracker, force bool) *Memo {
	return &Memo{
		graph:   graph,
		tracker: tracker,
		force:   force,
		entries: make(map[domain.InternedString]*entry),
	}
}

// IsStale reports whether the named task, or any task it transitively depends on, is stale.
func (m *Memo) IsStale(ctx context.Context, name domain.InternedString) (bool, error) {
	task, ok := m.graph.GetTask(name)
	if !ok {
		return false, zerr.With(domain.ErrTaskNotFound, "task", name.String())
	}

	e := m.entry(name)
	e.once.Do(func() {
		e.stale, e.err = m.evaluate(ctx, &task)
	})
	return e.stale, e.err
}

func (m *Memo) entry(name domain.InternedString) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[name]
	if !ok {
		e = &entry{}
		m.entries[name] = e
	}
	return e
}

func (m *Memo) evaluate(ctx context.Context, task *domain.Task) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if m.force {
		return true, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	results := make([]bool, len(task.DependsOn))
	for i, dep := range task.DependsOn {
		g.Go(func() error {
			stale, err := m.IsStale(gctx, dep)
			results[i] = stale
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}
	for _, stale := range results {
		if stale {
			return true, nil
		}
	}

	return m.tracker.IsSelfStale(task)
}
