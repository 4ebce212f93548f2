package scheduler_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/redo/internal/adapters/cas"
	"go.trai.ch/redo/internal/adapters/fs"
	"go.trai.ch/redo/internal/adapters/shell"
	"go.trai.ch/redo/internal/adapters/telemetry"
	"go.trai.ch/redo/internal/core/domain"
	"go.trai.ch/redo/internal/core/ports"
	"go.trai.ch/redo/internal/core/ports/mocks"
	"go.trai.ch/redo/internal/engine/scheduler"
	"go.uber.org/mock/gomock"
)

type harness struct {
	root  string
	graph *domain.Graph
	log   ports.Logger

	mu   sync.Mutex
	runs map[string]int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()

	root := t.TempDir()
	graph := domain.NewGraph()
	graph.SetRoot(root)
	return &harness{root: root, graph: graph, log: log, runs: make(map[string]int)}
}

type taskDef struct {
	targets   []string
	deps      []string
	dependsOn []string
	fn        func(ctx context.Context) error
}

func (h *harness) add(t *testing.T, name string, def taskDef) {
	t.Helper()
	task := &domain.Task{
		Name:         domain.NewInternedString(name),
		Targets:      domain.NewInternedStrings(def.targets),
		Dependencies: domain.NewInternedStrings(def.deps),
		DependsOn:    domain.NewInternedStrings(def.dependsOn),
		Action: &domain.FuncAction{
			Name: name,
			Fn: func(ctx context.Context, _, _ io.Writer) error {
				h.mu.Lock()
				h.runs[name]++
				h.mu.Unlock()
				if def.fn == nil {
					return nil
				}
				return def.fn(ctx)
			},
		},
	}
	require.NoError(t, h.graph.AddTask(task))
}

func (h *harness) runsOf(name string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.runs[name]
}

func (h *harness) path(name string) string {
	return filepath.Join(h.root, filepath.FromSlash(name))
}

func (h *harness) write(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(h.path(name)), 0o750))
	require.NoError(t, os.WriteFile(h.path(name), []byte(content), 0o600))
}

// produce returns an action body that writes content to target.
func (h *harness) produce(target, content string) func(context.Context) error {
	return func(context.Context) error {
		if err := os.MkdirAll(filepath.Dir(h.path(target)), 0o750); err != nil {
			return err
		}
		return os.WriteFile(h.path(target), []byte(content), 0o600)
	}
}

func (h *harness) store(t *testing.T) *cas.Store {
	t.Helper()
	store, err := cas.NewStore(filepath.Join(h.root, domain.DefaultHashStorePath()))
	require.NoError(t, err)
	return store
}

func (h *harness) engine(t *testing.T, opts scheduler.Options) *scheduler.Engine {
	t.Helper()
	return h.engineWith(t, cas.NewOpener(), fs.NewHasher(), opts)
}

func (h *harness) engineWith(
	t *testing.T,
	opener ports.HashStoreOpener,
	hasher ports.Hasher,
	opts scheduler.Options,
) *scheduler.Engine {
	t.Helper()
	s := scheduler.NewScheduler(
		shell.NewExecutor(h.log),
		opener,
		hasher,
		fs.NewVerifier(),
		telemetry.NoOp{},
		h.log,
	)
	e, err := s.Bind(h.graph, opts)
	require.NoError(t, err)
	return e
}

func TestEngine_CompileScenario(t *testing.T) {
	h := newHarness(t)
	h.write(t, "src/main.c", "int main() {}")
	h.add(t, "compile", taskDef{
		targets: []string{"out/main.o"},
		deps:    []string{"src/main.c"},
		fn:      h.produce("out/main.o", "object"),
	})
	e := h.engine(t, scheduler.Options{})
	ctx := context.Background()

	report, err := e.ExecuteAll(ctx, "compile")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskSucceeded, report.State("compile"))
	assert.Equal(t, 1, h.runsOf("compile"))

	report, err = e.ExecuteAll(ctx, "compile")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskSkipped, report.State("compile"))
	assert.Equal(t, 1, h.runsOf("compile"))

	h.write(t, "src/main.c", "int main() { return 1; }")
	report, err = e.ExecuteAll(ctx, "compile")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskSucceeded, report.State("compile"))
	assert.Equal(t, 2, h.runsOf("compile"))

	require.NoError(t, os.Remove(h.path("out/main.o")))
	report, err = e.ExecuteAll(ctx, "compile")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskSucceeded, report.State("compile"))
	assert.Equal(t, 3, h.runsOf("compile"))
}

func chain(t *testing.T, h *harness) {
	t.Helper()
	h.write(t, "a.in", "one")
	h.add(t, "gen", taskDef{targets: []string{"a.out"}, deps: []string{"a.in"}, fn: h.produce("a.out", "A")})
	h.add(t, "mid", taskDef{
		targets: []string{"b.out"}, deps: []string{"a.out"}, dependsOn: []string{"gen"},
		fn: h.produce("b.out", "B"),
	})
	h.add(t, "top", taskDef{
		targets: []string{"c.out"}, deps: []string{"b.out"}, dependsOn: []string{"mid"},
		fn: h.produce("c.out", "C"),
	})
}

func TestEngine_SecondRunExecutesNothing(t *testing.T) {
	h := newHarness(t)
	chain(t, h)
	e := h.engine(t, scheduler.Options{})

	_, err := e.ExecuteAll(context.Background(), "top")
	require.NoError(t, err)

	h.write(t, "notes.txt", "unrelated")
	report, err := e.ExecuteAll(context.Background(), "top")
	require.NoError(t, err)
	assert.Equal(t, 3, report.Count(domain.TaskSkipped))
	assert.Equal(t, []string{"gen", "mid", "top"}, report.Names(domain.TaskSkipped))
	for _, name := range []string{"gen", "mid", "top"} {
		assert.Equal(t, 1, h.runsOf(name), name)
	}
}

func TestEngine_PropagatesToDependents(t *testing.T) {
	h := newHarness(t)
	chain(t, h)
	e := h.engine(t, scheduler.Options{})

	_, err := e.ExecuteAll(context.Background(), "top")
	require.NoError(t, err)

	// gen rewrites identical content, its dependents still run.
	h.write(t, "a.in", "two")
	report, err := e.ExecuteAll(context.Background(), "top")
	require.NoError(t, err)
	assert.Equal(t, []string{"gen", "mid", "top"}, report.Names(domain.TaskSucceeded))
	for _, name := range []string{"gen", "mid", "top"} {
		assert.Equal(t, 2, h.runsOf(name), name)
	}
}

func TestEngine_ForceRunsEverything(t *testing.T) {
	h := newHarness(t)
	chain(t, h)

	_, err := h.engine(t, scheduler.Options{}).ExecuteAll(context.Background(), "top")
	require.NoError(t, err)

	report, err := h.engine(t, scheduler.Options{Force: true}).ExecuteAll(context.Background(), "top")
	require.NoError(t, err)
	assert.Equal(t, 3, report.Count(domain.TaskSucceeded))
}

func TestEngine_SharedDependencyRunsOnce(t *testing.T) {
	h := newHarness(t)
	h.add(t, "z", taskDef{})
	h.add(t, "x", taskDef{dependsOn: []string{"z"}})
	h.add(t, "y", taskDef{dependsOn: []string{"z"}})
	e := h.engine(t, scheduler.Options{})

	report, err := e.ExecuteAll(context.Background(), "x", "y")
	require.NoError(t, err)
	assert.Equal(t, 1, h.runsOf("z"))
	assert.Equal(t, 3, report.Count(domain.TaskSucceeded))
	assert.NotEmpty(t, report.RunID)

	report, err = e.ExecuteAll(context.Background(), domain.AllTasks)
	require.NoError(t, err)
	assert.Equal(t, 2, h.runsOf("z"))
	assert.Len(t, report.Results, 3)
}

func TestEngine_RespectsConcurrencyLimit(t *testing.T) {
	h := newHarness(t)
	var active, peak atomic.Int32
	body := func(context.Context) error {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(time.Second)
		active.Add(-1)
		return nil
	}
	names := []string{"t1", "t2", "t3", "t4", "t5"}
	for _, name := range names {
		h.add(t, name, taskDef{fn: body})
	}
	e := h.engine(t, scheduler.Options{MaxConcurrency: 2})

	synctest.Test(t, func(t *testing.T) {
		report, err := e.ExecuteAll(context.Background(), names...)
		require.NoError(t, err)
		assert.Equal(t, 5, report.Count(domain.TaskSucceeded))
	})
	assert.Equal(t, int32(2), peak.Load())
}

func TestEngine_FailureCancelsPendingTasks(t *testing.T) {
	h := newHarness(t)
	boom := errors.New("boom")
	h.add(t, "x", taskDef{fn: func(context.Context) error {
		time.Sleep(100 * time.Millisecond)
		return boom
	}})
	h.add(t, "z", taskDef{fn: func(context.Context) error {
		time.Sleep(time.Second)
		return nil
	}})
	h.add(t, "y", taskDef{dependsOn: []string{"z"}})
	e := h.engine(t, scheduler.Options{MaxConcurrency: 4})

	synctest.Test(t, func(t *testing.T) {
		report, err := e.ExecuteAll(context.Background(), "x", "y")
		require.Error(t, err)

		var runErr *domain.RunError
		require.ErrorAs(t, err, &runErr)
		assert.Equal(t, "x", runErr.Task)
		assert.Equal(t, []string{"x"}, runErr.Failed)
		require.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
		require.ErrorIs(t, err, domain.ErrTaskExecutionFailed)

		assert.Equal(t, domain.TaskFailed, report.State("x"))
		assert.Equal(t, domain.TaskCancelled, report.State("z"))
		assert.Equal(t, domain.TaskCancelled, report.State("y"))
		require.ErrorIs(t, report.Err("y"), domain.ErrTaskCancelled)
	})
	assert.Equal(t, 0, h.runsOf("y"))
	assert.Equal(t, 1, h.runsOf("z"))
}

func TestEngine_DependencyFailureIsNotCommitted(t *testing.T) {
	h := newHarness(t)
	h.write(t, "in.txt", "data")
	h.add(t, "gen", taskDef{targets: []string{"out.txt"}, deps: []string{"in.txt"}})
	e := h.engine(t, scheduler.Options{})

	report, err := e.ExecuteAll(context.Background(), "gen")
	require.ErrorIs(t, err, domain.ErrTargetMissing)

	var missing *domain.TargetMissingError
	require.ErrorAs(t, report.Err("gen"), &missing)
	assert.Equal(t, []string{"out.txt"}, missing.Targets)

	store := h.store(t)
	rec, err := store.Lookup("in.txt")
	require.NoError(t, err)
	assert.Nil(t, rec)
	failed, err := store.Failed("gen")
	require.NoError(t, err)
	assert.True(t, failed)

	_, err = e.ExecuteAll(context.Background(), "gen")
	require.Error(t, err)
	assert.Equal(t, 2, h.runsOf("gen"))
}

func TestEngine_FailedTaskIsRetried(t *testing.T) {
	h := newHarness(t)
	h.write(t, "in.txt", "data")
	var broken atomic.Bool
	write := h.produce("out.txt", "x")
	h.add(t, "gen", taskDef{
		targets: []string{"out.txt"},
		deps:    []string{"in.txt"},
		fn: func(ctx context.Context) error {
			if broken.Load() {
				return errors.New("broken")
			}
			return write(ctx)
		},
	})
	ctx := context.Background()

	_, err := h.engine(t, scheduler.Options{}).ExecuteAll(ctx, "gen")
	require.NoError(t, err)

	broken.Store(true)
	_, err = h.engine(t, scheduler.Options{Force: true}).ExecuteAll(ctx, "gen")
	require.Error(t, err)

	// Inputs and target are unchanged, yet the failed task runs again.
	broken.Store(false)
	report, err := h.engine(t, scheduler.Options{}).ExecuteAll(ctx, "gen")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskSucceeded, report.State("gen"))
	assert.Equal(t, 3, h.runsOf("gen"))
}

func TestEngine_FailedTaskWithoutDependenciesIsRetried(t *testing.T) {
	h := newHarness(t)
	h.write(t, "u.in", "one")
	var broken atomic.Bool
	write := h.produce("t.out", "T")
	h.add(t, "u", taskDef{targets: []string{"u.out"}, deps: []string{"u.in"}, fn: h.produce("u.out", "U")})
	h.add(t, "t", taskDef{
		targets:   []string{"t.out"},
		dependsOn: []string{"u"},
		fn: func(ctx context.Context) error {
			if err := write(ctx); err != nil {
				return err
			}
			if broken.Load() {
				return errors.New("broken")
			}
			return nil
		},
	})
	ctx := context.Background()

	_, err := h.engine(t, scheduler.Options{}).ExecuteAll(ctx, "t")
	require.NoError(t, err)

	h.write(t, "u.in", "two")
	broken.Store(true)
	report, err := h.engine(t, scheduler.Options{}).ExecuteAll(ctx, "t")
	require.Error(t, err)
	assert.Equal(t, domain.TaskSucceeded, report.State("u"))
	assert.Equal(t, domain.TaskFailed, report.State("t"))

	// u is up to date and t.out exists, yet t runs again.
	broken.Store(false)
	report, err = h.engine(t, scheduler.Options{}).ExecuteAll(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskSkipped, report.State("u"))
	assert.Equal(t, domain.TaskSucceeded, report.State("t"))
	assert.Equal(t, 3, h.runsOf("t"))

	failed, err := h.store(t).Failed("t")
	require.NoError(t, err)
	assert.False(t, failed)

	report, err = h.engine(t, scheduler.Options{}).ExecuteAll(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskSkipped, report.State("t"))
}

func TestEngine_DiscardedResultIsRetried(t *testing.T) {
	h := newHarness(t)
	h.add(t, "x", taskDef{fn: func(context.Context) error {
		time.Sleep(100 * time.Millisecond)
		return errors.New("boom")
	}})
	write := h.produce("w.out", "W")
	h.add(t, "w", taskDef{targets: []string{"w.out"}, fn: func(ctx context.Context) error {
		if err := write(ctx); err != nil {
			return err
		}
		time.Sleep(time.Second)
		return nil
	}})
	ctx := context.Background()

	synctest.Test(t, func(t *testing.T) {
		_, err := h.engine(t, scheduler.Options{}).ExecuteAll(ctx, "w")
		require.NoError(t, err)
	})

	forced := h.engine(t, scheduler.Options{Force: true, MaxConcurrency: 2})
	synctest.Test(t, func(t *testing.T) {
		report, err := forced.ExecuteAll(ctx, "x", "w")
		require.Error(t, err)
		assert.Equal(t, domain.TaskFailed, report.State("x"))
		assert.Equal(t, domain.TaskCancelled, report.State("w"))
	})
	assert.Equal(t, 2, h.runsOf("w"))

	synctest.Test(t, func(t *testing.T) {
		report, err := h.engine(t, scheduler.Options{}).ExecuteAll(ctx, "w")
		require.NoError(t, err)
		assert.Equal(t, domain.TaskSucceeded, report.State("w"))
	})
	assert.Equal(t, 3, h.runsOf("w"))
}

func TestEngine_StaleCheckFailureCancelsRun(t *testing.T) {
	h := newHarness(t)
	h.write(t, "in.txt", "data")
	h.write(t, "out.txt", "built")
	seeded := domain.FileRecord{Name: "in.txt", Size: 4, Digest: "xxh64:00"}
	require.NoError(t, h.store(t).Upsert("gen", []domain.FileRecord{seeded}))

	h.add(t, "gen", taskDef{targets: []string{"out.txt"}, deps: []string{"in.txt"}})
	h.add(t, "z", taskDef{fn: func(context.Context) error {
		time.Sleep(time.Second)
		return nil
	}})
	h.add(t, "y", taskDef{dependsOn: []string{"z"}})

	ctrl := gomock.NewController(t)
	hasher := mocks.NewMockHasher(ctrl)
	hasher.EXPECT().ComputeFileRecord(h.root, "in.txt", domain.DefaultDigest).
		DoAndReturn(func(string, string, domain.DigestAlgorithm) (domain.FileRecord, error) {
			time.Sleep(100 * time.Millisecond)
			return domain.FileRecord{}, errors.New("input/output error")
		})
	e := h.engineWith(t, cas.NewOpener(), hasher, scheduler.Options{MaxConcurrency: 4})

	synctest.Test(t, func(t *testing.T) {
		report, err := e.ExecuteAll(context.Background(), "gen", "y")
		require.ErrorIs(t, err, domain.ErrStaleCheckFailed)

		var runErr *domain.RunError
		require.ErrorAs(t, err, &runErr)
		assert.Equal(t, "gen", runErr.Task)

		var staleErr *domain.StaleCheckError
		require.ErrorAs(t, report.Err("gen"), &staleErr)
		assert.Equal(t, "in.txt", staleErr.Path)
		assert.Equal(t, domain.TaskFailed, report.State("gen"))

		for _, name := range []string{"z", "y"} {
			assert.Equal(t, domain.TaskCancelled, report.State(name), name)
			var cancelErr *domain.CancellationError
			require.ErrorAs(t, report.Err(name), &cancelErr)
			assert.ErrorIs(t, cancelErr.Cause, domain.ErrStaleCheckFailed)
		}
	})
	assert.Equal(t, 0, h.runsOf("gen"))
	assert.Equal(t, 0, h.runsOf("y"))

	store := h.store(t)
	rec, err := store.Lookup("in.txt")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, seeded, *rec)
	failed, err := store.Failed("gen")
	require.NoError(t, err)
	assert.False(t, failed)
}

func TestEngine_CleanTargetsOnFailure(t *testing.T) {
	tests := []struct {
		name  string
		clean bool
		kept  bool
	}{
		{name: "clean", clean: true, kept: false},
		{name: "keep", clean: false, kept: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			write := h.produce("partial.out", "half")
			h.add(t, "gen", taskDef{
				targets: []string{"partial.out"},
				fn: func(ctx context.Context) error {
					if err := write(ctx); err != nil {
						return err
					}
					return errors.New("interrupted")
				},
			})
			e := h.engine(t, scheduler.Options{CleanTargetsOnFailure: tt.clean})

			_, err := e.ExecuteAll(context.Background(), "gen")
			require.Error(t, err)

			_, statErr := os.Stat(h.path("partial.out"))
			assert.Equal(t, tt.kept, statErr == nil)
		})
	}
}

func TestEngine_StoreUpdateFailure(t *testing.T) {
	h := newHarness(t)
	h.write(t, "in.txt", "data")
	h.add(t, "gen", taskDef{targets: []string{"out.txt"}, deps: []string{"in.txt"}, fn: h.produce("out.txt", "x")})

	ctrl := gomock.NewController(t)
	store := mocks.NewMockHashStore(ctrl)
	store.EXPECT().Lookup("in.txt").Return(nil, nil).AnyTimes()
	store.EXPECT().Failed("gen").Return(false, nil).AnyTimes()
	store.EXPECT().Upsert("gen", gomock.Any()).Return(errors.New("disk full"))
	store.EXPECT().MarkFailed("gen").Return(nil)
	opener := mocks.NewMockHashStoreOpener(ctrl)
	opener.EXPECT().Open(filepath.Join(h.root, domain.DefaultHashStorePath())).Return(store, nil)

	report, err := h.engineWith(t, opener, fs.NewHasher(), scheduler.Options{}).ExecuteAll(context.Background(), "gen")
	require.ErrorIs(t, err, domain.ErrHashStoreUpdateFailed)
	assert.Equal(t, domain.TaskFailed, report.State("gen"))
	assert.Contains(t, report.Err("gen").Error(), "disk full")
}

func TestEngine_CallerCancellation(t *testing.T) {
	h := newHarness(t)
	h.add(t, "x", taskDef{})
	e := h.engine(t, scheduler.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := e.ExecuteAll(ctx, "x")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.TaskCancelled, report.State("x"))
	assert.Equal(t, 0, h.runsOf("x"))
}

func TestScheduler_BindRejectsCycle(t *testing.T) {
	h := newHarness(t)
	h.add(t, "a", taskDef{dependsOn: []string{"b"}})
	h.add(t, "b", taskDef{dependsOn: []string{"a"}})

	s := scheduler.NewScheduler(nil, cas.NewOpener(), nil, nil, telemetry.NoOp{}, h.log)
	_, err := s.Bind(h.graph, scheduler.Options{})
	require.ErrorIs(t, err, domain.ErrCycleDetected)
}

func TestScheduler_BindRejectsNegativeConcurrency(t *testing.T) {
	h := newHarness(t)
	h.add(t, "a", taskDef{})

	s := scheduler.NewScheduler(nil, cas.NewOpener(), nil, nil, telemetry.NoOp{}, h.log)
	_, err := s.Bind(h.graph, scheduler.Options{MaxConcurrency: -1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrInvalidConcurrency.Error())
}

func TestEngine_UnknownTask(t *testing.T) {
	h := newHarness(t)
	h.add(t, "a", taskDef{})
	e := h.engine(t, scheduler.Options{})

	_, err := e.ExecuteAll(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrTaskNotFound.Error())

	_, err = e.ExecuteAll(context.Background())
	require.ErrorIs(t, err, domain.ErrNoTargetsSpecified)
}

func TestEngine_StatusResetAndPlan(t *testing.T) {
	h := newHarness(t)
	chain(t, h)
	e := h.engine(t, scheduler.Options{})
	ctx := context.Background()

	plan, err := e.Plan("top")
	require.NoError(t, err)
	assert.Equal(t, []string{"gen", "mid", "top"}, plan)

	stale, err := e.IsStale(ctx, "top")
	require.NoError(t, err)
	assert.True(t, stale)

	_, err = e.ExecuteAll(ctx, "top")
	require.NoError(t, err)

	status, err := e.Status(ctx, "top")
	require.NoError(t, err)
	assert.Equal(t, []scheduler.TaskStatus{
		{Name: "gen", Stale: false},
		{Name: "mid", Stale: false},
		{Name: "top", Stale: false},
	}, status)

	require.NoError(t, e.Reset("gen"))

	status, err = e.Status(ctx, "top")
	require.NoError(t, err)
	assert.Equal(t, []scheduler.TaskStatus{
		{Name: "gen", Stale: true},
		{Name: "mid", Stale: true},
		{Name: "top", Stale: true},
	}, status)
	assert.Equal(t, 1, h.runsOf("gen"))
}
