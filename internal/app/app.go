// Package app implements the application layer for redo.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"

	"go.trai.ch/redo/internal/adapters/watcher" //nolint:depguard // Debouncing is shared with the watcher adapter
	"go.trai.ch/redo/internal/core/domain"
	"go.trai.ch/redo/internal/core/ports"
	"go.trai.ch/redo/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	scheduler    *scheduler.Scheduler
	telemetry    ports.Telemetry
	logger       ports.Logger
	watcher      ports.Watcher
}

// RunOptions holds the command line overrides for a run.
// Zero values defer to the settings declared in redo.yaml.
type RunOptions struct {
	// Dir is the directory the build description is searched from. Empty means ".".
	Dir            string
	Force          bool
	Jobs           int
	CleanOnFailure bool
	Digest         string
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	sched *scheduler.Scheduler,
	telemetry ports.Telemetry,
	logger ports.Logger,
	w ports.Watcher,
) *App {
	return &App{
		configLoader: loader,
		scheduler:    sched,
		telemetry:    telemetry,
		logger:       logger,
		watcher:      w,
	}
}

// SetJSONLogs switches the logger to JSON output when it supports it.
func (a *App) SetJSONLogs(enable bool) {
	if l, ok := a.logger.(interface{ SetJSON(bool) }); ok {
		l.SetJSON(enable)
	}
}

// Close flushes the telemetry session.
func (a *App) Close() error {
	return a.telemetry.Close()
}

// Run executes the named tasks and their dependencies.
func (a *App) Run(ctx context.Context, targetNames []string, opts RunOptions) error {
	if len(targetNames) == 0 {
		return domain.ErrNoTargetsSpecified
	}

	engine, err := a.bind(opts)
	if err != nil {
		return err
	}

	return a.execute(ctx, engine, targetNames)
}

// Status reports, without running anything, which tasks a run of the named tasks would execute.
func (a *App) Status(ctx context.Context, targetNames []string, opts RunOptions) ([]scheduler.TaskStatus, error) {
	if len(targetNames) == 0 {
		targetNames = []string{domain.AllTasks}
	}

	engine, err := a.bind(opts)
	if err != nil {
		return nil, err
	}
	return engine.Status(ctx, targetNames...)
}

// Reset forgets the recorded dependency state of the named tasks.
func (a *App) Reset(targetNames []string, opts RunOptions) error {
	if len(targetNames) == 0 {
		return domain.ErrNoTargetsSpecified
	}

	engine, err := a.bind(opts)
	if err != nil {
		return err
	}
	if err := engine.Reset(targetNames...); err != nil {
		return zerr.Wrap(err, "failed to reset tasks")
	}

	a.logger.Info(fmt.Sprintf("reset %d task(s)", len(targetNames)))
	return nil
}

// Watch runs the named tasks, then re-runs them whenever one of their
// dependency files changes, until ctx is cancelled.
func (a *App) Watch(ctx context.Context, targetNames []string, opts RunOptions) error {
	if len(targetNames) == 0 {
		return domain.ErrNoTargetsSpecified
	}

	engine, err := a.bind(opts)
	if err != nil {
		return err
	}
	watched, err := watchedPaths(engine, targetNames)
	if err != nil {
		return err
	}

	if err := a.execute(ctx, engine, targetNames); err != nil {
		a.logger.Error(err)
	}

	if err := a.watcher.Start(ctx, engine.Graph().Root()); err != nil {
		return zerr.Wrap(err, "failed to start watcher")
	}
	defer func() { _ = a.watcher.Stop() }()

	trigger := make(chan struct{}, 1)
	debouncer := watcher.NewDebouncer(watcher.DefaultDebounceWindow, func(paths []string) {
		if !slices.ContainsFunc(paths, func(p string) bool { _, ok := watched[p]; return ok }) {
			return
		}
		select {
		case trigger <- struct{}{}:
		default:
		}
	})
	go func() {
		for event := range a.watcher.Events() {
			debouncer.Add(filepath.Clean(event.Path))
		}
	}()

	a.logger.Info("watching for changes")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-trigger:
			if err := a.execute(ctx, engine, targetNames); err != nil && ctx.Err() == nil {
				a.logger.Error(err)
			}
		}
	}
}

func (a *App) execute(ctx context.Context, engine *scheduler.Engine, targetNames []string) error {
	report, err := engine.ExecuteAll(ctx, targetNames...)
	if report != nil {
		a.logger.Info(fmt.Sprintf("%d executed, %d up to date, %d failed, %d cancelled",
			report.Count(domain.TaskSucceeded),
			report.Count(domain.TaskSkipped),
			report.Count(domain.TaskFailed),
			report.Count(domain.TaskCancelled),
		))
	}
	return err
}

func (a *App) bind(opts RunOptions) (*scheduler.Engine, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}

	graph, settings, err := a.configLoader.Load(dir)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	schedOpts, err := schedulerOptions(settings, opts)
	if err != nil {
		return nil, err
	}
	return a.scheduler.Bind(graph, schedOpts)
}

// schedulerOptions merges the settings from redo.yaml with command line overrides.
func schedulerOptions(settings domain.Settings, opts RunOptions) (scheduler.Options, error) {
	res := scheduler.Options{
		MaxConcurrency:        settings.Concurrency,
		Force:                 opts.Force,
		CleanTargetsOnFailure: settings.CleanOnFailure || opts.CleanOnFailure,
		Digest:                settings.Digest,
	}

	if opts.Jobs < 0 {
		return scheduler.Options{}, zerr.With(domain.ErrInvalidConcurrency, "jobs", opts.Jobs)
	}
	if opts.Jobs > 0 {
		res.MaxConcurrency = opts.Jobs
	}

	if opts.Digest != "" {
		algo, err := domain.ParseDigestAlgorithm(opts.Digest)
		if err != nil {
			return scheduler.Options{}, err
		}
		res.Digest = algo
	}

	return res, nil
}

// watchedPaths returns the absolute dependency paths of the planned tasks that
// no planned task produces itself.
func watchedPaths(engine *scheduler.Engine, targetNames []string) (map[string]struct{}, error) {
	plan, err := engine.Plan(targetNames...)
	if err != nil {
		return nil, err
	}

	graph := engine.Graph()
	produced := make(map[string]struct{})
	var deps []string
	for _, name := range plan {
		task, _ := graph.GetTask(domain.NewInternedString(name))
		for _, target := range task.Targets {
			produced[target.String()] = struct{}{}
		}
		deps = append(deps, domain.Strings(task.Dependencies)...)
	}

	watched := make(map[string]struct{}, len(deps))
	for _, dep := range deps {
		if _, ok := produced[dep]; ok {
			continue
		}
		watched[filepath.Join(graph.Root(), filepath.FromSlash(dep))] = struct{}{}
	}
	return watched, nil
}
