// Package scheduler implements the execution engine that runs task graphs.
package scheduler

import (
	"path/filepath"
	"runtime"

	"go.trai.ch/redo/internal/core/domain"
	"go.trai.ch/redo/internal/core/ports"
	"go.trai.ch/redo/internal/engine/staleness"
	"go.trai.ch/zerr"
)

// Options configures an Engine.
type Options struct {
	// MaxConcurrency bounds the number of actions running at once. Zero means runtime.NumCPU().
	MaxConcurrency int
	// Force treats every task as stale.
	Force bool
	// CleanTargetsOnFailure removes a task's declared targets when its action or
	// target validation fails.
	CleanTargetsOnFailure bool
	// Digest selects the content hash for dependency records. Empty means domain.DefaultDigest.
	Digest domain.DigestAlgorithm
}

// Scheduler holds the collaborators shared by every engine it binds.
type Scheduler struct {
	executor  ports.Executor
	opener    ports.HashStoreOpener
	hasher    ports.Hasher
	verifier  ports.Verifier
	telemetry ports.Telemetry
	logger    ports.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(
	executor ports.Executor,
	opener ports.HashStoreOpener,
	hasher ports.Hasher,
	verifier ports.Verifier,
	telemetry ports.Telemetry,
	logger ports.Logger,
) *Scheduler {
	return &Scheduler{
		executor:  executor,
		opener:    opener,
		hasher:    hasher,
		verifier:  verifier,
		telemetry: telemetry,
		logger:    logger,
	}
}

// Bind validates the graph, opens the hash store under the graph root and
// returns an engine for that graph.
func (s *Scheduler) Bind(graph *domain.Graph, opts Options) (*Engine, error) {
	if err := graph.Validate(); err != nil {
		return nil, err
	}

	if opts.MaxConcurrency < 0 {
		return nil, zerr.With(domain.ErrInvalidConcurrency, "concurrency", opts.MaxConcurrency)
	}
	if opts.MaxConcurrency == 0 {
		opts.MaxConcurrency = runtime.NumCPU()
	}
	if opts.Digest == "" {
		opts.Digest = domain.DefaultDigest
	}

	store, err := s.opener.Open(filepath.Join(graph.Root(), domain.DefaultHashStorePath()))
	if err != nil {
		return nil, err
	}

	return &Engine{
		graph:     graph,
		opts:      opts,
		store:     store,
		tracker:   staleness.NewTracker(graph.Root(), opts.Digest, store, s.hasher, s.verifier),
		executor:  s.executor,
		verifier:  s.verifier,
		telemetry: s.telemetry,
		logger:    s.logger,
	}, nil
}
