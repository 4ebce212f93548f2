package scheduler

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/redo/internal/adapters/cas"                //nolint:depguard // Wired in engine wiring
	"go.trai.ch/redo/internal/adapters/fs"                 //nolint:depguard // Wired in engine wiring
	"go.trai.ch/redo/internal/adapters/logger"             //nolint:depguard // Wired in engine wiring
	"go.trai.ch/redo/internal/adapters/shell"              //nolint:depguard // Wired in engine wiring
	"go.trai.ch/redo/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/redo/internal/core/ports"
)

// NodeID is the unique identifier for the scheduler Graft node.
const NodeID graft.ID = "engine.scheduler"

func init() {
	graft.Register(graft.Node[*Scheduler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			shell.NodeID,
			cas.NodeID,
			fs.HasherNodeID,
			fs.VerifierNodeID,
			progrock.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Scheduler, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}

			opener, err := graft.Dep[ports.HashStoreOpener](ctx)
			if err != nil {
				return nil, err
			}

			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}

			verifier, err := graft.Dep[ports.Verifier](ctx)
			if err != nil {
				return nil, err
			}

			telemetry, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewScheduler(executor, opener, hasher, verifier, telemetry, log), nil
		},
	})
}
