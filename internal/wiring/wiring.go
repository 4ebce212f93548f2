// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/redo/internal/adapters/cas"
	_ "go.trai.ch/redo/internal/adapters/config"
	_ "go.trai.ch/redo/internal/adapters/fs"
	_ "go.trai.ch/redo/internal/adapters/logger"
	_ "go.trai.ch/redo/internal/adapters/shell"
	_ "go.trai.ch/redo/internal/adapters/telemetry/progrock"
	_ "go.trai.ch/redo/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/redo/internal/app"
	_ "go.trai.ch/redo/internal/engine/scheduler"
)
