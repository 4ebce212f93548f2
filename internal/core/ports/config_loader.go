package ports

import "go.trai.ch/redo/internal/core/domain"

// ConfigLoader defines the interface for loading the build description.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load finds the build description from the given working directory and returns
	// the task graph together with the settings it declares.
	Load(cwd string) (*domain.Graph, domain.Settings, error)
}
