package ports

import "go.trai.ch/redo/internal/core/domain"

// Hasher defines the interface for computing file records.
//
//go:generate go run go.uber.org/mock/mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// ComputeFileRecord streams the file name (relative to root) and returns its size and digest.
	ComputeFileRecord(root, name string, algo domain.DigestAlgorithm) (domain.FileRecord, error)
}
