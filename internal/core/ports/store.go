package ports

import "go.trai.ch/redo/internal/core/domain"

// HashStore is the durable record of dependency file sizes and digests
// and of tasks whose last run failed.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type HashStore interface {
	// Lookup returns the record for a normalized file name.
	// Returns nil, nil if the file was never recorded.
	Lookup(name string) (*domain.FileRecord, error)

	// Upsert writes all records and clears the failure marker of task in a single
	// transaction. Last write wins per name.
	Upsert(task string, records []domain.FileRecord) error

	// MarkFailed persists that the action of task ran and did not succeed.
	MarkFailed(task string) error

	// Failed reports whether task carries a failure marker.
	Failed(task string) (bool, error)

	// Reset deletes the records for the given names.
	Reset(names []string) error
}

// HashStoreOpener opens the hash store persisted at a path.
type HashStoreOpener interface {
	Open(path string) (HashStore, error)
}
