package ports

// Verifier defines the interface for probing and cleaning task targets.
//
//go:generate go run go.uber.org/mock/mockgen -source=verifier.go -destination=mocks/mock_verifier.go -package=mocks
type Verifier interface {
	// MissingTargets returns the targets (relative to root) that do not exist as files.
	MissingTargets(root string, targets []string) ([]string, error)

	// RemoveTargets deletes the given targets. Missing targets are ignored.
	RemoveTargets(root string, targets []string) error
}
