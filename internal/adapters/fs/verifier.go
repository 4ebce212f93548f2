package fs

import (
	"errors"
	"io/fs"
	"os"

	"go.trai.ch/redo/internal/core/domain"
	"go.trai.ch/redo/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Verifier = (*Verifier)(nil)

// Verifier probes and cleans task targets.
type Verifier struct{}

// NewVerifier creates a new Verifier.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// MissingTargets returns the targets that do not exist as regular files under root.
func (v *Verifier) MissingTargets(root string, targets []string) ([]string, error) {
	var missing []string
	for _, target := range targets {
		path := absPath(root, target)
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				missing = append(missing, target)
				continue
			}
			return nil, zerr.With(zerr.Wrap(err, domain.ErrPathStatFailed.Error()), "path", path)
		}
		if info.IsDir() {
			missing = append(missing, target)
		}
	}
	return missing, nil
}

// RemoveTargets deletes the given targets. Targets that do not exist are ignored.
func (v *Verifier) RemoveTargets(root string, targets []string) error {
	var errs []error
	for _, target := range targets {
		rel, err := NormalizePath(root, target)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if rel == "." {
			errs = append(errs, zerr.With(domain.ErrFailedToCleanTarget, "target", target))
			continue
		}
		path := absPath(root, rel)
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, zerr.With(zerr.Wrap(err, domain.ErrFailedToCleanTarget.Error()), "target", target))
		}
	}
	return errors.Join(errs...)
}
