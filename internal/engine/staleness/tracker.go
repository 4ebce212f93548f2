// Package staleness decides whether tasks must re-run.
package staleness

import (
	"strings"

	"go.trai.ch/redo/internal/core/domain"
	"go.trai.ch/redo/internal/core/ports"
)

// Tracker checks a single task against the hash store, ignoring its graph dependencies.
type Tracker struct {
	root     string
	digest   domain.DigestAlgorithm
	store    ports.HashStore
	hasher   ports.Hasher
	verifier ports.Verifier
}

// NewTracker creates a Tracker for the project rooted at root.
func NewTracker(
	root string,
	digest domain.DigestAlgorithm,
	store ports.HashStore,
	hasher ports.Hasher,
	verifier ports.Verifier,
) *Tracker {
	return &Tracker{
		root:     root,
		digest:   digest,
		store:    store,
		hasher:   hasher,
		verifier: verifier,
	}
}

// IsSelfStale reports whether the task must run regardless of its dependencies:
//  1. it declares no targets,
//  2. a target is missing,
//  3. its action ran in an earlier run and did not succeed,
//  4. a dependency was never recorded or its size or digest changed.
//
// I/O failures return a *domain.StaleCheckError and are never read as up to date.
func (t *Tracker) IsSelfStale(task *domain.Task) (bool, error) {
	if task.IsPhony() {
		return true, nil
	}

	targets := domain.Strings(task.Targets)
	missing, err := t.verifier.MissingTargets(t.root, targets)
	if err != nil {
		return false, &domain.StaleCheckError{Task: task.Name.String(), Path: strings.Join(targets, ", "), Err: err}
	}
	if len(missing) > 0 {
		return true, nil
	}

	failed, err := t.store.Failed(task.Name.String())
	if err != nil {
		return false, &domain.StaleCheckError{Task: task.Name.String(), Path: domain.DefaultHashStorePath(), Err: err}
	}
	if failed {
		return true, nil
	}

	for _, dep := range task.Dependencies {
		name := dep.String()
		prev, err := t.store.Lookup(name)
		if err != nil {
			return false, &domain.StaleCheckError{Task: task.Name.String(), Path: name, Err: err}
		}
		if prev == nil {
			return true, nil
		}

		current, err := t.hasher.ComputeFileRecord(t.root, name, t.digest)
		if err != nil {
			return false, &domain.StaleCheckError{Task: task.Name.String(), Path: name, Err: err}
		}
		if !current.Matches(*prev) {
			return true, nil
		}
	}

	return false, nil
}

// CurrentRecords hashes every dependency of the task as it is on disk now.
func (t *Tracker) CurrentRecords(task *domain.Task) ([]domain.FileRecord, error) {
	records := make([]domain.FileRecord, 0, len(task.Dependencies))
	for _, dep := range task.Dependencies {
		rec, err := t.hasher.ComputeFileRecord(t.root, dep.String(), t.digest)
		if err != nil {
			return nil, &domain.StaleCheckError{Task: task.Name.String(), Path: dep.String(), Err: err}
		}
		records = append(records, rec)
	}
	return records, nil
}
