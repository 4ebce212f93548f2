// Package cas implements the persisted hash store of dependency file records.
package cas

import (
	"encoding/json"
	"errors"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/redo/internal/core/domain"
	"go.trai.ch/redo/internal/core/ports"
	"go.trai.ch/zerr"
)

// storeVersion is the on-disk format version of the hash store.
const storeVersion = 1

type entry struct {
	Size   int64  `json:"size"`
	Digest string `json:"digest"`
}

type document struct {
	Version int              `json:"version"`
	Files   map[string]entry `json:"files"`
	Failed  map[string]bool  `json:"failed,omitempty"`
}

// Store implements ports.HashStore using a single JSON document.
type Store struct {
	path   string
	mu     sync.RWMutex
	files  map[string]entry
	failed map[string]bool
}

// NewStore opens the hash store backed by the file at the given path.
// A missing file is an empty store; a damaged file is an error.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:   filepath.Clean(path),
		files:  make(map[string]entry),
		failed: make(map[string]bool),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "path", s.path)
	}

	if len(data) == 0 {
		return nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error()), "path", s.path)
	}
	if doc.Version != storeVersion {
		return zerr.With(domain.ErrStoreVersionMismatch, "version", doc.Version)
	}
	if doc.Files != nil {
		s.files = doc.Files
	}
	if doc.Failed != nil {
		s.failed = doc.Failed
	}
	return nil
}

// save writes the whole document to a temp file and renames it into place.
// Callers must hold the write lock.
func (s *Store) save() error {
	data, err := json.MarshalIndent(document{Version: storeVersion, Files: s.files, Failed: s.failed}, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error())
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	if err := tmp.Close(); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	return nil
}

// Lookup retrieves the record for a file name. It returns nil, nil if the file was never recorded.
func (s *Store) Lookup(name string) (*domain.FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.files[name]
	if !ok {
		return nil, nil
	}
	return &domain.FileRecord{Name: name, Size: e.Size, Digest: e.Digest}, nil
}

// Upsert stores all records, clears the failure marker of task and persists both in one write.
// If the write fails the in-memory state is restored.
func (s *Store) Upsert(task string, records []domain.FileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(records) == 0 && !s.failed[task] {
		return nil
	}

	prevFiles, prevFailed := maps.Clone(s.files), maps.Clone(s.failed)
	for _, r := range records {
		s.files[r.Name] = entry{Size: r.Size, Digest: r.Digest}
	}
	delete(s.failed, task)
	if err := s.save(); err != nil {
		s.files, s.failed = prevFiles, prevFailed
		return err
	}
	return nil
}

// MarkFailed persists a failure marker for task.
func (s *Store) MarkFailed(task string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failed[task] {
		return nil
	}
	s.failed[task] = true
	if err := s.save(); err != nil {
		delete(s.failed, task)
		return err
	}
	return nil
}

// Failed reports whether task carries a failure marker.
func (s *Store) Failed(task string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failed[task], nil
}

// Reset deletes the records for the given names and persists the result.
func (s *Store) Reset(names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := maps.Clone(s.files)
	removed := false
	for _, name := range names {
		if _, ok := s.files[name]; ok {
			delete(s.files, name)
			removed = true
		}
	}
	if !removed {
		return nil
	}
	if err := s.save(); err != nil {
		s.files = prev
		return err
	}
	return nil
}

// Len returns the number of records held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}

// Opener opens hash stores by path. Stores opened for the same path share one instance,
// so concurrent engines in one process serialize their writes.
type Opener struct {
	mu     sync.Mutex
	stores map[string]*Store
}

// NewOpener creates a new Opener.
func NewOpener() *Opener {
	return &Opener{stores: make(map[string]*Store)}
}

// Open returns the store persisted at path.
func (o *Opener) Open(path string) (ports.HashStore, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	key := filepath.Clean(path)
	if s, ok := o.stores[key]; ok {
		return s, nil
	}
	s, err := NewStore(key)
	if err != nil {
		return nil, err
	}
	o.stores[key] = s
	return s, nil
}
