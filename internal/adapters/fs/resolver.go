package fs

import (
	"os"
	"path/filepath"
	"slices"

	"go.trai.ch/redo/internal/core/domain"
	"go.trai.ch/redo/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.InputResolver = (*Resolver)(nil)

// Resolver implements ports.InputResolver using filepath.Glob and the Walker.
type Resolver struct {
	walker *Walker
}

// NewResolver creates a new Resolver.
func NewResolver(walker *Walker) *Resolver {
	return &Resolver{walker: walker}
}

// ResolveInputs resolves the given patterns to sorted, root-relative file names.
//
// A literal path that does not exist yet is kept as declared, since an upstream
// task may produce it. A glob that matches nothing is an error.
func (r *Resolver) ResolveInputs(inputs []string, root string) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to resolve root"), "root", root)
	}
	unique := make(map[string]struct{})

	add := func(path string) error {
		rel, err := NormalizePath(root, path)
		if err != nil {
			return err
		}
		unique[rel] = struct{}{}
		return nil
	}

	for _, input := range inputs {
		pattern, err := NormalizePath(root, input)
		if err != nil {
			return nil, err
		}
		path := absPath(root, pattern)

		if !hasMeta(pattern) {
			info, err := os.Stat(path)
			if err != nil || !info.IsDir() {
				unique[pattern] = struct{}{}
				continue
			}
			for file := range r.walker.WalkFiles(path, nil) {
				if err := add(file); err != nil {
					return nil, err
				}
			}
			continue
		}

		matches, err := filepath.Glob(path)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to glob path"), "path", input)
		}
		if len(matches) == 0 {
			return nil, zerr.With(domain.ErrInputNotFound, "path", input)
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, zerr.With(zerr.Wrap(err, domain.ErrPathStatFailed.Error()), "path", match)
			}
			if !info.IsDir() {
				if err := add(match); err != nil {
					return nil, err
				}
				continue
			}
			for file := range r.walker.WalkFiles(match, nil) {
				if err := add(file); err != nil {
					return nil, err
				}
			}
		}
	}

	result := make([]string, 0, len(unique))
	for name := range unique {
		result = append(result, name)
	}
	slices.Sort(result)
	return result, nil
}

func hasMeta(pattern string) bool {
	for _, c := range pattern {
		switch c {
		case '*', '?', '[', '\\':
			return true
		}
	}
	return false
}
