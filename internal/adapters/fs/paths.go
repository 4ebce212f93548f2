package fs

import (
	"path/filepath"
	"strings"

	"go.trai.ch/redo/internal/core/domain"
	"go.trai.ch/zerr"
)

// NormalizePath turns p into a clean, slash-separated path relative to root.
// Relative paths are taken relative to root. Paths escaping root are rejected.
func NormalizePath(root, p string) (string, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to resolve root"), "root", root)
	}

	abs := p
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(rootAbs, p)
	}

	rel, err := filepath.Rel(rootAbs, filepath.Clean(abs))
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrPathOutsideRoot.Error()), "path", p)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", zerr.With(domain.ErrPathOutsideRoot, "path", p)
	}
	return filepath.ToSlash(rel), nil
}

// absPath joins a normalized name onto root.
func absPath(root, name string) string {
	return filepath.Join(root, filepath.FromSlash(name))
}
