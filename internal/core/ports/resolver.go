package ports

// InputResolver expands declared dependency patterns into concrete files.
type InputResolver interface {
	// ResolveInputs expands globs and directories under root and returns the
	// sorted, normalized, root-relative file names.
	ResolveInputs(inputs []string, root string) ([]string, error)
}
