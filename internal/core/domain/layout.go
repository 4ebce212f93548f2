package domain

import "path/filepath"

const (
	// StateDirName is the name of the internal project state directory.
	StateDirName = ".redo"

	// HashStoreFileName is the name of the persisted hash store.
	HashStoreFileName = "hashes.json"

	// ConfigFileName is the name of the build description file.
	ConfigFileName = "redo.yaml"

	// AllTasks is the reserved target name selecting every task.
	AllTasks = "all"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultHashStorePath returns the hash store path relative to the project root.
func DefaultHashStorePath() string {
	return filepath.Join(StateDirName, HashStoreFileName)
}
