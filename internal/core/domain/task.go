package domain

// Task represents a unit of work in the build system.
// Targets and Dependencies are normalized, root-relative file paths.
// DependsOn lists the names of the tasks that must complete first.
type Task struct {
	Name         InternedString
	Targets      []InternedString
	Dependencies []InternedString
	DependsOn    []InternedString
	Action       Action
}

// IsPhony reports whether the task declares no targets and therefore always runs.
func (t *Task) IsPhony() bool {
	return len(t.Targets) == 0
}
