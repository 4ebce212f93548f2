// Package domain contains the core domain models and business logic for the task dependency graph.
package domain

import (
	"iter"
	"slices"

	"go.trai.ch/zerr"
)

// Graph represents a dependency graph of tasks rooted at a project directory.
type Graph struct {
	root           string
	tasks          map[InternedString]Task
	executionOrder []InternedString
	validated      bool
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		root:  ".",
		tasks: make(map[InternedString]Task),
	}
}

// SetRoot sets the project root directory all task paths are relative to.
func (g *Graph) SetRoot(root string) {
	g.root = root
}

// Root returns the project root directory.
func (g *Graph) Root() string {
	return g.root
}

// AddTask adds a task to the graph.
// It returns an error if a task with the same name already exists.
func (g *Graph) AddTask(t *Task) error {
	if _, exists := g.tasks[t.Name]; exists {
		return zerr.With(ErrTaskAlreadyExists, "task_name", t.Name.String())
	}
	g.tasks[t.Name] = *t
	g.validated = false
	return nil
}

// GetTask returns the task with the given name.
func (g *Graph) GetTask(name InternedString) (Task, bool) {
	t, ok := g.tasks[name]
	return t, ok
}

// TaskCount returns the number of tasks in the graph.
func (g *Graph) TaskCount() int {
	return len(g.tasks)
}

// Validate checks for missing dependencies and cycles using a depth-first search
// with a visiting set. It populates the execution order if successful.
func (g *Graph) Validate() error {
	g.executionOrder = make([]InternedString, 0, len(g.tasks))
	visited := make(map[InternedString]int, len(g.tasks)) // 0: unvisited, 1: visiting, 2: visited
	var path []InternedString

	var visit func(u InternedString) error
	visit = func(u InternedString) error {
		visited[u] = 1
		path = append(path, u)

		task := g.tasks[u]
		for _, dep := range task.DependsOn {
			if _, exists := g.tasks[dep]; !exists {
				err := zerr.With(ErrMissingDependency, "task", u.String())
				return zerr.With(err, "dependency", dep.String())
			}
			switch visited[dep] {
			case 1:
				return newCycleError(path, dep)
			case 0:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		g.executionOrder = append(g.executionOrder, u)
		return nil
	}

	// Sorted iteration keeps Walk deterministic across runs.
	for _, name := range g.sortedNames() {
		if visited[name] == 0 {
			if err := visit(name); err != nil {
				g.executionOrder = nil
				return err
			}
		}
	}

	g.validated = true
	return nil
}

// Validated reports whether Validate succeeded since the last AddTask.
func (g *Graph) Validated() bool {
	return g.validated
}

// Walk returns an iterator that yields tasks in execution order (dependencies first).
// It assumes Validate() has been called and returned nil.
func (g *Graph) Walk() iter.Seq[Task] {
	return func(yield func(Task) bool) {
		for _, name := range g.executionOrder {
			if !yield(g.tasks[name]) {
				return
			}
		}
	}
}

// Reachable returns the names of every task reachable from roots (roots included)
// in execution order. It assumes Validate() has been called and returned nil.
func (g *Graph) Reachable(roots []InternedString) []InternedString {
	seen := make(map[InternedString]bool, len(g.tasks))
	queue := slices.Clone(roots)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if seen[name] {
			continue
		}
		seen[name] = true
		queue = append(queue, g.tasks[name].DependsOn...)
	}

	res := make([]InternedString, 0, len(seen))
	for _, name := range g.executionOrder {
		if seen[name] {
			res = append(res, name)
		}
	}
	return res
}

func (g *Graph) sortedNames() []InternedString {
	names := make([]InternedString, 0, len(g.tasks))
	for name := range g.tasks {
		names = append(names, name)
	}
	slices.SortFunc(names, InternedString.Compare)
	return names
}

func newCycleError(path []InternedString, dep InternedString) error {
	start := slices.Index(path, dep)
	cycle := make([]string, 0, len(path)-start+1)
	for _, node := range path[start:] {
		cycle = append(cycle, node.String())
	}
	cycle = append(cycle, dep.String())
	return &CycleError{Path: cycle}
}
