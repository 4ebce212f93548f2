// Package config provides the build description loader for redo.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/redo/internal/adapters/fs"
	"go.trai.ch/redo/internal/core/domain"
	"go.trai.ch/redo/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger   ports.Logger
	Resolver ports.InputResolver
}

// NewLoader creates a new Loader.
func NewLoader(logger ports.Logger, resolver ports.InputResolver) *Loader {
	return &Loader{Logger: logger, Resolver: resolver}
}

// Load finds the nearest redo.yaml at or above cwd and returns its task graph and settings.
func (l *Loader) Load(cwd string) (*domain.Graph, domain.Settings, error) {
	configPath, err := FindConfiguration(cwd)
	if err != nil {
		return nil, domain.Settings{}, err
	}
	return l.LoadFile(configPath)
}

// LoadFile reads the build description at configPath.
func (l *Loader) LoadFile(configPath string) (*domain.Graph, domain.Settings, error) {
	var redofile Redofile
	if err := readAndUnmarshalYAML(configPath, &redofile); err != nil {
		return nil, domain.Settings{}, zerr.With(err, "path", configPath)
	}

	settings, err := buildSettings(&redofile.Settings)
	if err != nil {
		return nil, domain.Settings{}, err
	}

	g := domain.NewGraph()
	g.SetRoot(resolveRoot(configPath, redofile.Root))

	names := make([]string, 0, len(redofile.Tasks))
	for name := range redofile.Tasks {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		dto := redofile.Tasks[name]
		if err := validateTaskName(name); err != nil {
			return nil, domain.Settings{}, err
		}

		for _, dep := range dto.DependsOn {
			if _, ok := redofile.Tasks[dep]; !ok {
				err := zerr.With(domain.ErrMissingDependency, "task", name)
				return nil, domain.Settings{}, zerr.With(err, "missing_dependency", dep)
			}
		}

		task, err := l.buildTask(g.Root(), name, &dto)
		if err != nil {
			return nil, domain.Settings{}, zerr.With(err, "task", name)
		}
		if err := g.AddTask(task); err != nil {
			return nil, domain.Settings{}, err
		}
	}

	return g, settings, nil
}

// FindConfiguration walks up from cwd to the nearest redo.yaml.
func FindConfiguration(cwd string) (string, error) {
	currentDir, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrConfigNotFound.Error()), "cwd", cwd)
	}

	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(domain.ErrConfigNotFound, "cwd", cwd)
}

func (l *Loader) buildTask(root, name string, dto *TaskDTO) (*domain.Task, error) {
	deps, err := l.Resolver.ResolveInputs(dto.Deps, root)
	if err != nil {
		return nil, err
	}

	targets := make([]string, 0, len(dto.Targets))
	for _, target := range dto.Targets {
		rel, err := fs.NormalizePath(root, target)
		if err != nil {
			return nil, err
		}
		targets = append(targets, rel)
	}

	workingDir := resolveTaskWorkingDir(root, dto.WorkingDir)

	var action domain.Action
	switch {
	case len(dto.Steps) > 0:
		if len(dto.Cmd) > 0 {
			l.Logger.Warn(fmt.Sprintf("task %q defines both 'cmd' and 'steps', 'cmd' is ignored", name))
		}
		steps := make([]domain.Action, 0, len(dto.Steps))
		for _, argv := range dto.Steps {
			steps = append(steps, commandAction(argv, dto.Environment, workingDir))
		}
		action = domain.SequenceAction{Steps: steps}
	default:
		action = commandAction(dto.Cmd, dto.Environment, workingDir)
	}

	return &domain.Task{
		Name:         domain.NewInternedString(name),
		Targets:      domain.SortedUnique(targets),
		Dependencies: domain.NewInternedStrings(deps),
		DependsOn:    domain.SortedUnique(dto.DependsOn),
		Action:       action,
	}, nil
}

func commandAction(argv []string, env map[string]string, workingDir string) domain.CommandAction {
	return domain.CommandAction{
		Argv:        slices.Clone(argv),
		Environment: env,
		WorkingDir:  workingDir,
	}
}

func buildSettings(dto *SettingsDTO) (domain.Settings, error) {
	if dto.Concurrency < 0 {
		return domain.Settings{}, zerr.With(domain.ErrInvalidConcurrency, "concurrency", dto.Concurrency)
	}
	digest, err := domain.ParseDigestAlgorithm(dto.Digest)
	if err != nil {
		return domain.Settings{}, err
	}
	return domain.Settings{
		Concurrency:    dto.Concurrency,
		Digest:         digest,
		CleanOnFailure: dto.CleanOnFailure,
	}, nil
}

func resolveRoot(configPath, configuredRoot string) string {
	configDir := filepath.Dir(configPath)
	if configuredRoot == "" {
		return filepath.Clean(configDir)
	}
	if filepath.IsAbs(configuredRoot) {
		return filepath.Clean(configuredRoot)
	}
	return filepath.Clean(filepath.Join(configDir, configuredRoot))
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is validated by caller
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}

	return nil
}

// validateTaskName checks if the task name is reserved or contains invalid characters.
func validateTaskName(name string) error {
	if name == domain.AllTasks {
		return zerr.With(domain.ErrReservedTaskName, "task_name", name)
	}
	if name == "" || strings.ContainsAny(name, ": \t\n") {
		return zerr.With(domain.ErrInvalidTaskName, "task_name", name)
	}
	return nil
}

// resolveTaskWorkingDir resolves a task's working directory against the project root.
func resolveTaskWorkingDir(root, configured string) string {
	if configured == "" {
		return root
	}
	if filepath.IsAbs(configured) {
		return filepath.Clean(configured)
	}
	return filepath.Clean(filepath.Join(root, configured))
}
