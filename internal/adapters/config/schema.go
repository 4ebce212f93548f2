package config

// Redofile represents the structure of the redo.yaml build description.
type Redofile struct {
	Version  string             `yaml:"version"`
	Root     string             `yaml:"root"`
	Settings SettingsDTO        `yaml:"settings"`
	Tasks    map[string]TaskDTO `yaml:"tasks"`
}

// SettingsDTO represents the engine settings block.
type SettingsDTO struct {
	Concurrency    int    `yaml:"concurrency"`
	Digest         string `yaml:"digest"`
	CleanOnFailure bool   `yaml:"clean_on_failure"`
}

// TaskDTO represents a task definition in the configuration.
type TaskDTO struct {
	Cmd         []string          `yaml:"cmd"`
	Steps       [][]string        `yaml:"steps"`
	Deps        []string          `yaml:"deps"`
	Targets     []string          `yaml:"targets"`
	DependsOn   []string          `yaml:"dependsOn"`
	Environment map[string]string `yaml:"environment"`
	WorkingDir  string            `yaml:"workingDir"`
}
