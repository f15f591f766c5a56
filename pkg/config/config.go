package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProjectConfig maps a project name to where it lives on disk. The skills
// directory is where analysis recommendations get applied.
type ProjectConfig struct {
	Workdir   string `yaml:"workdir"`
	SkillsDir string `yaml:"skills_dir"`
}

// Config is the optional ~/.session-intel/config.yaml. A missing file is
// equivalent to an empty config; every lookup has a sensible default.
type Config struct {
	Projects map[string]ProjectConfig `yaml:"projects"`
}

// Load reads the config file. Missing file returns an empty config; a file
// with unknown keys is rejected so typos don't silently disable overrides.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads a config file from an explicit path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// SkillsDir resolves where a project's skills live:
// explicit skills_dir, then workdir/.claude/skills, then ~/{project}/.claude/skills.
func (c *Config) SkillsDir(project string) (string, error) {
	if pc, ok := c.Projects[project]; ok {
		if pc.SkillsDir != "" {
			return expandPath(pc.SkillsDir), nil
		}
		if pc.Workdir != "" {
			return filepath.Join(expandPath(pc.Workdir), ".claude", "skills"), nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, project, ".claude", "skills"), nil
}

// expandPath resolves a leading ~ to the user's home directory.
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
