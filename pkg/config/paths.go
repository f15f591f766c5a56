package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ClaudeDirEnv overrides the Claude Code state directory (default ~/.claude).
// Useful for testing and non-standard installations.
const ClaudeDirEnv = "SESSION_INTEL_CLAUDE_DIR"

// StateDirEnv overrides where session-intel keeps its own state
// (default ~/.session-intel).
const StateDirEnv = "SESSION_INTEL_DIR"

// GetClaudeDir returns the Claude Code state directory path.
func GetClaudeDir() (string, error) {
	if envDir := os.Getenv(ClaudeDirEnv); envDir != "" {
		return envDir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".claude"), nil
}

// GetProjectsDir returns the directory Claude Code writes per-project
// session transcripts into.
func GetProjectsDir() (string, error) {
	claudeDir, err := GetClaudeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get claude directory: %w", err)
	}
	return filepath.Join(claudeDir, "projects"), nil
}

// GetStateDir returns the session-intel state directory.
func GetStateDir() (string, error) {
	if envDir := os.Getenv(StateDirEnv); envDir != "" {
		return envDir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".session-intel"), nil
}

// GetDBPath returns the path to the sessions database.
func GetDBPath() (string, error) {
	stateDir, err := GetStateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(stateDir, "sessions.db"), nil
}

// GetLogPath returns the path to the rotating log file.
func GetLogPath() (string, error) {
	stateDir, err := GetStateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(stateDir, "logs", "session-intel.log"), nil
}

// GetReviewsDir returns the directory analysis reports are saved into.
func GetReviewsDir() (string, error) {
	stateDir, err := GetStateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(stateDir, "reviews"), nil
}

// GetArchiveDir returns the directory raw transcript snapshots are kept in.
func GetArchiveDir() (string, error) {
	stateDir, err := GetStateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(stateDir, "archive"), nil
}

// GetConfigPath returns the path to the optional config file.
func GetConfigPath() (string, error) {
	stateDir, err := GetStateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(stateDir, "config.yaml"), nil
}
