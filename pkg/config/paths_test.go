package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetClaudeDir(t *testing.T) {
	original := os.Getenv(ClaudeDirEnv)
	defer os.Setenv(ClaudeDirEnv, original)

	t.Run("uses environment override", func(t *testing.T) {
		os.Setenv(ClaudeDirEnv, "/custom/claude")

		dir, err := GetClaudeDir()
		if err != nil {
			t.Fatalf("GetClaudeDir() error = %v", err)
		}
		if dir != "/custom/claude" {
			t.Errorf("GetClaudeDir() = %q, want %q", dir, "/custom/claude")
		}
	})

	t.Run("defaults to home directory", func(t *testing.T) {
		os.Unsetenv(ClaudeDirEnv)

		dir, err := GetClaudeDir()
		if err != nil {
			t.Fatalf("GetClaudeDir() error = %v", err)
		}

		home, err := os.UserHomeDir()
		if err != nil {
			t.Fatalf("UserHomeDir() error = %v", err)
		}
		want := filepath.Join(home, ".claude")
		if dir != want {
			t.Errorf("GetClaudeDir() = %q, want %q", dir, want)
		}
	})
}

func TestGetProjectsDir(t *testing.T) {
	original := os.Getenv(ClaudeDirEnv)
	defer os.Setenv(ClaudeDirEnv, original)

	os.Setenv(ClaudeDirEnv, "/custom/claude")

	dir, err := GetProjectsDir()
	if err != nil {
		t.Fatalf("GetProjectsDir() error = %v", err)
	}
	want := filepath.Join("/custom/claude", "projects")
	if dir != want {
		t.Errorf("GetProjectsDir() = %q, want %q", dir, want)
	}
}

func TestGetStateDir(t *testing.T) {
	original := os.Getenv(StateDirEnv)
	defer os.Setenv(StateDirEnv, original)

	t.Run("uses environment override", func(t *testing.T) {
		os.Setenv(StateDirEnv, "/custom/state")

		dir, err := GetStateDir()
		if err != nil {
			t.Fatalf("GetStateDir() error = %v", err)
		}
		if dir != "/custom/state" {
			t.Errorf("GetStateDir() = %q, want %q", dir, "/custom/state")
		}
	})

	t.Run("defaults to home directory", func(t *testing.T) {
		os.Unsetenv(StateDirEnv)

		dir, err := GetStateDir()
		if err != nil {
			t.Fatalf("GetStateDir() error = %v", err)
		}

		home, err := os.UserHomeDir()
		if err != nil {
			t.Fatalf("UserHomeDir() error = %v", err)
		}
		want := filepath.Join(home, ".session-intel")
		if dir != want {
			t.Errorf("GetStateDir() = %q, want %q", dir, want)
		}
	})
}

func TestStatePaths(t *testing.T) {
	original := os.Getenv(StateDirEnv)
	defer os.Setenv(StateDirEnv, original)

	os.Setenv(StateDirEnv, "/custom/state")

	tests := []struct {
		name string
		fn   func() (string, error)
		want string
	}{
		{"database", GetDBPath, filepath.Join("/custom/state", "sessions.db")},
		{"log", GetLogPath, filepath.Join("/custom/state", "logs", "session-intel.log")},
		{"reviews", GetReviewsDir, filepath.Join("/custom/state", "reviews")},
		{"archive", GetArchiveDir, filepath.Join("/custom/state", "archive")},
		{"config", GetConfigPath, filepath.Join("/custom/state", "config.yaml")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn()
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
