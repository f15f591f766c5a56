package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadFrom(t *testing.T) {
	t.Run("parses projects", func(t *testing.T) {
		path := writeConfig(t, `projects:
  webshop:
    workdir: /srv/webshop
  blog:
    workdir: ~/blog
    skills_dir: ~/blog/custom-skills
`)

		cfg, err := LoadFrom(path)
		if err != nil {
			t.Fatalf("LoadFrom() error = %v", err)
		}
		if len(cfg.Projects) != 2 {
			t.Fatalf("len(Projects) = %d, want 2", len(cfg.Projects))
		}
		if cfg.Projects["webshop"].Workdir != "/srv/webshop" {
			t.Errorf("webshop workdir = %q", cfg.Projects["webshop"].Workdir)
		}
		if cfg.Projects["blog"].SkillsDir != "~/blog/custom-skills" {
			t.Errorf("blog skills_dir = %q", cfg.Projects["blog"].SkillsDir)
		}
	})

	t.Run("missing file yields empty config", func(t *testing.T) {
		cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
		if err != nil {
			t.Fatalf("LoadFrom() error = %v", err)
		}
		if len(cfg.Projects) != 0 {
			t.Errorf("len(Projects) = %d, want 0", len(cfg.Projects))
		}
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		path := writeConfig(t, `projects:
  webshop:
    workdirr: /srv/webshop
`)

		_, err := LoadFrom(path)
		if err == nil {
			t.Fatal("LoadFrom() error = nil, want parse error")
		}
		if !strings.Contains(err.Error(), "failed to parse config") {
			t.Errorf("error = %v, want parse error", err)
		}
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		path := writeConfig(t, "projects: [\n")

		if _, err := LoadFrom(path); err == nil {
			t.Fatal("LoadFrom() error = nil, want parse error")
		}
	})
}

func TestSkillsDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("UserHomeDir() error = %v", err)
	}

	cfg := &Config{
		Projects: map[string]ProjectConfig{
			"explicit": {Workdir: "/srv/explicit", SkillsDir: "/opt/skills"},
			"tilde":    {SkillsDir: "~/skills"},
			"workdir":  {Workdir: "/srv/app"},
		},
	}

	tests := []struct {
		name    string
		project string
		want    string
	}{
		{"explicit skills dir wins", "explicit", "/opt/skills"},
		{"tilde expands to home", "tilde", filepath.Join(home, "skills")},
		{"workdir fallback", "workdir", filepath.Join("/srv/app", ".claude", "skills")},
		{"unconfigured project uses home", "mystery", filepath.Join(home, "mystery", ".claude", "skills")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cfg.SkillsDir(tt.project)
			if err != nil {
				t.Fatalf("SkillsDir(%q) error = %v", tt.project, err)
			}
			if got != tt.want {
				t.Errorf("SkillsDir(%q) = %q, want %q", tt.project, got, tt.want)
			}
		})
	}
}
