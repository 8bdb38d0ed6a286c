package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Defaults(), cfg, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("defaults (-want +got):\n%s", diff)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formrows.yaml")
	payload := `
server:
  addr: "127.0.0.1:9090"
  read_timeout: 3s
log:
  level: debug
  human: true
theme:
  system_dark: true
layouts:
  - layouts/checklist.yaml
`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("FORMROWS_SESSION_TTL", "30m")
	t.Setenv("FORMROWS_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9090" || cfg.Server.ReadTimeout != 3*time.Second {
		t.Fatalf("server = %+v", cfg.Server)
	}
	if cfg.Log.Level != "warn" || !cfg.Log.Human {
		t.Fatalf("log = %+v", cfg.Log)
	}
	if cfg.Session.TTL != 30*time.Minute {
		t.Fatalf("ttl = %s", cfg.Session.TTL)
	}
	if !cfg.Theme.SystemDark {
		t.Fatalf("theme = %+v", cfg.Theme)
	}
	if diff := cmp.Diff([]string{"layouts/checklist.yaml"}, cfg.Layouts); diff != "" {
		t.Fatalf("layouts (-want +got):\n%s", diff)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"bad addr":          func(c *Config) { c.Server.Addr = "localhost" },
		"bad port":          func(c *Config) { c.Server.Addr = ":http-alt" },
		"bad level":         func(c *Config) { c.Log.Level = "loud" },
		"negative ttl":      func(c *Config) { c.Session.TTL = -time.Second },
		"empty layout path": func(c *Config) { c.Layouts = []string{""} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Defaults()
			mutate(&cfg)
			err := Validate(cfg)
			if err == nil || !strings.HasPrefix(err.Error(), "config: invalid") {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected read error")
	}
}
