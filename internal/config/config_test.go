package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nightreign-tools/relicplanner/internal/config"
)

// fakeEnv points XDG_CONFIG_HOME at an empty directory so tests never read
// or write the real user's global config.
func fakeEnv(t *testing.T) []string {
	t.Helper()

	return []string{"XDG_CONFIG_HOME=" + t.TempDir()}
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()

	if cfg.ResourceDir != "resources" || cfg.DefaultTopN != 5 || cfg.DefaultMaxVessel != 3 || cfg.DeadlineMillis != 2000 {
		t.Errorf("DefaultConfig() = %+v, want the documented defaults", cfg)
	}
}

func TestLoadNoFilesReturnsDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg, sources, err := config.Load(dir, "", config.Config{}, false, fakeEnv(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg != config.DefaultConfig() {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}

	if sources.Global != "" || sources.Project != "" {
		t.Errorf("sources = %+v, want both empty when no files exist", sources)
	}
}

func TestLoadProjectConfigOverridesDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	projectJSON := `{
		// a hand-edited project config, comments allowed
		"resource_dir": "game-data",
		"default_top_n": 10,
	}`

	if err := os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte(projectJSON), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, sources, err := config.Load(dir, "", config.Config{}, false, fakeEnv(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ResourceDir != "game-data" {
		t.Errorf("ResourceDir = %q, want game-data", cfg.ResourceDir)
	}

	if cfg.DefaultTopN != 10 {
		t.Errorf("DefaultTopN = %d, want 10", cfg.DefaultTopN)
	}

	if cfg.DefaultMaxVessel != 3 {
		t.Errorf("DefaultMaxVessel = %d, want unchanged default 3", cfg.DefaultMaxVessel)
	}

	if sources.Project == "" {
		t.Error("sources.Project is empty, want the project config path")
	}
}

func TestLoadCLIOverrideWinsOverProjectConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	projectJSON := `{"resource_dir": "game-data"}`
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte(projectJSON), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, _, err := config.Load(dir, "", config.Config{ResourceDir: "/cli/override"}, true, fakeEnv(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ResourceDir != "/cli/override" {
		t.Errorf("ResourceDir = %q, want /cli/override", cfg.ResourceDir)
	}
}

func TestLoadExplicitPathMustExist(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, _, err := config.Load(dir, "missing.json", config.Config{}, false, fakeEnv(t))
	if err == nil {
		t.Fatal("Load with a missing explicit path, want an error")
	}
}

func TestLoadRejectsEmptyResourceDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, _, err := config.Load(dir, "", config.Config{ResourceDir: ""}, true, fakeEnv(t))
	if err == nil {
		t.Fatal("Load with an empty resource_dir override, want ErrResourceDirEmpty")
	}
}

func TestFormatRoundTrips(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()

	out, err := config.Format(cfg)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}

	if out == "" {
		t.Error("Format() returned empty string")
	}
}
