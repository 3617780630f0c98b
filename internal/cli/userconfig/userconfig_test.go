package userconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoad(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := &UserConfig{ServerURL: "https://api.halosani.cloud"}
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.ServerURL != cfg.ServerURL {
		t.Errorf("ServerURL = %q, want %q", loaded.ServerURL, cfg.ServerURL)
	}
}

func TestLoadMissingFileReturnsEmptyConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerURL != "" {
		t.Errorf("ServerURL = %q, want empty", cfg.ServerURL)
	}
}

func TestRequireServerURL(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if _, err := RequireServerURL(); err == nil {
		t.Fatal("expected error for unconfigured CLI")
	}

	if err := Save(&UserConfig{ServerURL: "https://api.halosani.cloud"}); err != nil {
		t.Fatal(err)
	}

	url, err := RequireServerURL()
	if err != nil {
		t.Fatalf("RequireServerURL: %v", err)
	}
	if url != "https://api.halosani.cloud" {
		t.Errorf("url = %q", url)
	}
}

func TestSavePermissions(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if err := Save(&UserConfig{ServerURL: "https://api.halosani.cloud"}); err != nil {
		t.Fatal(err)
	}

	path, err := GetConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}
	if filepath.Base(path) != "config.yml" {
		t.Errorf("config file name = %q, want config.yml", filepath.Base(path))
	}
}
