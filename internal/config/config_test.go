package config

import (
	"os"
	"path/filepath"
	"testing"

	"pdf-translator/internal/types"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Load(); err != nil {
		t.Fatalf("Load of missing file should succeed: %v", err)
	}

	cfg := m.Config()
	if cfg.OpenAIModel != DefaultModel {
		t.Errorf("model = %q, want %q", cfg.OpenAIModel, DefaultModel)
	}
	if cfg.OpenAIBaseURL != DefaultBaseURL {
		t.Errorf("base URL = %q, want %q", cfg.OpenAIBaseURL, DefaultBaseURL)
	}
	if cfg.Concurrency != DefaultConcurrency {
		t.Errorf("concurrency = %d, want %d", cfg.Concurrency, DefaultConcurrency)
	}
	if cfg.LangIn != DefaultLangIn || cfg.LangOut != DefaultLangOut {
		t.Errorf("language defaults = %q -> %q", cfg.LangIn, cfg.LangOut)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	m, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}
	m.SetConfig(&types.Config{
		OpenAIAPIKey: "sk-test",
		OpenAIModel:  "gpt-4o",
		LangOut:      "ja",
		Concurrency:  8,
		CachePath:    "/tmp/cache.json",
	})
	if err := m.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cfg := reloaded.Config()
	if cfg.OpenAIAPIKey != "sk-test" || cfg.OpenAIModel != "gpt-4o" {
		t.Errorf("reloaded config = %+v", cfg)
	}
	if cfg.LangOut != "ja" || cfg.Concurrency != 8 {
		t.Errorf("reloaded config = %+v", cfg)
	}
	// gaps backfilled with defaults
	if cfg.LangIn != DefaultLangIn {
		t.Errorf("LangIn = %q, want default", cfg.LangIn)
	}
	if cfg.OpenAIBaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want default", cfg.OpenAIBaseURL)
	}
}

func TestLoadCorruptFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Load(); err != nil {
		t.Fatalf("corrupt file should not fail Load: %v", err)
	}
	if m.Config().OpenAIModel != DefaultModel {
		t.Errorf("model = %q, want default", m.Config().OpenAIModel)
	}
}

func TestAPIKeyEnvFallback(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvOpenAIAPIKey, "sk-from-env")
	if got := m.APIKey(); got != "sk-from-env" {
		t.Errorf("APIKey = %q, want env value", got)
	}

	m.Config().OpenAIAPIKey = "sk-from-file"
	if got := m.APIKey(); got != "sk-from-file" {
		t.Errorf("APIKey = %q, file value should win", got)
	}
}

func TestModelAndBaseURLEnvFallback(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvOpenAIModel, "env-model")
	t.Setenv(EnvOpenAIBaseURL, "https://proxy.example/v1")

	if got := m.Model(); got != "env-model" {
		t.Errorf("Model = %q, want env value", got)
	}
	if got := m.BaseURL(); got != "https://proxy.example/v1" {
		t.Errorf("BaseURL = %q, want env value", got)
	}

	m.Config().OpenAIModel = "file-model"
	if got := m.Model(); got != "file-model" {
		t.Errorf("Model = %q, file value should win", got)
	}
}

func TestWorkspaceRoot(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}

	want := filepath.Join(t.TempDir(), "ws")
	t.Setenv(EnvWorkspaceDir, want)

	got, err := m.WorkspaceRoot()
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("WorkspaceRoot = %q, want %q", got, want)
	}
	if _, err := os.Stat(got); err != nil {
		t.Errorf("workspace directory not created: %v", err)
	}

	m.Config().WorkspaceRoot = filepath.Join(t.TempDir(), "from-config")
	got, err = m.WorkspaceRoot()
	if err != nil {
		t.Fatal(err)
	}
	if got != m.Config().WorkspaceRoot {
		t.Errorf("WorkspaceRoot = %q, config value should win", got)
	}
}
