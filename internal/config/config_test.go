package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Retrieval.TopK != 2 || cfg.Retrieval.RewriteFactor != 2 {
		t.Errorf("retrieval defaults: %+v", cfg.Retrieval)
	}
	if cfg.Session.TokenLimit != 40000 {
		t.Errorf("token limit default: %d", cfg.Session.TokenLimit)
	}
	if cfg.Flow.MaxClarifications != 8 || cfg.Flow.InterviewQuestions != 1 {
		t.Errorf("flow defaults: %+v", cfg.Flow)
	}
	if cfg.Flow.DynamicAdvice {
		t.Error("static advice must be the default")
	}
}

func TestProviderResolution(t *testing.T) {
	tests := []struct {
		name     string
		explicit string
		model    string
		want     string
	}{
		{"explicit wins", "ollama", "gemini-2.5-flash", "ollama"},
		{"gemini model", "", "gemini-2.5-flash", "gemini"},
		{"llama model", "", "llama3.2", "ollama"},
		{"qwen model", "", "Qwen2.5-coder", "ollama"},
		{"unknown model defaults to gemini", "", "somethingelse", "gemini"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.API.ActiveProvider = tt.explicit
			cfg.Model.Name = tt.model
			if got := cfg.Provider(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
model:
  name: llama3.2
retrieval:
  top_k: 5
flow:
  dynamic_advice: true
storage:
  notes_dir: ` + filepath.Join(dir, "notes") + `
  journal_dir: ` + filepath.Join(dir, "journal") + `
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model.Name != "llama3.2" {
		t.Errorf("model name not loaded: %q", cfg.Model.Name)
	}
	if cfg.Retrieval.TopK != 5 {
		t.Errorf("top_k not loaded: %d", cfg.Retrieval.TopK)
	}
	if !cfg.Flow.DynamicAdvice {
		t.Error("dynamic_advice not loaded")
	}
	// Untouched keys keep their defaults.
	if cfg.Session.TokenLimit != 40000 {
		t.Errorf("token limit lost: %d", cfg.Session.TokenLimit)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model.Name != "gemini-2.5-flash" {
		t.Errorf("got %q", cfg.Model.Name)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MENTOR_API_KEY", "key-from-env")
	t.Setenv("MENTOR_MODEL", "llama3.2")
	t.Setenv("MENTOR_PROVIDER", "ollama")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.API.GeminiKey != "key-from-env" {
		t.Errorf("api key not loaded from env")
	}
	if cfg.Model.Name != "llama3.2" {
		t.Errorf("model not loaded from env: %q", cfg.Model.Name)
	}
	if cfg.API.ActiveProvider != "ollama" {
		t.Errorf("provider not loaded from env: %q", cfg.API.ActiveProvider)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); !errors.Is(err, ErrMissingAuth) {
		t.Errorf("gemini without key must fail auth validation, got %v", err)
	}

	cfg.API.GeminiKey = "k"
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid gemini config rejected: %v", err)
	}

	cfg = DefaultConfig()
	cfg.API.ActiveProvider = "ollama"
	if err := cfg.Validate(); err != nil {
		t.Errorf("local ollama must not need a key: %v", err)
	}

	cfg.API.ActiveProvider = "openai"
	if err := cfg.Validate(); err == nil {
		t.Error("unsupported provider must be rejected")
	}

	cfg = DefaultConfig()
	cfg.API.GeminiKey = "k"
	cfg.Session.TokenLimit = 0
	if err := cfg.Validate(); err == nil {
		t.Error("non-positive token limit must be rejected")
	}
}
