package config

import "strings"

// Config represents the main application configuration.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Model     ModelConfig     `yaml:"model"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Session   SessionConfig   `yaml:"session"`
	Flow      FlowConfig      `yaml:"flow"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`

	// Runtime version information
	Version string `yaml:"-"`
}

// APIConfig holds provider credentials and endpoints.
type APIConfig struct {
	// Gemini API key
	GeminiKey string `yaml:"gemini_key,omitempty"`

	// Ollama server URL (default: http://localhost:11434)
	OllamaBaseURL string `yaml:"ollama_base_url,omitempty"`
	// Optional, for remote Ollama servers with auth
	OllamaKey string `yaml:"ollama_key,omitempty"`

	// Active provider: gemini or ollama. Empty means infer it from
	// the model name.
	ActiveProvider string `yaml:"active_provider"`
}

// ollamaPrefixes are model-name prefixes of common open-source models
// that typically run via Ollama.
var ollamaPrefixes = []string{
	"llama", "qwen", "deepseek", "mistral", "phi", "gemma",
	"yi", "solar", "openchat", "zephyr", "tinyllama",
}

// Provider resolves the active provider. An explicit setting wins;
// otherwise the provider is inferred from the model name, defaulting
// to gemini.
func (c *Config) Provider() string {
	if c.API.ActiveProvider != "" {
		return c.API.ActiveProvider
	}
	name := strings.ToLower(c.Model.Name)
	for _, prefix := range ollamaPrefixes {
		if strings.HasPrefix(name, prefix) {
			return "ollama"
		}
	}
	return "gemini"
}

// ModelConfig holds chat model settings.
type ModelConfig struct {
	Name            string  `yaml:"name"`
	Temperature     float32 `yaml:"temperature"`
	MaxOutputTokens int32   `yaml:"max_output_tokens"`
}

// EmbeddingConfig holds embedding model settings.
type EmbeddingConfig struct {
	Model string `yaml:"model"` // e.g. text-embedding-004
}

// RetrievalConfig holds knowledge index settings.
type RetrievalConfig struct {
	TopK          int    `yaml:"top_k"`          // passages per query
	RewriteFactor int    `yaml:"rewrite_factor"` // minimum query paraphrases
	IndexDir      string `yaml:"index_dir"`      // persisted index location
	ChunkSize     int    `yaml:"chunk_size"`     // chunk size in characters
	ChunkOverlap  int    `yaml:"chunk_overlap"`  // overlap between chunks
}

// SessionConfig holds conversation memory settings.
type SessionConfig struct {
	TokenLimit int `yaml:"token_limit"` // memory budget, oldest messages evicted first
}

// FlowConfig holds workflow loop bounds and strategy selection.
type FlowConfig struct {
	MaxClarifications  int  `yaml:"max_clarifications"`  // intent router clarification budget
	MaxTurns           int  `yaml:"max_turns"`           // interview turns per stage run
	MaxEvalTurns       int  `yaml:"max_eval_turns"`      // per-question validation sub-dialog turns
	MaxHandoffs        int  `yaml:"max_handoffs"`        // dynamic advice hop budget
	InterviewQuestions int  `yaml:"interview_questions"` // advice interviewer follow-up budget
	DynamicAdvice      bool `yaml:"dynamic_advice"`      // agent-handoff advice strategy
	SingleShotAdvice   bool `yaml:"single_shot_advice"`  // stop after the advice stage answers
}

// StorageConfig holds durable store locations.
type StorageConfig struct {
	NotesDir   string `yaml:"notes_dir"`   // profile.json and cases.json
	JournalDir string `yaml:"journal_dir"` // template.md and daily entries
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			OllamaBaseURL: "http://localhost:11434",
		},
		Model: ModelConfig{
			Name:            "gemini-2.5-flash",
			Temperature:     1.0,
			MaxOutputTokens: 8192,
		},
		Embedding: EmbeddingConfig{
			Model: "text-embedding-004",
		},
		Retrieval: RetrievalConfig{
			TopK:          2,
			RewriteFactor: 2,
			ChunkSize:     1500,
			ChunkOverlap:  200,
		},
		Session: SessionConfig{
			TokenLimit: 40000,
		},
		Flow: FlowConfig{
			MaxClarifications:  8,
			MaxTurns:           40,
			MaxEvalTurns:       10,
			MaxHandoffs:        6,
			InterviewQuestions: 1,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}
