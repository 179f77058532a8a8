package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads configuration from an explicit file path, falling back to
// the default location when path is empty.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = defaultConfigPath()
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			// Config file is optional, don't fail if it doesn't exist
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	loadFromEnv(cfg)

	if cfg.Storage.NotesDir == "" || cfg.Storage.JournalDir == "" {
		dataDir, err := DataDir()
		if err != nil {
			return nil, err
		}
		if cfg.Storage.NotesDir == "" {
			cfg.Storage.NotesDir = filepath.Join(dataDir, "notes")
		}
		if cfg.Storage.JournalDir == "" {
			cfg.Storage.JournalDir = filepath.Join(dataDir, "journal")
		}
	}
	if cfg.Retrieval.IndexDir == "" {
		dataDir, err := DataDir()
		if err != nil {
			return nil, err
		}
		cfg.Retrieval.IndexDir = filepath.Join(dataDir, "index")
	}

	return cfg, nil
}

// ConfigDir returns the directory holding the config file and log file.
func ConfigDir() (string, error) {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "mentor"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "mentor"), nil
}

// DataDir returns the directory for durable data (notes, journal, index).
func DataDir() (string, error) {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "mentor"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".local", "share", "mentor"), nil
}

func defaultConfigPath() string {
	dir, err := ConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	// Expand environment variables in the config file
	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// loadFromEnv loads configuration from environment variables.
func loadFromEnv(cfg *Config) {
	if apiKey := os.Getenv("MENTOR_API_KEY"); apiKey != "" {
		cfg.API.GeminiKey = apiKey
	} else if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		cfg.API.GeminiKey = apiKey
	}

	if model := os.Getenv("MENTOR_MODEL"); model != "" {
		cfg.Model.Name = model
	}

	if provider := os.Getenv("MENTOR_PROVIDER"); provider != "" {
		cfg.API.ActiveProvider = provider
	}

	if baseURL := os.Getenv("OLLAMA_HOST"); baseURL != "" {
		cfg.API.OllamaBaseURL = baseURL
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Provider() {
	case "gemini":
		if c.API.GeminiKey == "" {
			return ErrMissingAuth
		}
	case "ollama":
		// Local Ollama needs no key.
	default:
		return ConfigError(fmt.Sprintf("unsupported provider: %s", c.API.ActiveProvider))
	}
	if c.Session.TokenLimit <= 0 {
		return ConfigError("session token_limit must be positive")
	}
	return nil
}

// ConfigError is a configuration validation error.
type ConfigError string

func (e ConfigError) Error() string {
	return string(e)
}

// ErrMissingAuth indicates no API key is configured for the active provider.
const ErrMissingAuth = ConfigError("no API key configured: set MENTOR_API_KEY or api.gemini_key")
