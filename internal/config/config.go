// Package config resolves application settings from file, environment
// and flags via viper.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Settings is the resolved application configuration.
type Settings struct {
	DatabasePath      string
	LLMProvider       string
	LLMAPIKey         string
	LLMModel          string
	EmbeddingProvider string
	OllamaEndpoint    string
	OllamaModel       string
}

// SetDefaults registers default values on the global viper instance.
// Called from the CLI before config file resolution.
func SetDefaults() {
	viper.SetDefault("database.path", "~/.local/share/keeper/keeper.db")
	viper.SetDefault("llm.provider", "anthropic")
	viper.SetDefault("llm.model", "")
	viper.SetDefault("embedding.provider", "ollama")
	viper.SetDefault("embedding.ollama_endpoint", "http://localhost:11434")
	viper.SetDefault("embedding.ollama_model", "nomic-embed-text")
}

// Load reads the resolved settings out of viper.
func Load() Settings {
	return Settings{
		DatabasePath:      ExpandPath(viper.GetString("database.path")),
		LLMProvider:       viper.GetString("llm.provider"),
		LLMAPIKey:         viper.GetString("llm.api_key"),
		LLMModel:          viper.GetString("llm.model"),
		EmbeddingProvider: viper.GetString("embedding.provider"),
		OllamaEndpoint:    viper.GetString("embedding.ollama_endpoint"),
		OllamaModel:       viper.GetString("embedding.ollama_model"),
	}
}

// ExpandPath expands a leading ~ and $VAR environment references in a
// file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	switch {
	case strings.HasPrefix(path, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	case path == "~":
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}
