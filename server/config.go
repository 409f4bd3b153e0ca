package server

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config is the elicitation server configuration.
type Config struct {
	// Address to listen on (e.g., ":5000")
	ListenAddr string `toml:"listen"`

	// Upstream Ollama-compatible endpoint URL (e.g., "http://localhost:11434")
	UpstreamURL string `toml:"upstream"`

	// Model name sent with every chat request (e.g., "llama3.1:8b")
	Model string `toml:"model"`

	// Optional bearer token for the upstream endpoint
	APIKey string `toml:"api_key"`

	// DataDir is where conversations and generated specifications are kept.
	// Empty means conversations live in memory only.
	DataDir string `toml:"data_dir"`

	// DBPath switches conversation persistence to a SQLite database at this
	// path instead of per-session JSON files. Use ":memory:" for ephemeral.
	DBPath string `toml:"db"`

	// LexiconPath points at a TOML file overriding the ambiguity word lists.
	// The file is hot-reloaded on change.
	LexiconPath string `toml:"lexicon"`
}

// LoadConfig reads a TOML config file into cfg, leaving fields the file does
// not mention untouched so flag defaults survive.
func LoadConfig(path string, cfg *Config) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	return nil
}
