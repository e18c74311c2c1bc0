package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port     int    `yaml:"port"`
	Language string `yaml:"language"` // BCP-47-ish code used for prompts and TTS
	Timezone string `yaml:"timezone"`

	AI       AIConfig       `yaml:"ai,omitempty"`
	Google   GoogleConfig   `yaml:"google,omitempty"`
	Maps     MapsConfig     `yaml:"maps,omitempty"`
	Search   SearchConfig   `yaml:"search,omitempty"`
	Memory   MemoryConfig   `yaml:"memory,omitempty"`
	Voice    VoiceConfig    `yaml:"voice,omitempty"`
	Contacts ContactsConfig `yaml:"contacts,omitempty"`
	Sandbox  SandboxConfig  `yaml:"sandbox,omitempty"`
	Watcher  WatcherConfig  `yaml:"watcher,omitempty"`

	// Apps maps an application alias to an executable path,
	// e.g. flstudio: "C:/Program Files/FL Studio/FL64.exe".
	Apps map[string]string `yaml:"apps,omitempty"`
}

type AIConfig struct {
	Provider string `yaml:"provider,omitempty"` // "gemini" (default) or "openai"
	APIKey   string `yaml:"api_key,omitempty"`
	Model    string `yaml:"model,omitempty"`

	// OpenAIKey backs the alternate provider and Whisper transcription.
	OpenAIKey string `yaml:"openai_key,omitempty"`
}

type GoogleConfig struct {
	ClientSecretsFile string `yaml:"client_secrets_file,omitempty"`
	TokenFile         string `yaml:"token_file,omitempty"`
}

type MapsConfig struct {
	APIKey        string `yaml:"api_key,omitempty"`
	DefaultOrigin string `yaml:"default_origin,omitempty"`
}

type SearchConfig struct {
	APIKey     string `yaml:"api_key,omitempty"`
	BaseURL    string `yaml:"base_url,omitempty"`
	MaxResults int    `yaml:"max_results,omitempty"`
}

type MemoryConfig struct {
	// MaxPairs bounds conversation history to this many user/model pairs.
	MaxPairs int `yaml:"max_pairs,omitempty"`
}

type VoiceConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Language string `yaml:"language,omitempty"`
}

type ContactsConfig struct {
	Path string `yaml:"path,omitempty"`
}

type SandboxConfig struct {
	Interpreter    string `yaml:"interpreter,omitempty"` // e.g. "python3"
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
}

type WatcherConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Schedule         string   `yaml:"schedule,omitempty"` // cron expression
	Monitored        []string `yaml:"monitored,omitempty"`
	ExcludedPrefixes []string `yaml:"excluded_prefixes,omitempty"`
	ReplyAll         bool     `yaml:"reply_all,omitempty"`
}

// DefaultConfig returns a config with all defaults applied
func DefaultConfig() *Config {
	return &Config{
		Port:     5000,
		Language: "fr",
		Timezone: "Europe/Paris",
		AI: AIConfig{
			Provider: "gemini",
			Model:    "gemini-2.0-flash",
		},
		Google: GoogleConfig{
			ClientSecretsFile: "client_secret.json",
			TokenFile:         "token.json",
		},
		Maps: MapsConfig{
			DefaultOrigin: "Thonon-les-Bains",
		},
		Search: SearchConfig{
			BaseURL:    "https://serpapi.com/search.json",
			MaxResults: 6,
		},
		Memory: MemoryConfig{
			MaxPairs: 5,
		},
		Voice: VoiceConfig{
			Enabled:  true,
			Language: "fr",
		},
		Contacts: ContactsConfig{
			Path: "contacts.db",
		},
		Sandbox: SandboxConfig{
			Interpreter:    "python3",
			TimeoutSeconds: 15,
		},
		Watcher: WatcherConfig{
			Schedule:         "@every 1m",
			ExcludedPrefixes: []string{"noreply@", "no-reply@", "mailer-daemon@"},
		},
	}
}

// LoadFromPath loads configuration from a yaml file, layering it over
// defaults and then applying environment overrides for secrets.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", filepath.Base(path), err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && c.AI.APIKey == "" {
		c.AI.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && c.AI.OpenAIKey == "" {
		c.AI.OpenAIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL_NAME"); v != "" {
		c.AI.Model = v
	}
	if v := os.Getenv("GOOGLE_MAPS_API_KEY"); v != "" && c.Maps.APIKey == "" {
		c.Maps.APIKey = v
	}
	if v := os.Getenv("SERPAPI_API_KEY"); v != "" && c.Search.APIKey == "" {
		c.Search.APIKey = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_SECRETS_FILE"); v != "" {
		c.Google.ClientSecretsFile = v
	}
}
