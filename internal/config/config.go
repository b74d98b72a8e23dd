package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	ConfigDirName  = ".llmcmd"
	ConfigFileName = "config.yaml"
	KeysFileName   = "keys.yaml"
	LogsFileName   = "logs.db"

	// UserPathEnv overrides the directory holding config, keys and logs.
	UserPathEnv = "LLMCMD_USER_PATH"

	DefaultModel   = "gpt-4o-mini"
	DefaultShell   = "/bin/sh"
	DefaultDocTool = "tldr"
)

// ProviderType identifies the backend a model is served by
type ProviderType string

const (
	ProviderOpenAI    ProviderType = "openai"
	ProviderOllama    ProviderType = "ollama"
	ProviderAnthropic ProviderType = "anthropic"
	ProviderClaudeCLI ProviderType = "claude-cli"
)

// ModelDefinition declares a model the user can select with --model
type ModelDefinition struct {
	ID       string       `yaml:"id"`
	Aliases  []string     `yaml:"aliases,omitempty"`
	Provider ProviderType `yaml:"provider"`
	// Name is the model name sent to the backend; defaults to ID.
	Name    string `yaml:"name,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
	// KeyAlias is the key store entry holding the credential. Empty means
	// the model needs no key.
	KeyAlias  string `yaml:"key_alias,omitempty"`
	KeyEnvVar string `yaml:"key_env_var,omitempty"`
	MaxTokens int    `yaml:"max_tokens,omitempty"`
}

// LoggingConfig controls the application logger
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config represents the application configuration
type Config struct {
	DefaultModel string            `yaml:"default_model"`
	Shell        string            `yaml:"shell"`
	DocTool      string            `yaml:"doc_tool"`
	LogRuns      *bool             `yaml:"log_runs,omitempty"`
	Logging      LoggingConfig     `yaml:"logging"`
	Models       []ModelDefinition `yaml:"models,omitempty"`
}

// Default returns the configuration used when no config file exists
func Default() *Config {
	cfg := &Config{}
	cfg.hydrate()
	return cfg
}

// ShouldLogRuns reports whether runs are recorded in the log database
func (c *Config) ShouldLogRuns() bool {
	return c.LogRuns == nil || *c.LogRuns
}

func (c *Config) hydrate() {
	if c.DefaultModel == "" {
		c.DefaultModel = DefaultModel
	}
	if c.Shell == "" {
		c.Shell = DefaultShell
	}
	if c.DocTool == "" {
		c.DocTool = DefaultDocTool
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	if custom := os.Getenv(UserPathEnv); custom != "" {
		return custom, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ConfigDirName), nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	return pathInConfigDir(ConfigFileName)
}

// GetLogsPath returns the path to the run log database
func GetLogsPath() (string, error) {
	return pathInConfigDir(LogsFileName)
}

func pathInConfigDir(name string) (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, name), nil
}

// Load reads the configuration from disk. A missing file yields the defaults.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.hydrate()

	return &cfg, nil
}

// Save writes the configuration to disk
func Save(cfg *Config) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Exists reports whether config.yaml has been written. Load falls back to
// the defaults when it has not.
func Exists() (bool, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return false, err
	}

	info, err := os.Stat(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("failed to stat config file: %w", err)
	case info.IsDir():
		return false, fmt.Errorf("config path %s is a directory", configPath)
	}
	return true, nil
}
