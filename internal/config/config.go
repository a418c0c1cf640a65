// Package config handles configuration loading for mend. It supports XDG
// config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for mend.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Commands  CommandsConfig  `mapstructure:"commands"`
	History   HistoryConfig   `mapstructure:"history"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
	// UseBedrock routes requests through AWS Bedrock.
	UseBedrock bool   `mapstructure:"use_bedrock"`
	AWSRegion  string `mapstructure:"aws_region"`
	AWSProfile string `mapstructure:"aws_profile"`
}

// PipelineConfig holds pipeline loop settings.
type PipelineConfig struct {
	// MaxIterations is the retry budget for a run.
	MaxIterations int `mapstructure:"max_iterations"`
	// TestTimeout bounds a single test-suite execution.
	TestTimeout time.Duration `mapstructure:"test_timeout"`
}

// CommandsConfig holds the external commands the stages run.
type CommandsConfig struct {
	// Lint produces pylint-style JSON findings; the file is appended.
	Lint string `mapstructure:"lint"`
	// Test runs the target's test suite.
	Test string `mapstructure:"test"`
}

// HistoryConfig holds run-history retention settings.
type HistoryConfig struct {
	// Keep is how long run records are retained.
	Keep time.Duration `mapstructure:"keep"`
}

// Load loads configuration from XDG paths, project overrides, and
// environment variables. Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY, MEND_MAX_ITERATIONS)
// 2. Project config (.mend.yaml in current directory or a parent)
// 3. User config (~/.config/mend/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("pipeline.max_iterations", "MEND_MAX_ITERATIONS")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific file.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// Validate checks the loaded configuration for values the pipeline cannot
// run with.
func (c *Config) Validate() error {
	if c.Pipeline.MaxIterations <= 0 {
		return fmt.Errorf("pipeline.max_iterations must be positive, got %d", c.Pipeline.MaxIterations)
	}
	if c.Commands.Lint == "" {
		return fmt.Errorf("commands.lint must not be empty")
	}
	if c.Commands.Test == "" {
		return fmt.Errorf("commands.test must not be empty")
	}
	return nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it
// exists, or "".
func GetProjectConfigPath() string {
	return findProjectConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")
	v.SetDefault("anthropic.use_bedrock", false)

	v.SetDefault("pipeline.max_iterations", 3)
	v.SetDefault("pipeline.test_timeout", "2m")

	v.SetDefault("commands.lint", "pylint --output-format=json --score=n")
	v.SetDefault("commands.test", "pytest -v")

	v.SetDefault("history.keep", "720h")
}

// getUserConfigDir returns the XDG config directory for mend.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "mend")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "mend")
	}
	return filepath.Join(home, ".config", "mend")
}

// findProjectConfig searches for .mend.yaml in the current directory and
// its parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		configPath := filepath.Join(cwd, ".mend.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}
	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			MaxIterations: 3,
			TestTimeout:   2 * time.Minute,
		},
		Commands: CommandsConfig{
			Lint: "pylint --output-format=json --score=n",
			Test: "pytest -v",
		},
		History: HistoryConfig{
			Keep: 720 * time.Hour,
		},
	}
}
