package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the ragtools configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
	Search   SearchConfig   `yaml:"search"`
	Chunking ChunkingConfig `yaml:"chunking"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// SearchConfig holds web search provider settings.
type SearchConfig struct {
	Provider    string `yaml:"provider"` // tavily (default)
	APIKey      string `yaml:"api_key"`  // empty = search disabled
	BaseURL     string `yaml:"base_url"`
	MaxResults  int    `yaml:"max_results"`
	SearchDepth string `yaml:"search_depth"` // basic, advanced
	TimeoutSec  int    `yaml:"timeout_sec"`
}

// ChunkingConfig holds tabular chunking settings.
type ChunkingConfig struct {
	MaxSamples        int      `yaml:"max_samples"`
	MaxUniqueValues   int      `yaml:"max_unique_values"`
	MedicineKeywords  []string `yaml:"medicine_keywords"`
	ConditionKeywords []string `yaml:"condition_keywords"`
	NAValues          []string `yaml:"na_values"` // added on top of the built-in missing-value tokens
	Sheet             string   `yaml:"sheet"`     // workbook sheet; empty = first
	UploadLimitMB     int      `yaml:"upload_limit_mb"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Search.Provider == "" {
		c.Search.Provider = "tavily"
	}
	if c.Search.BaseURL == "" {
		c.Search.BaseURL = "https://api.tavily.com"
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = 5
	}
	if c.Search.SearchDepth == "" {
		c.Search.SearchDepth = "basic"
	}
	if c.Search.TimeoutSec <= 0 {
		c.Search.TimeoutSec = 30
	}
	if c.Chunking.MaxSamples <= 0 {
		c.Chunking.MaxSamples = 3
	}
	if c.Chunking.MaxUniqueValues <= 0 {
		c.Chunking.MaxUniqueValues = 20
	}
	if c.Chunking.UploadLimitMB <= 0 {
		c.Chunking.UploadLimitMB = 32
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Search.Provider != "tavily" {
		return fmt.Errorf("search.provider must be \"tavily\", got %q", c.Search.Provider)
	}
	switch c.Search.SearchDepth {
	case "basic", "advanced":
		// ok
	default:
		return fmt.Errorf("search.search_depth must be \"basic\" or \"advanced\", got %q", c.Search.SearchDepth)
	}
	if c.Search.MaxResults > 20 {
		return fmt.Errorf("search.max_results must be at most 20, got %d", c.Search.MaxResults)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
