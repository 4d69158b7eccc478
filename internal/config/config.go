package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/wayfarer/internal/domain"
)

// Config holds the wayfarer configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Cache     CacheConfig     `yaml:"cache"`
	Index     IndexConfig     `yaml:"index"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Risk      RiskConfig      `yaml:"risk"`
	Sources   SourcesConfig   `yaml:"sources"`
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

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider            string `yaml:"provider"` // openai (any OpenAI-compatible endpoint), hash
	BaseURL             string `yaml:"base_url"`
	APIKey              string `yaml:"api_key"`
	Model               string `yaml:"model"`
	Dimensions          int    `yaml:"dimensions"`
	DocumentInstruction string `yaml:"document_instruction"`
	QueryInstruction    string `yaml:"query_instruction"`
	TimeoutSec          int    `yaml:"timeout_sec"`
	BatchSize           int    `yaml:"batch_size"`
}

// CacheConfig holds embedding cache settings.
type CacheConfig struct {
	Driver           string   `yaml:"driver"` // none, memory, valkey, redis (default: memory)
	Size             int      `yaml:"size"`
	TTLSec           int      `yaml:"ttl_sec"` // 0 = no expiry
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IndexConfig holds similarity index persistence settings.
type IndexConfig struct {
	Path     string `yaml:"path"`      // SQLite snapshot file
	SeedFile string `yaml:"seed_file"` // YAML knowledge base indexed when no snapshot exists
}

// RetrievalConfig holds ranking settings.
type RetrievalConfig struct {
	DefaultTopK   int     `yaml:"default_top_k"`
	MaxTopK       int     `yaml:"max_top_k"`
	InterestBoost float64 `yaml:"interest_boost"`
}

// RiskConfig overrides the scorer tables. Empty fields keep built-in values.
type RiskConfig struct {
	BudgetDestinations []string           `yaml:"budget_destinations"`
	LuxuryDestinations []string           `yaml:"luxury_destinations"`
	BaseCosts          map[string]float64 `yaml:"base_costs"` // budget, mid-range, luxury
	InterestCosts      map[string]float64 `yaml:"interest_costs"`
	CrowdingWeights    CrowdingConfig     `yaml:"crowding_weights"`
}

// CrowdingConfig holds crowding density weights.
type CrowdingConfig struct {
	Holiday float64 `yaml:"holiday"`
	High    float64 `yaml:"high"`
	Medium  float64 `yaml:"medium"`
	Low     float64 `yaml:"low"`
}

// SourcesConfig holds external data source settings.
type SourcesConfig struct {
	Mode               string          `yaml:"mode"` // live, mock (default: mock)
	OpenWeatherAPIKey  string          `yaml:"openweather_api_key"`
	OpenWeatherBaseURL string          `yaml:"openweather_base_url"`
	ExchangeRateAPIKey string          `yaml:"exchangerate_api_key"`
	ExchangeRateURL    string          `yaml:"exchangerate_base_url"`
	BaseCurrency       string          `yaml:"base_currency"`
	Holidays           []HolidayConfig `yaml:"holidays"`
	TimeoutSec         int             `yaml:"timeout_sec"`
}

// HolidayConfig is a recurring public holiday.
type HolidayConfig struct {
	Name string `yaml:"name"`
	Date string `yaml:"date"` // MM-DD
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse expands environment variables, decodes YAML, applies defaults and validates.
func Parse(data []byte) (Config, error) {
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

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
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
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}

	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "hash"
	}
	vec := domain.DefaultVectorConfig()
	if c.Embedding.Model == "" {
		c.Embedding.Model = vec.Model
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = vec.Dimensions
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 30
	}
	if c.Embedding.BatchSize <= 0 {
		c.Embedding.BatchSize = 256
	}

	if c.Cache.Driver == "" {
		c.Cache.Driver = "memory"
	}
	if c.Cache.Size <= 0 {
		c.Cache.Size = 10000
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}

	if c.Index.Path == "" {
		c.Index.Path = "data/knowledge.db"
	}

	if c.Retrieval.DefaultTopK <= 0 {
		c.Retrieval.DefaultTopK = 3
	}
	if c.Retrieval.MaxTopK <= 0 {
		c.Retrieval.MaxTopK = 50
	}
	if c.Retrieval.InterestBoost == 0 {
		c.Retrieval.InterestBoost = 0.2
	}

	if c.Sources.Mode == "" {
		c.Sources.Mode = "mock"
	}
	if c.Sources.BaseCurrency == "" {
		c.Sources.BaseCurrency = "USD"
	}
	if c.Sources.TimeoutSec <= 0 {
		c.Sources.TimeoutSec = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Embedding.Provider {
	case "hash":
	case "openai":
		if c.Embedding.BaseURL == "" && c.Embedding.APIKey == "" {
			return errors.New("embedding.api_key or embedding.base_url is required for provider \"openai\"")
		}
	default:
		return fmt.Errorf("embedding.provider must be \"openai\" or \"hash\", got %q", c.Embedding.Provider)
	}

	switch c.Cache.Driver {
	case "none", "memory":
	case "valkey", "redis":
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for driver %q", c.Cache.Driver)
		}
	default:
		return fmt.Errorf("cache.driver must be one of none, memory, valkey, redis, got %q", c.Cache.Driver)
	}
	if c.Cache.TTLSec < 0 {
		return fmt.Errorf("cache.ttl_sec must not be negative, got %d", c.Cache.TTLSec)
	}

	if c.Retrieval.DefaultTopK > c.Retrieval.MaxTopK {
		return fmt.Errorf("retrieval.default_top_k (%d) exceeds retrieval.max_top_k (%d)",
			c.Retrieval.DefaultTopK, c.Retrieval.MaxTopK)
	}
	if c.Retrieval.InterestBoost < 0 {
		return fmt.Errorf("retrieval.interest_boost must not be negative, got %v", c.Retrieval.InterestBoost)
	}

	for tier := range c.Risk.BaseCosts {
		switch tier {
		case "budget", "mid-range", "luxury":
		default:
			return fmt.Errorf("risk.base_costs: unknown tier %q", tier)
		}
	}

	switch c.Sources.Mode {
	case "mock":
	case "live":
		if c.Sources.OpenWeatherAPIKey == "" || c.Sources.ExchangeRateAPIKey == "" {
			return errors.New("sources.openweather_api_key and sources.exchangerate_api_key are required in live mode")
		}
	default:
		return fmt.Errorf("sources.mode must be \"live\" or \"mock\", got %q", c.Sources.Mode)
	}
	if len(c.Sources.BaseCurrency) != 3 {
		return fmt.Errorf("sources.base_currency must be a 3-letter code, got %q", c.Sources.BaseCurrency)
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
