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

// Config holds the symcheck API configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Storage StorageConfig `yaml:"storage"`
	KB      KBConfig      `yaml:"kb"`
	Uploads UploadsConfig `yaml:"uploads"`
	Scoring ScoringConfig `yaml:"scoring"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
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

// StorageConfig holds session store settings.
type StorageConfig struct {
	Driver           string   `yaml:"driver"` // memory, redis (default: memory)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	KeyPrefix        string   `yaml:"key_prefix"`
	// SessionTTLSec expires stored assessments. 0 keeps them for the
	// lifetime of the store.
	SessionTTLSec int `yaml:"session_ttl_sec"`
}

// KBConfig holds knowledge base settings.
type KBConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"` // hot-reload on file change
}

// UploadsConfig holds attachment upload settings.
type UploadsConfig struct {
	Dir       string `yaml:"dir"`
	MaxSizeMB int    `yaml:"max_size_mb"`
}

// ScoringConfig holds rule engine weights and urgency thresholds. The float
// knobs are pointers so an explicit 0 in the file is distinct from an
// omitted key; omitted keys take the engine defaults.
type ScoringConfig struct {
	BaseWeight       *float64 `yaml:"base_weight"`
	RequiredWeight   *float64 `yaml:"required_weight"`
	SupportingWeight *float64 `yaml:"supporting_weight"`
	RedFlagWeight    *float64 `yaml:"red_flag_weight"`
	UrgentThreshold  *float64 `yaml:"urgent_threshold"`
	SeeGPThreshold   *float64 `yaml:"see_gp_threshold"`
	TopN             int      `yaml:"top_n"`
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
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Storage.ReadinessTimeout <= 0 {
		c.Storage.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "symcheck:"
	}
	if c.Uploads.Dir == "" {
		c.Uploads.Dir = "uploads"
	}
	if c.Uploads.MaxSizeMB <= 0 {
		c.Uploads.MaxSizeMB = 5
	}
	c.Scoring.BaseWeight = fallback(c.Scoring.BaseWeight, 0.5)
	c.Scoring.RequiredWeight = fallback(c.Scoring.RequiredWeight, 1.5)
	c.Scoring.SupportingWeight = fallback(c.Scoring.SupportingWeight, 0.8)
	c.Scoring.RedFlagWeight = fallback(c.Scoring.RedFlagWeight, 2.5)
	c.Scoring.UrgentThreshold = fallback(c.Scoring.UrgentThreshold, 0.35)
	c.Scoring.SeeGPThreshold = fallback(c.Scoring.SeeGPThreshold, 0.25)
	if c.Scoring.TopN <= 0 {
		c.Scoring.TopN = 3
	}
}

// fallback keeps a configured value, zero included, and fills an omitted one.
func fallback(p *float64, def float64) *float64 {
	if p == nil {
		return &def
	}
	return p
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Storage.Driver {
	case "memory", "redis":
		// ok
	default:
		return fmt.Errorf("storage.driver must be \"memory\" or \"redis\", got %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "redis" && len(c.Storage.Addrs) == 0 {
		return fmt.Errorf("storage.addrs is required for the redis driver")
	}
	if c.KB.Path == "" {
		return fmt.Errorf("kb.path is required")
	}
	if deref(c.Scoring.BaseWeight) < 0 || deref(c.Scoring.RequiredWeight) < 0 ||
		deref(c.Scoring.SupportingWeight) < 0 || deref(c.Scoring.RedFlagWeight) < 0 {
		return fmt.Errorf("scoring weights must not be negative")
	}
	if deref(c.Scoring.UrgentThreshold) < 0 || deref(c.Scoring.SeeGPThreshold) < 0 {
		return fmt.Errorf("scoring thresholds must not be negative")
	}
	if deref(c.Scoring.UrgentThreshold) > 1 || deref(c.Scoring.SeeGPThreshold) > 1 {
		return fmt.Errorf("scoring thresholds must not exceed 1 (scores are normalized)")
	}
	if deref(c.Scoring.SeeGPThreshold) > deref(c.Scoring.UrgentThreshold) {
		return fmt.Errorf(
			"scoring.see_gp_threshold (%v) must not exceed scoring.urgent_threshold (%v)",
			deref(c.Scoring.SeeGPThreshold), deref(c.Scoring.UrgentThreshold),
		)
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
