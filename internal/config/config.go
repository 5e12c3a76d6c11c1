package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/queryrules/internal/domain/scoring"
)

// Config holds the queryrules service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Rules    RulesConfig    `yaml:"rules"`
	Search   SearchConfig   `yaml:"search"`
	Scripts  ScriptsConfig  `yaml:"scripts"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
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
	MaxBodyBytes    int `yaml:"max_body_bytes"`
}

// DatabaseConfig holds rule storage connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// RulesConfig bounds how rules are loaded for a search.
type RulesConfig struct {
	Limit       int `yaml:"limit"`         // max rules per pass (default: 500)
	CacheTTLSec int `yaml:"cache_ttl_sec"` // in-process rule cache ttl (default: 30)
}

// SearchConfig controls augmentation of outgoing search queries.
// Pointers distinguish "unset" from an explicit false.
type SearchConfig struct {
	Enabled          *bool  `yaml:"enabled"`           // default: true
	DynamicScripting *bool  `yaml:"dynamic_scripting"` // default: true
	IDField          string `yaml:"id_field"`          // default: post_id
}

// IsEnabled reports whether augmentation is on.
func (s SearchConfig) IsEnabled() bool { return s.Enabled == nil || *s.Enabled }

// ScriptingEnabled reports whether the search backend accepts inline scripts.
func (s SearchConfig) ScriptingEnabled() bool { return s.DynamicScripting == nil || *s.DynamicScripting }

// ScriptsConfig customizes the script_score templates.
type ScriptsConfig struct {
	Lang             string   `yaml:"lang"`              // default: painless
	TaxonomyPrefixes []string `yaml:"taxonomy_prefixes"` // default: [terms.]

	// Templates overrides defaults: category -> operator -> template.
	Templates map[string]map[string]string `yaml:"templates"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
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
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = 1 << 20
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "valkey"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Rules.Limit <= 0 {
		c.Rules.Limit = 500
	}
	if c.Rules.CacheTTLSec <= 0 {
		c.Rules.CacheTTLSec = 30
	}
	if c.Search.IDField == "" {
		c.Search.IDField = "post_id"
	}
	if c.Scripts.Lang == "" {
		c.Scripts.Lang = scoring.DefaultLang
	}
	if len(c.Scripts.TaxonomyPrefixes) == 0 {
		c.Scripts.TaxonomyPrefixes = append([]string(nil), scoring.DefaultTaxonomyPrefixes...)
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "queryrules:"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	switch c.Database.Driver {
	case "", "valkey", "redis":
		// ok
	default:
		return fmt.Errorf("database.driver must be \"valkey\" or \"redis\", got %q", c.Database.Driver)
	}
	if c.Rules.Limit > 10000 {
		return fmt.Errorf("rules.limit must be at most 10000, got %d", c.Rules.Limit)
	}
	if _, err := c.Scripts.Registry(); err != nil {
		return err
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

// Registry returns the default template registry with the configured overrides applied.
func (s ScriptsConfig) Registry() (*scoring.Registry, error) {
	reg := scoring.DefaultRegistry()
	for cat, ops := range s.Templates {
		for op, tmpl := range ops {
			if err := reg.Register(scoring.Category(cat), scoring.Operator(op), tmpl); err != nil {
				return nil, fmt.Errorf("scripts.templates.%s.%s: %w", cat, op, err)
			}
		}
	}
	return reg, nil
}
