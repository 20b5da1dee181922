// Package config provides centralized configuration management
// using Viper for configuration loading and validation
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Provider names accepted by ai.provider
const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderLlamaCpp  = "llamacpp"
	ProviderOffline   = "offline"
)

// Database drivers accepted by database.driver
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// EnvPrefix prefixes every environment override, e.g. MARCO_AI_PROVIDER
const EnvPrefix = "MARCO"

// Config holds all application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	AI         AIConfig         `mapstructure:"ai"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Knowledge  KnowledgeConfig  `mapstructure:"knowledge"`
	Defaults   DefaultsConfig   `mapstructure:"defaults"`
	Export     ExportConfig     `mapstructure:"export"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Server     ServerConfig     `mapstructure:"server"`
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name      string `mapstructure:"name"`
	Version   string `mapstructure:"version"`
	Debug     bool   `mapstructure:"debug"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// AIConfig contains recipe generation backend configuration
type AIConfig struct {
	Provider string `mapstructure:"provider"`

	OpenAIKey     string `mapstructure:"openai_key"`
	OpenAIModel   string `mapstructure:"openai_model"`
	OpenAIBaseURL string `mapstructure:"openai_base_url"`

	AnthropicKey     string `mapstructure:"anthropic_key"`
	AnthropicModel   string `mapstructure:"anthropic_model"`
	AnthropicBaseURL string `mapstructure:"anthropic_base_url"`

	OllamaModel   string `mapstructure:"ollama_model"`
	OllamaBaseURL string `mapstructure:"ollama_base_url"`

	// llama.cpp is reached through its OpenAI-compatible server
	LlamaCppServerURL string `mapstructure:"llamacpp_server_url"`
	LlamaCppModel     string `mapstructure:"llamacpp_model"`

	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
	EnableCache bool          `mapstructure:"enable_cache"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`

	// RequestsPerMinute throttles calls to the backend; 0 disables throttling
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	RequestBurst      int `mapstructure:"request_burst"`
}

// DatabaseConfig contains database configuration
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	// Path is the sqlite database file
	Path string `mapstructure:"path"`
	// DSN is the postgres connection string
	DSN         string `mapstructure:"dsn"`
	LogLevel    string `mapstructure:"log_level"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`

	// ReadReplicas are postgres DSNs that serve list and show queries
	ReadReplicas []string `mapstructure:"read_replicas"`
}

// RedisConfig contains Redis configuration. Without an address the
// in-memory cache is used.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
}

// KnowledgeConfig locates the knowledge base files
type KnowledgeConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// DefaultsConfig contains request defaults
type DefaultsConfig struct {
	Region string `mapstructure:"region"`
	Season string `mapstructure:"season"`
}

// ExportConfig contains document export configuration
type ExportConfig struct {
	// TemplatesDir overrides the embedded HTML template when set
	TemplatesDir string `mapstructure:"templates_dir"`
}

// MonitoringConfig contains monitoring configuration
type MonitoringConfig struct {
	EnableMetrics bool `mapstructure:"enable_metrics"`
	// MetricsFile receives a text exposition dump after every run
	MetricsFile   string `mapstructure:"metrics_file"`
	EnableTracing bool   `mapstructure:"enable_tracing"`
	ServiceName   string `mapstructure:"service_name"`
}

// ServerConfig contains the JSON API server configuration used by marco serve
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Address returns host:port for the listener
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load loads configuration from the .env file, the config file and
// environment variables, in increasing order of precedence
func Load(configPath string) (*Config, error) {
	return LoadWithEnvFile(configPath, ".env")
}

// LoadWithEnvFile is Load with an explicit .env location
func LoadWithEnvFile(configPath, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("marco")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, ".marco"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindLegacyEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// bindLegacyEnv lets the conventional provider variables work without the
// MARCO_ prefix
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("ai.provider", "MARCO_AI_PROVIDER", "LLM_PROVIDER")
	_ = v.BindEnv("ai.openai_key", "MARCO_AI_OPENAI_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("ai.anthropic_key", "MARCO_AI_ANTHROPIC_KEY", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("ai.ollama_base_url", "MARCO_AI_OLLAMA_BASE_URL", "OLLAMA_BASE_URL")
	_ = v.BindEnv("ai.ollama_model", "MARCO_AI_OLLAMA_MODEL", "OLLAMA_MODEL")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	// App defaults
	v.SetDefault("app.name", "marco")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.log_level", "warn")
	v.SetDefault("app.log_format", "console")

	// AI defaults
	v.SetDefault("ai.provider", ProviderOllama)
	v.SetDefault("ai.openai_model", "gpt-4o")
	v.SetDefault("ai.openai_base_url", "https://api.openai.com/v1")
	v.SetDefault("ai.anthropic_model", "claude-3-5-sonnet-20241022")
	v.SetDefault("ai.anthropic_base_url", "https://api.anthropic.com")
	v.SetDefault("ai.ollama_model", "qwen3:4b")
	v.SetDefault("ai.ollama_base_url", "http://localhost:11434")
	v.SetDefault("ai.llamacpp_server_url", "http://localhost:8080")
	v.SetDefault("ai.llamacpp_model", "local")
	v.SetDefault("ai.max_tokens", 2048)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.timeout", "120s")
	v.SetDefault("ai.enable_cache", false)
	v.SetDefault("ai.cache_ttl", "24h")
	v.SetDefault("ai.requests_per_minute", 0)
	v.SetDefault("ai.request_burst", 1)

	// Database defaults
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", filepath.Join(home, ".marco", "marco.db"))
	v.SetDefault("database.log_level", "silent")
	v.SetDefault("database.auto_migrate", true)

	// Redis defaults
	v.SetDefault("redis.database", 0)

	// Knowledge defaults
	v.SetDefault("knowledge.data_dir", "data")

	// Request defaults
	v.SetDefault("defaults.region", "europe")
	v.SetDefault("defaults.season", "auto")

	// Monitoring defaults
	v.SetDefault("monitoring.enable_metrics", true)
	v.SetDefault("monitoring.enable_tracing", false)
	v.SetDefault("monitoring.service_name", "marco")

	// Server defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "5m")
	v.SetDefault("server.request_timeout", "4m")
	v.SetDefault("server.shutdown_timeout", "15s")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}

	switch c.AI.Provider {
	case ProviderOllama, ProviderOpenAI, ProviderAnthropic, ProviderLlamaCpp, ProviderOffline:
	default:
		return fmt.Errorf("ai.provider must be one of ollama, openai, anthropic, llamacpp, offline (got %q)", c.AI.Provider)
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres (got %q)", c.Database.Driver)
	}
	if len(c.Database.ReadReplicas) > 0 && c.Database.Driver != DriverPostgres {
		return fmt.Errorf("database.read_replicas requires the postgres driver")
	}

	switch c.Defaults.Season {
	case "auto", "winter", "spring", "summer", "fall":
	default:
		return fmt.Errorf("defaults.season must be auto, winter, spring, summer or fall")
	}

	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return fmt.Errorf("ai.temperature must be between 0 and 2")
	}

	if c.AI.RequestsPerMinute < 0 {
		return fmt.Errorf("ai.requests_per_minute must not be negative")
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535")
	}

	return nil
}

// APIKey returns the key of the configured provider. Local providers need none.
func (c *Config) APIKey() (string, error) {
	switch c.AI.Provider {
	case ProviderOpenAI:
		if c.AI.OpenAIKey == "" {
			return "", fmt.Errorf("OPENAI_API_KEY not set in environment")
		}
		return c.AI.OpenAIKey, nil
	case ProviderAnthropic:
		if c.AI.AnthropicKey == "" {
			return "", fmt.Errorf("ANTHROPIC_API_KEY not set in environment")
		}
		return c.AI.AnthropicKey, nil
	case ProviderOllama, ProviderLlamaCpp, ProviderOffline:
		return "not-needed", nil
	default:
		return "", fmt.Errorf("unknown LLM provider: %s", c.AI.Provider)
	}
}

// ModelName returns the model of the configured provider
func (c *Config) ModelName() string {
	switch c.AI.Provider {
	case ProviderOpenAI:
		return c.AI.OpenAIModel
	case ProviderAnthropic:
		return c.AI.AnthropicModel
	case ProviderOllama:
		return c.AI.OllamaModel
	case ProviderLlamaCpp:
		return c.AI.LlamaCppModel
	default:
		return c.AI.Provider
	}
}

// EnsureDirectories creates the database and data directories
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Knowledge.DataDir}
	if c.Database.Driver == DriverSQLite {
		dirs = append(dirs, filepath.Dir(c.Database.Path))
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}
