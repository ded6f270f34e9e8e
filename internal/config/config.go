// Package config loads waybill settings from a YAML file, WAYBILL_* environment
// variables and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store types.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// EnvPrefix prefixes every environment override, e.g. WAYBILL_LLM_MODEL.
const EnvPrefix = "WAYBILL"

// Config stores all configuration of the application.
type Config struct {
	LLM      LLMConfig      `mapstructure:"llm"`
	Agent    AgentConfig    `mapstructure:"agent"`
	Shipment ShipmentConfig `mapstructure:"shipment"`
	Research ResearchConfig `mapstructure:"research"`
	Store    StoreConfig    `mapstructure:"store"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Trace    TraceConfig    `mapstructure:"trace"`
}

// LLMConfig points at the OpenAI-compatible completion endpoint.
type LLMConfig struct {
	APIKey      string        `mapstructure:"api_key"` // Falls back to GEMINI_API_KEY / GOOGLE_API_KEY
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// AgentConfig bounds the tool loop and its memory.
type AgentConfig struct {
	MaxIterations   int  `mapstructure:"max_iterations"`
	HistoryWindow   int  `mapstructure:"history_window"`
	ToolOutputLimit int  `mapstructure:"tool_output_limit"` // Runes; 0 disables truncation
	Verbose         bool `mapstructure:"verbose"`
}

// ShipmentConfig configures the mock shipment backend.
type ShipmentConfig struct {
	SeedFile       string `mapstructure:"seed_file"` // Empty uses the built-in tables
	ValidatePostal bool   `mapstructure:"validate_postal"`
}

// ResearchConfig configures the research tools.
type ResearchConfig struct {
	OutputDir      string `mapstructure:"output_dir"`
	SearchURL      string `mapstructure:"search_url"`
	WikipediaURL   string `mapstructure:"wikipedia_url"`
	MaxResults     int    `mapstructure:"max_results"`
	WikipediaChars int    `mapstructure:"wikipedia_chars"`
}

// StoreConfig selects where conversation memory lives.
type StoreConfig struct {
	Type          string        `mapstructure:"type"`
	Path          string        `mapstructure:"path"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl"`
	MaxTurns      int           `mapstructure:"max_turns"`

	EncryptionKey string   `mapstructure:"encryption_key"` // Base64 AES-256 key; empty stores turns in the clear
	FallbackKeys  []string `mapstructure:"fallback_keys"`  // Older base64 keys still accepted on load
	MaskArgs      []string `mapstructure:"mask_args"`      // Regexps of tool argument names masked before storage
	MaskValues    []string `mapstructure:"mask_values"`    // Regexps masked in stored turn text
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig configures the application logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// TraceConfig enables the NDJSON span log.
type TraceConfig struct {
	File string `mapstructure:"file"`
}

// New returns a viper instance with every default set and env overrides enabled.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "https://generativelanguage.googleapis.com/v1beta/openai")
	v.SetDefault("llm.model", "gemini-2.0-flash")
	v.SetDefault("llm.temperature", 0.0)
	v.SetDefault("llm.timeout", "60s")

	v.SetDefault("agent.max_iterations", 5)
	v.SetDefault("agent.history_window", 20)
	v.SetDefault("agent.tool_output_limit", 4000)
	v.SetDefault("agent.verbose", false)

	v.SetDefault("shipment.seed_file", "")
	v.SetDefault("shipment.validate_postal", true)

	v.SetDefault("research.output_dir", ".")
	v.SetDefault("research.search_url", "https://html.duckduckgo.com/html/")
	v.SetDefault("research.wikipedia_url", "https://en.wikipedia.org")
	v.SetDefault("research.max_results", 5)
	v.SetDefault("research.wikipedia_chars", 100)

	v.SetDefault("store.type", StoreMemory)
	v.SetDefault("store.path", filepath.Join(".waybill", "history"))
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_password", "")
	v.SetDefault("store.redis_db", 0)
	v.SetDefault("store.ttl", "24h")
	v.SetDefault("store.max_turns", 200)
	v.SetDefault("store.encryption_key", "")
	v.SetDefault("store.fallback_keys", []string{})
	v.SetDefault("store.mask_args", []string{})
	v.SetDefault("store.mask_values", []string{})

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("trace.file", "")
}

// Load reads configPath (or waybill.yaml from the usual places) into a Config.
// A missing default config file is not an error; a missing explicit one is.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("waybill")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "waybill"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that would otherwise fail late.
func (c *Config) Validate() error {
	if c.Agent.MaxIterations < 1 {
		return fmt.Errorf("agent.max_iterations must be at least 1, got %d", c.Agent.MaxIterations)
	}
	switch c.Store.Type {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("unknown store.type %q (want memory, file or redis)", c.Store.Type)
	}
	if c.LLM.Timeout <= 0 {
		return errors.New("llm.timeout must be positive")
	}
	return nil
}
