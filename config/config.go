// Package config loads cartai settings from an optional YAML file and the
// environment.
//
// Precedence, highest first: CARTAI_* environment variables (dots become
// underscores, e.g. CARTAI_ENGINE_MAX_STEPS), the config file, built-in
// defaults. Provider API keys also fall back to the conventional
// OPENAI_API_KEY, ANTHROPIC_API_KEY and TAVILY_API_KEY variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Model  ModelConfig  `mapstructure:"model"`
	Engine EngineConfig `mapstructure:"engine"`
	Agents AgentsConfig `mapstructure:"agents"`
	Cart   CartConfig   `mapstructure:"cart"`
	Search SearchConfig `mapstructure:"search"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
}

// ModelConfig selects the language model provider.
type ModelConfig struct {
	Provider    string  `mapstructure:"provider"` // openai | anthropic
	Name        string  `mapstructure:"name"`     // empty uses the provider default
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
}

// EngineConfig bounds request execution.
type EngineConfig struct {
	MaxSteps              int `mapstructure:"max_steps"`
	MaxConcurrentRequests int `mapstructure:"max_concurrent_requests"`
}

// AgentsConfig applies to every worker.
type AgentsConfig struct {
	MaxIterations   int `mapstructure:"max_iterations"`
	MaxItemsPerTurn int `mapstructure:"max_items_per_turn"` // 0 = unlimited
}

// CartConfig selects the cart backend.
type CartConfig struct {
	Backend string `mapstructure:"backend"` // file | sqlite | memory
	Path    string `mapstructure:"path"`
}

// SearchConfig configures the web search collaborator.
type SearchConfig struct {
	APIKey     string `mapstructure:"api_key"`
	MaxResults int    `mapstructure:"max_results"`
	Endpoint   string `mapstructure:"endpoint"`
}

// ServerConfig configures the HTTP entry point.
type ServerConfig struct {
	Addr      string  `mapstructure:"addr"`
	RateLimit float64 `mapstructure:"rate_limit"` // requests per second per client, 0 disables
	Burst     int     `mapstructure:"burst"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json | text
}

// Providers and backends understood by Validate.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CARTAI"

// Default returns the built-in configuration.
func Default() *Config {
	cfg, err := decode(newViper())
	if err != nil {
		// Defaults always decode.
		panic(err)
	}
	return cfg
}

// Load reads configuration. With an empty path it looks for cartai.yaml in
// the working directory and config.yaml in the user config directory, and
// silently uses defaults when neither exists. An explicit path must exist.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config from %s: %w", path, err)
		}
	} else {
		v.SetConfigName("cartai")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(UserConfigDir())
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UserConfigDir returns $XDG_CONFIG_HOME/cartai or ~/.config/cartai.
func UserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "cartai")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "cartai")
	}
	return filepath.Join(home, ".config", "cartai")
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	var errs []error

	switch c.Model.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		errs = append(errs, fmt.Errorf("model.provider must be %q or %q, got %q", ProviderOpenAI, ProviderAnthropic, c.Model.Provider))
	}

	switch c.Cart.Backend {
	case BackendFile, BackendSQLite:
		if c.Cart.Path == "" {
			errs = append(errs, fmt.Errorf("cart.path is required for the %s backend", c.Cart.Backend))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("cart.backend must be file, sqlite or memory, got %q", c.Cart.Backend))
	}

	if c.Engine.MaxSteps <= 0 {
		errs = append(errs, fmt.Errorf("engine.max_steps must be positive, got %d", c.Engine.MaxSteps))
	}
	if c.Agents.MaxIterations <= 0 {
		errs = append(errs, fmt.Errorf("agents.max_iterations must be positive, got %d", c.Agents.MaxIterations))
	} else if c.Agents.MaxIterations >= c.Engine.MaxSteps {
		errs = append(errs, fmt.Errorf("agents.max_iterations (%d) must be smaller than engine.max_steps (%d)", c.Agents.MaxIterations, c.Engine.MaxSteps))
	}
	if c.Engine.MaxConcurrentRequests <= 0 {
		errs = append(errs, fmt.Errorf("engine.max_concurrent_requests must be positive, got %d", c.Engine.MaxConcurrentRequests))
	}
	if c.Agents.MaxItemsPerTurn < 0 {
		errs = append(errs, fmt.Errorf("agents.max_items_per_turn must not be negative"))
	}
	if c.Server.RateLimit < 0 || c.Server.Burst < 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit and server.burst must not be negative"))
	}

	return errors.Join(errs...)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("model.provider", ProviderOpenAI)
	v.SetDefault("model.name", "")
	v.SetDefault("model.temperature", 0.0)
	v.SetDefault("model.max_tokens", 4096)
	v.SetDefault("model.api_key", "")
	v.SetDefault("model.base_url", "")

	v.SetDefault("engine.max_steps", 20)
	v.SetDefault("engine.max_concurrent_requests", 10)

	v.SetDefault("agents.max_iterations", 6)
	v.SetDefault("agents.max_items_per_turn", 0)

	v.SetDefault("cart.backend", BackendFile)
	v.SetDefault("cart.path", filepath.Join("data", "cart.json"))

	v.SetDefault("search.api_key", "")
	v.SetDefault("search.max_results", 5)
	v.SetDefault("search.endpoint", "https://api.tavily.com/search")

	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.rate_limit", 2.0)
	v.SetDefault("server.burst", 5)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.Model.APIKey == "" {
		switch cfg.Model.Provider {
		case ProviderOpenAI:
			cfg.Model.APIKey = os.Getenv("OPENAI_API_KEY")
		case ProviderAnthropic:
			cfg.Model.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
	if cfg.Search.APIKey == "" {
		cfg.Search.APIKey = os.Getenv("TAVILY_API_KEY")
	}

	cfg.Model.APIKey = os.ExpandEnv(cfg.Model.APIKey)
	cfg.Search.APIKey = os.ExpandEnv(cfg.Search.APIKey)

	return cfg, nil
}
