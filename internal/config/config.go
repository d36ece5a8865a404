package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/usercue/thematic-cli/internal/cost"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Pricing   cost.Rates      `yaml:"pricing" mapstructure:"pricing"`
	Study     StudyConfig     `yaml:"study" mapstructure:"study"`
	Queue     QueueConfig     `yaml:"queue" mapstructure:"queue"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the project persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // postgres | sqlite | memory
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// AnthropicConfig holds Anthropic API settings and the analysis run
// parameters seeded into each new project's working context.
type AnthropicConfig struct {
	Key                string  `yaml:"key" mapstructure:"key"`
	Model              string  `yaml:"model" mapstructure:"model"`
	Temperature        float64 `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens          int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	SummaryTemperature float64 `yaml:"summary_temperature" mapstructure:"summary_temperature"`
	SummaryMaxTokens   int64   `yaml:"summary_max_tokens" mapstructure:"summary_max_tokens"`
	RequestsPerSecond  float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// StudyConfig points at the study definition to analyze.
type StudyConfig struct {
	Path     string `yaml:"path" mapstructure:"path"` // empty = built-in default study
	DataPath string `yaml:"data_path" mapstructure:"data_path"`
}

// QueueConfig configures the in-process task dispatcher.
type QueueConfig struct {
	Workers     int `yaml:"workers" mapstructure:"workers"`
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts"`
	MaxPanics   int `yaml:"max_panics" mapstructure:"max_panics"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("thematic")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("THEMATIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "thematic.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.temperature", 0.7)
	v.SetDefault("anthropic.max_tokens", 4000)
	v.SetDefault("anthropic.summary_temperature", 0.3)
	v.SetDefault("anthropic.summary_max_tokens", 3000)
	v.SetDefault("anthropic.requests_per_second", 2.0)
	v.SetDefault("queue.workers", 4)
	v.SetDefault("queue.max_attempts", 3)
	v.SetDefault("queue.max_panics", 2)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if len(cfg.Pricing) == 0 {
		cfg.Pricing = cost.DefaultRates()
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
