// Package config loads the orchestrator configuration from YAML with
// environment overrides, and watches the config directory for hot reloads.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/answerdesk/orchestrator/internal/agents"
	"github.com/answerdesk/orchestrator/internal/db"
	"github.com/answerdesk/orchestrator/internal/links"
)

// DefaultPath is used when CONFIG_PATH is not set.
const DefaultPath = "/app/config/answerdesk.yaml"

// Config is the full worker configuration.
type Config struct {
	Service  ServiceConfig     `mapstructure:"service"`
	Temporal TemporalConfig    `mapstructure:"temporal"`
	Agents   AgentsConfig      `mapstructure:"agents"`
	Workflow WorkflowConfig    `mapstructure:"workflow"`
	Links    links.ProbeConfig `mapstructure:"links"`
	Redis    RedisConfig       `mapstructure:"redis"`
	Database DatabaseConfig    `mapstructure:"database"`
	Tracing  TracingConfig     `mapstructure:"tracing"`
	Logging  LoggingConfig     `mapstructure:"logging"`
}

type ServiceConfig struct {
	Name        string `mapstructure:"name"`
	MetricsPort int    `mapstructure:"metrics_port"`
}

type TemporalConfig struct {
	HostPort      string `mapstructure:"host_port"`
	Namespace     string `mapstructure:"namespace"`
	TaskQueue     string `mapstructure:"task_queue"`
	ActivitySlots int    `mapstructure:"activity_slots"`
	WorkflowSlots int    `mapstructure:"workflow_slots"`
}

// AgentsConfig selects and configures the collaborator backend.
type AgentsConfig struct {
	// Backend is "service" for the HTTP agent service or "openai" for the
	// direct API backend.
	Backend string              `mapstructure:"backend"`
	Service agents.Config       `mapstructure:"service"`
	OpenAI  agents.OpenAIConfig `mapstructure:"openai"`
}

type WorkflowConfig struct {
	MaxAttempts      int `mapstructure:"max_attempts"`
	CharLimit        int `mapstructure:"char_limit"`
	SheetParallelism int `mapstructure:"sheet_parallelism"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DatabaseConfig struct {
	Enabled bool `mapstructure:"enabled"`
	db.Config    `mapstructure:",squash"`
}

type TracingConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	ServiceName  string `mapstructure:"service_name"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads the config file at path (CONFIG_PATH, then DefaultPath, when
// empty). A missing file is not an error; defaults and ANSWERDESK_* env
// overrides still apply.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = DefaultPath
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("ANSWERDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.name", "answerdesk-orchestrator")
	v.SetDefault("service.metrics_port", 2112)

	v.SetDefault("temporal.host_port", "temporal:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "answerdesk-questions")
	v.SetDefault("temporal.activity_slots", 10)
	v.SetDefault("temporal.workflow_slots", 10)

	v.SetDefault("agents.backend", "service")
	v.SetDefault("agents.service.timeout", 120*time.Second)

	v.SetDefault("workflow.max_attempts", 10)
	v.SetDefault("workflow.sheet_parallelism", 4)

	v.SetDefault("links.timeout", 10*time.Second)
	v.SetDefault("links.rate_rps", 5)
	v.SetDefault("links.rate_burst", 10)
	v.SetDefault("links.cache_ttl", 15*time.Minute)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "redis:6379")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "postgres")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "answerdesk-orchestrator")
	v.SetDefault("tracing.otlp_endpoint", "otel-collector:4317")

	v.SetDefault("logging.level", "info")
}
