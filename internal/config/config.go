package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Sentinel value meaning a target slot is intentionally not configured.
// Deployment templates fill unused slots with this instead of leaving the
// variable undefined.
const UnsetTarget = "unset"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Targets   TargetsConfig   `mapstructure:"targets"`
	Forward   ForwardConfig   `mapstructure:"forward"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	MaxBodySize  int64         `mapstructure:"max_body_size"`
}

// TargetsConfig holds the two downstream callback slots. Both URLs embed
// their authorization as a query parameter and must only be logged through
// the redaction helper.
type TargetsConfig struct {
	StableURL string `mapstructure:"stable_url"`
	CanaryURL string `mapstructure:"canary_url"`
}

// StableSet reports whether the stable slot holds a usable URL.
func (t TargetsConfig) StableSet() bool {
	return targetSet(t.StableURL)
}

// CanarySet reports whether the canary slot holds a usable URL.
func (t TargetsConfig) CanarySet() bool {
	return targetSet(t.CanaryURL)
}

func targetSet(url string) bool {
	return url != "" && !strings.EqualFold(strings.TrimSpace(url), UnsetTarget)
}

type ForwardConfig struct {
	FallbackEnabled     bool          `mapstructure:"fallback_enabled"`
	MaxAttempts         int           `mapstructure:"max_attempts"`
	BaseBackoff         time.Duration `mapstructure:"base_backoff"`
	MaxBackoff          time.Duration `mapstructure:"max_backoff"`
	Timeout             time.Duration `mapstructure:"timeout"`
	IncludeResponseBody bool          `mapstructure:"include_response_body"`
	ResponseBodyLimit   int           `mapstructure:"response_body_limit"`
}

type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type RedisConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.max_body_size", 1048576)
	v.SetDefault("targets.stable_url", "")
	v.SetDefault("targets.canary_url", "")
	v.SetDefault("forward.fallback_enabled", true)
	v.SetDefault("forward.max_attempts", 4)
	v.SetDefault("forward.base_backoff", "500ms")
	v.SetDefault("forward.max_backoff", "8s")
	v.SetDefault("forward.timeout", "30s")
	v.SetDefault("forward.include_response_body", false)
	v.SetDefault("forward.response_body_limit", 512)
	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.requests", 1000)
	v.SetDefault("ratelimit.window", "1m")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.url", "redis://localhost:6379")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/hookbridge/relay")
	}

	// Environment variables override
	v.SetEnvPrefix("RELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found; use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects tunable values the forwarder cannot operate with. A
// missing stable target is deliberately not an error here: the relay still
// starts and reports the misconfiguration on every delivery, so a bad rollout
// does not take the subscription endpoint offline.
func (c *Config) Validate() error {
	if c.Forward.MaxAttempts < 1 {
		return fmt.Errorf("forward.max_attempts must be at least 1, got %d", c.Forward.MaxAttempts)
	}
	if c.Forward.BaseBackoff <= 0 {
		return fmt.Errorf("forward.base_backoff must be positive, got %s", c.Forward.BaseBackoff)
	}
	if c.Forward.MaxBackoff <= 0 {
		return fmt.Errorf("forward.max_backoff must be positive, got %s", c.Forward.MaxBackoff)
	}
	if c.Forward.ResponseBodyLimit < 0 {
		return fmt.Errorf("forward.response_body_limit must not be negative, got %d", c.Forward.ResponseBodyLimit)
	}
	return nil
}
