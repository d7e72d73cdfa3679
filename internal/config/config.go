// Package config provides Viper-based configuration loading for the duel server.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/mcoot/mankind/internal/api"
	"github.com/mcoot/mankind/internal/gateway"
	"github.com/mcoot/mankind/internal/services/duel"
	"github.com/mcoot/mankind/internal/services/responder"
	redisstorage "github.com/mcoot/mankind/internal/storage/redis"
)

// EnvPrefix is prepended to environment variable overrides, e.g.
// MANKIND_SERVER_PORT overrides server.port.
const EnvPrefix = "MANKIND"

// Storage backends
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "text".
	Format string `mapstructure:"format"`
}

// StorageConfig selects and configures the results backend.
type StorageConfig struct {
	Type  string              `mapstructure:"type"`
	Redis redisstorage.Config `mapstructure:"redis"`
}

// Config is the top-level application configuration.
type Config struct {
	Server    api.ServerConfig `mapstructure:"server"`
	Logging   LoggingConfig    `mapstructure:"logging"`
	Duel      duel.Config      `mapstructure:"duel"`
	Gateway   gateway.Config   `mapstructure:"gateway"`
	Responder responder.Config `mapstructure:"responder"`
	Storage   StorageConfig    `mapstructure:"storage"`
}

// Validate checks all configuration invariants and reports every violation.
func (c Config) Validate() error {
	var errs []string

	for _, validate := range []func() error{
		func() error { return validateServer(c.Server) },
		func() error { return validateLogging(c.Logging) },
		func() error { return validateDuel(c.Duel) },
		func() error { return validateGateway(c.Gateway) },
		func() error { return validateResponder(c.Responder) },
		func() error { return validateStorage(c.Storage) },
	} {
		if err := validate(); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func joinErrs(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return errors.New(strings.Join(errs, "; "))
}

func validateServer(s api.ServerConfig) error {
	var errs []string
	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", s.Port))
	}
	if s.ShutdownTimeout < 0 {
		errs = append(errs, "server.shutdown_timeout must be >= 0")
	}
	return joinErrs(errs)
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, text], got %q", l.Format)
	}
	return nil
}

func validateDuel(d duel.Config) error {
	var errs []string
	if d.Duration <= 0 {
		errs = append(errs, fmt.Sprintf("duel.duration must be > 0, got %s", d.Duration))
	}
	if d.PollInterval <= 0 || d.PollInterval > duel.MaxPollInterval {
		errs = append(errs, fmt.Sprintf("duel.poll_interval must be in (0, %s], got %s", duel.MaxPollInterval, d.PollInterval))
	}
	if d.TypingDelayMin < 0 {
		errs = append(errs, "duel.typing_delay_min must be >= 0")
	}
	if d.TypingDelayMax < d.TypingDelayMin {
		errs = append(errs, "duel.typing_delay_max must be >= duel.typing_delay_min")
	}
	return joinErrs(errs)
}

func validateGateway(g gateway.Config) error {
	var errs []string
	if g.WriteWait <= 0 {
		errs = append(errs, "gateway.write_wait must be > 0")
	}
	if g.PongWait <= 0 {
		errs = append(errs, "gateway.pong_wait must be > 0")
	}
	if g.PingPeriod <= 0 || g.PingPeriod >= g.PongWait {
		errs = append(errs, "gateway.ping_period must be > 0 and shorter than gateway.pong_wait")
	}
	if g.MaxMessageSize <= 0 {
		errs = append(errs, "gateway.max_message_size must be > 0")
	}
	if g.SendBuffer < 1 || g.InboundBuffer < 1 {
		errs = append(errs, "gateway.send_buffer and gateway.inbound_buffer must be >= 1")
	}
	return joinErrs(errs)
}

func validateResponder(r responder.Config) error {
	switch r.Provider {
	case responder.ProviderPhrases:
		return nil
	case responder.ProviderAnthropic:
		if r.APIKey == "" {
			return errors.New("responder.api_key is required for the anthropic provider")
		}
		return nil
	default:
		return fmt.Errorf("responder.provider must be one of [%s, %s], got %q",
			responder.ProviderPhrases, responder.ProviderAnthropic, r.Provider)
	}
}

func validateStorage(s StorageConfig) error {
	switch s.Type {
	case StorageTypeMemory:
		return nil
	case StorageTypeRedis:
		if s.Redis.URL == "" {
			return errors.New("storage.redis.url is required when storage.type is redis")
		}
		return nil
	default:
		return fmt.Errorf("storage.type must be one of [memory, redis], got %q", s.Type)
	}
}

// Load reads configuration from the given YAML file, applies environment
// variable overrides, and validates the result. An empty path uses defaults
// and the environment only.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with MANKIND_ prefix
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	server := api.DefaultServerConfig()
	v.SetDefault("server.host", server.Host)
	v.SetDefault("server.port", server.Port)
	v.SetDefault("server.read_header_timeout", server.ReadHeaderTimeout)
	v.SetDefault("server.shutdown_timeout", server.ShutdownTimeout)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	d := duel.DefaultConfig()
	v.SetDefault("duel.duration", d.Duration)
	v.SetDefault("duel.poll_interval", d.PollInterval)
	v.SetDefault("duel.typing_delay_min", d.TypingDelayMin)
	v.SetDefault("duel.typing_delay_max", d.TypingDelayMax)

	g := gateway.DefaultConfig()
	v.SetDefault("gateway.write_wait", g.WriteWait)
	v.SetDefault("gateway.pong_wait", g.PongWait)
	v.SetDefault("gateway.ping_period", g.PingPeriod)
	v.SetDefault("gateway.max_message_size", g.MaxMessageSize)
	v.SetDefault("gateway.send_buffer", g.SendBuffer)
	v.SetDefault("gateway.inbound_buffer", g.InboundBuffer)

	v.SetDefault("responder.provider", responder.ProviderPhrases)
	v.SetDefault("responder.model", "")
	v.SetDefault("responder.api_key", "")
	v.SetDefault("responder.base_url", "")
	v.SetDefault("responder.max_tokens", 0)
	v.SetDefault("responder.timeout", "20s")

	r := redisstorage.DefaultConfig()
	v.SetDefault("storage.type", StorageTypeMemory)
	v.SetDefault("storage.redis.url", r.URL)
	v.SetDefault("storage.redis.pool_size", r.PoolSize)
	v.SetDefault("storage.redis.min_idle_conns", r.MinIdleConns)
	v.SetDefault("storage.redis.duel_ttl", r.DuelTTL)
	v.SetDefault("storage.redis.recent_limit", r.RecentLimit)
}
