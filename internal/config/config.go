// Package config loads audit settings from a config file and A11Y_AUDIT_*
// environment variables.
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mj1618/a11y-audit/internal/audit"
	"github.com/mj1618/a11y-audit/internal/model"
)

// EnvPrefix is the prefix of environment overrides, e.g.
// A11Y_AUDIT_LOCALE=de or A11Y_AUDIT_CACHE_REDIS_URL=redis://localhost:6379/0.
const EnvPrefix = "A11Y_AUDIT"

type Config struct {
	Rules              map[string]bool  `mapstructure:"rules"`
	Locale             string           `mapstructure:"locale"`
	Scope              string           `mapstructure:"scope"`
	Context            string           `mapstructure:"context"`
	Profiles           []string         `mapstructure:"profiles"`
	Viewports          []model.Viewport `mapstructure:"viewports"`
	PatternsFile       string           `mapstructure:"patterns_file"`
	MaxRecommendations int              `mapstructure:"max_recommendations"`
	LiveBuffer         int              `mapstructure:"live_buffer"`
	Cache              Cache            `mapstructure:"cache"`
	Server             Server           `mapstructure:"server"`
	Log                Log              `mapstructure:"log"`
}

// Cache configures the server's report cache. An empty RedisURL keeps
// reports in process memory.
type Cache struct {
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
	Size     int           `mapstructure:"size"`
}

type Server struct {
	Addr            string        `mapstructure:"addr"`
	Transport       string        `mapstructure:"transport"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type Log struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("locale", "en")
	v.SetDefault("scope", "")
	v.SetDefault("context", "")
	v.SetDefault("profiles", []string{})
	v.SetDefault("patterns_file", "")
	v.SetDefault("max_recommendations", 10)
	v.SetDefault("live_buffer", 256)
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cache.size", 64)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.transport", "stdio")
	v.SetDefault("server.port", 8081)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	for _, r := range audit.RuleNames() {
		v.SetDefault("rules."+r, true)
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("default config: %v", err))
	}
	return cfg
}

// Load reads path (YAML, JSON or TOML by extension) over the defaults and
// applies environment overrides. An empty path reads only defaults and
// environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects unknown rule names and negative limits.
func (c *Config) Validate() error {
	var unknown []string
	for name := range c.Rules {
		if !audit.KnownRule(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown rules %s (known: %s)", strings.Join(unknown, ", "), strings.Join(audit.RuleNames(), ", "))
	}
	if c.MaxRecommendations < 0 || c.LiveBuffer < 0 || c.Cache.Size < 0 {
		return fmt.Errorf("max_recommendations, live_buffer and cache.size must not be negative")
	}
	for _, vp := range c.Viewports {
		if vp.Name == "" || vp.Width <= 0 || vp.Height <= 0 {
			return fmt.Errorf("viewport %q needs a name and a positive size", vp.Name)
		}
	}
	return nil
}

// SelectedViewports resolves the configured profile names against the
// configured viewports, or the defaults when none are configured.
func (c *Config) SelectedViewports() ([]model.Viewport, error) {
	return model.SelectViewports(c.Viewports, c.Profiles)
}

// AuditOptions converts the configuration into engine options for the
// first selected viewport.
func (c *Config) AuditOptions() (audit.Options, error) {
	opts := audit.Options{
		Rules:              c.Rules,
		Locale:             c.Locale,
		Scope:              c.Scope,
		Context:            c.Context,
		MaxRecommendations: c.MaxRecommendations,
		LiveBuffer:         c.LiveBuffer,
	}
	if c.PatternsFile != "" {
		p, err := audit.LoadPatterns(c.PatternsFile)
		if err != nil {
			return audit.Options{}, err
		}
		opts.Patterns = p
	}
	vps, err := c.SelectedViewports()
	if err != nil {
		return audit.Options{}, err
	}
	opts.Viewport = vps[0]
	patterns := opts.Patterns
	if patterns == nil {
		patterns = audit.DefaultPatterns()
	}
	if _, err := patterns.Vocabulary(opts.Locale); err != nil {
		return audit.Options{}, err
	}
	return opts, nil
}
