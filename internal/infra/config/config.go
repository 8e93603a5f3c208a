package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP   HTTPConfig   `yaml:"http"`
	Static StaticConfig `yaml:"static"`
	NASA   NASAConfig   `yaml:"nasa"`
	Cache  CacheConfig  `yaml:"cache"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string        `yaml:"address"`
	ReadTimeout    time.Duration `yaml:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout"`
	AllowedOrigins []string      `yaml:"allowedOrigins"`
	MetricsPath    string        `yaml:"metricsPath"`
}

// StaticConfig points at the frontend files.
type StaticConfig struct {
	Roots []string `yaml:"roots"`
	Index string   `yaml:"index"`
}

// NASAConfig configures the upstream NASA open APIs.
type NASAConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	APIKey  string        `yaml:"apiKey"`
	Timeout time.Duration `yaml:"timeout"`
	Sols    []int         `yaml:"sols"`
	Breaker BreakerConfig `yaml:"breaker"`
}

// BreakerConfig tunes the circuit breaker in front of NASA.
type BreakerConfig struct {
	MinRequests  uint32        `yaml:"minRequests"`
	FailureRatio float64       `yaml:"failureRatio"`
	OpenTimeout  time.Duration `yaml:"openTimeout"`
}

// CacheConfig controls caching of successful upstream results.
type CacheConfig struct {
	TTL    time.Duration `yaml:"ttl"`
	Valkey ValkeyConfig  `yaml:"valkey"`
}

// ValkeyConfig contains connection information for the shared cache.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.HTTP.Address = net.JoinHostPort("", v)
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v, ok := os.LookupEnv("METRICS_PATH"); ok {
		cfg.HTTP.MetricsPath = strings.TrimSpace(v)
	}
	if v := os.Getenv("STATIC_ROOTS"); v != "" {
		cfg.Static.Roots = splitList(v)
	}
	if v := os.Getenv("STATIC_INDEX"); v != "" {
		cfg.Static.Index = v
	}
	if v := os.Getenv("NASA_API_KEY"); v != "" {
		cfg.NASA.APIKey = v
	}
	if v := os.Getenv("NASA_BASE_URL"); v != "" {
		cfg.NASA.BaseURL = v
	}
	if v := os.Getenv("NASA_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.NASA.Timeout = parsed
		}
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = parsed
		}
	}
	if v := os.Getenv("CACHE_VALKEY_ENABLED"); v != "" {
		cfg.Cache.Valkey.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("CACHE_VALKEY_ADDR"); v != "" {
		cfg.Cache.Valkey.Addr = v
	}
	if v := os.Getenv("NASA_BREAKER_MIN_REQUESTS"); v != "" {
		if parsed, err := strconv.ParseUint(v, 10, 32); err == nil {
			cfg.NASA.Breaker.MinRequests = uint32(parsed)
		}
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:        ":10000",
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   60 * time.Second,
			AllowedOrigins: []string{"*"},
			MetricsPath:    "/metrics",
		},
		Static: StaticConfig{
			Roots: []string{"web"},
			Index: "i3.html",
		},
		NASA: NASAConfig{
			BaseURL: "https://api.nasa.gov",
			APIKey:  "DEMO_KEY",
			Timeout: 10 * time.Second,
			Sols:    []int{1000, 2000, 2500, 3000},
			Breaker: BreakerConfig{
				MinRequests:  5,
				FailureRatio: 0.6,
				OpenTimeout:  30 * time.Second,
			},
		},
		Cache: CacheConfig{
			TTL: 5 * time.Minute,
			Valkey: ValkeyConfig{
				Enabled: false,
				Prefix:  "marsdata",
			},
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.MetricsPath != "" && !strings.HasPrefix(c.HTTP.MetricsPath, "/") {
		return errors.New("http.metricsPath must start with /")
	}
	if len(c.Static.Roots) == 0 {
		return errors.New("static.roots cannot be empty")
	}
	if strings.TrimSpace(c.Static.Index) == "" {
		return errors.New("static.index cannot be empty")
	}
	if strings.TrimSpace(c.NASA.BaseURL) == "" {
		return errors.New("nasa.baseUrl cannot be empty")
	}
	if strings.TrimSpace(c.NASA.APIKey) == "" {
		return errors.New("nasa.apiKey cannot be empty")
	}
	if c.NASA.Timeout <= 0 {
		return errors.New("nasa.timeout must be positive")
	}
	if len(c.NASA.Sols) == 0 {
		return errors.New("nasa.sols cannot be empty")
	}
	if c.NASA.Breaker.FailureRatio <= 0 || c.NASA.Breaker.FailureRatio > 1 {
		return errors.New("nasa.breaker.failureRatio must be within (0, 1]")
	}
	if c.NASA.Breaker.OpenTimeout <= 0 {
		return errors.New("nasa.breaker.openTimeout must be positive")
	}
	if c.Cache.TTL < 0 {
		return errors.New("cache.ttl cannot be negative")
	}
	if c.Cache.Valkey.Enabled && strings.TrimSpace(c.Cache.Valkey.Addr) == "" {
		return errors.New("cache.valkey.addr cannot be empty when valkey cache is enabled")
	}
	return nil
}
