// Package config carrega a configuração dos binários: um arquivo YAML opcional
// (CONFIG_FILE) e, por cima dele, variáveis de ambiente.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr   string `yaml:"listen_addr"`
	APIKey       string `yaml:"api_key"`
	APIKeyHeader string `yaml:"api_key_header"`
	LogLevel     string `yaml:"log_level"`

	Upstream UpstreamConfig `yaml:"upstream"`
	Limiter  LimiterConfig  `yaml:"limiter"`
	Stats    StatsConfig    `yaml:"stats"`
}

type UpstreamConfig struct {
	BaseURL            string        `yaml:"base_url"`
	Timeout            time.Duration `yaml:"timeout"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
	ProxyURL           string        `yaml:"proxy_url"`
}

type LimiterConfig struct {
	MaxConcurrent int     `yaml:"max_concurrent"`
	QueueCapacity int     `yaml:"queue_capacity"`
	PacingRPS     float64 `yaml:"pacing_rps"`
	PacingBurst   int     `yaml:"pacing_burst"`
}

type StatsConfig struct {
	Enabled       bool          `yaml:"enabled"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	Prefix        string        `yaml:"prefix"`
	TTL           time.Duration `yaml:"ttl"`
	Bucket        string        `yaml:"bucket"`
	TrackKeys     bool          `yaml:"track_keys"`
}

// Default devolve a configuração sem arquivo nem env.
func Default() Config {
	return Config{
		ListenAddr:   ":8080",
		APIKeyHeader: "X-Api-Key",
		LogLevel:     "info",
		Upstream: UpstreamConfig{
			BaseURL: "https://api.criminalip.io",
			Timeout: 30 * time.Second,
		},
		Limiter: LimiterConfig{
			MaxConcurrent: 1,
			QueueCapacity: 15,
			PacingBurst:   1,
		},
		Stats: StatsConfig{
			Prefix: "enrich:stats",
			TTL:    24 * time.Hour,
			Bucket: "minute",
		},
	}
}

// Load lê CONFIG_FILE (se definido), aplica o ambiente e valida.
func Load() (Config, error) {
	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ListenAddr = getenvDefault("LISTEN_ADDR", c.ListenAddr)
	c.APIKey = getenvDefault("CRIMINALIP_API_KEY", c.APIKey)
	c.APIKeyHeader = getenvDefault("API_KEY_HEADER", c.APIKeyHeader)
	c.LogLevel = getenvDefault("LOG_LEVEL", c.LogLevel)

	c.Upstream.BaseURL = getenvDefault("CRIMINALIP_BASE_URL", c.Upstream.BaseURL)
	c.Upstream.Timeout = getenvDurationDefault("REQUEST_TIMEOUT", c.Upstream.Timeout)
	c.Upstream.InsecureSkipVerify = getenvBoolDefault("TLS_INSECURE", c.Upstream.InsecureSkipVerify)
	c.Upstream.ProxyURL = getenvDefault("PROXY_URL", c.Upstream.ProxyURL)

	c.Limiter.MaxConcurrent = getenvIntDefault("MAX_CONCURRENT", c.Limiter.MaxConcurrent)
	c.Limiter.QueueCapacity = getenvIntDefault("QUEUE_CAPACITY", c.Limiter.QueueCapacity)
	c.Limiter.PacingRPS = getenvFloatDefault("PACING_RPS", c.Limiter.PacingRPS)
	c.Limiter.PacingBurst = getenvIntDefault("PACING_BURST", c.Limiter.PacingBurst)

	c.Stats.Enabled = getenvBoolDefault("STATS_ENABLED", c.Stats.Enabled)
	c.Stats.RedisAddr = getenvDefault("STATS_REDIS_ADDR", c.Stats.RedisAddr)
	c.Stats.RedisPassword = getenvDefault("STATS_REDIS_PASSWORD", c.Stats.RedisPassword)
	c.Stats.RedisDB = getenvIntDefault("STATS_REDIS_DB", c.Stats.RedisDB)
	c.Stats.Prefix = getenvDefault("STATS_PREFIX", c.Stats.Prefix)
	c.Stats.TTL = getenvDurationDefault("STATS_TTL", c.Stats.TTL)
	c.Stats.Bucket = getenvDefault("STATS_BUCKET", c.Stats.Bucket)
	c.Stats.TrackKeys = getenvBoolDefault("STATS_TRACK_KEYS", c.Stats.TrackKeys)
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Upstream.BaseURL) == "" {
		return errors.New("CRIMINALIP_BASE_URL is required")
	}
	if c.Upstream.Timeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be > 0")
	}
	if c.Limiter.MaxConcurrent <= 0 {
		return errors.New("MAX_CONCURRENT must be > 0")
	}
	if c.Limiter.QueueCapacity < 0 {
		return errors.New("QUEUE_CAPACITY must be >= 0")
	}
	if c.Limiter.PacingRPS < 0 {
		return errors.New("PACING_RPS must be >= 0")
	}
	if c.Stats.Enabled && strings.TrimSpace(c.Stats.RedisAddr) == "" {
		return errors.New("STATS_REDIS_ADDR is required when STATS_ENABLED=true")
	}
	return nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
