// Package config loads the application configuration from a YAML file
// and fills in workable defaults for anything left out.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Resolver   ResolverConfig   `mapstructure:"resolver"`
	Classify   ClassifyConfig   `mapstructure:"classify"`
	Summary    SummaryConfig    `mapstructure:"summary"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Journal    JournalConfig    `mapstructure:"journal"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	WorkerPool WorkerPoolConfig `mapstructure:"worker_pool"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

// ResolverConfig tunes entity matching. Zero values select the built-in
// thresholds.
type ResolverConfig struct {
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	AmbiguityMargin     float64 `mapstructure:"ambiguity_margin"`
}

// ClassifyConfig selects the classification backend. Backend "static"
// runs the rule classifier and needs no API key; "gemini" reads the key
// from the GEMINI_API_KEY environment variable.
type ClassifyConfig struct {
	Backend        string `mapstructure:"backend"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type SummaryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	CacheTTLHours  int    `mapstructure:"cache_ttl_hours"`
}

// RedisConfig describes the optional redis instance used for rate-limit
// buckets and the summary cache. Disabled means in-memory fallbacks.
type RedisConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host"`
	Port         string `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

// JournalConfig locates the note history database. An empty path turns
// recording off.
type JournalConfig struct {
	Path string `mapstructure:"path"`
}

type SchedulerConfig struct {
	IntervalSeconds int `mapstructure:"interval_seconds"`
}

type WorkerPoolConfig struct {
	Size      int `mapstructure:"size"`
	QueueSize int `mapstructure:"queue_size"`
}

type RateLimitConfig struct {
	ClassifyPerMinute  int `mapstructure:"classify_per_minute"`
	SummarizePerMinute int `mapstructure:"summarize_per_minute"`
}

// Interval returns the scheduler tick as a duration, defaulting when
// unset.
func (s SchedulerConfig) Interval() time.Duration {
	if s.IntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.IntervalSeconds) * time.Second
}

// Addr joins host and port for the redis client.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("classify.backend", "static")
	v.SetDefault("classify.model", "gemini-2.0-flash")
	v.SetDefault("classify.timeout_seconds", 30)
	v.SetDefault("summary.model", "gemini-2.0-flash")
	v.SetDefault("summary.timeout_seconds", 30)
	v.SetDefault("summary.cache_ttl_hours", 24)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("scheduler.interval_seconds", 30)
	v.SetDefault("worker_pool.size", 4)
	v.SetDefault("worker_pool.queue_size", 64)
	v.SetDefault("ratelimit.classify_per_minute", 15)
	v.SetDefault("ratelimit.summarize_per_minute", 5)
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	// Unmarshalling pure defaults cannot fail.
	_ = v.Unmarshal(&config)
	return &config
}

// LoadConfig reads the YAML file at path into a Config.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &config, nil
}
