package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Feed struct {
		BaseURL           string        `yaml:"base_url"`
		FullTextURL       string        `yaml:"full_text_url"`
		CompanyListURL    string        `yaml:"company_list_url"`
		SubmissionsURL    string        `yaml:"submissions_url"`
		UserAgent         string        `yaml:"user_agent"`
		RequestTimeout    time.Duration `yaml:"request_timeout"`
		MaxRetries        int           `yaml:"max_retries"`
		BackoffBase       time.Duration `yaml:"backoff_base"`
		BackoffCap        time.Duration `yaml:"backoff_cap"`
		BackoffMultiplier float64       `yaml:"backoff_multiplier"`
		RateLimitFloor    time.Duration `yaml:"rate_limit_floor"`
		MinSpacing        time.Duration `yaml:"min_spacing"`
		WindowDays        int           `yaml:"window_days"`
		MaxWindows        int           `yaml:"max_windows"`
		WindowDelay       time.Duration `yaml:"window_delay"`
		EntryLimit        int           `yaml:"entry_limit"`
	} `yaml:"feed"`
	ResponseCache struct {
		MaxEntries       int           `yaml:"max_entries"`
		DefaultTTL       time.Duration `yaml:"default_ttl"`
		PaidTTL          time.Duration `yaml:"paid_ttl"`
		StalenessCeiling time.Duration `yaml:"staleness_ceiling"`
		SweepInterval    time.Duration `yaml:"sweep_interval"`
	} `yaml:"response_cache"`
	Store struct {
		Backend    string        `yaml:"backend"` // redis or memory
		DefaultTTL time.Duration `yaml:"default_ttl"`
		Redis      struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"store"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("EDGAR_USER_AGENT"); v != "" {
		c.Feed.UserAgent = v
	}
	if v := os.Getenv("EDGAR_BASE_URL"); v != "" {
		c.Feed.BaseURL = v
	}
	if v := os.Getenv("STORE_BACKEND"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Store.Redis.Host = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Feed.RequestTimeout <= 0 {
		c.Feed.RequestTimeout = 30 * time.Second
	}
	if c.Feed.MaxRetries <= 0 {
		c.Feed.MaxRetries = 5
	}
	if c.Feed.BackoffBase <= 0 {
		c.Feed.BackoffBase = 500 * time.Millisecond
	}
	if c.Feed.BackoffCap <= 0 {
		c.Feed.BackoffCap = 30 * time.Second
	}
	if c.Feed.BackoffMultiplier <= 1 {
		c.Feed.BackoffMultiplier = 2
	}
	if c.Feed.RateLimitFloor <= 0 {
		c.Feed.RateLimitFloor = time.Second
	}
	if c.Feed.MinSpacing <= 0 {
		c.Feed.MinSpacing = 150 * time.Millisecond
	}
	if c.Feed.WindowDays <= 0 {
		c.Feed.WindowDays = 5
	}
	if c.Feed.MaxWindows <= 0 {
		c.Feed.MaxWindows = 6
	}
	if c.Feed.WindowDelay <= 0 {
		c.Feed.WindowDelay = 400 * time.Millisecond
	}
	if c.Feed.EntryLimit <= 0 {
		c.Feed.EntryLimit = 100
	}
	if c.ResponseCache.MaxEntries <= 0 {
		c.ResponseCache.MaxEntries = 500
	}
	if c.ResponseCache.DefaultTTL <= 0 {
		c.ResponseCache.DefaultTTL = 15 * time.Minute
	}
	if c.ResponseCache.PaidTTL <= 0 {
		c.ResponseCache.PaidTTL = 5 * time.Minute
	}
	if c.ResponseCache.StalenessCeiling <= 0 {
		c.ResponseCache.StalenessCeiling = 24 * time.Hour
	}
	if c.ResponseCache.SweepInterval <= 0 {
		c.ResponseCache.SweepInterval = 10 * time.Minute
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "memory"
	}
	if c.Store.DefaultTTL <= 0 {
		c.Store.DefaultTTL = 30 * time.Minute
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Feed.BaseURL == "" {
		return fmt.Errorf("feed.base_url is required")
	}
	if c.Feed.UserAgent == "" {
		return fmt.Errorf("feed.user_agent is required (upstream rejects anonymous clients)")
	}
	if c.Store.Backend != "memory" && c.Store.Backend != "redis" {
		return fmt.Errorf("store.backend must be 'memory' or 'redis', got '%s'", c.Store.Backend)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}
