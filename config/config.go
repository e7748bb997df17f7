package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Monitor    MonitorConfig    `yaml:"monitor"`
	Passes     PassConfig       `yaml:"passes"`
}

// WorkerPoolConfig holds the configuration for the alert worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// MonitorConfig controls the per-pass route monitor loop.
type MonitorConfig struct {
	PollIntervalSeconds int           `yaml:"poll_interval_seconds"`
	BackoffSeconds      int           `yaml:"backoff_seconds"`
	PollInterval        time.Duration `yaml:"-"` // Ignored by YAML parser
	Backoff             time.Duration `yaml:"-"`
}

// PassConfig holds the hall pass policy knobs: type durations, location
// allow-lists, destination capacity limits and the student rate limit.
type PassConfig struct {
	DurationMinutes   map[string]int      `yaml:"duration_minutes"`
	AllowedLocations  map[string][]string `yaml:"allowed_locations"`
	CapacityLimits    map[string]int      `yaml:"capacity_limits"`
	DefaultCapacity   int                 `yaml:"default_capacity"`
	RateLimitCount    int                 `yaml:"rate_limit_count"`
	RateWindowMinutes int                 `yaml:"rate_window_minutes"`
	RateWindow        time.Duration       `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills in every zero value with its default. It is called
// by Load and is exported so tests can build configs the same way.
func (cfg *Config) ApplyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 60
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	if cfg.Monitor.PollIntervalSeconds <= 0 {
		cfg.Monitor.PollIntervalSeconds = 30
	}
	cfg.Monitor.PollInterval = time.Duration(cfg.Monitor.PollIntervalSeconds) * time.Second

	if cfg.Monitor.BackoffSeconds <= 0 {
		cfg.Monitor.BackoffSeconds = 5
	}
	cfg.Monitor.Backoff = time.Duration(cfg.Monitor.BackoffSeconds) * time.Second

	if cfg.Passes.DefaultCapacity <= 0 {
		cfg.Passes.DefaultCapacity = 5
	}
	if cfg.Passes.RateLimitCount <= 0 {
		cfg.Passes.RateLimitCount = 3
	}
	if cfg.Passes.RateWindowMinutes <= 0 {
		cfg.Passes.RateWindowMinutes = 60
	}
	cfg.Passes.RateWindow = time.Duration(cfg.Passes.RateWindowMinutes) * time.Minute
}
