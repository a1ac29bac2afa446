package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	QuestionSourceStatic   = "static"
	QuestionSourceFile     = "file"
	QuestionSourcePostgres = "postgres"

	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreNone     = "none"
)

type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"server"`
	Quiz struct {
		// Source is static, file or postgres.
		Source       string `yaml:"source"`
		File         string `yaml:"file"`
		SetID        string `yaml:"setId"`
		Duration     string `yaml:"duration"`
		TickInterval string `yaml:"tickInterval"`
		// Cache is memory or redis.
		Cache    string `yaml:"cache"`
		CacheTTL string `yaml:"cacheTtl"`
	} `yaml:"quiz"`
	Session struct {
		// Store is memory, sqlite or redis.
		Store        string `yaml:"store"`
		StateKey     string `yaml:"stateKey"`
		UserKey      string `yaml:"userKey"`
		WriteTimeout string `yaml:"writeTimeout"`
	} `yaml:"session"`
	Leaderboard struct {
		// Sink is memory, redis, postgres or none.
		Sink string `yaml:"sink"`
	} `yaml:"leaderboard"`
	Redis struct {
		Addr      string `yaml:"addr"`
		Password  string `yaml:"password"`
		DB        int    `yaml:"db"`
		TTL       string `yaml:"ttl"`
		KeyPrefix string `yaml:"keyPrefix"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
}

// Load reads YAML config from path and fills in defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, cfg.Validate()
}

// Default returns the configuration used when no file is given.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Quiz.Source == "" {
		c.Quiz.Source = QuestionSourceStatic
	}
	if c.Quiz.SetID == "" {
		c.Quiz.SetID = "sample"
	}
	if c.Quiz.Cache == "" {
		c.Quiz.Cache = StoreMemory
	}
	if c.Session.Store == "" {
		c.Session.Store = StoreMemory
	}
	if c.Leaderboard.Sink == "" {
		c.Leaderboard.Sink = StoreMemory
	}
}

// Validate rejects backends that are unknown or missing their connection settings.
func (c Config) Validate() error {
	switch c.Quiz.Source {
	case QuestionSourceStatic:
	case QuestionSourceFile:
		if c.Quiz.File == "" {
			return fmt.Errorf("quiz.file is required for source %q", c.Quiz.Source)
		}
	case QuestionSourcePostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("postgres.url is required for source %q", c.Quiz.Source)
		}
	default:
		return fmt.Errorf("unknown quiz.source %q", c.Quiz.Source)
	}

	switch c.Quiz.Cache {
	case StoreMemory:
	case StoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required for quiz.cache %q", c.Quiz.Cache)
		}
	default:
		return fmt.Errorf("unknown quiz.cache %q", c.Quiz.Cache)
	}

	switch c.Session.Store {
	case StoreMemory, StoreSQLite:
	case StoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required for session.store %q", c.Session.Store)
		}
	default:
		return fmt.Errorf("unknown session.store %q", c.Session.Store)
	}

	switch c.Leaderboard.Sink {
	case StoreMemory, StoreNone:
	case StoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required for leaderboard.sink %q", c.Leaderboard.Sink)
		}
	case StorePostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("postgres.url is required for leaderboard.sink %q", c.Leaderboard.Sink)
		}
	default:
		return fmt.Errorf("unknown leaderboard.sink %q", c.Leaderboard.Sink)
	}
	return nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
