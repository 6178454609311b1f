package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Auth struct {
		// URL and AnonKey point at the hosted auth provider. When URL is
		// empty the server falls back to the dev HS256 verifier and
		// DevSecret must be set.
		URL       string `yaml:"url"`
		AnonKey   string `yaml:"anon_key"`
		DevSecret string `yaml:"dev_secret"`
		CacheTTL  string `yaml:"cache_ttl"`
	} `yaml:"auth"`
	Quiz struct {
		QuestionsPerAttempt int `yaml:"questions_per_attempt"`
	} `yaml:"quiz"`
}

// Load reads YAML config from path and applies environment overrides for the
// secrets that deployments usually inject via env. A missing file is not an
// error; env-only deployments carry no config file at all.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	applyEnv(&cfg.Postgres.URL, "DATABASE_URL")
	applyEnv(&cfg.Redis.Addr, "REDIS_ADDR")
	applyEnv(&cfg.Auth.URL, "SUPABASE_URL")
	applyEnv(&cfg.Auth.AnonKey, "SUPABASE_ANON_KEY")
	applyEnv(&cfg.Auth.DevSecret, "SUPABASE_JWT_SECRET")
	return cfg, nil
}

func applyEnv(target *string, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
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
