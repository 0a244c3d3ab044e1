// Package config loads the application configuration from an optional TOML
// file, with environment variables taking precedence, which is how the
// platform injects per-deployment settings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	App      AppConfig      `toml:"app"`
	HTTP     HTTPConfig     `toml:"http"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	Minio    MinioConfig    `toml:"minio"`
	Cache    CacheConfig    `toml:"cache"`
	JWT      JWTConfig      `toml:"jwt"`
}

type AppConfig struct {
	Env  string `toml:"env"`  // development or production
	Name string `toml:"name"` //
	Log  string `toml:"log"`  // trace, debug, info, warn, error
}

type HTTPConfig struct {
	Addr string `toml:"addr"`
}

type DatabaseConfig struct {
	URL string `toml:"url"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type MinioConfig struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Bucket    string `toml:"bucket"`
	UseSSL    bool   `toml:"use_ssl"`
}

// CacheConfig carries the externally tunable cache lifetimes: parameter
// entries (catalogs, profiles) and precomputed reports.
type CacheConfig struct {
	ParamTTLSeconds  int `toml:"param_ttl_seconds"`
	ReportTTLSeconds int `toml:"report_ttl_seconds"`
}

func (c CacheConfig) ParamTTL() time.Duration {
	return time.Duration(c.ParamTTLSeconds) * time.Second
}

func (c CacheConfig) ReportTTL() time.Duration {
	return time.Duration(c.ReportTTLSeconds) * time.Second
}

type JWTConfig struct {
	Secret     string `toml:"secret"`
	TTLMinutes int    `toml:"ttl_minutes"`
}

func (c JWTConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

func defaults() *Config {
	return &Config{
		App:  AppConfig{Env: "development", Name: "sstcore", Log: "info"},
		HTTP: HTTPConfig{Addr: ":8080"},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Minio: MinioConfig{
			Endpoint:  "localhost:9000",
			AccessKey: "minioadmin",
			SecretKey: "minioadmin",
			Bucket:    "sst-evidence",
		},
		Cache: CacheConfig{
			ParamTTLSeconds:  300,
			ReportTTLSeconds: 120,
		},
		JWT: JWTConfig{TTLMinutes: 480},
	}
}

// Load reads path when non-empty, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("config: decoding %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.App.Env = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.App.Log = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = db
		}
	}
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		cfg.Minio.Endpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		cfg.Minio.AccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.Minio.SecretKey = v
	}
	if v := os.Getenv("MINIO_BUCKET"); v != "" {
		cfg.Minio.Bucket = v
	}
	if v := os.Getenv("MINIO_USE_SSL"); v == "true" {
		cfg.Minio.UseSSL = true
	}
	if v := os.Getenv("CACHE_PARAM_TTL_SECONDS"); v != "" {
		if ttl, err := strconv.Atoi(v); err == nil {
			cfg.Cache.ParamTTLSeconds = ttl
		}
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
}
