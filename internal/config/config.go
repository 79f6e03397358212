package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// document store
	DBHost         string `toml:"db_host"`
	DBPort         string `toml:"db_port"`
	DBName         string `toml:"db_name"`
	TracingEnabled bool   `toml:"tracing_enabled"`
	// change notifications
	RedisHost string `toml:"redis_host"`
	RedisPort int    `toml:"redis_port"`
	// blob store
	MinioEndpoint  string `toml:"minio_endpoint"`
	MinioUseSSL    bool   `toml:"minio_use_ssl"`
	MinioBucket    string `toml:"minio_bucket"`
	MinioPublicURL string `toml:"minio_public_url"`
	// identity service
	IdentityServiceURL string `toml:"identity_service_url"`
	// local session persistence
	SessionFilePath string `toml:"session_file_path"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config section missing for env: %s", env)
	}

	cfg.Environment = env
	return cfg, nil
}
