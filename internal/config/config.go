package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTP     HTTPConfig     `mapstructure:"http"`
	Database DatabaseConfig `mapstructure:"database"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

type HTTPConfig struct {
	Port    int           `mapstructure:"port"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

type TracingConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
}

type LoggerConfig struct {
	Level string `mapstructure:"level"`
}

var defaults = map[string]any{
	"http.port":            8080,
	"http.timeout":         "10s",
	"database.driver":      "postgres",
	"database.host":        "127.0.0.1",
	"database.port":        "5432",
	"database.user":        "postgres",
	"database.password":    "postgres",
	"database.name":        "adverts",
	"tracing.endpoint":     "",
	"tracing.service_name": "advert-service",
	"tracing.environment":  "development",
	"tracing.version":      "dev",
	"logger.level":         "info",
}

// env maps config keys to the environment variables that override them.
var env = map[string]string{
	"http.port":            "HTTP_PORT",
	"http.timeout":         "HTTP_TIMEOUT",
	"database.driver":      "DB_DRIVER",
	"database.host":        "PG_HOST",
	"database.port":        "PG_PORT",
	"database.user":        "PG_USER",
	"database.password":    "PG_PASSWORD",
	"database.name":        "PG_DB",
	"tracing.endpoint":     "OTEL_ENDPOINT",
	"tracing.service_name": "OTEL_SERVICE_NAME",
	"tracing.environment":  "APP_ENV",
	"tracing.version":      "APP_VERSION",
	"logger.level":         "LOG_LEVEL",
}

type Options struct {
	// ConfigPaths are searched for config.yaml. Defaults to the working directory.
	ConfigPaths []string
	// EnvFiles are loaded into the process environment before reading. Defaults to .env.
	EnvFiles []string
}

func LoadConfig() (*Config, error) {
	return Load(Options{})
}

func Load(opts Options) (*Config, error) {
	if len(opts.ConfigPaths) == 0 {
		opts.ConfigPaths = []string{"."}
	}
	if len(opts.EnvFiles) == 0 {
		opts.EnvFiles = []string{".env"}
	}

	for _, f := range opts.EnvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", f, err)
		}
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range opts.ConfigPaths {
		v.AddConfigPath(p)
	}

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for key, name := range env {
		if err := v.BindEnv(key, name); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.HTTP.Port <= 0 || config.HTTP.Port > 65535 {
		return nil, fmt.Errorf("invalid http port %d", config.HTTP.Port)
	}
	if config.HTTP.Timeout <= 0 {
		return nil, fmt.Errorf("invalid http timeout %s", config.HTTP.Timeout)
	}

	return &config, nil
}

func MustLoadConfig() *Config {
	config, err := LoadConfig()
	if err != nil {
		log.Fatalf("Could not load configuration: %v", err)
	}
	return config
}
