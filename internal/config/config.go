package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const DefaultJWTSecret = "change-this-secret"

type Config struct {
	Port            string
	DBPath          string
	JWTSecret       string
	TokenTTL        time.Duration
	CORSOrigins     []string
	MigrationsDir   string
	LogLevel        string
	LogDevelopment  bool
	ShutdownTimeout time.Duration
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, in increasing priority. With an empty configFile a
// kidtimer-server.yaml in the working directory is used when present.
func Load(configFile string) (Config, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("kidtimer-server")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("db_path", "./data/kidtimer.db")
	v.SetDefault("jwt_secret", DefaultJWTSecret)
	v.SetDefault("token_ttl_hours", 72)
	v.SetDefault("cors_origins", "http://localhost:5173,http://127.0.0.1:5173")
	v.SetDefault("migrations_dir", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_development", false)
	v.SetDefault("shutdown_timeout_seconds", 10)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	ttlHours := v.GetInt("token_ttl_hours")
	if ttlHours <= 0 {
		ttlHours = 72
	}
	shutdownSeconds := v.GetInt("shutdown_timeout_seconds")
	if shutdownSeconds <= 0 {
		shutdownSeconds = 10
	}

	return Config{
		Port:            v.GetString("port"),
		DBPath:          v.GetString("db_path"),
		JWTSecret:       v.GetString("jwt_secret"),
		TokenTTL:        time.Duration(ttlHours) * time.Hour,
		CORSOrigins:     splitList(v.GetString("cors_origins")),
		MigrationsDir:   v.GetString("migrations_dir"),
		LogLevel:        v.GetString("log_level"),
		LogDevelopment:  v.GetBool("log_development"),
		ShutdownTimeout: time.Duration(shutdownSeconds) * time.Second,
	}, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
