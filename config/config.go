package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		Driver       string
		User         string
		Host         string
		Name         string
		Password     string
		Port         int
		SSLMode      string `mapstructure:"sslmode"`
		Path         string
		MaxOpenConns int  `mapstructure:"max_open_conns"`
		MaxIdleConns int  `mapstructure:"max_idle_conns"`
		UniqueTitles bool `mapstructure:"unique_titles"`
	}
	Server struct {
		Port         int
		DiagPort     int  `mapstructure:"diag_port"`
		StrictStatus bool `mapstructure:"strict_status"`
	}
	Log struct {
		Level string
		File  string
	}
}

// envBindings maps configuration keys to the process environment.
var envBindings = map[string]string{
	"database.driver":         "DATABASE_DRIVER",
	"database.user":           "DATABASE_USER",
	"database.host":           "DATABASE_HOST",
	"database.name":           "DATABASE_NAME",
	"database.password":       "DATABASE_PASSWORD",
	"database.port":           "DATABASE_PORT",
	"database.sslmode":        "DATABASE_SSLMODE",
	"database.path":           "DATABASE_PATH",
	"database.max_open_conns": "DATABASE_MAX_OPEN_CONNS",
	"database.max_idle_conns": "DATABASE_MAX_IDLE_CONNS",
	"database.unique_titles":  "DATABASE_UNIQUE_TITLES",
	"server.port":             "PORT",
	"server.diag_port":        "DIAG_PORT",
	"server.strict_status":    "STRICT_STATUS",
	"log.level":               "LOG_LEVEL",
	"log.file":                "LOG_FILE",
}

// LoadConfig reads an optional .env file, an optional config.yaml and the
// environment, in increasing order of precedence.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Default values
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.name", "articles")
	v.SetDefault("database.password", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "articles.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.unique_titles", false)
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.diag_port", 9999)
	v.SetDefault("server.strict_status", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
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

	config.Database.Driver = strings.ToLower(config.Database.Driver)
	return &config, nil
}

// DSN returns the lib/pq connection string for the configured database.
func (c *Config) DSN() string {
	parts := []string{
		"host=" + quote(c.Database.Host),
		fmt.Sprintf("port=%d", c.Database.Port),
		"user=" + quote(c.Database.User),
		"dbname=" + quote(c.Database.Name),
		"sslmode=" + quote(c.Database.SSLMode),
	}
	if c.Database.Password != "" {
		parts = append(parts, "password="+quote(c.Database.Password))
	}
	return strings.Join(parts, " ")
}

func quote(value string) string {
	if value == "" || strings.ContainsAny(value, ` '\`) {
		value = strings.ReplaceAll(value, `\`, `\\`)
		value = strings.ReplaceAll(value, `'`, `\'`)
		return "'" + value + "'"
	}
	return value
}
