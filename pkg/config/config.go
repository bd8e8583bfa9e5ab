package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env string

	Data   DataConfig
	Log    LogConfig
	Auth   AuthConfig
	Export ExportConfig
}

// DataConfig locates the delimited text tables on disk.
type DataConfig struct {
	Directory string
}

type LogConfig struct {
	Level  string
	Format string
}

// AuthConfig governs credential and session handling.
type AuthConfig struct {
	TokenSecret       string
	TokenExpiry       time.Duration
	BcryptCost        int
	MinPasswordLength int
	SeedDefaults      bool
}

// ExportConfig controls schedule and roster exports.
type ExportConfig struct {
	Directory string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.Data = DataConfig{
		Directory: v.GetString("DATA_DIR"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Auth = AuthConfig{
		TokenSecret:       v.GetString("SESSION_TOKEN_SECRET"),
		TokenExpiry:       parseDuration(v.GetString("SESSION_TOKEN_EXPIRY"), 12*time.Hour),
		BcryptCost:        v.GetInt("BCRYPT_COST"),
		MinPasswordLength: v.GetInt("MIN_PASSWORD_LENGTH"),
		SeedDefaults:      v.GetBool("SEED_DEFAULTS"),
	}

	cfg.Export = ExportConfig{
		Directory: v.GetString("EXPORT_DIR"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("SESSION_TOKEN_SECRET", "")
	v.SetDefault("SESSION_TOKEN_EXPIRY", "12h")
	v.SetDefault("BCRYPT_COST", "10")
	v.SetDefault("MIN_PASSWORD_LENGTH", "6")
	v.SetDefault("SEED_DEFAULTS", "true")
	v.SetDefault("EXPORT_DIR", "./exports")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
