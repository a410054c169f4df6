package config

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server   Server
	Database Database
	Auth     Auth
	Storage  Storage
	Export   Export
	Log      Log
}

type Server struct {
	Port          string
	GinMode       string
	AllowOrigins  []string
	PublicBaseURL string
}

type Database struct {
	Driver   string // "postgres" or "sqlite"
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	Path     string // sqlite file
}

type Auth struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type Storage struct {
	Dir           string
	MaxImageBytes int64
}

type Export struct {
	BatchSize                  int
	DeletedOptionPlaceholder   string
	MalformedAnswerPlaceholder string
}

type Log struct {
	Level      string
	Format     string // "console" or "json"
	File       string
	MaxSizeMB  int
	MaxAgeDays int
	MaxBackups int
	Compress   bool
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("GIN_MODE", "debug")
	viper.SetDefault("CORS_ALLOW_ORIGINS", "*")
	viper.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_PORT", "5432")
	viper.SetDefault("DATABASE_SSLMODE", "disable")
	viper.SetDefault("DATABASE_PATH", "forms.db")
	viper.SetDefault("JWT_TTL", "24h")
	viper.SetDefault("STORAGE_DIR", "uploads")
	viper.SetDefault("MAX_IMAGE_BYTES", 5<<20)
	viper.SetDefault("EXPORT_BATCH_SIZE", 200)
	viper.SetDefault("DELETED_OPTION_PLACEHOLDER", "[deleted option]")
	viper.SetDefault("MALFORMED_ANSWER_PLACEHOLDER", "[malformed answer]")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "console")
	viper.SetDefault("LOG_MAX_SIZE_MB", 100)
	viper.SetDefault("LOG_MAX_AGE_DAYS", 28)
	viper.SetDefault("LOG_MAX_BACKUPS", 3)
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Server.GinMode = viper.GetString("GIN_MODE")
	config.Server.AllowOrigins = splitList(viper.GetString("CORS_ALLOW_ORIGINS"))
	config.Server.PublicBaseURL = strings.TrimRight(viper.GetString("PUBLIC_BASE_URL"), "/")

	config.Database.Driver = strings.ToLower(viper.GetString("DATABASE_DRIVER"))
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")
	config.Database.SSLMode = viper.GetString("DATABASE_SSLMODE")
	config.Database.Path = viper.GetString("DATABASE_PATH")

	config.Auth.JWTSecret = viper.GetString("JWT_SECRET")
	config.Auth.TokenTTL = viper.GetDuration("JWT_TTL")

	config.Storage.Dir = viper.GetString("STORAGE_DIR")
	config.Storage.MaxImageBytes = viper.GetInt64("MAX_IMAGE_BYTES")

	config.Export.BatchSize = viper.GetInt("EXPORT_BATCH_SIZE")
	config.Export.DeletedOptionPlaceholder = viper.GetString("DELETED_OPTION_PLACEHOLDER")
	config.Export.MalformedAnswerPlaceholder = viper.GetString("MALFORMED_ANSWER_PLACEHOLDER")

	config.Log.Level = viper.GetString("LOG_LEVEL")
	config.Log.Format = viper.GetString("LOG_FORMAT")
	config.Log.File = viper.GetString("LOG_FILE")
	config.Log.MaxSizeMB = viper.GetInt("LOG_MAX_SIZE_MB")
	config.Log.MaxAgeDays = viper.GetInt("LOG_MAX_AGE_DAYS")
	config.Log.MaxBackups = viper.GetInt("LOG_MAX_BACKUPS")
	config.Log.Compress = viper.GetBool("LOG_COMPRESS")

	if config.Auth.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is not set, using an insecure development secret")
		config.Auth.JWTSecret = "formkit-dev-secret"
	}

	log.Info().Interface("config", config.Redacted()).Msg("Config loaded")
	return &config, nil
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	if c.Database.Password != "" {
		c.Database.Password = "***"
	}
	if c.Auth.JWTSecret != "" {
		c.Auth.JWTSecret = "***"
	}
	return c
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
