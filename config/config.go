package config

import (
	"os"
	"time"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/spf13/viper"
)

type Config struct {
	GeneralVersion       string `mapstructure:"GENERAL_VERSION"`
	Environment          string `mapstructure:"ENVIRONMENT"`
	ServerPort           int    `mapstructure:"SERVER_PORT"`
	DatabaseHost         string `mapstructure:"DB_HOST"`
	DatabasePort         int    `mapstructure:"DB_PORT"`
	DatabaseName         string `mapstructure:"DB_NAME"`
	DatabaseUser         string `mapstructure:"DB_USER"`
	DatabasePassword     string `mapstructure:"DB_PASSWORD"`
	DatabaseCacheAddress string `mapstructure:"DB_CACHE_ADDRESS"`
	DatabaseCachePort    int    `mapstructure:"DB_CACHE_PORT"`
	DatabaseCacheReset   int    `mapstructure:"DB_CACHE_RESET"`
	CorsAllowOrigins     string `mapstructure:"CORS_ALLOW_ORIGINS"`
	JWTSecret            string `mapstructure:"JWT_SECRET"`
	JWTTTLHours          int    `mapstructure:"JWT_TTL_HOURS"`
	TMDBAPIKey           string `mapstructure:"TMDB_API_KEY"`
	TMDBBaseURL          string `mapstructure:"TMDB_BASE_URL"`
	TMDBImageBaseURL     string `mapstructure:"TMDB_IMAGE_BASE_URL"`
	TMDBTimeoutSeconds   int    `mapstructure:"TMDB_TIMEOUT_SECONDS"`
	TMDBCacheTTLMinutes  int    `mapstructure:"TMDB_CACHE_TTL_MINUTES"`
	VidsrcBaseURL        string `mapstructure:"VIDSRC_BASE_URL"`
	SchedulerEnabled     bool   `mapstructure:"SCHEDULER_ENABLED"`
}

const minJWTSecretLength = 16

var ConfigInstance Config

var defaults = map[string]any{
	"ENVIRONMENT":            "development",
	"SERVER_PORT":            8288,
	"DB_PORT":                5432,
	"DB_CACHE_PORT":          6379,
	"DB_CACHE_RESET":         -1,
	"CORS_ALLOW_ORIGINS":     "*",
	"JWT_TTL_HOURS":          72,
	"TMDB_BASE_URL":          "https://api.themoviedb.org/3",
	"TMDB_IMAGE_BASE_URL":    "https://image.tmdb.org/t/p/original",
	"TMDB_TIMEOUT_SECONDS":   8,
	"TMDB_CACHE_TTL_MINUTES": 60,
	"VIDSRC_BASE_URL":        "https://vidsrc.xyz/embed",
	"SCHEDULER_ENABLED":      false,
}

func New() (Config, error) {
	log := logger.New("config").Function("New")
	log.Info("Initializing config")

	for key, value := range defaults {
		viper.SetDefault(key, value)
	}

	viper.AutomaticEnv()

	envVars := []string{
		"GENERAL_VERSION", "ENVIRONMENT", "SERVER_PORT", "DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
		"DB_CACHE_ADDRESS", "DB_CACHE_PORT", "DB_CACHE_RESET",
		"CORS_ALLOW_ORIGINS",
		"JWT_SECRET", "JWT_TTL_HOURS",
		"TMDB_API_KEY", "TMDB_BASE_URL", "TMDB_IMAGE_BASE_URL", "TMDB_TIMEOUT_SECONDS", "TMDB_CACHE_TTL_MINUTES",
		"VIDSRC_BASE_URL", "SCHEDULER_ENABLED",
	}

	for _, env := range envVars {
		if err := viper.BindEnv(env); err != nil {
			log.Warn("Failed to bind environment variable", "env", env, "error", err)
		}
	}

	// Defaults make viper.IsSet always true, so probe the environment directly.
	if hasEnv("SERVER_PORT", "DB_HOST") {
		log.Info("Environment variables detected, skipping file loading")
	} else {
		log.Info("Environment variables not found, attempting to load from files")

		viper.SetConfigFile(".env")
		viper.SetConfigType("env")

		if err := viper.ReadInConfig(); err != nil {
			log.Warn("Could not find .env file", "error", err)
		} else {
			log.Info("Loaded .env file")
		}

		viper.SetConfigFile(".env.local")
		if err := viper.MergeInConfig(); err != nil {
			log.Debug("No .env.local file found", "error", err)
		} else {
			log.Info("Loaded .env.local overrides")
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, log.Err("Fatal error: could not unmarshal config", err)
	}

	if err := validateConfig(config, log); err != nil {
		return Config{}, err
	}

	log.Info(
		"Successfully initialized config",
		"environment", config.Environment,
		"port", config.ServerPort,
		"scheduler", config.SchedulerEnabled,
		"tmdbConfigured", config.TMDBAPIKey != "",
	)
	return ConfigInstance, nil
}

func GetConfig() Config {
	return ConfigInstance
}

func (c Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLHours) * time.Hour
}

func (c Config) TMDBTimeout() time.Duration {
	return time.Duration(c.TMDBTimeoutSeconds) * time.Second
}

func (c Config) TMDBCacheTTL() time.Duration {
	return time.Duration(c.TMDBCacheTTLMinutes) * time.Minute
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func hasEnv(keys ...string) bool {
	for _, key := range keys {
		if _, ok := os.LookupEnv(key); !ok {
			return false
		}
	}
	return true
}

func validateConfig(config Config, log logger.Logger) error {
	if config.ServerPort <= 0 {
		return log.Error(
			"Fatal error: invalid server port",
			"port", config.ServerPort,
		)
	}

	if len(config.JWTSecret) < minJWTSecretLength {
		return log.Error(
			"Fatal error: JWT_SECRET must be at least 16 characters",
			"length", len(config.JWTSecret),
		)
	}

	if config.JWTTTLHours <= 0 {
		return log.Error(
			"Fatal error: invalid JWT_TTL_HOURS",
			"hours", config.JWTTTLHours,
		)
	}

	if config.TMDBTimeoutSeconds < 1 || config.TMDBTimeoutSeconds > 60 {
		return log.Error(
			"Fatal error: TMDB_TIMEOUT_SECONDS must be between 1 and 60",
			"seconds", config.TMDBTimeoutSeconds,
		)
	}

	if config.TMDBCacheTTLMinutes < 0 {
		return log.Error(
			"Fatal error: invalid TMDB_CACHE_TTL_MINUTES",
			"minutes", config.TMDBCacheTTLMinutes,
		)
	}

	if config.TMDBAPIKey == "" {
		log.Warn("TMDB_API_KEY not set, metadata provider calls will be unavailable")
	}

	ConfigInstance = config
	return nil
}
