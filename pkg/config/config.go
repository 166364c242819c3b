package config

import (
	"errors"
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
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Cache    CacheConfig
	Ranking  RankingConfig
	Exports  ExportsConfig
	Schedule ScheduleConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig governs Redis-backed read caching for public listings.
type CacheConfig struct {
	Enabled    bool
	RegionsTTL time.Duration
	RacesTTL   time.Duration
}

// RankingConfig controls screenshot uploads and OCR extraction.
type RankingConfig struct {
	Enabled           bool
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	MaxFileSizeBytes  int64
	AllowedMIMEs      []string
	WorkerConcurrency int
	WorkerRetries     int
	VisionURL         string
	VisionAPIKey      string
	VisionTimeout     time.Duration
}

// ExportsConfig toggles admin race-table exports.
type ExportsConfig struct {
	Enabled bool
}

// ScheduleConfig tunes the weekly/urgent schedule endpoints.
type ScheduleConfig struct {
	UrgentWithinHours int
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
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Cache = CacheConfig{
		Enabled:    v.GetBool("ENABLE_CACHE"),
		RegionsTTL: parseDuration(v.GetString("CACHE_REGIONS_TTL"), time.Hour),
		RacesTTL:   parseDuration(v.GetString("CACHE_RACES_TTL"), 5*time.Minute),
	}

	maxUploadSize := v.GetInt64("RANKING_MAX_FILE_SIZE")
	if maxUploadSize <= 0 {
		maxUploadSize = 10 * 1024 * 1024
	}
	cfg.Ranking = RankingConfig{
		Enabled:           v.GetBool("ENABLE_RANKING"),
		StorageDir:        v.GetString("RANKING_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("RANKING_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("RANKING_SIGNED_URL_TTL"), 30*time.Minute),
		MaxFileSizeBytes:  maxUploadSize,
		AllowedMIMEs:      splitAndTrim(v.GetString("RANKING_ALLOWED_MIME_TYPES")),
		WorkerConcurrency: v.GetInt("RANKING_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("RANKING_WORKER_RETRIES"),
		VisionURL:         v.GetString("RANKING_VISION_URL"),
		VisionAPIKey:      v.GetString("RANKING_VISION_API_KEY"),
		VisionTimeout:     parseDuration(v.GetString("RANKING_VISION_TIMEOUT"), 30*time.Second),
	}

	cfg.Exports = ExportsConfig{
		Enabled: v.GetBool("ENABLE_EXPORTS"),
	}

	cfg.Schedule = ScheduleConfig{
		UrgentWithinHours: v.GetInt("SCHEDULE_URGENT_WITHIN_HOURS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "mrth")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "mrth-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_REGIONS_TTL", "1h")
	v.SetDefault("CACHE_RACES_TTL", "5m")

	v.SetDefault("ENABLE_RANKING", false)
	v.SetDefault("RANKING_STORAGE_DIR", "./uploads")
	v.SetDefault("RANKING_SIGNED_URL_SECRET", "dev_ranking_secret")
	v.SetDefault("RANKING_SIGNED_URL_TTL", "30m")
	v.SetDefault("RANKING_MAX_FILE_SIZE", 10*1024*1024)
	v.SetDefault("RANKING_ALLOWED_MIME_TYPES", "image/jpeg,image/png,image/webp")
	v.SetDefault("RANKING_WORKER_CONCURRENCY", 1)
	v.SetDefault("RANKING_WORKER_RETRIES", 3)
	v.SetDefault("RANKING_VISION_URL", "")
	v.SetDefault("RANKING_VISION_API_KEY", "")
	v.SetDefault("RANKING_VISION_TIMEOUT", "30s")

	v.SetDefault("ENABLE_EXPORTS", false)

	v.SetDefault("SCHEDULE_URGENT_WITHIN_HOURS", 24)
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

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
