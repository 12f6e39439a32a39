package config

import (
	"errors"
	"io/fs"
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

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Cache      CacheConfig
	Discipline DisciplineConfig
	Alerts     AlertsConfig
	Reminders  RemindersConfig
	Notify     NotifyConfig
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

	ConnMaxLifetime time.Duration
	ConnectAttempts int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Issuer     string
	CookieName string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig governs the Redis-backed read caches.
type CacheConfig struct {
	Enabled    bool
	SummaryTTL time.Duration
	KeyPrefix  string
}

// DisciplineConfig holds the escalation thresholds.
type DisciplineConfig struct {
	WarningThreshold      int
	SuspensionThreshold   int
	DefaultSuspensionDays int
	AutoSuspensionDays    int
}

// AlertsConfig tunes the attendance alert sweep.
type AlertsConfig struct {
	MinConsideredSessions int
	WarningRatio          float64
	CriticalRatio         float64
	Workers               int
	Schedule              string
}

// RemindersConfig tunes the upcoming session reminders.
type RemindersConfig struct {
	DaysAhead int
	Schedule  string
}

// NotifyConfig selects how outbound notifications leave the service.
type NotifyConfig struct {
	Driver    string
	QueueKey  string
	Sender    string
	HouseName string
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
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

		ConnMaxLifetime: parseDuration(v.GetString("DB_CONN_MAX_LIFETIME"), time.Hour),
		ConnectAttempts: positiveOr(v.GetInt("DB_CONNECT_ATTEMPTS"), 3),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Issuer:     v.GetString("JWT_ISSUER"),
		CookieName: v.GetString("JWT_COOKIE_NAME"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Cache = CacheConfig{
		Enabled:    v.GetBool("ENABLE_CACHE"),
		SummaryTTL: parseDuration(v.GetString("ATTENDANCE_SUMMARY_CACHE_TTL"), 5*time.Minute),
		KeyPrefix:  v.GetString("CACHE_KEY_PREFIX"),
	}

	cfg.Discipline = DisciplineConfig{
		WarningThreshold:      positiveOr(v.GetInt("DISCIPLINE_WARNING_THRESHOLD"), 3),
		SuspensionThreshold:   positiveOr(v.GetInt("DISCIPLINE_SUSPENSION_THRESHOLD"), 2),
		DefaultSuspensionDays: positiveOr(v.GetInt("DISCIPLINE_DEFAULT_SUSPENSION_DAYS"), 30),
		AutoSuspensionDays:    positiveOr(v.GetInt("DISCIPLINE_AUTO_SUSPENSION_DAYS"), 30),
	}

	cfg.Alerts = AlertsConfig{
		MinConsideredSessions: positiveOr(v.GetInt("ALERTS_MIN_SESSIONS"), 10),
		WarningRatio:          v.GetFloat64("ALERTS_WARNING_RATIO"),
		CriticalRatio:         v.GetFloat64("ALERTS_CRITICAL_RATIO"),
		Workers:               positiveOr(v.GetInt("ALERTS_WORKERS"), 4),
		Schedule:              v.GetString("ALERTS_SCHEDULE"),
	}

	cfg.Reminders = RemindersConfig{
		DaysAhead: positiveOr(v.GetInt("REMINDERS_DAYS_AHEAD"), 3),
		Schedule:  v.GetString("REMINDERS_SCHEDULE"),
	}

	cfg.Notify = NotifyConfig{
		Driver:    strings.ToLower(v.GetString("NOTIFY_DRIVER")),
		QueueKey:  v.GetString("NOTIFY_QUEUE_KEY"),
		Sender:    v.GetString("NOTIFY_SENDER"),
		HouseName: v.GetString("HOUSE_NAME"),
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
	v.SetDefault("DB_NAME", "terreiro_erp")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "1h")
	v.SetDefault("DB_CONNECT_ATTEMPTS", 3)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev-secret-change-me")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("JWT_COOKIE_NAME", "erp_auth")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("ATTENDANCE_SUMMARY_CACHE_TTL", "5m")
	v.SetDefault("CACHE_KEY_PREFIX", "terreiro:cache:")

	v.SetDefault("DISCIPLINE_WARNING_THRESHOLD", 3)
	v.SetDefault("DISCIPLINE_SUSPENSION_THRESHOLD", 2)
	v.SetDefault("DISCIPLINE_DEFAULT_SUSPENSION_DAYS", 30)
	v.SetDefault("DISCIPLINE_AUTO_SUSPENSION_DAYS", 30)

	v.SetDefault("ALERTS_MIN_SESSIONS", 10)
	v.SetDefault("ALERTS_WARNING_RATIO", 0.25)
	v.SetDefault("ALERTS_CRITICAL_RATIO", 0.50)
	v.SetDefault("ALERTS_WORKERS", 4)
	v.SetDefault("ALERTS_SCHEDULE", "0 7 * * 1")

	v.SetDefault("REMINDERS_DAYS_AHEAD", 3)
	v.SetDefault("REMINDERS_SCHEDULE", "0 9 * * *")

	v.SetDefault("NOTIFY_DRIVER", "log")
	v.SetDefault("NOTIFY_QUEUE_KEY", "terreiro:notifications")
	v.SetDefault("NOTIFY_SENDER", "")
	v.SetDefault("HOUSE_NAME", "Tenda Espírita Nossa Senhora da Glória")
}

func positiveOr(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
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
