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

	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Cache     CacheConfig
	Scheduler SchedulerConfig
	Exports   ExportsConfig
	Branches  BranchesConfig
}

type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig governs caching of detection results.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// SchedulerConfig carries the timetable engine tuning knobs.
type SchedulerConfig struct {
	Holidays              []string
	HardSubjects          []string
	ResolverSlots         []string
	DefaultRooms          []string
	DefaultFaculty        []string
	AdvisorSlots          []string
	MaxSessions           int
	MaxSuggestedConflicts int
	ResolvedFraction      float64
	RunTTL                time.Duration
	UploadMaxBytes        int64
}

// ExportsConfig configures asynchronous timetable exports.
type ExportsConfig struct {
	Enabled           bool
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	CleanupInterval   time.Duration
	WorkerConcurrency int
	WorkerRetries     int
}

// BranchesConfig lists the branches accepted by the multi-branch endpoints.
type BranchesConfig struct {
	Names []string
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
		Enabled:         v.GetBool("DB_ENABLED"),
		Host:            v.GetString("DB_HOST"),
		Port:            v.GetInt("DB_PORT"),
		User:            v.GetString("DB_USER"),
		Password:        v.GetString("DB_PASSWORD"),
		Name:            v.GetString("DB_NAME"),
		SSLMode:         v.GetString("DB_SSL_MODE"),
		MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
		ConnMaxLifetime: parseDuration(v.GetString("DB_CONN_MAX_LIFETIME"), 30*time.Minute),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("CACHE_ENABLED"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 10*time.Minute),
	}

	cfg.Scheduler = SchedulerConfig{
		Holidays:              splitAndTrim(v.GetString("SCHEDULER_HOLIDAYS")),
		HardSubjects:          splitAndTrim(v.GetString("SCHEDULER_HARD_SUBJECTS")),
		ResolverSlots:         splitAndTrim(v.GetString("SCHEDULER_RESOLVER_SLOTS")),
		DefaultRooms:          splitAndTrim(v.GetString("SCHEDULER_DEFAULT_ROOMS")),
		DefaultFaculty:        splitAndTrim(v.GetString("SCHEDULER_DEFAULT_FACULTY")),
		AdvisorSlots:          splitAndTrim(v.GetString("SCHEDULER_ADVISOR_SLOTS")),
		MaxSessions:           v.GetInt("SCHEDULER_MAX_SESSIONS"),
		MaxSuggestedConflicts: v.GetInt("SCHEDULER_MAX_SUGGESTED_CONFLICTS"),
		ResolvedFraction:      v.GetFloat64("SCHEDULER_RESOLVED_FRACTION"),
		RunTTL:                parseDuration(v.GetString("SCHEDULER_RUN_TTL"), 24*time.Hour),
		UploadMaxBytes:        v.GetInt64("SCHEDULER_UPLOAD_MAX_BYTES"),
	}

	cfg.Exports = ExportsConfig{
		Enabled:           v.GetBool("ENABLE_EXPORTS"),
		StorageDir:        v.GetString("EXPORT_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("EXPORT_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("EXPORT_SIGNED_URL_TTL"), 24*time.Hour),
		CleanupInterval:   parseDuration(v.GetString("EXPORT_CLEANUP_INTERVAL"), time.Hour),
		WorkerConcurrency: v.GetInt("EXPORT_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("EXPORT_WORKER_RETRIES"),
	}

	cfg.Branches = BranchesConfig{Names: splitAndTrim(strings.ToUpper(v.GetString("BRANCHES")))}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_ENABLED", false)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "exam_timetable")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CACHE_ENABLED", true)
	v.SetDefault("CACHE_TTL", "10m")

	v.SetDefault("SCHEDULER_HOLIDAYS", "2025-01-26,2025-08-15,2025-10-02")
	v.SetDefault("SCHEDULER_HARD_SUBJECTS", "mathematics,physics,chemistry,programming")
	v.SetDefault("SCHEDULER_RESOLVER_SLOTS", "09:00-12:00,11:00-14:00,13:00-16:00,15:00-18:00")
	v.SetDefault("SCHEDULER_DEFAULT_ROOMS", "101,102,103")
	v.SetDefault("SCHEDULER_DEFAULT_FACULTY", "Faculty1,Faculty2,Faculty3")
	v.SetDefault("SCHEDULER_ADVISOR_SLOTS", "09:00,11:00,12:00,14:00,15:00,16:00")
	v.SetDefault("SCHEDULER_MAX_SESSIONS", 500)
	v.SetDefault("SCHEDULER_MAX_SUGGESTED_CONFLICTS", 5)
	v.SetDefault("SCHEDULER_RESOLVED_FRACTION", 0.85)
	v.SetDefault("SCHEDULER_RUN_TTL", "24h")
	v.SetDefault("SCHEDULER_UPLOAD_MAX_BYTES", 5<<20)

	v.SetDefault("ENABLE_EXPORTS", true)
	v.SetDefault("EXPORT_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORT_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORT_SIGNED_URL_TTL", "24h")
	v.SetDefault("EXPORT_CLEANUP_INTERVAL", "1h")
	v.SetDefault("EXPORT_WORKER_CONCURRENCY", 1)
	v.SetDefault("EXPORT_WORKER_RETRIES", 3)

	v.SetDefault("BRANCHES", "CSE,ISE,AIML,ECE,EEE,MECH,CIVIL,OTHERS")
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
