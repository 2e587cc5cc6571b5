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

	CORS      CORSConfig
	Log       LogConfig
	Scheduler SchedulerConfig
	Datasets  DatasetsConfig
	Reports   ReportsConfig
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig carries engine defaults applied when a generate request
// leaves a knob unset.
type SchedulerConfig struct {
	DefaultSlotsPerDay   int
	DefaultSlotDuration  float64
	DefaultEfficiency    float64
	SpacingWindow        int
	BlockConflictingDays bool
	AnnealingIterations  int
	Seed                 int64
	ResultTTL            time.Duration
}

// DatasetsConfig governs the in-memory dataset store.
type DatasetsConfig struct {
	TTL            time.Duration
	MaxUploadBytes int64
	PreviewRows    int
}

// ReportsConfig configures asynchronous PDF report generation.
type ReportsConfig struct {
	Enabled           bool
	StorageDir        string
	WorkerConcurrency int
	WorkerRetries     int
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

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduler = SchedulerConfig{
		DefaultSlotsPerDay:   v.GetInt("SCHEDULER_SLOTS_PER_DAY"),
		DefaultSlotDuration:  v.GetFloat64("SCHEDULER_SLOT_DURATION_HOURS"),
		DefaultEfficiency:    v.GetFloat64("SCHEDULER_DEFAULT_EFFICIENCY"),
		SpacingWindow:        v.GetInt("SCHEDULER_SPACING_WINDOW"),
		BlockConflictingDays: v.GetBool("SCHEDULER_BLOCK_CONFLICTING_DAYS"),
		AnnealingIterations:  v.GetInt("SCHEDULER_ANNEALING_ITERATIONS"),
		Seed:                 v.GetInt64("SCHEDULER_SEED"),
		ResultTTL:            parseDuration(v.GetString("SCHEDULER_RESULT_TTL"), 2*time.Hour),
	}

	maxUpload := v.GetInt64("DATASETS_MAX_UPLOAD_BYTES")
	if maxUpload <= 0 {
		maxUpload = 10 * 1024 * 1024
	}
	cfg.Datasets = DatasetsConfig{
		TTL:            parseDuration(v.GetString("DATASETS_TTL"), 12*time.Hour),
		MaxUploadBytes: maxUpload,
		PreviewRows:    v.GetInt("DATASETS_PREVIEW_ROWS"),
	}

	cfg.Reports = ReportsConfig{
		Enabled:           v.GetBool("ENABLE_REPORTS"),
		StorageDir:        v.GetString("REPORTS_STORAGE_DIR"),
		WorkerConcurrency: v.GetInt("REPORTS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("REPORTS_WORKER_RETRIES"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCHEDULER_SLOTS_PER_DAY", 2)
	v.SetDefault("SCHEDULER_SLOT_DURATION_HOURS", 2.0)
	v.SetDefault("SCHEDULER_DEFAULT_EFFICIENCY", 0.9)
	v.SetDefault("SCHEDULER_SPACING_WINDOW", 3)
	v.SetDefault("SCHEDULER_BLOCK_CONFLICTING_DAYS", true)
	v.SetDefault("SCHEDULER_ANNEALING_ITERATIONS", 200)
	v.SetDefault("SCHEDULER_SEED", 0)
	v.SetDefault("SCHEDULER_RESULT_TTL", "2h")

	v.SetDefault("DATASETS_TTL", "12h")
	v.SetDefault("DATASETS_MAX_UPLOAD_BYTES", 10*1024*1024)
	v.SetDefault("DATASETS_PREVIEW_ROWS", 5)

	v.SetDefault("ENABLE_REPORTS", true)
	v.SetDefault("REPORTS_STORAGE_DIR", "./reports")
	v.SetDefault("REPORTS_WORKER_CONCURRENCY", 1)
	v.SetDefault("REPORTS_WORKER_RETRIES", 3)
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
