package config

import (
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/almoxops/replen/internal/engine"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Cache    CacheConfig
	Replen   ReplenConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type AppConfig struct {
	DataDir   string
	ExportDir string
}

type CacheConfig struct {
	Enabled          bool
	RedisURL         string
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	RedisDB          int
	ReportTTLSeconds int
}

// ReplenConfig is the engine's default tuning. Per-request overrides go
// through query parameters or CLI flags; these are the fallbacks.
type ReplenConfig struct {
	// Source selects where the server reads its data: files, postgres
	// or sheet.
	Source     string
	LedgerPath string
	ItemsPath  string
	LedgerURL  string
	ItemsURL   string

	Horizons             []int
	Mode                 string
	WindowTrailingDays   int
	WarningDays          int
	CriticalCoverageDays float64
	HighVariabilityPct   float64
	MinHistoryCount      int
	SafetyBufferPct      float64
	ExcludeDates         []time.Time
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "replen")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("APP_DATA_DIR", "./data/input")
		viper.SetDefault("APP_EXPORT_DIR", "./data/output")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_REPORT_TTL_SECONDS", 60)
		viper.SetDefault("REPLEN_SOURCE", "files")
		viper.SetDefault("REPLEN_LEDGER_PATH", "./data/input/ledger.csv")
		viper.SetDefault("REPLEN_ITEMS_PATH", "./data/input/items.csv")
		viper.SetDefault("REPLEN_LEDGER_URL", "")
		viper.SetDefault("REPLEN_ITEMS_URL", "")
		viper.SetDefault("REPLEN_HORIZONS", []int{7, 15, 30, 45})
		viper.SetDefault("REPLEN_MODE", string(engine.ModeDemand))
		viper.SetDefault("REPLEN_WINDOW_TRAILING_DAYS", 0)
		viper.SetDefault("REPLEN_WARNING_DAYS", 15)
		viper.SetDefault("REPLEN_CRITICAL_COVERAGE_DAYS", 7.0)
		viper.SetDefault("REPLEN_HIGH_VARIABILITY_PCT", 100.0)
		viper.SetDefault("REPLEN_MIN_HISTORY_COUNT", 5)
		viper.SetDefault("REPLEN_SAFETY_BUFFER_PCT", 0.0)
		viper.SetDefault("REPLEN_EXCLUDE_DATES", "")

		// Read from environment variables
		viper.AutomaticEnv()

		// Ensure data directories exist
		ensureDir(viper.GetString("APP_DATA_DIR"))
		ensureDir(viper.GetString("APP_EXPORT_DIR"))

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			App: AppConfig{
				DataDir:   viper.GetString("APP_DATA_DIR"),
				ExportDir: viper.GetString("APP_EXPORT_DIR"),
			},
			Cache: CacheConfig{
				Enabled:          viper.GetBool("CACHE_ENABLED"),
				RedisURL:         viper.GetString("REDIS_URL"),
				RedisHost:        viper.GetString("REDIS_HOST"),
				RedisPort:        viper.GetString("REDIS_PORT"),
				RedisPassword:    viper.GetString("REDIS_PASSWORD"),
				RedisDB:          viper.GetInt("REDIS_DB"),
				ReportTTLSeconds: viper.GetInt("CACHE_REPORT_TTL_SECONDS"),
			},
			Replen: ReplenConfig{
				Source:               viper.GetString("REPLEN_SOURCE"),
				LedgerPath:           viper.GetString("REPLEN_LEDGER_PATH"),
				ItemsPath:            viper.GetString("REPLEN_ITEMS_PATH"),
				LedgerURL:            viper.GetString("REPLEN_LEDGER_URL"),
				ItemsURL:             viper.GetString("REPLEN_ITEMS_URL"),
				Horizons:             viper.GetIntSlice("REPLEN_HORIZONS"),
				Mode:                 viper.GetString("REPLEN_MODE"),
				WindowTrailingDays:   viper.GetInt("REPLEN_WINDOW_TRAILING_DAYS"),
				WarningDays:          viper.GetInt("REPLEN_WARNING_DAYS"),
				CriticalCoverageDays: viper.GetFloat64("REPLEN_CRITICAL_COVERAGE_DAYS"),
				HighVariabilityPct:   viper.GetFloat64("REPLEN_HIGH_VARIABILITY_PCT"),
				MinHistoryCount:      viper.GetInt("REPLEN_MIN_HISTORY_COUNT"),
				SafetyBufferPct:      viper.GetFloat64("REPLEN_SAFETY_BUFFER_PCT"),
				ExcludeDates:         parseExcludeDates(viper.GetString("REPLEN_EXCLUDE_DATES")),
			},
		}
	})

	return instance
}

// EngineParams builds engine parameters from the configured defaults.
func (c *Config) EngineParams() engine.Params {
	p := engine.DefaultParams()
	if len(c.Replen.Horizons) > 0 {
		p.Horizons = c.Replen.Horizons
	}
	if c.Replen.Mode != "" {
		p.Mode = engine.ClassifierMode(c.Replen.Mode)
	}
	p.Window.TrailingDays = c.Replen.WindowTrailingDays
	p.WarningDays = float64(c.Replen.WarningDays)
	p.CriticalCoverageDays = c.Replen.CriticalCoverageDays
	p.HighVariabilityPct = c.Replen.HighVariabilityPct
	p.MinHistoryCount = c.Replen.MinHistoryCount
	p.SafetyBufferPct = c.Replen.SafetyBufferPct
	return p
}

// parseExcludeDates reads a comma-separated list of YYYY-MM-DD dates.
// Unparseable entries are dropped rather than failing startup.
func parseExcludeDates(raw string) []time.Time {
	var dates []time.Time
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if d, err := time.Parse("2006-01-02", part); err == nil {
			dates = append(dates, d)
		}
	}
	return dates
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
