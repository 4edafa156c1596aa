package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultSheetTab is the spreadsheet tab used when GSHEET_TAB is unset.
const DefaultSheetTab = "Respuestas"

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Survey   SurveyConfig
	Sheets   SheetsConfig
	Redis    RedisConfig
	Database DatabaseConfig
	OTEL     OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// LogConfig holds logger configuration
type LogConfig struct {
	Env   string
	Level string
}

// SurveyConfig holds survey intake configuration
type SurveyConfig struct {
	// PublicURL is the link shown on the landing page.
	PublicURL        string
	DataDir          string
	JournalFile      string
	DefinitionPath   string
	RateLimitPerHour int
}

// SheetsConfig holds Google Sheets forwarding configuration
type SheetsConfig struct {
	SpreadsheetID   string
	Tab             string
	CredentialsJSON string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("PORT", getEnvAsInt("SERVER_PORT", 8080)),
		},
		Log: LogConfig{
			Env:   getEnv("APP_ENV", "production"),
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Survey: SurveyConfig{
			PublicURL:        getEnv("SURVEY_URL", ""),
			DataDir:          getEnv("DATA_DIR", "data"),
			JournalFile:      getEnv("JOURNAL_FILE", "respuestas.jsonl"),
			DefinitionPath:   getEnv("SURVEY_DEFINITION", ""),
			RateLimitPerHour: getEnvAsInt("SUBMIT_RATE_LIMIT", 0),
		},
		Sheets: SheetsConfig{
			SpreadsheetID:   getEnv("GSHEET_ID", ""),
			Tab:             getEnv("GSHEET_TAB", DefaultSheetTab),
			CredentialsJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "encuesta"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "kinesiogame-encuesta"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if cfg.Survey.JournalFile == "" || strings.ContainsRune(cfg.Survey.JournalFile, os.PathSeparator) {
		return nil, fmt.Errorf("JOURNAL_FILE must be a plain file name, got %q", cfg.Survey.JournalFile)
	}
	if cfg.Survey.RateLimitPerHour < 0 {
		return nil, fmt.Errorf("SUBMIT_RATE_LIMIT must not be negative, got %d", cfg.Survey.RateLimitPerHour)
	}

	return cfg, nil
}

// JournalPath returns the location of the local submission journal
func (c *SurveyConfig) JournalPath() string {
	return filepath.Join(c.DataDir, c.JournalFile)
}

// Enabled reports whether rows should be forwarded to Google Sheets
func (c *SheetsConfig) Enabled() bool {
	return c.SpreadsheetID != ""
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// getEnv trims surrounding whitespace; a blank value counts as unset.
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := getEnv(key, ""); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := getEnv(key, ""); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
