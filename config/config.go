package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Credential is one entry of the admin credential table. Either a bcrypt
// PasswordHash or a plaintext Password must be set; the hash wins when both
// are present. Plaintext entries exist for local development only.
type Credential struct {
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	PasswordHash string `yaml:"password_hash"`
	Role         string `yaml:"role"`
}

type Config struct {
	// Server configuration
	Port        string
	Environment string

	// Spreadsheet configuration. SheetID empty means reads short-circuit
	// and return empty results instead of failing.
	SheetsBaseURL  string
	SheetID        string
	PurchasesSheet string
	EventsSheet    string
	ScriptURL      string

	// External services
	QRBaseURL   string
	QRSize      int
	CountryCode string
	AdminPhone  string

	// Cache configuration
	CacheTTL time.Duration
	RedisURL string

	// Fetch configuration
	FetchTimeout time.Duration
	LoadRetries  int
	RetryDelay   time.Duration

	// Auth configuration
	SessionTTL      time.Duration
	CredentialsFile string
	Credentials     []Credential

	// Rate limiting for the public purchase endpoint
	PurchaseRateLimit int
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		// Server
		Port:        getEnv("PORT", "8090"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Spreadsheet
		SheetsBaseURL:  getEnv("SHEETS_BASE_URL", "https://docs.google.com/spreadsheets"),
		SheetID:        getEnv("SHEET_ID", ""),
		PurchasesSheet: getEnv("PURCHASES_SHEET", "Hoja 1"),
		EventsSheet:    getEnv("EVENTS_SHEET", "Hoja 2"),
		ScriptURL:      getEnv("SHEETS_WEBAPP_URL", ""),

		// External services
		QRBaseURL:   getEnv("QR_BASE_URL", "https://quickchart.io/qr"),
		QRSize:      getEnvAsInt("QR_SIZE", 512),
		CountryCode: getEnv("PHONE_COUNTRY_CODE", "549"),
		AdminPhone:  getEnv("ADMIN_PHONE", ""),

		// Cache
		CacheTTL: getEnvAsDuration("CACHE_TTL", "30s"),
		RedisURL: getEnv("REDIS_URL", ""),

		// Fetch
		FetchTimeout: getEnvAsDuration("FETCH_TIMEOUT", "10s"),
		LoadRetries:  getEnvAsInt("LOAD_RETRIES", 3),
		RetryDelay:   getEnvAsDuration("RETRY_DELAY", "2s"),

		// Auth
		SessionTTL:      getEnvAsDuration("SESSION_TTL", "12h"),
		CredentialsFile: getEnv("CREDENTIALS_FILE", ""),

		// Rate limiting
		PurchaseRateLimit: getEnvAsInt("PURCHASE_RATE_LIMIT", 30),
	}

	creds, err := loadCredentials(cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}
	cfg.Credentials = creds

	return cfg, nil
}

// loadCredentials reads the yaml credential table, falling back to the
// development defaults when no file is configured.
func loadCredentials(path string) ([]Credential, error) {
	if path == "" {
		return []Credential{
			{Username: "admin", Password: "admin123", Role: "admin"},
			{Username: "super", Password: "super123", Role: "super-admin"},
		}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read credentials file: %w", err)
	}

	var doc struct {
		Users []Credential `yaml:"users"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parse credentials file: %w", err)
	}
	return doc.Users, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
