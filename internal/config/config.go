package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for our application
type Config struct {
	Port        string
	Origin      string
	Environment string

	// SecretKey signs access tokens.
	SecretKey        string
	JWTRefreshSecret string

	JWTExpirationMinutes      int
	JWTRefreshExpirationHours int

	// PDFDirectory holds the ward_<id>_records.pdf files when Google Drive
	// is not configured.
	PDFDirectory string
	// DataDirectory receives the SQLite files and the Drive download cache.
	DataDirectory string

	Extractor string // "line" or "regex"

	Database DatabaseConfig

	Google GoogleDriveConfig

	Log LogConfig
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Dir string
}

// GoogleDriveConfig holds the Drive sync settings. Empty FolderID disables
// Drive and the server serves local PDFs only.
type GoogleDriveConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	FolderID     string
	TokenFile    string
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	jwtExpMinutes, err := strconv.Atoi(getEnv("JWT_EXPIRATION_MINUTES", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_MINUTES: %w", err)
	}
	jwtRefreshExpHours, err := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168")) // 7 days
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_HOURS: %w", err)
	}

	dataDir := getEnv("DATA_DIRECTORY", ".")

	return &Config{
		Port:                      getEnv("PORT", "5000"),
		Origin:                    getEnv("ORIGIN", "http://localhost:3000"),
		Environment:               getEnv("APP_ENV", "development"),
		SecretKey:                 getEnv("SECRET_KEY", "change-me-in-production"),
		JWTRefreshSecret:          getEnv("JWT_REFRESH_SECRET", "change-me-too"),
		JWTExpirationMinutes:      jwtExpMinutes,
		JWTRefreshExpirationHours: jwtRefreshExpHours,
		PDFDirectory:              getEnv("PDF_DIRECTORY", "pdfs"),
		DataDirectory:             dataDir,
		Extractor:                 getEnv("PDF_EXTRACTOR", "line"),
		Database:                  DatabaseConfig{Dir: dataDir},
		Google: GoogleDriveConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GOOGLE_REDIRECT_URI", ""),
			FolderID:     getEnv("GOOGLE_DRIVE_FOLDER_ID", ""),
			TokenFile:    getEnv("GOOGLE_TOKEN_FILE", "token.json"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
