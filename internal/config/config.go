package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers selectable via configuration.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Upload backends selectable via configuration.
const (
	UploadDisk       = "disk"
	UploadCloudinary = "cloudinary"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	StorageDriver          string
	DataDir                string
	SQLitePath             string
	DatabaseURL            string
	JWTSecret              string
	TokenTTL               time.Duration
	UploadDriver           string
	UploadDir              string
	MaxUploadMB            int
	SubmitRateLimit        int
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and an optional
// .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CLASSDESK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "ClassDesk API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("storage.driver", DriverFile)
	v.SetDefault("storage.data_dir", "./data")
	v.SetDefault("storage.sqlite_path", "./data/classdesk.db")
	v.SetDefault("token.ttl", "24h")
	v.SetDefault("upload.driver", UploadDisk)
	v.SetDefault("upload.dir", "./uploads")
	v.SetDefault("upload.max_mb", 25)
	v.SetDefault("submit.rate_limit", 10)
	v.SetDefault("cloudinary.folder", "classdesk/submissions")

	ttl, err := time.ParseDuration(v.GetString("token.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid token ttl: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		StorageDriver:          strings.ToLower(v.GetString("storage.driver")),
		DataDir:                v.GetString("storage.data_dir"),
		SQLitePath:             v.GetString("storage.sqlite_path"),
		DatabaseURL:            v.GetString("database.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		TokenTTL:               ttl,
		UploadDriver:           strings.ToLower(v.GetString("upload.driver")),
		UploadDir:              v.GetString("upload.dir"),
		MaxUploadMB:            v.GetInt("upload.max_mb"),
		SubmitRateLimit:        v.GetInt("submit.rate_limit"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
	}

	switch cfg.StorageDriver {
	case DriverFile, DriverSQLite, DriverPostgres:
	default:
		return Config{}, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	if cfg.StorageDriver == DriverPostgres && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided for the postgres driver")
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 25
	}

	if cfg.SubmitRateLimit <= 0 {
		cfg.SubmitRateLimit = 10
	}

	return cfg, nil
}
