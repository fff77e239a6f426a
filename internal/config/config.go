package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	JWT    JWTConfig
	S3     S3Config
	Log    LogConfig
	CORS   CORSConfig
	Email  EmailConfig
	Import ImportConfig
}

// ImportConfig holds invoice import settings.
type ImportConfig struct {
	DefaultProfitMargin float64 `mapstructure:"default_profit_margin"`
	// DefaultTaxRate is applied to invoice lines that state neither a rate nor
	// a tax amount. It is a percentage.
	DefaultTaxRate   float64 `mapstructure:"default_tax_rate"`
	MaxUploadMB      int64   `mapstructure:"max_upload_mb"`
	MaxEntryMB       int64   `mapstructure:"max_entry_mb"`
	MaxTotalMB       int64   `mapstructure:"max_total_mb"`
	MaxEnvelopeDepth int     `mapstructure:"max_envelope_depth"`
	ArchiveUploads   bool    `mapstructure:"archive_uploads"`
	NotifyOnImport   bool    `mapstructure:"notify_on_import"`
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c *ImportConfig) MaxUploadBytes() int64 { return c.MaxUploadMB << 20 }

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret            string        `mapstructure:"secret"`
	AccessTokenExpiry time.Duration `mapstructure:"access_expiry"`
	Issuer            string        `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the
// INVOICEBRIDGE_ prefix. A .env file in the working directory is loaded first
// when present; variables already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("config.Load: reading .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("INVOICEBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "invoicebridge")
	v.SetDefault("db.password", "invoicebridge_secret")
	v.SetDefault("db.name", "invoicebridge_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.issuer", "invoicebridge")

	// S3 defaults; an empty bucket disables archival
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@invoicebridge.local")
	v.SetDefault("email.from_name", "InvoiceBridge")
	v.SetDefault("email.frontend_url", "http://localhost:3000")

	// Import defaults
	v.SetDefault("import.default_profit_margin", 30)
	v.SetDefault("import.default_tax_rate", 19)
	v.SetDefault("import.max_upload_mb", 25)
	v.SetDefault("import.max_entry_mb", 20)
	v.SetDefault("import.max_total_mb", 50)
	v.SetDefault("import.max_envelope_depth", 3)
	v.SetDefault("import.archive_uploads", true)
	v.SetDefault("import.notify_on_import", false)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                  "INVOICEBRIDGE_SERVER_PORT",
		"server.read_timeout":          "INVOICEBRIDGE_SERVER_READ_TIMEOUT",
		"server.write_timeout":         "INVOICEBRIDGE_SERVER_WRITE_TIMEOUT",
		"server.environment":           "INVOICEBRIDGE_SERVER_ENVIRONMENT",
		"db.host":                      "INVOICEBRIDGE_DB_HOST",
		"db.port":                      "INVOICEBRIDGE_DB_PORT",
		"db.user":                      "INVOICEBRIDGE_DB_USER",
		"db.password":                  "INVOICEBRIDGE_DB_PASSWORD",
		"db.name":                      "INVOICEBRIDGE_DB_NAME",
		"db.sslmode":                   "INVOICEBRIDGE_DB_SSLMODE",
		"db.max_open":                  "INVOICEBRIDGE_DB_MAX_OPEN",
		"db.max_idle":                  "INVOICEBRIDGE_DB_MAX_IDLE",
		"jwt.secret":                   "INVOICEBRIDGE_JWT_SECRET",
		"jwt.access_expiry":            "INVOICEBRIDGE_JWT_ACCESS_EXPIRY",
		"jwt.issuer":                   "INVOICEBRIDGE_JWT_ISSUER",
		"s3.region":                    "INVOICEBRIDGE_S3_REGION",
		"s3.bucket":                    "INVOICEBRIDGE_S3_BUCKET",
		"s3.endpoint":                  "INVOICEBRIDGE_S3_ENDPOINT",
		"s3.access_key":                "INVOICEBRIDGE_S3_ACCESS_KEY",
		"s3.secret_key":                "INVOICEBRIDGE_S3_SECRET_KEY",
		"s3.presign_expiry":            "INVOICEBRIDGE_S3_PRESIGN_EXPIRY",
		"log.level":                    "INVOICEBRIDGE_LOG_LEVEL",
		"log.format":                   "INVOICEBRIDGE_LOG_FORMAT",
		"cors.allowed_origins":         "INVOICEBRIDGE_CORS_ALLOWED_ORIGINS",
		"email.provider":               "INVOICEBRIDGE_EMAIL_PROVIDER",
		"email.region":                 "INVOICEBRIDGE_EMAIL_REGION",
		"email.from_address":           "INVOICEBRIDGE_EMAIL_FROM_ADDRESS",
		"email.from_name":              "INVOICEBRIDGE_EMAIL_FROM_NAME",
		"email.frontend_url":           "INVOICEBRIDGE_EMAIL_FRONTEND_URL",
		"import.default_profit_margin": "INVOICEBRIDGE_IMPORT_DEFAULT_PROFIT_MARGIN",
		"import.default_tax_rate":      "INVOICEBRIDGE_IMPORT_DEFAULT_TAX_RATE",
		"import.max_upload_mb":         "INVOICEBRIDGE_IMPORT_MAX_UPLOAD_MB",
		"import.max_entry_mb":          "INVOICEBRIDGE_IMPORT_MAX_ENTRY_MB",
		"import.max_total_mb":          "INVOICEBRIDGE_IMPORT_MAX_TOTAL_MB",
		"import.max_envelope_depth":    "INVOICEBRIDGE_IMPORT_MAX_ENVELOPE_DEPTH",
		"import.archive_uploads":       "INVOICEBRIDGE_IMPORT_ARCHIVE_UPLOADS",
		"import.notify_on_import":      "INVOICEBRIDGE_IMPORT_NOTIFY_ON_IMPORT",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if INVOICEBRIDGE_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("INVOICEBRIDGE_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:            v.GetString("jwt.secret"),
		AccessTokenExpiry: v.GetDuration("jwt.access_expiry"),
		Issuer:            v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		FrontendURL: v.GetString("email.frontend_url"),
	}

	cfg.Import = ImportConfig{
		DefaultProfitMargin: v.GetFloat64("import.default_profit_margin"),
		DefaultTaxRate:      v.GetFloat64("import.default_tax_rate"),
		MaxUploadMB:         v.GetInt64("import.max_upload_mb"),
		MaxEntryMB:          v.GetInt64("import.max_entry_mb"),
		MaxTotalMB:          v.GetInt64("import.max_total_mb"),
		MaxEnvelopeDepth:    v.GetInt("import.max_envelope_depth"),
		ArchiveUploads:      v.GetBool("import.archive_uploads"),
		NotifyOnImport:      v.GetBool("import.notify_on_import"),
	}
	if cfg.Import.DefaultTaxRate < 0 || cfg.Import.DefaultTaxRate > 100 {
		return nil, fmt.Errorf("config.Load: import.default_tax_rate must be between 0 and 100, got %v", cfg.Import.DefaultTaxRate)
	}
	if cfg.Import.DefaultProfitMargin < 0 {
		return nil, fmt.Errorf("config.Load: import.default_profit_margin must not be negative, got %v", cfg.Import.DefaultProfitMargin)
	}

	return cfg, nil
}
