package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	S3       S3Config
	Log      LogConfig
	Analyzer AnalyzerConfig
	Upload   UploadConfig
	Persist  PersistConfig
	Audit    AuditConfig
	CORS     CORSConfig
	Auth     AuthConfig
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
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	Name           string `mapstructure:"name"`
	SSLMode        string `mapstructure:"sslmode"`
	MaxOpen        int    `mapstructure:"max_open"`
	MaxIdle        int    `mapstructure:"max_idle"`
	MigrationsPath string `mapstructure:"migrations_path"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds object storage settings. Endpoint is set for S3-compatible stores.
type S3Config struct {
	Region        string        `mapstructure:"region"`
	Bucket        string        `mapstructure:"bucket"`
	Endpoint      string        `mapstructure:"endpoint"`
	AccessKey     string        `mapstructure:"access_key"`
	SecretKey     string        `mapstructure:"secret_key"`
	KeyPrefix     string        `mapstructure:"key_prefix"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AnalyzerProviderConfig holds settings for one OpenAI-compatible model provider.
type AnalyzerProviderConfig struct {
	Provider    string `mapstructure:"provider"`
	APIKey      string `mapstructure:"api_key"`
	BaseURL     string `mapstructure:"base_url"`
	TextModel   string `mapstructure:"text_model"`
	VisionModel string `mapstructure:"vision_model"`
	MaxTokens   int    `mapstructure:"max_tokens"`
	MaxRetries  int    `mapstructure:"max_retries"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// AnalyzerConfig holds the document analyzer providers.
type AnalyzerConfig struct {
	Primary   AnalyzerProviderConfig `mapstructure:"primary"`
	Secondary AnalyzerProviderConfig `mapstructure:"secondary"`
	// MaxTextChars caps how much extracted document text is sent to the model.
	MaxTextChars int `mapstructure:"max_text_chars"`
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (a *AnalyzerConfig) SecondaryConfig() *AnalyzerProviderConfig {
	if a.Secondary.Provider != "" {
		return &a.Secondary
	}
	return nil
}

// UploadConfig holds upload validation and deduplication settings.
type UploadConfig struct {
	MaxFileSizeMB     int64    `mapstructure:"max_file_size_mb"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
	HashSecret        string   `mapstructure:"hash_secret"`
}

// MaxFileSize returns the upload limit in bytes.
func (u *UploadConfig) MaxFileSize() int64 {
	return u.MaxFileSizeMB * 1024 * 1024
}

// PersistConfig holds document persistence retry settings.
type PersistConfig struct {
	MaxRetries int           `mapstructure:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

// AuditConfig holds audit engine settings.
type AuditConfig struct {
	// EnforceDateWindow makes date_range policies compare real dates instead of
	// looking for "old" or "expired" in the value.
	EnforceDateWindow bool `mapstructure:"enforce_date_window"`
	SeedOnStartup     bool `mapstructure:"seed_on_startup"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AuthConfig holds bearer token settings. Auth is off unless Enabled.
type AuthConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Secret      string        `mapstructure:"secret"`
	Issuer      string        `mapstructure:"issuer"`
	TokenExpiry time.Duration `mapstructure:"token_expiry"`
}

// Load reads configuration from environment variables with the BILLAUDIT_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BILLAUDIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "billaudit")
	v.SetDefault("db.password", "billaudit_secret")
	v.SetDefault("db.name", "billaudit_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)
	v.SetDefault("db.migrations_path", "db/migrations")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "billaudit-documents")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.key_prefix", "documents")
	v.SetDefault("s3.presign_expiry", "1h")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Analyzer defaults (Groq's OpenAI-compatible endpoint)
	v.SetDefault("analyzer.primary.provider", "groq")
	v.SetDefault("analyzer.primary.api_key", "")
	v.SetDefault("analyzer.primary.base_url", "")
	v.SetDefault("analyzer.primary.text_model", "")
	v.SetDefault("analyzer.primary.vision_model", "")
	v.SetDefault("analyzer.primary.max_tokens", 1000)
	v.SetDefault("analyzer.primary.max_retries", 2)
	v.SetDefault("analyzer.primary.timeout_secs", 60)
	v.SetDefault("analyzer.secondary.provider", "")
	v.SetDefault("analyzer.secondary.api_key", "")
	v.SetDefault("analyzer.secondary.base_url", "")
	v.SetDefault("analyzer.secondary.text_model", "")
	v.SetDefault("analyzer.secondary.vision_model", "")
	v.SetDefault("analyzer.secondary.max_tokens", 1000)
	v.SetDefault("analyzer.secondary.max_retries", 2)
	v.SetDefault("analyzer.secondary.timeout_secs", 60)
	v.SetDefault("analyzer.max_text_chars", 4000)

	// Upload defaults
	v.SetDefault("upload.max_file_size_mb", 10)
	v.SetDefault("upload.allowed_extensions", "pdf,png,jpg,jpeg,gif,bmp,tiff")
	v.SetDefault("upload.hash_secret", "change-me-in-production")

	// Persistence defaults
	v.SetDefault("persist.max_retries", 3)
	v.SetDefault("persist.retry_delay", "1s")

	// Audit defaults
	v.SetDefault("audit.enforce_date_window", false)
	v.SetDefault("audit.seed_on_startup", true)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173")

	// Auth defaults
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.secret", "change-me-in-production")
	v.SetDefault("auth.issuer", "billaudit")
	v.SetDefault("auth.token_expiry", "720h")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                     "BILLAUDIT_SERVER_PORT",
		"server.read_timeout":             "BILLAUDIT_SERVER_READ_TIMEOUT",
		"server.write_timeout":            "BILLAUDIT_SERVER_WRITE_TIMEOUT",
		"server.environment":              "BILLAUDIT_SERVER_ENVIRONMENT",
		"db.host":                         "BILLAUDIT_DB_HOST",
		"db.port":                         "BILLAUDIT_DB_PORT",
		"db.user":                         "BILLAUDIT_DB_USER",
		"db.password":                     "BILLAUDIT_DB_PASSWORD",
		"db.name":                         "BILLAUDIT_DB_NAME",
		"db.sslmode":                      "BILLAUDIT_DB_SSLMODE",
		"db.max_open":                     "BILLAUDIT_DB_MAX_OPEN",
		"db.max_idle":                     "BILLAUDIT_DB_MAX_IDLE",
		"db.migrations_path":              "BILLAUDIT_DB_MIGRATIONS_PATH",
		"s3.region":                       "BILLAUDIT_S3_REGION",
		"s3.bucket":                       "BILLAUDIT_S3_BUCKET",
		"s3.endpoint":                     "BILLAUDIT_S3_ENDPOINT",
		"s3.access_key":                   "BILLAUDIT_S3_ACCESS_KEY",
		"s3.secret_key":                   "BILLAUDIT_S3_SECRET_KEY",
		"s3.key_prefix":                   "BILLAUDIT_S3_KEY_PREFIX",
		"s3.presign_expiry":               "BILLAUDIT_S3_PRESIGN_EXPIRY",
		"log.level":                       "BILLAUDIT_LOG_LEVEL",
		"log.format":                      "BILLAUDIT_LOG_FORMAT",
		"analyzer.primary.provider":       "BILLAUDIT_ANALYZER_PRIMARY_PROVIDER",
		"analyzer.primary.api_key":        "BILLAUDIT_ANALYZER_PRIMARY_API_KEY",
		"analyzer.primary.base_url":       "BILLAUDIT_ANALYZER_PRIMARY_BASE_URL",
		"analyzer.primary.text_model":     "BILLAUDIT_ANALYZER_PRIMARY_TEXT_MODEL",
		"analyzer.primary.vision_model":   "BILLAUDIT_ANALYZER_PRIMARY_VISION_MODEL",
		"analyzer.primary.max_tokens":     "BILLAUDIT_ANALYZER_PRIMARY_MAX_TOKENS",
		"analyzer.primary.max_retries":    "BILLAUDIT_ANALYZER_PRIMARY_MAX_RETRIES",
		"analyzer.primary.timeout_secs":   "BILLAUDIT_ANALYZER_PRIMARY_TIMEOUT_SECS",
		"analyzer.secondary.provider":     "BILLAUDIT_ANALYZER_SECONDARY_PROVIDER",
		"analyzer.secondary.api_key":      "BILLAUDIT_ANALYZER_SECONDARY_API_KEY",
		"analyzer.secondary.base_url":     "BILLAUDIT_ANALYZER_SECONDARY_BASE_URL",
		"analyzer.secondary.text_model":   "BILLAUDIT_ANALYZER_SECONDARY_TEXT_MODEL",
		"analyzer.secondary.vision_model": "BILLAUDIT_ANALYZER_SECONDARY_VISION_MODEL",
		"analyzer.secondary.max_tokens":   "BILLAUDIT_ANALYZER_SECONDARY_MAX_TOKENS",
		"analyzer.secondary.max_retries":  "BILLAUDIT_ANALYZER_SECONDARY_MAX_RETRIES",
		"analyzer.secondary.timeout_secs": "BILLAUDIT_ANALYZER_SECONDARY_TIMEOUT_SECS",
		"analyzer.max_text_chars":         "BILLAUDIT_ANALYZER_MAX_TEXT_CHARS",
		"upload.max_file_size_mb":         "BILLAUDIT_UPLOAD_MAX_FILE_SIZE_MB",
		"upload.allowed_extensions":       "BILLAUDIT_UPLOAD_ALLOWED_EXTENSIONS",
		"upload.hash_secret":              "BILLAUDIT_UPLOAD_HASH_SECRET",
		"persist.max_retries":             "BILLAUDIT_PERSIST_MAX_RETRIES",
		"persist.retry_delay":             "BILLAUDIT_PERSIST_RETRY_DELAY",
		"audit.enforce_date_window":       "BILLAUDIT_AUDIT_ENFORCE_DATE_WINDOW",
		"audit.seed_on_startup":           "BILLAUDIT_AUDIT_SEED_ON_STARTUP",
		"cors.allowed_origins":            "BILLAUDIT_CORS_ALLOWED_ORIGINS",
		"auth.enabled":                    "BILLAUDIT_AUTH_ENABLED",
		"auth.secret":                     "BILLAUDIT_AUTH_SECRET",
		"auth.issuer":                     "BILLAUDIT_AUTH_ISSUER",
		"auth.token_expiry":               "BILLAUDIT_AUTH_TOKEN_EXPIRY",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if BILLAUDIT_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("BILLAUDIT_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:           v.GetString("db.host"),
		Port:           v.GetInt("db.port"),
		User:           v.GetString("db.user"),
		Password:       v.GetString("db.password"),
		Name:           v.GetString("db.name"),
		SSLMode:        v.GetString("db.sslmode"),
		MaxOpen:        v.GetInt("db.max_open"),
		MaxIdle:        v.GetInt("db.max_idle"),
		MigrationsPath: v.GetString("db.migrations_path"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		KeyPrefix:     v.GetString("s3.key_prefix"),
		PresignExpiry: v.GetDuration("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Analyzer = AnalyzerConfig{
		Primary:      providerConfig(v, "analyzer.primary"),
		Secondary:    providerConfig(v, "analyzer.secondary"),
		MaxTextChars: v.GetInt("analyzer.max_text_chars"),
	}

	var extensions []string
	for _, e := range splitList(v.GetString("upload.allowed_extensions")) {
		extensions = append(extensions, strings.ToLower(strings.TrimPrefix(e, ".")))
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB:     v.GetInt64("upload.max_file_size_mb"),
		AllowedExtensions: extensions,
		HashSecret:        v.GetString("upload.hash_secret"),
	}
	cfg.Persist = PersistConfig{
		MaxRetries: v.GetInt("persist.max_retries"),
		RetryDelay: v.GetDuration("persist.retry_delay"),
	}
	cfg.Audit = AuditConfig{
		EnforceDateWindow: v.GetBool("audit.enforce_date_window"),
		SeedOnStartup:     v.GetBool("audit.seed_on_startup"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.Auth = AuthConfig{
		Enabled:     v.GetBool("auth.enabled"),
		Secret:      v.GetString("auth.secret"),
		Issuer:      v.GetString("auth.issuer"),
		TokenExpiry: v.GetDuration("auth.token_expiry"),
	}

	if cfg.Persist.MaxRetries < 1 {
		return nil, fmt.Errorf("persist.max_retries must be at least 1, got %d", cfg.Persist.MaxRetries)
	}
	if cfg.Upload.MaxFileSizeMB <= 0 {
		return nil, fmt.Errorf("upload.max_file_size_mb must be positive, got %d", cfg.Upload.MaxFileSizeMB)
	}

	return cfg, nil
}

func providerConfig(v *viper.Viper, prefix string) AnalyzerProviderConfig {
	return AnalyzerProviderConfig{
		Provider:    v.GetString(prefix + ".provider"),
		APIKey:      v.GetString(prefix + ".api_key"),
		BaseURL:     v.GetString(prefix + ".base_url"),
		TextModel:   v.GetString(prefix + ".text_model"),
		VisionModel: v.GetString(prefix + ".vision_model"),
		MaxTokens:   v.GetInt(prefix + ".max_tokens"),
		MaxRetries:  v.GetInt(prefix + ".max_retries"),
		TimeoutSecs: v.GetInt(prefix + ".timeout_secs"),
	}
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
