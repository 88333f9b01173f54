package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/adicipta/procure-api/internal/secrets"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	ERP       ERPConfig       `mapstructure:"erp"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Secrets   SecretsConfig   `mapstructure:"secrets"`
	Security  SecurityConfig  `mapstructure:"security"`
	APIKey    APIKeyConfig    `mapstructure:"apikey"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Jobs      JobsConfig      `mapstructure:"jobs"`
}

// AppConfig holds application metadata
type AppConfig struct {
	Name          string `mapstructure:"name"`
	Environment   string `mapstructure:"environment"`
	Version       string `mapstructure:"version"`
	EnableSwagger bool   `mapstructure:"enable_swagger"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string `mapstructure:"port"`
	ReadTimeout     int    `mapstructure:"read_timeout"`
	WriteTimeout    int    `mapstructure:"write_timeout"`
	IdleTimeout     int    `mapstructure:"idle_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

// ReadTimeoutDuration returns the read timeout as a duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns the write timeout as a duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// IdleTimeoutDuration returns the idle timeout as a duration
func (s *ServerConfig) IdleTimeoutDuration() time.Duration {
	return time.Duration(s.IdleTimeout) * time.Second
}

// ShutdownTimeoutDuration returns the graceful shutdown timeout as a duration
func (s *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(s.ShutdownTimeout) * time.Second
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            string `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	Name            string `mapstructure:"name"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// ConnectionString builds a lib/pq style DSN
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// ConnMaxLifetimeDuration returns the connection max lifetime as a duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Minute
}

// ERPConfig holds settings for the legacy ERP (MSSQL) sales order source
type ERPConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	QueryTimeout int    `mapstructure:"query_timeout"`
}

// QueryTimeoutDuration returns the ERP query timeout as a duration
func (e *ERPConfig) QueryTimeoutDuration() time.Duration {
	return time.Duration(e.QueryTimeout) * time.Second
}

// StorageConfig holds document storage settings
type StorageConfig struct {
	Mode             string `mapstructure:"mode"`
	LocalPath        string `mapstructure:"local_path"`
	ConnectionString string `mapstructure:"connection_string"`
	Container        string `mapstructure:"container"`
}

// SecretsConfig holds Azure Key Vault settings
type SecretsConfig struct {
	UseAzureKeyVault bool   `mapstructure:"use_azure_key_vault"`
	VaultURL         string `mapstructure:"vault_url"`
	CacheTTLMinutes  int    `mapstructure:"cache_ttl_minutes"`
}

// SecurityConfig holds token verification settings
type SecurityConfig struct {
	JWTSecret   string `mapstructure:"jwt_secret"`
	JWTIssuer   string `mapstructure:"jwt_issuer"`
	JWTAudience string `mapstructure:"jwt_audience"`
}

// APIKeyConfig holds the service-to-service API key
type APIKeyConfig struct {
	Key string `mapstructure:"key"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig holds request rate limiting settings
type RateLimitConfig struct {
	Enabled           bool     `mapstructure:"enabled"`
	RequestsPerMinute int      `mapstructure:"requests_per_minute"`
	WhitelistIPs      []string `mapstructure:"whitelist_ips"`
	WhitelistPaths    []string `mapstructure:"whitelist_paths"`
}

// JobsConfig holds scheduled job settings
type JobsConfig struct {
	EnableScheduler    bool   `mapstructure:"enable_scheduler"`
	ERPSyncCron        string `mapstructure:"erp_sync_cron"`
	ERPSyncTimeout     int    `mapstructure:"erp_sync_timeout"`
	ERPSyncOnStartup   bool   `mapstructure:"erp_sync_on_startup"`
	AuditRetentionCron string `mapstructure:"audit_retention_cron"`
	AuditRetentionDays int    `mapstructure:"audit_retention_days"`
}

// ERPSyncTimeoutDuration returns the ERP sync job timeout as a duration
func (j *JobsConfig) ERPSyncTimeoutDuration() time.Duration {
	return time.Duration(j.ERPSyncTimeout) * time.Second
}

// Load reads configuration from config.json, .env and environment variables
func Load() (*Config, error) {
	// .env is optional, ignore when absent
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Explicit fallbacks for secrets commonly injected as plain env vars
	if val := os.Getenv("DATABASE_PASSWORD"); val != "" {
		cfg.Database.Password = val
	}
	if val := os.Getenv("SECURITY_JWT_SECRET"); val != "" {
		cfg.Security.JWTSecret = val
	}
	if val := os.Getenv("APIKEY_KEY"); val != "" {
		cfg.APIKey.Key = val
	}
	if val := os.Getenv("STORAGE_CONNECTION_STRING"); val != "" {
		cfg.Storage.ConnectionString = val
	}
	if val := os.Getenv("ERP_PASSWORD"); val != "" {
		cfg.ERP.Password = val
	}

	return &cfg, nil
}

// LoadWithSecrets loads configuration and resolves sensitive values through
// Azure Key Vault when enabled for the environment. Vault resolution only
// applies in staging and production; everywhere else env/file values win.
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	env := strings.ToLower(cfg.App.Environment)
	if !cfg.Secrets.UseAzureKeyVault || (env != "staging" && env != "production") {
		return cfg, nil
	}

	provider, err := secrets.NewProvider(secrets.ProviderConfig{
		VaultURL:    cfg.Secrets.VaultURL,
		Environment: env,
		CacheTTL:    time.Duration(cfg.Secrets.CacheTTLMinutes) * time.Minute,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing secrets provider: %w", err)
	}

	cfg.Database.Password = provider.GetSecretOrEnv(ctx, "database-password", "DATABASE_PASSWORD", cfg.Database.Password)
	cfg.Security.JWTSecret = provider.GetSecretOrEnv(ctx, "jwt-secret", "SECURITY_JWT_SECRET", cfg.Security.JWTSecret)
	cfg.APIKey.Key = provider.GetSecretOrEnv(ctx, "api-key", "APIKEY_KEY", cfg.APIKey.Key)
	cfg.Storage.ConnectionString = provider.GetSecretOrEnv(ctx, "storage-connection-string", "STORAGE_CONNECTION_STRING", cfg.Storage.ConnectionString)
	cfg.ERP.Password = provider.GetSecretOrEnv(ctx, "erp-password", "ERP_PASSWORD", cfg.ERP.Password)

	logger.Info("configuration secrets resolved",
		zap.String("environment", env),
		zap.Bool("vault_enabled", provider.IsVaultEnabled()),
	)
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "procure-api")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.enable_swagger", true)

	// Server
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.idle_timeout", 60)
	v.SetDefault("server.shutdown_timeout", 30)

	// Database
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "procure")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30)

	// ERP source
	v.SetDefault("erp.enabled", false)
	v.SetDefault("erp.host", "")
	v.SetDefault("erp.user", "")
	v.SetDefault("erp.password", "")
	v.SetDefault("erp.query_timeout", 30)

	// Storage
	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.local_path", "./uploads")
	v.SetDefault("storage.connection_string", "")
	v.SetDefault("storage.container", "payment-documents")

	// Secrets
	v.SetDefault("secrets.use_azure_key_vault", false)
	v.SetDefault("secrets.vault_url", "")
	v.SetDefault("secrets.cache_ttl_minutes", 5)

	// Security
	v.SetDefault("security.jwt_secret", "")
	v.SetDefault("security.jwt_issuer", "procure-api")
	v.SetDefault("security.jwt_audience", "procure-clients")

	// API key
	v.SetDefault("apikey.key", "")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// CORS
	v.SetDefault("cors.allowed_origins", []string{})

	// Rate limiting
	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.requests_per_minute", 120)
	v.SetDefault("ratelimit.whitelist_ips", []string{})
	v.SetDefault("ratelimit.whitelist_paths", []string{"/health", "/health/*", "/swagger/*"})

	// Jobs
	v.SetDefault("jobs.enable_scheduler", false)
	v.SetDefault("jobs.erp_sync_cron", "0 0 * * * *")
	v.SetDefault("jobs.erp_sync_timeout", 300)
	v.SetDefault("jobs.erp_sync_on_startup", false)
	v.SetDefault("jobs.audit_retention_cron", "0 30 2 * * *")
	// 0 keeps the audit trail forever; retention is an explicit opt-in
	v.SetDefault("jobs.audit_retention_days", 0)
}
