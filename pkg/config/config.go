package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	Sheets        SheetsConfig
	Cache         CacheConfig
	JWT           JWTConfig
	Admin         AdminConfig
	SMTP          SMTPConfig
	Redis         RedisConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Sheets.validate(cfg.FeatureFlags); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"WILDNUTS_APP_ENV" default:"dev"`
	Port         string `envconfig:"WILDNUTS_APP_PORT" default:"8000"`
	LogLevel     string `envconfig:"WILDNUTS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WILDNUTS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// SheetsConfig locates the backing spreadsheet and its service-account
// credentials. Credentials come either from an inline JSON blob or a key file
// path; the blob wins when both are set.
type SheetsConfig struct {
	SpreadsheetID   string `envconfig:"WILDNUTS_SHEET_ID"`
	CredentialsJSON string `envconfig:"GOOGLE_CREDENTIALS_JSON"`
	CredentialsFile string `envconfig:"GOOGLE_CREDENTIALS_FILE" default:"google_credentials.json"`
}

func (s SheetsConfig) validate(flags FeatureFlagsConfig) error {
	if flags.UseMemoryStore {
		return nil
	}
	if s.SpreadsheetID == "" {
		return fmt.Errorf("WILDNUTS_SHEET_ID is required unless the memory store is enabled")
	}
	return nil
}

type CacheConfig struct {
	TTL time.Duration `envconfig:"WILDNUTS_CACHE_TTL" default:"300s"`
}

type JWTConfig struct {
	Secret          string `envconfig:"WILDNUTS_JWT_SECRET" required:"true"`
	Issuer          string `envconfig:"WILDNUTS_JWT_ISSUER" default:"the-wild-nuts"`
	ExpirationHours int    `envconfig:"WILDNUTS_JWT_EXPIRATION_HOURS" default:"24"`
}

// TokenTTL returns the access token lifetime.
func (j JWTConfig) TokenTTL() time.Duration {
	if j.ExpirationHours <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationHours) * time.Hour
}

// AdminConfig carries the single operator identity that bypasses the Users
// worksheet on login.
type AdminConfig struct {
	Email       string `envconfig:"WILDNUTS_ADMIN_EMAIL"`
	SecurityKey string `envconfig:"WILDNUTS_ADMIN_KEY"`
}

func (a AdminConfig) Enabled() bool {
	return a.Email != "" && a.SecurityKey != ""
}

type SMTPConfig struct {
	Host     string `envconfig:"SMTP_SERVER" default:"smtp.gmail.com"`
	Port     int    `envconfig:"SMTP_PORT" default:"587"`
	Email    string `envconfig:"SMTP_EMAIL"`
	Password string `envconfig:"SMTP_PASSWORD"`
	FromName string `envconfig:"SMTP_FROM_NAME" default:"The Wild Nuts"`
}

// Configured reports whether outbound mail can actually be sent. When false
// the mailer logs messages instead of dialing out.
func (s SMTPConfig) Configured() bool {
	return s.Email != "" && s.Password != ""
}

type RedisConfig struct {
	URL          string        `envconfig:"WILDNUTS_REDIS_URL"`
	Address      string        `envconfig:"WILDNUTS_REDIS_ADDR"`
	Password     string        `envconfig:"WILDNUTS_REDIS_PASSWORD"`
	DB           int           `envconfig:"WILDNUTS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WILDNUTS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WILDNUTS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WILDNUTS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WILDNUTS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WILDNUTS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Configured reports whether a redis endpoint was provided. Rate limiting is
// skipped when it was not.
func (r RedisConfig) Configured() bool {
	return r.URL != "" || r.Address != ""
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"WILDNUTS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"WILDNUTS_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"WILDNUTS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"WILDNUTS_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"WILDNUTS_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"WILDNUTS_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	// UseMemoryStore swaps the remote spreadsheet for an in-process store.
	// Dev convenience only, nothing persists across restarts.
	UseMemoryStore bool `envconfig:"WILDNUTS_USE_MEMORY_STORE" default:"false"`
}
