package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	envPort                  = "PORT"
	envServerReadTimeout     = "SERVER_READ_TIMEOUT"
	envServerWriteTimeout    = "SERVER_WRITE_TIMEOUT"
	envServerShutdownTimeout = "SERVER_SHUTDOWN_TIMEOUT"
	envEnableProfiling       = "ENABLE_PROFILING"
	envDBHost                = "DB_HOST"
	envDBPort                = "DB_PORT"
	envDBName                = "DB_NAME"
	envDBUser                = "DB_USER"
	envDBPassword            = "DB_PASSWORD"
	envDBSSLMode             = "DB_SSL_MODE"
	envDBMaxConns            = "DB_MAX_CONNS"
	envDBMinConns            = "DB_MIN_CONNS"
	envJWTSecret             = "JWT_SECRET"
	envSessionTTL            = "SESSION_TTL"
	envSessionCookieName     = "SESSION_COOKIE_NAME"
	envSessionCookieSecure   = "SESSION_COOKIE_SECURE"
	envAssetServiceURL       = "ASSET_SERVICE_URL"
	envEmployeeServiceURL    = "EMPLOYEE_SERVICE_URL"
	envInvoiceServiceURL     = "INVOICE_SERVICE_URL"
	envUpstreamTimeout       = "UPSTREAM_TIMEOUT"
	envLogLevel              = "LOG_LEVEL"
	envLogFormat             = "LOG_FORMAT"
)

const (
	defaultServerPort         = "3000"
	defaultServerReadTimeout  = 15 * time.Second
	defaultServerWriteTimeout = 30 * time.Second
	defaultServerShutdown     = 10 * time.Second
	defaultDBHost             = "localhost"
	defaultDBPort             = 5432
	defaultDBName             = "erp"
	defaultDBUser             = "erp_app"
	defaultDBSSLMode          = "disable"
	defaultDBMaxConns         = 10
	defaultDBMinConns         = 2
	defaultSessionTTL         = 24 * time.Hour
	defaultSessionCookieName  = "erp_session"
	defaultUpstreamTimeout    = 10 * time.Second
	defaultLogLevel           = "info"
	defaultLogFormat          = "json"
	minJWTSecretLength        = 32
	minUniqueCharsInSecret    = 16
	minRepeatedCharThreshold  = 4
	maxRepeatedChars          = 2

	errPortRequiredFmt         = "PORT must be set"
	errJWTSecretMinLengthFmt   = "JWT_SECRET must be at least %d characters"
	errJWTSecretLowEntropyFmt  = "JWT_SECRET has insufficient entropy (appears non-random). Use a cryptographically secure random string."
	errSessionTTLPositiveFmt   = "SESSION_TTL must be positive"
	errUpstreamTimeoutFmt      = "UPSTREAM_TIMEOUT must be positive"
	errInvalidConfigurationFmt = "invalid configuration: %w"
)

// Config is built once at startup and never mutated afterwards.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Upstreams UpstreamsConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// Profiling mounts pprof behind an authenticated admin session.
	Profiling bool
}

type DatabaseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	MaxConns int
	MinConns int
}

type AuthConfig struct {
	JWTSecret    string
	SessionTTL   time.Duration
	CookieName   string
	CookieSecure bool
}

// UpstreamsConfig holds the base URLs of the downstream services. The
// versioned path (/api/v1/...) is appended per route.
type UpstreamsConfig struct {
	AssetServiceURL    string
	EmployeeServiceURL string
	InvoiceServiceURL  string
	Timeout            time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	env := &envReader{}
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv(envPort, defaultServerPort),
			ReadTimeout:     env.durationValue(envServerReadTimeout, defaultServerReadTimeout),
			WriteTimeout:    env.durationValue(envServerWriteTimeout, defaultServerWriteTimeout),
			ShutdownTimeout: env.durationValue(envServerShutdownTimeout, defaultServerShutdown),
			Profiling:       env.boolValue(envEnableProfiling, false),
		},
		Database: loadDatabase(env),
		Auth: AuthConfig{
			JWTSecret:    os.Getenv(envJWTSecret),
			SessionTTL:   env.durationValue(envSessionTTL, defaultSessionTTL),
			CookieName:   getEnv(envSessionCookieName, defaultSessionCookieName),
			CookieSecure: env.boolValue(envSessionCookieSecure, true),
		},
		Upstreams: UpstreamsConfig{
			AssetServiceURL:    trimBaseURL(os.Getenv(envAssetServiceURL)),
			EmployeeServiceURL: trimBaseURL(os.Getenv(envEmployeeServiceURL)),
			InvoiceServiceURL:  trimBaseURL(os.Getenv(envInvoiceServiceURL)),
			Timeout:            env.durationValue(envUpstreamTimeout, defaultUpstreamTimeout),
		},
		Log: LogConfig{
			Level:  getEnv(envLogLevel, defaultLogLevel),
			Format: getEnv(envLogFormat, defaultLogFormat),
		},
	}

	if err := errors.Join(append(env.errs, cfg.Validate())...); err != nil {
		return nil, fmt.Errorf(errInvalidConfigurationFmt, err)
	}

	return cfg, nil
}

// LoadDatabase reads only the credential-store settings. The schema setup
// script uses it without needing the full service environment.
func LoadDatabase() (DatabaseConfig, error) {
	env := &envReader{}
	cfg := loadDatabase(env)
	return cfg, errors.Join(env.errs...)
}

func loadDatabase(env *envReader) DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv(envDBHost, defaultDBHost),
		Port:     env.intValue(envDBPort, defaultDBPort),
		Database: getEnv(envDBName, defaultDBName),
		User:     getEnv(envDBUser, defaultDBUser),
		Password: os.Getenv(envDBPassword),
		SSLMode:  getEnv(envDBSSLMode, defaultDBSSLMode),
		MaxConns: env.intValue(envDBMaxConns, defaultDBMaxConns),
		MinConns: env.intValue(envDBMinConns, defaultDBMinConns),
	}
}

// Validate reports every problem at once rather than stopping at the first.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New(errPortRequiredFmt))
	}

	if c.Database.Password == "" {
		errs = append(errs, errors.New(messages.requiredEnvNotSet(envDBPassword)))
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New(messages.requiredEnvNotSet(envJWTSecret)))
	} else if len(c.Auth.JWTSecret) < minJWTSecretLength {
		errs = append(errs, fmt.Errorf(errJWTSecretMinLengthFmt, minJWTSecretLength))
	} else if !hasMinimumEntropy(c.Auth.JWTSecret) {
		errs = append(errs, errors.New(errJWTSecretLowEntropyFmt))
	}

	if c.Auth.SessionTTL <= 0 {
		errs = append(errs, errors.New(errSessionTTLPositiveFmt))
	}

	if c.Upstreams.Timeout <= 0 {
		errs = append(errs, errors.New(errUpstreamTimeoutFmt))
	}

	for key, value := range map[string]string{
		envAssetServiceURL:    c.Upstreams.AssetServiceURL,
		envEmployeeServiceURL: c.Upstreams.EmployeeServiceURL,
		envInvoiceServiceURL:  c.Upstreams.InvoiceServiceURL,
	} {
		if err := validateBaseURL(key, value); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func validateBaseURL(key, value string) error {
	if value == "" {
		return errors.New(messages.requiredEnvNotSet(key))
	}

	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New(messages.invalidBaseURL(key, value))
	}

	return nil
}

func hasMinimumEntropy(secret string) bool {
	if len(secret) < minJWTSecretLength {
		return false
	}

	charCounts := make(map[rune]int)
	for _, char := range secret {
		charCounts[char]++
	}

	uniqueChars := len(charCounts)
	if uniqueChars < minUniqueCharsInSecret {
		return false
	}

	repeatedChars := 0
	for _, count := range charCounts {
		if count > len(secret)/minRepeatedCharThreshold {
			repeatedChars++
		}
	}

	return repeatedChars <= maxRepeatedChars
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func trimBaseURL(value string) string {
	return strings.TrimRight(strings.TrimSpace(value), "/")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envReader parses typed variables and keeps every malformed value so Load
// can report them together with the validation errors.
type envReader struct {
	errs []error
}

func (r *envReader) invalid(key, value, want string) {
	r.errs = append(r.errs, errors.New(messages.invalidValue(key, value, want)))
}

func (r *envReader) intValue(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(value)
	if err != nil {
		r.invalid(key, value, wantInteger)
		return defaultValue
	}
	return intVal
}

func (r *envReader) boolValue(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		r.invalid(key, value, wantBool)
		return defaultValue
	}
	return boolVal
}

// durationValue accepts a Go duration ("30s") or a bare number of minutes.
func (r *envReader) durationValue(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}
	r.invalid(key, value, wantDuration)
	return defaultValue
}
