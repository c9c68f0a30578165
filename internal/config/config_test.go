package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "k3J9xQ2mV7pL4wR8tY1zB6nC5hF0dG2s"

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv(envDBPassword, "postgres")
	t.Setenv(envJWTSecret, testSecret)
	t.Setenv(envAssetServiceURL, "http://asset-service:8001/")
	t.Setenv(envEmployeeServiceURL, "http://employee-service:8002")
	t.Setenv(envInvoiceServiceURL, "https://invoice.internal")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, defaultServerPort, cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "erp_session", cfg.Auth.CookieName)
	assert.True(t, cfg.Auth.CookieSecure)
	assert.Equal(t, 10*time.Second, cfg.Upstreams.Timeout)
	assert.Equal(t, "http://asset-service:8001", cfg.Upstreams.AssetServiceURL)
	assert.Equal(t, "http://employee-service:8002", cfg.Upstreams.EmployeeServiceURL)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(envUpstreamTimeout, "2s")
	t.Setenv(envSessionTTL, "90")
	t.Setenv(envSessionCookieSecure, "false")
	t.Setenv(envDBMaxConns, "25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.Upstreams.Timeout)
	assert.Equal(t, 90*time.Minute, cfg.Auth.SessionTTL)
	assert.False(t, cfg.Auth.CookieSecure)
	assert.Equal(t, 25, cfg.Database.MaxConns)
}

func TestLoad_ReportsMalformedValues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(envUpstreamTimeout, "soon")
	t.Setenv(envSessionTTL, "1day")
	t.Setenv(envDBPort, "five-four-three-two")
	t.Setenv(envSessionCookieSecure, "maybe")

	_, err := Load()
	require.Error(t, err)

	for _, key := range []string{envUpstreamTimeout, envSessionTTL, envDBPort, envSessionCookieSecure} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestLoadDatabase(t *testing.T) {
	t.Setenv(envDBHost, "db.internal")
	t.Setenv(envDBPort, "6543")

	cfg, err := LoadDatabase()
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, 6543, cfg.Port)

	t.Setenv(envDBMaxConns, "lots")
	_, err = LoadDatabase()
	assert.ErrorContains(t, err, envDBMaxConns)
}

func TestLoad_ReportsAllMissingValues(t *testing.T) {
	t.Setenv(envDBPassword, "")
	t.Setenv(envJWTSecret, "")
	t.Setenv(envAssetServiceURL, "")
	t.Setenv(envEmployeeServiceURL, "")
	t.Setenv(envInvoiceServiceURL, "")

	_, err := Load()
	require.Error(t, err)

	for _, key := range []string{envDBPassword, envJWTSecret, envAssetServiceURL, envEmployeeServiceURL, envInvoiceServiceURL} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestValidate_RejectsRelativeUpstream(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(envInvoiceServiceURL, "invoice-service:8003")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), envInvoiceServiceURL)
}

func TestValidate_WeakSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(envJWTSecret, "short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32")

	t.Setenv(envJWTSecret, "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entropy")
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5432, User: "erp", Password: "pw", Database: "erp", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=erp password=pw dbname=erp sslmode=disable", db.DSN())
}
