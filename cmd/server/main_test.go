package main

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-be/internal/config"
	"storefront-be/internal/middleware"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		AppPort:       "8080",
		AppEnv:        "test",
		JWTSecret:     "secret",
		StoreTimezone: "UTC",
	}
}

func TestNewServer(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()

	router := newServer(testConfig(), sqlDB, middleware.NewRateLimiter())
	require.NotNil(t, router)

	t.Run("Health pings the database", func(t *testing.T) {
		mock.ExpectPing()

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Metrics lists checkout counters", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "checkout_attempts_total 0")
	})

	t.Run("Checkout needs a user", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/checkout", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestRun(t *testing.T) {
	origInitDB := initDBFunc
	defer func() { initDBFunc = origInitDB }()
	initDBFunc = func(cfg *config.Config) *sql.DB {
		sqlDB, _, err := sqlmock.New()
		require.NoError(t, err)
		return sqlDB
	}

	origStartServer := startServerFunc
	defer func() { startServerFunc = origStartServer }()
	var addr string
	startServerFunc = func(srv *http.Server) error {
		addr = srv.Addr
		return http.ErrServerClosed
	}

	t.Setenv("APP_PORT", "9191")
	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "user")
	t.Setenv("DB_PASSWORD", "pass")
	t.Setenv("DB_NAME", "db")

	assert.NoError(t, run())
	assert.Equal(t, ":9191", addr)
}
