package database

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"erp-assistant/internal/common/config"
	apperrors "erp-assistant/internal/common/errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "erp.db")
	client, err := Open(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		SQLite: config.SQLiteConfig{Path: path},
	})
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, config.DriverSQLite, client.Driver)
	require.NoError(t, client.Ping(context.Background()))

	var one int
	require.NoError(t, client.DB.QueryRow("SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
}

func TestSQLClient_PingClosed(t *testing.T) {
	client, err := Open(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "erp.db")},
	})
	require.NoError(t, err)
	require.NoError(t, client.Close())

	err = client.Ping(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDatabaseConnectionFailed))
}

func TestOpen_Postgres(t *testing.T) {
	client, err := Open(config.DatabaseConfig{
		Driver:   config.DriverPostgres,
		Postgres: config.PostgresConfig{URL: "postgres://erp@localhost:5432/erp?sslmode=disable", MaxConnections: 4, MaxIdle: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, config.DriverPostgres, client.Driver)
	assert.NoError(t, client.Close())
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "mysql"})
	assert.Error(t, err)
}

func TestRedis_Ping(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewRedis(config.RedisConfig{Address: mr.Addr()})
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()))

	mr.Close()
	assert.Error(t, client.Ping(context.Background()))
}

func TestElasticsearch_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{server.URL}})
	require.NoError(t, err)
	assert.NoError(t, client.Ping(context.Background()))
}
