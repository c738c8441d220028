package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("GEMINI_API_KEY", "")

	path := writeConfig(t, "app:\n  name: erp-assistant\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "./sql_app.db", cfg.Database.SQLite.Path)
	assert.Equal(t, ProviderGenAI, cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
	assert.Equal(t, 8000, cfg.Assistant.ContextBudget)
	assert.Equal(t, 100, cfg.Assistant.QueryLimit)
	assert.Equal(t, ":8000", cfg.HTTP.Address)
	assert.Equal(t, []string{"http://localhost:5173", "http://127.0.0.1:5173"}, cfg.HTTP.AllowedOrigins)
	assert.False(t, cfg.Database.Redis.Enabled())
	assert.False(t, cfg.Database.Elasticsearch.Enabled())
}

func TestLoadFromFile_EnvironmentOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://erp:secret@db:5432/erp?sslmode=disable")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("ERP_REDIS_ADDR", "redis:6379")

	path := writeConfig(t, `
database:
  redis:
    address: ${ERP_REDIS_ADDR}
assistant:
  context_budget: 4000
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://erp:secret@db:5432/erp?sslmode=disable", cfg.Database.Postgres.GetDSN())
	assert.Equal(t, "test-key", cfg.LLM.APIKey)
	assert.Equal(t, "redis:6379", cfg.Database.Redis.Address)
	assert.Equal(t, 4000, cfg.Assistant.ContextBudget)
}

func TestLoadFromFile_SQLiteURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite:///./data/erp.db")

	cfg, err := LoadFromFile(writeConfig(t, "app:\n  name: erp\n"))
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "./data/erp.db", cfg.Database.SQLite.Path)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "unknown driver",
			body: "database:\n  driver: mysql\n",
			want: "database.driver",
		},
		{
			name: "http provider without base url",
			body: "llm:\n  provider: http\n",
			want: "llm.base_url",
		},
		{
			name: "camunda without broker",
			body: "camunda:\n  enabled: true\n",
			want: "camunda.broker_address",
		},
		{
			name: "audit without elasticsearch",
			body: "audit:\n  enabled: true\n",
			want: "database.elasticsearch.addresses",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	p := PostgresConfig{Host: "localhost", Port: 5432, User: "erp", Password: "pw", Database: "erp", SSLMode: "disable"}
	assert.Equal(t, "host=localhost port=5432 user=erp password=pw dbname=erp sslmode=disable", p.GetDSN())
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}
