package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, StoreDriverPostgres, cfg.App.StoreDriver)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.False(t, cfg.GRPC.Enabled(), "gRPC deshabilitado por defecto")
	assert.False(t, cfg.Redis.Enabled(), "Redis deshabilitado por defecto")
	assert.False(t, cfg.Archive.Enabled(), "archivo S3 deshabilitado por defecto")
	assert.Equal(t, 24*time.Hour, cfg.Redis.IdempotencyTTL)
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("STORE_DRIVER", "MEMORY")
	v.Set("HTTP_PORT", "9090")
	v.Set("GRPC_PORT", "50051")
	v.Set("REDIS_ADDR", "localhost:6379")
	v.Set("IDEMPOTENCY_TTL", "90")
	v.Set("DB_STATEMENT_TIMEOUT", "750ms")
	v.Set("ARCHIVE_S3_BUCKET", "ledger-archive")
	v.Set("ARCHIVE_S3_PATH_STYLE", "true")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, StoreDriverMemory, cfg.App.StoreDriver)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.True(t, cfg.GRPC.Enabled())
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 90*time.Second, cfg.Redis.IdempotencyTTL)
	assert.Equal(t, 750*time.Millisecond, cfg.DB.StatementTime)
	assert.True(t, cfg.Archive.Enabled())
	assert.True(t, cfg.Archive.PathStyle)
}

func TestFromViper_DriverDesconocido(t *testing.T) {
	v := viper.New()
	v.Set("STORE_DRIVER", "sqlite")

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "activos", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/activos?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://otro"
	assert.Equal(t, "postgres://otro", c.ConnectionString())
}
