package postgres

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Activos-api/pkg/config"
)

func TestNewPoolConfig(t *testing.T) {
	cfg := config.DBConfig{
		Host: "db.internal", Port: 5433, User: "activos", Password: "p@ss:word", DBName: "activos",
		SSLMode: "disable", StatementTime: 3 * time.Second,
	}
	pc, err := newPoolConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", pc.ConnConfig.Host)
	assert.Equal(t, uint16(5433), pc.ConnConfig.Port)
	assert.Equal(t, "p@ss:word", pc.ConnConfig.Password)
	assert.Equal(t, int32(defaultMaxConns), pc.MaxConns)
	assert.Equal(t, "3000", pc.ConnConfig.RuntimeParams["statement_timeout"])
	assert.Equal(t, "3000", pc.ConnConfig.RuntimeParams["lock_timeout"])
	assert.NotNil(t, pc.AfterConnect)
}

func TestNewPoolConfig_DatabaseURL(t *testing.T) {
	pc, err := newPoolConfig(config.DBConfig{
		DatabaseURL: "postgres://u:p@example.com:6543/otra?sslmode=disable",
		Host:        "ignorado",
		MaxConns:    7,
	})
	require.NoError(t, err)
	assert.Equal(t, "example.com", pc.ConnConfig.Host)
	assert.Equal(t, "otra", pc.ConnConfig.Database)
	assert.Equal(t, int32(7), pc.MaxConns)
	_, ok := pc.ConnConfig.RuntimeParams["statement_timeout"]
	assert.False(t, ok, "sin DB_STATEMENT_TIMEOUT no se fija timeout")
}

func TestNewPoolConfig_ForceIPv4(t *testing.T) {
	lis, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer lis.Close()
	go func() {
		if c, err := lis.Accept(); err == nil {
			_ = c.Close()
		}
	}()

	pc, err := newPoolConfig(config.DBConfig{
		DatabaseURL: "postgres://u:p@localhost:5432/activos?sslmode=disable",
		ForceIPv4:   true,
	})
	require.NoError(t, err)

	conn, err := pc.ConnConfig.DialFunc(context.Background(), "tcp", lis.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	addr, ok := conn.RemoteAddr().(*net.TCPAddr)
	require.True(t, ok)
	assert.NotNil(t, addr.IP.To4())
}

func TestNewPoolConfig_DSNInvalido(t *testing.T) {
	_, err := newPoolConfig(config.DBConfig{DatabaseURL: "postgres://u:p@host:notaport/db"})
	assert.Error(t, err)
}
