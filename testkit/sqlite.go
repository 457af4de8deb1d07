package testkit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ceyewan/shardmanager/connector"
)

// NewSQLiteConfig 返回位于 t.TempDir() 的 SQLite 测试配置
//
// 连接池不保留空闲连接，内存库会随最后一条连接关闭而消失，
// 所以测试统一使用临时文件。
func NewSQLiteConfig(t *testing.T) *connector.SQLiteConfig {
	t.Helper()
	return &connector.SQLiteConfig{
		Name:        "sqlite-" + NewID(),
		Path:        filepath.Join(t.TempDir(), "data", "test.db"),
		BusyTimeout: 5 * time.Second,
	}
}

// NewSQLiteConnector 获取已连接的 SQLite 连接器
// 生命周期由 t.Cleanup 管理
func NewSQLiteConnector(t *testing.T) connector.SQLiteConnector {
	t.Helper()
	cfg := NewSQLiteConfig(t)
	conn, err := connector.NewSQLite(cfg, connector.WithLogger(NewLogger()))
	require.NoError(t, err, "failed to create sqlite connector")

	err = conn.Connect(context.Background())
	require.NoError(t, err, "failed to connect to sqlite")

	t.Cleanup(func() {
		_ = conn.Close()
	})

	return conn
}
