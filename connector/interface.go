// Package connector 管理底层存储连接的生命周期。
//
// 连接器只负责建立、检查和释放连接，业务组件（如 db）借用连接器的客户端，
// 不应调用 Close()。应用层按照 LIFO 顺序释放资源。
//
// 基本使用：
//
//	conn, err := connector.NewSQLite(&connector.SQLiteConfig{
//		Path:        "/data/shardmanager.db",
//		BusyTimeout: 5 * time.Second,
//	}, connector.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer conn.Close()
//
//	if err := conn.Connect(ctx); err != nil {
//		return err
//	}
package connector

import (
	"context"

	"gorm.io/gorm"
)

// Connector 定义连接器的通用行为，所有方法并发安全。
type Connector interface {
	// Connect 建立连接，幂等。
	//
	// 返回错误：
	//   - ErrConfig: 配置无效或数据目录无法创建
	//   - ErrConnection: 连接建立失败
	Connect(ctx context.Context) error

	// Close 关闭连接并释放资源，幂等。
	Close() error

	// HealthCheck 通过 ping 检查连接，并更新 IsHealthy 的缓存结果。
	HealthCheck(ctx context.Context) error

	// IsHealthy 返回最后一次 HealthCheck 的结果
	IsHealthy() bool

	// Name 返回连接实例名称
	Name() string
}

// TypedConnector 提供类型安全的客户端访问。
type TypedConnector[T any] interface {
	Connector

	// GetClient 返回底层客户端，Connect 之前或 Close 之后返回 nil
	GetClient() T
}

// SQLiteConnector SQLite 连接器接口，基于 GORM。
type SQLiteConnector interface {
	TypedConnector[*gorm.DB]
}
