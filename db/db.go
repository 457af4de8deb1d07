// Package db 提供了基于 GORM 的数据库组件。
//
// db 组件借用 SQLite 连接器的客户端，在其上提供：
//   - 作用域连接：WithConn 为一次调用独占一条连接，返回前一定归还
//   - 事务管理
//   - SQL 日志适配到 clog，可选的 otelgorm 链路追踪
//
// 基本使用：
//
//	conn, _ := connector.NewSQLite(&cfg.Storage, connector.WithLogger(logger))
//	defer conn.Close()
//	conn.Connect(ctx)
//
//	database, _ := db.New(&db.Config{}, db.WithSQLiteConnector(conn), db.WithLogger(logger))
//
//	err := database.WithConn(ctx, func(tx *gorm.DB) error {
//		return tx.Create(&record).Error
//	})
package db

import (
	"context"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/gorm"

	"github.com/ceyewan/shardmanager/clog"
	"github.com/ceyewan/shardmanager/xerrors"
)

// DB 定义了数据库组件的核心能力
type DB interface {
	// DB 获取绑定 ctx 的 *gorm.DB，连接由连接池按语句借还
	DB(ctx context.Context) *gorm.DB

	// WithConn 借出一条专用连接执行 fn，fn 返回后连接立即归还
	// fn 中的 tx 仅在回调内有效
	WithConn(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Transaction 执行事务操作
	Transaction(ctx context.Context, fn func(ctx context.Context, tx *gorm.DB) error) error

	// Close 关闭组件，连接本身由连接器负责
	Close() error
}

// database 是 DB 接口的实现
type database struct {
	client *gorm.DB
	logger clog.Logger
}

// New 创建数据库组件实例
//
// 必须通过 WithSQLiteConnector 注入已连接的连接器。
func New(cfg *Config, opts ...Option) (DB, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Wrapf(err, "invalid db config")
	}

	opt := options{}
	for _, o := range opts {
		o(&opt)
	}
	if opt.logger == nil {
		opt.logger = clog.Discard()
	}

	if opt.sqliteConnector == nil {
		return nil, ErrSQLiteConnectorRequired
	}
	base := opt.sqliteConnector.GetClient()
	if base == nil {
		return nil, xerrors.Wrapf(ErrNotConnected, "connector %s", opt.sqliteConnector.Name())
	}

	if opt.tracer != nil {
		plugin := otelgorm.NewPlugin(
			otelgorm.WithTracerProvider(opt.tracer),
			otelgorm.WithDBName(opt.sqliteConnector.Name()),
		)
		if err := base.Use(plugin); err != nil {
			return nil, xerrors.Wrapf(err, "failed to register otelgorm plugin")
		}
	}

	client := base.Session(&gorm.Session{
		NewDB:  true,
		Logger: newGormLogger(opt.logger, opt.silentMode, cfg.SlowThreshold),
	})

	return &database{
		client: client,
		logger: opt.logger,
	}, nil
}

// DB 获取底层的 *gorm.DB 实例
func (d *database) DB(ctx context.Context) *gorm.DB {
	return d.client.WithContext(ctx)
}

// WithConn 基于 gorm 的 Connection 实现，连接在 fn 返回后关闭归还
func (d *database) WithConn(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.client.WithContext(ctx).Connection(fn)
}

// Transaction 执行事务操作
func (d *database) Transaction(ctx context.Context, fn func(ctx context.Context, tx *gorm.DB) error) error {
	return d.client.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, tx)
	})
}

// Close 关闭组件
func (d *database) Close() error {
	// GORM 的连接由连接器管理，这里不需要额外关闭
	return nil
}
