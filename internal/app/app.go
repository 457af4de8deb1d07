// Package app 负责组装历史记录服务：日志、指标、链路、存储、路由和 HTTP 服务。
package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/ceyewan/shardmanager/clog"
	"github.com/ceyewan/shardmanager/config"
	"github.com/ceyewan/shardmanager/connector"
	"github.com/ceyewan/shardmanager/db"
	"github.com/ceyewan/shardmanager/internal/api"
	"github.com/ceyewan/shardmanager/internal/history"
	"github.com/ceyewan/shardmanager/metrics"
	"github.com/ceyewan/shardmanager/ratelimit"
	"github.com/ceyewan/shardmanager/trace"
	"github.com/ceyewan/shardmanager/xerrors"
)

// Shutdown 资源释放函数
type Shutdown func(context.Context) error

// App 已组装好的服务
type App struct {
	cfg    *Config
	logger clog.Logger
	router *gin.Engine
	server *http.Server

	// 按创建顺序记录，关闭时倒序执行
	shutdowns []Shutdown
}

// NewLogger 按配置创建根 Logger，日志中带上请求 ID 和 TraceID
func NewLogger(cfg *clog.Config) (clog.Logger, error) {
	return clog.New(cfg,
		clog.WithNamespace(ServiceName),
		clog.WithContextField(api.RequestIDKey{}, "request_id"),
		clog.WithTraceContext(),
	)
}

// New 依次初始化链路、指标、存储和路由
//
// 任一步骤失败时，已创建的资源会被释放。
func New(ctx context.Context, cfg *Config, logger clog.Logger) (_ *App, err error) {
	if cfg == nil {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "app config is required")
	}
	if logger == nil {
		logger = clog.Discard()
	}

	a := &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			_ = a.Close(ctx)
		}
	}()

	var tp *sdktrace.TracerProvider
	if cfg.Trace.Enabled {
		tp, err = trace.Init(&cfg.Trace)
		if err != nil {
			return nil, xerrors.Wrap(err, "init trace")
		}
		a.shutdowns = append(a.shutdowns, tp.Shutdown)
	}

	meter, err := metrics.New(&cfg.Metrics, metrics.WithLogger(logger))
	if err != nil {
		return nil, xerrors.Wrap(err, "init metrics")
	}
	a.shutdowns = append(a.shutdowns, meter.Shutdown)

	conn, err := connector.NewSQLite(&cfg.Storage, connector.WithLogger(logger))
	if err != nil {
		return nil, xerrors.Wrap(err, "create sqlite connector")
	}
	if err = conn.Connect(ctx); err != nil {
		return nil, xerrors.Wrap(err, "connect sqlite")
	}
	a.shutdowns = append(a.shutdowns, func(context.Context) error { return conn.Close() })

	dbOpts := []db.Option{db.WithSQLiteConnector(conn), db.WithLogger(logger)}
	if tp != nil {
		dbOpts = append(dbOpts, db.WithTracer(tp))
	}
	database, err := db.New(nil, dbOpts...)
	if err != nil {
		return nil, xerrors.Wrap(err, "create db")
	}

	if err = history.EnsureSchema(ctx, database); err != nil {
		return nil, err
	}

	store, err := history.New(database, history.WithLogger(logger), history.WithMeter(meter))
	if err != nil {
		return nil, xerrors.Wrap(err, "create history store")
	}

	httpMetrics, err := metrics.NewHTTPServerMetrics(meter, ServiceName)
	if err != nil {
		return nil, xerrors.Wrap(err, "create http metrics")
	}

	routerOpts := api.RouterOptions{
		Store:       store,
		Logger:      logger,
		StaticDir:   cfg.Server.StaticDir,
		ServiceName: ServiceName,
		HTTPMetrics: httpMetrics,
	}
	if tp != nil {
		routerOpts.TracerProvider = tp
	}
	if cfg.RateLimit.Enabled {
		limiter, err := ratelimit.NewStandalone(nil, ratelimit.WithLogger(logger), ratelimit.WithMeter(meter))
		if err != nil {
			return nil, xerrors.Wrap(err, "create rate limiter")
		}
		a.shutdowns = append(a.shutdowns, func(context.Context) error { return limiter.Close() })
		routerOpts.Limiter = limiter
		routerOpts.Limit = ratelimit.Limit{Rate: cfg.RateLimit.Rate, Burst: cfg.RateLimit.Burst}
	}

	a.router = api.NewRouter(routerOpts)
	a.server = &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           a.router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	return a, nil
}

// Handler 返回 HTTP handler，测试中可直接使用
func (a *App) Handler() http.Handler {
	return a.router
}

// Run 监听端口直到 ctx 取消，然后在 ShutdownTimeout 内优雅关闭 HTTP 服务
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return xerrors.Wrapf(err, "listen %s", a.server.Addr)
	}
	return a.Serve(ctx, ln)
}

// Serve 在给定 listener 上提供服务
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", clog.String("addr", ln.Addr().String()))
		errCh <- a.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return xerrors.Wrap(err, "http server failed")
	case <-ctx.Done():
	}

	a.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return xerrors.Wrap(err, "shutdown http server")
	}
	return nil
}

// Close 按创建的相反顺序释放资源
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		if err := a.shutdowns[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.shutdowns = nil
	return xerrors.Combine(errs...)
}

// WatchLogLevel 订阅 log.level 的变更并动态调整日志级别
func WatchLogLevel(ctx context.Context, loader config.Loader, logger clog.Logger) error {
	ch, err := loader.Watch(ctx, "log.level")
	if err != nil {
		return xerrors.Wrap(err, "watch log.level")
	}

	go func() {
		for event := range ch {
			value, ok := event.Value.(string)
			if !ok {
				continue
			}
			level, err := clog.ParseLevel(value)
			if err != nil {
				logger.Warn("ignore invalid log level", clog.String("level", value), clog.Error(err))
				continue
			}
			if err := logger.SetLevel(level); err != nil {
				logger.Warn("set log level failed", clog.Error(err))
				continue
			}
			logger.Info("log level changed", clog.String("level", level.String()))
		}
	}()
	return nil
}
