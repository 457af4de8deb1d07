// shardmanager 分片计算历史记录服务
//
// 配置优先级：环境变量 > .env > config.<ENV>.yaml > config.yaml > 默认值，
// 兼容无前缀的 DB_PATH 和 PORT。
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ceyewan/shardmanager/clog"
	"github.com/ceyewan/shardmanager/internal/app"
)

func main() {
	loader, cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := app.NewLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("create logger: %v", err)
	}
	defer logger.Flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.WatchLogLevel(ctx, loader, logger); err != nil {
		logger.Warn("log level watch disabled", clog.Error(err))
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("bootstrap failed", clog.Error(err))
	}

	logger.Info("shardmanager starting",
		clog.String("db_path", cfg.Storage.Path),
		clog.Int("port", cfg.Server.Port),
	)

	runErr := a.Run(ctx)
	if err := a.Close(context.WithoutCancel(ctx)); err != nil {
		logger.Error("release resources failed", clog.Error(err))
	}
	if runErr != nil {
		logger.Fatal("server stopped with error", clog.Error(runErr))
	}
	logger.Info("shardmanager stopped")
}
