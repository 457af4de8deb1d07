package app

import (
	"context"
	"time"

	"github.com/ceyewan/shardmanager/clog"
	"github.com/ceyewan/shardmanager/config"
	"github.com/ceyewan/shardmanager/connector"
	"github.com/ceyewan/shardmanager/metrics"
	"github.com/ceyewan/shardmanager/trace"
	"github.com/ceyewan/shardmanager/xerrors"
)

// ServiceName 服务名，用于日志命名空间、指标和链路的 service.name
const ServiceName = "shardmanager"

// Config 应用配置
type Config struct {
	Server    ServerConfig           `mapstructure:"server"`
	Storage   connector.SQLiteConfig `mapstructure:"storage"`
	Log       clog.Config            `mapstructure:"log"`
	Metrics   metrics.Config         `mapstructure:"metrics"`
	Trace     trace.Config           `mapstructure:"trace"`
	RateLimit RateLimitConfig        `mapstructure:"ratelimit"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	StaticDir         string        `mapstructure:"static_dir"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

// RateLimitConfig 按客户端 IP 的限流配置，默认关闭
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Rate    float64 `mapstructure:"rate"`
	Burst   int     `mapstructure:"burst"`
}

// Defaults 内置默认值，优先级最低
func Defaults() map[string]any {
	return map[string]any{
		"server.host":                "0.0.0.0",
		"server.port":                5000,
		"server.static_dir":          ".",
		"server.read_header_timeout": "5s",
		"server.shutdown_timeout":    "10s",

		"storage.name":         "history",
		"storage.path":         "/data/shardmanager.db",
		"storage.busy_timeout": "5s",

		"log.level":  "info",
		"log.format": "console",
		"log.output": "stdout",

		"metrics.enabled":        false,
		"metrics.service_name":   ServiceName,
		"metrics.version":        "dev",
		"metrics.port":           9090,
		"metrics.path":           "/metrics",
		"metrics.enable_runtime": true,

		"trace.enabled":      false,
		"trace.service_name": ServiceName,
		"trace.endpoint":     "localhost:4317",
		"trace.sampler":      1.0,
		"trace.batcher":      "batch",
		"trace.insecure":     true,

		"ratelimit.enabled": false,
		"ratelimit.rate":    50,
		"ratelimit.burst":   100,
	}
}

// LegacyEnvBindings 无前缀的环境变量，DB_PATH 和 PORT 优先于配置文件
func LegacyEnvBindings() map[string]string {
	return map[string]string{
		"storage.path": "DB_PATH",
		"server.port":  "PORT",
	}
}

// LoadConfig 按 环境变量 > .env > config.<ENV>.yaml > config.yaml > 默认值 的顺序加载配置
func LoadConfig(opts ...config.Option) (config.Loader, *Config, error) {
	base := []config.Option{
		config.WithDefaults(Defaults()),
		config.WithEnvBindings(LegacyEnvBindings()),
	}
	loader, err := config.New(append(base, opts...)...)
	if err != nil {
		return nil, nil, xerrors.Wrap(err, "create config loader")
	}
	if err := loader.Load(context.Background()); err != nil {
		return nil, nil, xerrors.Wrap(err, "load config")
	}

	cfg := &Config{}
	if err := loader.Unmarshal(cfg); err != nil {
		return nil, nil, xerrors.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return loader, cfg, nil
}

// Validate 检查启动必需的配置项
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return xerrors.Wrapf(xerrors.ErrInvalidInput, "invalid server port: %d", c.Server.Port)
	}
	if c.Storage.Path == "" {
		return xerrors.Wrap(xerrors.ErrInvalidInput, "storage path is required")
	}
	if c.RateLimit.Enabled && (c.RateLimit.Rate <= 0 || c.RateLimit.Burst <= 0) {
		return xerrors.Wrap(xerrors.ErrInvalidInput, "ratelimit rate and burst must be positive")
	}
	return nil
}
