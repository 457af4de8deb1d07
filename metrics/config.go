package metrics

import (
	"strings"

	"github.com/ceyewan/shardmanager/xerrors"
)

// Config 指标系统配置
//
//	metrics:
//	  enabled: true
//	  service_name: "shardmanager"
//	  version: "v1.0.0"
//	  port: 9090
//	  path: "/metrics"
//	  enable_runtime: true
type Config struct {
	// Enabled 为 false 时 New 返回 noop Meter
	Enabled bool `mapstructure:"enabled"`

	// ServiceName 作为 Resource 的 service.name
	ServiceName string `mapstructure:"service_name"`

	// Version 作为 Resource 的 service.version
	Version string `mapstructure:"version"`

	// Port 大于 0 时在该端口启动 Prometheus HTTP 服务
	Port int `mapstructure:"port"`

	// Path Prometheus 采集路径，必须以 "/" 开头
	Path string `mapstructure:"path"`

	// EnableRuntime 采集 Go 运行时指标（GC、goroutine、内存）
	EnableRuntime bool `mapstructure:"enable_runtime"`
}

// NewDevDefaultConfig 开发和测试默认配置：启用采集，不监听端口
func NewDevDefaultConfig(serviceName string) *Config {
	return &Config{
		Enabled:     true,
		ServiceName: serviceName,
		Version:     "dev",
		Path:        "/metrics",
	}
}

func (c *Config) validate() error {
	if c.ServiceName == "" {
		c.ServiceName = "unknown"
	}
	if c.Path == "" {
		c.Path = "/metrics"
	}
	if !strings.HasPrefix(c.Path, "/") {
		return xerrors.Wrapf(xerrors.ErrInvalidInput, "metrics path must start with '/': %s", c.Path)
	}
	if c.Port < 0 || c.Port > 65535 {
		return xerrors.Wrapf(xerrors.ErrInvalidInput, "invalid metrics port: %d", c.Port)
	}
	return nil
}
