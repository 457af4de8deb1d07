package db

import (
	"time"

	"github.com/ceyewan/shardmanager/xerrors"
)

// Config DB 组件配置
type Config struct {
	// SlowThreshold 超过该耗时的 SQL 以 warn 级别记录
	// 默认值: 200ms
	SlowThreshold time.Duration `json:"slow_threshold" yaml:"slow_threshold" mapstructure:"slow_threshold"`
}

// setDefaults 设置配置的默认值（内部使用）
func (c *Config) setDefaults() {
	if c.SlowThreshold == 0 {
		c.SlowThreshold = 200 * time.Millisecond
	}
}

// validate 验证配置的有效性（内部使用）
func (c *Config) validate() error {
	if c.SlowThreshold < 0 {
		return xerrors.Wrap(xerrors.ErrInvalidInput, "slow threshold must not be negative")
	}
	return nil
}
