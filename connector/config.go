package connector

import (
	"strconv"
	"strings"
	"time"

	"github.com/ceyewan/shardmanager/xerrors"
)

// SQLiteConfig SQLite 连接配置
type SQLiteConfig struct {
	// Name 连接器名称，默认 "sqlite"
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// Path 数据库文件路径，":memory:" 表示内存库
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// BusyTimeout 写锁冲突时的等待时间，传给驱动的 _busy_timeout
	BusyTimeout time.Duration `json:"busy_timeout" yaml:"busy_timeout" mapstructure:"busy_timeout"`
}

func (c *SQLiteConfig) validate() error {
	if c == nil {
		return xerrors.Wrap(ErrConfig, "sqlite config is nil")
	}
	if strings.TrimSpace(c.Path) == "" {
		return xerrors.Wrap(ErrConfig, "sqlite path is required")
	}
	if c.BusyTimeout < 0 {
		return xerrors.Wrap(ErrConfig, "sqlite busy timeout must not be negative")
	}
	if c.Name == "" {
		c.Name = "sqlite"
	}
	return nil
}

// inMemory 内存库不需要创建数据目录
func (c *SQLiteConfig) inMemory() bool {
	return c.Path == ":memory:" || strings.HasPrefix(c.Path, "file:")
}

// dsn 在路径后追加驱动参数
func (c *SQLiteConfig) dsn() string {
	if c.BusyTimeout <= 0 {
		return c.Path
	}
	sep := "?"
	if strings.Contains(c.Path, "?") {
		sep = "&"
	}
	return c.Path + sep + "_busy_timeout=" + strconv.FormatInt(c.BusyTimeout.Milliseconds(), 10)
}
