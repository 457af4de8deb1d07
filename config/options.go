package config

import (
	"strings"

	"github.com/ceyewan/shardmanager/clog"
)

// Option 配置选项模式
type Option func(*Options)

// Options 加载器配置
type Options struct {
	Name        string            // 配置文件名称（不含扩展名）
	Paths       []string          // 配置文件搜索路径
	FileType    string            // 配置文件类型 (yaml, json, etc.)
	EnvPrefix   string            // 环境变量前缀
	Defaults    map[string]any    // 内置默认值
	EnvBindings map[string]string // 配置 key -> 无前缀环境变量名
	Logger      clog.Logger
}

func defaultOptions() *Options {
	return &Options{
		Name:        "config",
		Paths:       []string{".", "./config"},
		FileType:    "yaml",
		EnvPrefix:   "SHARDMANAGER",
		Defaults:    map[string]any{},
		EnvBindings: map[string]string{},
		Logger:      clog.Discard(),
	}
}

// normalize 补齐被选项清空的字段
func (o *Options) normalize() {
	if o.Name == "" {
		o.Name = "config"
	}
	if len(o.Paths) == 0 {
		o.Paths = []string{".", "./config"}
	}
	if o.FileType == "" {
		o.FileType = "yaml"
	}
	if o.EnvPrefix == "" {
		o.EnvPrefix = "SHARDMANAGER"
	}
	o.EnvPrefix = strings.ToUpper(o.EnvPrefix)
	if o.Logger == nil {
		o.Logger = clog.Discard()
	}
}

// WithConfigName 设置配置文件名称（不带扩展名）
func WithConfigName(name string) Option {
	return func(o *Options) {
		o.Name = name
	}
}

// WithConfigPath 追加配置文件搜索路径
func WithConfigPath(path string) Option {
	return func(o *Options) {
		o.Paths = append(o.Paths, path)
	}
}

// WithConfigPaths 设置配置文件搜索路径（覆盖默认值）
func WithConfigPaths(paths ...string) Option {
	return func(o *Options) {
		o.Paths = paths
	}
}

// WithConfigType 设置配置文件类型
func WithConfigType(typ string) Option {
	return func(o *Options) {
		o.FileType = typ
	}
}

// WithEnvPrefix 设置环境变量前缀
func WithEnvPrefix(prefix string) Option {
	return func(o *Options) {
		o.EnvPrefix = prefix
	}
}

// WithDefaults 设置内置默认值，优先级最低
func WithDefaults(defaults map[string]any) Option {
	return func(o *Options) {
		for k, v := range defaults {
			o.Defaults[k] = v
		}
	}
}

// WithEnvBindings 将配置 key 绑定到不带前缀的环境变量
//
//	config.WithEnvBindings(map[string]string{"storage.path": "DB_PATH"})
func WithEnvBindings(bindings map[string]string) Option {
	return func(o *Options) {
		for k, v := range bindings {
			o.EnvBindings[k] = v
		}
	}
}

// WithLogger 注入日志记录器，用于输出加载过程中的告警
func WithLogger(logger clog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger.WithNamespace("config")
		}
	}
}
