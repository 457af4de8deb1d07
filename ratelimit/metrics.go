package ratelimit

// Metrics 指标常量定义
const (
	// MetricAllowed 允许通过的请求数 (Counter)
	MetricAllowed = "ratelimit_allowed_total"

	// MetricDenied 被拒绝的请求数 (Counter)
	MetricDenied = "ratelimit_denied_total"

	// LabelMode 模式标签
	LabelMode = "mode"

	// ModeStandalone 单机模式
	ModeStandalone = "standalone"
)
