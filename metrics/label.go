package metrics

// Label 指标标签
//
// 标签值应当低基数：路由模板、操作名、结果，而不是请求 ID 或原始 URL。
type Label struct {
	Key   string
	Value string
}

// L 便捷构造函数
//
//	counter.Inc(ctx, metrics.L("method", "GET"))
func L(key, value string) Label {
	return Label{
		Key:   key,
		Value: value,
	}
}
