package analysis

// Summarize 对已冻结的时间轴求统计,纯函数,可随时重算
// 空时间轴返回 ok=false,调用方据此省略该类别
func Summarize(timeline []Detection) (ClassSummary, bool) {
	if len(timeline) == 0 {
		return ClassSummary{}, false
	}
	return ClassSummary{
		Count:        len(timeline),
		FirstSeconds: timeline[0].TimestampSeconds,
		LastSeconds:  timeline[len(timeline)-1].TimestampSeconds,
	}, true
}
