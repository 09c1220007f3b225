package analysis

import (
	"fmt"
	"math"
	"strconv"
)

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatTimestamp 将秒数渲染为 HH:MM:SS.mmm,小时零填充
// 传入值应当是已舍入到 3 位小数的秒数,内部走整数毫秒运算,
// 避免对更高精度来源二次舍入造成的毫秒漂移
func FormatTimestamp(seconds float64) string {
	ms := int64(math.Round(seconds * 1000))
	if ms < 0 {
		ms = 0
	}
	h := ms / 3600000
	m := ms % 3600000 / 60000
	s := ms % 60000 / 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms%1000)
}

// formatFloat 数值文本,两种导出产物渲染一致
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
