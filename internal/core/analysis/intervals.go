package analysis

// MergeIntervals 将时间轴折叠为连续出现区间,单趟 O(n)
// 间隔以当前区间的 end 为基准:后续检测与 end 的距离不超过
// gapTolerance 时延伸当前区间,否则收尾并另起新区间
// 以 end 而非上一条检测为基准,密集检测的微小时间漂移不会把
// 区间错误拆碎
// 空时间轴返回空结果,不是错误
func MergeIntervals(timeline []Detection, gapTolerance float64) []Interval {
	if len(timeline) == 0 {
		return nil
	}

	out := make([]Interval, 0, 4)
	cur := Interval{
		StartSeconds: timeline[0].TimestampSeconds,
		EndSeconds:   timeline[0].TimestampSeconds,
	}
	for _, d := range timeline[1:] {
		if d.TimestampSeconds-cur.EndSeconds <= gapTolerance {
			cur.EndSeconds = d.TimestampSeconds
			continue
		}
		out = append(out, cur)
		cur = Interval{StartSeconds: d.TimestampSeconds, EndSeconds: d.TimestampSeconds}
	}
	return append(out, cur)
}
