package analysis

import (
	"errors"
)

var (
	// ErrOutOfOrderFrame 帧序号必须严格递增,乱序属于调用方编程错误
	ErrOutOfOrderFrame = errors.New("frame index out of order")
	// ErrAggregatorClosed Finish 之后不再接受新帧
	ErrAggregatorClosed = errors.New("aggregator closed")
	// ErrUnsupportedFormat 导出格式未实现
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// BoundingBox 像素坐标边界框,(x1,y1) 左上角,(x2,y2) 右下角
type BoundingBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// RawDetection 检测器对单帧的原始输出,未做舍入
type RawDetection struct {
	ClassID    int
	ClassName  string
	Confidence float64
	Box        BoundingBox
}

// Detection 时间轴上的一条检测记录
// 数值在入库时完成舍入:时间戳 3 位小数,置信度 3 位,坐标 2 位
type Detection struct {
	TimestampSeconds   float64     `json:"timestamp_seconds"`
	TimestampFormatted string      `json:"timestamp_formatted"`
	FrameNumber        int         `json:"frame_number"`
	ClassName          string      `json:"class_name"`
	ClassID            int         `json:"class_id"`
	Confidence         float64     `json:"confidence"`
	Box                BoundingBox `json:"bbox"`
}

// VideoProperties 视频属性,流开始前确定,之后不变
type VideoProperties struct {
	FPS         float64
	TotalFrames int
}

// DurationSeconds 视频时长,帧率非法时为 0
func (v VideoProperties) DurationSeconds() float64 {
	if v.FPS <= 0 {
		return 0
	}
	return float64(v.TotalFrames) / v.FPS
}

// Settings 一次分析的运行参数,随 ResultSet 原样记录
type Settings struct {
	// Model 检测模型标识,例如 yolov8n.pt
	Model string
	// ConfThreshold 上游检测器应用的置信度阈值
	ConfThreshold float64
	// TargetClasses 类别白名单
	// nil 表示不过滤;非 nil 空切片表示全部排除,两者语义不同
	TargetClasses []string
}

// ClassSummary 单个类别的统计
type ClassSummary struct {
	Count        int
	FirstSeconds float64
	LastSeconds  float64
}

// Interval 某类别连续出现的时间区间,start <= end
type Interval struct {
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
}

// Duration 区间时长
func (iv Interval) Duration() float64 {
	return iv.EndSeconds - iv.StartSeconds
}

// ResultSet 一次分析运行的聚合结果,Finish 之后只读
// 只读阶段可被多个读者并发访问,无需加锁
type ResultSet struct {
	VideoPath  string
	Properties VideoProperties
	Settings   Settings

	classes   []string
	timelines map[string][]Detection
}

// Classes 按首次出现顺序返回类别名
func (r *ResultSet) Classes() []string {
	out := make([]string, len(r.classes))
	copy(out, r.classes)
	return out
}

// Timeline 返回某类别的检测序列,按帧序号升序
// 未出现过的类别返回空序列而非错误
func (r *ResultSet) Timeline(class string) []Detection {
	return r.timelines[class]
}

// DetectionCount 全部类别检测总数
func (r *ResultSet) DetectionCount() int {
	var n int
	for _, tl := range r.timelines {
		n += len(tl)
	}
	return n
}

// Summary 单类别统计,类别无数据时 ok 为 false
func (r *ResultSet) Summary(class string) (ClassSummary, bool) {
	return Summarize(r.timelines[class])
}

// Summaries 全部类别统计,遍历顺序以 Classes() 为准
func (r *ResultSet) Summaries() map[string]ClassSummary {
	out := make(map[string]ClassSummary, len(r.classes))
	for _, name := range r.classes {
		if s, ok := Summarize(r.timelines[name]); ok {
			out[name] = s
		}
	}
	return out
}

// Intervals 单类别的连续出现区间
func (r *ResultSet) Intervals(class string, gapTolerance float64) []Interval {
	return MergeIntervals(r.timelines[class], gapTolerance)
}
