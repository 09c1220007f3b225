package analysis

import (
	"fmt"
	"log/slog"
)

// Aggregator 一次分析运行的聚合器
// 每次运行独立实例,互不共享状态;入库路径单协程顺序调用,
// 帧序号必须严格递增,Finish 之后冻结为只读 ResultSet
type Aggregator struct {
	videoPath string
	props     VideoProperties
	settings  Settings

	// filter 为 nil 表示不过滤;空 map 表示全部排除
	filter    map[string]struct{}
	classes   []string
	timelines map[string][]Detection

	lastFrame int
	count     int
	closed    bool
	result    *ResultSet
}

// NewAggregator 创建聚合器
// 帧率非正时记一次告警并退化为全零时间戳,不视为致命错误,
// 因为部分视频源上报的帧率并不可靠
func NewAggregator(videoPath string, props VideoProperties, settings Settings) *Aggregator {
	if props.FPS <= 0 {
		slog.Warn("invalid frame rate, timestamps degrade to zero",
			"video", videoPath, "fps", props.FPS)
	}

	var filter map[string]struct{}
	if settings.TargetClasses != nil {
		filter = make(map[string]struct{}, len(settings.TargetClasses))
		for _, name := range settings.TargetClasses {
			filter[name] = struct{}{}
		}
	}

	return &Aggregator{
		videoPath: videoPath,
		props:     props,
		settings:  settings,
		filter:    filter,
		timelines: make(map[string][]Detection),
		lastFrame: -1,
	}
}

// Ingest 接收一帧的全部原始检测,按类别归入对应时间轴
// 帧序号不大于上一帧时返回 ErrOutOfOrderFrame,已入库数据保持有效;
// Finish 之后调用返回 ErrAggregatorClosed
func (a *Aggregator) Ingest(frameIndex int, raw []RawDetection) error {
	if a.closed {
		return fmt.Errorf("ingest frame %d: %w", frameIndex, ErrAggregatorClosed)
	}
	if frameIndex <= a.lastFrame {
		return fmt.Errorf("frame %d not after %d: %w", frameIndex, a.lastFrame, ErrOutOfOrderFrame)
	}
	a.lastFrame = frameIndex

	var ts float64
	if a.props.FPS > 0 {
		ts = float64(frameIndex) / a.props.FPS
	}
	ts = round3(ts)
	formatted := FormatTimestamp(ts)

	for _, rd := range raw {
		if !a.allowed(rd.ClassName) {
			continue
		}
		a.append(rd.ClassName, Detection{
			TimestampSeconds:   ts,
			TimestampFormatted: formatted,
			FrameNumber:        frameIndex,
			ClassName:          rd.ClassName,
			ClassID:            rd.ClassID,
			Confidence:         round3(rd.Confidence),
			Box: BoundingBox{
				X1: round2(rd.Box.X1),
				Y1: round2(rd.Box.Y1),
				X2: round2(rd.Box.X2),
				Y2: round2(rd.Box.Y2),
			},
		})
	}
	return nil
}

func (a *Aggregator) allowed(class string) bool {
	if a.filter == nil {
		return true
	}
	_, ok := a.filter[class]
	return ok
}

// append 惰性建轴,首次出现的类别记录出现顺序
func (a *Aggregator) append(class string, d Detection) {
	tl, ok := a.timelines[class]
	if !ok {
		a.classes = append(a.classes, class)
	}
	a.timelines[class] = append(tl, d)
	a.count++
}

// LastFrame 最近一次入库的帧序号,尚未入库时为 -1
func (a *Aggregator) LastFrame() int {
	return a.lastFrame
}

// Count 已入库的检测总数,被类别过滤掉的不计
func (a *Aggregator) Count() int {
	return a.count
}

// Finish 结束本次运行并冻结结果,重复调用返回同一 ResultSet
// 中途取消的运行同样应当调用 Finish,部分结果合法可导出
func (a *Aggregator) Finish() *ResultSet {
	if a.result != nil {
		return a.result
	}
	a.closed = true
	a.result = &ResultSet{
		VideoPath:  a.videoPath,
		Properties: a.props,
		Settings:   a.settings,
		classes:    a.classes,
		timelines:  a.timelines,
	}
	return a.result
}
