package task

import (
	"github.com/gowvp/vtime/internal/core/analysis"
	"github.com/ixugo/goddd/pkg/web"
)

type FindTaskInput struct {
	web.PagerFilter
	web.DateFilter
	Status string `form:"status"` // 任务状态筛选
	Q      string `form:"q"`      // 视频名模糊匹配
}

type AddTaskInput struct {
	VideoPath     string   `json:"video_path"`     // 视频文件路径（服务端可访问）
	Model         string   `json:"model"`          // 检测模型，留空使用默认模型
	ConfThreshold float64  `json:"conf_threshold"` // 置信度阈值 (0,1]，0 使用默认值
	TargetClasses []string `json:"target_classes"` // 目标类别，缺省或空数组表示全部类别
	GapTolerance  float64  `json:"gap_tolerance"`  // 区间合并容差（秒），<=0 使用默认值
}

// IntervalsInput 连续出现区间查询参数
type IntervalsInput struct {
	Class string  `form:"class"` // 类别名，留空返回全部类别
	Gap   float64 `form:"gap"`   // 合并容差（秒），<=0 使用任务创建时的容差
}

// ClassIntervals 单类别的连续出现区间
type ClassIntervals struct {
	Class     string              `json:"class"`
	Intervals []analysis.Interval `json:"intervals"`
}

// IntervalsOutput 区间查询结果
type IntervalsOutput struct {
	TaskID string           `json:"task_id"`
	Gap    float64          `json:"gap"`
	Items  []ClassIntervals `json:"items"`
}

// SummaryItem 单类别统计行，出现时刻同时给出秒值与格式化串
type SummaryItem struct {
	Class           string  `json:"class"`
	Count           int     `json:"count"`
	FirstSeconds    float64 `json:"first_seconds"`
	FirstAppearance string  `json:"first_appearance"`
	LastSeconds     float64 `json:"last_seconds"`
	LastAppearance  string  `json:"last_appearance"`
}

// SummaryOutput 任务统计结果
type SummaryOutput struct {
	TaskID         string        `json:"task_id"`
	DetectionCount int           `json:"detection_count"`
	Items          []SummaryItem `json:"items"`
}

// ProgressOutput 运行进度
type ProgressOutput struct {
	TaskID          string   `json:"task_id"`
	Status          string   `json:"status"`
	ProcessedFrames int64    `json:"processed_frames"`
	TotalFrames     int      `json:"total_frames"`
	DetectionCount  int64    `json:"detection_count"`
	Logs            []string `json:"logs"`
}
