package task

import (
	"path/filepath"
	"strings"

	"github.com/ixugo/goddd/pkg/orm"
)

// 任务状态流转:
// pending -> running -> completed
//
//	\-> cancelled (保留已聚合的部分结果)
//	\-> failed
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusFailed    = "failed"
)

// idPrefix 任务 ID 前缀
const idPrefix = "at"

// Task 一次视频分析任务
type Task struct {
	ID        string `gorm:"primaryKey" json:"id"`                // 任务 ID
	VideoPath string `gorm:"column:video_path" json:"video_path"` // 视频文件路径
	VideoName string `gorm:"column:video_name" json:"video_name"` // 视频文件名（不含目录）

	Model         string  `gorm:"column:model" json:"model"`                   // 检测模型标识
	ConfThreshold float64 `gorm:"column:conf_threshold" json:"conf_threshold"` // 置信度阈值
	TargetClasses string  `gorm:"column:target_classes" json:"target_classes"` // 目标类别，逗号分隔，空串表示全部
	GapTolerance  float64 `gorm:"column:gap_tolerance" json:"gap_tolerance"`   // 时间线区间合并容差（秒）

	Status string `gorm:"column:status" json:"status"` // 任务状态
	Reason string `gorm:"column:reason" json:"reason"` // 失败/取消原因

	FPS             float64 `gorm:"column:fps" json:"fps"`                           // 视频帧率
	TotalFrames     int     `gorm:"column:total_frames" json:"total_frames"`         // 视频总帧数
	ProcessedFrames int     `gorm:"column:processed_frames" json:"processed_frames"` // 已处理帧数
	DetectionCount  int     `gorm:"column:detection_count" json:"detection_count"`   // 命中检测总数

	JSONPath      string `gorm:"column:json_path" json:"json_path"`           // JSON 产物相对路径
	CSVPath       string `gorm:"column:csv_path" json:"csv_path"`             // CSV 产物相对路径
	ArtifactBytes int64  `gorm:"column:artifact_bytes" json:"artifact_bytes"` // 产物总大小（字节）

	StartedAt  *orm.Time `gorm:"column:started_at" json:"started_at"`   // 流水线启动时间
	FinishedAt *orm.Time `gorm:"column:finished_at" json:"finished_at"` // 流水线结束时间
	CreatedAt  orm.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  orm.Time  `gorm:"column:updated_at" json:"updated_at"`

	DeleteFlag bool `gorm:"column:delete_flag" json:"delete_flag"` // 待删除标记（已被标记即将清理）
}

func (*Task) TableName() string {
	return "analysis_tasks"
}

// IsTerminal 任务是否已到达终态
func (t *Task) IsTerminal() bool {
	switch t.Status {
	case StatusCompleted, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

// TargetClassList 目标类别切片，空串返回 nil 表示不过滤
func (t *Task) TargetClassList() []string {
	if t.TargetClasses == "" {
		return nil
	}
	parts := strings.Split(t.TargetClasses, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ArtifactPaths 产物相对路径列表，未生成的产物不包含
func (t *Task) ArtifactPaths() []string {
	out := make([]string, 0, 2)
	if t.JSONPath != "" {
		out = append(out, t.JSONPath)
	}
	if t.CSVPath != "" {
		out = append(out, t.CSVPath)
	}
	return out
}

// ArtifactDir 产物所在目录的相对路径，没有产物时为空串
func (t *Task) ArtifactDir() string {
	for _, p := range t.ArtifactPaths() {
		return filepath.Dir(p)
	}
	return ""
}
