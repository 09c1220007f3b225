package task

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gowvp/vtime/internal/core/analysis"
	"github.com/ixugo/goddd/pkg/orm"
	"github.com/ixugo/goddd/pkg/reason"
	"github.com/ixugo/goddd/pkg/system"
	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

// TaskStorer Instantiation interface
type TaskStorer interface {
	Find(context.Context, *[]*Task, orm.Pager, ...orm.QueryOption) (int64, error)
	Get(context.Context, *Task, ...orm.QueryOption) error
	Add(context.Context, *Task) error
	Edit(context.Context, *Task, func(*Task), ...orm.QueryOption) error
	Del(context.Context, *Task, ...orm.QueryOption) error
	Count(context.Context, ...orm.QueryOption) (int64, error)

	Session(context.Context, ...func(*gorm.DB) error) error
}

// FindTasks 分页查询任务列表，支持状态与时间范围筛选
func (c Core) FindTasks(ctx context.Context, in *FindTaskInput) ([]*Task, int64, error) {
	query := orm.NewQuery(4).OrderBy("created_at DESC")

	if in.Status != "" {
		query.Where("status = ?", in.Status)
	}
	if in.Q != "" {
		query.Where("video_name LIKE ?", "%"+in.Q+"%")
	}
	if in.StartMs > 0 && in.EndMs > 0 {
		query.Where("created_at >= ? AND created_at <= ?", in.StartAt(), in.EndAt())
	}

	items := make([]*Task, 0, in.Limit())
	total, err := c.store.Task().Find(ctx, &items, in, query.Encode()...)
	if err != nil {
		return nil, 0, reason.ErrDB.Withf(`Find in[%+v] err[%s]`, in, err.Error())
	}
	return items, total, nil
}

// GetTask Query a single object
func (c Core) GetTask(ctx context.Context, id string) (*Task, error) {
	var out Task
	if err := c.store.Task().Get(ctx, &out, orm.Where("id=?", id)); err != nil {
		if orm.IsErrRecordNotFound(err) {
			return nil, reason.ErrNotFound.Withf(`Get id[%v] err[%s]`, id, err.Error())
		}
		return nil, reason.ErrDB.Withf(`Get id[%v] err[%s]`, id, err.Error())
	}
	return &out, nil
}

// AddTask 创建分析任务并启动流水线
func (c Core) AddTask(ctx context.Context, in *AddTaskInput) (*Task, error) {
	if in.VideoPath == "" {
		return nil, reason.ErrBadRequest.Withf("video_path is required")
	}
	if _, err := os.Stat(in.VideoPath); err != nil {
		return nil, reason.ErrBadRequest.Withf(`video not accessible path[%s] err[%s]`, in.VideoPath, err.Error())
	}
	if in.ConfThreshold < 0 || in.ConfThreshold > 1 {
		return nil, reason.ErrBadRequest.Withf("conf_threshold must be in (0,1]")
	}
	if len(in.TargetClasses) > 0 {
		if err := c.labels.Validate(in.TargetClasses); err != nil {
			return nil, reason.ErrBadRequest.SetMsg(err.Error())
		}
	}
	if n := c.ActiveRuns(); c.conf != nil && c.conf.MaxConcurrentRuns > 0 && n >= c.conf.MaxConcurrentRuns {
		return nil, reason.ErrBadRequest.Withf(`active analyses limit reached limit[%d]`, c.conf.MaxConcurrentRuns)
	}

	var out Task
	if err := copier.Copy(&out, in); err != nil {
		slog.ErrorContext(ctx, "Copy", "err", err)
	}
	out.ID = c.uni.UniqueID(idPrefix)
	out.VideoName = filepath.Base(in.VideoPath)
	out.TargetClasses = strings.Join(in.TargetClasses, ",")
	out.Status = StatusPending
	if c.conf != nil {
		if out.Model == "" {
			out.Model = c.conf.DefaultModel
		}
		if out.ConfThreshold == 0 {
			out.ConfThreshold = c.conf.DefaultThreshold
		}
		if out.GapTolerance <= 0 {
			out.GapTolerance = c.conf.GapTolerance
		}
	}

	if err := c.store.Task().Add(ctx, &out); err != nil {
		return nil, reason.ErrDB.Withf(`Add err[%s]`, err.Error())
	}

	c.startRun(&out)
	return &out, nil
}

// CancelTask 取消任务
// 活动中的流水线收到信号后完成部分结果落盘，状态由流水线置为 cancelled；
// 无活动流水线的遗留任务直接置为 cancelled
func (c Core) CancelTask(ctx context.Context, id string) (*Task, error) {
	out, err := c.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if out.IsTerminal() {
		return nil, reason.ErrBadRequest.Withf(`task already %s`, out.Status)
	}

	if run, ok := c.runs.Load(id); ok {
		run.Cancel()
		return out, nil
	}

	// 流水线可能恰好在查询后结束,终态行不再覆盖
	if err := c.store.Task().Edit(ctx, out, func(t *Task) {
		if t.IsTerminal() {
			return
		}
		t.Status = StatusCancelled
		t.Reason = "cancelled before start"
		t.FinishedAt = now()
	}, orm.Where("id=?", id)); err != nil {
		return nil, reason.ErrDB.Withf(`Edit id[%v] err[%s]`, id, err.Error())
	}
	return out, nil
}

// DelTask 删除任务及其产物文件
func (c Core) DelTask(ctx context.Context, id string) (*Task, error) {
	if _, ok := c.runs.Load(id); ok {
		return nil, reason.ErrBadRequest.Withf("task is running, cancel it first")
	}

	var out Task
	if err := c.store.Task().Del(ctx, &out, orm.Where("id=?", id)); err != nil {
		return nil, reason.ErrDB.Withf(`Del id[%v] err[%s]`, id, err.Error())
	}
	c.removeArtifacts(&out)
	return &out, nil
}

// GetResult 读取任务的层级结果文档
func (c Core) GetResult(ctx context.Context, id string) (*analysis.Document, error) {
	out, err := c.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.loadDocument(out)
}

// GetIntervals 查询类别连续出现区间
// gap 以查询参数优先，其次为任务创建时的容差
func (c Core) GetIntervals(ctx context.Context, id string, in *IntervalsInput) (*IntervalsOutput, error) {
	out, err := c.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	doc, err := c.loadDocument(out)
	if err != nil {
		return nil, err
	}

	gap := in.Gap
	if gap <= 0 {
		gap = out.GapTolerance
	}

	classes := doc.Detections.Classes()
	if in.Class != "" {
		if _, ok := doc.Detections.Get(in.Class); !ok {
			return nil, reason.ErrNotFound.Withf(`class[%s] not present in results`, in.Class)
		}
		classes = []string{in.Class}
	}

	items := make([]ClassIntervals, 0, len(classes))
	for _, name := range classes {
		tl, _ := doc.Detections.Get(name)
		items = append(items, ClassIntervals{
			Class:     name,
			Intervals: analysis.MergeIntervals(tl, gap),
		})
	}
	return &IntervalsOutput{TaskID: id, Gap: gap, Items: items}, nil
}

// GetSummary 查询任务的类别统计
func (c Core) GetSummary(ctx context.Context, id string) (*SummaryOutput, error) {
	out, err := c.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	doc, err := c.loadDocument(out)
	if err != nil {
		return nil, err
	}

	result := SummaryOutput{TaskID: id, Items: make([]SummaryItem, 0, doc.Detections.Len())}
	for _, name := range doc.Detections.Classes() {
		tl, _ := doc.Detections.Get(name)
		s, ok := analysis.Summarize(tl)
		if !ok {
			continue
		}
		result.DetectionCount += s.Count
		result.Items = append(result.Items, SummaryItem{
			Class:           name,
			Count:           s.Count,
			FirstSeconds:    s.FirstSeconds,
			FirstAppearance: analysis.FormatTimestamp(s.FirstSeconds),
			LastSeconds:     s.LastSeconds,
			LastAppearance:  analysis.FormatTimestamp(s.LastSeconds),
		})
	}
	return &result, nil
}

// GetProgress 查询运行进度，活动中的任务返回实时计数与近期日志
func (c Core) GetProgress(ctx context.Context, id string) (*ProgressOutput, error) {
	if run, ok := c.runs.Load(id); ok {
		return &ProgressOutput{
			TaskID:          id,
			Status:          StatusRunning,
			ProcessedFrames: run.Frames(),
			TotalFrames:     run.TotalFrames(),
			DetectionCount:  run.Detections(),
			Logs:            run.Logs(),
		}, nil
	}

	out, err := c.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ProgressOutput{
		TaskID:          id,
		Status:          out.Status,
		ProcessedFrames: int64(out.ProcessedFrames),
		TotalFrames:     out.TotalFrames,
		DetectionCount:  int64(out.DetectionCount),
	}, nil
}

// ActiveRuns 活动中的流水线数量
func (c Core) ActiveRuns() int {
	var n int
	c.runs.Range(func(string, *Run) bool {
		n++
		return true
	})
	return n
}

// ArtifactPath 产物相对路径转完整路径
func (c Core) ArtifactPath(relative string) string {
	if filepath.IsAbs(relative) {
		return relative
	}
	return filepath.Join(c.exportRoot(), relative)
}

func (c Core) exportRoot() string {
	dir := "exports"
	if c.conf != nil && c.conf.ExportDir != "" {
		dir = c.conf.ExportDir
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(system.Getwd(), dir)
}

// loadDocument 读取任务的 JSON 产物
// 仅终态任务有产物；取消的任务保留部分结果，同样可查询
func (c Core) loadDocument(t *Task) (*analysis.Document, error) {
	if !t.IsTerminal() {
		return nil, reason.ErrBadRequest.Withf(`task is %s, results not ready`, t.Status)
	}
	if t.JSONPath == "" {
		return nil, reason.ErrNotFound.Withf(`task[%s] has no result artifact`, t.ID)
	}
	data, err := os.ReadFile(c.ArtifactPath(t.JSONPath))
	if err != nil {
		return nil, reason.ErrServer.Withf(`read artifact err[%s]`, err.Error())
	}
	doc, err := analysis.DecodeDocument(data)
	if err != nil {
		return nil, reason.ErrServer.Withf(`decode artifact err[%s]`, err.Error())
	}
	return doc, nil
}

func (c Core) removeArtifacts(t *Task) {
	for _, p := range t.ArtifactPaths() {
		if err := os.Remove(c.ArtifactPath(p)); err != nil && !os.IsNotExist(err) {
			slog.Warn("remove artifact", "task_id", t.ID, "path", p, "err", err)
		}
	}
	if dir := t.ArtifactDir(); dir != "" {
		_ = os.Remove(c.ArtifactPath(dir))
	}
}
