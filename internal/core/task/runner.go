package task

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gowvp/vtime/internal/conf"
	"github.com/gowvp/vtime/internal/core/analysis"
	"github.com/gowvp/vtime/pkg/vsource"
	"github.com/gowvp/vtime/protos"
	"github.com/ixugo/goddd/pkg/orm"
	"github.com/ixugo/goddd/pkg/queue"
)

// progressStep 进度上报步长（帧）
const progressStep = 100

// webhookStaleTimeout webhook 模式下检测器静默超时
const webhookStaleTimeout = 2 * time.Minute

// errDetectorLost webhook 模式下检测器超时未上报
var errDetectorLost = errors.New("detector went silent")

// Run 一条活动中的分析流水线
// 聚合器要求帧严格递增、单写者入库；stream 模式由接收协程独占写入，
// webhook 模式回调可能并发到达，统一经 IngestBatch 持锁串行化
type Run struct {
	taskID    string
	token     string
	startedAt time.Time

	cancel context.CancelFunc
	logs   *queue.CirQueue[string]

	// m 保护 agg 的创建与写入
	m      sync.Mutex
	agg    *analysis.Aggregator
	newAgg func(analysis.VideoProperties) *analysis.Aggregator

	totalFrames atomic.Int64
	frames      atomic.Int64
	dets        atomic.Int64
	lastSeen    atomic.Int64

	// finished 检测器宣告本次运行结束（webhook 模式）
	finished chan struct{}
	endOnce  sync.Once
	// failure 检测器或回调链路报告的失败原因
	failure atomic.Pointer[string]
}

// Cancel 请求终止流水线，已聚合数据仍会落盘
func (r *Run) Cancel() { r.cancel() }

// Token 回调校验令牌
func (r *Run) Token() string { return r.token }

func (r *Run) Frames() int64     { return r.frames.Load() }
func (r *Run) Detections() int64 { return r.dets.Load() }
func (r *Run) TotalFrames() int  { return int(r.totalFrames.Load()) }
func (r *Run) Logs() []string    { return r.logs.Range() }

func (r *Run) logf(format string, args ...any) {
	line := time.Now().Format("15:04:05") + " " + fmt.Sprintf(format, args...)
	r.logs.Push(line)
}

func (r *Run) touch() { r.lastSeen.Store(time.Now().UnixMilli()) }

// setProps 确定视频属性并创建聚合器，只有首次调用生效
func (r *Run) setProps(props analysis.VideoProperties) {
	r.m.Lock()
	defer r.m.Unlock()
	if r.agg == nil {
		r.agg = r.newAgg(props)
		r.totalFrames.Store(int64(props.TotalFrames))
	}
}

// IngestBatch 将一帧的检测结果写入聚合器，返回过滤后入库的条数
// 属性未知时退化为零值属性，时间戳按聚合器规则归零
func (r *Run) IngestBatch(frame int, raws []analysis.RawDetection) (int, error) {
	r.m.Lock()
	defer r.m.Unlock()
	r.touch()
	if r.agg == nil {
		r.agg = r.newAgg(analysis.VideoProperties{})
	}
	before := r.agg.Count()
	if err := r.agg.Ingest(frame, raws); err != nil {
		return 0, err
	}
	kept := r.agg.Count() - before
	r.frames.Add(1)
	r.dets.Store(int64(r.agg.Count()))
	if n := r.frames.Load(); n%progressStep == 0 {
		r.logf("processed %d/%d frames, %d detections", n, r.totalFrames.Load(), r.dets.Load())
	}
	return kept, nil
}

// finish 冻结聚合器，未创建过的聚合器补一个空实例
func (r *Run) finish() *analysis.ResultSet {
	r.m.Lock()
	defer r.m.Unlock()
	if r.agg == nil {
		r.agg = r.newAgg(analysis.VideoProperties{})
	}
	return r.agg.Finish()
}

// end 宣告运行结束，可被多处触发，只生效一次
func (r *Run) end() {
	r.endOnce.Do(func() { close(r.finished) })
}

// failWith 记录失败原因并终止流水线
func (r *Run) failWith(msg string) {
	r.failure.CompareAndSwap(nil, &msg)
	r.end()
}

func (r *Run) failureReason() string {
	if p := r.failure.Load(); p != nil {
		return *p
	}
	return ""
}

// startRun 注册并启动流水线协程
// 流水线生命周期独立于 HTTP 请求，取消只经 Run.Cancel 信号;
// newAgg 必须在运行可见之前就绪，回调可能早于运行协程被调度
func (c Core) startRun(t *Task) {
	ctx, cancel := context.WithCancel(context.Background())
	settings := analysis.Settings{
		Model:         t.Model,
		ConfThreshold: t.ConfThreshold,
		TargetClasses: t.TargetClassList(),
	}
	videoPath := t.VideoPath
	run := &Run{
		taskID:    t.ID,
		token:     uuid.NewString(),
		startedAt: time.Now(),
		cancel:    cancel,
		logs:      queue.NewCirQueue[string](100),
		finished:  make(chan struct{}),
	}
	run.newAgg = func(props analysis.VideoProperties) *analysis.Aggregator {
		return analysis.NewAggregator(videoPath, props, settings)
	}
	run.touch()
	c.runs.Store(t.ID, run)
	c.metrics.ActiveRuns.Add(1)
	go c.run(ctx, run, t)
}

func (c Core) run(ctx context.Context, run *Run, t *Task) {
	defer func() {
		c.runs.Delete(t.ID)
		c.metrics.ActiveRuns.Add(-1)
	}()
	defer run.cancel()

	log := slog.With("task_id", t.ID, "video", t.VideoName)
	log.Info("analysis started", "mode", c.mode, "model", t.Model)
	run.logf("analysis started, video [%s]", t.VideoName)

	if err := c.editTask(ctx, t.ID, func(b *Task) {
		b.Status = StatusRunning
		b.StartedAt = now()
	}); err != nil {
		log.Error("mark running", "err", err)
	}

	var err error
	switch c.mode {
	case conf.DetectorModeWebhook:
		// 检测器自行读取视频，属性经 started 回调上报
		err = c.runWebhook(ctx, run, t)
	default:
		err = c.runStream(ctx, run, t)
	}
	c.finalize(ctx, run, t, err)
}

// runStream 帧推流模式
// ffmpeg 解码出的帧经 gRPC 双向流送入检测器，应答按请求顺序返回
func (c Core) runStream(ctx context.Context, run *Run, t *Task) error {
	if c.detector == nil {
		return errors.New("detector client not configured")
	}

	props, err := vsource.Probe(ctx, t.VideoPath)
	if err != nil {
		return err
	}
	run.setProps(analysis.VideoProperties{
		FPS:         props.FPS,
		TotalFrames: props.TotalFrames,
	})
	c.recordProps(ctx, t.ID, props.FPS, props.TotalFrames)
	run.logf("video probed: %dx%d %.2f fps, %d frames",
		props.Width, props.Height, props.FPS, props.TotalFrames)

	reader, err := vsource.NewFrameReader(vsource.Config{
		Path:   t.VideoPath,
		Width:  props.Width,
		Height: props.Height,
	})
	if err != nil {
		return err
	}
	if err := reader.Start(); err != nil {
		return err
	}
	defer reader.Stop()

	stream, err := c.detector.Detect(ctx)
	if err != nil {
		return fmt.Errorf("open detect stream: %w", err)
	}

	// 发送与接收各占一个协程，发送完毕半关流，接收端以 EOF 收尾
	sendErr := make(chan error, 1)
	go func() {
		defer stream.CloseSend()
		for frame := range reader.Frames() {
			req := protos.DetectRequest{
				TaskId:      t.ID,
				Frame:       int64(frame.Index),
				Width:       int32(frame.Width),
				Height:      int32(frame.Height),
				PixelFormat: "bgr24",
				Data:        frame.Data,
				Model:       t.Model,
				Threshold:   t.ConfThreshold,
			}
			if err := stream.Send(&req); err != nil {
				sendErr <- fmt.Errorf("send frame %d: %w", frame.Index, err)
				return
			}
		}
		sendErr <- nil
	}()

	for {
		resp, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("recv detections: %w", err)
		}
		raws := c.toRawDetections(resp.GetDetections())
		kept, err := run.IngestBatch(int(resp.GetFrame()), raws)
		if err != nil {
			return err
		}
		c.metrics.FramesProcessed.Add(1)
		c.metrics.DetectionsKept.Add(uint64(kept))
	}

	if err := <-sendErr; err != nil && ctx.Err() == nil {
		return err
	}
	select {
	case err := <-reader.Err():
		return err
	default:
	}
	return ctx.Err()
}

// runWebhook 回调模式
// 检测器自行读取视频文件，经 HTTP 回调逐帧上报，这里只负责发令与等待
func (c Core) runWebhook(ctx context.Context, run *Run, t *Task) error {
	if c.detector == nil {
		return errors.New("detector client not configured")
	}

	// 校验令牌随回调地址下发，检测器需原样带回
	callback := c.callback
	if callback != "" {
		sep := "?"
		if strings.Contains(callback, "?") {
			sep = "&"
		}
		callback += sep + "token=" + run.token
	}

	resp, err := c.detector.StartAnalysis(ctx, &protos.StartAnalysisRequest{
		TaskId:        t.ID,
		VideoPath:     t.VideoPath,
		Model:         t.Model,
		Threshold:     t.ConfThreshold,
		TargetClasses: t.TargetClassList(),
		Callback:      callback,
	})
	if err != nil {
		return fmt.Errorf("start analysis: %w", err)
	}
	if !resp.GetAccepted() {
		return fmt.Errorf("detector rejected task: %s", resp.GetMessage())
	}
	run.logf("detector accepted, waiting for callbacks")

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-run.finished:
			if msg := run.failureReason(); msg != "" {
				return errors.New(msg)
			}
			return nil
		case <-ctx.Done():
			// 通知检测器终止，使用独立上下文避免取消传播
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_, _ = c.detector.StopAnalysis(stopCtx, &protos.StopAnalysisRequest{TaskId: t.ID})
			cancel()
			return ctx.Err()
		case <-ticker.C:
			silent := time.Since(time.UnixMilli(run.lastSeen.Load()))
			if silent > webhookStaleTimeout {
				return fmt.Errorf("%w, no events for %s", errDetectorLost, silent.Truncate(time.Second))
			}
		}
	}
}

// finalize 冻结聚合器、落盘产物并更新任务终态
// 取消与超时都保留已聚合的部分结果
func (c Core) finalize(ctx context.Context, run *Run, t *Task, runErr error) {
	log := slog.With("task_id", t.ID)

	status := StatusCompleted
	reasonText := ""
	switch {
	case runErr == nil:
	case errors.Is(runErr, context.Canceled):
		status = StatusCancelled
		reasonText = "cancelled"
	default:
		status = StatusFailed
		reasonText = runErr.Error()
	}

	var jsonPath, csvPath string
	var artifactBytes int64
	if status != StatusFailed {
		rs := run.finish()
		dir := filepath.Join(c.exportRoot(), t.ID)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Error("create artifact dir", "err", err)
		} else {
			jsonPath = filepath.Join(t.ID, "results.json")
			csvPath = filepath.Join(t.ID, "results.csv")
			if err := analysis.ExportFile(rs, analysis.FormatJSON, filepath.Join(dir, "results.json")); err != nil {
				log.Error("export json", "err", err)
				jsonPath = ""
			}
			if err := analysis.ExportFile(rs, analysis.FormatCSV, filepath.Join(dir, "results.csv")); err != nil {
				log.Error("export csv", "err", err)
				csvPath = ""
			}
			for _, p := range []string{jsonPath, csvPath} {
				if p == "" {
					continue
				}
				if fi, err := os.Stat(c.ArtifactPath(p)); err == nil {
					artifactBytes += fi.Size()
				}
			}
			c.metrics.ArtifactBytes.Add(uint64(artifactBytes))
		}
	}

	// 终态写库不应被取消打断
	dbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := c.editTask(dbCtx, t.ID, func(b *Task) {
		b.Status = status
		b.Reason = reasonText
		b.ProcessedFrames = int(run.Frames())
		b.DetectionCount = int(run.Detections())
		b.JSONPath = jsonPath
		b.CSVPath = csvPath
		b.ArtifactBytes = artifactBytes
		b.FinishedAt = now()
	}); err != nil {
		log.Error("mark finished", "status", status, "err", err)
	}

	elapsed := time.Since(run.startedAt).Truncate(time.Millisecond)
	c.metrics.ObserveRunEnd(status, elapsed)
	run.logf("analysis %s, %d frames, %d detections, took %s",
		status, run.Frames(), run.Detections(), elapsed)
	log.Info("analysis finished",
		"status", status,
		"frames", run.Frames(),
		"detections", run.Detections(),
		"elapsed", elapsed,
		"err", reasonText,
	)
}

// editTask 以全新行运行变更，避免并发共享行结构
func (c Core) editTask(ctx context.Context, id string, changeFn func(*Task)) error {
	var row Task
	return c.store.Task().Edit(ctx, &row, changeFn, orm.Where("id=?", id))
}

// recordProps 视频属性落库
func (c Core) recordProps(ctx context.Context, id string, fps float64, totalFrames int) {
	if err := c.editTask(ctx, id, func(b *Task) {
		b.FPS = fps
		b.TotalFrames = totalFrames
	}); err != nil {
		slog.Warn("record video properties", "task_id", id, "err", err)
	}
}

// toRawDetections 检测器应答转聚合器入参
func (c Core) toRawDetections(items []*protos.Detection) []analysis.RawDetection {
	out := make([]analysis.RawDetection, 0, len(items))
	for _, d := range items {
		raw := analysis.RawDetection{
			ClassID:    int(d.GetClassId()),
			ClassName:  d.GetClassName(),
			Confidence: d.GetConfidence(),
		}
		if box := d.GetBox(); box != nil {
			raw.Box = analysis.BoundingBox{
				X1: box.GetX1(), Y1: box.GetY1(),
				X2: box.GetX2(), Y2: box.GetY2(),
			}
		}
		c.completeClass(&raw)
		out = append(out, raw)
	}
	return out
}

// completeClass 检测结果可能只带 id 或只带名称，借词表互为补全
func (c Core) completeClass(raw *analysis.RawDetection) {
	if raw.ClassName == "" {
		if name, ok := c.labels.Name(raw.ClassID); ok {
			raw.ClassName = name
		}
		return
	}
	if raw.ClassID == 0 {
		if id, ok := c.labels.ID(raw.ClassName); ok {
			raw.ClassID = id
		}
	}
}

func now() *orm.Time {
	t := orm.Now()
	return &t
}
