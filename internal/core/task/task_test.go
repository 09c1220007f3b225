package task_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gowvp/vtime/internal/conf"
	"github.com/gowvp/vtime/internal/core/analysis"
	"github.com/gowvp/vtime/internal/core/task"
	"github.com/gowvp/vtime/internal/core/task/store/taskdb"
	"github.com/gowvp/vtime/protos"
	"github.com/ixugo/goddd/domain/uniqueid"
	"github.com/ixugo/goddd/domain/uniqueid/store/uniqueiddb"
	"github.com/ixugo/goddd/pkg/orm"
	"github.com/ixugo/goddd/pkg/web"
	"google.golang.org/grpc"
)

// stubDetector 只支持 webhook 发令的检测器客户端替身
type stubDetector struct {
	mu      sync.Mutex
	started []*protos.StartAnalysisRequest
	stopped []string
	reject  bool
}

func (s *stubDetector) Detect(context.Context, ...grpc.CallOption) (grpc.BidiStreamingClient[protos.DetectRequest, protos.DetectResponse], error) {
	return nil, errors.New("stream not supported")
}

func (s *stubDetector) StartAnalysis(_ context.Context, in *protos.StartAnalysisRequest, _ ...grpc.CallOption) (*protos.StartAnalysisResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = append(s.started, in)
	if s.reject {
		return &protos.StartAnalysisResponse{Accepted: false, Message: "model not loaded"}, nil
	}
	return &protos.StartAnalysisResponse{Accepted: true}, nil
}

func (s *stubDetector) StopAnalysis(_ context.Context, in *protos.StopAnalysisRequest, _ ...grpc.CallOption) (*protos.StopAnalysisResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = append(s.stopped, in.GetTaskId())
	return &protos.StopAnalysisResponse{}, nil
}

func (s *stubDetector) GetModelInfo(context.Context, *protos.ModelInfoRequest, ...grpc.CallOption) (*protos.ModelInfoResponse, error) {
	return &protos.ModelInfoResponse{Model: "yolov8n.pt", Version: "8.3.0"}, nil
}

func (s *stubDetector) lastStarted() *protos.StartAnalysisRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.started) == 0 {
		return nil
	}
	return s.started[len(s.started)-1]
}

func (s *stubDetector) stoppedTasks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.stopped))
	copy(out, s.stopped)
	return out
}

func newTestCore(t *testing.T, det protos.DetectorServiceClient, mutate ...func(*conf.Analysis)) task.Core {
	t.Helper()
	dir := t.TempDir()
	db, err := orm.New(sqlite.Open(filepath.Join(dir, "vtime.db")), orm.Config{
		MaxIdleConns:    1,
		MaxOpenConns:    1,
		ConnMaxLifetime: time.Hour,
		SlowThreshold:   500 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}

	cfg := conf.Analysis{
		ExportDir:         filepath.Join(dir, "exports"),
		DefaultModel:      "yolov8n.pt",
		DefaultThreshold:  0.5,
		GapTolerance:      1,
		MaxConcurrentRuns: 4,
	}
	for _, fn := range mutate {
		fn(&cfg)
	}

	return task.NewCore(
		taskdb.NewDB(db).AutoMigrate(true),
		uniqueid.NewCore(uniqueiddb.NewDB(db).AutoMigrate(true), 5),
		task.WithConfig(&cfg),
		task.WithDetector(det),
		task.WithDetectorMode(&conf.Detector{
			Mode:     conf.DetectorModeWebhook,
			Callback: "http://127.0.0.1:8080/api/v1/detector/webhook",
		}),
	)
}

func newSampleVideo(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("fake mp4 payload"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func waitStatus(t *testing.T, core task.Core, id, want string) *task.Task {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		out, err := core.GetTask(context.Background(), id)
		if err == nil && out.Status == want {
			return out
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("task %s did not reach status %s", id, want)
	return nil
}

// waitIdle 等待流水线从运行注册表摘除,注销晚于终态落库片刻
func waitIdle(t *testing.T, core task.Core) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if core.ActiveRuns() == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("runs still active")
}

func rawDet(class string, id int, conf float64) analysis.RawDetection {
	return analysis.RawDetection{
		ClassID:    id,
		ClassName:  class,
		Confidence: conf,
		Box:        analysis.BoundingBox{X1: 10.567, Y1: 20, X2: 110.333, Y2: 220},
	}
}

func TestAddTaskDefaults(t *testing.T) {
	det := &stubDetector{}
	core := newTestCore(t, det)
	ctx := context.Background()

	out, err := core.AddTask(ctx, &task.AddTaskInput{VideoPath: newSampleVideo(t, "walk.mp4")})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.ID, "at") {
		t.Errorf("id = %s, want at prefix", out.ID)
	}
	if out.Status != task.StatusPending {
		t.Errorf("status = %s, want pending", out.Status)
	}
	if out.Model != "yolov8n.pt" || out.ConfThreshold != 0.5 || out.GapTolerance != 1 {
		t.Errorf("defaults not applied: %+v", out)
	}
	if out.VideoName != "walk.mp4" {
		t.Errorf("video_name = %s", out.VideoName)
	}
	if _, ok := core.RunToken(out.ID); !ok {
		t.Error("run not registered")
	}

	if _, err := core.CancelTask(ctx, out.ID); err != nil {
		t.Fatal(err)
	}
	waitStatus(t, core, out.ID, task.StatusCancelled)
}

func TestAddTaskValidation(t *testing.T) {
	core := newTestCore(t, &stubDetector{})
	ctx := context.Background()
	video := newSampleVideo(t, "walk.mp4")

	tests := []struct {
		name string
		in   task.AddTaskInput
	}{
		{"empty path", task.AddTaskInput{}},
		{"missing file", task.AddTaskInput{VideoPath: "/no/such/video.mp4"}},
		{"threshold out of range", task.AddTaskInput{VideoPath: video, ConfThreshold: 1.5}},
		{"unknown class", task.AddTaskInput{VideoPath: video, TargetClasses: []string{"personn"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := core.AddTask(ctx, &tt.in); err == nil {
				t.Error("expect error")
			}
		})
	}
}

func TestWebhookLifecycle(t *testing.T) {
	det := &stubDetector{}
	core := newTestCore(t, det)
	ctx := context.Background()
	video := newSampleVideo(t, "traffic.mp4")

	out, err := core.AddTask(ctx, &task.AddTaskInput{
		VideoPath:     video,
		Model:         "yolov8s.pt",
		ConfThreshold: 0.6,
		TargetClasses: []string{"person", "car"},
		GapTolerance:  2,
	})
	if err != nil {
		t.Fatal(err)
	}
	token, ok := core.RunToken(out.ID)
	if !ok {
		t.Fatal("no run token")
	}

	if err := core.WebhookStarted(out.ID, token, 30, 900); err != nil {
		t.Fatal(err)
	}
	// dog 不在目标类别中,应被过滤
	frames := []struct {
		frame int
		items []analysis.RawDetection
	}{
		{0, []analysis.RawDetection{rawDet("person", 0, 0.91)}},
		{12, []analysis.RawDetection{rawDet("person", 0, 0.52), rawDet("dog", 16, 0.88)}},
		{150, []analysis.RawDetection{rawDet("person", 0, 0.77), rawDet("car", 2, 0.66)}},
	}
	for _, f := range frames {
		if err := core.WebhookFrames(out.ID, token, f.frame, f.items); err != nil {
			t.Fatal(err)
		}
	}
	if err := core.WebhookCompleted(out.ID, token); err != nil {
		t.Fatal(err)
	}

	row := waitStatus(t, core, out.ID, task.StatusCompleted)
	if row.FPS != 30 || row.TotalFrames != 900 {
		t.Errorf("props = %v/%v, want 30/900", row.FPS, row.TotalFrames)
	}
	if row.ProcessedFrames != 3 {
		t.Errorf("processed_frames = %d, want 3", row.ProcessedFrames)
	}
	if row.DetectionCount != 4 {
		t.Errorf("detection_count = %d, want 4", row.DetectionCount)
	}
	if row.JSONPath == "" || row.CSVPath == "" || row.ArtifactBytes <= 0 {
		t.Errorf("artifacts missing: %+v", row)
	}
	if row.FinishedAt == nil {
		t.Error("finished_at not set")
	}
	for _, p := range row.ArtifactPaths() {
		if _, err := os.Stat(core.ArtifactPath(p)); err != nil {
			t.Errorf("artifact %s: %v", p, err)
		}
	}

	req := det.lastStarted()
	if req == nil {
		t.Fatal("StartAnalysis not called")
	}
	if req.GetVideoPath() != video || req.GetModel() != "yolov8s.pt" || req.GetThreshold() != 0.6 {
		t.Errorf("start request = %+v", req)
	}
	if !strings.Contains(req.GetCallback(), "token="+token) {
		t.Errorf("callback missing token: %s", req.GetCallback())
	}

	doc, err := core.GetResult(ctx, out.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got := doc.Detections.Classes(); len(got) != 2 || got[0] != "person" || got[1] != "car" {
		t.Errorf("classes = %v, want [person car]", got)
	}
	if doc.Properties.FPS != 30 || doc.Properties.DurationSeconds != 30 {
		t.Errorf("properties = %+v", doc.Properties)
	}
	tl, _ := doc.Detections.Get("person")
	if len(tl) != 3 {
		t.Fatalf("person timeline = %d, want 3", len(tl))
	}
	if tl[1].TimestampSeconds != 0.4 || tl[1].TimestampFormatted != "00:00:00.400" {
		t.Errorf("frame 12 timestamp = %v %s", tl[1].TimestampSeconds, tl[1].TimestampFormatted)
	}
	if tl[0].Box.X1 != 10.57 {
		t.Errorf("box x1 = %v, want 10.57", tl[0].Box.X1)
	}

	sum, err := core.GetSummary(ctx, out.ID)
	if err != nil {
		t.Fatal(err)
	}
	if sum.DetectionCount != 4 || len(sum.Items) != 2 {
		t.Fatalf("summary = %+v", sum)
	}
	person := sum.Items[0]
	if person.Class != "person" || person.Count != 3 ||
		person.FirstAppearance != "00:00:00.000" || person.LastAppearance != "00:00:05.000" {
		t.Errorf("person summary = %+v", person)
	}

	// 任务默认容差 2s: 0 与 0.4 合并,5.0 独立成段
	iv, err := core.GetIntervals(ctx, out.ID, &task.IntervalsInput{})
	if err != nil {
		t.Fatal(err)
	}
	if iv.Gap != 2 || len(iv.Items) != 2 {
		t.Fatalf("intervals = %+v", iv)
	}
	got := iv.Items[0].Intervals
	want := []analysis.Interval{{StartSeconds: 0, EndSeconds: 0.4}, {StartSeconds: 5, EndSeconds: 5}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("person intervals = %v, want %v", got, want)
	}

	// 放大容差后合并为一段
	iv, err = core.GetIntervals(ctx, out.ID, &task.IntervalsInput{Class: "person", Gap: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(iv.Items) != 1 || len(iv.Items[0].Intervals) != 1 {
		t.Fatalf("merged intervals = %+v", iv.Items)
	}
	if one := iv.Items[0].Intervals[0]; one.StartSeconds != 0 || one.EndSeconds != 5 {
		t.Errorf("merged = %+v", one)
	}

	if _, err := core.GetIntervals(ctx, out.ID, &task.IntervalsInput{Class: "zebra"}); err == nil {
		t.Error("expect error for absent class")
	}
}

func TestWebhookCancelKeepsPartialResults(t *testing.T) {
	det := &stubDetector{}
	core := newTestCore(t, det)
	ctx := context.Background()

	out, err := core.AddTask(ctx, &task.AddTaskInput{VideoPath: newSampleVideo(t, "walk.mp4")})
	if err != nil {
		t.Fatal(err)
	}
	token, _ := core.RunToken(out.ID)

	if err := core.WebhookStarted(out.ID, token, 25, 100); err != nil {
		t.Fatal(err)
	}
	for _, frame := range []int{0, 5} {
		if err := core.WebhookFrames(out.ID, token, frame, []analysis.RawDetection{rawDet("person", 0, 0.8)}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := core.CancelTask(ctx, out.ID); err != nil {
		t.Fatal(err)
	}

	row := waitStatus(t, core, out.ID, task.StatusCancelled)
	if row.Reason != "cancelled" {
		t.Errorf("reason = %s", row.Reason)
	}
	if row.JSONPath == "" {
		t.Fatal("partial results not exported")
	}
	if row.ProcessedFrames != 2 || row.DetectionCount != 2 {
		t.Errorf("partial counts = %d/%d, want 2/2", row.ProcessedFrames, row.DetectionCount)
	}

	ids := det.stoppedTasks()
	if len(ids) != 1 || ids[0] != out.ID {
		t.Errorf("StopAnalysis calls = %v", ids)
	}

	sum, err := core.GetSummary(ctx, out.ID)
	if err != nil {
		t.Fatal(err)
	}
	if sum.DetectionCount != 2 {
		t.Errorf("partial summary = %+v", sum)
	}
}

func TestWebhookDetectorFailure(t *testing.T) {
	core := newTestCore(t, &stubDetector{})
	ctx := context.Background()

	out, err := core.AddTask(ctx, &task.AddTaskInput{VideoPath: newSampleVideo(t, "walk.mp4")})
	if err != nil {
		t.Fatal(err)
	}
	token, _ := core.RunToken(out.ID)

	if err := core.WebhookFrames(out.ID, token, 0, []analysis.RawDetection{rawDet("person", 0, 0.8)}); err != nil {
		t.Fatal(err)
	}
	if err := core.WebhookFailed(out.ID, token, "gpu oom"); err != nil {
		t.Fatal(err)
	}

	row := waitStatus(t, core, out.ID, task.StatusFailed)
	if row.Reason != "gpu oom" {
		t.Errorf("reason = %s", row.Reason)
	}
	if row.JSONPath != "" || row.CSVPath != "" {
		t.Errorf("failed run must not export artifacts: %+v", row)
	}
	if _, err := core.GetResult(ctx, out.ID); err == nil {
		t.Error("expect error reading failed result")
	}
}

func TestWebhookOutOfOrderFrame(t *testing.T) {
	core := newTestCore(t, &stubDetector{})
	ctx := context.Background()

	out, err := core.AddTask(ctx, &task.AddTaskInput{VideoPath: newSampleVideo(t, "walk.mp4")})
	if err != nil {
		t.Fatal(err)
	}
	token, _ := core.RunToken(out.ID)

	if err := core.WebhookFrames(out.ID, token, 5, []analysis.RawDetection{rawDet("person", 0, 0.8)}); err != nil {
		t.Fatal(err)
	}
	err = core.WebhookFrames(out.ID, token, 3, []analysis.RawDetection{rawDet("person", 0, 0.8)})
	if !errors.Is(err, analysis.ErrOutOfOrderFrame) {
		t.Fatalf("err = %v, want ErrOutOfOrderFrame", err)
	}

	row := waitStatus(t, core, out.ID, task.StatusFailed)
	if row.Reason == "" {
		t.Error("reason not recorded")
	}
}

func TestWebhookTokenMismatch(t *testing.T) {
	core := newTestCore(t, &stubDetector{})
	ctx := context.Background()

	out, err := core.AddTask(ctx, &task.AddTaskInput{VideoPath: newSampleVideo(t, "walk.mp4")})
	if err != nil {
		t.Fatal(err)
	}

	if err := core.WebhookKeepalive(out.ID, "forged"); !errors.Is(err, task.ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
	if err := core.WebhookCompleted("at_none", "x"); !errors.Is(err, task.ErrUnknownRun) {
		t.Errorf("err = %v, want ErrUnknownRun", err)
	}

	if _, err := core.CancelTask(ctx, out.ID); err != nil {
		t.Fatal(err)
	}
	waitStatus(t, core, out.ID, task.StatusCancelled)
}

func TestConcurrentRunLimit(t *testing.T) {
	core := newTestCore(t, &stubDetector{}, func(c *conf.Analysis) { c.MaxConcurrentRuns = 1 })
	ctx := context.Background()

	first, err := core.AddTask(ctx, &task.AddTaskInput{VideoPath: newSampleVideo(t, "a.mp4")})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := core.AddTask(ctx, &task.AddTaskInput{VideoPath: newSampleVideo(t, "b.mp4")}); err == nil {
		t.Error("expect limit error")
	}

	if _, err := core.CancelTask(ctx, first.ID); err != nil {
		t.Fatal(err)
	}
	waitStatus(t, core, first.ID, task.StatusCancelled)
	waitIdle(t, core)

	// 释放配额后可以继续创建
	second, err := core.AddTask(ctx, &task.AddTaskInput{VideoPath: newSampleVideo(t, "c.mp4")})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := core.CancelTask(ctx, second.ID); err != nil {
		t.Fatal(err)
	}
	waitStatus(t, core, second.ID, task.StatusCancelled)
}

func TestDelTask(t *testing.T) {
	core := newTestCore(t, &stubDetector{})
	ctx := context.Background()

	out, err := core.AddTask(ctx, &task.AddTaskInput{VideoPath: newSampleVideo(t, "walk.mp4")})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := core.DelTask(ctx, out.ID); err == nil {
		t.Error("expect error deleting running task")
	}

	token, _ := core.RunToken(out.ID)
	if err := core.WebhookStarted(out.ID, token, 30, 10); err != nil {
		t.Fatal(err)
	}
	if err := core.WebhookFrames(out.ID, token, 0, []analysis.RawDetection{rawDet("person", 0, 0.8)}); err != nil {
		t.Fatal(err)
	}
	if err := core.WebhookCompleted(out.ID, token); err != nil {
		t.Fatal(err)
	}
	row := waitStatus(t, core, out.ID, task.StatusCompleted)
	waitIdle(t, core)

	if _, err := core.DelTask(ctx, out.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := core.GetTask(ctx, out.ID); err == nil {
		t.Error("row still present after delete")
	}
	for _, p := range row.ArtifactPaths() {
		if _, err := os.Stat(core.ArtifactPath(p)); !os.IsNotExist(err) {
			t.Errorf("artifact %s survived delete", p)
		}
	}
}

func TestGetProgress(t *testing.T) {
	core := newTestCore(t, &stubDetector{})
	ctx := context.Background()

	out, err := core.AddTask(ctx, &task.AddTaskInput{VideoPath: newSampleVideo(t, "walk.mp4")})
	if err != nil {
		t.Fatal(err)
	}
	token, _ := core.RunToken(out.ID)
	if err := core.WebhookStarted(out.ID, token, 30, 60); err != nil {
		t.Fatal(err)
	}
	if err := core.WebhookFrames(out.ID, token, 0, []analysis.RawDetection{rawDet("person", 0, 0.8)}); err != nil {
		t.Fatal(err)
	}

	p, err := core.GetProgress(ctx, out.ID)
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != task.StatusRunning || p.ProcessedFrames != 1 || p.TotalFrames != 60 {
		t.Errorf("live progress = %+v", p)
	}
	if len(p.Logs) == 0 {
		t.Error("live progress has no logs")
	}

	if err := core.WebhookCompleted(out.ID, token); err != nil {
		t.Fatal(err)
	}
	waitStatus(t, core, out.ID, task.StatusCompleted)
	waitIdle(t, core)

	p, err = core.GetProgress(ctx, out.ID)
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != task.StatusCompleted || p.ProcessedFrames != 1 {
		t.Errorf("stored progress = %+v", p)
	}
}

func TestCancelTerminalTask(t *testing.T) {
	core := newTestCore(t, &stubDetector{})
	ctx := context.Background()

	out, err := core.AddTask(ctx, &task.AddTaskInput{VideoPath: newSampleVideo(t, "walk.mp4")})
	if err != nil {
		t.Fatal(err)
	}
	token, _ := core.RunToken(out.ID)
	if err := core.WebhookCompleted(out.ID, token); err != nil {
		t.Fatal(err)
	}
	waitStatus(t, core, out.ID, task.StatusCompleted)

	if _, err := core.CancelTask(ctx, out.ID); err == nil {
		t.Error("expect error cancelling terminal task")
	}
}

func TestFindTasks(t *testing.T) {
	core := newTestCore(t, &stubDetector{})
	ctx := context.Background()

	finish := func(name string, fail bool) {
		t.Helper()
		out, err := core.AddTask(ctx, &task.AddTaskInput{VideoPath: newSampleVideo(t, name)})
		if err != nil {
			t.Fatal(err)
		}
		token, _ := core.RunToken(out.ID)
		if fail {
			if err := core.WebhookFailed(out.ID, token, "boom"); err != nil {
				t.Fatal(err)
			}
			waitStatus(t, core, out.ID, task.StatusFailed)
			return
		}
		if err := core.WebhookCompleted(out.ID, token); err != nil {
			t.Fatal(err)
		}
		waitStatus(t, core, out.ID, task.StatusCompleted)
	}
	finish("walk1.mp4", false)
	finish("walk2.mp4", false)
	finish("crash.mp4", true)

	pager := web.PagerFilter{Page: 1, Size: 20}

	items, total, err := core.FindTasks(ctx, &task.FindTaskInput{PagerFilter: pager})
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(items) != 3 {
		t.Errorf("all = %d/%d, want 3/3", total, len(items))
	}

	items, total, err = core.FindTasks(ctx, &task.FindTaskInput{PagerFilter: pager, Status: task.StatusCompleted})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Errorf("completed = %d, want 2", total)
	}
	for _, it := range items {
		if it.Status != task.StatusCompleted {
			t.Errorf("status = %s", it.Status)
		}
	}

	_, total, err = core.FindTasks(ctx, &task.FindTaskInput{PagerFilter: pager, Q: "crash"})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 {
		t.Errorf("q=crash total = %d, want 1", total)
	}
}
