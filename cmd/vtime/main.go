// vtime 命令行工具
// 三种用法:直连检测服务分析视频文件、离线回放 JSONL 事件流、
// 用 JSONPath 检索已导出的结果文档
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gowvp/vtime/internal/core/analysis"
	"github.com/gowvp/vtime/internal/rpc"
	"github.com/gowvp/vtime/pkg/detstream"
	"github.com/gowvp/vtime/pkg/labels"
	"github.com/gowvp/vtime/pkg/vsource"
	"github.com/gowvp/vtime/protos"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

var (
	videoPattern  = flag.String("video", "", "视频文件路径,支持 ** 通配批量分析")
	eventsPath    = flag.String("events", "", "离线回放 JSONL 检测事件流")
	inspectTarget = flag.String("inspect", "", "检索已导出的 JSON 结果文档")
	inspectExpr   = flag.String("path", "", "-inspect 使用的 JSONPath 表达式")

	model         = flag.String("model", "yolov8n.pt", "检测模型")
	confThreshold = flag.Float64("conf", 0.5, "置信度阈值 (0,1]")
	classesFlag   = flag.String("classes", "", "目标类别,逗号分隔,留空不过滤")
	gapTolerance  = flag.Float64("gap", 1.0, "时间线合并的间隔容差(秒)")
	outputDir     = flag.String("output", "exports", "导出目录")
	format        = flag.String("format", analysis.FormatJSON, "导出格式 json|csv")
	labelsFile    = flag.String("labels", "", "数据集 yaml,留空使用内置 COCO 标签")
	detectorAddr  = flag.String("detector", "127.0.0.1:50051", "检测服务 gRPC 地址")
	recordPath    = flag.String("record", "", "分析同时把检测事件落盘为 JSONL(仅单个 -video)")
)

func main() {
	flag.Parse()
	// 人读输出走 stdout,日志压到 stderr 只留告警
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch {
	case *inspectTarget != "":
		err = inspectDocument(*inspectTarget, *inspectExpr)
	case *eventsPath != "":
		err = replayEvents(*eventsPath)
	case *videoPattern != "":
		err = analyzeBatch(ctx, *videoPattern)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "vtime:", err)
		os.Exit(1)
	}
}

func splitClasses() []string {
	if *classesFlag == "" {
		return nil
	}
	parts := strings.Split(*classesFlag, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func loadLabels() (*labels.Map, error) {
	if *labelsFile == "" {
		return labels.COCO(), nil
	}
	return labels.Load(*labelsFile)
}

func buildSettings() analysis.Settings {
	return analysis.Settings{
		Model:         *model,
		ConfThreshold: *confThreshold,
		TargetClasses: splitClasses(),
	}
}

// analyzeBatch 逐个分析匹配到的视频
func analyzeBatch(ctx context.Context, pattern string) error {
	files, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no files match %q", pattern)
	}
	sort.Strings(files)
	if *recordPath != "" && len(files) > 1 {
		return fmt.Errorf("-record only works with a single video, pattern matched %d files", len(files))
	}

	lm, err := loadLabels()
	if err != nil {
		return err
	}
	if err := lm.Validate(splitClasses()); err != nil {
		return err
	}

	cli := rpc.NewDetectorClient(*detectorAddr)
	if cli == nil {
		return fmt.Errorf("cannot reach detector at %s", *detectorAddr)
	}

	for i, file := range files {
		if len(files) > 1 {
			fmt.Printf("[%d/%d] %s\n", i+1, len(files), file)
		}
		if err := analyzeOne(ctx, cli, lm, file); err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
	}
	return nil
}

// analyzeOne 探测视频属性,解码帧推给检测服务,聚合结果后导出
func analyzeOne(ctx context.Context, cli *rpc.DetectorClient, lm *labels.Map, path string) error {
	props, err := vsource.Probe(ctx, path)
	if err != nil {
		return err
	}

	agg := analysis.NewAggregator(path, analysis.VideoProperties{
		FPS:         props.FPS,
		TotalFrames: props.TotalFrames,
	}, buildSettings())

	var tee *detstream.Writer
	if *recordPath != "" {
		f, err := os.Create(*recordPath)
		if err != nil {
			return err
		}
		defer f.Close()
		tee = detstream.NewWriter(f)
		if err := tee.WriteHeader(detstream.Header{
			VideoPath:   path,
			FPS:         props.FPS,
			TotalFrames: props.TotalFrames,
			Width:       props.Width,
			Height:      props.Height,
			Model:       *model,
		}); err != nil {
			return err
		}
	}

	reader, err := vsource.NewFrameReader(vsource.Config{
		Path:   path,
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

	stream, err := cli.Detect(ctx)
	if err != nil {
		return fmt.Errorf("open detect stream: %w", err)
	}

	sendErr := make(chan error, 1)
	go func() {
		defer stream.CloseSend()
		for frame := range reader.Frames() {
			req := protos.DetectRequest{
				Frame:       int64(frame.Index),
				Width:       int32(frame.Width),
				Height:      int32(frame.Height),
				PixelFormat: "bgr24",
				Data:        frame.Data,
				Model:       *model,
				Threshold:   *confThreshold,
			}
			if err := stream.Send(&req); err != nil {
				sendErr <- err
				return
			}
		}
		sendErr <- nil
	}()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("detect stream: %w", err)
		}
		frame := int(resp.GetFrame())
		raws := toRawDetections(lm, resp.GetDetections())
		if tee != nil {
			if err := tee.WriteFrame(frame, toStreamDetections(raws)); err != nil {
				return err
			}
		}
		if err := agg.Ingest(frame, raws); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
	}
	if err := <-sendErr; err != nil {
		return fmt.Errorf("send frames: %w", err)
	}
	select {
	case err := <-reader.Err():
		if err != nil {
			return err
		}
	default:
	}

	if tee != nil {
		if err := tee.Flush(); err != nil {
			return err
		}
	}
	return exportAndReport(agg.Finish(), path)
}

// replayEvents 无视频无检测器,回放已录制的事件流
func replayEvents(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := detstream.NewReader(f)
	h, err := r.ReadHeader()
	if err != nil {
		return err
	}

	settings := buildSettings()
	// 未显式指定模型时沿用录制时的
	if !isFlagSet("model") && h.Model != "" {
		settings.Model = h.Model
	}
	agg := analysis.NewAggregator(h.VideoPath, analysis.VideoProperties{
		FPS:         h.FPS,
		TotalFrames: h.TotalFrames,
	}, settings)

	for {
		ev, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if ev.Type != detstream.TypeFrame {
			continue
		}
		raws := make([]analysis.RawDetection, 0, len(ev.Detections))
		for _, d := range ev.Detections {
			raws = append(raws, analysis.RawDetection{
				ClassID:    d.ClassID,
				ClassName:  d.ClassName,
				Confidence: d.Confidence,
				Box:        analysis.BoundingBox(d.Box),
			})
		}
		if err := agg.Ingest(ev.Frame, raws); err != nil {
			return fmt.Errorf("frame %d: %w", ev.Frame, err)
		}
	}
	return exportAndReport(agg.Finish(), h.VideoPath)
}

// inspectDocument 用 JSONPath 检索结果文档,表达式为空时整体美化输出
func inspectDocument(path, expr string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	data, err := oj.ParseString(string(raw))
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if expr == "" {
		fmt.Println(oj.JSON(data, 2))
		return nil
	}
	x, err := jp.ParseString(expr)
	if err != nil {
		return fmt.Errorf("bad jsonpath %q: %w", expr, err)
	}
	results := x.Get(data)
	switch len(results) {
	case 0:
		return fmt.Errorf("no match for %q", expr)
	case 1:
		fmt.Println(oj.JSON(results[0], 2))
	default:
		fmt.Println(oj.JSON(results, 2))
	}
	return nil
}

// exportAndReport 导出产物并打印各类别的统计与出现区间
func exportAndReport(rs *analysis.ResultSet, videoPath string) error {
	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		return err
	}
	stem := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	if stem == "" {
		stem = "results"
	}
	target := filepath.Join(*outputDir, fmt.Sprintf("%s_detections.%s", stem, *format))
	if err := analysis.ExportFile(rs, *format, target); err != nil {
		return err
	}

	props := rs.Properties
	fmt.Printf("\n== %s ==\n", filepath.Base(videoPath))
	fmt.Printf("properties: %d frames @ %.2f fps (%.1fs)\n",
		props.TotalFrames, props.FPS, props.DurationSeconds())
	fmt.Printf("detections: %d in %d classes (model %s, threshold %.2f)\n",
		rs.DetectionCount(), len(rs.Classes()), rs.Settings.Model, rs.Settings.ConfThreshold)

	for _, name := range rs.Classes() {
		s, ok := rs.Summary(name)
		if !ok {
			continue
		}
		fmt.Printf("  %-12s count=%-5d first=%s  last=%s\n",
			name, s.Count,
			analysis.FormatTimestamp(s.FirstSeconds),
			analysis.FormatTimestamp(s.LastSeconds))
		for _, iv := range rs.Intervals(name, *gapTolerance) {
			fmt.Printf("    [%s - %s] %.1fs\n",
				analysis.FormatTimestamp(iv.StartSeconds),
				analysis.FormatTimestamp(iv.EndSeconds),
				iv.Duration())
		}
	}
	fmt.Printf("results written to %s\n", target)
	return nil
}

func toRawDetections(lm *labels.Map, items []*protos.Detection) []analysis.RawDetection {
	out := make([]analysis.RawDetection, 0, len(items))
	for _, det := range items {
		raw := analysis.RawDetection{
			ClassID:    int(det.GetClassId()),
			ClassName:  det.GetClassName(),
			Confidence: det.GetConfidence(),
		}
		if b := det.GetBox(); b != nil {
			raw.Box = analysis.BoundingBox{X1: b.GetX1(), Y1: b.GetY1(), X2: b.GetX2(), Y2: b.GetY2()}
		}
		if raw.ClassName == "" {
			if name, ok := lm.Name(raw.ClassID); ok {
				raw.ClassName = name
			}
		}
		out = append(out, raw)
	}
	return out
}

func toStreamDetections(raws []analysis.RawDetection) []detstream.Detection {
	out := make([]detstream.Detection, 0, len(raws))
	for _, r := range raws {
		out = append(out, detstream.Detection{
			ClassID:    r.ClassID,
			ClassName:  r.ClassName,
			Confidence: r.Confidence,
			Box:        detstream.Box(r.Box),
		})
	}
	return out
}

func isFlagSet(name string) bool {
	var found bool
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
