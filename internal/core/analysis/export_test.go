package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func requireNumber(t *testing.T, value any, field string) float64 {
	t.Helper()
	num, ok := value.(float64)
	if !ok {
		t.Fatalf("expected %s to be number, got %T", field, value)
	}
	return num
}

func requireString(t *testing.T, value any, field string) string {
	t.Helper()
	str, ok := value.(string)
	if !ok {
		t.Fatalf("expected %s to be string, got %T", field, value)
	}
	return str
}

func requireMap(t *testing.T, value any, field string) map[string]any {
	t.Helper()
	m, ok := value.(map[string]any)
	if !ok {
		t.Fatalf("expected %s to be object, got %T", field, value)
	}
	return m
}

func requireSlice(t *testing.T, value any, field string) []any {
	t.Helper()
	s, ok := value.([]any)
	if !ok {
		t.Fatalf("expected %s to be array, got %T", field, value)
	}
	return s
}

// demoResult 两个类别、三条检测的样例运行
func demoResult(t *testing.T) *ResultSet {
	t.Helper()
	agg := NewAggregator("demo.mp4", VideoProperties{FPS: 10, TotalFrames: 3}, Settings{
		Model:         "yolov8n.pt",
		ConfThreshold: 0.25,
	})
	err := agg.Ingest(0, []RawDetection{
		{ClassID: 2, ClassName: "car", Confidence: 0.9, Box: BoundingBox{X1: 10.5, Y1: 20.25, X2: 110, Y2: 220.75}},
		{ClassID: 0, ClassName: "person", Confidence: 0.85674, Box: BoundingBox{X1: 1.111, Y1: 2.222, X2: 3.333, Y2: 4.444}},
	})
	if err != nil {
		t.Fatalf("Ingest(0) error = %v", err)
	}
	err = agg.Ingest(2, []RawDetection{
		{ClassID: 2, ClassName: "car", Confidence: 0.75, Box: BoundingBox{X1: 11, Y1: 21, X2: 111, Y2: 221}},
	})
	if err != nil {
		t.Fatalf("Ingest(2) error = %v", err)
	}
	return agg.Finish()
}

func TestDocumentShape(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(demoResult(t), FormatJSON, &buf); err != nil {
		t.Fatalf("Export error = %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode json: %v\nbody=%s", err, buf.String())
	}

	if got := requireString(t, payload["video_path"], "video_path"); got != "demo.mp4" {
		t.Errorf("video_path = %q", got)
	}

	props := requireMap(t, payload["video_properties"], "video_properties")
	if got := requireNumber(t, props["fps"], "fps"); got != 10 {
		t.Errorf("fps = %v, want 10", got)
	}
	if got := requireNumber(t, props["total_frames"], "total_frames"); got != 3 {
		t.Errorf("total_frames = %v, want 3", got)
	}
	if got := requireNumber(t, props["duration_seconds"], "duration_seconds"); got != 0.3 {
		t.Errorf("duration_seconds = %v, want 0.3", got)
	}
	if got := requireString(t, props["duration_formatted"], "duration_formatted"); got != "00:00:00.300" {
		t.Errorf("duration_formatted = %q", got)
	}

	settings := requireMap(t, payload["detection_settings"], "detection_settings")
	if got := requireString(t, settings["model"], "model"); got != "yolov8n.pt" {
		t.Errorf("model = %q", got)
	}
	if got := requireNumber(t, settings["confidence_threshold"], "confidence_threshold"); got != 0.25 {
		t.Errorf("confidence_threshold = %v", got)
	}
	if got := requireString(t, settings["target_classes"], "target_classes"); got != "all classes" {
		t.Errorf("target_classes = %q, want all classes", got)
	}

	byClass := requireMap(t, payload["detections_by_class"], "detections_by_class")
	cars := requireSlice(t, byClass["car"], "detections_by_class.car")
	if len(cars) != 2 {
		t.Fatalf("car detections = %d, want 2", len(cars))
	}
	for i, raw := range cars {
		det := requireMap(t, raw, fmt.Sprintf("car[%d]", i))
		requireNumber(t, det["timestamp_seconds"], "timestamp_seconds")
		requireString(t, det["timestamp_formatted"], "timestamp_formatted")
		requireNumber(t, det["frame_number"], "frame_number")
		requireString(t, det["class_name"], "class_name")
		requireNumber(t, det["class_id"], "class_id")
		requireNumber(t, det["confidence"], "confidence")
		bbox := requireMap(t, det["bbox"], "bbox")
		for _, k := range []string{"x1", "y1", "x2", "y2"} {
			requireNumber(t, bbox[k], "bbox."+k)
		}
	}
	second := requireMap(t, cars[1], "car[1]")
	if got := requireNumber(t, second["timestamp_seconds"], "timestamp_seconds"); got != 0.2 {
		t.Errorf("car[1] timestamp = %v, want 0.2", got)
	}
	if got := requireString(t, second["timestamp_formatted"], "timestamp_formatted"); got != "00:00:00.200" {
		t.Errorf("car[1] formatted = %q", got)
	}

	summary := requireMap(t, payload["summary"], "summary")
	personSum := requireMap(t, summary["person"], "summary.person")
	if got := requireNumber(t, personSum["count"], "count"); got != 1 {
		t.Errorf("person count = %v", got)
	}
	if got := requireString(t, personSum["first_appearance"], "first_appearance"); got != "00:00:00.000" {
		t.Errorf("first_appearance = %q", got)
	}
	if got := requireString(t, personSum["last_appearance"], "last_appearance"); got != "00:00:00.000" {
		t.Errorf("last_appearance = %q", got)
	}

	// 两空格缩进
	if !strings.HasPrefix(buf.String(), "{\n  \"video_path\": \"demo.mp4\",\n") {
		t.Errorf("unexpected indent prefix: %q", buf.String()[:40])
	}
	// 类别按首次检出顺序序列化,car 在 person 之前
	text := buf.String()
	if strings.Index(text, `"car"`) > strings.Index(text, `"person"`) {
		t.Error("class order not preserved in document")
	}
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(demoResult(t), FormatCSV, &buf); err != nil {
		t.Fatalf("Export error = %v", err)
	}

	want := strings.Join([]string{
		"Timestamp (seconds),Timestamp (formatted),Frame,Class,Confidence,X1,Y1,X2,Y2",
		"0,00:00:00.000,0,car,0.9,10.5,20.25,110,220.75",
		"0.2,00:00:00.200,2,car,0.75,11,21,111,221",
		"0,00:00:00.000,0,person,0.857,1.11,2.22,3.33,4.44",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Fatalf("csv mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestExportTargetClassesRendering(t *testing.T) {
	tests := []struct {
		name   string
		filter []string
		want   string
	}{
		{"nil 渲染为 all classes", nil, `"target_classes": "all classes"`},
		{"白名单渲染为数组", []string{"person", "car"}, `"target_classes": [`},
		{"空白名单渲染为空数组", []string{}, `"target_classes": []`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewAggregator("demo.mp4", VideoProperties{FPS: 10}, Settings{TargetClasses: tt.filter})
			var buf bytes.Buffer
			if err := Export(agg.Finish(), FormatJSON, &buf); err != nil {
				t.Fatalf("Export error = %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Fatalf("document missing %q:\n%s", tt.want, buf.String())
			}
		})
	}
}

func TestExportUnsupportedFormat(t *testing.T) {
	rs := demoResult(t)
	var buf bytes.Buffer
	err := Export(rs, "xml", &buf)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Export(xml) error = %v, want ErrUnsupportedFormat", err)
	}
	// 导出失败不影响结果集
	if rs.DetectionCount() != 3 {
		t.Fatalf("result set corrupted after failed export")
	}
	// 格式名大小写不敏感
	if err := Export(rs, "JSON", &buf); err != nil {
		t.Fatalf("Export(JSON) error = %v", err)
	}
}

// 文档往返:解析既有 JSON 再导出平面表,行数等于 summary 计数之和
func TestDocumentRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(demoResult(t), FormatJSON, &buf); err != nil {
		t.Fatalf("Export error = %v", err)
	}

	doc, err := DecodeDocument(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeDocument error = %v", err)
	}

	var sum int
	for _, name := range doc.Summary.Classes() {
		s, _ := doc.Summary.Get(name)
		sum += s.Count
	}

	var csvBuf bytes.Buffer
	if err := doc.WriteCSV(&csvBuf); err != nil {
		t.Fatalf("WriteCSV error = %v", err)
	}
	lines := strings.Split(strings.TrimRight(csvBuf.String(), "\n"), "\n")
	if rows := len(lines) - 1; rows != sum {
		t.Fatalf("rows = %d, summary sum = %d", rows, sum)
	}
	if doc.RowCount() != sum {
		t.Fatalf("RowCount = %d, summary sum = %d", doc.RowCount(), sum)
	}

	// 类别顺序在解码后保持
	wantOrder := []string{"car", "person"}
	gotOrder := doc.Detections.Classes()
	if len(gotOrder) != len(wantOrder) {
		t.Fatalf("classes = %v, want %v", gotOrder, wantOrder)
	}
	for i := range wantOrder {
		if gotOrder[i] != wantOrder[i] {
			t.Fatalf("classes = %v, want %v", gotOrder, wantOrder)
		}
	}

	// 解码-再编码数值文本一致
	var again bytes.Buffer
	if err := doc.WriteJSON(&again); err != nil {
		t.Fatalf("WriteJSON error = %v", err)
	}
	if again.String() != buf.String() {
		t.Fatal("re-encoded document differs from original")
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00.000"},
		{0.1, "00:00:00.100"},
		{5.3, "00:00:05.300"},
		{59.999, "00:00:59.999"},
		{60, "00:01:00.000"},
		{3599.5, "00:59:59.500"},
		{3600, "01:00:00.000"},
		{3661.001, "01:01:01.001"},
		{86399.999, "23:59:59.999"},
		{-1, "00:00:00.000"},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(tt.seconds); got != tt.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
