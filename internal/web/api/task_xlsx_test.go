package api

import (
	"testing"

	"github.com/gowvp/vtime/internal/core/analysis"
	"github.com/xuri/excelize/v2"
)

// demoDocument 两个类别的样例文档,person 时间轴含一次超过容差的间断
func demoDocument() *analysis.Document {
	doc := analysis.Document{
		VideoPath: "demo.mp4",
		Properties: analysis.DocProperties{
			FPS:               25,
			TotalFrames:       250,
			DurationSeconds:   10,
			DurationFormatted: "00:00:10.000",
		},
		Settings: analysis.DocSettings{Model: "yolov8n.pt", ConfThreshold: 0.5},
	}
	doc.Detections.Set("person", []analysis.Detection{
		{TimestampSeconds: 1, TimestampFormatted: "00:00:01.000", FrameNumber: 25, ClassName: "person", Confidence: 0.9, Box: analysis.BoundingBox{X1: 10, Y1: 20, X2: 110, Y2: 220}},
		{TimestampSeconds: 1.5, TimestampFormatted: "00:00:01.500", FrameNumber: 37, ClassName: "person", Confidence: 0.85, Box: analysis.BoundingBox{X1: 12, Y1: 21, X2: 111, Y2: 222}},
		{TimestampSeconds: 5, TimestampFormatted: "00:00:05.000", FrameNumber: 125, ClassName: "person", Confidence: 0.8, Box: analysis.BoundingBox{X1: 200, Y1: 30, X2: 300, Y2: 240}},
	})
	doc.Detections.Set("car", []analysis.Detection{
		{TimestampSeconds: 2, TimestampFormatted: "00:00:02.000", FrameNumber: 50, ClassName: "car", ClassID: 2, Confidence: 0.75, Box: analysis.BoundingBox{X1: 50, Y1: 60, X2: 400, Y2: 300}},
	})
	doc.Summary.Set("person", analysis.DocSummary{Count: 3, FirstAppearance: "00:00:01.000", LastAppearance: "00:00:05.000"})
	doc.Summary.Set("car", analysis.DocSummary{Count: 1, FirstAppearance: "00:00:02.000", LastAppearance: "00:00:02.000"})
	return &doc
}

func TestBuildWorkbook(t *testing.T) {
	buf, err := buildWorkbook(demoDocument(), 1)
	if err != nil {
		t.Fatalf("buildWorkbook() error = %v", err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	wantSheets := []string{"Detections", "Summary", "Intervals"}
	sheets := f.GetSheetList()
	if len(sheets) != len(wantSheets) {
		t.Fatalf("GetSheetList() = %v, want %v", sheets, wantSheets)
	}
	for i := range wantSheets {
		if sheets[i] != wantSheets[i] {
			t.Fatalf("GetSheetList() = %v, want %v", sheets, wantSheets)
		}
	}

	rows, err := f.GetRows("Detections")
	if err != nil {
		t.Fatalf("GetRows(Detections) error = %v", err)
	}
	// 表头 + person 3 行 + car 1 行
	if len(rows) != 5 {
		t.Fatalf("Detections rows = %d, want 5", len(rows))
	}
	if rows[0][0] != analysis.CSVHeader[0] || rows[0][3] != analysis.CSVHeader[3] {
		t.Errorf("Detections header = %v, want %v", rows[0], analysis.CSVHeader)
	}
	if rows[1][3] != "person" || rows[4][3] != "car" {
		t.Errorf("class column = [%s %s], want [person car]", rows[1][3], rows[4][3])
	}
	if rows[2][0] != "1.5" || rows[2][1] != "00:00:01.500" {
		t.Errorf("row 3 = %v, want timestamp 1.5 / 00:00:01.500", rows[2])
	}
	if rows[4][5] != "50" || rows[4][8] != "300" {
		t.Errorf("car box cells = [%s %s], want [50 300]", rows[4][5], rows[4][8])
	}

	rows, err = f.GetRows("Summary")
	if err != nil {
		t.Fatalf("GetRows(Summary) error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Summary rows = %d, want 3", len(rows))
	}
	if rows[1][0] != "person" || rows[1][1] != "3" || rows[1][3] != "00:00:05.000" {
		t.Errorf("person summary = %v", rows[1])
	}
	if rows[2][0] != "car" || rows[2][1] != "1" {
		t.Errorf("car summary = %v", rows[2])
	}

	rows, err = f.GetRows("Intervals")
	if err != nil {
		t.Fatalf("GetRows(Intervals) error = %v", err)
	}
	// 容差 1s:person 在 1.5 与 5 之间断开成两段,car 单段
	if len(rows) != 4 {
		t.Fatalf("Intervals rows = %d, want 4", len(rows))
	}
	if rows[1][0] != "person" || rows[1][1] != "1" || rows[1][2] != "1.5" || rows[1][5] != "0.5" {
		t.Errorf("person interval 1 = %v", rows[1])
	}
	if rows[1][3] != analysis.FormatTimestamp(1) {
		t.Errorf("interval start formatted = %q, want %q", rows[1][3], analysis.FormatTimestamp(1))
	}
	if rows[2][1] != "5" || rows[2][2] != "5" {
		t.Errorf("person interval 2 = %v", rows[2])
	}
	if rows[3][0] != "car" {
		t.Errorf("interval 3 class = %q, want car", rows[3][0])
	}
}
