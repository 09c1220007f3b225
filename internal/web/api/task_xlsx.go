package api

import (
	"bytes"
	"fmt"

	"github.com/gowvp/vtime/internal/core/analysis"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook 由层级结果文档生成三页工作簿
// 明细页与 CSV 平面表同构，汇总页对应文档 summary 块，区间页按给定容差合并
func buildWorkbook(doc *analysis.Document, gap float64) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const detSheet = "Detections"
	if err := f.SetSheetName("Sheet1", detSheet); err != nil {
		return nil, err
	}
	header := make([]any, 0, len(analysis.CSVHeader))
	for _, h := range analysis.CSVHeader {
		header = append(header, h)
	}
	if err := f.SetSheetRow(detSheet, "A1", &header); err != nil {
		return nil, err
	}
	row := 2
	for _, name := range doc.Detections.Classes() {
		tl, _ := doc.Detections.Get(name)
		for _, det := range tl {
			cells := []any{
				det.TimestampSeconds, det.TimestampFormatted, det.FrameNumber,
				det.ClassName, det.Confidence,
				det.Box.X1, det.Box.Y1, det.Box.X2, det.Box.Y2,
			}
			if err := f.SetSheetRow(detSheet, fmt.Sprintf("A%d", row), &cells); err != nil {
				return nil, err
			}
			row++
		}
	}

	const sumSheet = "Summary"
	if _, err := f.NewSheet(sumSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sumSheet, "A1", &[]any{"Class", "Count", "First Appearance", "Last Appearance"}); err != nil {
		return nil, err
	}
	row = 2
	for _, name := range doc.Summary.Classes() {
		s, _ := doc.Summary.Get(name)
		cells := []any{name, s.Count, s.FirstAppearance, s.LastAppearance}
		if err := f.SetSheetRow(sumSheet, fmt.Sprintf("A%d", row), &cells); err != nil {
			return nil, err
		}
		row++
	}

	const ivSheet = "Intervals"
	if _, err := f.NewSheet(ivSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(ivSheet, "A1", &[]any{"Class", "Start (seconds)", "End (seconds)", "Start", "End", "Duration (seconds)"}); err != nil {
		return nil, err
	}
	row = 2
	for _, name := range doc.Detections.Classes() {
		tl, _ := doc.Detections.Get(name)
		for _, iv := range analysis.MergeIntervals(tl, gap) {
			cells := []any{
				name, iv.StartSeconds, iv.EndSeconds,
				analysis.FormatTimestamp(iv.StartSeconds),
				analysis.FormatTimestamp(iv.EndSeconds),
				iv.Duration(),
			}
			if err := f.SetSheetRow(ivSheet, fmt.Sprintf("A%d", row), &cells); err != nil {
				return nil, err
			}
			row++
		}
	}

	return f.WriteToBuffer()
}
