package analysis

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// 导出格式名
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// CSVHeader 平面导出的表头,列顺序固定
var CSVHeader = []string{
	"Timestamp (seconds)", "Timestamp (formatted)", "Frame",
	"Class", "Confidence", "X1", "Y1", "X2", "Y2",
}

// Document 层级导出文档,键名与序列化顺序稳定
// 类别顺序为首次检出顺序,两类映射均按此顺序序列化
type Document struct {
	VideoPath  string                    `json:"video_path"`
	Properties DocProperties             `json:"video_properties"`
	Settings   DocSettings               `json:"detection_settings"`
	Detections ClassOrdered[[]Detection] `json:"detections_by_class"`
	Summary    ClassOrdered[DocSummary]  `json:"summary"`
}

// DocProperties 文档内的视频属性块
type DocProperties struct {
	FPS               float64 `json:"fps"`
	TotalFrames       int     `json:"total_frames"`
	DurationSeconds   float64 `json:"duration_seconds"`
	DurationFormatted string  `json:"duration_formatted"`
}

// DocSettings 文档内的运行参数块
type DocSettings struct {
	Model         string        `json:"model"`
	ConfThreshold float64       `json:"confidence_threshold"`
	TargetClasses TargetClasses `json:"target_classes"`
}

// DocSummary 文档内单类别统计,出现时刻为格式化字符串
type DocSummary struct {
	Count           int    `json:"count"`
	FirstAppearance string `json:"first_appearance"`
	LastAppearance  string `json:"last_appearance"`
}

// TargetClasses 运行参数中的类别白名单
// nil 序列化为字符串 "all classes",与历史文档格式保持一致
type TargetClasses []string

func (t TargetClasses) MarshalJSON() ([]byte, error) {
	if t == nil {
		return json.Marshal("all classes")
	}
	return json.Marshal([]string(t))
}

func (t *TargetClasses) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		*t = nil
		return nil
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	*t = names
	return nil
}

// ClassOrdered 按类别首次出现顺序序列化的映射
// encoding/json 对普通 map 按键名排序,这里保持插入顺序
type ClassOrdered[T any] struct {
	classes []string
	byClass map[string]T
}

// Set 追加或覆盖,首次出现的键记录顺序
func (c *ClassOrdered[T]) Set(class string, v T) {
	if c.byClass == nil {
		c.byClass = make(map[string]T)
	}
	if _, ok := c.byClass[class]; !ok {
		c.classes = append(c.classes, class)
	}
	c.byClass[class] = v
}

// Get 取值,未知键返回零值
func (c *ClassOrdered[T]) Get(class string) (T, bool) {
	v, ok := c.byClass[class]
	return v, ok
}

// Classes 按序列化顺序返回键
func (c *ClassOrdered[T]) Classes() []string {
	return c.classes
}

// Len 键数量
func (c *ClassOrdered[T]) Len() int {
	return len(c.classes)
}

func (c ClassOrdered[T]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range c.classes {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(c.byClass[name])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (c *ClassOrdered[T]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expect object, got %v", tok)
	}
	c.classes = nil
	c.byClass = make(map[string]T)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name := tok.(string)
		var v T
		if err := dec.Decode(&v); err != nil {
			return err
		}
		c.Set(name, v)
	}
	return nil
}

// BuildDocument 从冻结结果构建导出文档
// 视频时长舍入 3 位,帧率 2 位,格式化时长由舍入值推出
func BuildDocument(rs *ResultSet) *Document {
	duration := round3(rs.Properties.DurationSeconds())
	doc := Document{
		VideoPath: rs.VideoPath,
		Properties: DocProperties{
			FPS:               round2(rs.Properties.FPS),
			TotalFrames:       rs.Properties.TotalFrames,
			DurationSeconds:   duration,
			DurationFormatted: FormatTimestamp(duration),
		},
		Settings: DocSettings{
			Model:         rs.Settings.Model,
			ConfThreshold: rs.Settings.ConfThreshold,
			TargetClasses: rs.Settings.TargetClasses,
		},
	}
	for _, name := range rs.classes {
		tl := rs.timelines[name]
		doc.Detections.Set(name, tl)
		if s, ok := Summarize(tl); ok {
			doc.Summary.Set(name, DocSummary{
				Count:           s.Count,
				FirstAppearance: FormatTimestamp(s.FirstSeconds),
				LastAppearance:  FormatTimestamp(s.LastSeconds),
			})
		}
	}
	return &doc
}

// DecodeDocument 解析既有导出文档,保留类别顺序
func DecodeDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

// WriteJSON 两空格缩进写出层级文档
func (d *Document) WriteJSON(w io.Writer) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteCSV 写出平面表:固定表头,每条检测一行,
// 类别拼接顺序与层级文档一致,类别内保持入库顺序
func (d *Document) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, name := range d.Detections.Classes() {
		tl, _ := d.Detections.Get(name)
		for _, det := range tl {
			row := []string{
				formatFloat(det.TimestampSeconds),
				det.TimestampFormatted,
				strconv.Itoa(det.FrameNumber),
				det.ClassName,
				formatFloat(det.Confidence),
				formatFloat(det.Box.X1),
				formatFloat(det.Box.Y1),
				formatFloat(det.Box.X2),
				formatFloat(det.Box.Y2),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// RowCount 平面表数据行数
func (d *Document) RowCount() int {
	var n int
	for _, name := range d.Detections.Classes() {
		tl, _ := d.Detections.Get(name)
		n += len(tl)
	}
	return n
}

type formatWriter func(*Document, io.Writer) error

var formats = map[string]formatWriter{
	FormatJSON: (*Document).WriteJSON,
	FormatCSV:  (*Document).WriteCSV,
}

// Export 以指定格式写出结果,格式名不区分大小写
// 未实现的格式返回 ErrUnsupportedFormat,仅影响本次导出调用
func Export(rs *ResultSet, format string, w io.Writer) error {
	return BuildDocument(rs).Export(format, w)
}

// Export 从已构建文档导出
func (d *Document) Export(format string, w io.Writer) error {
	fn, ok := formats[strings.ToLower(format)]
	if !ok {
		return fmt.Errorf("format [%s]: %w", format, ErrUnsupportedFormat)
	}
	return fn(d, w)
}

// ExportFile 导出到文件,I/O 失败包装底层错误,结果集不受影响
func ExportFile(rs *ResultSet, format, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := Export(rs, format, f); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", path, err)
	}
	return nil
}
