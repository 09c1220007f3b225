// Package detstream 检测事件的 JSONL 读写
// 每行一个事件,首行约定为 header,用于离线回放与旁路留档
package detstream

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const (
	TypeHeader = "header"
	TypeFrame  = "frame"
)

type (
	// Header 流的首行,描述视频与模型
	Header struct {
		VideoPath   string  `json:"video_path"`
		FPS         float64 `json:"fps"`
		TotalFrames int     `json:"total_frames"`
		Width       int     `json:"width,omitempty"`
		Height      int     `json:"height,omitempty"`
		Model       string  `json:"model,omitempty"`
	}

	Box struct {
		X1 float64 `json:"x1"`
		Y1 float64 `json:"y1"`
		X2 float64 `json:"x2"`
		Y2 float64 `json:"y2"`
	}

	Detection struct {
		ClassID    int     `json:"class_id"`
		ClassName  string  `json:"class_name"`
		Confidence float64 `json:"confidence"`
		Box        Box     `json:"bbox"`
	}

	// Event 一行事件,Type 区分 header 与 frame
	Event struct {
		Type       string      `json:"type"`
		Header     *Header     `json:"header,omitempty"`
		Frame      int         `json:"frame,omitempty"`
		Detections []Detection `json:"detections,omitempty"`
	}
)

// Writer 逐行写出事件
type Writer struct {
	w *bufio.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func (w *Writer) WriteHeader(h Header) error {
	return w.writeLine(Event{Type: TypeHeader, Header: &h})
}

func (w *Writer) WriteFrame(frame int, dets []Detection) error {
	return w.writeLine(Event{Type: TypeFrame, Frame: frame, Detections: dets})
}

func (w *Writer) writeLine(ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(data); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Reader 逐行读入事件
// 行内容损坏时报错并带上行号
type Reader struct {
	scan *bufio.Scanner
	line int
}

func NewReader(r io.Reader) *Reader {
	scan := bufio.NewScanner(r)
	// 单帧检测较多时一行会很长
	scan.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	return &Reader{scan: scan}
}

// Next 读取下一个事件,流结束返回 io.EOF
func (r *Reader) Next() (*Event, error) {
	for r.scan.Scan() {
		r.line++
		data := r.scan.Bytes()
		if len(data) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("line %d: %w", r.line, err)
		}
		if ev.Type != TypeHeader && ev.Type != TypeFrame {
			return nil, fmt.Errorf("line %d: unknown event type [%s]", r.line, ev.Type)
		}
		return &ev, nil
	}
	if err := r.scan.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// ReadHeader 要求首个事件为 header
func (r *Reader) ReadHeader() (*Header, error) {
	ev, err := r.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty stream")
		}
		return nil, err
	}
	if ev.Type != TypeHeader || ev.Header == nil {
		return nil, errors.New("stream does not start with a header event")
	}
	return ev.Header, nil
}
