// Package vsource 基于 ffmpeg/ffprobe 的视频文件帧源
// 按解码顺序产出帧序号严格递增的原始帧,文件读完正常收口
package vsource

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ixugo/goddd/pkg/queue"
)

type (
	// Properties ffprobe 探测到的视频属性
	Properties struct {
		Width           int
		Height          int
		FPS             float64
		TotalFrames     int
		DurationSeconds float64
		CodecName       string
	}

	// Frame 一帧 BGR24 原始图像,Index 从 0 开始
	Frame struct {
		Index  int
		Width  int
		Height int
		Data   []byte
	}

	Config struct {
		Path   string
		Width  int
		Height int
	}

	// FrameReader 从视频文件读帧
	// ffmpeg 输出固定大小的 BGR24 帧,按帧大小整块读取;
	// 投递阻塞而不丢帧,分析要求见帧完整
	FrameReader struct {
		config     Config
		frameSize  int
		frameCh    chan *Frame
		errCh      chan error
		ctx        context.Context
		cancel     context.CancelFunc
		m          sync.Mutex
		started    bool
		cmd        *exec.Cmd
		wg         sync.WaitGroup
		ffmpegLog  *queue.CirQueue[string]
		frameCount atomic.Int64
	}

	Stats struct {
		FrameCount int64
		FrameSize  int
		IsRunning  bool
	}
)

func NewFrameReader(cfg Config) (*FrameReader, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("video path is required")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid resolution: %dx%d", cfg.Width, cfg.Height)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &FrameReader{
		config:    cfg,
		frameSize: cfg.Width * cfg.Height * 3,
		frameCh:   make(chan *Frame, 10),
		errCh:     make(chan error, 1),
		ctx:       ctx,
		cancel:    cancel,
		ffmpegLog: queue.NewCirQueue[string](100),
	}, nil
}

func (r *FrameReader) buildFFmpegArgs() []string {
	// 不加 -r 重采样,帧序号与源解码顺序一一对应
	return []string{
		"-hide_banner",
		"-loglevel", "warning",
		"-threads", "2",
		"-i", r.config.Path,
		"-f", "rawvideo",
		"-pix_fmt", "bgr24",
		"pipe:1",
	}
}

func (r *FrameReader) Start() error {
	r.m.Lock()
	defer r.m.Unlock()
	if r.started {
		return fmt.Errorf("frame reader already started")
	}

	r.cmd = exec.CommandContext(r.ctx, "ffmpeg", r.buildFFmpegArgs()...)
	stdout, err := r.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	stderr, err := r.cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to get stderr pipe: %w", err)
	}
	if err := r.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	r.started = true

	r.wg.Go(func() { r.readLoop(stdout) })
	r.wg.Go(func() { r.readStderr(stderr) })
	return nil
}

// readLoop 按帧大小整块读取,干净的 EOF 表示文件读完
func (r *FrameReader) readLoop(stdout io.Reader) {
	defer close(r.frameCh)

	reader := bufio.NewReaderSize(stdout, r.frameSize*4)
	for {
		select {
		case <-r.ctx.Done():
			return
		default:
		}

		frameBytes := make([]byte, r.frameSize)
		if _, err := io.ReadFull(reader, frameBytes); err != nil {
			if err == io.EOF {
				return
			}
			select {
			case r.errCh <- fmt.Errorf("failed to read frame: %w", err):
			default:
			}
			return
		}

		index := r.frameCount.Add(1) - 1
		frame := Frame{
			Index:  int(index),
			Width:  r.config.Width,
			Height: r.config.Height,
			Data:   frameBytes,
		}

		select {
		case r.frameCh <- &frame:
		case <-r.ctx.Done():
			return
		}
	}
}

func (r *FrameReader) readStderr(stderr io.Reader) {
	scan := bufio.NewScanner(stderr)
	for scan.Scan() {
		r.ffmpegLog.Push(scan.Text())
	}
}

// Frames 帧通道,读完或停止后关闭
func (r *FrameReader) Frames() <-chan *Frame {
	return r.frameCh
}

// Err 异常通道,正常 EOF 不投递
func (r *FrameReader) Err() <-chan error {
	return r.errCh
}

func (r *FrameReader) Log() []string {
	return r.ffmpegLog.Range()
}

func (r *FrameReader) Stop() error {
	r.m.Lock()
	if !r.started {
		r.m.Unlock()
		return nil
	}
	r.started = false
	r.m.Unlock()

	r.cancel()
	r.wg.Wait()

	if r.cmd != nil && r.cmd.Process != nil {
		done := make(chan error, 1)
		defer close(done)
		go func() {
			done <- r.cmd.Wait()
		}()

		select {
		case <-time.After(5 * time.Second):
			if err := r.cmd.Process.Kill(); err != nil {
				return fmt.Errorf("failed to kill ffmpeg: %w", err)
			}
			<-done
		case <-done:
		}
	}
	return nil
}

// Wait 等待读取收尾,EOF 后调用方借此确认 ffmpeg 正常退出
func (r *FrameReader) Wait() error {
	r.wg.Wait()
	if r.cmd != nil {
		return r.cmd.Wait()
	}
	return nil
}

func (r *FrameReader) GetStats() Stats {
	r.m.Lock()
	defer r.m.Unlock()
	return Stats{
		FrameCount: r.frameCount.Load(),
		FrameSize:  r.frameSize,
		IsRunning:  r.started,
	}
}

// ffprobe 输出中用到的片段
type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	CodecType  string `json:"codec_type"`
	CodecName  string `json:"codec_name"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	RFrameRate string `json:"r_frame_rate"`
	NbFrames   string `json:"nb_frames"`
	Duration   string `json:"duration"`
}

type probeFormat struct {
	Duration string `json:"duration"`
}

// Probe 用 ffprobe 读取视频属性
// 容器未写 nb_frames 时以时长乘帧率估算总帧数
func Probe(ctx context.Context, path string) (*Properties, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return parseProbe(out)
}

func parseProbe(data []byte) (*Properties, error) {
	var po probeOutput
	if err := json.Unmarshal(data, &po); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	var vs *probeStream
	for i := range po.Streams {
		if po.Streams[i].CodecType == "video" {
			vs = &po.Streams[i]
			break
		}
	}
	if vs == nil {
		return nil, fmt.Errorf("no video stream found")
	}

	p := Properties{
		Width:     vs.Width,
		Height:    vs.Height,
		FPS:       parseRate(vs.RFrameRate),
		CodecName: vs.CodecName,
	}

	if d, err := strconv.ParseFloat(vs.Duration, 64); err == nil {
		p.DurationSeconds = d
	} else if d, err := strconv.ParseFloat(po.Format.Duration, 64); err == nil {
		p.DurationSeconds = d
	}

	if n, err := strconv.Atoi(vs.NbFrames); err == nil && n > 0 {
		p.TotalFrames = n
	} else if p.FPS > 0 && p.DurationSeconds > 0 {
		p.TotalFrames = int(math.Round(p.DurationSeconds * p.FPS))
	}
	return &p, nil
}

// parseRate 解析 ffprobe 的有理数帧率,如 30000/1001
func parseRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		v, _ := strconv.ParseFloat(s, 64)
		return v
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}
