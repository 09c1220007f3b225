package task

import (
	"context"
	"errors"

	"github.com/gowvp/vtime/internal/core/analysis"
)

// webhook 模式的回调入口
// 检测器按 started / frames / completed / failed / keepalive 上报，
// 令牌在发令时未下发给检测器之外的任何一方，校验失败视为伪造回调

var (
	ErrUnknownRun   = errors.New("no active run for task")
	ErrInvalidToken = errors.New("callback token mismatch")
)

func (c Core) lookupRun(taskID, token string) (*Run, error) {
	run, ok := c.runs.Load(taskID)
	if !ok {
		return nil, ErrUnknownRun
	}
	if token != run.token {
		return nil, ErrInvalidToken
	}
	return run, nil
}

// WebhookStarted 检测器确认开始读取视频并上报视频属性
// webhook 模式下视频由检测器侧解码，属性以回调为准
func (c Core) WebhookStarted(taskID, token string, fps float64, totalFrames int) error {
	run, err := c.lookupRun(taskID, token)
	if err != nil {
		return err
	}
	run.touch()
	run.setProps(analysis.VideoProperties{FPS: fps, TotalFrames: totalFrames})
	c.recordProps(context.Background(), taskID, fps, totalFrames)
	run.logf("detector reading video, %.2f fps, %d frames", fps, totalFrames)
	return nil
}

// WebhookFrames 检测器上报一帧的检测结果
// 帧序必须严格递增，乱序视为检测器故障并终止本次运行
func (c Core) WebhookFrames(taskID, token string, frame int, items []analysis.RawDetection) error {
	run, err := c.lookupRun(taskID, token)
	if err != nil {
		return err
	}
	for i := range items {
		c.completeClass(&items[i])
	}
	kept, err := run.IngestBatch(frame, items)
	if err != nil {
		if errors.Is(err, analysis.ErrOutOfOrderFrame) {
			run.failWith(err.Error())
		}
		return err
	}
	c.metrics.FramesProcessed.Add(1)
	c.metrics.DetectionsKept.Add(uint64(kept))
	return nil
}

// WebhookCompleted 检测器宣告视频读取完毕
func (c Core) WebhookCompleted(taskID, token string) error {
	run, err := c.lookupRun(taskID, token)
	if err != nil {
		return err
	}
	run.logf("detector reported completion")
	run.end()
	return nil
}

// WebhookFailed 检测器宣告失败
func (c Core) WebhookFailed(taskID, token, msg string) error {
	run, err := c.lookupRun(taskID, token)
	if err != nil {
		return err
	}
	if msg == "" {
		msg = "detector reported failure"
	}
	run.failWith(msg)
	return nil
}

// WebhookKeepalive 心跳，仅刷新静默计时
func (c Core) WebhookKeepalive(taskID, token string) error {
	run, err := c.lookupRun(taskID, token)
	if err != nil {
		return err
	}
	run.touch()
	return nil
}

// RunToken 活动运行的回调令牌，测试与发令使用
func (c Core) RunToken(taskID string) (string, bool) {
	run, ok := c.runs.Load(taskID)
	if !ok {
		return "", false
	}
	return run.token, true
}
