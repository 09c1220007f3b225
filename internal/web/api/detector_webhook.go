package api

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gowvp/vtime/internal/core/analysis"
	"github.com/gowvp/vtime/internal/core/task"
	"github.com/ixugo/goddd/pkg/web"
)

// DetectorWebhookAPI 处理检测器进程的回调请求
// webhook 模式下视频由检测器侧解码，检测结果经这里回流到任务聚合器
type DetectorWebhookAPI struct {
	log      *slog.Logger
	taskCore task.Core
	limiter  func(identifier string) bool
}

// NewDetectorWebhookAPI 创建检测器回调 API 实例
func NewDetectorWebhookAPI(taskCore task.Core) DetectorWebhookAPI {
	return DetectorWebhookAPI{
		log:      slog.With("hook", "detector"),
		taskCore: taskCore,
		// 帧回调按视频解码速率到达，日志按任务限速
		limiter: web.IDRateLimiter(0.2, 1, 3*time.Minute),
	}
}

// registerDetectorWebhookAPI 注册检测器回调路由
// 路由不挂登录鉴权，发令时下发的一次性令牌即身份凭证
func registerDetectorWebhookAPI(r gin.IRouter, api DetectorWebhookAPI, handler ...gin.HandlerFunc) {
	group := r.Group("/detector", handler...)
	group.POST("/started", web.WrapH(api.onStarted))
	group.POST("/frames", web.WrapH(api.onFrames))
	group.POST("/completed", web.WrapH(api.onCompleted))
	group.POST("/failed", web.WrapH(api.onFailed))
	group.POST("/keepalive", web.WrapH(api.onKeepalive))
}

// onStarted 检测器确认开始读取视频，上报帧率与总帧数
func (a DetectorWebhookAPI) onStarted(c *gin.Context, in *DetectorStartedInput) (DetectorWebhookOutput, error) {
	if err := a.taskCore.WebhookStarted(in.TaskID, c.Query("token"), in.FPS, in.TotalFrames); err != nil {
		a.log.WarnContext(c.Request.Context(), "detector started rejected",
			"task_id", in.TaskID, "err", err)
		return newDetectorWebhookOutputErr(err), nil
	}
	a.log.InfoContext(c.Request.Context(), "detector started",
		"task_id", in.TaskID,
		"fps", in.FPS,
		"total_frames", in.TotalFrames,
	)
	return newDetectorWebhookOutputOK(), nil
}

// onFrames 接收单帧检测结果并入库
// 运行结束后迟到的帧回应非 0 code，提示检测器停止推送
func (a DetectorWebhookAPI) onFrames(c *gin.Context, in *DetectorFramesInput) (DetectorWebhookOutput, error) {
	items := make([]analysis.RawDetection, 0, len(in.Detections))
	for _, det := range in.Detections {
		items = append(items, analysis.RawDetection{
			ClassID:    det.ClassID,
			ClassName:  det.Class,
			Confidence: det.Confidence,
			Box: analysis.BoundingBox{
				X1: det.Box.X1,
				Y1: det.Box.Y1,
				X2: det.Box.X2,
				Y2: det.Box.Y2,
			},
		})
	}

	if err := a.taskCore.WebhookFrames(in.TaskID, c.Query("token"), in.FrameIndex, items); err != nil {
		if errors.Is(err, analysis.ErrOutOfOrderFrame) {
			a.log.ErrorContext(c.Request.Context(), "detector frames out of order",
				"task_id", in.TaskID, "frame_index", in.FrameIndex)
		}
		return newDetectorWebhookOutputErr(err), nil
	}

	if a.limiter(in.TaskID) {
		a.log.InfoContext(c.Request.Context(), "detector frames",
			"task_id", in.TaskID,
			"frame_index", in.FrameIndex,
			"detection_count", len(in.Detections),
		)
	}
	return newDetectorWebhookOutputOK(), nil
}

// onCompleted 检测器宣告视频读取完毕，触发运行收尾
func (a DetectorWebhookAPI) onCompleted(c *gin.Context, in *DetectorCompletedInput) (DetectorWebhookOutput, error) {
	if err := a.taskCore.WebhookCompleted(in.TaskID, c.Query("token")); err != nil {
		return newDetectorWebhookOutputErr(err), nil
	}
	a.log.InfoContext(c.Request.Context(), "detector completed",
		"task_id", in.TaskID,
		"message", in.Message,
	)
	return newDetectorWebhookOutputOK(), nil
}

// onFailed 检测器宣告失败，任务转入失败态
func (a DetectorWebhookAPI) onFailed(c *gin.Context, in *DetectorFailedInput) (DetectorWebhookOutput, error) {
	if err := a.taskCore.WebhookFailed(in.TaskID, c.Query("token"), in.Error); err != nil {
		return newDetectorWebhookOutputErr(err), nil
	}
	a.log.ErrorContext(c.Request.Context(), "detector failed",
		"task_id", in.TaskID,
		"reason", in.Error,
	)
	return newDetectorWebhookOutputOK(), nil
}

// onKeepalive 心跳，刷新运行的静默计时
func (a DetectorWebhookAPI) onKeepalive(c *gin.Context, in *DetectorKeepaliveInput) (DetectorWebhookOutput, error) {
	if err := a.taskCore.WebhookKeepalive(in.TaskID, c.Query("token")); err != nil {
		return newDetectorWebhookOutputErr(err), nil
	}
	return newDetectorWebhookOutputOK(), nil
}
