package api

// DetectorStartedInput 检测器确认开始读取视频的请求体
type DetectorStartedInput struct {
	TaskID      string  `json:"task_id" binding:"required"` // 任务 ID
	FPS         float64 `json:"fps"`                        // 视频帧率
	TotalFrames int     `json:"total_frames"`               // 视频总帧数
}

// DetectorFramesInput 单帧检测结果回调请求体
type DetectorFramesInput struct {
	TaskID     string              `json:"task_id" binding:"required"` // 任务 ID
	FrameIndex int                 `json:"frame_index"`                // 帧序号，从 0 开始且严格递增
	Detections []DetectorDetection `json:"detections"`                 // 本帧检测结果，可为空
}

// DetectorCompletedInput 视频读取完毕回调请求体
type DetectorCompletedInput struct {
	TaskID  string `json:"task_id" binding:"required"` // 任务 ID
	Message string `json:"message"`                    // 附加消息
}

// DetectorFailedInput 检测器失败回调请求体
type DetectorFailedInput struct {
	TaskID string `json:"task_id" binding:"required"` // 任务 ID
	Error  string `json:"error"`                      // 失败原因
}

// DetectorKeepaliveInput 心跳回调请求体
type DetectorKeepaliveInput struct {
	TaskID    string `json:"task_id" binding:"required"` // 任务 ID
	Timestamp int64  `json:"timestamp"`                  // Unix 时间戳 (毫秒)
}

// DetectorDetection 检测对象
type DetectorDetection struct {
	ClassID    int         `json:"class_id"`   // 模型类别序号
	Class      string      `json:"class"`      // 类别名
	Confidence float64     `json:"confidence"` // 置信度 (0.0 - 1.0)
	Box        DetectorBox `json:"box"`        // 像素坐标边界框
}

// DetectorBox 像素坐标边界框，(x1,y1) 左上角，(x2,y2) 右下角
type DetectorBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// DetectorWebhookOutput 通用响应体
// code 非 0 表示服务端不再需要该任务的后续回调
type DetectorWebhookOutput struct {
	Code int    `json:"code"` // 错误代码，0 表示成功
	Msg  string `json:"msg"`  // 消息
}

func newDetectorWebhookOutputOK() DetectorWebhookOutput {
	return DetectorWebhookOutput{Code: 0, Msg: "success"}
}

func newDetectorWebhookOutputErr(err error) DetectorWebhookOutput {
	return DetectorWebhookOutput{Code: 1, Msg: err.Error()}
}
