package api

import (
	"github.com/gin-gonic/gin"
	"github.com/gowvp/vtime/internal/conf"
	"github.com/ixugo/goddd/pkg/reason"
	"github.com/ixugo/goddd/pkg/web"
)

// ConfigAPI 运行配置的查询与修改
type ConfigAPI struct {
	conf *conf.Bootstrap
}

func NewConfigAPI(conf *conf.Bootstrap) ConfigAPI {
	return ConfigAPI{conf: conf}
}

func registerConfig(r gin.IRouter, api ConfigAPI, handler ...gin.HandlerFunc) {
	group := r.Group("/configs", handler...)
	group.GET("", web.WrapH(api.getConfig))
	group.PUT("/analysis", web.WrapH(api.updateAnalysis))
	group.PUT("/detector", web.WrapH(api.updateDetector))
}

// getConfigOutput 不含凭据与密钥的配置视图
type getConfigOutput struct {
	Debug    bool          `json:"debug"`
	Analysis conf.Analysis `json:"analysis"`
	Detector conf.Detector `json:"detector"`
}

func (api ConfigAPI) getConfig(_ *gin.Context, _ *struct{}) (getConfigOutput, error) {
	return getConfigOutput{
		Debug:    api.conf.Debug,
		Analysis: api.conf.Analysis,
		Detector: api.conf.Detector,
	}, nil
}

// updateAnalysisInput 整块覆盖分析配置
// RetainDays 与 DiskUsageThreshold 为 0 表示关闭对应清理策略
type updateAnalysisInput struct {
	ExportDir          string  `json:"export_dir" binding:"required"`
	DefaultModel       string  `json:"default_model" binding:"required"`
	DefaultThreshold   float64 `json:"default_threshold" binding:"gt=0,lte=1"`
	GapTolerance       float64 `json:"gap_tolerance" binding:"gte=0"`
	LabelsFile         string  `json:"labels_file"`
	MaxConcurrentRuns  int     `json:"max_concurrent_runs" binding:"gte=0"`
	RetainDays         int     `json:"retain_days" binding:"gte=0"`
	DiskUsageThreshold float64 `json:"disk_usage_threshold" binding:"gte=0,lte=100"`
}

// updateAnalysis 修改分析默认参数，对之后创建的任务生效
func (api ConfigAPI) updateAnalysis(_ *gin.Context, in *updateAnalysisInput) (gin.H, error) {
	api.conf.Analysis = conf.Analysis{
		ExportDir:          in.ExportDir,
		DefaultModel:       in.DefaultModel,
		DefaultThreshold:   in.DefaultThreshold,
		GapTolerance:       in.GapTolerance,
		LabelsFile:         in.LabelsFile,
		MaxConcurrentRuns:  in.MaxConcurrentRuns,
		RetainDays:         in.RetainDays,
		DiskUsageThreshold: in.DiskUsageThreshold,
	}
	if err := conf.WriteConfig(api.conf, api.conf.ConfigPath); err != nil {
		return nil, reason.ErrServer.SetMsg("保存配置失败: " + err.Error())
	}
	return gin.H{"msg": "配置更新成功"}, nil
}

// updateDetectorInput 检测器连接配置
type updateDetectorInput struct {
	Addr     string `json:"addr" binding:"required"`
	Mode     string `json:"mode" binding:"oneof=stream webhook"`
	Callback string `json:"callback"`
}

// updateDetector 修改检测器配置，重启服务后生效
func (api ConfigAPI) updateDetector(_ *gin.Context, in *updateDetectorInput) (gin.H, error) {
	if in.Mode == conf.DetectorModeWebhook && in.Callback == "" {
		return nil, reason.ErrBadRequest.SetMsg("webhook 模式必须配置回调地址")
	}
	api.conf.Detector = conf.Detector{
		Addr:     in.Addr,
		Mode:     in.Mode,
		Callback: in.Callback,
	}
	if err := conf.WriteConfig(api.conf, api.conf.ConfigPath); err != nil {
		return nil, reason.ErrServer.SetMsg("保存配置失败: " + err.Error())
	}
	return gin.H{"msg": "配置更新成功，重启后生效"}, nil
}
