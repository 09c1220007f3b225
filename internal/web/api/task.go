package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gowvp/vtime/internal/conf"
	"github.com/gowvp/vtime/internal/core/task"
	"github.com/gowvp/vtime/internal/core/task/store/taskdb"
	"github.com/gowvp/vtime/internal/metrics"
	"github.com/gowvp/vtime/internal/rpc"
	"github.com/gowvp/vtime/pkg/labels"
	"github.com/ixugo/goddd/domain/uniqueid"
	"github.com/ixugo/goddd/pkg/orm"
	"github.com/ixugo/goddd/pkg/web"
	"gorm.io/gorm"
)

// TaskAPI 为 http 提供业务方法
type TaskAPI struct {
	taskCore task.Core
	conf     *conf.Bootstrap
}

// NewTaskStore 创建任务存储层
func NewTaskStore(db *gorm.DB) task.Storer {
	return taskdb.NewDB(db).AutoMigrate(orm.GetEnabledAutoMigrate())
}

// NewTaskLabels 加载类别词表
// 配置未指定词表文件时使用内置 COCO 标签
func NewTaskLabels(cfg *conf.Bootstrap) *labels.Map {
	path := cfg.Analysis.LabelsFile
	if path == "" {
		return labels.COCO()
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(cfg.ConfigPath), path)
	}
	m, err := labels.Load(path)
	if err != nil {
		slog.Error("load labels, fallback to builtin coco", "path", path, "err", err)
		return labels.COCO()
	}
	slog.Info("labels loaded", "path", path, "classes", m.Len())
	return m
}

// NewTaskCore 创建分析任务核心服务
func NewTaskCore(store task.Storer, uni uniqueid.Core, cfg *conf.Bootstrap, lm *labels.Map, m *metrics.Metrics) task.Core {
	opts := []task.Option{
		task.WithConfig(&cfg.Analysis),
		task.WithDetectorMode(&cfg.Detector),
		task.WithLabels(lm),
		task.WithMetrics(m),
	}
	if cli := rpc.NewDetectorClient(cfg.Detector.Addr); cli != nil {
		opts = append(opts, task.WithDetector(cli))
	}
	core := task.NewCore(store, uni, opts...)

	// 启动产物清理协程
	go core.StartCleanupWorker()

	return core
}

func NewTaskAPI(core task.Core, conf *conf.Bootstrap) TaskAPI {
	return TaskAPI{taskCore: core, conf: conf}
}

func RegisterTask(g gin.IRouter, api TaskAPI, handler ...gin.HandlerFunc) {
	group := g.Group("/tasks", handler...)
	group.GET("", web.WrapH(api.findTasks))
	group.POST("", web.WrapH(api.addTask))
	group.GET("/:id", web.WrapH(api.getTask))
	group.POST("/:id/cancel", web.WrapH(api.cancelTask))
	group.DELETE("/:id", web.WrapH(api.delTask))
	group.GET("/:id/progress", web.WrapH(api.getProgress))
	group.GET("/:id/result", web.WrapH(api.getResult))
	group.GET("/:id/summary", web.WrapH(api.getSummary))
	group.GET("/:id/intervals", web.WrapH(api.getIntervals))
	group.GET("/:id/download", api.downloadArtifact)
}

// findTasks 分页查询任务列表
func (a TaskAPI) findTasks(c *gin.Context, in *task.FindTaskInput) (any, error) {
	items, total, err := a.taskCore.FindTasks(c.Request.Context(), in)
	return gin.H{"items": items, "total": total}, err
}

// addTask 创建分析任务并启动流水线
func (a TaskAPI) addTask(c *gin.Context, in *task.AddTaskInput) (*task.Task, error) {
	return a.taskCore.AddTask(c.Request.Context(), in)
}

func (a TaskAPI) getTask(c *gin.Context, _ *struct{}) (*task.Task, error) {
	return a.taskCore.GetTask(c.Request.Context(), c.Param("id"))
}

func (a TaskAPI) cancelTask(c *gin.Context, _ *struct{}) (*task.Task, error) {
	return a.taskCore.CancelTask(c.Request.Context(), c.Param("id"))
}

func (a TaskAPI) delTask(c *gin.Context, _ *struct{}) (*task.Task, error) {
	return a.taskCore.DelTask(c.Request.Context(), c.Param("id"))
}

// getProgress 查询运行进度，活动中的任务附带近期日志
func (a TaskAPI) getProgress(c *gin.Context, _ *struct{}) (*task.ProgressOutput, error) {
	return a.taskCore.GetProgress(c.Request.Context(), c.Param("id"))
}

// getResult 返回层级结果文档
func (a TaskAPI) getResult(c *gin.Context, _ *struct{}) (any, error) {
	return a.taskCore.GetResult(c.Request.Context(), c.Param("id"))
}

func (a TaskAPI) getSummary(c *gin.Context, _ *struct{}) (*task.SummaryOutput, error) {
	return a.taskCore.GetSummary(c.Request.Context(), c.Param("id"))
}

func (a TaskAPI) getIntervals(c *gin.Context, in *task.IntervalsInput) (*task.IntervalsOutput, error) {
	return a.taskCore.GetIntervals(c.Request.Context(), c.Param("id"), in)
}

// downloadArtifact 下载结果产物
// format 可选 json/csv/xlsx，默认 json；xlsx 由已落盘的 JSON 文档即时生成
func (a TaskAPI) downloadArtifact(c *gin.Context) {
	id := c.Param("id")
	format := strings.ToLower(c.DefaultQuery("format", "json"))

	t, err := a.taskCore.GetTask(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": 1, "msg": err.Error()})
		return
	}

	stem := strings.TrimSuffix(t.VideoName, filepath.Ext(t.VideoName))
	if stem == "" {
		stem = t.ID
	}
	fileName := fmt.Sprintf("%s_detections.%s", stem, format)

	switch format {
	case "json", "csv":
		relative := t.JSONPath
		if format == "csv" {
			relative = t.CSVPath
		}
		if relative == "" {
			c.JSON(http.StatusNotFound, gin.H{"code": 1, "msg": "artifact not available"})
			return
		}
		filePath := a.taskCore.ArtifactPath(relative)
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			c.JSON(http.StatusNotFound, gin.H{"code": 1, "msg": "artifact file not found"})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", fileName))
		c.File(filePath)
	case "xlsx":
		doc, err := a.taskCore.GetResult(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"code": 1, "msg": err.Error()})
			return
		}
		buf, err := buildWorkbook(doc, t.GapTolerance)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 1, "msg": err.Error()})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", fileName))
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	default:
		c.JSON(http.StatusBadRequest, gin.H{"code": 1, "msg": fmt.Sprintf("unsupported format [%s]", format)})
	}
}
