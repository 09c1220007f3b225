package task

import (
	"github.com/gowvp/vtime/internal/conf"
	"github.com/gowvp/vtime/internal/metrics"
	"github.com/gowvp/vtime/pkg/labels"
	"github.com/gowvp/vtime/protos"
	"github.com/ixugo/goddd/domain/uniqueid"
	"github.com/ixugo/goddd/pkg/conc"
)

// Storer data persistence
type Storer interface {
	Task() TaskStorer
}

// Core business domain
type Core struct {
	store    Storer
	uni      uniqueid.Core
	conf     *conf.Analysis
	detector protos.DetectorServiceClient
	labels   *labels.Map
	metrics  *metrics.Metrics

	mode     string
	callback string

	// runs 活动中的分析流水线，key 为任务 ID
	runs *conc.Map[string, *Run]
}

type Option func(*Core)

// WithDetector 注入检测服务客户端
func WithDetector(cli protos.DetectorServiceClient) Option {
	return func(c *Core) {
		c.detector = cli
	}
}

// WithConfig 注入分析配置
func WithConfig(cfg *conf.Analysis) Option {
	return func(c *Core) {
		c.conf = cfg
	}
}

// WithDetectorMode 注入检测器工作模式与回调地址
func WithDetectorMode(cfg *conf.Detector) Option {
	return func(c *Core) {
		c.mode = cfg.Mode
		c.callback = cfg.Callback
	}
}

// WithLabels 注入类别词表，用于参数校验与 id/name 互查
func WithLabels(m *labels.Map) Option {
	return func(c *Core) {
		c.labels = m
	}
}

// WithMetrics 注入运行指标
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Core) {
		c.metrics = m
	}
}

// NewCore create business domain
func NewCore(store Storer, uni uniqueid.Core, opts ...Option) Core {
	c := Core{
		store: store,
		uni:   uni,
		mode:  conf.DetectorModeStream,
		runs:  conc.NewMap[string, *Run](),
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.labels == nil {
		c.labels = labels.COCO()
	}
	if c.metrics == nil {
		c.metrics = metrics.New()
	}
	return c
}

// Labels 当前生效的类别词表
func (c Core) Labels() *labels.Map {
	return c.labels
}
