// Package conf 服务配置
// 首次启动找不到配置文件时落盘一份默认配置
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type (
	// Bootstrap 配置引导
	Bootstrap struct {
		ConfigPath   string `toml:"-"`
		BuildVersion string `toml:"-"`

		Debug    bool     `toml:"debug"`
		Server   Server   `toml:"server"`
		Data     Data     `toml:"data"`
		Analysis Analysis `toml:"analysis"`
		Detector Detector `toml:"detector"`
	}

	Server struct {
		HTTP     HTTP   `toml:"http"`
		Username string `toml:"username"`
		Password string `toml:"password"`
	}

	HTTP struct {
		Port      int    `toml:"port"`
		JwtSecret string `toml:"jwt_secret"`
		PProf     PProf  `toml:"pprof"`
	}

	PProf struct {
		Enabled   bool     `toml:"enabled"`
		AccessIps []string `toml:"access_ips"`
	}

	Data struct {
		Database Database `toml:"database"`
	}

	Database struct {
		Dsn             string   `toml:"dsn"`
		MaxIdleConns    int32    `toml:"max_idle_conns"`
		MaxOpenConns    int32    `toml:"max_open_conns"`
		ConnMaxLifetime Duration `toml:"conn_max_lifetime"`
		SlowThreshold   Duration `toml:"slow_threshold"`
	}

	// Analysis 分析任务相关
	Analysis struct {
		// 导出产物根目录
		ExportDir        string  `toml:"export_dir"`
		DefaultModel     string  `toml:"default_model"`
		DefaultThreshold float64 `toml:"default_threshold"`
		// 时间线合并的秒级间隔容差
		GapTolerance float64 `toml:"gap_tolerance"`
		// 数据集 yaml,留空使用内置 COCO 标签
		LabelsFile        string `toml:"labels_file"`
		MaxConcurrentRuns int    `toml:"max_concurrent_runs"`
		// 产物保留天数,0 不清理
		RetainDays int `toml:"retain_days"`
		// 磁盘使用率百分比(0-100),超过则按最旧优先提前清理,0 不启用
		DiskUsageThreshold float64 `toml:"disk_usage_threshold"`
	}

	Detector struct {
		Addr string `toml:"addr"`
		// stream: 帧推流; webhook: 检测器直读文件回调事件
		Mode string `toml:"mode"`
		// webhook 模式下通告给检测器的回调地址
		Callback string `toml:"callback"`
	}
)

// Duration toml 中以 "300ms"、"2h" 这类字符串表达时长
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

const (
	DetectorModeStream  = "stream"
	DetectorModeWebhook = "webhook"
)

func defaultBootstrap() *Bootstrap {
	return &Bootstrap{
		Server: Server{
			HTTP: HTTP{
				Port: 8080,
				PProf: PProf{
					AccessIps: []string{"127.0.0.1"},
				},
			},
		},
		Data: Data{
			Database: Database{
				Dsn:             "vtime.db",
				MaxIdleConns:    10,
				MaxOpenConns:    100,
				ConnMaxLifetime: Duration(6 * time.Hour),
				SlowThreshold:   Duration(200 * time.Millisecond),
			},
		},
		Analysis: Analysis{
			ExportDir:          "exports",
			DefaultModel:       "yolov8n.pt",
			DefaultThreshold:   0.5,
			GapTolerance:       1.0,
			MaxConcurrentRuns:  2,
			RetainDays:         30,
			DiskUsageThreshold: 85,
		},
		Detector: Detector{
			Addr: "127.0.0.1:50051",
			Mode: DetectorModeStream,
		},
	}
}

// SetupConfig 读取配置,文件不存在时生成默认配置
func SetupConfig(path string) (*Bootstrap, error) {
	bc := defaultBootstrap()
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		bc.ConfigPath = path
		if err := WriteConfig(bc, path); err != nil {
			return nil, err
		}
		return bc, nil
	}
	if err := toml.Unmarshal(data, bc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	bc.ConfigPath = path
	return bc, nil
}

// WriteConfig 回写配置文件
func WriteConfig(bc *Bootstrap, path string) error {
	data, err := toml.Marshal(bc)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o600)
}
