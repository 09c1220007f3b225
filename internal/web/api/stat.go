package api

import (
	"path/filepath"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gowvp/vtime/internal/conf"
	"github.com/ixugo/goddd/pkg/reason"
	"github.com/ixugo/goddd/pkg/system"
	"github.com/ixugo/goddd/pkg/web"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
)

// StatAPI 宿主机资源观测
// 产物目录的磁盘水位与自动清理共用同一阈值语义
type StatAPI struct {
	conf *conf.Bootstrap
}

func NewStatAPI(conf *conf.Bootstrap) StatAPI {
	return StatAPI{conf: conf}
}

func registerStat(r gin.IRouter, api StatAPI, handler ...gin.HandlerFunc) {
	group := r.Group("/stats", handler...)
	group.GET("", web.WrapH(api.getStat))
}

type statCPU struct {
	Percent float64 `json:"percent"` // 使用率 (0-100)
	Cores   int     `json:"cores"`   // 逻辑核数
	Load1   float64 `json:"load1"`
	Load5   float64 `json:"load5"`
	Load15  float64 `json:"load15"`
}

type statMem struct {
	Total   uint64  `json:"total"`
	Used    uint64  `json:"used"`
	Percent float64 `json:"percent"`
}

type statDisk struct {
	Path    string  `json:"path"` // 产物目录所在分区
	Total   uint64  `json:"total"`
	Free    uint64  `json:"free"`
	Percent float64 `json:"percent"`
}

type statHost struct {
	Hostname      string `json:"hostname"`
	OS            string `json:"os"`
	Platform      string `json:"platform"`
	KernelArch    string `json:"kernel_arch"`
	UptimeSeconds uint64 `json:"uptime_seconds"`
}

type getStatOutput struct {
	CPU        statCPU  `json:"cpu"`
	Mem        statMem  `json:"mem"`
	Disk       statDisk `json:"disk"`
	Host       statHost `json:"host"`
	Goroutines int      `json:"goroutines"`
	SampledAt  string   `json:"sampled_at"`
}

func (api StatAPI) getStat(_ *gin.Context, _ *struct{}) (*getStatOutput, error) {
	out := getStatOutput{
		Goroutines: runtime.NumGoroutine(),
		SampledAt:  time.Now().Format(time.DateTime),
	}

	// interval 0 返回距上次采样的均值，首次调用为 0
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		out.CPU.Percent = percents[0]
	}
	if n, err := cpu.Counts(true); err == nil {
		out.CPU.Cores = n
	}
	if avg, err := load.Avg(); err == nil {
		out.CPU.Load1 = avg.Load1
		out.CPU.Load5 = avg.Load5
		out.CPU.Load15 = avg.Load15
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return nil, reason.ErrServer.SetMsg(err.Error())
	}
	out.Mem = statMem{Total: vm.Total, Used: vm.Used, Percent: vm.UsedPercent}

	// 产物目录在首个任务完成前可能尚未创建
	usage, err := disk.Usage(api.exportRoot())
	if err != nil {
		usage, err = disk.Usage(system.Getwd())
	}
	if err != nil {
		return nil, reason.ErrServer.SetMsg(err.Error())
	}
	out.Disk = statDisk{Path: usage.Path, Total: usage.Total, Free: usage.Free, Percent: usage.UsedPercent}

	if info, err := host.Info(); err == nil {
		out.Host = statHost{
			Hostname:      info.Hostname,
			OS:            info.OS,
			Platform:      info.Platform,
			KernelArch:    info.KernelArch,
			UptimeSeconds: info.Uptime,
		}
	}
	return &out, nil
}

// exportRoot 与任务产物落盘使用相同的目录解析规则
func (api StatAPI) exportRoot() string {
	dir := api.conf.Analysis.ExportDir
	if dir == "" {
		dir = "exports"
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(system.Getwd(), dir)
}
