package task

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ixugo/goddd/pkg/orm"
	"github.com/ixugo/goddd/pkg/web"
	"gorm.io/gorm"
)

// minDiskReclaim 磁盘清理单轮最小释放量
const minDiskReclaim = 10 * 1024 * 1024

// terminalStatuses 清理只触达终态任务，活动中的任务不参与
var terminalStatuses = []string{StatusCompleted, StatusCancelled, StatusFailed}

// StartCleanupWorker 启动定时清理协程
// 程序启动时执行一次清理，随后每 60 分钟执行一次
func (c Core) StartCleanupWorker() {
	if c.conf == nil || (c.conf.RetainDays <= 0 && c.conf.DiskUsageThreshold <= 0) {
		slog.Info("artifact cleanup disabled")
		return
	}

	slog.Info("artifact cleanup worker started",
		"retain_days", c.conf.RetainDays,
		"disk_threshold", c.conf.DiskUsageThreshold,
		"export_dir", c.conf.ExportDir,
	)

	// 启动时先执行一次清理
	c.runCleanup()

	ticker := time.NewTicker(60 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.runCleanup()
	}
}

// runCleanup 先预标记即将过期的任务，再清理过期产物，最后处理磁盘空间
func (c Core) runCleanup() {
	c.markExpiringTasks()
	c.cleanupExpiredTasks()
	c.cleanupByDiskUsage()
}

// markExpiringTasks 预标记 1 小时内即将过期的任务
func (c Core) markExpiringTasks() {
	if c.conf.RetainDays <= 0 {
		return
	}

	ctx := context.Background()
	expiryCutoff := time.Now().Add(time.Hour).AddDate(0, 0, -c.conf.RetainDays)

	err := c.store.Task().Session(ctx, func(tx *gorm.DB) error {
		return tx.Model(&Task{}).
			Where("delete_flag = ?", false).
			Where("status IN ?", terminalStatuses).
			Where("created_at < ?", orm.Time{Time: expiryCutoff}).
			Update("delete_flag", true).Error
	})
	if err != nil {
		slog.Warn("failed to mark expiring tasks", "err", err)
	}
}

// cleanupExpiredTasks 清理超过保留天数的任务及其产物
func (c Core) cleanupExpiredTasks() {
	if c.conf.RetainDays <= 0 {
		return
	}

	ctx := context.Background()
	cutoffTime := time.Now().AddDate(0, 0, -c.conf.RetainDays)

	totalDeleted, filesDeleted, failedFiles, freedBytes := c.batchDeleteTasks(ctx,
		orm.Where("status IN ?", terminalStatuses),
		orm.Where("created_at < ?", orm.Time{Time: cutoffTime}),
	)

	if totalDeleted > 0 || failedFiles > 0 {
		slog.Info("expired task cleanup completed",
			"reason", "retention_policy",
			"retain_days", c.conf.RetainDays,
			"cutoff_time", cutoffTime.Format(time.DateTime),
			"tasks_deleted", totalDeleted,
			"files_deleted", filesDeleted,
			"failed_files", failedFiles,
			"freed_bytes", freedBytes,
		)
	}
}

// cleanupByDiskUsage 基于磁盘使用率清理
// 超过阈值时按最旧优先删除终态任务的产物，直到使用率降到阈值以下
func (c Core) cleanupByDiskUsage() {
	if c.conf.DiskUsageThreshold <= 0 || c.conf.DiskUsageThreshold >= 100 {
		return
	}

	exportDir := c.exportRoot()
	if _, err := os.Stat(exportDir); os.IsNotExist(err) {
		return
	}

	usage, err := getDiskUsage(exportDir)
	if err != nil {
		slog.Warn("failed to get disk usage", "err", err)
		return
	}
	if usage < c.conf.DiskUsageThreshold {
		return
	}

	ctx := context.Background()

	// 以最近一天的产物体量为单轮清理目标
	dayAgo := time.Now().AddDate(0, 0, -1)
	var recent []*Task
	pager := web.PagerFilter{Page: 1, Size: 200}
	_, _ = c.store.Task().Find(ctx, &recent, &pager,
		orm.Where("created_at >= ?", orm.Time{Time: dayAgo}),
	)

	var targetSize int64
	for _, t := range recent {
		targetSize += t.ArtifactBytes
	}
	if targetSize < minDiskReclaim {
		targetSize = minDiskReclaim
	}

	var freedBytes int64
	var deletedCount, failedCount int
	batchSize := 50

	for freedBytes < targetSize {
		var oldest []*Task
		pager := web.PagerFilter{Page: 1, Size: batchSize}
		_, err := c.store.Task().Find(ctx, &oldest, &pager,
			orm.Where("status IN ?", terminalStatuses),
			orm.OrderBy("created_at ASC"),
		)
		if err != nil || len(oldest) == 0 {
			break
		}

		var deleteIDs []string
		var batchFreed int64
		var batchFailed int
		for _, t := range oldest {
			_, failed, freed := c.deleteTaskArtifacts(t)
			batchFreed += freed
			batchFailed += failed
			deleteIDs = append(deleteIDs, t.ID)
		}

		if len(deleteIDs) > 0 {
			err := c.store.Task().Session(ctx, func(tx *gorm.DB) error {
				return tx.Where("id IN ?", deleteIDs).Delete(&Task{}).Error
			})
			if err != nil {
				break
			}
			deletedCount += len(deleteIDs)
		}

		freedBytes += batchFreed
		failedCount += batchFailed

		usage, err = getDiskUsage(exportDir)
		if err == nil && usage < c.conf.DiskUsageThreshold {
			break
		}
	}

	cleanupEmptyDirs(exportDir)

	if deletedCount > 0 || failedCount > 0 {
		slog.Info("disk usage cleanup completed",
			"reason", "disk_threshold_exceeded",
			"usage", usage,
			"threshold", c.conf.DiskUsageThreshold,
			"tasks_deleted", deletedCount,
			"failed_files", failedCount,
			"freed_bytes", freedBytes,
		)
	}
}

// batchDeleteTasks 批量删除任务（产物文件+数据库记录）
func (c Core) batchDeleteTasks(ctx context.Context, conditions ...orm.QueryOption) (totalDeleted, filesDeleted, failedFiles int, freedBytes int64) {
	batchSize := 100

	for {
		var tasks []*Task
		pager := web.PagerFilter{Page: 1, Size: batchSize}
		_, err := c.store.Task().Find(ctx, &tasks, &pager, conditions...)
		if err != nil || len(tasks) == 0 {
			break
		}

		var deleteIDs []string
		var batchFreed int64
		var batchFilesDeleted, batchFailed int
		for _, t := range tasks {
			deleted, failed, freed := c.deleteTaskArtifacts(t)
			batchFilesDeleted += deleted
			batchFailed += failed
			batchFreed += freed
			deleteIDs = append(deleteIDs, t.ID)
		}

		if len(deleteIDs) > 0 {
			err := c.store.Task().Session(ctx, func(tx *gorm.DB) error {
				return tx.Where("id IN ?", deleteIDs).Delete(&Task{}).Error
			})
			if err != nil {
				break
			}
			totalDeleted += len(deleteIDs)
		}

		filesDeleted += batchFilesDeleted
		failedFiles += batchFailed
		freedBytes += batchFreed
	}

	cleanupEmptyDirs(c.exportRoot())
	return
}

// deleteTaskArtifacts 删除单个任务的产物文件
func (c Core) deleteTaskArtifacts(t *Task) (deleted, failed int, freedBytes int64) {
	for _, p := range t.ArtifactPaths() {
		full := c.ArtifactPath(p)
		fi, statErr := os.Stat(full)
		if err := os.Remove(full); err != nil {
			if !os.IsNotExist(err) {
				failed++
			}
			continue
		}
		deleted++
		if statErr == nil {
			freedBytes += fi.Size()
		}
	}
	if dir := t.ArtifactDir(); dir != "" {
		_ = os.Remove(c.ArtifactPath(dir))
	}
	return
}

// getDiskUsage 获取指定路径所在磁盘的使用率（百分比）
func getDiskUsage(path string) (float64, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return 0, err
	}

	total := stat.Blocks * uint64(stat.Bsize)
	free := stat.Bfree * uint64(stat.Bsize)
	used := total - free

	if total == 0 {
		return 0, nil
	}

	usage := float64(used) / float64(total) * 100
	return usage, nil
}

// cleanupEmptyDirs 递归删除空目录
func cleanupEmptyDirs(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			subDir := filepath.Join(dir, entry.Name())
			cleanupEmptyDirs(subDir)

			subEntries, err := os.ReadDir(subDir)
			if err == nil && len(subEntries) == 0 {
				_ = os.Remove(subDir)
			}
		}
	}
}
