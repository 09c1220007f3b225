package taskdb

import (
	"log/slog"

	"github.com/gowvp/vtime/internal/core/task"
	"gorm.io/gorm"
)

var _ task.Storer = DB{}

// DB 关系库存储
type DB struct {
	db *gorm.DB
}

func NewDB(db *gorm.DB) DB {
	return DB{db: db}
}

// AutoMigrate ok 为真时执行建表/加列
func (d DB) AutoMigrate(ok bool) DB {
	if !ok {
		return d
	}
	if err := d.db.AutoMigrate(new(task.Task)); err != nil {
		slog.Error("AutoMigrate", "err", err)
	}
	return d
}

// Task implements task.Storer.
func (d DB) Task() task.TaskStorer {
	return NewTask(d.db)
}
