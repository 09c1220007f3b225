package taskdb

import (
	"context"

	"github.com/gowvp/vtime/internal/core/task"
	"github.com/ixugo/goddd/pkg/orm"
	"gorm.io/gorm"
)

var _ task.TaskStorer = Task{}

// Task 任务表存储
type Task struct {
	db *gorm.DB
}

func NewTask(db *gorm.DB) Task {
	return Task{db: db}
}

// Find implements task.TaskStorer.
func (t Task) Find(ctx context.Context, items *[]*task.Task, pager orm.Pager, opts ...orm.QueryOption) (int64, error) {
	db := t.db.WithContext(ctx).Model(new(task.Task))
	for _, opt := range opts {
		db = opt(db)
	}
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}
	if pager != nil && pager.Limit() > 0 {
		db = db.Offset(pager.Offset()).Limit(pager.Limit())
	}
	return total, db.Find(items).Error
}

// Get implements task.TaskStorer.
func (t Task) Get(ctx context.Context, out *task.Task, opts ...orm.QueryOption) error {
	db := t.db.WithContext(ctx)
	for _, opt := range opts {
		db = opt(db)
	}
	return db.First(out).Error
}

// Add implements task.TaskStorer.
func (t Task) Add(ctx context.Context, in *task.Task) error {
	return t.db.WithContext(ctx).Create(in).Error
}

// Edit implements task.TaskStorer.
// 读出、应用变更函数、整行回写，在单事务内完成
func (t Task) Edit(ctx context.Context, out *task.Task, changeFn func(*task.Task), opts ...orm.QueryOption) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		db := tx
		for _, opt := range opts {
			db = opt(db)
		}
		if err := db.First(out).Error; err != nil {
			return err
		}
		changeFn(out)
		return tx.Save(out).Error
	})
}

// Del implements task.TaskStorer.
func (t Task) Del(ctx context.Context, out *task.Task, opts ...orm.QueryOption) error {
	db := t.db.WithContext(ctx)
	for _, opt := range opts {
		db = opt(db)
	}
	if err := db.First(out).Error; err != nil {
		return err
	}
	return t.db.WithContext(ctx).Delete(out).Error
}

// Count implements task.TaskStorer.
func (t Task) Count(ctx context.Context, opts ...orm.QueryOption) (int64, error) {
	db := t.db.WithContext(ctx).Model(new(task.Task))
	for _, opt := range opts {
		db = opt(db)
	}
	var total int64
	err := db.Count(&total).Error
	return total, err
}

// Session implements task.TaskStorer.
func (t Task) Session(ctx context.Context, changeFns ...func(*gorm.DB) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, fn := range changeFns {
			if err := fn(tx); err != nil {
				return err
			}
		}
		return nil
	})
}
