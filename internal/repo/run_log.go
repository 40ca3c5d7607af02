package repo

import (
	"context"
	"time"

	"github.com/iceymoss/go-task-dropbox/internal/engine"

	"gorm.io/gorm"
)

const (
	RunStatusSuccess = 1
	RunStatusFailed  = 2
)

// TaskRunLog 对应 task_run_logs 表
type TaskRunLog struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	JobName    string    `gorm:"index;size:128" json:"job_name"`
	TaskName   string    `gorm:"size:128" json:"task_name"`
	Status     int       `json:"status"` // 1 Success, 2 Failed
	ErrorMsg   string    `gorm:"type:text" json:"error_msg,omitempty"`
	Bytes      int       `json:"bytes"`
	ResultURL  string    `gorm:"size:512" json:"result_url,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
}

func (TaskRunLog) TableName() string {
	return "task_run_logs"
}

// RunLogRepo 实现 engine.RunRecorder
type RunLogRepo struct {
	db *gorm.DB
}

func NewRunLogRepo(db *gorm.DB) *RunLogRepo { return &RunLogRepo{db: db} }

// Migrate 建表
func (r *RunLogRepo) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&TaskRunLog{})
}

// RecordRun 写入一条运行记录
func (r *RunLogRepo) RecordRun(ctx context.Context, rec engine.RunRecord) error {
	return r.db.WithContext(ctx).Create(toLog(rec)).Error
}

// Recent 某个任务最近的运行记录，按时间倒序
func (r *RunLogRepo) Recent(ctx context.Context, job string, limit int) ([]*TaskRunLog, error) {
	var list []*TaskRunLog
	err := r.db.WithContext(ctx).
		Where("job_name = ?", job).
		Order("id DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func toLog(rec engine.RunRecord) *TaskRunLog {
	status := RunStatusSuccess
	if !rec.Success {
		status = RunStatusFailed
	}
	return &TaskRunLog{
		JobName:    rec.Job,
		TaskName:   rec.Task,
		Status:     status,
		ErrorMsg:   rec.Error,
		Bytes:      rec.Bytes,
		ResultURL:  rec.ResultURL,
		DurationMs: rec.End.Sub(rec.Start).Milliseconds(),
		StartTime:  rec.Start,
		EndTime:    rec.End,
	}
}
