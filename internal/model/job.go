package model

import (
	"time"

	"gorm.io/datatypes"
)

// 任务状态流转: pending -> running -> done / failed
// 失败且未超过重试上限时回到 pending
const (
	JobStatusPending = "pending"
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)

// 任务类型
const (
	JobTypeProcessProducts = "process_products"
)

// QueuedJob 后台任务队列的一行 (至少一次执行语义)
type QueuedJob struct {
	BaseModel
	UUID     string         `gorm:"size:36;uniqueIndex;not null" json:"uuid"`
	JobType  string         `gorm:"size:50;index;not null" json:"job_type"`
	Payload  datatypes.JSON `json:"payload"`
	Status   string         `gorm:"size:20;index;default:'pending'" json:"status"`
	Attempts int            `gorm:"default:0" json:"attempts"`

	LastError  string     `gorm:"type:text" json:"last_error"`
	StartedAt  *time.Time `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
}

func (QueuedJob) TableName() string {
	return "queued_jobs"
}
