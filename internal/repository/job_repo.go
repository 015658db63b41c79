package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"mailchimp_wc_v1_202608/internal/model"
)

// ==================== JobRepository 任务队列仓库 ====================

// JobRepository 后台任务队列仓库接口
// 至少一次语义：claim 用条件 UPDATE 抢占，失败按 attempts 重试
type JobRepository interface {
	Enqueue(ctx context.Context, job *model.QueuedJob) error
	// ClaimNext 抢占最早的 pending 任务并置为 running，队列为空返回 (nil, nil)
	ClaimNext(ctx context.Context) (*model.QueuedJob, error)
	MarkDone(ctx context.Context, id int64) error
	// MarkFailed 记录失败；retry 为 true 时放回 pending 等待重试
	MarkFailed(ctx context.Context, id int64, errMsg string, retry bool) error
	GetByUUID(ctx context.Context, uuid string) (*model.QueuedJob, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

// ==================== 实现 ====================

type jobRepository struct {
	db *gorm.DB
}

// NewJobRepository 创建任务队列仓库
func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

// Enqueue 入队，立即返回
func (r *jobRepository) Enqueue(ctx context.Context, job *model.QueuedJob) error {
	if job.Status == "" {
		job.Status = model.JobStatusPending
	}
	return r.db.WithContext(ctx).Create(job).Error
}

// ClaimNext 先查最早的 pending，再用条件 UPDATE 抢占
// 多 worker 同时抢时只有一个 UPDATE 生效，抢不到的拿下一条
func (r *jobRepository) ClaimNext(ctx context.Context) (*model.QueuedJob, error) {
	for {
		var job model.QueuedJob
		err := r.db.WithContext(ctx).
			Where("status = ?", model.JobStatusPending).
			Order("id ASC").
			First(&job).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		now := time.Now()
		result := r.db.WithContext(ctx).
			Model(&model.QueuedJob{}).
			Where("id = ? AND status = ?", job.ID, model.JobStatusPending).
			Updates(map[string]interface{}{
				"status":     model.JobStatusRunning,
				"started_at": now,
				"attempts":   gorm.Expr("attempts + 1"),
			})
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 1 {
			job.Status = model.JobStatusRunning
			job.StartedAt = &now
			job.Attempts++
			return &job, nil
		}
		// 被别的 worker 抢走了，继续找下一条
	}
}

// MarkDone 任务完成
func (r *jobRepository) MarkDone(ctx context.Context, id int64) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&model.QueuedJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      model.JobStatusDone,
			"finished_at": now,
		}).Error
}

// MarkFailed 任务失败，retry 时回到 pending
func (r *jobRepository) MarkFailed(ctx context.Context, id int64, errMsg string, retry bool) error {
	status := model.JobStatusFailed
	if retry {
		status = model.JobStatusPending
	}
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&model.QueuedJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      status,
			"last_error":  errMsg,
			"finished_at": now,
		}).Error
}

// GetByUUID 根据 UUID 查任务
func (r *jobRepository) GetByUUID(ctx context.Context, uuid string) (*model.QueuedJob, error) {
	var job model.QueuedJob
	err := r.db.WithContext(ctx).Where("uuid = ?", uuid).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// CountByStatus 按状态统计任务数
func (r *jobRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.QueuedJob{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}
