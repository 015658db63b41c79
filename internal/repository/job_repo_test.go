package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mailchimp_wc_v1_202608/internal/model"
)

// ==================== 测试辅助 ====================

func setupJobTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	db.AutoMigrate(&model.QueuedJob{})
	return db
}

func newTestJob() *model.QueuedJob {
	return &model.QueuedJob{
		UUID:    uuid.NewString(),
		JobType: model.JobTypeProcessProducts,
	}
}

// ==================== 单元测试 ====================

func TestJobRepository_EnqueueAndClaim(t *testing.T) {
	repo := NewJobRepository(setupJobTestDB(t))
	ctx := context.Background()

	job := newTestJob()
	if err := repo.Enqueue(ctx, job); err != nil {
		t.Fatalf("入队失败: %v", err)
	}
	if job.Status != model.JobStatusPending {
		t.Errorf("入队后状态应为 pending，实际 %s", job.Status)
	}

	claimed, err := repo.ClaimNext(ctx)
	if err != nil {
		t.Fatalf("抢占失败: %v", err)
	}
	if claimed == nil {
		t.Fatalf("应该能抢到刚入队的任务")
	}
	if claimed.Status != model.JobStatusRunning {
		t.Errorf("抢占后状态应为 running，实际 %s", claimed.Status)
	}
	if claimed.Attempts != 1 {
		t.Errorf("第一次抢占后 attempts 应为 1，实际 %d", claimed.Attempts)
	}

	// 队列空了
	next, err := repo.ClaimNext(ctx)
	if err != nil {
		t.Fatalf("空队列抢占出错: %v", err)
	}
	if next != nil {
		t.Errorf("running 的任务不应被再次抢到")
	}
}

func TestJobRepository_ClaimOrder(t *testing.T) {
	repo := NewJobRepository(setupJobTestDB(t))
	ctx := context.Background()

	first := newTestJob()
	second := newTestJob()
	repo.Enqueue(ctx, first)
	repo.Enqueue(ctx, second)

	claimed, _ := repo.ClaimNext(ctx)
	if claimed.UUID != first.UUID {
		t.Errorf("应按入队顺序抢占，期望 %s 实际 %s", first.UUID, claimed.UUID)
	}
}

func TestJobRepository_MarkDone(t *testing.T) {
	repo := NewJobRepository(setupJobTestDB(t))
	ctx := context.Background()

	repo.Enqueue(ctx, newTestJob())
	claimed, _ := repo.ClaimNext(ctx)

	if err := repo.MarkDone(ctx, claimed.ID); err != nil {
		t.Fatalf("标记完成失败: %v", err)
	}

	done, _ := repo.CountByStatus(ctx, model.JobStatusDone)
	if done != 1 {
		t.Errorf("done 计数应为 1，实际 %d", done)
	}

	saved, _ := repo.GetByUUID(ctx, claimed.UUID)
	if saved.FinishedAt == nil {
		t.Errorf("完成任务应有结束时间")
	}
}

func TestJobRepository_MarkFailedWithRetry(t *testing.T) {
	repo := NewJobRepository(setupJobTestDB(t))
	ctx := context.Background()

	repo.Enqueue(ctx, newTestJob())
	claimed, _ := repo.ClaimNext(ctx)

	// 重试：回到 pending，可以再次抢到
	if err := repo.MarkFailed(ctx, claimed.ID, "boom", true); err != nil {
		t.Fatalf("标记失败出错: %v", err)
	}
	again, _ := repo.ClaimNext(ctx)
	if again == nil {
		t.Fatalf("重试任务应能再次抢到")
	}
	if again.Attempts != 2 {
		t.Errorf("第二次抢占 attempts 应为 2，实际 %d", again.Attempts)
	}
	if again.LastError != "boom" {
		t.Errorf("应保留上次错误，实际 %q", again.LastError)
	}

	// 不重试：彻底失败
	repo.MarkFailed(ctx, again.ID, "boom again", false)
	failed, _ := repo.CountByStatus(ctx, model.JobStatusFailed)
	if failed != 1 {
		t.Errorf("failed 计数应为 1，实际 %d", failed)
	}
	next, _ := repo.ClaimNext(ctx)
	if next != nil {
		t.Errorf("failed 的任务不应再被抢到")
	}
}
