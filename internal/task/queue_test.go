package task

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mailchimp_wc_v1_202608/internal/model"
	"mailchimp_wc_v1_202608/internal/repository"
)

// ==================== 测试辅助 ====================

// fakeRunner 可编程的执行单元：前 failTimes 次返回错误
type fakeRunner struct {
	runs      int
	failTimes int
}

func (r *fakeRunner) Run(ctx context.Context) error {
	r.runs++
	if r.runs <= r.failTimes {
		return errors.New("模拟执行失败")
	}
	return nil
}

func setupQueueTest(t *testing.T) (*Queue, *fakeRunner, repository.JobRepository, repository.StateRepository) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	db.AutoMigrate(&model.QueuedJob{}, &model.SyncState{})

	jobRepo := repository.NewJobRepository(db)
	stateRepo := repository.NewStateRepository(db)
	if err := stateRepo.EnsureDefault(context.Background()); err != nil {
		t.Fatalf("初始化状态行失败: %v", err)
	}

	runner := &fakeRunner{}
	queue := NewQueue(jobRepo, stateRepo)
	queue.SetRunner(runner)
	return queue, runner, jobRepo, stateRepo
}

// ==================== 单元测试 ====================

func TestQueue_EnqueueFlagsSyncing(t *testing.T) {
	queue, _, jobRepo, stateRepo := setupQueueTest(t)
	ctx := context.Background()

	if err := queue.EnqueueProductSync(ctx); err != nil {
		t.Fatalf("入队失败: %v", err)
	}

	// 入队即打同步标记，还没执行
	state, _ := stateRepo.Get(ctx)
	if !state.Syncing {
		t.Errorf("入队后应已标记同步进行中")
	}

	pending, _ := jobRepo.CountByStatus(ctx, model.JobStatusPending)
	if pending != 1 {
		t.Errorf("应有 1 个 pending 任务，实际 %d", pending)
	}
}

func TestQueue_DrainRunsJob(t *testing.T) {
	queue, runner, jobRepo, _ := setupQueueTest(t)
	ctx := context.Background()

	queue.EnqueueProductSync(ctx)
	queue.Drain(ctx)

	if runner.runs != 1 {
		t.Errorf("应执行恰好一次，实际 %d", runner.runs)
	}
	done, _ := jobRepo.CountByStatus(ctx, model.JobStatusDone)
	if done != 1 {
		t.Errorf("任务应已完成，done=%d", done)
	}
}

func TestQueue_RetryThenSucceed(t *testing.T) {
	queue, runner, jobRepo, _ := setupQueueTest(t)
	ctx := context.Background()
	runner.failTimes = 1

	queue.EnqueueProductSync(ctx)
	queue.Drain(ctx)

	// 第一次失败回 pending，同一轮 Drain 里重试成功
	if runner.runs != 2 {
		t.Errorf("应执行 2 次 (失败+重试)，实际 %d", runner.runs)
	}
	done, _ := jobRepo.CountByStatus(ctx, model.JobStatusDone)
	if done != 1 {
		t.Errorf("重试后任务应完成，done=%d", done)
	}
}

func TestQueue_GivesUpAfterMaxAttempts(t *testing.T) {
	queue, runner, jobRepo, _ := setupQueueTest(t)
	ctx := context.Background()
	runner.failTimes = 10 // 永远失败

	queue.EnqueueProductSync(ctx)
	queue.Drain(ctx)

	if runner.runs != queue.maxAttempts {
		t.Errorf("应重试到上限 %d 次，实际 %d", queue.maxAttempts, runner.runs)
	}
	failed, _ := jobRepo.CountByStatus(ctx, model.JobStatusFailed)
	if failed != 1 {
		t.Errorf("超过上限后应标记 failed，实际 failed=%d", failed)
	}
	pending, _ := jobRepo.CountByStatus(ctx, model.JobStatusPending)
	if pending != 0 {
		t.Errorf("不应再有 pending 任务，实际 %d", pending)
	}
}

func TestQueue_UnknownJobType(t *testing.T) {
	queue, runner, jobRepo, _ := setupQueueTest(t)
	ctx := context.Background()

	jobRepo.Enqueue(ctx, &model.QueuedJob{
		UUID:    "u-1",
		JobType: "mystery",
	})
	queue.Drain(ctx)

	if runner.runs != 0 {
		t.Errorf("未知类型不应触发 runner")
	}
	job, _ := jobRepo.GetByUUID(ctx, "u-1")
	if job.Status != model.JobStatusFailed {
		t.Errorf("未知类型重试耗尽后应 failed，实际 %s", job.Status)
	}
}
