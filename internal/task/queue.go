package task

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"gorm.io/datatypes"

	"mailchimp_wc_v1_202608/internal/model"
	"mailchimp_wc_v1_202608/internal/repository"
)

// Runner 队列任务的执行单元
type Runner interface {
	Run(ctx context.Context) error
}

// ==================== ProcessProductsJob 任务描述符 ====================

// ProcessProductsJob 首次商品同步的任务描述符
// 入队前调用 FlagStartSync 打同步进行中标记
type ProcessProductsJob struct {
	stateRepo repository.StateRepository
}

// NewProcessProductsJob 创建任务描述符
func NewProcessProductsJob(stateRepo repository.StateRepository) *ProcessProductsJob {
	return &ProcessProductsJob{stateRepo: stateRepo}
}

// FlagStartSync 入队前的钩子：标记同步进行中
func (j *ProcessProductsJob) FlagStartSync(ctx context.Context) error {
	return j.stateRepo.SetSyncing(ctx, true)
}

// ==================== Queue 后台任务队列 ====================

// Queue DB 背压的后台任务队列
// cron 轮询 pending 任务，至少一次执行，失败重试到上限
type Queue struct {
	jobRepo     repository.JobRepository
	stateRepo   repository.StateRepository
	runner      Runner
	cron        *cron.Cron
	maxAttempts int
	jobTimeout  time.Duration
}

// NewQueue 创建任务队列
// runner 依赖设置服务，而设置服务又要往队列里投任务，
// 所以 runner 不走构造器，启动前用 SetRunner 补上
func NewQueue(jobRepo repository.JobRepository, stateRepo repository.StateRepository) *Queue {
	return &Queue{
		jobRepo:     jobRepo,
		stateRepo:   stateRepo,
		cron:        cron.New(cron.WithSeconds()),
		maxAttempts: 3,
		jobTimeout:  30 * time.Minute,
	}
}

// SetRunner 指定任务执行单元，必须在 Start 之前调用
func (q *Queue) SetRunner(runner Runner) {
	q.runner = runner
}

// Start 启动队列轮询
func (q *Queue) Start() {
	// 每 5 秒扫一次队列
	_, err := q.cron.AddFunc("*/5 * * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), q.jobTimeout)
		defer cancel()
		q.Drain(ctx)
	})
	if err != nil {
		log.Printf("[Queue] 注册轮询任务失败: %v", err)
		return
	}

	// 每天凌晨 3 点做一次全量重同步 (首次同步完成过才会触发)
	_, err = q.cron.AddFunc("0 0 3 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		q.enqueueDailyResync(ctx)
	})
	if err != nil {
		log.Printf("[Queue] 注册重同步任务失败: %v", err)
	}

	q.cron.Start()
	log.Println("[Queue] 任务队列已启动 (每 5 秒轮询)")
}

// Stop 停止队列，等在途任务跑完
func (q *Queue) Stop() {
	ctx := q.cron.Stop()
	<-ctx.Done()
	log.Println("[Queue] 任务队列已停止")
}

// EnqueueProductSync 入队一次商品同步
// 先打同步标记再写队列行，立即返回不等执行
func (q *Queue) EnqueueProductSync(ctx context.Context) error {
	job := NewProcessProductsJob(q.stateRepo)
	if err := job.FlagStartSync(ctx); err != nil {
		return err
	}

	row := &model.QueuedJob{
		UUID:    uuid.NewString(),
		JobType: model.JobTypeProcessProducts,
		Payload: datatypes.JSON([]byte(`{}`)),
		Status:  model.JobStatusPending,
	}
	return q.jobRepo.Enqueue(ctx, row)
}

// Drain 把队列里的 pending 任务全部执行完
func (q *Queue) Drain(ctx context.Context) {
	for {
		job, err := q.jobRepo.ClaimNext(ctx)
		if err != nil {
			log.Printf("[Queue] 抢占任务失败: %v", err)
			return
		}
		if job == nil {
			return
		}

		log.Printf("[Queue] 开始执行任务 %s (type=%s, attempt=%d)", job.UUID, job.JobType, job.Attempts)
		if err := q.handle(ctx, job); err != nil {
			retry := job.Attempts < q.maxAttempts
			log.Printf("[Queue] 任务 %s 失败 (retry=%v): %v", job.UUID, retry, err)
			if merr := q.jobRepo.MarkFailed(ctx, job.ID, err.Error(), retry); merr != nil {
				log.Printf("[Queue] 标记失败出错: %v", merr)
			}
			continue
		}

		if err := q.jobRepo.MarkDone(ctx, job.ID); err != nil {
			log.Printf("[Queue] 标记完成出错: %v", err)
		}
		log.Printf("[Queue] 任务 %s 完成", job.UUID)
	}
}

// handle 按任务类型分发
func (q *Queue) handle(ctx context.Context, job *model.QueuedJob) error {
	if q.runner == nil {
		return fmt.Errorf("队列未配置 runner")
	}
	switch job.JobType {
	case model.JobTypeProcessProducts:
		return q.runner.Run(ctx)
	default:
		return fmt.Errorf("未知任务类型: %s", job.JobType)
	}
}

// enqueueDailyResync 首次同步完成过的店铺，每天重推一次
func (q *Queue) enqueueDailyResync(ctx context.Context) {
	state, err := q.stateRepo.Get(ctx)
	if err != nil {
		log.Printf("[Queue] 读取同步状态失败: %v", err)
		return
	}
	if state.SyncStartedAt == nil || state.Syncing {
		return
	}

	if err := q.EnqueueProductSync(ctx); err != nil {
		log.Printf("[Queue] 重同步入队失败: %v", err)
		return
	}
	log.Println("[Queue] 每日重同步已入队")
}
