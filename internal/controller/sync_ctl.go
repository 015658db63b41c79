package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mailchimp_wc_v1_202608/internal/api/dto"
	"mailchimp_wc_v1_202608/internal/model"
	"mailchimp_wc_v1_202608/internal/repository"
	"mailchimp_wc_v1_202608/internal/service"
)

// SyncController 同步控制器
type SyncController struct {
	settingsSvc *service.SettingsService
	stateRepo   repository.StateRepository
	jobRepo     repository.JobRepository
	queue       service.SyncJobQueue
}

// NewSyncController 创建同步控制器
func NewSyncController(
	settingsSvc *service.SettingsService,
	stateRepo repository.StateRepository,
	jobRepo repository.JobRepository,
	queue service.SyncJobQueue,
) *SyncController {
	return &SyncController{
		settingsSvc: settingsSvc,
		stateRepo:   stateRepo,
		jobRepo:     jobRepo,
		queue:       queue,
	}
}

// ==================== Handler 实现 ====================

// TriggerSync 手动触发同步
// @Summary 手动触发一次商品同步
// @Description 设置就绪且当前没有同步在跑时入队，否则 409
// @Tags Sync (同步)
// @Produce json
// @Success 200 {object} dto.SyncTriggerResp "已入队"
// @Failure 409 {object} map[string]string "未就绪或正在同步"
// @Failure 500 {object} map[string]string "服务器错误"
// @Router /api/sync [post]
func (c *SyncController) TriggerSync(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()

	state, err := c.stateRepo.Get(reqCtx)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if state.Syncing {
		ctx.JSON(http.StatusConflict, gin.H{"error": "同步正在进行中"})
		return
	}
	if !c.settingsSvc.IsReadyForSync(reqCtx) {
		ctx.JSON(http.StatusConflict, gin.H{"error": "设置未就绪，无法同步"})
		return
	}

	if err := c.queue.EnqueueProductSync(reqCtx); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, dto.SyncTriggerResp{Enqueued: true, Message: "同步任务已入队"})
}

// GetSyncStatus 查询同步状态
// @Summary 查询同步进度与时间戳
// @Tags Sync (同步)
// @Produce json
// @Success 200 {object} dto.SyncStatusResp "同步状态"
// @Failure 500 {object} map[string]string "服务器错误"
// @Router /api/sync/status [get]
func (c *SyncController) GetSyncStatus(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()

	state, err := c.stateRepo.Get(reqCtx)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	pending, err := c.jobRepo.CountByStatus(reqCtx, model.JobStatusPending)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	running, err := c.jobRepo.CountByStatus(reqCtx, model.JobStatusRunning)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, dto.SyncStatusResp{
		Syncing:         state.Syncing,
		SyncStartedAt:   state.SyncStartedAt,
		SyncCompletedAt: state.SyncCompletedAt,
		StoreCreatedAt:  state.StoreCreatedAt,
		StoreUpdatedAt:  state.StoreUpdatedAt,
		PendingJobs:     pending,
		RunningJobs:     running,
	})
}
