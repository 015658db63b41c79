package task

import (
	"context"
	"errors"
	"log"
	"time"

	"mailchimp_wc_v1_202608/internal/repository"
	"mailchimp_wc_v1_202608/internal/service"
)

// SyncRunner 一次完整的店铺同步：
// 推送 Store 实体，再分页走读远端商品出进度报告，
// 结束时清掉同步标记并记完成时间
type SyncRunner struct {
	settingsSvc *service.SettingsService
	syncSvc     *service.StoreSyncService
	stateRepo   repository.StateRepository
	pageLimit   int
}

// NewSyncRunner 创建同步执行器
func NewSyncRunner(
	settingsSvc *service.SettingsService,
	syncSvc *service.StoreSyncService,
	stateRepo repository.StateRepository,
) *SyncRunner {
	return &SyncRunner{
		settingsSvc: settingsSvc,
		syncSvc:     syncSvc,
		stateRepo:   stateRepo,
		pageLimit:   100,
	}
}

// Run 执行一次同步，队列按至少一次语义调用
func (r *SyncRunner) Run(ctx context.Context) error {
	record, err := r.settingsSvc.CurrentSettings(ctx)
	if err != nil {
		return err
	}

	// 1. 推送 Store 实体 (失败细节已进错误槽位)
	if !r.syncSvc.SyncStore(ctx, record) {
		return errors.New("store 同步失败")
	}

	// 2. 分页走读远端商品，确认目录可达并输出进度
	client, err := r.settingsSvc.API(ctx)
	if err != nil {
		return err
	}
	storeID := r.settingsSvc.Site().URL

	total := 0
	fetched := 0
	for page := 1; ; page++ {
		resp, err := client.Products(ctx, storeID, page, r.pageLimit)
		if err != nil {
			return err
		}
		total = resp.TotalItems
		fetched += len(resp.Products)
		log.Printf("[SyncRunner] 商品进度 %d/%d", fetched, total)
		if len(resp.Products) == 0 || fetched >= total {
			break
		}
	}

	// 3. 收尾：清同步标记，记完成时间
	if err := r.stateRepo.SetSyncing(ctx, false); err != nil {
		return err
	}
	if err := r.stateRepo.StampSyncCompleted(ctx, time.Now()); err != nil {
		return err
	}
	log.Printf("[SyncRunner] 同步完成，远端商品 %d 件", total)
	return nil
}
