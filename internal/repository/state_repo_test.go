package repository

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mailchimp_wc_v1_202608/internal/model"
)

// ==================== 测试辅助 ====================

func setupStateTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	db.AutoMigrate(&model.SyncState{})
	return db
}

// ==================== 单元测试 ====================

func TestStateRepository_EnsureDefault(t *testing.T) {
	repo := NewStateRepository(setupStateTestDB(t))
	ctx := context.Background()

	if err := repo.EnsureDefault(ctx); err != nil {
		t.Fatalf("初始化状态行失败: %v", err)
	}

	state, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("读取状态行失败: %v", err)
	}
	if state.Syncing {
		t.Errorf("初始状态不应是同步中")
	}
	if state.SyncStartedAt != nil {
		t.Errorf("初始状态不应有首次同步时间")
	}

	// 重复调用不报错也不重置
	repo.SetSyncing(ctx, true)
	if err := repo.EnsureDefault(ctx); err != nil {
		t.Fatalf("重复初始化失败: %v", err)
	}
	state, _ = repo.Get(ctx)
	if !state.Syncing {
		t.Errorf("重复初始化不应覆盖已有状态")
	}
}

func TestStateRepository_ValidationFlags(t *testing.T) {
	repo := NewStateRepository(setupStateTestDB(t))
	ctx := context.Background()
	repo.EnsureDefault(ctx)

	repo.SetAPIPingValid(ctx, true)
	repo.SetStoreInfoValid(ctx, true)
	repo.SetCampaignDefaultsValid(ctx, true)

	state, _ := repo.Get(ctx)
	if !state.ValidAPIPing || !state.ValidStoreInfo || !state.ValidCampaignDefaults {
		t.Errorf("三个校验标记都应为 true: %+v", state)
	}

	// 标记可以回落
	repo.SetAPIPingValid(ctx, false)
	state, _ = repo.Get(ctx)
	if state.ValidAPIPing {
		t.Errorf("api ping 标记应已回落为 false")
	}
}

func TestStateRepository_ErrorSlots(t *testing.T) {
	repo := NewStateRepository(setupStateTestDB(t))
	ctx := context.Background()
	repo.EnsureDefault(ctx)

	repo.SetStoreInfoError(ctx, "store sync failed")
	repo.SetListError(ctx, "list create failed")

	state, _ := repo.Get(ctx)
	if state.StoreInfoError != "store sync failed" {
		t.Errorf("store_info 错误槽位不对: %s", state.StoreInfoError)
	}
	if state.MailchimpListError != "list create failed" {
		t.Errorf("列表错误槽位不对: %s", state.MailchimpListError)
	}

	// 空串清除
	repo.SetStoreInfoError(ctx, "")
	state, _ = repo.Get(ctx)
	if state.StoreInfoError != "" {
		t.Errorf("错误槽位应已清空: %s", state.StoreInfoError)
	}
}

func TestStateRepository_ClaimFirstSync(t *testing.T) {
	repo := NewStateRepository(setupStateTestDB(t))
	ctx := context.Background()
	repo.EnsureDefault(ctx)

	claimed, err := repo.ClaimFirstSync(ctx, time.Now())
	if err != nil {
		t.Fatalf("首次抢占失败: %v", err)
	}
	if !claimed {
		t.Fatalf("第一次抢占应该成功")
	}

	// 再抢永远失败
	for i := 0; i < 3; i++ {
		claimed, err = repo.ClaimFirstSync(ctx, time.Now())
		if err != nil {
			t.Fatalf("重复抢占出错: %v", err)
		}
		if claimed {
			t.Errorf("第 %d 次重复抢占不应成功", i+2)
		}
	}

	state, _ := repo.Get(ctx)
	if state.SyncStartedAt == nil {
		t.Errorf("抢占成功后应有首次同步时间")
	}
}

func TestStateRepository_SyncStamps(t *testing.T) {
	repo := NewStateRepository(setupStateTestDB(t))
	ctx := context.Background()
	repo.EnsureDefault(ctx)

	now := time.Now()
	repo.StampStoreCreated(ctx, now)
	repo.StampStoreUpdated(ctx, now)
	repo.StampSyncCompleted(ctx, now)

	state, _ := repo.Get(ctx)
	if state.StoreCreatedAt == nil || state.StoreUpdatedAt == nil || state.SyncCompletedAt == nil {
		t.Errorf("三个时间戳都应已写入: %+v", state)
	}
}
