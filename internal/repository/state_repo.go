package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"mailchimp_wc_v1_202608/internal/model"
)

// ==================== StateRepository 同步状态仓库 ====================

// StateRepository 同步/校验/错误状态仓库接口 (单行表)
type StateRepository interface {
	// EnsureDefault 状态行不存在时写入初始状态 (未同步、全部未校验)
	EnsureDefault(ctx context.Context) error
	Get(ctx context.Context) (*model.SyncState, error)

	// 校验标记
	SetAPIPingValid(ctx context.Context, ok bool) error
	SetStoreInfoValid(ctx context.Context, ok bool) error
	SetCampaignDefaultsValid(ctx context.Context, ok bool) error

	// 错误槽位，msg 为空串表示清除
	SetStoreInfoError(ctx context.Context, msg string) error
	SetListError(ctx context.Context, msg string) error

	// 远端 Store 时间戳
	StampStoreCreated(ctx context.Context, t time.Time) error
	StampStoreUpdated(ctx context.Context, t time.Time) error

	// ClaimFirstSync 原子抢占首次同步：只有把 sync_started_at 从 NULL
	// 写成 now 的那个调用者返回 true，之后永远返回 false
	ClaimFirstSync(ctx context.Context, now time.Time) (bool, error)

	SetSyncing(ctx context.Context, syncing bool) error
	StampSyncCompleted(ctx context.Context, t time.Time) error
}

// ==================== 实现 ====================

type stateRepository struct {
	db *gorm.DB
}

// NewStateRepository 创建同步状态仓库
func NewStateRepository(db *gorm.DB) StateRepository {
	return &stateRepository{db: db}
}

// EnsureDefault 安装时种下初始状态行
func (r *stateRepository) EnsureDefault(ctx context.Context) error {
	var state model.SyncState
	err := r.db.WithContext(ctx).First(&state, model.SyncStateRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		state = model.SyncState{ID: model.SyncStateRowID, Syncing: false}
		return r.db.WithContext(ctx).Create(&state).Error
	}
	return err
}

// Get 读取状态行
func (r *stateRepository) Get(ctx context.Context) (*model.SyncState, error) {
	var state model.SyncState
	err := r.db.WithContext(ctx).First(&state, model.SyncStateRowID).Error
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// update 单行表的统一更新入口
func (r *stateRepository) update(ctx context.Context, values map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.SyncState{}).
		Where("id = ?", model.SyncStateRowID).
		Updates(values).Error
}

// SetAPIPingValid 记录 api key ping 校验结果
func (r *stateRepository) SetAPIPingValid(ctx context.Context, ok bool) error {
	return r.update(ctx, map[string]interface{}{"valid_api_ping": ok})
}

// SetStoreInfoValid 记录店铺信息校验结果
func (r *stateRepository) SetStoreInfoValid(ctx context.Context, ok bool) error {
	return r.update(ctx, map[string]interface{}{"valid_store_info": ok})
}

// SetCampaignDefaultsValid 记录营销默认值校验结果
func (r *stateRepository) SetCampaignDefaultsValid(ctx context.Context, ok bool) error {
	return r.update(ctx, map[string]interface{}{"valid_campaign_defaults": ok})
}

// SetStoreInfoError 写入/清除 Store 同步错误
func (r *stateRepository) SetStoreInfoError(ctx context.Context, msg string) error {
	return r.update(ctx, map[string]interface{}{"store_info_error": msg})
}

// SetListError 写入/清除列表创建错误
func (r *stateRepository) SetListError(ctx context.Context, msg string) error {
	return r.update(ctx, map[string]interface{}{"mailchimp_list_error": msg})
}

// StampStoreCreated 记录远端 Store 创建时间
func (r *stateRepository) StampStoreCreated(ctx context.Context, t time.Time) error {
	return r.update(ctx, map[string]interface{}{"store_created_at": t})
}

// StampStoreUpdated 记录远端 Store 更新时间
func (r *stateRepository) StampStoreUpdated(ctx context.Context, t time.Time) error {
	return r.update(ctx, map[string]interface{}{"store_updated_at": t})
}

// ClaimFirstSync 条件 UPDATE 实现 CAS，受影响行数为 1 才算抢到
func (r *stateRepository) ClaimFirstSync(ctx context.Context, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.SyncState{}).
		Where("id = ? AND sync_started_at IS NULL", model.SyncStateRowID).
		Update("sync_started_at", now)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// SetSyncing 设置同步进行中标记
func (r *stateRepository) SetSyncing(ctx context.Context, syncing bool) error {
	return r.update(ctx, map[string]interface{}{"syncing": syncing})
}

// StampSyncCompleted 记录同步完成时间
func (r *stateRepository) StampSyncCompleted(ctx context.Context, t time.Time) error {
	return r.update(ctx, map[string]interface{}{"sync_completed_at": t})
}
