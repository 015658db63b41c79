package model

import "time"

// SyncStateRowID 状态表只有一行，固定主键
const SyncStateRowID int64 = 1

// SyncState 同步/校验/错误状态 (单行表)
// 校验标记与错误槽位分开存，界面按槽位展示
type SyncState struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 同步进度
	Syncing         bool       `gorm:"default:false" json:"syncing"`
	SyncStartedAt   *time.Time `json:"sync_started_at"`   // 首次商品同步入队时间，只写一次
	SyncCompletedAt *time.Time `json:"sync_completed_at"` // 最近一次同步完成时间

	// 远端 Store 的创建/更新时间戳
	StoreCreatedAt *time.Time `json:"store_created_at"`
	StoreUpdatedAt *time.Time `json:"store_updated_at"`

	// 逐 Tab 校验标记
	ValidAPIPing          bool `gorm:"default:false" json:"valid_api_ping"`
	ValidStoreInfo        bool `gorm:"default:false" json:"valid_store_info"`
	ValidCampaignDefaults bool `gorm:"default:false" json:"valid_campaign_defaults"`

	// 错误槽位，空串表示无错误
	StoreInfoError     string `gorm:"type:text" json:"store_info_error"`
	MailchimpListError string `gorm:"type:text" json:"mailchimp_list_error"`
}

func (SyncState) TableName() string {
	return "sync_states"
}
