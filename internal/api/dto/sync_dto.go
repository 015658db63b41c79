package dto

import "time"

// SyncStatusResp 同步状态页的数据
type SyncStatusResp struct {
	Syncing         bool       `json:"syncing"`
	SyncStartedAt   *time.Time `json:"sync_started_at"`
	SyncCompletedAt *time.Time `json:"sync_completed_at"`
	StoreCreatedAt  *time.Time `json:"store_created_at"`
	StoreUpdatedAt  *time.Time `json:"store_updated_at"`
	PendingJobs     int64      `json:"pending_jobs"`
	RunningJobs     int64      `json:"running_jobs"`
}

// SyncTriggerResp 手动触发同步的响应
type SyncTriggerResp struct {
	Enqueued bool   `json:"enqueued"`
	Message  string `json:"message"`
}
