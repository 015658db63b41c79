package dto

// SettingsSubmitReq 设置表单提交
// 前端把当前 Tab 放在 mailchimp_active_tab，字段平铺在 fields 里
type SettingsSubmitReq struct {
	ActiveTab string            `json:"mailchimp_active_tab" binding:"required"`
	Fields    map[string]string `json:"fields"`
}

// SettingsResp 设置提交/查询的响应
type SettingsResp struct {
	// Accepted 本次通过校验的字段 (GET 时为空)
	Accepted map[string]string `json:"accepted,omitempty"`
	// Settings 合并后的完整设置记录
	Settings map[string]string `json:"settings"`
}

// SettingsStatusResp 设置界面的状态：校验标记 + Tab 可见性
type SettingsStatusResp struct {
	HasValidAPIKey        bool `json:"has_valid_api_key"`
	ValidStoreInfo        bool `json:"valid_store_info"`
	ValidCampaignDefaults bool `json:"valid_campaign_defaults"`
	Syncing               bool `json:"syncing"`
	ReadyForSync          bool `json:"ready_for_sync"`

	// Tab 可见性 (api_key Tab 永远可见，不下发)
	ShowStoreInfoTab        bool `json:"show_store_info_tab"`
	ShowCampaignDefaultsTab bool `json:"show_campaign_defaults_tab"`
	ShowNewsletterTab       bool `json:"show_newsletter_tab"`
	ShowSyncTab             bool `json:"show_sync_tab"`

	// 错误槽位
	StoreInfoError     string `json:"store_info_error,omitempty"`
	MailchimpListError string `json:"mailchimp_list_error,omitempty"`
}

// ListItem 列表下拉框的一项
type ListItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MemberCount int    `json:"member_count"`
}

// ListCatalogResp 列表目录响应
type ListCatalogResp struct {
	Lists []ListItem `json:"lists"`
}
