package mailchimp

// MailChimp Marketing API v3 的数据结构
// 字段名与官方 JSON 保持一致，地址类字段空值一律省略不上送

// PingResp GET /ping 的响应
type PingResp struct {
	HealthStatus string `json:"health_status"`
}

// Address 通讯地址，列表 contact 和 Store address 共用
// 所有字段都 omitempty：上游只填有值的组件
type Address struct {
	Address1   string `json:"address1,omitempty"`
	Address2   string `json:"address2,omitempty"`
	City       string `json:"city,omitempty"`
	Province   string `json:"province,omitempty"` // 州/省
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
	Company    string `json:"company,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// CampaignDefaults 邮件营销默认值
type CampaignDefaults struct {
	FromName  string `json:"from_name"`
	FromEmail string `json:"from_email"`
	Subject   string `json:"subject"`
	Language  string `json:"language"`
}

// List 订阅列表 (Audience)
type List struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Contact          Address          `json:"contact"`
	PermissionRemind string           `json:"permission_reminder"`
	CampaignDefaults CampaignDefaults `json:"campaign_defaults"`
	DateCreated      string           `json:"date_created"`
	Stats            ListStats        `json:"stats"`
}

// ListStats 列表统计 (下拉框展示订阅数用)
type ListStats struct {
	MemberCount      int `json:"member_count"`
	UnsubscribeCount int `json:"unsubscribe_count"`
}

// ListsResp GET /lists 的响应
type ListsResp struct {
	Lists      []List `json:"lists"`
	TotalItems int    `json:"total_items"`
}

// CreateListSubmission POST /lists 的请求体
type CreateListSubmission struct {
	Name                string           `json:"name"`
	Contact             Address          `json:"contact"`
	PermissionReminder  string           `json:"permission_reminder"`
	CampaignDefaults    CampaignDefaults `json:"campaign_defaults"`
	NotifyOnSubscribe   string           `json:"notify_on_subscribe,omitempty"`
	NotifyOnUnsubscribe string           `json:"notify_on_unsubscribe,omitempty"`
	EmailTypeOption     bool             `json:"email_type_option"`
}

// Store 电商 Store 实体 (以站点 URL 作为唯一 id)
type Store struct {
	ID            string   `json:"id"`
	ListID        string   `json:"list_id"`
	Name          string   `json:"name"`
	Platform      string   `json:"platform,omitempty"`
	Domain        string   `json:"domain,omitempty"`
	EmailAddress  string   `json:"email_address,omitempty"`
	CurrencyCode  string   `json:"currency_code"`
	PrimaryLocale string   `json:"primary_locale,omitempty"`
	Timezone      string   `json:"timezone,omitempty"`
	Phone         string   `json:"phone,omitempty"`
	Address       *Address `json:"address,omitempty"`
	CreatedAt     string   `json:"created_at,omitempty"`
	UpdatedAt     string   `json:"updated_at,omitempty"`
}

// StoresResp GET /ecommerce/stores 的响应
type StoresResp struct {
	Stores     []Store `json:"stores"`
	TotalItems int     `json:"total_items"`
}

// Order 店铺订单 (只取调试界面需要的字段)
type Order struct {
	ID           string  `json:"id"`
	CurrencyCode string  `json:"currency_code"`
	OrderTotal   float64 `json:"order_total"`
	ProcessedAt  string  `json:"processed_at_foreign"`
}

// OrdersResp GET /ecommerce/stores/{id}/orders 的响应
type OrdersResp struct {
	Orders     []Order `json:"orders"`
	TotalItems int     `json:"total_items"`
}

// Product 店铺商品
type Product struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Handle      string `json:"handle"`
	PublishedAt string `json:"published_at_foreign"`
}

// ProductsResp GET /ecommerce/stores/{id}/products 的响应
type ProductsResp struct {
	Products   []Product `json:"products"`
	TotalItems int       `json:"total_items"`
}

// Cart 未结账购物车
type Cart struct {
	ID         string  `json:"id"`
	OrderTotal float64 `json:"order_total"`
	CreatedAt  string  `json:"created_at"`
}

// CartsResp GET /ecommerce/stores/{id}/carts 的响应
type CartsResp struct {
	Carts      []Cart `json:"carts"`
	TotalItems int    `json:"total_items"`
}
