package service

import (
	"context"
	"log"
	"time"

	"mailchimp_wc_v1_202608/internal/repository"
	"mailchimp_wc_v1_202608/pkg/mailchimp"
)

// Store 实体缺省值
const (
	defaultStoreLocale   = "en"
	defaultStoreTimezone = "America/New_York"
	defaultStoreCurrency = "USD"
	storePlatform        = "woocommerce"
)

// listCreationRequired 新建列表前必须齐备的设置项
// 店铺身份 + 营销默认值，缺一个就不发请求
var listCreationRequired = []string{
	OptStoreName, OptStoreStreet, OptStoreCity, OptStoreState,
	OptStorePostalCode, OptStoreCountry,
	OptCampaignFromName, OptCampaignFromEmail,
	OptCampaignSubject, OptCampaignPermissionReminder,
}

// ==================== StoreSyncService ====================

// StoreSyncService 负责把本地设置镜像到远端：
// Store 实体的创建/更新，以及订阅列表的创建
// 远端错误吸收进状态槽位，调用方只拿布尔结果
type StoreSyncService struct {
	stateRepo repository.StateRepository
	newClient ClientFactory
	site      SiteConfig
}

// NewStoreSyncService 工厂方法
func NewStoreSyncService(stateRepo repository.StateRepository, newClient ClientFactory, site SiteConfig) *StoreSyncService {
	return &StoreSyncService{
		stateRepo: stateRepo,
		newClient: newClient,
		site:      site,
	}
}

// SyncStore 按站点 URL 创建或更新远端 Store
// 不存在则创建并记 store_created_at，存在则更新并记 store_updated_at
// 同步执行，不重试；失败写入 store_info 错误槽位
func (s *StoreSyncService) SyncStore(ctx context.Context, record map[string]string) bool {
	client, ok := s.clientFor(record)
	if !ok {
		return false
	}

	existing, err := client.GetStore(ctx, s.site.URL)
	if err != nil {
		return s.failStore(ctx, err)
	}

	store := s.buildStore(record)
	if existing == nil {
		if _, err := client.AddStore(ctx, store); err != nil {
			return s.failStore(ctx, err)
		}
		if err := s.stateRepo.StampStoreCreated(ctx, time.Now()); err != nil {
			log.Printf("[StoreSync] 记录创建时间失败: %v", err)
		}
	} else {
		if _, err := client.UpdateStore(ctx, store); err != nil {
			return s.failStore(ctx, err)
		}
		if err := s.stateRepo.StampStoreUpdated(ctx, time.Now()); err != nil {
			log.Printf("[StoreSync] 记录更新时间失败: %v", err)
		}
	}

	// 成功后清空错误槽位
	if err := s.stateRepo.SetStoreInfoError(ctx, ""); err != nil {
		log.Printf("[StoreSync] 清除错误槽位失败: %v", err)
	}
	return true
}

// failStore 失败路径：错误进槽位，返回 false
func (s *StoreSyncService) failStore(ctx context.Context, cause error) bool {
	log.Printf("[StoreSync] Store 同步失败: %v", cause)
	if err := s.stateRepo.SetStoreInfoError(ctx, cause.Error()); err != nil {
		log.Printf("[StoreSync] 写入错误槽位失败: %v", err)
	}
	return false
}

// CreateMailchimpList 用当前设置新建订阅列表，返回新列表 id
// 必填设置不齐时不发请求，缺失信息写入列表错误槽位
func (s *StoreSyncService) CreateMailchimpList(ctx context.Context, record map[string]string) (string, bool) {
	for _, key := range listCreationRequired {
		if record[key] == "" {
			msg := "missing required setting: " + key
			log.Printf("[StoreSync] 列表创建跳过: %s", msg)
			if err := s.stateRepo.SetListError(ctx, msg); err != nil {
				log.Printf("[StoreSync] 写入错误槽位失败: %v", err)
			}
			return "", false
		}
	}

	client, ok := s.clientFor(record)
	if !ok {
		return "", false
	}

	sub := &mailchimp.CreateListSubmission{
		Name:               record[OptStoreName],
		Contact:            buildAddress(record),
		PermissionReminder: record[OptCampaignPermissionReminder],
		CampaignDefaults: mailchimp.CampaignDefaults{
			FromName:  record[OptCampaignFromName],
			FromEmail: record[OptCampaignFromEmail],
			Subject:   record[OptCampaignSubject],
			Language:  valueOr(record, OptCampaignLanguage, defaultCampaignLanguage),
		},
		NotifyOnSubscribe:   record[OptNotifyOnSubscribe],
		NotifyOnUnsubscribe: record[OptNotifyOnUnsubscribe],
		EmailTypeOption:     true, // 订阅者可选 HTML/纯文本
	}

	list, err := client.CreateList(ctx, sub)
	if err != nil {
		log.Printf("[StoreSync] 列表创建失败: %v", err)
		if serr := s.stateRepo.SetListError(ctx, err.Error()); serr != nil {
			log.Printf("[StoreSync] 写入错误槽位失败: %v", serr)
		}
		return "", false
	}

	if err := s.stateRepo.SetListError(ctx, ""); err != nil {
		log.Printf("[StoreSync] 清除错误槽位失败: %v", err)
	}
	return list.ID, true
}

// ==================== 构建器 ====================

// buildStore 设置记录 -> Store 实体，缺省值兜底
func (s *StoreSyncService) buildStore(record map[string]string) *mailchimp.Store {
	addr := buildAddress(record)
	return &mailchimp.Store{
		ID:            s.site.URL,
		ListID:        record[OptMailchimpList],
		Name:          record[OptStoreName],
		Platform:      storePlatform,
		Domain:        s.site.URL,
		EmailAddress:  record[OptCampaignFromEmail],
		CurrencyCode:  valueOr(record, OptStoreCurrencyCode, defaultStoreCurrency),
		PrimaryLocale: valueOr(record, OptStoreLocale, defaultStoreLocale),
		Timezone:      valueOr(record, OptStoreTimezone, defaultStoreTimezone),
		Phone:         record[OptStorePhone],
		Address:       &addr,
	}
}

// buildAddress 设置记录 -> 地址，空组件一律省略
func buildAddress(record map[string]string) mailchimp.Address {
	addr := mailchimp.Address{}
	if v := record[OptStoreStreet]; v != "" {
		addr.Address1 = v
	}
	if v := record[OptStoreCity]; v != "" {
		addr.City = v
	}
	if v := record[OptStoreState]; v != "" {
		addr.Province = v
	}
	if v := record[OptStorePostalCode]; v != "" {
		addr.PostalCode = v
	}
	if v := record[OptStoreCountry]; v != "" {
		addr.Country = v
	}
	if v := record[OptStoreName]; v != "" {
		addr.Company = v
	}
	if v := record[OptStorePhone]; v != "" {
		addr.Phone = v
	}
	return addr
}

// clientFor 从设置记录构建客户端
func (s *StoreSyncService) clientFor(record map[string]string) (mailchimp.Client, bool) {
	key := record[OptAPIKey]
	if key == "" {
		return nil, false
	}
	return s.newClient(key), true
}

// valueOr 带缺省值的取值
func valueOr(record map[string]string, key, fallback string) string {
	if v := record[key]; v != "" {
		return v
	}
	return fallback
}
