package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"mailchimp_wc_v1_202608/internal/repository"
	"mailchimp_wc_v1_202608/pkg/mailchimp"
	"mailchimp_wc_v1_202608/pkg/utils"
)

// ==================== 常量与类型 ====================

// SettingsTab 设置表单的 Tab 标识
type SettingsTab string

const (
	TabAPIKey             SettingsTab = "api_key"
	TabStoreInfo          SettingsTab = "store_info"
	TabCampaignDefaults   SettingsTab = "campaign_defaults"
	TabNewsletterSettings SettingsTab = "newsletter_settings"
)

// 设置记录的字段 key
const (
	OptAPIKey = "mailchimp_api_key"

	OptStoreName         = "store_name"
	OptStoreStreet       = "store_street"
	OptStoreCity         = "store_city"
	OptStoreState        = "store_state"
	OptStorePostalCode   = "store_postal_code"
	OptStoreCountry      = "store_country"
	OptStorePhone        = "store_phone"
	OptStoreLocale       = "store_locale"
	OptStoreTimezone     = "store_timezone"
	OptStoreCurrencyCode = "store_currency_code"

	OptCampaignFromName           = "campaign_from_name"
	OptCampaignFromEmail          = "campaign_from_email"
	OptCampaignSubject            = "campaign_subject"
	OptCampaignLanguage           = "campaign_language"
	OptCampaignPermissionReminder = "campaign_permission_reminder"

	OptMailchimpList       = "mailchimp_list"
	OptNewsletterLabel     = "newsletter_label"
	OptNotifyOnSubscribe   = "mailchimp_auto_subscribe"
	OptNotifyOnUnsubscribe = "mailchimp_auto_unsubscribe"
)

// ListChoiceCreateNew 下拉框里"新建列表"的哨兵值
const ListChoiceCreateNew = "create_new"

const (
	pingCacheKey = "mailchimp:ping-ok"
	listCacheKey = "mailchimp:lists"

	defaultCampaignLanguage = "en"
	defaultNewsletterLabel  = "Subscribe to our newsletter"
)

// lookupCacheTTL 连通性/列表目录缓存时长；测试里会调短
var lookupCacheTTL = 120 * time.Second

// storeInfoRequired store_info Tab 的必填字段，缺一个整批拒绝
var storeInfoRequired = []string{
	OptStoreName, OptStoreStreet, OptStoreCity, OptStoreState,
	OptStorePostalCode, OptStoreCountry, OptStorePhone,
	OptStoreLocale, OptStoreTimezone, OptStoreCurrencyCode,
}

// campaignDefaultsRequired campaign_defaults Tab 的必填字段
var campaignDefaultsRequired = []string{
	OptCampaignFromName, OptCampaignFromEmail, OptCampaignSubject,
	OptCampaignLanguage, OptCampaignPermissionReminder,
}

// ClientFactory 按 API Key 创建 MailChimp 客户端
// 表单里提交的新 Key 要用新客户端去 ping，所以不能只持有一个实例
type ClientFactory func(apiKey string) mailchimp.Client

// SiteConfig 本站点的身份信息 (默认值来源 + Store 唯一 id)
type SiteConfig struct {
	Name string // 站点名称，店铺名/发件人主题的默认值
	URL  string // 规范化站点 URL，作为远端 Store 的唯一 id
}

// ValidationResult 一次 Tab 提交的校验结果
type ValidationResult struct {
	// Accepted 本次通过校验并落库的字段，整批拒绝时为空
	Accepted map[string]string `json:"accepted"`
	// Record 合并后的完整设置记录 (新值覆盖旧值)
	Record map[string]string `json:"record"`
}

// ErrAPIKeyNotConfigured 尚未保存可用的 API Key
var ErrAPIKeyNotConfigured = errors.New("尚未配置 MailChimp API Key")

// ==================== SettingsService ====================

// SettingsService 设置编排器
// 负责逐 Tab 校验、默认值填充、合并落库，以及就绪状态判定
type SettingsService struct {
	optionRepo repository.OptionRepository
	stateRepo  repository.StateRepository
	syncSvc    *StoreSyncService
	queue      SyncJobQueue
	newClient  ClientFactory
	validate   *validator.Validate
	site       SiteConfig
}

// SyncJobQueue 后台队列的入队面 (task 包实现)
type SyncJobQueue interface {
	// EnqueueProductSync 入队一次商品同步任务，入队前打同步启动标记
	EnqueueProductSync(ctx context.Context) error
}

// NewSettingsService 工厂方法
func NewSettingsService(
	optionRepo repository.OptionRepository,
	stateRepo repository.StateRepository,
	syncSvc *StoreSyncService,
	queue SyncJobQueue,
	newClient ClientFactory,
	site SiteConfig,
) *SettingsService {
	return &SettingsService{
		optionRepo: optionRepo,
		stateRepo:  stateRepo,
		syncSvc:    syncSvc,
		queue:      queue,
		newClient:  newClient,
		validate:   validator.New(),
		site:       site,
	}
}

// ==================== Tab 校验入口 ====================

// Validate 处理一次设置表单提交
// 未知/空 Tab 不做任何事，返回当前记录；每个 Tab 整批通过或整批拒绝
func (s *SettingsService) Validate(ctx context.Context, tab SettingsTab, input map[string]string) (*ValidationResult, error) {
	current, err := s.optionRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	var accepted map[string]string
	switch tab {
	case TabAPIKey:
		accepted, err = s.validateAPIKey(ctx, input)
	case TabStoreInfo:
		accepted, err = s.validateStoreInfo(ctx, current, input)
	case TabCampaignDefaults:
		accepted, err = s.validateCampaignDefaults(ctx, input)
	case TabNewsletterSettings:
		accepted, err = s.validateNewsletterSettings(ctx, current, input)
	default:
		// 未知 Tab：记录原样返回，无副作用
		return &ValidationResult{Accepted: map[string]string{}, Record: current}, nil
	}
	if err != nil {
		return nil, err
	}

	if len(accepted) == 0 {
		return &ValidationResult{Accepted: map[string]string{}, Record: current}, nil
	}

	// 合并落库：只覆盖本次接受的字段
	if err := s.optionRepo.SetAll(ctx, accepted); err != nil {
		return nil, err
	}
	return &ValidationResult{Accepted: accepted, Record: mergeRecord(current, accepted)}, nil
}

// validateAPIKey api_key Tab：非空且能 ping 通才接受
func (s *SettingsService) validateAPIKey(ctx context.Context, input map[string]string) (map[string]string, error) {
	key := strings.TrimSpace(input[OptAPIKey])

	valid := false
	if key != "" {
		if err := s.newClient(key).Ping(ctx); err != nil {
			log.Printf("[Settings] API Key 校验失败: %v", err)
		} else {
			valid = true
		}
	}

	if err := s.stateRepo.SetAPIPingValid(ctx, valid); err != nil {
		return nil, err
	}
	if !valid {
		return nil, nil
	}

	// 换了 Key 之后旧的连通性缓存不可信
	utils.DeleteCache(pingCacheKey)
	utils.DeleteCache(listCacheKey)
	return map[string]string{OptAPIKey: key}, nil
}

// validateStoreInfo store_info Tab：十个必填字段全有才接受
// 通过后若已绑定有效列表，立即做一次 Store 同步
func (s *SettingsService) validateStoreInfo(ctx context.Context, current, input map[string]string) (map[string]string, error) {
	data := map[string]string{}
	take := func(key, fallback string) {
		v := strings.TrimSpace(input[key])
		if v == "" {
			v = fallback
		}
		if v != "" {
			data[key] = v
		}
	}

	take(OptStoreName, s.site.Name)
	take(OptStoreStreet, "")
	take(OptStoreCity, "")
	take(OptStoreState, "")
	take(OptStorePostalCode, "")
	take(OptStoreCountry, "")
	take(OptStorePhone, "")
	take(OptStoreLocale, "")
	take(OptStoreTimezone, "")
	take(OptStoreCurrencyCode, "")

	if !hasAll(data, storeInfoRequired) {
		if err := s.stateRepo.SetStoreInfoValid(ctx, false); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if err := s.stateRepo.SetStoreInfoValid(ctx, true); err != nil {
		return nil, err
	}

	// 列表已绑定时顺手把最新的店铺信息推到远端
	if s.HasValidList(ctx) {
		s.syncSvc.SyncStore(ctx, mergeRecord(current, data))
	}
	return data, nil
}

// validateCampaignDefaults campaign_defaults Tab：五个必填字段全有才接受
// 发件邮箱必须是合法格式，非法时整批拒绝
func (s *SettingsService) validateCampaignDefaults(ctx context.Context, input map[string]string) (map[string]string, error) {
	data := map[string]string{}

	if v := strings.TrimSpace(input[OptCampaignFromName]); v != "" {
		data[OptCampaignFromName] = v
	}
	if v := strings.TrimSpace(input[OptCampaignFromEmail]); v != "" {
		if s.validate.Var(v, "email") == nil {
			data[OptCampaignFromEmail] = v
		}
	}

	take := func(key, fallback string) {
		v := strings.TrimSpace(input[key])
		if v == "" {
			v = fallback
		}
		if v != "" {
			data[key] = v
		}
	}
	take(OptCampaignSubject, s.site.Name)
	take(OptCampaignLanguage, defaultCampaignLanguage)
	take(OptCampaignPermissionReminder, "You were subscribed to the newsletter from "+s.site.Name)

	valid := hasAll(data, campaignDefaultsRequired)
	if err := s.stateRepo.SetCampaignDefaultsValid(ctx, valid); err != nil {
		return nil, err
	}
	if !valid {
		return nil, nil
	}
	return data, nil
}

// validateNewsletterSettings newsletter_settings Tab
// create_new 时同步创建远端列表；绑定真实列表后做 Store 同步并抢占首次商品同步
func (s *SettingsService) validateNewsletterSettings(ctx context.Context, current, input map[string]string) (map[string]string, error) {
	data := map[string]string{}

	label := strings.TrimSpace(input[OptNewsletterLabel])
	if label == "" {
		label = defaultNewsletterLabel
	}
	data[OptNewsletterLabel] = label

	// 订阅/退订通知邮箱是可选的，但给了就必须是合法邮箱
	if v := strings.TrimSpace(input[OptNotifyOnSubscribe]); v != "" && s.validate.Var(v, "email") == nil {
		data[OptNotifyOnSubscribe] = v
	}
	if v := strings.TrimSpace(input[OptNotifyOnUnsubscribe]); v != "" && s.validate.Var(v, "email") == nil {
		data[OptNotifyOnUnsubscribe] = v
	}

	listID := strings.TrimSpace(input[OptMailchimpList])
	if listID == ListChoiceCreateNew {
		newID, ok := s.syncSvc.CreateMailchimpList(ctx, mergeRecord(current, data))
		if !ok {
			// 创建失败：错误已写入槽位，列表字段不落库
			listID = ""
		} else {
			listID = newID
			utils.DeleteCache(listCacheKey)
		}
	}
	if listID != "" {
		data[OptMailchimpList] = listID
	}

	// 拿到真实列表 id 后：确认远端存在 -> Store 同步 -> 抢占首次商品同步
	if listID != "" {
		merged := mergeRecord(current, data)
		client, ok := s.clientFor(merged)
		if !ok {
			return data, nil
		}
		exists, err := client.HasList(ctx, listID)
		if err != nil {
			log.Printf("[Settings] 确认列表 %s 失败: %v", listID, err)
			return data, nil
		}
		if !exists {
			return data, nil
		}

		s.syncSvc.SyncStore(ctx, merged)

		claimed, err := s.stateRepo.ClaimFirstSync(ctx, time.Now())
		if err != nil {
			return nil, err
		}
		if claimed {
			if err := s.queue.EnqueueProductSync(ctx); err != nil {
				return nil, err
			}
			log.Println("[Settings] 首次商品同步已入队")
		}
	}
	return data, nil
}

// ==================== 就绪状态 ====================

// HasValidAPIKey 已存 Key 且 ping 通过 (成功结果缓存 120s，失败不缓存)
func (s *SettingsService) HasValidAPIKey(ctx context.Context) bool {
	key, exists, err := s.optionRepo.Get(ctx, OptAPIKey)
	if err != nil || !exists || key == "" {
		return false
	}

	if _, hit := utils.GetCache(pingCacheKey); hit {
		return true
	}

	if err := s.newClient(key).Ping(ctx); err != nil {
		log.Printf("[Settings] ping 失败: %v", err)
		return false
	}
	utils.SetCache(pingCacheKey, true, lookupCacheTTL)
	return true
}

// GetListCatalog 拉取账号下的列表目录，成功结果缓存 120s
func (s *SettingsService) GetListCatalog(ctx context.Context) ([]mailchimp.List, error) {
	if cached, hit := utils.GetCache(listCacheKey); hit {
		return cached.([]mailchimp.List), nil
	}

	client, err := s.API(ctx)
	if err != nil {
		return nil, err
	}
	lists, err := client.GetLists(ctx)
	if err != nil {
		return nil, err
	}
	utils.SetCache(listCacheKey, lists, lookupCacheTTL)
	return lists, nil
}

// HasValidList Key 可用 + 已配置列表 id + 远端确认存在
func (s *SettingsService) HasValidList(ctx context.Context) bool {
	if !s.HasValidAPIKey(ctx) {
		return false
	}
	listID, exists, err := s.optionRepo.Get(ctx, OptMailchimpList)
	if err != nil || !exists || listID == "" {
		return false
	}

	client, err := s.API(ctx)
	if err != nil {
		return false
	}
	ok, err := client.HasList(ctx, listID)
	if err != nil {
		log.Printf("[Settings] 确认列表 %s 失败: %v", listID, err)
		return false
	}
	return ok
}

// IsReadyForSync 四个条件全过才算就绪：
// Key 可用、列表已配置、远端列表存在、远端 Store 存在
func (s *SettingsService) IsReadyForSync(ctx context.Context) bool {
	if !s.HasValidList(ctx) {
		return false
	}
	client, err := s.API(ctx)
	if err != nil {
		return false
	}
	store, err := client.GetStore(ctx, s.site.URL)
	if err != nil {
		log.Printf("[Settings] 查询 Store 失败: %v", err)
		return false
	}
	return store != nil
}

// ==================== 辅助 ====================

// API 用存储的 Key 构建客户端
func (s *SettingsService) API(ctx context.Context) (mailchimp.Client, error) {
	key, exists, err := s.optionRepo.Get(ctx, OptAPIKey)
	if err != nil {
		return nil, err
	}
	if !exists || key == "" {
		return nil, ErrAPIKeyNotConfigured
	}
	return s.newClient(key), nil
}

// CurrentSettings 读取完整设置记录
func (s *SettingsService) CurrentSettings(ctx context.Context) (map[string]string, error) {
	return s.optionRepo.GetAll(ctx)
}

// Site 站点身份
func (s *SettingsService) Site() SiteConfig {
	return s.site
}

// clientFor 从设置记录里的 Key 构建客户端
func (s *SettingsService) clientFor(record map[string]string) (mailchimp.Client, bool) {
	key := record[OptAPIKey]
	if key == "" {
		return nil, false
	}
	return s.newClient(key), true
}

// mergeRecord 新值覆盖旧值的并集
func mergeRecord(old, updates map[string]string) map[string]string {
	merged := make(map[string]string, len(old)+len(updates))
	for k, v := range old {
		merged[k] = v
	}
	for k, v := range updates {
		merged[k] = v
	}
	return merged
}

// hasAll 检查必填字段是否全部非空
func hasAll(data map[string]string, keys []string) bool {
	for _, k := range keys {
		if data[k] == "" {
			return false
		}
	}
	return true
}
