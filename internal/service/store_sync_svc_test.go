package service

import (
	"context"
	"errors"
	"testing"

	"mailchimp_wc_v1_202608/internal/repository"
	"mailchimp_wc_v1_202608/pkg/mailchimp"
)

// ==================== 测试辅助 ====================

type storeSyncFixture struct {
	svc       *StoreSyncService
	fake      *fakeMailchimpClient
	stateRepo repository.StateRepository
}

func setupStoreSync(t *testing.T) *storeSyncFixture {
	db := setupSettingsTestDB(t)
	stateRepo := repository.NewStateRepository(db)
	if err := stateRepo.EnsureDefault(context.Background()); err != nil {
		t.Fatalf("初始化状态行失败: %v", err)
	}

	fake := &fakeMailchimpClient{existingLists: map[string]bool{}}
	factory := func(apiKey string) mailchimp.Client { return fake }
	svc := NewStoreSyncService(stateRepo, factory, SiteConfig{Name: "Demo Shop", URL: testSiteURL})

	return &storeSyncFixture{svc: svc, fake: fake, stateRepo: stateRepo}
}

// fullRecord 一套能通过列表创建前置检查的完整设置
func fullRecord() map[string]string {
	record := storeInfoInput()
	record[OptAPIKey] = "key-us6"
	record[OptCampaignFromName] = "Demo Shop"
	record[OptCampaignFromEmail] = "news@example.com"
	record[OptCampaignSubject] = "Demo Shop News"
	record[OptCampaignPermissionReminder] = "You subscribed on our site"
	return record
}

// ==================== Store 同步 ====================

func TestSyncStore_CreatesWhenAbsent(t *testing.T) {
	fx := setupStoreSync(t)
	ctx := context.Background()

	if !fx.svc.SyncStore(ctx, fullRecord()) {
		t.Fatalf("同步应成功")
	}
	if fx.fake.addStoreCalls != 1 || fx.fake.updateStoreCalls != 0 {
		t.Errorf("远端不存在时应创建，实际 add=%d update=%d", fx.fake.addStoreCalls, fx.fake.updateStoreCalls)
	}

	state, _ := fx.stateRepo.Get(ctx)
	if state.StoreCreatedAt == nil {
		t.Errorf("创建后应记 store_created_at")
	}
	if state.StoreUpdatedAt != nil {
		t.Errorf("创建路径不应记 store_updated_at")
	}
}

func TestSyncStore_UpdatesWhenPresent(t *testing.T) {
	fx := setupStoreSync(t)
	ctx := context.Background()
	fx.fake.store = &mailchimp.Store{ID: testSiteURL}

	if !fx.svc.SyncStore(ctx, fullRecord()) {
		t.Fatalf("同步应成功")
	}
	if fx.fake.addStoreCalls != 0 || fx.fake.updateStoreCalls != 1 {
		t.Errorf("远端存在时应更新，实际 add=%d update=%d", fx.fake.addStoreCalls, fx.fake.updateStoreCalls)
	}

	state, _ := fx.stateRepo.Get(ctx)
	if state.StoreUpdatedAt == nil {
		t.Errorf("更新后应记 store_updated_at")
	}
}

func TestSyncStore_DefaultsAndIdentity(t *testing.T) {
	fx := setupStoreSync(t)
	ctx := context.Background()

	record := fullRecord()
	delete(record, OptStoreLocale)
	delete(record, OptStoreTimezone)
	delete(record, OptStoreCurrencyCode)

	fx.svc.SyncStore(ctx, record)

	store := fx.fake.lastStore
	if store.ID != testSiteURL || store.Domain != testSiteURL {
		t.Errorf("Store 应以站点 URL 为唯一 id: %+v", store)
	}
	if store.Platform != "woocommerce" {
		t.Errorf("平台应为 woocommerce，实际 %s", store.Platform)
	}
	if store.PrimaryLocale != "en" || store.Timezone != "America/New_York" || store.CurrencyCode != "USD" {
		t.Errorf("缺省值不对: locale=%s tz=%s currency=%s", store.PrimaryLocale, store.Timezone, store.CurrencyCode)
	}
}

func TestSyncStore_AddressOmitsEmpties(t *testing.T) {
	fx := setupStoreSync(t)
	ctx := context.Background()

	record := fullRecord()
	record[OptStorePhone] = ""
	delete(record, OptStorePostalCode)

	fx.svc.SyncStore(ctx, record)

	addr := fx.fake.lastStore.Address
	if addr.Phone != "" || addr.PostalCode != "" {
		t.Errorf("空地址组件应省略: %+v", addr)
	}
	if addr.Address1 != "1 Main St" || addr.City != "Boston" || addr.Province != "MA" || addr.Country != "US" {
		t.Errorf("非空地址组件应保留: %+v", addr)
	}
}

func TestSyncStore_ErrorRecordedAndCleared(t *testing.T) {
	fx := setupStoreSync(t)
	ctx := context.Background()
	fx.fake.addStoreErr = &mailchimp.APIError{Title: "Bad Request", StatusCode: 400, Detail: "invalid currency"}

	if fx.svc.SyncStore(ctx, fullRecord()) {
		t.Fatalf("远端报错时应返回失败")
	}
	state, _ := fx.stateRepo.Get(ctx)
	if state.StoreInfoError == "" {
		t.Fatalf("错误应写入槽位")
	}

	// 恢复后成功并清空槽位
	fx.fake.addStoreErr = nil
	if !fx.svc.SyncStore(ctx, fullRecord()) {
		t.Fatalf("恢复后同步应成功")
	}
	state, _ = fx.stateRepo.Get(ctx)
	if state.StoreInfoError != "" {
		t.Errorf("成功后应清空错误槽位，实际 %q", state.StoreInfoError)
	}
}

func TestSyncStore_NoAPIKey(t *testing.T) {
	fx := setupStoreSync(t)
	ctx := context.Background()

	record := fullRecord()
	delete(record, OptAPIKey)

	if fx.svc.SyncStore(ctx, record) {
		t.Errorf("没有 Key 时应直接失败")
	}
	if fx.fake.addStoreCalls != 0 {
		t.Errorf("没有 Key 时不应发请求")
	}
}

// ==================== 列表创建 ====================

func TestCreateMailchimpList_Success(t *testing.T) {
	fx := setupStoreSync(t)
	ctx := context.Background()
	fx.fake.createdListID = "fresh-1"

	// 先放一个旧错误，成功后应被清掉
	fx.stateRepo.SetListError(ctx, "old failure")

	id, ok := fx.svc.CreateMailchimpList(ctx, fullRecord())
	if !ok || id != "fresh-1" {
		t.Fatalf("创建应成功并返回新 id，实际 (%s, %v)", id, ok)
	}

	sub := fx.fake.lastSubmission
	if sub.PermissionReminder != "You subscribed on our site" {
		t.Errorf("订阅提示语不对: %q", sub.PermissionReminder)
	}
	if sub.CampaignDefaults.Language != "en" {
		t.Errorf("语言缺省应为 en，实际 %q", sub.CampaignDefaults.Language)
	}
	if sub.Contact.City != "Boston" {
		t.Errorf("联系地址应来自店铺信息: %+v", sub.Contact)
	}

	state, _ := fx.stateRepo.Get(ctx)
	if state.MailchimpListError != "" {
		t.Errorf("成功后应清空列表错误槽位")
	}
}

func TestCreateMailchimpList_MissingRequired(t *testing.T) {
	fx := setupStoreSync(t)
	ctx := context.Background()

	record := fullRecord()
	delete(record, OptCampaignFromEmail)

	_, ok := fx.svc.CreateMailchimpList(ctx, record)
	if ok {
		t.Fatalf("必填设置缺失时应失败")
	}
	if fx.fake.createListCall != 0 {
		t.Errorf("必填设置缺失时不应发请求")
	}

	state, _ := fx.stateRepo.Get(ctx)
	if state.MailchimpListError == "" {
		t.Errorf("缺失信息应写入列表错误槽位")
	}
}

func TestCreateMailchimpList_RemoteError(t *testing.T) {
	fx := setupStoreSync(t)
	ctx := context.Background()
	fx.fake.createListErr = errors.New("mailchimp: Forbidden (403)")

	_, ok := fx.svc.CreateMailchimpList(ctx, fullRecord())
	if ok {
		t.Fatalf("远端报错时应失败")
	}

	state, _ := fx.stateRepo.Get(ctx)
	if state.MailchimpListError != "mailchimp: Forbidden (403)" {
		t.Errorf("错误信息应原样进槽位，实际 %q", state.MailchimpListError)
	}
}
