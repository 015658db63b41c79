package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mailchimp_wc_v1_202608/internal/api/dto"
	"mailchimp_wc_v1_202608/internal/repository"
	"mailchimp_wc_v1_202608/internal/service"
)

type SettingsController struct {
	settingsSvc *service.SettingsService
	stateRepo   repository.StateRepository
}

func NewSettingsController(settingsSvc *service.SettingsService, stateRepo repository.StateRepository) *SettingsController {
	return &SettingsController{
		settingsSvc: settingsSvc,
		stateRepo:   stateRepo,
	}
}

// SubmitSettings 提交设置表单
// @Summary 提交设置表单 (单个 Tab)
// @Description 按 mailchimp_active_tab 路由到对应 Tab 的校验器，整批通过或整批拒绝
// @Tags Settings (连接设置)
// @Accept json
// @Produce json
// @Param body body dto.SettingsSubmitReq true "Tab 标识 + 表单字段"
// @Success 200 {object} dto.SettingsResp "校验结果与合并后的设置"
// @Failure 400 {object} map[string]string "参数错误"
// @Failure 500 {object} map[string]string "服务器错误"
// @Router /api/settings [post]
func (c *SettingsController) SubmitSettings(ctx *gin.Context) {
	var req dto.SettingsSubmitReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}
	if req.Fields == nil {
		req.Fields = map[string]string{}
	}

	result, err := c.settingsSvc.Validate(ctx.Request.Context(), service.SettingsTab(req.ActiveTab), req.Fields)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, dto.SettingsResp{
		Accepted: result.Accepted,
		Settings: maskAPIKey(result.Record),
	})
}

// GetSettings 查询当前设置
// @Summary 查询当前设置记录
// @Tags Settings (连接设置)
// @Produce json
// @Success 200 {object} dto.SettingsResp "完整设置记录"
// @Failure 500 {object} map[string]string "服务器错误"
// @Router /api/settings [get]
func (c *SettingsController) GetSettings(ctx *gin.Context) {
	record, err := c.settingsSvc.CurrentSettings(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, dto.SettingsResp{Settings: maskAPIKey(record)})
}

// GetStatus 查询设置界面状态
// @Summary 查询校验标记与 Tab 可见性
// @Description 前端按这组标记决定渲染哪些 Tab 和是否放出同步按钮
// @Tags Settings (连接设置)
// @Produce json
// @Success 200 {object} dto.SettingsStatusResp "状态"
// @Failure 500 {object} map[string]string "服务器错误"
// @Router /api/settings/status [get]
func (c *SettingsController) GetStatus(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()

	state, err := c.stateRepo.Get(reqCtx)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	hasKey := c.settingsSvc.HasValidAPIKey(reqCtx)

	// 账号下已有列表时隐藏 campaign_defaults Tab (直接选现成列表即可)
	hasCatalog := false
	if hasKey {
		if lists, err := c.settingsSvc.GetListCatalog(reqCtx); err == nil && len(lists) > 0 {
			hasCatalog = true
		}
	}

	resp := dto.SettingsStatusResp{
		HasValidAPIKey:        hasKey,
		ValidStoreInfo:        state.ValidStoreInfo,
		ValidCampaignDefaults: state.ValidCampaignDefaults,
		Syncing:               state.Syncing,
		ReadyForSync:          hasKey && c.settingsSvc.IsReadyForSync(reqCtx),

		ShowStoreInfoTab:        hasKey,
		ShowCampaignDefaultsTab: hasKey && state.ValidStoreInfo && !hasCatalog,
		ShowNewsletterTab:       hasKey && state.ValidStoreInfo,
		ShowSyncTab:             hasKey && !state.Syncing,

		StoreInfoError:     state.StoreInfoError,
		MailchimpListError: state.MailchimpListError,
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetLists 查询列表目录
// @Summary 查询账号下的订阅列表 (下拉框数据源)
// @Tags Settings (连接设置)
// @Produce json
// @Success 200 {object} dto.ListCatalogResp "列表目录"
// @Failure 500 {object} map[string]string "服务器错误"
// @Router /api/settings/lists [get]
func (c *SettingsController) GetLists(ctx *gin.Context) {
	lists, err := c.settingsSvc.GetListCatalog(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]dto.ListItem, 0, len(lists))
	for _, l := range lists {
		items = append(items, dto.ListItem{
			ID:          l.ID,
			Name:        l.Name,
			MemberCount: l.Stats.MemberCount,
		})
	}
	ctx.JSON(http.StatusOK, dto.ListCatalogResp{Lists: items})
}

// maskAPIKey 响应里不回显完整 Key，只留数据中心后缀
func maskAPIKey(record map[string]string) map[string]string {
	key, ok := record[service.OptAPIKey]
	if !ok || len(key) <= 8 {
		return record
	}
	masked := make(map[string]string, len(record))
	for k, v := range record {
		masked[k] = v
	}
	masked[service.OptAPIKey] = "****" + key[len(key)-8:]
	return masked
}
