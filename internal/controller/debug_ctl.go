package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mailchimp_wc_v1_202608/internal/service"
)

// DebugController 开发调试入口
// 把远端账号的各种资源直接透出来，排查同步问题用，只对 admin 开放
type DebugController struct {
	settingsSvc *service.SettingsService
	queue       service.SyncJobQueue
}

// NewDebugController 创建调试控制器
func NewDebugController(settingsSvc *service.SettingsService, queue service.SyncJobQueue) *DebugController {
	return &DebugController{
		settingsSvc: settingsSvc,
		queue:       queue,
	}
}

// Action 执行调试动作
// @Summary 执行调试动作
// @Description 支持 lists / list_delete / stores_list / store_get / stores_delete / stores_orders / stores_products / stores_carts / delete_order / delete_cart / test_queue
// @Tags Debug (调试)
// @Produce json
// @Param action path string true "动作名"
// @Param list_id query string false "list_delete 用"
// @Param order_id query string false "delete_order 用"
// @Param cart_id query string false "delete_cart 用"
// @Param page query int false "分页页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} map[string]interface{} "动作结果"
// @Failure 400 {object} map[string]string "未知动作/缺参数"
// @Failure 500 {object} map[string]string "远端调用失败"
// @Router /api/debug/{action} [post]
func (c *DebugController) Action(ctx *gin.Context) {
	action := ctx.Param("action")
	reqCtx := ctx.Request.Context()

	// test_queue 不需要远端客户端
	if action == "test_queue" {
		if err := c.queue.EnqueueProductSync(reqCtx); err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"message": "测试任务已入队"})
		return
	}

	client, err := c.settingsSvc.API(reqCtx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	storeID := c.settingsSvc.Site().URL
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))

	switch action {
	case "lists":
		lists, err := client.GetLists(reqCtx)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"lists": lists})

	case "list_delete":
		listID := ctx.Query("list_id")
		if listID == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "缺少 list_id 参数"})
			return
		}
		if err := client.DeleteList(reqCtx, listID); err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"message": "列表已删除", "list_id": listID})

	case "stores_list":
		stores, err := client.Stores(reqCtx)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"stores": stores})

	case "store_get":
		store, err := client.GetStore(reqCtx, storeID)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"store": store})

	case "stores_delete":
		if err := client.DeleteStore(reqCtx, storeID); err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"message": "Store 已删除", "store_id": storeID})

	case "stores_orders":
		orders, err := client.Orders(reqCtx, storeID, page, limit)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, orders)

	case "stores_products":
		products, err := client.Products(reqCtx, storeID, page, limit)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, products)

	case "stores_carts":
		carts, err := client.Carts(reqCtx, storeID, page, limit)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, carts)

	case "delete_order":
		orderID := ctx.Query("order_id")
		if orderID == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "缺少 order_id 参数"})
			return
		}
		if err := client.DeleteStoreOrder(reqCtx, storeID, orderID); err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"message": "订单已删除", "order_id": orderID})

	case "delete_cart":
		cartID := ctx.Query("cart_id")
		if cartID == "" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "缺少 cart_id 参数"})
			return
		}
		if err := client.DeleteCartByID(reqCtx, storeID, cartID); err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"message": "购物车已删除", "cart_id": cartID})

	default:
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "未知动作: " + action})
	}
}
