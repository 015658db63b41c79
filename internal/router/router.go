package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"mailchimp_wc_v1_202608/internal/controller"
	"mailchimp_wc_v1_202608/internal/middleware"

	_ "mailchimp_wc_v1_202608/docs"
)

// Controllers 路由需要的控制器集合
type Controllers struct {
	Auth     *controller.AuthController
	Settings *controller.SettingsController
	Sync     *controller.SyncController
	Debug    *controller.DebugController
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, ctls *Controllers) {
	// 1. Swagger 文档路由
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 2. 健康检查
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// 3. API 路由组
	api := r.Group("/api")
	{
		// auth 鉴权组 (不需要登录)
		auth := api.Group("/auth")
		{
			// POST /api/auth/login (带冷却，粗粒度防爆破)
			auth.POST("/login", middleware.Cooldown(middleware.KeyLogin, 0), ctls.Auth.Login)
			// POST /api/auth/refresh
			auth.POST("/refresh", ctls.Auth.RefreshToken)
		}

		// 其余接口都要登录
		secured := api.Group("", middleware.JWTAuth(), middleware.AuditContext())
		{
			// settings 设置组
			settings := secured.Group("/settings")
			{
				// POST /api/settings  提交单个 Tab
				settings.POST("", ctls.Settings.SubmitSettings)
				// GET /api/settings  当前设置
				settings.GET("", ctls.Settings.GetSettings)
				// GET /api/settings/status  校验标记 + Tab 可见性
				settings.GET("/status", ctls.Settings.GetStatus)
				// GET /api/settings/lists  列表下拉框数据源
				settings.GET("/lists", ctls.Settings.GetLists)
			}

			// sync 同步组
			sync := secured.Group("/sync")
			{
				// POST /api/sync  手动触发 (带冷却)
				sync.POST("", middleware.Cooldown(middleware.KeyProductSync, 0), ctls.Sync.TriggerSync)
				// GET /api/sync/status
				sync.GET("/status", ctls.Sync.GetSyncStatus)
			}

			// debug 调试组，只给 admin
			debug := secured.Group("/debug", middleware.RequireRole("admin"))
			{
				// POST /api/debug/:action
				debug.POST("/:action", ctls.Debug.Action)
			}
		}
	}
}

// SetupRouter 创建引擎并挂载路由
func SetupRouter(ctls *Controllers) *gin.Engine {
	r := gin.Default()
	InitRoutes(r, ctls)
	return r
}
