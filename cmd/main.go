package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"mailchimp_wc_v1_202608/internal/controller"
	"mailchimp_wc_v1_202608/internal/middleware"
	"mailchimp_wc_v1_202608/internal/model"
	"mailchimp_wc_v1_202608/internal/repository"
	"mailchimp_wc_v1_202608/internal/router"
	"mailchimp_wc_v1_202608/internal/service"
	"mailchimp_wc_v1_202608/internal/task"
	"mailchimp_wc_v1_202608/pkg/database"
	"mailchimp_wc_v1_202608/pkg/mailchimp"
)

func main() {
	// 0. 加载 .env (不存在就用进程环境)
	if err := godotenv.Load(); err != nil {
		log.Println("未找到 .env 文件，使用进程环境变量")
	}

	// 1. 初始化数据库
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 种初始数据 (状态行 + 默认管理员)
	seedInitialData(deps)

	// 4. 启动后台任务队列
	deps.Queue.Start()

	// 5. 初始化路由
	r := router.SetupRouter(deps.Controllers)

	// 6. 启动服务
	startServer(r, deps)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Queue       *task.Queue
	Controllers *router.Controllers
}

// Repositories 仓库集合
type Repositories struct {
	Option repository.OptionRepository
	State  repository.StateRepository
	Job    repository.JobRepository
	User   repository.UserRepository
}

// Services 服务集合
type Services struct {
	Settings  *service.SettingsService
	StoreSync *service.StoreSyncService
	Auth      *service.AuthService
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	dsn := getEnv("DATABASE_DSN",
		"host=localhost user=postgres password=postgres dbname=mailchimp_wc port=5432 sslmode=disable")
	db := database.InitDB(dsn,
		// Manager
		&model.SysUser{},
		// Settings
		&model.Option{}, &model.SyncState{},
		// Queue
		&model.QueuedJob{},
	)

	// 设置项写库时自动记录修改人
	middleware.RegisterAuditCallbacks(db)
	return db
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- JWT 配置 --------
	jwtCfg := middleware.DefaultJWTConfig()
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		jwtCfg.SecretKey = secret
	}
	middleware.SetJWTConfig(jwtCfg)

	// -------- Repo 层 --------
	repos := &Repositories{
		Option: repository.NewOptionRepository(db),
		State:  repository.NewStateRepository(db),
		Job:    repository.NewJobRepository(db),
		User:   repository.NewUserRepository(db),
	}

	// -------- 站点身份 --------
	site := service.SiteConfig{
		Name: getEnv("SITE_NAME", "My WooCommerce Store"),
		URL:  getEnv("SITE_URL", "https://example.com"),
	}

	// -------- 业务服务 --------
	queue := task.NewQueue(repos.Job, repos.State)

	services := &Services{}
	services.StoreSync = service.NewStoreSyncService(repos.State, mailchimp.New, site)
	services.Settings = service.NewSettingsService(
		repos.Option, repos.State, services.StoreSync, queue, mailchimp.New, site,
	)
	services.Auth = service.NewAuthService(repos.User)

	queue.SetRunner(task.NewSyncRunner(services.Settings, services.StoreSync, repos.State))

	// -------- Controller 层 --------
	controllers := &router.Controllers{
		Auth:     controller.NewAuthController(services.Auth),
		Settings: controller.NewSettingsController(services.Settings, repos.State),
		Sync:     controller.NewSyncController(services.Settings, repos.State, repos.Job, queue),
		Debug:    controller.NewDebugController(services.Settings, queue),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Queue:       queue,
		Controllers: controllers,
	}
}

// seedInitialData 安装时种下状态行和默认管理员
func seedInitialData(deps *Dependencies) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := deps.Repos.State.EnsureDefault(ctx); err != nil {
		log.Fatalf("初始化同步状态失败: %v", err)
	}

	username := getEnv("ADMIN_USERNAME", "admin")
	password := getEnv("ADMIN_PASSWORD", "admin123")
	if err := deps.Services.Auth.EnsureDefaultAdmin(ctx, username, password); err != nil {
		log.Fatalf("初始化默认管理员失败: %v", err)
	}
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine, deps *Dependencies) {
	port := getEnv("SERVER_PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 先停队列，等在途任务跑完
	deps.Queue.Stop()

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
