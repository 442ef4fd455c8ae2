// Package main 是应用程序入口
package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/dumeirei/kitchen-pos-backend/docs"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/cache"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/config"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/jwt"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/metrics"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/response"
	adminHandler "github.com/dumeirei/kitchen-pos-backend/internal/handler/admin"
	authHandler "github.com/dumeirei/kitchen-pos-backend/internal/handler/auth"
	customerHandler "github.com/dumeirei/kitchen-pos-backend/internal/handler/customer"
	menuHandler "github.com/dumeirei/kitchen-pos-backend/internal/handler/menu"
	orderHandler "github.com/dumeirei/kitchen-pos-backend/internal/handler/order"
	paymentHandler "github.com/dumeirei/kitchen-pos-backend/internal/handler/payment"
	reportHandler "github.com/dumeirei/kitchen-pos-backend/internal/handler/report"
	revenueHandler "github.com/dumeirei/kitchen-pos-backend/internal/handler/revenue"
	staffHandler "github.com/dumeirei/kitchen-pos-backend/internal/handler/staff"
	tenantHandler "github.com/dumeirei/kitchen-pos-backend/internal/handler/tenant"
	"github.com/dumeirei/kitchen-pos-backend/internal/middleware"
	"github.com/dumeirei/kitchen-pos-backend/internal/models"
	"github.com/dumeirei/kitchen-pos-backend/internal/repository"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/access"
	authService "github.com/dumeirei/kitchen-pos-backend/internal/service/auth"
	customerService "github.com/dumeirei/kitchen-pos-backend/internal/service/customer"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/identity"
	menuService "github.com/dumeirei/kitchen-pos-backend/internal/service/menu"
	orderService "github.com/dumeirei/kitchen-pos-backend/internal/service/order"
	paymentService "github.com/dumeirei/kitchen-pos-backend/internal/service/payment"
	provisionService "github.com/dumeirei/kitchen-pos-backend/internal/service/provision"
	reportService "github.com/dumeirei/kitchen-pos-backend/internal/service/report"
	revenueService "github.com/dumeirei/kitchen-pos-backend/internal/service/revenue"
	staffService "github.com/dumeirei/kitchen-pos-backend/internal/service/staff"
	tenantService "github.com/dumeirei/kitchen-pos-backend/internal/service/tenant"
	"github.com/dumeirei/kitchen-pos-backend/pkg/mqtt"
	"github.com/dumeirei/kitchen-pos-backend/pkg/oss"
	"github.com/dumeirei/kitchen-pos-backend/pkg/sms"
)

// Deps 路由依赖，Redis 与 MQTT 可为 nil
type Deps struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *gorm.DB
	Redis  *redis.Client
	MQTT   *mqtt.Client
}

// setupRouter 设置路由
func setupRouter(r *gin.Engine, deps *Deps) {
	cfg := deps.Config
	db := deps.DB

	// 创建 JWT 管理器
	jwtManager := jwt.NewManager(&jwt.Config{
		Secret:            cfg.JWT.Secret,
		AccessExpireTime:  cfg.JWT.AccessTokenDuration(),
		RefreshExpireTime: cfg.JWT.RefreshTokenDuration(),
		Issuer:            cfg.JWT.Issuer,
	})

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Namespace, cfg.Metrics.Path)
	}
	store := cache.NewStore(deps.Redis)

	// 初始化外部服务客户端
	authz := access.NewAuthorizer()
	provider := identity.NewLocalProvider(repository.NewAuthAccountRepository(db))
	uploader := newUploader(cfg, deps.Logger)

	// 初始化服务
	authSvc := authService.NewAuthService(repository.New(db), provider, jwtManager)
	tenantSvc := tenantService.NewTenantService(db, authz, provider, store, &cfg.Business)
	tenantSvc.SetMetrics(m)
	centerSvc := revenueService.NewRevenueCenterService(db, authz, &cfg.Business, cfg.Server.PublicBaseURL)
	menuSvc := menuService.NewMenuService(db, authz, uploader)
	customerSvc := customerService.NewCustomerService(db, authz)
	orderSvc := orderService.NewOrderService(db, authz, &cfg.Business)
	orderSvc.SetMetrics(m)
	orderSvc.SetNotifier(newOrderNotifier(cfg, deps, m))
	paymentSvc := paymentService.NewPaymentService(db, authz)
	paymentSvc.SetMetrics(m)
	staffSvc := staffService.NewStaffService(db, authz, provider, &cfg.Business)
	reportSvc := reportService.NewReportService(db, authz)
	provisionSvc := provisionService.NewProvisionService(db, authz, provider, &cfg.Business)
	repairSvc := provisionService.NewRepairService(db, provider, &cfg.Business)

	// 初始化处理器
	authH := authHandler.NewHandler(authSvc)
	ownerH := adminHandler.NewOwnerHandler(provisionSvc, repairSvc)
	tenantH := tenantHandler.NewHandler(tenantSvc)
	centerH := revenueHandler.NewHandler(centerSvc)
	menuH := menuHandler.NewHandler(menuSvc)
	customerH := customerHandler.NewHandler(customerSvc)
	orderH := orderHandler.NewHandler(orderSvc)
	paymentH := paymentHandler.NewHandler(paymentSvc)
	staffH := staffHandler.NewHandler(staffSvc)
	reportH := reportHandler.NewHandler(reportSvc)

	// 全局中间件
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.SecureHeaders())
	r.Use(middleware.CORS(&cfg.CORS))
	r.Use(middleware.Logging(&middleware.LoggingConfig{Logger: deps.Logger, SkipPaths: []string{cfg.Metrics.Path}}))
	if cfg.Tracing.Enabled {
		r.Use(middleware.Tracing(&middleware.TracingConfig{
			SkipPaths: []string{"/health", "/ready", cfg.Metrics.Path},
		}))
	}
	if m != nil {
		r.Use(m.Middleware())
		r.GET(cfg.Metrics.Path, m.Handler())
	}

	// 健康检查（不需要认证）
	r.GET("/health", healthHandler)
	r.GET("/ping", pingHandler)
	r.GET("/ready", readyHandler(db, deps.Redis))

	// Swagger 文档
	if !cfg.IsRelease() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	window := time.Duration(cfg.RateLimit.Window) * time.Second
	loginLimiter := func(c *gin.Context) { c.Next() }
	apiLimiter := loginLimiter
	if cfg.RateLimit.Enabled {
		loginLimiter = middleware.RateLimit(&middleware.RateLimitConfig{
			Store:  store,
			Scope:  "login",
			Limit:  cfg.RateLimit.Limit,
			Window: window,
		})
		apiLimiter = middleware.AccountRateLimit(store, "api", cfg.RateLimit.Limit*10, window)
	}

	// API v1 路由组
	v1 := r.Group("/api/v1")
	{
		// 公开接口（无需认证）
		public := v1.Group("")
		{
			authH.RegisterRoutes(public, loginLimiter)
			tenantH.RegisterPublicRoutes(public)
		}

		// 需要登录的接口
		protected := v1.Group("")
		protected.Use(middleware.Auth(jwtManager), apiLimiter)
		{
			authH.RegisterProtectedRoutes(protected)
			tenantH.RegisterRoutes(protected)
			centerH.RegisterRoutes(protected)
			menuH.RegisterRoutes(protected)
			customerH.RegisterRoutes(protected)
			orderH.RegisterRoutes(protected)
			paymentH.RegisterRoutes(protected)
			staffH.RegisterRoutes(protected.Group("", middleware.RequireRoles(
				models.RoleKitchenOwner, models.RoleManager, models.RolePlatformAdmin,
			)))
			reportH.RegisterRoutes(protected)
		}

		// 平台管理接口
		platform := v1.Group("/platform")
		platform.Use(middleware.Auth(jwtManager), middleware.RequirePlatformAdmin())
		{
			ownerH.RegisterRoutes(platform)
		}
	}

	// 404 处理
	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "接口不存在")
	})
	r.NoMethod(func(c *gin.Context) {
		response.Error(c, http.StatusMethodNotAllowed, 405, "方法不被允许")
	})
}

// newUploader 未配置 OSS 时使用内存存储，仅适合开发环境
func newUploader(cfg *config.Config, log *zap.Logger) oss.Uploader {
	if cfg.OSS.Enabled {
		uploader, err := oss.NewAliyunUploader(&oss.AliyunConfig{
			Endpoint:        cfg.OSS.Endpoint,
			AccessKeyID:     cfg.OSS.AccessKeyID,
			AccessKeySecret: cfg.OSS.AccessKeySecret,
			BucketName:      cfg.OSS.Bucket,
			Domain:          cfg.OSS.CustomDomain,
			BasePath:        cfg.OSS.UploadDir,
		})
		if err == nil {
			return uploader
		}
		log.Warn("OSS unavailable, falling back to in-memory storage", zap.Error(err))
	}
	return oss.NewMemoryUploader(cfg.Server.PublicBaseURL + "/uploads")
}

// newOrderNotifier 组合后厨推送与顾客短信，未配置的通道跳过
func newOrderNotifier(cfg *config.Config, deps *Deps, m *metrics.Metrics) orderService.Notifier {
	var notifiers orderService.Notifiers
	if deps.MQTT != nil {
		notifiers = append(notifiers, orderService.NewKitchenNotifier(deps.MQTT, cfg.MQTT.TopicPrefix, m))
	}
	if cfg.SMS.Enabled {
		sender, err := sms.NewAliyunSender(&sms.AliyunConfig{
			AccessKeyID:     cfg.SMS.AccessKeyID,
			AccessKeySecret: cfg.SMS.AccessKeySecret,
			SignName:        cfg.SMS.SignName,
			Endpoint:        cfg.SMS.Endpoint,
		})
		if err != nil {
			deps.Logger.Warn("SMS disabled", zap.Error(err))
		} else {
			customers := repository.NewCustomerRepository(deps.DB)
			notifiers = append(notifiers, orderService.NewCustomerNotifier(customers, sender, cfg.SMS.OrderReadyTemplate))
		}
	}
	return notifiers
}
