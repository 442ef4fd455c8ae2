// Package main 是应用程序入口
//
// @title Kitchen POS API
// @version 1.0
// @description 多租户餐厅收银管理后台
// @BasePath /
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/cache"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/config"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/database"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/logger"
	"github.com/dumeirei/kitchen-pos-backend/internal/common/tracing"
	"github.com/dumeirei/kitchen-pos-backend/internal/models"
	"github.com/dumeirei/kitchen-pos-backend/internal/repository"
	"github.com/dumeirei/kitchen-pos-backend/internal/scheduler"
	"github.com/dumeirei/kitchen-pos-backend/internal/service/identity"
	provisionService "github.com/dumeirei/kitchen-pos-backend/internal/service/provision"
	"github.com/dumeirei/kitchen-pos-backend/pkg/mqtt"
)

func main() {
	// 加载配置
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	if err := logger.Init(&cfg.Logger); err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	log := logger.GetLogger()

	log.Info("Starting Kitchen POS Backend",
		zap.String("version", "1.0.0"),
		zap.String("env", cfg.Server.Mode),
	)

	// 初始化数据库连接
	db, err := database.Init(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	if cfg.Database.AutoMigrate {
		if err := models.AutoMigrate(db); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
		log.Info("Database migrated")
	}

	// Redis 不可用时限流和域名缓存退化为空操作
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.Init(&cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		log.Info("Redis connected successfully")
	}

	// 初始化链路追踪
	tracer, err := tracing.Init(tracing.FromConfig(&cfg.Tracing, cfg.Server.Mode))
	if err != nil {
		log.Fatal("Failed to init tracing", zap.Error(err))
	}

	// 后厨显示屏推送，连接失败不阻止启动
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient = mqtt.NewClient(&cfg.MQTT)
		if err := mqttClient.Connect(); err != nil {
			log.Warn("MQTT broker unavailable, kitchen events disabled", zap.Error(err))
			mqttClient = nil
		}
	}

	// 设置 Gin 模式
	if cfg.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.Server.Mode == "test" {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// 创建 Gin 引擎
	engine := gin.New()

	// 设置路由
	setupRouter(engine, &Deps{
		Config: cfg,
		Logger: log,
		DB:     db,
		Redis:  redisClient,
		MQTT:   mqttClient,
	})

	sched := startScheduler(cfg, db)

	// 创建 HTTP 服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// 在 goroutine 中启动服务器
	go func() {
		log.Info("HTTP server starting",
			zap.String("addr", srv.Addr),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// 关闭 HTTP 服务器
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if sched != nil {
		sched.Stop()
	}
	if mqttClient != nil {
		mqttClient.Disconnect()
	}
	if err := tracer.Shutdown(ctx); err != nil {
		log.Warn("Tracer shutdown failed", zap.Error(err))
	}

	// 关闭数据库连接
	if err := database.Close(); err != nil {
		log.Error("Failed to close database", zap.Error(err))
	}

	log.Info("Server exited")
}

// startScheduler 启动定时任务，未启用时返回 nil
func startScheduler(cfg *config.Config, db *gorm.DB) *scheduler.Scheduler {
	if !cfg.Scheduler.Enabled {
		return nil
	}
	provider := identity.NewLocalProvider(repository.NewAuthAccountRepository(db))
	sched := scheduler.NewScheduler(time.Duration(cfg.Scheduler.TaskTimeout) * time.Second)
	scheduler.NewTaskHandler(provisionService.NewRepairService(db, provider, &cfg.Business)).Register(sched, &cfg.Scheduler)
	sched.Start()
	return sched
}
