package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/gamerzord/latihan-magang-lms/config"
	"github.com/gamerzord/latihan-magang-lms/internal/api/handler"
	"github.com/gamerzord/latihan-magang-lms/internal/api/router"
	"github.com/gamerzord/latihan-magang-lms/internal/job"
	"github.com/gamerzord/latihan-magang-lms/internal/realtime"
	"github.com/gamerzord/latihan-magang-lms/internal/repository"
	"github.com/gamerzord/latihan-magang-lms/internal/service"
	"github.com/gamerzord/latihan-magang-lms/pkg/database"
	"github.com/gamerzord/latihan-magang-lms/pkg/jwt"
	applogger "github.com/gamerzord/latihan-magang-lms/pkg/logger"
	"github.com/gamerzord/latihan-magang-lms/pkg/redis"
	"github.com/gamerzord/latihan-magang-lms/pkg/storage"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("LMS_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("storage_driver", cfg.Storage.Driver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时黑名单退化为进程内存，登录限流关闭）
	var rdb *redis.Client
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，降级运行", zap.Error(err))
		rdb = nil
	}
	blacklist := redis.NewBlacklist(rdb, logger)

	// 5. 文件存储
	store, err := storage.New(ctx, &cfg.Storage)
	if err != nil {
		logger.Fatal("初始化文件存储失败", zap.Error(err))
	}

	// 6. 初始化 JWT 管理器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 7. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, store, jwtMgr, blacklist, logger)

	hub := realtime.NewHub(cfg.Server.CORS.AllowOrigins, logger.Named("realtime"))
	go hub.Run(ctx)

	h := handler.NewHandler(cfg, svc, hub, logger)

	// 8. 孤儿文件清理
	var janitor *job.Janitor
	if cfg.Janitor.Enabled {
		janitor = job.NewJanitor(store, cfg.Janitor, logger,
			repo.Attachment.ListFilePaths,
			repo.Submission.ListFilePaths,
			repo.Course.ListThumbnailPaths,
		)
		if err := janitor.Start(); err != nil {
			logger.Fatal("启动清理任务失败", zap.Error(err))
		}
	}

	// 9. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, blacklist, logger)

	// 10. 启动 HTTP 服务器（优雅关闭）
	// WebSocket 连接被 Hub 接管，不受 WriteTimeout 影响；上传接口需要更长的写超时
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 11. 等待系统信号，优雅关闭
	<-ctx.Done()
	logger.Info("收到关闭信号，开始优雅关闭...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	if janitor != nil {
		janitor.Stop()
	}

	// 关闭数据库连接
	if err := sqlDB.Close(); err != nil {
		logger.Warn("关闭数据库连接失败", zap.Error(err))
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
