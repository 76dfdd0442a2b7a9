package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/intakelog/internal/config"
	"github.com/intakelog/internal/db"
	"github.com/intakelog/internal/handler"
	"github.com/intakelog/internal/logger"
	"github.com/intakelog/internal/router"
	"github.com/intakelog/internal/service"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zlog := logger.L()

	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		zlog.Fatal("failed to initialize database", zap.Error(err))
	}

	// 启动时加载失败不退出，页面会提示上传或填写路径
	catalogs := service.NewCatalogService(zlog.Named("catalog"))
	if err := catalogs.RestrictTo(cfg.CatalogDir); err != nil {
		zlog.Fatal("failed to resolve catalog directory", zap.String("dir", cfg.CatalogDir), zap.Error(err))
	}
	if _, err := catalogs.LoadPath(cfg.CatalogPath); err != nil {
		zlog.Warn("initial catalog not loaded", zap.String("path", cfg.CatalogPath), zap.Error(err))
	}

	api := handler.NewAPI(db.DB, catalogs, zlog.Named("http"))

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(cfg.SessionSecret, api)
	zlog.Info("server starting", zap.String("addr", cfg.ListenAddr))
	if err := r.Run(cfg.ListenAddr); err != nil {
		zlog.Fatal("failed to run server", zap.Error(err))
	}
}
