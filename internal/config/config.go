package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultCatalogPath 是未配置时尝试加载的营养表
const DefaultCatalogPath = "TOTAAL_Voedingstabel_UPDATED_with_WHEY.csv"

// AppConfig 汇总运行服务所需的基础配置。
// DatabasePath 为空时由 db.Open 使用内存数据库。
type AppConfig struct {
	ListenAddr    string
	Port          string
	DatabasePath  string
	SessionSecret string
	GinMode       string
	CatalogPath   string
	CatalogDir    string
	Environment   string
	LogLevel      string
}

// Load 先读取 .env（若存在），再从环境变量读取配置，并为缺失项提供默认值。
func Load() AppConfig {
	_ = godotenv.Load()

	port := getEnv("PORT", "8080")
	catalogPath := getEnv("CATALOG_PATH", DefaultCatalogPath)

	return AppConfig{
		ListenAddr:    getEnv("LISTEN_ADDR", fmt.Sprintf(":%s", port)),
		Port:          port,
		DatabasePath:  getEnv("DATABASE_PATH", ""),
		SessionSecret: getEnv("SESSION_SECRET", "intakelog-dev-secret"),
		GinMode:       getEnv("GIN_MODE", "release"),
		CatalogPath:   catalogPath,
		CatalogDir:    getEnv("CATALOG_DIR", filepath.Dir(catalogPath)),
		Environment:   getEnv("ENVIRONMENT", "development"),
		LogLevel:      getEnv("LOG_LEVEL", ""),
	}
}

// getEnv 读取去除空白后的环境变量，为空时返回默认值
func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}
