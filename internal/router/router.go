package router

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/intakelog/internal/handler"
	"github.com/intakelog/internal/view"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(sessionSecret string, api *handler.API) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(sessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
	})
	r.Use(sessions.Sessions("intakelog_session", store))

	r.SetHTMLTemplate(view.Templates())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	r.GET("/", api.ShowTracker)
	r.GET("/api/catalog", api.GetCatalog)
	r.POST("/catalog", api.UploadCatalog)
	r.POST("/refresh", api.RefreshAll)

	// 以下路由需要已加载的目录
	ledger := r.Group("")
	ledger.Use(api.RequireCatalog())
	{
		ledger.GET("/api/state", api.GetState)
		ledger.POST("/items", api.AddItem)
		ledger.POST("/meal/finish", api.FinishMeal)
		ledger.POST("/meal/skip", api.SkipMeal)
		ledger.POST("/unit", api.SetUnit)
		ledger.POST("/date", api.SetDate)
		ledger.GET("/chart.png", api.RenderChart)
		ledger.GET("/export.csv", api.ExportDayLog)
	}

	return r
}
