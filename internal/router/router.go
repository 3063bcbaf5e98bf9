package router

import (
	"net/http"
	"path/filepath"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"
	"github.com/user/cinelist/internal/handler"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ==================== 仪表盘页面 ====================
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/dashboard")
	})
	r.GET("/dashboard", h.DashboardPage)

	// ==================== JSON API ====================
	api := r.Group("/api")
	{
		api.GET("/movies", h.Movies)
		api.GET("/movies.rss", h.MoviesRSS)
		api.GET("/movies/:tmdbId", h.MovieDetail)

		// 仪表盘数据
		dashboard := api.Group("/dashboard")
		{
			dashboard.GET("", h.GetDashboardData)
			dashboard.GET("/logs", h.GetLogs)
			dashboard.GET("/movies", h.GetMovieStatuses)
			dashboard.GET("/stats", h.GetStats)
		}

		// Radarr 直通接口
		radarr := api.Group("/radarr")
		{
			radarr.GET("/config", h.RadarrConfig)
			radarr.POST("/movies", h.AddRadarrMovie)
		}
	}
}

// LoadTemplates 使用 multitemplate 加载模板，解决模板继承问题
func LoadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	// 组装模板文件列表
	assemble := func(view string) []string {
		files := make([]string, 0)
		files = append(files, layouts...)
		files = append(files, view)
		return files
	}

	pages := []string{
		"dashboard",
	}

	for _, page := range pages {
		viewPath := templatesDir + "/pages/" + page + ".html"
		r.AddFromFiles(page+".html", assemble(viewPath)...)
	}

	return r
}
