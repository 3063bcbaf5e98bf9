package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/cinelist/internal/config"
	"github.com/user/cinelist/internal/service"
	"github.com/user/cinelist/internal/store"
)

// Handler HTTP 处理器
type Handler struct {
	Config      *config.Config
	StatusStore *store.StatusStore
	LogStore    *store.LogStore
	TMDB        *service.TMDBService
	Radarr      *service.RadarrService
	Pipeline    *service.PipelineService
}

// NewHandler 创建处理器并组装各服务
func NewHandler(cfg *config.Config, statusStore *store.StatusStore, logStore *store.LogStore) *Handler {
	tmdb := service.NewTMDBService(cfg.TMDBAPIKey, logStore)

	// Radarr 是可选集成，未配置时流水线跳过库状态查询
	var radarr *service.RadarrService
	if cfg.RadarrEnabled() {
		radarr = service.NewRadarrService(cfg.RadarrURL, cfg.RadarrAPIKey, logStore)
	}

	nos := service.NewNosService(cfg.CinemaAPIURL, logStore)
	pipeline := service.NewPipelineService(nos, tmdb, radarr, statusStore, logStore, cfg.CinemaSource)

	return &Handler{
		Config:      cfg,
		StatusStore: statusStore,
		LogStore:    logStore,
		TMDB:        tmdb,
		Radarr:      radarr,
		Pipeline:    pipeline,
	}
}

// DashboardPage 仪表盘页面
func (h *Handler) DashboardPage(c *gin.Context) {
	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Title":    "仪表盘 - " + h.Config.SiteName,
		"SiteName": h.Config.SiteName,
	})
}
