package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/feeds"
	"github.com/user/cinelist/internal/model"
	"github.com/user/cinelist/internal/utils"
)

// Movies 执行一轮采集并返回聚合后的电影列表
// GET /api/movies
func (h *Handler) Movies(c *gin.Context) {
	setNoCache(c)

	movies := h.Pipeline.Run()
	if len(movies) == 0 {
		// 空结果按 304 返回，Radarr 导入列表据此跳过本次同步
		c.JSON(http.StatusNotModified, gin.H{"message": "Not Modified"})
		return
	}
	c.JSON(http.StatusOK, movies)
}

// MoviesRSS 聚合结果的 RSS 输出
// GET /api/movies.rss
func (h *Handler) MoviesRSS(c *gin.Context) {
	setNoCache(c)

	feed := &feeds.Feed{
		Title:       h.Config.SiteName + " 影院排片",
		Link:        &feeds.Link{Href: h.Config.SiteUrl + "/api/movies.rss"},
		Description: "当前影院上映电影聚合列表",
		Created:     time.Now(),
	}

	for _, m := range h.Pipeline.Run() {
		created, _ := time.Parse("2006-01-02", m.ReleaseDate)
		feed.Items = append(feed.Items, &feeds.Item{
			Title:       m.Title,
			Description: m.Description,
			Link:        &feeds.Link{Href: "https://www.imdb.com/title/" + m.IMDbID},
			Created:     created,
		})
	}

	rss, err := feed.ToRss()
	if err != nil {
		utils.InternalServerError(c, "生成 RSS 失败")
		return
	}
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
}

// MovieDetail 单部电影的聚合详情（TMDB 详情 + Radarr 实时状态）
// GET /api/movies/:tmdbId
func (h *Handler) MovieDetail(c *gin.Context) {
	tmdbID, err := strconv.Atoi(c.Param("tmdbId"))
	if err != nil || tmdbID <= 0 {
		utils.BadRequest(c, "无效的 TMDB ID")
		return
	}

	details := h.TMDB.FetchDetails(tmdbID)
	if details == nil {
		utils.NotFound(c, "电影不存在")
		return
	}

	radarrStatus := model.RadarrUnknown
	radarrID := 0
	if h.Radarr != nil {
		if entry := h.Radarr.GetMovieByTMDBID(tmdbID); entry != nil {
			radarrID = entry.ID
			if entry.HasFile {
				radarrStatus = model.RadarrDownloaded
			} else {
				radarrStatus = model.RadarrMonitored
			}
		} else {
			radarrStatus = model.RadarrNotAdded
		}
	}

	data := gin.H{
		"details":      details,
		"radarrStatus": radarrStatus,
	}
	if radarrID > 0 {
		data["radarrId"] = radarrID
	}
	utils.Success(c, data)
}

// GetLogs 仪表盘日志
// GET /api/dashboard/logs?limit=100
func (h *Handler) GetLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	c.JSON(http.StatusOK, h.LogStore.GetLogs(limit))
}

// GetMovieStatuses 仪表盘电影状态列表
// GET /api/dashboard/movies
func (h *Handler) GetMovieStatuses(c *gin.Context) {
	c.JSON(http.StatusOK, h.StatusStore.GetMovies())
}

// GetStats 仪表盘统计
// GET /api/dashboard/stats
func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.StatusStore.GetStats())
}

// GetDashboardData 仪表盘数据快照（日志 + 状态 + 统计）
// GET /api/dashboard?logLimit=50
func (h *Handler) GetDashboardData(c *gin.Context) {
	logLimit, _ := strconv.Atoi(c.DefaultQuery("logLimit", "50"))
	c.JSON(http.StatusOK, gin.H{
		"logs":   h.LogStore.GetLogs(logLimit),
		"movies": h.StatusStore.GetMovies(),
		"stats":  h.StatusStore.GetStats(),
	})
}

// RadarrConfig Radarr 配置信息（根目录 + 质量配置），未配置时返回 enabled=false
// GET /api/radarr/config
func (h *Handler) RadarrConfig(c *gin.Context) {
	if h.Radarr == nil {
		utils.Success(c, gin.H{"enabled": false})
		return
	}
	utils.Success(c, gin.H{
		"enabled":         true,
		"rootFolders":     h.Radarr.GetRootFolders(),
		"qualityProfiles": h.Radarr.GetQualityProfiles(),
	})
}

// AddRadarrMovie 添加电影到 Radarr
// POST /api/radarr/movies
func (h *Handler) AddRadarrMovie(c *gin.Context) {
	if h.Radarr == nil {
		utils.BadRequest(c, "Radarr 未配置")
		return
	}

	var req model.AddMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			utils.BadRequest(c, "缺少必填字段: "+verrs[0].Field())
			return
		}
		utils.BadRequest(c, "无效的请求数据")
		return
	}

	added, err := h.Radarr.AddMovie(req)
	if err != nil {
		utils.InternalServerError(c, err.Error())
		return
	}
	utils.Success(c, added)
}

// setNoCache 聚合接口每次都要重新采集，禁止中间层缓存
func setNoCache(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
}
