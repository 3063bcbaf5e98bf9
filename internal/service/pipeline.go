package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/user/cinelist/internal/model"
	"github.com/user/cinelist/internal/store"
)

// CinemaClient 排片来源
type CinemaClient interface {
	GetShowtimes() ([]model.RawShowtime, error)
}

// PipelineService 排片采集与补全流水线
// radarr、statusStore、logStore 都是可选协作方，为 nil 时对应步骤直接跳过
type PipelineService struct {
	cinema      CinemaClient
	tmdb        *TMDBService
	radarr      *RadarrService
	statusStore *store.StatusStore
	logStore    *store.LogStore
	source      string
}

// NewPipelineService 创建流水线
func NewPipelineService(cinema CinemaClient, tmdb *TMDBService, radarr *RadarrService,
	statusStore *store.StatusStore, logStore *store.LogStore, source string) *PipelineService {
	return &PipelineService{
		cinema:      cinema,
		tmdb:        tmdb,
		radarr:      radarr,
		statusStore: statusStore,
		logStore:    logStore,
		source:      source,
	}
}

// Run 执行一轮采集：拉取排片 → 逐条匹配 TMDB → 补全 IMDb ID 与 Radarr 状态
// 排片条目按来源顺序串行处理；单条失败不影响整轮，整轮拉取失败返回空列表
func (p *PipelineService) Run() []model.Movie {
	p.startRun()
	// 不管中途发生什么，本轮都要正常收尾
	defer p.endRun()

	showtimes, err := p.cinema.GetShowtimes()
	if err != nil {
		p.log(model.LogError, "拉取排片失败，本轮结束", map[string]any{"error": err.Error()})
		return []model.Movie{}
	}
	if len(showtimes) == 0 {
		p.log(model.LogInfo, "没有正在上映的电影", nil)
		return []model.Movie{}
	}

	movies := make([]model.Movie, 0, len(showtimes))
	for _, raw := range showtimes {
		releaseDate := formatReleaseDate(raw.ReleaseDateRaw)
		poster := normalizePosterURL(raw.Poster)

		p.updateStatus(store.StatusUpdate{
			Source:        p.source,
			Title:         raw.Title,
			OriginalTitle: raw.OriginalTitle,
			ReleaseDate:   releaseDate,
			Poster:        poster,
			Status:        model.StatusProcessing,
		})

		matches := p.tmdb.SearchMovie(raw.OriginalTitle, raw.ReleaseDateRaw)
		if len(matches) == 0 {
			reason := fmt.Sprintf("TMDB 未找到匹配: %s (%s)", raw.OriginalTitle, releaseDate)
			p.log(model.LogWarn, reason, map[string]any{"title": raw.OriginalTitle, "releaseDate": releaseDate})
			p.updateStatus(store.StatusUpdate{
				Source:        p.source,
				Title:         raw.Title,
				OriginalTitle: raw.OriginalTitle,
				ReleaseDate:   releaseDate,
				Status:        model.StatusNotFound,
				Error:         reason,
			})
			continue
		}

		// 始终取第一条结果，沿用 TMDB 的排序
		match := matches[0]

		// IMDb ID 和 Radarr 状态都是尽力而为，拿不到不影响输出
		imdbID := p.tmdb.FetchIMDbID(match.ID)

		var radarrStatus model.RadarrStatus
		var radarrID int
		if p.radarr != nil {
			if entry := p.radarr.GetMovieByTMDBID(match.ID); entry != nil {
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

		p.updateStatus(store.StatusUpdate{
			Source:        p.source,
			Title:         raw.Title,
			OriginalTitle: raw.OriginalTitle,
			ReleaseDate:   releaseDate,
			Status:        model.StatusSuccess,
			TMDBID:        match.ID,
			IMDbID:        imdbID,
			RadarrStatus:  radarrStatus,
			RadarrID:      radarrID,
		})

		movies = append(movies, model.Movie{
			Title:       raw.OriginalTitle,
			TMDBID:      match.ID,
			TMDBIDSnake: match.ID,
			IMDbID:      imdbID,
			IMDbIDSnake: imdbID,
			Poster:      poster,
			Images: []model.MovieImage{
				{CoverType: "poster", URL: poster},
			},
			Description: match.Overview,
			Year:        yearOf(releaseDate),
			ReleaseDate: releaseDate,
		})
	}

	p.log(model.LogInfo, fmt.Sprintf("本轮采集完成，输出 %d 部电影", len(movies)), map[string]any{"count": len(movies)})
	return movies
}

// normalizePosterURL 把协议相对的海报地址补全成绝对地址
func normalizePosterURL(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "//") {
		return "https:" + path
	}
	return path
}

// formatReleaseDate 把上游的日期字符串归一化成 YYYY-MM-DD
func formatReleaseDate(raw string) string {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.Format("2006-01-02")
	}
	if len(raw) >= 10 {
		if t, err := time.Parse("2006-01-02", raw[:10]); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return raw
}

// yearOf 从 YYYY-MM-DD 取年份
func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, _ := strconv.Atoi(date[:4])
	return year
}

func (p *PipelineService) startRun() {
	if p.statusStore != nil {
		p.statusStore.StartRun()
	}
}

func (p *PipelineService) endRun() {
	if p.statusStore != nil {
		p.statusStore.EndRun()
	}
}

func (p *PipelineService) updateStatus(u store.StatusUpdate) {
	if p.statusStore != nil {
		p.statusStore.UpdateMovieStatus(u)
	}
}

func (p *PipelineService) log(level model.LogLevel, message string, context map[string]any) {
	if p.logStore != nil {
		p.logStore.Log(level, message, "Pipeline", context)
	}
}
