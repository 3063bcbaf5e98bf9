package model

import "time"

// ProcessingStatus 单部电影的处理状态
type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusSuccess    ProcessingStatus = "success"
	StatusError      ProcessingStatus = "error"
	StatusNotFound   ProcessingStatus = "not_found"
)

// RadarrStatus 电影在 Radarr 库中的状态
type RadarrStatus string

const (
	RadarrUnknown    RadarrStatus = "unknown"
	RadarrNotAdded   RadarrStatus = "not_added"
	RadarrMonitored  RadarrStatus = "monitored"
	RadarrDownloaded RadarrStatus = "downloaded"
)

// MovieStatus 仪表盘中单部电影的处理记录
// 标识 = 来源 + 标题 + 上映日期（处理中阶段还拿不到 TMDB ID）
type MovieStatus struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	OriginalTitle string           `json:"originalTitle"`
	ReleaseDate   string           `json:"releaseDate"`
	Poster        string           `json:"poster,omitempty"`
	TMDBID        int              `json:"tmdbId,omitempty"`
	IMDbID        string           `json:"imdbId,omitempty"`
	Status        ProcessingStatus `json:"status"`
	Error         string           `json:"error,omitempty"`
	LastUpdated   time.Time        `json:"lastUpdated"`
	Source        string           `json:"source"`
	RadarrStatus  RadarrStatus     `json:"radarrStatus,omitempty"`
	RadarrID      int              `json:"radarrId,omitempty"`
}

// DashboardStats 仪表盘聚合统计（查询时实时计算，不落存储）
type DashboardStats struct {
	TotalMoviesProcessed int        `json:"totalMoviesProcessed"`
	SuccessfulMovies     int        `json:"successfulMovies"`
	FailedMovies         int        `json:"failedMovies"`
	NotFoundMovies       int        `json:"notFoundMovies"`
	LastRunAt            *time.Time `json:"lastRunAt,omitempty"`
	LastRunDuration      int64      `json:"lastRunDuration,omitempty"` // 毫秒
	IsRunning            bool       `json:"isRunning"`
}
