package store

import (
	"sort"
	"sync"
	"time"

	"github.com/user/cinelist/internal/model"
)

// StatusStore 电影处理状态的内存存储
// 进程内唯一实例，由采集流水线写入、仪表盘接口读取
type StatusStore struct {
	mu              sync.RWMutex
	movies          map[string]model.MovieStatus
	runStart        time.Time
	lastRunAt       *time.Time
	lastRunDuration time.Duration
	running         bool
}

// StatusUpdate 一次状态更新
// TMDBID/IMDbID/Poster/RadarrStatus/RadarrID 为零值时表示"未提供"，
// 合并时保留已有值；Status 与 Error 每次都覆盖
type StatusUpdate struct {
	Source        string
	Title         string
	OriginalTitle string
	ReleaseDate   string
	Poster        string
	TMDBID        int
	IMDbID        string
	Status        model.ProcessingStatus
	Error         string
	RadarrStatus  model.RadarrStatus
	RadarrID      int
}

// NewStatusStore 创建状态存储
func NewStatusStore() *StatusStore {
	return &StatusStore{
		movies: make(map[string]model.MovieStatus),
	}
}

// StartRun 标记一轮采集开始，清空上一轮的明细
func (s *StatusStore) StartRun() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = true
	s.runStart = time.Now()
	s.movies = make(map[string]model.MovieStatus)
}

// EndRun 标记一轮采集结束并记录耗时
func (s *StatusStore) EndRun() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	now := time.Now()
	s.lastRunAt = &now
	if !s.runStart.IsZero() {
		s.lastRunDuration = now.Sub(s.runStart)
	}
}

// UpdateMovieStatus 写入或合并一条电影状态
func (s *StatusStore) UpdateMovieStatus(u StatusUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := u.Source + "-" + u.Title + "-" + u.ReleaseDate
	existing, ok := s.movies[id]

	status := model.MovieStatus{
		ID:            id,
		Title:         u.Title,
		OriginalTitle: u.OriginalTitle,
		ReleaseDate:   u.ReleaseDate,
		Poster:        u.Poster,
		TMDBID:        u.TMDBID,
		IMDbID:        u.IMDbID,
		Status:        u.Status,
		Error:         u.Error,
		LastUpdated:   time.Now(),
		Source:        u.Source,
		RadarrStatus:  u.RadarrStatus,
		RadarrID:      u.RadarrID,
	}

	// 合并规则：更新里没带的字段沿用上一次的值
	if ok {
		if u.TMDBID == 0 {
			status.TMDBID = existing.TMDBID
		}
		if u.IMDbID == "" {
			status.IMDbID = existing.IMDbID
		}
		if u.Poster == "" {
			status.Poster = existing.Poster
		}
		if u.RadarrStatus == "" {
			status.RadarrStatus = existing.RadarrStatus
		}
		if u.RadarrID == 0 {
			status.RadarrID = existing.RadarrID
		}
	}

	s.movies[id] = status
}

// GetMovies 返回全部状态记录，按最后更新时间倒序
func (s *StatusStore) GetMovies() []model.MovieStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	movies := make([]model.MovieStatus, 0, len(s.movies))
	for _, m := range s.movies {
		movies = append(movies, m)
	}
	sort.SliceStable(movies, func(i, j int) bool {
		return movies[i].LastUpdated.After(movies[j].LastUpdated)
	})
	return movies
}

// GetStats 实时计算仪表盘统计
func (s *StatusStore) GetStats() model.DashboardStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := model.DashboardStats{
		TotalMoviesProcessed: len(s.movies),
		LastRunAt:            s.lastRunAt,
		LastRunDuration:      s.lastRunDuration.Milliseconds(),
		IsRunning:            s.running,
	}
	for _, m := range s.movies {
		switch m.Status {
		case model.StatusSuccess:
			stats.SuccessfulMovies++
		case model.StatusError:
			stats.FailedMovies++
		case model.StatusNotFound:
			stats.NotFoundMovies++
		}
	}
	return stats
}

// IsRunning 当前是否有采集在执行
func (s *StatusStore) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Clear 清空全部记录并重置上一轮的元信息
func (s *StatusStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.movies = make(map[string]model.MovieStatus)
	s.lastRunAt = nil
	s.lastRunDuration = 0
	s.running = false
}
