package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/user/cinelist/internal/model"
	"github.com/user/cinelist/internal/store"
	"golang.org/x/sync/singleflight"
)

// radarrMoviesKey 电影列表在缓存里的键
const radarrMoviesKey = "radarr_movies"

// radarrCacheTTL 电影列表缓存时长
const radarrCacheTTL = 60 * time.Second

// RadarrService Radarr 客户端
type RadarrService struct {
	baseURL     string
	apiKey      string
	readClient  *http.Client
	writeClient *http.Client
	cache       *cache.Cache
	group       singleflight.Group
	logStore    *store.LogStore
}

// NewRadarrService 创建 Radarr 客户端，logStore 可以为 nil
func NewRadarrService(baseURL, apiKey string, logStore *store.LogStore) *RadarrService {
	return &RadarrService{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		readClient:  &http.Client{Timeout: 10 * time.Second},
		writeClient: &http.Client{Timeout: 15 * time.Second},
		cache:       cache.New(radarrCacheTTL, 5*time.Minute),
		logStore:    logStore,
	}
}

// GetMovies 获取 Radarr 库中全部电影，带 60 秒缓存
// 上游失败时返回空列表且不写缓存，下次调用会重新尝试
func (s *RadarrService) GetMovies() []model.RadarrMovie {
	if cached, found := s.cache.Get(radarrMoviesKey); found {
		return cached.([]model.RadarrMovie)
	}

	// singleflight 合并并发的刷新请求
	val, _, _ := s.group.Do(radarrMoviesKey, func() (interface{}, error) {
		var movies []model.RadarrMovie
		if err := s.getJSON("/api/v3/movie", &movies); err != nil {
			s.log(model.LogError, "获取 Radarr 电影列表失败", map[string]any{"error": err.Error()})
			return []model.RadarrMovie{}, nil
		}

		s.cache.Set(radarrMoviesKey, movies, cache.DefaultExpiration)
		s.log(model.LogInfo, fmt.Sprintf("从 Radarr 获取到 %d 部电影", len(movies)), map[string]any{"count": len(movies)})
		return movies, nil
	})
	return val.([]model.RadarrMovie)
}

// IsMovieInLibrary 电影是否已在库中
func (s *RadarrService) IsMovieInLibrary(tmdbID int) bool {
	return s.GetMovieByTMDBID(tmdbID) != nil
}

// GetMovieByTMDBID 按 TMDB ID 查找库中电影，没有时返回 nil
// 有重复时取第一个匹配
func (s *RadarrService) GetMovieByTMDBID(tmdbID int) *model.RadarrMovie {
	for _, m := range s.GetMovies() {
		if m.TMDBID == tmdbID {
			return &m
		}
	}
	return nil
}

// GetRootFolders 获取根目录列表，失败时返回空列表
func (s *RadarrService) GetRootFolders() []model.RadarrRootFolder {
	var folders []model.RadarrRootFolder
	if err := s.getJSON("/api/v3/rootfolder", &folders); err != nil {
		s.log(model.LogError, "获取 Radarr 根目录失败", map[string]any{"error": err.Error()})
		return []model.RadarrRootFolder{}
	}
	return folders
}

// GetQualityProfiles 获取质量配置列表，失败时返回空列表
func (s *RadarrService) GetQualityProfiles() []model.RadarrQualityProfile {
	var profiles []model.RadarrQualityProfile
	if err := s.getJSON("/api/v3/qualityprofile", &profiles); err != nil {
		s.log(model.LogError, "获取 Radarr 质量配置失败", map[string]any{"error": err.Error()})
		return []model.RadarrQualityProfile{}
	}
	return profiles
}

// AddMovie 添加电影到 Radarr
// 两步操作：先通过 lookup 接口取完整元数据，再合并放置参数提交
// 这是唯一由用户主动触发的写操作，失败必须向调用方报错
func (s *RadarrService) AddMovie(req model.AddMovieRequest) (*model.RadarrMovie, error) {
	var movieData map[string]any
	lookupPath := fmt.Sprintf("/api/v3/movie/lookup/tmdb?tmdbId=%d", req.TMDBID)
	if err := s.getJSON(lookupPath, &movieData); err != nil {
		s.log(model.LogError, "查询 Radarr 电影元数据失败", map[string]any{"tmdbId": req.TMDBID, "error": err.Error()})
		return nil, fmt.Errorf("查询电影元数据失败: %w", err)
	}

	monitored := true
	if req.Monitored != nil {
		monitored = *req.Monitored
	}
	searchForMovie := true
	if req.SearchForMovie != nil {
		searchForMovie = *req.SearchForMovie
	}

	movieData["rootFolderPath"] = req.RootFolderPath
	movieData["qualityProfileId"] = req.QualityProfileID
	movieData["monitored"] = monitored
	movieData["addOptions"] = map[string]any{
		"searchForMovie": searchForMovie,
	}

	body, err := json.Marshal(movieData)
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	httpReq, err := http.NewRequest("POST", s.baseURL+"/api/v3/movie", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	httpReq.Header.Set("X-Api-Key", s.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.writeClient.Do(httpReq)
	if err != nil {
		s.log(model.LogError, "添加电影到 Radarr 失败: "+req.Title, map[string]any{"tmdbId": req.TMDBID, "error": err.Error()})
		return nil, fmt.Errorf("提交 Radarr 失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := parseRadarrError(respBody, resp.StatusCode)
		s.log(model.LogError, "添加电影到 Radarr 失败: "+req.Title, map[string]any{"tmdbId": req.TMDBID, "error": msg})
		return nil, errors.New(msg)
	}

	var added model.RadarrMovie
	if err := json.Unmarshal(respBody, &added); err != nil {
		return nil, fmt.Errorf("解析 Radarr 响应失败: %w", err)
	}

	// 添加成功后立即失效缓存，下一次 GetMovies 能看到新电影
	s.cache.Delete(radarrMoviesKey)
	s.log(model.LogInfo, "已添加电影到 Radarr: "+req.Title, map[string]any{"tmdbId": req.TMDBID, "radarrId": added.ID})
	return &added, nil
}

// getJSON 带 API Key 的 GET 请求
func (s *RadarrService) getJSON(path string, target interface{}) error {
	req, err := http.NewRequest("GET", s.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("X-Api-Key", s.apiKey)

	resp, err := s.readClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("请求失败，状态码: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("解析JSON失败: %w", err)
	}
	return nil
}

// parseRadarrError 从 Radarr 错误响应中提取可读信息
// 错误体可能是 {message} 对象，也可能是 [{errorMessage}] 数组
func parseRadarrError(body []byte, statusCode int) string {
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}

	var arr []struct {
		ErrorMessage string `json:"errorMessage"`
	}
	if err := json.Unmarshal(body, &arr); err == nil && len(arr) > 0 && arr[0].ErrorMessage != "" {
		return arr[0].ErrorMessage
	}

	return fmt.Sprintf("Radarr 返回状态码: %d", statusCode)
}

func (s *RadarrService) log(level model.LogLevel, message string, context map[string]any) {
	if s.logStore != nil {
		s.logStore.Log(level, message, "Radarr", context)
	}
}
