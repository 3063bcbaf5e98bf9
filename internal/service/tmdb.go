package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/user/cinelist/internal/model"
	"github.com/user/cinelist/internal/store"
	"github.com/user/cinelist/internal/utils"
	"golang.org/x/sync/singleflight"
)

// TMDBService TMDB 查询服务
type TMDBService struct {
	apiKey      string
	baseURL     string
	client      *http.Client
	logStore    *store.LogStore
	searchCache *utils.SearchCache[[]model.TMDBMovie]
	group       singleflight.Group
}

// NewTMDBService 创建 TMDB 服务，logStore 可以为 nil
func NewTMDBService(apiKey string, logStore *store.LogStore) *TMDBService {
	return &TMDBService{
		apiKey:  apiKey,
		baseURL: "https://api.themoviedb.org/3",
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logStore: logStore,
		// 同一部电影在一轮采集里会被反复查到，短 TTL 缓存足够
		searchCache: utils.NewSearchCache[[]model.TMDBMovie](500, 10*time.Minute),
	}
}

// SearchMovie 按标题+年份搜索电影，年份从 referenceDate 推导
// 任何上游错误都转成空列表返回，不向调用方抛错
func (s *TMDBService) SearchMovie(name, referenceDate string) []model.TMDBMovie {
	year := releaseYear(referenceDate)
	cacheKey := name + "|" + year

	if cached, found := s.searchCache.Get(cacheKey); found {
		return cached
	}

	// 使用 singleflight 避免并发重复搜索
	val, _, _ := s.group.Do(cacheKey, func() (interface{}, error) {
		return s.searchUpstream(name, year, cacheKey), nil
	})
	return val.([]model.TMDBMovie)
}

func (s *TMDBService) searchUpstream(name, year, cacheKey string) []model.TMDBMovie {
	reqURL := fmt.Sprintf("%s/search/movie?api_key=%s&query=%s&year=%s",
		s.baseURL, s.apiKey, url.QueryEscape(name), year)

	resp, err := s.client.Get(reqURL)
	if err != nil {
		s.log(model.LogError, "TMDB 搜索请求失败", map[string]any{"query": name, "error": err.Error()})
		return []model.TMDBMovie{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.log(model.LogError, "TMDB 搜索返回异常状态码", map[string]any{"query": name, "status": resp.StatusCode})
		return []model.TMDBMovie{}
	}

	var result struct {
		Results []model.TMDBMovie `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		s.log(model.LogError, "TMDB 搜索响应解析失败", map[string]any{"query": name, "error": err.Error()})
		return []model.TMDBMovie{}
	}
	if result.Results == nil {
		s.log(model.LogWarn, "TMDB 搜索响应缺少 results 字段", map[string]any{"query": name})
		return []model.TMDBMovie{}
	}

	s.log(model.LogDebug, fmt.Sprintf("TMDB 搜索到 %d 条结果: %s", len(result.Results), name),
		map[string]any{"query": name, "year": year, "count": len(result.Results)})
	s.searchCache.Set(cacheKey, result.Results)
	return result.Results
}

// FetchIMDbID 查询电影的 IMDb ID，没有映射或请求失败时返回空字符串
func (s *TMDBService) FetchIMDbID(tmdbID int) string {
	reqURL := fmt.Sprintf("%s/movie/%d/external_ids?api_key=%s", s.baseURL, tmdbID, s.apiKey)

	resp, err := s.client.Get(reqURL)
	if err != nil {
		s.log(model.LogWarn, "获取 IMDb ID 失败", map[string]any{"tmdbId": tmdbID, "error": err.Error()})
		return ""
	}
	defer resp.Body.Close()

	var result struct {
		IMDbID string `json:"imdb_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		s.log(model.LogWarn, "IMDb ID 响应解析失败", map[string]any{"tmdbId": tmdbID, "error": err.Error()})
		return ""
	}
	return result.IMDbID
}

type tmdbDetailsResponse struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	OriginalTitle string `json:"original_title"`
	Overview      string `json:"overview"`
	PosterPath    string `json:"poster_path"`
	ReleaseDate   string `json:"release_date"`
	Runtime       int    `json:"runtime"`
	Genres        []struct {
		Name string `json:"name"`
	} `json:"genres"`
	ReleaseDates struct {
		Results []struct {
			Country      string `json:"iso_3166_1"`
			ReleaseDates []struct {
				ReleaseDate string `json:"release_date"`
				Type        int    `json:"type"`
				Note        string `json:"note"`
			} `json:"release_dates"`
		} `json:"results"`
	} `json:"release_dates"`
}

// FetchDetails 获取电影详情，失败时返回 nil
// 上映日期按类型分组：1 首映 / 2、3 院线 / 4 数字 / 5 实体 / 6 电视
func (s *TMDBService) FetchDetails(tmdbID int) *model.MovieDetails {
	reqURL := fmt.Sprintf("%s/movie/%d?api_key=%s&append_to_response=release_dates", s.baseURL, tmdbID, s.apiKey)

	resp, err := s.client.Get(reqURL)
	if err != nil {
		s.log(model.LogWarn, "获取电影详情失败", map[string]any{"tmdbId": tmdbID, "error": err.Error()})
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.log(model.LogWarn, "电影详情返回异常状态码", map[string]any{"tmdbId": tmdbID, "status": resp.StatusCode})
		return nil
	}

	var result tmdbDetailsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		s.log(model.LogWarn, "电影详情响应解析失败", map[string]any{"tmdbId": tmdbID, "error": err.Error()})
		return nil
	}

	details := &model.MovieDetails{
		ID:            result.ID,
		Title:         result.Title,
		OriginalTitle: result.OriginalTitle,
		Overview:      result.Overview,
		PosterPath:    result.PosterPath,
		ReleaseDate:   result.ReleaseDate,
		Runtime:       result.Runtime,
		ReleaseDates:  make(map[string][]model.ReleaseDateEntry),
	}
	for _, g := range result.Genres {
		details.Genres = append(details.Genres, g.Name)
	}
	for _, country := range result.ReleaseDates.Results {
		for _, rd := range country.ReleaseDates {
			name := releaseTypeName(rd.Type)
			if name == "" {
				// 未知类型直接丢弃
				continue
			}
			details.ReleaseDates[name] = append(details.ReleaseDates[name], model.ReleaseDateEntry{
				Country: country.Country,
				Date:    rd.ReleaseDate,
				Note:    rd.Note,
			})
		}
	}
	return details
}

// releaseTypeName TMDB 上映类型编号转名称，未知编号返回空串
func releaseTypeName(t int) string {
	switch t {
	case 1:
		return "premiere"
	case 2, 3:
		return "theatrical"
	case 4:
		return "digital"
	case 5:
		return "physical"
	case 6:
		return "tv"
	default:
		return ""
	}
}

// releaseYear 从日期字符串推导年份
func releaseYear(dateRaw string) string {
	if len(dateRaw) >= 10 {
		if t, err := time.Parse("2006-01-02", dateRaw[:10]); err == nil {
			return t.Format("2006")
		}
	}
	if len(dateRaw) >= 4 {
		return dateRaw[:4]
	}
	return ""
}

func (s *TMDBService) log(level model.LogLevel, message string, context map[string]any) {
	if s.logStore != nil {
		s.logStore.Log(level, message, "TMDB", context)
	}
}
