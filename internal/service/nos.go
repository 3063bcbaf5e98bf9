package service

import (
	"fmt"
	"time"

	"github.com/user/cinelist/internal/model"
	"github.com/user/cinelist/internal/store"
	"github.com/user/cinelist/internal/utils"
)

// NosService NOS 影院排片客户端
type NosService struct {
	apiURL   string
	client   *utils.HTTPClient
	logStore *store.LogStore
}

// NewNosService 创建 NOS 客户端，logStore 可以为 nil
func NewNosService(apiURL string, logStore *store.LogStore) *NosService {
	return &NosService{
		apiURL:   apiURL,
		client:   utils.NewHTTPClient(15 * time.Second),
		logStore: logStore,
	}
}

type nosResponse struct {
	Data *struct {
		MovieList struct {
			Items []nosMovie `json:"items"`
		} `json:"movieList"`
	} `json:"data"`
}

type nosMovie struct {
	UUID           string `json:"uuid"`
	Title          string `json:"title"`
	OriginalTitle  string `json:"originaltitle"`
	Trailer        string `json:"trailer"`
	PortraitImages struct {
		Size string `json:"size"`
		Path string `json:"path"`
	} `json:"portraitimages"`
	Cast        string `json:"cast"`
	Duration    string `json:"duration"`
	MovieState  string `json:"moviestate"`
	ReleaseDate string `json:"releasedate"`
	InTheaters  bool   `json:"intheaters"`
	Format      string `json:"format"`
	Version     string `json:"version"`
}

// GetShowtimes 拉取 NOS 正在上映的电影列表
// 响应缺少 data 或 items 字段视为"没有排片"，返回空列表而不是错误
func (s *NosService) GetShowtimes() ([]model.RawShowtime, error) {
	s.log(model.LogInfo, "开始拉取 NOS 排片", map[string]any{"url": s.apiURL})

	var result nosResponse
	if err := s.client.GetJSON(s.apiURL, &result); err != nil {
		return nil, fmt.Errorf("拉取 NOS 排片失败: %w", err)
	}

	if result.Data == nil || result.Data.MovieList.Items == nil {
		s.log(model.LogWarn, "NOS 响应中没有电影数据", nil)
		return []model.RawShowtime{}, nil
	}

	items := result.Data.MovieList.Items
	showtimes := make([]model.RawShowtime, 0, len(items))
	for _, m := range items {
		showtimes = append(showtimes, model.RawShowtime{
			UUID:           m.UUID,
			Title:          m.Title,
			OriginalTitle:  m.OriginalTitle,
			Poster:         m.PortraitImages.Path,
			ReleaseDateRaw: m.ReleaseDate,
		})
	}

	s.log(model.LogInfo, fmt.Sprintf("NOS 返回 %d 部电影", len(showtimes)), map[string]any{"count": len(showtimes)})
	return showtimes, nil
}

func (s *NosService) log(level model.LogLevel, message string, context map[string]any) {
	if s.logStore != nil {
		s.logStore.Log(level, message, "NOS", context)
	}
}
