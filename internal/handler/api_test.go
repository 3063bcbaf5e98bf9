package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/user/cinelist/internal/config"
	"github.com/user/cinelist/internal/model"
	"github.com/user/cinelist/internal/service"
	"github.com/user/cinelist/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubCinema 测试用的排片来源
type stubCinema struct {
	showtimes []model.RawShowtime
}

func (s *stubCinema) GetShowtimes() ([]model.RawShowtime, error) {
	return s.showtimes, nil
}

// newTestHandler 组装带假排片来源的处理器，radarrURL 为空时不启用 Radarr
func newTestHandler(cinema service.CinemaClient, radarrURL string) *Handler {
	cfg := &config.Config{SiteName: "CineList", SiteUrl: "http://localhost:5005"}
	statusStore := store.NewStatusStore()
	logStore := store.NewLogStore(100)
	tmdb := service.NewTMDBService("test-key", nil)

	var radarr *service.RadarrService
	if radarrURL != "" {
		radarr = service.NewRadarrService(radarrURL, "test-key", nil)
	}

	return &Handler{
		Config:      cfg,
		StatusStore: statusStore,
		LogStore:    logStore,
		TMDB:        tmdb,
		Radarr:      radarr,
		Pipeline:    service.NewPipelineService(cinema, tmdb, radarr, statusStore, logStore, "NOS"),
	}
}

func TestMoviesEmptyReturnsNotModified(t *testing.T) {
	h := newTestHandler(&stubCinema{}, "")
	r := gin.New()
	r.GET("/api/movies", h.Movies)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/movies", nil))

	// 空结果按 304 返回，导入列表据此跳过同步
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Contains(t, w.Header().Get("Cache-Control"), "no-cache")
}

func TestMovieDetailInvalidID(t *testing.T) {
	h := newTestHandler(&stubCinema{}, "")
	r := gin.New()
	r.GET("/api/movies/:tmdbId", h.MovieDetail)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/movies/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetDashboardData(t *testing.T) {
	h := newTestHandler(&stubCinema{}, "")
	h.LogStore.Log(model.LogInfo, "测试日志", "test", nil)
	h.StatusStore.UpdateMovieStatus(store.StatusUpdate{
		Source: "NOS", Title: "Dune", ReleaseDate: "2024-03-01", Status: model.StatusSuccess,
	})

	r := gin.New()
	r.GET("/api/dashboard", h.GetDashboardData)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/dashboard?logLimit=10", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Logs   []model.LogEntry     `json:"logs"`
		Movies []model.MovieStatus  `json:"movies"`
		Stats  model.DashboardStats `json:"stats"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &data))
	assert.Len(t, data.Logs, 1)
	assert.Len(t, data.Movies, 1)
	assert.Equal(t, 1, data.Stats.SuccessfulMovies)
}

func TestRadarrConfigDisabled(t *testing.T) {
	h := newTestHandler(&stubCinema{}, "")
	r := gin.New()
	r.GET("/api/radarr/config", h.RadarrConfig)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/radarr/config", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Enabled bool `json:"enabled"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Data.Enabled)
}

func TestRadarrConfigEnabled(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/rootfolder", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1,"path":"/movies","freeSpace":1000}]`))
	})
	mux.HandleFunc("/api/v3/qualityprofile", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1,"name":"HD-1080p"}]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	h := newTestHandler(&stubCinema{}, srv.URL)
	r := gin.New()
	r.GET("/api/radarr/config", h.RadarrConfig)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/radarr/config", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Enabled         bool                         `json:"enabled"`
			RootFolders     []model.RadarrRootFolder     `json:"rootFolders"`
			QualityProfiles []model.RadarrQualityProfile `json:"qualityProfiles"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Enabled)
	assert.Len(t, resp.Data.RootFolders, 1)
	assert.Equal(t, "HD-1080p", resp.Data.QualityProfiles[0].Name)
}

func TestAddRadarrMovieMissingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	h := newTestHandler(&stubCinema{}, srv.URL)
	r := gin.New()
	r.POST("/api/radarr/movies", h.AddRadarrMovie)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/radarr/movies", strings.NewReader(`{"tmdbId":42}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "缺少必填字段")
}

func TestAddRadarrMovieNotConfigured(t *testing.T) {
	h := newTestHandler(&stubCinema{}, "")
	r := gin.New()
	r.POST("/api/radarr/movies", h.AddRadarrMovie)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/radarr/movies", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddRadarrMovieSuccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/movie/lookup/tmdb", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title":"Dune: Part Two","tmdbId":42}`))
	})
	mux.HandleFunc("/api/v3/movie", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":11,"title":"Dune: Part Two","tmdbId":42,"monitored":true}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	h := newTestHandler(&stubCinema{}, srv.URL)
	r := gin.New()
	r.POST("/api/radarr/movies", h.AddRadarrMovie)

	body := `{"tmdbId":42,"title":"Dune: Part Two","rootFolderPath":"/movies","qualityProfileId":1}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/radarr/movies", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool              `json:"success"`
		Data    model.RadarrMovie `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 11, resp.Data.ID)
}

func TestAddRadarrMovieUpstreamError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/movie/lookup/tmdb", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title":"Dune","tmdbId":42}`))
	})
	mux.HandleFunc("/api/v3/movie", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`[{"errorMessage":"This movie has already been added"}]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	h := newTestHandler(&stubCinema{}, srv.URL)
	r := gin.New()
	r.POST("/api/radarr/movies", h.AddRadarrMovie)

	body := `{"tmdbId":42,"title":"Dune","rootFolderPath":"/movies","qualityProfileId":1}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/radarr/movies", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "This movie has already been added")
}
