package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/user/cinelist/internal/model"
)

func TestGetMoviesCached(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		w.Write([]byte(`[{"id":5,"title":"Dune","tmdbId":42,"hasFile":true,"monitored":true}]`))
	}))
	defer srv.Close()

	svc := NewRadarrService(srv.URL, "test-key", nil)
	first := svc.GetMovies()
	second := svc.GetMovies()

	assert.Len(t, first, 1)
	assert.Equal(t, first, second)
	// 60 秒内第二次调用命中缓存，不打上游
	assert.Equal(t, 1, calls)
}

func TestGetMoviesFailureNotCached(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[{"id":5,"title":"Dune","tmdbId":42}]`))
	}))
	defer srv.Close()

	svc := NewRadarrService(srv.URL, "test-key", nil)
	assert.Empty(t, svc.GetMovies())
	// 失败不写缓存，下一次重新请求
	assert.Len(t, svc.GetMovies(), 1)
	assert.Equal(t, 2, calls)
}

func TestGetMovieByTMDBID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id":5,"title":"Dune","tmdbId":42,"hasFile":true},
			{"id":9,"title":"Dune Copy","tmdbId":42,"hasFile":false},
			{"id":7,"title":"Oppenheimer","tmdbId":872585}
		]`))
	}))
	defer srv.Close()

	svc := NewRadarrService(srv.URL, "test-key", nil)

	// 重复时取第一个匹配
	m := svc.GetMovieByTMDBID(42)
	assert.NotNil(t, m)
	assert.Equal(t, 5, m.ID)
	assert.True(t, m.HasFile)

	assert.Nil(t, svc.GetMovieByTMDBID(1))
	assert.True(t, svc.IsMovieInLibrary(872585))
	assert.False(t, svc.IsMovieInLibrary(1))
}

func TestRootFoldersAndProfilesFailSoft(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := NewRadarrService(srv.URL, "test-key", nil)
	assert.NotNil(t, svc.GetRootFolders())
	assert.Empty(t, svc.GetRootFolders())
	assert.NotNil(t, svc.GetQualityProfiles())
	assert.Empty(t, svc.GetQualityProfiles())
}

func TestAddMovie(t *testing.T) {
	var posted map[string]any
	listCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/movie/lookup/tmdb", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "42", r.URL.Query().Get("tmdbId"))
		w.Write([]byte(`{"title":"Dune: Part Two","tmdbId":42,"year":2024,"images":[]}`))
	})
	mux.HandleFunc("/api/v3/movie", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			listCalls++
			w.Write([]byte(`[]`))
			return
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&posted))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":11,"title":"Dune: Part Two","tmdbId":42,"monitored":true}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	svc := NewRadarrService(srv.URL, "test-key", nil)
	svc.GetMovies() // 预热缓存，验证添加后会失效

	added, err := svc.AddMovie(model.AddMovieRequest{
		TMDBID:           42,
		Title:            "Dune: Part Two",
		RootFolderPath:   "/movies",
		QualityProfileID: 1,
	})
	assert.NoError(t, err)
	assert.Equal(t, 11, added.ID)

	// lookup 元数据与放置参数合并后提交
	assert.Equal(t, "Dune: Part Two", posted["title"])
	assert.Equal(t, "/movies", posted["rootFolderPath"])
	assert.Equal(t, float64(1), posted["qualityProfileId"])
	assert.Equal(t, true, posted["monitored"])
	addOptions, ok := posted["addOptions"].(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, true, addOptions["searchForMovie"])

	// 添加成功后缓存失效，再次查询会打上游
	svc.GetMovies()
	assert.Equal(t, 2, listCalls)
}

func TestAddMovieMonitoredOverride(t *testing.T) {
	var posted map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/movie/lookup/tmdb", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title":"Dune","tmdbId":42}`))
	})
	mux.HandleFunc("/api/v3/movie", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&posted)
		w.Write([]byte(`{"id":11,"tmdbId":42}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	monitored := false
	search := false
	svc := NewRadarrService(srv.URL, "test-key", nil)
	_, err := svc.AddMovie(model.AddMovieRequest{
		TMDBID:           42,
		Title:            "Dune",
		RootFolderPath:   "/movies",
		QualityProfileID: 1,
		Monitored:        &monitored,
		SearchForMovie:   &search,
	})
	assert.NoError(t, err)
	assert.Equal(t, false, posted["monitored"])
	assert.Equal(t, false, posted["addOptions"].(map[string]any)["searchForMovie"])
}

func TestAddMoviePropagatesUpstreamError(t *testing.T) {
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

	svc := NewRadarrService(srv.URL, "test-key", nil)
	_, err := svc.AddMovie(model.AddMovieRequest{TMDBID: 42, Title: "Dune", RootFolderPath: "/movies", QualityProfileID: 1})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "This movie has already been added")
}

func TestAddMovieLookupFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := NewRadarrService(srv.URL, "test-key", nil)
	_, err := svc.AddMovie(model.AddMovieRequest{TMDBID: 42, Title: "Dune", RootFolderPath: "/movies", QualityProfileID: 1})
	assert.Error(t, err)
}

func TestParseRadarrError(t *testing.T) {
	assert.Equal(t, "bad key", parseRadarrError([]byte(`{"message":"bad key"}`), 401))
	assert.Equal(t, "already added", parseRadarrError([]byte(`[{"errorMessage":"already added"}]`), 400))
	assert.Equal(t, "Radarr 返回状态码: 500", parseRadarrError([]byte(`garbage`), 500))
}
