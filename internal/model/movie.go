package model

// RawShowtime 影院接口返回的原始排片记录（归一化后）
type RawShowtime struct {
	UUID           string `json:"uuid"`
	Title          string `json:"title"`
	OriginalTitle  string `json:"originalTitle"`
	Poster         string `json:"poster"`
	ReleaseDateRaw string `json:"releaseDate"`
}

// MovieImage 封面图信息（Radarr 导入列表格式）
type MovieImage struct {
	CoverType string `json:"coverType"`
	URL       string `json:"url"`
}

// Movie 聚合后的输出电影
// tmdbId/imdbId 同时输出驼峰与下划线两种字段名，兼容不同消费端
type Movie struct {
	Title       string       `json:"title"`
	TMDBID      int          `json:"tmdbId"`
	TMDBIDSnake int          `json:"tmdb_id"`
	IMDbID      string       `json:"imdbId"`
	IMDbIDSnake string       `json:"imdb_id"`
	Poster      string       `json:"poster"`
	Images      []MovieImage `json:"images"`
	Description string       `json:"description"`
	Year        int          `json:"year"`
	ReleaseDate string       `json:"release_date"`
}

// TMDBMovie TMDB 搜索结果
type TMDBMovie struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	OriginalTitle string `json:"original_title"`
	Overview      string `json:"overview"`
	PosterPath    string `json:"poster_path"`
	ReleaseDate   string `json:"release_date"`
}

// ReleaseDateEntry 某一地区的上映日期
type ReleaseDateEntry struct {
	Country string `json:"country"`
	Date    string `json:"date"`
	Note    string `json:"note,omitempty"`
}

// MovieDetails TMDB 电影详情（含按类型分组的上映日期）
type MovieDetails struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	OriginalTitle string   `json:"original_title"`
	Overview      string   `json:"overview"`
	PosterPath    string   `json:"poster_path"`
	ReleaseDate   string   `json:"release_date"`
	Runtime       int      `json:"runtime"`
	Genres        []string `json:"genres"`
	// 键为 premiere/theatrical/digital/physical/tv
	ReleaseDates map[string][]ReleaseDateEntry `json:"release_dates"`
}
