package model

// RadarrMovie Radarr 库中的电影
type RadarrMovie struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	TMDBID    int    `json:"tmdbId"`
	IMDbID    string `json:"imdbId,omitempty"`
	HasFile   bool   `json:"hasFile"`
	Monitored bool   `json:"monitored"`
}

// RadarrRootFolder Radarr 根目录
type RadarrRootFolder struct {
	ID        int    `json:"id"`
	Path      string `json:"path"`
	FreeSpace int64  `json:"freeSpace"`
}

// RadarrQualityProfile Radarr 质量配置
type RadarrQualityProfile struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// AddMovieRequest 添加电影到 Radarr 的请求
// monitored 与 searchForMovie 缺省时均按 true 处理
type AddMovieRequest struct {
	TMDBID           int    `json:"tmdbId" binding:"required"`
	Title            string `json:"title" binding:"required"`
	Year             int    `json:"year"`
	RootFolderPath   string `json:"rootFolderPath" binding:"required"`
	QualityProfileID int    `json:"qualityProfileId" binding:"required"`
	Monitored        *bool  `json:"monitored"`
	SearchForMovie   *bool  `json:"searchForMovie"`
}
