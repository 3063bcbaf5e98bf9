package config

import (
	"os"
	"strconv"
)

// Config 应用配置
type Config struct {
	Env          string
	Port         string
	SiteName     string
	SiteUrl      string
	TMDBAPIKey   string
	RadarrURL    string
	RadarrAPIKey string
	CinemaAPIURL string
	CinemaSource string
	LogStoreSize int
}

// Load 加载配置
func Load() *Config {
	logStoreSize, _ := strconv.Atoi(getEnv("LOG_STORE_SIZE", "1000"))

	return &Config{
		Env:          getEnv("APP_ENV", "development"),
		Port:         getEnv("PORT", "5005"),
		SiteName:     getEnv("SITE_NAME", "CineList"),
		SiteUrl:      getEnv("SITE_URL", "http://localhost:5005"),
		TMDBAPIKey:   getEnv("TMDB_API_KEY", ""),
		RadarrURL:    getEnv("RADARR_URL", ""),
		RadarrAPIKey: getEnv("RADARR_API_KEY", ""),
		CinemaAPIURL: getEnv("CINEMA_API_URL", "https://www.cinemas.nos.pt/graphql/execute.json/cinemas/getMoviesInTheatersBigBanner"),
		CinemaSource: getEnv("CINEMA_SOURCE", "NOS"),
		LogStoreSize: logStoreSize,
	}
}

// RadarrEnabled Radarr 是否已配置
func (c *Config) RadarrEnabled() bool {
	return c.RadarrURL != "" && c.RadarrAPIKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
