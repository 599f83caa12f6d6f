package config

import "sync"

var (
	searchOnce   sync.Once
	searchConfig *SearchConfig
)

// SearchConfig points at the Meilisearch instance.
type SearchConfig struct {
	Host      string
	APIKey    string
	IndexName string
}

func GetSearchConfig() *SearchConfig {
	searchOnce.Do(func() {
		loadEnv()
		searchConfig = &SearchConfig{
			Host:      getEnv("MEILISEARCH_HOST", "http://localhost:7700"),
			APIKey:    getEnv("MEILISEARCH_ADMIN_KEY", ""),
			IndexName: getEnv("MEILISEARCH_INDEX", "images"),
		}
	})
	return searchConfig
}
