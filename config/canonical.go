package config

import "sync"

var (
	canonicalOnce   sync.Once
	canonicalConfig *CanonicalConfig
)

// CanonicalConfig points at the Sanity-style canonical document store.
type CanonicalConfig struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	Token      string
	UseCDN     bool
}

func GetCanonicalConfig() *CanonicalConfig {
	canonicalOnce.Do(func() {
		loadEnv()
		canonicalConfig = &CanonicalConfig{
			ProjectID:  getEnv("SANITY_PROJECT_ID", ""),
			Dataset:    getEnv("SANITY_DATASET", "production"),
			APIVersion: getEnv("SANITY_API_VERSION", "2024-03-15"),
			Token:      getEnv("SANITY_API_TOKEN", ""),
			UseCDN:     getEnvBool("SANITY_USE_CDN", false),
		}
	})
	return canonicalConfig
}
