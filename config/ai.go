package config

import "sync"

var (
	aiOnce   sync.Once
	aiConfig *AIConfig
)

// AIConfig holds the OpenAI credentials for insight generation.
type AIConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
}

func GetAIConfig() *AIConfig {
	aiOnce.Do(func() {
		loadEnv()
		aiConfig = &AIConfig{
			APIKey:    getEnv("OPENAI_API_KEY", ""),
			Model:     getEnv("OPENAI_MODEL", "gpt-4o"),
			MaxTokens: getEnvInt("OPENAI_MAX_TOKENS", 500),
		}
	})
	return aiConfig
}
