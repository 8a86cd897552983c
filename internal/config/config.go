package config

import (
	"os"
	"strconv"
)

type Config struct {
	BotToken       string
	TelegramAPIURL string

	DBDSN string

	// AI provider
	AIProvider        string
	OllamaBaseURL     string
	OpenRouterBaseURL string
	OpenRouterAPIKey  string
	OpenRouterSiteURL string
	OpenRouterAppName string

	// Model names bound to the two selectable versions.
	ModelFast    string
	ModelCapable string

	// Optional collaborators; empty means disabled.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RabbitURL   string
	RabbitQueue string

	// Admin API; empty addr means the admin server is not started.
	AdminAddr      string
	AdminJWTSecret string
}

func Load() Config {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "tgrelay.db"
	}

	apiURL := os.Getenv("TELEGRAM_API_URL")
	if apiURL == "" {
		apiURL = "https://api.telegram.org"
	}

	aiProvider := os.Getenv("AI_PROVIDER")
	if aiProvider == "" {
		aiProvider = "ollama"
	}

	ollamaBaseURL := os.Getenv("OLLAMA_BASE_URL")
	if ollamaBaseURL == "" {
		ollamaBaseURL = "http://localhost:11434"
	}

	openRouterBaseURL := os.Getenv("OPENROUTER_BASE_URL")
	if openRouterBaseURL == "" {
		openRouterBaseURL = "https://openrouter.ai/api/v1"
	}

	modelFast := os.Getenv("MODEL_FAST")
	if modelFast == "" {
		modelFast = "llama3:latest"
	}
	modelCapable := os.Getenv("MODEL_CAPABLE")
	if modelCapable == "" {
		modelCapable = "llama3:70b"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	rabbitQueue := os.Getenv("RABBIT_QUEUE")
	if rabbitQueue == "" {
		rabbitQueue = "relay_events"
	}

	adminSecret := os.Getenv("ADMIN_JWT_SECRET")
	if adminSecret == "" {
		adminSecret = "dev-secret-change-me"
	}

	return Config{
		BotToken:       os.Getenv("BOT_TOKEN"),
		TelegramAPIURL: apiURL,

		DBDSN: dsn,

		AIProvider:        aiProvider,
		OllamaBaseURL:     ollamaBaseURL,
		OpenRouterBaseURL: openRouterBaseURL,
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterSiteURL: os.Getenv("OPENROUTER_SITE_URL"),
		OpenRouterAppName: os.Getenv("OPENROUTER_APP_NAME"),

		ModelFast:    modelFast,
		ModelCapable: modelCapable,

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		RabbitURL:   os.Getenv("RABBIT_URL"),
		RabbitQueue: rabbitQueue,

		AdminAddr:      os.Getenv("ADMIN_ADDR"),
		AdminJWTSecret: adminSecret,
	}
}
