package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURI    string
	BadgerPath     string
	TelegramToken  string
	TelegramChatID int64
	OCRAPIKey      string
	OCRBaseURL     string
	OCRModel       string
	CatalogPath    string
	BDPMBaseURL    string
	HistoryRetain  int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env file is optional in production
	}

	return &Config{
		DatabaseURI:    os.Getenv("DATABASE_URI"),
		BadgerPath:     os.Getenv("BADGER_PATH"),
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		TelegramChatID: getEnvInt64("TELEGRAM_CHAT_ID", 0),
		OCRAPIKey:      os.Getenv("OCR_API_KEY"),
		OCRBaseURL:     os.Getenv("OCR_BASE_URL"),
		OCRModel:       getEnvOrDefault("OCR_MODEL", "gpt-4o-mini"),
		CatalogPath:    getEnvOrDefault("CATALOG_PATH", "data/catalog.json"),
		BDPMBaseURL:    os.Getenv("BDPM_BASE_URL"),
		HistoryRetain:  getEnvInt("HISTORY_RETAIN_DAYS", 90),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}
