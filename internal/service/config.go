package service

import (
	"os"
	"strconv"
)

// Config holds the server settings read from the environment.
type Config struct {
	Port         string
	Environment  string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	BodyLimit    int // bytes
	DBPath       string
	PresetsPath  string // Optional YAML preset table
}

// LoadConfig reads the configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		Port:         getEnv("PORT", "3000"),
		Environment:  getEnv("ENV", "development"),
		ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
		WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 30),
		BodyLimit:    getEnvAsInt("BODY_LIMIT", 16*1024*1024),
		DBPath:       getEnv("WALLPLAN_DB_PATH", "data/db/wallplan.db"),
		PresetsPath:  getEnv("WALLPLAN_PRESETS", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}
