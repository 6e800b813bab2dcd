package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the process-level settings
type Config struct {
	Port      string
	MongoURI  string
	RedisURI  string
	JWTSecret string

	DayDuration    time.Duration
	VotingDuration time.Duration
	NightDuration  time.Duration
}

// Load reads configuration from the environment with sane defaults
func Load() *Config {
	return &Config{
		Port:      getEnvOrDefault("PORT", "8080"),
		MongoURI:  getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		RedisURI:  getEnvOrDefault("REDIS_URI", "localhost:6379"),
		JWTSecret: getEnvOrDefault("JWT_SECRET", "super-secret-key-change-in-production"),

		DayDuration:    getEnvSeconds("DAY_DURATION_SEC", 90),
		VotingDuration: getEnvSeconds("VOTING_DURATION_SEC", 30),
		NightDuration:  getEnvSeconds("NIGHT_DURATION_SEC", 30),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvSeconds(key string, defaultValue int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return time.Duration(defaultValue) * time.Second
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}
