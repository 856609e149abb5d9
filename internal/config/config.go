package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Env         string
	Port        string
	DatabaseURL string

	// RedisAddr empty means no redis; rate limits fall back to
	// process-local state.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionSecret string
	CronSecret    string
}

// Load reads .env files and returns the resolved configuration.
// godotenv.Load does not overwrite already-set env vars, so OS env vars
// always win and .env.local wins over .env.
func Load() Config {
	for _, f := range []string{".env.local", ".env"} {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}

	return Config{
		Env:           getenv("APP_ENV", "development"),
		Port:          getenv("PORT", "8080"),
		DatabaseURL:   getenv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=opensocial port=5432 sslmode=disable"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getenvInt("REDIS_DB", 0),
		SessionSecret: getenv("SESSION_SECRET", "secret_key_change_me"),
		CronSecret:    os.Getenv("CRON_SECRET"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
